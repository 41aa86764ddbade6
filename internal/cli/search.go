package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/JCZoom/techpulse-blog/internal/bootstrap"
	"github.com/JCZoom/techpulse-blog/internal/core/domain"
	"github.com/JCZoom/techpulse-blog/internal/infrastructure/export/xlsx"
	"github.com/JCZoom/techpulse-blog/internal/presenter"
	"github.com/JCZoom/techpulse-blog/internal/syntax"
)

type searchFlags struct {
	sort  string
	limit int
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sort, "sort", "relevance", "result order: relevance, date or score")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "maximum results to show (0 shows all)")
}

func (f *searchFlags) request(args []string) (domain.SearchRequest, error) {
	mode, err := domain.ParseSortMode(f.sort)
	if err != nil {
		return domain.SearchRequest{}, err
	}
	if f.limit < 0 {
		return domain.SearchRequest{}, domain.WrapError(domain.ErrInvalidInput, "parse flags", errors.New("--limit must be >= 0"))
	}
	return domain.SearchRequest{Query: strings.Join(args, " "), Sort: mode, Limit: f.limit}, nil
}

func newSearchCmd() *cobra.Command {
	var (
		flags  searchFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Run a query against the article archive",
		Example: `  techpulse search '"AI agents" tag:ai score:>8'
  techpulse search --sort date source:TechCrunch this:week`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(args)
			if err != nil {
				return err
			}
			return withApp(cmd, func(app *bootstrap.App) error {
				resp, err := app.Session.Search(cmd.Context(), req)
				if err != nil {
					notice := presenter.NoticeForError(err)
					return fmt.Errorf("%s: %w", notice.Title, err)
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), resp)
				}
				printResults(cmd.OutOrStdout(), resp, time.Now())
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw response as JSON")
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		flags searchFlags
		out   string
	)
	cmd := &cobra.Command{
		Use:   "export [query...]",
		Short: "Write query results to an XLSX workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(args)
			if err != nil {
				return err
			}
			return withApp(cmd, func(app *bootstrap.App) error {
				resp, err := app.Session.Search(cmd.Context(), req)
				if err != nil {
					return err
				}
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				if err := xlsx.Write(f, resp); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("close %s: %w", out, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s written to %s\n", presenter.Summary(resp), out)
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "techpulse-search.xlsx", "output workbook path")
	return cmd
}

func newFacetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "facets",
		Short: "List categories and sources in the loaded corpus",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(app *bootstrap.App) error {
				facets, err := app.Session.Facets(cmd.Context())
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintln(w, "Categories:")
				for _, c := range facets.Categories {
					fmt.Fprintln(w, "  "+c)
				}
				fmt.Fprintln(w, "Sources:")
				for _, s := range facets.Sources {
					fmt.Fprintln(w, "  "+s)
				}
				return nil
			})
		},
	}
}

func newSyntaxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "syntax [partial query]",
		Short: "Show query syntax examples",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := syntax.Catalog()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, item := range syntax.Filter(items, strings.Join(args, " ")) {
				fmt.Fprintf(w, "%-22s %-40s %s\n", item.Title, item.Syntax, item.Desc)
			}
			return nil
		},
	}
}

func printResults(w io.Writer, resp *domain.SearchResponse, now time.Time) {
	if notice := presenter.NoticeForState(resp.State); notice != nil {
		fmt.Fprintf(w, "%s\n%s\n", notice.Title, notice.Body)
		return
	}
	fmt.Fprintln(w, presenter.Summary(resp))
	for i, card := range presenter.NewCards(resp.Results, now) {
		fmt.Fprintf(w, "%3d. %-4.1f %s\n", i+1, card.Score, card.Title)
		meta := []string{card.Source, card.Category, card.ReadTime}
		if card.TimeAgo != "" {
			meta = append(meta, card.TimeAgo)
		}
		fmt.Fprintf(w, "     %s\n", strings.Join(meta, " · "))
		if card.URL != "" {
			fmt.Fprintf(w, "     %s\n", card.URL)
		}
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
