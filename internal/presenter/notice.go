package presenter

import (
	"errors"
	"strconv"

	"github.com/JCZoom/techpulse-blog/internal/core/domain"
)

// Notice is the empty/error state shown instead of result cards.
type Notice struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Retry bool   `json:"retry"`
}

// NoticeForState returns the notice for a completed search, or nil when
// there are results to show.
func NoticeForState(state domain.SearchState) *Notice {
	switch state {
	case domain.StateNoContent:
		return &Notice{
			Kind:  string(domain.StateNoContent),
			Title: "No articles found",
			Body:  "No articles are available to search yet.",
		}
	case domain.StateNoMatches:
		return &Notice{
			Kind:  string(domain.StateNoMatches),
			Title: "No results found",
			Body:  "Try different keywords or remove some filters.",
		}
	default:
		return nil
	}
}

// NoticeForError maps a failed search to a terminal notice. Both kinds
// need a manual retry.
func NoticeForError(err error) Notice {
	if err == nil {
		err = errors.New("unknown error")
	}
	if errors.Is(err, domain.ErrTimeout) {
		return Notice{
			Kind:  "timeout",
			Title: "Search timed out",
			Body:  "The search is taking too long. This might be a network issue.",
			Retry: true,
		}
	}
	return Notice{
		Kind:  "error",
		Title: "Search error",
		Body:  "Unable to load search index: " + err.Error(),
		Retry: true,
	}
}

// Summary is the one-line result header, e.g. "12 results · Found in 0.004s".
func Summary(resp *domain.SearchResponse) string {
	noun := "results"
	if resp.Count == 1 {
		noun = "result"
	}
	return strconv.Itoa(resp.Count) + " " + noun + " · Found in " + resp.ElapsedSeconds() + "s"
}
