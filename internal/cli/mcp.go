package cli

import (
	"github.com/spf13/cobra"

	mcpadapter "github.com/JCZoom/techpulse-blog/internal/adapters/mcp"
	"github.com/JCZoom/techpulse-blog/internal/bootstrap"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve search tools over MCP on stdin/stdout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(app *bootstrap.App) error {
				return mcpadapter.ServeStdio(mcpadapter.NewServer(mcpadapter.NewHandlers(app.Session, nil)))
			})
		},
	}
}
