package command

import (
	"github.com/spf13/cobra"

	"github.com/noahbkim00/executive-ai-mvp/internal/app"
	"github.com/noahbkim00/executive-ai-mvp/internal/mcp"
)

// NewMCPCmd creates the mcp command.
func NewMCPCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the intake tools over MCP stdio",
		Long:  "Serves intake_extract, intake_answer and intake_status to an MCP client on stdin/stdout. Logs go to stderr.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if cfg.LogMode == "development" {
				cfg.LogMode = "production"
			}
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer a.Close()

			server := mcp.NewServer(a.Services.Intake, version)
			if err := mcp.RunStdio(cmd.Context(), server); err != nil {
				return writeCommandError(cmd, err)
			}
			return nil
		},
	}
}
