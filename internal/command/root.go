package command

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/noahbkim00/executive-ai-mvp/internal/app"
)

const AppName = "intake"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Executive search intake service",
		Long:          "Runs the executive search intake: requirement extraction, company research and clarifying questions.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().String("config", "", "path to a YAML or JSON config file")

	cmd.AddCommand(
		NewServeCmd(),
		NewMigrateCmd(),
		NewChatCmd(),
		NewMCPCmd(version),
	)

	return cmd
}

func loadConfig(cmd *cobra.Command) (app.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return app.LoadConfig(path)
}
