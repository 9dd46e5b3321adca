package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/court/internal/cli"
	"github.com/example/court/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "court",
		Short:   "court - case management for a Discord court",
		Version: version.String(),
		Long: `court manages cases in a Discord guild: intake panels open case channels,
judges claim and close them, evidence is kept in an ordered ledger and
closed cases are archived with an HTML transcript.`,
		SilenceUsage:      true,
		PersistentPreRunE: cli.Bootstrap,
	}
	cli.AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.ServeCmd())

	// Case work
	rootCmd.AddCommand(cli.CaseCmd())
	rootCmd.AddCommand(cli.EvidenceCmd())
	rootCmd.AddCommand(cli.ExportCmd())
	rootCmd.AddCommand(cli.NotifyCmd())

	// Court configuration
	rootCmd.AddCommand(cli.JudgeCmd())
	rootCmd.AddCommand(cli.CategoryCmd())
	rootCmd.AddCommand(cli.RoleCmd())
	rootCmd.AddCommand(cli.PanelCmd())
	rootCmd.AddCommand(cli.LogCmd())

	// Developer tools
	rootCmd.AddCommand(cli.DevCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
