package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/court/internal/config"
	"github.com/example/court/internal/db"
	"github.com/example/court/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the court config and database",
		Long:  `Write a commented .court/config.json and create the database with the required schema.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			path, err := config.WriteTemplate(wd)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Config written to %s\n", path)

			if _, err := wire.Database(); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			fmt.Printf("✓ Database initialized at %s\n", db.GetDBPath())

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  export COURT_TOKEN=... COURT_GUILD_ID=...")
			fmt.Println("  court category setup --as <your user id>")
			fmt.Println("  court panel create <channel> <intake category>")
			fmt.Println("  court serve")
			return nil
		},
	}
}
