package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/court/internal/db"
)

// DevCmd returns the dev command group for development utilities.
func DevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "dev",
		Short:  "Development utilities",
		Hidden: true,
	}
	cmd.AddCommand(devResetCmd())
	return cmd
}

func devResetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the dev database with fresh fixtures",
		Long: `Delete the database and recreate it with fixture data.

This command:
1. Deletes the existing database file
2. Creates a fresh database with the current schema
3. Seeds categories, judges, cases in every state and evidence

Safety: COURT_DB_PATH must be set explicitly so the production database
is never reset by accident.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath := os.Getenv("COURT_DB_PATH")
			if dbPath == "" {
				return fmt.Errorf("COURT_DB_PATH not set\n\nThis safety check prevents accidental reset of your production database")
			}

			if !force {
				fmt.Printf("This will delete and recreate: %s\n", dbPath)
				fmt.Print("Continue? [y/N] ")
				var response string
				fmt.Scanln(&response)
				if response != "y" && response != "Y" {
					fmt.Println("Aborted.")
					return nil
				}
			}

			db.Close()
			for _, suffix := range []string{"", "-wal", "-shm"} {
				if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("failed to delete database: %w", err)
				}
			}
			fmt.Printf("✓ Deleted %s\n", dbPath)

			database, err := db.GetDB()
			if err != nil {
				return fmt.Errorf("failed to create database: %w", err)
			}
			fmt.Println("✓ Created fresh database with schema")

			if err := db.SeedFixtures(database); err != nil {
				return fmt.Errorf("failed to seed fixtures: %w", err)
			}
			fmt.Println("✓ Seeded fixture data")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}
