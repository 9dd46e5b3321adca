package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/court/internal/ports/primary"
	"github.com/example/court/internal/wire"
)

// CategoryCmd returns the category command
func CategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Register case categories",
	}
	cmd.AddCommand(categorySetupCmd())
	cmd.AddCommand(categoryRegisterCmd())
	cmd.AddCommand(categoryArchiveCmd())
	cmd.AddCommand(categoryListCmd())
	return cmd
}

func categorySetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create or adopt the intake and archive categories and the archive log channel",
		Long: `Create or adopt the guild layout the court relies on.

Objects that already exist are adopted by name (case-insensitive).
Running setup again creates nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := wire.Get()
			if err != nil {
				return err
			}
			cfg := wire.Config()
			report, err := s.Categories.Setup(NewContext(), primary.SetupRequest{
				IntakeName:     cfg.IntakeCategory,
				ArchiveName:    cfg.ArchiveCategory,
				LogChannelName: cfg.Archive.LogChannelName,
			})
			if err != nil {
				return err
			}

			created := make(map[string]bool, len(report.Created))
			for _, name := range report.Created {
				created[strings.ToLower(name)] = true
			}
			row := func(label, name string, id int64) {
				state := color.New(color.FgBlue).Sprint("EXISTS ")
				if created[strings.ToLower(name)] {
					state = color.New(color.FgGreen).Sprint("CREATE ")
				}
				fmt.Printf("  %s %-16s %s (%d)\n", state, label, name, id)
			}
			row("intake", cfg.IntakeCategory, report.IntakeCategoryID)
			row("archive", cfg.ArchiveCategory, report.ArchiveCategoryID)
			row("log channel", cfg.Archive.LogChannelName, report.LogChannelID)
			if len(report.Created) == 0 {
				fmt.Println("✓ Guild layout already in place")
			} else {
				fmt.Printf("✓ Created %d objects\n", len(report.Created))
			}
			return nil
		},
	}
}

func categoryRegisterCmd() *cobra.Command {
	var (
		role string
		kind string
	)
	cmd := &cobra.Command{
		Use:   "register <category>",
		Short: "Register an existing category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryID, err := parseID(args[0], "category")
			if err != nil {
				return err
			}
			req := primary.RegisterCategoryRequest{CategoryID: categoryID, Kind: kind}
			if role != "" {
				if req.RoleID, err = parseID(role, "role"); err != nil {
					return err
				}
			}
			s, err := wire.Get()
			if err != nil {
				return err
			}
			cat, err := s.Categories.RegisterCategory(NewContext(), req)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Registered %s category %s (%d)\n", cat.Kind, cat.Name, cat.CategoryID)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "Role that sees cases in this category")
	cmd.Flags().StringVar(&kind, "kind", "custom", "Category kind (intake or custom)")
	return cmd
}

func categoryArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <category>",
		Short: "Mark a category as the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryID, err := parseID(args[0], "category")
			if err != nil {
				return err
			}
			s, err := wire.Get()
			if err != nil {
				return err
			}
			cat, err := s.Categories.SetArchiveCategory(NewContext(), categoryID)
			if err != nil {
				return err
			}
			fmt.Printf("✓ %s (%d) is now the archive category\n", cat.Name, cat.CategoryID)
			return nil
		},
	}
}

func categoryListCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := wire.Get()
			if err != nil {
				return err
			}
			cats, err := s.Categories.ListCategories(NewContext(), kind)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}
			if len(cats) == 0 {
				fmt.Println("No categories registered")
				return nil
			}
			fmt.Printf("\n%-20s %-8s %-20s %s\n", "CATEGORY", "KIND", "ROLE", "NAME")
			for _, c := range cats {
				role := "-"
				if c.RoleID != 0 {
					role = fmt.Sprint(c.RoleID)
				}
				fmt.Printf("%-20d %-8s %-20s %s\n", c.CategoryID, c.Kind, role, c.Name)
			}
			fmt.Println()
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Filter by kind (intake, custom, judge, archive)")
	return cmd
}
