package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/court/internal/ports/primary"
	"github.com/example/court/internal/wire"
)

// JudgeCmd returns the judge command
func JudgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "judge",
		Short: "Appoint and dismiss judges",
	}
	cmd.AddCommand(judgeAppointCmd())
	cmd.AddCommand(judgeDismissCmd())
	cmd.AddCommand(judgeListCmd())
	return cmd
}

func judgeAppointCmd() *cobra.Command {
	var categoryName string
	cmd := &cobra.Command{
		Use:   "appoint <user>",
		Short: "Appoint a judge and create their category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID(args[0], "user")
			if err != nil {
				return err
			}
			s, err := wire.Get()
			if err != nil {
				return err
			}
			judge, err := s.Judges.AppointJudge(NewContext(), primary.AppointJudgeRequest{UserID: userID, CategoryName: categoryName})
			if err != nil {
				return err
			}
			fmt.Printf("✓ Appointed judge %d with category %s (%d)\n", judge.UserID, judge.CategoryName, judge.CategoryID)
			return nil
		},
	}
	cmd.Flags().StringVar(&categoryName, "category", "", "Category name (default \"Judge <display name>\")")
	return cmd
}

func judgeDismissCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss <user>",
		Short: "Dismiss a judge with no active cases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID(args[0], "user")
			if err != nil {
				return err
			}
			s, err := wire.Get()
			if err != nil {
				return err
			}
			resp, err := s.Judges.DismissJudge(NewContext(), userID)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Dismissed judge %d\n", userID)
			for _, w := range resp.Warnings {
				fmt.Printf("  ! %s\n", w)
			}
			return nil
		},
	}
}

func judgeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List judges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := wire.Get()
			if err != nil {
				return err
			}
			judges, err := s.Judges.ListJudges(NewContext())
			if err != nil {
				return fmt.Errorf("failed to list judges: %w", err)
			}
			if len(judges) == 0 {
				fmt.Println("No judges appointed")
				return nil
			}
			fmt.Printf("\n%-20s %-20s %s\n", "USER", "CATEGORY", "NAME")
			for _, j := range judges {
				fmt.Printf("%-20d %-20d %s\n", j.UserID, j.CategoryID, j.CategoryName)
			}
			fmt.Println()
			return nil
		},
	}
}
