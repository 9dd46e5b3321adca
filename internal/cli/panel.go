package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/court/internal/ports/primary"
	"github.com/example/court/internal/wire"
)

// PanelCmd returns the panel command
func PanelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Post intake panels",
	}
	cmd.AddCommand(panelCreateCmd())
	cmd.AddCommand(panelListCmd())
	return cmd
}

func panelCreateCmd() *cobra.Command {
	var (
		req  primary.CreatePanelRequest
		role string
	)
	cmd := &cobra.Command{
		Use:   "create <channel> <intake-category>",
		Short: "Post a panel whose button opens a case in the category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.ChannelID, err = parseID(args[0], "channel"); err != nil {
				return err
			}
			if req.CategoryID, err = parseID(args[1], "category"); err != nil {
				return err
			}
			if role != "" {
				if req.RoleID, err = parseID(role, "role"); err != nil {
					return err
				}
			}
			s, err := wire.Get()
			if err != nil {
				return err
			}
			panel, err := s.Panels.CreatePanel(NewContext(), req)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Panel %d posted in %d (button %s)\n", panel.ID, panel.ChannelID, panel.ButtonID)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Title, "title", "", "Panel title")
	cmd.Flags().StringVar(&req.Description, "description", "", "Panel text")
	cmd.Flags().StringVar(&req.Emoji, "emoji", "", "Button emoji")
	cmd.Flags().StringVar(&req.ButtonText, "button", "", "Button label")
	cmd.Flags().StringVar(&role, "role", "", "Role that sees cases opened from this panel")
	return cmd
}

func panelListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List panels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := wire.Get()
			if err != nil {
				return err
			}
			panels, err := s.Panels.ListPanels(NewContext())
			if err != nil {
				return fmt.Errorf("failed to list panels: %w", err)
			}
			if len(panels) == 0 {
				fmt.Println("No panels posted")
				return nil
			}
			fmt.Printf("\n%-6s %-20s %-20s %s\n", "ID", "CHANNEL", "CATEGORY", "TITLE")
			for _, p := range panels {
				fmt.Printf("%-6d %-20d %-20d %s\n", p.ID, p.ChannelID, p.CategoryID, p.Title)
			}
			fmt.Println()
			return nil
		},
	}
}
