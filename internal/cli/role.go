package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/court/internal/wire"
)

// RoleCmd returns the role command
func RoleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Bind court functions to roles",
		Long: `Bind court functions to guild roles.

Functions: judge, admin, case_management, evidence_management,
notification_management, archive_access. An unbound function requires
administrator.`,
	}
	cmd.AddCommand(roleSetCmd())
	cmd.AddCommand(roleListCmd())
	return cmd
}

func roleSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <function> <role>",
		Short: "Bind a function to a role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			roleID, err := parseID(args[1], "role")
			if err != nil {
				return err
			}
			s, err := wire.Get()
			if err != nil {
				return err
			}
			if err := s.Permissions.SetRole(NewContext(), args[0], roleID); err != nil {
				return err
			}
			fmt.Printf("✓ %s bound to role %d\n", args[0], roleID)
			return nil
		},
	}
}

func roleListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List function bindings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := wire.Get()
			if err != nil {
				return err
			}
			bindings, err := s.Permissions.ListRoles(NewContext())
			if err != nil {
				return fmt.Errorf("failed to list roles: %w", err)
			}
			fmt.Printf("\n%-24s %s\n", "FUNCTION", "ROLE")
			for _, b := range bindings {
				role := "(administrator)"
				if b.RoleID != 0 {
					role = fmt.Sprint(b.RoleID)
				}
				fmt.Printf("%-24s %s\n", b.Function, role)
			}
			fmt.Println()
			return nil
		},
	}
}
