package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/court/internal/ports/primary"
	"github.com/example/court/internal/wire"
)

// NotifyCmd returns the notify command
func NotifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Schedule direct-message notifications",
	}
	cmd.AddCommand(notifyScheduleCmd())
	cmd.AddCommand(notifyCancelCmd())
	cmd.AddCommand(notifyListCmd())
	cmd.AddCommand(notifySweepCmd())
	return cmd
}

func notifyScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <user> <YYYY-MM-DD> <HH:MM> <message>",
		Short: "Schedule a DM in the court's time zone",
		Args:  cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID(args[0], "user")
			if err != nil {
				return err
			}
			s, err := wire.Get()
			if err != nil {
				return err
			}
			n, err := s.Notifications.Schedule(NewContext(), primary.ScheduleRequest{
				TargetUserID: userID,
				Date:         args[1],
				Time:         args[2],
				Message:      strings.Join(args[3:], " "),
			})
			if err != nil {
				return err
			}
			local := n.ScheduledAt.In(wire.Config().Location())
			fmt.Printf("✓ Notification %d scheduled for %s\n", n.ID, local.Format("2006-01-02 15:04 MST"))
			return nil
		},
	}
}

func notifyCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel an unsent notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid notification id %q", args[0])
			}
			s, err := wire.Get()
			if err != nil {
				return err
			}
			if err := s.Notifications.Cancel(NewContext(), id); err != nil {
				return err
			}
			fmt.Printf("✓ Notification %d cancelled\n", id)
			return nil
		},
	}
}

func notifyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := wire.Get()
			if err != nil {
				return err
			}
			pending, err := s.Notifications.ListPending(NewContext())
			if err != nil {
				return fmt.Errorf("failed to list notifications: %w", err)
			}
			if len(pending) == 0 {
				fmt.Println("No pending notifications")
				return nil
			}
			loc := wire.Config().Location()
			fmt.Printf("\n%-6s %-20s %-17s %s\n", "ID", "USER", "AT", "MESSAGE")
			for _, n := range pending {
				fmt.Printf("%-6d %-20d %-17s %s\n", n.ID, n.TargetUserID, n.ScheduledAt.In(loc).Format("2006-01-02 15:04"), n.Message)
			}
			fmt.Println()
			return nil
		},
	}
}

func notifySweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Deliver due notifications once",
		Long:  "Deliver every due notification now. court serve runs this on the configured schedule.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sched, err := wire.Scheduler()
			if err != nil {
				return err
			}
			result, err := sched.RunSweep(NewContext())
			if err != nil {
				return err
			}
			fmt.Printf("✓ %d due: %d sent, %d failed, %d skipped\n", result.Due, result.Sent, result.Failed, result.Skipped)
			return nil
		},
	}
}
