package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/court/internal/ports/primary"
	"github.com/example/court/internal/wire"
)

// LogCmd returns the log command
func LogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "View the case audit trail",
		Long:  "View and prune the audit trail of case, evidence, judge and configuration changes",
	}
	cmd.AddCommand(logListCmd())
	cmd.AddCommand(logPruneCmd())
	return cmd
}

func logListCmd() *cobra.Command {
	var (
		entityType string
		actor      string
		action     string
		limit      int
	)
	cmd := &cobra.Command{
		Use:   "list [entity-id]",
		Short: "Show recent activity",
		Long:  "Show recent audit entries (default 50), optionally for one entity (e.g. case 12 or evidence 12.3)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				limit = 50
			}
			filters := primary.LogFilters{EntityType: entityType, Action: action, Limit: limit}
			if len(args) > 0 {
				filters.EntityID = args[0]
			}
			if actor != "" {
				id, err := parseID(actor, "actor")
				if err != nil {
					return err
				}
				filters.ActorID = id
			}

			service, err := wire.LogService()
			if err != nil {
				return err
			}
			entries, err := service.ListLogs(NewContext(), filters)
			if err != nil {
				return fmt.Errorf("failed to fetch logs: %w", err)
			}
			printLogEntries(os.Stdout, entries, wire.Config().Location())
			return nil
		},
	}
	cmd.Flags().StringVar(&entityType, "type", "", "Filter by entity type (case, evidence, judge, category, role, notification)")
	cmd.Flags().StringVar(&actor, "actor", "", "Filter by acting user")
	cmd.Flags().StringVar(&action, "action", "", "Filter by action (create, update, delete)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of entries")
	return cmd
}

func logPruneCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old log entries",
		Long:  "Delete log entries older than the specified number of days (default: audit_retention_days)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				days = wire.Config().AuditRetentionDays
			}
			service, err := wire.LogService()
			if err != nil {
				return err
			}
			count, err := service.PruneLogs(NewContext(), days)
			if err != nil {
				return fmt.Errorf("failed to prune logs: %w", err)
			}

			if count == 0 {
				fmt.Printf("No log entries older than %d days found.\n", days)
			} else {
				fmt.Printf("Pruned %d log entries older than %d days.\n", count, days)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Retention in days")
	return cmd
}

func printLogEntries(w io.Writer, entries []*primary.LogEntry, loc *time.Location) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No log entries found.")
		return
	}

	fmt.Fprintf(w, "Found %d log entries:\n\n", len(entries))

	// Oldest first
	for i := len(entries) - 1; i >= 0; i-- {
		printLogEntry(w, entries[i], loc)
	}
}

func printLogEntry(w io.Writer, entry *primary.LogEntry, loc *time.Location) {
	actor := "system"
	if entry.ActorID != 0 {
		actor = fmt.Sprint(entry.ActorID)
	}

	fmt.Fprintf(w, "%s | %-20s | %s %s | %s/%s",
		entry.Timestamp.In(loc).Format("2006-01-02 15:04:05"),
		actor,
		getActionIcon(entry.Action),
		entry.Action,
		entry.EntityType,
		entry.EntityID,
	)
	if entry.Action == "update" && entry.FieldName != "" {
		fmt.Fprintf(w, " | %s: %s -> %s", entry.FieldName, entry.OldValue, entry.NewValue)
	}
	fmt.Fprintln(w)
}

func getActionIcon(action string) string {
	switch action {
	case "create":
		return "+"
	case "update":
		return "~"
	case "delete":
		return "-"
	default:
		return "?"
	}
}
