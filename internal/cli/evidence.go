package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/court/internal/wire"
)

// EvidenceCmd returns the evidence command
func EvidenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evidence",
		Short: "Manage a case's evidence ledger",
	}
	cmd.AddCommand(evidenceAddCmd())
	cmd.AddCommand(evidenceRemoveCmd())
	cmd.AddCommand(evidenceListCmd())
	return cmd
}

func evidenceAddCmd() *cobra.Command {
	var link string
	cmd := channelAction("add <channel> <description>", "Add an evidence item", func(cmd *cobra.Command, channelID int64, rest []string) error {
		adapter, err := wire.EvidenceAdapter()
		if err != nil {
			return err
		}
		return adapter.Add(NewContext(), channelID, strings.Join(rest, " "), link)
	}, cobra.MinimumNArgs(2))
	cmd.Flags().StringVar(&link, "link", "", "Link or reference to the evidence document")
	return cmd
}

func evidenceRemoveCmd() *cobra.Command {
	return channelAction("remove <channel> <case.position>", "Remove an evidence item; later items are renumbered", func(cmd *cobra.Command, channelID int64, rest []string) error {
		adapter, err := wire.EvidenceAdapter()
		if err != nil {
			return err
		}
		return adapter.Remove(NewContext(), channelID, rest[0])
	}, cobra.ExactArgs(2))
}

func evidenceListCmd() *cobra.Command {
	return channelAction("list <channel>", "List evidence in submission order", func(cmd *cobra.Command, channelID int64, _ []string) error {
		adapter, err := wire.EvidenceAdapter()
		if err != nil {
			return err
		}
		return adapter.List(NewContext(), channelID)
	}, cobra.ExactArgs(1))
}
