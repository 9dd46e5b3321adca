package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/court/internal/ports/primary"
	"github.com/example/court/internal/wire"
)

// CaseCmd returns the case command
func CaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "case",
		Short: "Manage court cases",
		Long:  "Claim, move, close and archive cases, and query the case register.",
	}

	cmd.AddCommand(caseShowCmd())
	cmd.AddCommand(caseListCmd())
	cmd.AddCommand(caseSearchCmd())
	cmd.AddCommand(caseStatsCmd())
	cmd.AddCommand(caseClaimCmd())
	cmd.AddCommand(caseMoveCmd())
	cmd.AddCommand(caseCloseCmd())
	cmd.AddCommand(caseCloseReasonCmd())
	cmd.AddCommand(caseArchiveCmd())
	cmd.AddCommand(caseRelocateCmd())
	cmd.AddCommand(caseLegacyCmd())
	cmd.AddCommand(caseNoteCmd())
	cmd.AddCommand(caseDMCmd())
	cmd.AddCommand(caseDeleteChannelCmd())
	return cmd
}

func caseShowCmd() *cobra.Command {
	var (
		channel string
		output  string
	)
	cmd := &cobra.Command{
		Use:   "show [case-number]",
		Short: "Show case details",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var caseID, channelID int64
			var err error
			switch {
			case len(args) == 1:
				caseID, err = parseCaseID(args[0])
			case channel != "":
				channelID, err = parseID(channel, "channel")
			default:
				return fmt.Errorf("specify a case number or --channel")
			}
			if err != nil {
				return err
			}

			adapter, err := wire.CaseAdapter()
			if err != nil {
				return err
			}
			return adapter.Show(NewContext(), caseID, channelID, output)
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "", "Look the case up by its channel")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text or yaml)")
	return cmd
}

func caseListCmd() *cobra.Command {
	var (
		status   string
		judge    string
		archived bool
		active   bool
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			filters := primary.CaseFilters{Status: status, Limit: limit}
			if judge != "" {
				id, err := parseID(judge, "judge")
				if err != nil {
					return err
				}
				filters.JudgeID = id
			}
			if cmd.Flags().Changed("archived") {
				filters.Archived = &archived
			}
			if active {
				no := false
				filters.Archived = &no
			}

			adapter, err := wire.CaseAdapter()
			if err != nil {
				return err
			}
			return adapter.List(NewContext(), filters)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (open, assigned, closed)")
	cmd.Flags().StringVar(&judge, "judge", "", "Filter by assigned judge")
	cmd.Flags().BoolVar(&archived, "archived", false, "Only archived (or, with =false, unarchived) cases")
	cmd.Flags().BoolVar(&active, "active", false, "Exclude archived cases")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of cases")
	return cmd
}

func caseSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search closed and archived cases",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.CaseAdapter()
			if err != nil {
				return err
			}
			return adapter.Search(NewContext(), strings.Join(args, " "))
		},
	}
}

func caseStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show case statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.CaseAdapter()
			if err != nil {
				return err
			}
			return adapter.Stats(NewContext())
		},
	}
}

// channelAction builds a command acting on the case bound to one channel.
func channelAction(use, short string, run func(cmd *cobra.Command, channelID int64, rest []string) error, nargs cobra.PositionalArgs) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  nargs,
		RunE: func(cmd *cobra.Command, args []string) error {
			channelID, err := parseID(args[0], "channel")
			if err != nil {
				return err
			}
			return run(cmd, channelID, args[1:])
		},
	}
}

func caseClaimCmd() *cobra.Command {
	return channelAction("claim <channel>", "Assign the case to yourself", func(cmd *cobra.Command, channelID int64, _ []string) error {
		adapter, err := wire.CaseAdapter()
		if err != nil {
			return err
		}
		return adapter.Claim(NewContext(), channelID)
	}, cobra.ExactArgs(1))
}

func caseMoveCmd() *cobra.Command {
	return channelAction("move <channel> <category-name>", "Move the case to another category", func(cmd *cobra.Command, channelID int64, rest []string) error {
		adapter, err := wire.CaseAdapter()
		if err != nil {
			return err
		}
		return adapter.Move(NewContext(), channelID, strings.Join(rest, " "))
	}, cobra.MinimumNArgs(2))
}

func caseCloseCmd() *cobra.Command {
	return channelAction("close <channel>", "Close the case without a transcript", func(cmd *cobra.Command, channelID int64, _ []string) error {
		adapter, err := wire.CaseAdapter()
		if err != nil {
			return err
		}
		return adapter.Close(NewContext(), channelID)
	}, cobra.ExactArgs(1))
}

func caseCloseReasonCmd() *cobra.Command {
	return channelAction("close-reason <channel> <reason>", "Export the transcript, notify the creator and close the case", func(cmd *cobra.Command, channelID int64, rest []string) error {
		adapter, err := wire.CaseAdapter()
		if err != nil {
			return err
		}
		return adapter.CloseWithReason(NewContext(), channelID, strings.Join(rest, " "))
	}, cobra.MinimumNArgs(2))
}

func caseArchiveCmd() *cobra.Command {
	return channelAction("archive <channel>", "Place the case in the archive", func(cmd *cobra.Command, channelID int64, _ []string) error {
		adapter, err := wire.CaseAdapter()
		if err != nil {
			return err
		}
		return adapter.Archive(NewContext(), channelID)
	}, cobra.ExactArgs(1))
}

func caseRelocateCmd() *cobra.Command {
	return channelAction("relocate <channel>", "Re-apply the channel placement of a stored case", func(cmd *cobra.Command, channelID int64, _ []string) error {
		adapter, err := wire.CaseAdapter()
		if err != nil {
			return err
		}
		return adapter.Relocate(NewContext(), channelID)
	}, cobra.ExactArgs(1))
}

func caseLegacyCmd() *cobra.Command {
	var (
		title       string
		description string
		deleteAfter bool
	)
	cmd := channelAction("legacy <channel>", "Archive a channel that was never registered as a case", func(cmd *cobra.Command, channelID int64, _ []string) error {
		adapter, err := wire.CaseAdapter()
		if err != nil {
			return err
		}
		return adapter.Legacy(NewContext(), primary.LegacyArchiveRequest{
			ChannelID:     channelID,
			Title:         title,
			Description:   description,
			DeleteChannel: deleteAfter,
		})
	}, cobra.ExactArgs(1))
	cmd.Flags().StringVar(&title, "title", "", "Transcript title")
	cmd.Flags().StringVar(&description, "description", "", "Transcript description")
	cmd.Flags().BoolVar(&deleteAfter, "delete", false, "Delete the channel after archiving")
	return cmd
}

func caseNoteCmd() *cobra.Command {
	return channelAction("note <channel> <text>", "Post a judge note in the case channel", func(cmd *cobra.Command, channelID int64, rest []string) error {
		s, err := wire.Get()
		if err != nil {
			return err
		}
		if err := s.Lifecycle.PostNote(NewContext(), primary.NoteRequest{ChannelID: channelID, Text: strings.Join(rest, " ")}); err != nil {
			return err
		}
		fmt.Println("✓ Note posted")
		return nil
	}, cobra.MinimumNArgs(2))
}

func caseDMCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dm <user> <text>",
		Short: "Send a direct message through the bot",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID(args[0], "user")
			if err != nil {
				return err
			}
			s, err := wire.Get()
			if err != nil {
				return err
			}
			if err := s.Lifecycle.SendDirectMessage(NewContext(), primary.DirectMessageRequest{UserID: userID, Text: strings.Join(args[1:], " ")}); err != nil {
				return err
			}
			fmt.Printf("✓ Message sent to %d\n", userID)
			return nil
		},
	}
}

func caseDeleteChannelCmd() *cobra.Command {
	return channelAction("delete-channel <channel>", "Delete the channel of a closed case", func(cmd *cobra.Command, channelID int64, _ []string) error {
		s, err := wire.Get()
		if err != nil {
			return err
		}
		if err := s.Lifecycle.DeleteChannel(NewContext(), primary.CaseActionRequest{ChannelID: channelID}); err != nil {
			return err
		}
		fmt.Printf("✓ Channel %d deleted\n", channelID)
		return nil
	}, cobra.ExactArgs(1))
}
