package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/example/court/internal/ports/primary"
	"github.com/example/court/internal/wire"
)

// ExportCmd returns the export command
func ExportCmd() *cobra.Command {
	var (
		dir    string
		window int
	)
	cmd := &cobra.Command{
		Use:   "export <case-number>",
		Short: "Render a case transcript to a local HTML file",
		Long: `Render the transcript of a case and write it under --dir.

The case is not modified and nothing is posted. Use case close-reason
to archive a transcript as part of closing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caseID, err := parseCaseID(args[0])
			if err != nil {
				return err
			}
			s, err := wire.Get()
			if err != nil {
				return err
			}
			doc, err := s.Transcripts.ExportCase(NewContext(), primary.ExportCaseRequest{CaseID: caseID, Window: window})
			if err != nil {
				return err
			}

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
			path := filepath.Join(dir, doc.Name)
			if err := atomic.WriteFile(path, bytes.NewReader(doc.Data)); err != nil {
				return fmt.Errorf("failed to write transcript: %w", err)
			}
			fmt.Printf("✓ Exported %d messages to %s\n", doc.MessageCount, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "Output directory")
	cmd.Flags().IntVar(&window, "window", primary.RoutineWindow, "Number of recent messages to include")
	return cmd
}
