package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/crowdfund/internal/export"
	"github.com/joescharf/crowdfund/internal/models"
	"github.com/joescharf/crowdfund/internal/output"
	"github.com/joescharf/crowdfund/internal/store"
)

var (
	historyLimit     int
	historyFormat    string
	historyStatus    string
	historyOlderThan time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past export attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyRun(cmd.Context())
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete export history older than --older-than",
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyPruneRun(cmd.Context())
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "Maximum number of rows (0 for all)")
	historyCmd.Flags().StringVar(&historyFormat, "format", "", "Only show this format (PDF or Excel)")
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "Only show this status (succeeded or failed)")
	historyPruneCmd.Flags().DurationVar(&historyOlderThan, "older-than", 30*24*time.Hour, "Delete records finished before now minus this duration")

	historyCmd.AddCommand(historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}

func historyRun(ctx context.Context) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	filter := store.ExportListFilter{Limit: historyLimit}
	if historyFormat != "" {
		f, err := export.ParseFormat(historyFormat)
		if err != nil {
			return err
		}
		filter.Format = string(f)
	}
	switch models.ExportStatus(historyStatus) {
	case "":
	case models.ExportStatusSucceeded, models.ExportStatusFailed:
		filter.Status = models.ExportStatus(historyStatus)
	default:
		return fmt.Errorf("invalid status %q: use succeeded or failed", historyStatus)
	}

	recs, err := s.ListExports(ctx, filter)
	if err != nil {
		return fmt.Errorf("list exports: %w", err)
	}
	if len(recs) == 0 {
		ui.Info("No exports yet")
		return nil
	}

	table := ui.Table([]string{"ID", "Format", "Status", "Project", "Size", "Duration", "Finished", "Error"})
	for _, r := range recs {
		size := "-"
		if r.Status == models.ExportStatusSucceeded {
			size = output.Bytes(r.Bytes)
		}
		_ = table.Append([]string{
			shortID(r.ID),
			r.Format,
			output.StatusColor(string(r.Status)),
			r.ProjectName,
			size,
			r.Duration().Round(time.Millisecond).String(),
			r.FinishedAt.Local().Format("2006-01-02 15:04:05"),
			truncate(r.Error, 40),
		})
	}
	return table.Render()
}

func historyPruneRun(ctx context.Context) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	before := time.Now().Add(-historyOlderThan)
	if dryRun {
		ui.DryRunMsg("Would delete exports finished before %s", before.Format("2006-01-02 15:04"))
		return nil
	}

	n, err := s.PruneExports(ctx, before)
	if err != nil {
		return fmt.Errorf("prune exports: %w", err)
	}
	ui.Success("Deleted %d export record(s)", n)
	return nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
