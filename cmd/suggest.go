package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/crowdfund/internal/draft"
	"github.com/joescharf/crowdfund/internal/llm"
	"github.com/joescharf/crowdfund/internal/models"
	"github.com/joescharf/crowdfund/internal/output"
)

var (
	suggestDraftFile string
	suggestApply     bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Propose funding and release milestones with Claude",
	Long: `Ask Claude to propose funding and release milestones for the draft.

Requires anthropic.api_key (or ANTHROPIC_API_KEY). With --apply the
suggestions fill blank entries first and are then appended.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return suggestRun(cmd.Context(), resolveDraftPath(suggestDraftFile), suggestApply)
	},
}

func init() {
	suggestCmd.Flags().StringVarP(&suggestDraftFile, "draft", "f", "", "Draft file (default from config: draft_file)")
	suggestCmd.Flags().BoolVar(&suggestApply, "apply", false, "Write the suggestions into the draft file")
	rootCmd.AddCommand(suggestCmd)
}

var errNoAPIKey = errors.New("no Anthropic API key configured (set anthropic.api_key or ANTHROPIC_API_KEY)")

func suggestRun(ctx context.Context, path string, apply bool) error {
	d, err := loadExistingDraft(path)
	if err != nil {
		return err
	}
	if d.ProjectName == "" && d.Description == "" {
		return errors.New("draft needs a project name or description before milestones can be suggested")
	}

	client := newLLMClient()
	if client == nil {
		return errNoAPIKey
	}

	ui.VerboseLog("Asking %s for milestones...", client.Model())
	s, err := client.SuggestMilestones(ctx, d)
	if err != nil {
		getLogger(true).Error("suggest milestones", "error", err)
		return fmt.Errorf("suggest milestones: %w", err)
	}

	printSuggestions(models.FieldFundingMilestones, s.FundingMilestones)
	printSuggestions(models.FieldReleaseMilestones, s.ReleaseMilestones)

	if !apply {
		return nil
	}
	return applySuggestions(path, d, s)
}

func printSuggestions(field models.ListField, items []string) {
	fmt.Fprintf(ui.Out, "%s:\n", output.Cyan(field.Label()))
	if len(items) == 0 {
		fmt.Fprintln(ui.Out, "  (none)")
		return
	}
	for _, it := range items {
		fmt.Fprintf(ui.Out, "  - %s\n", it)
	}
}

func applySuggestions(path string, d models.Draft, s *llm.Suggestions) error {
	d, err := llm.Apply(d, s)
	if err != nil {
		return err
	}
	if dryRun {
		ui.DryRunMsg("Would write suggestions to %s", path)
		return nil
	}
	if err := draft.Save(path, d); err != nil {
		return err
	}
	ui.Success("Suggestions written to %s", path)
	return nil
}
