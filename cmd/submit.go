package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/joescharf/crowdfund/internal/draft"
)

var submitDraftFile string

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Create the project from the draft file",
	Long: `Create the project from the draft file.

There is no project backend yet: the draft is written to the log and
confirmed. With submit.strict enabled, drafts with empty required fields
or a non-numeric funding goal are rejected.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitRun(cmd.Context(), resolveDraftPath(submitDraftFile))
	},
}

func init() {
	submitCmd.Flags().StringVarP(&submitDraftFile, "draft", "f", "", "Draft file (default from config: draft_file)")
	rootCmd.AddCommand(submitCmd)
}

func submitRun(ctx context.Context, path string) error {
	d, err := loadExistingDraft(path)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would create project %q", d.ProjectName)
		return nil
	}

	r, err := newSubmitter(ui, getLogger(true)).Submit(ctx, d)
	var verr *draft.ValidationError
	if errors.As(err, &verr) {
		for _, is := range verr.Issues {
			ui.Error("%s", is)
		}
		return errors.New("draft is incomplete")
	}
	if err != nil {
		return err
	}
	ui.VerboseLog("Submitted at %s", r.SubmittedAt.Format("2006-01-02 15:04:05"))
	return nil
}
