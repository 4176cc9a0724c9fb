package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/joescharf/crowdfund/internal/draft"
	"github.com/joescharf/crowdfund/internal/form"
)

var (
	createDraftFile string
	createSave      bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Open the interactive project form",
	Long: `Open the interactive form for a new project.

The form starts from the draft file when it exists and writes the final
state back to it on exit (disable with --save=false).

Keys:
  tab / shift+tab   next / previous field
  ctrl+n            add an entry to the focused list
  ctrl+d            remove the focused entry
  ctrl+s            create project
  ctrl+p / ctrl+e   export PDF / Excel
  esc               quit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return createRun(cmd.Context(), resolveDraftPath(createDraftFile), createSave)
	},
}

func init() {
	createCmd.Flags().StringVarP(&createDraftFile, "draft", "f", "", "Draft file (default from config: draft_file)")
	createCmd.Flags().BoolVar(&createSave, "save", true, "Save the draft back to the draft file on exit")
	rootCmd.AddCommand(createCmd)
}

func createRun(ctx context.Context, path string, save bool) error {
	d, _, err := loadDraft(path)
	if err != nil {
		return err
	}

	log := getLogger(false)
	holder := draft.NewHolder(d)
	req := newRequester(holder, nil, "", log)
	sub := newSubmitter(nil, log)

	if err := form.Run(ctx, holder, req, sub, tea.WithAltScreen(), tea.WithContext(ctx)); err != nil {
		return fmt.Errorf("form: %w", err)
	}

	if !save {
		return nil
	}
	if dryRun {
		ui.DryRunMsg("Would save draft to %s", path)
		return nil
	}
	if err := draft.Save(path, holder.Snapshot()); err != nil {
		return err
	}
	ui.Success("Draft saved to %s", path)
	return nil
}
