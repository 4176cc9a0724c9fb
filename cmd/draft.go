package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/crowdfund/internal/draft"
	"github.com/joescharf/crowdfund/internal/models"
	"github.com/joescharf/crowdfund/internal/output"
)

var (
	draftFile  string
	draftForce bool
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Edit the project draft file",
	Long: `Edit the project draft file without the interactive form.

Running bare 'crowdfund draft' is the same as 'crowdfund draft show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return draftShowRun(resolveDraftPath(draftFile))
	},
}

var draftInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a fresh draft file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return draftInitRun(resolveDraftPath(draftFile))
	},
}

var draftShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the draft and any validation issues",
	RunE: func(cmd *cobra.Command, args []string) error {
		return draftShowRun(resolveDraftPath(draftFile))
	},
}

var draftSetCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Set projectName, description or fundingGoal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return draftSetRun(resolveDraftPath(draftFile), args[0], args[1])
	},
}

var draftItemCmd = &cobra.Command{
	Use:   "item",
	Short: "Edit fundingMilestones, releaseMilestones or projectMembers entries",
}

var draftItemSetCmd = &cobra.Command{
	Use:   "set <list> <index> <value>",
	Short: "Replace one list entry (zero-based index)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return draftItemSetRun(resolveDraftPath(draftFile), args[0], args[1], args[2])
	},
}

var draftItemAddCmd = &cobra.Command{
	Use:   "add <list> [value]",
	Short: "Append a list entry, blank unless a value is given",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value := ""
		if len(args) == 2 {
			value = args[1]
		}
		return draftItemAddRun(resolveDraftPath(draftFile), args[0], value)
	},
}

var draftItemRmCmd = &cobra.Command{
	Use:     "rm <list> <index>",
	Aliases: []string{"remove"},
	Short:   "Remove a list entry (the last entry is cleared instead)",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return draftItemRmRun(resolveDraftPath(draftFile), args[0], args[1])
	},
}

func init() {
	draftCmd.PersistentFlags().StringVarP(&draftFile, "draft", "f", "", "Draft file (default from config: draft_file)")
	draftInitCmd.Flags().BoolVar(&draftForce, "force", false, "Overwrite an existing draft file")

	draftItemCmd.AddCommand(draftItemSetCmd)
	draftItemCmd.AddCommand(draftItemAddCmd)
	draftItemCmd.AddCommand(draftItemRmCmd)

	draftCmd.AddCommand(draftInitCmd)
	draftCmd.AddCommand(draftShowCmd)
	draftCmd.AddCommand(draftSetCmd)
	draftCmd.AddCommand(draftItemCmd)
	rootCmd.AddCommand(draftCmd)
}

func draftInitRun(path string) error {
	if _, err := os.Stat(path); err == nil && !draftForce {
		return fmt.Errorf("draft file already exists: %s (use --force to overwrite)", path)
	}

	if dryRun {
		ui.DryRunMsg("Would create draft file: %s", path)
		return nil
	}
	if err := draft.Save(path, draft.New()); err != nil {
		return err
	}
	ui.Success("Draft file created: %s", path)
	return nil
}

func draftShowRun(path string) error {
	d, err := loadExistingDraft(path)
	if err != nil {
		return err
	}
	printDraft(d)
	return nil
}

func printDraft(d models.Draft) {
	for _, sf := range models.ScalarFields {
		v, _ := draft.Scalar(d, sf)
		if v == "" {
			v = output.Yellow("(empty)")
		}
		if sf == models.FieldDescription && strings.Contains(v, "\n") {
			fmt.Fprintf(ui.Out, "%s:\n", output.Cyan(sf.Label()))
			for _, line := range strings.Split(v, "\n") {
				fmt.Fprintf(ui.Out, "  %s\n", line)
			}
			continue
		}
		fmt.Fprintf(ui.Out, "%-20s %s\n", output.Cyan(sf.Label()+":"), v)
	}

	for _, lf := range models.ListFields {
		items, _ := draft.List(d, lf)
		fmt.Fprintf(ui.Out, "%s:\n", output.Cyan(lf.Label()))
		for i, v := range items {
			if v == "" {
				v = output.Yellow("(empty)")
			}
			fmt.Fprintf(ui.Out, "  [%d] %s\n", i, v)
		}
	}

	fmt.Fprintln(ui.Out)
	issues := draft.Validate(d)
	if len(issues) == 0 {
		ui.Success("Draft is complete")
		return
	}
	for _, is := range issues {
		ui.Warning("%s", is)
	}
}

// updateDraft loads the draft at path, applies fn and saves the result.
func updateDraft(path string, fn func(models.Draft) (models.Draft, error)) (models.Draft, error) {
	d, err := loadExistingDraft(path)
	if err != nil {
		return models.Draft{}, err
	}
	d, err = fn(d)
	if err != nil {
		return models.Draft{}, err
	}
	if dryRun {
		ui.DryRunMsg("Would write %s", path)
		return d, nil
	}
	if err := draft.Save(path, d); err != nil {
		return models.Draft{}, err
	}
	return d, nil
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q: must be a number", s)
	}
	return i, nil
}

func draftSetRun(path, name, value string) error {
	field, err := draft.ParseScalarField(name)
	if err != nil {
		return err
	}
	if _, err := updateDraft(path, func(d models.Draft) (models.Draft, error) {
		return draft.SetScalar(d, field, value)
	}); err != nil {
		return err
	}
	ui.Success("Set %s", field.Label())
	return nil
}

func draftItemSetRun(path, list, index, value string) error {
	field, err := draft.ParseListField(list)
	if err != nil {
		return err
	}
	i, err := parseIndex(index)
	if err != nil {
		return err
	}
	if _, err := updateDraft(path, func(d models.Draft) (models.Draft, error) {
		return draft.SetListItem(d, field, i, value)
	}); err != nil {
		return err
	}
	ui.Success("Set %s %d", field.ItemLabel(), i+1)
	return nil
}

func draftItemAddRun(path, list, value string) error {
	field, err := draft.ParseListField(list)
	if err != nil {
		return err
	}
	d, err := updateDraft(path, func(d models.Draft) (models.Draft, error) {
		return draft.AppendListItemValue(d, field, value)
	})
	if err != nil {
		return err
	}
	items, _ := draft.List(d, field)
	ui.Success("Added %s %d", field.ItemLabel(), len(items))
	return nil
}

func draftItemRmRun(path, list, index string) error {
	field, err := draft.ParseListField(list)
	if err != nil {
		return err
	}
	i, err := parseIndex(index)
	if err != nil {
		return err
	}
	if _, err := updateDraft(path, func(d models.Draft) (models.Draft, error) {
		return draft.RemoveListItem(d, field, i)
	}); err != nil {
		return err
	}
	ui.Success("Removed %s %d", field.ItemLabel(), i+1)
	return nil
}
