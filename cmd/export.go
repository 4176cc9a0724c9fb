package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/crowdfund/internal/draft"
	"github.com/joescharf/crowdfund/internal/export"
	"github.com/joescharf/crowdfund/internal/output"
)

var (
	exportDraftFile string
	exportOutDir    string
)

var exportCmd = &cobra.Command{
	Use:       "export <PDF|Excel>",
	Short:     "Generate a PDF or Excel document for the draft",
	ValidArgs: []string{"PDF", "Excel"},
	Long: `Send the draft to the document service and save the returned file as
project.pdf or project.xlsx.

The service base URL comes from export.base_url; the request is
POST <base_url>/api/download/<format>. One attempt is made per run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportRun(cmd.Context(), args[0], resolveDraftPath(exportDraftFile), exportOutDir)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportDraftFile, "draft", "f", "", "Draft file (default from config: draft_file)")
	exportCmd.Flags().StringVarP(&exportOutDir, "out", "o", "", "Output directory (default from config: export.output_dir)")
	rootCmd.AddCommand(exportCmd)
}

func exportRun(ctx context.Context, formatArg, path, outDir string) error {
	f, err := export.ParseFormat(formatArg)
	if err != nil {
		names := make([]string, len(export.Formats))
		for i, ef := range export.Formats {
			names[i] = string(ef)
		}
		return fmt.Errorf("%w (use %s)", err, strings.Join(names, " or "))
	}

	d, err := loadExistingDraft(path)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would POST %s and save %s", newExportClient().DownloadURL(f), f.Filename())
		return nil
	}

	req := newRequester(draft.NewHolder(d), ui, outDir, getLogger(true))
	res, err := req.Export(ctx, f)
	if err != nil {
		return err
	}
	ui.Info("%s written (%s)", res.Filename, output.Bytes(int64(res.Bytes)))
	return nil
}
