package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joescharf/crowdfund/internal/draft"
	cfmcp "github.com/joescharf/crowdfund/internal/mcp"
)

var (
	mcpDraftFile string
	mcpSave      bool
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for Claude Code integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

The server holds one project draft, loaded from the draft file when it
exists, and lets the client edit, submit and export it. Configure in
Claude Code with:

  {
    "mcpServers": {
      "crowdfund": { "command": "crowdfund", "args": ["mcp"] }
    }
  }

Available tools: crowdfund_show_draft, crowdfund_set_field,
crowdfund_set_list_item, crowdfund_add_list_item,
crowdfund_remove_list_item, crowdfund_submit, crowdfund_export`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcpRun(cmd.Context(), resolveDraftPath(mcpDraftFile), mcpSave)
	},
}

func init() {
	mcpCmd.Flags().StringVarP(&mcpDraftFile, "draft", "f", "", "Draft file (default from config: draft_file)")
	mcpCmd.Flags().BoolVar(&mcpSave, "save", true, "Save the draft back to the draft file when the server stops")
	rootCmd.AddCommand(mcpCmd)
}

// newMCPServer builds the server over holder. Stdout is the transport, so
// nothing here may print to it.
func newMCPServer(holder *draft.Holder) *cfmcp.Server {
	log := getLogger(false)
	return cfmcp.NewServer(holder, newRequester(holder, nil, "", log), newSubmitter(nil, log), buildVersion)
}

func mcpRun(ctx context.Context, path string, save bool) error {
	d, _, err := loadDraft(path)
	if err != nil {
		return err
	}
	holder := draft.NewHolder(d)

	serveErr := newMCPServer(holder).ServeStdio(ctx)
	if save && !dryRun {
		if err := draft.Save(path, holder.Snapshot()); err != nil {
			getLogger(false).Error("save draft", "path", path, "error", err)
		}
	}
	if serveErr != nil && ctx.Err() == nil {
		return serveErr
	}
	return nil
}
