package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/joescharf/crowdfund/internal/draft"
	"github.com/joescharf/crowdfund/internal/export"
	"github.com/joescharf/crowdfund/internal/models"
	"github.com/joescharf/crowdfund/internal/submit"
)

// resolveDraftPath returns the --draft flag value or the configured draft file.
func resolveDraftPath(flag string) string {
	if flag != "" {
		return flag
	}
	return viper.GetString("draft_file")
}

// loadDraft reads the draft file, or returns a fresh draft when it does not exist.
func loadDraft(path string) (models.Draft, bool, error) {
	d, err := draft.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return draft.New(), false, nil
	}
	if err != nil {
		return models.Draft{}, false, err
	}
	return d, true, nil
}

// loadExistingDraft is loadDraft for commands that edit an existing file.
func loadExistingDraft(path string) (models.Draft, error) {
	d, ok, err := loadDraft(path)
	if err != nil {
		return models.Draft{}, err
	}
	if !ok {
		return models.Draft{}, fmt.Errorf("draft file not found: %s (run 'crowdfund draft init' first)", path)
	}
	return d, nil
}

func newExportClient() *export.Client {
	return export.NewClient(viper.GetString("export.base_url"), nil)
}

// newRequester wires the export requester for src. A nil notifier keeps it
// silent, for callers that report results themselves.
func newRequester(src export.DraftSource, n export.Notifier, outDir string, logger *slog.Logger) *export.Requester {
	if outDir == "" {
		outDir = viper.GetString("export.output_dir")
	}

	opts := []export.Option{
		export.WithLogger(logger),
		export.WithTimeout(viper.GetDuration("export.timeout")),
		export.WithStrict(viper.GetBool("submit.strict")),
	}
	if n != nil {
		opts = append(opts, export.WithNotifier(n))
	}
	if s, err := getStore(); err == nil {
		opts = append(opts, export.WithRecorder(s))
	} else {
		logger.Warn("export history disabled", "error", err)
	}

	return export.NewRequester(src, newExportClient(), export.NewFileDownloader(outDir), opts...)
}

func newSubmitter(n submit.Notifier, logger *slog.Logger) *submit.LogSubmitter {
	return submit.NewLogSubmitter(n, logger, viper.GetBool("submit.strict"))
}
