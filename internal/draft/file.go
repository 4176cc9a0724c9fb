package draft

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/joescharf/crowdfund/internal/models"
)

// Load reads a YAML draft file. Missing lists are seeded with a blank slot.
func Load(path string) (models.Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Draft{}, fmt.Errorf("read draft: %w", err)
	}
	var d models.Draft
	if err := yaml.Unmarshal(data, &d); err != nil {
		return models.Draft{}, fmt.Errorf("parse draft %s: %w", path, err)
	}
	return Clone(d), nil
}

// Save writes d to path as YAML, replacing any existing file.
func Save(path string, d models.Draft) error {
	data, err := yaml.Marshal(Clone(d))
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create draft directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".draft-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write draft: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	return nil
}
