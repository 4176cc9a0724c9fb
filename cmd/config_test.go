package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/crowdfund/internal/output"
)

// testEnv sets up isolated config dir, viper, store, log and output for testing.
// Output is captured in the returned buffer.
func testEnv(t *testing.T) (string, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()

	// Override configDirFunc for tests
	origFunc := configDirFunc
	configDirFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() { configDirFunc = origFunc })

	// Reset viper
	viper.Reset()
	setDefaults(dir)
	viper.Set("draft_file", filepath.Join(dir, "draft.yaml"))
	viper.Set("export.output_dir", filepath.Join(dir, "out"))

	// Fresh shared state
	closeDeps()
	t.Cleanup(closeDeps)
	dryRun = false
	verbose = false
	configForce = false
	draftForce = false

	// Initialize output
	var buf bytes.Buffer
	ui = output.New()
	ui.Out = &buf
	ui.ErrOut = &buf

	return dir, &buf
}

func TestConfigInit_CreatesFile(t *testing.T) {
	dir, _ := testEnv(t)

	err := configInitRun()
	require.NoError(t, err)

	cfgPath := filepath.Join(dir, "config.yaml")
	_, err = os.Stat(cfgPath)
	assert.NoError(t, err, "config file should exist")

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "crowdfund configuration")
	assert.Contains(t, string(data), "base_url: \"http://localhost:8080\"")
	assert.Contains(t, string(data), "timeout: \"30s\"")
}

func TestConfigInit_RefusesOverwrite(t *testing.T) {
	dir, _ := testEnv(t)

	// Create existing file
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("existing"), 0644))

	configForce = false
	err := configInitRun()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestConfigInit_ForceOverwrite(t *testing.T) {
	dir, _ := testEnv(t)

	// Create existing file
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("existing"), 0644))

	configForce = true
	err := configInitRun()
	require.NoError(t, err)

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "crowdfund configuration")
}

func TestConfigShow_NoFile(t *testing.T) {
	_, _ = testEnv(t)

	err := configShowRun()
	assert.NoError(t, err)
}

func TestConfigShow_WithFile(t *testing.T) {
	_, buf := testEnv(t)

	// Create config first
	configForce = false
	require.NoError(t, configInitRun())
	buf.Reset()

	err := configShowRun()
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "export.base_url")
	assert.Contains(t, buf.String(), "(file)")
}

func TestConfigShow_EnvSource(t *testing.T) {
	_, buf := testEnv(t)
	t.Setenv("CROWDFUND_EXPORT_BASE_URL", "http://docs.internal:9000")
	viper.SetEnvPrefix("CROWDFUND")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	require.NoError(t, configShowRun())
	assert.Contains(t, buf.String(), "http://docs.internal:9000")
	assert.Contains(t, buf.String(), "(env: CROWDFUND_EXPORT_BASE_URL)")
}

func TestConfigEdit_NoEditor(t *testing.T) {
	_, _ = testEnv(t)

	// Unset EDITOR and VISUAL
	origEditor := os.Getenv("EDITOR")
	origVisual := os.Getenv("VISUAL")
	_ = os.Unsetenv("EDITOR")
	_ = os.Unsetenv("VISUAL")
	t.Cleanup(func() {
		if origEditor != "" {
			_ = os.Setenv("EDITOR", origEditor)
		}
		if origVisual != "" {
			_ = os.Setenv("VISUAL", origVisual)
		}
	})

	err := configEditRun()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "$EDITOR is not set")
}

func TestConfigEdit_NoConfigFile(t *testing.T) {
	_, _ = testEnv(t)

	_ = os.Setenv("EDITOR", "echo") // harmless command
	t.Cleanup(func() { _ = os.Unsetenv("EDITOR") })

	err := configEditRun()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDetectSource(t *testing.T) {
	fileValues := map[string]bool{"key_a": true}

	// From env
	os.Setenv("CROWDFUND_TEST_KEY", "val")
	defer os.Unsetenv("CROWDFUND_TEST_KEY")
	assert.Contains(t, detectSource("test_key", "CROWDFUND_TEST_KEY", fileValues), "env")

	// From file
	assert.Contains(t, detectSource("key_a", "CROWDFUND_KEY_A_NONEXISTENT", fileValues), "file")

	// Default
	assert.Contains(t, detectSource("key_b", "CROWDFUND_KEY_B_NONEXISTENT", fileValues), "default")
}

func TestFlattenKeys(t *testing.T) {
	input := map[string]any{
		"top": "val",
		"nested": map[string]any{
			"a": "1",
			"b": "2",
		},
	}

	result := make(map[string]bool)
	flattenKeys("", input, result)

	assert.True(t, result["top"])
	assert.True(t, result["nested.a"])
	assert.True(t, result["nested.b"])
	assert.False(t, result["nested"])
}

func TestConfigInit_DryRun(t *testing.T) {
	dir, _ := testEnv(t)
	dryRun = true
	ui.DryRun = true
	defer func() { dryRun = false }()

	err := configInitRun()
	require.NoError(t, err)

	// File should NOT have been created
	cfgPath := filepath.Join(dir, "config.yaml")
	_, err = os.Stat(cfgPath)
	assert.True(t, os.IsNotExist(err), "config file should not exist in dry-run mode")
}
