package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/OpenTraceLab/padpainter/internal/logging"
)

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("board", "", "")
	fs.StringSlice("refs", nil, "")
	fs.String("pin-number", "", "")
	fs.String("output", "", "")
	fs.Bool("verbose", false, "")
	fs.String("log-level", "", "")
	return fs
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "padpainter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("KICAD_CONFIG_HOME", "/opt/kicad")
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "/opt/kicad", cfg.ConfigHome)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Empty(t, cfg.FileUsed)
	assert.Empty(t, cfg.Refs)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
board: boards/widget.kicad_pcb
refs: [U1, R1]
units: ["1"]
functions: [I, O]
states: [unconnected]
pin_name: "^IN"
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.FileUsed)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "boards", "widget.kicad_pcb"), cfg.Board)
	assert.Equal(t, []string{"U1", "R1"}, cfg.Refs)
	assert.Equal(t, []string{"1"}, cfg.Units)
	assert.Equal(t, []string{"I", "O"}, cfg.Functions)
	assert.Equal(t, []string{"unconnected"}, cfg.States)
	assert.Equal(t, "^IN", cfg.PinName)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "refs: [U1]\noutput: json\n")
	t.Setenv("PADPAINTER_REFS", "R1, R2")
	t.Setenv("PADPAINTER_OUTPUT", "yaml")
	t.Setenv("PADPAINTER_PIN_NUMBER", "^1$")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"R1", "R2"}, cfg.Refs)
	assert.Equal(t, "yaml", cfg.Output)
	assert.Equal(t, "^1$", cfg.PinNumber)
}

func TestLoadFlagsOverrideEverything(t *testing.T) {
	path := writeConfig(t, "board: a.kicad_pcb\nrefs: [U1]\n")
	t.Setenv("PADPAINTER_OUTPUT", "yaml")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{
		"--board", "b.kicad_pcb", "--refs", "J1,J2", "--pin-number", "^2$", "--output", "json", "--verbose",
	}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)

	assert.Equal(t, "b.kicad_pcb", cfg.Board)
	assert.Equal(t, []string{"J1", "J2"}, cfg.Refs)
	assert.Equal(t, "^2$", cfg.PinNumber)
	assert.Equal(t, "json", cfg.Output)
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.Logging().Development)
}

func TestLoadUnsetFlagsDoNotOverride(t *testing.T) {
	path := writeConfig(t, "output: yaml\n")
	fs := testFlags()
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Output)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadFindsFileInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "padpainter.yml"), []byte("log_level: debug\n"), 0o644))
	t.Chdir(dir)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "padpainter.yml", cfg.FileUsed)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestVerboseEnablesDebugLogging(t *testing.T) {
	t.Chdir(t.TempDir())
	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--verbose"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)

	logger, err := logging.New(cfg.Logging())
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestExplicitLevelBeatsVerbose(t *testing.T) {
	t.Chdir(t.TempDir())

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--verbose", "--log-level", "error"}))
	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)

	t.Setenv("PADPAINTER_LOG_LEVEL", "info")
	fs = testFlags()
	require.NoError(t, fs.Parse([]string{"--verbose"}))
	cfg, err = Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}
