package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rpgo/tax-engine/internal/config"
	"github.com/rpgo/tax-engine/internal/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with a missing env file so a stray ./.env cannot leak in
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func exampleFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, output.SaveConfiguration(config.NewInputParser().CreateExampleConfiguration(), path))
	return path
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "taxengine", cmd.Use)
	assert.Contains(t, cmd.Long, "marginal rate")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"calc", "rate-hike", "claiming", "montecarlo", "example"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "f", formatFlag.Shorthand)
	assert.Equal(t, "console", formatFlag.DefValue)

	outputFlag := cmd.PersistentFlags().Lookup("output-dir")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "", outputFlag.DefValue)

	for _, name := range []string{"workers", "log-level", "log-format", "metrics-file", "env-file"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestMonteCarloCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	mcCmd, _, err := cmd.Find([]string{"montecarlo"})
	require.NoError(t, err)

	trialsFlag := mcCmd.Flags().Lookup("trials")
	require.NotNil(t, trialsFlag)
	assert.Equal(t, "n", trialsFlag.Shorthand)
	assert.Equal(t, "500", trialsFlag.DefValue)
	assert.NotNil(t, mcCmd.Flags().Lookup("seed"))
	assert.NotNil(t, mcCmd.Flags().Lookup("time-limit"))
}

func TestRateHikeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	rhCmd, _, err := cmd.Find([]string{"rate-hike"})
	require.NoError(t, err)

	limitFlag := rhCmd.Flags().Lookup("limit")
	require.NotNil(t, limitFlag)
	assert.Equal(t, "200000", limitFlag.DefValue)
	stepFlag := rhCmd.Flags().Lookup("step")
	require.NotNil(t, stepFlag)
	assert.Equal(t, "500", stepFlag.DefValue)
}

func TestUnsupportedFormat(t *testing.T) {
	_, _, err := run(t, "--format", "html", "calc", exampleFile(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, output.ErrUnsupportedFormat))
}

func TestFormatAllNeedsOutputDir(t *testing.T) {
	_, _, err := run(t, "--format", "all", "calc", exampleFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output-dir")
}

func TestNegativeWorkers(t *testing.T) {
	_, _, err := run(t, "--workers", "-1", "calc", exampleFile(t))
	require.Error(t, err)
}

func TestInvalidLogLevelFromEnvironment(t *testing.T) {
	t.Setenv("TAXENGINE_LOG_LEVEL", "loud")
	_, _, err := run(t, "calc", exampleFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TAXENGINE_LOG_LEVEL")
}

func TestMetricsFile(t *testing.T) {
	metricsPath := filepath.Join(t.TempDir(), "taxengine.prom")
	_, _, err := run(t, "--metrics-file", metricsPath, "--format", "console-lite", "calc", exampleFile(t))
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "taxengine_")
}

func TestVerboseLogsToStderr(t *testing.T) {
	stdout, stderr, err := run(t, "-v", "--format", "console-lite", "calc", exampleFile(t))
	require.NoError(t, err)
	assert.Contains(t, stdout, "Total tax")
	assert.Contains(t, stderr, "scenario loaded")
}
