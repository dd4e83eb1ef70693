//go:build hdf5

package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns what it printed.
// Flags keep their values between runs, so every test sets the ones it
// relies on.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	logger = NewLogger(&logs, &logs, slog.LevelDebug)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "fecom.toml")
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o644))
	return filename
}

func TestMapCommand(t *testing.T) {
	out, err := execute(t, "map", "--config", "", "--table", "", "--type", "geiger", "--side", "0", "--layer", "0", "--row", "56")
	require.NoError(t, err)
	assert.Contains(t, out, "[geiger side=0 layer=0 row=56] -> [rack=5 crate=1 board=9 channel=0]")
	assert.Contains(t, out, "control board: [rack=5 crate=1 board=10 channel=0] (type 666)")

	out, err = execute(t, "map", "--config", "", "--table", "", "--type", "trigger", "--column", "3")
	require.NoError(t, err)
	assert.Equal(t, "[trigger input=3] -> [rack=3 crate=2 board=20 channel=3]\n", out)

	_, err = execute(t, "map", "--config", "", "--table", "", "--type", "geiger", "--row", "113")
	assert.Error(t, err)
}

func TestMapCommandTable(t *testing.T) {
	out, err := execute(t, "map", "--config", "", "--table", "trigger")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 17)
	assert.Equal(t, "16 trigger channels", lines[16])
}

func TestWriteReadFileArchive(t *testing.T) {
	output := filepath.Join(t.TempDir(), "events.fcar")
	config := writeTestConfig(t, `
codec = "msgpack"
archive = "file"
compression = "zstd"
num_workers = 4
`)
	out, err := execute(t, "write", "--config", config, "-o", output, "-n", "5", "--first-trigger", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "5 events written to "+output)

	out, err = execute(t, "read", "--config", config, "-i", output, "--dump=true", "--max", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Commissioning event #4")
	assert.Contains(t, out, "5 events read from "+output+": 5 calo hits, 35 tracker hits")
}

func TestWriteReadSQLiteArchive(t *testing.T) {
	output := filepath.Join(t.TempDir(), "events.db")
	config := writeTestConfig(t, `
codec = "binary"
archive = "sqlite"
`)
	_, err := execute(t, "write", "--config", config, "-o", output, "-n", "3", "--first-trigger", "12")
	require.NoError(t, err)

	out, err := execute(t, "read", "--config", config, "-i", output, "--dump=false", "--max", "2")
	require.NoError(t, err)
	assert.NotContains(t, out, "Commissioning event")
	assert.Contains(t, out, "2 events read from "+output)
}

func TestReadHDF5IsRejected(t *testing.T) {
	config := writeTestConfig(t, `archive = "hdf5"`)
	_, err := execute(t, "read", "--config", config, "-i", "events.h5", "--max", "0")
	assert.ErrorContains(t, err, "export only")
}

func TestValidateMapNeedsDatabase(t *testing.T) {
	_, err := execute(t, "validate-map", "--config", "")
	assert.ErrorContains(t, err, "no_db")
}

func TestReadMissingSQLiteArchive(t *testing.T) {
	config := writeTestConfig(t, `archive = "sqlite"`)
	input := filepath.Join(t.TempDir(), "typo.db")
	_, err := execute(t, "read", "--config", config, "-i", input, "--max", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "typo.db")
	_, statErr := os.Stat(input)
	assert.True(t, os.IsNotExist(statErr))
}
