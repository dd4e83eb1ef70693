package fecom

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name string, content string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o644))
	return filename
}

func TestLoadConfigurationDefaults(t *testing.T) {
	config, err := LoadConfiguration("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfiguration(), config)
	assert.NoError(t, config.Validate())
}

func TestLoadConfigurationJSON(t *testing.T) {
	filename := writeConfig(t, "config.json", `{
		"priority": "debug",
		"codec": "msgpack",
		"archive": "sqlite",
		"file_out": "${FECOM_DATA}/out.db",
		"compression": "zstd",
		"compression_level": 19,
		"num_workers": 8,
		"no_db": false,
		"run_number": 1042
	}`)
	config, err := LoadConfiguration(filename)
	require.NoError(t, err)

	assert.Equal(t, PrioDebug, config.Priority)
	assert.Equal(t, MsgpackCodecName, config.Codec)
	assert.Equal(t, ArchiveSQLite, config.Archive)
	assert.Equal(t, "${FECOM_DATA}/out.db", config.FileOut)
	assert.Equal(t, CompressionZstd, config.Compression)
	assert.Equal(t, 19, config.CompressionLevel)
	assert.Equal(t, 8, config.NumWorkers)
	assert.False(t, config.NoDB)
	assert.Equal(t, 1042, config.RunNumber)
	// untouched keys keep their defaults
	assert.Equal(t, "SNEMO_COMMISSIONING", config.DBName)
	assert.Equal(t, 1, config.NumEvents)
}

func TestLoadConfigurationTOML(t *testing.T) {
	filename := writeConfig(t, "config.toml", `
priority = "trace"
codec = "binary"
archive = "file"
file_in = "run.fcar"
env_files = [".env", "site.env"]
compression = "none"
num_events = 100
`)
	config, err := LoadConfiguration(filename)
	require.NoError(t, err)

	assert.Equal(t, PrioTrace, config.Priority)
	assert.Equal(t, ArchiveFile, config.Archive)
	assert.Equal(t, "run.fcar", config.FileIn)
	assert.Equal(t, []string{".env", "site.env"}, config.EnvFiles)
	assert.Equal(t, 100, config.NumEvents)
	assert.Equal(t, "localhost", config.Host)
}

func TestLoadConfigurationErrors(t *testing.T) {
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadConfiguration(writeConfig(t, "bad.json", `{"priority": "loud"}`))
	assert.Error(t, err)

	_, err = LoadConfiguration(writeConfig(t, "bad.toml", `archive = "tape"`))
	assert.Error(t, err)

	_, err = LoadConfiguration(writeConfig(t, "codec.json", `{"codec": "protobuf"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown codec")
}

func TestConfigurationValidate(t *testing.T) {
	config := DefaultConfiguration()
	config.NumWorkers = 0
	config.NumEvents = -1
	config.CompressionLevel = 23
	err := config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "num_workers")
	assert.Contains(t, err.Error(), "num_events")
	assert.Contains(t, err.Error(), "compression_level")

	config = DefaultConfiguration()
	config.Archive = ArchiveHDF5
	config.CompressionLevel = 12
	assert.ErrorContains(t, config.Validate(), "deflate")
}

func TestConfigurationOptions(t *testing.T) {
	config := DefaultConfiguration()
	config.Priority = PrioNotice
	opts := config.Options(NopLogger)
	assert.Equal(t, PrioNotice, opts.Priority)
	assert.True(t, opts.Enabled(PrioWarning))
	assert.False(t, opts.Enabled(PrioInformation))
}
