package fecom

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathResolverEnvironment(t *testing.T) {
	t.Setenv("FECOM_DATA", "/data/commissioning")
	p, err := NewPathResolver()
	require.NoError(t, err)

	resolved, err := p.Resolve("${FECOM_DATA}/run_$RUN_SUFFIX.fcar")
	require.Error(t, err)
	assert.Empty(t, resolved)
	assert.Contains(t, err.Error(), `"RUN_SUFFIX"`)

	resolved, err = p.Resolve("${FECOM_DATA}/run_12.fcar")
	require.NoError(t, err)
	assert.Equal(t, "/data/commissioning/run_12.fcar", resolved)

	resolved, err = p.Resolve("plain/path.fcar")
	require.NoError(t, err)
	assert.Equal(t, "plain/path.fcar", resolved)
}

func TestPathResolverDotenv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FECOM_TEST_DIR=/from/file\nFECOM_TEST_RUN=7\n"), 0o644))
	t.Setenv("FECOM_TEST_RUN", "8")

	p, err := NewPathResolver(envFile)
	require.NoError(t, err)

	v, ok := p.Lookup("FECOM_TEST_DIR")
	assert.True(t, ok)
	assert.Equal(t, "/from/file", v)

	resolved, err := p.Resolve("$FECOM_TEST_DIR/run_${FECOM_TEST_RUN}.db")
	require.NoError(t, err)
	assert.Equal(t, "/from/file/run_8.db", resolved, "process environment wins")
}

func TestPathResolverMissingEnvFile(t *testing.T) {
	_, err := NewPathResolver(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
