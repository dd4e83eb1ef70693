package fecom

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	sqlx "github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLiteArchive(t *testing.T, path string, opts SQLiteArchiveOptions) *SQLiteArchive {
	t.Helper()
	a, err := OpenSQLiteArchive(path, opts)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestSQLiteArchiveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")
	w := openTestSQLiteArchive(t, path, SQLiteArchiveOptions{Codec: BinaryCodecName})
	assert.NotEmpty(t, w.RunID())
	assert.Equal(t, path, w.Path())

	records := [][]byte{[]byte("a"), []byte("bb"), []byte("ccc")}
	for _, record := range records {
		require.NoError(t, w.Store(record))
	}
	require.NoError(t, w.Close())

	r := openTestSQLiteArchive(t, path, SQLiteArchiveOptions{Codec: BinaryCodecName})
	assert.Equal(t, records, readAllRecords(t, r))

	_, err := r.Load()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSQLiteArchiveRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")

	first := openTestSQLiteArchive(t, path, SQLiteArchiveOptions{Codec: MsgpackCodecName})
	require.NoError(t, first.Store([]byte("run1-0")))
	require.NoError(t, first.Store([]byte("run1-1")))
	require.NoError(t, first.Close())

	second := openTestSQLiteArchive(t, path, SQLiteArchiveOptions{Codec: MsgpackCodecName})
	require.NoError(t, second.Store([]byte("run2-0")))
	require.NoError(t, second.Close())
	assert.NotEqual(t, first.RunID(), second.RunID())

	all := openTestSQLiteArchive(t, path, SQLiteArchiveOptions{})
	runs, err := all.Runs()
	require.NoError(t, err)
	assert.Equal(t, []string{first.RunID(), second.RunID()}, runs)
	assert.Equal(t, [][]byte{[]byte("run1-0"), []byte("run1-1"), []byte("run2-0")}, readAllRecords(t, all))

	only := openTestSQLiteArchive(t, path, SQLiteArchiveOptions{Codec: MsgpackCodecName, RunID: second.RunID()})
	assert.Equal(t, [][]byte{[]byte("run2-0")}, readAllRecords(t, only))
}

func TestSQLiteArchiveCodecMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")
	w := openTestSQLiteArchive(t, path, SQLiteArchiveOptions{Codec: BinaryCodecName})
	require.NoError(t, w.Store([]byte("x")))
	require.NoError(t, w.Close())

	r := openTestSQLiteArchive(t, path, SQLiteArchiveOptions{Codec: MsgpackCodecName})
	_, err := r.Load()
	require.ErrorIs(t, err, ErrCorruptedStream)
	assert.Contains(t, err.Error(), `written with codec "binary"`)
}

func TestSQLiteArchiveMigrationsRunOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")
	a := openTestSQLiteArchive(t, path, SQLiteArchiveOptions{})
	require.NoError(t, a.Close())

	b := openTestSQLiteArchive(t, path, SQLiteArchiveOptions{})
	var versions []int
	require.NoError(t, b.db.Select(&versions, "SELECT version FROM schema_migrations"))
	assert.Equal(t, []int{1}, versions)
}

func TestSQLiteArchiveWithEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")
	c := NewMsgpackCodec(Options{})

	archive := openTestSQLiteArchive(t, path, SQLiteArchiveOptions{Codec: c.Name()})
	w := NewEventWriter(c, archive, Options{})
	events := referenceEvents(t, 4)
	for _, event := range events {
		require.NoError(t, w.Write(event))
	}
	require.NoError(t, w.Close())

	in := openTestSQLiteArchive(t, path, SQLiteArchiveOptions{Codec: c.Name(), RunID: archive.RunID()})
	r := NewEventReader(c, in, Options{})
	for i := range events {
		event, err := r.Read()
		require.NoError(t, err)
		assert.True(t, events[i].Equal(event))
	}
	_, err := r.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSQLiteArchiveReaderMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.db")

	r, err := OpenSQLiteArchiveReader(path, SQLiteArchiveOptions{})
	assert.Nil(t, r)
	var openErr *ErrOpenFile
	require.True(t, errors.As(err, &openErr))
	assert.Equal(t, path, openErr.Filename)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no database created on disk")
}

func TestSQLiteArchiveReaderReadsExistingRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")
	w := openTestSQLiteArchive(t, path, SQLiteArchiveOptions{Codec: BinaryCodecName})
	require.NoError(t, w.Store([]byte("a")))
	require.NoError(t, w.Store([]byte("b")))
	require.NoError(t, w.Close())

	r, err := OpenSQLiteArchiveReader(path, SQLiteArchiveOptions{Codec: BinaryCodecName, RunID: w.RunID()})
	require.NoError(t, err)
	defer r.Close()
	assert.Empty(t, r.RunID())
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, readAllRecords(t, r))

	assert.ErrorContains(t, r.Store([]byte("c")), "read only")
}

func TestSQLiteArchiveReaderRejectsForeignDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foreign.db")
	db, err := sqlx.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE something (id INTEGER)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = OpenSQLiteArchiveReader(path, SQLiteArchiveOptions{})
	require.ErrorIs(t, err, ErrCorruptedStream)
	assert.Contains(t, err.Error(), "no records table")
}
