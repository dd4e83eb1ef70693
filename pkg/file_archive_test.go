package fecom

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestArchive(t *testing.T, compression Compression, records [][]byte) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "events.fcar")
	w, err := CreateFileArchive(filename, FileArchiveOptions{Compression: compression, CompressionLevel: 3})
	require.NoError(t, err)
	for _, record := range records {
		require.NoError(t, w.Store(record))
	}
	require.NoError(t, w.Close())
	return filename
}

func readAllRecords(t *testing.T, r ArchiveReader) [][]byte {
	t.Helper()
	var records [][]byte
	for {
		record, err := r.Load()
		if errors.Is(err, io.EOF) {
			return records
		}
		require.NoError(t, err)
		records = append(records, record)
	}
}

func TestFileArchiveRoundTrip(t *testing.T) {
	records := [][]byte{
		[]byte("first record"),
		{},
		[]byte("third record, a bit longer than the others"),
	}
	for _, compression := range []Compression{CompressionNone, CompressionZstd} {
		t.Run(compression.String(), func(t *testing.T) {
			filename := writeTestArchive(t, compression, records)

			r, err := OpenFileArchive(filename, Options{})
			require.NoError(t, err)
			defer r.Close()
			assert.Equal(t, compression, r.Compression())

			got := readAllRecords(t, r)
			require.Len(t, got, len(records))
			for i := range records {
				assert.Equal(t, string(records[i]), string(got[i]))
			}

			// EOF is sticky
			_, err = r.Load()
			assert.ErrorIs(t, err, io.EOF)
		})
	}
}

func TestFileArchiveEmpty(t *testing.T) {
	filename := writeTestArchive(t, CompressionNone, nil)
	r, err := OpenFileArchive(filename, Options{})
	require.NoError(t, err)
	defer r.Close()
	_, err = r.Load()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFileArchiveDetectsCorruption(t *testing.T) {
	filename := writeTestArchive(t, CompressionNone, [][]byte{[]byte("payload")})
	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	require.NoError(t, os.WriteFile(filename, data, 0o644))

	r, err := OpenFileArchive(filename, Options{})
	require.NoError(t, err)
	defer r.Close()
	_, err = r.Load()
	require.ErrorIs(t, err, ErrCorruptedStream)
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestFileArchiveDetectsTruncatedFrame(t *testing.T) {
	filename := writeTestArchive(t, CompressionZstd, [][]byte{[]byte("one"), []byte("two")})
	info, err := os.Stat(filename)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(filename, info.Size()-2))

	r, err := OpenFileArchive(filename, Options{})
	require.NoError(t, err)
	defer r.Close()

	record, err := r.Load()
	require.NoError(t, err)
	assert.Equal(t, "one", string(record))

	_, err = r.Load()
	require.ErrorIs(t, err, ErrCorruptedStream)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestOpenFileArchiveRejectsForeignFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "foreign")
	require.NoError(t, os.WriteFile(filename, []byte("NOTANARCHIVE"), 0o644))
	_, err := OpenFileArchive(filename, Options{})
	require.ErrorIs(t, err, ErrCorruptedStream)
	assert.Contains(t, err.Error(), "bad magic")

	_, err = OpenFileArchive(filepath.Join(t.TempDir(), "missing"), Options{})
	var openErr *ErrOpenFile
	assert.True(t, errors.As(err, &openErr))
}

func TestEventWriterReader(t *testing.T) {
	for _, c := range testCodecs() {
		t.Run(c.Name(), func(t *testing.T) {
			filename := filepath.Join(t.TempDir(), "events.fcar")
			archive, err := CreateFileArchive(filename, FileArchiveOptions{Compression: CompressionZstd})
			require.NoError(t, err)

			w := NewEventWriter(c, archive, Options{})
			events := referenceEvents(t, 10)
			for _, event := range events {
				require.NoError(t, w.Write(event))
			}
			assert.Equal(t, len(events), w.Count())
			require.NoError(t, w.Close())

			in, err := OpenFileArchive(filename, Options{})
			require.NoError(t, err)
			r := NewEventReader(c, in, Options{})
			defer r.Close()

			i := 0
			for event, err := range r.Events() {
				require.NoError(t, err)
				assert.True(t, events[i].Equal(event), "event %d", i)
				i++
			}
			assert.Equal(t, len(events), i)
			assert.Equal(t, len(events), r.Count())
		})
	}
}

func TestEventReaderWrongCodec(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "events.fcar")
	archive, err := CreateFileArchive(filename, FileArchiveOptions{})
	require.NoError(t, err)
	w := NewEventWriter(NewBinaryCodec(Options{}), archive, Options{})
	require.NoError(t, w.Write(NewCommissioningEvent(1)))
	require.NoError(t, w.Close())

	in, err := OpenFileArchive(filename, Options{})
	require.NoError(t, err)
	logger := &recordingLogger{}
	r := NewEventReader(NewMsgpackCodec(Options{}), in, Options{Logger: logger, Priority: PrioError})
	defer r.Close()

	var errs []error
	for event, err := range r.Events() {
		assert.Nil(t, event)
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrCorruptedStream)
	assert.Len(t, logger.errors, 1)
}
