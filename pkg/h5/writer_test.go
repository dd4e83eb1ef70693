//go:build hdf5

package h5

import (
	"path/filepath"
	"testing"

	"github.com/jmbenlloch/go-hdf5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	fecom "github.com/supernemo-dbd/fecom_go/pkg"
)

func datasetLength(t *testing.T, file *hdf5.File, name string) uint {
	t.Helper()
	dset, err := file.OpenDataset(name)
	require.NoError(t, err)
	defer dset.Close()
	space := dset.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	require.NoError(t, err)
	require.Len(t, dims, 1)
	return dims[0]
}

func TestWriterExportsEvents(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "events.h5")
	w, err := NewWriter(filename, Options{CompressionLevel: 4})
	require.NoError(t, err)

	for trigger := uint32(0); trigger < 3; trigger++ {
		event, err := fecom.NewReferenceEvent(trigger)
		require.NoError(t, err)
		require.NoError(t, w.WriteEvent(event))
	}
	require.NoError(t, w.WriteEvent(fecom.NewCommissioningEvent(3)))
	assert.Equal(t, 4, w.EvtCounter)
	assert.Equal(t, 3, w.CaloHitCounter)
	assert.Equal(t, 3*fecom.ReferenceTrackerHits, w.TrackerCounter)
	assert.Equal(t, 3*fecom.ReferenceWaveformSize, w.SampleCounter)
	require.NoError(t, w.Close())

	file, err := hdf5.OpenFile(filename, hdf5.F_ACC_RDONLY)
	require.NoError(t, err)
	defer file.Close()

	assert.Equal(t, uint(4), datasetLength(t, file, "/Run/events"))
	assert.Equal(t, uint(3), datasetLength(t, file, "/Calo/hits"))
	assert.Equal(t, uint(3*fecom.ReferenceTrackerHits), datasetLength(t, file, "/Tracker/hits"))
	assert.Equal(t, uint(3*fecom.ReferenceWaveformSize), datasetLength(t, file, "/Calo/waveforms"))

	dset, err := file.OpenDataset("/Calo/waveforms")
	require.NoError(t, err)
	defer dset.Close()
	samples := make([]int16, 3*fecom.ReferenceWaveformSize)
	require.NoError(t, dset.Read(&samples))
	for _, s := range samples {
		assert.Equal(t, int16(fecom.ReferenceSampleValue), s)
	}
}

func TestWriterArchiveAdapter(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "events.h5")
	w, err := NewWriter(filename, Options{})
	require.NoError(t, err)

	codec := fecom.NewBinaryCodec(fecom.Options{})
	writer := fecom.NewEventWriter(codec, w.Archive(codec), fecom.Options{})
	event, err := fecom.NewReferenceEvent(12)
	require.NoError(t, err)
	require.NoError(t, writer.Write(event))
	assert.ErrorIs(t, writer.StoreRecord([]byte("garbage")), fecom.ErrCorruptedStream)
	require.NoError(t, writer.Close())
	assert.Equal(t, 1, w.EvtCounter)
}

func TestTrackerRowTruncatesTimestampType(t *testing.T) {
	hit := fecom.NewReferenceTrackerHit(1, 0)
	hit.TimestampType = "a_rather_long_timestamp_type"
	row := trackerRow(hit)
	assert.Len(t, row.timestamp_type, STRLEN)
}
