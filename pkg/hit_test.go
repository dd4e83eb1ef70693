package fecom

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHitsAreInvalid(t *testing.T) {
	calo := NewCaloHit()
	assert.False(t, calo.IsValid())
	assert.Equal(t, InvalidHitID, calo.HitID)
	assert.Equal(t, InvalidTriggerID, calo.TriggerID)
	assert.Equal(t, HitModeCalorimeter, calo.HitMode)
	assert.Equal(t, 0, calo.WaveformDataSize())

	tracker := NewTrackerChannelHit()
	assert.False(t, tracker.IsValid())
	assert.Equal(t, HitModeTracker, tracker.Mode())
	assert.Equal(t, InvalidChannel, tracker.ChannelType)
}

func TestHitValidity(t *testing.T) {
	calo := NewCaloHit()
	calo.HitID = 1
	assert.False(t, calo.IsValid())
	calo.TriggerID = 12
	assert.True(t, calo.IsValid())

	tracker := NewTrackerChannelHit()
	tracker.HitID = 1
	tracker.TriggerID = 12
	assert.False(t, tracker.IsValid(), "channel type not set")
	tracker.ChannelType = CathodicChannel
	assert.True(t, tracker.IsValid())
}

func TestCaloHitSamples(t *testing.T) {
	hit := NewCaloHit()
	hit.SetWaveformDataSize(16)
	assert.Equal(t, 16, hit.WaveformDataSize())

	for i := 0; i < 16; i++ {
		require.NoError(t, hit.SetRawSample(i, int16(i*3)))
	}
	v, err := hit.RawSample(15)
	require.NoError(t, err)
	assert.Equal(t, int16(45), v)

	err = hit.SetRawSample(16, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	var indexErr *IndexOutOfRangeError
	require.True(t, errors.As(err, &indexErr))
	assert.Equal(t, 16, indexErr.Index)
	assert.Equal(t, 16, indexErr.Size)

	_, err = hit.RawSample(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestCaloHitResizeClearsSamples(t *testing.T) {
	hit := NewCaloHit()
	hit.SetRawSamples([]int16{1, 2, 3, 4})
	hit.SetWaveformDataSize(8)
	assert.Equal(t, make([]int16, 8), hit.RawSamples())

	hit.SetWaveformDataSize(0)
	assert.Equal(t, 0, hit.WaveformDataSize())
	assert.ErrorIs(t, hit.SetRawSample(0, 1), ErrIndexOutOfRange)
}

func TestCaloHitCloneIsIndependent(t *testing.T) {
	hit := NewReferenceCaloHit(12)
	c := hit.Clone()
	require.True(t, hit.Equal(c))

	require.NoError(t, c.SetRawSample(0, -5))
	assert.False(t, hit.Equal(c))
	v, err := hit.RawSample(0)
	require.NoError(t, err)
	assert.Equal(t, int16(ReferenceSampleValue), v)

	samples := hit.RawSamples()
	samples[1] = 0
	v, _ = hit.RawSample(1)
	assert.Equal(t, int16(ReferenceSampleValue), v)
}

func TestReferenceCaloHit(t *testing.T) {
	hit := NewReferenceCaloHit(12)
	assert.True(t, hit.IsValid())
	assert.Equal(t, uint64(ReferenceCaloHitID), hit.HitID)
	assert.Equal(t, uint32(12), hit.TriggerID)
	assert.Equal(t, ReferenceWaveformSize, hit.WaveformDataSize())
	require.Len(t, hit.RawSamples(), int(ReferenceWaveformSize))
	for _, s := range hit.RawSamples() {
		assert.Equal(t, int16(ReferenceSampleValue), s)
	}
}

func TestChannelTypeText(t *testing.T) {
	c, err := ParseChannelType("anodic")
	require.NoError(t, err)
	assert.Equal(t, AnodicChannel, c)

	_, err = ParseChannelType("invalid")
	assert.Error(t, err)

	data, err := json.Marshal(struct {
		Type ChannelType `json:"type"`
	}{CathodicChannel})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"cathodic"}`, string(data))

	_, err = InvalidChannel.MarshalText()
	assert.Error(t, err)
}

func TestHitModeJSON(t *testing.T) {
	data, err := json.Marshal(HitModeTracker)
	require.NoError(t, err)
	assert.Equal(t, `"tracker"`, string(data))

	var mode HitMode
	require.NoError(t, json.Unmarshal([]byte(`"calorimeter"`), &mode))
	assert.Equal(t, HitModeCalorimeter, mode)
	assert.Error(t, json.Unmarshal([]byte(`"pmt"`), &mode))
}

func TestCaloHitDump(t *testing.T) {
	var sb strings.Builder
	hit := NewReferenceCaloHit(12)
	hit.Dump(&sb, "Calo hit", "  ")

	out := sb.String()
	assert.True(t, strings.HasPrefix(out, "  Calo hit\n"))
	assert.Contains(t, out, "|-- Hit ID")
	assert.Contains(t, out, ": 42\n")
	assert.Contains(t, out, "`-- Raw waveform")
	assert.Contains(t, out, strings.TrimSpace(strings.Repeat("23 ", 16)))
}

func TestTrackerHitDump(t *testing.T) {
	var sb strings.Builder
	hit := NewReferenceTrackerHit(12, 6)
	hit.Dump(&sb, "", "")

	out := sb.String()
	assert.Contains(t, out, "cathodic")
	assert.Contains(t, out, "t6")
	assert.Contains(t, out, "`-- Timestamp value")
	assert.Contains(t, out, ": 252\n")
}

func TestFormatSamplesTruncates(t *testing.T) {
	samples := make([]int16, maxDumpedSamples+4)
	assert.Contains(t, formatSamples(samples), "(4 more)")
	assert.Equal(t, "<none>", formatSamples(nil))
}
