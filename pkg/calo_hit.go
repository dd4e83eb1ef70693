package fecom

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

// CaloHit is one calorimeter channel readout: the commissioning summary
// words of the front-end plus the raw waveform.
type CaloHit struct {
	BaseHit

	RawTDC                uint64
	LowThreshold          bool
	HighThreshold         bool
	LowThresholdTrigCount uint16
	LowThresholdTimeCount uint32
	FirstCellRead         uint16
	RawBaseline           int16
	RawPeak               int16
	RawPeakCell           uint16
	RawCharge             int32
	RawChargeOverflow     bool
	RawRisingCell         uint16
	RawRisingOffset       uint16
	RawFallingCell        uint16
	RawFallingOffset      uint16

	// nil when the waveform data size is zero
	samples []int16
}

func NewCaloHit() CaloHit {
	return CaloHit{BaseHit: NewBaseHit(HitModeCalorimeter)}
}

func (h CaloHit) Mode() HitMode {
	return HitModeCalorimeter
}

func (CaloHit) isHit() {}

func (h CaloHit) IsValid() bool {
	return h.hasValidBase(HitModeCalorimeter)
}

func (h CaloHit) WaveformDataSize() int {
	return len(h.samples)
}

// SetWaveformDataSize declares the number of samples and resets all of
// them to zero. Samples written before a resize are discarded.
func (h *CaloHit) SetWaveformDataSize(size uint32) {
	if size == 0 {
		h.samples = nil
		return
	}
	h.samples = make([]int16, size)
}

func (h *CaloHit) SetRawSample(index int, value int16) error {
	if index < 0 || index >= len(h.samples) {
		return &IndexOutOfRangeError{Index: index, Size: len(h.samples)}
	}
	h.samples[index] = value
	return nil
}

func (h CaloHit) RawSample(index int) (int16, error) {
	if index < 0 || index >= len(h.samples) {
		return 0, &IndexOutOfRangeError{Index: index, Size: len(h.samples)}
	}
	return h.samples[index], nil
}

// SetRawSamples sets the waveform data size to len(samples) and copies the
// samples in.
func (h *CaloHit) SetRawSamples(samples []int16) {
	h.SetWaveformDataSize(uint32(len(samples)))
	copy(h.samples, samples)
}

// RawSamples returns a copy of the waveform.
func (h CaloHit) RawSamples() []int16 {
	return slices.Clone(h.samples)
}

func (h CaloHit) Clone() CaloHit {
	c := h
	c.samples = slices.Clone(h.samples)
	return c
}

func (h CaloHit) Equal(o CaloHit) bool {
	return h.BaseHit == o.BaseHit &&
		h.RawTDC == o.RawTDC &&
		h.LowThreshold == o.LowThreshold &&
		h.HighThreshold == o.HighThreshold &&
		h.LowThresholdTrigCount == o.LowThresholdTrigCount &&
		h.LowThresholdTimeCount == o.LowThresholdTimeCount &&
		h.FirstCellRead == o.FirstCellRead &&
		h.RawBaseline == o.RawBaseline &&
		h.RawPeak == o.RawPeak &&
		h.RawPeakCell == o.RawPeakCell &&
		h.RawCharge == o.RawCharge &&
		h.RawChargeOverflow == o.RawChargeOverflow &&
		h.RawRisingCell == o.RawRisingCell &&
		h.RawRisingOffset == o.RawRisingOffset &&
		h.RawFallingCell == o.RawFallingCell &&
		h.RawFallingOffset == o.RawFallingOffset &&
		slices.Equal(h.samples, o.samples)
}

const maxDumpedSamples = 16

func (h CaloHit) Dump(w io.Writer, title string, indent string) {
	t := newTreeDump(w, title, indent)
	h.dumpBase(t)
	t.item("Raw TDC", h.RawTDC)
	t.item("Low threshold", h.LowThreshold)
	t.item("High threshold", h.HighThreshold)
	t.item("LT trigger counter", h.LowThresholdTrigCount)
	t.item("LT time counter", h.LowThresholdTimeCount)
	t.item("First cell read", h.FirstCellRead)
	t.item("Raw baseline", h.RawBaseline)
	t.item("Raw peak", fmt.Sprintf("%d (cell %d)", h.RawPeak, h.RawPeakCell))
	t.item("Raw charge", fmt.Sprintf("%d (overflow %t)", h.RawCharge, h.RawChargeOverflow))
	t.item("Raw rising", fmt.Sprintf("cell %d offset %d", h.RawRisingCell, h.RawRisingOffset))
	t.item("Raw falling", fmt.Sprintf("cell %d offset %d", h.RawFallingCell, h.RawFallingOffset))
	t.item("Waveform data size", len(h.samples))
	t.last("Raw waveform", formatSamples(h.samples))
}

func formatSamples(samples []int16) string {
	if len(samples) == 0 {
		return "<none>"
	}
	n := min(len(samples), maxDumpedSamples)
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("%d", samples[i])
	}
	s := strings.Join(parts, " ")
	if len(samples) > n {
		s += fmt.Sprintf(" ... (%d more)", len(samples)-n)
	}
	return s
}
