// Package h5 exports commissioning events to HDF5 tables for offline
// analysis. Files are written only; events are read back through the
// archive formats of package fecom.
package h5

import (
	"errors"
	"fmt"

	"github.com/jmbenlloch/go-hdf5"
	fecom "github.com/supernemo-dbd/fecom_go/pkg"
)

type EventHDF5 struct {
	trigger_id   uint32
	calo_hits    int32
	tracker_hits int32
}

type CaloHitHDF5 struct {
	trigger_id               uint32
	hit_id                   uint64
	hit_mode                 uint8
	slot_index               uint16
	channel                  int16
	raw_tdc                  uint64
	low_threshold            uint8
	high_threshold           uint8
	low_threshold_trig_count uint16
	low_threshold_time_count uint32
	fcr                      uint16
	raw_baseline             int16
	raw_peak                 int16
	raw_peak_cell            uint16
	raw_charge               int32
	raw_charge_overflow      uint8
	raw_rising_cell          uint16
	raw_rising_offset        uint16
	raw_falling_cell         uint16
	raw_falling_offset       uint16
	waveform_offset          uint64
	waveform_size            uint32
}

type TrackerHitHDF5 struct {
	trigger_id      uint32
	hit_id          uint64
	hit_mode        uint8
	slot_index      uint16
	channel         int16
	feast_id        uint16
	channel_type    uint8
	timestamp_type  string
	timestamp_value uint64
}

type Options struct {
	fecom.Options
	// Deflate level of every dataset, 0 disables compression.
	CompressionLevel int
}

type Writer struct {
	File            *hdf5.File
	Filename        string
	RunGroup        *hdf5.Group
	CaloGroup       *hdf5.Group
	TrackerGroup    *hdf5.Group
	EventTable      *hdf5.Dataset
	CaloHitTable    *hdf5.Dataset
	Waveforms       *hdf5.Dataset
	TrackerHitTable *hdf5.Dataset
	EvtCounter      int
	CaloHitCounter  int
	TrackerCounter  int
	SampleCounter   int
	opts            Options
}

func NewWriter(filename string, opts Options) (*Writer, error) {
	// Set string size for HDF5
	hdf5.SetStringLength(STRLEN)

	w := &Writer{Filename: filename, opts: opts}
	var err error
	if w.File, err = openFile(filename); err != nil {
		return nil, err
	}

	steps := []func() error{
		func() (err error) { w.RunGroup, err = createGroup(w.File, "Run"); return },
		func() (err error) { w.CaloGroup, err = createGroup(w.File, "Calo"); return },
		func() (err error) { w.TrackerGroup, err = createGroup(w.File, "Tracker"); return },
		func() (err error) {
			w.EventTable, err = createTable(w.RunGroup, "events", EventHDF5{}, opts.CompressionLevel)
			return
		},
		func() (err error) {
			w.CaloHitTable, err = createTable(w.CaloGroup, "hits", CaloHitHDF5{}, opts.CompressionLevel)
			return
		},
		func() (err error) {
			w.Waveforms, err = createSampleArray(w.CaloGroup, "waveforms", opts.CompressionLevel)
			return
		},
		func() (err error) {
			w.TrackerHitTable, err = createTable(w.TrackerGroup, "hits", TrackerHitHDF5{}, opts.CompressionLevel)
			return
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, errors.Join(err, w.Close())
		}
	}
	w.info(fmt.Sprintf("hdf5writer: created file %s", filename), fecom.PrioInformation)
	return w, nil
}

func caloRow(hit fecom.CaloHit, offset int) CaloHitHDF5 {
	return CaloHitHDF5{
		trigger_id:               hit.TriggerID,
		hit_id:                   hit.HitID,
		hit_mode:                 uint8(hit.HitMode),
		slot_index:               hit.SlotIndex,
		channel:                  hit.Channel,
		raw_tdc:                  hit.RawTDC,
		low_threshold:            boolToUint8(hit.LowThreshold),
		high_threshold:           boolToUint8(hit.HighThreshold),
		low_threshold_trig_count: hit.LowThresholdTrigCount,
		low_threshold_time_count: hit.LowThresholdTimeCount,
		fcr:                      hit.FirstCellRead,
		raw_baseline:             hit.RawBaseline,
		raw_peak:                 hit.RawPeak,
		raw_peak_cell:            hit.RawPeakCell,
		raw_charge:               hit.RawCharge,
		raw_charge_overflow:      boolToUint8(hit.RawChargeOverflow),
		raw_rising_cell:          hit.RawRisingCell,
		raw_rising_offset:        hit.RawRisingOffset,
		raw_falling_cell:         hit.RawFallingCell,
		raw_falling_offset:       hit.RawFallingOffset,
		waveform_offset:          uint64(offset),
		waveform_size:            uint32(hit.WaveformDataSize()),
	}
}

func trackerRow(hit fecom.TrackerChannelHit) TrackerHitHDF5 {
	timestampType := hit.TimestampType
	if len(timestampType) > STRLEN {
		timestampType = timestampType[:STRLEN]
	}
	return TrackerHitHDF5{
		trigger_id:      hit.TriggerID,
		hit_id:          hit.HitID,
		hit_mode:        uint8(hit.HitMode),
		slot_index:      hit.SlotIndex,
		channel:         hit.Channel,
		feast_id:        hit.FeastID,
		channel_type:    uint8(hit.ChannelType),
		timestamp_type:  timestampType,
		timestamp_value: hit.TimestampValue,
	}
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// WriteEvent appends the event row, its hits and the concatenated waveforms.
func (w *Writer) WriteEvent(event *fecom.CommissioningEvent) error {
	caloHits := make([]CaloHitHDF5, 0, event.CaloHitCount())
	samples := make([]int16, 0)
	offset := w.SampleCounter
	for _, hit := range event.CaloHits() {
		caloHits = append(caloHits, caloRow(hit, offset))
		samples = append(samples, hit.RawSamples()...)
		offset += hit.WaveformDataSize()
	}

	trackerHits := make([]TrackerHitHDF5, 0, event.TrackerChannelHitCount())
	for _, hit := range event.TrackerChannelHits() {
		trackerHits = append(trackerHits, trackerRow(hit))
	}

	row := EventHDF5{
		trigger_id:   event.TriggerID(),
		calo_hits:    int32(len(caloHits)),
		tracker_hits: int32(len(trackerHits)),
	}
	if err := writeEntryToTable(w.EventTable, row, w.EvtCounter); err != nil {
		return fmt.Errorf("writing event %d: %w", event.TriggerID(), err)
	}
	if err := writeArrayToTable(w.CaloHitTable, &caloHits, w.CaloHitCounter); err != nil {
		return fmt.Errorf("writing calo hits of event %d: %w", event.TriggerID(), err)
	}
	if err := writeArrayToTable(w.Waveforms, &samples, w.SampleCounter); err != nil {
		return fmt.Errorf("writing waveforms of event %d: %w", event.TriggerID(), err)
	}
	if err := writeArrayToTable(w.TrackerHitTable, &trackerHits, w.TrackerCounter); err != nil {
		return fmt.Errorf("writing tracker hits of event %d: %w", event.TriggerID(), err)
	}

	w.EvtCounter++
	w.CaloHitCounter += len(caloHits)
	w.TrackerCounter += len(trackerHits)
	w.SampleCounter += len(samples)
	w.info(fmt.Sprintf("event %d written: %d calo hits, %d tracker hits, %d samples",
		event.TriggerID(), len(caloHits), len(trackerHits), len(samples)), fecom.PrioDebug)
	return nil
}

// Archive adapts the writer to fecom.ArchiveWriter. Stored records are
// decoded with codec before being exported.
func (w *Writer) Archive(codec fecom.Codec) fecom.ArchiveWriter {
	return &archiveAdapter{writer: w, codec: codec}
}

type archiveAdapter struct {
	writer *Writer
	codec  fecom.Codec
}

func (a *archiveAdapter) Store(record []byte) error {
	event, err := a.codec.Decode(record)
	if err != nil {
		return err
	}
	return a.writer.WriteEvent(event)
}

func (a *archiveAdapter) Close() error {
	return a.writer.Close()
}

func (w *Writer) Close() error {
	var errs []error
	if w.EventTable != nil {
		if err := w.EventTable.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing event table: %w", err))
		}
	}
	if w.CaloHitTable != nil {
		if err := w.CaloHitTable.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing calo hit table: %w", err))
		}
	}
	if w.Waveforms != nil {
		if err := w.Waveforms.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing calo waveforms: %w", err))
		}
	}
	if w.TrackerHitTable != nil {
		if err := w.TrackerHitTable.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing tracker hit table: %w", err))
		}
	}
	for name, group := range map[string]*hdf5.Group{"Run": w.RunGroup, "Calo": w.CaloGroup, "Tracker": w.TrackerGroup} {
		if group != nil {
			if err := group.Close(); err != nil {
				errs = append(errs, fmt.Errorf("error closing group %s: %w", name, err))
			}
		}
	}
	if w.File != nil {
		if err := w.File.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing file %s: %w", w.Filename, err))
		}
	}
	w.info(fmt.Sprintf("hdf5writer: closed %s after %d events", w.Filename, w.EvtCounter), fecom.PrioInformation)
	return errors.Join(errs...)
}

func (w *Writer) info(message string, p fecom.Priority) {
	if w.opts.Logger == nil || !w.opts.Enabled(p) {
		return
	}
	w.opts.Logger.Info(message, "h5")
}
