package fecom

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"golang.org/x/exp/constraints"
)

var binaryMagic = [4]byte{'F', 'C', 'O', 'M'}

const binaryVersion uint16 = 1

type binaryHeader struct {
	Magic     [4]byte
	Version   uint16
	Flags     uint16
	TriggerID uint32
}

const (
	caloFlagLowThreshold uint8 = 1 << iota
	caloFlagHighThreshold
	caloFlagChargeOverflow
)

type caloRecord struct {
	Tag                   uint8
	HitMode               uint8
	SlotIndex             uint16
	TriggerID             uint32
	HitID                 uint64
	Channel               int16
	Flags                 uint8
	_                     uint8
	RawTDC                uint64
	LowThresholdTrigCount uint16
	FirstCellRead         uint16
	LowThresholdTimeCount uint32
	RawBaseline           int16
	RawPeak               int16
	RawPeakCell           uint16
	RawRisingCell         uint16
	RawCharge             int32
	RawRisingOffset       uint16
	RawFallingCell        uint16
	RawFallingOffset      uint16
	_                     uint16
	WaveformDataSize      uint32
}

type trackerRecord struct {
	Tag               uint8
	HitMode           uint8
	SlotIndex         uint16
	TriggerID         uint32
	HitID             uint64
	Channel           int16
	FeastID           uint16
	ChannelType       uint8
	_                 uint8
	TimestampTypeSize uint16
	TimestampValue    uint64
}

var (
	binaryHeaderSize  = binary.Size(binaryHeader{})
	caloRecordSize    = binary.Size(caloRecord{})
	trackerRecordSize = binary.Size(trackerRecord{})
)

// BinaryCodec is the native little-endian record format:
//
//	header | calo count | calo records | tracker count | tracker records
//
// Calo records are followed by their int16 samples, tracker records by the
// timestamp type bytes.
type BinaryCodec struct {
	opts Options
}

func NewBinaryCodec(opts Options) *BinaryCodec {
	return &BinaryCodec{opts: opts}
}

func (c *BinaryCodec) Name() string {
	return BinaryCodecName
}

func (c *BinaryCodec) Encode(event *CommissioningEvent) ([]byte, error) {
	if event == nil {
		return nil, errors.New("binary codec: nil event")
	}
	enc := &binaryEncoder{}
	enc.buf.Grow(binaryHeaderSize + 8 + event.CaloHitCount()*caloRecordSize + event.TrackerChannelHitCount()*trackerRecordSize)

	enc.write(binaryHeader{Magic: binaryMagic, Version: binaryVersion, TriggerID: event.TriggerID()})

	enc.write(uint32(event.CaloHitCount()))
	for _, hit := range event.CaloHits() {
		record := caloRecord{
			Tag:                   uint8(HitModeCalorimeter),
			HitMode:               uint8(hit.HitMode),
			SlotIndex:             hit.SlotIndex,
			TriggerID:             hit.TriggerID,
			HitID:                 hit.HitID,
			Channel:               hit.Channel,
			Flags:                 caloFlags(hit),
			RawTDC:                hit.RawTDC,
			LowThresholdTrigCount: hit.LowThresholdTrigCount,
			FirstCellRead:         hit.FirstCellRead,
			LowThresholdTimeCount: hit.LowThresholdTimeCount,
			RawBaseline:           hit.RawBaseline,
			RawPeak:               hit.RawPeak,
			RawPeakCell:           hit.RawPeakCell,
			RawRisingCell:         hit.RawRisingCell,
			RawCharge:             hit.RawCharge,
			RawRisingOffset:       hit.RawRisingOffset,
			RawFallingCell:        hit.RawFallingCell,
			RawFallingOffset:      hit.RawFallingOffset,
			WaveformDataSize:      uint32(hit.WaveformDataSize()),
		}
		enc.write(record)
		if hit.WaveformDataSize() > 0 {
			enc.write(hit.RawSamples())
		}
	}

	enc.write(uint32(event.TrackerChannelHitCount()))
	for i, hit := range event.TrackerChannelHits() {
		if len(hit.TimestampType) > math.MaxUint16 {
			return nil, fmt.Errorf("binary codec: tracker hit %d: timestamp type longer than %d bytes", i, math.MaxUint16)
		}
		record := trackerRecord{
			Tag:               uint8(HitModeTracker),
			HitMode:           uint8(hit.HitMode),
			SlotIndex:         hit.SlotIndex,
			TriggerID:         hit.TriggerID,
			HitID:             hit.HitID,
			Channel:           hit.Channel,
			FeastID:           hit.FeastID,
			ChannelType:       uint8(hit.ChannelType),
			TimestampTypeSize: uint16(len(hit.TimestampType)),
			TimestampValue:    hit.TimestampValue,
		}
		enc.write(record)
		enc.buf.WriteString(hit.TimestampType)
	}
	if enc.err != nil {
		return nil, fmt.Errorf("binary codec: encoding trigger %d: %w", event.TriggerID(), enc.err)
	}

	c.opts.logf(PrioTrace, "binaryCodec", "encoded trigger %d: %d calo, %d tracker hits, %d bytes",
		event.TriggerID(), event.CaloHitCount(), event.TrackerChannelHitCount(), enc.buf.Len())
	return enc.buf.Bytes(), nil
}

// binaryEncoder keeps the first write error; later writes are skipped.
type binaryEncoder struct {
	buf bytes.Buffer
	err error
}

func (e *binaryEncoder) write(v any) {
	if e.err != nil {
		return
	}
	e.err = binary.Write(&e.buf, binary.LittleEndian, v)
}

func caloFlags(hit CaloHit) uint8 {
	var flags uint8
	if hit.LowThreshold {
		flags |= caloFlagLowThreshold
	}
	if hit.HighThreshold {
		flags |= caloFlagHighThreshold
	}
	if hit.RawChargeOverflow {
		flags |= caloFlagChargeOverflow
	}
	return flags
}

type binaryDecoder struct {
	r *bytes.Reader
}

func (d *binaryDecoder) offset() int64 {
	return d.r.Size() - int64(d.r.Len())
}

func (d *binaryDecoder) corrupted(reason string, err error) error {
	return &CorruptedStreamError{Codec: BinaryCodecName, Offset: d.offset(), Reason: reason, Err: err}
}

func (d *binaryDecoder) read(what string, v any) error {
	if err := binary.Read(d.r, binary.LittleEndian, v); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return d.corrupted("reading "+what, err)
	}
	return nil
}

func readInt[T constraints.Integer](d *binaryDecoder, what string) (T, error) {
	var v T
	err := d.read(what, &v)
	return v, err
}

// readCount reads a collection size and rejects it when the remaining
// bytes cannot hold that many records.
func (d *binaryDecoder) readCount(what string, minRecordSize int) (int, error) {
	count, err := readInt[uint32](d, what+" count")
	if err != nil {
		return 0, err
	}
	if uint64(count)*uint64(minRecordSize) > uint64(d.r.Len()) {
		return 0, d.corrupted(fmt.Sprintf("%s count %d exceeds the %d bytes left", what, count, d.r.Len()), nil)
	}
	return int(count), nil
}

func (c *BinaryCodec) Decode(data []byte) (*CommissioningEvent, error) {
	d := &binaryDecoder{r: bytes.NewReader(data)}

	var header binaryHeader
	if err := d.read("header", &header); err != nil {
		return nil, err
	}
	if header.Magic != binaryMagic {
		return nil, d.corrupted(fmt.Sprintf("bad magic %q", header.Magic[:]), nil)
	}
	if header.Version != binaryVersion {
		return nil, d.corrupted(fmt.Sprintf("unsupported version %d", header.Version), nil)
	}

	event := NewCommissioningEvent(header.TriggerID)

	nCalo, err := d.readCount("calo hit", caloRecordSize)
	if err != nil {
		return nil, err
	}
	for i := 0; i < nCalo; i++ {
		hit, err := c.decodeCaloHit(d)
		if err != nil {
			return nil, err
		}
		if err := event.AddCaloHit(hit); err != nil {
			return nil, d.corrupted(fmt.Sprintf("calo hit %d", i), err)
		}
	}

	nTracker, err := d.readCount("tracker hit", trackerRecordSize)
	if err != nil {
		return nil, err
	}
	for i := 0; i < nTracker; i++ {
		hit, err := c.decodeTrackerHit(d)
		if err != nil {
			return nil, err
		}
		if err := event.AddTrackerChannelHit(hit); err != nil {
			return nil, d.corrupted(fmt.Sprintf("tracker hit %d", i), err)
		}
	}

	if d.r.Len() != 0 {
		return nil, d.corrupted(fmt.Sprintf("%d trailing bytes", d.r.Len()), nil)
	}

	c.opts.logf(PrioTrace, "binaryCodec", "decoded trigger %d: %d calo, %d tracker hits",
		event.TriggerID(), nCalo, nTracker)
	return event, nil
}

func (c *BinaryCodec) decodeCaloHit(d *binaryDecoder) (CaloHit, error) {
	var record caloRecord
	if err := d.read("calo record", &record); err != nil {
		return CaloHit{}, err
	}
	if HitMode(record.Tag) != HitModeCalorimeter {
		return CaloHit{}, d.corrupted(fmt.Sprintf("unexpected record tag %d in calo hits", record.Tag), nil)
	}
	if HitMode(record.HitMode) > HitModeTracker {
		return CaloHit{}, d.corrupted(fmt.Sprintf("unknown hit mode %d", record.HitMode), nil)
	}
	if uint64(record.WaveformDataSize)*2 > uint64(d.r.Len()) {
		return CaloHit{}, d.corrupted(fmt.Sprintf("waveform of %d samples exceeds the %d bytes left",
			record.WaveformDataSize, d.r.Len()), nil)
	}

	hit := CaloHit{
		BaseHit: BaseHit{
			HitID:     record.HitID,
			HitMode:   HitMode(record.HitMode),
			SlotIndex: record.SlotIndex,
			TriggerID: record.TriggerID,
			Channel:   record.Channel,
		},
		RawTDC:                record.RawTDC,
		LowThreshold:          record.Flags&caloFlagLowThreshold != 0,
		HighThreshold:         record.Flags&caloFlagHighThreshold != 0,
		LowThresholdTrigCount: record.LowThresholdTrigCount,
		LowThresholdTimeCount: record.LowThresholdTimeCount,
		FirstCellRead:         record.FirstCellRead,
		RawBaseline:           record.RawBaseline,
		RawPeak:               record.RawPeak,
		RawPeakCell:           record.RawPeakCell,
		RawCharge:             record.RawCharge,
		RawChargeOverflow:     record.Flags&caloFlagChargeOverflow != 0,
		RawRisingCell:         record.RawRisingCell,
		RawRisingOffset:       record.RawRisingOffset,
		RawFallingCell:        record.RawFallingCell,
		RawFallingOffset:      record.RawFallingOffset,
	}
	if record.WaveformDataSize > 0 {
		samples := make([]int16, record.WaveformDataSize)
		if err := d.read("waveform", samples); err != nil {
			return CaloHit{}, err
		}
		hit.SetRawSamples(samples)
	}
	return hit, nil
}

func (c *BinaryCodec) decodeTrackerHit(d *binaryDecoder) (TrackerChannelHit, error) {
	var record trackerRecord
	if err := d.read("tracker record", &record); err != nil {
		return TrackerChannelHit{}, err
	}
	if HitMode(record.Tag) != HitModeTracker {
		return TrackerChannelHit{}, d.corrupted(fmt.Sprintf("unexpected record tag %d in tracker hits", record.Tag), nil)
	}
	if HitMode(record.HitMode) > HitModeTracker {
		return TrackerChannelHit{}, d.corrupted(fmt.Sprintf("unknown hit mode %d", record.HitMode), nil)
	}
	if ChannelType(record.ChannelType) > CathodicChannel {
		return TrackerChannelHit{}, d.corrupted(fmt.Sprintf("unknown channel type %d", record.ChannelType), nil)
	}
	timestampType := make([]byte, record.TimestampTypeSize)
	if _, err := io.ReadFull(d.r, timestampType); err != nil {
		return TrackerChannelHit{}, d.corrupted("reading timestamp type", err)
	}
	return TrackerChannelHit{
		BaseHit: BaseHit{
			HitID:     record.HitID,
			HitMode:   HitMode(record.HitMode),
			SlotIndex: record.SlotIndex,
			TriggerID: record.TriggerID,
			Channel:   record.Channel,
		},
		FeastID:        record.FeastID,
		ChannelType:    ChannelType(record.ChannelType),
		TimestampType:  string(timestampType),
		TimestampValue: record.TimestampValue,
	}, nil
}
