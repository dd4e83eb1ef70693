package fecom

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-msgpack/v2/codec"
)

const msgpackVersion uint16 = 1

type msgpackCaloHit struct {
	Tag                   uint8   `codec:"tag"`
	HitID                 uint64  `codec:"hit_id"`
	HitMode               uint8   `codec:"hit_mode"`
	SlotIndex             uint16  `codec:"slot_index"`
	TriggerID             uint32  `codec:"trigger_id"`
	Channel               int16   `codec:"channel"`
	RawTDC                uint64  `codec:"raw_tdc"`
	LowThreshold          bool    `codec:"low_threshold"`
	HighThreshold         bool    `codec:"high_threshold"`
	LowThresholdTrigCount uint16  `codec:"low_threshold_trig_count"`
	LowThresholdTimeCount uint32  `codec:"low_threshold_time_count"`
	FirstCellRead         uint16  `codec:"fcr"`
	RawBaseline           int16   `codec:"raw_baseline"`
	RawPeak               int16   `codec:"raw_peak"`
	RawPeakCell           uint16  `codec:"raw_peak_cell"`
	RawCharge             int32   `codec:"raw_charge"`
	RawChargeOverflow     bool    `codec:"raw_charge_overflow"`
	RawRisingCell         uint16  `codec:"raw_rising_cell"`
	RawRisingOffset       uint16  `codec:"raw_rising_offset"`
	RawFallingCell        uint16  `codec:"raw_falling_cell"`
	RawFallingOffset      uint16  `codec:"raw_falling_offset"`
	WaveformDataSize      uint32  `codec:"waveform_data_size"`
	Samples               []int16 `codec:"samples"`
}

type msgpackTrackerHit struct {
	Tag            uint8  `codec:"tag"`
	HitID          uint64 `codec:"hit_id"`
	HitMode        uint8  `codec:"hit_mode"`
	SlotIndex      uint16 `codec:"slot_index"`
	TriggerID      uint32 `codec:"trigger_id"`
	Channel        int16  `codec:"channel"`
	FeastID        uint16 `codec:"feast_id"`
	ChannelType    uint8  `codec:"channel_type"`
	TimestampType  string `codec:"timestamp_type"`
	TimestampValue uint64 `codec:"timestamp_value"`
}

type msgpackEvent struct {
	Version      uint16              `codec:"version"`
	TriggerID    uint32              `codec:"trigger_id"`
	CaloCount    uint32              `codec:"calo_count"`
	CaloHits     []msgpackCaloHit    `codec:"calo_hits"`
	TrackerCount uint32              `codec:"tracker_count"`
	TrackerHits  []msgpackTrackerHit `codec:"tracker_hits"`
}

// MsgpackCodec stores events as MessagePack maps. It is slower than
// BinaryCodec but readable from any msgpack implementation.
type MsgpackCodec struct {
	opts   Options
	handle *codec.MsgpackHandle
}

func NewMsgpackCodec(opts Options) *MsgpackCodec {
	return &MsgpackCodec{opts: opts, handle: &codec.MsgpackHandle{}}
}

func (c *MsgpackCodec) Name() string {
	return MsgpackCodecName
}

func (c *MsgpackCodec) Encode(event *CommissioningEvent) ([]byte, error) {
	if event == nil {
		return nil, errors.New("msgpack codec: nil event")
	}
	wire := msgpackEvent{
		Version:      msgpackVersion,
		TriggerID:    event.TriggerID(),
		CaloCount:    uint32(event.CaloHitCount()),
		TrackerCount: uint32(event.TrackerChannelHitCount()),
	}
	for _, hit := range event.CaloHits() {
		wire.CaloHits = append(wire.CaloHits, msgpackCaloHit{
			Tag:                   uint8(HitModeCalorimeter),
			HitID:                 hit.HitID,
			HitMode:               uint8(hit.HitMode),
			SlotIndex:             hit.SlotIndex,
			TriggerID:             hit.TriggerID,
			Channel:               hit.Channel,
			RawTDC:                hit.RawTDC,
			LowThreshold:          hit.LowThreshold,
			HighThreshold:         hit.HighThreshold,
			LowThresholdTrigCount: hit.LowThresholdTrigCount,
			LowThresholdTimeCount: hit.LowThresholdTimeCount,
			FirstCellRead:         hit.FirstCellRead,
			RawBaseline:           hit.RawBaseline,
			RawPeak:               hit.RawPeak,
			RawPeakCell:           hit.RawPeakCell,
			RawCharge:             hit.RawCharge,
			RawChargeOverflow:     hit.RawChargeOverflow,
			RawRisingCell:         hit.RawRisingCell,
			RawRisingOffset:       hit.RawRisingOffset,
			RawFallingCell:        hit.RawFallingCell,
			RawFallingOffset:      hit.RawFallingOffset,
			WaveformDataSize:      uint32(hit.WaveformDataSize()),
			Samples:               hit.RawSamples(),
		})
	}
	for _, hit := range event.TrackerChannelHits() {
		wire.TrackerHits = append(wire.TrackerHits, msgpackTrackerHit{
			Tag:            uint8(HitModeTracker),
			HitID:          hit.HitID,
			HitMode:        uint8(hit.HitMode),
			SlotIndex:      hit.SlotIndex,
			TriggerID:      hit.TriggerID,
			Channel:        hit.Channel,
			FeastID:        hit.FeastID,
			ChannelType:    uint8(hit.ChannelType),
			TimestampType:  hit.TimestampType,
			TimestampValue: hit.TimestampValue,
		})
	}

	var out []byte
	if err := codec.NewEncoderBytes(&out, c.handle).Encode(&wire); err != nil {
		return nil, fmt.Errorf("msgpack codec: encoding trigger %d: %w", event.TriggerID(), err)
	}
	c.opts.logf(PrioTrace, "msgpackCodec", "encoded trigger %d into %d bytes", event.TriggerID(), len(out))
	return out, nil
}

func msgpackCorrupted(reason string, err error) error {
	return &CorruptedStreamError{Codec: MsgpackCodecName, Offset: -1, Reason: reason, Err: err}
}

func (c *MsgpackCodec) Decode(data []byte) (*CommissioningEvent, error) {
	var wire msgpackEvent
	if err := codec.NewDecoderBytes(data, c.handle).Decode(&wire); err != nil {
		return nil, msgpackCorrupted("decoding event", err)
	}
	if wire.Version != msgpackVersion {
		return nil, msgpackCorrupted(fmt.Sprintf("unsupported version %d", wire.Version), nil)
	}
	if int(wire.CaloCount) != len(wire.CaloHits) {
		return nil, msgpackCorrupted(fmt.Sprintf("calo count %d but %d records", wire.CaloCount, len(wire.CaloHits)), nil)
	}
	if int(wire.TrackerCount) != len(wire.TrackerHits) {
		return nil, msgpackCorrupted(fmt.Sprintf("tracker count %d but %d records", wire.TrackerCount, len(wire.TrackerHits)), nil)
	}

	event := NewCommissioningEvent(wire.TriggerID)
	for i, w := range wire.CaloHits {
		hit, err := w.hit()
		if err != nil {
			return nil, msgpackCorrupted(fmt.Sprintf("calo hit %d", i), err)
		}
		if err := event.AddCaloHit(hit); err != nil {
			return nil, msgpackCorrupted(fmt.Sprintf("calo hit %d", i), err)
		}
	}
	for i, w := range wire.TrackerHits {
		hit, err := w.hit()
		if err != nil {
			return nil, msgpackCorrupted(fmt.Sprintf("tracker hit %d", i), err)
		}
		if err := event.AddTrackerChannelHit(hit); err != nil {
			return nil, msgpackCorrupted(fmt.Sprintf("tracker hit %d", i), err)
		}
	}
	return event, nil
}

func (w msgpackCaloHit) hit() (CaloHit, error) {
	if HitMode(w.Tag) != HitModeCalorimeter {
		return CaloHit{}, fmt.Errorf("unexpected record tag %d", w.Tag)
	}
	if HitMode(w.HitMode) > HitModeTracker {
		return CaloHit{}, fmt.Errorf("unknown hit mode %d", w.HitMode)
	}
	if int(w.WaveformDataSize) != len(w.Samples) {
		return CaloHit{}, fmt.Errorf("waveform data size %d but %d samples", w.WaveformDataSize, len(w.Samples))
	}
	hit := CaloHit{
		BaseHit: BaseHit{
			HitID:     w.HitID,
			HitMode:   HitMode(w.HitMode),
			SlotIndex: w.SlotIndex,
			TriggerID: w.TriggerID,
			Channel:   w.Channel,
		},
		RawTDC:                w.RawTDC,
		LowThreshold:          w.LowThreshold,
		HighThreshold:         w.HighThreshold,
		LowThresholdTrigCount: w.LowThresholdTrigCount,
		LowThresholdTimeCount: w.LowThresholdTimeCount,
		FirstCellRead:         w.FirstCellRead,
		RawBaseline:           w.RawBaseline,
		RawPeak:               w.RawPeak,
		RawPeakCell:           w.RawPeakCell,
		RawCharge:             w.RawCharge,
		RawChargeOverflow:     w.RawChargeOverflow,
		RawRisingCell:         w.RawRisingCell,
		RawRisingOffset:       w.RawRisingOffset,
		RawFallingCell:        w.RawFallingCell,
		RawFallingOffset:      w.RawFallingOffset,
	}
	hit.SetRawSamples(w.Samples)
	return hit, nil
}

func (w msgpackTrackerHit) hit() (TrackerChannelHit, error) {
	if HitMode(w.Tag) != HitModeTracker {
		return TrackerChannelHit{}, fmt.Errorf("unexpected record tag %d", w.Tag)
	}
	if HitMode(w.HitMode) > HitModeTracker {
		return TrackerChannelHit{}, fmt.Errorf("unknown hit mode %d", w.HitMode)
	}
	if ChannelType(w.ChannelType) > CathodicChannel {
		return TrackerChannelHit{}, fmt.Errorf("unknown channel type %d", w.ChannelType)
	}
	return TrackerChannelHit{
		BaseHit: BaseHit{
			HitID:     w.HitID,
			HitMode:   HitMode(w.HitMode),
			SlotIndex: w.SlotIndex,
			TriggerID: w.TriggerID,
			Channel:   w.Channel,
		},
		FeastID:        w.FeastID,
		ChannelType:    ChannelType(w.ChannelType),
		TimestampType:  w.TimestampType,
		TimestampValue: w.TimestampValue,
	}, nil
}
