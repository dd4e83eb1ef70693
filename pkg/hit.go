package fecom

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
)

const (
	InvalidHitID     uint64 = math.MaxUint64
	InvalidTriggerID uint32 = math.MaxUint32
)

type HitMode uint8

const (
	HitModeInvalid HitMode = iota
	HitModeCalorimeter
	HitModeTracker
)

var hitModeStrings = []string{
	"invalid",
	"calorimeter",
	"tracker",
}

func (h HitMode) String() string {
	if h > HitModeTracker {
		return "UNKNOWN"
	}
	return hitModeStrings[h]
}

func (h HitMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *HitMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, v := range hitModeStrings {
		if v == s {
			*h = HitMode(i)
			return nil
		}
	}
	return fmt.Errorf("invalid HitMode: %s", s)
}

// Hit is the closed set of hit records: CaloHit and TrackerChannelHit.
type Hit interface {
	Base() BaseHit
	Mode() HitMode
	IsValid() bool
	Dump(w io.Writer, title string, indent string)
	isHit()
}

// BaseHit holds the fields shared by every hit record.
type BaseHit struct {
	HitID     uint64  `json:"hit_id"`
	HitMode   HitMode `json:"hit_mode"`
	SlotIndex uint16  `json:"slot_index"`
	TriggerID uint32  `json:"trigger_id"`
	Channel   int16   `json:"channel"`
}

func NewBaseHit(mode HitMode) BaseHit {
	return BaseHit{
		HitID:     InvalidHitID,
		HitMode:   mode,
		TriggerID: InvalidTriggerID,
	}
}

func (b BaseHit) Base() BaseHit {
	return b
}

func (b BaseHit) hasValidBase(mode HitMode) bool {
	return b.HitID != InvalidHitID && b.HitMode == mode && b.TriggerID != InvalidTriggerID
}

func (b BaseHit) dumpBase(t *treeDump) {
	t.item("Hit ID", b.HitID)
	t.item("Hit mode", b.HitMode)
	t.item("Slot index", b.SlotIndex)
	t.item("Trigger ID", b.TriggerID)
	t.item("Channel", b.Channel)
}
