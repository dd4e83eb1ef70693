package fecom

import (
	"fmt"
	"io"
)

type ChannelType uint8

const (
	InvalidChannel ChannelType = iota
	AnodicChannel
	CathodicChannel
)

var channelTypeStrings = []string{
	"invalid",
	"anodic",
	"cathodic",
}

func (c ChannelType) String() string {
	if c > CathodicChannel {
		return "UNKNOWN"
	}
	return channelTypeStrings[c]
}

func (c ChannelType) Valid() bool {
	return c == AnodicChannel || c == CathodicChannel
}

func ParseChannelType(s string) (ChannelType, error) {
	for i, v := range channelTypeStrings {
		if v == s && ChannelType(i).Valid() {
			return ChannelType(i), nil
		}
	}
	return InvalidChannel, fmt.Errorf("invalid ChannelType: %s", s)
}

func (c ChannelType) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid ChannelType: %d", uint8(c))
	}
	return []byte(c.String()), nil
}

func (c *ChannelType) UnmarshalText(data []byte) error {
	parsed, err := ParseChannelType(string(data))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// TrackerChannelHit is one timestamp read on an anodic or cathodic tracker
// channel of a FEAST chip.
type TrackerChannelHit struct {
	BaseHit

	FeastID     uint16
	ChannelType ChannelType
	// Which clock edge the timestamp refers to, e.g. "t0".
	TimestampType  string
	TimestampValue uint64
}

func NewTrackerChannelHit() TrackerChannelHit {
	return TrackerChannelHit{BaseHit: NewBaseHit(HitModeTracker)}
}

func (h TrackerChannelHit) Mode() HitMode {
	return HitModeTracker
}

func (TrackerChannelHit) isHit() {}

func (h TrackerChannelHit) IsValid() bool {
	return h.hasValidBase(HitModeTracker) && h.ChannelType.Valid()
}

func (h TrackerChannelHit) Equal(o TrackerChannelHit) bool {
	return h == o
}

func (h TrackerChannelHit) Dump(w io.Writer, title string, indent string) {
	t := newTreeDump(w, title, indent)
	h.dumpBase(t)
	t.item("FEAST ID", h.FeastID)
	t.item("Channel type", h.ChannelType)
	t.item("Timestamp type", h.TimestampType)
	t.last("Timestamp value", h.TimestampValue)
}
