package fecom

import (
	"fmt"
	"slices"
)

// Reference event layout, used by the CLI and the benchmarks.
const (
	ReferenceCaloHitID      = 42
	ReferenceWaveformSize   = 16
	ReferenceSampleValue    = 23
	ReferenceTrackerHits    = 7
	referenceAnodicHits     = 5
	referenceTimestampStep  = 42
	referenceCaloChannel    = 11
	referenceTrackerSlot    = 1
	referenceTrackerChannel = 1
)

// NewReferenceCaloHit returns the calorimeter hit of the reference event:
// id 42, slot 0, channel 11, sixteen samples set to 23.
func NewReferenceCaloHit(triggerID uint32) CaloHit {
	hit := NewCaloHit()
	hit.HitID = ReferenceCaloHitID
	hit.TriggerID = triggerID
	hit.SlotIndex = 0
	hit.Channel = referenceCaloChannel
	hit.SetRawSamples(slices.Repeat([]int16{ReferenceSampleValue}, ReferenceWaveformSize))
	return hit
}

// NewReferenceTrackerHit returns tracker hit i of the reference event. The
// first five are anodic, the others cathodic.
func NewReferenceTrackerHit(triggerID uint32, i int) TrackerChannelHit {
	hit := NewTrackerChannelHit()
	hit.HitID = uint64(i)
	hit.TriggerID = triggerID
	hit.SlotIndex = referenceTrackerSlot
	hit.FeastID = 0
	hit.Channel = referenceTrackerChannel
	hit.ChannelType = CathodicChannel
	if i < referenceAnodicHits {
		hit.ChannelType = AnodicChannel
	}
	hit.TimestampType = fmt.Sprintf("t%d", i)
	hit.TimestampValue = uint64(referenceTimestampStep * i)
	return hit
}

// NewReferenceEvent builds one calorimeter hit and seven tracker hits for
// triggerID.
func NewReferenceEvent(triggerID uint32) (*CommissioningEvent, error) {
	event := NewCommissioningEvent(triggerID)
	if err := event.AddCaloHit(NewReferenceCaloHit(triggerID)); err != nil {
		return nil, err
	}
	for i := 0; i < ReferenceTrackerHits; i++ {
		if err := event.AddTrackerChannelHit(NewReferenceTrackerHit(triggerID, i)); err != nil {
			return nil, err
		}
	}
	return event, nil
}
