package fecom

import (
	"fmt"
	"io"
	"iter"
)

// CommissioningEvent groups the calorimeter and tracker hits read out for
// one trigger. Hits are stored by value in insertion order; every stored
// hit carries the event trigger id.
//
// An event must not be modified while a codec encodes it.
type CommissioningEvent struct {
	triggerID   uint32
	caloHits    []CaloHit
	trackerHits []TrackerChannelHit
}

func NewCommissioningEvent(triggerID uint32) *CommissioningEvent {
	return &CommissioningEvent{triggerID: triggerID}
}

// NewEmptyCommissioningEvent returns an event with no trigger id yet.
func NewEmptyCommissioningEvent() *CommissioningEvent {
	return &CommissioningEvent{triggerID: InvalidTriggerID}
}

func (e *CommissioningEvent) TriggerID() uint32 {
	return e.triggerID
}

func (e *CommissioningEvent) HasTriggerID() bool {
	return e.triggerID != InvalidTriggerID
}

// SetTriggerID is only allowed while the event holds no hit.
func (e *CommissioningEvent) SetTriggerID(triggerID uint32) error {
	if e.HitCount() > 0 {
		return &InvariantViolationError{
			EventTriggerID: e.triggerID,
			HitTriggerID:   triggerID,
			Reason:         fmt.Sprintf("trigger id cannot change once %d hits were added", e.HitCount()),
		}
	}
	e.triggerID = triggerID
	return nil
}

// checkHit verifies the hit mode tag against the variant and the trigger id
// against the event.
func (e *CommissioningEvent) checkHit(hit BaseHit, mode HitMode) error {
	if hit.HitMode != mode {
		return &InvariantViolationError{
			EventTriggerID: e.triggerID,
			HitTriggerID:   hit.TriggerID,
			Reason:         fmt.Sprintf("hit %d tagged %s stored as a %s hit", hit.HitID, hit.HitMode, mode),
		}
	}
	return e.checkTrigger(hit)
}

func (e *CommissioningEvent) checkTrigger(hit BaseHit) error {
	if !e.HasTriggerID() {
		return &InvariantViolationError{
			EventTriggerID: e.triggerID,
			HitTriggerID:   hit.TriggerID,
			Reason:         "event trigger id is not set",
		}
	}
	if hit.TriggerID != e.triggerID {
		return &InvariantViolationError{
			EventTriggerID: e.triggerID,
			HitTriggerID:   hit.TriggerID,
			Reason:         fmt.Sprintf("%s hit %d belongs to another trigger", hit.HitMode, hit.HitID),
		}
	}
	return nil
}

// AddCaloHit appends a copy of hit. Duplicate hit ids are kept.
func (e *CommissioningEvent) AddCaloHit(hit CaloHit) error {
	if err := e.checkHit(hit.BaseHit, HitModeCalorimeter); err != nil {
		return err
	}
	e.caloHits = append(e.caloHits, hit.Clone())
	return nil
}

// AddTrackerChannelHit appends a copy of hit. Duplicate hit ids are kept.
func (e *CommissioningEvent) AddTrackerChannelHit(hit TrackerChannelHit) error {
	if err := e.checkHit(hit.BaseHit, HitModeTracker); err != nil {
		return err
	}
	e.trackerHits = append(e.trackerHits, hit)
	return nil
}

// AddHit dispatches on the hit variant.
func (e *CommissioningEvent) AddHit(hit Hit) error {
	switch h := hit.(type) {
	case CaloHit:
		return e.AddCaloHit(h)
	case *CaloHit:
		return e.AddCaloHit(*h)
	case TrackerChannelHit:
		return e.AddTrackerChannelHit(h)
	case *TrackerChannelHit:
		return e.AddTrackerChannelHit(*h)
	default:
		panic(fmt.Sprintf("fecom: unexpected hit type %T", hit))
	}
}

func (e *CommissioningEvent) CaloHitCount() int {
	return len(e.caloHits)
}

func (e *CommissioningEvent) TrackerChannelHitCount() int {
	return len(e.trackerHits)
}

func (e *CommissioningEvent) HitCount() int {
	return len(e.caloHits) + len(e.trackerHits)
}

func (e *CommissioningEvent) CaloHitAt(i int) CaloHit {
	return e.caloHits[i].Clone()
}

func (e *CommissioningEvent) TrackerChannelHitAt(i int) TrackerChannelHit {
	return e.trackerHits[i]
}

// CaloHits iterates over copies of the calorimeter hits in insertion order.
func (e *CommissioningEvent) CaloHits() iter.Seq2[int, CaloHit] {
	return func(yield func(int, CaloHit) bool) {
		for i := range e.caloHits {
			if !yield(i, e.caloHits[i].Clone()) {
				return
			}
		}
	}
}

// TrackerChannelHits iterates over copies of the tracker hits in insertion
// order.
func (e *CommissioningEvent) TrackerChannelHits() iter.Seq2[int, TrackerChannelHit] {
	return func(yield func(int, TrackerChannelHit) bool) {
		for i, h := range e.trackerHits {
			if !yield(i, h) {
				return
			}
		}
	}
}

// Hits iterates over every hit, calorimeter hits first.
func (e *CommissioningEvent) Hits() iter.Seq[Hit] {
	return func(yield func(Hit) bool) {
		for _, h := range e.CaloHits() {
			if !yield(h) {
				return
			}
		}
		for _, h := range e.TrackerChannelHits() {
			if !yield(h) {
				return
			}
		}
	}
}

func (e *CommissioningEvent) Clone() *CommissioningEvent {
	c := &CommissioningEvent{triggerID: e.triggerID}
	if e.caloHits != nil {
		c.caloHits = make([]CaloHit, len(e.caloHits))
		for i, h := range e.caloHits {
			c.caloHits[i] = h.Clone()
		}
	}
	if e.trackerHits != nil {
		c.trackerHits = append([]TrackerChannelHit(nil), e.trackerHits...)
	}
	return c
}

func (e *CommissioningEvent) Equal(o *CommissioningEvent) bool {
	if e == nil || o == nil {
		return e == o
	}
	if e.triggerID != o.triggerID ||
		len(e.caloHits) != len(o.caloHits) ||
		len(e.trackerHits) != len(o.trackerHits) {
		return false
	}
	for i := range e.caloHits {
		if !e.caloHits[i].Equal(o.caloHits[i]) {
			return false
		}
	}
	for i := range e.trackerHits {
		if !e.trackerHits[i].Equal(o.trackerHits[i]) {
			return false
		}
	}
	return true
}

func (e *CommissioningEvent) Dump(w io.Writer, title string, indent string) {
	t := newTreeDump(w, title, indent)
	t.item("Trigger ID", e.triggerID)
	t.item("Calo hits", len(e.caloHits))
	for i, h := range e.caloHits {
		h.Dump(w, fmt.Sprintf("Calo hit #%d", i), t.child(false))
	}
	t.last("Tracker channel hits", len(e.trackerHits))
	for i, h := range e.trackerHits {
		h.Dump(w, fmt.Sprintf("Tracker hit #%d", i), t.child(true))
	}
}
