package fecom

import (
	"errors"
	"fmt"
	"sort"
)

// ChannelMap is a bidirectional geometry <-> electronics lookup for one
// subsystem.
type ChannelMap struct {
	Subsystem      Subsystem
	ToElectronicID map[GeomID]ElectronicID
	ToGeomID       map[ElectronicID]GeomID
}

func NewChannelMap(subsystem Subsystem) ChannelMap {
	return ChannelMap{
		Subsystem:      subsystem,
		ToElectronicID: make(map[GeomID]ElectronicID),
		ToGeomID:       make(map[ElectronicID]GeomID),
	}
}

// Add registers a pair and rejects an entry that would alias an existing
// geometry id or electronic id.
func (c ChannelMap) Add(gid GeomID, eid ElectronicID) error {
	if prev, ok := c.ToElectronicID[gid]; ok && prev != eid {
		return fmt.Errorf("geometry id %v already mapped to %v", gid, prev)
	}
	if prev, ok := c.ToGeomID[eid]; ok && prev != gid {
		return fmt.Errorf("electronic id %v already mapped to %v", eid, prev)
	}
	c.ToElectronicID[gid] = eid
	c.ToGeomID[eid] = gid
	return nil
}

func (c ChannelMap) Len() int {
	return len(c.ToElectronicID)
}

// SortedElectronicIDs returns the mapped electronic ids ordered by rack,
// crate, board and channel.
func (c ChannelMap) SortedElectronicIDs() []ElectronicID {
	sorted := make([]ElectronicID, 0, len(c.ToGeomID))
	for eid := range c.ToGeomID {
		sorted = append(sorted, eid)
	}
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Rack != b.Rack {
			return a.Rack < b.Rack
		}
		if a.Crate != b.Crate {
			return a.Crate < b.Crate
		}
		if a.Board != b.Board {
			return a.Board < b.Board
		}
		return a.Channel < b.Channel
	})
	return sorted
}

// ChannelMap enumerates every legal geometry id of a subsystem and builds
// the full lookup table.
func (m *Mapper) ChannelMap(subsystem Subsystem) (ChannelMap, error) {
	cm := NewChannelMap(subsystem)
	var errs []error
	for _, gid := range m.geometryIDs(subsystem) {
		eid, err := m.Map(gid, subsystem)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := cm.Add(gid, eid); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return cm, errors.Join(errs...)
	}
	return cm, nil
}

func (m *Mapper) geometryIDs(subsystem Subsystem) []GeomID {
	ids := make([]GeomID, 0)
	switch subsystem {
	case SubsystemTracker:
		g := m.topology.Geiger
		for side := int32(0); side < g.NumberSides; side++ {
			for layer := int32(0); layer < g.LayerSize; layer++ {
				for row := int32(0); row < g.RowSize; row++ {
					ids = append(ids, GeigerCell(side, layer, row))
				}
			}
		}
	case SubsystemCalorimeter:
		c := m.topology.Calo
		for side := int32(0); side < c.MainWallCrates; side++ {
			for column := int32(0); column < c.MainWallColumns; column++ {
				for row := int32(0); row < c.MainWallRows; row++ {
					ids = append(ids, MainCalo(side, column, row))
				}
			}
		}
		for side := int32(0); side < c.XWallSides; side++ {
			for wall := int32(0); wall < c.XWallWalls; wall++ {
				for column := int32(0); column < c.XWallColumns; column++ {
					for row := int32(0); row < c.XWallRows; row++ {
						ids = append(ids, XCalo(side, wall, column, row))
					}
				}
			}
		}
		for side := int32(0); side < c.GVetoSides; side++ {
			for wall := int32(0); wall < c.GVetoWalls; wall++ {
				for column := int32(0); column < c.GVetoColumns; column++ {
					ids = append(ids, GVeto(side, wall, column))
				}
			}
		}
	case SubsystemTrigger:
		for input := int32(0); input < m.topology.Trigger.Channels; input++ {
			ids = append(ids, TriggerInput(input))
		}
	default:
		panic(fmt.Sprintf("fecom: invalid subsystem %d", int(subsystem)))
	}
	return ids
}

// ValidateChannelMap checks every entry of an externally provided map (for
// instance the one stored in the database) against the computed mapping.
func ValidateChannelMap(m *Mapper, cm ChannelMap) error {
	var errs []error
	for _, eid := range cm.SortedElectronicIDs() {
		gid := cm.ToGeomID[eid]
		expected, err := m.Map(gid, cm.Subsystem)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %v: %w", gid, err))
			continue
		}
		if expected != eid {
			errs = append(errs, fmt.Errorf("entry %v: stored %v, computed %v", gid, eid, expected))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
