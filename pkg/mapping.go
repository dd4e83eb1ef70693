package fecom

import (
	"fmt"
)

type Subsystem int

const (
	SubsystemCalorimeter Subsystem = iota + 1
	SubsystemTracker
	SubsystemTrigger
)

func (s Subsystem) String() string {
	switch s {
	case SubsystemCalorimeter:
		return "calorimeter"
	case SubsystemTracker:
		return "tracker"
	case SubsystemTrigger:
		return "trigger"
	default:
		return "Unknown"
	}
}

func ParseSubsystem(s string) (Subsystem, error) {
	for _, sub := range []Subsystem{SubsystemCalorimeter, SubsystemTracker, SubsystemTrigger} {
		if sub.String() == s {
			return sub, nil
		}
	}
	return 0, fmt.Errorf("invalid subsystem: %s", s)
}

type GeomType int

const (
	GeomGeigerCell GeomType = iota + 1
	GeomMainCalo
	GeomXCalo
	GeomGVeto
	GeomTriggerInput
)

func (g GeomType) String() string {
	switch g {
	case GeomGeigerCell:
		return "geiger"
	case GeomMainCalo:
		return "main_calo"
	case GeomXCalo:
		return "xcalo"
	case GeomGVeto:
		return "gveto"
	case GeomTriggerInput:
		return "trigger"
	default:
		return "Unknown"
	}
}

func ParseGeomType(s string) (GeomType, error) {
	for _, g := range []GeomType{GeomGeigerCell, GeomMainCalo, GeomXCalo, GeomGVeto, GeomTriggerInput} {
		if g.String() == s {
			return g, nil
		}
	}
	return 0, fmt.Errorf("invalid geometry type: %s", s)
}

// Subsystem returns the readout subsystem the geometry type belongs to, or
// zero for an unknown type.
func (g GeomType) Subsystem() Subsystem {
	switch g {
	case GeomGeigerCell:
		return SubsystemTracker
	case GeomMainCalo, GeomXCalo, GeomGVeto:
		return SubsystemCalorimeter
	case GeomTriggerInput:
		return SubsystemTrigger
	default:
		return 0
	}
}

// GeomID locates a detector channel. Only the fields relevant to Type are
// used: geiger cells use Side/Layer/Row, main calorimeter Side/Column/Row,
// x-wall Side/Wall/Column/Row, gamma veto Side/Wall/Column and trigger
// inputs Column.
type GeomID struct {
	Type   GeomType `db:"GeomType"`
	Side   int32    `db:"Side"`
	Wall   int32    `db:"Wall"`
	Layer  int32    `db:"Layer"`
	Row    int32    `db:"Row"`
	Column int32    `db:"Col"`
}

func GeigerCell(side, layer, row int32) GeomID {
	return GeomID{Type: GeomGeigerCell, Side: side, Layer: layer, Row: row}
}

func MainCalo(side, column, row int32) GeomID {
	return GeomID{Type: GeomMainCalo, Side: side, Column: column, Row: row}
}

func XCalo(side, wall, column, row int32) GeomID {
	return GeomID{Type: GeomXCalo, Side: side, Wall: wall, Column: column, Row: row}
}

func GVeto(side, wall, column int32) GeomID {
	return GeomID{Type: GeomGVeto, Side: side, Wall: wall, Column: column}
}

func TriggerInput(input int32) GeomID {
	return GeomID{Type: GeomTriggerInput, Column: input}
}

func (g GeomID) String() string {
	switch g.Type {
	case GeomGeigerCell:
		return fmt.Sprintf("[%s side=%d layer=%d row=%d]", g.Type, g.Side, g.Layer, g.Row)
	case GeomMainCalo:
		return fmt.Sprintf("[%s side=%d column=%d row=%d]", g.Type, g.Side, g.Column, g.Row)
	case GeomXCalo:
		return fmt.Sprintf("[%s side=%d wall=%d column=%d row=%d]", g.Type, g.Side, g.Wall, g.Column, g.Row)
	case GeomGVeto:
		return fmt.Sprintf("[%s side=%d wall=%d column=%d]", g.Type, g.Side, g.Wall, g.Column)
	case GeomTriggerInput:
		return fmt.Sprintf("[%s input=%d]", g.Type, g.Column)
	default:
		return fmt.Sprintf("[%s]", g.Type)
	}
}

// ElectronicID is the rack/crate/board triple plus the channel on the board.
type ElectronicID struct {
	Rack    int32 `db:"Rack"`
	Crate   int32 `db:"Crate"`
	Board   int32 `db:"Board"`
	Channel int32 `db:"Channel"`
}

// Get returns the RackIndex, CrateIndex or BoardIndex component.
func (e ElectronicID) Get(index int) int32 {
	switch index {
	case RackIndex:
		return e.Rack
	case CrateIndex:
		return e.Crate
	case BoardIndex:
		return e.Board
	default:
		panic(fmt.Sprintf("invalid electronic id index %d", index))
	}
}

func (e ElectronicID) String() string {
	return fmt.Sprintf("[rack=%d crate=%d board=%d channel=%d]", e.Rack, e.Crate, e.Board, e.Channel)
}

// ControlBoardAddress is the reserved address of a crate control board.
type ControlBoardAddress struct {
	ElectronicID
	BoardType int32
}

// Mapper converts geometry ids into electronic ids. It holds no mutable
// state and can be shared freely.
type Mapper struct {
	topology Topology
}

func NewMapper(topology Topology) *Mapper {
	return &Mapper{topology: topology}
}

func (m *Mapper) Topology() Topology {
	return m.topology
}

// Map returns the electronic address of a geometry id. It panics on an
// unknown subsystem and returns an *OutOfRangeError when the id does not
// belong to the subsystem or lies outside its bounds.
func (m *Mapper) Map(id GeomID, subsystem Subsystem) (ElectronicID, error) {
	switch subsystem {
	case SubsystemTracker:
		if id.Type != GeomGeigerCell {
			return ElectronicID{}, typeMismatch(subsystem, id)
		}
		return m.mapGeiger(id)
	case SubsystemCalorimeter:
		switch id.Type {
		case GeomMainCalo:
			return m.mapMainCalo(id)
		case GeomXCalo:
			return m.mapXCalo(id)
		case GeomGVeto:
			return m.mapGVeto(id)
		default:
			return ElectronicID{}, typeMismatch(subsystem, id)
		}
	case SubsystemTrigger:
		if id.Type != GeomTriggerInput {
			return ElectronicID{}, typeMismatch(subsystem, id)
		}
		return m.mapTrigger(id)
	default:
		panic(fmt.Sprintf("fecom: invalid subsystem %d", int(subsystem)))
	}
}

// Geometry is the inverse of Map.
func (m *Mapper) Geometry(eid ElectronicID, subsystem Subsystem) (GeomID, error) {
	switch subsystem {
	case SubsystemTracker:
		return m.geigerGeometry(eid)
	case SubsystemCalorimeter:
		return m.caloGeometry(eid)
	case SubsystemTrigger:
		t := m.topology.Trigger
		if err := expectEqual(subsystem, "rack", eid.Rack, t.RackID); err != nil {
			return GeomID{}, err
		}
		if err := expectEqual(subsystem, "crate", eid.Crate, t.CrateID); err != nil {
			return GeomID{}, err
		}
		if err := expectEqual(subsystem, "board", eid.Board, t.BoardID); err != nil {
			return GeomID{}, err
		}
		if err := checkRange(subsystem, "channel", eid.Channel, t.Channels); err != nil {
			return GeomID{}, err
		}
		return TriggerInput(eid.Channel), nil
	default:
		panic(fmt.Sprintf("fecom: invalid subsystem %d", int(subsystem)))
	}
}

// ControlBoard returns the reserved control board of a crate.
func (m *Mapper) ControlBoard(subsystem Subsystem, crate int32) (ControlBoardAddress, error) {
	switch subsystem {
	case SubsystemTracker:
		if err := checkRange(subsystem, "crate", crate, m.topology.Geiger.Crates); err != nil {
			return ControlBoardAddress{}, err
		}
		return ControlBoardAddress{
			ElectronicID: ElectronicID{Rack: m.topology.Geiger.RackID, Crate: crate, Board: m.topology.ControlBoardID},
			BoardType:    m.topology.TrackerControlBoardType,
		}, nil
	case SubsystemCalorimeter:
		if err := checkRange(subsystem, "crate", crate, m.topology.Calo.XWallGVetoCrateID+1); err != nil {
			return ControlBoardAddress{}, err
		}
		return ControlBoardAddress{
			ElectronicID: ElectronicID{Rack: m.topology.Calo.RackID, Crate: crate, Board: m.topology.ControlBoardID},
			BoardType:    m.topology.CalorimeterControlBoardType,
		}, nil
	case SubsystemTrigger:
		return ControlBoardAddress{}, &OutOfRangeError{Subsystem: subsystem, Field: "control board", Value: crate, Max: -1}
	default:
		panic(fmt.Sprintf("fecom: invalid subsystem %d", int(subsystem)))
	}
}

func (m *Mapper) mapGeiger(id GeomID) (ElectronicID, error) {
	g := m.topology.Geiger
	if err := checkRange(SubsystemTracker, "side", id.Side, g.NumberSides); err != nil {
		return ElectronicID{}, err
	}
	if err := checkRange(SubsystemTracker, "layer", id.Layer, g.LayerSize); err != nil {
		return ElectronicID{}, err
	}
	if err := checkRange(SubsystemTracker, "row", id.Row, g.RowSize); err != nil {
		return ElectronicID{}, err
	}

	crate, firstRow := g.crateOf(id.Row)
	var board, rowInBoard int32
	switch {
	case id.Row == g.LonelyRow:
		board = g.LonelyRowBoardID
		rowInBoard = 0
	case crate == g.LonelyRowCrateID && id.Row > g.LonelyRow:
		// Boards after the lonely one restart the row pairing at LonelyRow+1.
		offset := id.Row - (g.LonelyRow + 1)
		board = m.boardSlot(g.lowerBoards() + 1 + offset/g.RowsPerBoard)
		rowInBoard = offset % g.RowsPerBoard
	default:
		offset := id.Row - firstRow
		board = m.boardSlot(offset / g.RowsPerBoard)
		rowInBoard = offset % g.RowsPerBoard
	}

	channel := rowInBoard*g.cellsPerRow() + id.Side*g.LayerSize + id.Layer
	return ElectronicID{Rack: g.RackID, Crate: crate, Board: board, Channel: channel}, nil
}

func (m *Mapper) geigerGeometry(eid ElectronicID) (GeomID, error) {
	g := m.topology.Geiger
	if err := expectEqual(SubsystemTracker, "rack", eid.Rack, g.RackID); err != nil {
		return GeomID{}, err
	}
	if err := checkRange(SubsystemTracker, "crate", eid.Crate, g.Crates); err != nil {
		return GeomID{}, err
	}
	if err := checkRange(SubsystemTracker, "channel", eid.Channel, g.RowsPerBoard*g.cellsPerRow()); err != nil {
		return GeomID{}, err
	}
	rowInBoard := eid.Channel / g.cellsPerRow()
	side := (eid.Channel % g.cellsPerRow()) / g.LayerSize
	layer := eid.Channel % g.LayerSize

	var row int32
	if eid.Crate == g.LonelyRowCrateID && eid.Board == g.LonelyRowBoardID {
		if rowInBoard != 0 {
			return GeomID{}, &OutOfRangeError{Subsystem: SubsystemTracker, Field: "channel", Value: eid.Channel, Max: g.cellsPerRow()}
		}
		return GeigerCell(side, layer, g.LonelyRow), nil
	}

	index, err := m.boardIndex(SubsystemTracker, eid.Board)
	if err != nil {
		return GeomID{}, err
	}
	firstRow, lastRow := g.crateRows(eid.Crate)
	if eid.Crate == g.LonelyRowCrateID && index > g.lowerBoards() {
		row = g.LonelyRow + 1 + (index-g.lowerBoards()-1)*g.RowsPerBoard + rowInBoard
	} else {
		row = firstRow + index*g.RowsPerBoard + rowInBoard
		if eid.Crate == g.LonelyRowCrateID && row >= g.LonelyRow {
			return GeomID{}, &OutOfRangeError{Subsystem: SubsystemTracker, Field: "board", Value: eid.Board, Max: -1}
		}
	}
	if row > lastRow {
		return GeomID{}, &OutOfRangeError{Subsystem: SubsystemTracker, Field: "board", Value: eid.Board, Max: -1}
	}
	return GeigerCell(side, layer, row), nil
}

// crateOf returns the crate holding a row and the first row of that crate.
func (g GeigerTopology) crateOf(row int32) (int32, int32) {
	switch {
	case row <= g.Crate0Limit:
		return 0, 0
	case row <= g.Crate1Limit:
		return 1, g.Crate0Limit + 1
	default:
		return 2, g.Crate1Limit + 1
	}
}

func (g GeigerTopology) crateRows(crate int32) (int32, int32) {
	switch crate {
	case 0:
		return 0, g.Crate0Limit
	case 1:
		return g.Crate0Limit + 1, g.Crate1Limit
	default:
		return g.Crate1Limit + 1, g.RowSize - 1
	}
}

// lowerBoards is the number of paired boards before the lonely row.
func (g GeigerTopology) lowerBoards() int32 {
	first, _ := g.crateRows(g.LonelyRowCrateID)
	return (g.LonelyRow - first) / g.RowsPerBoard
}

func (g GeigerTopology) cellsPerRow() int32 {
	return g.NumberSides * g.LayerSize
}

func (m *Mapper) mapMainCalo(id GeomID) (ElectronicID, error) {
	c := m.topology.Calo
	if err := checkRange(SubsystemCalorimeter, "side", id.Side, c.MainWallCrates); err != nil {
		return ElectronicID{}, err
	}
	if err := checkRange(SubsystemCalorimeter, "column", id.Column, c.MainWallColumns); err != nil {
		return ElectronicID{}, err
	}
	if err := checkRange(SubsystemCalorimeter, "row", id.Row, c.MainWallRows); err != nil {
		return ElectronicID{}, err
	}
	return ElectronicID{
		Rack:    c.RackID,
		Crate:   id.Side,
		Board:   m.boardSlot(id.Column),
		Channel: id.Row,
	}, nil
}

func (m *Mapper) mapXCalo(id GeomID) (ElectronicID, error) {
	c := m.topology.Calo
	if err := checkRange(SubsystemCalorimeter, "side", id.Side, c.XWallSides); err != nil {
		return ElectronicID{}, err
	}
	if err := checkRange(SubsystemCalorimeter, "wall", id.Wall, c.XWallWalls); err != nil {
		return ElectronicID{}, err
	}
	if err := checkRange(SubsystemCalorimeter, "column", id.Column, c.XWallColumns); err != nil {
		return ElectronicID{}, err
	}
	if err := checkRange(SubsystemCalorimeter, "row", id.Row, c.XWallRows); err != nil {
		return ElectronicID{}, err
	}
	index := c.XWallFirstBoard + (id.Side*c.XWallWalls+id.Wall)*c.XWallColumns + id.Column
	return ElectronicID{
		Rack:    c.RackID,
		Crate:   c.XWallGVetoCrateID,
		Board:   m.boardSlot(index),
		Channel: id.Row,
	}, nil
}

func (m *Mapper) mapGVeto(id GeomID) (ElectronicID, error) {
	c := m.topology.Calo
	if err := checkRange(SubsystemCalorimeter, "side", id.Side, c.GVetoSides); err != nil {
		return ElectronicID{}, err
	}
	if err := checkRange(SubsystemCalorimeter, "wall", id.Wall, c.GVetoWalls); err != nil {
		return ElectronicID{}, err
	}
	if err := checkRange(SubsystemCalorimeter, "column", id.Column, c.GVetoColumns); err != nil {
		return ElectronicID{}, err
	}
	index := c.GVetoFirstBoard + id.Side*c.GVetoWalls + id.Wall
	return ElectronicID{
		Rack:    c.RackID,
		Crate:   c.XWallGVetoCrateID,
		Board:   m.boardSlot(index),
		Channel: id.Column,
	}, nil
}

func (m *Mapper) caloGeometry(eid ElectronicID) (GeomID, error) {
	c := m.topology.Calo
	if err := expectEqual(SubsystemCalorimeter, "rack", eid.Rack, c.RackID); err != nil {
		return GeomID{}, err
	}
	if err := checkRange(SubsystemCalorimeter, "crate", eid.Crate, c.XWallGVetoCrateID+1); err != nil {
		return GeomID{}, err
	}
	index, err := m.boardIndex(SubsystemCalorimeter, eid.Board)
	if err != nil {
		return GeomID{}, err
	}

	if eid.Crate < c.MainWallCrates {
		if err := checkRange(SubsystemCalorimeter, "board", index, c.MainWallColumns); err != nil {
			return GeomID{}, err
		}
		if err := checkRange(SubsystemCalorimeter, "channel", eid.Channel, c.MainWallRows); err != nil {
			return GeomID{}, err
		}
		return MainCalo(eid.Crate, index, eid.Channel), nil
	}

	xwallBoards := c.XWallSides * c.XWallWalls * c.XWallColumns
	switch {
	case index >= c.XWallFirstBoard && index < c.XWallFirstBoard+xwallBoards:
		if err := checkRange(SubsystemCalorimeter, "channel", eid.Channel, c.XWallRows); err != nil {
			return GeomID{}, err
		}
		j := index - c.XWallFirstBoard
		column := j % c.XWallColumns
		sideWall := j / c.XWallColumns
		return XCalo(sideWall/c.XWallWalls, sideWall%c.XWallWalls, column, eid.Channel), nil
	case index >= c.GVetoFirstBoard && index < c.GVetoFirstBoard+c.GVetoSides*c.GVetoWalls:
		if err := checkRange(SubsystemCalorimeter, "channel", eid.Channel, c.GVetoColumns); err != nil {
			return GeomID{}, err
		}
		j := index - c.GVetoFirstBoard
		return GVeto(j/c.GVetoWalls, j%c.GVetoWalls, eid.Channel), nil
	default:
		return GeomID{}, &OutOfRangeError{Subsystem: SubsystemCalorimeter, Field: "board", Value: eid.Board, Max: -1}
	}
}

func (m *Mapper) mapTrigger(id GeomID) (ElectronicID, error) {
	t := m.topology.Trigger
	if err := checkRange(SubsystemTrigger, "input", id.Column, t.Channels); err != nil {
		return ElectronicID{}, err
	}
	return ElectronicID{Rack: t.RackID, Crate: t.CrateID, Board: t.BoardID, Channel: id.Column}, nil
}

// boardSlot converts a linear board index into a crate slot, leaving the
// control board slot free.
func (m *Mapper) boardSlot(index int32) int32 {
	if index >= m.topology.ControlBoardID {
		return index + 1
	}
	return index
}

func (m *Mapper) boardIndex(subsystem Subsystem, slot int32) (int32, error) {
	switch {
	case slot < 0:
		return 0, &OutOfRangeError{Subsystem: subsystem, Field: "board", Value: slot, Max: -1}
	case slot == m.topology.ControlBoardID:
		return 0, &OutOfRangeError{Subsystem: subsystem, Field: "board (control)", Value: slot, Max: -1}
	case slot > m.topology.ControlBoardID:
		return slot - 1, nil
	default:
		return slot, nil
	}
}

func checkRange(subsystem Subsystem, field string, value int32, size int32) error {
	if value < 0 || value >= size {
		return &OutOfRangeError{Subsystem: subsystem, Field: field, Value: value, Max: size}
	}
	return nil
}

func expectEqual(subsystem Subsystem, field string, value int32, expected int32) error {
	if value != expected {
		return &OutOfRangeError{Subsystem: subsystem, Field: field, Value: value, Max: -1}
	}
	return nil
}

func typeMismatch(subsystem Subsystem, id GeomID) error {
	return &OutOfRangeError{Subsystem: subsystem, Field: "geometry type " + id.Type.String(), Value: int32(id.Type), Max: -1}
}
