package fecom

// Electronic id index.
const (
	RackIndex  = 0
	CrateIndex = 1
	BoardIndex = 2
)

const (
	TrackerControlBoardType     int32 = 666
	CalorimeterControlBoardType int32 = 666

	CaloRackID    int32 = 3
	TriggerRackID int32 = 3
	GeigerRackID  int32 = 5

	MaxNumberOfCrate  int32 = 2
	XWallGVetoCrateID int32 = 2
	TriggerCrateID    int32 = 2

	ControlBoardID int32 = 10
	TriggerBoardID int32 = 20

	ThreeWiresCrate0Limit int32 = 37
	ThreeWiresCrate1Limit int32 = 74
	ThreeWiresLonelyRow   int32 = 56

	GeigerLayerSize int32 = 9
	GeigerRowSize   int32 = 113
)

// Topology is the static numbering table of the detector readout. A
// Mapper never reads a literal outside of this table.
type Topology struct {
	TrackerControlBoardType     int32
	CalorimeterControlBoardType int32
	ControlBoardID              int32
	TriggerBoardID              int32

	Geiger  GeigerTopology
	Calo    CaloTopology
	Trigger TriggerTopology
}

type GeigerTopology struct {
	RackID      int32
	Crates      int32
	NumberSides int32
	LayerSize   int32
	RowSize     int32
	// Last row (inclusive) of crate 0 and crate 1; later rows go to crate 2.
	Crate0Limit int32
	Crate1Limit int32
	// The lonely row has no partner row and owns a board of its own.
	LonelyRow        int32
	LonelyRowCrateID int32
	LonelyRowBoardID int32
	RowsPerBoard     int32
	BoardSlots       int32
}

type CaloTopology struct {
	RackID            int32
	MainWallCrates    int32
	MainWallColumns   int32
	MainWallRows      int32
	XWallGVetoCrateID int32
	XWallSides        int32
	XWallWalls        int32
	XWallColumns      int32
	XWallRows         int32
	XWallFirstBoard   int32
	GVetoSides        int32
	GVetoWalls        int32
	GVetoColumns      int32
	GVetoFirstBoard   int32
}

type TriggerTopology struct {
	RackID   int32
	CrateID  int32
	BoardID  int32
	Channels int32
}

// SNEMOTopology returns the commissioning numbering scheme.
func SNEMOTopology() Topology {
	return Topology{
		TrackerControlBoardType:     TrackerControlBoardType,
		CalorimeterControlBoardType: CalorimeterControlBoardType,
		ControlBoardID:              ControlBoardID,
		TriggerBoardID:              TriggerBoardID,
		Geiger: GeigerTopology{
			RackID:           GeigerRackID,
			Crates:           3,
			NumberSides:      2,
			LayerSize:        GeigerLayerSize,
			RowSize:          GeigerRowSize,
			Crate0Limit:      ThreeWiresCrate0Limit,
			Crate1Limit:      ThreeWiresCrate1Limit,
			LonelyRow:        ThreeWiresLonelyRow,
			LonelyRowCrateID: 1,
			LonelyRowBoardID: ControlBoardID - 1,
			RowsPerBoard:     2,
			BoardSlots:       20,
		},
		Calo: CaloTopology{
			RackID:            CaloRackID,
			MainWallCrates:    MaxNumberOfCrate,
			MainWallColumns:   20,
			MainWallRows:      13,
			XWallGVetoCrateID: XWallGVetoCrateID,
			XWallSides:        2,
			XWallWalls:        2,
			XWallColumns:      2,
			XWallRows:         16,
			XWallFirstBoard:   0,
			GVetoSides:        2,
			GVetoWalls:        2,
			GVetoColumns:      16,
			GVetoFirstBoard:   8,
		},
		Trigger: TriggerTopology{
			RackID:   TriggerRackID,
			CrateID:  TriggerCrateID,
			BoardID:  TriggerBoardID,
			Channels: 16,
		},
	}
}
