package main

import (
	"fmt"

	"github.com/spf13/cobra"
	fecom "github.com/supernemo-dbd/fecom_go/pkg"
)

var (
	mapType   string
	mapSide   int32
	mapWall   int32
	mapLayer  int32
	mapRow    int32
	mapColumn int32
	mapTable  string
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Print the electronic address of a detector channel",
	Long: `Maps a geometry id onto its rack, crate, board and channel.
With --table, prints the whole channel map of a subsystem instead.`,
	Args: cobra.NoArgs,
	RunE: runMap,
}

func init() {
	mapCmd.Flags().StringVar(&mapType, "type", "geiger", "geometry type: geiger, main_calo, xcalo, gveto or trigger")
	mapCmd.Flags().Int32Var(&mapSide, "side", 0, "detector side")
	mapCmd.Flags().Int32Var(&mapWall, "wall", 0, "x-wall or gamma veto wall")
	mapCmd.Flags().Int32Var(&mapLayer, "layer", 0, "geiger layer")
	mapCmd.Flags().Int32Var(&mapRow, "row", 0, "geiger or calorimeter row")
	mapCmd.Flags().Int32Var(&mapColumn, "column", 0, "calorimeter column or trigger input")
	mapCmd.Flags().StringVar(&mapTable, "table", "", "print the channel map of a subsystem: tracker, calorimeter or trigger")
	rootCmd.AddCommand(mapCmd)
}

func geomIDFromFlags() (fecom.GeomID, error) {
	geomType, err := fecom.ParseGeomType(mapType)
	if err != nil {
		return fecom.GeomID{}, err
	}
	switch geomType {
	case fecom.GeomGeigerCell:
		return fecom.GeigerCell(mapSide, mapLayer, mapRow), nil
	case fecom.GeomMainCalo:
		return fecom.MainCalo(mapSide, mapColumn, mapRow), nil
	case fecom.GeomXCalo:
		return fecom.XCalo(mapSide, mapWall, mapColumn, mapRow), nil
	case fecom.GeomGVeto:
		return fecom.GVeto(mapSide, mapWall, mapColumn), nil
	default:
		return fecom.TriggerInput(mapColumn), nil
	}
}

func runMap(cmd *cobra.Command, _ []string) error {
	mapper := fecom.NewMapper(fecom.SNEMOTopology())

	if mapTable != "" {
		subsystem, err := fecom.ParseSubsystem(mapTable)
		if err != nil {
			return err
		}
		cm, err := mapper.ChannelMap(subsystem)
		if err != nil {
			return err
		}
		for _, eid := range cm.SortedElectronicIDs() {
			cmd.Printf("%s -> %s\n", eid, cm.ToGeomID[eid])
		}
		cmd.Printf("%d %s channels\n", cm.Len(), subsystem)
		return nil
	}

	gid, err := geomIDFromFlags()
	if err != nil {
		return err
	}
	subsystem := gid.Type.Subsystem()
	eid, err := mapper.Map(gid, subsystem)
	if err != nil {
		return err
	}
	cmd.Printf("%s -> %s\n", gid, eid)

	if subsystem != fecom.SubsystemTrigger {
		control, err := mapper.ControlBoard(subsystem, eid.Crate)
		if err != nil {
			return err
		}
		cmd.Printf("control board: %s (type %d)\n", control.ElectronicID, control.BoardType)
	}
	if opts.Enabled(fecom.PrioDebug) {
		logger.Info(fmt.Sprintf("mapped %s in subsystem %s", gid, subsystem), "map")
	}
	return nil
}
