package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	fecom "github.com/supernemo-dbd/fecom_go/pkg"
)

var (
	validateRun       int
	validateSubsystem string
)

var validateMapCmd = &cobra.Command{
	Use:   "validate-map",
	Short: "Check the channel mapping stored in the database",
	Long: `Loads the ChannelMapping table for a run and compares every entry with
the computed electronic address.`,
	Args: cobra.NoArgs,
	RunE: runValidateMap,
}

func init() {
	validateMapCmd.Flags().IntVar(&validateRun, "run", 0, "run number, overrides run_number")
	validateMapCmd.Flags().StringVar(&validateSubsystem, "subsystem", "", "tracker, calorimeter or trigger; all when empty")
	rootCmd.AddCommand(validateMapCmd)
}

func runValidateMap(cmd *cobra.Command, _ []string) error {
	if configuration.NoDB {
		return errors.New("database access disabled by no_db")
	}
	runNumber := configuration.RunNumber
	if cmd.Flags().Changed("run") {
		runNumber = validateRun
	}

	subsystems := []fecom.Subsystem{fecom.SubsystemCalorimeter, fecom.SubsystemTracker, fecom.SubsystemTrigger}
	if validateSubsystem != "" {
		subsystem, err := fecom.ParseSubsystem(validateSubsystem)
		if err != nil {
			return err
		}
		subsystems = []fecom.Subsystem{subsystem}
	}

	dbConn, err := fecom.ConnectToDatabase(configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
	if err != nil {
		return fmt.Errorf("error connection to database: %w", err)
	}
	defer dbConn.Close()

	mapper := fecom.NewMapper(fecom.SNEMOTopology())
	var errs []error
	for _, subsystem := range subsystems {
		cm, err := fecom.LoadChannelMapping(dbConn, subsystem, runNumber, opts)
		if err != nil {
			return err
		}
		if err := fecom.ValidateChannelMap(mapper, cm); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", subsystem, err))
			continue
		}
		cmd.Printf("%s: %d channels match\n", subsystem, cm.Len())
	}
	return errors.Join(errs...)
}
