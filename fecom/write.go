package main

import (
	"fmt"

	"github.com/spf13/cobra"
	fecom "github.com/supernemo-dbd/fecom_go/pkg"
)

var (
	writeOutput       string
	writeEvents       int
	writeFirstTrigger uint32
)

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Write reference commissioning events to an archive",
	Long: `Builds the reference commissioning event (one calorimeter hit with a
16 sample waveform and seven tracker hits) for consecutive trigger ids,
encodes the events in parallel and stores them in the configured archive.`,
	Args: cobra.NoArgs,
	RunE: runWrite,
}

func init() {
	writeCmd.Flags().StringVarP(&writeOutput, "output", "o", "", "output file, overrides file_out")
	writeCmd.Flags().IntVarP(&writeEvents, "events", "n", 0, "number of events, overrides num_events")
	writeCmd.Flags().Uint32Var(&writeFirstTrigger, "first-trigger", 12, "trigger id of the first event")
	rootCmd.AddCommand(writeCmd)
}

func runWrite(cmd *cobra.Command, _ []string) error {
	filename := configuration.FileOut
	if writeOutput != "" {
		filename = writeOutput
	}
	nEvents := configuration.NumEvents
	if cmd.Flags().Changed("events") {
		nEvents = writeEvents
	}

	codec, err := fecom.CodecByName(configuration.Codec, opts)
	if err != nil {
		return err
	}

	events := make([]*fecom.CommissioningEvent, nEvents)
	for i := range events {
		events[i], err = fecom.NewReferenceEvent(writeFirstTrigger + uint32(i))
		if err != nil {
			return fmt.Errorf("building event %d: %w", i, err)
		}
	}

	records, err := fecom.EncodeAll(cmd.Context(), codec, events, configuration.NumWorkers)
	if err != nil {
		return err
	}

	archive, err := openArchiveWriter(filename, codec)
	if err != nil {
		return err
	}
	writer := fecom.NewEventWriter(codec, archive, opts)
	for _, record := range records {
		if err := writer.StoreRecord(record); err != nil {
			writer.Close()
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", filename, err)
	}
	cmd.Printf("%d events written to %s (%s, codec %s)\n", writer.Count(), filename, configuration.Archive, codec.Name())
	return nil
}
