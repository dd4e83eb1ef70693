package main

import (
	"fmt"

	"github.com/spf13/cobra"
	fecom "github.com/supernemo-dbd/fecom_go/pkg"
)

var (
	readInput string
	readDump  bool
	readMax   int
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read and dump commissioning events from an archive",
	Args:  cobra.NoArgs,
	RunE:  runRead,
}

func init() {
	readCmd.Flags().StringVarP(&readInput, "input", "i", "", "input file, overrides file_in")
	readCmd.Flags().BoolVar(&readDump, "dump", true, "print every event")
	readCmd.Flags().IntVar(&readMax, "max", 0, "stop after this many events, 0 reads all")
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, _ []string) error {
	filename := configuration.FileIn
	if readInput != "" {
		filename = readInput
	}
	codec, err := fecom.CodecByName(configuration.Codec, opts)
	if err != nil {
		return err
	}
	archive, err := openArchiveReader(filename, codec)
	if err != nil {
		return err
	}
	reader := fecom.NewEventReader(codec, archive, opts)
	defer reader.Close()

	var nCalo, nTracker int
	for event, err := range reader.Events() {
		if err != nil {
			return err
		}
		for hit := range event.Hits() {
			switch hit.Mode() {
			case fecom.HitModeCalorimeter:
				nCalo++
			case fecom.HitModeTracker:
				nTracker++
			}
			if !hit.IsValid() && opts.Enabled(fecom.PrioWarning) {
				logger.Info(fmt.Sprintf("event %d: invalid %s hit %d", event.TriggerID(), hit.Mode(), hit.Base().HitID), "read")
			}
		}
		if readDump {
			event.Dump(cmd.OutOrStdout(), fmt.Sprintf("Commissioning event #%d", reader.Count()-1), "")
		}
		if readMax > 0 && reader.Count() >= readMax {
			break
		}
	}
	cmd.Printf("%d events read from %s: %d calo hits, %d tracker hits\n", reader.Count(), filename, nCalo, nTracker)
	return nil
}
