package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	fecom "github.com/supernemo-dbd/fecom_go/pkg"
)

var (
	logger  fecom.SlogLogger
	verbose bool
)

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	logger = fecom.SlogLogger{
		InfoLog:  slog.New(slog.NewTextHandler(os.Stdout, opts)),
		ErrorLog: slog.New(slog.NewJSONHandler(os.Stderr, opts)),
	}
}

type setting struct {
	codec       string
	compression fecom.Compression
	level       int
}

var settings = []setting{
	{fecom.BinaryCodecName, fecom.CompressionNone, 0},
	{fecom.BinaryCodecName, fecom.CompressionZstd, 1},
	{fecom.BinaryCodecName, fecom.CompressionZstd, 3},
	{fecom.BinaryCodecName, fecom.CompressionZstd, 9},
	{fecom.BinaryCodecName, fecom.CompressionZstd, 19},
	{fecom.MsgpackCodecName, fecom.CompressionNone, 0},
	{fecom.MsgpackCodecName, fecom.CompressionZstd, 3},
	{fecom.MsgpackCodecName, fecom.CompressionZstd, 19},
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	nEvents := flag.Int("events", 10000, "Number of reference events")
	loops := flag.Int("loops", 3, "Repetitions of every setting")
	outDir := flag.String("out", os.TempDir(), "Directory for the archives")
	flag.BoolVar(&verbose, "verbose", false, "Log every encoded and decoded item")
	flag.Parse()

	configuration, err := fecom.LoadConfiguration(*configFilename)
	if err != nil {
		logger.Error(fmt.Errorf("Error reading configuration file: %w", err).Error())
		os.Exit(1)
	}
	opts := configuration.Options(logger)

	events := make([]*fecom.CommissioningEvent, *nEvents)
	for i := range events {
		if events[i], err = fecom.NewReferenceEvent(uint32(i)); err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
	}

	start := time.Now()
	for _, s := range settings {
		for i := 0; i < *loops; i++ {
			filename := filepath.Join(*outDir, fmt.Sprintf("fecom_%s_%s_%d.fcar", s.codec, s.compression, s.level))
			result, err := measure(s, events, filename, configuration.NumWorkers, opts)
			if err != nil {
				logger.Error(fmt.Sprintf("(%s, %s %d): %v", s.codec, s.compression, s.level, err))
				break
			}
			fmt.Printf("(%s, %s %d) encode %d ms, write %d ms, read %d ms, size %d bytes\n",
				s.codec, s.compression, s.level,
				result.encode.Milliseconds(), result.write.Milliseconds(), result.read.Milliseconds(), result.size)
			os.Remove(filename)
		}
	}
	fmt.Printf("Total time: %d ms\n", time.Since(start).Milliseconds())
}

type measurement struct {
	encode time.Duration
	write  time.Duration
	read   time.Duration
	size   int64
}

func measure(s setting, events []*fecom.CommissioningEvent, filename string, numWorkers int, opts fecom.Options) (measurement, error) {
	var m measurement
	codec, err := fecom.CodecByName(s.codec, opts)
	if err != nil {
		return m, err
	}

	start := time.Now()
	records, err := encodeEvents(codec, events, numWorkers)
	if err != nil {
		return m, err
	}
	m.encode = time.Since(start)

	start = time.Now()
	archive, err := fecom.CreateFileArchive(filename, fecom.FileArchiveOptions{
		Options:          opts,
		Compression:      s.compression,
		CompressionLevel: s.level,
	})
	if err != nil {
		return m, err
	}
	writer := fecom.NewEventWriter(codec, archive, opts)
	for _, record := range records {
		if err := writer.StoreRecord(record); err != nil {
			writer.Close()
			return m, err
		}
	}
	if err := writer.Close(); err != nil {
		return m, err
	}
	m.write = time.Since(start)

	fileInfo, err := os.Stat(filename)
	if err != nil {
		return m, fmt.Errorf("error getting file info: %w", err)
	}
	m.size = fileInfo.Size()

	start = time.Now()
	reader, err := fecom.OpenFileArchive(filename, opts)
	if err != nil {
		return m, err
	}
	defer reader.Close()
	stored := make([][]byte, 0, len(events))
	for range events {
		record, err := reader.Load()
		if err != nil {
			return m, err
		}
		stored = append(stored, record)
	}
	decoded, err := decodeRecords(codec, stored, numWorkers)
	if err != nil {
		return m, err
	}
	m.read = time.Since(start)

	for i := range events {
		if !events[i].Equal(decoded[i]) {
			return m, fmt.Errorf("event %d differs after the round trip", i)
		}
	}
	return m, nil
}
