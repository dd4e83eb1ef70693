package main

import (
	"errors"
	"fmt"

	fecom "github.com/supernemo-dbd/fecom_go/pkg"
	"github.com/supernemo-dbd/fecom_go/pkg/h5"
)

func openArchiveWriter(filename string, codec fecom.Codec) (fecom.ArchiveWriter, error) {
	if filename == "" {
		return nil, errors.New("no output file, set file_out or --output")
	}
	switch configuration.Archive {
	case fecom.ArchiveFile:
		w, err := fecom.CreateFileArchive(filename, fecom.FileArchiveOptions{
			Options:          opts,
			Compression:      configuration.Compression,
			CompressionLevel: configuration.CompressionLevel,
		})
		if err != nil {
			return nil, err
		}
		return w, nil
	case fecom.ArchiveSQLite:
		a, err := fecom.OpenSQLiteArchive(filename, fecom.SQLiteArchiveOptions{Options: opts, Codec: codec.Name()})
		if err != nil {
			return nil, err
		}
		if opts.Enabled(fecom.PrioInformation) {
			logger.Info(fmt.Sprintf("Writing run %s to %s", a.RunID(), filename), "archive")
		}
		return a, nil
	case fecom.ArchiveHDF5:
		w, err := h5.NewWriter(filename, h5.Options{Options: opts, CompressionLevel: configuration.CompressionLevel})
		if err != nil {
			return nil, err
		}
		return w.Archive(codec), nil
	default:
		return nil, fmt.Errorf("unsupported archive %s", configuration.Archive)
	}
}

func openArchiveReader(filename string, codec fecom.Codec) (fecom.ArchiveReader, error) {
	if filename == "" {
		return nil, errors.New("no input file, set file_in or --input")
	}
	switch configuration.Archive {
	case fecom.ArchiveFile:
		r, err := fecom.OpenFileArchive(filename, opts)
		if err != nil {
			return nil, err
		}
		return r, nil
	case fecom.ArchiveSQLite:
		a, err := fecom.OpenSQLiteArchiveReader(filename, fecom.SQLiteArchiveOptions{
			Options: opts,
			Codec:   codec.Name(),
			RunID:   configuration.RunID,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	case fecom.ArchiveHDF5:
		return nil, errors.New("hdf5 files are export only, read a file or sqlite archive instead")
	default:
		return nil, fmt.Errorf("unsupported archive %s", configuration.Archive)
	}
}
