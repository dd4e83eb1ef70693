package fecom

import (
	"errors"
	"fmt"
	"io"
	"iter"
)

// ArchiveWriter persists opaque records in order.
type ArchiveWriter interface {
	Store(record []byte) error
	Close() error
}

// ArchiveReader returns stored records in the order they were written.
// Load returns io.EOF once every record was read.
type ArchiveReader interface {
	Load() ([]byte, error)
	Close() error
}

// EventWriter encodes events with a codec and stores them in an archive.
type EventWriter struct {
	codec   Codec
	archive ArchiveWriter
	opts    Options
	count   int
}

func NewEventWriter(codec Codec, archive ArchiveWriter, opts Options) *EventWriter {
	return &EventWriter{codec: codec, archive: archive, opts: opts}
}

func (w *EventWriter) Write(event *CommissioningEvent) error {
	record, err := w.codec.Encode(event)
	if err != nil {
		return err
	}
	return w.StoreRecord(record)
}

// StoreRecord stores a record already encoded with the writer codec.
func (w *EventWriter) StoreRecord(record []byte) error {
	if err := w.archive.Store(record); err != nil {
		return fmt.Errorf("storing record %d: %w", w.count, err)
	}
	w.count++
	w.opts.logf(PrioDebug, "eventWriter", "stored record %d (%d bytes)", w.count, len(record))
	return nil
}

func (w *EventWriter) Count() int {
	return w.count
}

func (w *EventWriter) Close() error {
	w.opts.logf(PrioInformation, "eventWriter", "%d records written with codec %s", w.count, w.codec.Name())
	return w.archive.Close()
}

// EventReader loads records from an archive and decodes them.
type EventReader struct {
	codec   Codec
	archive ArchiveReader
	opts    Options
	count   int
}

func NewEventReader(codec Codec, archive ArchiveReader, opts Options) *EventReader {
	return &EventReader{codec: codec, archive: archive, opts: opts}
}

// Read returns the next event, or io.EOF when the archive is exhausted.
func (r *EventReader) Read() (*CommissioningEvent, error) {
	record, err := r.archive.Load()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("loading record %d: %w", r.count, err)
	}
	event, err := r.codec.Decode(record)
	if err != nil {
		r.opts.errorf("record %d cannot be decoded with codec %s: %v", r.count, r.codec.Name(), err)
		return nil, fmt.Errorf("decoding record %d: %w", r.count, err)
	}
	r.count++
	return event, nil
}

// Events iterates until the end of the archive. Iteration stops at the
// first error, which is yielded with a nil event.
func (r *EventReader) Events() iter.Seq2[*CommissioningEvent, error] {
	return func(yield func(*CommissioningEvent, error) bool) {
		for {
			event, err := r.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(event, err) || err != nil {
				return
			}
		}
	}
}

func (r *EventReader) Count() int {
	return r.count
}

func (r *EventReader) Close() error {
	return r.archive.Close()
}
