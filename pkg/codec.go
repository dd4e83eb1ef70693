package fecom

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Codec turns a commissioning event into an opaque record and back. Codecs
// only rely on the event iteration and append operations.
type Codec interface {
	Name() string
	Encode(event *CommissioningEvent) ([]byte, error)
	// Decode returns a new event or an error; never a partially filled event.
	Decode(data []byte) (*CommissioningEvent, error)
}

const (
	BinaryCodecName  = "binary"
	MsgpackCodecName = "msgpack"
)

var codecNames = []string{BinaryCodecName, MsgpackCodecName}

func CodecByName(name string, opts Options) (Codec, error) {
	switch name {
	case BinaryCodecName, "":
		return NewBinaryCodec(opts), nil
	case MsgpackCodecName:
		return NewMsgpackCodec(opts), nil
	default:
		return nil, fmt.Errorf("unknown codec %q, expected one of %v", name, codecNames)
	}
}

// EncodeAll encodes independent events with at most workers goroutines.
// The returned records keep the order of events.
func EncodeAll(ctx context.Context, codec Codec, events []*CommissioningEvent, workers int) ([][]byte, error) {
	if workers < 1 {
		workers = 1
	}
	records := make([][]byte, len(events))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, event := range events {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			record, err := codec.Encode(event)
			if err != nil {
				return fmt.Errorf("encoding event %d: %w", i, err)
			}
			records[i] = record
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// DecodeAll is the counterpart of EncodeAll.
func DecodeAll(ctx context.Context, codec Codec, records [][]byte, workers int) ([]*CommissioningEvent, error) {
	if workers < 1 {
		workers = 1
	}
	events := make([]*CommissioningEvent, len(records))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, record := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			event, err := codec.Decode(record)
			if err != nil {
				return fmt.Errorf("decoding record %d: %w", i, err)
			}
			events[i] = event
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return events, nil
}
