package fecom

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfRange         = errors.New("geometry coordinate out of range")
	ErrIndexOutOfRange    = errors.New("waveform sample index out of range")
	ErrInvariantViolation = errors.New("commissioning event invariant violated")
	ErrCorruptedStream    = errors.New("corrupted stream")
)

// OutOfRangeError is returned by the mapper when a coordinate lies outside
// the bounds declared for its subsystem.
type OutOfRangeError struct {
	Subsystem Subsystem
	Field     string
	Value     int32
	Max       int32
}

func (e *OutOfRangeError) Error() string {
	if e.Max < 0 {
		return fmt.Sprintf("%s: %s %s %d", ErrOutOfRange, e.Subsystem, e.Field, e.Value)
	}
	return fmt.Sprintf("%s: %s %s %d not in [0, %d)", ErrOutOfRange, e.Subsystem, e.Field, e.Value, e.Max)
}

func (e *OutOfRangeError) Unwrap() error {
	return ErrOutOfRange
}

// IndexOutOfRangeError is returned when a waveform sample is addressed
// beyond the declared waveform size.
type IndexOutOfRangeError struct {
	Index int
	Size  int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("%s: index %d, waveform data size %d", ErrIndexOutOfRange, e.Index, e.Size)
}

func (e *IndexOutOfRangeError) Unwrap() error {
	return ErrIndexOutOfRange
}

// InvariantViolationError reports a trigger id inconsistency between an
// event and a hit, or a trigger id change once hits exist.
type InvariantViolationError struct {
	EventTriggerID uint32
	HitTriggerID   uint32
	Reason         string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("%s: %s (event trigger id %d, hit trigger id %d)",
		ErrInvariantViolation, e.Reason, e.EventTriggerID, e.HitTriggerID)
}

func (e *InvariantViolationError) Unwrap() error {
	return ErrInvariantViolation
}

// CorruptedStreamError is returned by decoders and archive readers on
// malformed or truncated input. Offset is negative when unknown.
type CorruptedStreamError struct {
	Codec  string
	Offset int64
	Reason string
	Err    error
}

func (e *CorruptedStreamError) Error() string {
	var msg string
	if e.Offset < 0 {
		msg = fmt.Sprintf("%s (%s): %s", ErrCorruptedStream, e.Codec, e.Reason)
	} else {
		msg = fmt.Sprintf("%s (%s, offset %d): %s", ErrCorruptedStream, e.Codec, e.Offset, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CorruptedStreamError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrCorruptedStream, e.Err}
	}
	return []error{ErrCorruptedStream}
}

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error {
	return e.Err
}

// ErrCreateGroup represents an error when creating a group.
type ErrCreateGroup struct {
	GroupName string
	Err       error
}

func (e *ErrCreateGroup) Error() string {
	return fmt.Sprintf("error creating group %q: %v", e.GroupName, e.Err)
}

func (e *ErrCreateGroup) Unwrap() error {
	return e.Err
}

// ErrCreateTable represents an error when creating a table.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.TableName, e.Err)
}

func (e *ErrCreateTable) Unwrap() error {
	return e.Err
}
