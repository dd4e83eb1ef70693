package fecom

import (
	"encoding/json"
	"fmt"
)

type Logger interface {
	Info(message string, module string)
	Error(string)
}

type nopLogger struct{}

func (nopLogger) Info(string, string) {}
func (nopLogger) Error(string)        {}

// NopLogger discards everything.
var NopLogger Logger = nopLogger{}

// Priority is the logging threshold handed to each component. Messages
// with a priority above the threshold are not emitted.
type Priority int

const (
	PrioFatal Priority = iota
	PrioCritical
	PrioError
	PrioWarning
	PrioNotice
	PrioInformation
	PrioDebug
	PrioTrace
)

var priorityStrings = []string{
	"fatal",
	"critical",
	"error",
	"warning",
	"notice",
	"information",
	"debug",
	"trace",
}

func (p Priority) String() string {
	if p < PrioFatal || p > PrioTrace {
		return "UNKNOWN"
	}
	return priorityStrings[p]
}

func ParsePriority(s string) (Priority, error) {
	for i, v := range priorityStrings {
		if v == s {
			return Priority(i), nil
		}
	}
	return PrioWarning, fmt.Errorf("invalid priority: %s", s)
}

func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Priority) UnmarshalText(data []byte) error {
	parsed, err := ParsePriority(string(data))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Options carries the logging sink and threshold of a component.
type Options struct {
	Logger   Logger
	Priority Priority
}

func DefaultOptions() Options {
	return Options{Logger: NopLogger, Priority: PrioWarning}
}

func (o Options) logger() Logger {
	if o.Logger == nil {
		return NopLogger
	}
	return o.Logger
}

func (o Options) Enabled(p Priority) bool {
	return p <= o.Priority
}

func (o Options) logf(p Priority, module string, format string, args ...any) {
	if !o.Enabled(p) {
		return
	}
	o.logger().Info(fmt.Sprintf(format, args...), module)
}

func (o Options) errorf(format string, args ...any) {
	if !o.Enabled(PrioError) {
		return
	}
	o.logger().Error(fmt.Sprintf(format, args...))
}
