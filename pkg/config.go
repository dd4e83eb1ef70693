package fecom

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

type ArchiveKind uint8

const (
	ArchiveFile ArchiveKind = iota
	ArchiveSQLite
	ArchiveHDF5
)

var archiveKindStrings = []string{
	"file",
	"sqlite",
	"hdf5",
}

func (a ArchiveKind) String() string {
	if a > ArchiveHDF5 {
		return "UNKNOWN"
	}
	return archiveKindStrings[a]
}

func ParseArchiveKind(s string) (ArchiveKind, error) {
	for i, v := range archiveKindStrings {
		if v == s {
			return ArchiveKind(i), nil
		}
	}
	return ArchiveFile, fmt.Errorf("invalid ArchiveKind: %s", s)
}

func (a ArchiveKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *ArchiveKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseArchiveKind(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a ArchiveKind) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *ArchiveKind) UnmarshalText(data []byte) error {
	parsed, err := ParseArchiveKind(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

type Configuration struct {
	Priority         Priority    `json:"priority" toml:"priority"`
	Codec            string      `json:"codec" toml:"codec"`
	Archive          ArchiveKind `json:"archive" toml:"archive"`
	FileIn           string      `json:"file_in" toml:"file_in"`
	FileOut          string      `json:"file_out" toml:"file_out"`
	RunID            string      `json:"run_id" toml:"run_id"`
	EnvFiles         []string    `json:"env_files" toml:"env_files"`
	Compression      Compression `json:"compression" toml:"compression"`
	CompressionLevel int         `json:"compression_level" toml:"compression_level"`
	NumWorkers       int         `json:"num_workers" toml:"num_workers"`
	NumEvents        int         `json:"num_events" toml:"num_events"`
	NoDB             bool        `json:"no_db" toml:"no_db"`
	Host             string      `json:"host" toml:"host"`
	User             string      `json:"user" toml:"user"`
	Passwd           string      `json:"pass" toml:"pass"`
	DBName           string      `json:"dbname" toml:"dbname"`
	RunNumber        int         `json:"run_number" toml:"run_number"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		Priority:         PrioWarning,
		Codec:            BinaryCodecName,
		Archive:          ArchiveFile,
		Compression:      CompressionNone,
		CompressionLevel: 0,
		NumWorkers:       1,
		NumEvents:        1,
		NoDB:             true,
		Host:             "localhost",
		User:             "snemo_reader",
		Passwd:           "readonly",
		DBName:           "SNEMO_COMMISSIONING",
	}
}

// LoadConfiguration reads a JSON configuration, or TOML when the file name
// ends in .toml, on top of DefaultConfiguration. An empty filename returns
// the defaults.
func LoadConfiguration(filename string) (Configuration, error) {
	config := DefaultConfiguration()
	if filename == "" {
		return config, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	if filepath.Ext(filename) == ".toml" {
		err = toml.Unmarshal(data, &config)
	} else {
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return config, fmt.Errorf("parsing %s: %w", filename, err)
	}
	return config, config.Validate()
}

func (c Configuration) Validate() error {
	var errs []error
	if !slices.Contains(codecNames, c.Codec) {
		errs = append(errs, fmt.Errorf("unknown codec %q, expected one of %v", c.Codec, codecNames))
	}
	if c.NumWorkers < 1 {
		errs = append(errs, fmt.Errorf("num_workers must be positive, got %d", c.NumWorkers))
	}
	if c.NumEvents < 0 {
		errs = append(errs, fmt.Errorf("num_events must not be negative, got %d", c.NumEvents))
	}
	if c.CompressionLevel < 0 || c.CompressionLevel > 22 {
		errs = append(errs, fmt.Errorf("compression_level %d not in [0, 22]", c.CompressionLevel))
	}
	if c.Archive == ArchiveHDF5 && c.CompressionLevel > 9 {
		errs = append(errs, fmt.Errorf("hdf5 deflate level %d not in [0, 9]", c.CompressionLevel))
	}
	return errors.Join(errs...)
}

// Options builds the component options for logger at the configured
// priority.
func (c Configuration) Options(logger Logger) Options {
	return Options{Logger: logger, Priority: c.Priority}
}
