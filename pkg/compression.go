package fecom

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compression is the payload compression of a file archive.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZstd
)

var compressionStrings = []string{
	"none",
	"zstd",
}

func (c Compression) String() string {
	if c > CompressionZstd {
		return "UNKNOWN"
	}
	return compressionStrings[c]
}

func ParseCompression(s string) (Compression, error) {
	for i, v := range compressionStrings {
		if v == s {
			return Compression(i), nil
		}
	}
	return CompressionNone, fmt.Errorf("invalid Compression: %s", s)
}

func (c Compression) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Compression) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCompression(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Compression) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Compression) UnmarshalText(data []byte) error {
	parsed, err := ParseCompression(string(data))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// zstdLevel maps a zstd command line level (1-22) onto the encoder presets.
// Zero selects the default.
func zstdLevel(level int) zstd.EncoderLevel {
	if level <= 0 {
		return zstd.SpeedDefault
	}
	return zstd.EncoderLevelFromZstd(level)
}
