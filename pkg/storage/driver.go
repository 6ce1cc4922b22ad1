package storage

import (
	"fmt"

	"castellan-hq/castellan/pkg/storage/codec"
)

// Driver identifies a storage backend format.
type Driver string

const (
	// DriverJSON stores policies as JSON arrays.
	DriverJSON Driver = "json"

	// DriverYAML stores policies as YAML sequences.
	DriverYAML Driver = "yaml"

	// DriverXML stores policies as XML rule documents.
	DriverXML Driver = "xml"

	// DriverTOML stores policies as TOML rule tables.
	DriverTOML Driver = "toml"

	// DriverSerialized stores policies in Go's native gob encoding.
	DriverSerialized Driver = "serialized"

	// DriverDatabase delegates to an externally supplied database-backed
	// repository. The core never implements it, only consumes the same
	// repository contract.
	DriverDatabase Driver = "database"
)

// ParseDriver converts a configuration string into a Driver.
func ParseDriver(s string) (Driver, error) {
	switch Driver(s) {
	case DriverJSON, DriverYAML, DriverXML, DriverTOML, DriverSerialized, DriverDatabase:
		return Driver(s), nil
	default:
		return "", &UnknownDriverError{Driver: s}
	}
}

// Valid reports whether the driver is one of the defined values.
func (d Driver) Valid() bool {
	switch d {
	case DriverJSON, DriverYAML, DriverXML, DriverTOML, DriverSerialized, DriverDatabase:
		return true
	default:
		return false
	}
}

// Codec returns the codec for a file-backed driver. The database driver has
// no codec.
func (d Driver) Codec() (codec.Codec, error) {
	switch d {
	case DriverJSON:
		return codec.JSON{}, nil
	case DriverYAML:
		return codec.YAML{}, nil
	case DriverXML:
		return codec.XML{}, nil
	case DriverTOML:
		return codec.TOML{}, nil
	case DriverSerialized:
		return codec.Serialized{}, nil
	default:
		return nil, fmt.Errorf("driver %q has no file codec", d)
	}
}

// FileMode selects between one aggregate policy file and a directory of
// fragment files.
type FileMode string

const (
	// FileModeSingle keeps the whole rule sequence in policies.<ext>.
	FileModeSingle FileMode = "single"

	// FileModeMultiple treats every *.<ext> file in the policies directory
	// as a fragment; fragments are concatenated in filename order.
	FileModeMultiple FileMode = "multiple"
)

// ParseFileMode converts a configuration string into a FileMode.
func ParseFileMode(s string) (FileMode, error) {
	switch FileMode(s) {
	case FileModeSingle, FileModeMultiple:
		return FileMode(s), nil
	default:
		return "", fmt.Errorf("file mode %q is not supported", s)
	}
}
