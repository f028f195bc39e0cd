package file

import "errors"

var (
	// ErrInvalidConfig indicates a configuration value is out of range or malformed.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedFormat indicates the configuration file extension is not recognised.
	ErrUnsupportedFormat = errors.New("unsupported configuration format")
)
