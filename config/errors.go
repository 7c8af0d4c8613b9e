package config

import "errors"

var (
	ErrEmptyPath         = errors.New("config: empty config path")
	ErrUnsupportedFormat = errors.New("config: unsupported config format")
	ErrLoadFailed        = errors.New("config: failed to load config")
	ErrParseFailed       = errors.New("config: failed to parse config")
	ErrUnmarshalFailed   = errors.New("config: failed to unmarshal config")
	ErrInvalid           = errors.New("config: invalid value")
)
