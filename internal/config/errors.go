package config

import (
	"errors"
	"fmt"
)

var (
	// ErrLoadConfig marks failures reading the YAML file or the environment.
	ErrLoadConfig = errors.New("load config failed")
	// ErrInvalidConfig marks settings that loaded but cannot be used.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrUnknownWeight marks a score_weights entry that names no category.
	ErrUnknownWeight = fmt.Errorf("%w: unknown score weight", ErrInvalidConfig)
)
