package kv

import "errors"

// Sentinel errors for key-value stores.
var (
	ErrNotFound  = errors.New("kv: key not found")
	ErrEmptyKey  = errors.New("kv: empty key")
	ErrCorrupted = errors.New("kv: corrupted document")
)
