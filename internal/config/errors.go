package config

import (
	"fmt"
	"strings"
)

// Kind classifies config resolution failures.
type Kind int

const (
	// KindNotFound means the config file (or a file it extends) is missing.
	KindNotFound Kind = iota
	// KindParse means the YAML could not be parsed, or the extends chain is
	// malformed (for example, cyclic).
	KindParse
	// KindValidation means the merged config violates the schema. Violations
	// lists every violated field path, not just the first.
	KindValidation
)

// Error is the failure type returned by Resolve.
type Error struct {
	Kind       Kind
	Path       string
	Violations []string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("config file not found: %s", e.Path)
	case KindParse:
		return fmt.Sprintf("invalid config %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("invalid config %s: %s", e.Path, strings.Join(e.Violations, "; "))
	}
}

func (e *Error) Unwrap() error { return e.Err }
