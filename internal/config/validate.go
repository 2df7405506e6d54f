package config

import (
	"strconv"
	"strings"

	"github.com/thoreinstein/rbak/internal/backup"
	"github.com/thoreinstein/rbak/internal/errors"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates the version field is not CurrentVersion.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidName indicates a suffix or extension that cannot be used in a
	// file name.
	ErrInvalidName = errors.New("invalid name component")

	// ErrInvalidPolicy indicates an unrecognized on_unsupported value.
	ErrInvalidPolicy = errors.New("invalid on_unsupported policy")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version != CurrentVersion {
		errs = append(errs, &FieldError{Field: "version", Value: strconv.Itoa(cfg.Version), Err: ErrUnsupportedVersion})
	}

	if err := validateName(strings.TrimPrefix(cfg.FileExtension, ".")); err != nil {
		errs = append(errs, &FieldError{Field: "file_extension", Value: cfg.FileExtension, Err: err})
	}

	if err := validateName(cfg.DirSuffix); err != nil {
		errs = append(errs, &FieldError{Field: "dir_suffix", Value: cfg.DirSuffix, Err: err})
	}

	if _, err := backup.ParseUnsupportedPolicy(cfg.OnUnsupported); err != nil {
		errs = append(errs, &FieldError{Field: "on_unsupported", Value: cfg.OnUnsupported, Err: ErrInvalidPolicy})
	}

	return errs
}

// validateName checks that s can be appended to a file name.
func validateName(s string) error {
	if s == "" {
		return ErrInvalidName
	}
	if strings.ContainsAny(s, "/\\\x00") {
		return ErrInvalidName
	}
	return nil
}

// FieldError represents an error for a specific config field.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
