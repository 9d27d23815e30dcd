package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateRange checks that v lies within [lo, hi].
// The returned error uses code so callers can tell which setting was rejected.
func ValidateRange(code Code, name string, v, lo, hi int) error {
	if v < lo || v > hi {
		return New(code, "%s %d outside [%d, %d]", name, v, lo, hi)
	}
	return nil
}

// ValidateOutputPath rejects output paths that are empty, contain control
// characters, or point at a directory-like location (trailing separator).
func ValidateOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid control characters")
		}
	}
	if strings.HasSuffix(path, string(filepath.Separator)) || strings.HasSuffix(path, "/") {
		return New(ErrCodeInvalidPath, "output path %q names a directory", path)
	}
	return nil
}
