package errors

import (
	"strings"
	"unicode"
)

// MaxLineLength bounds a single scenario line.
const MaxLineLength = 1 << 20

// ValidatePath validates a file path given on the command line or in config.
//
// Validation rules:
//   - Path cannot be empty or whitespace
//   - No null bytes or control characters
//   - Maximum length of 4096 characters
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateLine checks a raw scenario line before tokenizing.
// Tabs and carriage returns are tolerated since lines are trimmed.
func ValidateLine(line string) error {
	if len(line) > MaxLineLength {
		return New(ErrCodeInvalidInput, "line too long (max %d bytes)", MaxLineLength)
	}
	for _, r := range line {
		if r == '\t' || r == '\r' {
			continue
		}
		if r == unicode.ReplacementChar || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "line contains invalid characters")
		}
	}
	return nil
}
