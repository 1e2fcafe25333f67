package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxIDLength bounds widget ids and store keys.
const maxIDLength = 128

// ValidateWidgetID validates a widget identifier supplied by a caller.
//
// The rules are conservative because ids end up in store keys and URLs:
//   - No empty ids
//   - No control characters or whitespace
//   - No path separators
//   - Maximum length of 128 characters
func ValidateWidgetID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "widget id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "widget id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "widget id contains invalid characters")
		}
	}
	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "widget id cannot contain path separators")
	}
	return nil
}

// sizeIDRegex matches canonical ("2x1") and alias ("medium") size identifiers.
var sizeIDRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidateSizeID validates the syntax of a size identifier.
// Whether the size is known is decided by the registry, not here.
func ValidateSizeID(size string) error {
	if size == "" {
		return New(ErrCodeInvalidSize, "size cannot be empty")
	}
	if len(size) > 32 {
		return New(ErrCodeInvalidSize, "size identifier too long: %q", size)
	}
	if !sizeIDRegex.MatchString(size) {
		return New(ErrCodeInvalidSize, "invalid size identifier: %q", size)
	}
	return nil
}

// ValidatePosition validates a grid position for a footprint of the given width.
// Rows are unbounded; columns must keep the whole footprint inside the grid.
func ValidatePosition(col, row, cols, gridCols int) error {
	if col < 0 || row < 0 {
		return New(ErrCodeInvalidPosition, "position (%d,%d) is negative", col, row)
	}
	if col+cols > gridCols {
		return New(ErrCodeInvalidPosition, "position (%d,%d) with width %d exceeds %d columns", col, row, cols, gridCols)
	}
	return nil
}

// ValidateStoreKey validates a persistence key or key prefix.
//
// Validation rules:
//   - Key cannot be empty
//   - Maximum length of 128 characters
//   - No control characters or whitespace
//   - No path traversal sequences (..)
func ValidateStoreKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "key cannot be empty")
	}
	if len(key) > maxIDLength {
		return New(ErrCodeInvalidKey, "key too long (max %d characters)", maxIDLength)
	}
	for _, r := range key {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidKey, "key contains invalid characters")
		}
	}
	if strings.Contains(key, "..") {
		return New(ErrCodeInvalidKey, "key cannot contain path traversal sequences (..)")
	}
	return nil
}
