package omnibus

import (
	"unicode/utf8"

	"github.com/wippyai/ffi-omnibus/errors"
)

// ValidateText returns s if it is valid UTF-8 and fails fast otherwise.
// Boundaries call it on every borrowed text before any operation sees it.
func ValidateText(op, s string) string {
	if !utf8.ValidString(s) {
		errors.Violate(errors.InvalidUTF8(op, s))
	}
	return s
}
