package printer

import "errors"

var (
	// ErrInvalidMode matches every *InvalidModeError.
	ErrInvalidMode = errors.New("invalid output mode")

	// ErrNoRenderer is returned when an HTML mode is requested from a
	// Printer that was built without a Renderer.
	ErrNoRenderer = errors.New("no HTML renderer configured")
)

// InvalidModeError reports a mode name or id outside the recognized set.
type InvalidModeError struct {
	// Value is the offending name, or the decimal form of the offending id.
	Value string
}

// Error returns the message with the offending value embedded.
func (e *InvalidModeError) Error() string {
	return "invalid output mode: " + e.Value
}

// Is reports whether target is ErrInvalidMode.
func (e *InvalidModeError) Is(target error) bool {
	return target == ErrInvalidMode
}
