package printer

import "strconv"

// OutputMode is one of the recognized output representations.
type OutputMode int

const (
	// ModeJSON is a pretty-printed JSON document.
	ModeJSON OutputMode = iota

	// ModeHTML is an HTML report.
	ModeHTML

	// ModeDOMHTML is an alias for the HTML report. It keeps its own name and
	// id in the registry; only the builder treats it like ModeHTML.
	ModeDOMHTML
)

// modeNames is indexed by OutputMode. Its order is the order reported by
// ValidModeNames.
var modeNames = [...]string{
	ModeJSON:    "json",
	ModeHTML:    "html",
	ModeDOMHTML: "domhtml",
}

var modesByName = func() map[string]OutputMode {
	m := make(map[string]OutputMode, len(modeNames))
	for id, name := range modeNames {
		m[name] = OutputMode(id)
	}
	return m
}()

// ModeFromName returns the mode registered under name.
func ModeFromName(name string) (OutputMode, error) {
	mode, ok := modesByName[name]
	if !ok {
		return 0, &InvalidModeError{Value: name}
	}
	return mode, nil
}

// Name returns the registered name of the mode.
func (m OutputMode) Name() (string, error) {
	if !m.Valid() {
		return "", &InvalidModeError{Value: strconv.Itoa(int(m))}
	}
	return modeNames[m], nil
}

// Valid reports whether m is a recognized mode.
func (m OutputMode) Valid() bool {
	return m >= 0 && int(m) < len(modeNames)
}

// String returns the mode name, or OutputMode(n) for unknown ids.
func (m OutputMode) String() string {
	if !m.Valid() {
		return "OutputMode(" + strconv.Itoa(int(m)) + ")"
	}
	return modeNames[m]
}

// ValidModeNames returns the recognized mode names in registry order.
// The returned slice is a copy.
func ValidModeNames() []string {
	names := make([]string, len(modeNames))
	copy(names, modeNames[:])
	return names
}
