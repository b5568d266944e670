package printer

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/nao1215/auditprint/internal/model"
)

// jsonIndent is the indentation used for ModeJSON artifacts.
const jsonIndent = "  "

// Renderer produces the HTML report for a result.
type Renderer interface {
	RenderHTML(result model.Result) (string, error)
}

// CreateOutput builds the artifact for result in the given mode.
//
// HTML and DOMHTML both call renderer.RenderHTML and return its output and
// error unmodified. JSON is serialized with two-space indentation, without
// HTML escaping and without a trailing newline.
func CreateOutput(renderer Renderer, result model.Result, mode OutputMode) (string, error) {
	switch mode {
	case ModeHTML, ModeDOMHTML:
		if renderer == nil {
			return "", ErrNoRenderer
		}
		return renderer.RenderHTML(result)
	case ModeJSON:
		return marshalJSON(result)
	default:
		return "", &InvalidModeError{Value: strconv.Itoa(int(mode))}
	}
}

func marshalJSON(result model.Result) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", jsonIndent)
	if err := enc.Encode(result); err != nil {
		return "", err
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}
