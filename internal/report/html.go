package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/nao1215/auditprint/internal/model"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ErrMalformedResult is returned when a result cannot be rendered.
var ErrMalformedResult = errors.New("malformed audit result")

// DataElementID is the id of the script element that embeds the result JSON.
const DataElementID = "__audit_json__"

// pageTemplate is the HTML shell around the converted report body.
var pageTemplate = template.Must(template.New("report").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="generator" content="{{.Generator}}">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 2rem auto; max-width: 60rem; padding: 0 1rem; color: #202124; }
table { border-collapse: collapse; margin: 1rem 0; width: 100%; }
th, td { border: 1px solid #dadce0; padding: .4rem .6rem; text-align: left; vertical-align: top; }
th { background: #f1f3f4; }
blockquote { border-left: 4px solid #dadce0; margin: 1rem 0; padding: .2rem 1rem; color: #5f6368; }
pre { background: #f8f9fa; padding: 1rem; overflow-x: auto; }
</style>
</head>
<body>
<main>
{{.Body}}
</main>
<script type="application/json" id="{{.DataID}}">{{.Data}}</script>
</body>
</html>
`))

// page is the data passed to pageTemplate.
type page struct {
	Generator string
	Title     string
	Body      template.HTML
	DataID    string

	// Data is the result JSON. encoding/json escapes <, > and & so the
	// content cannot terminate the script element.
	Data template.JS
}

// HTMLGenerator renders audit results as standalone HTML pages.
// It is safe for concurrent use.
type HTMLGenerator struct {
	version  string
	markdown goldmark.Markdown
}

// HTMLOption configures an HTMLGenerator.
type HTMLOption func(*HTMLGenerator)

// WithVersion sets the generator version shown in the page footer and
// generator meta tag.
func WithVersion(version string) HTMLOption {
	return func(g *HTMLGenerator) {
		g.version = version
	}
}

// NewHTMLGenerator creates an HTMLGenerator.
func NewHTMLGenerator(opts ...HTMLOption) *HTMLGenerator {
	g := &HTMLGenerator{
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RenderHTML renders result as an HTML page.
// Results that are not JSON objects fail with ErrMalformedResult.
func (g *HTMLGenerator) RenderHTML(result model.Result) (string, error) {
	summary, err := model.Summarize(result)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedResult, err)
	}

	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedResult, err)
	}

	generator := generatorName(g.version)

	var src bytes.Buffer
	if err := writeMarkdown(&src, summary, generator); err != nil {
		return "", fmt.Errorf("failed to build report body: %w", err)
	}

	var body bytes.Buffer
	if err := g.markdown.Convert(src.Bytes(), &body); err != nil {
		return "", fmt.Errorf("failed to convert report body: %w", err)
	}

	// goldmark drops raw HTML and encoding/json escapes <, > and &.
	bodyHTML := template.HTML(body.String()) //nolint:gosec
	dataJS := template.JS(data)              //nolint:gosec

	var out strings.Builder
	err = pageTemplate.Execute(&out, page{
		Generator: generator,
		Title:     pageTitle(summary),
		Body:      bodyHTML,
		DataID:    DataElementID,
		Data:      dataJS,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render report page: %w", err)
	}
	return out.String(), nil
}

// pageTitle returns the document title for summary.
func pageTitle(s *model.AuditSummary) string {
	if s.RequestedURL == "" {
		return "Audit Report"
	}
	return "Audit Report - " + s.RequestedURL
}
