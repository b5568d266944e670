package report

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/auditprint/internal/model"
	"golang.org/x/net/html"
)

// sampleResult is a small result in the current category layout.
const sampleResult = `{
  "lighthouseVersion": "10.1.0",
  "requestedUrl": "https://example.com/",
  "finalUrl": "https://example.com/",
  "fetchTime": "2024-05-06T07:08:09.000Z",
  "categories": {
    "performance": {
      "title": "Performance",
      "score": 0.42,
      "auditRefs": [{"id": "speed-index"}, {"id": "first-contentful-paint"}]
    },
    "best-practices": {
      "score": 1,
      "auditRefs": [{"id": "uses-https"}]
    }
  },
  "audits": {
    "speed-index": {"title": "Speed Index", "score": 0.95, "displayValue": "1.2 s"},
    "first-contentful-paint": {"title": "First Contentful Paint", "score": 0.1, "displayValue": "4.0 s",
      "description": "First Contentful Paint marks the time at which the first text or image is painted."},
    "uses-https": {"title": "Uses HTTPS", "score": 1}
  }
}`

// mustDecode decodes a fixture or fails the test.
func mustDecode(t *testing.T, doc string) model.Result {
	t.Helper()

	result, err := model.DecodeResultBytes([]byte(doc))
	if err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}
	return result
}

// findAll returns every element node with the given tag.
func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	if n.Type == html.ElementNode && n.Data == tag {
		out = append(out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, findAll(c, tag)...)
	}
	return out
}

// textOf returns the concatenated text content of n.
func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textOf(c))
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// nextElement returns the next element sibling of n.
func nextElement(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// TestHTMLGenerator_RenderHTML tests the generated page.
func TestHTMLGenerator_RenderHTML(t *testing.T) {
	t.Parallel()

	t.Run("produces a parseable page with report sections", func(t *testing.T) {
		t.Parallel()

		out, err := NewHTMLGenerator(WithVersion("v1.2.3")).RenderHTML(mustDecode(t, sampleResult))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(out, "<!doctype html>") {
			t.Errorf("expected doctype, got %q", out[:min(len(out), 40)])
		}

		doc, err := html.Parse(strings.NewReader(out))
		if err != nil {
			t.Fatalf("output is not parseable HTML: %v", err)
		}

		titles := findAll(doc, "title")
		if len(titles) != 1 || textOf(titles[0]) != "Audit Report - https://example.com/" {
			t.Errorf("unexpected title elements %v", titles)
		}

		var headings []string
		for _, h := range findAll(doc, "h2") {
			headings = append(headings, textOf(h))
		}
		want := []string{"Scores", "Performance", "Best Practices"}
		if diff := cmp.Diff(want, headings); diff != "" {
			t.Errorf("heading mismatch (-want +got):\n%s", diff)
		}

		if n := len(findAll(doc, "table")); n != 5 {
			t.Errorf("expected 5 tables (info, scores, ratings, 2 categories), got %d", n)
		}

		for _, needle := range []string{"Speed Index", "1.2 s", "First Contentful Paint", "auditprint v1.2.3"} {
			if !strings.Contains(out, needle) {
				t.Errorf("expected output to contain %q", needle)
			}
		}
	})

	t.Run("rating counts render as a table", func(t *testing.T) {
		t.Parallel()

		out, err := NewHTMLGenerator().RenderHTML(mustDecode(t, sampleResult))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(out, "mermaid") || strings.Contains(out, "%%{init") {
			t.Error("expected no diagram source in the page")
		}

		doc, err := html.Parse(strings.NewReader(out))
		if err != nil {
			t.Fatalf("output is not parseable HTML: %v", err)
		}

		var heading *html.Node
		for _, h := range findAll(doc, "h3") {
			if textOf(h) == "Audit Ratings" {
				heading = h
			}
		}
		if heading == nil {
			t.Fatal("expected an Audit Ratings heading")
		}
		table := nextElement(heading)
		if table == nil || table.Data != "table" {
			t.Fatalf("expected a table after the heading, got %v", table)
		}

		var rows [][]string
		for _, tr := range findAll(table, "tr") {
			var cells []string
			for _, td := range findAll(tr, "td") {
				cells = append(cells, strings.TrimSpace(textOf(td)))
			}
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
		}
		want := [][]string{{"🔴 fail", "1"}, {"🟢 pass", "2"}}
		if diff := cmp.Diff(want, rows); diff != "" {
			t.Errorf("rating rows mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("failing audits are listed first", func(t *testing.T) {
		t.Parallel()

		out, err := NewHTMLGenerator().RenderHTML(mustDecode(t, sampleResult))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		fcp := strings.Index(out, "First Contentful Paint")
		si := strings.Index(out, "Speed Index")
		if fcp < 0 || si < 0 || fcp > si {
			t.Errorf("expected failing audit before passing audit (fcp=%d, si=%d)", fcp, si)
		}
	})

	t.Run("embeds the result JSON", func(t *testing.T) {
		t.Parallel()

		result := mustDecode(t, sampleResult)
		out, err := NewHTMLGenerator().RenderHTML(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		doc, err := html.Parse(strings.NewReader(out))
		if err != nil {
			t.Fatalf("output is not parseable HTML: %v", err)
		}

		var data *html.Node
		for _, s := range findAll(doc, "script") {
			if attr(s, "id") == DataElementID {
				data = s
			}
		}
		if data == nil {
			t.Fatal("expected embedded data element")
		}
		if attr(data, "type") != "application/json" {
			t.Errorf("unexpected script type %q", attr(data, "type"))
		}

		embedded, err := model.DecodeResultBytes([]byte(textOf(data)))
		if err != nil {
			t.Fatalf("embedded data is not JSON: %v", err)
		}
		if diff := cmp.Diff(result, embedded); diff != "" {
			t.Errorf("embedded data mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("page content cannot inject markup", func(t *testing.T) {
		t.Parallel()

		result := map[string]any{
			"requestedUrl": "https://evil.example/</title><script>alert(1)</script>",
			"audits": map[string]any{
				"x": map[string]any{"title": "<img src=x onerror=alert(1)>", "score": 0.0, "description": "</script><b>bold</b>"},
			},
		}
		out, err := NewHTMLGenerator().RenderHTML(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		doc, err := html.Parse(strings.NewReader(out))
		if err != nil {
			t.Fatalf("output is not parseable HTML: %v", err)
		}
		if n := len(findAll(doc, "img")); n != 0 {
			t.Errorf("expected no injected img elements, got %d", n)
		}
		if n := len(findAll(doc, "b")); n != 0 {
			t.Errorf("expected no injected b elements, got %d", n)
		}
		if n := len(findAll(doc, "script")); n != 1 {
			t.Errorf("expected only the data script element, got %d", n)
		}

		var embedded map[string]any
		for _, s := range findAll(doc, "script") {
			if err := json.Unmarshal([]byte(textOf(s)), &embedded); err != nil {
				t.Fatalf("embedded data is not JSON: %v", err)
			}
		}
		if embedded["requestedUrl"] != result["requestedUrl"] {
			t.Errorf("expected embedded URL to survive escaping, got %v", embedded["requestedUrl"])
		}
	})

	t.Run("empty result renders placeholders", func(t *testing.T) {
		t.Parallel()

		out, err := NewHTMLGenerator().RenderHTML(map[string]any{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "No categories were reported.") {
			t.Error("expected placeholder for missing categories")
		}
		if !strings.Contains(out, "<title>Audit Report</title>") {
			t.Error("expected default title")
		}
	})

	t.Run("identical input gives identical output", func(t *testing.T) {
		t.Parallel()

		g := NewHTMLGenerator()
		result := mustDecode(t, sampleResult)
		first, err := g.RenderHTML(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := g.RenderHTML(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first != second {
			t.Error("expected deterministic output")
		}
	})
}

// TestHTMLGenerator_MalformedResult tests rejection of non-object results.
func TestHTMLGenerator_MalformedResult(t *testing.T) {
	t.Parallel()

	g := NewHTMLGenerator()
	for _, result := range []model.Result{nil, "text", []any{}, json.Number("1")} {
		_, err := g.RenderHTML(result)
		if !errors.Is(err, ErrMalformedResult) {
			t.Errorf("RenderHTML(%#v): expected ErrMalformedResult, got %v", result, err)
		}
		if !errors.Is(err, model.ErrNotObject) {
			t.Errorf("RenderHTML(%#v): expected wrapped ErrNotObject, got %v", result, err)
		}
	}

	_, err := g.RenderHTML(map[string]any{"bad": make(chan int)})
	if !errors.Is(err, ErrMalformedResult) {
		t.Errorf("expected ErrMalformedResult for unserializable value, got %v", err)
	}
}
