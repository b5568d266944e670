// Package report generates the HTML report for an audit result.
//
// The report body is authored as GitHub Flavored Markdown with the
// nao1215/markdown builder and converted to HTML with goldmark. The page
// shell (head, styles, embedded JSON) is an html/template.
//
// Design decision: We author the body in Markdown rather than HTML because
// the tables, alerts and lists map directly onto Markdown constructs, and
// goldmark's default renderer drops raw HTML. Audit titles and descriptions
// come from the audited page and must not be able to inject markup.
//
// The full result is embedded in the page as a JSON script element so the
// report can be re-loaded by other tools.
package report
