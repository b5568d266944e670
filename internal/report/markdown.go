package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/auditprint/internal/model"
	"github.com/nao1215/markdown"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// maxDescriptionLen bounds audit descriptions in the category tables.
const maxDescriptionLen = 160

// titleCaser formats category ids that have no title.
var titleCaser = cases.Title(language.English)

// writeMarkdown writes the report body for summary to w.
func writeMarkdown(w io.Writer, summary *model.AuditSummary, generator string) error {
	md := markdown.NewMarkdown(w)

	writeHeader(md, summary)
	writeScores(md, summary)
	writeCategories(md, summary)
	writeFooter(md, generator)

	return md.Build()
}

// writeHeader writes the title and run information table.
func writeHeader(md *markdown.Markdown, s *model.AuditSummary) {
	md.H1("Audit Report")
	md.PlainText("")

	rows := [][]string{
		{"Requested URL", orDash(s.RequestedURL)},
	}
	if s.FinalURL != "" && s.FinalURL != s.RequestedURL {
		rows = append(rows, []string{"Final URL", s.FinalURL})
	}
	rows = append(rows,
		[]string{"Fetch Time", orDash(s.FetchTime)},
		[]string{"Tool Version", orDash(s.ToolVersion)},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   escapeRows(rows),
	})
	md.PlainText("")
}

// writeScores writes the category score table, rating counts and alert.
func writeScores(md *markdown.Markdown, s *model.AuditSummary) {
	md.H2("Scores")
	md.PlainText("")

	if len(s.Categories) == 0 {
		md.PlainText("No categories were reported.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(s.Categories))
	for _, c := range s.Categories {
		rows = append(rows, []string{
			categoryTitle(c),
			formatScore(c.Score),
			c.Rating().Symbol() + " " + c.Rating().String(),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Score", "Rating"},
		Rows:   escapeRows(rows),
	})
	md.PlainText("")

	counts := s.RatingCounts()
	writeRatings(md, counts)
	writeAlert(md, counts)
}

// writeRatings writes a table counting audits per rating.
// Ratings with no audits are left out.
func writeRatings(md *markdown.Markdown, counts map[model.Rating]int) {
	rows := make([][]string, 0, len(counts))
	for _, r := range []model.Rating{model.RatingFail, model.RatingAverage, model.RatingPass, model.RatingUnscored} {
		if counts[r] > 0 {
			rows = append(rows, []string{r.Symbol() + " " + r.String(), strconv.Itoa(counts[r])})
		}
	}
	if len(rows) == 0 {
		return
	}

	md.H3("Audit Ratings")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Rating", "Audits"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeAlert writes an alert that summarizes the failing audits.
func writeAlert(md *markdown.Markdown, counts map[model.Rating]int) {
	switch {
	case counts[model.RatingFail] > 0:
		md.Cautionf("%d audit(s) failed and should be addressed.", counts[model.RatingFail])
	case counts[model.RatingAverage] > 0:
		md.Warningf("%d audit(s) need improvement.", counts[model.RatingAverage])
	case counts[model.RatingPass] > 0:
		md.Tip("All scored audits passed.")
	default:
		md.Note("No scored audits were reported.")
	}
	md.PlainText("")
}

// writeCategories writes one section per category with its audits.
func writeCategories(md *markdown.Markdown, s *model.AuditSummary) {
	for _, c := range s.Categories {
		md.H2(escapeInline(categoryTitle(c)))
		md.PlainText("")

		if c.Description != "" {
			md.PlainText(escapeInline(c.Description))
			md.PlainText("")
		}

		if len(c.Audits) == 0 {
			md.PlainText("No audits in this category.")
			md.PlainText("")
			continue
		}

		rows := make([][]string, len(c.Audits))
		for i, a := range c.Audits {
			rows[i] = []string{
				a.Rating().Symbol(),
				a.Title,
				orDash(a.DisplayValue),
				formatScore(a.Score),
				orDash(truncateString(a.Description, maxDescriptionLen)),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"", "Audit", "Value", "Score", "Details"},
			Rows:   escapeRows(rows),
		})
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func writeFooter(md *markdown.Markdown, generator string) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by %s*", escapeInline(generator))
}

// categoryTitle returns the category title, deriving one from the id if needed.
func categoryTitle(c model.CategorySummary) string {
	if c.Title != "" {
		return c.Title
	}
	return titleCaser.String(strings.NewReplacer("-", " ", "_", " ").Replace(c.ID))
}

// formatScore renders a 0..1 score on the 0..100 scale.
func formatScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return strconv.FormatFloat(*score*100, 'f', 0, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString truncates s to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// inlineEscaper escapes characters that would break a table cell or start
// block-level Markdown. Line breaks are collapsed to spaces.
var inlineEscaper = strings.NewReplacer(
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
	"|", `\|`,
	"<", "&lt;",
	">", "&gt;",
)

func escapeInline(s string) string {
	return inlineEscaper.Replace(s)
}

func escapeRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = escapeInline(cell)
		}
		out[i] = cells
	}
	return out
}

// generatorName returns the footer text for version.
func generatorName(version string) string {
	if version == "" {
		return "auditprint"
	}
	return fmt.Sprintf("auditprint %s", version)
}
