package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
)

// ErrNotObject is returned by Summarize when the result is not a JSON object.
var ErrNotObject = errors.New("result is not a JSON object")

// categoryOrder is the display order of well-known categories.
// Unknown categories follow in lexical order.
var categoryOrder = []string{"performance", "pwa", "accessibility", "best-practices", "seo"}

// scoreless display modes never carry a meaningful score.
var scorelessModes = map[string]bool{
	"notApplicable": true,
	"manual":        true,
	"informative":   true,
	"error":         true,
}

// AuditSummary is a typed view over a Lighthouse-style audit result.
// It is read-only: building it never modifies the underlying Result.
type AuditSummary struct {
	// RequestedURL is the URL the audit was asked to load.
	RequestedURL string

	// FinalURL is the URL after redirects. Empty when unknown.
	FinalURL string

	// FetchTime is the time the audit ran, as reported by the tool.
	FetchTime string

	// ToolVersion is the version of the auditing tool.
	ToolVersion string

	// Categories are the scored categories in display order.
	Categories []CategorySummary
}

// CategorySummary is one scored group of audits.
type CategorySummary struct {
	ID          string
	Title       string
	Description string

	// Score is normalized to 0..1. Nil when the category is unscored.
	Score *float64

	// Audits are ordered failing first, then average, passing, unscored.
	Audits []AuditResult
}

// Rating returns the rating of the category score.
func (c CategorySummary) Rating() Rating {
	return RatingFor(c.Score)
}

// AuditResult is the outcome of a single audit.
type AuditResult struct {
	ID           string
	Title        string
	Description  string
	DisplayValue string

	// Score is normalized to 0..1. Nil when the audit is unscored.
	Score *float64
}

// Rating returns the rating of the audit score.
func (a AuditResult) Rating() Rating {
	return RatingFor(a.Score)
}

// RatingCounts counts distinct audits by rating across all categories.
func (s *AuditSummary) RatingCounts() map[Rating]int {
	counts := make(map[Rating]int)
	seen := make(map[string]bool)
	for _, c := range s.Categories {
		for _, a := range c.Audits {
			if seen[a.ID] {
				continue
			}
			seen[a.ID] = true
			counts[a.Rating()]++
		}
	}
	return counts
}

// Summarize builds an AuditSummary from a result.
//
// Both the current layout (a "categories" object with 0..1 scores and
// "auditRefs") and the legacy layout (a "reportCategories" array with 0..100
// scores) are understood. Missing fields are left empty.
func Summarize(result Result) (*AuditSummary, error) {
	root, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotObject, result)
	}

	s := &AuditSummary{
		RequestedURL: firstString(root, "requestedUrl", "initialUrl", "url"),
		FinalURL:     firstString(root, "finalUrl", "finalDisplayedUrl"),
		FetchTime:    firstString(root, "fetchTime", "generatedTime"),
		ToolVersion:  firstString(root, "lighthouseVersion", "version"),
	}

	audits, _ := root["audits"].(map[string]any)

	switch {
	case root["categories"] != nil:
		categories, _ := root["categories"].(map[string]any)
		s.Categories = summarizeCategories(categories, audits)
	case root["reportCategories"] != nil:
		categories, _ := root["reportCategories"].([]any)
		s.Categories = summarizeLegacyCategories(categories, audits)
	}

	if len(s.Categories) == 0 && len(audits) > 0 {
		s.Categories = []CategorySummary{uncategorized(audits)}
	}

	return s, nil
}

func summarizeCategories(categories, audits map[string]any) []CategorySummary {
	ids := make([]string, 0, len(categories))
	for id := range categories {
		ids = append(ids, id)
	}
	sortCategoryIDs(ids)

	out := make([]CategorySummary, 0, len(ids))
	for _, id := range ids {
		raw, _ := categories[id].(map[string]any)
		c := CategorySummary{
			ID:          id,
			Title:       stringField(raw, "title"),
			Description: stringField(raw, "description"),
			Score:       scoreField(raw["score"], 1),
		}
		refs, _ := raw["auditRefs"].([]any)
		for _, ref := range refs {
			refMap, _ := ref.(map[string]any)
			auditID := stringField(refMap, "id")
			if auditID == "" {
				continue
			}
			c.Audits = append(c.Audits, auditResult(auditID, audits[auditID], 1))
		}
		sortAudits(c.Audits)
		out = append(out, c)
	}
	return out
}

func summarizeLegacyCategories(categories []any, audits map[string]any) []CategorySummary {
	out := make([]CategorySummary, 0, len(categories))
	for i, raw := range categories {
		rawMap, _ := raw.(map[string]any)
		id := stringField(rawMap, "id")
		if id == "" {
			id = "category-" + strconv.Itoa(i+1)
		}
		c := CategorySummary{
			ID:          id,
			Title:       firstString(rawMap, "name", "title"),
			Description: stringField(rawMap, "description"),
			Score:       scoreField(rawMap["score"], 100),
		}
		refs, _ := rawMap["audits"].([]any)
		for _, ref := range refs {
			refMap, _ := ref.(map[string]any)
			auditID := stringField(refMap, "id")
			if auditID == "" {
				continue
			}
			detail, ok := audits[auditID]
			if !ok {
				detail = refMap["result"]
			}
			c.Audits = append(c.Audits, auditResult(auditID, detail, 100))
		}
		sortAudits(c.Audits)
		out = append(out, c)
	}
	return out
}

func uncategorized(audits map[string]any) CategorySummary {
	ids := make([]string, 0, len(audits))
	for id := range audits {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	c := CategorySummary{ID: "audits"}
	for _, id := range ids {
		c.Audits = append(c.Audits, auditResult(id, audits[id], 1))
	}
	sortAudits(c.Audits)
	return c
}

// auditResult builds an AuditResult from a raw audit object.
// scale is the value that represents a perfect score (1 or 100).
func auditResult(id string, raw any, scale float64) AuditResult {
	m, _ := raw.(map[string]any)
	a := AuditResult{
		ID:           id,
		Title:        firstString(m, "title", "description"),
		Description:  firstString(m, "description", "helpText"),
		DisplayValue: stringField(m, "displayValue"),
	}
	// Legacy audits used "description" as the title and "helpText" as the body.
	if _, hasTitle := m["title"]; !hasTitle {
		a.Description = stringField(m, "helpText")
	}
	if a.Title == "" {
		a.Title = id
	}
	if !scorelessModes[stringField(m, "scoreDisplayMode")] {
		a.Score = scoreField(m["score"], scale)
	}
	return a
}

// sortAudits orders audits failing first while keeping reference order for ties.
func sortAudits(audits []AuditResult) {
	rank := func(r Rating) int {
		switch r {
		case RatingFail:
			return 0
		case RatingAverage:
			return 1
		case RatingPass:
			return 2
		default:
			return 3
		}
	}
	sort.SliceStable(audits, func(i, j int) bool {
		return rank(audits[i].Rating()) < rank(audits[j].Rating())
	})
}

func sortCategoryIDs(ids []string) {
	position := func(id string) int {
		if i := slices.Index(categoryOrder, id); i >= 0 {
			return i
		}
		return len(categoryOrder)
	}
	sort.Slice(ids, func(i, j int) bool {
		pi, pj := position(ids[i]), position(ids[j])
		if pi != pj {
			return pi < pj
		}
		return ids[i] < ids[j]
	})
}

// scoreField converts a raw score to a 0..1 value.
// Booleans are binary scores. Anything else non-numeric is unscored.
func scoreField(v any, scale float64) *float64 {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case bool:
		if n {
			f = scale
		}
	default:
		return nil
	}
	f /= scale
	return &f
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringField(m, k); s != "" {
			return s
		}
	}
	return ""
}
