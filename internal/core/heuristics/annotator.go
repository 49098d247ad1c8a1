package heuristics

import (
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/termlens/internal/core/domain"
)

// Annotate tags topic sections and hidden-clause candidates in text.
// It is deterministic and safe for concurrent use.
func Annotate(text string) domain.Annotation {
	return domain.Annotation{
		Sections:      IdentifySections(text),
		HiddenClauses: FindHiddenClauses(text),
	}
}

func IdentifySections(text string) []domain.DocumentSection {
	sections := make([]domain.DocumentSection, 0)
	if strings.TrimSpace(text) == "" {
		return sections
	}
	for _, p := range sectionPatterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			sections = append(sections, domain.DocumentSection{
				Label:      p.label,
				Excerpt:    excerpt(text, loc[0], sectionBefore, sectionAfter),
				Confidence: sectionConfidence,
			})
		}
	}
	return sections
}

// FindHiddenClauses returns one candidate per distinct matched literal. A literal
// already contained in an earlier excerpt is skipped, so results depend on pattern order.
func FindHiddenClauses(text string) []domain.HiddenClauseCandidate {
	clauses := make([]domain.HiddenClauseCandidate, 0)
	if strings.TrimSpace(text) == "" {
		return clauses
	}
	for _, re := range hiddenClausePatterns {
		for _, match := range re.FindAllString(text, -1) {
			if coveredBy(clauses, match) {
				continue
			}
			idx := strings.Index(text, match)
			clauses = append(clauses, domain.HiddenClauseCandidate{
				Pattern: re.String(),
				Match:   match,
				Excerpt: excerpt(text, idx, clauseBefore, clauseAfter),
			})
		}
	}
	return clauses
}

// KeywordHits returns the distinct high-risk keywords present in text.
func KeywordHits(text string) []string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	var hits []string
	for _, kw := range highRiskKeywords {
		if strings.Contains(lower, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}

func coveredBy(clauses []domain.HiddenClauseCandidate, match string) bool {
	for _, c := range clauses {
		if strings.Contains(c.Excerpt, match) {
			return true
		}
	}
	return false
}

// excerpt returns text[idx-before, idx+after) clamped to the string and to rune
// boundaries, trimmed of surrounding whitespace.
func excerpt(text string, idx, before, after int) string {
	start := max(0, idx-before)
	end := min(len(text), idx+after)
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return strings.TrimSpace(text[start:end])
}
