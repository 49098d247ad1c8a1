package analysisparser

import (
	"regexp"
	"slices"
	"strings"

	"github.com/kirillkom/termlens/internal/core/domain"
)

var (
	bulletLine   = regexp.MustCompile(`^(?:[•\-\*]|\d+[.)])\s+(.+)$`)
	numberPrefix = regexp.MustCompile(`^\d+[.)]\s*`)
)

// Keyword lists are tried in order; the first keyword that names a heading wins.
var (
	summaryKeywords        = []string{"overview", "summary"}
	keyPointKeywords       = []string{"key findings", "important points", "main points"}
	riskKeywords           = []string{"risks", "concerns", "warnings", "penalties", "hidden clauses"}
	benefitKeywords        = []string{"benefits", "advantages", "coverage", "features"}
	hiddenClauseKeywords   = []string{"hidden", "concerning clauses", "fine print"}
	recommendationKeywords = []string{"recommendations", "actions", "next steps"}
)

// Numbered lines only count as headings when they start with one of these.
var numberedHeadingPrefixes = slices.Concat(
	summaryKeywords, keyPointKeywords, riskKeywords, benefitKeywords,
	hiddenClauseKeywords, recommendationKeywords,
	[]string{"document overview", "financial implications", "consumer rights", "risk assessment"},
)

type block struct {
	title string
	body  []string
}

// HeadingParser reads free-text model output organised under headings with
// bullet lists. A bucket whose heading is absent stays empty.
type HeadingParser struct{}

func NewHeadingParser() *HeadingParser {
	return &HeadingParser{}
}

func (p *HeadingParser) Parse(raw string) domain.StructuredAnalysis {
	blocks := splitBlocks(raw)
	return domain.StructuredAnalysis{
		Summary:         sectionText(blocks, summaryKeywords),
		KeyPoints:       listItems(blocks, keyPointKeywords),
		RiskFactors:     listItems(blocks, riskKeywords),
		Benefits:        listItems(blocks, benefitKeywords),
		HiddenClauses:   listItems(blocks, hiddenClauseKeywords),
		Recommendations: listItems(blocks, recommendationKeywords),
	}
}

func splitBlocks(raw string) []block {
	var blocks []block
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if title, ok := headingTitle(line); ok {
			blocks = append(blocks, block{title: title})
			continue
		}
		if len(blocks) > 0 && line != "" {
			last := &blocks[len(blocks)-1]
			last.body = append(last.body, line)
		}
	}
	return blocks
}

// headingTitle recognises markdown headings, bold lines, lines ending in a colon
// and numbered lines that name a known section.
func headingTitle(line string) (string, bool) {
	if line == "" {
		return "", false
	}
	if strings.HasPrefix(line, "#") {
		return cleanTitle(strings.TrimLeft(line, "#")), true
	}
	if strings.HasPrefix(line, "•") || strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") {
		return "", false
	}

	numbered := numberPrefix.MatchString(line)
	rest := numberPrefix.ReplaceAllString(line, "")
	if isBold(rest) || strings.HasSuffix(rest, ":") {
		return cleanTitle(rest), true
	}
	if numbered {
		title := cleanTitle(rest)
		lower := strings.ToLower(title)
		for _, prefix := range numberedHeadingPrefixes {
			if strings.HasPrefix(lower, prefix) {
				return title, true
			}
		}
	}
	return "", false
}

func isBold(s string) bool {
	s = strings.TrimSuffix(s, ":")
	return len(s) > 4 && strings.HasPrefix(s, "**") && strings.HasSuffix(s, "**")
}

func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	s = numberPrefix.ReplaceAllString(s, "")
	s = strings.Trim(s, "*_: ")
	return strings.TrimSpace(s)
}

func findBlock(blocks []block, keywords []string) (block, bool) {
	for _, kw := range keywords {
		for _, b := range blocks {
			if strings.Contains(strings.ToLower(b.title), kw) {
				return b, true
			}
		}
	}
	return block{}, false
}

func sectionText(blocks []block, keywords []string) string {
	b, ok := findBlock(blocks, keywords)
	if !ok {
		return ""
	}
	return strings.TrimSpace(strings.Join(b.body, " "))
}

func listItems(blocks []block, keywords []string) []string {
	items := make([]string, 0)
	b, ok := findBlock(blocks, keywords)
	if !ok {
		return items
	}
	for _, line := range b.body {
		m := bulletLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		item := strings.TrimSpace(m[1])
		if item == "" || slices.Contains(items, item) {
			continue
		}
		items = append(items, item)
		if len(items) == domain.MaxBucketItems {
			break
		}
	}
	return items
}
