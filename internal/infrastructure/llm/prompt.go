package llm

import (
	"fmt"
	"strings"

	"github.com/kirillkom/termlens/internal/core/domain"
	"github.com/kirillkom/termlens/internal/infrastructure/analysisparser"
)

const (
	maxPromptChars = 8000

	analysisTemperature = 0.3
	analysisMaxTokens   = 2500
)

const analysisInstructions = `You are TermLens, a reviewer of consumer financial documents. Read the document and write a thorough analysis a non-specialist can follow.

Cover:
- what the document is and what it is for
- the terms and conditions that matter most to the customer
- hidden fees, charges and penalty clauses
- auto-renewal and cancellation rules
- coverage exclusions and limitations
- vague or confusing wording
- gaps in consumer protection
- deadlines and obligations
- an overall risk view with recommendations`

const plainTextFormat = `Write plain text with a heading per topic and bullet points under each heading. Do not answer in JSON.`

func structuredFormat() string {
	return "Answer with a single JSON object and nothing else. It must match this JSON Schema:\n" + analysisparser.AnalysisSchema
}

func analysisSystemPrompt(req domain.SummaryRequest, structured bool) string {
	var b strings.Builder
	b.WriteString(analysisInstructions)
	b.WriteString("\n\n")
	if structured {
		b.WriteString(structuredFormat())
	} else {
		b.WriteString(plainTextFormat)
	}
	if req.Text != "" {
		fmt.Fprintf(&b, "\n\nDocument text (extraction confidence %s%%):\n%s", formatConfidence(req.Confidence), truncateRunes(req.Text, maxPromptChars))
	}
	return b.String()
}

func analysisUserPrompt(req domain.SummaryRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyse this financial document: %q.", req.FileName)

	if req.Text == "" {
		fmt.Fprintf(&b, "\n\nOnly the file name and type (%s) are available. Describe what a customer should usually check in this kind of document, including the common risks and the terms worth watching.", req.FileType)
		return b.String()
	}

	fmt.Fprintf(&b, `

The text was extracted with %s%% confidence. %d sections were tagged and %d possible hidden clauses were flagged.

Use these headings:

1. Document Overview: the kind of document and its purpose
2. Key Findings: terms and conditions the customer must know
3. Hidden or Concerning Clauses: terms that are easy to miss or work against the customer
4. Financial Implications: fees, charges, penalties and payment obligations
5. Consumer Rights: what protections the customer has
6. Recommendations: what to watch and what to do next
7. Risk Assessment: Low, Medium or High, with the reason

Keep the language plain and use bullet points under each heading.`,
		formatConfidence(req.Confidence), req.SectionCount, req.ClauseCount)
	return b.String()
}

func formatConfidence(c float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", c), "0"), ".")
}

func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
