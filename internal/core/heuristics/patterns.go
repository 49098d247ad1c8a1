package heuristics

import "regexp"

type sectionPattern struct {
	label string
	re    *regexp.Regexp
}

// Order matters: sections are emitted label by label in this order.
var sectionPatterns = []sectionPattern{
	{"Terms and Conditions", regexp.MustCompile(`(?i)terms?\s*(?:and|&|\+)\s*conditions?|t\s*&\s*c|terms?\s*of\s*(?:service|use)`)},
	{"Privacy Policy", regexp.MustCompile(`(?i)privacy\s*policy|data\s*protection|personal\s*information`)},
	{"Fees and Charges", regexp.MustCompile(`(?i)fees?\s*(?:and|&|\+)\s*charges?|pricing|cost|payment`)},
	{"Cancellation Policy", regexp.MustCompile(`(?i)cancellation\s*policy|refund\s*policy|termination`)},
	{"Liability Clauses", regexp.MustCompile(`(?i)liability|limitation\s*of\s*liability|disclaimer`)},
	{"Auto-Renewal", regexp.MustCompile(`(?i)auto[\s-]*renewal|automatic[\s-]*renewal|subscription[\s-]*renewal`)},
	{"Hidden Charges", regexp.MustCompile(`(?i)(?:hidden|additional|extra)\s*(?:charges?|fees?)|miscellaneous\s*charges?`)},
	{"Penalty Terms", regexp.MustCompile(`(?i)penalt(?:y|ies)|late\s*(?:fee|charge|payment)`)},
	{"Interest Rates", regexp.MustCompile(`(?i)interest\s*rate|apr|annual\s*percentage\s*rate`)},
	{"Coverage Exclusions", regexp.MustCompile(`(?i)exclusion|not\s*covered|limitation|restriction`)},
}

// Separators accept hyphens so "auto-renewal" and "late-fee" match.
var hiddenClausePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:automatic|auto)[\s-]*(?:renewal|billing)`),
	regexp.MustCompile(`(?i)non[\s-]*refundable|no[\s-]*refund`),
	regexp.MustCompile(`(?i)binding[\s-]*arbitration|dispute[\s-]*resolution`),
	regexp.MustCompile(`(?i)data[\s-]*sharing|third[\s-]*party[\s-]*disclosure`),
	regexp.MustCompile(`(?i)penalty|late[\s-]*fee|additional[\s-]*charge`),
	regexp.MustCompile(`(?i)minimum[\s-]*spend|minimum[\s-]*usage`),
	regexp.MustCompile(`(?i)early[\s-]*termination|cancellation[\s-]*fee`),
	regexp.MustCompile(`(?i)changes[\s-]*to[\s-]*terms|modification[\s-]*of[\s-]*agreement`),
	regexp.MustCompile(`(?i)force[\s-]*majeure|act[\s-]*of[\s-]*god`),
	regexp.MustCompile(`(?i)limitation[\s-]*of[\s-]*liability|disclaimer[\s-]*of[\s-]*warranty`),
}

// highRiskKeywords add to the risk score once each when present anywhere in the text.
var highRiskKeywords = []string{
	"non-refundable",
	"binding arbitration",
	"auto-renewal",
	"penalty",
	"late fee",
	"waiver",
	"indemnify",
	"liquidated damages",
	"prepayment penalty",
	"variable rate",
	"balloon payment",
	"compound interest",
}

const (
	sectionBefore     = 200
	sectionAfter      = 800
	sectionConfidence = 85

	clauseBefore = 100
	clauseAfter  = 300
)
