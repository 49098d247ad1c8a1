package usecase

import "github.com/kirillkom/termlens/internal/core/domain"

// FallbackAnalysisText replaces the model output whenever the remote analysis
// fails. It is identical for every document.
const FallbackAnalysisText = `Document Overview
The remote analysis could not be completed. The checklist below covers the terms that financial documents most often bury in fine print.

Important Terms to Look For
• Auto-renewal clauses and cancellation procedures
• Late payment penalties and interest charges
• Coverage exclusions and limitations
• Fee structures and hidden charges
• Binding arbitration clauses

Recommendations
1. Read all fine print carefully
2. Check when and how the agreement renews
3. Understand which penalties and fees may apply
4. Confirm how and when you can cancel
5. Ask the provider to clarify anything unclear

The risk score above is computed locally from the document text.`

// FallbackStructuredAnalysis returns a fresh copy of the fixed fallback buckets.
func FallbackStructuredAnalysis() domain.StructuredAnalysis {
	return domain.StructuredAnalysis{
		Summary: "Document has been processed. Review the extracted content and the checklist below.",
		KeyPoints: []string{
			"Document contains standard terms and conditions",
			"Various clauses and policies are outlined",
			"Review recommended for complete understanding",
		},
		RiskFactors: []string{
			"Some terms may have financial implications",
			"Cancellation policies may apply",
			"Late fees or penalties may be charged",
		},
		Benefits: []string{
			"Service or product benefits as described",
			"Customer protection measures included",
			"Clear terms for usage and access",
		},
		HiddenClauses: []string{
			"Check for auto-renewal clauses",
			"Review cancellation procedures",
			"Verify fee structures",
		},
		Recommendations: []string{
			"Read the complete document carefully",
			"Pay attention to fine print",
			"Understand your rights and obligations",
		},
	}
}
