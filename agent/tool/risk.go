package tool

import "strings"

// riskVocabulary is scanned in this order; output preserves it.
var riskVocabulary = []string{"debt", "liability", "loss", "risk", "volatility", "uncertainty"}

const noRiskIndicators = "None identified"

// ScanRiskTerms lists the vocabulary terms contained in text, case-insensitively.
func ScanRiskTerms(text string) string {
	lower := strings.ToLower(text)
	found := make([]string, 0, len(riskVocabulary))
	for _, term := range riskVocabulary {
		if strings.Contains(lower, term) {
			found = append(found, term)
		}
	}
	if len(found) == 0 {
		return noRiskIndicators
	}
	return strings.Join(found, ", ")
}

func riskReport(text string) string {
	return "Risk Assessment Complete. Risk indicators found: " + ScanRiskTerms(text)
}
