package tool

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

const (
	previewLimit     = 500
	truncationMarker = "..."
)

var spaceRun = regexp.MustCompile(` {2,}`)

type InvestmentSummary struct {
	DataLength int    `json:"data_length"`
	Preview    string `json:"cleaned_data"`
}

// SummarizeForInvestment collapses runs of spaces and previews the first 500 characters.
func SummarizeForInvestment(text string) InvestmentSummary {
	normalized := spaceRun.ReplaceAllString(text, " ")
	length := utf8.RuneCountInString(normalized)

	preview := normalized
	if length > previewLimit {
		preview = string([]rune(normalized)[:previewLimit]) + truncationMarker
	}

	return InvestmentSummary{
		DataLength: length,
		Preview:    preview,
	}
}

func investmentReport(text string) string {
	summary := SummarizeForInvestment(text)
	return fmt.Sprintf(
		"Investment Analysis Complete. Document analyzed: %d characters processed.\n\nPreview:\n%s",
		summary.DataLength,
		summary.Preview,
	)
}
