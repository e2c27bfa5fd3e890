package tool

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	contractx "github.com/tanpawarit/financial-document-analyzer/agent/contract"
	"github.com/tanpawarit/financial-document-analyzer/agent/document"
	"github.com/tanpawarit/financial-document-analyzer/pkg/serper"
)

const (
	ToolReadPDF                = "read_pdf"
	ToolScanRiskTerms          = "scan_risk_terms"
	ToolSummarizeForInvestment = "summarize_for_investment"
	ToolWebSearch              = "web_search"
)

const searchUnavailable = "Web search is unavailable: no search provider is configured."

type Searcher interface {
	Search(ctx context.Context, query string) ([]serper.Result, error)
}

// Catalog builds run-scoped tool instances by name.
type Catalog struct {
	searcher Searcher
}

// NewCatalog accepts a nil searcher; web_search then answers in-band that it is unavailable.
func NewCatalog(searcher Searcher) *Catalog {
	return &Catalog{searcher: searcher}
}

func Names() []string {
	return []string{ToolReadPDF, ToolScanRiskTerms, ToolSummarizeForInvestment, ToolWebSearch}
}

// Build returns tools in the order given, bound to documentPath. Duplicate names are collapsed.
func (c *Catalog) Build(names []string, documentPath string) ([]contractx.Tool, error) {
	tools := make([]contractx.Tool, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		t, err := c.build(name, documentPath)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, nil
}

func (c *Catalog) build(name, documentPath string) (contractx.Tool, error) {
	switch name {
	case ToolReadPDF:
		return funcTool{
			name: ToolReadPDF,
			desc: "Read the uploaded financial document and return its full text. Input: the document path, or empty for the current document.",
			fn: func(_ context.Context, input string) (string, error) {
				return readBound(documentPath, input), nil
			},
		}, nil
	case ToolScanRiskTerms:
		return funcTool{
			name: ToolScanRiskTerms,
			desc: "Scan text for risk indicators (debt, liability, loss, risk, volatility, uncertainty). Input: text to scan, or empty to scan the current document.",
			fn: func(_ context.Context, input string) (string, error) {
				text, ok := textOrDocument(documentPath, input)
				if !ok {
					return text, nil
				}
				return riskReport(text), nil
			},
		}, nil
	case ToolSummarizeForInvestment:
		return funcTool{
			name: ToolSummarizeForInvestment,
			desc: "Normalize document text and report its size with a short preview for investment review. Input: text to summarize, or empty for the current document.",
			fn: func(_ context.Context, input string) (string, error) {
				text, ok := textOrDocument(documentPath, input)
				if !ok {
					return text, nil
				}
				return investmentReport(text), nil
			},
		}, nil
	case ToolWebSearch:
		return funcTool{
			name: ToolWebSearch,
			desc: "Search the web for current market and company information. Input: the search query.",
			fn:   c.search,
		}, nil
	default:
		return nil, fmt.Errorf("%w: tool=%s", contractx.ErrUnknownTool, name)
	}
}

func (c *Catalog) search(ctx context.Context, query string) (string, error) {
	if c.searcher == nil {
		return searchUnavailable, nil
	}
	results, err := c.searcher.Search(ctx, query)
	switch {
	case errors.Is(err, serper.ErrNotConfigured):
		return searchUnavailable, nil
	case err != nil:
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return fmt.Sprintf("Web search failed: %v", err), nil
	case len(results) == 0:
		return "No search results found.", nil
	}

	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n", i+1, r.Title, r.Link, r.Snippet)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// readBound extracts only the run's document; other paths are refused in-band.
func readBound(documentPath, input string) string {
	requested := strings.TrimSpace(input)
	if requested != "" && filepath.Clean(requested) != filepath.Clean(documentPath) {
		return fmt.Sprintf("%s access to %s is not permitted for this run", document.ErrorMarker, requested)
	}
	return document.ExtractText(documentPath)
}

func textOrDocument(documentPath, input string) (string, bool) {
	if strings.TrimSpace(input) != "" {
		return input, true
	}
	text := document.ExtractText(documentPath)
	return text, !document.IsErrorText(text)
}

type funcTool struct {
	name string
	desc string
	fn   func(ctx context.Context, input string) (string, error)
}

func (t funcTool) Name() string        { return t.name }
func (t funcTool) Description() string { return t.desc }

func (t funcTool) Invoke(ctx context.Context, input string) (string, error) {
	return t.fn(ctx, input)
}
