package tool

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestScanRiskTerms(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "none", in: "Revenue grew steadily", want: "None identified"},
		{name: "empty", in: "", want: "None identified"},
		{name: "vocabulary order", in: "Uncertainty around LOSS and debt", want: "debt, loss, uncertainty"},
		{name: "substring match", in: "Total liabilities", want: "liability"},
		{name: "all", in: "debt liability loss risk volatility uncertainty", want: "debt, liability, loss, risk, volatility, uncertainty"},
		{name: "mixed case", in: "LIABILITY exposure and Risk factors", want: "liability, risk"},
		{name: "title case", in: "Liability and risk", want: "liability, risk"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ScanRiskTerms(tc.in)
			if got != tc.want {
				t.Fatalf("ScanRiskTerms(%q) = %q, want %q", tc.in, got, tc.want)
			}
			if again := ScanRiskTerms(got); again != got {
				t.Fatalf("ScanRiskTerms not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestSummarizeForInvestmentIsIdempotent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
	}{
		{name: "runs of spaces", in: "Revenue    grew   12%  YoY"},
		{name: "already normalised", in: "Revenue grew 12% YoY"},
		{name: "tabs and newlines kept", in: "Q2\tresults\n\nmargin  up"},
		{name: "empty", in: ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			first := SummarizeForInvestment(tc.in)
			second := SummarizeForInvestment(first.Preview)
			if second != first {
				t.Fatalf("not idempotent: %#v -> %#v", first, second)
			}
		})
	}
}

func TestSummarizeForInvestmentCollapsesSpacesInOnePass(t *testing.T) {
	t.Parallel()

	got := SummarizeForInvestment("a     b  c d")
	if got.Preview != "a b c d" {
		t.Fatalf("unexpected preview: %q", got.Preview)
	}
	if got.DataLength != 7 {
		t.Fatalf("unexpected length: %d", got.DataLength)
	}
}

func TestSummarizeForInvestmentTruncates(t *testing.T) {
	t.Parallel()

	exact := strings.Repeat("x", previewLimit)
	if got := SummarizeForInvestment(exact); got.Preview != exact {
		t.Fatal("text at the preview limit must not be truncated")
	}

	long := strings.Repeat("é", previewLimit+20)
	got := SummarizeForInvestment(long)
	if got.DataLength != previewLimit+20 {
		t.Fatalf("unexpected length: %d", got.DataLength)
	}
	if !strings.HasSuffix(got.Preview, truncationMarker) {
		t.Fatalf("expected truncation marker, got %q", got.Preview[len(got.Preview)-8:])
	}
	if n := utf8.RuneCountInString(got.Preview); n != previewLimit+len(truncationMarker) {
		t.Fatalf("unexpected preview runes: %d", n)
	}
}

func TestToEinoInfoAndRun(t *testing.T) {
	t.Parallel()

	tools, err := NewCatalog(nil).Build([]string{ToolScanRiskTerms}, "doc.pdf")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	adapted := ToEino(tools)
	if len(adapted) != 1 {
		t.Fatalf("expected 1 eino tool, got %d", len(adapted))
	}

	info, err := adapted[0].Info(context.Background())
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if info.Name != ToolScanRiskTerms {
		t.Fatalf("unexpected name: %s", info.Name)
	}
	if info.ParamsOneOf == nil {
		t.Fatal("expected params")
	}

	run := adapted[0].(einoTool)
	out, err := run.InvokableRun(context.Background(), `{"input":"rising debt risk"}`)
	if err != nil {
		t.Fatalf("InvokableRun() error = %v", err)
	}
	if !strings.HasSuffix(out, "debt, risk") {
		t.Fatalf("unexpected output: %q", out)
	}

	out, err = run.InvokableRun(context.Background(), `{not json`)
	if err != nil {
		t.Fatalf("InvokableRun() error = %v", err)
	}
	if !strings.HasPrefix(out, "invalid arguments for tool=scan_risk_terms") {
		t.Fatalf("unexpected output: %q", out)
	}
}
