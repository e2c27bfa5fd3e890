// Package document turns an uploaded PDF into plain text for the agents.
package document

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const (
	// ErrorMarker prefixes every in-band extraction failure returned by ExtractText.
	ErrorMarker = "Error reading PDF:"
	// NoTextFound is returned by ExtractText when no page yields any text.
	NoTextFound = "No text found in PDF"
)

var (
	ErrUnreadable = errors.New("pdf is unreadable")
	ErrNoText     = errors.New("no text found in pdf")
)

// Text is the result of a successful extraction.
type Text struct {
	Pages         int
	PagesWithText int
	Content       string
}

func init() {
	// pdfcpu otherwise installs config.yml and fonts under the user config dir on first use
	api.DisableConfigDir()
}

// pageSource is the slice of a PDF reader the extractor needs. Pages are 1-based.
type pageSource interface {
	NumPage() int
	PageText(num int) (string, error)
}

// ExtractText returns the document text, or an in-band marker string on failure.
// Callers must check IsErrorText before treating the result as document content.
func ExtractText(path string) string {
	text, err := Extract(path)
	switch {
	case errors.Is(err, ErrNoText):
		return NoTextFound
	case err != nil:
		return fmt.Sprintf("%s %v", ErrorMarker, err)
	}
	return text.Content
}

// IsErrorText reports whether s is one of the markers produced by ExtractText.
func IsErrorText(s string) bool {
	return strings.HasPrefix(s, ErrorMarker) || s == NoTextFound
}

// Extract is the typed variant of ExtractText.
func Extract(path string) (Text, error) {
	if strings.TrimSpace(path) == "" {
		return Text{}, fmt.Errorf("%w: path is empty", ErrUnreadable)
	}
	if err := validate(path); err != nil {
		return Text{}, err
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return Text{}, fmt.Errorf("%w: open: %v", ErrUnreadable, err)
	}
	defer f.Close()

	return extractPages(readerSource{r: r})
}

func validate(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open: %v", ErrUnreadable, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pdfCtx, err := api.ReadContext(f, conf)
	if err != nil {
		return fmt.Errorf("%w: read: %v", ErrUnreadable, err)
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return fmt.Errorf("%w: validate: %v", ErrUnreadable, err)
	}
	if pdfCtx.PageCount == 0 {
		return fmt.Errorf("%w: document has no pages", ErrUnreadable)
	}
	return nil
}

func extractPages(src pageSource) (Text, error) {
	total := src.NumPage()
	texts := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		pageText, err := src.PageText(i)
		if err != nil {
			return Text{}, fmt.Errorf("%w: page %d: %v", ErrUnreadable, i, err)
		}
		if pageText == "" {
			continue
		}
		texts = append(texts, pageText)
	}

	if len(texts) == 0 {
		return Text{Pages: total}, ErrNoText
	}

	return Text{
		Pages:         total,
		PagesWithText: len(texts),
		Content:       strings.Join(texts, "\n"),
	}, nil
}

type readerSource struct {
	r *pdf.Reader
}

func (s readerSource) NumPage() int {
	return s.r.NumPage()
}

func (s readerSource) PageText(num int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed page content: %v", rec)
		}
	}()

	page := s.r.Page(num)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
