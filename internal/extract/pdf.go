package extract

import (
	"fmt"
	"strings"

	ledongthuc "github.com/ledongthuc/pdf"
	rpdf "rsc.io/pdf"
)

// LedongthucExtractor reads PDFs with github.com/ledongthuc/pdf. Pages that
// fail to parse are skipped; only a document with zero readable pages comes
// back empty.
type LedongthucExtractor struct{}

func (e *LedongthucExtractor) Name() string    { return "ledongthuc/pdf" }
func (e *LedongthucExtractor) Available() bool { return true }

func (e *LedongthucExtractor) Extract(path string) (string, error) {
	f, reader, err := ledongthuc.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	totalPage := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	return b.String(), nil
}

// RscExtractor is the basic fallback reader built on rsc.io/pdf.
type RscExtractor struct{}

func (e *RscExtractor) Name() string    { return "rsc.io/pdf" }
func (e *RscExtractor) Available() bool { return true }

func (e *RscExtractor) Extract(path string) (string, error) {
	reader, err := rpdf.Open(path)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		text, err := rscPageText(reader, pageIndex)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	return b.String(), nil
}

// rsc.io/pdf panics on some malformed page content streams; contain that to
// the page so the rest of the document still extracts.
func rscPageText(reader *rpdf.Reader, pageIndex int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: %v", pageIndex, r)
		}
	}()

	page := reader.Page(pageIndex)
	if page.V.IsNull() {
		return "", nil
	}

	var b strings.Builder
	var lastY float64
	for _, t := range page.Content().Text {
		if lastY != 0 && t.Y != lastY {
			b.WriteString("\n")
		} else if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(t.S)
		lastY = t.Y
	}
	return b.String(), nil
}
