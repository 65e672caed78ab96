package fileconv

import (
	"bytes"
	"context"
	"strings"

	"github.com/go-pdf/fpdf"
)

// joinPages flattens extracted page text: items on a page are joined with a
// space, pages with a newline, strictly in page order.
func joinPages(pages [][]string) string {
	lines := make([]string, len(pages))
	for i, items := range pages {
		lines[i] = strings.Join(items, " ")
	}
	return strings.Join(lines, "\n")
}

func (e *Engine) pdfToText(ctx context.Context, payload []byte, _ ProgressFunc) (*Result, error) {
	pages, err := e.pdf.extractPages(ctx, payload)
	if err != nil {
		return nil, asConversionError(TXT, err)
	}
	e.logger.DebugContext(ctx, "pdf text extracted", "pages", len(pages))
	return &Result{Data: []byte(joinPages(pages)), MIMEType: MIMEType(TXT)}, nil
}

// readPDFParagraphs yields one paragraph per page.
func (e *Engine) readPDFParagraphs(ctx context.Context, payload []byte) ([]paragraph, error) {
	pages, err := e.pdf.extractPages(ctx, payload)
	if err != nil {
		return nil, err
	}
	paras := make([]paragraph, len(pages))
	for i, items := range pages {
		paras[i] = plainParagraph(strings.Join(items, " "))
	}
	return paras, nil
}

const (
	pdfFont     = "Helvetica"
	pdfBodySize = 11.0
	pdfMargin   = 20.0
)

var pdfHeadingSizes = [...]float64{0, 20, 17, 15, 13, 12, 11}

// writePDF lays paragraphs out on A4 pages using a core font. Text outside
// the cp1252 range cannot be represented by core fonts and is transliterated
// by the font translator.
func writePDF(paras []paragraph) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	doc.SetAutoPageBreak(true, pdfMargin)
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")

	for _, p := range paras {
		size := pdfBodySize
		if p.heading > 0 {
			size = pdfHeadingSizes[p.heading]
		}
		lineHeight := size * 0.5

		for _, r := range p.runs {
			style := ""
			if r.bold || p.heading > 0 {
				style += "B"
			}
			if r.italic {
				style += "I"
			}
			doc.SetFont(pdfFont, style, size)
			doc.Write(lineHeight, tr(r.text))
		}
		doc.Ln(lineHeight)
		if p.heading > 0 {
			doc.Ln(lineHeight / 2)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
