//go:build nopdfium

package fileconv

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfBackend extracts page text with the pure Go PDF reader.
type pdfBackend struct{}

func newPDFBackend() *pdfBackend {
	return &pdfBackend{}
}

func (b *pdfBackend) close() error { return nil }

// extractPages returns the text items of every page, in page order. The
// reader panics on some malformed content streams; that is reported as
// invalid input.
func (b *pdfBackend) extractPages(ctx context.Context, data []byte) (pages [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, &ValidationError{Format: PDF, Err: fmt.Errorf("%v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ValidationError{Format: PDF, Err: err}
	}

	n := reader.NumPage()
	pages = make([][]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, nil)
			continue
		}
		pages = append(pages, rowItems(page))
	}
	return pages, nil
}

// rowItems returns one item per text row. An empty word between two words
// marks a word boundary.
func rowItems(page pdf.Page) []string {
	var items []string

	rows, err := page.GetTextByRow()
	if err == nil {
		for _, row := range rows {
			var line strings.Builder
			gap := false
			for _, word := range row.Content {
				if word.S == "" {
					gap = true
					continue
				}
				if gap && line.Len() > 0 {
					line.WriteByte(' ')
				}
				line.WriteString(word.S)
				gap = false
			}
			if text := strings.TrimSpace(line.String()); text != "" {
				items = append(items, text)
			}
		}
	}
	if len(items) > 0 {
		return items
	}

	var raw strings.Builder
	for _, t := range page.Content().Text {
		raw.WriteString(t.S)
	}
	if text := strings.TrimSpace(raw.String()); text != "" {
		items = append(items, text)
	}
	return items
}
