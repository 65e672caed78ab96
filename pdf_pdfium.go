//go:build !nopdfium

package fileconv

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/responses"
	"github.com/klippa-app/go-pdfium/webassembly"
)

const pdfiumInstanceTimeout = 30 * time.Second

// pdfBackend extracts page text with PDFium running as WebAssembly. The pool
// is started on first use.
type pdfBackend struct {
	pool *lazy[pdfium.Pool]
}

func newPDFBackend() *pdfBackend {
	return &pdfBackend{
		pool: newLazy(func(context.Context) (pdfium.Pool, error) {
			return webassembly.Init(webassembly.Config{
				MinIdle:  1,
				MaxIdle:  1,
				MaxTotal: 1,
			})
		}),
	}
}

func (b *pdfBackend) close() error {
	if pool, ok := b.pool.loaded(); ok {
		return pool.Close()
	}
	return nil
}

// extractPages returns the text items of every page, in page order.
func (b *pdfBackend) extractPages(ctx context.Context, data []byte) ([][]string, error) {
	pool, err := b.pool.get(ctx)
	if err != nil {
		return nil, fmt.Errorf("init pdfium: %w", err)
	}

	instance, err := pool.GetInstance(pdfiumInstanceTimeout)
	if err != nil {
		return nil, fmt.Errorf("get pdfium instance: %w", err)
	}
	defer instance.Close()

	doc, err := instance.OpenDocument(&requests.OpenDocument{File: &data})
	if err != nil {
		return nil, &ValidationError{Format: PDF, Err: err}
	}
	defer instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document})

	count, err := instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{Document: doc.Document})
	if err != nil {
		return nil, &ValidationError{Format: PDF, Err: err}
	}

	pages := make([][]string, 0, count.PageCount)
	for i := 0; i < count.PageCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages = append(pages, pageItems(instance, doc, i))
	}
	return pages, nil
}

type textRect struct {
	text      string
	left, top float64
}

// pageItems returns the text rectangles of a page in reading order: top to
// bottom, then left to right within a line. Pages without structured text
// fall back to the plain page text as a single item.
func pageItems(instance pdfium.Pdfium, doc *responses.OpenDocument, index int) []string {
	page := requests.Page{
		ByIndex: &requests.PageByIndex{Document: doc.Document, Index: index},
	}

	structured, err := instance.GetPageTextStructured(&requests.GetPageTextStructured{
		Page: page,
		Mode: requests.GetPageTextStructuredModeRects,
	})
	if err == nil && len(structured.Rects) > 0 {
		rects := make([]textRect, 0, len(structured.Rects))
		for _, r := range structured.Rects {
			text := strings.TrimSpace(r.Text)
			if text == "" {
				continue
			}
			rects = append(rects, textRect{text: text, left: r.PointPosition.Left, top: r.PointPosition.Top})
		}
		// PDF y grows upwards, so the top of the page has the largest value.
		sort.SliceStable(rects, func(i, j int) bool {
			if math.Abs(rects[i].top-rects[j].top) < 3 {
				return rects[i].left < rects[j].left
			}
			return rects[i].top > rects[j].top
		})

		items := make([]string, len(rects))
		for i, r := range rects {
			items[i] = r.text
		}
		if len(items) > 0 {
			return items
		}
	}

	plain, err := instance.GetPageText(&requests.GetPageText{Page: page})
	if err != nil {
		return nil
	}
	if text := strings.TrimSpace(plain.Text); text != "" {
		return []string{text}
	}
	return nil
}
