package fileconv

import (
	"context"
	"sync"
)

// progressReporter forwards progress to the caller. Values are clamped into
// [0, 100] and anything lower than what was already forwarded is dropped.
type progressReporter struct {
	mu   sync.Mutex
	last int
	fn   ProgressFunc
}

func newProgressReporter(fn ProgressFunc) *progressReporter {
	return &progressReporter{last: -1, fn: fn}
}

func (p *progressReporter) report(percent int) {
	percent = min(100, max(0, percent))

	p.mu.Lock()
	defer p.mu.Unlock()
	if percent <= p.last {
		return
	}
	p.last = percent
	if p.fn != nil {
		p.fn(percent)
	}
}

// bracketed wraps a converter that has no progress of its own: it reports 50
// before running and 75 once it succeeds.
func bracketed(c Converter) Converter {
	return ConverterFunc(func(ctx context.Context, payload []byte, report ProgressFunc) (*Result, error) {
		report(50)
		res, err := c.Convert(ctx, payload, report)
		if err != nil {
			return nil, err
		}
		report(75)
		return res, nil
	})
}
