package operator

import (
	"context"
	"errors"
	"time"
)

// Source delivers an operator message within a bounded wait
type Source interface {
	AwaitMessage(ctx context.Context, timeout time.Duration) (string, bool, error)
}

// Combined waits on several sources at once and returns the first message any of them delivers
type Combined struct {
	sources []Source
}

// NewCombined merges sources; nil entries are ignored
func NewCombined(sources ...Source) *Combined {
	c := &Combined{}
	for _, s := range sources {
		if s != nil {
			c.sources = append(c.sources, s)
		}
	}
	return c
}

type awaitResult struct {
	text string
	ok   bool
	err  error
}

// AwaitMessage returns the first delivered message. Errors are reported only if no source delivered one.
func (c *Combined) AwaitMessage(ctx context.Context, timeout time.Duration) (string, bool, error) {
	if len(c.sources) == 0 {
		return "", false, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan awaitResult, len(c.sources))
	for _, s := range c.sources {
		go func(s Source) {
			text, ok, err := s.AwaitMessage(ctx, timeout)
			results <- awaitResult{text: text, ok: ok, err: err}
		}(s)
	}

	var errs []error
	for range c.sources {
		r := <-results
		if r.ok {
			return r.text, true, nil
		}
		if r.err != nil && !errors.Is(r.err, context.Canceled) {
			errs = append(errs, r.err)
		}
	}
	return "", false, errors.Join(errs...)
}
