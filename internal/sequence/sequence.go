package sequence

import (
	"context"
	"fmt"
	"sync"
)

// Generator supplies unique order references: a fixed prefix followed by a
// zero-padded number, e.g. RENT0000042.
type Generator interface {
	Next(ctx context.Context) (string, error)
}

// Format renders a sequence number as an order reference.
func Format(prefix string, width int, n int64) string {
	return fmt.Sprintf("%s%0*d", prefix, width, n)
}

// Counter is an in-memory Generator for tests and single-process use.
type Counter struct {
	mu     sync.Mutex
	prefix string
	width  int
	n      int64
}

func NewCounter(prefix string, width int) *Counter {
	return &Counter{prefix: prefix, width: width}
}

func (c *Counter) Next(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return Format(c.prefix, c.width, c.n), nil
}
