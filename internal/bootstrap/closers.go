// AngelaMos | 2026
// closers.go

package bootstrap

import (
	"log/slog"
)

// Closers releases process resources in reverse acquisition order. Register
// each resource as soon as it is opened so an early return still frees it.
type Closers struct {
	entries []closer
}

type closer struct {
	name string
	fn   func() error
}

func (c *Closers) Add(name string, fn func() error) {
	c.entries = append(c.entries, closer{name: name, fn: fn})
}

// Close runs every registered closer once, newest first. Failures are
// logged and do not stop the remaining closers.
func (c *Closers) Close(logger *slog.Logger) {
	for i := len(c.entries) - 1; i >= 0; i-- {
		e := c.entries[i]
		if err := e.fn(); err != nil {
			logger.Error("close error", "resource", e.name, "error", err)
		}
	}
	c.entries = nil
}
