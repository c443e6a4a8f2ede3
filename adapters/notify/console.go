// Package notify provides ports.Notifier implementations.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Console prints notices to a writer, one per line
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	logger *slog.Logger
}

// NewConsole creates a notifier writing to out
func NewConsole(out io.Writer, logger *slog.Logger) *Console {
	return &Console{out: out, logger: logger}
}

func (c *Console) Success(msg string) { c.write("✓", slog.LevelInfo, msg) }
func (c *Console) Info(msg string)    { c.write("i", slog.LevelInfo, msg) }
func (c *Console) Error(msg string)   { c.write("✗", slog.LevelWarn, msg) }

func (c *Console) write(mark string, level slog.Level, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "%s %s\n", mark, msg)
	if c.logger != nil {
		c.logger.Log(context.Background(), level, "notice", slog.String("message", msg))
	}
}
