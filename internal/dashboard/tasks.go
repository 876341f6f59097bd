package dashboard

import (
	"context"
	"log/slog"
	"sync"
)

// Spawner starts fire-and-forget work.
type Spawner interface {
	Go(name string, fn func(ctx context.Context))
}

// Group runs background tasks under one context and lets callers wait for
// them to drain.
type Group struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *slog.Logger

	// mu orders wg.Add against Close.
	mu     sync.Mutex
	closed bool
}

func NewGroup(parent context.Context, logger *slog.Logger) *Group {
	ctx, cancel := context.WithCancel(parent)
	return &Group{ctx: ctx, cancel: cancel, logger: logger}
}

// Go runs fn in its own goroutine. A panicking task is logged and does not
// take its siblings down.
func (g *Group) Go(name string, fn func(ctx context.Context)) {
	g.mu.Lock()
	if g.closed || g.ctx.Err() != nil {
		g.mu.Unlock()
		g.logger.Debug("task skipped after shutdown", "task", name)
		return
	}
	g.wg.Add(1)
	g.mu.Unlock()

	go func() {
		defer g.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				g.logger.Error("task panicked", "task", name, "panic", r)
			}
		}()
		fn(g.ctx)
	}()
}

// Wait blocks until every task started so far, and every task those tasks
// started, has returned.
func (g *Group) Wait() {
	g.wg.Wait()
}

// Close cancels in-flight tasks and waits for them. Tasks started after
// Close are dropped.
func (g *Group) Close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	g.cancel()
	g.wg.Wait()
}
