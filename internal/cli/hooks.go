package cli

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockdrop/pkg/observability"
)

// logHooks reports batch, cache and HTTP events as debug logs.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnBatchStart(_ context.Context, source string) {
	h.logger.Debug("batch started", "source", source)
}

func (h logHooks) OnScenario(_ context.Context, ev observability.ScenarioEvent) {
	h.logger.Debug("scenario",
		"line", ev.Line,
		"drops", ev.Drops,
		"cleared", ev.RowsCleared,
		"height", ev.Height,
		"cached", ev.Cached)
}

func (h logHooks) OnBatchComplete(_ context.Context, lines int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("batch failed", "lines", lines, "duration", d.Round(time.Microsecond), "error", err)
		return
	}
	h.logger.Debug("batch complete", "lines", lines, "duration", d.Round(time.Microsecond))
}

func (h logHooks) OnCacheHit(_ context.Context, backend string) {
	h.logger.Debug("cache hit", "backend", backend)
}

func (h logHooks) OnCacheMiss(_ context.Context, backend string) {
	h.logger.Debug("cache miss", "backend", backend)
}

func (h logHooks) OnCacheSet(_ context.Context, backend string, size int) {
	h.logger.Debug("cache set", "backend", backend, "bytes", size)
}

func (h logHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request started", "method", method, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("request finished", "method", method, "path", path, "status", status, "duration", d.Round(time.Microsecond))
}

// progressHooks keeps a spinner's message in step with a running batch.
type progressHooks struct {
	observability.NoopBatchHooks
	spinner *Spinner
	lines   atomic.Int64
}

func (h *progressHooks) OnScenario(context.Context, observability.ScenarioEvent) {
	n := h.lines.Add(1)
	if n%256 == 0 {
		h.spinner.SetMessage(fmt.Sprintf("Simulating... %d lines", n))
	}
}

// finish stops the spinner with a summary of how far the batch got.
func (h *progressHooks) finish(err error) {
	msg, ok := h.summary(err)
	if ok {
		h.spinner.StopWithSuccess(msg)
		return
	}
	h.spinner.StopWithError(msg)
}

func (h *progressHooks) summary(err error) (string, bool) {
	n := h.lines.Load()
	switch {
	case err == nil:
		return fmt.Sprintf("Simulated %d lines", n), true
	case h.spinner.Cancelled():
		return fmt.Sprintf("Cancelled after %d lines", n), false
	default:
		return fmt.Sprintf("Stopped after %d lines", n), false
	}
}

// registerHooks installs the observability hooks for this invocation and
// returns a function that removes them, given the outcome of the work they
// observed. Verbose runs log every event; other runs on a terminal get a
// spinner.
func (c *CLI) registerHooks(ctx context.Context, spin bool) func(error) {
	if c.Logger.GetLevel() <= log.DebugLevel {
		h := logHooks{logger: c.Logger}
		observability.SetBatchHooks(h)
		observability.SetCacheHooks(h)
		observability.SetHTTPHooks(h)
		return func(error) { observability.Reset() }
	}
	if !spin || !stderrIsTerminal() {
		return func(error) {}
	}

	h := &progressHooks{spinner: newSpinnerWithContext(ctx, os.Stderr, "Simulating...")}
	observability.SetBatchHooks(h)
	h.spinner.Start()
	return func(err error) {
		h.finish(err)
		observability.Reset()
	}
}

var _ observability.BatchHooks = logHooks{}
var _ observability.CacheHooks = logHooks{}
var _ observability.HTTPHooks = logHooks{}
