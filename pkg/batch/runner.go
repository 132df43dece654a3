package batch

import (
	"bufio"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockdrop/pkg/cache"
	"github.com/matzehuels/blockdrop/pkg/errors"
	"github.com/matzehuels/blockdrop/pkg/observability"
	"github.com/matzehuels/blockdrop/pkg/scenario"
)

// Default file names used when no paths are given.
const (
	DefaultInput  = "Challenge_Input.txt"
	DefaultOutput = "Output.txt"
)

// DefaultWorkers simulates lines one at a time.
const DefaultWorkers = 1

// Runner executes scenario batches with optional caching.
//
// A Runner holds no per-run state; one Runner may serve concurrent runs.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
	Workers int             // concurrent simulations; <= 1 is sequential
	Policy  scenario.Policy // malformed token handling
	TTL     time.Duration   // cache entry lifetime
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		Workers: DefaultWorkers,
		Policy:  scenario.PolicyFail,
		TTL:     cache.TTLHeight,
	}
}

// Result contains the outputs of a batch run.
type Result struct {
	// Heights holds one height per input line, in input order.
	Heights []int

	// Skipped lists malformed tokens dropped under PolicySkip.
	Skipped []*errors.LineError

	// Stats contains counters and timing.
	Stats Stats
}

// Stats contains batch execution statistics.
type Stats struct {
	Lines       int           `json:"lines"`
	Blank       int           `json:"blank"`
	Drops       int           `json:"drops"`
	RowsCleared int           `json:"rows_cleared"`
	CacheHits   int           `json:"cache_hits"`
	Skipped     int           `json:"skipped"`
	Duration    time.Duration `json:"duration_ns"`
}

// entry is the cached form of a simulated line.
type entry struct {
	Outcome
	Skipped []*scenario.TokenError `json:"skipped,omitempty"`
}

type lineResult struct {
	entry
	blank  bool
	cached bool
}

// feeder pushes input lines to emit until the input is exhausted or emit fails.
type feeder func(emit func(line string) error) error

// Run reads newline-delimited scenarios from src and simulates each one.
// Under PolicyFail the first malformed line aborts the run with an
// *errors.LineError naming that line.
func (r *Runner) Run(ctx context.Context, src io.Reader) (*Result, error) {
	return r.run(ctx, "reader", func(emit func(string) error) error {
		return scanLines(src, emit)
	})
}

// RunLines simulates scenarios that are already split into lines.
func (r *Runner) RunLines(ctx context.Context, lines []string) (*Result, error) {
	return r.run(ctx, "lines", func(emit func(string) error) error {
		for _, l := range lines {
			if err := emit(l); err != nil {
				return err
			}
		}
		return nil
	})
}

// RunFile simulates every line of the input file and writes the heights to
// the output file. A missing input file is reported before anything is
// created, and the output file is only replaced once the run has succeeded.
func (r *Runner) RunFile(ctx context.Context, in, out string) (*Result, error) {
	if err := errors.ValidatePath(in); err != nil {
		return nil, err
	}
	if err := errors.ValidatePath(out); err != nil {
		return nil, err
	}

	info, err := os.Stat(in)
	if err != nil || !info.Mode().IsRegular() {
		return nil, errors.New(errors.ErrCodeFileNotFound, "Input file '%s' not found.", in)
	}

	f, err := os.Open(in)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", in)
	}
	defer f.Close()

	res, err := r.run(ctx, in, func(emit func(string) error) error {
		return scanLines(f, emit)
	})
	if err != nil {
		return nil, err
	}

	if err := writeHeightsFile(out, res.Heights); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "write %s", out)
	}
	r.Logger.Debug("wrote heights", "path", out, "lines", len(res.Heights))
	return res, nil
}

func (r *Runner) run(ctx context.Context, source string, feed feeder) (*Result, error) {
	start := time.Now()
	hooks := observability.Batch()
	hooks.OnBatchStart(ctx, source)

	var (
		lines []lineResult
		err   error
	)
	if r.Workers <= 1 {
		lines, err = r.runSequential(ctx, feed)
	} else {
		lines, err = r.runParallel(ctx, feed)
	}
	if err == nil {
		err = ctx.Err()
	}

	duration := time.Since(start)
	hooks.OnBatchComplete(ctx, len(lines), duration, err)
	if err != nil {
		return nil, err
	}

	res := summarize(lines)
	res.Stats.Duration = duration
	r.Logger.Debug("simulated scenarios",
		"lines", res.Stats.Lines,
		"drops", res.Stats.Drops,
		"cleared", res.Stats.RowsCleared,
		"cache_hits", res.Stats.CacheHits,
		"duration", duration.Round(time.Microsecond))
	return res, nil
}

func (r *Runner) runSequential(ctx context.Context, feed feeder) ([]lineResult, error) {
	var out []lineResult
	n := 0
	err := feed(func(line string) error {
		n++
		if err := ctx.Err(); err != nil {
			return err
		}
		lr, err := r.simulateLine(ctx, n, line)
		if err != nil {
			return err
		}
		out = append(out, lr)
		return nil
	})
	return out, err
}

// runParallel fans lines out to r.Workers goroutines. Each worker builds its
// own boards; results are slotted back by line number. Every line is
// processed so the reported error is always the lowest failing line, matching
// sequential runs.
func (r *Runner) runParallel(ctx context.Context, feed feeder) ([]lineResult, error) {
	type job struct {
		n    int
		line string
	}
	type done struct {
		job
		res lineResult
		err error
	}

	jobs := make(chan job, r.Workers*2)
	results := make(chan done, r.Workers*2)

	var wg sync.WaitGroup
	for range r.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- done{job: j, err: err}
					continue
				}
				res, err := r.simulateLine(ctx, j.n, j.line)
				results <- done{job: j, res: res, err: err}
			}
		}()
	}

	feedErr := make(chan error, 1)
	go func() {
		n := 0
		err := feed(func(line string) error {
			n++
			select {
			case jobs <- job{n: n, line: line}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		close(jobs)
		feedErr <- err
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var (
		out       []lineResult
		lineErr   error
		errLineNo int
	)
	for d := range results {
		if d.err != nil {
			if lineErr == nil || d.n < errLineNo {
				lineErr, errLineNo = d.err, d.n
			}
			continue
		}
		for len(out) < d.n {
			out = append(out, lineResult{})
		}
		out[d.n-1] = d.res
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if lineErr != nil {
		return nil, lineErr
	}
	if err := <-feedErr; err != nil {
		return nil, err
	}
	return out, nil
}

// simulateLine turns one input line into its height, consulting the cache
// for non-blank lines.
func (r *Runner) simulateLine(ctx context.Context, n int, line string) (lineResult, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		observability.Batch().OnScenario(ctx, observability.ScenarioEvent{Line: n})
		return lineResult{blank: true}, nil
	}

	key := r.Keyer.HeightKey(r.Policy.String(), trimmed)
	if e, ok := r.lookup(ctx, key); ok {
		r.emit(ctx, n, e, true)
		return lineResult{entry: e, cached: true}, nil
	}

	sc, err := scenario.Parse(trimmed, r.Policy)
	if err != nil {
		return lineResult{}, &errors.LineError{Line: n, Err: err}
	}

	e := entry{Outcome: Simulate(sc), Skipped: sc.Skipped}
	r.store(ctx, key, e)
	r.emit(ctx, n, e, false)
	return lineResult{entry: e}, nil
}

func (r *Runner) emit(ctx context.Context, n int, e entry, cached bool) {
	observability.Batch().OnScenario(ctx, observability.ScenarioEvent{
		Line:        n,
		Drops:       e.Drops,
		RowsCleared: e.RowsCleared,
		Height:      e.Height,
		Skipped:     len(e.Skipped),
		Cached:      cached,
	})
	for _, te := range e.Skipped {
		r.Logger.Warn("skipped malformed token", "line", n, "token", te.Token, "reason", te.Reason)
	}
}

func (r *Runner) lookup(ctx context.Context, key string) (entry, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache get failed", "backend", r.Cache.Name(), "error", err)
		return entry{}, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, r.Cache.Name())
		return entry{}, false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, r.Cache.Name())
		return entry{}, false
	}
	observability.Cache().OnCacheHit(ctx, r.Cache.Name())
	return e, true
}

func (r *Runner) store(ctx context.Context, key string, e entry) {
	if r.Cache.Name() == cache.BackendNone {
		return
	}
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Debug("cache set failed", "backend", r.Cache.Name(), "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, r.Cache.Name(), len(data))
}

func summarize(lines []lineResult) *Result {
	res := &Result{Heights: make([]int, len(lines))}
	res.Stats.Lines = len(lines)
	for i, lr := range lines {
		res.Heights[i] = lr.Height
		if lr.blank {
			res.Stats.Blank++
			continue
		}
		res.Stats.Drops += lr.Drops
		res.Stats.RowsCleared += lr.RowsCleared
		if lr.cached {
			res.Stats.CacheHits++
		}
		for _, te := range lr.Skipped {
			res.Skipped = append(res.Skipped, &errors.LineError{Line: i + 1, Err: te})
		}
	}
	res.Stats.Skipped = len(res.Skipped)
	return res
}

// scanLines emits each line of src in order. A final line without a trailing
// newline is still emitted.
func scanLines(src io.Reader, emit func(string) error) error {
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 64*1024), errors.MaxLineLength+2)
	for sc.Scan() {
		if err := emit(sc.Text()); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		if stderrors.Is(err, bufio.ErrTooLong) {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "line exceeds %d bytes", errors.MaxLineLength)
		}
		return errors.Wrap(errors.ErrCodeIO, err, "read input")
	}
	return nil
}
