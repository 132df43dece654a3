package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockdrop/internal/config"
	"github.com/matzehuels/blockdrop/pkg/batch"
	"github.com/matzehuels/blockdrop/pkg/board"
	"github.com/matzehuels/blockdrop/pkg/cache"
	"github.com/matzehuels/blockdrop/pkg/errors"
	"github.com/matzehuels/blockdrop/pkg/history"
	"github.com/matzehuels/blockdrop/pkg/observability"
	"github.com/matzehuels/blockdrop/pkg/scenario"
)

func executeRoot(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/xdg-cache", "blockdrop"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}

	t.Setenv("XDG_CACHE_HOME", "")
	dir, err = cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", "blockdrop"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	dir, err := dataDir()
	if err != nil {
		t.Fatalf("dataDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/xdg-data", "blockdrop"); dir != want {
		t.Errorf("dataDir() = %q, want %q", dir, want)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	for _, name := range []string{"board", "serve", "cache", "history", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.Flags().Lookup("workers") == nil || root.PersistentFlags().Lookup("config") == nil {
		t.Error("root flags missing")
	}
}

func TestRunWritesHeights(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := os.WriteFile("Challenge_Input.txt", []byte("Q0,Q2,Q4\n\nQ0,Q2,Q4,Q6,Q8\nI0,I4,Q8\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := executeRoot(t, "--workers", "2"); err != nil {
		t.Fatalf("run error: %v", err)
	}

	data, err := os.ReadFile("Output.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "2\n0\n0\n1\n"; got != want {
		t.Errorf("Output.txt = %q, want %q", got, want)
	}
}

func TestRunExplicitPaths(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	os.WriteFile(in, []byte("I0,I4,I8\n"), 0644)

	if err := executeRoot(t, in, out, "--on-invalid", "skip"); err != nil {
		t.Fatalf("run error: %v", err)
	}
	data, _ := os.ReadFile(out)
	if string(data) != "1\n" {
		t.Errorf("output = %q, want %q", data, "1\n")
	}

	err := executeRoot(t, in, out)
	if !errors.Is(err, errors.ErrCodeInvalidToken) {
		t.Errorf("default policy error = %v, want INVALID_TOKEN", err)
	}
}

func TestRunMissingInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "missing.txt")
	out := filepath.Join(dir, "out.txt")

	err := executeRoot(t, in, out)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Fatalf("error = %v, want FILE_NOT_FOUND", err)
	}
	if got, want := errors.UserMessage(err), "Input file '"+in+"' not found."; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output file must not be created")
	}
}

func TestRunTooManyArgs(t *testing.T) {
	if err := executeRoot(t, "a", "b", "c"); err == nil {
		t.Error("expected error for three positional args")
	}
}

func TestRunInvalidFlag(t *testing.T) {
	err := executeRoot(t, "--workers", "0", "in.txt")
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestRunRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	runs := filepath.Join(dir, "runs")
	cfgPath := filepath.Join(dir, "blockdrop.toml")
	os.WriteFile(in, []byte("Q0\n"), 0644)
	os.WriteFile(cfgPath, []byte("[history]\nbackend = \"file\"\ndir = \"runs\"\n"), 0644)

	if err := executeRoot(t, "--config", cfgPath, in, out); err != nil {
		t.Fatalf("run error: %v", err)
	}

	store, err := history.NewFileStore(runs)
	if err != nil {
		t.Fatal(err)
	}
	recent, err := store.Recent(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 {
		t.Fatalf("recorded %d runs, want 1", len(recent))
	}
	if r := recent[0]; r.Input != in || len(r.Heights) != 1 || r.Heights[0] != 2 || r.InputHash == "" {
		t.Errorf("run = %+v", r)
	}
}

func TestRunOptsApply(t *testing.T) {
	c := New(io.Discard, LogInfo)
	cmd := c.runCommand()
	if err := cmd.ParseFlags([]string{"--on-invalid", "skip", "--cache", "file", "--no-history"}); err != nil {
		t.Fatal(err)
	}

	var opts runOpts
	opts.onInvalid, opts.cache, opts.noHistory = "skip", "file", true
	cfg := config.Default()
	cfg.Workers = 6
	cfg.History.Backend = history.BackendFile
	opts.apply(cmd, []string{"in.txt"}, &cfg)

	if cfg.Workers != 6 {
		t.Errorf("unset --workers overrode config: %d", cfg.Workers)
	}
	if cfg.Policy() != scenario.PolicySkip || cfg.Cache.Backend != cache.BackendFile {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.History.Backend != history.BackendNone {
		t.Errorf("--no-history not applied")
	}
	if cfg.Input != "in.txt" || cfg.Output != batch.DefaultOutput {
		t.Errorf("paths = %q, %q", cfg.Input, cfg.Output)
	}
}

func TestNewRunnerFallsBackToNullCache(t *testing.T) {
	c := New(io.Discard, LogInfo)
	cfg := config.Default()
	cfg.Cache.Backend = "bogus"
	r, closeCache := c.newRunner(context.Background(), cfg)
	defer closeCache()
	if r.Cache.Name() != cache.BackendNone {
		t.Errorf("cache = %s, want none", r.Cache.Name())
	}

	cfg.Cache.Backend = cache.BackendFile
	cfg.Cache.Dir = t.TempDir()
	cfg.Workers = 3
	r, closeCache = c.newRunner(context.Background(), cfg)
	defer closeCache()
	if r.Cache.Name() != cache.BackendFile || r.Workers != 3 {
		t.Errorf("runner = cache %s workers %d", r.Cache.Name(), r.Workers)
	}
}

func TestCacheClear(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "blockdrop.toml")
	os.WriteFile(cfgPath, []byte("[cache]\nbackend = \"file\"\ndir = \"cache\"\n"), 0644)

	fc, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	fc.Set(context.Background(), "k1", []byte("{}"), 0)
	fc.Set(context.Background(), "k2", []byte("{}"), 0)

	if err := executeRoot(t, "--config", cfgPath, "cache", "clear"); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	if _, hit, _ := fc.Get(context.Background(), "k1"); hit {
		t.Error("entry survived cache clear")
	}
}

func TestBoardCommand(t *testing.T) {
	if err := executeRoot(t, "board", "--trace", "I0,I4,Q8"); err != nil {
		t.Errorf("board error: %v", err)
	}
	if err := executeRoot(t, "board", "Q0,X1"); !errors.Is(err, errors.ErrCodeInvalidToken) {
		t.Errorf("board error = %v, want INVALID_TOKEN", err)
	}
	if err := executeRoot(t, "board", "--on-invalid", "skip", "--plain", "Q0,X1"); err != nil {
		t.Errorf("board skip error: %v", err)
	}
}

func TestHistoryDisabled(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := executeRoot(t, "history"); err != nil {
		t.Errorf("history error: %v", err)
	}
}

func TestRenderBoard(t *testing.T) {
	b := board.FromRows(0b11)
	out := renderBoard(b, 3)
	// Three rows plus the bottom border.
	if lines := strings.Split(out, "\n"); len(lines) != 4 {
		t.Errorf("renderBoard() produced %d lines, want 4:\n%s", len(lines), out)
	}
	if strings.Count(out, cellFull) != 2 {
		t.Errorf("renderBoard() should draw 2 full cells:\n%s", out)
	}
}

func TestFormatStep(t *testing.T) {
	st := batch.Step{Drop: board.Drop{Shape: board.MustLookup('Q'), Column: 8}, Landed: 0, Cleared: 1, Height: 1}
	got := formatStep(3, st)
	for _, want := range []string{"Q8", "row 0", "height 1", "cleared 1"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatStep() = %q, missing %q", got, want)
		}
	}
}

func TestSummarizeHeights(t *testing.T) {
	tests := []struct {
		heights []int
		n       int
		want    string
	}{
		{nil, 3, ""},
		{[]int{1, 2}, 3, "1 2"},
		{[]int{1, 2, 3, 4, 5}, 3, "1 2 3 … (+2)"},
	}
	for _, tt := range tests {
		if got := summarizeHeights(tt.heights, tt.n); got != tt.want {
			t.Errorf("summarizeHeights(%v, %d) = %q, want %q", tt.heights, tt.n, got, tt.want)
		}
	}
}

func TestFormatBatchStats(t *testing.T) {
	got := formatBatchStats(batch.Stats{Lines: 4, Drops: 9, RowsCleared: 3, Blank: 1, CacheHits: 2})
	for _, want := range []string{"4 lines", "9 drops", "3 rows cleared", "1 blank", "2 cached"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatBatchStats() = %q, missing %q", got, want)
		}
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := logHooks{logger: newLogger(&buf, log.DebugLevel)}
	h.OnScenario(context.Background(), observability.ScenarioEvent{Line: 7, Height: 3})
	h.OnCacheHit(context.Background(), "file")
	out := buf.String()
	if !strings.Contains(out, "line=7") || !strings.Contains(out, "cache hit") {
		t.Errorf("log hooks output = %q", out)
	}
}

func TestProgressHooks(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), io.Discard, "Simulating...")
	h := &progressHooks{spinner: s}
	for i := 0; i < 512; i++ {
		h.OnScenario(context.Background(), observability.ScenarioEvent{})
	}
	if h.lines.Load() != 512 {
		t.Errorf("lines = %d, want 512", h.lines.Load())
	}
	if s.message != "Simulating... 512 lines" {
		t.Errorf("message = %q", s.message)
	}
}

func TestRegisterHooksVerbose(t *testing.T) {
	c := New(io.Discard, LogDebug)
	remove := c.registerHooks(context.Background(), true)
	if _, ok := observability.Batch().(logHooks); !ok {
		t.Errorf("batch hooks = %T, want logHooks", observability.Batch())
	}
	remove(nil)
	if _, ok := observability.Batch().(observability.NoopBatchHooks); !ok {
		t.Errorf("hooks not reset: %T", observability.Batch())
	}
}

func TestProgressHooksSummary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := &progressHooks{spinner: newSpinnerWithContext(ctx, io.Discard, "Simulating...")}
	for i := 0; i < 3; i++ {
		h.OnScenario(ctx, observability.ScenarioEvent{})
	}

	tests := []struct {
		name   string
		err    error
		cancel bool
		want   string
		ok     bool
	}{
		{"success", nil, false, "Simulated 3 lines", true},
		{"failure", errors.New(errors.ErrCodeInvalidToken, "bad"), false, "Stopped after 3 lines", false},
		{"cancelled", context.Canceled, true, "Cancelled after 3 lines", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cancel {
				cancel()
			}
			got, ok := h.summary(tt.err)
			if got != tt.want || ok != tt.ok {
				t.Errorf("summary(%v) = %q, %v; want %q, %v", tt.err, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestProgressHooksFinishStopsSpinner(t *testing.T) {
	var buf bytes.Buffer
	h := &progressHooks{spinner: newSpinnerWithContext(context.Background(), &buf, "Simulating...")}
	h.spinner.Start()
	h.finish(nil)
	if !strings.HasSuffix(buf.String(), "\r") {
		t.Errorf("spinner line not cleared: %q", buf.String())
	}
}
