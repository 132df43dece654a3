package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	b := NoopBatchHooks{}
	b.OnBatchStart(ctx, "Challenge_Input.txt")
	b.OnScenario(ctx, ScenarioEvent{Line: 1, Drops: 3, Height: 2})
	b.OnBatchComplete(ctx, 10, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "file")
	c.OnCacheMiss(ctx, "redis")
	c.OnCacheSet(ctx, "file", 2)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/heights")
	h.OnResponse(ctx, "POST", "/v1/heights", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Batch().(NoopBatchHooks); !ok {
		t.Error("Batch() should return NoopBatchHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customBatch := &testBatchHooks{}
	SetBatchHooks(customBatch)
	if Batch() != customBatch {
		t.Error("SetBatchHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Batch().(NoopBatchHooks); !ok {
		t.Error("Reset() should restore NoopBatchHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testBatchHooks{}
	SetBatchHooks(custom)
	SetBatchHooks(nil)
	if Batch() != custom {
		t.Error("SetBatchHooks(nil) should keep the previous hooks")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	h := &testBatchHooks{}
	SetBatchHooks(h)

	ctx := context.Background()
	Batch().OnBatchStart(ctx, "in.txt")
	Batch().OnScenario(ctx, ScenarioEvent{Line: 1, Height: 4})
	Batch().OnScenario(ctx, ScenarioEvent{Line: 2, Height: 0})
	Batch().OnBatchComplete(ctx, 2, time.Millisecond, nil)

	if h.started != 1 || h.scenarios != 2 || h.completed != 1 {
		t.Errorf("events = %d/%d/%d, want 1/2/1", h.started, h.scenarios, h.completed)
	}
}

type testBatchHooks struct {
	started, scenarios, completed int
}

func (h *testBatchHooks) OnBatchStart(context.Context, string)      { h.started++ }
func (h *testBatchHooks) OnScenario(context.Context, ScenarioEvent) { h.scenarios++ }
func (h *testBatchHooks) OnBatchComplete(context.Context, int, time.Duration, error) {
	h.completed++
}

type testCacheHooks struct{}

func (testCacheHooks) OnCacheHit(context.Context, string)      {}
func (testCacheHooks) OnCacheMiss(context.Context, string)     {}
func (testCacheHooks) OnCacheSet(context.Context, string, int) {}

type testHTTPHooks struct{}

func (testHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (testHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
