package simulate

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iwvelando/mortgage-planner/internal/cache"
	"github.com/iwvelando/mortgage-planner/internal/plan"
)

func TestSequencerRejectsStaleResponses(t *testing.T) {
	var s Sequencer

	first := s.Next()
	second := s.Next()

	// The later request's response lands first.
	if !s.Accept(second) {
		t.Fatal("current response should be accepted")
	}
	// The earlier, slower response arrives afterwards and must be discarded
	// instead of overwriting the fresher result.
	if s.Accept(first) {
		t.Error("stale response should be rejected")
	}
	// Replaying an already-delivered sequence is also rejected.
	if s.Accept(second) {
		t.Error("duplicate response should be rejected")
	}

	third := s.Next()
	if !s.Accept(third) {
		t.Error("next issued sequence should be accepted")
	}
}

func testPlan() plan.State {
	return plan.State{
		MortgageAmount: 200000,
		TermYears:      25,
		VariableRate:   5.5,
		StartDate:      "2026-01",
	}
}

func TestResimulatorDebouncesAndDelivers(t *testing.T) {
	var upstreamCalls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&upstreamCalls, 1)
		w.Write([]byte(`{"months":[{"period_index":1,"date":"2026-01","mortgage_balance":199500}]}`))
	}))
	defer ts.Close()

	log := &timerLog{}
	var results []*Result
	r := NewResimulator(ResimulatorConfig{
		Client:   NewClient(ts.URL, 5*time.Second, nil),
		Cache:    cache.NewMemoryCache(),
		CacheTTL: time.Minute,
		NewTimer: log.newTimer,
		OnResult: func(result *Result) { results = append(results, result) },
		OnError:  func(err error) { t.Errorf("unexpected error: %v", err) },
	})

	// A burst of changes collapses into one upstream call.
	r.PlanChanged(testPlan())
	r.PlanChanged(testPlan())
	r.PlanChanged(testPlan())
	log.fireLast()

	if got := atomic.LoadInt32(&upstreamCalls); got != 1 {
		t.Fatalf("expected 1 upstream call after debounce, got %d", got)
	}
	if len(results) != 1 || len(results[0].Months) != 1 {
		t.Fatalf("expected one delivered projection, got %+v", results)
	}

	// An identical plan re-simulated later is served from the cache.
	r.PlanChanged(testPlan())
	log.fireLast()

	if got := atomic.LoadInt32(&upstreamCalls); got != 1 {
		t.Errorf("identical request should hit the cache, upstream calls = %d", got)
	}
	if len(results) != 2 {
		t.Errorf("cached projection should still be delivered, got %d results", len(results))
	}
}

func TestResimulatorSubmitNowBypassesDebounce(t *testing.T) {
	var upstreamCalls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&upstreamCalls, 1)
		w.Write([]byte(`{"months":[]}`))
	}))
	defer ts.Close()

	log := &timerLog{}
	var results int
	r := NewResimulator(ResimulatorConfig{
		Client:   NewClient(ts.URL, 5*time.Second, nil),
		NewTimer: log.newTimer,
		OnResult: func(result *Result) { results++ },
		OnError:  func(err error) { t.Errorf("unexpected error: %v", err) },
	})

	// A pending debounced run is cancelled by the manual submission.
	r.PlanChanged(testPlan())
	r.SubmitNow(testPlan())

	if got := atomic.LoadInt32(&upstreamCalls); got != 1 {
		t.Fatalf("expected exactly 1 upstream call, got %d", got)
	}
	if results != 1 {
		t.Fatalf("expected 1 delivered result, got %d", results)
	}
	if !log.timers[0].stopped {
		t.Error("SubmitNow() should cancel the pending debounced run")
	}
}

func TestResimulatorSurfacesUpstreamErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "term too long"}`))
	}))
	defer ts.Close()

	var errs []error
	r := NewResimulator(ResimulatorConfig{
		Client:  NewClient(ts.URL, 5*time.Second, nil),
		OnError: func(err error) { errs = append(errs, err) },
		OnResult: func(result *Result) {
			t.Error("no result expected on upstream failure")
		},
	})

	r.SubmitNow(testPlan())

	if len(errs) != 1 {
		t.Fatalf("expected one surfaced error, got %d", len(errs))
	}
	apiErr, ok := errs[0].(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", errs[0])
	}
	if apiErr.Message != "term too long" {
		t.Errorf("Message = %q, expected %q", apiErr.Message, "term too long")
	}
}
