package simulate

import (
	"context"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/iwvelando/mortgage-planner/internal/cache"
	"github.com/iwvelando/mortgage-planner/internal/plan"
	"github.com/iwvelando/mortgage-planner/internal/request"
	"github.com/iwvelando/mortgage-planner/pkg/constants"
)

// Sequencer tags each issued simulation with a monotonically increasing
// sequence number and rejects responses that arrive after a later request has
// already been delivered. Without this gate a slow early response could
// overwrite a fresher result.
type Sequencer struct {
	mu        sync.Mutex
	issued    uint64
	delivered uint64
}

// Next issues the next sequence number.
func (s *Sequencer) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Accept reports whether a response with the given sequence number is still
// current, recording it as delivered when it is.
func (s *Sequencer) Accept(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.delivered {
		return false
	}
	s.delivered = seq
	return true
}

// ResimulatorConfig wires a Resimulator to its collaborators.
type ResimulatorConfig struct {
	Client   *Client
	Cache    cache.Cache
	CacheTTL time.Duration
	// Quiet is the debounce quiet period; zero selects the default.
	Quiet time.Duration
	// NewTimer overrides debounce timer creation for tests.
	NewTimer TimerFunc
	// OnResult receives each current (non-stale) projection.
	OnResult func(*Result)
	// OnError receives upstream failures for current requests.
	OnError func(error)
	Logger  *zap.Logger
}

// Resimulator is the single task queue behind automatic re-simulation: form
// edits and chart-driven overpayment edits both call PlanChanged, which
// debounces with cancel-and-replace semantics, while SubmitNow bypasses the
// quiet period for manual and initial submissions.
type Resimulator struct {
	client    *Client
	cache     cache.Cache
	cacheTTL  time.Duration
	debouncer *Debouncer
	seq       Sequencer
	onResult  func(*Result)
	onError   func(error)
	logger    *zap.Logger
}

// NewResimulator builds a re-simulation queue from the config.
func NewResimulator(cfg ResimulatorConfig) *Resimulator {
	quiet := cfg.Quiet
	if quiet <= 0 {
		quiet = constants.DebounceQuietPeriodMs * time.Millisecond
	}
	newTimer := cfg.NewTimer
	if newTimer == nil {
		newTimer = defaultTimer
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resimulator{
		client:    cfg.Client,
		cache:     cfg.Cache,
		cacheTTL:  cfg.CacheTTL,
		debouncer: NewDebouncerWithTimer(quiet, newTimer),
		onResult:  cfg.OnResult,
		onError:   cfg.OnError,
		logger:    logger,
	}
}

// PlanChanged schedules a re-simulation of the given state after the quiet
// period. A newer change arriving before the timer fires supersedes this one.
func (r *Resimulator) PlanChanged(state plan.State) {
	r.debouncer.Trigger(func() { r.run(state) })
}

// SubmitNow cancels any pending debounced run and simulates immediately.
func (r *Resimulator) SubmitNow(state plan.State) {
	r.debouncer.Flush(func() { r.run(state) })
}

// Stop cancels any pending debounced run.
func (r *Resimulator) Stop() {
	r.debouncer.Stop()
}

func (r *Resimulator) run(state plan.State) {
	seq := r.seq.Next()
	req := request.Assemble(state)

	body, err := request.Marshal(req)
	if err != nil {
		r.fail(seq, err)
		return
	}

	ctx := context.Background()
	key := cache.Key(body)
	if r.cache != nil {
		if cached, ok := r.cache.Get(ctx, key); ok {
			var result Result
			if err := json.Unmarshal(cached, &result); err == nil {
				r.deliver(seq, &result)
				return
			}
		}
	}

	raw, err := r.client.SimulateRaw(req)
	if err != nil {
		r.fail(seq, err)
		return
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		r.fail(seq, err)
		return
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, raw, r.cacheTTL); err != nil {
			r.logger.Warn("failed to cache simulation response",
				zap.String("op", "simulate.Resimulator.run"),
				zap.Error(err),
			)
		}
	}

	r.deliver(seq, &result)
}

func (r *Resimulator) deliver(seq uint64, result *Result) {
	if !r.seq.Accept(seq) {
		r.logger.Debug("discarding stale simulation response",
			zap.String("op", "simulate.Resimulator.deliver"),
			zap.Uint64("seq", seq),
		)
		return
	}
	if r.onResult != nil {
		r.onResult(result)
	}
}

func (r *Resimulator) fail(seq uint64, err error) {
	if !r.seq.Accept(seq) {
		return
	}
	if r.onError != nil {
		r.onError(err)
	}
}
