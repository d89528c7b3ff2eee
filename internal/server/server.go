// Package server exposes the planner HTTP API: simulation forwarding with
// response caching, share-link encoding, and plan snapshot persistence.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/iwvelando/mortgage-planner/internal/cache"
	"github.com/iwvelando/mortgage-planner/internal/plan"
	"github.com/iwvelando/mortgage-planner/internal/request"
	"github.com/iwvelando/mortgage-planner/internal/simulate"
	"github.com/iwvelando/mortgage-planner/internal/store"
)

// Deps carries the collaborators the handler is built from.
type Deps struct {
	Client      *simulate.Client
	Cache       cache.Cache
	CacheTTL    time.Duration
	Snapshots   *store.Snapshots
	MaxBodySize int64
	Version     string
}

type handler struct {
	logger      *zap.Logger
	client      *simulate.Client
	cache       cache.Cache
	cacheTTL    time.Duration
	snapshots   *store.Snapshots
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the planner API.
func NewHandler(logger *zap.Logger, deps Deps) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	version := strings.TrimSpace(deps.Version)
	if version == "" {
		version = "dev"
	}

	h := &handler{
		logger:      logger,
		client:      deps.Client,
		cache:       deps.Cache,
		cacheTTL:    deps.CacheTTL,
		snapshots:   deps.Snapshots,
		maxBodySize: deps.MaxBodySize,
		version:     version,
	}

	mux := http.NewServeMux()

	// Simulation forwarding
	mux.HandleFunc("/api/plan/simulate", h.handleSimulate)
	mux.HandleFunc("/api/plan/simulate/csv", h.handleSimulateCSV)
	mux.HandleFunc("/api/plan/sample", h.handleSample)

	// Share links
	mux.HandleFunc("/api/share", h.handleShare)

	// Plan snapshots
	mux.HandleFunc("/api/plans/", h.handlePlans)

	// Health check
	mux.HandleFunc("/", h.handleHealth)

	return mux
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.version,
	})
}

func (h *handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	op := "server.handleSimulate"
	state, ok := h.decodeState(w, r, op)
	if !ok {
		return
	}

	req := request.Assemble(state)
	body, err := request.Marshal(req)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode simulation request: %v", err), op)
		return
	}

	ctx := r.Context()
	key := cache.Key(body)
	if h.cache != nil {
		if cached, hit := h.cache.Get(ctx, key); hit {
			h.writeRawJSON(w, http.StatusOK, cached)
			return
		}
	}

	start := time.Now()
	raw, err := h.client.SimulateRaw(req)
	if err != nil {
		h.respondUpstreamError(w, err, op)
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, raw, h.cacheTTL); err != nil {
			h.logger.Warn("failed to cache simulation response",
				zap.String("op", op),
				zap.Error(err),
			)
		}
	}

	h.logger.Info("simulation forwarded",
		zap.String("op", op),
		zap.Int("deals", len(req.Mortgage.Deals)),
		zap.Duration("duration", time.Since(start)),
	)

	h.writeRawJSON(w, http.StatusOK, raw)
}

func (h *handler) handleSimulateCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	op := "server.handleSimulateCSV"
	state, ok := h.decodeState(w, r, op)
	if !ok {
		return
	}

	csv, err := h.client.SimulateCSV(request.Assemble(state))
	if err != nil {
		h.respondUpstreamError(w, err, op)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="projection.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(csv); err != nil {
		h.logger.Error("failed to write CSV response",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

func (h *handler) handleSample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	sample, err := h.client.Sample()
	if err != nil {
		h.respondUpstreamError(w, err, "server.handleSample")
		return
	}
	h.writeJSON(w, http.StatusOK, sample)
}

func (h *handler) handleShare(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		op := "server.handleShare"
		state, ok := h.decodeState(w, r, op)
		if !ok {
			return
		}
		param, err := plan.EncodeShareLink(state)
		if err != nil {
			h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode share link: %v", err), op)
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]string{
			"param": plan.ShareQueryParam,
			"value": param,
		})
	case http.MethodGet:
		// Decode failures fall back to defaults rather than erroring.
		state, decoded := plan.DecodeShareLink(r.URL.Query().Get(plan.ShareQueryParam), plan.DefaultState(time.Now()))
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"plan":    state,
			"decoded": decoded,
		})
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *handler) handlePlans(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/plans/")
	if name == "" || strings.Contains(name, "/") {
		h.respondError(w, http.StatusBadRequest, "invalid plan name", "server.handlePlans")
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.savePlan(w, r, name)
	case http.MethodGet:
		h.loadPlan(w, name)
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

// savePlan persists the form snapshot and the overpayment markers under
// separate keys, mirroring their independent lifecycles.
func (h *handler) savePlan(w http.ResponseWriter, r *http.Request, name string) {
	op := "server.savePlan"
	state, ok := h.decodeState(w, r, op)
	if !ok {
		return
	}

	markers := state.Overpayments
	state.Overpayments = nil
	if err := h.snapshots.SavePlan(name, state); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save plan: %v", err), op)
		return
	}
	if err := h.snapshots.SaveMarkers(name, markers); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save overpayments: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"name": name})
}

func (h *handler) loadPlan(w http.ResponseWriter, name string) {
	op := "server.loadPlan"
	state, err := h.snapshots.LoadPlan(name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, fmt.Sprintf("plan %q not found", name), op)
			return
		}
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load plan: %v", err), op)
		return
	}

	// A missing or discarded marker snapshot is not an error; the plan loads
	// with no overpayments.
	markers, err := h.snapshots.LoadMarkers(name)
	if err == nil {
		state.Overpayments = markers
	}

	h.writeJSON(w, http.StatusOK, state)
}

func (h *handler) decodeState(w http.ResponseWriter, r *http.Request, op string) (plan.State, bool) {
	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	var state plan.State
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode plan state: %v", err), op)
		return plan.State{}, false
	}
	if err := state.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return plan.State{}, false
	}
	return state, true
}

// respondUpstreamError surfaces an upstream failure with its extracted
// message. Validation errors from the API map to 502 here; previously
// returned results are untouched on the client side.
func (h *handler) respondUpstreamError(w http.ResponseWriter, err error, op string) {
	var apiErr *simulate.APIError
	if errors.As(err, &apiErr) {
		h.respondError(w, http.StatusBadGateway, apiErr.Message, op)
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		h.respondError(w, http.StatusGatewayTimeout, "simulation request timed out", op)
		return
	}
	h.respondError(w, http.StatusBadGateway, err.Error(), op)
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("planner request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *handler) writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
