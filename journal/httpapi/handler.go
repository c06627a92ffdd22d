// Package httpapi exposes the gateway and backend probe as JSON endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/theimaginaryfoundation/journal-coach/journal"
	"github.com/theimaginaryfoundation/journal-coach/journal/backend"
	"github.com/theimaginaryfoundation/journal-coach/journal/logging"
)

// Gateway is the set of model-backed operations served over HTTP.
type Gateway interface {
	OrganizeJournalText(ctx context.Context, rawText string) journal.Result[journal.OrganizedJournal]
	AnalyzeJournalForStage(ctx context.Context, entries []journal.Entry, useHighAccuracy bool) journal.Result[journal.StageAnalysis]
	GenerateActiveRestRecommendations(ctx context.Context, stage journal.Stage, timeOfDay string) journal.Result[journal.RestPlan]
	TestOpenAIConnection(ctx context.Context) journal.ConnectionResult
}

// SessionProber reports backend reachability and the current session.
type SessionProber interface {
	TestConnection(ctx context.Context) backend.Result
}

const maxBodyBytes = 1 << 20

type Handler struct {
	gateway Gateway
	prober  SessionProber
	logger  *zap.Logger
}

func NewHandler(gateway Gateway, prober SessionProber, logger *zap.Logger) *Handler {
	return &Handler{gateway: gateway, prober: prober, logger: logging.OrNop(logger)}
}

// Router wires the endpoints. Operation envelopes are always written with 200; only undecodable
// requests get 400.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/journal/organize", h.organize)
		r.Post("/journal/stage", h.stage)
		r.Post("/rest/recommendations", h.recommendations)
		r.Get("/health/openai", h.openAIHealth)
		r.Get("/health/backend", h.backendHealth)
	})
	return r
}

type organizeRequest struct {
	Text string `json:"text"`
}

type stageRequest struct {
	Entries      []journal.Entry `json:"entries"`
	HighAccuracy bool            `json:"high_accuracy"`
}

type recommendationsRequest struct {
	Stage     *int   `json:"stage"`
	TimeOfDay string `json:"time_of_day"`
}

func (h *Handler) organize(w http.ResponseWriter, r *http.Request) {
	var req organizeRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.writeJSON(w, http.StatusOK, h.gateway.OrganizeJournalText(r.Context(), req.Text))
}

func (h *Handler) stage(w http.ResponseWriter, r *http.Request) {
	var req stageRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.writeJSON(w, http.StatusOK, h.gateway.AnalyzeJournalForStage(r.Context(), req.Entries, req.HighAccuracy))
}

func (h *Handler) recommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendationsRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Stage == nil {
		h.badRequest(w, fmt.Errorf("missing stage"))
		return
	}
	h.writeJSON(w, http.StatusOK, h.gateway.GenerateActiveRestRecommendations(r.Context(), journal.Stage(*req.Stage), req.TimeOfDay))
}

func (h *Handler) openAIHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.gateway.TestOpenAIConnection(r.Context()))
}

func (h *Handler) backendHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.prober.TestConnection(r.Context()))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		h.badRequest(w, fmt.Errorf("decode request: %w", err))
		return false
	}
	return true
}

func (h *Handler) badRequest(w http.ResponseWriter, err error) {
	h.writeJSON(w, http.StatusBadRequest, journal.Result[struct{}]{Success: false, Message: err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("write response failed", zap.Error(err))
	}
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
