// Package httpapi exposes the ranking service over JSON HTTP. Responses use
// a uniform envelope; list endpoints carry a pagination block.
package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"traderank/internal/domain"
	"traderank/internal/normalization"
	"traderank/internal/observability"
	"traderank/internal/payout"
	"traderank/internal/ranking"
	"traderank/internal/scoring"
	"traderank/internal/storage"
)

// Envelope wraps every response body.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// Handler serves the ranking HTTP API.
type Handler struct {
	service *ranking.Service
	logger  *log.Logger
}

// NewHandler creates an API handler over the service.
func NewHandler(service *ranking.Service, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Register mounts every API route on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/traders", h.instrument("leaderboard", h.handleLeaderboard))
	mux.HandleFunc("GET /api/traders/{id}", h.instrument("profile", h.handleProfile))
	mux.HandleFunc("GET /api/traders/{id}/rewards", h.instrument("rewards", h.handleRewards))
	mux.HandleFunc("POST /api/traders/{id}/score", h.instrument("score_trader", h.handleScoreTrader))
	mux.HandleFunc("POST /api/score", h.instrument("score_preview", h.handleScorePreview))
	mux.HandleFunc("GET /api/tiers/config", h.instrument("tier_config", h.handleTierConfig))
	mux.HandleFunc("GET /api/payouts/config", h.instrument("payout_config", h.handlePayoutConfig))
	mux.HandleFunc("GET /api/payouts/{traderId}", h.instrument("payout_get", h.handleGetPayout))
	mux.HandleFunc("POST /api/payouts/{traderId}/calculate", h.instrument("payout_calculate", h.handleCalculatePayout))
	mux.HandleFunc("GET /api/users/{userId}/progress", h.instrument("progress", h.handleProgress))
	mux.HandleFunc("GET /api/users/{userId}/analytics", h.instrument("analytics", h.handleAnalytics))
}

// instrument records request count and latency per route.
func (h *Handler) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		observability.RecordHTTPRequest(route, strconv.Itoa(rec.status), time.Since(start).Seconds())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", ranking.DefaultPageSize)
	tier := domain.Tier(r.URL.Query().Get("tier"))

	result, err := h.service.Leaderboard(r.Context(), page, limit, tier)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Data:    toTraderDTOs(result.Traders),
		Pagination: &Pagination{
			Page:  result.Page,
			Limit: result.Limit,
			Total: result.Total,
		},
	})
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Profile(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, Envelope{Success: true, Data: toProfileDTO(profile)})
}

func (h *Handler) handleRewards(w http.ResponseWriter, r *http.Request) {
	elig, err := h.service.RewardEligibility(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, Envelope{Success: true, Data: toRewardFlagsDTO(elig.Rewards)})
}

func (h *Handler) handleScoreTrader(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeScoreRequest(w, r)
	if !ok {
		return
	}
	score, err := h.service.ScoreTrader(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, Envelope{Success: true, Data: toScoreDTO(score)})
}

func (h *Handler) handleScorePreview(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeScoreRequest(w, r)
	if !ok {
		return
	}
	score, err := h.service.ComputeScore(in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, Envelope{Success: true, Data: toScoreDTO(score)})
}

func (h *Handler) decodeScoreRequest(w http.ResponseWriter, r *http.Request) (scoring.Input, bool) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, Envelope{Success: false, Message: "invalid request body"})
		return scoring.Input{}, false
	}
	return scoring.Input{
		ProfitFactor:   req.ProfitFactor,
		WinRatePct:     normalization.WinRatePct(req.WinRate),
		DrawdownPct:    req.MaxDrawdown,
		SharpeRatio:    req.SharpeRatio,
		ConsistencyPct: req.Consistency,
		RiskPct:        req.RiskScore,
	}, true
}

func (h *Handler) handleTierConfig(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Data:    toTierBandDTOs(h.service.TierBands()),
	})
}

func (h *Handler) handlePayoutConfig(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Data:    toPayoutBandDTOs(h.service.PayoutBands()),
	})
}

func (h *Handler) handleGetPayout(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.GetPayout(r.Context(), r.PathValue("traderId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, Envelope{Success: true, Data: toPayoutDTO(record)})
}

func (h *Handler) handleCalculatePayout(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.CalculatePayout(r.Context(), r.PathValue("traderId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, Envelope{Success: true, Data: toPayoutDTO(record)})
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.Progress(r.Context(), r.PathValue("userId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, Envelope{Success: true, Data: toProgressDTO(state)})
}

func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.service.UserAnalytics(r.Context(), r.PathValue("userId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, Envelope{Success: true, Data: toAnalyticsDTO(analytics)})
}

// writeError maps service errors onto HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, Envelope{Success: false, Message: err.Error()})
	case errors.Is(err, storage.ErrInvalidInput), errors.Is(err, payout.ErrNoTradingDays):
		h.writeJSON(w, http.StatusBadRequest, Envelope{Success: false, Message: err.Error()})
	default:
		h.logger.Printf("[httpapi] internal error: %v", err)
		h.writeJSON(w, http.StatusInternalServerError, Envelope{Success: false, Message: "internal error"})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Printf("[httpapi] encode response: %v", err)
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func isInf(v float64) bool {
	return math.IsInf(v, 0)
}
