package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"eco-quiz-engine/internal/app"
	"eco-quiz-engine/internal/pkg/logger"
)

const defaultLeaderboardLimit = 10

type LeaderboardHandler struct {
	service *app.GameService
	log     *logger.Logger
}

func NewLeaderboardHandler(service *app.GameService, log *logger.Logger) *LeaderboardHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &LeaderboardHandler{service: service, log: log.With("component", "leaderboard")}
}

// ServeHTTP answers GET /leaderboard?limit=n.
func (h *LeaderboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	lb, err := h.service.Leaderboard(r.Context(), limit)
	if err != nil {
		h.log.Error("leaderboard failed", "error", err)
		http.Error(w, "leaderboard unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(lb)
}
