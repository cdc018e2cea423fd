package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	payload := struct {
		Status string `json:"status"`
		Rooms  int    `json:"rooms"`
		Error  string `json:"error,omitempty"`
	}{
		Status: "ok",
		Rooms:  s.Coord.Registry().Count(),
	}
	if s.DB != nil {
		if err := s.DB.Ping(); err != nil {
			payload.Status = "db_error"
			payload.Error = err.Error()
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("health encode failed")
	}
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	entries, err := s.Store.TopN(ctx, limit)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard query failed")
		http.Error(w, "Error loading leaderboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		log.Error().Err(err).Msg("leaderboard encode failed")
	}
}
