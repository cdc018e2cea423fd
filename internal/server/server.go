// Package server wires the pieces together and serves the HTTP surface:
// the WebSocket endpoint, a health check, and the leaderboard REST read.
package server

import (
	"net/http"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"timingchallenge/internal/config"
	"timingchallenge/internal/game"
	"timingchallenge/internal/leaderboard"
	"timingchallenge/internal/wshub"
)

// Pinger is the durable store's liveness probe, satisfied by
// leaderboard.Postgres.
type Pinger interface {
	Ping() error
}

type Server struct {
	Gateway *wshub.Gateway
	Coord   *game.Coordinator
	Store   leaderboard.Store
	DB      Pinger // nil when no database configured
}

func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogger(cfg.LogLevel)

	store, pg := openStore(cfg)
	srv := &Server{Store: store}
	if pg != nil {
		srv.DB = pg
	}

	srv.Gateway = wshub.NewGateway()
	srv.Coord = game.NewCoordinator(cfg.GameConfig(), srv.Store, srv.Gateway, clockwork.NewRealClock())
	srv.Gateway.Bind(srv.Coord)

	handler := cors.AllowAll().Handler(srv.routes())
	addr := "0.0.0.0:" + cfg.Port
	log.Info().Str("addr", addr).Msg("server listening")
	return http.ListenAndServe(addr, handler)
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.Gateway.HandleWS)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/leaderboard", s.handleLeaderboard)
	return mux
}

// openStore connects the durable leaderboard when DATABASE_URL is set and
// falls back to the in-memory store otherwise. A failed connection also
// falls back, the server runs either way.
func openStore(cfg config.Config) (leaderboard.Store, *leaderboard.Postgres) {
	if cfg.DatabaseURL == "" {
		log.Info().Msg("DATABASE_URL not set, using in-memory leaderboard")
		return leaderboard.NewMemory(), nil
	}
	pg, err := leaderboard.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Warn().Err(err).Msg("database connection failed, using in-memory leaderboard")
		return leaderboard.NewMemory(), nil
	}
	if err := pg.Migrate(); err != nil {
		log.Warn().Err(err).Msg("migration failed, using in-memory leaderboard")
		return leaderboard.NewMemory(), nil
	}
	log.Info().Msg("database connected, leaderboard is durable")
	return pg, pg
}

func setupLogger(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
