package leaderboard

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Postgres is the durable Store. The server runs without it when no
// DATABASE_URL is configured.
type Postgres struct {
	conn *sql.DB
}

func Connect(dsn string) (*Postgres, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	log.Info().Msg("connected to PostgreSQL")
	return &Postgres{conn: conn}, nil
}

func (p *Postgres) Close() error {
	return p.conn.Close()
}

func (p *Postgres) Ping() error {
	return p.conn.Ping()
}

func (p *Postgres) Migrate() error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations dir: %w", err)
	}

	for _, entry := range entries {
		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}
		if _, err := p.conn.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", entry.Name(), err)
		}
		log.Info().Str("migration", entry.Name()).Msg("applied migration")
	}
	return nil
}

// UpsertBest uses LEAST so a stored best can only go down, even under
// concurrent writers.
func (p *Postgres) UpsertBest(ctx context.Context, identityKey, username string, accuracyMs int64) error {
	_, err := p.conn.ExecContext(ctx, `
		INSERT INTO leaderboard (identity_key, username, best_accuracy_ms, games_played, last_played_at)
		VALUES ($1, $2, $3, 1, now())
		ON CONFLICT (identity_key) DO UPDATE SET
			username = EXCLUDED.username,
			games_played = leaderboard.games_played + 1,
			best_accuracy_ms = LEAST(
				COALESCE(leaderboard.best_accuracy_ms, EXCLUDED.best_accuracy_ms),
				EXCLUDED.best_accuracy_ms
			),
			last_played_at = now()
	`, identityKey, username, accuracyMs)
	if err != nil {
		return fmt.Errorf("upserting leaderboard entry: %w", err)
	}
	return nil
}

func (p *Postgres) TopN(ctx context.Context, n int) ([]Entry, error) {
	rows, err := p.conn.QueryContext(ctx, `
		SELECT identity_key, username, best_accuracy_ms, games_played, last_played_at
		FROM leaderboard
		WHERE best_accuracy_ms IS NOT NULL
		ORDER BY best_accuracy_ms ASC
		LIMIT $1
	`, n)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.IdentityKey, &e.Username, &e.BestAccuracyMs, &e.GamesPlayed, &e.LastPlayedAt); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading leaderboard rows: %w", err)
	}
	return entries, nil
}
