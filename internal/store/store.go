// Package store handles SQLite persistence for sessions and aggregates.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lcestou/feed-n-type-sub000/internal/achievement"
	"github.com/lcestou/feed-n-type-sub000/internal/companion"
	"github.com/lcestou/feed-n-type-sub000/internal/model"
	"github.com/lcestou/feed-n-type-sub000/internal/streak"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Aggregate kinds stored as one JSON document per user.
const (
	kindCompanion = "companion"
	kindStreak    = "streak"
	kindLedger    = "ledger"
)

// Store wraps SQLite access for engine state.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string, log zerolog.Logger) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, log: log}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			total_chars INTEGER NOT NULL,
			correct_chars INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			wpm REAL NOT NULL,
			accuracy REAL NOT NULL,
			duration_ms INTEGER NOT NULL,
			challenging_keys TEXT NOT NULL,
			milestones TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS aggregates (
			user_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			data TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (user_id, kind)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a finalized session. Session rows are append-only.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, source, started_at, ended_at, total_chars, correct_chars, errors, wpm, accuracy, duration_ms, challenging_keys, milestones)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Source,
		rec.StartedAt.Format(time.RFC3339Nano),
		rec.EndedAt.Format(time.RFC3339Nano),
		rec.TotalChars,
		rec.CorrectChars,
		rec.Errors,
		rec.WPM,
		rec.Accuracy,
		rec.DurationMs,
		strings.Join(rec.ChallengingKeys, ","),
		strings.Join(rec.Milestones, ","),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// ListSessions returns stored sessions matching the filter, oldest first.
func (s *Store) ListSessions(ctx context.Context, filter model.SessionFilter) ([]model.SessionRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, filter.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, source, started_at, ended_at, total_chars, correct_chars, errors, wpm, accuracy, duration_ms, challenging_keys, milestones
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionRecord
	for rows.Next() {
		var rec model.SessionRecord
		var startedAt, endedAt, challenging, milestones string
		if err := rows.Scan(&rec.ID, &rec.Source, &startedAt, &endedAt, &rec.TotalChars, &rec.CorrectChars, &rec.Errors, &rec.WPM, &rec.Accuracy, &rec.DurationMs, &challenging, &milestones); err != nil {
			return nil, err
		}
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if rec.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		rec.ChallengingKeys = splitList(challenging)
		rec.Milestones = splitList(milestones)
		sessions = append(sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if filter.Last > 0 && len(sessions) > filter.Last {
		sessions = sessions[len(sessions)-filter.Last:]
	}
	return sessions, nil
}

// CountSessions returns the number of stored sessions.
func (s *Store) CountSessions(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CountSessionsBySource returns session counts grouped by content source.
func (s *Store) CountSessionsBySource(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source, COUNT(*) FROM sessions GROUP BY source`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	out := map[string]int{}
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, err
		}
		out[source] = n
	}
	return out, rows.Err()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// loadAggregate fetches the raw JSON document for one aggregate.
func (s *Store) loadAggregate(ctx context.Context, userID, kind string) ([]byte, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM aggregates WHERE user_id = ? AND kind = ?`, userID, kind).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(data), true, nil
}

// saveAggregate upserts the JSON document for one aggregate.
func (s *Store) saveAggregate(ctx context.Context, userID, kind string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", kind, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO aggregates (user_id, kind, data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, kind) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		userID, kind, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", kind, err)
	}
	return nil
}

// LoadCompanion loads the companion state for a user. Missing or malformed
// rows yield a zero state and found=false; corruption never propagates.
func (s *Store) LoadCompanion(ctx context.Context, userID string) (companion.State, bool, error) {
	raw, found, err := s.loadAggregate(ctx, userID, kindCompanion)
	if err != nil || !found {
		return companion.State{}, false, err
	}
	var state companion.State
	if err := json.Unmarshal(raw, &state); err != nil {
		s.log.Warn().Err(err).Str("user", userID).Msg("corrupt companion record; starting fresh")
		return companion.State{}, false, nil
	}
	return state, true, nil
}

// SaveCompanion persists the companion state.
func (s *Store) SaveCompanion(ctx context.Context, userID string, state companion.State) error {
	return s.saveAggregate(ctx, userID, kindCompanion, state)
}

// LoadStreak loads the streak record for a user, falling back to a fresh
// record on corruption.
func (s *Store) LoadStreak(ctx context.Context, userID string) (streak.Record, bool, error) {
	raw, found, err := s.loadAggregate(ctx, userID, kindStreak)
	if err != nil || !found {
		return streak.Record{}, false, err
	}
	var rec streak.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.log.Warn().Err(err).Str("user", userID).Msg("corrupt streak record; starting fresh")
		return streak.Record{}, false, nil
	}
	return rec, true, nil
}

// SaveStreak persists the streak record.
func (s *Store) SaveStreak(ctx context.Context, userID string, rec streak.Record) error {
	return s.saveAggregate(ctx, userID, kindStreak, rec)
}

// LoadLedger loads the achievement ledger for a user, falling back to an
// empty ledger on corruption.
func (s *Store) LoadLedger(ctx context.Context, userID string) (achievement.Ledger, bool, error) {
	raw, found, err := s.loadAggregate(ctx, userID, kindLedger)
	if err != nil || !found {
		return achievement.Ledger{}, false, err
	}
	var ledger achievement.Ledger
	if err := json.Unmarshal(raw, &ledger); err != nil {
		s.log.Warn().Err(err).Str("user", userID).Msg("corrupt ledger record; starting fresh")
		return achievement.Ledger{}, false, nil
	}
	return ledger, true, nil
}

// SaveLedger persists the achievement ledger.
func (s *Store) SaveLedger(ctx context.Context, userID string, ledger achievement.Ledger) error {
	return s.saveAggregate(ctx, userID, kindLedger, ledger)
}
