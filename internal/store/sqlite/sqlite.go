// Package sqlite is the durable store implementation, backed by a single
// SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lalcmellkmal/kanatcha/internal/challenge"
	"github.com/lalcmellkmal/kanatcha/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS challenges (
	token       TEXT PRIMARY KEY,
	artifact_id INTEGER NOT NULL,
	spec        TEXT NOT NULL,
	expires_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS challenges_expires_at ON challenges(expires_at);
CREATE TABLE IF NOT EXISTS counters (
	name  TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS scores (
	level INTEGER NOT NULL,
	name  TEXT NOT NULL,
	score INTEGER NOT NULL,
	PRIMARY KEY (level, name)
);
`

// Store persists challenges, the artifact counter, and leaderboards.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if necessary) the database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// specRow is the stored JSON form of a challenge spec: glyph runs as
// strings, matching the wire the original data files use.
type specRow struct {
	Q     string `json:"q"`
	X     string `json:"x,omitempty"`
	Level int    `json:"level"`
}

func encodeSpec(sp challenge.Spec) (string, error) {
	row := specRow{Q: string(sp.Required), Level: sp.Level}
	if sp.Bonus != 0 {
		row.X = string(sp.Bonus)
	}
	raw, err := json.Marshal(row)
	if err != nil {
		return "", fmt.Errorf("encode spec: %w", err)
	}
	return string(raw), nil
}

func decodeSpec(raw string) (challenge.Spec, error) {
	var row specRow
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		return challenge.Spec{}, fmt.Errorf("decode spec: %w", err)
	}
	sp := challenge.Spec{Required: []rune(row.Q), Level: row.Level}
	if row.X != "" {
		sp.Bonus = []rune(row.X)[0]
	}
	if len(sp.Required) == 0 {
		return challenge.Spec{}, fmt.Errorf("decode spec: empty required run")
	}
	return sp, nil
}

func (s *Store) PutChallenge(ctx context.Context, token string, rec store.Challenge, ttl time.Duration) error {
	raw, err := encodeSpec(rec.Spec)
	if err != nil {
		return err
	}
	expires := s.now().Add(ttl).UnixMilli()
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO challenges (token, artifact_id, spec, expires_at) VALUES (?, ?, ?, ?)`,
		token, rec.ArtifactID, raw, expires)
	if err != nil {
		return fmt.Errorf("put challenge: %w", err)
	}
	return nil
}

func (s *Store) GetChallenge(ctx context.Context, token string) (store.Challenge, bool, error) {
	var (
		id  int64
		raw string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT artifact_id, spec FROM challenges WHERE token = ? AND expires_at > ?`,
		token, s.now().UnixMilli()).Scan(&id, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Challenge{}, false, nil
	}
	if err != nil {
		return store.Challenge{}, false, fmt.Errorf("get challenge: %w", err)
	}
	sp, err := decodeSpec(raw)
	if err != nil {
		return store.Challenge{}, false, err
	}
	return store.Challenge{ArtifactID: id, Spec: sp}, true, nil
}

// TakeChallenge deletes and returns the record in a single statement, so
// concurrent redemptions of one token serialize on the row: exactly one
// caller sees it.
func (s *Store) TakeChallenge(ctx context.Context, token string) (store.Challenge, bool, error) {
	var (
		id  int64
		raw string
	)
	err := s.db.QueryRowContext(ctx,
		`DELETE FROM challenges WHERE token = ? AND expires_at > ? RETURNING artifact_id, spec`,
		token, s.now().UnixMilli()).Scan(&id, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Challenge{}, false, nil
	}
	if err != nil {
		return store.Challenge{}, false, fmt.Errorf("take challenge: %w", err)
	}
	sp, err := decodeSpec(raw)
	if err != nil {
		return store.Challenge{}, false, err
	}
	return store.Challenge{ArtifactID: id, Spec: sp}, true, nil
}

func (s *Store) NextArtifactID(ctx context.Context) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO counters (name, value) VALUES ('artifact_id', 1)
		 ON CONFLICT(name) DO UPDATE SET value = value + 1
		 RETURNING value`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("next artifact id: %w", err)
	}
	return id, nil
}

func (s *Store) BumpScore(ctx context.Context, level int, name string, delta int64) (int64, error) {
	var score int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO scores (level, name, score) VALUES (?, ?, ?)
		 ON CONFLICT(level, name) DO UPDATE SET score = score + excluded.score
		 RETURNING score`,
		level, name, delta).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("bump score: %w", err)
	}
	return score, nil
}

func (s *Store) TopScores(ctx context.Context, level, n int) ([]store.Score, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, score FROM scores WHERE level = ? ORDER BY score DESC, name ASC LIMIT ?`,
		level, n)
	if err != nil {
		return nil, fmt.Errorf("top scores: %w", err)
	}
	defer rows.Close()
	var out []store.Score
	for rows.Next() {
		var sc store.Score
		if err := rows.Scan(&sc.Name, &sc.Score); err != nil {
			return nil, fmt.Errorf("top scores: %w", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top scores: %w", err)
	}
	return out, nil
}

func (s *Store) SweepExpired(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`DELETE FROM challenges WHERE expires_at <= ? RETURNING artifact_id`,
		s.now().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("sweep expired: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sweep expired: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sweep expired: %w", err)
	}
	return ids, nil
}
