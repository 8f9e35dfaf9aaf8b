// Package store defines the key-value and score storage the challenge
// lifecycle depends on. Implementations must make TakeChallenge atomic: of
// any number of concurrent calls for the same token, exactly one observes
// the record.
package store

import (
	"context"
	"time"

	"github.com/lalcmellkmal/kanatcha/internal/challenge"
)

// Challenge is the server-only record bound to one issued token.
type Challenge struct {
	ArtifactID int64
	Spec       challenge.Spec
}

// Score is one leaderboard entry.
type Score struct {
	Name  string `json:"name"`
	Score int64  `json:"score"`
}

// Store is the persistence contract for challenges, counters, and scores.
type Store interface {
	// PutChallenge stores a record under token for at most ttl.
	PutChallenge(ctx context.Context, token string, rec Challenge, ttl time.Duration) error
	// GetChallenge reads a record without consuming it. Expired records are
	// indistinguishable from absent ones.
	GetChallenge(ctx context.Context, token string) (Challenge, bool, error)
	// TakeChallenge atomically fetches and deletes a record. At most one
	// concurrent caller for a given token gets ok=true.
	TakeChallenge(ctx context.Context, token string) (Challenge, bool, error)
	// NextArtifactID atomically increments the process-wide artifact counter.
	NextArtifactID(ctx context.Context) (int64, error)
	// BumpScore adds delta to a member's score on a level's board and
	// returns the new total.
	BumpScore(ctx context.Context, level int, name string, delta int64) (int64, error)
	// TopScores returns up to n members of a level's board, best first.
	TopScores(ctx context.Context, level, n int) ([]Score, error)
	// SweepExpired removes expired challenge records and reports the
	// artifact ids they referenced, for cleanup.
	SweepExpired(ctx context.Context) ([]int64, error)
	Close() error
}
