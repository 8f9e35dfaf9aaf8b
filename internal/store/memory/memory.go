// Package memory is an in-process store implementation, used by tests and
// single-node development runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lalcmellkmal/kanatcha/internal/store"
)

type entry struct {
	rec     store.Challenge
	expires time.Time
}

// Store keeps everything behind one mutex, which trivially satisfies the
// take-exactly-once contract.
type Store struct {
	mu         sync.Mutex
	challenges map[string]entry
	counter    int64
	scores     map[int]map[string]int64
	now        func() time.Time
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		challenges: make(map[string]entry),
		scores:     make(map[int]map[string]int64),
		now:        time.Now,
	}
}

// SetClock overrides the time source, for expiry tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) PutChallenge(ctx context.Context, token string, rec store.Challenge, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[token] = entry{rec: rec, expires: s.now().Add(ttl)}
	return nil
}

func (s *Store) GetChallenge(ctx context.Context, token string) (store.Challenge, bool, error) {
	if err := ctx.Err(); err != nil {
		return store.Challenge{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.challenges[token]
	if !ok || !e.expires.After(s.now()) {
		return store.Challenge{}, false, nil
	}
	return e.rec, true, nil
}

func (s *Store) TakeChallenge(ctx context.Context, token string) (store.Challenge, bool, error) {
	if err := ctx.Err(); err != nil {
		return store.Challenge{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.challenges[token]
	if !ok {
		return store.Challenge{}, false, nil
	}
	delete(s.challenges, token)
	if !e.expires.After(s.now()) {
		return store.Challenge{}, false, nil
	}
	return e.rec, true, nil
}

func (s *Store) NextArtifactID(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	return s.counter, nil
}

func (s *Store) BumpScore(ctx context.Context, level int, name string, delta int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	board := s.scores[level]
	if board == nil {
		board = make(map[string]int64)
		s.scores[level] = board
	}
	board[name] += delta
	return board[name], nil
}

func (s *Store) TopScores(ctx context.Context, level, n int) ([]store.Score, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	board := s.scores[level]
	out := make([]store.Score, 0, len(board))
	for name, score := range board {
		out = append(out, store.Score{Name: name, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *Store) SweepExpired(ctx context.Context) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	now := s.now()
	for token, e := range s.challenges {
		if !e.expires.After(now) {
			ids = append(ids, e.rec.ArtifactID)
			delete(s.challenges, token)
		}
	}
	return ids, nil
}

func (s *Store) Close() error { return nil }
