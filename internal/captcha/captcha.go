// Package captcha manages the challenge lifecycle: issue a token bound to a
// rendered image, redeem it exactly once under a time limit, and reclaim the
// image whether or not redemption ever happens.
package captcha

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lalcmellkmal/kanatcha/internal/challenge"
	"github.com/lalcmellkmal/kanatcha/internal/config"
	"github.com/lalcmellkmal/kanatcha/internal/glyphbank"
	"github.com/lalcmellkmal/kanatcha/internal/random"
	"github.com/lalcmellkmal/kanatcha/internal/render"
	"github.com/lalcmellkmal/kanatcha/internal/store"
)

// Renderer rasterizes fully resolved glyph instructions into image bytes.
type Renderer interface {
	Render(ctx context.Context, glyphs []render.Glyph) ([]byte, error)
}

// Artifacts stores rendered images by internal artifact id. Delete must be
// idempotent.
type Artifacts interface {
	Save(ctx context.Context, id int64, data []byte) error
	Read(ctx context.Context, id int64) ([]byte, error)
	Delete(ctx context.Context, id int64) error
}

var (
	// ErrInvalidToken marks a syntactically malformed token, rejected
	// before any store access.
	ErrInvalidToken = errors.New("invalid token")
	// ErrNotFound marks a token with no live record behind it.
	ErrNotFound = errors.New("challenge not found")
)

// Outcome is the caller-facing result of a redemption.
type Outcome int

const (
	// OutcomeIncorrect: a required glyph did not match.
	OutcomeIncorrect Outcome = iota
	// OutcomeCorrect: everything matched, bonus included when present.
	OutcomeCorrect
	// OutcomeMissedBonus: required glyphs matched, the bonus did not.
	OutcomeMissedBonus
	// OutcomeExpired: the token never existed, was already used, or timed
	// out. The three are deliberately indistinguishable.
	OutcomeExpired
)

// BonusReveal discloses the missed bonus glyph and its canonical spelling.
type BonusReveal struct {
	Glyph    string `json:"q"`
	Spelling string `json:"a"`
}

// Issued is the public half of a freshly created challenge.
type Issued struct {
	Token string
}

// RedeemResult reports a redemption outcome plus the leaderboard entry when
// a display handle was supplied on success.
type RedeemResult struct {
	Outcome Outcome
	Level   int
	// HadBonus reports whether the challenge offered a bonus glyph at all.
	HadBonus bool
	Bonus    *BonusReveal
	Name     string
	Score    int64
	Scored   bool
}

// Service orchestrates generator, renderer, artifact store, and record
// store. It holds no mutable state of its own; all coordination happens in
// the store.
type Service struct {
	gen       *challenge.Generator
	ver       *challenge.Verifier
	store     store.Store
	renderer  Renderer
	artifacts Artifacts
	rcfg      config.Render
	ttl       time.Duration
	maxLevel  int
	logger    *slog.Logger
}

// New wires a service. maxLevel is capped by what the bank actually loaded.
func New(bank *glyphbank.Bank, st store.Store, r Renderer, a Artifacts, cfg config.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	maxLevel := cfg.MaxLevel
	if maxLevel > bank.MaxLevel() {
		maxLevel = bank.MaxLevel()
	}
	return &Service{
		gen:       challenge.NewGenerator(bank),
		ver:       challenge.NewVerifier(bank, logger),
		store:     st,
		renderer:  r,
		artifacts: a,
		rcfg:      cfg.Render,
		ttl:       cfg.RecordTTL(),
		maxLevel:  maxLevel,
		logger:    logger,
	}
}

// ClampLevel bounds a requested level to what the service can serve.
func (s *Service) ClampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > s.maxLevel {
		return s.maxLevel
	}
	return level
}

// Issue creates a challenge at the given level: a fresh artifact id, a
// generated spec, a rendered image, and a stored record under a new token.
// Nothing is left behind on failure.
func (s *Service) Issue(ctx context.Context, level int) (Issued, error) {
	level = s.ClampLevel(level)

	id, err := s.store.NextArtifactID(ctx)
	if err != nil {
		return Issued{}, fmt.Errorf("allocate artifact id: %w", err)
	}
	sp := s.gen.Generate(level)
	img, err := s.renderer.Render(ctx, render.Layout(sp, s.rcfg, random.New()))
	if err != nil {
		return Issued{}, fmt.Errorf("render challenge: %w", err)
	}
	if err := s.artifacts.Save(ctx, id, img); err != nil {
		return Issued{}, fmt.Errorf("save artifact: %w", err)
	}

	token, err := newToken()
	if err != nil {
		_ = s.artifacts.Delete(ctx, id)
		return Issued{}, err
	}
	rec := store.Challenge{ArtifactID: id, Spec: sp}
	if err := s.store.PutChallenge(ctx, token, rec, s.ttl); err != nil {
		// The image exists but no record points at it; reclaim before
		// reporting failure.
		_ = s.artifacts.Delete(ctx, id)
		return Issued{}, fmt.Errorf("store challenge: %w", err)
	}

	// Best-effort safety net in case the record expires unredeemed and no
	// sweep runs. The record TTL stays the authority on validity.
	time.AfterFunc(s.ttl+time.Second, func() {
		_ = s.artifacts.Delete(context.Background(), id)
	})
	return Issued{Token: token}, nil
}

// Image returns the rendered PNG for a live token without consuming it.
func (s *Service) Image(ctx context.Context, token string) ([]byte, error) {
	if !ValidToken(token) {
		return nil, ErrInvalidToken
	}
	rec, ok, err := s.store.GetChallenge(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("fetch challenge: %w", err)
	}
	if !ok {
		return nil, ErrNotFound
	}
	return s.artifacts.Read(ctx, rec.ArtifactID)
}

// Redeem consumes a token exactly once and verifies the caller's answer.
// The artifact is deleted no matter how the verification goes.
func (s *Service) Redeem(ctx context.Context, token, input, handle string) (RedeemResult, error) {
	if !ValidToken(token) {
		return RedeemResult{}, ErrInvalidToken
	}
	rec, ok, err := s.store.TakeChallenge(ctx, token)
	if err != nil {
		return RedeemResult{}, fmt.Errorf("take challenge: %w", err)
	}
	if !ok {
		return RedeemResult{Outcome: OutcomeExpired}, nil
	}
	if err := s.artifacts.Delete(ctx, rec.ArtifactID); err != nil {
		s.logger.Warn("artifact cleanup failed", "artifact", rec.ArtifactID, "err", err)
	}

	res := s.ver.Verify(rec.Spec, input)
	out := RedeemResult{Level: rec.Spec.Level, HadBonus: rec.Spec.Bonus != 0}
	switch res.Verdict {
	case challenge.Correct:
		out.Outcome = OutcomeCorrect
	case challenge.MissedBonus:
		out.Outcome = OutcomeMissedBonus
		out.Bonus = &BonusReveal{Glyph: string(rec.Spec.Bonus), Spelling: res.BonusSpelling}
	default:
		out.Outcome = OutcomeIncorrect
		return out, nil
	}

	if name := SanitizeHandle(handle); name != "" {
		score, err := s.store.BumpScore(ctx, rec.Spec.Level, name, 1)
		if err != nil {
			// The answer was right; a lost score update is not worth
			// failing the redemption over.
			s.logger.Warn("score update failed", "name", name, "err", err)
		} else {
			out.Name = name
			out.Score = score
			out.Scored = true
		}
	}
	return out, nil
}

// TopScores returns the leaderboard for a level, best first.
func (s *Service) TopScores(ctx context.Context, level, n int) ([]store.Score, error) {
	scores, err := s.store.TopScores(ctx, s.ClampLevel(level), n)
	if err != nil {
		return nil, fmt.Errorf("top scores: %w", err)
	}
	return scores, nil
}

// Sweep reaps expired records and their artifacts once.
func (s *Service) Sweep(ctx context.Context) {
	ids, err := s.store.SweepExpired(ctx)
	if err != nil {
		s.logger.Warn("expiry sweep failed", "err", err)
		return
	}
	for _, id := range ids {
		if err := s.artifacts.Delete(ctx, id); err != nil {
			s.logger.Warn("artifact cleanup failed", "artifact", id, "err", err)
		}
	}
	if len(ids) > 0 {
		s.logger.Debug("swept expired challenges", "count", len(ids))
	}
}

// Janitor sweeps on a fixed interval until ctx is done.
func (s *Service) Janitor(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep(ctx)
		}
	}
}

// SanitizeHandle collapses runs of whitespace, trims, and caps the display
// handle at 50 runes.
func SanitizeHandle(handle string) string {
	handle = strings.Join(strings.Fields(handle), " ")
	if r := []rune(handle); len(r) > 50 {
		handle = string(r[:50])
	}
	return handle
}
