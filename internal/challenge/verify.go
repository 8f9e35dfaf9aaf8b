package challenge

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lalcmellkmal/kanatcha/internal/glyphbank"
)

// Verifier checks typed answers against a spec. Matching is strictly greedy
// and left-to-right: each glyph consumes a prefix of the remaining input or
// the whole attempt fails. There is no backtracking across glyphs.
type Verifier struct {
	bank   *glyphbank.Bank
	logger *slog.Logger
}

// NewVerifier builds a verifier over the given bank.
func NewVerifier(bank *glyphbank.Bank, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{bank: bank, logger: logger}
}

// Normalize lowercases the input and strips whitespace, hyphens, and periods.
func Normalize(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '.' {
			return -1
		}
		return unicode.ToLower(r)
	}, raw)
}

// Verify runs the matcher over every required glyph and then, if all of them
// matched, over the bonus glyph. Deterministic for a given (spec, input).
func (v *Verifier) Verify(sp Spec, raw string) Result {
	in := []rune(Normalize(raw))
	for _, r := range sp.Required {
		n, ok := v.matchOne(r, in)
		if !ok {
			return Result{Verdict: Incorrect}
		}
		in = in[n:]
	}
	if sp.Bonus != 0 {
		// A matched bonus with trailing garbage counts as missed: the
		// required glyphs already earned the base pass.
		if n, ok := v.matchOne(sp.Bonus, in); ok && len(in) == n {
			return Result{Verdict: Correct}
		}
		res := Result{Verdict: MissedBonus}
		if ss := v.bank.Readings(sp.Bonus); len(ss) > 0 {
			res.BonusSpelling = ss[0]
		}
		return res
	}
	if len(in) != 0 {
		return Result{Verdict: Incorrect}
	}
	return Result{Verdict: Correct}
}

// matchOne reports how many input runes the glyph consumes, trying in fixed
// priority order: the literal glyph itself, then each accepted spelling as a
// direct prefix, then a reconstruction of that spelling from base syllabary
// glyphs typed in its place.
func (v *Verifier) matchOne(glyph rune, in []rune) (int, bool) {
	if len(in) > 0 && in[0] == glyph {
		return 1, true
	}
	spellings := v.bank.Readings(glyph)
	if len(spellings) == 0 {
		// Data-integrity condition: a pooled glyph without a reading. Fail
		// the match rather than the process.
		v.logger.Warn("no reading registered for glyph", "glyph", string(glyph))
		return 0, false
	}
	for _, spelling := range spellings {
		if n := utf8.RuneCountInString(spelling); len(in) >= n && string(in[:n]) == spelling {
			return n, true
		}
		if n, ok := v.decompose(spelling, in); ok {
			return n, true
		}
	}
	return 0, false
}

// decompose consumes input one base syllabary glyph at a time, concatenating
// each glyph's canonical reading, until the concatenation exactly covers the
// candidate spelling. This lets a user spell out a kanji reading in hiragana
// instead of romaji.
func (v *Verifier) decompose(spelling string, in []rune) (int, bool) {
	pos := 0
	for used := 0; used < len(in); {
		ro, ok := v.bank.BaseReading(in[used])
		if !ok {
			return 0, false
		}
		used++
		if !strings.HasPrefix(spelling[pos:], ro) {
			return 0, false
		}
		pos += len(ro)
		if pos >= len(spelling) {
			return used, true
		}
	}
	return 0, false
}
