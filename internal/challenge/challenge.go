// Package challenge implements the question generator and the answer
// verifier: which glyphs make up a puzzle at a given difficulty, and whether
// a typed transliteration matches them.
package challenge

// Spec is the answer key for one puzzle. It is created by the generator,
// persisted server-side for the lifetime of the challenge, and never mutated.
type Spec struct {
	// Required glyphs, in display order. Never empty.
	Required []rune
	// Bonus is an optional extra glyph from the next-harder pool, worth
	// partial credit. Zero means no bonus.
	Bonus rune
	// Level the spec was drawn from; selects the leaderboard bucket.
	Level int
}

// Verdict classifies a verification attempt.
type Verdict int

const (
	// Incorrect: a required glyph failed to match, or trailing input remained.
	Incorrect Verdict = iota
	// Correct: every required glyph matched and the bonus, if any, matched too.
	Correct
	// MissedBonus: all required glyphs matched but the bonus did not.
	MissedBonus
)

func (v Verdict) String() string {
	switch v {
	case Correct:
		return "correct"
	case MissedBonus:
		return "missed-bonus"
	default:
		return "incorrect"
	}
}

// Result carries the verdict plus, when the bonus was missed, its canonical
// spelling for disclosure to the user.
type Result struct {
	Verdict       Verdict
	BonusSpelling string
}
