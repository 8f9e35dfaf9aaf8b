package challenge

import (
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lalcmellkmal/kanatcha/internal/glyphbank"
)

func verifierBank(t *testing.T) *glyphbank.Bank {
	t.Helper()
	b, err := glyphbank.Load(fstest.MapFS{
		"lvl/hiragana.txt": {Data: []byte("あいうえかしやまわん")},
		"lvl/kanji01.txt":  {Data: []byte("山日")},
		"sol/hiragana.txt": {Data: []byte("あ:a\nい:i\nう:u\nえ:e\nか:ka\nし:shi,si\nや:ya\nま:ma\nわ:wa\nん:n\n")},
		"sol/kanji01.txt":  {Data: []byte("山:yama\n日:hi,nichi\n")},
	}, slog.Default())
	require.NoError(t, err)
	return b
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "aiue", Normalize("A i-U.e"))
	assert.Equal(t, "yama", Normalize("  ya ma\t"))
	assert.Equal(t, "", Normalize(" .- "))
}

func TestVerifyRoundTrip(t *testing.T) {
	v := NewVerifier(verifierBank(t), slog.Default())
	// Typing the canonical first spelling of every glyph always passes.
	sp := Spec{Required: []rune("あいうえ")}
	assert.Equal(t, Correct, v.Verify(sp, "aiue").Verdict)
}

func TestVerifyInsensitivity(t *testing.T) {
	v := NewVerifier(verifierBank(t), slog.Default())
	sp := Spec{Required: []rune("あいうえ")}

	for _, input := range []string{"a i u e", "A-I-U-E", "a. i. u. e.", " aIuE "} {
		assert.Equal(t, Correct, v.Verify(sp, input).Verdict, "input %q", input)
	}
}

func TestVerifyLiteralGlyphShortcut(t *testing.T) {
	v := NewVerifier(verifierBank(t), slog.Default())
	sp := Spec{Required: []rune("山あ")}
	// The user typed the glyphs themselves instead of transliterating.
	assert.Equal(t, Correct, v.Verify(sp, "山あ").Verdict)
	// Mixing literal glyphs and romaji also works.
	assert.Equal(t, Correct, v.Verify(sp, "山a").Verdict)
}

func TestVerifyAlternateSpelling(t *testing.T) {
	v := NewVerifier(verifierBank(t), slog.Default())
	sp := Spec{Required: []rune("しあ")}
	assert.Equal(t, Correct, v.Verify(sp, "shia").Verdict)
	assert.Equal(t, Correct, v.Verify(sp, "sia").Verdict)
}

func TestVerifyDecompositionFallback(t *testing.T) {
	v := NewVerifier(verifierBank(t), slog.Default())
	// 山 reads "yama"; spelling it out as やま must match even though the
	// kanji itself was never typed.
	sp := Spec{Required: []rune("山")}
	assert.Equal(t, Correct, v.Verify(sp, "やま").Verdict)
	// Partial decompositions do not match.
	assert.Equal(t, Incorrect, v.Verify(sp, "や").Verdict)
	// A wrong syllable aborts the candidate.
	assert.Equal(t, Incorrect, v.Verify(sp, "やわ").Verdict)
}

func TestVerifyDecompositionSecondSpelling(t *testing.T) {
	v := NewVerifier(verifierBank(t), slog.Default())
	// 日 accepts "hi" then "nichi"; neither ひ nor に are pooled here, so
	// spell out via romaji variants instead.
	sp := Spec{Required: []rune("日")}
	assert.Equal(t, Correct, v.Verify(sp, "hi").Verdict)
	assert.Equal(t, Correct, v.Verify(sp, "nichi").Verdict)
}

func TestVerifyGreedyNoBacktracking(t *testing.T) {
	v := NewVerifier(verifierBank(t), slog.Default())
	// First-listed spelling wins: し consumes "shi" greedily, so input
	// written for the second spelling plus leftovers fails cleanly.
	sp := Spec{Required: []rune("しん")}
	assert.Equal(t, Correct, v.Verify(sp, "shin").Verdict)
	assert.Equal(t, Correct, v.Verify(sp, "sin").Verdict)
	assert.Equal(t, Incorrect, v.Verify(sp, "shn").Verdict)
}

func TestVerifyTrailingGarbage(t *testing.T) {
	v := NewVerifier(verifierBank(t), slog.Default())
	sp := Spec{Required: []rune("あい")}
	assert.Equal(t, Incorrect, v.Verify(sp, "aiu").Verdict)
	assert.Equal(t, Incorrect, v.Verify(sp, "ai!").Verdict)
}

func TestVerifyMissingRequired(t *testing.T) {
	v := NewVerifier(verifierBank(t), slog.Default())
	sp := Spec{Required: []rune("あい")}
	assert.Equal(t, Incorrect, v.Verify(sp, "a").Verdict)
	assert.Equal(t, Incorrect, v.Verify(sp, "").Verdict)
}

func TestVerifyBonusMatched(t *testing.T) {
	v := NewVerifier(verifierBank(t), slog.Default())
	sp := Spec{Required: []rune("かあ"), Bonus: 'ん'}
	res := v.Verify(sp, "kaan")
	assert.Equal(t, Correct, res.Verdict)
	assert.Empty(t, res.BonusSpelling)
}

func TestVerifyBonusMissed(t *testing.T) {
	v := NewVerifier(verifierBank(t), slog.Default())
	sp := Spec{Required: []rune("かあ"), Bonus: 'ん'}
	res := v.Verify(sp, "kaa")
	assert.Equal(t, MissedBonus, res.Verdict)
	assert.Equal(t, "n", res.BonusSpelling, "first accepted spelling is disclosed")
}

func TestVerifyBonusWithTrailingInput(t *testing.T) {
	v := NewVerifier(verifierBank(t), slog.Default())
	sp := Spec{Required: []rune("かあ"), Bonus: 'ん'}
	// Required glyphs earn the base pass; a bonus buried in garbage does
	// not count as matched.
	res := v.Verify(sp, "kaanxyz")
	assert.Equal(t, MissedBonus, res.Verdict)
}

func TestVerifyUnknownGlyphFailsMatch(t *testing.T) {
	v := NewVerifier(verifierBank(t), slog.Default())
	// 犬 has no registered reading: a data-integrity condition, reported
	// as an ordinary non-match.
	sp := Spec{Required: []rune("犬")}
	assert.Equal(t, Incorrect, v.Verify(sp, "inu").Verdict)
}

func TestVerifyDeterministic(t *testing.T) {
	v := NewVerifier(verifierBank(t), slog.Default())
	sp := Spec{Required: []rune("山あ"), Bonus: 'ん'}
	first := v.Verify(sp, "yamaa")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, v.Verify(sp, "yamaa"))
	}
}
