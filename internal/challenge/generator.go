package challenge

import (
	"math/rand/v2"

	"github.com/lalcmellkmal/kanatcha/internal/glyphbank"
	"github.com/lalcmellkmal/kanatcha/internal/random"
)

// Each level fixes a template of pool indices: how many picks come from the
// base pool versus the level-specific pools. The top level uses two top-pool
// picks and offers no bonus; every other level offers a bonus drawn from the
// next-higher pool.
var templates = [][4]int{
	{0, 0, 0, 0},
	{1, 0, 0, 0},
	{2, 1, 0, 0},
	{3, 3, 0, 0},
}

// Generator produces challenge specs by randomized sampling from the bank's
// pools. Safe for concurrent use; each call draws its own PRNG.
type Generator struct {
	bank *glyphbank.Bank
	seed func() uint64
}

// NewGenerator returns a generator seeded from crypto/rand.
func NewGenerator(bank *glyphbank.Bank) *Generator {
	return &Generator{bank: bank, seed: random.Seed}
}

// NewSeededGenerator overrides the seed source, for deterministic tests.
func NewSeededGenerator(bank *glyphbank.Bank, seed func() uint64) *Generator {
	return &Generator{bank: bank, seed: seed}
}

// Generate builds a spec for the given level. The caller clamps level to
// [0, MaxLevel]; out-of-range values are clamped here as well so Generate
// never fails.
func (g *Generator) Generate(level int) Spec {
	if level < 0 {
		level = 0
	}
	if max := len(templates) - 1; level > max {
		level = max
	}
	if level > g.bank.MaxLevel() {
		level = g.bank.MaxLevel()
	}

	r := rand.New(rand.NewPCG(g.seed(), g.seed()))
	tpl := templates[level]
	slots := tpl[:]

	bonusLevel := -1
	if level < g.bank.MaxLevel() && level < len(templates)-1 {
		bonusLevel = level + 1
	}

	// Shuffle slot order, but keep the last slot pinned whenever a bonus is
	// offered so the bonus glyph sits next to a stable neighbor on screen.
	if bonusLevel >= 0 {
		shuffle(r, slots[:len(slots)-1])
	} else {
		shuffle(r, slots)
	}

	sp := Spec{Required: make([]rune, len(slots)), Level: level}
	for i, poolLevel := range slots {
		sp.Required[i] = g.pick(r, poolLevel)
	}
	if bonusLevel >= 0 {
		sp.Bonus = g.pick(r, bonusLevel)
	}
	return sp
}

// pick samples one glyph uniformly, with replacement, from a pool.
func (g *Generator) pick(r *rand.Rand, level int) rune {
	pool := g.bank.Pool(level)
	return pool[r.IntN(len(pool))]
}

// shuffle permutes a in place: for each i from 1 upward, swap with a uniform
// position in [0, i].
func shuffle(r *rand.Rand, a []int) {
	for i := 1; i < len(a); i++ {
		j := r.IntN(i + 1)
		a[i], a[j] = a[j], a[i]
	}
}
