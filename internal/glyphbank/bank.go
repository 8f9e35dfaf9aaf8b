// Package glyphbank loads the per-level character pools and the reading tables
// that map each character to its accepted romaji spellings. Everything is
// loaded once at startup and read-only afterwards.
package glyphbank

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"unicode/utf8"
)

// Bank holds the glyph pools and reading tables for all difficulty levels.
type Bank struct {
	pools    map[int][]rune
	readings map[rune][]string
	hiragana map[rune][]string
	maxLevel int
}

// setName maps a difficulty level to its data file basename.
func setName(level int) string {
	if level == 0 {
		return "hiragana"
	}
	return fmt.Sprintf("kanji%02d", level)
}

// Load reads lvl/*.txt glyph pools and sol/*.txt reading tables from fsys.
// Malformed or duplicate solution lines are logged and skipped rather than
// failing the load.
func Load(fsys fs.FS, logger *slog.Logger) (*Bank, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bank{
		pools:    make(map[int][]rune),
		readings: make(map[rune][]string),
		hiragana: make(map[rune][]string),
	}

	lvlFiles, err := fs.Glob(fsys, "lvl/*.txt")
	if err != nil {
		return nil, fmt.Errorf("list level files: %w", err)
	}
	sort.Strings(lvlFiles)
	for level, name := range lvlFiles {
		want := path.Join("lvl", setName(level)+".txt")
		if name != want {
			return nil, fmt.Errorf("unexpected level file %s (want %s)", name, want)
		}
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		pool := []rune(strings.Join(strings.Fields(string(raw)), ""))
		if len(pool) == 0 {
			return nil, fmt.Errorf("level file %s is empty", name)
		}
		b.pools[level] = pool
	}
	if len(b.pools) == 0 {
		return nil, fmt.Errorf("no level files found")
	}
	b.maxLevel = len(b.pools) - 1

	solFiles, err := fs.Glob(fsys, "sol/*.txt")
	if err != nil {
		return nil, fmt.Errorf("list solution files: %w", err)
	}
	sort.Strings(solFiles)
	for _, name := range solFiles {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		base := strings.Contains(name, "hiragana")
		b.loadSolutions(string(raw), base, logger)
	}

	// Every pooled glyph needs at least one reading; anything missing would
	// otherwise surface at verification time as a data-integrity warning.
	for level, pool := range b.pools {
		for _, r := range pool {
			if len(b.readings[r]) == 0 {
				logger.Warn("glyph has no registered reading",
					"glyph", string(r), "level", level)
			}
		}
	}
	return b, nil
}

func (b *Bank) loadSolutions(raw string, base bool, logger *slog.Logger) {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, rest, ok := strings.Cut(line, ":")
		if !ok || utf8.RuneCountInString(key) != 1 || rest == "" {
			logger.Warn("bad solution line", "line", line)
			continue
		}
		r, _ := utf8.DecodeRuneInString(key)
		if _, dup := b.readings[r]; dup {
			logger.Warn("duplicate reading entry", "glyph", key)
		}
		var spellings []string
		for _, s := range strings.Split(rest, ",") {
			s = strings.TrimSpace(s)
			if s != "" {
				spellings = append(spellings, s)
			}
		}
		if len(spellings) == 0 {
			logger.Warn("bad solution line", "line", line)
			continue
		}
		b.readings[r] = spellings
		if base {
			b.hiragana[r] = spellings
		}
	}
}

// Pool returns the glyph pool for a level. Levels outside the loaded range
// return nil.
func (b *Bank) Pool(level int) []rune { return b.pools[level] }

// MaxLevel is the highest loaded difficulty level.
func (b *Bank) MaxLevel() int { return b.maxLevel }

// Readings returns the accepted spellings for a glyph, first-listed first.
// A nil result is the data-integrity condition the verifier guards against.
func (b *Bank) Readings(r rune) []string { return b.readings[r] }

// BaseReading returns the canonical (first-listed) spelling of a base
// syllabary glyph, for the decomposition fallback. Non-hiragana glyphs
// report ok=false.
func (b *Bank) BaseReading(r rune) (string, bool) {
	ss, ok := b.hiragana[r]
	if !ok || len(ss) == 0 {
		return "", false
	}
	return ss[0], true
}
