// Package kanachart extracts glyph-to-romaji reading tables from HTML kana
// chart pages, emitting them in the sol/ solution-file format.
package kanachart

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const userAgent = "kanatcha-chartgen/1.0"

// Entry is one glyph with its accepted spellings, first-listed first.
type Entry struct {
	Glyph     rune
	Spellings []string
}

// Line renders the entry as a solution-file line.
func (e Entry) Line() string {
	return string(e.Glyph) + ":" + strings.Join(e.Spellings, ",")
}

var romajiPattern = regexp.MustCompile(`^[a-z]+([,/][a-z]+)*$`)

// Fetch downloads a chart page and parses it.
func Fetch(client *http.Client, pageURL string) ([]Entry, error) {
	req, err := http.NewRequest("GET", pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch chart %s: status %d", pageURL, resp.StatusCode)
	}
	return Parse(resp.Body)
}

// Parse scans every table row on the page. A row contributes an entry when
// its first cell is a single kana or kanji glyph and its second cell reads
// as romaji (comma- or slash-separated variants).
func Parse(r io.Reader) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	seen := map[rune]bool{}
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		glyphText := strings.TrimSpace(cells.Eq(0).Text())
		if utf8.RuneCountInString(glyphText) != 1 {
			return
		}
		glyph, _ := utf8.DecodeRuneInString(glyphText)
		if !unicode.In(glyph, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			return
		}
		raw := strings.ToLower(strings.Join(strings.Fields(cells.Eq(1).Text()), ""))
		if !romajiPattern.MatchString(raw) {
			return
		}
		if seen[glyph] {
			return
		}
		seen[glyph] = true
		spellings := strings.FieldsFunc(raw, func(c rune) bool { return c == ',' || c == '/' })
		entries = append(entries, Entry{Glyph: glyph, Spellings: spellings})
	})
	if len(entries) == 0 {
		return nil, errors.New("no chart rows found")
	}
	return entries, nil
}
