// Command kanachart scrapes an HTML kana chart into a solution file for the
// glyph bank's sol/ directory.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/lalcmellkmal/kanatcha/internal/kanachart"
)

func main() {
	pageURL := flag.String("url", "", "chart page to scrape")
	out := flag.String("out", "", "output file (default stdout)")
	flag.Parse()

	if *pageURL == "" {
		fmt.Fprintln(os.Stderr, "usage: kanachart -url <chart page> [-out sol/hiragana.txt]")
		os.Exit(2)
	}

	client := &http.Client{Timeout: 8 * time.Second}
	entries, err := kanachart.Fetch(client, *pageURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "kanachart:", err)
		os.Exit(1)
	}

	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.Line())
		b.WriteByte('\n')
	}
	if *out == "" {
		fmt.Print(b.String())
		return
	}
	if err := os.WriteFile(*out, []byte(b.String()), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "kanachart:", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "wrote %d entries to %s\n", len(entries), *out)
}
