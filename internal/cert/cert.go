// Package cert renders proficiency certificates for leaderboard members.
package cert

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// LevelTitle names a difficulty level for display.
func LevelTitle(level int) string {
	switch level {
	case 0:
		return "Hiragana"
	case 1:
		return "Kanji I"
	case 2:
		return "Kanji II"
	case 3:
		return "Kanji III"
	default:
		return fmt.Sprintf("Level %d", level)
	}
}

// Data is everything printed on one certificate.
type Data struct {
	Serial string
	Name   string
	Level  int
	Score  int64
	Rank   int // 1-based; 0 when unranked
	Date   time.Time
}

// GeneratePDF produces a single-page landscape certificate.
func GeneratePDF(data Data) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 28)
	pdf.CellFormat(0, 16, "Certificate of Proficiency", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(0, 10, "Kanatcha Reading Challenge", "", 1, "C", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 12, data.Name, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 14)
	line := fmt.Sprintf("Level: %s | Challenges solved: %d | Date: %s",
		LevelTitle(data.Level), data.Score, data.Date.Format("2006-01-02"))
	pdf.CellFormat(0, 8, line, "", 1, "C", false, 0, "")

	if data.Rank > 0 {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, fmt.Sprintf("Leaderboard rank: #%d", data.Rank), "", 1, "C", false, 0, "")
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 6,
		"Earned by correctly transliterating kana and kanji reading challenges.",
		"", 1, "C", false, 0, "")

	pdf.SetY(-20)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 5, "Serial: "+data.Serial, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
