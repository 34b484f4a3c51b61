// Package pdftext pulls plain text out of PDF documents and cuts it into the
// chunks handed to the question generator.
package pdftext

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"
)

// ErrEncrypted is returned for password protected documents.
var ErrEncrypted = errors.New("pdf is encrypted")

// DefaultPagesPerChunk groups pages when the caller passes 0.
const DefaultPagesPerChunk = 5

// Pages extracts the text of every page in order. Pages without a text
// layer come back as empty strings so page numbers stay aligned.
func Pages(r io.ReaderAt, size int64) (pages []string, err error) {
	doc, err := pdf.NewReader(r, size)
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return nil, ErrEncrypted
		}
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer func() {
		// the reader panics on some malformed content streams
		if rec := recover(); rec != nil {
			pages, err = nil, fmt.Errorf("read pdf: %v", rec)
		}
	}()
	n := doc.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := doc.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, Clean(text))
	}
	return pages, nil
}

// FromFile opens path and extracts its pages.
func FromFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return Pages(f, st.Size())
}

// Clean NFC-normalizes text, drops control characters and collapses runs of
// blank lines.
func Clean(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return -1
		}
		return r
	}, s)
	lines := strings.Split(strings.ReplaceAll(s, "\r", ""), "\n")
	out := lines[:0]
	blank := false
	for _, l := range lines {
		l = strings.TrimRightFunc(l, unicode.IsSpace)
		if l == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// Chunk joins consecutive pages into groups of perChunk. Blank pages are
// kept in the count but contribute no text; groups left entirely blank are
// dropped.
func Chunk(pages []string, perChunk int) []string {
	if perChunk <= 0 {
		perChunk = DefaultPagesPerChunk
	}
	var chunks []string
	for i := 0; i < len(pages); i += perChunk {
		end := min(i+perChunk, len(pages))
		var parts []string
		for _, p := range pages[i:end] {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) > 0 {
			chunks = append(chunks, strings.Join(parts, "\n\n"))
		}
	}
	return chunks
}

// SplitText cuts plain text into chunks of at most maxRunes, breaking on
// paragraph, then line, then word boundaries where possible. maxRunes <= 0
// returns the cleaned text as one chunk.
func SplitText(text string, maxRunes int) []string {
	text = Clean(text)
	if text == "" {
		return nil
	}
	if maxRunes <= 0 {
		return []string{text}
	}
	var chunks []string
	rest := []rune(text)
	for len(rest) > maxRunes {
		cut := breakAt(rest[:maxRunes])
		if c := strings.TrimSpace(string(rest[:cut])); c != "" {
			chunks = append(chunks, c)
		}
		rest = rest[cut:]
	}
	if c := strings.TrimSpace(string(rest)); c != "" {
		chunks = append(chunks, c)
	}
	return chunks
}

func breakAt(window []rune) int {
	s := string(window)
	for _, sep := range []string{"\n\n", "\n", " "} {
		if i := strings.LastIndex(s, sep); i > 0 {
			return len([]rune(s[:i+len(sep)]))
		}
	}
	return len(window)
}
