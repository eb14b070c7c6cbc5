// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ranking

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadPreRanked reads a two-column, tab-separated pre-ranked file
// (GENE<TAB>SCORE, no header) and builds a validated List. Blank lines
// are ignored. Scores are re-sorted on load, so a hand-edited file does
// not need to be in rank order.
func LoadPreRanked(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading pre-ranked file: %w", err)
	}
	defer f.Close()

	entries, err := ParsePreRanked(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return New(entries)
}

// ParsePreRanked parses the two-column pre-ranked format from r.
func ParsePreRanked(r io.Reader) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: line %d: expected GENE<TAB>SCORE, got %d column(s)",
				ErrInvalidList, lineNo, len(fields))
		}

		gene := strings.TrimSpace(fields[0])
		score, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad score for gene %s: %v",
				ErrInvalidList, lineNo, gene, err)
		}
		entries = append(entries, Entry{Gene: gene, Score: score})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading pre-ranked input: %w", err)
	}
	return entries, nil
}

// WritePreRanked writes entries to w in the two-column pre-ranked format
// with six-decimal scores, in the order given.
func WritePreRanked(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := fmt.Fprintf(bw, "%s\t%.6f\n", e.Gene, e.Score); err != nil {
			return fmt.Errorf("writing pre-ranked output: %w", err)
		}
	}
	return bw.Flush()
}
