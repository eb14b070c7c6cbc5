// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geneset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/enrich-engine/pkg/types"
)

// LoadGMT reads gene sets from a GMT file: one set per line,
// NAME<TAB>DESCRIPTION<TAB>GENE[<TAB>GENE...]. Duplicate members within
// a line are dropped; a line with no genes is an error.
func LoadGMT(path string) ([]types.GeneSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading GMT file: %w", err)
	}
	defer f.Close()

	sets, err := ParseGMT(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return sets, nil
}

// ParseGMT parses GMT-format gene sets from r.
func ParseGMT(r io.Reader) ([]types.GeneSet, error) {
	var sets []types.GeneSet
	names := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return nil, fmt.Errorf("%w: line %d: expected NAME, DESCRIPTION, and at least one gene",
				ErrInvalidSet, lineNo)
		}

		name := strings.TrimSpace(fields[0])
		if name == "" {
			return nil, fmt.Errorf("%w: line %d: empty set name", ErrInvalidSet, lineNo)
		}
		if names[name] {
			return nil, fmt.Errorf("%w: line %d: duplicate set name %s", ErrInvalidSet, lineNo, name)
		}
		names[name] = true

		seen := make(map[string]bool, len(fields)-2)
		var genes []string
		for _, g := range fields[2:] {
			g = strings.TrimSpace(g)
			if g == "" || seen[g] {
				continue
			}
			seen[g] = true
			genes = append(genes, g)
		}
		if len(genes) == 0 {
			return nil, fmt.Errorf("%w: line %d: set %s has no genes", ErrInvalidSet, lineNo, name)
		}

		sets = append(sets, types.GeneSet{
			ID:          name,
			Source:      "gmt",
			Description: strings.TrimSpace(fields[1]),
			Genes:       genes,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading GMT input: %w", err)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("%w: no gene sets found", ErrInvalidSet)
	}
	return sets, nil
}
