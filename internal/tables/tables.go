// Package tables reads the tab-separated mutation and segment tables.
//
// Columns are located by header name, so their order is free and extra
// columns are ignored. Lines starting with '#' are comments.
//
//	mutations: chr from to ref alt DP NV [is_driver]
//	segments:  chr from to major minor
//
// Values are parsed but not validated; genome.Annotate counts and drops
// records that violate the coordinate or read-count rules.
package tables

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/katalvlaran/subclone/genome"
)

var (
	// ErrMissingColumn is returned when a required header is absent.
	ErrMissingColumn = errors.New("tables: missing column")

	// ErrBadValue is returned when a cell cannot be parsed.
	ErrBadValue = errors.New("tables: bad value")
)

var (
	mutationColumns = []string{"chr", "from", "to", "ref", "alt", "DP", "NV"}
	segmentColumns  = []string{"chr", "from", "to", "major", "minor"}
)

// table is a header-indexed TSV reader.
type table struct {
	r    *csv.Reader
	cols map[string]int
	line int
}

func newTable(r io.Reader, required []string) (*table, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.ReuseRecord = true
	cr.LazyQuotes = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty table", ErrMissingColumn)
		}
		return nil, fmt.Errorf("tables: header: %w", err)
	}
	t := &table{r: cr, cols: make(map[string]int, len(header)), line: 1}
	for i, h := range header {
		t.cols[strings.TrimSpace(h)] = i
	}
	for _, c := range required {
		if _, ok := t.cols[c]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, c)
		}
	}
	return t, nil
}

// next returns the next record, or io.EOF.
func (t *table) next() ([]string, error) {
	rec, err := t.r.Read()
	if err != nil {
		return nil, err
	}
	t.line, _ = t.r.FieldPos(0)
	return rec, nil
}

func (t *table) str(rec []string, col string) string {
	i, ok := t.cols[col]
	if !ok {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func (t *table) parseInt64(rec []string, col string) (int64, error) {
	s := t.str(rec, col)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d column %s: %q", ErrBadValue, t.line, col, s)
	}
	return v, nil
}

func (t *table) parseInt(rec []string, col string) (int, error) {
	v, err := t.parseInt64(rec, col)
	return int(v), err
}

// parseBool accepts the usual spellings of true and false; an absent column or
// empty cell is false.
func (t *table) parseBool(rec []string, col string) (bool, error) {
	s := t.str(rec, col)
	switch strings.ToLower(s) {
	case "", "0", "false", "f", "no", "na":
		return false, nil
	case "1", "true", "t", "yes":
		return true, nil
	}
	return false, fmt.Errorf("%w: line %d column %s: %q", ErrBadValue, t.line, col, s)
}

// ReadMutations parses a mutation table.
func ReadMutations(r io.Reader) ([]genome.Mutation, error) {
	t, err := newTable(r, mutationColumns)
	if err != nil {
		return nil, err
	}
	var out []genome.Mutation
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("tables: %w", err)
		}
		m := genome.Mutation{
			Chromosome: t.str(rec, "chr"),
			Ref:        t.str(rec, "ref"),
			Alt:        t.str(rec, "alt"),
		}
		if m.Start, err = t.parseInt64(rec, "from"); err != nil {
			return nil, err
		}
		if m.End, err = t.parseInt64(rec, "to"); err != nil {
			return nil, err
		}
		if m.DP, err = t.parseInt(rec, "DP"); err != nil {
			return nil, err
		}
		if m.NV, err = t.parseInt(rec, "NV"); err != nil {
			return nil, err
		}
		if m.Driver, err = t.parseBool(rec, "is_driver"); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
}

// ReadSegments parses a segment table.
func ReadSegments(r io.Reader) ([]genome.Segment, error) {
	t, err := newTable(r, segmentColumns)
	if err != nil {
		return nil, err
	}
	var out []genome.Segment
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("tables: %w", err)
		}
		s := genome.Segment{Chromosome: t.str(rec, "chr")}
		if s.Start, err = t.parseInt64(rec, "from"); err != nil {
			return nil, err
		}
		if s.End, err = t.parseInt64(rec, "to"); err != nil {
			return nil, err
		}
		if s.Major, err = t.parseInt(rec, "major"); err != nil {
			return nil, err
		}
		if s.Minor, err = t.parseInt(rec, "minor"); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
}

// ReadMutationsFile opens path and parses it with ReadMutations.
func ReadMutationsFile(path string) ([]genome.Mutation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadMutations(f)
}

// ReadSegmentsFile opens path and parses it with ReadSegments.
func ReadSegmentsFile(path string) ([]genome.Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSegments(f)
}
