package sweep

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/flocksim/flocksim/sim"
)

var (
	// ErrMissingColumn is returned when a results file lacks a required column.
	ErrMissingColumn = errors.New("missing required column")
	// ErrEmptyResults is returned when a results file has no data rows.
	ErrEmptyResults = errors.New("results file has no data rows")
)

var requiredColumns = []string{"k_coh", "k_ali", "k_col", "average"}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Header returns the CSV header for the given seeds.
func Header(seeds []int64) []string {
	h := []string{"k_coh", "k_ali", "k_col"}
	for _, s := range seeds {
		h = append(h, fmt.Sprintf("coverage_seed_%d", s))
	}
	return append(h, "average", "score")
}

// WriteCSV writes one row per candidate in candidate order.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(r.Seeds)); err != nil {
		return err
	}
	for _, res := range r.Results {
		g := res.Candidate.Gains
		row := []string{formatFloat(g.Cohesion), formatFloat(g.Alignment), formatFloat(g.Separation)}
		for _, c := range res.PerSeed {
			row = append(row, formatFloat(c))
		}
		row = append(row, formatFloat(res.Coverage.Mean), formatFloat(res.Score))
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the report to path, replacing any existing file.
func (r *Report) SaveCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating results file: %w", err)
	}
	if err := r.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("writing results file %s: %w", path, err)
	}
	return f.Close()
}

// BestRow is the max-average row of a results file.
type BestRow struct {
	Gains   sim.Gains
	Average float64
	Line    int // 1-based, header is line 1
}

// FindBest reads a results CSV and returns the row with the highest average.
// Ties go to the earliest row. Extra columns are ignored.
func FindBest(path string) (*BestRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening results file: %w", err)
	}
	defer f.Close()
	best, err := ReadBest(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return best, nil
}

// ReadBest is FindBest over an open reader.
func ReadBest(r io.Reader) (*BestRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyResults
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	idx := make([]int, len(requiredColumns))
	for i, name := range requiredColumns {
		c, ok := col[name]
		if !ok {
			return nil, fmt.Errorf("%w %q (have %s)", ErrMissingColumn, name, strings.Join(header, ","))
		}
		idx[i] = c
	}

	var best *BestRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		var vals [4]float64
		for i, c := range idx {
			if c >= len(rec) {
				return nil, fmt.Errorf("line %d: %d fields, column %q is missing", line, len(rec), requiredColumns[i])
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[c]), 64)
			if err != nil || math.IsNaN(v) {
				return nil, fmt.Errorf("line %d: column %q: %q is not a number", line, requiredColumns[i], rec[c])
			}
			vals[i] = v
		}
		if best == nil || vals[3] > best.Average {
			best = &BestRow{
				Gains:   sim.Gains{Cohesion: vals[0], Alignment: vals[1], Separation: vals[2]},
				Average: vals[3],
				Line:    line,
			}
		}
	}
	if best == nil {
		return nil, ErrEmptyResults
	}
	return best, nil
}
