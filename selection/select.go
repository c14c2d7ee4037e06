package selection

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/katalvlaran/subclone/matrix"
	"github.com/katalvlaran/subclone/mixture"
	"gonum.org/v1/gonum/floats"
)

// Score returns the penalised score of f and the summed responsibility
// entropy that entered it.
//
// Complexity: O(n·(k+1)).
func Score(f *mixture.FitResult, entropyWeight float64) (score, entropy float64, err error) {
	if f == nil || f.Responsibilities == nil || f.NumPoints == 0 {
		return 0, 0, ErrIncompleteFit
	}
	h, err := matrix.RowEntropy(f.Responsibilities)
	if err != nil {
		return 0, 0, err
	}
	entropy = floats.Sum(h)
	score = -2*f.LogLik + float64(f.FreeParameters())*math.Log(float64(f.NumPoints)) + entropyWeight*entropy
	return score, entropy, nil
}

// Select scores every fit in g and returns the best converged one.
//
// Implementation:
//   - Stage 1: score all fits; record failures with their error text.
//   - Stage 2: sort by (score, k, seed); among converged fits within
//     TieTolerance of the minimum choose fewest clusters, then lowest seed.
//
// Errors:
//   - ErrBadOptions for negative options.
//   - ErrNoViableModel when g is nil or nothing converged.
func Select(g *mixture.FitGrid, opts Options) (*Selection, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("%w: empty grid", ErrNoViableModel)
	}

	type scored struct {
		fit *mixture.FitResult
		row Row
	}
	all := make([]scored, 0, len(g.Fits))
	for _, f := range g.Fits {
		r := Row{
			K:          f.Config.K,
			Seed:       f.Config.Seed,
			Clusters:   len(f.Clusters()),
			NLL:        -f.LogLik,
			Params:     f.FreeParameters(),
			Converged:  f.Converged,
			Iterations: f.Iterations,
		}
		s, h, err := Score(f, opts.EntropyWeight)
		switch {
		case err != nil:
			r.Err = err.Error()
			r.Score = math.Inf(1)
		case math.IsNaN(s) || math.IsInf(s, 0):
			r.Err = "non-finite score"
			r.Score = math.Inf(1)
		default:
			r.Score, r.Entropy = s, h
			r.Eligible = f.Converged
		}
		all = append(all, scored{fit: f, row: r})
	}
	slices.SortStableFunc(all, func(a, b scored) int {
		return cmp.Or(
			cmp.Compare(a.row.Score, b.row.Score),
			cmp.Compare(a.row.K, b.row.K),
			cmp.Compare(a.row.Seed, b.row.Seed),
		)
	})

	sel := &Selection{Table: make([]Row, 0, len(all)+len(g.Failures))}
	// The tie window is anchored at the minimal eligible score.
	best, first := -1, -1
	for i := range all {
		if !all[i].row.Eligible {
			continue
		}
		sel.Eligible++
		if first < 0 {
			best, first = i, i
			continue
		}
		if all[i].row.Score-all[first].row.Score > opts.TieTolerance {
			continue
		}
		if preferred(all[i].row, all[best].row) {
			best = i
		}
	}

	for i := range all {
		all[i].row.Best = i == best
		sel.Table = append(sel.Table, all[i].row)
	}
	fails := slices.Clone(g.Failures)
	slices.SortStableFunc(fails, func(a, b mixture.Failure) int {
		return cmp.Or(cmp.Compare(a.K, b.K), cmp.Compare(a.Seed, b.Seed))
	})
	for _, f := range fails {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		sel.Table = append(sel.Table, Row{K: f.K, Seed: f.Seed, Score: math.Inf(1), Err: msg})
	}
	sel.Failed = len(fails)

	if best < 0 {
		return sel, fmt.Errorf("%w: %d fits, %d failed, none converged", ErrNoViableModel, len(g.Fits), len(g.Failures))
	}
	cp := *all[best].fit
	cp.Score, cp.Scored = all[best].row.Score, true
	if cp.Responsibilities != nil {
		cp.Responsibilities = cp.Responsibilities.Clone()
	}
	sel.Best = &cp
	return sel, nil
}

// preferred reports whether a beats b among tied fits.
func preferred(a, b Row) bool {
	if a.Clusters != b.Clusters {
		return a.Clusters < b.Clusters
	}
	if a.K != b.K {
		return a.K < b.K
	}
	return a.Seed < b.Seed
}
