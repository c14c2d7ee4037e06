package selection

import (
	"errors"

	"github.com/katalvlaran/subclone/mixture"
)

// Sentinel errors for model selection.
var (
	// ErrNoViableModel is returned when no fit of the grid converged.
	ErrNoViableModel = errors.New("selection: no viable model")

	// ErrIncompleteFit is returned by Score for a fit without
	// responsibilities.
	ErrIncompleteFit = errors.New("selection: fit without responsibilities")

	// ErrBadOptions signals a negative weight or tolerance.
	ErrBadOptions = errors.New("selection: invalid options")
)

// Options configures Select.
type Options struct {
	// EntropyWeight is λ, the weight of the responsibility-entropy penalty.
	EntropyWeight float64 `yaml:"entropy_weight" json:"entropy_weight" validate:"gte=0"`

	// TieTolerance is the score difference under which two fits tie.
	TieTolerance float64 `yaml:"tie_tolerance" json:"tie_tolerance" validate:"gte=0"`
}

// DefaultOptions returns λ = 1 and a tie tolerance of 1e-6.
func DefaultOptions() Options {
	return Options{EntropyWeight: 1.0, TieTolerance: 1e-6}
}

func (o Options) validate() error {
	if !(o.EntropyWeight >= 0) || !(o.TieTolerance >= 0) {
		return ErrBadOptions
	}
	return nil
}

// Row is one line of the grid table.
type Row struct {
	K          int     `json:"k"`
	Seed       int64   `json:"seed"`
	Clusters   int     `json:"clusters"`
	NLL        float64 `json:"nll"`
	Params     int     `json:"params"`
	Entropy    float64 `json:"entropy"`
	Score      float64 `json:"score"`
	Converged  bool    `json:"converged"`
	Iterations int     `json:"iterations"`
	Eligible   bool    `json:"eligible"`
	Best       bool    `json:"best"`
	Err        string  `json:"error,omitempty"`
}

// Selection is the output of Select.
type Selection struct {
	// Best is a scored copy of the winning fit.
	Best *mixture.FitResult

	// Table lists scored fits by (score, k, seed), then failures by (k, seed).
	Table []Row

	Eligible int
	Failed   int
}
