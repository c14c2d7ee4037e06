package mixture

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/katalvlaran/subclone/report"
)

var _ report.Artifact = (*FitResult)(nil)

// Summarize lists the configuration, the likelihood and every component.
func (f *FitResult) Summarize() string {
	var b strings.Builder
	fmt.Fprintf(&b, "fit k=%d seed=%d clusters=%d feature=%s density=%s n=%d nll=%.4f iterations=%d converged=%t merged=%d",
		f.Config.K, f.Config.Seed, len(f.Clusters()), f.Config.Feature, f.Config.Density,
		f.NumPoints, -f.LogLik, f.Iterations, f.Converged, f.Merged)
	if f.Scored {
		fmt.Fprintf(&b, " score=%.4f", f.Score)
	}
	for i, c := range f.Components {
		if c.Kind == KindTail {
			fmt.Fprintf(&b, "\n  [%d] tail    weight=%.4f shape=%.4f x_min=%.4f", i, c.Weight, c.Shape, c.Scale)
			continue
		}
		fmt.Fprintf(&b, "\n  [%d] cluster weight=%.4f mean=%.4f sd=%.4f", i, c.Weight, c.Mean, math.Sqrt(c.Variance))
	}
	return b.String()
}

// fitDocument is the JSON layout written by Export.
type fitDocument struct {
	*FitResult
	Responsibilities [][]float64 `json:"responsibilities"`
	Labels           []int       `json:"labels"`
}

// Export writes the fit as indented JSON: components, likelihood trajectory,
// the responsibility matrix (one row per point) and hard labels.
func (f *FitResult) Export(w io.Writer) error {
	doc := fitDocument{FitResult: f, Labels: f.Labels()}
	if R := f.Responsibilities; R != nil {
		doc.Responsibilities = make([][]float64, R.Rows())
		for i := range doc.Responsibilities {
			row, err := R.Row(i)
			if err != nil {
				return err
			}
			doc.Responsibilities[i] = row
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
