package selection

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/katalvlaran/subclone/report"
)

var _ report.Artifact = (*Selection)(nil)

// Summarize names the winning configuration.
func (s *Selection) Summarize() string {
	if s.Best == nil {
		return fmt.Sprintf("selection: no viable model (%d fits, %d failed)", len(s.Table)-s.Failed, s.Failed)
	}
	b := s.Best
	return fmt.Sprintf("selected k=%d clusters=%d seed=%d score=%.4f tail_weight=%.4f (eligible=%d failed=%d)",
		b.Config.K, len(b.Clusters()), b.Config.Seed, b.Score, b.Tail().Weight, s.Eligible, s.Failed)
}

// Export writes the grid table as TSV.
func (s *Selection) Export(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "k\tseed\tclusters\tnll\tparams\tentropy\tscore\tconverged\titerations\teligible\tbest\terror"); err != nil {
		return err
	}
	for _, r := range s.Table {
		if _, err := fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%d\t%s\t%s\t%t\t%d\t%t\t%t\t%s\n",
			r.K, r.Seed, r.Clusters, num(r.NLL), r.Params, num(r.Entropy), num(r.Score),
			r.Converged, r.Iterations, r.Eligible, r.Best, r.Err); err != nil {
			return err
		}
	}
	return nil
}

// num prints finite values with six decimals and leaves the rest empty.
func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}
