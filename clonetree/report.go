package clonetree

import (
	"fmt"
	"io"
	"strings"

	"github.com/katalvlaran/subclone/report"
)

var _ report.Artifact = (*TreeSet)(nil)

// maxSummaryTrees bounds the trees printed by Summarize.
const maxSummaryTrees = 5

// Summarize reports the number of trees and renders the first few.
func (s *TreeSet) Summarize() string {
	var b strings.Builder
	fmt.Fprintf(&b, "clone trees=%d clusters=%d truncated=%t", len(s.Trees), len(s.Nodes), s.Truncated)
	if len(s.Trees) == 0 && len(s.Nodes) > 0 {
		b.WriteString(" (no assignment satisfies the sum rule)")
	}
	for i, t := range s.Trees {
		if i == maxSummaryTrees {
			fmt.Fprintf(&b, "\n  ... %d more", len(s.Trees)-i)
			break
		}
		fmt.Fprintf(&b, "\n  tree %d: %s", i+1, t)
	}
	return b.String()
}

// Export writes one TSV row per edge, plus one row per root with an empty
// parent.
func (s *TreeSet) Export(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "tree\tparent\tchild\tprevalence"); err != nil {
		return err
	}
	for i, t := range s.Trees {
		if r := t.Root(); r >= 0 {
			if _, err := fmt.Fprintf(w, "%d\t\t%d\t%.6f\n", i+1, t.Nodes[r].ID, t.Nodes[r].Prevalence); err != nil {
				return err
			}
		}
		for _, e := range t.Edges() {
			if _, err := fmt.Fprintf(w, "%d\t%d\t%d\t%.6f\n", i+1, e.Parent, e.Child, e.Prevalence); err != nil {
				return err
			}
		}
	}
	return nil
}
