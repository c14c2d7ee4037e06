package pipeline

import "github.com/katalvlaran/subclone/report"

// Artifact file names.
const (
	FileQC        = "qc.tsv"
	FileMutations = "mutations.tsv"
	FileGrid      = "grid.tsv"
	FileBestFit   = "best_fit.json"
	FileTrees     = "trees.tsv"
)

// Artifacts lists the outputs of the stages that ran, in stage order.
func (r *Result) Artifacts() []report.Named {
	var out []report.Named
	if r.QC != nil {
		out = append(out, report.Named{Name: FileQC, Artifact: r.QC})
	}
	if r.CCF != nil {
		out = append(out, report.Named{Name: FileMutations, Artifact: r.CCF})
	}
	if r.Selection != nil {
		out = append(out, report.Named{Name: FileGrid, Artifact: r.Selection})
		if r.Selection.Best != nil {
			out = append(out, report.Named{Name: FileBestFit, Artifact: r.Selection.Best})
		}
	}
	if r.Trees != nil {
		out = append(out, report.Named{Name: FileTrees, Artifact: r.Trees})
	}
	return out
}
