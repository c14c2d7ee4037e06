// Package subclone reconstructs the clonal composition of a tumour sample
// from somatic mutations, copy-number segments and tumour purity.
//
// 🚀 What is subclone?
//
//	A deterministic, concurrent pipeline that brings together:
//		• Genome annotation: map mutations onto karyotype segments
//		• Peak QC: compare VAF density peaks with the clonal expectation
//		• CCF: multiplicity posterior and cancer cell fraction per mutation
//		• Mixture fitting: Pareto tail + Normal/Beta clusters by EM
//		• Model selection: ICL-style score over a (k, seed) grid
//		• Clone trees: every parent assignment obeying the sum rule
//
// ✨ Why choose subclone?
//
//   - Reproducible - every fit is a pure function of (data, k, seed)
//   - Explicit failures - typed errors, failed fits stay in the grid table
//   - Observable - slog logging, OpenTelemetry spans, Prometheus metrics
//
// Packages:
//
//	genome/      mutations, segments, karyotypes and the sample context
//	peaks/       expected clonal peaks, KDE peak detection and QC report
//	ccf/         multiplicity posterior and CCF estimates
//	matrix/      dense row-major matrix used for responsibilities
//	mixture/     tail + clusters EM, assignment and the fit grid
//	selection/   penalised scoring and best-model choice
//	clonetree/   clone tree enumeration and validation
//	config/      YAML/JSON configuration with environment overrides
//	pipeline/    stage orchestration, worker pool, tracing and metrics
//	report/      summary and export interfaces for every artifact
//
// Data flow:
//
//	mutations ─┐
//	segments ──┼─▶ annotate ─▶ QC ─▶ CCF ─▶ grid of fits ─▶ select ─▶ trees
//	purity ────┘
//
// Command line:
//
//	go install github.com/katalvlaran/subclone/cmd/subclone@latest
//	subclone run -m muts.tsv -s cna.tsv -p 0.8 --sample S1 -o out/
package subclone
