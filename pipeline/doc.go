// Package pipeline wires the stages of a subclonal deconvolution run:
//
//	annotate → peak QC (advisory) → CCF → mixture grid → selection → clone trees
//
// Run owns the ambient concerns the algorithm packages leave out: a run id
// (uuid) on every log line and span, structured logging through an
// injected *slog.Logger, one OpenTelemetry span per stage, Prometheus
// metrics on a caller-provided registerer, and a bounded worker pool
// (errgroup with SetLimit) for the (k, seed) grid.
//
// Grid concurrency:
//
//   - Each task writes only its own slot of pre-sized result slices.
//   - A failed fit is recorded and never cancels its siblings.
//   - Context cancellation is checked before each task starts.
//   - Wait is the join barrier before selection; results are assembled in
//     task order, so the outcome does not depend on the worker count.
package pipeline
