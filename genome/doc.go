// Package genome holds the input data model of a subclonal deconvolution run
// (somatic mutations, allele-specific copy-number segments and the sample
// context) and the GenomeAnnotator that maps every mutation onto the segment
// containing it.
//
// What:
//
//   - Mutation: a somatic point mutation with read counts. VAF is derived on
//     demand from NV/DP and never stored.
//   - Segment: a copy-number segment with integer major/minor copy numbers.
//   - Karyotype: the "major:minor" label of a segment.
//   - SampleContext: purity, reference genome and sample identifier; immutable
//     once built by NewSampleContext, which rejects purity outside (0,1].
//   - Annotate: interval lookup of every mutation against the sorted segment
//     table, producing AnnotatedMutation values plus QC counters.
//
// Policy:
//
//   - Source records are never mutated; Annotate returns copies.
//   - A mutation without a containing segment is excluded and counted.
//   - Several containing segments (overlapping input) resolve to the first in
//     sort order; the conflict is counted, never fatal.
//   - Mutations failing validation (DP ≤ 0, NV > DP, ...) are excluded and
//     counted as Invalid.
//
// Complexity:
//
//   - Annotate: O(S log S) to sort segments, O(M log S) lookups when segments
//     do not overlap.
package genome
