// Package ccf converts variant allele frequencies into cancer cell
// fractions (CCF) by inferring, per mutation, how many of the tumour copies
// at its locus carry the variant.
//
// What:
//
//   - For each annotated mutation on a karyotype with major ≥ 1, the
//     candidate multiplicities m = 1..major are scored with the binomial
//     likelihood Bin(NV | DP, VAF_m), where VAF_m is the expected clonal VAF
//     of multiplicity m (see peaks.ExpectedVAF).
//   - The posterior over candidates is normalised in log space; the
//     most likely m wins (ties resolve to the smaller m).
//   - CCF = VAF·ploidy / (purity·m), clamped to [0,1].
//   - Confidence = 1 − H/ln(#candidates), where H is the Shannon entropy of
//     the posterior. A single candidate has confidence 1.
//
// Policy:
//
//   - Mutations on karyotypes with major = 0 have no candidate and are
//     counted in Result.Skipped instead of failing the run.
//   - No logging, no panics.
//
// Complexity:
//
//   - O(N·M) for N mutations and maximal major copy number M.
package ccf
