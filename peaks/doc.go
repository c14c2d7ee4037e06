// Package peaks quality-controls copy-number segments and purity by
// comparing the allele-frequency peaks expected for each karyotype with the
// peaks observed in the data.
//
// What:
//
//   - ExpectedVAF(p, major, minor, m) = m·p / (p·(major+minor) + 2·(1−p)),
//     the VAF of a clonal mutation present on m of the tumour copies.
//   - Density: Gaussian kernel density estimate over observed VAFs on a fixed
//     grid over [0,1]; local maxima are refined by parabolic interpolation.
//   - MatchClosest: greedy minimal-distance matching; every expected peak is
//     claimed by at most one empirical peak and vice versa.
//   - Detect: per-karyotype discordance (mean |residual|), global score
//     weighted by mutation count, and a pass/fail call against a threshold.
//
// Policy:
//
//   - QC is advisory. A failing report never stops downstream stages.
//   - Karyotypes with zero total copy number or zero major copies cannot
//     carry a clonal peak and are skipped with a warning.
//   - Karyotypes with fewer than Options.MinMutations mutations are skipped.
//
// Complexity:
//
//   - Density: O(G·N) for G grid points and N mutations of one karyotype.
//   - MatchClosest: O(P·E·log(P·E)).
package peaks
