// Package ratios implements profitability, leverage, and efficiency ratio
// analysis over a per-period financial dataset, including the DuPont
// decomposition of return on equity.
//
// The engine is a pure function over its inputs: identical datasets always
// produce identical analyses, nothing is cached between calls, and no
// randomness is involved. A zero or negative denominator is not an error —
// by policy the affected ratio resolves to 0 so downstream summaries stay
// usable even for degenerate balance sheets.
package ratios
