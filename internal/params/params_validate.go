package params

import (
	paramserrors "go-payrun/internal/params/errors"
)

// Validate checks the statutory invariants before any calculation runs:
// floor <= ceiling, at least one bracket, the first bracket anchored at
// zero, brackets sorted ascending and contiguous (next lower bound equals
// previous upper bound), and only the final bracket unbounded. Malformed
// parameters fail the whole run, so this is enforced at the load boundary
// rather than inside arithmetic.
//
// The zero anchor matters: the bracket walk consumes widths from the
// bottom of the table, so a table starting above zero would tax the first
// lira at the first bracket's rate instead of leaving it untaxed.
func (p YearParameters) Validate() error {
	if p.ContributionBaseFloor.GreaterThan(p.ContributionBaseCeiling) {
		return paramserrors.ErrInvalidClampWindow
	}

	if len(p.Brackets) == 0 {
		return paramserrors.ErrEmptyBracketTable
	}

	if !p.Brackets[0].LowerBound.IsZero() {
		return paramserrors.ErrBracketTableNotContiguous
	}

	for i, b := range p.Brackets {
		last := i == len(p.Brackets)-1

		if b.Unbounded() {
			if !last {
				return paramserrors.ErrBracketTableNotContiguous
			}
			continue
		}

		if !b.UpperBound.GreaterThan(b.LowerBound) {
			return paramserrors.ErrBracketTableNotContiguous
		}

		if last {
			return paramserrors.ErrBracketTableNotTerminated
		}

		next := p.Brackets[i+1]
		if !next.LowerBound.Equal(*b.UpperBound) {
			return paramserrors.ErrBracketTableNotContiguous
		}
	}

	return nil
}
