package router

import (
	"errors"
	"math/big"

	"github.com/qynonyq/autoswap/internal/structures"
)

var (
	ErrNoTrades            = errors.New("no trades to compare")
	ErrTradesNotComparable = errors.New("trades are not comparable")
)

// IsBetter reports whether candidate beats incumbent by more than minDelta.
// Execution prices are compared by cross multiplication, so no precision is
// lost:
//
//	candidate wins  <=>  incumbent.price * (1 + minDelta) < candidate.price
func IsBetter(incumbent, candidate *structures.Trade, minDelta structures.Percent) (bool, error) {
	switch {
	case incumbent == nil && candidate == nil:
		return false, ErrNoTrades
	case incumbent == nil:
		return true, nil
	case candidate == nil:
		return false, nil
	}

	if incumbent.Type != candidate.Type ||
		!incumbent.Input.Asset.Equal(candidate.Input.Asset) ||
		!incumbent.Output.Asset.Equal(candidate.Output.Asset) {
		return false, ErrTradesNotComparable
	}

	// incumbent.out/incumbent.in * (den+num)/den < candidate.out/candidate.in
	lhs := new(big.Int).Mul(incumbent.Output.Raw, candidate.Input.Raw)
	rhs := new(big.Int).Mul(candidate.Output.Raw, incumbent.Input.Raw)

	if !minDelta.IsZero() {
		lhs.Mul(lhs, new(big.Int).Add(minDelta.Den, minDelta.Num))
		rhs.Mul(rhs, minDelta.Den)
	}

	return lhs.Cmp(rhs) < 0, nil
}
