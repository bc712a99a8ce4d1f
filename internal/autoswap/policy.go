package autoswap

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/qynonyq/autoswap/internal/structures"
)

type Side string

const (
	// SideBuy triggers when the input paid per unit of output drops to the limit.
	SideBuy Side = "buy"
	// SideSell triggers when the output received per unit of input reaches the limit.
	SideSell Side = "sell"
)

var ErrInvalidPolicy = errors.New("invalid policy")

// Policy is the immutable trading rule evaluated on every tick.
type Policy struct {
	Input              structures.Asset
	Output             structures.Asset
	AmountPerTurn      structures.AssetAmount
	LimitPrice         decimal.Decimal
	Side               Side
	Slippage           structures.Percent
	FrequencyPerMinute int
}

func (p Policy) Validate() error {
	switch {
	case p.Input == nil || p.Output == nil:
		return fmt.Errorf("%w: input and output are required", ErrInvalidPolicy)
	case p.Input.Equal(p.Output):
		return fmt.Errorf("%w: input and output are both %s", ErrInvalidPolicy, p.Input.Symbol())
	case p.AmountPerTurn.Raw == nil || p.AmountPerTurn.Raw.Sign() <= 0:
		return fmt.Errorf("%w: amount per turn must be positive", ErrInvalidPolicy)
	case !p.AmountPerTurn.Asset.Equal(p.Input):
		return fmt.Errorf("%w: amount per turn is not in %s", ErrInvalidPolicy, p.Input.Symbol())
	case !p.LimitPrice.IsPositive():
		return fmt.Errorf("%w: limit price must be positive", ErrInvalidPolicy)
	case p.Side != SideBuy && p.Side != SideSell:
		return fmt.Errorf("%w: side %q", ErrInvalidPolicy, p.Side)
	case p.FrequencyPerMinute < 1:
		return fmt.Errorf("%w: frequency per minute must be at least 1", ErrInvalidPolicy)
	case p.Slippage.Den == nil || p.Slippage.Den.Sign() <= 0 || (p.Slippage.Num != nil && p.Slippage.Num.Sign() < 0):
		return fmt.Errorf("%w: slippage", ErrInvalidPolicy)
	}
	return nil
}

// Period is the time between two ticks, never below a second.
func (p Policy) Period() time.Duration {
	period := time.Duration(60/p.FrequencyPerMinute) * time.Second
	if period < time.Second {
		return time.Second
	}
	return period
}

// Price is the trade price the limit is compared against.
func (p Policy) Price(trade *structures.Trade) decimal.Decimal {
	if p.Side == SideSell {
		return trade.ExecutionPrice()
	}
	return trade.InvertedPrice()
}

func (p Policy) Triggered(price decimal.Decimal) bool {
	if !price.IsPositive() {
		return false
	}
	if p.Side == SideSell {
		return price.GreaterThanOrEqual(p.LimitPrice)
	}
	return price.LessThanOrEqual(p.LimitPrice)
}
