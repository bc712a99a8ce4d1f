package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/qynonyq/autoswap/internal/chain"
	"github.com/qynonyq/autoswap/internal/structures"
)

var ErrNoRoute = errors.New("no route found")

type Config struct {
	Network chain.Network
	Bases   Bases
	// MaxHops is clamped to [1, structures.MaxHops].
	MaxHops int
	// HopThreshold is the minimum price improvement a longer route must
	// offer over a shorter one to be preferred.
	HopThreshold structures.Percent
}

type Finder struct {
	reader ReservesReader
	cfg    Config
}

func NewFinder(reader ReservesReader, cfg Config) *Finder {
	if cfg.MaxHops <= 0 || cfg.MaxHops > structures.MaxHops {
		cfg.MaxHops = structures.MaxHops
	}
	if cfg.Bases.Common == nil {
		cfg.Bases = DefaultBases(cfg.Network)
	}

	return &Finder{
		reader: reader,
		cfg:    cfg,
	}
}

// FindBestRoute quotes amountIn against every pool reachable through the
// base tokens and returns the best exact-input trade into output. Routes
// with more hops win only when they improve the price by HopThreshold.
func (f *Finder) FindBestRoute(ctx context.Context, amountIn structures.AssetAmount, output structures.Asset) (*structures.Trade, error) {
	tokenIn := structures.Wrap(amountIn.Asset, f.cfg.Network.WETH)
	tokenOut := structures.Wrap(output, f.cfg.Network.WETH)

	if tokenIn.Equal(tokenOut) {
		return nil, fmt.Errorf("%w: %s and %s trade through the same token", ErrNoRoute, amountIn.Asset.Symbol(), output.Symbol())
	}
	if amountIn.IsZero() {
		return nil, fmt.Errorf("%w: zero input amount", ErrNoRoute)
	}

	candidates := f.candidatePairs(tokenIn, tokenOut)
	pairs, err := f.fetchPairs(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pairs: %w", err)
	}
	logrus.Debugf("[ROUTE] %d of %d candidate pools have liquidity", len(pairs), len(candidates))

	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: no pools for %s > %s", ErrNoRoute, amountIn.Asset.Symbol(), output.Symbol())
	}

	var best *structures.Trade
	for hops := 1; hops <= f.cfg.MaxHops; hops++ {
		current := bestTradeExactIn(pairs, amountIn, output, f.cfg.Network.WETH, hops)

		better, err := IsBetter(best, current, f.cfg.HopThreshold)
		if err != nil {
			if errors.Is(err, ErrNoTrades) {
				continue
			}
			return nil, err
		}
		if better {
			best = current
		}
	}

	if best == nil {
		return nil, fmt.Errorf("%w: %s > %s", ErrNoRoute, amountIn.Asset.Symbol(), output.Symbol())
	}

	logrus.Debugf("[ROUTE] best route %s, out %s", best.Route, best.Output)

	return best, nil
}
