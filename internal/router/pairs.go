package router

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/qynonyq/autoswap/internal/structures"
)

const maxParallelReads = 8

type ReservesReader interface {
	GetReserves(ctx context.Context, pair common.Address) (*big.Int, *big.Int, error)
}

type candidate struct {
	address common.Address
	tokenA  structures.Token
	tokenB  structures.Token
}

// candidatePairs lists the pools worth checking for a tokenA -> tokenB trade:
// the direct pool, each side against every base and every base against
// every other base.
func (f *Finder) candidatePairs(tokenA, tokenB structures.Token) []candidate {
	bases := f.cfg.Bases.Common

	combos := make([][2]structures.Token, 0, 1+2*len(bases)+len(bases)*len(bases))
	combos = append(combos, [2]structures.Token{tokenA, tokenB})
	for _, base := range bases {
		combos = append(combos, [2]structures.Token{tokenA, base})
	}
	for _, base := range bases {
		combos = append(combos, [2]structures.Token{tokenB, base})
	}
	for _, base := range bases {
		for _, other := range bases {
			combos = append(combos, [2]structures.Token{base, other})
		}
	}

	seen := make(map[common.Address]struct{}, len(combos))
	out := make([]candidate, 0, len(combos))
	for _, c := range combos {
		if c[0].Equal(c[1]) {
			continue
		}
		if !f.cfg.Bases.allows(c[0], c[1]) {
			continue
		}

		addr := f.cfg.Network.PairAddress(c[0], c[1])
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}

		out = append(out, candidate{address: addr, tokenA: c[0], tokenB: c[1]})
	}

	return out
}

// fetchPairs reads the reserves of all candidates concurrently. Pools that
// do not exist or hold no liquidity are dropped.
func (f *Finder) fetchPairs(ctx context.Context, candidates []candidate) ([]structures.Pair, error) {
	var (
		eg    errgroup.Group
		slots = make([]*structures.Pair, len(candidates))
	)
	eg.SetLimit(maxParallelReads)

	for i, c := range candidates {
		i, c := i, c
		eg.Go(func() error {
			reserve0, reserve1, err := f.reader.GetReserves(ctx, c.address)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logrus.Debugf("[ROUTE] no pool %s/%s [%s]: %s", c.tokenA.Sym, c.tokenB.Sym, c.address, err)
				return nil
			}

			pair, err := structures.NewPair(c.address, c.tokenA, c.tokenB, reserve0, reserve1)
			if err != nil || !pair.HasLiquidity() {
				return nil
			}
			slots[i] = &pair

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	pairs := make([]structures.Pair, 0, len(slots))
	for _, p := range slots {
		if p != nil {
			pairs = append(pairs, *p)
		}
	}

	return pairs, nil
}
