package router

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qynonyq/autoswap/internal/chain"
	"github.com/qynonyq/autoswap/internal/structures"
)

type fakeReserves struct {
	pools map[common.Address][2]*big.Int
}

func (f *fakeReserves) GetReserves(_ context.Context, pair common.Address) (*big.Int, *big.Int, error) {
	r, ok := f.pools[pair]
	if !ok {
		return nil, nil, errors.New("no contract code at given address")
	}
	return r[0], r[1], nil
}

var (
	tokenA = structures.NewToken(chain.ChainGoerli, common.HexToAddress("0x0000000000000000000000000000000000000001"), 18, "AAA", "Token A")
	tokenB = structures.NewToken(chain.ChainGoerli, common.HexToAddress("0x0000000000000000000000000000000000000002"), 18, "BBB", "Token B")
	tokenC = structures.NewToken(chain.ChainGoerli, common.HexToAddress("0x0000000000000000000000000000000000000003"), 18, "CCC", "Token C")
)

func goerli(t *testing.T) chain.Network {
	n, err := chain.NetworkByID(chain.ChainGoerli)
	require.NoError(t, err)
	return n
}

func pool(n chain.Network, a, b structures.Token, r0, r1 int64) (common.Address, [2]*big.Int) {
	return n.PairAddress(a, b), [2]*big.Int{big.NewInt(r0), big.NewInt(r1)}
}

func abcReserves(n chain.Network, withDirect bool) *fakeReserves {
	f := &fakeReserves{pools: map[common.Address][2]*big.Int{}}
	addr, r := pool(n, tokenA, tokenB, 1_000_000, 1_000_000)
	f.pools[addr] = r
	addr, r = pool(n, tokenB, tokenC, 1_000_000, 1_000_000)
	f.pools[addr] = r
	if withDirect {
		addr, r = pool(n, tokenA, tokenC, 100_000, 100_000)
		f.pools[addr] = r
	}
	return f
}

func TestFindBestRoute(t *testing.T) {
	n := goerli(t)
	amountIn := structures.NewAmount(tokenA, big.NewInt(1000))

	t.Run("longer route wins above threshold", func(t *testing.T) {
		f := NewFinder(abcReserves(n, true), Config{
			Network:      n,
			Bases:        Bases{Common: []structures.Token{tokenB}},
			HopThreshold: structures.FromBasisPoints(50),
		})

		trade, err := f.FindBestRoute(context.Background(), amountIn, tokenC)
		require.NoError(t, err)
		assert.Equal(t, 2, trade.Route.Hops())
		assert.Equal(t, "AAA > BBB > CCC", trade.Route.String())
		assert.Equal(t, int64(992), trade.Output.Raw.Int64())
	})

	t.Run("direct route kept below threshold", func(t *testing.T) {
		f := NewFinder(abcReserves(n, true), Config{
			Network:      n,
			Bases:        Bases{Common: []structures.Token{tokenB}},
			HopThreshold: structures.FromBasisPoints(500),
		})

		trade, err := f.FindBestRoute(context.Background(), amountIn, tokenC)
		require.NoError(t, err)
		assert.Equal(t, 1, trade.Route.Hops())
		assert.Equal(t, int64(987), trade.Output.Raw.Int64())
	})

	t.Run("missing pool is skipped", func(t *testing.T) {
		f := NewFinder(abcReserves(n, false), Config{
			Network:      n,
			Bases:        Bases{Common: []structures.Token{tokenB}},
			HopThreshold: structures.FromBasisPoints(500),
		})

		trade, err := f.FindBestRoute(context.Background(), amountIn, tokenC)
		require.NoError(t, err)
		assert.Equal(t, 2, trade.Route.Hops())
	})

	t.Run("no pools", func(t *testing.T) {
		f := NewFinder(&fakeReserves{}, Config{Network: n})

		_, err := f.FindBestRoute(context.Background(), amountIn, tokenC)
		assert.ErrorIs(t, err, ErrNoRoute)
	})

	t.Run("native input routes through weth", func(t *testing.T) {
		reserves := &fakeReserves{pools: map[common.Address][2]*big.Int{}}
		addr, r := pool(n, n.WETH, tokenA, 5_000_000, 5_000_000)
		reserves.pools[addr] = r

		f := NewFinder(reserves, Config{Network: n, HopThreshold: structures.FromBasisPoints(50)})

		trade, err := f.FindBestRoute(context.Background(), structures.NewAmount(structures.Ether, big.NewInt(1000)), tokenA)
		require.NoError(t, err)
		assert.True(t, trade.Input.Asset.Equal(structures.Ether))
		assert.True(t, trade.Route.Path[0].Equal(n.WETH))
		assert.Equal(t, 1, trade.Route.Hops())
	})

	t.Run("same wrapped token", func(t *testing.T) {
		f := NewFinder(&fakeReserves{}, Config{Network: n})

		_, err := f.FindBestRoute(context.Background(), structures.NewAmount(structures.Ether, big.NewInt(1)), n.WETH)
		assert.ErrorIs(t, err, ErrNoRoute)
	})
}

func TestCandidatePairs(t *testing.T) {
	mainnet, err := chain.NetworkByID(chain.ChainMainnet)
	require.NoError(t, err)

	x := structures.NewToken(chain.ChainMainnet, common.HexToAddress("0x00000000000000000000000000000000000000aa"), 18, "X", "")
	y := structures.NewToken(chain.ChainMainnet, common.HexToAddress("0x00000000000000000000000000000000000000bb"), 18, "Y", "")

	f := NewFinder(&fakeReserves{}, Config{Network: mainnet})
	// direct + 6 per side + 15 distinct base pairs
	assert.Len(t, f.candidatePairs(x, y), 28)

	ampl := structures.NewToken(chain.ChainMainnet, mainnetAMPL, 9, "AMPL", "Ampleforth")
	for _, c := range f.candidatePairs(ampl, y) {
		if c.tokenA.Equal(ampl) || c.tokenB.Equal(ampl) {
			other := c.tokenA
			if other.Equal(ampl) {
				other = c.tokenB
			}
			assert.True(t, containsToken(f.cfg.Bases.Custom[mainnetAMPL], other), "AMPL paired with %s", other.Sym)
		}
	}
}

func TestIsBetter(t *testing.T) {
	n := goerli(t)
	amountIn := structures.NewAmount(tokenA, big.NewInt(1000))
	reserves := abcReserves(n, true)

	var pairs []structures.Pair
	for addr, r := range reserves.pools {
		var a, b structures.Token
		switch addr {
		case n.PairAddress(tokenA, tokenB):
			a, b = tokenA, tokenB
		case n.PairAddress(tokenB, tokenC):
			a, b = tokenB, tokenC
		default:
			a, b = tokenA, tokenC
		}
		p, err := structures.NewPair(addr, a, b, r[0], r[1])
		require.NoError(t, err)
		pairs = append(pairs, p)
	}

	direct := bestTradeExactIn(pairs, amountIn, tokenC, n.WETH, 1)
	twoHop := bestTradeExactIn(pairs, amountIn, tokenC, n.WETH, 2)
	require.NotNil(t, direct)
	require.NotNil(t, twoHop)

	better, err := IsBetter(direct, twoHop, structures.ZeroPercent)
	require.NoError(t, err)
	assert.True(t, better)

	better, err = IsBetter(twoHop, direct, structures.ZeroPercent)
	require.NoError(t, err)
	assert.False(t, better)

	better, err = IsBetter(nil, direct, structures.ZeroPercent)
	require.NoError(t, err)
	assert.True(t, better)

	better, err = IsBetter(direct, nil, structures.ZeroPercent)
	require.NoError(t, err)
	assert.False(t, better)

	_, err = IsBetter(nil, nil, structures.ZeroPercent)
	assert.ErrorIs(t, err, ErrNoTrades)

	toB := bestTradeExactIn(pairs, amountIn, tokenB, n.WETH, 1)
	require.NotNil(t, toB)
	_, err = IsBetter(direct, toB, structures.ZeroPercent)
	assert.ErrorIs(t, err, ErrTradesNotComparable)
}
