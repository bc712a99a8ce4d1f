package autoswap

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"gopkg.in/tomb.v2"

	"github.com/qynonyq/autoswap/internal/approval"
	"github.com/qynonyq/autoswap/internal/structures"
	"github.com/qynonyq/autoswap/internal/swap"
)

type RouteFinder interface {
	FindBestRoute(ctx context.Context, amountIn structures.AssetAmount, output structures.Asset) (*structures.Trade, error)
}

type Approver interface {
	State(ctx context.Context, amount structures.AssetAmount, spender common.Address) (approval.State, error)
	EnsureApproved(ctx context.Context, amount structures.AssetAmount, spender common.Address) (approval.State, error)
}

type Executor interface {
	Execute(ctx context.Context, trade *structures.Trade, slippage structures.Percent) (swap.Result, error)
}

type Wallet interface {
	Balance(ctx context.Context) (*big.Int, error)
	TokenBalance(ctx context.Context, token common.Address) (*big.Int, error)
}

type Deps struct {
	Finder   RouteFinder
	Approver Approver
	Executor Executor
	Wallet   Wallet
	// Spender is the router allowed to pull the input token.
	Spender common.Address
}

// Bot evaluates a Policy on a fixed period and swaps when the price
// crosses the limit.
type Bot struct {
	policy Policy
	deps   Deps

	mu      sync.Mutex
	t       tomb.Tomb
	started bool

	lastTick time.Time
	now      func() time.Time
}

func NewBot(policy Policy, deps Deps) (*Bot, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	return &Bot{
		policy: policy,
		deps:   deps,
		now:    time.Now,
	}, nil
}

// Run ticks until Stop is called or ctx is done. A tick is evaluated right
// away, then once per period. Ticks never overlap; ticks missed while one
// is running are dropped.
func (b *Bot) Run(ctx context.Context) error {
	b.mu.Lock()
	if !b.t.Alive() {
		b.mu.Unlock()
		return nil
	}
	b.started = true
	b.t.Go(func() error {
		b.loop(ctx)
		return nil
	})
	b.mu.Unlock()

	return b.t.Wait()
}

func (b *Bot) loop(ctx context.Context) {
	period := b.policy.Period()
	logrus.Infof("[BOT] %s %s for %s every %s, limit %s",
		b.policy.Side, b.policy.AmountPerTurn, b.policy.Output.Symbol(), period, b.policy.LimitPrice)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	b.tick(ctx)
	for {
		select {
		case <-b.t.Dying():
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		b.tick(ctx)

		select {
		case <-ticker.C:
		default:
		}
	}
}

// Stop prevents further ticks and waits for the running one to finish.
func (b *Bot) Stop() error {
	b.mu.Lock()
	b.t.Kill(nil)
	started := b.started
	b.mu.Unlock()

	if !started {
		return nil
	}
	return b.t.Wait()
}
