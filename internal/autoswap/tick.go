package autoswap

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/qynonyq/autoswap/internal/approval"
	"github.com/qynonyq/autoswap/internal/router"
	"github.com/qynonyq/autoswap/internal/structures"
	"github.com/qynonyq/autoswap/internal/swap"
	"github.com/qynonyq/autoswap/internal/telemetry"
)

var ErrInsufficientInput = errors.New("insufficient input balance")

type Outcome string

const (
	OutcomeNoRoute           Outcome = "no_route"
	OutcomeNotTriggered      Outcome = "not_triggered"
	OutcomeInsufficientInput Outcome = "insufficient_input"
	OutcomeApprovalFailed    Outcome = "approval_failed"
	OutcomeInsufficientGas   Outcome = "insufficient_native"
	OutcomeSwapFailed        Outcome = "swap_failed"
	OutcomeSwapped           Outcome = "swapped"
	OutcomeError             Outcome = "error"
)

type balances struct {
	native *big.Int
	input  *big.Int
	output *big.Int
}

// report is everything learned during one tick.
type report struct {
	outcome   Outcome
	trade     *structures.Trade
	price     decimal.Decimal
	balances  balances
	result    swap.Result
	err       error
	sinceLast time.Duration
	duration  time.Duration
}

func (b *Bot) tick(ctx context.Context) {
	start := b.now()

	var sinceLast time.Duration
	if !b.lastTick.IsZero() {
		sinceLast = start.Sub(b.lastTick)
	}
	b.lastTick = start

	r := b.evaluate(ctx)
	r.sinceLast = sinceLast
	r.duration = b.now().Sub(start)

	telemetry.TicksCounter.WithLabelValues(string(r.outcome)).Inc()
	telemetry.TickDurationHistogram.Observe(r.duration.Seconds())
	if r.trade != nil {
		telemetry.LastExecutionPriceGauge.Set(r.trade.ExecutionPrice().InexactFloat64())
	}

	b.logSummary(r)
}

func (b *Bot) evaluate(ctx context.Context) report {
	p := b.policy

	trade, err := b.deps.Finder.FindBestRoute(ctx, p.AmountPerTurn, p.Output)
	if err != nil {
		if errors.Is(err, router.ErrNoRoute) {
			return report{outcome: OutcomeNoRoute, err: err}
		}
		return report{outcome: OutcomeError, err: err}
	}

	r := report{trade: trade, price: p.Price(trade)}
	if !p.Triggered(r.price) {
		r.outcome = OutcomeNotTriggered
		return r
	}
	logrus.Infof("[BOT] price %s crossed limit %s", r.price, p.LimitPrice)

	r.balances, err = b.readBalances(ctx)
	if err != nil {
		r.outcome, r.err = OutcomeError, err
		return r
	}

	if r.balances.input.Cmp(p.AmountPerTurn.Raw) < 0 {
		r.outcome = OutcomeInsufficientInput
		r.err = fmt.Errorf("%w: have %s, need %s", ErrInsufficientInput,
			structures.NewAmount(p.Input, r.balances.input), p.AmountPerTurn)
		return r
	}

	if err := b.ensureApproved(ctx); err != nil {
		r.outcome, r.err = OutcomeApprovalFailed, err
		return r
	}

	r.result, err = b.deps.Executor.Execute(ctx, trade, p.Slippage)
	switch {
	case errors.Is(err, swap.ErrInsufficientNative):
		r.outcome, r.err = OutcomeInsufficientGas, err
	case err != nil:
		r.outcome, r.err = OutcomeSwapFailed, err
	default:
		r.outcome = OutcomeSwapped
	}

	return r
}

// ensureApproved re-reads the allowance when approving fails, since the
// transaction may have landed even though waiting for it did not succeed.
func (b *Bot) ensureApproved(ctx context.Context) error {
	state, err := b.deps.Approver.EnsureApproved(ctx, b.policy.AmountPerTurn, b.deps.Spender)
	if err == nil && state == approval.StateApproved {
		return nil
	}
	logrus.Warnf("[BOT] approval of %s not confirmed: %v", b.policy.Input.Symbol(), err)

	state, serr := b.deps.Approver.State(ctx, b.policy.AmountPerTurn, b.deps.Spender)
	if serr == nil && state == approval.StateApproved {
		return nil
	}
	if err == nil {
		err = serr
	}
	if err == nil {
		err = fmt.Errorf("%w: allowance state %s", approval.ErrApprovalFailed, state)
	}

	return err
}

func (b *Bot) readBalances(ctx context.Context) (balances, error) {
	native, err := b.deps.Wallet.Balance(ctx)
	if err != nil {
		return balances{}, fmt.Errorf("failed to read native balance: %w", err)
	}

	input, err := b.balanceOf(ctx, b.policy.Input, native)
	if err != nil {
		return balances{}, err
	}
	output, err := b.balanceOf(ctx, b.policy.Output, native)
	if err != nil {
		return balances{}, err
	}

	return balances{native: native, input: input, output: output}, nil
}

func (b *Bot) balanceOf(ctx context.Context, a structures.Asset, native *big.Int) (*big.Int, error) {
	token, ok := a.(structures.Token)
	if !ok {
		return native, nil
	}

	v, err := b.deps.Wallet.TokenBalance(ctx, token.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s balance: %w", token.Sym, err)
	}
	return v, nil
}

func (b *Bot) logSummary(r report) {
	p := b.policy
	fields := logrus.Fields{
		"outcome":         r.outcome,
		"side":            p.Side,
		"limit":           p.LimitPrice.String(),
		"since_last_tick": r.sinceLast.Round(time.Millisecond).String(),
		"duration":        r.duration.Round(time.Millisecond).String(),
	}

	if t := r.trade; t != nil {
		fields["route"] = t.Route.String()
		fields["input"] = t.Input.String()
		fields["output"] = t.Output.String()
		fields["price"] = r.price.String()
		fields["execution_price"] = t.ExecutionPrice().String()
		fields["inverted_price"] = t.InvertedPrice().String()
		fields["price_impact"] = pct(t.PriceImpact())
		fields["lp_fee"] = pct(t.RealizedLPFee())
		fields["min_received"] = t.MinimumAmountOut(p.Slippage).String()
		fields["slippage"] = p.Slippage.String()
	}

	if r.balances.native != nil {
		fields["native_balance"] = structures.NewAmount(structures.Ether, r.balances.native).String()
		fields["input_balance"] = structures.NewAmount(p.Input, r.balances.input).String()
		fields["output_balance"] = structures.NewAmount(p.Output, r.balances.output).String()
	}

	if r.result.Method != "" {
		fields["method"] = r.result.Method
		fields["gas_limit"] = r.result.GasLimit
	}
	if r.result.Hash != (common.Hash{}) {
		fields["tx"] = r.result.Hash.Hex()
	}

	entry := logrus.WithFields(fields)
	if r.err != nil {
		entry = entry.WithError(r.err)
	}

	switch r.outcome {
	case OutcomeSwapped:
		entry.Info("[BOT] swap executed")
	case OutcomeInsufficientInput, OutcomeInsufficientGas, OutcomeNoRoute:
		entry.Warn("[BOT] tick skipped")
	case OutcomeApprovalFailed, OutcomeSwapFailed, OutcomeError:
		entry.Error("[BOT] tick failed")
	default:
		entry.Info("[BOT] tick")
	}
}

func pct(d decimal.Decimal) string {
	return d.Shift(2).StringFixed(2) + "%"
}
