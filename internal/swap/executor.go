package swap

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"

	"github.com/qynonyq/autoswap/internal/chain"
	"github.com/qynonyq/autoswap/internal/structures"
	"github.com/qynonyq/autoswap/internal/telemetry"
)

type Chain interface {
	Account() common.Address
	EstimateGas(ctx context.Context, call chain.Call) (uint64, error)
	StaticCall(ctx context.Context, call chain.Call) ([]byte, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	Balance(ctx context.Context) (*big.Int, error)
	Send(ctx context.Context, call chain.Call, gasLimit uint64) (*types.Transaction, error)
	WaitForConfirmation(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

type Config struct {
	Router              common.Address
	Deadline            time.Duration
	ConfirmationTimeout time.Duration
}

type Executor struct {
	chain Chain
	cfg   Config
	now   func() time.Time
}

// Estimate is the candidate chosen for submission.
type Estimate struct {
	Candidate
	Gas      uint64
	GasLimit uint64
}

type Result struct {
	Method   string
	Hash     common.Hash
	GasLimit uint64
	Receipt  *types.Receipt
}

func NewExecutor(c Chain, cfg Config) *Executor {
	return &Executor{
		chain: c,
		cfg:   cfg,
		now:   time.Now,
	}
}

// Estimate tries the router calls in order and returns the first one the
// node can estimate. When all fail, the error of the last one is returned,
// classified by dry running the call.
func (e *Executor) Estimate(ctx context.Context, trade *structures.Trade, slippage structures.Percent) (Estimate, error) {
	candidates, err := Calls(trade, Options{
		Router:    e.cfg.Router,
		Recipient: e.chain.Account(),
		Slippage:  slippage,
		Deadline:  e.now().Add(e.cfg.Deadline),
	})
	if err != nil {
		return Estimate{}, err
	}

	var lastErr error
	for _, c := range candidates {
		gas, err := e.chain.EstimateGas(ctx, c.Call)
		if err == nil {
			return Estimate{
				Candidate: c,
				Gas:       gas,
				GasLimit:  chain.WithGasMargin(gas),
			}, nil
		}

		lastErr = e.diagnose(ctx, c, err)
		logrus.Debugf("[SWAP] %s not estimable: %s", c.Method, lastErr)
	}

	return Estimate{}, lastErr
}

func (e *Executor) diagnose(ctx context.Context, c Candidate, estimateErr error) error {
	_, err := e.chain.StaticCall(ctx, c.Call)
	if err == nil {
		return fmt.Errorf("%w: %s: %s", ErrUnexpectedEstimate, c.Method, estimateErr)
	}

	return classifyRevert(chain.RevertReason(err))
}

// Execute estimates, checks that the wallet can pay for gas, submits the
// swap and waits for it to be mined.
func (e *Executor) Execute(ctx context.Context, trade *structures.Trade, slippage structures.Percent) (Result, error) {
	est, err := e.Estimate(ctx, trade, slippage)
	if err != nil {
		telemetry.SwapsCounter.WithLabelValues("estimate_failed").Inc()
		return Result{}, err
	}
	res := Result{Method: est.Method, GasLimit: est.GasLimit}

	if err := e.checkNative(ctx, est); err != nil {
		if errors.Is(err, ErrInsufficientNative) {
			telemetry.SwapsCounter.WithLabelValues("insufficient_native").Inc()
		}
		return res, err
	}

	tx, err := e.chain.Send(ctx, est.Call, est.GasLimit)
	if err != nil {
		telemetry.SwapsCounter.WithLabelValues("send_failed").Inc()
		return res, err
	}
	res.Hash = tx.Hash()
	logrus.Infof("[SWAP] sent %s, tx %s [gas limit=%d]", est.Method, res.Hash, est.GasLimit)

	waitCtx, cancel := context.WithTimeout(ctx, e.cfg.ConfirmationTimeout)
	defer cancel()

	receipt, err := e.chain.WaitForConfirmation(waitCtx, tx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			telemetry.SwapsCounter.WithLabelValues("timeout").Inc()
			return res, fmt.Errorf("%w: %s after %s", ErrConfirmationTimeout, res.Hash, e.cfg.ConfirmationTimeout)
		}
		return res, fmt.Errorf("failed to wait for %s: %w", res.Hash, err)
	}
	res.Receipt = receipt

	if receipt.Status != types.ReceiptStatusSuccessful {
		telemetry.SwapsCounter.WithLabelValues("reverted").Inc()
		return res, fmt.Errorf("%w: %s", ErrTransactionReverted, res.Hash)
	}
	telemetry.SwapsCounter.WithLabelValues("confirmed").Inc()
	logrus.Infof("[SWAP] %s confirmed in block %s [gas used=%d]", res.Hash, receipt.BlockNumber, receipt.GasUsed)

	return res, nil
}

func (e *Executor) checkNative(ctx context.Context, est Estimate) error {
	gasPrice, err := e.chain.GasPrice(ctx)
	if err != nil {
		return fmt.Errorf("failed to get gas price: %w", err)
	}
	balance, err := e.chain.Balance(ctx)
	if err != nil {
		return fmt.Errorf("failed to get native balance: %w", err)
	}

	required := new(big.Int).Mul(new(big.Int).SetUint64(est.GasLimit), gasPrice)
	if est.Call.Value != nil {
		required.Add(required, est.Call.Value)
	}

	if balance.Cmp(required) < 0 {
		return fmt.Errorf("%w: have %s wei, need %s wei", ErrInsufficientNative, balance, required)
	}

	return nil
}
