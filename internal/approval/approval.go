package approval

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"

	"github.com/qynonyq/autoswap/internal/chain"
	"github.com/qynonyq/autoswap/internal/structures"
	"github.com/qynonyq/autoswap/internal/telemetry"
)

type State int

const (
	StateUnknown State = iota
	StateNotApproved
	StateApproved
)

func (s State) String() string {
	switch s {
	case StateNotApproved:
		return "not_approved"
	case StateApproved:
		return "approved"
	default:
		return "unknown"
	}
}

var ErrApprovalFailed = errors.New("approval failed")

type Chain interface {
	Allowance(ctx context.Context, token, spender common.Address) (*big.Int, error)
	EstimateGas(ctx context.Context, call chain.Call) (uint64, error)
	Send(ctx context.Context, call chain.Call, gasLimit uint64) (*types.Transaction, error)
	WaitForConfirmation(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Manager makes sure the wallet allows a spender to pull an ERC-20 amount.
type Manager struct {
	chain Chain
}

func NewManager(c Chain) *Manager {
	return &Manager{chain: c}
}

// State reads the allowance of spender for amount. The native currency
// needs no allowance and is always approved.
func (m *Manager) State(ctx context.Context, amount structures.AssetAmount, spender common.Address) (State, error) {
	token, ok := amount.Asset.(structures.Token)
	if !ok {
		return StateApproved, nil
	}

	allowance, err := m.chain.Allowance(ctx, token.Address, spender)
	if err != nil {
		return StateUnknown, fmt.Errorf("failed to read %s allowance: %w", token.Sym, err)
	}

	if allowance.Cmp(amount.Raw) >= 0 {
		return StateApproved, nil
	}

	return StateNotApproved, nil
}

// EnsureApproved submits an approve transaction when the allowance is
// short and waits for it to be mined. An unlimited allowance is requested
// first; tokens that refuse it are approved for the exact amount.
func (m *Manager) EnsureApproved(ctx context.Context, amount structures.AssetAmount, spender common.Address) (State, error) {
	state, err := m.State(ctx, amount, spender)
	if err != nil {
		return state, err
	}
	if state == StateApproved {
		telemetry.ApprovalsCounter.WithLabelValues("skipped").Inc()
		return state, nil
	}

	token := amount.Asset.(structures.Token)

	if err := m.approve(ctx, token, spender, amount.Raw); err != nil {
		telemetry.ApprovalsCounter.WithLabelValues("failed").Inc()
		return StateNotApproved, err
	}
	telemetry.ApprovalsCounter.WithLabelValues("confirmed").Inc()

	return StateApproved, nil
}

func (m *Manager) approve(ctx context.Context, token structures.Token, spender common.Address, amount *big.Int) error {
	call, gas, err := m.estimate(ctx, token, spender, math.MaxBig256)
	if err != nil {
		logrus.Debugf("[APPROVE] unlimited approval of %s rejected, trying exact amount: %s", token.Sym, err)

		call, gas, err = m.estimate(ctx, token, spender, amount)
		if err != nil {
			return fmt.Errorf("%w: estimate approve %s: %w", ErrApprovalFailed, token.Sym, err)
		}
	}

	tx, err := m.chain.Send(ctx, call, chain.WithGasMargin(gas))
	if err != nil {
		return fmt.Errorf("%w: send approve %s: %w", ErrApprovalFailed, token.Sym, err)
	}
	logrus.Infof("[APPROVE] approving %s for %s, tx %s", token.Sym, spender, tx.Hash())

	receipt, err := m.chain.WaitForConfirmation(ctx, tx)
	if err != nil {
		return fmt.Errorf("%w: wait approve %s: %w", ErrApprovalFailed, tx.Hash(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("%w: approve %s reverted", ErrApprovalFailed, tx.Hash())
	}
	logrus.Infof("[APPROVE] %s approved in block %s", token.Sym, receipt.BlockNumber)

	return nil
}

func (m *Manager) estimate(ctx context.Context, token structures.Token, spender common.Address, amount *big.Int) (chain.Call, uint64, error) {
	data, err := chain.ERC20ABI.Pack("approve", spender, amount)
	if err != nil {
		return chain.Call{}, 0, err
	}

	call := chain.Call{To: token.Address, Data: data}
	gas, err := m.chain.EstimateGas(ctx, call)
	if err != nil {
		return chain.Call{}, 0, err
	}

	return call, gas, nil
}
