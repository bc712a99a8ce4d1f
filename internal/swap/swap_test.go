package swap

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/qynonyq/autoswap/internal/chain"
	"github.com/qynonyq/autoswap/internal/structures"
)

type MockChain struct {
	mock.Mock
}

func (m *MockChain) Account() common.Address {
	return m.Called().Get(0).(common.Address)
}

func (m *MockChain) EstimateGas(ctx context.Context, call chain.Call) (uint64, error) {
	args := m.Called(ctx, call)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockChain) StaticCall(ctx context.Context, call chain.Call) ([]byte, error) {
	args := m.Called(ctx, call)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}

func (m *MockChain) GasPrice(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).(*big.Int)
	return v, args.Error(1)
}

func (m *MockChain) Balance(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).(*big.Int)
	return v, args.Error(1)
}

func (m *MockChain) Send(ctx context.Context, call chain.Call, gasLimit uint64) (*types.Transaction, error) {
	args := m.Called(ctx, call, gasLimit)
	tx, _ := args.Get(0).(*types.Transaction)
	return tx, args.Error(1)
}

func (m *MockChain) WaitForConfirmation(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	args := m.Called(ctx, tx)
	r, _ := args.Get(0).(*types.Receipt)
	return r, args.Error(1)
}

var (
	wallet = common.HexToAddress("0x00000000000000000000000000000000000000Fe")
	tokenX = structures.NewToken(chain.ChainGoerli, common.HexToAddress("0x00000000000000000000000000000000000000aa"), 18, "XXX", "Token X")
	tokenY = structures.NewToken(chain.ChainGoerli, common.HexToAddress("0x00000000000000000000000000000000000000bb"), 18, "YYY", "Token Y")
)

func goerli(t *testing.T) chain.Network {
	n, err := chain.NetworkByID(chain.ChainGoerli)
	require.NoError(t, err)
	return n
}

func newTrade(t *testing.T, n chain.Network, in, out structures.Asset, amount int64) *structures.Trade {
	a, b := structures.Wrap(in, n.WETH), structures.Wrap(out, n.WETH)
	pair, err := structures.NewPair(n.PairAddress(a, b), a, b, big.NewInt(1_000_000), big.NewInt(1_000_000))
	require.NoError(t, err)

	route, err := structures.NewRoute([]structures.Pair{pair}, in, out, n.WETH)
	require.NoError(t, err)

	trade, err := structures.NewExactInTrade(route, structures.NewAmount(in, big.NewInt(amount)))
	require.NoError(t, err)
	return trade
}

func method(name string) interface{} {
	id := chain.RouterABI.Methods[name].ID
	return mock.MatchedBy(func(c chain.Call) bool { return bytes.HasPrefix(c.Data, id) })
}

func TestCallsMethodSelection(t *testing.T) {
	n := goerli(t)
	deadline := time.Unix(1_700_000_000, 0)
	opts := Options{Router: n.Router, Recipient: wallet, Slippage: structures.FromBasisPoints(50), Deadline: deadline}

	cases := []struct {
		name    string
		in, out structures.Asset
		methods []string
		payable bool
	}{
		{"native in", structures.Ether, tokenX, []string{"swapExactETHForTokens", "swapExactETHForTokensSupportingFeeOnTransferTokens"}, true},
		{"native out", tokenX, structures.Ether, []string{"swapExactTokensForETH", "swapExactTokensForETHSupportingFeeOnTransferTokens"}, false},
		{"tokens", tokenX, tokenY, []string{"swapExactTokensForTokens", "swapExactTokensForTokensSupportingFeeOnTransferTokens"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			trade := newTrade(t, n, tc.in, tc.out, 1000)

			calls, err := Calls(trade, opts)
			require.NoError(t, err)
			require.Len(t, calls, 2)

			for i, c := range calls {
				assert.Equal(t, tc.methods[i], c.Method)
				assert.Equal(t, i == 1, c.FeeOnTransfer)
				assert.Equal(t, n.Router, c.Call.To)

				if tc.payable {
					require.NotNil(t, c.Call.Value)
					assert.Equal(t, int64(1000), c.Call.Value.Int64())
				} else {
					assert.Nil(t, c.Call.Value)
				}

				m := chain.RouterABI.Methods[c.Method]
				values, err := m.Inputs.Unpack(c.Call.Data[4:])
				require.NoError(t, err)

				// amountOutMin, path, to, deadline are the trailing arguments
				k := len(values) - 4
				assert.Equal(t, trade.MinimumAmountOut(opts.Slippage).Raw.String(), values[k].(*big.Int).String())
				assert.Equal(t, []common.Address{trade.Route.Path[0].Address, trade.Route.Path[1].Address}, values[k+1].([]common.Address))
				assert.Equal(t, wallet, values[k+2].(common.Address))
				assert.Equal(t, deadline.Unix(), values[k+3].(*big.Int).Int64())
			}
		})
	}
}

func newExecutor(m *MockChain) *Executor {
	e := NewExecutor(m, Config{
		Router:              chain.Router02Address,
		Deadline:            20 * time.Minute,
		ConfirmationTimeout: time.Minute,
	})
	e.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return e
}

func TestExecuteFallsBackToFeeOnTransfer(t *testing.T) {
	n := goerli(t)
	trade := newTrade(t, n, tokenX, tokenY, 1000)
	tx := types.NewTx(&types.LegacyTx{Nonce: 4})

	m := new(MockChain)
	m.On("Account").Return(wallet)
	m.On("EstimateGas", mock.Anything, method("swapExactTokensForTokens")).Return(uint64(0), errors.New("execution reverted"))
	m.On("StaticCall", mock.Anything, method("swapExactTokensForTokens")).
		Return(nil, errors.New("execution reverted: UniswapV2Router: INSUFFICIENT_OUTPUT_AMOUNT"))
	m.On("EstimateGas", mock.Anything, method("swapExactTokensForTokensSupportingFeeOnTransferTokens")).Return(uint64(123_457), nil)
	m.On("GasPrice", mock.Anything).Return(big.NewInt(10), nil)
	m.On("Balance", mock.Anything).Return(big.NewInt(10_000_000), nil)
	// floor(123457 * 1.1)
	m.On("Send", mock.Anything, method("swapExactTokensForTokensSupportingFeeOnTransferTokens"), uint64(135_802)).Return(tx, nil)
	m.On("WaitForConfirmation", mock.Anything, tx).Return(&types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(9)}, nil)

	res, err := newExecutor(m).Execute(context.Background(), trade, structures.FromBasisPoints(50))
	require.NoError(t, err)
	assert.Equal(t, "swapExactTokensForTokensSupportingFeeOnTransferTokens", res.Method)
	assert.Equal(t, uint64(135_802), res.GasLimit)
	assert.Equal(t, tx.Hash(), res.Hash)
	m.AssertExpectations(t)
}

func TestEstimateClassification(t *testing.T) {
	n := goerli(t)
	trade := newTrade(t, n, tokenX, tokenY, 1000)

	cases := []struct {
		name    string
		callErr error
		want    error
	}{
		{"slippage", errors.New("execution reverted: UniswapV2Router: EXCESSIVE_INPUT_AMOUNT"), ErrInsufficientOutput},
		{"approval", errors.New("execution reverted: TransferHelper: TRANSFER_FROM_FAILED"), ErrMissingApproval},
		{"unknown", errors.New("execution reverted: Pausable: paused"), ErrUnknownRevert},
		{"call succeeds", nil, ErrUnexpectedEstimate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := new(MockChain)
			m.On("Account").Return(wallet)
			m.On("EstimateGas", mock.Anything, mock.Anything).Return(uint64(0), errors.New("gas required exceeds allowance"))
			m.On("StaticCall", mock.Anything, mock.Anything).Return([]byte{}, tc.callErr)

			_, err := newExecutor(m).Estimate(context.Background(), trade, structures.FromBasisPoints(50))
			assert.ErrorIs(t, err, tc.want)
			m.AssertNumberOfCalls(t, "EstimateGas", 2)
		})
	}
}

func TestExecuteInsufficientNative(t *testing.T) {
	n := goerli(t)
	trade := newTrade(t, n, structures.Ether, tokenX, 1000)

	m := new(MockChain)
	m.On("Account").Return(wallet)
	m.On("EstimateGas", mock.Anything, method("swapExactETHForTokens")).Return(uint64(100_000), nil)
	m.On("GasPrice", mock.Anything).Return(big.NewInt(10), nil)
	// 110000 * 10 + 1000 value
	m.On("Balance", mock.Anything).Return(big.NewInt(1_100_999), nil)

	_, err := newExecutor(m).Execute(context.Background(), trade, structures.FromBasisPoints(50))
	assert.ErrorIs(t, err, ErrInsufficientNative)
	m.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecuteReceiptFailures(t *testing.T) {
	n := goerli(t)
	trade := newTrade(t, n, tokenX, structures.Ether, 1000)

	setup := func() (*MockChain, *types.Transaction) {
		tx := types.NewTx(&types.LegacyTx{Nonce: 5})
		m := new(MockChain)
		m.On("Account").Return(wallet)
		m.On("EstimateGas", mock.Anything, mock.Anything).Return(uint64(100_000), nil)
		m.On("GasPrice", mock.Anything).Return(big.NewInt(1), nil)
		m.On("Balance", mock.Anything).Return(big.NewInt(1_000_000), nil)
		m.On("Send", mock.Anything, method("swapExactTokensForETH"), uint64(110_000)).Return(tx, nil)
		return m, tx
	}

	t.Run("reverted", func(t *testing.T) {
		m, tx := setup()
		m.On("WaitForConfirmation", mock.Anything, tx).Return(&types.Receipt{Status: types.ReceiptStatusFailed}, nil)

		res, err := newExecutor(m).Execute(context.Background(), trade, structures.FromBasisPoints(50))
		assert.ErrorIs(t, err, ErrTransactionReverted)
		assert.Equal(t, tx.Hash(), res.Hash)
	})

	t.Run("timeout", func(t *testing.T) {
		m, tx := setup()
		m.On("WaitForConfirmation", mock.Anything, tx).Return(nil, context.DeadlineExceeded)

		_, err := newExecutor(m).Execute(context.Background(), trade, structures.FromBasisPoints(50))
		assert.ErrorIs(t, err, ErrConfirmationTimeout)
	})
}
