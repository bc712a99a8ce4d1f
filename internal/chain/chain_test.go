package chain

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qynonyq/autoswap/internal/structures"
)

func TestPairAddress_USDCWETH(t *testing.T) {
	n, err := NetworkByID(ChainMainnet)
	require.NoError(t, err)

	usdc := structures.NewToken(ChainMainnet, common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), 6, "USDC", "USD Coin")

	want := common.HexToAddress("0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc")
	assert.Equal(t, want, n.PairAddress(usdc, n.WETH))
	assert.Equal(t, want, n.PairAddress(n.WETH, usdc))
}

func TestNetworkByID_Unknown(t *testing.T) {
	_, err := NetworkByID(1337)
	assert.ErrorIs(t, err, ErrUnknownNetwork)
}

func TestWithGasMargin(t *testing.T) {
	assert.Equal(t, uint64(110), WithGasMargin(100))
	assert.Equal(t, uint64(110001), WithGasMargin(100001))
	assert.Equal(t, uint64(9), WithGasMargin(9))
	assert.Equal(t, uint64(0), WithGasMargin(0))
}

type dataError struct {
	msg  string
	data interface{}
}

func (e dataError) Error() string          { return e.msg }
func (e dataError) ErrorData() interface{} { return e.data }

func encodeRevert(t *testing.T, reason string) string {
	t.Helper()
	stringType, err := abi.NewType("string", "", nil)
	require.NoError(t, err)

	packed, err := abi.Arguments{{Type: stringType}}.Pack(reason)
	require.NoError(t, err)

	selector := crypto.Keccak256([]byte("Error(string)"))[:4]
	return hexutil.Encode(append(selector, packed...))
}

func TestRevertReason(t *testing.T) {
	reason := "UniswapV2Router: INSUFFICIENT_OUTPUT_AMOUNT"

	err := dataError{msg: "execution reverted", data: encodeRevert(t, reason)}
	assert.Equal(t, reason, RevertReason(err))

	assert.Equal(t, "TransferHelper: TRANSFER_FROM_FAILED",
		RevertReason(errors.New("execution reverted: TransferHelper: TRANSFER_FROM_FAILED")))

	assert.Equal(t, "out of gas", RevertReason(errors.New("out of gas")))
	assert.Equal(t, "", RevertReason(nil))
}

func TestABIs(t *testing.T) {
	for _, m := range []string{
		"swapExactETHForTokens",
		"swapExactETHForTokensSupportingFeeOnTransferTokens",
		"swapExactTokensForETH",
		"swapExactTokensForETHSupportingFeeOnTransferTokens",
		"swapExactTokensForTokens",
		"swapExactTokensForTokensSupportingFeeOnTransferTokens",
	} {
		_, ok := RouterABI.Methods[m]
		assert.True(t, ok, m)
	}
	_, ok := PairABI.Methods["getReserves"]
	assert.True(t, ok)
	_, ok = ERC20ABI.Methods["approve"]
	assert.True(t, ok)
}
