package swap

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/qynonyq/autoswap/internal/chain"
	"github.com/qynonyq/autoswap/internal/structures"
)

// Candidate is one router invocation able to execute a trade.
type Candidate struct {
	Method        string
	FeeOnTransfer bool
	Call          chain.Call
}

type Options struct {
	Router    common.Address
	Recipient common.Address
	Slippage  structures.Percent
	Deadline  time.Time
}

const feeOnTransferSuffix = "SupportingFeeOnTransferTokens"

// Calls builds the router calls for an exact input trade, the plain method
// first and its fee-on-transfer variant second.
func Calls(trade *structures.Trade, opts Options) ([]Candidate, error) {
	if trade == nil || trade.Type != structures.ExactInput {
		return nil, fmt.Errorf("%w: only exact input trades are executed", ErrUnsupportedTrade)
	}

	nativeIn := trade.Input.Asset.Type() == structures.AssetNative
	nativeOut := trade.Output.Asset.Type() == structures.AssetNative
	if nativeIn && nativeOut {
		return nil, fmt.Errorf("%w: native to native", ErrUnsupportedTrade)
	}

	path := make([]common.Address, len(trade.Route.Path))
	for i, t := range trade.Route.Path {
		path[i] = t.Address
	}

	amountIn := new(big.Int).Set(trade.Input.Raw)
	amountOutMin := trade.MinimumAmountOut(opts.Slippage).Raw
	deadline := big.NewInt(opts.Deadline.Unix())

	var (
		base  string
		args  []interface{}
		value *big.Int
	)
	switch {
	case nativeIn:
		base = "swapExactETHForTokens"
		args = []interface{}{amountOutMin, path, opts.Recipient, deadline}
		value = amountIn
	case nativeOut:
		base = "swapExactTokensForETH"
		args = []interface{}{amountIn, amountOutMin, path, opts.Recipient, deadline}
	default:
		base = "swapExactTokensForTokens"
		args = []interface{}{amountIn, amountOutMin, path, opts.Recipient, deadline}
	}

	candidates := make([]Candidate, 0, 2)
	for _, method := range []string{base, base + feeOnTransferSuffix} {
		data, err := chain.RouterABI.Pack(method, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to pack %s: %w", method, err)
		}

		candidates = append(candidates, Candidate{
			Method:        method,
			FeeOnTransfer: method != base,
			Call: chain.Call{
				To:    opts.Router,
				Data:  data,
				Value: value,
			},
		})
	}

	return candidates, nil
}
