package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoContract     = errors.New("no contract at address")
	ErrUnexpectedData = errors.New("unexpected contract response")
)

// Call is a contract invocation: ABI packed input sent to To with Value wei.
type Call struct {
	To    common.Address
	Data  []byte
	Value *big.Int
}

type TokenMetadata struct {
	Symbol   string
	Name     string
	Decimals uint8
}

// Client wraps an RPC connection and the signing account.
type Client struct {
	eth     *ethclient.Client
	key     *ecdsa.PrivateKey
	account common.Address
	chainID *big.Int
	signer  types.Signer
}

func Dial(ctx context.Context, rpcURL, privateKey string) (*Client, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rpc: %w", err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}

	c := &Client{
		eth:     eth,
		key:     key,
		account: crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
		signer:  types.LatestSignerForChainID(chainID),
	}
	logrus.Infof("[CHAIN] connected to chain %s as %s", chainID, c.account)

	return c, nil
}

func (c *Client) Close() {
	c.eth.Close()
}

func (c *Client) Account() common.Address {
	return c.account
}

func (c *Client) ChainID() int64 {
	return c.chainID.Int64()
}

func (c *Client) msg(call Call) ethereum.CallMsg {
	to := call.To
	return ethereum.CallMsg{
		From:  c.account,
		To:    &to,
		Value: call.Value,
		Data:  call.Data,
	}
}

func (c *Client) view(ctx context.Context, to common.Address, contract abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{From: c.account, To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s on %s: %w", method, to, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoContract, to)
	}

	values, err := contract.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", method, err)
	}

	return values, nil
}

func (c *Client) viewBig(ctx context.Context, to common.Address, contract abi.ABI, method string, args ...interface{}) (*big.Int, error) {
	values, err := c.view(ctx, to, contract, method, args...)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: empty %s", ErrUnexpectedData, method)
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: %s returned %T", ErrUnexpectedData, method, values[0])
	}
	return v, nil
}

// GetReserves returns the pool reserves in token0/token1 order.
func (c *Client) GetReserves(ctx context.Context, pair common.Address) (*big.Int, *big.Int, error) {
	values, err := c.view(ctx, pair, PairABI, "getReserves")
	if err != nil {
		return nil, nil, err
	}
	if len(values) < 2 {
		return nil, nil, fmt.Errorf("%w: getReserves returned %d values", ErrUnexpectedData, len(values))
	}

	reserve0, ok0 := values[0].(*big.Int)
	reserve1, ok1 := values[1].(*big.Int)
	if !ok0 || !ok1 {
		return nil, nil, fmt.Errorf("%w: getReserves types %T, %T", ErrUnexpectedData, values[0], values[1])
	}

	return reserve0, reserve1, nil
}

func (c *Client) EstimateGas(ctx context.Context, call Call) (uint64, error) {
	return c.eth.EstimateGas(ctx, c.msg(call))
}

// StaticCall executes call against the latest state without sending a
// transaction.
func (c *Client) StaticCall(ctx context.Context, call Call) ([]byte, error) {
	return c.eth.CallContract(ctx, c.msg(call), nil)
}

func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	return c.eth.SuggestGasPrice(ctx)
}

// Send signs call with the account key and broadcasts it.
func (c *Client) Send(ctx context.Context, call Call, gasLimit uint64) (*types.Transaction, error) {
	nonce, err := c.eth.PendingNonceAt(ctx, c.account)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	value := call.Value
	if value == nil {
		value = new(big.Int)
	}
	to := call.To

	tx, err := types.SignNewTx(c.key, c.signer, &types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &to,
		Value:    value,
		Data:     call.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.eth.SendTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}
	logrus.Debugf("[CHAIN] sent tx %s [nonce=%d] [gas=%d]", tx.Hash(), nonce, gasLimit)

	return tx, nil
}

// WaitForConfirmation blocks until tx is mined or ctx is done.
func (c *Client) WaitForConfirmation(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return bind.WaitMined(ctx, c.eth, tx)
}

func (c *Client) Balance(ctx context.Context) (*big.Int, error) {
	return c.eth.BalanceAt(ctx, c.account, nil)
}

func (c *Client) TokenBalance(ctx context.Context, token common.Address) (*big.Int, error) {
	return c.viewBig(ctx, token, ERC20ABI, "balanceOf", c.account)
}

func (c *Client) Allowance(ctx context.Context, token, spender common.Address) (*big.Int, error) {
	return c.viewBig(ctx, token, ERC20ABI, "allowance", c.account, spender)
}

func (c *Client) TokenMetadata(ctx context.Context, token common.Address) (TokenMetadata, error) {
	values, err := c.view(ctx, token, ERC20ABI, "decimals")
	if err != nil {
		return TokenMetadata{}, err
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return TokenMetadata{}, fmt.Errorf("%w: decimals returned %T", ErrUnexpectedData, values[0])
	}

	md := TokenMetadata{Decimals: decimals}

	// symbol and name are optional in ERC-20
	if values, err := c.view(ctx, token, ERC20ABI, "symbol"); err == nil {
		md.Symbol, _ = values[0].(string)
	}
	if values, err := c.view(ctx, token, ERC20ABI, "name"); err == nil {
		md.Name, _ = values[0].(string)
	}

	return md, nil
}
