package structures

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
)

type AssetType string

const (
	AssetNative AssetType = "native"
	AssetToken  AssetType = "token"
)

// Asset is either the chain's native currency or an ERC-20 token.
type Asset interface {
	Type() AssetType
	Symbol() string
	Decimals() uint8
	Equal(other Asset) bool
	asset()
}

// Native struct and methods
type Native struct {
	Sym string
}

// Ether is the native currency of every supported network.
var Ether = Native{Sym: "ETH"}

func (n Native) Type() AssetType { return AssetNative }

func (n Native) Symbol() string { return n.Sym }

func (n Native) Decimals() uint8 { return 18 }

func (n Native) Equal(other Asset) bool {
	_, ok := other.(Native)
	return ok
}

func (Native) asset() {}

// Token struct and methods
type Token struct {
	ChainID int64
	Address common.Address
	Dec     uint8
	Sym     string
	Name    string
}

func NewToken(chainID int64, address common.Address, decimals uint8, symbol, name string) Token {
	return Token{
		ChainID: chainID,
		Address: address,
		Dec:     decimals,
		Sym:     symbol,
		Name:    name,
	}
}

func (t Token) Type() AssetType { return AssetToken }

func (t Token) Symbol() string { return t.Sym }

func (t Token) Decimals() uint8 { return t.Dec }

func (t Token) Equal(other Asset) bool {
	o, ok := other.(Token)
	return ok && o.Address == t.Address
}

// SortsBefore reports whether t is token0 of a pool made of t and other.
func (t Token) SortsBefore(other Token) bool {
	return bytes.Compare(t.Address.Bytes(), other.Address.Bytes()) < 0
}

func (Token) asset() {}

// Wrap maps the native currency to the wrapped token used inside pools.
func Wrap(a Asset, weth Token) Token {
	switch v := a.(type) {
	case Native:
		return weth
	case Token:
		return v
	default:
		panic("unknown asset type")
	}
}
