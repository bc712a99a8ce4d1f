package router

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/qynonyq/autoswap/internal/chain"
	"github.com/qynonyq/autoswap/internal/structures"
)

// Bases are the intermediary tokens routes may pass through.
type Bases struct {
	Common []structures.Token
	// Custom restricts a token to trade only against the listed bases.
	Custom map[common.Address][]structures.Token
}

var (
	mainnetDAI  = structures.NewToken(chain.ChainMainnet, common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"), 18, "DAI", "Dai Stablecoin")
	mainnetUSDC = structures.NewToken(chain.ChainMainnet, common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), 6, "USDC", "USD Coin")
	mainnetUSDT = structures.NewToken(chain.ChainMainnet, common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"), 6, "USDT", "Tether USD")
	mainnetCOMP = structures.NewToken(chain.ChainMainnet, common.HexToAddress("0xc00e94Cb662C3520282E6f5717214004A7f26888"), 18, "COMP", "Compound")
	mainnetMKR  = structures.NewToken(chain.ChainMainnet, common.HexToAddress("0x9f8F72aA9304c8B593d555F12eF6589cC3A579A2"), 18, "MKR", "Maker")
	mainnetAMPL = common.HexToAddress("0xD46bA6D942050d489DBd938a2C909A5d5039A161")
)

func DefaultBases(n chain.Network) Bases {
	if n.ChainID != chain.ChainMainnet {
		return Bases{Common: []structures.Token{n.WETH}}
	}

	return Bases{
		Common: []structures.Token{n.WETH, mainnetDAI, mainnetUSDC, mainnetUSDT, mainnetCOMP, mainnetMKR},
		Custom: map[common.Address][]structures.Token{
			mainnetAMPL: {mainnetDAI, mainnetUSDC, n.WETH},
		},
	}
}

func (b Bases) allows(tokenA, tokenB structures.Token) bool {
	customA, okA := b.Custom[tokenA.Address]
	customB, okB := b.Custom[tokenB.Address]

	if okA && !containsToken(customA, tokenB) {
		return false
	}
	if okB && !containsToken(customB, tokenA) {
		return false
	}

	return true
}

func containsToken(list []structures.Token, t structures.Token) bool {
	for _, v := range list {
		if v.Equal(t) {
			return true
		}
	}
	return false
}
