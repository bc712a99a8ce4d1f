package tokens

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/qynonyq/autoswap/internal/structures"
)

//go:embed tokenlist.json
var defaultListJSON []byte

type (
	tokenList struct {
		Name   string      `json:"name"`
		Tokens []tokenInfo `json:"tokens"`
	}

	tokenInfo struct {
		ChainID  int64  `json:"chainId"`
		Address  string `json:"address"`
		Symbol   string `json:"symbol"`
		Name     string `json:"name"`
		Decimals uint8  `json:"decimals"`
	}
)

// DefaultList returns the embedded tokens known on chainID.
func DefaultList(chainID int64) ([]structures.Token, error) {
	var list tokenList
	if err := json.Unmarshal(defaultListJSON, &list); err != nil {
		return nil, fmt.Errorf("failed to parse token list: %w", err)
	}

	tokens := make([]structures.Token, 0, len(list.Tokens))
	for _, ti := range list.Tokens {
		if ti.ChainID != chainID {
			continue
		}
		if !common.IsHexAddress(ti.Address) {
			return nil, fmt.Errorf("token list %q: invalid address %q", list.Name, ti.Address)
		}
		tokens = append(tokens, structures.NewToken(ti.ChainID, common.HexToAddress(ti.Address), ti.Decimals, ti.Symbol, ti.Name))
	}

	return tokens, nil
}
