package chain

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/qynonyq/autoswap/internal/structures"
)

const (
	ChainMainnet int64 = 1
	ChainRopsten int64 = 3
	ChainRinkeby int64 = 4
	ChainGoerli  int64 = 5
	ChainKovan   int64 = 42
)

var ErrUnknownNetwork = errors.New("unknown network")

// Uniswap v2 deployment, identical on every supported network.
var (
	FactoryAddress  = common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f")
	Router02Address = common.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D")
	InitCodeHash    = common.HexToHash("0x96e8ac4277198ff8b6f785478aa9a39f403cb768dd02cbee326c3e7da348845f")
)

type Network struct {
	ChainID      int64
	Name         string
	WETH         structures.Token
	Factory      common.Address
	Router       common.Address
	InitCodeHash common.Hash
}

func weth(chainID int64, address string) structures.Token {
	return structures.NewToken(chainID, common.HexToAddress(address), 18, "WETH", "Wrapped Ether")
}

var networks = map[int64]Network{
	ChainMainnet: {ChainID: ChainMainnet, Name: "mainnet", WETH: weth(ChainMainnet, "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")},
	ChainRopsten: {ChainID: ChainRopsten, Name: "ropsten", WETH: weth(ChainRopsten, "0xc778417E063141139Fce010982780140Aa0cD5Ab")},
	ChainRinkeby: {ChainID: ChainRinkeby, Name: "rinkeby", WETH: weth(ChainRinkeby, "0xc778417E063141139Fce010982780140Aa0cD5Ab")},
	ChainGoerli:  {ChainID: ChainGoerli, Name: "goerli", WETH: weth(ChainGoerli, "0xB4FBF271143F4FBf7B91A5ded31805e42b2208d6")},
	ChainKovan:   {ChainID: ChainKovan, Name: "kovan", WETH: weth(ChainKovan, "0xd0A1E359811322d97991E03f863a0C30C2cF029C")},
}

func NetworkByID(chainID int64) (Network, error) {
	n, ok := networks[chainID]
	if !ok {
		return Network{}, fmt.Errorf("%w: chain id %d", ErrUnknownNetwork, chainID)
	}
	n.Factory = FactoryAddress
	n.Router = Router02Address
	n.InitCodeHash = InitCodeHash
	return n, nil
}

// PairAddress computes the CREATE2 address of the pool for tokenA/tokenB.
func (n Network) PairAddress(tokenA, tokenB structures.Token) common.Address {
	return PairAddress(n.Factory, n.InitCodeHash, tokenA, tokenB)
}

func PairAddress(factory common.Address, initCodeHash common.Hash, tokenA, tokenB structures.Token) common.Address {
	token0, token1 := tokenA, tokenB
	if !tokenA.SortsBefore(tokenB) {
		token0, token1 = tokenB, tokenA
	}
	salt := crypto.Keccak256Hash(token0.Address.Bytes(), token1.Address.Bytes())
	return crypto.CreateAddress2(factory, salt, initCodeHash.Bytes())
}
