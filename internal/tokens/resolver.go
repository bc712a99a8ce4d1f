package tokens

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/qynonyq/autoswap/internal/chain"
	"github.com/qynonyq/autoswap/internal/storage"
	"github.com/qynonyq/autoswap/internal/structures"
)

const cacheSize = 256

var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrUnsupportedToken = errors.New("token is not supported")
)

type MetadataReader interface {
	TokenMetadata(ctx context.Context, token common.Address) (chain.TokenMetadata, error)
}

type Store interface {
	Get(ctx context.Context, chainID int64, address string) (*storage.Token, error)
	Save(ctx context.Context, t *storage.Token) error
}

// Resolver maps a symbol or an address to an asset of one chain.
type Resolver struct {
	chainID     int64
	bySymbol    map[string]structures.Token
	byAddress   map[common.Address]structures.Token
	unsupported map[common.Address]struct{}
	reader      MetadataReader
	store       Store
	cache       *lru.Cache[common.Address, structures.Token]
}

// NewResolver builds a resolver over the embedded token list. store may be
// nil, in which case fetched metadata lives only in memory.
func NewResolver(chainID int64, reader MetadataReader, store Store, unsupported []string) (*Resolver, error) {
	list, err := DefaultList(chainID)
	if err != nil {
		return nil, err
	}

	cache, err := lru.New[common.Address, structures.Token](cacheSize)
	if err != nil {
		return nil, err
	}

	r := &Resolver{
		chainID:     chainID,
		bySymbol:    make(map[string]structures.Token, len(list)),
		byAddress:   make(map[common.Address]structures.Token, len(list)),
		unsupported: make(map[common.Address]struct{}, len(unsupported)),
		reader:      reader,
		store:       store,
		cache:       cache,
	}

	for _, t := range list {
		r.bySymbol[strings.ToUpper(t.Sym)] = t
		r.byAddress[t.Address] = t
	}

	for _, a := range unsupported {
		if !common.IsHexAddress(a) {
			return nil, fmt.Errorf("invalid unsupported token address %q", a)
		}
		r.unsupported[common.HexToAddress(a)] = struct{}{}
	}

	return r, nil
}

func (r *Resolver) Resolve(ctx context.Context, symbolOrAddress string) (structures.Asset, error) {
	id := strings.TrimSpace(symbolOrAddress)

	if !common.IsHexAddress(id) {
		symbol := strings.ToUpper(id)
		if symbol == structures.Ether.Symbol() {
			return structures.Ether, nil
		}

		t, ok := r.bySymbol[symbol]
		if !ok {
			logrus.Warnf("[TOKENS] not found token %q", id)
			return nil, fmt.Errorf("%w: %s", ErrTokenNotFound, id)
		}
		return r.checkSupported(t)
	}

	t, err := r.byAddr(ctx, common.HexToAddress(id))
	if err != nil {
		return nil, err
	}

	return r.checkSupported(t)
}

func (r *Resolver) checkSupported(t structures.Token) (structures.Asset, error) {
	if _, ok := r.unsupported[t.Address]; ok {
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedToken, t.Sym, t.Address)
	}
	return t, nil
}

func (r *Resolver) byAddr(ctx context.Context, address common.Address) (structures.Token, error) {
	if t, ok := r.byAddress[address]; ok {
		return t, nil
	}
	if t, ok := r.cache.Get(address); ok {
		return t, nil
	}

	if r.store != nil {
		stored, err := r.store.Get(ctx, r.chainID, address.Hex())
		switch {
		case err == nil:
			t := structures.NewToken(r.chainID, address, stored.Decimals, stored.Symbol, stored.Name)
			r.cache.Add(address, t)
			return t, nil
		case errors.Is(err, storage.ErrNotFound):
		default:
			logrus.Errorf("[TOKENS] failed to read token store: %s", err)
		}
	}

	md, err := r.reader.TokenMetadata(ctx, address)
	if err != nil {
		logrus.Warnf("[TOKENS] not found token %s: %s", address, err)
		return structures.Token{}, fmt.Errorf("%w: %s: %s", ErrTokenNotFound, address, err)
	}

	t := structures.NewToken(r.chainID, address, md.Decimals, md.Symbol, md.Name)
	r.cache.Add(address, t)
	logrus.Infof("[TOKENS] fetched %s [%s] decimals=%d", t.Sym, address, t.Dec)

	if r.store != nil {
		err := r.store.Save(ctx, &storage.Token{
			ChainID:   r.chainID,
			Address:   address.Hex(),
			Symbol:    md.Symbol,
			Name:      md.Name,
			Decimals:  md.Decimals,
			FetchedAt: time.Now(),
		})
		if err != nil {
			logrus.Errorf("[TOKENS] %s", err)
		}
	}

	return t, nil
}
