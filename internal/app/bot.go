package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qynonyq/autoswap/internal/approval"
	"github.com/qynonyq/autoswap/internal/autoswap"
	"github.com/qynonyq/autoswap/internal/chain"
	"github.com/qynonyq/autoswap/internal/router"
	"github.com/qynonyq/autoswap/internal/storage"
	"github.com/qynonyq/autoswap/internal/structures"
	"github.com/qynonyq/autoswap/internal/swap"
	"github.com/qynonyq/autoswap/internal/tokens"
)

// NewBot connects to the chain, resolves the configured tokens and builds
// the policy loop. The returned func closes the chain connection.
func (a *App) NewBot(ctx context.Context) (*autoswap.Bot, func(), error) {
	cfg := a.Cfg

	network, err := chain.NetworkByID(cfg.ChainID)
	if err != nil {
		return nil, nil, err
	}

	client, err := chain.Dial(ctx, cfg.RPCURL, cfg.PrivateKey)
	if err != nil {
		return nil, nil, err
	}
	if client.ChainID() != cfg.ChainID {
		client.Close()
		return nil, nil, fmt.Errorf("rpc serves chain %d, config expects %d", client.ChainID(), cfg.ChainID)
	}

	bot, err := a.buildBot(ctx, network, client)
	if err != nil {
		client.Close()
		return nil, nil, err
	}

	return bot, client.Close, nil
}

func (a *App) buildBot(ctx context.Context, network chain.Network, client *chain.Client) (*autoswap.Bot, error) {
	cfg := a.Cfg

	var store tokens.Store
	if a.DB != nil {
		store = storage.NewTokenStore(a.DB)
	}

	resolver, err := tokens.NewResolver(cfg.ChainID, client, store, cfg.UnsupportedTokens)
	if err != nil {
		return nil, err
	}

	input, err := resolver.Resolve(ctx, cfg.InputToken)
	if err != nil {
		return nil, fmt.Errorf("input token: %w", err)
	}
	output, err := resolver.Resolve(ctx, cfg.OutputToken)
	if err != nil {
		return nil, fmt.Errorf("output token: %w", err)
	}

	amount, err := structures.ParseAmount(input, cfg.AmountPerTurn)
	if err != nil {
		return nil, fmt.Errorf("amount_per_turn: %w", err)
	}

	policy := autoswap.Policy{
		Input:              input,
		Output:             output,
		AmountPerTurn:      amount,
		LimitPrice:         cfg.LimitPrice,
		Side:               autoswap.Side(cfg.Side),
		Slippage:           structures.FromBasisPoints(cfg.SlippageBps),
		FrequencyPerMinute: cfg.FrequencyPerMinute,
	}

	finder := router.NewFinder(client, router.Config{
		Network:      network,
		Bases:        router.DefaultBases(network),
		MaxHops:      structures.MaxHops,
		HopThreshold: structures.FromBasisPoints(cfg.HopThresholdBps),
	})

	executor := swap.NewExecutor(client, swap.Config{
		Router:              network.Router,
		Deadline:            time.Duration(cfg.DeadlineMinutes) * time.Minute,
		ConfirmationTimeout: cfg.ConfirmationTimeout,
	})

	bot, err := autoswap.NewBot(policy, autoswap.Deps{
		Finder:   finder,
		Approver: approval.NewManager(client),
		Executor: executor,
		Wallet:   client,
		Spender:  network.Router,
	})
	if err != nil {
		return nil, err
	}
	logrus.Infof("[APP] %s: %s %s > %s on %s", client.Account(), cfg.Side, amount, output.Symbol(), network.Name)

	return bot, nil
}
