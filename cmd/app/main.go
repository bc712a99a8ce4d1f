package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qynonyq/autoswap/internal/app"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	a, err := app.InitApp()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bot, closeClient, err := a.NewBot(ctx)
	if err != nil {
		return err
	}
	defer closeClient()

	if a.Cfg.MetricsAddr != "" {
		srv := app.ServeMetrics(a.Cfg.MetricsAddr)
		defer srv.Close()
	}

	go func() {
		if err := bot.Run(ctx); err != nil {
			logrus.Errorf("[APP] bot stopped: %s", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logrus.Infof("received %q, shutting down gracefully", sig)

	stopped := make(chan struct{})
	go func() {
		if err := bot.Stop(); err != nil {
			logrus.Errorf("[APP] failed to stop bot: %s", err)
		}
		stopped <- struct{}{}
	}()

	// a swap waiting for confirmation may hold the tick for minutes
	select {
	case <-time.After(a.Cfg.ConfirmationTimeout + 5*time.Second):
		logrus.Info("shutdown timeout expired, cancelling in-flight tick")
		cancel()
	case <-stopped:
		logrus.Info("bot gracefully stopped")
	}

	return nil
}
