// Package main copies price observations from MongoDB into ClickHouse so the
// columnar backend can serve the same training windows as the document store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-price-lab/internal/config"
	"crypto-price-lab/internal/domain"
	"crypto-price-lab/internal/logging"
	chstore "crypto-price-lab/internal/storage/clickhouse"
	mongostore "crypto-price-lab/internal/storage/mongo"
)

func main() {
	trader := flag.String("trader", domain.DefaultTrader, "Trading agent whose observations to copy")
	pastMinutes := flag.Int("past-minutes", 1440, "How far back to copy, in minutes")
	flag.Parse()

	cfg := config.Load()
	logger := logging.New("backfill", cfg.LogLevel)

	if err := cfg.RequireMongo(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.RequireClickHouse(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Warn().Str("signal", sig.String()).Msg("cancelling")
		cancel()
	}()

	conn, err := mongostore.NewConn(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Mongo error: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(context.Background())

	ch, err := chstore.NewConn(ctx, cfg.ClickHouseDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ClickHouse error: %v\n", err)
		os.Exit(1)
	}
	defer ch.Close()

	src := mongostore.NewObservationStore(conn)
	dst := chstore.NewObservationStore(ch)

	if err := dst.EnsureSchema(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Schema error: %v\n", err)
		os.Exit(1)
	}

	since := time.Now().Add(-time.Duration(*pastMinutes) * time.Minute)
	obs, err := src.GetByTraderSince(ctx, *trader, since)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(1)
	}

	if err := dst.InsertBulk(ctx, obs); err != nil {
		fmt.Fprintf(os.Stderr, "Write error: %v\n", err)
		os.Exit(1)
	}

	logger.Info().
		Str("trader", *trader).
		Int("observations", len(obs)).
		Time("since", since).
		Msg("backfill complete")
}
