// Package main provides the price forecasting entry point.
// Executes: load → engineer → (train | predict | test | sweep) → print.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"crypto-price-lab/internal/config"
	"crypto-price-lab/internal/domain"
	"crypto-price-lab/internal/logging"
	"crypto-price-lab/internal/pipeline"
	"crypto-price-lab/internal/storage"
	chstore "crypto-price-lab/internal/storage/clickhouse"
	mongostore "crypto-price-lab/internal/storage/mongo"
	pgstore "crypto-price-lab/internal/storage/postgres"
	"crypto-price-lab/internal/timeseries"
)

func main() {
	mode := flag.String("mode", "train", "Mode: train, predict, test, or sweep")
	pastMinutes := flag.Int("past-minutes", 180, "Number of past minutes to consider")
	futureMinutes := flag.Int("future-minutes", 60, "Number of minutes into the future to predict")
	tokenName := flag.String("token-name", "WBNB", "Token to predict")
	strategyName := flag.String("strategy", "forest", "Forecasting strategy: forest or window")
	trader := flag.String("trader", domain.DefaultTrader, "Trading agent whose observations to use")
	store := flag.String("store", "mongo", "Observation store: mongo or clickhouse")
	postgresDSN := flag.String("postgres-dsn", "", "Optional PostgreSQL DSN for the training-run registry")
	sweepMinutes := flag.String("sweep-minutes", "10,60,180", "Comma-separated horizons for sweep mode")
	flag.Parse()

	cfg := config.Load()
	logger := logging.New("forecast", cfg.LogLevel)

	kind := domain.StrategyKind(*strategyName)
	if !kind.Valid() {
		fmt.Fprintf(os.Stderr, "Unknown strategy %q (want forest or window)\n", *strategyName)
		os.Exit(2)
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

	// Model blobs always live in GridFS, whichever observation store is used.
	if err := cfg.RequireMongo(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	conn, err := mongostore.NewConn(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Mongo error: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(context.Background())

	blobs, err := mongostore.NewBlobStore(conn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Blob store error: %v\n", err)
		os.Exit(1)
	}

	obsStore, cleanup, err := openObservationStore(ctx, *store, cfg, conn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Observation store error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	strat, err := pipeline.New(kind, blobs, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Strategy error: %v\n", err)
		os.Exit(1)
	}

	loader := timeseries.NewLoader(obsStore, logger)
	matrix, err := loader.Load(ctx, *trader, *pastMinutes, strat.Interpolates())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load error: %v\n", err)
		os.Exit(1)
	}
	strat.Prepare(matrix)

	params := pipeline.Params{
		Token:         *tokenName,
		PastMinutes:   *pastMinutes,
		FutureMinutes: *futureMinutes,
	}

	switch *mode {
	case "train":
		run, err := strat.Train(ctx, matrix, params)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Train error: %v\n", err)
			os.Exit(1)
		}
		recordRun(ctx, logger, *postgresDSN, run)
		fmt.Printf("Trained %s on %d samples (%d features) in %dms\n",
			run.Strategy, run.SampleCount, run.FeatureCount, run.DurationMs)

	case "predict":
		pred, err := strat.Predict(ctx, matrix, params)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Predict error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("The prediction is %v\n", pred.Price)

	case "test":
		mse, err := strat.Evaluate(ctx, matrix, params)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Test error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("The MSE on the test set is %v\n", mse)

	case "sweep":
		horizons, err := parseSweep(*sweepMinutes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Sweep error: %v\n", err)
			os.Exit(2)
		}
		run, err := strat.Train(ctx, matrix, params)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Train error: %v\n", err)
			os.Exit(1)
		}
		recordRun(ctx, logger, *postgresDSN, run)
		for _, fm := range horizons {
			p := params
			p.FutureMinutes = fm
			pred, err := strat.Predict(ctx, matrix, p)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Predict error (%d minutes): %v\n", fm, err)
				os.Exit(1)
			}
			fmt.Printf("For %d minutes ahead, the last prediction is: %v\n", fm, pred.Price)
		}

	default:
		fmt.Fprintf(os.Stderr, "Unknown mode %q (want train, predict, test, or sweep)\n", *mode)
		os.Exit(2)
	}
}

// openObservationStore wires the requested backend. The cleanup closes any
// extra connection the backend opened.
func openObservationStore(ctx context.Context, name string, cfg config.Config, conn *mongostore.Conn) (storage.ObservationStore, func(), error) {
	switch name {
	case "mongo":
		return mongostore.NewObservationStore(conn), func() {}, nil
	case "clickhouse":
		if err := cfg.RequireClickHouse(); err != nil {
			return nil, nil, err
		}
		ch, err := chstore.NewConn(ctx, cfg.ClickHouseDSN)
		if err != nil {
			return nil, nil, err
		}
		return chstore.NewObservationStore(ch), func() { _ = ch.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q (want mongo or clickhouse)", name)
	}
}

// recordRun inserts the run into the registry when a DSN is configured.
// Registry failures are logged, not fatal: the blobs are already persisted.
func recordRun(ctx context.Context, logger zerolog.Logger, dsn string, run *domain.TrainingRun) {
	if dsn == "" {
		return
	}
	pool, err := pgstore.NewPool(ctx, dsn)
	if err != nil {
		logger.Error().Err(err).Msg("registry connect failed")
		return
	}
	defer pool.Close()

	runs := pgstore.NewTrainingRunStore(pool)
	if err := runs.EnsureSchema(ctx); err != nil {
		logger.Error().Err(err).Msg("registry schema failed")
		return
	}
	if err := runs.Insert(ctx, run); err != nil {
		logger.Error().Err(err).Msg("registry insert failed")
		return
	}
	logger.Info().Str("run_id", run.RunID).Msg("training run recorded")
}

// parseSweep parses a comma-separated horizon list.
func parseSweep(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	horizons := make([]int, 0, len(parts))
	for _, p := range parts {
		fm, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || fm <= 0 {
			return nil, fmt.Errorf("invalid horizon %q", p)
		}
		horizons = append(horizons, fm)
	}
	return horizons, nil
}
