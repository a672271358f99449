package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ArowuTest/raffle-explorer/internal/config"
	"github.com/ArowuTest/raffle-explorer/internal/logger"
	"github.com/ArowuTest/raffle-explorer/internal/repositories"
	mongorepo "github.com/ArowuTest/raffle-explorer/internal/repositories/mongodb"
	sqliterepo "github.com/ArowuTest/raffle-explorer/internal/repositories/sqlite"
	"github.com/ArowuTest/raffle-explorer/internal/utils"
	"github.com/ArowuTest/raffle-explorer/pkg/mongodb"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// import_raffles loads raffle fixtures (.yaml, .yml or .csv) into MongoDB or SQLite
func main() {
	configPath := pflag.StringP("config", "c", ".", "directory holding config.yaml")
	target := pflag.StringP("target", "t", "", "repository to import into: mongodb or sqlite (default: source.kind)")
	timeout := pflag.Duration("timeout", 2*time.Minute, "import timeout")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: import_raffles [flags] <fixture file>\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}

	envErr := godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Initialize(logger.Configuration{Level: cfg.Log.Level, Console: true})
	defer logger.Sync()
	if envErr != nil {
		log.Debug(".env file not found, using environment variables")
	}

	kind := *target
	if kind == "" {
		kind = cfg.Source.Kind
	}

	repo, closeRepo, err := openRepository(cfg, kind)
	if err != nil {
		log.Fatal("failed to open repository", zap.String("target", kind), zap.Error(err))
	}
	defer closeRepo()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := utils.NewRaffleImporter(repo).ImportFile(ctx, pflag.Arg(0))
	if err != nil {
		log.Fatal("import failed", zap.String("file", pflag.Arg(0)), zap.Error(err))
	}
	for _, rowErr := range result.Errors {
		log.Warn("row skipped", zap.String("reason", rowErr))
	}

	count, err := repo.Count(ctx)
	if err != nil {
		log.Warn("failed to count raffles", zap.Error(err))
	}
	log.Info("raffles imported",
		zap.String("target", kind),
		zap.Int("rows", result.TotalRows),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", len(result.Errors)),
		zap.Int64("stored", count))
}

func openRepository(cfg *config.Config, kind string) (repositories.RaffleRepository, func(), error) {
	switch kind {
	case config.SourceMongoDB:
		client, err := mongodb.NewClient(cfg.MongoDB.URI, cfg.MongoDB.ConnectTimeout)
		if err != nil {
			return nil, nil, err
		}
		return mongorepo.NewRaffleRepository(client.Database(cfg.MongoDB.Database)), func() {
			_ = client.Disconnect(context.Background())
		}, nil
	case config.SourceSQLite:
		repo, err := sqliterepo.NewRaffleRepository(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil
	}
	return nil, nil, fmt.Errorf("cannot import into %q, use mongodb or sqlite", kind)
}
