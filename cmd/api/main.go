package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArowuTest/raffle-explorer/api/routes"
	"github.com/ArowuTest/raffle-explorer/internal/config"
	"github.com/ArowuTest/raffle-explorer/internal/handlers"
	"github.com/ArowuTest/raffle-explorer/internal/logger"
	"github.com/ArowuTest/raffle-explorer/internal/repositories"
	"github.com/ArowuTest/raffle-explorer/internal/repositories/chain"
	mongorepo "github.com/ArowuTest/raffle-explorer/internal/repositories/mongodb"
	s3source "github.com/ArowuTest/raffle-explorer/internal/repositories/s3"
	sqliterepo "github.com/ArowuTest/raffle-explorer/internal/repositories/sqlite"
	"github.com/ArowuTest/raffle-explorer/internal/services"
	"github.com/ArowuTest/raffle-explorer/internal/store"
	"github.com/ArowuTest/raffle-explorer/pkg/jwt"
	mongodb "github.com/ArowuTest/raffle-explorer/pkg/mongodb"
	"github.com/ArowuTest/raffle-explorer/pkg/solana"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Initialize(logger.Configuration{
		LogFile:    cfg.Log.File,
		ErrorFile:  cfg.Log.ErrorFile,
		Level:      cfg.Log.Level,
		Console:    cfg.Log.Console,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	defer logger.Sync()
	if envErr != nil {
		log.Debug(".env file not found, using environment variables")
	}

	gin.SetMode(cfg.Server.Mode)

	source, closeSource, err := openSource(cfg)
	if err != nil {
		log.Fatal("failed to open raffle source", zap.String("kind", cfg.Source.Kind), zap.Error(err))
	}
	defer closeSource()

	rafflesStore := store.NewRafflesStore(source, cfg.Store.FetchTimeout, log)
	defer rafflesStore.Close()

	controller := services.NewRaffleListController(rafflesStore, time.Now)
	// repository-backed sources also answer lookups the snapshot misses
	finder, _ := source.(repositories.RaffleFinder)

	deps := routes.HandlerDependencies{
		RaffleHandler: handlers.NewRaffleHandler(controller, rafflesStore, finder),
		Logger:        log,
	}
	if cfg.JWT.Secret != "" {
		tokens, err := jwt.NewWalletTokenService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiresIn)*time.Second)
		if err != nil {
			log.Fatal("failed to create token service", zap.Error(err))
		}
		deps.Tokens = tokens
		deps.AuthHandler = handlers.NewAuthHandler(services.NewAuthService(tokens, cfg.Auth.ChallengeTTL))
	} else {
		log.Warn("jwt.secret is empty, wallet sign-in is disabled")
	}

	router := routes.SetupRouter(cfg, deps)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go rafflesStore.Run(ctx, cfg.Store.RefreshInterval)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("source", cfg.Source.Kind))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exiting")
}

// openSource builds the configured raffle source and the function releasing it
func openSource(cfg *config.Config) (repositories.RaffleSource, func(), error) {
	switch cfg.Source.Kind {
	case config.SourceChain:
		rpc := solana.NewClient(cfg.Chain.RPCURL, cfg.Chain.Timeout, cfg.Chain.RequestsPerSecond)
		rpc.MaxRetries = cfg.Chain.MaxRetries
		return chain.NewRaffleSource(rpc, cfg.Chain.ProgramID, cfg.Chain.MockAPI), func() {}, nil

	case config.SourceMongoDB:
		client, err := mongodb.NewClient(cfg.MongoDB.URI, cfg.MongoDB.ConnectTimeout)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				logger.Error("error disconnecting from MongoDB", zap.Error(err))
			}
		}
		return mongorepo.NewRaffleRepository(client.Database(cfg.MongoDB.Database)), closeFn, nil

	case config.SourceS3:
		source, err := s3source.NewSnapshotSource(context.Background(), s3source.Options{
			Bucket:          cfg.S3.Bucket,
			Key:             cfg.S3.Key,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PathStyle:       cfg.S3.PathStyle,
		})
		if err != nil {
			return nil, nil, err
		}
		return source, func() {}, nil

	case config.SourceSQLite:
		repo, err := sqliterepo.NewRaffleRepository(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			if err := repo.Close(); err != nil {
				logger.Error("error closing SQLite database", zap.Error(err))
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
}
