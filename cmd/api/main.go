package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lottoroom/lottoroom-backend/api/routes"
	"github.com/lottoroom/lottoroom-backend/internal/config"
	mongorepo "github.com/lottoroom/lottoroom-backend/internal/repositories/mongodb"
	"github.com/lottoroom/lottoroom-backend/internal/services"
	"github.com/lottoroom/lottoroom-backend/pkg/mongodb"
	"github.com/lottoroom/lottoroom-backend/pkg/tokenledger"
	"golang.org/x/exp/slog"
)

func main() {
	// .env is optional; real deployments set environment variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		slog.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("error disconnecting from MongoDB", "error", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	roomRepo := mongorepo.NewRoomRepository(db)
	ticketRepo := mongorepo.NewTicketRepository(db)
	claimRepo := mongorepo.NewClaimRepository(db)
	statsRepo := mongorepo.NewPlayerStatsRepository(db)
	feeRepo := mongorepo.NewFeeRepository(db)
	statusRepo := mongorepo.NewSystemStatusRepository(db)
	userRepo := mongorepo.NewUserRepository(db)

	var ledger tokenledger.Ledger
	if cfg.Ledger.MockLedger {
		slog.Warn("using in-memory token ledger; balances are not durable")
		ledger = tokenledger.NewMemoryLedger()
	} else {
		ledger = tokenledger.NewClient(cfg.Ledger.BaseURL, cfg.Ledger.APIKey)
	}

	settlement, err := services.NewSettlementService(
		roomRepo, ticketRepo, claimRepo, statsRepo, feeRepo, statusRepo, userRepo,
		ledger,
		services.SettlementConfig{
			FeeRateBps:  cfg.Lottery.FeeRateBps,
			RevealGrace: cfg.Lottery.RevealGracePeriod,
			ClaimGrace:  cfg.Lottery.ClaimGracePeriod,
			MaxTickets:  cfg.Lottery.MaxTicketsPerRoom,
		},
	)
	if err != nil {
		slog.Error("failed to build settlement service", "error", err)
		os.Exit(1)
	}

	authService := services.NewAuthService(userRepo, cfg)

	router := routes.SetupRouter(cfg, settlement, authService)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
	slog.Info("server exited")
}

func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
