package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/attendance-tracker/internal/accounts"
	"github.com/joseph-ayodele/attendance-tracker/internal/common"
	"github.com/joseph-ayodele/attendance-tracker/internal/export"
	"github.com/joseph-ayodele/attendance-tracker/internal/llm/provider"
	"github.com/joseph-ayodele/attendance-tracker/internal/normalize"
	"github.com/joseph-ayodele/attendance-tracker/internal/ocr"
	"github.com/joseph-ayodele/attendance-tracker/internal/pipeline"
	repo "github.com/joseph-ayodele/attendance-tracker/internal/repository"
	"github.com/joseph-ayodele/attendance-tracker/internal/server"
	"github.com/joseph-ayodele/attendance-tracker/internal/upload"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(2)
	}

	// Setup structured logger that outputs messages with variables but no time/level
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repo.Open(ctx, repo.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.HealthCheck(ctx, 5*time.Second); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	uploads, err := upload.NewStore(cfg.Upload.Dir, logger)
	if err != nil {
		logger.Error("failed to prepare upload dir", "dir", cfg.Upload.Dir, "error", err)
		os.Exit(1)
	}
	janitor := upload.NewJanitor(uploads.Dir(), cfg.Upload.MaxAge, logger)
	if err := janitor.Start(ctx, cfg.Upload.JanitorSchedule); err != nil {
		logger.Error("failed to start upload janitor", "schedule", cfg.Upload.JanitorSchedule, "error", err)
		os.Exit(1)
	}

	metrics := server.NewMetrics()
	sel := provider.Select(cfg.LLM, logger)
	normalizer := normalize.New(sel, logger, normalize.WithObserver(metrics))
	extractor := ocr.NewExtractor(ocr.ConfigFrom(cfg.OCR), logger)
	processor := pipeline.NewProcessor(logger, extractor, normalizer)

	accountsSvc := accounts.NewService(
		repo.NewUserRepository(db, logger),
		repo.NewHolidayRepository(db, logger),
		repo.NewRecordRepository(db, logger),
		logger,
	)

	gin.SetMode(gin.ReleaseMode)
	httpSrv := server.NewHTTPServer(server.Deps{
		Processor:      processor,
		Uploads:        uploads,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Accounts:       accountsSvc,
		Exports:        export.NewService(logger),
		Metrics:        metrics,
		DB:             db,
		Provider:       sel.Provider,
		Logger:         logger,
	})
	hs := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           httpSrv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcServer := server.NewGRPCServer(server.NewAttendanceService(normalizer, logger), metrics, logger)
	var lis net.Listener
	if cfg.Server.GRPCAddr != "" {
		addr := cfg.Server.GRPCAddr
		if !strings.Contains(addr, ":") {
			addr = ":" + addr
		}
		lis, err = net.Listen("tcp", addr)
		if err != nil {
			logger.Error("failed to listen on address", "addr", addr, "error", err)
			os.Exit(1)
		}
		logger.Info("attendance-tracker grpc listening", "addr", addr)
		go func() {
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC serve error", "error", err)
				stop()
			}
		}()
	}

	logger.Info("attendance-tracker http listening", "addr", hs.Addr, "ai_provider", sel.Provider)
	go func() {
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	if lis != nil {
		grpcServer.GracefulStop()
	}
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
