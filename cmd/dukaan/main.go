package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/dukaan-erp/dukaan-erp/internal/app"
	"github.com/dukaan-erp/dukaan-erp/internal/assistant"
	"github.com/dukaan-erp/dukaan-erp/internal/dashboard"
	"github.com/dukaan-erp/dukaan-erp/internal/expenses"
	"github.com/dukaan-erp/dukaan-erp/internal/inventory"
	"github.com/dukaan-erp/dukaan-erp/internal/payments"
	"github.com/dukaan-erp/dukaan-erp/internal/platform/cache"
	"github.com/dukaan-erp/dukaan-erp/internal/platform/db"
	"github.com/dukaan-erp/dukaan-erp/internal/purchases"
	"github.com/dukaan-erp/dukaan-erp/internal/sales"
	"github.com/dukaan-erp/dukaan-erp/internal/shared"
	"github.com/dukaan-erp/dukaan-erp/jobs"
	"github.com/dukaan-erp/dukaan-erp/report"
)

// itemNamer adapts the inventory service for report rows.
type itemNamer struct {
	inv *inventory.Service
}

func (n itemNamer) ItemName(ctx context.Context, id int64) (string, error) {
	item, err := n.inv.GetItem(ctx, id)
	if err != nil {
		return "", err
	}
	return item.Name, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, dashboard cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	authz := shared.NewPGAuthorizer(pool)
	audit := shared.NewAuditLogger(pool)
	idem := shared.NewIdempotencyStore(pool)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryService := inventory.NewService(inventoryRepo, audit)

	purchasesRepo := purchases.NewRepository(pool)
	purchasesService := purchases.NewService(purchasesRepo, authz, audit, idem)

	salesRepo := sales.NewRepository(pool)
	salesService := sales.NewService(salesRepo, inventoryRepo, authz, audit, idem)

	paymentsRepo := payments.NewRepository(pool)
	paymentsService := payments.NewService(paymentsRepo, authz, audit)

	expensesRepo := expenses.NewRepository(pool)
	expensesService := expenses.NewService(expensesRepo, audit)

	dashboardRepo := dashboard.NewRepository(pool)
	dashboardService := dashboard.NewService(dashboardRepo, redisClient, logger, cfg.DashboardCacheTTL)

	var assistantHandler *assistant.Handler
	if cfg.OpenAIAPIKey != "" {
		assistantService := assistant.NewService(
			assistant.NewRepository(pool),
			assistant.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel),
		)
		assistantHandler = assistant.NewHandler(logger, assistantService)
	} else {
		logger.Warn("OPENAI_API_KEY unset, assistant disabled")
	}

	pdfClient := report.NewClient(cfg.GotenbergURL)
	if err := pdfClient.Ping(ctx); err != nil {
		logger.Warn("gotenberg unreachable", slog.Any("error", err))
	}
	reportService := report.NewService(salesService, expensesService, itemNamer{inv: inventoryService}, pdfClient)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		_ = inspector.Close()
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		InventoryHandler: inventory.NewHandler(logger, inventoryService),
		PurchasesHandler: purchases.NewHandler(logger, purchasesService),
		SalesHandler:     sales.NewHandler(logger, salesService),
		PaymentsHandler:  payments.NewHandler(logger, paymentsService),
		ExpensesHandler:  expenses.NewHandler(logger, expensesService),
		DashboardHandler: dashboard.NewHandler(logger, dashboardService),
		AssistantHandler: assistantHandler,
		ReportHandler:    report.NewHandler(logger, reportService, authz),
		JobHandler:       jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
