package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"partsbot/pkg/authstore"
	"partsbot/pkg/browser"
	"partsbot/pkg/config"
	"partsbot/pkg/handlers"
	"partsbot/pkg/logger"
	"partsbot/pkg/notifier"
	"partsbot/pkg/orchestrator"
	"partsbot/pkg/orders"
	"partsbot/pkg/portal"
	"partsbot/pkg/scheduler"
	"partsbot/pkg/server"
	"partsbot/pkg/stock"
)

// @title partsbot API
// @version 1.0
// @description Supplier portal automation: stock lookup, stock confirmation and purchasing.
// @BasePath /
func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.InitLogger(cfg.App.IsDevelopment(), cfg.App.LogFile, cfg.App.LogLevel); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	if err := cfg.ValidateConfig(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	logger.Info("Starting partsbot",
		zap.String("supplier", cfg.Supplier.Name),
		zap.String("base_url", cfg.Supplier.BaseURL),
		zap.String("prefix", cfg.Supplier.Prefix),
		zap.Bool("headless", cfg.Browser.Headless),
	)

	if err := run(cfg); err != nil {
		logger.Error("partsbot stopped with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("partsbot stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine := browser.NewEngine(cfg.Browser)
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Warn("Browser close failed", zap.Error(err))
		}
	}()

	client, err := portal.NewClient(cfg, engine, authstore.New(cfg.Auth.StateDir))
	if err != nil {
		return fmt.Errorf("portal client: %w", err)
	}

	// Interfaces stay nil (not typed-nil) when a feature is off.
	var (
		recorder orchestrator.Recorder
		lister   handlers.OrderLister
		notify   orchestrator.Notifier
	)

	if cfg.Orders.Enabled {
		ledger, err := orders.Open(cfg.Orders.DSN)
		if err != nil {
			return fmt.Errorf("order ledger: %w", err)
		}
		defer ledger.Close()
		recorder, lister = ledger, ledger
		logger.Info("Order ledger opened", zap.String("dsn", cfg.Orders.DSN))
	}

	tg := notifier.NewTelegramNotifier(cfg.GetTelegramConfig())
	if tg.Enabled() {
		notify = tg
		if err := tg.TestConnection(ctx); err != nil {
			logger.Warn("Telegram bot unreachable, notifications may be lost", zap.Error(err))
		}
	}

	poller := stock.NewPoller(cfg.Confirm.PollInterval(), cfg.Confirm.DefaultMaxWait())
	orch := orchestrator.New(cfg, orchestrator.PortalSessions(client), poller, recorder, notify)
	handlerSvc := handlers.NewHandlerService(cfg, orch, lister)

	var sched *scheduler.TaskScheduler
	if cfg.Scheduler.Enabled && cfg.Auth.KeepaliveCron != "" {
		sched = scheduler.NewTaskScheduler(ctx)
		_, err := sched.AddJob("auth_keepalive", cfg.Auth.KeepaliveCron, 3*cfg.Browser.NavTimeout(), keepAlive(client, tg))
		if err != nil {
			return fmt.Errorf("keep-alive job: %w", err)
		}
		handlerSvc.SetScheduler(sched)
		go func() {
			if err := sched.Start(); err != nil {
				logger.Error("Scheduler stopped", zap.Error(err))
			}
		}()
	}

	srv := server.NewHTTPServer(&server.Config{
		Address:     cfg.Server.Address,
		Port:        cfg.Server.Port,
		Development: cfg.App.IsDevelopment(),
	}, handlerSvc)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Start() }()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	if sched != nil {
		if err := sched.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// keepAlive refreshes the saved portal session and alerts when the
// credentials stop working.
func keepAlive(client *portal.Client, tg *notifier.TelegramNotifier) scheduler.JobFunc {
	return func(ctx context.Context) error {
		err := client.KeepAlive(ctx)
		if errors.Is(err, stock.ErrAuthFailure) && tg.Enabled() {
			if nerr := tg.SendAuthFailure(ctx, client.Supplier(), err); nerr != nil {
				logger.Warn("Auth failure notification failed", zap.Error(nerr))
			}
		}
		return err
	}
}
