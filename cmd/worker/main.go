package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"civicgrid.app/core/common/id"
	"civicgrid.app/core/common/logger"
	"civicgrid.app/core/common/otel"
	"civicgrid.app/core/core/config"
	"civicgrid.app/core/core/db"
	"civicgrid.app/core/internal/mail"
	"civicgrid.app/core/internal/push"
	"civicgrid.app/core/internal/service"
	"civicgrid.app/core/internal/store"
	"civicgrid.app/core/internal/worker"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	slog.InfoContext(ctx, "civicgrid worker starting",
		"env", cfg.Env,
		"poll_interval", cfg.Worker.PollInterval,
		"retry_failed", cfg.Worker.RetryFailed)

	// Different node ID than the server so snowflake IDs never collide.
	if err := id.Init(2); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected")

	var sender mail.Sender
	if cfg.Mail.Enabled() {
		sender, err = mail.NewSMTPSender(cfg.Mail)
		if err != nil {
			slog.ErrorContext(ctx, "failed to create smtp sender", "error", err)
			os.Exit(1)
		}
		slog.InfoContext(ctx, "smtp sender configured", "host", cfg.Mail.SMTPHost)
	} else {
		sender = mail.LogSender{}
		slog.InfoContext(ctx, "no smtp configured, using log sender")
	}

	stores := store.NewStores(database.Querier())
	publisher := push.NewRedisPublisher(redisClient, cfg.Redis.PushChannelPrefix)
	services := service.New(database, publisher)

	w := worker.New(stores.Jobs(), sender, cfg.Worker)

	reclaimer := worker.NewReclaimer(stores.Jobs(), worker.ReclaimerConfig{
		MinIdle:  cfg.Worker.ReclaimAfter,
		Interval: cfg.Worker.ReclaimInterval,
	})

	sweeper := worker.NewSweeper(services.Escalation, services.Priority, services.Reopen, cfg.Sweeps)

	errCh := make(chan error, 3)
	go func() {
		errCh <- w.Run(ctx)
	}()
	go func() {
		reclaimer.Run(ctx)
		errCh <- nil
	}()
	go func() {
		sweeper.Run(ctx)
		errCh <- nil
	}()

	slog.InfoContext(ctx, "worker initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Stop the periodic loops first (quick), then the worker, which may be
	// mid-job.
	sweeper.Stop()
	reclaimer.Stop()
	w.Stop()

	select {
	case <-shutdownCtx.Done():
		slog.WarnContext(ctx, "shutdown timeout exceeded")
	case err := <-errCh:
		if err != nil {
			slog.ErrorContext(ctx, "worker error during shutdown", "error", err)
		}
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "worker shutdown complete")
}

const banner = `
 ██████╗██╗██╗   ██╗██╗ ██████╗ ██████╗ ██████╗ ██╗██████╗     ██╗    ██╗ ██████╗ ██████╗ ██╗  ██╗███████╗██████╗
██╔════╝██║██║   ██║██║██╔════╝██╔════╝ ██╔══██╗██║██╔══██╗    ██║    ██║██╔═══██╗██╔══██╗██║ ██╔╝██╔════╝██╔══██╗
██║     ██║██║   ██║██║██║     ██║  ███╗██████╔╝██║██║  ██║    ██║ █╗ ██║██║   ██║██████╔╝█████╔╝ █████╗  ██████╔╝
██║     ██║╚██╗ ██╔╝██║██║     ██║   ██║██╔══██╗██║██║  ██║    ██║███╗██║██║   ██║██╔══██╗██╔═██╗ ██╔══╝  ██╔══██╗
╚██████╗██║ ╚████╔╝ ██║╚██████╗╚██████╔╝██║  ██║██║██████╔╝    ╚███╔███╔╝╚██████╔╝██║  ██║██║  ██╗███████╗██║  ██║
 ╚═════╝╚═╝  ╚═══╝  ╚═╝ ╚═════╝ ╚═════╝ ╚═╝  ╚═╝╚═╝╚═════╝      ╚══╝╚══╝  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝
`
