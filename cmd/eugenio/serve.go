package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alfredjeanlab/eugenio/internal/bot"
	"github.com/alfredjeanlab/eugenio/internal/config"
	"github.com/alfredjeanlab/eugenio/internal/events"
	"github.com/alfredjeanlab/eugenio/internal/gateway"
	"github.com/alfredjeanlab/eugenio/internal/gateway/telegram"
	"github.com/alfredjeanlab/eugenio/internal/mode"
	"github.com/alfredjeanlab/eugenio/internal/server"
	eusync "github.com/alfredjeanlab/eugenio/internal/sync"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Run the Telegram bot",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		// Load configuration.
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.RequireTelegram(); err != nil {
			return err
		}

		msgs := bot.DefaultMessages()
		if err := msgs.Apply(cfg.Messages); err != nil {
			return fmt.Errorf("%s: %w", cfg.ConfigFile, err)
		}

		// Connect to the list store.
		st, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		logger.Info("list store ready", "backend", cfg.Store)

		// Create event publisher.
		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				st.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = events.NoopPublisher{}
			logger.Info("events disabled (EUGENIO_NATS_URL not set)")
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Connect to Telegram. The HTTP timeout leaves headroom over the
		// long-poll wait; config guarantees PollTimeout is at least 1s.
		tg, err := telegram.NewClient(cfg.TelegramAPIURL, cfg.TelegramToken, cfg.PollTimeout+15*time.Second)
		if err != nil {
			publisher.Close()
			st.Close()
			return err
		}

		modes := mode.New()
		controller, err := bot.New(bot.Options{
			Store:        st,
			Modes:        modes,
			Gateway:      tg,
			Publisher:    publisher,
			Messages:     &msgs,
			Logger:       logger,
			EventTimeout: cfg.EventTimeout,
		})
		if err != nil {
			publisher.Close()
			st.Close()
			return err
		}

		// Start HTTP server.
		httpServer := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           server.New(modes, logger).NewHTTPHandler(cfg.AuthToken),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		// Start sync scheduler if any destinations are configured.
		var scheduler *eusync.Scheduler
		if cfg.SyncInterval > 0 && cfg.SyncS3Bucket != "" {
			s3Dest, err := eusync.NewS3Destination(ctx, eusync.S3Options{
				Bucket:   cfg.SyncS3Bucket,
				Key:      cfg.SyncS3Key,
				Region:   cfg.SyncS3Region,
				Endpoint: cfg.SyncS3Endpoint,
				Dated:    cfg.SyncS3Dated,
			})
			if err != nil {
				logger.Error("failed to create S3 sync destination", "err", err)
			} else {
				scheduler = eusync.NewScheduler(st, []eusync.Destination{s3Dest}, cfg.SyncInterval, logger)
				scheduler.Start()
				logger.Info("sync scheduler started", "destination", s3Dest.Name(), "interval", cfg.SyncInterval)
			}
		}

		logger.Info("eugenio started",
			"bot", tg.Username(),
			"http_addr", cfg.HTTPAddr,
			"workers", cfg.Workers,
		)

		// Poll until SIGINT or SIGTERM; Run drains in-flight events.
		poller := telegram.NewPoller(tg, telegram.PollerConfig{
			PollTimeout: cfg.PollTimeout,
			Workers:     cfg.Workers,
		}, logger)
		if err := poller.Run(ctx, gateway.Recover(controller, logger)); err != nil {
			logger.Error("poller error", "err", err)
		}
		logger.Info("poller stopped")

		// Graceful shutdown.
		if scheduler != nil {
			scheduler.Stop()
			logger.Info("sync scheduler stopped")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := st.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}

func init() {
	serveCmd.Flags().Bool("debug", false, "log at debug level")
}
