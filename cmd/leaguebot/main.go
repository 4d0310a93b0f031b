package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fadedpez/tucoleague/internal/config"
	idiscord "github.com/fadedpez/tucoleague/internal/discord"
	"github.com/fadedpez/tucoleague/internal/logging"
	"github.com/fadedpez/tucoleague/internal/metrics"
	"github.com/fadedpez/tucoleague/pkg/discord"
	"github.com/fadedpez/tucoleague/pkg/notify"
	"github.com/fadedpez/tucoleague/pkg/scheduler"
	"github.com/fadedpez/tucoleague/pkg/services/league"
	"github.com/fadedpez/tucoleague/pkg/services/wallet"
	"github.com/fadedpez/tucoleague/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ValidateBot(); err != nil {
		log.Fatalf("Invalid bot configuration: %v", err)
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel))

	stores, err := storage.Open(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer stores.Close()

	session, err := idiscord.NewSession(cfg.Token)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}

	notifier := buildNotifier(cfg, session, logger)

	registry := prometheus.NewRegistry()
	leagueMetrics := metrics.NewLeagueMetrics(registry)
	metricsServer := startMetricsServer(cfg.MetricsAddr, registry, logger)

	leagueService := league.NewService(stores.League, notifier,
		league.WithLogger(logger),
		league.WithMetrics(leagueMetrics),
	)
	walletService := wallet.NewService(stores.Wallets, logger)

	bot := discord.NewBot(session, cfg, leagueService, walletService, logger)
	if err := bot.Start(); err != nil {
		log.Fatalf("Failed to start bot: %v", err)
	}

	sched := startScheduler(cfg, leagueService, logger)

	fmt.Println("League bot is now running. Press CTRL-C to exit.")

	// Wait for interrupt signal to gracefully shutdown
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc

	fmt.Println("Shutting down...")
	if sched != nil {
		if err := sched.Stop(); err != nil {
			logger.Error("Error stopping scheduler: %v", err)
		}
	}
	if err := bot.Stop(); err != nil {
		logger.Error("Error stopping bot: %v", err)
	}
	if metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Error("Error stopping metrics server: %v", err)
		}
	}
}

// buildNotifier fans events out to the announce channel and, when configured, Elasticsearch
func buildNotifier(cfg *config.Config, session *idiscord.DiscordSession, logger *logging.Logger) notify.Notifier {
	var notifiers notify.Multi
	if cfg.AnnounceChannelID != "" {
		notifiers = append(notifiers, notify.NewDiscordNotifier(session, cfg.AnnounceChannelID))
	}

	if cfg.ESURL != "" {
		esConfig := notify.DefaultElasticsearchConfig()
		esConfig.URL = cfg.ESURL
		esConfig.Username = cfg.ESUsername
		esConfig.Password = cfg.ESPassword
		esConfig.IndexPrefix = cfg.ESIndexPrefix

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		esNotifier, err := notify.NewElasticsearchNotifier(ctx, esConfig)
		if err != nil {
			logger.Warn("Elasticsearch event index disabled: %v", err)
		} else {
			logger.Info("Indexing league events into %s", esNotifier.Index())
			notifiers = append(notifiers, esNotifier)
		}
	}

	if len(notifiers) == 0 {
		return notify.Nop{}
	}
	return notifiers
}

// startScheduler runs the offer reminder when an interval is configured
func startScheduler(cfg *config.Config, leagueService *league.Service, logger *logging.Logger) *scheduler.Scheduler {
	if cfg.OfferReminderInterval == 0 {
		return nil
	}

	sched, err := scheduler.NewScheduler(logger)
	if err != nil {
		logger.Warn("Offer reminders disabled: %v", err)
		return nil
	}
	err = sched.AddTask("offer_reminder", cfg.OfferReminderInterval, func(ctx context.Context) error {
		sent, err := leagueService.RemindPendingOffer(ctx)
		if sent {
			logger.Debug("Sent Victory Point offer reminder")
		}
		return err
	})
	if err != nil {
		logger.Warn("Offer reminders disabled: %v", err)
		return nil
	}

	sched.Start()
	return sched
}

func startMetricsServer(addr string, registry *prometheus.Registry, logger *logging.Logger) *http.Server {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server stopped: %v", err)
		}
	}()
	logger.Info("Serving metrics on %s/metrics", addr)
	return server
}
