// Command server runs the tgscraper HTTP API and the scheduled scrape.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tgscraper/internal/alert"
	"tgscraper/internal/bootstrap"
	"tgscraper/internal/config"
	"tgscraper/internal/observability"
	"tgscraper/internal/scheduler"
	"tgscraper/internal/server"
	"tgscraper/internal/service"
	"tgscraper/internal/telegram"
)

// @title tgscraper API
// @version 1.0
// @description Telegram channel post scraper with engagement statistics and rankings
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const scrapeJobName = "scrape"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "tgscraper-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	rootCtx, stopRoot := context.WithCancel(context.Background())
	defer stopRoot()

	db, rdb, err := bootstrap.InitRuntime(rootCtx, cfg, bootstrap.Options{SeedChannels: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	var opts server.Options
	if cfg.TelegramConfigured() {
		tg, err := telegram.New(telegram.Config{
			APIID:       cfg.TelegramAPIID,
			APIHash:     cfg.TelegramAPIHash,
			Phone:       cfg.TelegramPhone,
			Password:    cfg.TelegramPassword,
			SessionPath: cfg.TelegramSessionPath,
			ProxyURL:    cfg.TelegramProxyURL,
		})
		if err != nil {
			log.Fatalf("Failed to create Telegram client: %v", err)
		}
		go func() {
			if err := tg.Start(rootCtx); err != nil {
				log.Printf("Telegram client exited: %v", err)
			}
		}()
		opts.Source = tg
		opts.Discoverer = tg
	} else {
		log.Println("TELEGRAM_API_ID/TELEGRAM_API_HASH not set; scrape endpoints will answer 503")
	}

	if cfg.AlertsConfigured() {
		sender, err := alert.New(cfg.AlertBotToken, cfg.AlertChatID, observability.GlobalLogger.Logger)
		if err != nil {
			log.Printf("Scrape alerts disabled: %v", err)
		} else {
			opts.Alerts = sender
		}
	}

	// Create server with dependency injection
	srv, err := server.NewServer(cfg, db, rdb, opts)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	sched, err := startScheduler(cfg, srv.Scraper())
	if err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if sched != nil {
			sched.Stop(ctx)
		}
		stopRoot()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server resource shutdown error: %v", err)
		}
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("Tracing shutdown error: %v", err)
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// startScheduler registers the recurring scrape when SCRAPE_SCHEDULE is set.
// It returns nil when no schedule is configured.
func startScheduler(cfg *config.Config, scraper *service.ScrapeService) (*scheduler.Scheduler, error) {
	if cfg.ScrapeSchedule == "" {
		return nil, nil
	}
	sched, err := scheduler.New(cfg.SchedulerTimezone, cfg.ScrapeTimeout())
	if err != nil {
		return nil, err
	}

	job := func(ctx context.Context) error {
		summary, err := scraper.Run(ctx, service.ScrapeInput{})
		if err != nil {
			if errors.Is(err, service.ErrScrapeInProgress) {
				log.Println("Scheduled scrape skipped: a run is already in progress")
				return nil
			}
			return err
		}
		log.Printf("Scheduled scrape %s finished: new=%d updated=%d errors=%d",
			summary.RunID, summary.New, summary.Updated, len(summary.Errors))
		return nil
	}
	if err := sched.AddJob(scrapeJobName, cfg.ScrapeSchedule, job); err != nil {
		return nil, err
	}
	sched.Start()
	log.Printf("Scrape scheduled: %q (%s)", cfg.ScrapeSchedule, cfg.SchedulerTimezone)
	return sched, nil
}
