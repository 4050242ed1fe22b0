package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"tgscraper/internal/bootstrap"
	"tgscraper/internal/cache"
	"tgscraper/internal/config"
	"tgscraper/internal/featureflags"
	"tgscraper/internal/notifications"
	"tgscraper/internal/repository"
	"tgscraper/internal/service"
	"tgscraper/internal/telegram"
)

func runLogin(ctx context.Context, cfg *config.Config, _ []string) error {
	tg, err := newTelegram(cfg)
	if err != nil {
		return err
	}
	if err := tg.Login(ctx, telegram.TerminalPrompt(os.Stdin, os.Stdout)); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	log.Printf("session stored at %s", cfg.TelegramSessionPath)
	return nil
}

func runScrape(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	channels := fs.String("channels", "", "Comma-separated channel row ids (default: all active)")
	limit := fs.Int("limit", 0, "Posts to fetch per channel (default: SCRAPE_POST_LIMIT)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ids, err := parseIDs(*channels)
	if err != nil {
		return err
	}

	db, rdb, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		return err
	}
	tg, err := newTelegram(cfg)
	if err != nil {
		return err
	}

	var events service.EventPublisher
	if rdb != nil {
		events = notifications.NewNotifier(rdb)
	}

	return tg.Do(ctx, func(ctx context.Context, src *telegram.Source) error {
		scraper := service.NewScrapeService(service.ScrapeDeps{
			Channels: repository.NewChannelRepository(db),
			Posts:    repository.NewPostRepository(db),
			Source:   src,
			Events:   events,
			Flags:    featureflags.NewManager(cfg.FeatureFlags),
		}, service.ScrapeConfig{
			DefaultLimit: cfg.ScrapePostLimit,
			ChannelDelay: cfg.ChannelDelay(),
		})
		summary, err := scraper.Run(ctx, service.ScrapeInput{ChannelIDs: ids, Limit: *limit})
		if err != nil {
			return err
		}
		fmt.Println(service.FormatScrapeReport(summary))
		return nil
	})
}

func runDiscover(ctx context.Context, cfg *config.Config, _ []string) error {
	tg, err := newTelegram(cfg)
	if err != nil {
		return err
	}
	return tg.Do(ctx, func(ctx context.Context, src *telegram.Source) error {
		found, err := src.DiscoverChannels(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CHANNEL ID\tUSERNAME\tNAME\tTITLE")
		for _, ch := range found {
			username := "-"
			if ch.Username != "" {
				username = "@" + ch.Username
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", ch.ChannelID, username, ch.CleanName, ch.Title)
		}
		return w.Flush()
	})
}

func runImport(ctx context.Context, cfg *config.Config, _ []string) error {
	db, _, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		return err
	}
	tg, err := newTelegram(cfg)
	if err != nil {
		return err
	}
	return tg.Do(ctx, func(ctx context.Context, src *telegram.Source) error {
		channels := service.NewChannelService(service.ChannelDeps{
			Channels:   repository.NewChannelRepository(db),
			Posts:      repository.NewPostRepository(db),
			Discoverer: src,
		}, cfg.ChannelDelay())
		res, err := channels.Import(ctx)
		if err != nil {
			return err
		}
		if res.Created > 0 {
			cache.InvalidateStats(ctx)
		}
		log.Printf("discovered=%d created=%d skipped=%d", res.Discovered, res.Created, res.Skipped)
		for _, ch := range res.Channels {
			log.Printf("  + %s (%d)", ch.Title, ch.ChannelID)
		}
		return nil
	})
}

func runReactions(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("reactions", flag.ContinueOnError)
	channelID := fs.Uint("channel", 0, "Channel row id")
	messageID := fs.Int("message", 0, "Telegram message id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *channelID == 0 || *messageID <= 0 {
		return fmt.Errorf("-channel and -message are required")
	}

	db, _, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		return err
	}
	tg, err := newTelegram(cfg)
	if err != nil {
		return err
	}
	return tg.Do(ctx, func(ctx context.Context, src *telegram.Source) error {
		channels := service.NewChannelService(service.ChannelDeps{
			Channels: repository.NewChannelRepository(db),
			Posts:    repository.NewPostRepository(db),
			Source:   src,
		}, cfg.ChannelDelay())
		report, err := channels.ReactionBreakdown(ctx, *channelID, *messageID)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	})
}
