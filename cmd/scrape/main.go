// Command scrape is the operator CLI: one-off scrape runs, Telegram login,
// channel discovery and quick stats without going through the HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"tgscraper/internal/config"
	"tgscraper/internal/telegram"
)

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, cfg *config.Config, args []string) error
}

var commands = []command{
	{"run", "scrape active channels once [-channels 1,2] [-limit N]", runScrape},
	{"login", "sign in to Telegram and store the session", runLogin},
	{"discover", "list broadcast channels the account is subscribed to", runDiscover},
	{"import", "register discovered channels that are not tracked yet", runImport},
	{"reactions", "show the live reaction breakdown of one post -channel ID -message N", runReactions},
	{"stats", "print per-channel statistics [-format table|csv|json]", runStats},
	{"watch", "stream scrape progress events from a running server [-url] [-token]", runWatch},
	{"token", "issue an admin bearer token [-subject] [-ttl]", runToken},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	var b strings.Builder
	b.WriteString("usage: go run ./cmd/scrape <command> [flags]\n\ncommands:\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "  %-10s %s\n", c.name, c.usage)
	}
	return fmt.Errorf("%s", b.String())
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	name := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	for _, c := range commands {
		if c.name == name {
			return c.run(ctx, cfg, flag.Args()[1:])
		}
	}
	return usage()
}

// newTelegram builds an MTProto client from config.
func newTelegram(cfg *config.Config) (*telegram.Client, error) {
	if !cfg.TelegramConfigured() {
		return nil, fmt.Errorf("TELEGRAM_API_ID and TELEGRAM_API_HASH must be set")
	}
	return telegram.New(telegram.Config{
		APIID:       cfg.TelegramAPIID,
		APIHash:     cfg.TelegramAPIHash,
		Phone:       cfg.TelegramPhone,
		Password:    cfg.TelegramPassword,
		SessionPath: cfg.TelegramSessionPath,
		ProxyURL:    cfg.TelegramProxyURL,
	})
}

// parseIDs reads a comma-separated list of positive ids.
func parseIDs(raw string) ([]uint, error) {
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseUint(part, 10, 64)
		if err != nil || v == 0 {
			return nil, fmt.Errorf("invalid channel id %q", part)
		}
		ids = append(ids, uint(v))
	}
	return ids, nil
}
