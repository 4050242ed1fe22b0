package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"tgscraper/internal/bootstrap"
	"tgscraper/internal/config"
	"tgscraper/internal/middleware"
	"tgscraper/internal/notifications"
	"tgscraper/internal/repository"
	"tgscraper/internal/service"

	"github.com/gorilla/websocket"
)

func runStats(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	format := fs.String("format", "table", "Output format: table, csv or json")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, _, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		return err
	}
	svc := service.NewStatsService(repository.NewChannelRepository(db), repository.NewPostRepository(db), service.StatsConfig{
		Window:   cfg.StatsWindow(),
		CacheTTL: cfg.StatsCacheTTL(),
	})
	rows, err := svc.ChannelStats(ctx)
	if err != nil {
		return err
	}
	return writeStats(os.Stdout, *format, rows)
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func writeStats(out io.Writer, format string, rows []service.ChannelStats) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "csv":
		w := csv.NewWriter(out)
		_ = w.Write([]string{"channel_id", "title", "subscribers", "posts", "avg_views", "median_views", "avg_rate", "median_rate", "window_posts", "median_views_window"})
		for _, r := range rows {
			_ = w.Write([]string{
				strconv.FormatUint(uint64(r.ChannelID), 10),
				r.ChannelTitle,
				optionalInt(r.SubscriberCount),
				strconv.Itoa(r.PostsAnalyzed),
				strconv.FormatFloat(r.Views.Mean, 'f', 2, 64),
				strconv.FormatFloat(r.Views.Median, 'f', 2, 64),
				strconv.FormatFloat(r.EngagementRate.Mean, 'f', 4, 64),
				strconv.FormatFloat(r.EngagementRate.Median, 'f', 4, 64),
				strconv.Itoa(r.WindowPosts),
				strconv.FormatFloat(r.MedianViewsWindow, 'f', 2, 64),
			})
		}
		w.Flush()
		return w.Error()
	case "table":
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "ID\tTITLE\tSUBS\tPOSTS\tAVG VIEWS\tMED VIEWS\tAVG RATE %\tMED RATE %\t")
		for _, r := range rows {
			subs := optionalInt(r.SubscriberCount)
			if subs == "" {
				subs = "-"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.0f\t%.0f\t%.2f\t%.2f\t\n",
				r.ChannelID, r.ChannelTitle, subs, r.PostsAnalyzed,
				r.Views.Mean, r.Views.Median, r.EngagementRate.Mean, r.EngagementRate.Median)
		}
		return w.Flush()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func runWatch(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	rawURL := fs.String("url", fmt.Sprintf("ws://localhost:%s/api/ws/scrape", cfg.Port), "Scrape event stream URL")
	token := fs.String("token", "", "Admin token (issued with the token command when AUTH_ENABLED)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	target, err := url.Parse(*rawURL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	header := http.Header{}
	if *token != "" {
		header.Set("Authorization", "Bearer "+*token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, target.String(), header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial %s: %w (status %d)", target, err, resp.StatusCode)
		}
		return fmt.Errorf("dial %s: %w", target, err)
	}
	defer func() { _ = conn.Close() }()
	log.Printf("watching %s", target)

	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		var ev notifications.ScrapeEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			log.Printf("unparsed message: %s", raw)
			continue
		}
		fmt.Printf("%s  %-26s %s  %s\n", ev.Timestamp.Format(time.RFC3339), ev.Type, ev.RunID, ev.Payload)
	}
}

func runToken(_ context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	subject := fs.String("subject", "operator", "Token subject")
	ttl := fs.Duration("ttl", 24*time.Hour, "Token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	token, err := middleware.IssueAdminToken(cfg.JWTSecret, *subject, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
