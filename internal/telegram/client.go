// Package telegram reads broadcast channels over MTProto using gotd.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"tgscraper/internal/models"
	"tgscraper/internal/observability"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/dcs"
	"github.com/gotd/td/tg"
	"golang.org/x/net/proxy"
)

// Config holds MTProto credentials and connection settings.
type Config struct {
	APIID       int
	APIHash     string
	Phone       string
	Password    string
	SessionPath string
	ProxyURL    string
}

// Client owns the MTProto connection. Once Start has authorized, it serves
// fetches through a Source bound to the live connection.
type Client struct {
	cfg    Config
	client *telegram.Client

	ready chan struct{}
	done  chan struct{}

	mu       sync.RWMutex
	source   *Source
	startErr error
}

// New builds a client with file-backed session storage and, when ProxyURL
// is set, a SOCKS5 dialer.
func New(cfg Config) (*Client, error) {
	if cfg.APIID == 0 || cfg.APIHash == "" {
		return nil, errors.New("TELEGRAM_API_ID and TELEGRAM_API_HASH are required")
	}
	if cfg.SessionPath == "" {
		cfg.SessionPath = "session/telegram.json"
	}
	if err := os.MkdirAll(filepath.Dir(cfg.SessionPath), 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	opts := telegram.Options{
		SessionStorage: &session.FileStorage{Path: cfg.SessionPath},
	}
	if cfg.ProxyURL != "" {
		resolver, err := proxyResolver(cfg.ProxyURL)
		if err != nil {
			return nil, err
		}
		opts.Resolver = resolver
	}

	return &Client{
		cfg:    cfg,
		client: telegram.NewClient(cfg.APIID, cfg.APIHash, opts),
		ready:  make(chan struct{}),
		done:   make(chan struct{}),
	}, nil
}

func proxyResolver(raw string) (dcs.Resolver, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	d, err := proxy.FromURL(u, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("proxy dialer: %w", err)
	}
	dc, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, errors.New("proxy dialer missing context")
	}
	return dcs.Plain(dcs.PlainOptions{Dial: dc.DialContext}), nil
}

func (c *Client) requireAuthorized(ctx context.Context) error {
	status, err := c.client.Auth().Status(ctx)
	if err != nil {
		return fmt.Errorf("auth status: %w", err)
	}
	if !status.Authorized {
		return ErrUnauthorized
	}
	return nil
}

// Start connects with the stored session and blocks until ctx is done.
// Fetches made meanwhile wait for the connection to become ready.
func (c *Client) Start(ctx context.Context) error {
	defer close(c.done)

	err := c.client.Run(ctx, func(ctx context.Context) error {
		if err := c.requireAuthorized(ctx); err != nil {
			return err
		}
		c.mu.Lock()
		c.source = NewSource(c.client.API())
		c.mu.Unlock()
		close(c.ready)
		observability.GlobalLogger.InfoContext(ctx, "telegram client connected")
		<-ctx.Done()
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		c.mu.Lock()
		c.startErr = err
		c.mu.Unlock()
		observability.GlobalLogger.ErrorContext(ctx, "telegram client stopped", "error", err.Error())
		return fmt.Errorf("telegram client: %w", err)
	}
	return nil
}

// Do runs fn over a short-lived authorized connection. Used by the CLI.
func (c *Client) Do(ctx context.Context, fn func(ctx context.Context, src *Source) error) error {
	return c.client.Run(ctx, func(ctx context.Context) error {
		if err := c.requireAuthorized(ctx); err != nil {
			return err
		}
		return fn(ctx, NewSource(c.client.API()))
	})
}

// Login runs the interactive sign-in flow and stores the session. prompt is
// asked for the login code Telegram sends.
func (c *Client) Login(ctx context.Context, prompt func(ctx context.Context) (string, error)) error {
	if c.cfg.Phone == "" {
		return errors.New("TELEGRAM_PHONE is required to log in")
	}
	codeAuth := auth.CodeAuthenticatorFunc(func(ctx context.Context, _ *tg.AuthSentCode) (string, error) {
		return prompt(ctx)
	})
	flow := auth.NewFlow(auth.Constant(c.cfg.Phone, c.cfg.Password, codeAuth), auth.SendCodeOptions{})

	return c.client.Run(ctx, func(ctx context.Context) error {
		if err := c.client.Auth().IfNecessary(ctx, flow); err != nil {
			return fmt.Errorf("auth flow: %w", err)
		}
		return nil
	})
}

func (c *Client) live(ctx context.Context) (*Source, error) {
	select {
	case <-c.ready:
		c.mu.RLock()
		defer c.mu.RUnlock()
		return c.source, nil
	case <-c.done:
		c.mu.RLock()
		defer c.mu.RUnlock()
		if c.startErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotReady, c.startErr)
		}
		return nil, ErrNotReady
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) FetchRecentPosts(ctx context.Context, ref models.ChannelRef, limit int) ([]models.FetchedPost, error) {
	src, err := c.live(ctx)
	if err != nil {
		return nil, err
	}
	return src.FetchRecentPosts(ctx, ref, limit)
}

func (c *Client) FetchChannelMetadata(ctx context.Context, ref models.ChannelRef) (models.ChannelMetadata, error) {
	src, err := c.live(ctx)
	if err != nil {
		return models.ChannelMetadata{}, err
	}
	return src.FetchChannelMetadata(ctx, ref)
}

func (c *Client) FetchPost(ctx context.Context, ref models.ChannelRef, messageID int) (models.FetchedPost, error) {
	src, err := c.live(ctx)
	if err != nil {
		return models.FetchedPost{}, err
	}
	return src.FetchPost(ctx, ref, messageID)
}

func (c *Client) DiscoverChannels(ctx context.Context) ([]models.DiscoveredChannel, error) {
	src, err := c.live(ctx)
	if err != nil {
		return nil, err
	}
	return src.DiscoverChannels(ctx)
}
