package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/senira34/lolipop-wear/internal/apiclient"
	"github.com/senira34/lolipop-wear/internal/cart"
	"github.com/senira34/lolipop-wear/internal/config"
	"github.com/senira34/lolipop-wear/internal/logger"
)

type globalOptions struct {
	configFile   string
	apiURL       string
	redisSession string
	json         bool
}

// app bundles what a command needs once config is loaded.
type app struct {
	cfg    *config.Config
	client *apiclient.Client
	logger *slog.Logger
	out    io.Writer
	json   bool

	closers []func() error
}

func newApp(opts *globalOptions, out io.Writer) (*app, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	if opts.apiURL != "" {
		cfg.Client.APIURL = opts.apiURL
	}

	return &app{
		cfg:    cfg,
		client: apiclient.New(cfg.Client.APIURL, 30*time.Second),
		logger: logger.New(os.Stderr, false, slog.LevelWarn),
		out:    out,
		json:   opts.json,
	}, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		_ = c()
	}
}

// openCart loads the cart from Redis when a session id is given, otherwise
// from the local cart file (a SQLite database for .db paths, JSON elsewhere).
func (a *app) openCart(ctx context.Context, redisSession string) (*cart.Cart, error) {
	var store cart.Store
	if redisSession != "" {
		if a.cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("--redis-session needs redis.addr (REDIS_ADDR) to be set")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		a.closers = append(a.closers, client.Close)
		store = cart.NewRedisStore(client, redisSession)
	} else if path := a.cartFile(); isSQLitePath(path) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create cart dir: %w", err)
		}
		db, err := cart.NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		store = db
	} else {
		store = cart.NewFileStore(path)
	}
	return cart.Open(ctx, store)
}

func (a *app) cartFile() string {
	if a.cfg.Client.CartFile != "" {
		return a.cfg.Client.CartFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".lolipop", "cart.json")
	}
	return filepath.Join(home, ".lolipop", "cart.json")
}

// isSQLitePath reports whether the cart file should be a SQLite database
// rather than a JSON document.
func isSQLitePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
