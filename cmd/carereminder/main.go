// Command carereminder runs the caregiving reminder service.
//
// Usage:
//
//	carereminder                     # terminal UI
//	carereminder -mode serve         # HTTP API
//	carereminder -mode mcp           # MCP server on stdio
//
// Configuration is read from ~/.config/carereminder/config.yaml, a .env
// file in the working directory and CAREREMINDER_* environment variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/benbjohnson/clock"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/nhle/carereminder/internal/api"
	"github.com/nhle/carereminder/internal/app"
	"github.com/nhle/carereminder/internal/logging"
	"github.com/nhle/carereminder/internal/mcpserver"
	"github.com/nhle/carereminder/internal/model"
	"github.com/nhle/carereminder/internal/notify"
	"github.com/nhle/carereminder/internal/reminder"
	"github.com/nhle/carereminder/internal/storage"
)

const (
	modeTUI   = "tui"
	modeServe = "serve"
	modeMCP   = "mcp"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to the YAML config file")
	mode := flag.String("mode", modeTUI, "run mode: tui, serve or mcp")
	addr := flag.String("addr", "", "HTTP listen address for serve mode (overrides server.addr)")
	flag.Parse()

	if err := run(*configPath, *mode, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "carereminder: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, mode, addr string) error {
	// A missing .env is normal.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	logOut, closeLog, err := logOutput(mode, cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	log := logging.New(cfg.Log, logOut)

	loc, err := cfg.Scheduler.Location()
	if err != nil {
		return err
	}

	adapter, closeStorage, err := storage.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err)
	}
	defer func() {
		if err := closeStorage(); err != nil {
			log.WithError(err).Warn("closing storage")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.New()

	platform := notify.NewLocalPlatform(clk, loc, log, notify.NewLogDeliverer(log))
	if cfg.Mailbox.Enabled {
		mb, err := openMailbox(ctx, cfg, clk)
		if err != nil {
			return err
		}
		platform.AddDeliverer(mb)
	}

	store := reminder.New(adapter, notify.NewScheduler(platform, clk, loc, log), reminder.Options{
		Clock:        clk,
		Location:     loc,
		Logger:       log,
		PollInterval: cfg.Scheduler.PollInterval(),
		DueWindow:    cfg.Scheduler.DueWindow(),
	})
	platform.OnDelivered(store.HandleDelivered)

	session := cfg.Session
	store.OnUserChanged(ctx, &session)

	platform.Start()
	defer platform.Stop()
	store.Rearm(ctx)
	store.Start(ctx)
	defer store.Stop()

	log.WithFields(logrus.Fields{
		"mode":    mode,
		"storage": cfg.Storage.Backend,
		"user_id": session.ID,
	}).Info("carereminder started")

	switch mode {
	case modeTUI:
		return runTUI(ctx, store, platform)
	case modeServe:
		return api.New(store, log).ListenAndServe(ctx, cfg.Server.Addr)
	case modeMCP:
		return mcpserver.New(store).ServeStdio()
	default:
		return fmt.Errorf("unknown mode %q (supported: %s, %s, %s)", mode, modeTUI, modeServe, modeMCP)
	}
}

func runTUI(ctx context.Context, store *reminder.Store, platform *notify.LocalPlatform) error {
	notifier := &app.Notifier{}
	platform.AddDeliverer(notifier)

	p := tea.NewProgram(app.New(store), tea.WithAltScreen(), tea.WithContext(ctx))
	notifier.SetProgram(p)
	defer notifier.SetProgram(nil)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}

// openMailbox builds the IMAP deliverer with its password from the
// keyring.
func openMailbox(ctx context.Context, cfg *model.AppConfig, clk clock.Clock) (*notify.Mailbox, error) {
	ring, err := storage.OpenKeyring(cfg.Storage.KeyringDir)
	if err != nil {
		return nil, err
	}
	password, ok, err := ring.Get(ctx, cfg.Mailbox.PasswordKey)
	if err != nil {
		return nil, fmt.Errorf("reading mailbox password: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("mailbox password not found in keyring under %q", cfg.Mailbox.PasswordKey)
	}
	return notify.NewMailbox(cfg.Mailbox, password, clk), nil
}

// logOutput picks where logs go. The TUI owns the terminal, so it logs to
// a file next to the database.
func logOutput(mode string, cfg *model.AppConfig) (io.Writer, func(), error) {
	if mode != modeTUI {
		return os.Stderr, func() {}, nil
	}

	dir := filepath.Dir(cfg.Storage.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, "carereminder.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}
