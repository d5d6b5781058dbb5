package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/smileynet/bingo/internal/api"
	"github.com/smileynet/bingo/internal/bingo"
	"github.com/smileynet/bingo/internal/config"
	"github.com/smileynet/bingo/internal/logging"
	"github.com/smileynet/bingo/internal/selector"
	"github.com/smileynet/bingo/internal/store"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Globals holds flags shared by every command.
type Globals struct {
	Server   string `help:"Server URL (overrides config)."`
	Token    string `help:"Session token (overrides config)."`
	LogLevel string `help:"Log level (overrides config; commands default to warn)." default:"" enum:"debug,info,warn,error,"`
}

// CLI is the top-level command structure for bingo.
type CLI struct {
	Globals

	Version   kong.VersionFlag `help:"Show version." short:"V"`
	Init      InitCmd          `cmd:"" help:"Write a default project config to .bingo/config.yaml."`
	Games     GamesCmd         `cmd:"" help:"List current games."`
	Past      PastCmd          `cmd:"" help:"List past games."`
	Popular   PopularCmd       `cmd:"" help:"Count how often each theme was played."`
	Calendar  CalendarCmd      `cmd:"" help:"Show when each theme was last played."`
	Tickets   TicketsCmd       `cmd:"" help:"List the tickets of a game."`
	Claim     ClaimCmd         `cmd:"" help:"Claim a ticket."`
	Release   ReleaseCmd       `cmd:"" help:"Release a claimed ticket."`
	Show      ShowCmd          `cmd:"" help:"Show the grid of a ticket."`
	Check     CheckCmd         `cmd:"" help:"Toggle a cell on one of your tickets."`
	Dashboard DashboardCmd     `cmd:"" help:"Open interactive dashboard TUI."`
}

// RequestError reports a request the store recorded as failed.
type RequestError struct {
	Resource string
	Kind     store.ErrorKind
	Message  string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %s error: %s", e.Resource, e.Kind, e.Message)
}

// session is the store and its views for one command invocation.
type session struct {
	store    *store.Store
	sel      *selector.Selector
	identity bingo.Identity
	now      func() time.Time
}

// newSession wires a store over backend using cfg. now is the clock of
// both the store and the views.
func newSession(backend store.Backend, cfg *config.Config, logger *slog.Logger, identity bingo.Identity, now func() time.Time) (*session, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	st := store.New(backend,
		store.WithLogger(logger),
		store.WithClock(now),
		store.WithRequestTimeout(cfg.Server.Timeout),
		store.WithUpdateInterval(cfg.Poll.Interval),
		store.WithDiscardSuperseded(cfg.Cache.DiscardSuperseded),
	)
	sel := selector.New(st,
		selector.WithLocation(loc),
		selector.WithMemoSize(cfg.Cache.MemoSize),
	)
	return &session{store: st, sel: sel, identity: identity, now: now}, nil
}

// loadConfig loads .env, layered config from user and project paths, and
// env overrides, then applies the global flags.
func loadConfig(g *Globals) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/bingo/config.yaml"),
		".bingo/config.yaml",
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if g.Server != "" {
		cfg.Server.URL = g.Server
	}
	if g.Token != "" {
		cfg.Session.Token = g.Token
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveIdentity returns the configured user, or the one named by the
// session token.
func resolveIdentity(cfg *config.Config) (bingo.Identity, error) {
	if cfg.Session.User != 0 {
		return bingo.Identity(cfg.Session.User), nil
	}
	return api.IdentityFromToken(cfg.Session.Token)
}

// commandLogLevel is the configured level, or warn so one-shot commands
// stay quiet on stderr.
func commandLogLevel(cfg *config.Config) string {
	if cfg.Log.Level != "" {
		return cfg.Log.Level
	}
	return "warn"
}

// openSession builds a session against the configured server, logging to
// logOut.
func openSession(g *Globals, logOut io.Writer) (*session, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logOut, commandLogLevel(cfg))
	if err != nil {
		return nil, err
	}
	return connect(cfg, logger)
}

// connect creates the API client and a session for cfg.
func connect(cfg *config.Config, logger *slog.Logger) (*session, error) {
	identity, err := resolveIdentity(cfg)
	if err != nil {
		return nil, err
	}
	client, err := api.NewClient(api.ClientConfig{
		BaseURL: cfg.Server.URL,
		Token:   cfg.Session.Token,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	return newSession(client, cfg, logger, identity, time.Now)
}

const (
	exitSuccess = 0
	exitRequest = 1
	exitSetup   = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var re *RequestError
	if errors.As(err, &re) {
		return exitRequest
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("bingo"),
		kong.Description("Terminal client for Musical Bingo."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
