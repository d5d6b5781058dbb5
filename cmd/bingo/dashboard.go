package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/smileynet/bingo/internal/dashboard"
	"github.com/smileynet/bingo/internal/logging"
)

// DashboardCmd opens the interactive dashboard TUI.
type DashboardCmd struct {
	LogFile string `help:"Log file (overrides config)."`
}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// Run executes the dashboard command. The TUI owns the terminal, so logs
// go to a file.
func (d *DashboardCmd) Run(g *Globals) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("dashboard: requires a terminal (TTY)")
	}

	cfg, err := loadConfig(g)
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	if d.LogFile != "" {
		cfg.Log.File = d.LogFile
	}
	logger, closer, err := logging.OpenFile(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	defer closer.Close() //nolint:errcheck // best-effort close of the log file

	sess, err := connect(cfg, logger)
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	logger.Info("dashboard started", "server", cfg.Server.URL, "identity", sess.identity)

	prog := tea.NewProgram(newDashboardModel(sess), tea.WithAltScreen())
	return d.run(true, prog)
}

// newDashboardModel builds the dashboard over a session.
func newDashboardModel(sess *session) dashboard.Model {
	return dashboard.NewModel(dashboard.Config{
		Store:    sess.store,
		Selector: sess.sel,
		Identity: sess.identity,
		Now:      sess.now,
	})
}

// run executes the tea program, enabling testable wiring.
func (d *DashboardCmd) run(isTTY bool, prog teaRunner) error {
	if !isTTY {
		return fmt.Errorf("dashboard: requires a terminal (TTY)")
	}
	_, err := prog.Run()
	return err
}
