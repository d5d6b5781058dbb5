package main

import (
	"fmt"
	"io"
	"os"

	"github.com/smileynet/bingo/internal/config"
)

// InitCmd writes the default configuration file.
type InitCmd struct {
	Path  string `help:"Where to write the config." default:".bingo/config.yaml"`
	Force bool   `help:"Overwrite an existing file."`
}

// Run executes the init command.
func (c *InitCmd) Run() error {
	return c.run(os.Stdout)
}

func (c *InitCmd) run(w io.Writer) error {
	if err := config.WriteDefault(c.Path, c.Force); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Wrote %s\n", c.Path)
	return nil
}
