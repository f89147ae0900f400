package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/mendicot/internal/client"
	"github.com/lox/mendicot/internal/tui"
)

// ClientCmd runs the terminal UI for a human player.
type ClientCmd struct {
	Config   string `short:"c" default:"mendicot-client.hcl" help:"Path to HCL configuration file"`
	URL      string `short:"u" help:"Server URL to connect to (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	LogFile  string `help:"Log file path (overrides config)"`
}

func (c *ClientCmd) Run() error {
	cfg, err := client.LoadClientConfig(c.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if c.URL != "" {
		cfg.Server.URL = c.URL
	}
	if c.LogLevel != "" {
		cfg.UI.LogLevel = c.LogLevel
	}
	if c.LogFile != "" {
		cfg.UI.LogFile = c.LogFile
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	logger, err := setupLogger(logFile, cfg.UI.LogLevel)
	if err != nil {
		return err
	}
	logger.Info("Starting Mendicot client", "server", cfg.Server.URL, "config", c.Config)

	tui.ConfigureColors(os.Stdout)

	wsClient := client.NewClient(cfg.Server.URL, logger)
	model := tui.NewModel(wsClient, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())

	model.AddLogEntry("=== Mendicot ===")
	model.AddLogEntry("Server: " + cfg.Server.URL)
	model.AddLogEntry("Type a card (10h, qs, A♠) or its number in your hand, then Enter.")
	model.AddLogEntry("")

	// Handlers must be in place before the first server message arrives.
	tui.Bridge(wsClient, program)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout())
	err = wsClient.Connect(ctx)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer func() { _ = wsClient.Disconnect() }()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
