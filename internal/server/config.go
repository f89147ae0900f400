package server

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/mendicot/internal/game"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Game   *GameSettings  `hcl:"game,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// GameSettings tunes the session rules
type GameSettings struct {
	StartDelayMS int    `hcl:"start_delay_ms,optional"`
	TensShortcut bool   `hcl:"tens_shortcut,optional"`
	LeavePolicy  string `hcl:"leave_policy,optional"`
	Seed         *int64 `hcl:"seed,optional"`
}

const (
	defaultAddress      = "localhost"
	defaultPort         = 8080
	defaultLogLevel     = "info"
	defaultStartDelayMS = 1000
)

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  defaultAddress,
			Port:     defaultPort,
			LogLevel: defaultLogLevel,
		},
		Game: &GameSettings{
			StartDelayMS: defaultStartDelayMS,
			LeavePolicy:  string(game.LeaveAbort),
		},
	}
}

// LoadServerConfig loads server configuration from HCL file. A missing file
// yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = defaultAddress
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaultLogLevel
	}
	if c.Game == nil {
		c.Game = &GameSettings{}
	}
	if c.Game.StartDelayMS == 0 {
		c.Game.StartDelayMS = defaultStartDelayMS
	}
	if c.Game.LeavePolicy == "" {
		c.Game.LeavePolicy = string(game.LeaveAbort)
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	if c.Game == nil {
		return nil
	}
	if c.Game.StartDelayMS < 0 {
		return fmt.Errorf("game: start delay must not be negative")
	}
	if _, err := game.ParseLeavePolicy(c.Game.LeavePolicy); err != nil {
		return fmt.Errorf("game: %w", err)
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Rules converts the game block into session rules. Call Validate first.
func (c *ServerConfig) Rules() game.Rules {
	rules := game.DefaultRules()
	if c.Game == nil {
		return rules
	}
	if c.Game.StartDelayMS > 0 {
		rules.StartDelay = time.Duration(c.Game.StartDelayMS) * time.Millisecond
	}
	rules.TensShortcut = c.Game.TensShortcut
	if policy, err := game.ParseLeavePolicy(c.Game.LeavePolicy); err == nil {
		rules.LeavePolicy = policy
	}
	return rules
}
