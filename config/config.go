// Package config provides configuration loading and validation for boxstack
// simulations.
package config

import (
	"fmt"
	"strings"
)

// Policy names a robot decision policy.
type Policy string

const (
	// PolicyCenter funnels boxes into a shifting destination column.
	PolicyCenter Policy = "center"
	// PolicyCooldown stacks boxes anywhere, with a rest after each drop.
	PolicyCooldown Policy = "cooldown"
)

// UnmarshalText accepts policy names case-insensitively.
func (p *Policy) UnmarshalText(text []byte) error {
	v := Policy(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("unknown policy %q", string(text))
	}

	*p = v

	return nil
}

// Valid reports whether p names a known policy.
func (p Policy) Valid() bool {
	return p == PolicyCenter || p == PolicyCooldown
}

// Config is the full set of parameters of one simulation.
type Config struct {
	Policy         Policy    `json:"policy"           mapstructure:"policy"           yaml:"policy"`
	Seed           int64     `json:"seed"             mapstructure:"seed"             yaml:"seed"`
	Grid           GridSize  `json:"grid"             mapstructure:"grid"             yaml:"grid"`
	NumAgents      int       `json:"num_agents"       mapstructure:"num_agents"       yaml:"num_agents"`
	NumBoxes       int       `json:"num_boxes"        mapstructure:"num_boxes"        yaml:"num_boxes"`
	MaxStackHeight int       `json:"max_stack_height" mapstructure:"max_stack_height" yaml:"max_stack_height"`
	MaxIterations  int       `json:"max_iterations"   mapstructure:"max_iterations"   yaml:"max_iterations"`
	TargetStacks   int       `json:"target_stacks"    mapstructure:"target_stacks"    yaml:"target_stacks"`
	CooldownSteps  int       `json:"cooldown_steps"   mapstructure:"cooldown_steps"   yaml:"cooldown_steps"`
	Recording      Recording `json:"recording"        mapstructure:"recording"        yaml:"recording"`
	Monitor        Monitor   `json:"monitor"          mapstructure:"monitor"          yaml:"monitor"`
}

// GridSize is the size of the lattice.
type GridSize struct {
	Width  int `json:"width"  mapstructure:"width"  yaml:"width"`
	Height int `json:"height" mapstructure:"height" yaml:"height"`
}

// Cells returns the number of cells.
func (g GridSize) Cells() int {
	return g.Width * g.Height
}

// Recording controls the trace output.
type Recording struct {
	Enabled bool `json:"enabled" mapstructure:"enabled" yaml:"enabled"`
	// Backend is "sqlite" or "clickhouse". Empty means sqlite.
	Backend string `json:"backend,omitempty" mapstructure:"backend" yaml:"backend,omitempty"`
	// Path is the SQLite file name without its .sqlite3 suffix.
	Path string `json:"path,omitempty" mapstructure:"path" yaml:"path,omitempty"`
	// DSN is the ClickHouse connection string.
	DSN         string `json:"dsn,omitempty"          mapstructure:"dsn"          yaml:"dsn,omitempty"`
	SkipActions bool   `json:"skip_actions,omitempty" mapstructure:"skip_actions" yaml:"skip_actions,omitempty"`
	// TickStart and TickEnd bound the recorded ticks, both included. A zero
	// TickEnd records to the end of the run.
	TickStart int `json:"tick_start,omitempty" mapstructure:"tick_start" yaml:"tick_start,omitempty"`
	TickEnd   int `json:"tick_end,omitempty"   mapstructure:"tick_end"   yaml:"tick_end,omitempty"`
}

// Monitor controls the HTTP monitoring server.
type Monitor struct {
	Enabled bool `json:"enabled"        mapstructure:"enabled" yaml:"enabled"`
	Port    int  `json:"port,omitempty" mapstructure:"port"    yaml:"port,omitempty"`
}

// Default returns the stock parameters of a policy: a 20x20 grid with five
// robots and one hundred boxes, stacks of five and twenty stacks to build.
func Default(p Policy) Config {
	cfg := Config{
		Policy:         p,
		Seed:           1,
		Grid:           GridSize{Width: 20, Height: 20},
		NumAgents:      5,
		NumBoxes:       100,
		MaxStackHeight: 5,
		MaxIterations:  5000,
		TargetStacks:   20,
	}

	if p == PolicyCooldown {
		cfg.MaxIterations = 20000
		cfg.CooldownSteps = 3
	}

	return cfg
}

// Validate checks that a model can be built from c.
func (c Config) Validate() error {
	checks := []struct {
		failed bool
		field  string
		reason string
	}{
		{!c.Policy.Valid(), "policy", fmt.Sprintf("unknown policy %q", c.Policy)},
		{c.Grid.Width <= 0, "grid.width", "must be > 0"},
		{c.Grid.Height <= 0, "grid.height", "must be > 0"},
		{c.NumAgents <= 0, "num_agents", "must be > 0"},
		{c.NumBoxes < 0, "num_boxes", "must be >= 0"},
		{c.MaxStackHeight < 1, "max_stack_height", "must be >= 1"},
		{c.MaxIterations < 1, "max_iterations", "must be >= 1"},
		{c.TargetStacks < 1, "target_stacks", "must be >= 1"},
		{c.CooldownSteps < 0, "cooldown_steps", "must be >= 0"},
		{c.Monitor.Port < 0, "monitor.port", "must be >= 0"},
		{!validBackend(c.Recording.Backend), "recording.backend",
			fmt.Sprintf("unknown backend %q", c.Recording.Backend)},
		{c.Recording.Enabled && c.Recording.Backend == "clickhouse" &&
			c.Recording.DSN == "", "recording.dsn", "is required for clickhouse"},
		{c.Recording.TickStart < 0, "recording.tick_start", "must be >= 0"},
		{c.Recording.TickEnd < 0 ||
			(c.Recording.TickEnd > 0 && c.Recording.TickEnd < c.Recording.TickStart),
			"recording.tick_end", "must be 0 or >= recording.tick_start"},
	}

	for _, check := range checks {
		if check.failed {
			return &ConfigurationError{Field: check.field, Reason: check.reason}
		}
	}

	cells := c.Grid.Cells()
	if c.NumAgents > cells {
		return &ConfigurationError{
			Field:  "num_agents",
			Reason: fmt.Sprintf("%d robots do not fit on %d cells", c.NumAgents, cells),
		}
	}

	if free := cells - c.NumAgents; c.NumBoxes > free {
		return &ConfigurationError{
			Field: "num_boxes",
			Reason: fmt.Sprintf("%d boxes do not fit on the %d cells left free by robots",
				c.NumBoxes, free),
		}
	}

	return nil
}

func validBackend(b string) bool {
	return b == "" || b == "sqlite" || b == "clickhouse"
}

// ConfigurationError reports parameters a model cannot be built from.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}
