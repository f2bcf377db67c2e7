package config

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BOXSIM_GRID_WIDTH.
const EnvPrefix = "BOXSIM"

// Load resolves a Config from v. A non-empty path names a YAML or JSON file
// that is schema-checked and merged into v first. Keys still unset after
// flags, environment and file are filled from Default of the chosen policy.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		settings, err := readSettings(path)
		if err != nil {
			return Config{}, err
		}

		if err := ValidateSettings(settings); err != nil {
			return Config{}, err
		}

		if err := v.MergeConfigMap(settings); err != nil {
			return Config{}, fmt.Errorf("merge config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	policy := PolicyCenter
	if name := v.GetString("policy"); name != "" {
		if err := policy.UnmarshalText([]byte(name)); err != nil {
			return Config{}, &ConfigurationError{Field: "policy", Reason: err.Error()}
		}
	}

	SetDefaults(v, Default(policy))

	var cfg Config
	hook := viper.DecodeHook(mapstructure.TextUnmarshallerHookFunc())
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// SetDefaults registers every field of cfg as a viper default.
func SetDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("policy", string(cfg.Policy))
	v.SetDefault("seed", cfg.Seed)
	v.SetDefault("grid.width", cfg.Grid.Width)
	v.SetDefault("grid.height", cfg.Grid.Height)
	v.SetDefault("num_agents", cfg.NumAgents)
	v.SetDefault("num_boxes", cfg.NumBoxes)
	v.SetDefault("max_stack_height", cfg.MaxStackHeight)
	v.SetDefault("max_iterations", cfg.MaxIterations)
	v.SetDefault("target_stacks", cfg.TargetStacks)
	v.SetDefault("cooldown_steps", cfg.CooldownSteps)
	v.SetDefault("recording.enabled", cfg.Recording.Enabled)
	v.SetDefault("recording.backend", cfg.Recording.Backend)
	v.SetDefault("recording.path", cfg.Recording.Path)
	v.SetDefault("recording.dsn", cfg.Recording.DSN)
	v.SetDefault("recording.skip_actions", cfg.Recording.SkipActions)
	v.SetDefault("recording.tick_start", cfg.Recording.TickStart)
	v.SetDefault("recording.tick_end", cfg.Recording.TickEnd)
	v.SetDefault("monitor.enabled", cfg.Monitor.Enabled)
	v.SetDefault("monitor.port", cfg.Monitor.Port)
}

func readSettings(path string) (map[string]any, error) {
	fileViper := viper.New()
	fileViper.SetConfigFile(path)

	if err := fileViper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return fileViper.AllSettings(), nil
}
