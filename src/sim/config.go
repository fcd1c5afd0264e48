package sim

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/procsim/src/rendezvous"
	"github.com/kelseyhightower/envconfig"
)

const (
	DefaultProcesses  = 4
	MaxProcesses      = 99
	DefaultPromptText = "Enter the process operation (e.g., Proc1 0 2 2): "
	EnvPrefix         = "procsim"
)

type PromptMode string

const (
	PromptAlways PromptMode = "always"
	PromptNever  PromptMode = "never"
	PromptAuto   PromptMode = "auto" // prompt only when input is a terminal
)

// Config controls one simulation run.
type Config struct {
	Processes    int               `toml:"processes" envconfig:"PROCESSES"`
	ChannelSlots int               `toml:"channel_slots" envconfig:"CHANNEL_SLOTS"` // 0 selects Processes-1
	Policy       rendezvous.Policy `toml:"policy" envconfig:"POLICY"`
	Prompt       PromptMode        `toml:"prompt" envconfig:"PROMPT"`
	PromptText   string            `toml:"prompt_text" envconfig:"PROMPT_TEXT"`
}

// DefaultConfig returns the four-process legacy setup.
func DefaultConfig() Config {
	return Config{
		Processes:    DefaultProcesses,
		ChannelSlots: 0,
		Policy:       rendezvous.PolicyLegacy,
		Prompt:       PromptAlways,
		PromptText:   DefaultPromptText,
	}
}

// LoadConfig layers an optional TOML file and PROCSIM_* environment
// variables over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, fmt.Errorf("decode config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			sort.Strings(keys)
			return cfg, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks bounds and normalizes case-insensitive enum values.
func (c *Config) Validate() error {
	if c.Processes < 2 || c.Processes > MaxProcesses {
		return fmt.Errorf("processes must be in [2, %d], got %d", MaxProcesses, c.Processes)
	}
	if c.ChannelSlots < 0 {
		return fmt.Errorf("channel_slots must be >= 0, got %d", c.ChannelSlots)
	}

	policy, err := rendezvous.ParsePolicy(string(c.Policy))
	if err != nil {
		return err
	}
	c.Policy = policy

	mode, err := ParsePromptMode(string(c.Prompt))
	if err != nil {
		return err
	}
	c.Prompt = mode
	return nil
}

// Slots is the number of messages the channel accepts over one run.
func (c Config) Slots() int {
	if c.ChannelSlots > 0 {
		return c.ChannelSlots
	}
	return c.Processes - 1
}

func ParsePromptMode(s string) (PromptMode, error) {
	switch m := PromptMode(strings.ToLower(strings.TrimSpace(s))); m {
	case PromptAlways, PromptNever, PromptAuto:
		return m, nil
	default:
		return "", fmt.Errorf("unknown prompt mode %q (want always, never or auto)", s)
	}
}
