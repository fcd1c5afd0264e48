package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/procsim/src/rendezvous"
	"github.com/danmuck/procsim/src/sim"
)

type RuntimeConfig struct {
	ConfigPath  string
	LogConfig   string
	ScriptPath  string
	JournalPath string
	Stats       bool
	Verbose     bool

	// flag overrides, applied over the config file and environment
	Processes int
	Policy    rendezvous.Policy
	Prompt    sim.PromptMode
}

func defaultConfig() RuntimeConfig {
	return RuntimeConfig{}
}

var defaultRuntimeConfig = defaultConfig()

const CONFIG_FLAG = "--config"
const LOG_CONFIG_FLAG = "--log-config"
const SCRIPT_FLAG = "--script"
const JOURNAL_FLAG = "--journal"
const PROCESSES_FLAG = "--processes"
const POLICY_FLAG = "--policy"
const PROMPT_FLAG = "--prompt"
const STATS_FLAG = "--stats"
const VERBOSE_FLAG = "--verbose"

var valueFlags = []string{
	CONFIG_FLAG,
	LOG_CONFIG_FLAG,
	SCRIPT_FLAG,
	JOURNAL_FLAG,
	PROCESSES_FLAG,
	POLICY_FLAG,
	PROMPT_FLAG,
}

// splitValueFlag recognizes `--flag value` and `--flag=value` for the flags
// that take an argument. next is the index of the last consumed arg.
func splitValueFlag(args []string, i int) (name, value string, next int, ok bool, err error) {
	arg := args[i]
	for _, flag := range valueFlags {
		if arg == flag {
			if i+1 >= len(args) {
				return flag, "", i, true, fmt.Errorf("missing value after %q", flag)
			}
			return flag, strings.TrimSpace(args[i+1]), i + 1, true, nil
		}
		if after, found := strings.CutPrefix(arg, flag+"="); found {
			return flag, strings.TrimSpace(after), i, true, nil
		}
	}
	return "", "", i, false, nil
}

func parseCLI(args []string, cfg RuntimeConfig) (RuntimeConfig, error) {
	runtimeCfg := cfg
	seen := make(map[string]bool)

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == STATS_FLAG {
			runtimeCfg.Stats = true
			continue
		}

		if arg == VERBOSE_FLAG {
			runtimeCfg.Verbose = true
			continue
		}

		name, value, next, ok, err := splitValueFlag(args, i)
		if err != nil {
			return runtimeCfg, err
		}
		if !ok {
			return runtimeCfg, fmt.Errorf("unsupported argument %q", arg)
		}
		if seen[name] {
			return runtimeCfg, fmt.Errorf("%s provided more than once", name)
		}
		seen[name] = true
		i = next

		if value == "" {
			return runtimeCfg, fmt.Errorf("%s requires a non-empty value", name)
		}

		switch name {
		case CONFIG_FLAG:
			runtimeCfg.ConfigPath = value
		case LOG_CONFIG_FLAG:
			runtimeCfg.LogConfig = value
		case SCRIPT_FLAG:
			runtimeCfg.ScriptPath = value
		case JOURNAL_FLAG:
			runtimeCfg.JournalPath = value
		case PROCESSES_FLAG:
			parsed, err := strconv.Atoi(value)
			if err != nil {
				return runtimeCfg, fmt.Errorf("invalid %s value %q: %w", PROCESSES_FLAG, value, err)
			}
			if parsed < 2 || parsed > sim.MaxProcesses {
				return runtimeCfg, fmt.Errorf("%s must be in [2, %d]", PROCESSES_FLAG, sim.MaxProcesses)
			}
			runtimeCfg.Processes = parsed
		case POLICY_FLAG:
			policy, err := rendezvous.ParsePolicy(value)
			if err != nil {
				return runtimeCfg, fmt.Errorf("invalid %s value: %w", POLICY_FLAG, err)
			}
			runtimeCfg.Policy = policy
		case PROMPT_FLAG:
			mode, err := sim.ParsePromptMode(value)
			if err != nil {
				return runtimeCfg, fmt.Errorf("invalid %s value: %w", PROMPT_FLAG, err)
			}
			runtimeCfg.Prompt = mode
		}
	}

	return runtimeCfg, nil
}

// simConfig loads the config file and environment, then applies flag
// overrides.
func (cfg RuntimeConfig) simConfig() (sim.Config, error) {
	simCfg, err := sim.LoadConfig(cfg.ConfigPath)
	if err != nil {
		return simCfg, err
	}
	if cfg.Processes != 0 {
		simCfg.Processes = cfg.Processes
	}
	if cfg.Policy != "" {
		simCfg.Policy = cfg.Policy
	}
	if cfg.Prompt != "" {
		simCfg.Prompt = cfg.Prompt
	}
	if err := simCfg.Validate(); err != nil {
		return simCfg, err
	}
	return simCfg, nil
}

func printUsage(cfg RuntimeConfig) {
	def := sim.DefaultConfig()
	fmt.Printf("Usage: procsim [%s PATH] [%s N] [%s legacy|strict] [%s always|never|auto] [%s PATH] [%s PATH] [%s PATH] [%s] [%s]\n",
		CONFIG_FLAG,
		PROCESSES_FLAG,
		POLICY_FLAG,
		PROMPT_FLAG,
		SCRIPT_FLAG,
		JOURNAL_FLAG,
		LOG_CONFIG_FLAG,
		STATS_FLAG,
		VERBOSE_FLAG,
	)
	fmt.Printf("Commands are read from stdin (or %s) as: Proc<N> <0=SEND|1=RECV> <value> <counterpart>; HALT ends the run.\n", SCRIPT_FLAG)
	fmt.Printf("Processes default to %d; override with %q, a config file, or %s_PROCESSES.\n", def.Processes, PROCESSES_FLAG, strings.ToUpper(sim.EnvPrefix))
	fmt.Printf("Match policy defaults to %q; %q matches SENDs by counterpart and blocks the operation owner.\n", def.Policy, rendezvous.PolicyStrict)
	fmt.Printf("Prompt mode defaults to %q.\n", def.Prompt)
	fmt.Printf("%s writes a replayable event journal; inspect it with `journal dump PATH`.\n", JOURNAL_FLAG)
	fmt.Printf("%s prints run counters after the final snapshot.\n", STATS_FLAG)
	if cfg.ConfigPath != "" {
		fmt.Printf("Config file: %s\n", cfg.ConfigPath)
	}
}
