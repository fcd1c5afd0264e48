package logcfg

import (
	"fmt"
	"os"

	logs "github.com/danmuck/smplog"
)

const envConfigPath = "SMPLOG_CONFIG"

var candidates = []string{
	"./procsim.log.toml",
	"./local/smplog.config.toml",
}

// Load resolves the logger configuration. An explicit path wins, then
// SMPLOG_CONFIG, then the first readable candidate file, then defaults.
// An explicit path that cannot be read is reported on stderr and skipped.
//
// Leveled log output goes to stderr; stdout carries the simulation transcript.
func Load(explicit string) logs.Config {
	cfg := resolve(explicit)
	cfg.Writer = os.Stderr
	return cfg
}

func resolve(explicit string) logs.Config {
	if explicit != "" {
		cfg, err := logs.ConfigFromFile(explicit)
		if err == nil {
			return cfg
		}
		fmt.Fprintf(os.Stderr, "log config %s: %v; falling back\n", explicit, err)
	}

	if path := os.Getenv(envConfigPath); path != "" {
		if cfg, err := logs.ConfigFromFile(path); err == nil {
			return cfg
		}
	}

	for _, path := range candidates {
		if cfg, err := logs.ConfigFromFile(path); err == nil {
			return cfg
		}
	}

	return logs.DefaultConfig()
}
