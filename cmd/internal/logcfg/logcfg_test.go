package logcfg

import (
	"os"
	"path/filepath"
	"testing"

	logs "github.com/danmuck/smplog"
)

func TestLoadWritesToStderr(t *testing.T) {
	t.Setenv(envConfigPath, "")
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "log.toml")
	if err := os.WriteFile(path, []byte("level = \"warn\"\nno_color = true\n"), 0o644); err != nil {
		t.Fatalf("write log config: %v", err)
	}

	tests := []struct {
		name      string
		explicit  string
		wantLevel logs.Level
	}{
		{name: "defaults", explicit: "", wantLevel: logs.DefaultConfig().Level},
		{name: "explicit file", explicit: path, wantLevel: logs.WarnLevel},
		{name: "unreadable file falls back", explicit: filepath.Join(t.TempDir(), "missing.toml"), wantLevel: logs.DefaultConfig().Level},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load(tt.explicit)
			if cfg.Writer != os.Stderr {
				t.Fatalf("Load(%q).Writer = %v, want os.Stderr", tt.explicit, cfg.Writer)
			}
			if cfg.Level != tt.wantLevel {
				t.Fatalf("Load(%q).Level = %v, want %v", tt.explicit, cfg.Level, tt.wantLevel)
			}
		})
	}
}
