package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/procsim/src/rendezvous"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "procsim.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\") failed: %v", err)
	}
	if cfg.Processes != DefaultProcesses {
		t.Fatalf("Processes = %d, want %d", cfg.Processes, DefaultProcesses)
	}
	if cfg.Slots() != DefaultProcesses-1 {
		t.Fatalf("Slots() = %d, want %d", cfg.Slots(), DefaultProcesses-1)
	}
	if cfg.Policy != rendezvous.PolicyLegacy {
		t.Fatalf("Policy = %q, want legacy", cfg.Policy)
	}
	if cfg.Prompt != PromptAlways || cfg.PromptText != DefaultPromptText {
		t.Fatalf("prompt = %q/%q", cfg.Prompt, cfg.PromptText)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
processes = 6
channel_slots = 10
policy = "STRICT"
prompt = "never"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Processes != 6 || cfg.Slots() != 10 {
		t.Fatalf("Processes/Slots = %d/%d, want 6/10", cfg.Processes, cfg.Slots())
	}
	if cfg.Policy != rendezvous.PolicyStrict {
		t.Fatalf("Policy = %q, want strict", cfg.Policy)
	}
	if cfg.Prompt != PromptNever {
		t.Fatalf("Prompt = %q, want never", cfg.Prompt)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "processes = 6\n")
	t.Setenv("PROCSIM_PROCESSES", "3")
	t.Setenv("PROCSIM_POLICY", "strict")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Processes != 3 {
		t.Fatalf("Processes = %d, want env override 3", cfg.Processes)
	}
	if cfg.Policy != rendezvous.PolicyStrict {
		t.Fatalf("Policy = %q, want strict", cfg.Policy)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "unknown key", body: "procs = 4\n"},
		{name: "malformed toml", body: "processes = \n"},
		{name: "too few processes", body: "processes = 1\n"},
		{name: "too many processes", body: "processes = 100\n"},
		{name: "negative slots", body: "channel_slots = -1\n"},
		{name: "bad policy", body: `policy = "fair"` + "\n"},
		{name: "bad prompt", body: `prompt = "sometimes"` + "\n"},
		{name: "bad env value", body: "", env: map[string]string{"PROCSIM_PROCESSES": "four"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(writeConfig(t, tc.body)); err == nil {
				t.Fatalf("LoadConfig accepted %q", tc.body)
			}
		})
	}
}

func TestParsePromptMode(t *testing.T) {
	tests := []struct {
		in   string
		want PromptMode
		ok   bool
	}{
		{"always", PromptAlways, true},
		{" Never ", PromptNever, true},
		{"AUTO", PromptAuto, true},
		{"", "", false},
	}
	for _, tc := range tests {
		got, err := ParsePromptMode(tc.in)
		if (err == nil) != tc.ok || got != tc.want {
			t.Fatalf("ParsePromptMode(%q) = %q, %v", tc.in, got, err)
		}
	}
}
