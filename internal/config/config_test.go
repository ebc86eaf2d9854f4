package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aceteam-ai/hacker-dash/internal/provider"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range ProviderNames() {
		t.Setenv(KeyEnv(name), "")
	}
	t.Setenv("HACKER_DASH_PROVIDER", "")
	t.Setenv("HACKER_DASH_STATUS_PACING", "")
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DefaultProvider != "" || len(cfg.Providers) != 0 {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	pacing := 0.5

	cfg := &Config{
		DefaultProvider: "gemini",
		Runner: RunnerConfig{
			Command:   []string{"python3"},
			KillGrace: 5 * time.Second,
		},
		StatusPacing: &pacing,
	}
	cfg.SetAPIKey("Gemini", "g-secret")

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config permissions = %o, want 600", perm)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.DefaultProvider != "gemini" {
		t.Errorf("DefaultProvider = %q", loaded.DefaultProvider)
	}
	if loaded.Providers["gemini"].APIKey != "g-secret" {
		t.Errorf("gemini api_key = %q", loaded.Providers["gemini"].APIKey)
	}
	if loaded.Runner.KillGrace != 5*time.Second {
		t.Errorf("KillGrace = %v", loaded.Runner.KillGrace)
	}
	if got := loaded.RunnerCommand(); len(got) != 1 || got[0] != "python3" {
		t.Errorf("RunnerCommand() = %v", got)
	}
	if loaded.StatusPacing == nil || *loaded.StatusPacing != 0.5 {
		t.Errorf("StatusPacing = %v", loaded.StatusPacing)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("providers: [not, a, map"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `default_provider: openai
providers:
  openai:
    api_key: sk-file
    model: gpt-4o
    base_url: http://localhost:8080/v1
runner:
  command: ["uv", "run", "--quiet"]
  kill_grace: 10s
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
	pc := cfg.Providers["openai"]
	if pc.Model != "gpt-4o" || pc.BaseURL != "http://localhost:8080/v1" {
		t.Errorf("openai = %+v", pc)
	}
	if strings.Join(cfg.RunnerCommand(), " ") != "uv run --quiet" {
		t.Errorf("RunnerCommand() = %v", cfg.RunnerCommand())
	}
	if cfg.Runner.KillGrace != 10*time.Second {
		t.Errorf("KillGrace = %v", cfg.Runner.KillGrace)
	}
}

func TestResolveProvider(t *testing.T) {
	tests := []struct {
		name string
		flag string
		env  string
		file string
		want string
	}{
		{"default", "", "", "", "anthropic"},
		{"file", "", "", "gemini", "gemini"},
		{"env over file", "", "openai", "gemini", "openai"},
		{"flag over env", "Gemini", "openai", "anthropic", "gemini"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("HACKER_DASH_PROVIDER", tt.env)
			cfg := &Config{DefaultProvider: tt.file}
			if got := cfg.ResolveProvider(tt.flag); got != tt.want {
				t.Errorf("ResolveProvider(%q) = %q, want %q", tt.flag, got, tt.want)
			}
		})
	}
}

func TestAPIKey(t *testing.T) {
	clearEnv(t)

	cfg := &Config{}
	cfg.SetAPIKey("anthropic", "from-file")

	key, err := cfg.APIKey("anthropic")
	if err != nil || key != "from-file" {
		t.Errorf("APIKey(anthropic) = %q, %v", key, err)
	}

	t.Setenv("ANTHROPIC_API_KEY", "from-env")
	key, err = cfg.APIKey("anthropic")
	if err != nil || key != "from-env" {
		t.Errorf("environment should override file, got %q, %v", key, err)
	}

	if _, err := cfg.APIKey("gemini"); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
	if _, err := cfg.APIKey("cohere"); !errors.Is(err, provider.ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	negative := -1.0
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"empty", Config{}, false},
		{"known provider", Config{DefaultProvider: "OpenAI"}, false},
		{"unknown default", Config{DefaultProvider: "cohere"}, true},
		{"unknown provider section", Config{Providers: map[string]ProviderConfig{"mistral": {}}}, true},
		{"negative grace", Config{Runner: RunnerConfig{KillGrace: -time.Second}}, true},
		{"negative pacing", Config{StatusPacing: &negative}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPacing(t *testing.T) {
	clearEnv(t)

	cfg := &Config{}
	if got := cfg.Pacing(); got != 1 {
		t.Errorf("default Pacing() = %v, want 1", got)
	}

	zero := 0.0
	cfg.StatusPacing = &zero
	if got := cfg.Pacing(); got != 0 {
		t.Errorf("Pacing() = %v, want 0", got)
	}

	t.Setenv("HACKER_DASH_STATUS_PACING", "2.5")
	if got := cfg.Pacing(); got != 2.5 {
		t.Errorf("Pacing() with env = %v, want 2.5", got)
	}
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"abc", "***"},
		{"sk-ant-12345678", "***********5678"},
	}
	for _, tt := range tests {
		if got := MaskKey(tt.in); got != tt.want {
			t.Errorf("MaskKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProviderNamesFollowRegistry(t *testing.T) {
	reg := provider.DefaultRegistry()
	got := ProviderNames()
	want := reg.Names()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ProviderNames() = %v, want %v", got, want)
	}

	clearEnv(t)
	cfg := &Config{}
	for _, name := range want {
		t.Setenv(KeyEnv(name), "key-"+name)
		key, err := cfg.APIKey(name)
		if err != nil || key != "key-"+name {
			t.Errorf("APIKey(%s) = %q, %v", name, key, err)
		}
		if _, err := reg.New(name, provider.Config{APIKey: key}, provider.Options{}); err != nil {
			t.Errorf("registry cannot build configured provider %s: %v", name, err)
		}
	}
}

func TestKeyEnv(t *testing.T) {
	tests := map[string]string{
		"anthropic": "ANTHROPIC_API_KEY",
		"gemini":    "GEMINI_API_KEY",
		"OpenAI":    "OPENAI_API_KEY",
	}
	for name, want := range tests {
		if got := KeyEnv(name); got != want {
			t.Errorf("KeyEnv(%q) = %q, want %q", name, got, want)
		}
	}
}
