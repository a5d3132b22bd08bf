package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadWritesDefaultsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, used, err := Load(path)
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if used != path {
		t.Fatalf("path = %q", used)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}

	again, _, err := Load(path)
	if err != nil {
		t.Fatalf("reload error = %v", err)
	}
	if diff := cmp.Diff(cfg, again); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadHydratesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
user:
  name: Ada
  theme: dark
listen:
  wait: 3s
  typed_timeout: 0s
apps:
  notepad: [mousepad]
tts:
  enabled: false
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}

	if cfg.User.Name != "Ada" || cfg.User.Theme != "dark" || cfg.User.SpeechRate != 150 {
		t.Fatalf("user = %+v", cfg.User)
	}
	if cfg.Listen.Wait != 3*time.Second || cfg.Listen.TypedTimeout != 0 {
		t.Fatalf("listen = %+v", cfg.Listen)
	}
	if cfg.Listen.MaxUtterance != 10*time.Second {
		t.Fatalf("max utterance = %v", cfg.Listen.MaxUtterance)
	}
	if diff := cmp.Diff([]string{"mousepad"}, cfg.Apps.Notepad); diff != "" {
		t.Fatalf("notepad mismatch:\n%s", diff)
	}
	if diff := cmp.Diff(Default().Apps.Shutdown, cfg.Apps.Shutdown); diff != "" {
		t.Fatalf("shutdown mismatch:\n%s", diff)
	}
	if cfg.TTS.Enabled || cfg.TTS.Voice != "en" {
		t.Fatalf("tts = %+v", cfg.TTS)
	}
	if cfg.Socket != "/tmp/deskvox.sock" {
		t.Fatalf("socket = %q", cfg.Socket)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("user: [oops"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestResolvePathUsesEnv(t *testing.T) {
	t.Setenv(EnvPath, "/etc/deskvox.yaml")

	if got := ResolvePath(""); got != "/etc/deskvox.yaml" {
		t.Fatalf("ResolvePath = %q", got)
	}
	if got := ResolvePath("/tmp/x.yaml"); got != "/tmp/x.yaml" {
		t.Fatalf("ResolvePath override = %q", got)
	}
}

func TestPeekDoesNotCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Peek(path)
	if err != nil {
		t.Fatalf("Peek error = %v", err)
	}
	if cfg.Socket != Default().Socket {
		t.Fatalf("socket = %q", cfg.Socket)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("config file created: %v", err)
	}

	if err := os.WriteFile(path, []byte("socket: /run/user/1000/deskvox.sock\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err = Peek(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Socket != "/run/user/1000/deskvox.sock" || cfg.Log.Level != "info" {
		t.Fatalf("cfg = %+v", cfg)
	}
}
