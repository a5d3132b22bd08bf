package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const EnvPath = "DESKVOX_CONFIG"

type Config struct {
	User      User      `yaml:"user"`
	Listen    Listen    `yaml:"listen"`
	STT       STT       `yaml:"stt"`
	TTS       TTS       `yaml:"tts"`
	Duck      Duck      `yaml:"duck"`
	Apps      Apps      `yaml:"apps"`
	Knowledge Knowledge `yaml:"knowledge"`
	Bus       Bus       `yaml:"bus"`
	Socket    string    `yaml:"socket"`
	WorkDir   string    `yaml:"workdir"`
	Log       Log       `yaml:"log"`
}

type User struct {
	Name       string `yaml:"name"`
	Theme      string `yaml:"theme"`
	SpeechRate int    `yaml:"speech_rate"`
	Language   string `yaml:"language"`
}

type Listen struct {
	// Wait is how long the microphone waits for speech to start.
	Wait         time.Duration `yaml:"wait"`
	MaxUtterance time.Duration `yaml:"max_utterance"`
	// TypedTimeout bounds a typed follow-up answer; 0 waits forever.
	TypedTimeout time.Duration `yaml:"typed_timeout"`
	SilenceRMS   float64       `yaml:"silence_rms"`
	Beep         string        `yaml:"beep"`
	Notify       bool          `yaml:"notify"`
}

type STT struct {
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
	Threads  int    `yaml:"threads"`
}

type TTS struct {
	Enabled bool   `yaml:"enabled"`
	Voice   string `yaml:"voice"`
}

type Duck struct {
	Enabled   bool          `yaml:"enabled"`
	Factor    float64       `yaml:"factor"`
	Fade      time.Duration `yaml:"fade"`
	MinVolume int           `yaml:"min_volume"`
	Self      []string      `yaml:"self"`
}

type Apps struct {
	Browser      []string `yaml:"browser"`
	Notepad      []string `yaml:"notepad"`
	Calculator   []string `yaml:"calculator"`
	FileExplorer []string `yaml:"file_explorer"`
	Shutdown     []string `yaml:"shutdown"`
	Screenshot   []string `yaml:"screenshot"`
}

type Knowledge struct {
	Backend  string `yaml:"backend"`
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
}

type Bus struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type Log struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

func Default() Config {
	return Config{
		User: User{
			Name:       "User",
			Theme:      "light",
			SpeechRate: 150,
			Language:   "en",
		},
		Listen: Listen{
			Wait:         5 * time.Second,
			MaxUtterance: 10 * time.Second,
			TypedTimeout: 60 * time.Second,
			SilenceRMS:   0.015,
			Beep:         "beep.mp3",
			Notify:       true,
		},
		STT: STT{
			Model:    "third_party/whisper.cpp/models/ggml-base.en.bin",
			Language: "en",
		},
		TTS: TTS{
			Enabled: true,
			Voice:   "en",
		},
		Duck: Duck{
			Enabled:   true,
			Factor:    0.3,
			Fade:      300 * time.Millisecond,
			MinVolume: 5,
			Self:      []string{"deskvox", "espeak-ng"},
		},
		Apps: Apps{
			Browser:      []string{"xdg-open", "https://"},
			Notepad:      []string{"gnome-text-editor"},
			Calculator:   []string{"gnome-calculator"},
			FileExplorer: []string{"xdg-open", "."},
			Shutdown:     []string{"systemctl", "poweroff"},
			Screenshot:   []string{"grim", "{path}"},
		},
		Knowledge: Knowledge{
			Backend:  "wikipedia",
			Endpoint: "https://en.wikipedia.org/api/rest_v1/page/summary/",
			Model:    "gpt-5-nano",
		},
		Bus: Bus{
			Name: "deskvox",
		},
		Socket:  "/tmp/deskvox.sock",
		WorkDir: ".",
		Log: Log{
			File:  "assistant.log",
			Level: "info",
		},
	}
}

// Load reads the YAML config at path, falling back to $DESKVOX_CONFIG and
// then ~/.config/deskvox/config.yaml. A missing file is created with the
// defaults.
func Load(path string) (Config, string, error) {
	path = ResolvePath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, path, fmt.Errorf("read config: %w", err)
		}

		cfg := Default()
		if err := write(path, cfg); err != nil {
			return Config{}, path, fmt.Errorf("write default config: %w", err)
		}
		return cfg, path, nil
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, path, fmt.Errorf("parse %s: %w", path, err)
	}

	return hydrate(cfg), path, nil
}

// Peek reads the config like Load but never creates the file; a missing
// file yields the defaults.
func Peek(path string) (Config, error) {
	data, err := os.ReadFile(ResolvePath(path))
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return hydrate(cfg), nil
}

func ResolvePath(path string) string {
	if path != "" {
		return expand(path)
	}
	if custom := os.Getenv(EnvPath); custom != "" {
		return expand(custom)
	}
	return filepath.Join(homeDir(), ".config", "deskvox", "config.yaml")
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

// hydrate fills zero fields with defaults. Booleans are taken as written.
func hydrate(cfg Config) Config {
	def := Default()

	if cfg.User.Name == "" {
		cfg.User.Name = def.User.Name
	}
	if cfg.User.Theme == "" {
		cfg.User.Theme = def.User.Theme
	}
	if cfg.User.SpeechRate == 0 {
		cfg.User.SpeechRate = def.User.SpeechRate
	}
	if cfg.User.Language == "" {
		cfg.User.Language = def.User.Language
	}
	if cfg.Listen.Wait == 0 {
		cfg.Listen.Wait = def.Listen.Wait
	}
	if cfg.Listen.MaxUtterance == 0 {
		cfg.Listen.MaxUtterance = def.Listen.MaxUtterance
	}
	if cfg.Listen.SilenceRMS == 0 {
		cfg.Listen.SilenceRMS = def.Listen.SilenceRMS
	}
	if cfg.STT.Model == "" {
		cfg.STT.Model = def.STT.Model
	}
	if cfg.STT.Language == "" {
		cfg.STT.Language = cfg.User.Language
	}
	if cfg.TTS.Voice == "" {
		cfg.TTS.Voice = cfg.User.Language
	}
	if cfg.Duck.Factor == 0 {
		cfg.Duck.Factor = def.Duck.Factor
	}
	if len(cfg.Duck.Self) == 0 {
		cfg.Duck.Self = def.Duck.Self
	}
	cfg.Apps = hydrateApps(cfg.Apps, def.Apps)
	if cfg.Knowledge.Backend == "" {
		cfg.Knowledge.Backend = def.Knowledge.Backend
	}
	if cfg.Knowledge.Endpoint == "" {
		cfg.Knowledge.Endpoint = def.Knowledge.Endpoint
	}
	if cfg.Knowledge.Model == "" {
		cfg.Knowledge.Model = def.Knowledge.Model
	}
	if cfg.Bus.Name == "" {
		cfg.Bus.Name = def.Bus.Name
	}
	if cfg.Socket == "" {
		cfg.Socket = def.Socket
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = def.WorkDir
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}

	return cfg
}

func hydrateApps(a, def Apps) Apps {
	pick := func(v, d []string) []string {
		if len(v) == 0 {
			return d
		}
		return v
	}

	return Apps{
		Browser:      pick(a.Browser, def.Browser),
		Notepad:      pick(a.Notepad, def.Notepad),
		Calculator:   pick(a.Calculator, def.Calculator),
		FileExplorer: pick(a.FileExplorer, def.FileExplorer),
		Shutdown:     pick(a.Shutdown, def.Shutdown),
		Screenshot:   pick(a.Screenshot, def.Screenshot),
	}
}

func expand(path string) string {
	if len(path) > 1 && path[:2] == "~/" {
		return filepath.Join(homeDir(), path[2:])
	}
	return filepath.Clean(path)
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}
