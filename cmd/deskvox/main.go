package main

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	cli "github.com/spf13/pflag"

	log "log/slog"

	"deskvox/internal/assistant"
	"deskvox/internal/config"
	"deskvox/internal/ipc"
	"deskvox/internal/logging"
	"deskvox/internal/session"
	"deskvox/internal/system"
)

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	cfgPath := cli.StringP("config", "c", "", "Config file path (default $DESKVOX_CONFIG or ~/.config/deskvox/config.yaml)")
	logLevel := cli.StringP("log", "l", "", "Log level, overrides the config")
	proxyAddr := cli.StringP("proxy", "p", "", "Socks proxy address for online lookups")
	noVoice := cli.Bool("no-voice", false, "Do not open the microphone")
	console := cli.Bool("console", false, "Read typed commands from stdin")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: logging.ParseLevel(*logLevel),
	})))

	log.Info("Booting up")

	if err := godotenv.Load(*envFile); err != nil {
		log.Debug("No env file loaded", "path", *envFile, "err", err)
	}

	cfg, path, err := config.Load(*cfgPath)
	if err != nil {
		log.Error("Failed to load config", "path", path, "err", err)
		os.Exit(1)
	}
	if *logLevel == "" {
		*logLevel = cfg.Log.Level
	}

	logger, closer, err := logging.New(os.Stderr, cfg.Log.File, logging.ParseLevel(*logLevel))
	if err != nil {
		log.Error("Failed to open log file", "path", cfg.Log.File, "err", err)
		os.Exit(1)
	}
	defer closer.Close()
	log.SetDefault(logger)

	log.Debug("Loaded config", "path", path)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess := session.New(session.Preferences{
		Name:       cfg.User.Name,
		Theme:      cfg.User.Theme,
		SpeechRate: cfg.User.SpeechRate,
		Language:   cfg.User.Language,
	})

	surf, closeSurf := buildSurface(cfg, sess, logger)
	defer closeSurf()

	speaker := buildSpeaker(cfg, sess, logger)

	wiki, err := buildEncyclopedia(cfg, *proxyAddr)
	if err != nil {
		log.Error("Failed to set up encyclopedia", "backend", cfg.Knowledge.Backend, "err", err)
		os.Exit(1)
	}

	d := assistant.NewDispatcher(assistant.Deps{
		Session:  sess,
		Surface:  surf,
		Speaker:  speaker,
		Launcher: system.NewLauncher(),
		Pointer:  system.NewPointer(),
		Screen:   system.NewScreen(cfg.WorkDir, cfg.Apps.Screenshot),
		Files:    system.Files{Dir: cfg.WorkDir},
		Wiki:     wiki,
		Apps: assistant.Apps{
			Browser:      cfg.Apps.Browser,
			Notepad:      cfg.Apps.Notepad,
			Calculator:   cfg.Apps.Calculator,
			FileExplorer: cfg.Apps.FileExplorer,
			Shutdown:     cfg.Apps.Shutdown,
		},
		Quit: stop,
		Log:  logger,
	})

	var (
		mic   assistant.Listener
		clips assistant.ClipTranscriber
	)
	if v, err := buildVoice(cfg, surf, logger, !*noVoice); err != nil {
		log.Warn("Voice input unavailable, typed input only", "err", err)
	} else {
		defer v.Close()
		clips = v.clips
		if v.mic != nil {
			mic = v.mic
		}
	}

	a := assistant.New(d, assistant.NewTypedInput(cfg.Listen.TypedTimeout), mic, clips)

	srv, err := ipc.Listen(cfg.Socket, ipc.NewHandler(a, stop), logger)
	if err != nil {
		log.Error("Failed ipc server", "socket", cfg.Socket, "err", err)
		os.Exit(1)
	}
	go srv.Serve(ctx)
	defer srv.Close()

	log.Info("Boot up - successful", "socket", cfg.Socket, "voice", mic != nil)

	a.Start(ctx)

	if *console {
		go readConsole(ctx, a)
	}

	<-ctx.Done()

	log.Info("Shutting down")
	a.Wait()
}

func readConsole(ctx context.Context, a *assistant.Assistant) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		if out := a.Submit(ctx, sc.Text()); out == assistant.Busy {
			log.Debug("Typed input rejected", "outcome", out)
		}
	}
	if err := sc.Err(); err != nil {
		log.Warn("Console input closed", "err", err)
	}
}
