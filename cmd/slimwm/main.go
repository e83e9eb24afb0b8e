package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/1broseidon/slimwm/internal/config"
	"github.com/1broseidon/slimwm/internal/events"
	"github.com/1broseidon/slimwm/internal/focus"
	"github.com/1broseidon/slimwm/internal/launch"
	"github.com/1broseidon/slimwm/internal/model"
	"github.com/1broseidon/slimwm/internal/session"
	"github.com/1broseidon/slimwm/internal/x11"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.config/slimwm/config.yaml)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("slimwm %s\n", version)
		os.Exit(0)
	}

	os.Exit(run(*configPath))
}

func run(configPath string) int {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "slimwm: %v\n", err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	conn, err := x11.NewConnection()
	if err != nil {
		logger.Error("connection failed", "error", err)
		return 1
	}
	defer conn.Close()

	if err := conn.BecomeWM(); err != nil {
		logger.Error("cannot become window manager", "error", err)
		return 1
	}
	conn.Announce(cfg.Desktops)

	monitors, err := conn.Monitors()
	if err != nil {
		logger.Error("monitor enumeration failed", "error", err)
		return 1
	}
	logger.Info("starting", "version", version, "monitors", len(monitors), "desktops", cfg.Desktops)

	display := x11.NewDisplay(conn, cfg)
	clients := model.New(cfg.Desktops, monitors)
	mapper, err := events.NewMapper(display, clients, session.NewRegistry(), focus.NewCycle(), cfg, launch.Run, logger)
	if err != nil {
		logger.Error("mapper setup failed", "error", err)
		return 1
	}

	if err := conn.GrabKeys(mapper.Bindings()); err != nil {
		logger.Error("key grab failed", "error", err)
		return 1
	}
	conn.GrabButtons()

	// Import the windows that predate the manager.
	existing, err := conn.ExistingWindows()
	if err != nil {
		logger.Warn("window adoption failed", "error", err)
	}
	for _, w := range existing {
		mapper.AdoptWindow(w)
	}
	logger.Info("adopted existing windows", "count", len(existing))

	for {
		cont, err := mapper.ProcessNext()
		if err != nil {
			logger.Error("event loop failed", "error", err)
			return 1
		}
		if !cont {
			logger.Info("exiting")
			return 0
		}
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromPath(path)
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
