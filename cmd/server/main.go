package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/NicolasHaas/wirechat/pkg/logging"
	"github.com/NicolasHaas/wirechat/pkg/server"
	"github.com/NicolasHaas/wirechat/pkg/version"
)

func main() {
	cfg := server.DefaultConfig()

	port := flag.Int("port", 0, fmt.Sprintf("TCP listen port (default %d)", server.DefaultPort))
	configPath := flag.String("config", "", "Optional YAML config file")
	metricsAddr := flag.String("metrics", "", "HTTP bind address for /metrics (empty to disable)")
	logLevel := flag.String("log-level", "info", "Log level: "+logging.LevelNames())
	logFormat := flag.String("log-format", "text", "Log format: text or json")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Full())
		return
	}

	setFlags := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	level, format := *logLevel, *logFormat
	if *configPath != "" {
		fc, err := server.LoadConfigFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
			os.Exit(1)
		}
		fc.Apply(&cfg)
		// The config file sets log defaults; explicit flags still win.
		if fc.Log.Level != "" && !setFlags["log-level"] {
			level = fc.Log.Level
		}
		if fc.Log.Format != "" && !setFlags["log-format"] {
			format = fc.Log.Format
		}
	}

	// Port priority: environment, then flag or positional argument, then the
	// default already in cfg.
	if *port > 0 {
		cfg.Addr = fmt.Sprintf(":%d", *port)
	} else if arg := flag.Arg(0); arg != "" {
		p, err := strconv.Atoi(arg)
		if err != nil || p <= 0 {
			fmt.Fprintf(os.Stderr, "invalid port argument %q\n", arg)
			os.Exit(1)
		}
		cfg.Addr = fmt.Sprintf(":%d", p)
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	if err := server.ApplyEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid environment: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Setup(logging.Options{
		Level:  level,
		Format: format,
		Output: os.Stdout,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "invalid logging config: %v\n", err)
		os.Exit(1)
	}

	slog.Info("wirechat server", "version", version.String())

	srv := server.New(cfg)
	if err := srv.Run(); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
