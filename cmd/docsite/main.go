package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docsite/internal/config"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Incremental bool `short:"i" help:"Skip pages whose content is unchanged"`
	} `cmd:"" help:"Build the static site from the configured content tree"`

	Serve struct {
		NoWatch bool `help:"Serve without watching the content tree for changes"`
	} `cmd:"" help:"Build the site and serve it, rebuilding on content changes"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Routes struct{} `cmd:"" help:"Print the flattened page list derived from the route tree"`

	Check struct{} `cmd:"" help:"Verify that every route has a document and all internal links resolve"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	switch ctx.Command() {
	case "build":
		cfg := mustLoadConfig()
		if err := runBuild(cfg, CLI.Build.Incremental); err != nil {
			slog.Error("Build failed", "error", err)
			os.Exit(1)
		}
	case "serve":
		cfg := mustLoadConfig()
		if err := runServe(cfg, !CLI.Serve.NoWatch); err != nil {
			slog.Error("Serve failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Configuration written", "path", CLI.Config)
	case "routes":
		cfg := mustLoadConfig()
		for i, page := range cfg.Pages() {
			fmt.Printf("%3d  %-50s %s\n", i+1, page.Href, page.Title)
		}
	case "check":
		cfg := mustLoadConfig()
		if err := runCheck(cfg); err != nil {
			slog.Error("Check failed", "error", err)
			os.Exit(1)
		}
	}
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}
