// Package config loads the site configuration: site metadata, the content
// source, the authored navigation route tree, and serve-mode options. The
// configuration is read once at startup and treated as immutable for the
// process lifetime.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/routes"
)

// Config is the root configuration document.
type Config struct {
	Site    SiteConfig         `yaml:"site"`
	Content ContentConfig      `yaml:"content"`
	Routes  []routes.RouteNode `yaml:"routes"`
	Output  OutputConfig       `yaml:"output"`
	Server  ServerConfig       `yaml:"server"`
	Watch   WatchConfig        `yaml:"watch"`
}

// SiteConfig carries site-wide metadata rendered into every page.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
}

// ContentConfig points at the document tree. Dir is a local directory; when
// Repo is set the directory is cloned/updated from that git URL first.
type ContentConfig struct {
	Dir    string `yaml:"dir"`
	Repo   string `yaml:"repo,omitempty"`
	Branch string `yaml:"branch,omitempty"`
}

// OutputConfig controls where the generated site is written.
type OutputConfig struct {
	Dir   string `yaml:"dir"`
	Clean bool   `yaml:"clean,omitempty"`
}

// ServerConfig configures serve mode: the docs server and the admin server
// (healthz + metrics) listen on separate ports.
type ServerConfig struct {
	DocsAddr  string `yaml:"docs_addr,omitempty"`
	AdminAddr string `yaml:"admin_addr,omitempty"`
}

// WatchConfig configures rebuild orchestration in serve mode.
type WatchConfig struct {
	Debounce        time.Duration `yaml:"debounce,omitempty"`
	RebuildInterval time.Duration `yaml:"rebuild_interval,omitempty"`
	StateDB         string        `yaml:"state_db,omitempty"`
	NATSURL         string        `yaml:"nats_url,omitempty"`
	NATSSubject     string        `yaml:"nats_subject,omitempty"`
}

// Load reads, expands and validates the configuration file. A .env file
// alongside the process is loaded first (without overriding the existing
// environment) so that ${VAR} references in the YAML resolve.
func Load(path string) (*Config, error) {
	// Best effort; a missing .env is not an error.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s", path)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = "Documentation"
	}
	if c.Content.Dir == "" {
		c.Content.Dir = "./content"
	}
	if c.Content.Repo != "" && c.Content.Branch == "" {
		c.Content.Branch = "main"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "./site"
	}
	if c.Server.DocsAddr == "" {
		c.Server.DocsAddr = ":8080"
	}
	if c.Server.AdminAddr == "" {
		c.Server.AdminAddr = ":9090"
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = 400 * time.Millisecond
	}
	if c.Watch.NATSSubject == "" {
		c.Watch.NATSSubject = "docsite.builds"
	}
}

func (c *Config) validate() error {
	if len(c.Routes) == 0 {
		return fmt.Errorf("config declares no routes")
	}
	if err := routes.Validate(c.Routes); err != nil {
		return fmt.Errorf("invalid route tree: %w", err)
	}
	return nil
}

// Pages returns the flattened navigable page list derived from the
// authored route tree. The tree is immutable after Load, so the result is
// the same for every call.
func (c *Config) Pages() []routes.Page { return routes.Flatten(c.Routes) }

const exampleConfig = `# docsite configuration
site:
  title: "ML Notes"
  description: "Long-form notes on machine learning, deep learning and math"
  base_url: "https://example.org"

content:
  dir: ./content
  # repo: https://example.org/notes/content.git
  # branch: main

output:
  dir: ./site
  clean: true

server:
  docs_addr: ":8080"
  admin_addr: ":9090"

watch:
  debounce: 400ms
  rebuild_interval: 0s
  state_db: ./docsite-state.db
  # nats_url: nats://localhost:4222
  # nats_subject: docsite.builds

routes:
  - title: Machine Learning
    href: /machine-learning
    items:
      - title: Introduction
        href: /introduction
  - title: Math
    href: /math
    no_link: true
    items:
      - title: Linear Algebra
        href: /linear-algebra
`

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}
	return os.WriteFile(path, []byte(exampleConfig), 0o644)
}
