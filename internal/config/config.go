// Package config loads the triage engine's single YAML configuration file:
// the engine's roots (database, trash, archive, app-redirect, documents)
// and the loopback LLM endpoint. Load validates everything up front and
// fails fast with explicit errors before any subsystem starts.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/localdrive/triage/internal/logging"
)

// Config is the single configuration object threaded through every
// subsystem constructor.
type Config struct {
	// DatabasePath is the sqlite file backing the Catalog.
	DatabasePath string `yaml:"database_path"`

	// Roots used by the Execution Engine and Undo Manager.
	TrashRoot       string `yaml:"trash_root"`
	ArchiveRoot     string `yaml:"archive_root"`
	AppsRoot        string `yaml:"apps_root"`
	DocumentsRoot   string `yaml:"documents_root"`
	MediaPhotosRoot string `yaml:"media_photos_root"`
	MediaVideosRoot string `yaml:"media_videos_root"`
	MediaMusicRoot  string `yaml:"media_music_root"`
	ProjectsRoot    string `yaml:"projects_root"`

	// SummaryRoot holds the atomically-written JSON run-summary sidecar the
	// Execution Engine and Undo Manager each leave behind per batch.
	// Defaults to "<trash_root>/../summaries" when empty.
	SummaryRoot string `yaml:"summary_root"`

	// LLM is the loopback endpoint configuration. Host must be 127.0.0.1 or
	// localhost on port 11434; anything else is rejected outright.
	LLM LLMConfig `yaml:"llm"`

	// Thresholds tune the Safety Engine's confidence gates. The protected
	// paths/owners/guardian-extensions/sensitive-substrings sets stay
	// compile-time constants and are NOT configurable here.
	Thresholds ThresholdsConfig `yaml:"thresholds"`

	// BatchSize is the Orchestrator's classification batch size (default 50).
	BatchSize int `yaml:"batch_size"`

	LogSettings logging.LogSettings `yaml:"-"`
	LogDir      string              `yaml:"log_dir"`
	NoLogs      bool                `yaml:"no_logs"`
}

// LLMConfig describes the loopback LLM endpoint.
type LLMConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	Model                  string `yaml:"model"`
	GenerateTimeoutSeconds int    `yaml:"generate_timeout_seconds"`
	ProbeTimeoutSeconds    int    `yaml:"probe_timeout_seconds"`
}

// GenerateTimeout returns the per-generation request timeout.
func (l LLMConfig) GenerateTimeout() time.Duration {
	return time.Duration(l.GenerateTimeoutSeconds) * time.Second
}

// ProbeTimeout returns the availability-probe timeout.
func (l LLMConfig) ProbeTimeout() time.Duration {
	return time.Duration(l.ProbeTimeoutSeconds) * time.Second
}

// ThresholdsConfig holds the Safety Engine's three confidence thresholds.
type ThresholdsConfig struct {
	Uncertainty float64 `yaml:"uncertainty"`
	AutoApprove float64 `yaml:"auto_approve"`
	Delete      float64 `yaml:"delete"`
}

// DefaultThresholds returns the shipped confidence gate defaults.
func DefaultThresholds() ThresholdsConfig {
	return ThresholdsConfig{Uncertainty: 0.4, AutoApprove: 0.7, Delete: 0.85}
}

// Load reads and validates a YAML config file. It fails fast on anything
// that would let an unsafe run start: a non-loopback LLM host, or
// non-monotonic thresholds, both checked at load time rather than at
// first use.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{
		BatchSize:  50,
		Thresholds: DefaultThresholds(),
		LLM: LLMConfig{
			Host:                   "127.0.0.1",
			Port:                   11434,
			GenerateTimeoutSeconds: 120,
			ProbeTimeoutSeconds:    5,
		},
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.LLM.GenerateTimeoutSeconds <= 0 {
		cfg.LLM.GenerateTimeoutSeconds = 120
	}
	if cfg.LLM.ProbeTimeoutSeconds <= 0 {
		cfg.LLM.ProbeTimeoutSeconds = 5
	}

	if cfg.SummaryRoot == "" && cfg.TrashRoot != "" {
		cfg.SummaryRoot = filepath.Join(filepath.Dir(cfg.TrashRoot), "summaries")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.LogSettings = logging.LogSettings{NoLogs: cfg.NoLogs, LogDir: cfg.LogDir}
	return cfg, nil
}

// ErrConfigurationRejection is returned for any configuration that the
// system must refuse to run with; callers treat it as fatal.
type ErrConfigurationRejection struct{ Reason string }

func (e *ErrConfigurationRejection) Error() string {
	return fmt.Sprintf("configuration rejected: %s", e.Reason)
}

// Validate enforces the loopback-only LLM restriction and monotonic
// thresholds.
func (c *Config) Validate() error {
	host := strings.ToLower(strings.TrimSpace(c.LLM.Host))
	if host != "127.0.0.1" && host != "localhost" {
		return &ErrConfigurationRejection{Reason: fmt.Sprintf("llm host %q is not loopback", c.LLM.Host)}
	}
	if c.LLM.Port != 11434 {
		return &ErrConfigurationRejection{Reason: fmt.Sprintf("llm port %d is not 11434", c.LLM.Port)}
	}

	t := c.Thresholds
	if !(t.Uncertainty <= t.AutoApprove && t.AutoApprove <= t.Delete) {
		return &ErrConfigurationRejection{Reason: fmt.Sprintf(
			"thresholds must satisfy uncertainty <= auto_approve <= delete, got %.2f/%.2f/%.2f",
			t.Uncertainty, t.AutoApprove, t.Delete)}
	}
	for _, v := range []float64{t.Uncertainty, t.AutoApprove, t.Delete} {
		if v < 0 || v > 1 {
			return &ErrConfigurationRejection{Reason: "thresholds must be within [0,1]"}
		}
	}

	if c.DatabasePath == "" {
		return &ErrConfigurationRejection{Reason: "database_path is required"}
	}
	return nil
}

// Endpoint returns the LLM base URL, e.g. "http://127.0.0.1:11434".
func (l LLMConfig) Endpoint() string {
	u := url.URL{Scheme: "http", Host: fmt.Sprintf("%s:%d", l.Host, l.Port)}
	return u.String()
}
