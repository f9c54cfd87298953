package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces server overrides, e.g. GEYSER_PORT or GEYSER_LOG_LEVEL.
const EnvPrefix = "GEYSER_"

// Server configures the HTTP API process.
type Server struct {
	Port int `json:"port"`
	// Env is "dev" or "production". Production switches gin to release mode.
	Env      string `json:"env"`
	LogLevel string `json:"log_level"`
	// PresetDir holds battery preset YAML files.
	PresetDir string `json:"preset_dir"`
	// SitesFile lists candidate sites for GET /api/v1/sites. Optional.
	SitesFile string `json:"sites_file"`
	// ResultTTL is how long schedule timelines stay retrievable by ID.
	ResultTTL string `json:"result_ttl"`
	// CORSOrigins is a comma-separated allow list; empty allows any origin.
	CORSOrigins string `json:"cors_origins"`
	// MaxCompareVariations caps the variations one compare request may run.
	MaxCompareVariations int `json:"max_compare_variations"`
}

// SetDefaults applies sane defaults.
func (s *Server) SetDefaults() {
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.Env == "" {
		s.Env = "dev"
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.PresetDir == "" {
		s.PresetDir = filepath.Join("examples", "batteries")
	}
	if s.ResultTTL == "" {
		s.ResultTTL = "1h"
	}
	if s.MaxCompareVariations == 0 {
		s.MaxCompareVariations = 8
	}
}

// Validate checks mandatory fields.
func (s Server) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("port %d out of range", s.Port)
	}
	if s.Env != "dev" && s.Env != "production" {
		return fmt.Errorf("unknown env %s", s.Env)
	}
	if _, err := s.TTL(); err != nil {
		return err
	}
	if s.MaxCompareVariations < 1 {
		return fmt.Errorf("max_compare_variations must be >= 1")
	}
	return nil
}

// TTL parses ResultTTL.
func (s Server) TTL() (time.Duration, error) {
	d, err := time.ParseDuration(s.ResultTTL)
	if err != nil {
		return 0, fmt.Errorf("result_ttl: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("result_ttl must be > 0")
	}
	return d, nil
}

// Origins splits CORSOrigins.
func (s Server) Origins() []string {
	var out []string
	for _, o := range strings.Split(s.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (s Server) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// LoadServer reads the optional config file at path, applies GEYSER_*
// environment overrides on top and fills defaults.
func LoadServer(path string) (*Server, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Server
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
