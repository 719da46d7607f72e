package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"smartassembly/internal/chain"
)

const DefaultPath = "smartassembly.yaml"

const (
	defaultRefresh    = 2 * time.Second
	defaultTimeout    = 10 * time.Second
	defaultWorldsPath = "worlds.json"
	defaultLogLevel   = "info"
	defaultLogFormat  = "text"
)

type ProjectConfig struct {
	Project       string         `yaml:"project" validate:"required"`
	Version       int            `yaml:"version"`
	SmartObjectID string         `yaml:"smart_object_id" env:"SMARTASSEMBLY_ID"`
	ChainID       uint64         `yaml:"chain_id" env:"CHAIN_ID" validate:"required"`
	Database      DatabaseConfig `yaml:"database" envPrefix:"SMARTASSEMBLY_DATABASE_"`
	Indexer       IndexerConfig  `yaml:"indexer" envPrefix:"SMARTASSEMBLY_INDEXER_"`
	Worlds        WorldsConfig   `yaml:"worlds"`
	Log           LogConfig      `yaml:"log"`
}

type DatabaseConfig struct {
	DSN     string        `yaml:"dsn" env:"DSN" validate:"required"`
	Refresh time.Duration `yaml:"refresh" validate:"gte=0"`
}

type IndexerConfig struct {
	URL               string        `yaml:"url" env:"URL" validate:"omitempty,url"`
	Timeout           time.Duration `yaml:"timeout" validate:"gte=0"`
	RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gte=0"`
}

// WorldsConfig locates MUD world deployments. Overrides map a chain id to a
// world address and take precedence over the worlds file.
type WorldsConfig struct {
	Path      string            `yaml:"path"`
	Overrides map[uint64]string `yaml:"overrides"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	Format string `yaml:"format" env:"LOG_FORMAT" validate:"omitempty,oneof=json text"`
}

var (
	errSmartObjectID = errors.New("smart_object_id is not an unsigned 256-bit integer")
	maxUint256       = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	validate         = validator.New()
)

// LoadProjectConfig reads path, applies environment overrides, fills
// defaults, and validates the result.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *ProjectConfig) {
	if cfg.Database.Refresh == 0 {
		cfg.Database.Refresh = defaultRefresh
	}
	if cfg.Indexer.Timeout == 0 {
		cfg.Indexer.Timeout = defaultTimeout
	}
	if cfg.Indexer.URL == "" {
		cfg.Indexer.URL, _ = chain.IndexerURL(cfg.ChainID)
	}
	if cfg.Worlds.Path == "" {
		cfg.Worlds.Path = defaultWorldsPath
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaultLogFormat
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Indexer.URL) == "" {
		return fmt.Errorf("indexer url is required for chain %d", cfg.ChainID)
	}
	if cfg.SmartObjectID != "" {
		if _, err := ParseSmartObjectID(cfg.SmartObjectID); err != nil {
			return err
		}
	}
	for chainID, address := range cfg.Worlds.Overrides {
		if !chain.IsAddress(address) {
			return fmt.Errorf("worlds override for chain %d: %w: %q", chainID, chain.ErrInvalidAddress, address)
		}
	}
	return nil
}

// ParseSmartObjectID parses a decimal uint256 entity id.
func ParseSmartObjectID(s string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || id.Sign() < 0 || id.Cmp(maxUint256) > 0 {
		return nil, fmt.Errorf("%w: %q", errSmartObjectID, s)
	}
	return id, nil
}

// ObjectID returns the configured entity id, or nil when none is set.
func (c *ProjectConfig) ObjectID() (*big.Int, error) {
	if c.SmartObjectID == "" {
		return nil, nil
	}
	return ParseSmartObjectID(c.SmartObjectID)
}

// Template renders a starter config for init.
func Template(project string, chainID uint64) string {
	return fmt.Sprintf(`project: %s
version: 1

smart_object_id: ""
chain_id: %d

database:
  dsn: sqlite://smartassembly.db
  refresh: 2s

indexer:
  timeout: 10s
  requests_per_second: 5

worlds:
  path: worlds.json

log:
  level: info
  format: text
`, project, chainID)
}
