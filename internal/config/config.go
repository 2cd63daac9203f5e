// Package config loads and defaults proverd's TOML configuration, adapted
// from the teacher's internal/daemon.Config/LoadConfig/DefaultConfig/
// tutuHome() pattern.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/tutu-network/proverd/internal/orchestrator"
	"github.com/tutu-network/proverd/internal/workerpool"
)

// Config holds all daemon configuration.
type Config struct {
	Node         NodeConfig         `toml:"node"`
	Orchestrator OrchestratorConfig `toml:"orchestrator"`
	Worker       WorkerConfig       `toml:"worker"`
	Keys         KeysConfig         `toml:"keys"`
	Geo          GeoConfig          `toml:"geo"`
}

// NodeConfig identifies this node.
type NodeConfig struct {
	ID string `toml:"id"`
}

// OrchestratorConfig selects the coordinator deployment this node talks to.
type OrchestratorConfig struct {
	Environment     string `toml:"environment"`
	BaseURLOverride string `toml:"base_url_override"`
}

// WorkerConfig controls the offline worker pool.
type WorkerConfig struct {
	Count int `toml:"count"`
}

// KeysConfig locates the node's Ed25519 keypair.
type KeysConfig struct {
	Path string `toml:"path"`
}

// GeoConfig selects the telemetry country-lookup strategy (spec §6/§9).
type GeoConfig struct {
	// MMDBPath points at a MaxMind GeoLite2-Country database. When empty,
	// the node falls back to the networked lookup provider.
	MMDBPath string `toml:"mmdb_path"`
}

// DefaultConfig returns proverd's out-of-the-box configuration.
func DefaultConfig() Config {
	return Config{
		Node: NodeConfig{
			ID: "",
		},
		Orchestrator: OrchestratorConfig{
			Environment: string(orchestrator.EnvProduction),
		},
		Worker: WorkerConfig{
			Count: workerpool.MinWorkers,
		},
		Keys: KeysConfig{
			Path: proverHome(),
		},
	}
}

// LoadConfig reads $PROVERD_HOME/config.toml, falling back to defaults when
// the file does not exist.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(proverHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Keys.Path == "" {
		cfg.Keys.Path = proverHome()
	}
	return cfg, nil
}

// SaveConfig writes cfg to $PROVERD_HOME/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(proverHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// BaseURL resolves the configured environment, honoring an explicit override.
func (c Config) BaseURL() string {
	if c.Orchestrator.BaseURLOverride != "" {
		return c.Orchestrator.BaseURLOverride
	}
	return orchestrator.BaseURL(orchestrator.Environment(c.Orchestrator.Environment))
}

// proverHome returns proverd's data directory.
func proverHome() string {
	if env := os.Getenv("PROVERD_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".proverd")
}

// ProverHome is exported for use by other packages (keypair storage, etc.).
func ProverHome() string {
	return proverHome()
}
