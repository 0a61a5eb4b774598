// Package config loads and saves the assembler's persistent defaults --
// the settings a user would otherwise have to repeat on every command
// line.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"

	"github.com/pdaxrom/microasm11/encode"
)

// Config holds the defaults microasm11 falls back to when a flag isn't
// given explicitly on the command line.
type Config struct {
	Assembler struct {
		CPU                  string `toml:"cpu"`
		CaseSensitiveSymbols bool   `toml:"case_sensitive_symbols"`
		JmpLabelIndirect     bool   `toml:"jmp_label_indirect"`
	} `toml:"assembler"`

	Listing struct {
		Enabled  bool `toml:"enabled"`
		TabWidth int  `toml:"tab_width"`
	} `toml:"listing"`

	Output struct {
		Format string `toml:"format"` // binary, hex, verilog
	} `toml:"output"`
}

// DefaultConfig returns the built-in defaults, used whenever no config
// file exists yet.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Assembler.CPU = "pdp11"
	cfg.Assembler.CaseSensitiveSymbols = false
	cfg.Assembler.JmpLabelIndirect = false
	cfg.Listing.Enabled = false
	cfg.Listing.TabWidth = 8
	cfg.Output.Format = "hex"
	return cfg
}

// CPU resolves the configured default CPU variant, falling back to
// encode.CPUDefault if the name is unrecognized.
func (c *Config) CPU() encode.CPU {
	if cpu, ok := encode.ParseCPU(c.Assembler.CPU); ok {
		return cpu
	}
	return encode.CPUDefault
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "microasm11")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "microasm11")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from path, returning the defaults
// unchanged if the file doesn't exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
