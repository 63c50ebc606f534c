// Package config loads and saves snapcrackle's persistent settings, stored
// as TOML the same way the rest of this lineage does.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds the tunables that adjust assembly and disk-imaging behavior
// without touching source or script files.
type Config struct {
	// Assembler settings
	Assembler struct {
		SymbolBucketHint int    `toml:"symbol_bucket_hint"`
		DefaultOrigin    uint16 `toml:"default_origin"`
		InstructionSet   string `toml:"instruction_set"` // 6502, 65c02, 65816
		MaxLineLength    int    `toml:"max_line_length"`
	} `toml:"assembler"`

	// Listing settings
	Listing struct {
		Enabled      bool `toml:"enabled"`
		BytesPerRow  int  `toml:"bytes_per_row"`
		ShowComments bool `toml:"show_comments"`
	} `toml:"listing"`

	// DiskImage settings
	DiskImage struct {
		Interleave    []int `toml:"interleave"`
		SectorsPerTrk int   `toml:"sectors_per_track"`
		TracksPerSide int   `toml:"tracks_per_side"`
	} `toml:"disk_image"`
}

// DefaultConfig returns a configuration with default values matching the
// Apple II DOS 3.3 conventions this assembler targets.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Assembler.SymbolBucketHint = 511
	cfg.Assembler.DefaultOrigin = 0x0800
	cfg.Assembler.InstructionSet = "6502"
	cfg.Assembler.MaxLineLength = 255

	cfg.Listing.Enabled = true
	cfg.Listing.BytesPerRow = 3
	cfg.Listing.ShowComments = true

	// DOS 3.3 physical sector interleave order, per Open Question (b):
	// this is the assumed default and the value the disk-image tests pin.
	cfg.DiskImage.Interleave = []int{0, 7, 14, 6, 13, 5, 12, 4, 11, 3, 10, 2, 9, 1, 8, 15}
	cfg.DiskImage.SectorsPerTrk = 16
	cfg.DiskImage.TracksPerSide = 35

	return cfg
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
		configDir = filepath.Join(configDir, "snapcrackle")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "snapcrackle")

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

// LoadFrom loads configuration from the specified file. A missing file is
// not an error; it yields the default configuration.
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

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
