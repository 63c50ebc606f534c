package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Assembler.SymbolBucketHint != 511 {
		t.Errorf("Expected SymbolBucketHint=511, got %d", cfg.Assembler.SymbolBucketHint)
	}
	if cfg.Assembler.DefaultOrigin != 0x0800 {
		t.Errorf("Expected DefaultOrigin=0x0800, got %#x", cfg.Assembler.DefaultOrigin)
	}
	if cfg.Assembler.InstructionSet != "6502" {
		t.Errorf("Expected InstructionSet=6502, got %s", cfg.Assembler.InstructionSet)
	}

	if !cfg.Listing.Enabled {
		t.Error("Expected Listing.Enabled=true")
	}
	if cfg.Listing.BytesPerRow != 3 {
		t.Errorf("Expected BytesPerRow=3, got %d", cfg.Listing.BytesPerRow)
	}

	if len(cfg.DiskImage.Interleave) != 16 {
		t.Fatalf("Expected 16-entry interleave table, got %d entries", len(cfg.DiskImage.Interleave))
	}
	if cfg.DiskImage.Interleave[1] != 7 {
		t.Errorf("Expected interleave[1]=7, got %d", cfg.DiskImage.Interleave[1])
	}
	if cfg.DiskImage.SectorsPerTrk != 16 {
		t.Errorf("Expected SectorsPerTrk=16, got %d", cfg.DiskImage.SectorsPerTrk)
	}
	if cfg.DiskImage.TracksPerSide != 35 {
		t.Errorf("Expected TracksPerSide=35, got %d", cfg.DiskImage.TracksPerSide)
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()

	if path == "" {
		t.Error("GetConfigPath returned empty string")
	}
	if filepath.Base(path) != "config.toml" {
		t.Errorf("Expected path to end with config.toml, got %s", path)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.toml")

	cfg := DefaultConfig()
	cfg.Assembler.DefaultOrigin = 0x2000
	cfg.Assembler.InstructionSet = "65c02"
	cfg.Listing.ShowComments = false

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.Assembler.DefaultOrigin != 0x2000 {
		t.Errorf("Expected DefaultOrigin=0x2000, got %#x", loaded.Assembler.DefaultOrigin)
	}
	if loaded.Assembler.InstructionSet != "65c02" {
		t.Errorf("Expected InstructionSet=65c02, got %s", loaded.Assembler.InstructionSet)
	}
	if loaded.Listing.ShowComments {
		t.Error("Expected ShowComments=false")
	}
}

func TestLoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nonexistent.toml")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom should not error on non-existent file: %v", err)
	}
	if cfg.Assembler.DefaultOrigin != 0x0800 {
		t.Error("Expected default config when file doesn't exist")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.toml")

	invalidTOML := `
[assembler]
default_origin = "not a number"
`
	if err := os.WriteFile(configPath, []byte(invalidTOML), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Error("Expected error when loading invalid TOML")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "subdir1", "subdir2", "config.toml")

	cfg := DefaultConfig()
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}
}
