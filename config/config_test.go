package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pdaxrom/microasm11/encode"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Assembler.CPU != "pdp11" {
		t.Errorf("Expected CPU=pdp11, got %s", cfg.Assembler.CPU)
	}
	if cfg.Assembler.CaseSensitiveSymbols {
		t.Error("Expected CaseSensitiveSymbols=false")
	}
	if cfg.Listing.TabWidth != 8 {
		t.Errorf("Expected TabWidth=8, got %d", cfg.Listing.TabWidth)
	}
	if cfg.Output.Format != "hex" {
		t.Errorf("Expected Format=hex, got %s", cfg.Output.Format)
	}
}

func TestConfigCPUFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Assembler.CPU = "not-a-real-cpu"

	if got := cfg.CPU(); got != encode.CPUDefault {
		t.Errorf("Expected fallback to CPUDefault, got %v", got)
	}

	cfg.Assembler.CPU = "vm2"
	if got := cfg.CPU(); got != encode.CPUVM2 {
		t.Errorf("Expected CPUVM2, got %v", got)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("LoadFrom on a missing file should not error: %v", err)
	}
	if cfg.Assembler.CPU != "pdp11" {
		t.Errorf("Expected defaults when file is missing, got %+v", cfg)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Assembler.CPU = "vm1"
	cfg.Assembler.CaseSensitiveSymbols = true
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to exist: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Assembler.CPU != "vm1" {
		t.Errorf("Expected CPU=vm1 after round trip, got %s", loaded.Assembler.CPU)
	}
	if !loaded.Assembler.CaseSensitiveSymbols {
		t.Error("Expected CaseSensitiveSymbols=true after round trip")
	}
}
