// Package config holds the disassembler configuration. Values come from an
// optional JSON file, then DISASSEMBLER_* environment variables; command line
// flags are applied last by the caller.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config represents configuration for the disassembler.
type Config struct {
	Debug      bool   `json:"debug,omitempty" jsonschema:"title=Debug,description=Enable debug logging"`
	Compat     bool   `json:"compat,omitempty" jsonschema:"title=Compatibility mode,description=Decode compatibility encodings and keep unknown opcodes as raw bytes"`
	Offsets    bool   `json:"offsets,omitempty" jsonschema:"title=Offsets,description=Print offsets and raw bytes next to each instruction"`
	Color      string `json:"color,omitempty" jsonschema:"title=Color,description=Syntax highlighting of listings,enum=auto,enum=always,enum=never,default=auto"`
	Workers    int    `json:"workers,omitempty" jsonschema:"title=Workers,description=Files disassembled concurrently,minimum=1"`
	WasmModule string `json:"wasmModule,omitempty" jsonschema:"title=Wasm module,description=Disassemble through this wasm build of the engine instead of the native one"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Color:   ColorAuto,
		Workers: 4,
	}
}

// Load reads the JSON file at path, if path is not empty, over the defaults
// and then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	bools := map[string]*bool{
		"DISASSEMBLER_DEBUG":   &c.Debug,
		"DISASSEMBLER_COMPAT":  &c.Compat,
		"DISASSEMBLER_OFFSETS": &c.Offsets,
	}
	for key, dst := range bools {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
	}
	if v, ok := lookup("DISASSEMBLER_COLOR"); ok {
		c.Color = strings.ToLower(v)
	}
	if v, ok := lookup("DISASSEMBLER_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DISASSEMBLER_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v, ok := lookup("DISASSEMBLER_WASM"); ok {
		c.WasmModule = v
	}
	// NO_COLOR wins over any mode
	if _, ok := lookup("DISASSEMBLER_NO_COLOR"); ok {
		c.Color = ColorNever
	}
	return nil
}

// Validate checks the value ranges.
func (c Config) Validate() error {
	var errs []error
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		errs = append(errs, fmt.Errorf("invalid color mode %q (want auto, always or never)", c.Color))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	return errors.Join(errs...)
}

// Schema returns the JSON schema of Config.
func Schema() ([]byte, error) {
	reflector := new(jsonschema.Reflector)
	bts, err := json.MarshalIndent(reflector.Reflect(&Config{}), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return bts, nil
}
