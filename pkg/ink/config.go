package ink

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EngineConfig holds the ambient knobs a host can tune without touching
// story content: a plain YAML document unmarshalled straight into a
// struct, then defaulted.
type EngineConfig struct {
	// Seed is the initial PRNG seed for ink's RANDOM() function. Leave at
	// zero for an arbitrary-but-fixed seed, or set it explicitly for a
	// reproducible run.
	Seed int64 `yaml:"seed"`

	// ContinueAsyncTimeout is parsed from the config document into a
	// time.Duration (for example "500ms"), not a count of milliseconds.
	// Story does not read it: ContinueAsync takes its timeout as an
	// argument.
	ContinueAsyncTimeout time.Duration `yaml:"continue_async_timeout_ms"`

	// MaxStepsPerContinue guards against a malformed or adversarial
	// story looping forever inside one Continue call.
	MaxStepsPerContinue int `yaml:"max_steps_per_continue"`

	// AllowExternalFallback controls whether an unbound external
	// function falls back to an ink-side definition of the same name
	// instead of failing outright.
	AllowExternalFallback bool `yaml:"allow_external_fallback"`

	// ReseedRandomOnLoad reseeds the PRNG from the save file's recorded
	// seed on LoadState, rather than keeping whatever seed the Story was
	// already running with. Defaults to true so RANDOM determinism
	// survives a save/load round trip by default.
	ReseedRandomOnLoad bool `yaml:"reseed_random_on_load"`
}

// DefaultEngineConfig mirrors the engine's own zero-config defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxStepsPerContinue: 1_000_000,
		AllowExternalFallback: false,
		ReseedRandomOnLoad: true,
	}
}

// LoadEngineConfig reads and parses a YAML config file, filling in
// DefaultEngineConfig for anything the file omits.
func LoadEngineConfig(path string) (EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("reading ink engine config %s: %w", path, err)
	}
	return ParseEngineConfig(data)
}

// ParseEngineConfig parses YAML config bytes, applying defaults to
// zero-valued fields the document doesn't set.
func ParseEngineConfig(data []byte) (EngineConfig, error) {
	cfg := DefaultEngineConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("parsing ink engine config: %w", err)
	}
	if cfg.MaxStepsPerContinue <= 0 {
		cfg.MaxStepsPerContinue = DefaultEngineConfig().MaxStepsPerContinue
	}
	return cfg, nil
}
