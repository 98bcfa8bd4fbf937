package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"

	"github.com/roach88/rxharness/internal/matcher"
)

// Config holds all configuration for the application
type Config struct {
	// Matching settings
	Engine        string
	MaxSubjectLen int
	MaxPatternLen int
	Timeout       time.Duration

	// Execution settings
	Parallel int

	// DBPath is the run history database. Empty disables recording.
	DBPath string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags. Zero values mean "not given".
type Flags struct {
	Engine   string
	Parallel int
	DBPath   string
	EnvFile  string
}

// New creates a new Config with defaults
func New() *Config {
	return &Config{
		Engine:        DefaultEngine,
		MaxSubjectLen: DefaultMaxSubjectLen,
		MaxPatternLen: DefaultMaxPatternLen,
		Timeout:       DefaultTimeout,
		Parallel:      DefaultParallel,
	}
}

// Load builds a Config from defaults, then the env file, then the process
// environment, then flags. Each layer overrides the one before it.
//
// The env file is flags.EnvFile when set, otherwise DefaultEnvFile. An
// explicitly named file must exist; the default file is optional.
func Load(flags Flags) (*Config, error) {
	cfg := New()
	cfg.Flags = flags

	envFile := flags.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	fileVars, err := godotenv.Read(envFile)
	if err != nil {
		if flags.EnvFile != "" || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
		}
		fileVars = map[string]string{}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	if flags.Engine != "" {
		cfg.Engine = flags.Engine
	}
	if flags.Parallel > 0 {
		cfg.Parallel = flags.Parallel
	}
	if flags.DBPath != "" {
		cfg.DBPath = flags.DBPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvEngine); ok && v != "" {
		c.Engine = v
	}
	if v, ok := lookup(EnvDB); ok {
		c.DBPath = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvParallel, &c.Parallel},
		{EnvMaxSubject, &c.MaxSubjectLen},
		{EnvMaxPattern, &c.MaxPatternLen},
	}
	for _, e := range ints {
		v, ok := lookup(e.key)
		if !ok || v == "" {
			continue
		}
		n, err := cast.ToIntE(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", e.key, v, err)
		}
		*e.dst = n
	}

	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := cast.ToDurationE(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		c.Timeout = d
	}

	return nil
}

// Validate checks that the configured values are usable.
func (c *Config) Validate() error {
	if _, err := matcher.New(c.Engine, c.Limits()); err != nil {
		return err
	}
	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, got %d", c.Parallel)
	}
	return nil
}

// Limits returns the matcher input bounds.
func (c *Config) Limits() matcher.Limits {
	return matcher.Limits{
		MaxPatternLen: c.MaxPatternLen,
		MaxSubjectLen: c.MaxSubjectLen,
		Timeout:       c.Timeout,
	}
}

// Matcher returns the configured engine.
func (c *Config) Matcher() (matcher.Matcher, error) {
	return matcher.New(c.Engine, c.Limits())
}
