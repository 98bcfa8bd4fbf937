package config

import "github.com/roach88/rxharness/internal/matcher"

const (
	// DefaultEngine is the matching engine used when none is configured
	DefaultEngine = matcher.EngineAuto
	// DefaultParallel is the number of workers; 1 evaluates cases in order
	DefaultParallel = 1
	// DefaultEnvFile is read when present; a missing default file is not an error
	DefaultEnvFile = ".env"
	// DefaultMaxSubjectLen is the largest subject accepted, in bytes
	DefaultMaxSubjectLen = matcher.DefaultMaxSubjectLen
	// DefaultMaxPatternLen is the largest pattern accepted, in bytes
	DefaultMaxPatternLen = matcher.DefaultMaxPatternLen
	// DefaultTimeout bounds a single backtracking match
	DefaultTimeout = matcher.DefaultTimeout
)

// Environment variables read by Load.
const (
	EnvEngine     = "RXHARNESS_ENGINE"
	EnvParallel   = "RXHARNESS_PARALLEL"
	EnvDB         = "RXHARNESS_DB"
	EnvMaxSubject = "RXHARNESS_MAX_SUBJECT"
	EnvMaxPattern = "RXHARNESS_MAX_PATTERN"
	EnvTimeout    = "RXHARNESS_TIMEOUT"
)
