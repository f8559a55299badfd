// Package dmp offers robust algorithms to perform the operations required
// for synchronizing plain text: computing an edit script between two
// strings, fuzzy-locating a pattern in drifted text, and packaging an edit
// script into context-bearing patches that can be replayed against a
// drifted copy of the source.
package dmp

import (
	"log/slog"
	"time"
)

// Config is the configuration for diff-match-patch operations. A zero
// Config is usable but every knob is zero (no diff deadline, zero match
// threshold and distance, zero patch margin); callers generally want
// NewDefaultConfig instead.
type Config struct {
	// DiffTimeout is the duration to map a diff before giving up (<=0 for
	// infinity, which also disables the half-match speedup).
	DiffTimeout time.Duration
	// DiffEditCost is the cost of an empty edit operation in terms of edit
	// characters, used by DiffCleanupEfficiency.
	DiffEditCost int

	// MatchDistance controls how far to search for a match (0 = exact
	// location, 1000+ = broad match). A match this many characters away
	// from the expected location adds 1.0 to the score (0.0 is a perfect
	// match).
	MatchDistance int
	// MatchMaxBits is the number of bits in an int; patterns longer than
	// this are rejected by the bitap matcher.
	MatchMaxBits int
	// MatchThreshold is the point at which no match is declared (0.0 =
	// perfection, 1.0 = very loose).
	MatchThreshold float64

	// PatchDeleteThreshold controls, when deleting a large block of text
	// (over ~64 characters), how close the contents have to be to match
	// the expected contents (0.0 = perfection, 1.0 = very loose). Note
	// that MatchThreshold controls how closely the end points of a delete
	// need to match.
	PatchDeleteThreshold float64
	// PatchMargin is the chunk size for context length.
	PatchMargin int

	// Logger receives soft-failure diagnostics: diff deadline expiry,
	// patch-apply misses, and Levenshtein-ratio rejections. A nil Logger
	// is treated as a discard sink, so the zero Config remains safe.
	Logger *slog.Logger
}

// NewDefaultConfig creates a new configuration with default parameters.
func NewDefaultConfig() *Config {
	return &Config{
		DiffTimeout:          time.Second,
		DiffEditCost:         4,
		MatchThreshold:       0.5,
		MatchDistance:        1000,
		MatchMaxBits:         32,
		PatchDeleteThreshold: 0.5,
		PatchMargin:          4,
		Logger:               slog.Default(),
	}
}

// logger returns a non-nil logger, falling back to a disabled one.
func (config *Config) logger() *slog.Logger {
	if config.Logger != nil {
		return config.Logger
	}
	return slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// discard is an io.Writer that throws away everything written to it, used
// to back the default no-op logger without pulling in io/ioutil semantics.
type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
