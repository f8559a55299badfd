package dmp

import (
	"fmt"
	"log/slog"
	"math"
)

// MatchChecked locates pattern in text near loc like Match, but rejects a
// pattern longer than Config.MatchMaxBits with ErrPatternTooLong instead of
// silently degrading. Callers that can act on the precondition failure
// should use this entry point; Match stays silent for compatibility with
// callers expecting the older no-error signature.
func (config *Config) MatchChecked(text, pattern string, loc int) (int, error) {
	if len(pattern) > config.MatchMaxBits {
		return -1, fmt.Errorf("%w: %d > %d", ErrPatternTooLong, len(pattern), config.MatchMaxBits)
	}
	return config.Match(text, pattern, loc), nil
}

// Match locates the best instance of pattern in text near loc, returning -1
// if none is found within MatchThreshold.
func (config *Config) Match(text, pattern string, loc int) int {
	loc = clamp(loc, 0, len(text))
	switch {
	case text == pattern:
		return 0
	case len(text) == 0:
		return -1
	case loc+len(pattern) <= len(text) && text[loc:loc+len(pattern)] == pattern:
		return loc
	default:
		return config.MatchBitap(text, pattern, loc)
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// MatchBitap implements the Bitap fuzzy-matching algorithm: it locates the
// best instance of pattern in text near loc, returning -1 if none scores
// within MatchThreshold.
func (config *Config) MatchBitap(text, pattern string, loc int) int {
	if len(pattern) > config.MatchMaxBits {
		config.logger().Debug("match pattern exceeds MatchMaxBits, no match possible",
			slog.Int("pattern_len", len(pattern)), slog.Int("max_bits", config.MatchMaxBits))
		return -1
	}

	alphabet := config.MatchAlphabet(pattern)
	threshold := config.seedThreshold(text, pattern, loc)

	matchMask := 1 << uint(len(pattern)-1)
	bestLoc := -1
	binMax := len(pattern) + len(text)
	var lastRow []int

	for errCount := 0; errCount < len(pattern); errCount++ {
		binMax = config.errorRadius(errCount, loc, pattern, threshold, binMax)
		start := max(1, loc-binMax+1)
		finish := min(loc+binMax, len(text)) + len(pattern)

		row := make([]int, finish+2)
		row[finish+1] = (1 << uint(errCount)) - 1
		for j := finish; j >= start; j-- {
			charMatch := 0
			if j-1 < len(text) {
				charMatch = alphabet[text[j-1]]
			}
			if errCount == 0 {
				row[j] = ((row[j+1] << 1) | 1) & charMatch
			} else {
				row[j] = (((row[j+1] << 1) | 1) & charMatch) | (((lastRow[j+1] | lastRow[j]) << 1) | 1) | lastRow[j+1]
			}
			if row[j]&matchMask == 0 {
				continue
			}
			score := config.matchBitapScore(errCount, j-1, loc, pattern)
			if score > threshold {
				continue
			}
			threshold = score
			bestLoc = j - 1
			if bestLoc <= loc {
				break // Already past loc; only getting worse from here.
			}
			start = max(1, 2*loc-bestLoc)
		}
		if config.matchBitapScore(errCount+1, loc, loc, pattern) > threshold {
			break // No hope of a better match at a higher error count.
		}
		lastRow = row
	}
	return bestLoc
}

// seedThreshold tightens the starting score threshold using any exact match
// near loc, in either direction, as a speedup before the full bitap scan.
func (config *Config) seedThreshold(text, pattern string, loc int) float64 {
	threshold := config.MatchThreshold
	at := indexOf(text, pattern, loc)
	if at == -1 {
		return threshold
	}
	threshold = math.Min(config.matchBitapScore(0, at, loc, pattern), threshold)
	if at = lastIndexOf(text, pattern, loc+len(pattern)); at != -1 {
		threshold = math.Min(config.matchBitapScore(0, at, loc, pattern), threshold)
	}
	return threshold
}

// errorRadius binary-searches, within [0, prevRadius], for the widest
// distance from loc still scoring within threshold at the given error
// count.
func (config *Config) errorRadius(errCount, loc int, pattern string, threshold float64, prevRadius int) int {
	lo, hi := 0, prevRadius
	mid := hi
	for lo < mid {
		if config.matchBitapScore(errCount, loc+mid, loc, pattern) <= threshold {
			lo = mid
		} else {
			hi = mid
		}
		mid = (hi-lo)/2 + lo
	}
	return mid
}

// matchBitapScore scores a candidate match with e errors located at x, for
// a search anchored at loc: 0.0 is perfect and larger is worse.
func (config *Config) matchBitapScore(e, x, loc int, pattern string) float64 {
	accuracy := float64(e) / float64(len(pattern))
	proximity := math.Abs(float64(loc - x))
	if config.MatchDistance == 0 {
		if proximity == 0 {
			return accuracy
		}
		return 1.0
	}
	return accuracy + proximity/float64(config.MatchDistance)
}

// MatchAlphabet builds the per-byte bitmask bitap uses to test whether a
// text byte could extend a partial match of pattern.
func (config *Config) MatchAlphabet(pattern string) map[byte]int {
	alphabet := make(map[byte]int)
	bytes := []byte(pattern)
	for i, c := range bytes {
		alphabet[c] |= 1 << uint(len(pattern)-i-1)
	}
	return alphabet
}
