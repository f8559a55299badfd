package dmp

//go:generate stringer -type=Op -trimprefix=Op

import (
	"time"
)

// Op identifies what a Diff segment represents relative to the source text.
type Op int

const (
	// OpDelete marks a run of text present only in the source.
	OpDelete Op = -1
	// OpEqual marks a run of text common to both source and destination.
	OpEqual Op = 0
	// OpInsert marks a run of text present only in the destination.
	OpInsert Op = 1
)

// Diff is one contiguous run of an edit script: an operation plus the span
// of text it applies to.
type Diff struct {
	Op   Op
	Text string
}

// Diff computes an edit script turning text1 into text2. checklines enables
// the line-level pre-pass for large inputs. Invalid UTF-8 is replaced with
// the Unicode replacement character during rune conversion.
func (config *Config) Diff(text1, text2 string, checklines bool) []Diff {
	return config.DiffRunes([]rune(text1), []rune(text2), checklines)
}

// DiffRunes is Diff over pre-decoded rune slices.
func (config *Config) DiffRunes(text1, text2 []rune, checklines bool) []Diff {
	var deadline time.Time
	if config.DiffTimeout > 0 {
		deadline = time.Now().Add(config.DiffTimeout)
	}
	return config.diffDeadline(text1, text2, checklines, deadline)
}

// diffDeadline is the recursive worker behind DiffRunes: it strips any
// shared prefix/suffix before handing the remainder to diffCompute, then
// glues the result back together and runs a merge pass.
func (config *Config) diffDeadline(text1, text2 []rune, checklines bool, deadline time.Time) []Diff {
	if runesEqual(text1, text2) {
		if len(text1) == 0 {
			return nil
		}
		return []Diff{{OpEqual, string(text1)}}
	}

	prefixLen := commonRunePrefix(text1, text2)
	prefix, text1 := text1[:prefixLen], text1[prefixLen:]
	text2 = text2[prefixLen:]

	suffixLen := commonRuneSuffix(text1, text2)
	suffix := text1[len(text1)-suffixLen:]
	text1 = text1[:len(text1)-suffixLen]
	text2 = text2[:len(text2)-suffixLen]

	body := config.diffCompute(text1, text2, checklines, deadline)

	var diffs []Diff
	if len(prefix) != 0 {
		diffs = append(diffs, Diff{OpEqual, string(prefix)})
	}
	diffs = append(diffs, body...)
	if len(suffix) != 0 {
		diffs = append(diffs, Diff{OpEqual, string(suffix)})
	}
	return config.DiffCleanupMerge(diffs)
}

// diffCompute dispatches to the cheapest applicable strategy for text1 and
// text2, which are known to share no prefix or suffix. Order matters: each
// branch is progressively more expensive than the last.
func (config *Config) diffCompute(text1, text2 []rune, checklines bool, deadline time.Time) []Diff {
	switch {
	case len(text1) == 0:
		return []Diff{{OpInsert, string(text2)}}
	case len(text2) == 0:
		return []Diff{{OpDelete, string(text1)}}
	}

	longer, shorter, swapped := orderByLength(text1, text2)
	if at := runeIndex(longer, shorter); at != -1 {
		op := OpInsert
		if !swapped {
			op = OpDelete
		}
		return []Diff{
			{op, string(longer[:at])},
			{OpEqual, string(shorter)},
			{op, string(longer[at+len(shorter):])},
		}
	}
	if len(shorter) == 1 {
		// A lone character cannot be an equality once the substring check above
		// has already failed.
		return []Diff{
			{OpDelete, string(text1)},
			{OpInsert, string(text2)},
		}
	}
	if halves := config.diffHalfMatch(text1, text2); halves != nil {
		left := config.diffDeadline(halves.text1Prefix, halves.text2Prefix, checklines, deadline)
		right := config.diffDeadline(halves.text1Suffix, halves.text2Suffix, checklines, deadline)
		diffs := append(left, Diff{OpEqual, string(halves.common)})
		return append(diffs, right...)
	}
	if checklines && len(text1) > 100 && len(text2) > 100 {
		return config.diffLineMode(text1, text2, deadline)
	}
	return config.diffBisect(text1, text2, deadline)
}

// orderByLength returns (longer, shorter, swapped) where swapped reports
// whether a and b had to be exchanged to reach that order.
func orderByLength(a, b []rune) (longer, shorter []rune, swapped bool) {
	if len(a) > len(b) {
		return a, b, false
	}
	return b, a, true
}

// diffLineMode reduces text1 and text2 to one synthetic rune per line, diffs
// that reduction, expands it back to real lines, then re-diffs any
// replacement block at character granularity for accuracy. This can produce
// a non-minimal script in exchange for speed on large inputs.
func (config *Config) diffLineMode(text1, text2 []rune, deadline time.Time) []Diff {
	folded1, folded2, lines := config.DiffLinesToRunes(string(text1), string(text2))
	diffs := config.diffDeadline(folded1, folded2, false, deadline)
	diffs = config.DiffCharsToLines(diffs, lines)
	diffs = config.DiffCleanupSemantic(diffs)

	// A sentinel equality simplifies flushing a trailing replacement block.
	diffs = append(diffs, Diff{OpEqual, ""})

	var pendingDelete, pendingInsert string
	countDelete, countInsert := 0, 0
	pointer := 0
	for pointer < len(diffs) {
		switch diffs[pointer].Op {
		case OpInsert:
			countInsert++
			pendingInsert += diffs[pointer].Text
		case OpDelete:
			countDelete++
			pendingDelete += diffs[pointer].Text
		case OpEqual:
			if countDelete >= 1 && countInsert >= 1 {
				// A replacement block: drop the individual records and splice in
				// a character-level re-diff of the merged runs.
				diffs = spliceDiffs(diffs, pointer-countDelete-countInsert, countDelete+countInsert)
				pointer -= countDelete + countInsert
				refined := config.diffDeadline([]rune(pendingDelete), []rune(pendingInsert), false, deadline)
				for j := len(refined) - 1; j >= 0; j-- {
					diffs = spliceDiffs(diffs, pointer, 0, refined[j])
				}
				pointer += len(refined)
			}
			countInsert, countDelete = 0, 0
			pendingDelete, pendingInsert = "", ""
		}
		pointer++
	}
	return diffs[:len(diffs)-1]
}

// DiffBisect exposes the Myers middle-snake search over string inputs; kept
// for API parity with callers that don't already hold rune slices.
func (config *Config) DiffBisect(text1, text2 string, deadline time.Time) []Diff {
	return config.diffBisect([]rune(text1), []rune(text2), deadline)
}

// DiffLinesToChars reduces text1 and text2 to strings of synthetic
// characters, one per distinct line, alongside the line table needed to
// expand them back.
func (config *Config) DiffLinesToChars(text1, text2 string) (string, string, []string) {
	return config.diffLinesToStrings(text1, text2)
}

// DiffLinesToRunes is DiffLinesToChars with the reduced strings already
// decoded to rune slices.
func (config *Config) DiffLinesToRunes(text1, text2 string) ([]rune, []rune, []string) {
	chars1, chars2, lines := config.diffLinesToStrings(text1, text2)
	return []rune(chars1), []rune(chars2), lines
}

// DiffCharsToLines expands a diff produced over a line-folded reduction back
// into real line text using the table produced alongside the reduction.
func (config *Config) DiffCharsToLines(diffs []Diff, lineArray []string) []Diff {
	out := make([]Diff, len(diffs))
	for i, d := range diffs {
		out[i] = Diff{Op: d.Op, Text: expandLineIndices(d.Text, lineArray)}
	}
	return out
}

// DiffCommonPrefix reports the length of the longest common prefix of text1
// and text2, measured in runes.
func (config *Config) DiffCommonPrefix(text1, text2 string) int {
	return commonRunePrefix([]rune(text1), []rune(text2))
}

// DiffCommonSuffix reports the length of the longest common suffix of text1
// and text2, measured in runes.
func (config *Config) DiffCommonSuffix(text1, text2 string) int {
	return commonRuneSuffix([]rune(text1), []rune(text2))
}
