package dmp

import (
	"strings"
	"unicode/utf8"
)

// unescaper restores literal characters that url.QueryEscape over-escapes
// for the delta and patch-text wire formats, matching what JavaScript's
// encodeURI leaves untouched. Case-sensitive: only the uppercase hex of
// QueryEscape's own output needs restoring.
var unescaper = strings.NewReplacer(
	"%21", "!", "%7E", "~", "%27", "'",
	"%28", "(", "%29", ")", "%3B", ";",
	"%2F", "/", "%3F", "?", "%3A", ":",
	"%40", "@", "%26", "&", "%3D", "=",
	"%2B", "+", "%24", "$", "%2C", ",",
	"%23", "#", "%2A", "*",
)

// indexOf returns the index of pattern in s at or after byte offset start,
// or -1 if absent.
func indexOf(s, pattern string, start int) int {
	if start > len(s)-1 {
		return -1
	}
	if start <= 0 {
		return strings.Index(s, pattern)
	}
	if at := strings.Index(s[start:], pattern); at != -1 {
		return at + start
	}
	return -1
}

// lastIndexOf returns the last index of pattern in s among matches that end
// no later than the rune starting at byte offset end, or -1 if absent.
func lastIndexOf(s, pattern string, end int) int {
	if end < 0 {
		return -1
	}
	if end >= len(s) {
		return strings.LastIndex(s, pattern)
	}
	_, size := utf8.DecodeRuneInString(s[end:])
	return strings.LastIndex(s[:end+size], pattern)
}

// runeIndexFrom returns the index of pattern in text at or after offset
// start, both measured in runes, or -1 if absent.
func runeIndexFrom(text, pattern []rune, start int) int {
	if start > len(text)-1 {
		return -1
	}
	if start <= 0 {
		return runeIndex(text, pattern)
	}
	if at := runeIndex(text[start:], pattern); at != -1 {
		return at + start
	}
	return -1
}

// runeIndex is strings.Index for rune slices.
func runeIndex(text, pattern []rune) int {
	for i := 0; i+len(pattern) <= len(text); i++ {
		if runesEqual(text[i:i+len(pattern)], pattern) {
			return i
		}
	}
	return -1
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i, r := range a {
		if r != b[i] {
			return false
		}
	}
	return true
}

// commonRunePrefix returns the length, in runes, of the longest common
// prefix of a and b.
func commonRunePrefix(a, b []rune) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// commonRuneSuffix returns the length, in runes, of the longest common
// suffix of a and b.
//
// This is a linear scan rather than the binary search sometimes used for
// this problem: the binary search variant assumes prefix/suffix length is
// monotonic under bisection, which does not hold once combined with a
// not-equal comparator on arbitrary rune content (see the discussion at
// https://github.com/sergi/go-diff/issues/54).
func commonRuneSuffix(a, b []rune) int {
	i, j := len(a), len(b)
	n := 0
	for i > 0 && j > 0 && a[i-1] == b[j-1] {
		i--
		j--
		n++
	}
	return n
}

// spliceDiffs removes count diffs starting at index, replacing them with
// with.
func spliceDiffs(diffs []Diff, index, count int, with ...Diff) []Diff {
	switch {
	case len(with) == count:
		copy(diffs[index:], with)
		return diffs
	case len(with) < count:
		copy(diffs[index:], with)
		copy(diffs[index+len(with):], diffs[index+count:])
		end := len(diffs) - count + len(with)
		for i := end; i < len(diffs); i++ {
			diffs[i] = Diff{}
		}
		return diffs[:end]
	default:
		need := len(diffs) - count + len(with)
		for len(diffs) < need {
			diffs = append(diffs, Diff{})
		}
		copy(diffs[index+len(with):], diffs[index+count:])
		copy(diffs[index:], with)
		return diffs
	}
}
