package dmp

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DiffToDelta crushes a diff into a compact, tab-separated wire format
// describing how to turn text1 into text2, e.g. "=3\t-2\t+ing" means keep 3
// runes, delete 2, insert "ing". Inserted text is percent-escaped.
func (config *Config) DiffToDelta(diffs []Diff) string {
	var tokens []string
	for _, d := range diffs {
		switch d.Op {
		case OpInsert:
			tokens = append(tokens, "+"+strings.ReplaceAll(url.QueryEscape(d.Text), "+", " "))
		case OpDelete:
			tokens = append(tokens, "-"+strconv.Itoa(utf8.RuneCountInString(d.Text)))
		case OpEqual:
			tokens = append(tokens, "="+strconv.Itoa(utf8.RuneCountInString(d.Text)))
		}
	}
	return unescaper.Replace(strings.Join(tokens, "\t"))
}

// DiffFromDelta reconstructs the full diff between text1 and some text2
// given text1 and the delta DiffToDelta produced for that pair.
func (config *Config) DiffFromDelta(text1 string, delta string) ([]Diff, error) {
	runes := []rune(text1)
	consumed := 0
	var diffs []Diff
	for _, token := range strings.Split(delta, "\t") {
		if token == "" {
			continue // A trailing tab yields one blank token; that's fine.
		}
		op, param := token[0], token[1:]
		switch op {
		case '+':
			// QueryUnescape would turn a literal "+" into a space; protect it
			// first since DiffToDelta already rewrote space-as-plus to a literal
			// space above.
			param = strings.ReplaceAll(param, "+", "%2b")
			text, err := url.QueryUnescape(param)
			if err != nil {
				return nil, err
			}
			if !utf8.ValidString(text) {
				return nil, fmt.Errorf("%w: %q", ErrInvalidUTF8Token, text)
			}
			diffs = append(diffs, Diff{OpInsert, text})
		case '=', '-':
			n, err := strconv.ParseInt(param, 10, 0)
			if err != nil {
				return nil, err
			}
			if n < 0 {
				return nil, fmt.Errorf("%w: %s", ErrNegativeCount, param)
			}
			consumed += int(n)
			if consumed > len(runes) {
				break
			}
			text := string(runes[consumed-int(n) : consumed])
			if op == '=' {
				diffs = append(diffs, Diff{OpEqual, text})
			} else {
				diffs = append(diffs, Diff{OpDelete, text})
			}
		default:
			return nil, fmt.Errorf("%w: %c", ErrInvalidDeltaOp, op)
		}
	}
	if consumed != len(runes) {
		return nil, fmt.Errorf("%w: delta consumed %d runes, source has %d", ErrDeltaLengthMismatch, consumed, len(runes))
	}
	return diffs, nil
}
