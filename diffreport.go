package dmp

import (
	"html"
	"strings"
	"unicode/utf8"
)

// DiffXIndex translates a location in text1 into the equivalent location in
// text2, accounting for any insertions or deletions before it.
func (config *Config) DiffXIndex(diffs []Diff, loc int) int {
	var chars1, chars2, lastChars1, lastChars2 int
	var overshotBy Diff
	for _, d := range diffs {
		if d.Op != OpInsert {
			chars1 += len(d.Text)
		}
		if d.Op != OpDelete {
			chars2 += len(d.Text)
		}
		if chars1 > loc {
			overshotBy = d
			break
		}
		lastChars1, lastChars2 = chars1, chars2
	}
	if overshotBy.Op == OpDelete {
		return lastChars2
	}
	return lastChars2 + (loc - lastChars1)
}

// DiffPrettyHtml renders a diff as an HTML fragment with inserts and
// deletes highlighted. It's meant as a starting point for a caller's own
// presentation, not a polished report.
func (config *Config) DiffPrettyHtml(diffs []Diff) string {
	var buf strings.Builder
	for _, d := range diffs {
		text := strings.ReplaceAll(html.EscapeString(d.Text), "\n", "&para;<br>")
		switch d.Op {
		case OpInsert:
			buf.WriteString(`<ins style="background:#e6ffe6;">`)
			buf.WriteString(text)
			buf.WriteString("</ins>")
		case OpDelete:
			buf.WriteString(`<del style="background:#ffe6e6;">`)
			buf.WriteString(text)
			buf.WriteString("</del>")
		case OpEqual:
			buf.WriteString("<span>")
			buf.WriteString(text)
			buf.WriteString("</span>")
		}
	}
	return buf.String()
}

// DiffPrettyText renders a diff as ANSI-colored plain text: green for
// inserts, red for deletes.
func (config *Config) DiffPrettyText(diffs []Diff) string {
	var buf strings.Builder
	for _, d := range diffs {
		switch d.Op {
		case OpInsert:
			buf.WriteString("\x1b[32m")
			buf.WriteString(d.Text)
			buf.WriteString("\x1b[0m")
		case OpDelete:
			buf.WriteString("\x1b[31m")
			buf.WriteString(d.Text)
			buf.WriteString("\x1b[0m")
		case OpEqual:
			buf.WriteString(d.Text)
		}
	}
	return buf.String()
}

// DiffText1 reassembles the source text (equalities plus deletions).
func (config *Config) DiffText1(diffs []Diff) string {
	var buf strings.Builder
	for _, d := range diffs {
		if d.Op != OpInsert {
			buf.WriteString(d.Text)
		}
	}
	return buf.String()
}

// DiffText2 reassembles the destination text (equalities plus insertions).
func (config *Config) DiffText2(diffs []Diff) string {
	var buf strings.Builder
	for _, d := range diffs {
		if d.Op != OpDelete {
			buf.WriteString(d.Text)
		}
	}
	return buf.String()
}

// DiffLevenshtein computes the Levenshtein distance of a diff: the number
// of inserted, deleted, or substituted characters needed to realize it.
func (config *Config) DiffLevenshtein(diffs []Diff) int {
	var distance, insertions, deletions int
	for _, d := range diffs {
		switch d.Op {
		case OpInsert:
			insertions += utf8.RuneCountInString(d.Text)
		case OpDelete:
			deletions += utf8.RuneCountInString(d.Text)
		case OpEqual:
			distance += max(insertions, deletions)
			insertions, deletions = 0, 0
		}
	}
	return distance + max(insertions, deletions)
}

// DiffCommonOverlap reports the length of the longest suffix of text1 that
// is also a prefix of text2.
func (config *Config) DiffCommonOverlap(text1, text2 string) int {
	len1, len2 := len(text1), len(text2)
	if len1 == 0 || len2 == 0 {
		return 0
	}
	if len1 > len2 {
		text1 = text1[len1-len2:]
	} else if len1 < len2 {
		text2 = text2[:len1]
	}
	shorter := min(len1, len2)
	if text1 == text2 {
		return shorter
	}
	// Grow a candidate overlap, jumping ahead to the next place its tail
	// occurs in text2; see the analysis at
	// http://neil.fraser.name/news/2010/11/04/.
	best, length := 0, 1
	for {
		candidate := text1[shorter-length:]
		found := strings.Index(text2, candidate)
		if found == -1 {
			return best
		}
		length += found
		if found == 0 || text1[shorter-length:] == text2[:length] {
			best = length
			length++
		}
	}
}
