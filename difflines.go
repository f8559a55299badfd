package dmp

import (
	"strconv"
	"strings"
)

// diffLinesToStrings reduces text1 and text2 to a string of synthetic
// characters, one per distinct line, alongside the table mapping each
// character back to its line.
func (config *Config) diffLinesToStrings(text1, text2 string) (string, string, []string) {
	// Index 0 is reserved so a real line never folds to the NUL character,
	// which upsets some debuggers.
	lines := []string{""}
	indices1 := config.foldLinesToIndices(text1, &lines)
	indices2 := config.foldLinesToIndices(text2, &lines)
	return joinIndices(indices1), joinIndices(indices2), lines
}

// foldLinesToIndices walks text line by line, assigning each distinct line
// an index into *lines (interning repeats) and returning the sequence of
// indices the text folds to.
func (config *Config) foldLinesToIndices(text string, lines *[]string) []uint32 {
	seen := make(map[string]int, len(*lines))
	for i, line := range (*lines)[1:] {
		seen[line] = i + 1
	}
	var indices []uint32
	start := 0
	end := -1
	for end < len(text)-1 {
		end = indexOf(text, "\n", start)
		if end == -1 {
			end = len(text) - 1
		}
		line := text[start : end+1]
		start = end + 1
		if idx, ok := seen[line]; ok {
			indices = append(indices, uint32(idx))
			continue
		}
		*lines = append(*lines, line)
		idx := len(*lines) - 1
		seen[line] = idx
		indices = append(indices, uint32(idx))
	}
	return indices
}

// joinIndices renders a sequence of line-table indices as the
// comma-separated string DiffCharsToLines expects, mirroring
// strconv-based formatting rather than fmt for speed on large inputs.
func joinIndices(indices []uint32) string {
	if len(indices) == 0 {
		return ""
	}
	var b []byte
	for _, n := range indices {
		b = strconv.AppendInt(b, int64(n), 10)
		b = append(b, ',')
	}
	return string(b[:len(b)-1])
}

// expandLineIndices turns a comma-separated list of line-table indices back
// into the concatenated line text it represents.
func expandLineIndices(encoded string, lines []string) string {
	if encoded == "" {
		return ""
	}
	parts := strings.Split(encoded, ",")
	var b strings.Builder
	for _, p := range parts {
		if idx, err := strconv.Atoi(p); err == nil {
			b.WriteString(lines[idx])
		}
	}
	return b.String()
}
