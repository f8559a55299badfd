package dmp

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Patch packages one contiguous edit, plus enough surrounding context
// (carried as leading/trailing equalities in Diffs) to relocate it against
// drifted source text.
type Patch struct {
	Diffs   []Diff
	Start1  int
	Start2  int
	Length1 int
	Length2 int
}

// String renders the patch in a GNU-diff-like unified format, e.g.
//
//	@@ -382,8 +481,9 @@
//
// Indices in the header are 1-based, except that a zero-length range
// shows the 0-based position it sits after.
func (p *Patch) String() string {
	var buf strings.Builder
	buf.WriteString("@@ -")
	buf.WriteString(patchCoords(p.Start1, p.Length1))
	buf.WriteString(" +")
	buf.WriteString(patchCoords(p.Start2, p.Length2))
	buf.WriteString(" @@\n")
	for _, d := range p.Diffs {
		switch d.Op {
		case OpInsert:
			buf.WriteByte('+')
		case OpDelete:
			buf.WriteByte('-')
		case OpEqual:
			buf.WriteByte(' ')
		}
		buf.WriteString(strings.ReplaceAll(url.QueryEscape(d.Text), "+", " "))
		buf.WriteByte('\n')
	}
	return unescaper.Replace(buf.String())
}

// patchCoords renders one half of a patch header's "start,length" pair,
// collapsing the length when it's 0 or 1 as GNU diff does.
func patchCoords(start, length int) string {
	switch length {
	case 0:
		return strconv.Itoa(start) + ",0"
	case 1:
		return strconv.Itoa(start + 1)
	default:
		return strconv.Itoa(start+1) + "," + strconv.Itoa(length)
	}
}

// PatchAddContext grows a patch's surrounding equalities against text until
// its pattern (the pre-image) is unique within text, stopping short of
// MatchMaxBits.
func (config *Config) PatchAddContext(patch Patch, text string) Patch {
	if len(text) == 0 {
		return patch
	}
	pattern := text[patch.Start2 : patch.Start2+patch.Length1]
	padding := 0
	for strings.Index(text, pattern) != strings.LastIndex(text, pattern) &&
		len(pattern) < config.MatchMaxBits-2*config.PatchMargin {
		padding += config.PatchMargin
		lo := max(0, patch.Start2-padding)
		hi := min(len(text), patch.Start2+patch.Length1+padding)
		pattern = text[lo:hi]
	}
	padding += config.PatchMargin // One more chunk for good measure.

	prefix := text[max(0, patch.Start2-padding):patch.Start2]
	if prefix != "" {
		patch.Diffs = append([]Diff{{OpEqual, prefix}}, patch.Diffs...)
	}
	suffix := text[patch.Start2+patch.Length1 : min(len(text), patch.Start2+patch.Length1+padding)]
	if suffix != "" {
		patch.Diffs = append(patch.Diffs, Diff{OpEqual, suffix})
	}

	patch.Start1 -= len(prefix)
	patch.Start2 -= len(prefix)
	patch.Length1 += len(prefix) + len(suffix)
	patch.Length2 += len(prefix) + len(suffix)
	return patch
}

// PatchMake computes a patch set. Accepted call shapes, kept for
// compatibility with callers built against the historical API:
//
//	PatchMake(diffs)             // derive text1 from diffs
//	PatchMake(text1, text2)      // diff then patch
//	PatchMake(text1, diffs)      // diffs already computed
//	PatchMake(text1, text2, diffs) // text2 ignored; same as PatchMake(text1, diffs)
func (config *Config) PatchMake(opt ...interface{}) []Patch {
	switch len(opt) {
	case 1:
		diffs, _ := opt[0].([]Diff)
		return config.PatchMake(config.DiffText1(diffs), diffs)
	case 2:
		text1 := opt[0].(string)
		switch rhs := opt[1].(type) {
		case string:
			diffs := config.Diff(text1, rhs, true)
			if len(diffs) > 2 {
				diffs = config.DiffCleanupSemantic(diffs)
				diffs = config.DiffCleanupEfficiency(diffs)
			}
			return config.PatchMake(text1, diffs)
		case []Diff:
			return config.patchesFromDiffs(text1, rhs)
		}
	case 3:
		return config.PatchMake(opt[0], opt[2])
	}
	return []Patch{}
}

// patchesFromDiffs replays diffs against text1 to build the patch set
// turning text1 into its implied text2, slicing a new patch whenever a
// large enough equality separates two edits.
func (config *Config) patchesFromDiffs(text1 string, diffs []Diff) []Patch {
	if len(diffs) == 0 {
		return nil
	}
	var patches []Patch
	var patch Patch
	var charCount1, charCount2 int
	prepatchText := text1
	postpatchText := text1

	for i, d := range diffs {
		if len(patch.Diffs) == 0 && d.Op != OpEqual {
			patch.Start1 = charCount1
			patch.Start2 = charCount2
		}
		switch d.Op {
		case OpInsert:
			patch.Diffs = append(patch.Diffs, d)
			patch.Length2 += len(d.Text)
			postpatchText = postpatchText[:charCount2] + d.Text + postpatchText[charCount2:]
		case OpDelete:
			patch.Diffs = append(patch.Diffs, d)
			patch.Length1 += len(d.Text)
			postpatchText = postpatchText[:charCount2] + postpatchText[charCount2+len(d.Text):]
		case OpEqual:
			if len(d.Text) <= 2*config.PatchMargin && len(patch.Diffs) != 0 && i != len(diffs)-1 {
				patch.Diffs = append(patch.Diffs, d)
				patch.Length1 += len(d.Text)
				patch.Length2 += len(d.Text)
			}
			if len(d.Text) >= 2*config.PatchMargin && len(patch.Diffs) != 0 {
				patches = append(patches, config.PatchAddContext(patch, prepatchText))
				patch = Patch{}
				// Patch lists carry a rolling context rather than a Unidiff-style
				// fixed one; re-anchor to the text as it stands after this patch.
				prepatchText = postpatchText
				charCount1 = charCount2
			}
		}
		if d.Op != OpInsert {
			charCount1 += len(d.Text)
		}
		if d.Op != OpDelete {
			charCount2 += len(d.Text)
		}
	}
	if len(patch.Diffs) != 0 {
		patches = append(patches, config.PatchAddContext(patch, prepatchText))
	}
	return patches
}

// PatchDeepCopy returns an independent copy of patches.
func (config *Config) PatchDeepCopy(patches []Patch) []Patch {
	out := make([]Patch, len(patches))
	for i, p := range patches {
		cp := p
		cp.Diffs = append([]Diff(nil), p.Diffs...)
		out[i] = cp
	}
	return out
}

// PatchApply applies patches to text, returning the patched text and, per
// patch, whether it was found and applied.
func (config *Config) PatchApply(patches []Patch, text string) (string, []bool) {
	if len(patches) == 0 {
		return text, []bool{}
	}
	patches = config.PatchDeepCopy(patches)
	padding := config.PatchAddPadding(patches)
	text = padding + text + padding
	patches = config.PatchSplitMax(patches)

	results := make([]bool, len(patches))
	// delta tracks the drift between where a patch was expected and where
	// the previous patch actually landed, so later patches' expectations
	// shift with it.
	delta := 0
	for i, p := range patches {
		expected := p.Start2 + delta
		preimage := config.DiffText1(p.Diffs)
		startLoc, endLoc := config.locatePatch(text, preimage, expected)

		if startLoc == -1 {
			results[i] = false
			config.logger().Debug("patch did not locate, skipping", slog.Int("index", i), slog.Int("expected_loc", expected))
			delta -= p.Length2 - p.Length1
			continue
		}

		results[i] = true
		delta = startLoc - expected
		var applied bool
		text, applied = config.applyPatchAt(p, text, preimage, startLoc, endLoc, i)
		if !applied {
			results[i] = false
		}
	}
	return text[len(padding) : len(text)-len(padding)], results
}

// locatePatch finds where preimage (the patch's pre-image text) sits within
// text near expected. For an oversized pre-image (a large delete that
// PatchSplitMax leaves whole), it anchors on the leading and trailing
// MatchMaxBits-sized chunks instead of the whole thing. endLoc is -1 when
// the pre-image was small enough to be matched in one piece.
func (config *Config) locatePatch(text, preimage string, expected int) (startLoc, endLoc int) {
	endLoc = -1
	if len(preimage) <= config.MatchMaxBits {
		return config.Match(text, preimage, expected), -1
	}
	startLoc = config.Match(text, preimage[:config.MatchMaxBits], expected)
	if startLoc == -1 {
		return -1, -1
	}
	endLoc = config.Match(text, preimage[len(preimage)-config.MatchMaxBits:], expected+len(preimage)-config.MatchMaxBits)
	if endLoc == -1 || startLoc >= endLoc {
		return -1, -1
	}
	return startLoc, endLoc
}

// applyPatchAt splices one patch into text at a located position. When the
// located span doesn't match the pre-image exactly, it diffs the two to
// build a mapping of indices and replays the patch's edits through that
// mapping; a badly dissimilar match is rejected.
func (config *Config) applyPatchAt(p Patch, text, preimage string, startLoc, endLoc, index int) (string, bool) {
	var postimage string
	if endLoc == -1 {
		postimage = text[startLoc:min(startLoc+len(preimage), len(text))]
	} else {
		postimage = text[startLoc:min(endLoc+config.MatchMaxBits, len(text))]
	}
	if preimage == postimage {
		replacement := config.DiffText2(p.Diffs)
		return text[:startLoc] + replacement + text[startLoc+len(preimage):], true
	}

	diffs := config.Diff(preimage, postimage, false)
	if len(preimage) > config.MatchMaxBits &&
		float64(config.DiffLevenshtein(diffs))/float64(len(preimage)) > config.PatchDeleteThreshold {
		config.logger().Debug("patch content too dissimilar, rejecting", slog.Int("index", index))
		return text, false
	}

	diffs = config.DiffCleanupSemanticLossless(diffs)
	pos := 0
	for _, d := range p.Diffs {
		if d.Op != OpEqual {
			at := config.DiffXIndex(diffs, pos)
			switch d.Op {
			case OpInsert:
				text = text[:startLoc+at] + d.Text + text[startLoc+at:]
			case OpDelete:
				from := startLoc + at
				to := startLoc + config.DiffXIndex(diffs, pos+len(d.Text))
				text = text[:from] + text[to:]
			}
		}
		if d.Op != OpDelete {
			pos += len(d.Text)
		}
	}
	return text, true
}

// PatchAddPadding surrounds patches with a margin of otherwise-unused
// characters so that an edit flush against the start or end of the text
// still has something to anchor against. Returns the padding string, which
// the caller must strip from both ends of the result afterward.
func (config *Config) PatchAddPadding(patches []Patch) string {
	width := config.PatchMargin
	var pad strings.Builder
	for x := 1; x <= width; x++ {
		pad.WriteRune(rune(x))
	}
	padding := pad.String()

	for i := range patches {
		patches[i].Start1 += width
		patches[i].Start2 += width
	}

	first := &patches[0]
	switch {
	case len(first.Diffs) == 0 || first.Diffs[0].Op != OpEqual:
		first.Diffs = append([]Diff{{OpEqual, padding}}, first.Diffs...)
		first.Start1 -= width
		first.Start2 -= width
		first.Length1 += width
		first.Length2 += width
	case width > len(first.Diffs[0].Text):
		extra := width - len(first.Diffs[0].Text)
		first.Diffs[0].Text = padding[len(first.Diffs[0].Text):] + first.Diffs[0].Text
		first.Start1 -= extra
		first.Start2 -= extra
		first.Length1 += extra
		first.Length2 += extra
	}

	last := &patches[len(patches)-1]
	switch tail := len(last.Diffs) - 1; {
	case tail < 0 || last.Diffs[tail].Op != OpEqual:
		last.Diffs = append(last.Diffs, Diff{OpEqual, padding})
		last.Length1 += width
		last.Length2 += width
	case width > len(last.Diffs[tail].Text):
		extra := width - len(last.Diffs[tail].Text)
		last.Diffs[tail].Text += padding[:extra]
		last.Length1 += extra
		last.Length2 += extra
	}
	return padding
}

// PatchSplitMax breaks up any patch whose pre-image exceeds MatchMaxBits
// into several smaller ones, each carrying a rolling sliver of context from
// its neighbor.
func (config *Config) PatchSplitMax(patches []Patch) []Patch {
	limit := config.MatchMaxBits
	for x := 0; x < len(patches); x++ {
		if patches[x].Length1 <= limit {
			continue
		}
		big := patches[x]
		patches = append(patches[:x], patches[x+1:]...)
		x--

		start1, start2 := big.Start1, big.Start2
		precontext := ""
		for len(big.Diffs) != 0 {
			piece := Patch{Start1: start1 - len(precontext), Start2: start2 - len(precontext)}
			if precontext != "" {
				piece.Length1 = len(precontext)
				piece.Length2 = len(precontext)
				piece.Diffs = append(piece.Diffs, Diff{OpEqual, precontext})
			}

			empty := true
			for len(big.Diffs) != 0 && piece.Length1 < limit-config.PatchMargin {
				op, text := big.Diffs[0].Op, big.Diffs[0].Text
				switch {
				case op == OpInsert:
					piece.Length2 += len(text)
					start2 += len(text)
					piece.Diffs = append(piece.Diffs, big.Diffs[0])
					big.Diffs = big.Diffs[1:]
					empty = false
				case op == OpDelete && len(piece.Diffs) == 1 && piece.Diffs[0].Op == OpEqual && len(text) > 2*limit:
					// A large deletion passes through as one unsplit chunk.
					piece.Length1 += len(text)
					start1 += len(text)
					piece.Diffs = append(piece.Diffs, Diff{op, text})
					big.Diffs = big.Diffs[1:]
					empty = false
				default:
					text = text[:min(len(text), limit-piece.Length1-config.PatchMargin)]
					piece.Length1 += len(text)
					start1 += len(text)
					if op == OpEqual {
						piece.Length2 += len(text)
						start2 += len(text)
					} else {
						empty = false
					}
					piece.Diffs = append(piece.Diffs, Diff{op, text})
					if text == big.Diffs[0].Text {
						big.Diffs = big.Diffs[1:]
					} else {
						big.Diffs[0].Text = big.Diffs[0].Text[len(text):]
					}
				}
			}

			precontext = config.DiffText2(piece.Diffs)
			precontext = precontext[max(0, len(precontext)-config.PatchMargin):]
			postcontext := config.DiffText1(big.Diffs)
			if len(postcontext) > config.PatchMargin {
				postcontext = postcontext[:config.PatchMargin]
			}
			if postcontext != "" {
				piece.Length1 += len(postcontext)
				piece.Length2 += len(postcontext)
				if n := len(piece.Diffs); n != 0 && piece.Diffs[n-1].Op == OpEqual {
					piece.Diffs[n-1].Text += postcontext
				} else {
					piece.Diffs = append(piece.Diffs, Diff{OpEqual, postcontext})
				}
			}
			if !empty {
				x++
				patches = append(patches[:x], append([]Patch{piece}, patches[x:]...)...)
			}
		}
	}
	return patches
}

// PatchToText serializes a patch set to its textual representation.
func (config *Config) PatchToText(patches []Patch) string {
	var buf strings.Builder
	for _, p := range patches {
		buf.WriteString(p.String())
	}
	return buf.String()
}

// patchHeaderRE matches a unified-diff-style patch header, e.g. "@@ -21,4 +21,10 @@".
var patchHeaderRE = regexp.MustCompile(`^@@ -(\d+),?(\d+)? \+(\d+),?(\d+)? @@$`)

// PatchFromText parses the textual representation produced by PatchToText
// back into a patch set.
func (config *Config) PatchFromText(textline string) ([]Patch, error) {
	if textline == "" {
		return nil, nil
	}
	var patches []Patch
	lines := strings.Split(textline, "\n")
	i := 0
	for i < len(lines) {
		if !patchHeaderRE.MatchString(lines[i]) {
			return patches, fmt.Errorf("%w: %s", ErrInvalidPatchString, lines[i])
		}
		patch, err := parsePatchHeader(lines[i])
		if err != nil {
			return patches, err
		}
		i++
		for i < len(lines) {
			if lines[i] == "" {
				i++
				continue
			}
			sign := lines[i][0]
			if sign == '@' {
				break
			}
			body := strings.ReplaceAll(lines[i][1:], "+", "%2b")
			body, _ = url.QueryUnescape(body)
			switch sign {
			case '-':
				patch.Diffs = append(patch.Diffs, Diff{OpDelete, body})
			case '+':
				patch.Diffs = append(patch.Diffs, Diff{OpInsert, body})
			case ' ':
				patch.Diffs = append(patch.Diffs, Diff{OpEqual, body})
			default:
				return patches, fmt.Errorf("%w: %q in %q", ErrInvalidPatchMode, string(sign), body)
			}
			i++
		}
		patches = append(patches, patch)
	}
	return patches, nil
}

func parsePatchHeader(line string) (Patch, error) {
	m := patchHeaderRE.FindStringSubmatch(line)
	var p Patch
	p.Start1, _ = strconv.Atoi(m[1])
	switch m[2] {
	case "":
		p.Start1--
		p.Length1 = 1
	case "0":
		p.Length1 = 0
	default:
		p.Start1--
		p.Length1, _ = strconv.Atoi(m[2])
	}
	p.Start2, _ = strconv.Atoi(m[3])
	switch m[4] {
	case "":
		p.Start2--
		p.Length2 = 1
	case "0":
		p.Length2 = 0
	default:
		p.Start2--
		p.Length2, _ = strconv.Atoi(m[4])
	}
	return p, nil
}
