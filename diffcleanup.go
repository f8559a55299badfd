package dmp

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// boundary regexps used by DiffCleanupSemanticLossless's scoring heuristic.
var (
	nonAlphaNumericRE = regexp.MustCompile(`[^a-zA-Z0-9]`)
	whitespaceRE      = regexp.MustCompile(`\s`)
	crlfRE            = regexp.MustCompile(`[\r\n]`)
	blankEndRE        = regexp.MustCompile(`\n\r?\n$`)
	blankStartRE      = regexp.MustCompile(`^\r?\n\r?\n`)
)

// DiffCleanupSemantic drops equalities that are small relative to the edits
// around them, trading a minimal edit script for one a human would
// recognize as meaningful, then resolves any overlap left between an
// adjacent deletion and insertion.
func (config *Config) DiffCleanupSemantic(diffs []Diff) []Diff {
	diffs, changed := dropTrivialEqualities(diffs)
	if changed {
		diffs = config.DiffCleanupMerge(diffs)
	}
	diffs = config.DiffCleanupSemanticLossless(diffs)
	return resolveAdjacentOverlaps(config, diffs)
}

// dropTrivialEqualities removes an equality whenever its own length does not
// exceed the larger of the edit counts on either side of it, repeatedly,
// backtracking to the prior candidate equality each time one is dropped.
func dropTrivialEqualities(diffs []Diff) ([]Diff, bool) {
	changed := false
	var equalityAt []int
	var lastEquality string
	var insBefore, delBefore, insAfter, delAfter int
	pointer := 0
	for pointer < len(diffs) {
		if diffs[pointer].Op == OpEqual {
			equalityAt = append(equalityAt, pointer)
			insBefore, delBefore = insAfter, delAfter
			insAfter, delAfter = 0, 0
			lastEquality = diffs[pointer].Text
		} else {
			if diffs[pointer].Op == OpInsert {
				insAfter += utf8.RuneCountInString(diffs[pointer].Text)
			} else {
				delAfter += utf8.RuneCountInString(diffs[pointer].Text)
			}
			if utf8.RuneCountInString(lastEquality) > 0 &&
				utf8.RuneCountInString(lastEquality) <= max(insBefore, delBefore) &&
				utf8.RuneCountInString(lastEquality) <= max(insAfter, delAfter) {
				insPoint := equalityAt[len(equalityAt)-1]
				diffs = spliceDiffs(diffs, insPoint, 0, Diff{OpDelete, lastEquality})
				diffs[insPoint+1].Op = OpInsert

				equalityAt = equalityAt[:len(equalityAt)-1]
				if len(equalityAt) > 0 {
					equalityAt = equalityAt[:len(equalityAt)-1]
				}
				pointer = -1
				if len(equalityAt) > 0 {
					pointer = equalityAt[len(equalityAt)-1]
				}
				insBefore, delBefore, insAfter, delAfter = 0, 0, 0, 0
				lastEquality = ""
				changed = true
			}
		}
		pointer++
	}
	return diffs, changed
}

// resolveAdjacentOverlaps finds overlap between a deletion and the
// insertion immediately following it (in either textual direction) and
// carves out the shared run as an equality, e.g.
// <del>abcxxx</del><ins>xxxdef</ins> -> <del>abc</del>xxx<ins>def</ins>.
// An overlap is only extracted when it covers at least half of one side.
func resolveAdjacentOverlaps(config *Config, diffs []Diff) []Diff {
	pointer := 1
	for pointer < len(diffs) {
		if diffs[pointer-1].Op != OpDelete || diffs[pointer].Op != OpInsert {
			pointer++
			continue
		}
		deletion := diffs[pointer-1].Text
		insertion := diffs[pointer].Text
		forward := config.DiffCommonOverlap(deletion, insertion)
		backward := config.DiffCommonOverlap(insertion, deletion)
		half := func(n int) bool {
			return float64(n) >= float64(utf8.RuneCountInString(deletion))/2 ||
				float64(n) >= float64(utf8.RuneCountInString(insertion))/2
		}
		switch {
		case forward >= backward && half(forward):
			diffs = spliceDiffs(diffs, pointer, 0, Diff{OpEqual, insertion[:forward]})
			diffs[pointer-1].Text = deletion[:len(deletion)-forward]
			diffs[pointer+1].Text = insertion[forward:]
			pointer++
		case forward < backward && half(backward):
			diffs = spliceDiffs(diffs, pointer, 0, Diff{OpEqual, deletion[:backward]})
			diffs[pointer-1].Op = OpInsert
			diffs[pointer-1].Text = insertion[:len(insertion)-backward]
			diffs[pointer+1].Op = OpDelete
			diffs[pointer+1].Text = deletion[backward:]
			pointer++
		}
		pointer += 2
	}
	return diffs
}

// diffCleanupSemanticScore scores how natural it would be to place an edit
// boundary between one and two, from 0 (arbitrary mid-token split) to 6
// (already at an edge). Each language port of this heuristic defines
// "whitespace" slightly differently; that's fine since the score is only
// cosmetic.
func diffCleanupSemanticScore(one, two string) int {
	if len(one) == 0 || len(two) == 0 {
		return 6
	}
	lastOfOne, _ := utf8.DecodeLastRuneInString(one)
	firstOfTwo, _ := utf8.DecodeRuneInString(two)
	char1, char2 := string(lastOfOne), string(firstOfTwo)

	nonAlnum1 := nonAlphaNumericRE.MatchString(char1)
	nonAlnum2 := nonAlphaNumericRE.MatchString(char2)
	space1 := nonAlnum1 && whitespaceRE.MatchString(char1)
	space2 := nonAlnum2 && whitespaceRE.MatchString(char2)
	break1 := space1 && crlfRE.MatchString(char1)
	break2 := space2 && crlfRE.MatchString(char2)
	blank1 := break1 && blankEndRE.MatchString(one)
	blank2 := break2 && blankStartRE.MatchString(two)

	switch {
	case blank1 || blank2:
		return 5
	case break1 || break2:
		return 4
	case nonAlnum1 && !space1 && space2:
		return 3
	case space1 || space2:
		return 2
	case nonAlnum1 || nonAlnum2:
		return 1
	default:
		return 0
	}
}

// DiffCleanupSemanticLossless nudges a single edit sandwiched between two
// equalities sideways to the best-scoring nearby boundary, e.g. turning
// "The c<ins>at c</ins>ame." into "The <ins>cat </ins>came.".
func (config *Config) DiffCleanupSemanticLossless(diffs []Diff) []Diff {
	pointer := 1
	for pointer < len(diffs)-1 {
		if diffs[pointer-1].Op != OpEqual || diffs[pointer+1].Op != OpEqual {
			pointer++
			continue
		}
		before := diffs[pointer-1].Text
		edit := diffs[pointer].Text
		after := diffs[pointer+1].Text

		// Shift the edit as far left as it will go first.
		if shift := config.DiffCommonSuffix(before, edit); shift > 0 {
			common := edit[len(edit)-shift:]
			before = before[:len(before)-shift]
			edit = common + edit[:len(edit)-shift]
			after = common + after
		}

		bestBefore, bestEdit, bestAfter := before, edit, after
		bestScore := diffCleanupSemanticScore(before, edit) + diffCleanupSemanticScore(edit, after)
		for len(edit) != 0 && len(after) != 0 {
			_, sz := utf8.DecodeRuneInString(edit)
			if len(after) < sz || edit[:sz] != after[:sz] {
				break
			}
			before += edit[:sz]
			edit = edit[sz:] + after[:sz]
			after = after[sz:]
			if score := diffCleanupSemanticScore(before, edit) + diffCleanupSemanticScore(edit, after); score >= bestScore {
				// >= favors trailing rather than leading whitespace on the edit.
				bestScore = score
				bestBefore, bestEdit, bestAfter = before, edit, after
			}
		}

		if diffs[pointer-1].Text == bestBefore {
			pointer++
			continue
		}
		if len(bestBefore) != 0 {
			diffs[pointer-1].Text = bestBefore
		} else {
			diffs = spliceDiffs(diffs, pointer-1, 1)
			pointer--
		}
		diffs[pointer].Text = bestEdit
		if len(bestAfter) != 0 {
			diffs[pointer+1].Text = bestAfter
		} else {
			diffs = append(diffs[:pointer+1], diffs[pointer+2:]...)
			pointer--
		}
		pointer++
	}
	return diffs
}

// DiffCleanupEfficiency drops equalities that are cheap enough in edit-cost
// terms that removing them (merging the edits around them) is a net win,
// per the five redundant patterns documented inline below.
func (config *Config) DiffCleanupEfficiency(diffs []Diff) []Diff {
	type candidate struct {
		at   int
		next *candidate
	}
	var stack *candidate
	lastEquality := ""
	pointer := 0
	var preIns, preDel, postIns, postDel bool
	changed := false

	for pointer < len(diffs) {
		if diffs[pointer].Op == OpEqual {
			if len(diffs[pointer].Text) < config.DiffEditCost && (postIns || postDel) {
				stack = &candidate{at: pointer, next: stack}
				preIns, preDel = postIns, postDel
				lastEquality = diffs[pointer].Text
			} else {
				stack = nil
				lastEquality = ""
			}
			postIns, postDel = false, false
			pointer++
			continue
		}

		if diffs[pointer].Op == OpDelete {
			postDel = true
		} else {
			postIns = true
		}
		// Five shapes worth collapsing:
		//   <ins>A</ins><del>B</del>XY<ins>C</ins><del>D</del>
		//   <ins>A</ins>X<ins>C</ins><del>D</del>
		//   <ins>A</ins><del>B</del>X<ins>C</ins>
		//   <del>A</del>X<ins>C</ins><del>D</del>
		//   <ins>A</ins><del>B</del>X<del>C</del>
		presentSides := boolCount(preIns, preDel, postIns, postDel)
		if len(lastEquality) > 0 &&
			((preIns && preDel && postIns && postDel) ||
				(len(lastEquality) < config.DiffEditCost/2 && presentSides == 3)) {
			insPoint := stack.at
			diffs = spliceDiffs(diffs, insPoint, 0, Diff{OpDelete, lastEquality})
			diffs[insPoint+1].Op = OpInsert
			stack = stack.next
			lastEquality = ""
			if preIns && preDel {
				postIns, postDel = true, true
				stack = nil
			} else {
				if stack != nil {
					stack = stack.next
				}
				if stack != nil {
					pointer = stack.at
				} else {
					pointer = -1
				}
				postIns, postDel = false, false
			}
			changed = true
		}
		pointer++
	}
	if changed {
		diffs = config.DiffCleanupMerge(diffs)
	}
	return diffs
}

func boolCount(bs ...bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}

// DiffCleanupMerge reorders and merges adjacent like-typed diffs: runs of
// inserts and deletes are folded into single records with any shared
// prefix/suffix factored into the surrounding equalities, then a second
// pass shifts single edits across an adjacent equality when that eliminates
// it, e.g. A<ins>BA</ins>C -> <ins>AB</ins>AC.
func (config *Config) DiffCleanupMerge(diffs []Diff) []Diff {
	diffs = append(diffs, Diff{OpEqual, ""})
	pointer := 0
	countDelete, countInsert := 0, 0
	var textDelete, textInsert []rune
	for pointer < len(diffs) {
		switch diffs[pointer].Op {
		case OpInsert:
			countInsert++
			textInsert = append(textInsert, []rune(diffs[pointer].Text)...)
			pointer++
		case OpDelete:
			countDelete++
			textDelete = append(textDelete, []rune(diffs[pointer].Text)...)
			pointer++
		case OpEqual:
			if countDelete+countInsert > 1 {
				if countDelete != 0 && countInsert != 0 {
					if n := commonRunePrefix(textInsert, textDelete); n != 0 {
						x := pointer - countDelete - countInsert
						if x > 0 && diffs[x-1].Op == OpEqual {
							diffs[x-1].Text += string(textInsert[:n])
						} else {
							diffs = append([]Diff{{OpEqual, string(textInsert[:n])}}, diffs...)
							pointer++
						}
						textInsert = textInsert[n:]
						textDelete = textDelete[n:]
					}
					if n := commonRuneSuffix(textInsert, textDelete); n != 0 {
						insertAt := len(textInsert) - n
						deleteAt := len(textDelete) - n
						diffs[pointer].Text = string(textInsert[insertAt:]) + diffs[pointer].Text
						textInsert = textInsert[:insertAt]
						textDelete = textDelete[:deleteAt]
					}
				}
				switch {
				case countDelete == 0:
					diffs = spliceDiffs(diffs, pointer-countInsert, countDelete+countInsert,
						Diff{OpInsert, string(textInsert)})
				case countInsert == 0:
					diffs = spliceDiffs(diffs, pointer-countDelete, countDelete+countInsert,
						Diff{OpDelete, string(textDelete)})
				default:
					diffs = spliceDiffs(diffs, pointer-countDelete-countInsert, countDelete+countInsert,
						Diff{OpDelete, string(textDelete)}, Diff{OpInsert, string(textInsert)})
				}
				pointer = pointer - countDelete - countInsert + 1
				if countDelete != 0 {
					pointer++
				}
				if countInsert != 0 {
					pointer++
				}
			} else if pointer != 0 && diffs[pointer-1].Op == OpEqual {
				diffs[pointer-1].Text += diffs[pointer].Text
				diffs = append(diffs[:pointer], diffs[pointer+1:]...)
			} else {
				pointer++
			}
			countInsert, countDelete = 0, 0
			textDelete, textInsert = nil, nil
		}
	}
	if len(diffs[len(diffs)-1].Text) == 0 {
		diffs = diffs[:len(diffs)-1]
	}

	changed := false
	pointer = 1
	for pointer < len(diffs)-1 {
		if diffs[pointer-1].Op == OpEqual && diffs[pointer+1].Op == OpEqual {
			switch {
			case strings.HasSuffix(diffs[pointer].Text, diffs[pointer-1].Text):
				diffs[pointer].Text = diffs[pointer-1].Text +
					diffs[pointer].Text[:len(diffs[pointer].Text)-len(diffs[pointer-1].Text)]
				diffs[pointer+1].Text = diffs[pointer-1].Text + diffs[pointer+1].Text
				diffs = spliceDiffs(diffs, pointer-1, 1)
				changed = true
			case strings.HasPrefix(diffs[pointer].Text, diffs[pointer+1].Text):
				diffs[pointer-1].Text += diffs[pointer+1].Text
				diffs[pointer].Text = diffs[pointer].Text[len(diffs[pointer+1].Text):] + diffs[pointer+1].Text
				diffs = spliceDiffs(diffs, pointer+1, 1)
				changed = true
			}
		}
		pointer++
	}
	if changed {
		diffs = config.DiffCleanupMerge(diffs)
	}
	return diffs
}
