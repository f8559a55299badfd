package dmp

import "errors"

// Sentinel errors returned by the parse-boundary operations (delta and
// patch-text codecs) and by the bitap precondition check. Consolidated
// here from the inline errors.New/fmt.Errorf call sites so callers can
// compare with errors.Is instead of string matching.
var (
	// ErrNegativeCount is returned by DiffFromDelta when a "=" or "-"
	// token carries a negative length.
	ErrNegativeCount = errors.New("dmp: negative count in delta")
	// ErrDeltaLengthMismatch is returned by DiffFromDelta when the sum of
	// the delta's "=" and "-" counts does not equal the source length.
	ErrDeltaLengthMismatch = errors.New("dmp: delta length does not match source text length")
	// ErrInvalidDeltaOp is returned by DiffFromDelta on an unrecognized
	// leading token character.
	ErrInvalidDeltaOp = errors.New("dmp: invalid diff operation in delta")
	// ErrInvalidUTF8Token is returned by DiffFromDelta when a decoded
	// insert token is not valid UTF-8.
	ErrInvalidUTF8Token = errors.New("dmp: invalid UTF-8 token")

	// ErrInvalidPatchString is returned by PatchFromText when a line that
	// should be a patch header does not match the expected format.
	ErrInvalidPatchString = errors.New("dmp: invalid patch string")
	// ErrInvalidPatchMode is returned by PatchFromText on an unrecognized
	// leading sign character in a patch body line.
	ErrInvalidPatchMode = errors.New("dmp: invalid patch mode")

	// ErrPatternTooLong is returned by MatchChecked when the pattern
	// exceeds Config.MatchMaxBits, the bitap matcher's precondition.
	ErrPatternTooLong = errors.New("dmp: pattern exceeds MatchMaxBits")
)
