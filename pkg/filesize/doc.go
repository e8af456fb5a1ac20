// Package filesize converts between human-readable size strings ("10M", "1.5 k")
// and byte counts.
//
// Sizes use binary multiples and four suffixes: B, K, M and G. Larger values keep
// the G suffix and grow their digits instead of switching to T or P.
//
//	n := filesize.Parse("10M")        // 10485760
//	s := filesize.Format(1536)        // "1.5K"
//	s = filesize.FormatPrecision(1000000, 0) // "977K"
//
// Parse is lenient and returns 0 when no number can be extracted. ParseStrict is
// meant for configuration input and reports malformed or negative values with
// ErrInvalidSize and ErrNegativeSize.
package filesize
