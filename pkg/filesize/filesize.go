package filesize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Unit is the multiplier between two adjacent suffixes.
const Unit = 1024

// DefaultPrecision is the number of fractional digits Format keeps.
const DefaultPrecision = 2

var suffixes = [...]string{"B", "K", "M", "G"}

var (
	lenientPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?|\.\d+)\s*([bkmg])?`)
	strictPattern  = regexp.MustCompile(`(?i)^\s*(-)?(\d+(?:\.\d+)?|\.\d+)\s*([kmg]b?|b)?\s*$`)
)

// Parse converts the first size found in text to bytes.
// A missing suffix means bytes. Returns 0 when text holds no number.
// Sizes beyond math.MaxInt64 are clamped to math.MaxInt64.
//
// Example:
//
//	filesize.Parse("10M")   // 10485760
//	filesize.Parse("2 kb")  // 2048
//	filesize.Parse("oops")  // 0
func Parse(text string) int64 {
	m := lenientPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	n, ok := toBytes(value, m[2])
	if !ok {
		return math.MaxInt64
	}
	return n
}

// ParseStrict converts text to bytes, requiring the whole string to be a size.
// Negative sizes return ErrNegativeSize, sizes that do not fit in int64
// ErrSizeOverflow, anything else unparseable ErrInvalidSize.
func ParseStrict(text string) (int64, error) {
	m := strictPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, text)
	}
	if m[1] != "" {
		return 0, fmt.Errorf("%w: %q", ErrNegativeSize, text)
	}
	value, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidSize, text, err)
	}
	n, ok := toBytes(value, m[3])
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrSizeOverflow, text)
	}
	return n, nil
}

// Format renders bytes with DefaultPrecision fractional digits, e.g. "1.5K".
func Format(bytes int64) string {
	return FormatPrecision(bytes, DefaultPrecision)
}

// FormatPrecision renders bytes as "<mantissa><suffix>" with the mantissa rounded
// to precision fractional digits and trailing zeros dropped.
// Zero and negative values render as "0B".
func FormatPrecision(bytes int64, precision int) string {
	if bytes <= 0 {
		return "0B"
	}
	if precision < 0 {
		precision = 0
	}

	idx := 0
	value := float64(bytes)
	for value >= Unit && idx < len(suffixes)-1 {
		value /= Unit
		idx++
	}

	scale := math.Pow(10, float64(precision))
	value = math.Round(value*scale) / scale

	return strconv.FormatFloat(value, 'f', -1, 64) + suffixes[idx]
}

// toBytes reports false when the result does not fit in int64.
func toBytes(value float64, suffix string) (int64, bool) {
	exp := 0
	if suffix != "" {
		exp = strings.Index("BKMG", strings.ToUpper(suffix[:1]))
	}
	n := math.Round(value * math.Pow(Unit, float64(exp)))
	// float64(math.MaxInt64) rounds up to 2^63, which is already out of range.
	if n >= float64(math.MaxInt64) || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	return int64(n), true
}
