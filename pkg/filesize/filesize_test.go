package filesize_test

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/uploadkit/pkg/filesize"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int64
	}{
		{"512", 512},
		{"10B", 10},
		{"1K", 1024},
		{"1.5 k", 1536},
		{"2kb", 2048},
		{"10M", 10 * 1024 * 1024},
		{"10m", 10 * 1024 * 1024},
		{"1G", 1024 * 1024 * 1024},
		{".5K", 512},
		{"size: 3M", 3 * 1024 * 1024},
		{"", 0},
		{"abc", 0},
		{"99999999999G", math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, filesize.Parse(tt.in))
		})
	}
}

func TestParseStrict(t *testing.T) {
	t.Parallel()

	t.Run("valid values", func(t *testing.T) {
		t.Parallel()
		n, err := filesize.ParseStrict("10MB")
		require.NoError(t, err)
		assert.Equal(t, int64(10*1024*1024), n)

		n, err = filesize.ParseStrict(" 100 ")
		require.NoError(t, err)
		assert.Equal(t, int64(100), n)

		n, err = filesize.ParseStrict("0")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("negative", func(t *testing.T) {
		t.Parallel()
		_, err := filesize.ParseStrict("-5M")
		assert.ErrorIs(t, err, filesize.ErrNegativeSize)
	})

	t.Run("overflow", func(t *testing.T) {
		t.Parallel()
		for _, in := range []string{"99999999999G", "8589934592G", "9223372036854775808"} {
			n, err := filesize.ParseStrict(in)
			assert.ErrorIs(t, err, filesize.ErrSizeOverflow, in)
			assert.Zero(t, n, in)
		}

		n, err := filesize.ParseStrict("8589934591G")
		require.NoError(t, err)
		assert.Equal(t, int64(8589934591)<<30, n)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		for _, in := range []string{"", "M", "5X", "1.2.3", "10 M extra"} {
			_, err := filesize.ParseStrict(in)
			assert.ErrorIs(t, err, filesize.ErrInvalidSize, in)
		}
	})
}

func TestFormat(t *testing.T) {
	t.Parallel()

	t.Run("bytes below one kilobyte", func(t *testing.T) {
		t.Parallel()
		for b := int64(1); b < 1024; b++ {
			require.Equal(t, strconv.FormatInt(b, 10)+"B", filesize.Format(b))
		}
	})

	t.Run("zero", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "0B", filesize.Format(0))
		assert.Equal(t, "0B", filesize.Format(-10))
	})

	t.Run("suffixes", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "1K", filesize.Format(1024))
		assert.Equal(t, "1.5K", filesize.Format(1536))
		assert.Equal(t, "976.56K", filesize.Format(1000000))
		assert.Equal(t, "1M", filesize.Format(1024*1024))
		assert.Equal(t, "2.5G", filesize.Format(5*1024*1024*1024/2))
	})

	t.Run("values beyond gigabytes stay in G", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "5120G", filesize.Format(5*1024*1024*1024*1024))
	})

	t.Run("precision", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "977K", filesize.FormatPrecision(1000000, 0))
		assert.Equal(t, "976.6K", filesize.FormatPrecision(1000000, 1))
		assert.Equal(t, "977K", filesize.FormatPrecision(1000000, -3))
	})
}

func TestFormatParseRoundTrip(t *testing.T) {
	t.Parallel()

	values := []int64{
		1, 999, 1023,
		1024, 1500, 65_000, 1_000_000 - 1,
		5 * 1024 * 1024, 123_456_789,
		3 * 1024 * 1024 * 1024, 7_777_777_777,
	}

	for _, b := range values {
		formatted := filesize.Format(b)
		got := filesize.Parse(formatted)

		magnitude := 1.0
		for v := float64(b); v >= 1024 && magnitude < math.Pow(1024, 3); v /= 1024 {
			magnitude *= 1024
		}
		delta := 0.005*magnitude + 1
		assert.InDelta(t, float64(b), float64(got), delta, "%d -> %s -> %d", b, formatted, got)
	}
}
