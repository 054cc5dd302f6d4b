package assert

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOK(t *testing.T) {
	require := require.New(t)

	require.Panics(func() { OK(false, "log path %q is empty", "") })
	require.NotPanics(func() { OK(true, "should not panic") })
}

func TestOK_MessageContainsFormattedArgs(t *testing.T) {
	require := require.New(t)

	require.PanicsWithValue("assertion failed: max batch size must be positive, got -1\n", func() {
		OK(false, "max batch size must be positive, got %d", -1)
	})
}

func TestNonNil(t *testing.T) {
	require := require.New(t)

	require.Panics(func() { NonNil(nil, "should panic") })

	// Interface holding no type and no value.
	var i any
	require.Panics(func() { NonNil(i, "should panic") })

	// A typed nil pointer is still nil for our purposes.
	var w *io.PipeWriter
	var y io.Writer = w
	require.Panics(func() { NonNil(y, "should panic") })

	var open func(string) error
	require.Panics(func() { NonNil(open, "should panic") })

	require.NotPanics(func() { NonNil(struct{}{}, "should not panic") })
	require.NotPanics(func() { NonNil(io.Discard, "should not panic") })
}

func TestNonZero(t *testing.T) {
	require := require.New(t)

	require.Panics(func() { NonZero(0, "should panic") })
	require.Panics(func() { NonZero("", "should panic") })
	require.Panics(func() { NonZero(false, "should panic") })

	require.NotPanics(func() { NonZero(1, "should not panic") })
	require.NotPanics(func() { NonZero("data.csv", "should not panic") })
	require.NotPanics(func() { NonZero(true, "should not panic") })
}
