package measurement

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriter_WriteBatch(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(w.WriteBatch(Batch{M(1, 10), M(2, 20)}))
	require.NoError(w.Write(M(-3, 0)))
	require.NoError(w.Flush())

	require.Equal("1,10\n2,20\n-3,0\n", buf.String())
}

func TestWriter_NothingBeforeFlush(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(w.Write(M(1, 10)))
	require.Zero(buf.Len())

	require.NoError(w.Flush())
	require.Equal("1,10\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriter_FlushReportsError(t *testing.T) {
	require := require.New(t)

	w := NewWriter(failingWriter{})
	require.NoError(w.Write(M(1, 10)))
	require.EqualError(w.Flush(), "disk full")
}

func TestReader_ReadAll(t *testing.T) {
	require := require.New(t)

	r := NewReader(strings.NewReader("1,10\n2, 20\n3,30"))
	b, err := r.ReadAll()
	require.NoError(err)
	require.Equal(Batch{M(1, 10), M(2, 20), M(3, 30)}, b)
}

func TestReader_Empty(t *testing.T) {
	require := require.New(t)

	b, err := NewReader(strings.NewReader("")).ReadAll()
	require.NoError(err)
	require.Empty(b)

	_, err = NewReader(strings.NewReader("")).Read()
	require.ErrorIs(err, io.EOF)
}

func TestReader_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "too few fields", input: "1\n"},
		{name: "too many fields", input: "1,2,3\n"},
		{name: "non-integer key", input: "a,2\n"},
		{name: "non-integer value", input: "1,2.5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(strings.NewReader(tt.input)).Read()
			require.Error(t, err)
		})
	}
}

func TestRoundTripPreservesOrder(t *testing.T) {
	require := require.New(t)

	in := Batch{M(5, 1), M(1, 5), M(5, 1), M(0, -9)}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(w.WriteBatch(in))
	require.NoError(w.Flush())

	out, err := NewReader(&buf).ReadAll()
	require.NoError(err)
	require.Equal(in, out)
}

func TestParse(t *testing.T) {
	require := require.New(t)

	m, err := Parse("42,-7")
	require.NoError(err)
	require.Equal(M(42, -7), m)
	require.Equal("(42,-7)", m.String())

	_, err = Parse("")
	require.Error(err)

	_, err = Parse("x,1")
	require.Error(err)
}
