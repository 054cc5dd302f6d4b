package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteToken(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	require.NoError(WriteToken(&buf, TokenReady))
	require.NoError(WriteToken(&buf, TokenAck))
	require.Equal("pingupdated", buf.String())
}

func TestWriteToken_FlushesBufferedWriters(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	require.NoError(WriteToken(bw, TokenAck))
	require.Equal(TokenAck, buf.String())
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestWriteToken_TransportError(t *testing.T) {
	require := require.New(t)

	err := WriteToken(brokenWriter{}, TokenAck)

	var terr *TransportError
	require.ErrorAs(err, &terr)
	require.Equal("write updated", terr.Op)
	require.ErrorIs(err, io.ErrClosedPipe)

	// A buffered writer only fails on flush.
	err = WriteToken(bufio.NewWriter(brokenWriter{}), TokenAck)
	require.ErrorAs(err, &terr)
	require.ErrorIs(err, io.ErrClosedPipe)
}

func TestReadToken(t *testing.T) {
	require := require.New(t)

	r := strings.NewReader("pingupdatedupdated")
	require.NoError(ReadToken(r, TokenReady))
	require.NoError(ReadToken(r, TokenAck))
	require.NoError(ReadToken(r, TokenAck))

	err := ReadToken(r, TokenAck)
	var terr *TransportError
	require.ErrorAs(err, &terr)
	require.ErrorIs(err, io.EOF)
}

func TestReadToken_Mismatch(t *testing.T) {
	require := require.New(t)

	err := ReadToken(strings.NewReader("nope!!!"), TokenAck)

	var uerr *UnexpectedTokenError
	require.True(errors.As(err, &uerr))
	require.Equal(TokenAck, uerr.Want)
	require.Equal("nope!!!", uerr.Got)
}

func TestReadToken_ShortRead(t *testing.T) {
	require := require.New(t)

	err := ReadToken(strings.NewReader("upd"), TokenAck)
	require.ErrorIs(err, io.ErrUnexpectedEOF)
}

func TestIsProtocolError(t *testing.T) {
	require := require.New(t)

	perr, ok := IsProtocolError(BadFormatErrorf("bad %s", "thing"))
	require.True(ok)
	require.Equal(ErrCodeBadFormat, perr.Code)
	require.Equal("ERR_BAD_FORMAT bad thing", perr.Error())

	_, ok = IsProtocolError(io.EOF)
	require.False(ok)
}
