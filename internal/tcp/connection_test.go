package tcp

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewConnection_AppliesDefaults(t *testing.T) {
	require := require.New(t)

	serverConn, clientConn := net.Pipe()
	defer func() { _ = serverConn.Close() }()
	defer func() { _ = clientConn.Close() }()

	c := NewConnection(serverConn, Config{ReadBufferSize: 64})

	require.Equal(64, c.cfg.ReadBufferSize)
	require.Equal(DefaultConfig.WriteBufferSize, c.cfg.WriteBufferSize)
	require.Zero(c.cfg.ReadTimeout)
	require.Zero(c.cfg.WriteTimeout)
	require.Equal(64, c.BufferedReader().Size())
}

func TestNewConnection_PanicsOnNilConn(t *testing.T) {
	require.Panics(t, func() { NewConnection(nil, Config{}) })
}

func TestRead(t *testing.T) {
	require := require.New(t)

	serverConn, clientConn := net.Pipe()
	defer func() { _ = serverConn.Close() }()
	defer func() { _ = clientConn.Close() }()

	c := NewConnection(serverConn, Config{})

	go func() {
		_, _ = clientConn.Write([]byte("test"))
	}()

	buf := make([]byte, 4)
	_, err := io.ReadFull(c, buf)
	require.NoError(err)
	require.Equal([]byte("test"), buf)
}

func TestWrite_BufferedUntilFlush(t *testing.T) {
	require := require.New(t)

	serverConn, clientConn := net.Pipe()
	defer func() { _ = serverConn.Close() }()
	defer func() { _ = clientConn.Close() }()

	c := NewConnection(serverConn, Config{})

	// net.Pipe is synchronous: the write only completes once the buffered data is flushed
	// and the client reads it, so nothing can leak through before Flush.
	n, err := c.Write([]byte("updated"))
	require.NoError(err)
	require.Equal(7, n)

	done := make(chan error, 1)
	go func() { done <- c.Flush() }()

	buf := make([]byte, 7)
	_, err = io.ReadFull(clientConn, buf)
	require.NoError(err)
	require.Equal("updated", string(buf))
	require.NoError(<-done)
}

func TestResetDeadlines_ReadTimeout(t *testing.T) {
	require := require.New(t)

	serverConn, clientConn := net.Pipe()
	defer func() { _ = serverConn.Close() }()
	defer func() { _ = clientConn.Close() }()

	c := NewConnection(serverConn, Config{ReadTimeout: 10 * time.Millisecond})
	c.ResetDeadlines()

	_, err := c.Read(make([]byte, 1))
	var nerr net.Error
	require.ErrorAs(err, &nerr)
	require.True(nerr.Timeout())
}

func TestResetDeadlines_NoTimeoutsLeavesDeadlinesUnset(t *testing.T) {
	require := require.New(t)

	serverConn, clientConn := net.Pipe()
	defer func() { _ = clientConn.Close() }()

	c := NewConnection(serverConn, Config{})
	c.ResetDeadlines()

	readErr := make(chan error, 1)
	go func() {
		_, err := c.Read(make([]byte, 1))
		readErr <- err
	}()

	select {
	case err := <-readErr:
		t.Fatalf("read returned early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(c.Close())
	require.Error(<-readErr)
}

func TestClose(t *testing.T) {
	require := require.New(t)

	serverConn, clientConn := net.Pipe()
	defer func() { _ = clientConn.Close() }()

	c := NewConnection(serverConn, Config{})
	require.NoError(c.Close())

	_, err := clientConn.Read(make([]byte, 1))
	require.ErrorIs(err, io.EOF)
}
