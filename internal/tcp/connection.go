package tcp

import (
	"bufio"
	"net"
	"time"

	"github.com/hastyy/meterlog/internal/assert"
	"github.com/hastyy/meterlog/internal/unit"
)

// Config holds the buffer sizes and deadlines of a Connection.
type Config struct {
	// Size of the buffered reader.
	ReadBufferSize int
	// Size of the buffered writer.
	WriteBufferSize int
	// Maximum time to wait for the next request. Zero means wait forever.
	ReadTimeout time.Duration
	// Maximum time to wait for a reply to be written. Zero means wait forever.
	WriteTimeout time.Duration
}

// DefaultConfig specifies the default config values for a Connection.
// No deadlines are set by default: a silent peer blocks its session until it closes the connection.
var DefaultConfig = Config{
	ReadBufferSize:  4 * unit.KiB,
	WriteBufferSize: 4 * unit.KiB,
}

// CombineWith takes the values from the other config and combines them with the values from the current config.
// Specifically, it fills the gaps on the current config (unset values) with the corresponding values from the other config (if it has them).
func (cfg Config) CombineWith(other Config) Config {
	if cfg.ReadBufferSize == 0 {
		cfg.ReadBufferSize = other.ReadBufferSize
	}
	if cfg.WriteBufferSize == 0 {
		cfg.WriteBufferSize = other.WriteBufferSize
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = other.ReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = other.WriteTimeout
	}
	return cfg
}

// Connection is a wrapper around net.Conn that implements io.Reader and io.Writer.
// It provides buffered I/O through an underlying *bufio.Reader and *bufio.Writer.
// A Connection is owned by a single goroutine for its whole lifetime: the control
// channel is strictly request/acknowledge, so reads and writes never overlap.
type Connection struct {
	conn net.Conn
	cfg  Config

	// The internal buffers in bufio.Reader and bufio.Writer never grow beyond their initial size.
	breader *bufio.Reader
	bwriter *bufio.Writer
}

// NewConnection wraps conn. Unset config values take their defaults.
func NewConnection(conn net.Conn, cfg Config) *Connection {
	assert.NonNil(conn, "net.Conn is required")

	cfg = cfg.CombineWith(DefaultConfig)
	return &Connection{
		conn:    conn,
		cfg:     cfg,
		breader: bufio.NewReaderSize(conn, cfg.ReadBufferSize),
		bwriter: bufio.NewWriterSize(conn, cfg.WriteBufferSize),
	}
}

// ResetDeadlines pushes the read and write deadlines forward by the configured timeouts.
// It should be called before each request/acknowledge exchange. Zero timeouts leave the deadlines unset.
func (c *Connection) ResetDeadlines() {
	// Deadline errors are ignored because they only occur when the connection is already closed
	// or invalid. If the connection is dead, subsequent I/O operations will fail anyway.
	if c.cfg.ReadTimeout > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	}
	if c.cfg.WriteTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	}
}

// Read reads data from the underlying connection through the buffered reader.
func (c *Connection) Read(p []byte) (int, error) {
	return c.breader.Read(p)
}

// Write writes data to the underlying connection through the buffered writer.
// Nothing reaches the peer until Flush is called.
func (c *Connection) Write(p []byte) (int, error) {
	return c.bwriter.Write(p)
}

// Flush sends any buffered data to the peer.
func (c *Connection) Flush() error {
	return c.bwriter.Flush()
}

// Close closes the underlying connection. Unflushed data is discarded.
func (c *Connection) Close() error {
	return c.conn.Close()
}

// RemoteAddr returns the peer's network address.
func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// BufferedReader returns the underlying *bufio.Reader for direct access to buffered reading operations.
func (c *Connection) BufferedReader() *bufio.Reader {
	return c.breader
}
