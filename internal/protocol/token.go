package protocol

import (
	"io"
)

// flusher is implemented by buffered writers such as *bufio.Writer and *tcp.Connection.
type flusher interface {
	Flush() error
}

// WriteToken writes token to w in full, flushing w if it is buffered.
// Failures are reported as *TransportError. There is no retry on partial writes.
func WriteToken(w io.Writer, token string) error {
	if _, err := io.WriteString(w, token); err != nil {
		return &TransportError{Op: "write " + token, Err: err}
	}
	if f, ok := w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return &TransportError{Op: "write " + token, Err: err}
		}
	}
	return nil
}

// ReadToken reads exactly len(token) bytes from r and checks that they spell token.
// Read failures, including the peer closing the connection, are reported as *TransportError.
// Any other content is reported as *UnexpectedTokenError.
func ReadToken(r io.Reader, token string) error {
	buf := make([]byte, len(token))
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return &TransportError{Op: "read " + token, Err: err}
	}
	if got := string(buf[:n]); got != token {
		return &UnexpectedTokenError{Want: token, Got: got}
	}
	return nil
}
