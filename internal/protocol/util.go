package protocol

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
)

// expectNextByte consumes the next byte from the reader with an expectation of which byte it should be.
// Returns an error if the byte is not the expected one.
func expectNextByte(reader *bufio.Reader, expected byte) error {
	actual, err := reader.ReadByte()
	if err != nil {
		return err
	}
	if actual != expected {
		return BadFormatErrorf("found unexpected byte(%c) in stream while expecting byte(%c)", actual, expected)
	}
	return nil
}

// readLength expects to read a full line of digits from the reader.
// Returns an error if the line is not a valid integer >= 0.
func readLength(reader *bufio.Reader) (int, error) {
	line, err := readLine(reader)
	if err != nil {
		return 0, err
	}
	length, err := strconv.ParseInt(line, 10, 32)
	if err != nil || length < 0 {
		return 0, BadFormatErrorf("invalid length: %s", line)
	}
	return int(length), nil
}

// readInteger expects the next byte from the reader to be ':' followed by a signed 64-bit integer line.
func readInteger(reader *bufio.Reader) (int64, error) {
	if err := expectNextByte(reader, symbolInteger); err != nil {
		return 0, err
	}

	line, err := readLine(reader)
	if err != nil {
		return 0, err
	}

	n, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return 0, BadFormatErrorf("invalid integer: %s", line)
	}
	return n, nil
}

// readLine reads the remainder of the line content from the reader.
// This is only used for lines we expect to only contain ASCII encoded strings.
func readLine(reader *bufio.Reader) (string, error) {
	// bufio.Reader.ReadSlice() does not allocate any new memory but instead returns a slice from the internal buffer.
	line, err := reader.ReadSlice('\n')
	if err != nil {
		if errors.Is(err, bufio.ErrBufferFull) {
			return "", LimitsErrorf("line exceeds %d bytes", reader.Size())
		}
		return "", err
	}

	content, ok := strings.CutSuffix(string(line), separatorCRLF)
	if !ok {
		return "", BadFormatErrorf("line not terminated by CRLF")
	}

	// Line should not be empty
	if content == "" {
		return "", BadFormatErrorf("unexpected empty line")
	}

	return content, nil
}

// unexpectedEOF turns an io.EOF seen in the middle of a message into io.ErrUnexpectedEOF,
// so that callers can tell a peer that hung up between messages from one that hung up mid-message.
func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func isPair(arrLength int) bool {
	return arrLength%2 == 0
}

func numberOfPairs(arrLength int) int {
	return arrLength / 2
}
