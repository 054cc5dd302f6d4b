package protocol

import (
	"io"
	"strconv"

	"github.com/hastyy/meterlog/internal/measurement"
)

// BatchEncoder is meant to be used by monitors to encode batch requests.
type BatchEncoder struct {
	buf []byte
}

// NewBatchEncoder returns a new BatchEncoder.
func NewBatchEncoder() *BatchEncoder {
	return &BatchEncoder{}
}

// EncodeBatch writes b to writer with a single Write call.
// The encoder's scratch buffer is reused across calls, so an encoder must not be shared between goroutines.
func (e *BatchEncoder) EncodeBatch(writer io.Writer, b measurement.Batch) error {
	if len(b) == 0 {
		return ErrEmptyBatch
	}

	buf := e.buf[:0]
	buf = append(buf, symbolArray)
	buf = strconv.AppendInt(buf, int64(2*len(b)), 10)
	buf = append(buf, separatorCRLF...)
	for _, m := range b {
		buf = appendInteger(buf, m.Key)
		buf = appendInteger(buf, m.Value)
	}
	e.buf = buf

	_, err := writer.Write(buf)
	return err
}

func appendInteger(buf []byte, n int64) []byte {
	buf = append(buf, symbolInteger)
	buf = strconv.AppendInt(buf, n, 10)
	return append(buf, separatorCRLF...)
}
