package protocol

import (
	"bufio"

	"github.com/hastyy/meterlog/internal/measurement"
)

// BatchDecoder is the recorder-side decoder for batch requests.
//
// A batch is an array of 2n integers alternating key and value:
//
//	*4\r\n:1\r\n:10\r\n:2\r\n:20\r\n
//
// Empty arrays, odd-length arrays and arrays above Config.MaxBatchSize measurements are rejected.
type BatchDecoder struct {
	cfg Config
}

// NewBatchDecoder creates a new BatchDecoder. Unset config values take their defaults.
func NewBatchDecoder(cfg Config) *BatchDecoder {
	return &BatchDecoder{cfg: cfg.CombineWith(DefaultConfig)}
}

// DecodeBatch decodes the next batch from the reader.
// It returns io.EOF, unwrapped, only when the reader is exhausted before the first byte of a batch,
// which is how a peer that closed the connection between batches shows up.
// A peer that disappears mid-batch shows up as io.ErrUnexpectedEOF.
func (d *BatchDecoder) DecodeBatch(r *bufio.Reader) (measurement.Batch, error) {
	if err := expectNextByte(r, symbolArray); err != nil {
		return nil, err
	}

	arrLength, err := readLength(r)
	if err != nil {
		return nil, unexpectedEOF(err)
	}

	if arrLength == 0 {
		return nil, BadFormatErrorf("batch must contain at least one measurement")
	}
	if !isPair(arrLength) {
		return nil, BadFormatErrorf("batch array must have an even number of elements, got %d", arrLength)
	}

	n := numberOfPairs(arrLength)
	if n > d.cfg.MaxBatchSize {
		return nil, LimitsErrorf("batch must have at most %d measurements, got %d", d.cfg.MaxBatchSize, n)
	}

	batch := make(measurement.Batch, n)
	for i := range batch {
		if batch[i].Key, err = readInteger(r); err != nil {
			return nil, unexpectedEOF(err)
		}
		if batch[i].Value, err = readInteger(r); err != nil {
			return nil, unexpectedEOF(err)
		}
	}

	return batch, nil
}
