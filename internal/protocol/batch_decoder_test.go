package protocol

import (
	"io"
	"testing"

	"github.com/hastyy/meterlog/internal/measurement"
	"github.com/stretchr/testify/require"
)

func TestDecodeBatch(t *testing.T) {
	require := require.New(t)

	tests := []struct {
		name                string
		input               string
		outputExpectedBatch measurement.Batch
		outputExpectedErr   error
	}{
		{
			name:                "decodes a single measurement",
			input:               "*2\r\n:3\r\n:30\r\n",
			outputExpectedBatch: measurement.Batch{measurement.M(3, 30)},
		},
		{
			name:                "decodes measurements in order",
			input:               "*4\r\n:1\r\n:10\r\n:2\r\n:20\r\n",
			outputExpectedBatch: measurement.Batch{measurement.M(1, 10), measurement.M(2, 20)},
		},
		{
			name:                "keeps duplicates",
			input:               "*4\r\n:1\r\n:10\r\n:1\r\n:10\r\n",
			outputExpectedBatch: measurement.Batch{measurement.M(1, 10), measurement.M(1, 10)},
		},
		{
			name:              "returns io.EOF when the peer closed before a batch",
			input:             "",
			outputExpectedErr: io.EOF,
		},
		{
			name:              "returns io.ErrUnexpectedEOF when the peer closed inside the header",
			input:             "*4",
			outputExpectedErr: io.ErrUnexpectedEOF,
		},
		{
			name:              "returns io.ErrUnexpectedEOF when the peer closed mid-batch",
			input:             "*4\r\n:1\r\n:10\r\n:2\r\n",
			outputExpectedErr: io.ErrUnexpectedEOF,
		},
		{
			name:              "rejects an empty batch",
			input:             "*0\r\n",
			outputExpectedErr: BadFormatErrorf("batch must contain at least one measurement"),
		},
		{
			name:              "rejects an odd number of elements",
			input:             "*3\r\n:1\r\n:10\r\n:2\r\n",
			outputExpectedErr: BadFormatErrorf("batch array must have an even number of elements, got 3"),
		},
		{
			name:              "rejects a batch over the limit",
			input:             "*8\r\n",
			outputExpectedErr: LimitsErrorf("batch must have at most 3 measurements, got 4"),
		},
		{
			name:              "rejects a non-integer element",
			input:             "*2\r\n:1\r\n:ten\r\n",
			outputExpectedErr: BadFormatErrorf("invalid integer: ten"),
		},
		{
			name:              "rejects a request that is not an array",
			input:             "1,10\n",
			outputExpectedErr: BadFormatErrorf("found unexpected byte(%c) in stream while expecting byte(%c)", '1', '*'),
		},
	}

	decoder := NewBatchDecoder(Config{MaxBatchSize: 3})
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			batch, err := decoder.DecodeBatch(reader(test.input))
			require.Equal(test.outputExpectedBatch, batch)
			require.Equal(test.outputExpectedErr, err)
		})
	}
}

func TestDecodeBatch_ConsecutiveBatches(t *testing.T) {
	require := require.New(t)

	r := reader("*4\r\n:1\r\n:10\r\n:2\r\n:20\r\n*2\r\n:3\r\n:30\r\n")
	decoder := NewBatchDecoder(Config{})

	b1, err := decoder.DecodeBatch(r)
	require.NoError(err)
	require.Equal(measurement.Batch{measurement.M(1, 10), measurement.M(2, 20)}, b1)

	b2, err := decoder.DecodeBatch(r)
	require.NoError(err)
	require.Equal(measurement.Batch{measurement.M(3, 30)}, b2)

	_, err = decoder.DecodeBatch(r)
	require.Equal(io.EOF, err)
}

func TestDecodeBatch_DefaultLimit(t *testing.T) {
	require := require.New(t)

	decoder := NewBatchDecoder(Config{})
	require.Equal(DefaultConfig.MaxBatchSize, decoder.cfg.MaxBatchSize)

	_, err := decoder.DecodeBatch(reader("*20002\r\n"))
	perr, ok := IsProtocolError(err)
	require.True(ok)
	require.Equal(ErrCodeLimits, perr.Code)
}
