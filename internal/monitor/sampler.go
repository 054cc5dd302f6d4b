package monitor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/hastyy/meterlog/internal/assert"
	"github.com/hastyy/meterlog/internal/measurement"
)

// Sampler produces the measurements to submit. Returning io.EOF ends sampling.
// An empty batch with a nil error means there is nothing new this round.
type Sampler interface {
	Sample(ctx context.Context) (measurement.Batch, error)
}

type SamplerFunc func(ctx context.Context) (measurement.Batch, error)

func (f SamplerFunc) Sample(ctx context.Context) (measurement.Batch, error) {
	return f(ctx)
}

type Submitter interface {
	Submit(batch measurement.Batch) error
	Close() error
}

// Run samples every interval and submits each non-empty sample, waiting for its acknowledgment
// before taking the next one. It returns nil when the sampler reports io.EOF, ctx.Err() when ctx is done,
// and the first sampling or submission error otherwise. The client is closed in every case.
func Run(ctx context.Context, client Submitter, sampler Sampler, interval time.Duration, logger *slog.Logger) (err error) {
	assert.NonNil(client, "Submitter is required")
	assert.NonNil(sampler, "Sampler is required")
	assert.NonNil(logger, "Logger is required")

	defer func() {
		err = errors.Join(err, client.Close())
	}()

	var submitted int
	for {
		batch, err := sampler.Sample(ctx)
		if errors.Is(err, io.EOF) {
			logger.Info("sampling finished", "batches", submitted)
			return nil
		}
		if err != nil {
			return fmt.Errorf("sample: %w", err)
		}

		if len(batch) > 0 {
			if err := client.Submit(batch); err != nil {
				return fmt.Errorf("submit batch of %d: %w", len(batch), err)
			}
			submitted++
			logger.Debug("batch acknowledged", "measurements", len(batch))
		}

		if err := wait(ctx, interval); err != nil {
			return err
		}
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ReaderSampler turns "key,value" lines into batches. Blank lines are skipped.
// Each Sample blocks for at least one line and then takes whatever further lines are
// already buffered, up to the batch limit.
type ReaderSampler struct {
	r        *bufio.Reader
	maxBatch int
	line     int
}

// NewReaderSampler returns a Sampler reading lines from r, at most maxBatch per batch.
func NewReaderSampler(r io.Reader, maxBatch int) *ReaderSampler {
	assert.NonNil(r, "io.Reader is required")
	assert.OK(maxBatch > 0, "maxBatch must be positive, got %d", maxBatch)

	return &ReaderSampler{r: bufio.NewReader(r), maxBatch: maxBatch}
}

// Sample ignores ctx while blocked on the reader.
func (s *ReaderSampler) Sample(_ context.Context) (measurement.Batch, error) {
	var batch measurement.Batch
	for len(batch) < s.maxBatch {
		if len(batch) > 0 && s.r.Buffered() == 0 {
			break
		}

		line, err := s.r.ReadString('\n')
		if line != "" {
			s.line++
		}
		if text := strings.TrimSpace(line); text != "" {
			m, perr := measurement.Parse(text)
			if perr != nil {
				return batch, fmt.Errorf("line %d: %w", s.line, perr)
			}
			batch = append(batch, m)
		}

		if errors.Is(err, io.EOF) {
			if len(batch) > 0 {
				return batch, nil
			}
			return nil, io.EOF
		}
		if err != nil {
			return batch, err
		}
	}
	return batch, nil
}
