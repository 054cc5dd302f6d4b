package measurement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const fieldsPerRecord = 2

// Writer encodes measurements as "key,value\n" records.
// Records are buffered; callers must call Flush and check its error.
type Writer struct {
	w     *csv.Writer
	field [fieldsPerRecord]string
}

// NewWriter returns a Writer that writes records to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: csv.NewWriter(w)}
}

// Write buffers a single record.
func (w *Writer) Write(m Measurement) error {
	w.field[0] = strconv.FormatInt(m.Key, 10)
	w.field[1] = strconv.FormatInt(m.Value, 10)
	return w.w.Write(w.field[:])
}

// WriteBatch buffers every record of b, in order.
func (w *Writer) WriteBatch(b Batch) error {
	for _, m := range b {
		if err := w.Write(m); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes any buffered records to the underlying writer and reports
// the first error seen by the writer so far.
func (w *Writer) Flush() error {
	w.w.Flush()
	return w.w.Error()
}

// Reader decodes "key,value" records.
type Reader struct {
	r *csv.Reader
}

// NewReader returns a Reader that reads records from r.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fieldsPerRecord
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return &Reader{r: cr}
}

// Read returns the next record. It returns io.EOF when the input is exhausted.
func (r *Reader) Read() (Measurement, error) {
	fields, err := r.r.Read()
	if err != nil {
		return Measurement{}, err
	}
	return parseFields(fields)
}

// ReadAll reads every remaining record.
func (r *Reader) ReadAll() (Batch, error) {
	var b Batch
	for {
		m, err := r.Read()
		if errors.Is(err, io.EOF) {
			return b, nil
		}
		if err != nil {
			return b, err
		}
		b = append(b, m)
	}
}

// Parse decodes a single "key,value" line.
func Parse(line string) (Measurement, error) {
	m, err := NewReader(strings.NewReader(line)).Read()
	if errors.Is(err, io.EOF) {
		return Measurement{}, fmt.Errorf("empty record")
	}
	return m, err
}

func parseFields(fields []string) (Measurement, error) {
	key, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Measurement{}, fmt.Errorf("invalid key %q: %w", fields[0], err)
	}
	value, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return Measurement{}, fmt.Errorf("invalid value %q: %w", fields[1], err)
	}
	return Measurement{Key: key, Value: value}, nil
}
