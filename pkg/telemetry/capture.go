// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Record is one captured payload. Captures are a CBOR sequence of records.
type Record struct {
	Offset  time.Duration `cbor:"1,keyasint"` // since the first record
	Source  string        `cbor:"2,keyasint,omitempty"`
	Payload string        `cbor:"3,keyasint"`
}

// CaptureWriter appends records to a capture stream
type CaptureWriter struct {
	w     *bufio.Writer
	enc   *cbor.Encoder
	start time.Time
	count int
	now   func() time.Time
}

// NewCaptureWriter creates a writer; offsets are measured from the first
// Write call
func NewCaptureWriter(w io.Writer) *CaptureWriter {
	bw := bufio.NewWriterSize(w, 64*1024)
	return &CaptureWriter{
		w:   bw,
		enc: cbor.NewEncoder(bw),
		now: time.Now,
	}
}

// Write records one payload
func (c *CaptureWriter) Write(source, payload string) error {
	now := c.now()
	if c.count == 0 {
		c.start = now
	}
	rec := Record{
		Offset:  now.Sub(c.start),
		Source:  source,
		Payload: payload,
	}
	if err := c.enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to encode capture record: %w", err)
	}
	c.count++
	return nil
}

// Count returns the number of records written
func (c *CaptureWriter) Count() int {
	return c.count
}

// Flush writes buffered records to the underlying writer
func (c *CaptureWriter) Flush() error {
	return c.w.Flush()
}

// CaptureReader reads records back from a capture stream
type CaptureReader struct {
	dec *cbor.Decoder
}

// NewCaptureReader creates a reader over a capture stream
func NewCaptureReader(r io.Reader) *CaptureReader {
	return &CaptureReader{dec: cbor.NewDecoder(bufio.NewReaderSize(r, 64*1024))}
}

// Next returns the next record, or io.EOF at the end of the stream
func (c *CaptureReader) Next() (Record, error) {
	var rec Record
	if err := c.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("failed to decode capture record: %w", err)
	}
	return rec, nil
}
