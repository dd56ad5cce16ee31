package protocol

import (
	"bufio"
	"io"
	"sync"
)

// FlushWriter buffers a whole message and pushes it to the underlying
// writer on Flush, so a reader on the other end never sees half a line.
type FlushWriter struct {
	mu  sync.Mutex
	out io.Writer
	buf *bufio.Writer
}

func NewFlushWriter(w io.Writer) *FlushWriter {
	return &FlushWriter{out: w, buf: bufio.NewWriterSize(w, 64*1024)}
}

func (w *FlushWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *FlushWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flush()
}

// WriteLine writes p and flushes it under one lock. The buffer is empty
// between lines, so bufio hands an oversized line to the underlying
// writer in a single call.
func (w *FlushWriter) WriteLine(p []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.buf.Write(p); err != nil {
		w.buf.Reset(w.out)
		return err
	}
	return w.flush()
}

// bufio.Writer keeps its first error forever; drop the failed line so the
// next one gets a fresh attempt.
func (w *FlushWriter) flush() error {
	if err := w.buf.Flush(); err != nil {
		w.buf.Reset(w.out)
		return err
	}
	return nil
}
