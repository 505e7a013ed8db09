package writers

import (
	"io"
)

// BoundaryBufferedWriter packs whole writes into packets of at most size
// bytes. A write that would cross the boundary flushes the pending packet
// first, and a write of size bytes or more goes out as its own packet.
type BoundaryBufferedWriter struct {
	w    io.Writer
	size int
	buf  []byte
}

func NewBoundaryBufferedWriter(w io.Writer, size int) *BoundaryBufferedWriter {
	return &BoundaryBufferedWriter{
		w:    w,
		size: size,
		buf:  make([]byte, 0, size),
	}
}

func (b *BoundaryBufferedWriter) Write(p []byte) (int, error) {
	if len(b.buf)+len(p) > b.size {
		if err := b.Flush(); err != nil {
			return 0, err
		}
	}
	if len(p) >= b.size {
		return b.w.Write(p)
	}
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// Flush writes the pending packet, if any.
func (b *BoundaryBufferedWriter) Flush() error {
	if len(b.buf) == 0 {
		return nil
	}
	_, err := b.w.Write(b.buf)
	b.buf = b.buf[:0]
	return err
}
