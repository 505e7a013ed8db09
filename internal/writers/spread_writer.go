package writers

import (
	"io"
	"time"
)

// SpreadWriter buffers writes and, on Flush, paces them evenly across
// interval. Pacing stops once done is closed; remaining writes go out
// immediately.
type SpreadWriter struct {
	w        io.Writer
	interval time.Duration
	buf      [][]byte
	done     <-chan struct{}
}

func NewSpreadWriter(w io.Writer, interval time.Duration, done <-chan struct{}) *SpreadWriter {
	return &SpreadWriter{
		w:        w,
		interval: interval,
		buf:      make([][]byte, 0),
		done:     done,
	}
}

func (s *SpreadWriter) Write(p []byte) (int, error) {
	b := make([]byte, len(p))
	copy(b, p)
	s.buf = append(s.buf, b)
	return len(p), nil
}

func (s *SpreadWriter) Flush() {
	if len(s.buf) == 0 {
		return
	}
	sleep := s.interval / time.Duration(len(s.buf))
	if sleep <= 0 {
		sleep = time.Nanosecond
	}
	ticker := time.NewTicker(sleep)
	for _, b := range s.buf {
		s.w.Write(b)
		select {
		case <-ticker.C:
		case <-s.done:
		}
	}
	ticker.Stop()
	s.buf = s.buf[:0]
}
