package console

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Writer prints spread summaries to a terminal.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter writes to stdout when w is nil.
func NewWriter(w io.Writer) *Writer {
	if w == nil {
		w = os.Stdout
	}
	return &Writer{w: w}
}

func (s *Writer) WriteSnapshot(ts time.Time, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.w, "%s %s\n", ts.Format("2006-01-02 15:04:05"), line)
	return err
}
