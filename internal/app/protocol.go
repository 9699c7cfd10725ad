package app

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/yourusername/ytshim/internal/domain"
)

// Line protocol tags written by the download command
const (
	TagProgress = "PROGRESS"
	TagFinished = "FINISHED"
	TagFilePath = "FILEPATH"
)

// ProtocolWriter writes download protocol lines, flushing after each one.
// It is safe for use from the extractor's progress goroutine. Once the
// FILEPATH line is written every later line is dropped, so FILEPATH is
// always last.
type ProtocolWriter struct {
	mu     sync.Mutex
	w      *bufio.Writer
	sealed bool
	err    error
}

// NewProtocolWriter creates a protocol writer on top of out
func NewProtocolWriter(out io.Writer) *ProtocolWriter {
	return &ProtocolWriter{w: bufio.NewWriter(out)}
}

// Progress writes the line for a progress event. Unknown statuses are ignored.
func (p *ProtocolWriter) Progress(event domain.ProgressEvent) {
	switch event.Status {
	case domain.ProgressDownloading:
		total := event.Total
		if total < 0 {
			total = 0
		}
		p.writeLine(fmt.Sprintf("%s %d %d", TagProgress, event.Downloaded, total), false)
	case domain.ProgressFinished:
		p.writeLine(TagFinished, false)
	}
}

// FilePath writes the terminating FILEPATH line
func (p *ProtocolWriter) FilePath(path string) error {
	p.writeLine(TagFilePath+" "+path, true)
	return p.Err()
}

// Err returns the first write error, if any
func (p *ProtocolWriter) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *ProtocolWriter) writeLine(line string, seal bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sealed || p.err != nil {
		return
	}
	if seal {
		p.sealed = true
	}

	if _, err := p.w.WriteString(line + "\n"); err != nil {
		p.err = fmt.Errorf("failed to write %q line: %w", line, err)
		return
	}
	if err := p.w.Flush(); err != nil {
		p.err = fmt.Errorf("failed to flush output: %w", err)
	}
}

// WriteJSONLine writes v as one compact JSON line
func WriteJSONLine(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write json line: %w", err)
	}
	return nil
}
