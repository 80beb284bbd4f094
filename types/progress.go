package types

import (
	"fmt"
	"io"
	"sync"

	"github.com/gosuri/uilive"
)

// TerminalPrinter keeps a single status line updated in place
type TerminalPrinter struct {
	mu     sync.Mutex
	writer *uilive.Writer
}

func NewTerminalPrinter(out io.Writer) *TerminalPrinter {
	writer := uilive.New()
	writer.Out = out
	return &TerminalPrinter{
		writer: writer,
	}
}

// Print replaces the status line
func (p *TerminalPrinter) Print(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.writer, format+"\n", args...)
	p.writer.Flush()
}

// Done replaces the status line with a permanent one
func (p *TerminalPrinter) Done(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.writer.Bypass(), format+"\n", args...)
}
