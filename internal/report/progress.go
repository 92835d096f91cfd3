package report

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/mattn/go-isatty"
)

// Progress draws an in-place progress bar. It is a no-op unless the
// destination is a terminal, and is safe for concurrent use.
type Progress struct {
	mu      sync.Mutex
	w       io.Writer
	enabled bool
	bar     progress.Model
	total   int
	done    int
}

// NewProgress creates a progress bar on f, enabled only when f is a terminal.
func NewProgress(f *os.File) *Progress {
	fd := f.Fd()
	return newProgress(f, isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
}

func newProgress(w io.Writer, enabled bool) *Progress {
	return &Progress{
		w:       w,
		enabled: enabled,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

// Start resets the bar for n files.
func (p *Progress) Start(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = n
	p.done = 0
	p.draw()
}

// Inc records one finished file.
func (p *Progress) Inc() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	p.draw()
}

// Finish clears the bar line.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.enabled {
		fmt.Fprint(p.w, "\r\x1b[2K")
	}
}

func (p *Progress) draw() {
	if !p.enabled {
		return
	}
	percent := 1.0
	if p.total > 0 {
		percent = float64(p.done) / float64(p.total)
	}
	fmt.Fprintf(p.w, "\r%s %d/%d files", p.bar.ViewAs(percent), p.done, p.total)
}
