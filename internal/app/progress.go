package app

import (
	"fmt"
	"io"
	"sync"

	"github.com/rbright/neuroscan/internal/render"
)

// progressLine redraws the live recording timer in place on one terminal line.
type progressLine struct {
	mu      sync.Mutex
	w       io.Writer
	drawn   bool
	stopped bool
}

func newProgressLine(w io.Writer) *progressLine {
	return &progressLine{w: w}
}

// update is a recorder tick observer.
func (p *progressLine) update(seconds int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	fmt.Fprintf(p.w, "\rrecording %s", render.Elapsed(seconds))
	p.drawn = true
}

// finish ends the line; later ticks are dropped.
func (p *progressLine) finish() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.drawn && !p.stopped {
		fmt.Fprintln(p.w)
	}
	p.stopped = true
}
