package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// Reporter is notified once before each pipeline stage starts.
// It is purely observational and must not influence the pipeline.
type Reporter interface {
	Tick(label string)
}

// Nop is a Reporter that does nothing.
type Nop struct{}

// Tick implements Reporter.
func (Nop) Tick(string) {}

const (
	// defaultBarWidth is the width of the rendered bar in cells.
	defaultBarWidth = 40
	// creepInterval is how often the bar advances between ticks.
	creepInterval = 200 * time.Millisecond
	// creepFraction is the share of the remaining gap covered by each creep step.
	creepFraction = 0.05
	// creepCeiling keeps the creep strictly below the next stage boundary.
	creepCeiling = 0.98
)

//nolint:gochecknoglobals // Styles are immutable after construction.
var labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

// Terminal renders a single-line progress bar on a terminal.
type Terminal struct {
	mu       sync.Mutex
	out      io.Writer
	bar      progress.Model
	total    int
	ticks    int
	shown    float64
	label    string
	stopChan chan struct{}
	stopOnce sync.Once
	started  bool
}

// NewTerminal creates a reporter expecting total ticks and drawing to out
// (stderr when nil).
func NewTerminal(total int, out io.Writer) *Terminal {
	if out == nil {
		out = os.Stderr
	}

	if total <= 0 {
		total = 1
	}

	return &Terminal{
		out:      out,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(defaultBarWidth)),
		total:    total,
		stopChan: make(chan struct{}),
	}
}

// Tick implements Reporter. It jumps the bar to the start of the next stage
// and starts the creep loop on the first call.
func (p *Terminal) Tick(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ticks < p.total {
		p.ticks++
	}

	p.label = label
	p.shown = max(p.shown, float64(p.ticks-1)/float64(p.total))
	p.renderLocked()

	if !p.started {
		p.started = true

		go p.creepLoop()
	}
}

// Stop completes the bar and ends the creep loop. Safe to call more than once.
func (p *Terminal) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopChan)

		p.mu.Lock()
		defer p.mu.Unlock()

		p.shown = 1
		p.renderLocked()
		_, _ = fmt.Fprintln(p.out)
	})
}

// Percent returns the currently displayed completion in [0, 1].
func (p *Terminal) Percent() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.shown
}

func (p *Terminal) creepLoop() {
	ticker := time.NewTicker(creepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.creep()
		}
	}
}

// creep moves the bar a little closer to the end of the current stage.
func (p *Terminal) creep() {
	p.mu.Lock()
	defer p.mu.Unlock()

	ceiling := float64(p.ticks) / float64(p.total) * creepCeiling
	if p.shown >= ceiling {
		return
	}

	p.shown = min(ceiling, p.shown+(ceiling-p.shown)*creepFraction)
	p.renderLocked()
}

func (p *Terminal) renderLocked() {
	_, _ = fmt.Fprintf(p.out, "\r%s %s", p.bar.ViewAs(p.shown), labelStyle.Render(fmt.Sprintf("%-12s", p.label)))
}
