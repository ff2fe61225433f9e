package main

import (
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/sson-dev/sson/handler"
	"github.com/sson-dev/sson/path"
	"github.com/sson-dev/sson/token"
)

// countingHandler wraps a handler.Handler, incrementing a shared counter
// each time Start fires, so --tui can report "matches fired" without the
// strategy package itself needing to know anything about progress
// reporting. It always implements every optional lifecycle interface,
// forwarding to inner only where inner itself implements it; this is safe
// since a strategy calling through to a no-op is indistinguishable from
// not calling through at all.
type countingHandler struct {
	inner   handler.Handler
	matches *int64
}

func withMatchCounter(inner handler.Handler, matches *int64) handler.Handler {
	if inner == nil {
		return nil
	}
	return countingHandler{inner: inner, matches: matches}
}

func (c countingHandler) IsConverter() bool { return c.inner.IsConverter() }

func (c countingHandler) Start(p path.Path, matcherIdx int, tok token.Token) ([]byte, error) {
	atomic.AddInt64(c.matches, 1)
	if st, ok := c.inner.(handler.Starter); ok {
		return st.Start(p, matcherIdx, tok)
	}
	return nil, nil
}

func (c countingHandler) Feed(b []byte, matcherIdx int) ([]byte, error) {
	if fd, ok := c.inner.(handler.Feeder); ok {
		return fd.Feed(b, matcherIdx)
	}
	return nil, nil
}

func (c countingHandler) End(p path.Path, matcherIdx int, tok token.Token) ([]byte, error) {
	if en, ok := c.inner.(handler.Ender); ok {
		return en.End(p, matcherIdx, tok)
	}
	return nil, nil
}

func (c countingHandler) InputFinished() ([]byte, error) {
	if in, ok := c.inner.(handler.InputFinisher); ok {
		return in.InputFinished()
	}
	return nil, nil
}

func (c countingHandler) JSONFinished() ([]byte, error) {
	if jf, ok := c.inner.(handler.JSONFinisher); ok {
		return jf.JSONFinished()
	}
	return nil, nil
}

type progressModel struct {
	bar       progress.Model
	total     int64
	processed *int64
	matches   *int64
	done      chan struct{}
}

func newProgressModel(total int64, processed, matches *int64, done chan struct{}) progressModel {
	return progressModel{
		bar:       progress.New(progress.WithDefaultGradient()),
		total:     total,
		processed: processed,
		matches:   matches,
		done:      done,
	}
}

type tickType time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg { return tickType(t) })
}

func (m progressModel) Init() tea.Cmd { return tickCmd() }

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case tickType:
		select {
		case <-m.done:
			return m, tea.Quit
		default:
		}
		return m, tickCmd()
	}
	return m, nil
}

func (m progressModel) View() string {
	var frac float64
	if m.total > 0 {
		frac = float64(atomic.LoadInt64(m.processed)) / float64(m.total)
	}
	style := lipgloss.NewStyle().Bold(true)
	return fmt.Sprintf(
		"%s\n%s  %d bytes scanned, %d matches fired\n",
		m.bar.ViewAs(frac),
		style.Render("sson"),
		atomic.LoadInt64(m.processed),
		atomic.LoadInt64(m.matches),
	)
}

// runTUI launches a bubbletea program showing live progress and returns a
// function to call once processing completes (closing the done channel
// and waiting for the program to exit).
func runTUI(total int64, processed, matches *int64) func() {
	done := make(chan struct{})
	exited := make(chan struct{})
	p := tea.NewProgram(newProgressModel(total, processed, matches, done))
	go func() {
		p.Run()
		close(exited)
	}()
	return func() {
		close(done)
		<-exited
	}
}
