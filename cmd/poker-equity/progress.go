package main

import (
	"context"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

type progressMsg float64

type progressDoneMsg struct{}

// progressModel is a single progress bar that quits when the work finishes
// and cancels the work on ctrl+c.
type progressModel struct {
	label   string
	bar     progress.Model
	percent float64
	cancel  context.CancelFunc
}

func newProgressModel(label string, cancel context.CancelFunc) progressModel {
	return progressModel{
		label:  label,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		cancel: cancel,
	}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.cancel()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.bar.Width = max(min(msg.Width-len(m.label)-4, 60), 10)
	case progressMsg:
		m.percent = float64(msg)
	case progressDoneMsg:
		m.percent = 1
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) View() string {
	return m.label + " " + m.bar.ViewAs(m.percent) + "\n"
}

// withProgress runs work while drawing a progress bar on stderr. work
// receives a report function that is safe to call from many goroutines and
// only redraws when the whole percentage changes.
func withProgress(ctx context.Context, label string, work func(ctx context.Context, report func(done, total int)) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(newProgressModel(label, cancel), tea.WithOutput(os.Stderr))

	var last atomic.Int64
	last.Store(-1)
	report := func(done, total int) {
		if total <= 0 {
			return
		}
		pct := int64(done * 100 / total)
		if prev := last.Load(); pct > prev && last.CompareAndSwap(prev, pct) {
			program.Send(progressMsg(float64(done) / float64(total)))
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- work(ctx, report)
		program.Send(progressDoneMsg{})
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		<-errCh
		return err
	}
	return <-errCh
}
