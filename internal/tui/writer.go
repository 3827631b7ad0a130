package tui

import (
	"os"
	"sync/atomic"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"borderops-sim/internal/drone"
	"borderops-sim/internal/geo"
)

// teaProgram is the slice of *tea.Program the writer needs. Tests
// substitute a recording fake.
type teaProgram interface {
	Send(msg tea.Msg)
}

// Writer feeds the dashboard. It satisfies the engine's drone and alert
// writer interfaces; batches replace the table wholesale, alerts append
// to the feed.
type Writer struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewWriter starts the dashboard in the alternate screen and returns a
// writer bound to it. When the user quits the dashboard (q or ctrl+c)
// the process receives an interrupt so the rest of the pipeline shuts
// down with it.
func NewWriter(border geo.Border) *Writer {
	p := tea.NewProgram(newModel(border), tea.WithAltScreen())
	w := &Writer{program: p, done: make(chan struct{})}
	w.sendSignal.Store(true)
	go func() {
		defer close(w.done)
		if _, err := p.Run(); err != nil {
			return
		}
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(syscall.SIGINT)
			}
		}
	}()
	return w
}

func (w *Writer) Write(d drone.Drone) error {
	w.program.Send(droneMsg{drone: d})
	return nil
}

func (w *Writer) WriteBatch(drones []drone.Drone) error {
	w.program.Send(dronesMsg{drones: drones})
	return nil
}

func (w *Writer) WriteAlert(a drone.Alert) error {
	w.program.Send(alertMsg{alert: a})
	return nil
}

// Close tears the dashboard down without signalling the process.
func (w *Writer) Close() error {
	w.sendSignal.Store(false)
	w.program.Send(tea.Quit())
	if w.done != nil {
		<-w.done
	}
	return nil
}
