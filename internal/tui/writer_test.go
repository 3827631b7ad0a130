package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"borderops-sim/internal/drone"
	"borderops-sim/internal/geo"
)

type fakeProgram struct{ msgs []tea.Msg }

func (f *fakeProgram) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

func testBorder() geo.Border {
	return geo.Border{Center: geo.Point{Latitude: 16.7769, Longitude: 98.9761}, Width: 0.1, Height: 0.1}
}

func TestWriterMessages(t *testing.T) {
	p := &fakeProgram{}
	w := &Writer{program: p}

	d := drone.Drone{ID: "M0001", Type: drone.TypeMilitary}
	if err := w.Write(d); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok := p.msgs[0].(droneMsg); !ok {
		t.Fatalf("expected droneMsg, got %T", p.msgs[0])
	}

	if err := w.WriteBatch([]drone.Drone{d, {ID: "C0002"}}); err != nil {
		t.Fatalf("batch: %v", err)
	}
	if m, ok := p.msgs[1].(dronesMsg); !ok || len(m.drones) != 2 {
		t.Fatalf("expected dronesMsg with 2 drones, got %T", p.msgs[1])
	}

	a := drone.Alert{ID: "a1", AlertType: drone.AlertRestrictedZone, Timestamp: time.Unix(0, 0).UTC()}
	if err := w.WriteAlert(a); err != nil {
		t.Fatalf("alert: %v", err)
	}
	if _, ok := p.msgs[2].(alertMsg); !ok {
		t.Fatalf("expected alertMsg, got %T", p.msgs[2])
	}
}

func TestModelUpsertsSingleDrone(t *testing.T) {
	m := newModel(testBorder())
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = mi.(model)

	mi, _ = m.Update(dronesMsg{drones: []drone.Drone{{ID: "M0001"}, {ID: "C0002"}}})
	m = mi.(model)
	if len(m.table.Rows()) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(m.table.Rows()))
	}

	mi, _ = m.Update(droneMsg{drone: drone.Drone{ID: "M0001", Speed: 22}})
	m = mi.(model)
	if len(m.table.Rows()) != 2 {
		t.Fatalf("update of known drone must not add a row")
	}
	if m.table.Rows()[0][5] != "22.0" {
		t.Fatalf("expected speed column updated, got %q", m.table.Rows()[0][5])
	}

	mi, _ = m.Update(droneMsg{drone: drone.Drone{ID: "D0003"}})
	m = mi.(model)
	if len(m.table.Rows()) != 3 {
		t.Fatalf("unknown drone should append, got %d rows", len(m.table.Rows()))
	}
}

func TestModelAlertFeedTrims(t *testing.T) {
	m := newModel(testBorder())
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = mi.(model)

	for i := 0; i < maxAlertLines+10; i++ {
		mi, _ = m.Update(alertMsg{alert: drone.Alert{
			AlertType:   drone.AlertBorderViolation,
			Description: "crossing west edge",
			Timestamp:   time.Unix(int64(i), 0).UTC(),
		}})
		m = mi.(model)
	}
	if len(m.alerts) != maxAlertLines {
		t.Fatalf("expected feed trimmed to %d, got %d", maxAlertLines, len(m.alerts))
	}
	if !strings.Contains(m.vp.View(), "border_violation") {
		t.Fatalf("expected alert type in viewport")
	}
}

func TestQuitKey(t *testing.T) {
	m := newModel(testBorder())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected QuitMsg")
	}
}
