// Package tui renders a live terminal dashboard of the simulation: a drone
// table on top, the alert feed below. It implements the engine's writer
// interfaces by translating writes into bubbletea messages.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"borderops-sim/internal/drone"
	"borderops-sim/internal/geo"
)

const maxAlertLines = 200

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	helpStyle   = lipgloss.NewStyle().Faint(true)

	threatStyles = map[drone.ThreatLevel]lipgloss.Style{
		drone.ThreatNone:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		drone.ThreatLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		drone.ThreatMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		drone.ThreatHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		drone.ThreatCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
	alertStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
)

type dronesMsg struct{ drones []drone.Drone }

type droneMsg struct{ drone drone.Drone }

type alertMsg struct{ alert drone.Alert }

type model struct {
	border     geo.Border
	table      table.Model
	vp         viewport.Model
	live       []drone.Drone
	alerts     []string
	autoscroll bool
	width      int
	height     int
	ready      bool
}

func newModel(border geo.Border) model {
	cols := []table.Column{
		{Title: "ID", Width: 8},
		{Title: "Type", Width: 10},
		{Title: "Lat", Width: 9},
		{Title: "Lon", Width: 9},
		{Title: "Alt", Width: 7},
		{Title: "Spd", Width: 6},
		{Title: "Sig", Width: 6},
		{Title: "Threat", Width: 9},
		{Title: "Status", Width: 11},
	}
	t := table.New(table.WithColumns(cols), table.WithFocused(true))
	return model{
		border:     border,
		table:      t,
		vp:         viewport.New(0, 0),
		autoscroll: true,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "a":
			m.autoscroll = !m.autoscroll
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()

	case dronesMsg:
		m.live = msg.drones
		m.refreshTable()

	case droneMsg:
		replaced := false
		for i := range m.live {
			if m.live[i].ID == msg.drone.ID {
				m.live[i] = msg.drone
				replaced = true
				break
			}
		}
		if !replaced {
			m.live = append(m.live, msg.drone)
		}
		m.refreshTable()

	case alertMsg:
		a := msg.alert
		line := alertStyle.Render(fmt.Sprintf("[%s] %-20s %s",
			a.Timestamp.Format(time.TimeOnly), a.AlertType, a.Description))
		m.alerts = append(m.alerts, line)
		if len(m.alerts) > maxAlertLines {
			m.alerts = m.alerts[len(m.alerts)-maxAlertLines:]
		}
		m.refreshAlerts()
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *model) refreshTable() {
	rows := make([]table.Row, 0, len(m.live))
	for _, d := range m.live {
		rows = append(rows, table.Row{
			d.ID,
			string(d.Type),
			fmt.Sprintf("%.4f", d.Location.Latitude),
			fmt.Sprintf("%.4f", d.Location.Longitude),
			fmt.Sprintf("%.0fm", d.Location.Altitude),
			fmt.Sprintf("%.1f", d.Speed),
			fmt.Sprintf("%.0f", d.SignalStrength),
			threatStyles[d.ThreatLevel].Render(string(d.ThreatLevel)),
			droneStatus(d),
		})
	}
	m.table.SetRows(rows)
}

func (m *model) layout() {
	tableHeight := m.height/2 - 3
	if tableHeight < 4 {
		tableHeight = 4
	}
	m.table.SetHeight(tableHeight)
	m.vp.Width = m.width
	m.vp.Height = m.height - tableHeight - 5
	if m.vp.Height < 3 {
		m.vp.Height = 3
	}
	m.refreshAlerts()
}

func (m *model) refreshAlerts() {
	content := ""
	for _, line := range m.alerts {
		content += wordwrap.String(line, max(m.vp.Width, 20)) + "\n"
	}
	m.vp.SetContent(content)
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m model) View() string {
	if !m.ready {
		return "starting dashboard..."
	}
	header := headerStyle.Render(fmt.Sprintf(
		"border center %.4f,%.4f  box %.2fx%.2f deg  drones %d",
		m.border.Center.Latitude, m.border.Center.Longitude,
		m.border.Width, m.border.Height, len(m.live)))
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		titleStyle.Render("Detections"),
		m.table.View(),
		titleStyle.Render("Alerts"),
		m.vp.View(),
		helpStyle.Render("q quit  a autoscroll"),
	)
}

func droneStatus(d drone.Drone) string {
	switch {
	case d.Captured:
		return "captured"
	case d.ControlCompromised:
		return "controlled"
	case d.IsJammed:
		return "jammed"
	default:
		return "tracking"
	}
}
