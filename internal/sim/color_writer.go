// ColorStdoutWriter prints human-friendly, colorized detections to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"

	"borderops-sim/internal/drone"

	"github.com/fatih/color"
)

var threatColors = map[drone.ThreatLevel]*color.Color{
	drone.ThreatNone:     color.New(color.FgHiBlack),
	drone.ThreatLow:      color.New(color.FgGreen),
	drone.ThreatMedium:   color.New(color.FgYellow),
	drone.ThreatHigh:     color.New(color.FgRed),
	drone.ThreatCritical: color.New(color.FgRed, color.Bold),
}

var alertColor = color.New(color.FgMagenta, color.Bold)

// ColorStdoutWriter prints drone records with threat-level coloring.
type ColorStdoutWriter struct {
	out io.Writer
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter() *ColorStdoutWriter {
	return &ColorStdoutWriter{out: os.Stdout}
}

// Write prints one drone record as a single line.
func (w *ColorStdoutWriter) Write(d drone.Drone) error {
	c, ok := threatColors[d.ThreatLevel]
	if !ok {
		c = threatColors[drone.ThreatNone]
	}
	status := ""
	if d.Captured {
		status = " CAPTURED"
	} else if d.ControlCompromised {
		status = " CONTROLLED"
	} else if d.IsJammed {
		status = " JAMMED"
	}
	_, err := c.Fprintf(w.out, "%-8s %-10s lat=%9.4f lon=%9.4f alt=%6.1fm spd=%5.1fm/s sig=%5.1f threat=%s%s\n",
		d.ID, d.Type, d.Location.Latitude, d.Location.Longitude, d.Location.Altitude,
		d.Speed, d.SignalStrength, d.ThreatLevel, status)
	return err
}

// WriteBatch prints multiple drone records.
func (w *ColorStdoutWriter) WriteBatch(batch []drone.Drone) error {
	for _, d := range batch {
		if err := w.Write(d); err != nil {
			return err
		}
	}
	return nil
}

// WriteAlert prints an alert line.
func (w *ColorStdoutWriter) WriteAlert(a drone.Alert) error {
	_, err := alertColor.Fprintf(w.out, "ALERT [%s] %s: %s\n", a.ThreatLevel, a.AlertType, a.Description)
	if err != nil {
		return fmt.Errorf("write alert: %w", err)
	}
	return nil
}
