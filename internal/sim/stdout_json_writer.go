package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"borderops-sim/internal/drone"
)

// JSONStdoutWriter prints drone records and alerts as JSON lines to STDOUT.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

// Write outputs a drone record in JSON format.
func (w *JSONStdoutWriter) Write(d drone.Drone) error {
	data, _ := json.Marshal(d)
	fmt.Fprintln(w.out, string(data))
	return nil
}

// WriteBatch outputs multiple drone records in JSON format.
func (w *JSONStdoutWriter) WriteBatch(batch []drone.Drone) error {
	for _, d := range batch {
		_ = w.Write(d)
	}
	return nil
}

// WriteAlert outputs an alert in JSON format.
func (w *JSONStdoutWriter) WriteAlert(a drone.Alert) error {
	data, _ := json.Marshal(a)
	fmt.Fprintln(w.out, string(data))
	return nil
}
