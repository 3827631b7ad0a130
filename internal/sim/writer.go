package sim

import (
	"borderops-sim/internal/drone"
)

// DroneWriter is an interface to support different output sinks for drone
// records.
type DroneWriter interface {
	Write(drone.Drone) error
}

// AlertWriter handles generated alerts.
type AlertWriter interface {
	WriteAlert(drone.Alert) error
}

// Optional: writers can also support batch mode.
type batchDroneWriter interface {
	WriteBatch([]drone.Drone) error
}

// MultiWriter fans drone records and alerts out to multiple writers.
type MultiWriter struct {
	droneWriters []DroneWriter
	alertWriters []AlertWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(dws []DroneWriter, aws []AlertWriter) *MultiWriter {
	return &MultiWriter{droneWriters: dws, alertWriters: aws}
}

// Write sends a drone record to all writers.
func (mw *MultiWriter) Write(d drone.Drone) error {
	for _, w := range mw.droneWriters {
		if err := w.Write(d); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple drone records to all writers, using batch mode
// where supported.
func (mw *MultiWriter) WriteBatch(batch []drone.Drone) error {
	for _, w := range mw.droneWriters {
		if bw, ok := w.(batchDroneWriter); ok {
			if err := bw.WriteBatch(batch); err != nil {
				return err
			}
			continue
		}
		for _, d := range batch {
			if err := w.Write(d); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteAlert sends an alert to all alert writers.
func (mw *MultiWriter) WriteAlert(a drone.Alert) error {
	for _, w := range mw.alertWriters {
		if err := w.WriteAlert(a); err != nil {
			return err
		}
	}
	return nil
}
