package sim

import (
	"encoding/json"
	"os"

	"borderops-sim/internal/drone"
)

// FileWriter writes drone records and alerts to JSONL files.
type FileWriter struct {
	droneFile *os.File
	alertFile *os.File
	droneEnc  *json.Encoder
	alertEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. alertPath may be empty to skip the
// alert log file.
func NewFileWriter(dronePath, alertPath string) (*FileWriter, error) {
	df, err := os.Create(dronePath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{droneFile: df, droneEnc: json.NewEncoder(df)}
	if alertPath != "" {
		af, err := os.Create(alertPath)
		if err != nil {
			df.Close()
			return nil, err
		}
		fw.alertFile = af
		fw.alertEnc = json.NewEncoder(af)
	}
	return fw, nil
}

// Write logs a single drone record.
func (f *FileWriter) Write(d drone.Drone) error {
	return f.droneEnc.Encode(d)
}

// WriteBatch logs multiple drone records.
func (f *FileWriter) WriteBatch(batch []drone.Drone) error {
	for _, d := range batch {
		if err := f.Write(d); err != nil {
			return err
		}
	}
	return nil
}

// WriteAlert logs a single alert, if enabled.
func (f *FileWriter) WriteAlert(a drone.Alert) error {
	if f.alertEnc == nil {
		return nil
	}
	return f.alertEnc.Encode(a)
}

// Close closes the underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.droneFile != nil {
		if e := f.droneFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.alertFile != nil {
		if e := f.alertFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
