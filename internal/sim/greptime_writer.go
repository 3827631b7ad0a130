package sim

import (
	"context"
	"log"

	"borderops-sim/internal/drone"

	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	ingesterContext "github.com/GreptimeTeam/greptimedb-ingester-go/context"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
)

// GreptimeDBWriter exports detection history to GreptimeDB via the ingester
// client. The in-memory registry stays the source of truth; this sink is
// best-effort analytics export only.
type GreptimeDBWriter struct {
	client greptime.Client
	db     string
	table  string
}

// NewGreptimeDBWriter creates a new GreptimeDB writer and auto-creates the
// table if needed.
func NewGreptimeDBWriter(endpoint, database string) (*GreptimeDBWriter, error) {
	ctx := ingesterContext.NewContext(context.Background())
	client, err := greptime.NewClient(ctx, &greptime.Config{
		Endpoint: endpoint,
	})
	if err != nil {
		return nil, err
	}

	// Auto-create table schema
	ddl := `
CREATE TABLE IF NOT EXISTS drone_detections (
  drone_id STRING TAG,
  drone_type STRING TAG,
  lat DOUBLE,
  lon DOUBLE,
  alt DOUBLE,
  speed DOUBLE,
  heading DOUBLE,
  signal_strength DOUBLE,
  threat_level STRING,
  is_jammed BOOLEAN,
  captured BOOLEAN,
  ts TIMESTAMP TIME INDEX
) WITH (ttl='7d')
`
	if _, err := client.SQL(ctx, ddl); err != nil {
		return nil, err
	}

	return &GreptimeDBWriter{
		client: client,
		db:     database,
		table:  "drone_detections",
	}, nil
}

// Write inserts a single drone record.
func (w *GreptimeDBWriter) Write(d drone.Drone) error {
	return w.WriteBatch([]drone.Drone{d})
}

// WriteBatch inserts multiple drone records.
func (w *GreptimeDBWriter) WriteBatch(batch []drone.Drone) error {
	if len(batch) == 0 {
		return nil
	}

	ctx := ingesterContext.NewContext(context.Background())

	tbl := table.New(w.table)
	tbl.AddTagColumn("drone_id", types.StringType, 0)
	tbl.AddTagColumn("drone_type", types.StringType, 0)
	tbl.AddFieldColumn("lat", types.Float64Type)
	tbl.AddFieldColumn("lon", types.Float64Type)
	tbl.AddFieldColumn("alt", types.Float64Type)
	tbl.AddFieldColumn("speed", types.Float64Type)
	tbl.AddFieldColumn("heading", types.Float64Type)
	tbl.AddFieldColumn("signal_strength", types.Float64Type)
	tbl.AddFieldColumn("threat_level", types.StringType)
	tbl.AddFieldColumn("is_jammed", types.BooleanType)
	tbl.AddFieldColumn("captured", types.BooleanType)
	tbl.SetTimeIndex("ts", types.TimestampType)

	for _, d := range batch {
		tbl.AppendTagValue("drone_id", d.ID)
		tbl.AppendTagValue("drone_type", string(d.Type))
		tbl.AppendFieldValue("lat", d.Location.Latitude)
		tbl.AppendFieldValue("lon", d.Location.Longitude)
		tbl.AppendFieldValue("alt", d.Location.Altitude)
		tbl.AppendFieldValue("speed", d.Speed)
		tbl.AppendFieldValue("heading", d.Heading)
		tbl.AppendFieldValue("signal_strength", d.SignalStrength)
		tbl.AppendFieldValue("threat_level", string(d.ThreatLevel))
		tbl.AppendFieldValue("is_jammed", d.IsJammed)
		tbl.AppendFieldValue("captured", d.Captured)
		tbl.AppendTimeIndex(d.Timestamp)
	}

	if err := w.client.Write(ctx, w.db, []*table.Table{tbl}); err != nil {
		log.Printf("[GreptimeDBWriter] Write failed: %v", err)
		return err
	}
	return nil
}
