// Package drone defines the data model shared by the simulation engine, the
// countermeasure modules, and the API layer.
package drone

import (
	"time"

	"borderops-sim/internal/geo"
)

// Type classifies a detected drone.
type Type string

const (
	TypeUnknown    Type = "unknown"
	TypeCommercial Type = "commercial"
	TypeMilitary   Type = "military"
	TypeDIY        Type = "diy"
)

// ThreatLevel is an ordered severity scale.
type ThreatLevel string

const (
	ThreatNone     ThreatLevel = "none"
	ThreatLow      ThreatLevel = "low"
	ThreatMedium   ThreatLevel = "medium"
	ThreatHigh     ThreatLevel = "high"
	ThreatCritical ThreatLevel = "critical"
)

var threatOrder = []ThreatLevel{ThreatNone, ThreatLow, ThreatMedium, ThreatHigh, ThreatCritical}

// Rank returns the position of the level on the severity scale, 0 for none.
// Unknown strings rank as none.
func (t ThreatLevel) Rank() int {
	for i, l := range threatOrder {
		if l == t {
			return i
		}
	}
	return 0
}

// AtLeast reports whether t is at or above other on the severity scale.
func (t ThreatLevel) AtLeast(other ThreatLevel) bool {
	return t.Rank() >= other.Rank()
}

// Escalate returns the next level up, or the same level if already critical.
func (t ThreatLevel) Escalate() ThreatLevel {
	i := t.Rank()
	if i < len(threatOrder)-1 {
		return threatOrder[i+1]
	}
	return t
}

// AlertType identifies what triggered an alert.
type AlertType string

const (
	AlertBorderViolation    AlertType = "border_violation"
	AlertRestrictedZone     AlertType = "restricted_zone"
	AlertSignalInterference AlertType = "signal_interference"
	AlertUnauthorizedFlight AlertType = "unauthorized_flight"
	AlertNewDetection       AlertType = "new_detection"
)

// Drone is one detected drone record. The simulation engine owns the
// registry of these; everything handed out of the engine is a copy.
type Drone struct {
	ID             string            `json:"id"`
	Timestamp      time.Time         `json:"timestamp"`
	Location       geo.Point         `json:"location"`
	Type           Type              `json:"type"`
	SignalStrength float64           `json:"signal_strength"`
	Speed          float64           `json:"speed"`
	Heading        float64           `json:"heading"`
	ThreatLevel    ThreatLevel       `json:"threat_level"`
	EstimatedSize  float64           `json:"estimated_size"`
	Confidence     float64           `json:"confidence"`
	Metadata       map[string]string `json:"metadata,omitempty"`

	// Countermeasure state, populated exclusively through EffectPatch.
	IsJammed           bool    `json:"is_jammed,omitempty"`
	JammingLevel       float64 `json:"jamming_level,omitempty"`
	ControlCompromised bool    `json:"control_compromised,omitempty"`
	TakeoverStatus     string  `json:"takeover_status,omitempty"`
	ControlledAction   string  `json:"controlled_action,omitempty"`
	Captured           bool    `json:"captured,omitempty"`
	CaptureMethod      string  `json:"capture_method,omitempty"`
	CaptureProgress    float64 `json:"countermeasure_progress,omitempty"`
	CaptureApproaching bool    `json:"countermeasure_approaching,omitempty"`
}

// Clone returns a deep copy, detaching the metadata map.
func (d Drone) Clone() Drone {
	cp := d
	if d.Metadata != nil {
		cp.Metadata = make(map[string]string, len(d.Metadata))
		for k, v := range d.Metadata {
			cp.Metadata[k] = v
		}
	}
	return cp
}

// Alert is one entry in the append-only alert log. Only IsAcknowledged ever
// changes after creation.
type Alert struct {
	ID             string      `json:"id"`
	Timestamp      time.Time   `json:"timestamp"`
	DroneID        string      `json:"drone_id"`
	AlertType      AlertType   `json:"alert_type"`
	Location       geo.Point   `json:"location"`
	Description    string      `json:"description"`
	ThreatLevel    ThreatLevel `json:"threat_level"`
	IsAcknowledged bool        `json:"is_acknowledged"`
}

// MissionType is the goal category of a mission.
type MissionType string

const (
	MissionPatrol         MissionType = "patrol"
	MissionReconnaissance MissionType = "reconnaissance"
	MissionInfiltration   MissionType = "infiltration"
)

// Behavior selects the movement pattern of a mission-active drone.
type Behavior string

const (
	BehaviorDirect   Behavior = "direct"
	BehaviorCircling Behavior = "circling"
	BehaviorHovering Behavior = "hovering"
	BehaviorEvasive  Behavior = "evasive"
	BehaviorRandom   Behavior = "random"
	BehaviorGrid     Behavior = "grid"
)

// Mission is a drone's goal-directed movement program. Waypoints are built
// lazily and only for the grid behavior.
type Mission struct {
	Type            MissionType   `json:"mission_type"`
	Target          geo.Point     `json:"target_location"`
	Behavior        Behavior      `json:"behavior"`
	Speed           float64       `json:"speed"`
	Duration        time.Duration `json:"duration"`
	StartTime       time.Time     `json:"start_time"`
	Waypoints       []geo.Point   `json:"waypoints,omitempty"`
	CurrentWaypoint int           `json:"current_waypoint_index"`
	Completed       bool          `json:"completed"`
}

// HotZone is a weighted circular sub-region of the border that biases drone
// spawn locations and mission targets. Radius is in degrees.
type HotZone struct {
	Center     geo.Point `json:"center"`
	Radius     float64   `json:"radius"`
	Weight     float64   `json:"weight"`
	Restricted bool      `json:"restricted"`
}
