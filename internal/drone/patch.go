package drone

import "borderops-sim/internal/geo"

// EffectPatch lists every drone field a countermeasure may touch. Pointer
// fields are applied only when set, so a patch expresses "change these, leave
// the rest". Countermeasure modules return patches; only the engine merges
// them into registry records.
type EffectPatch struct {
	SignalStrength     *float64
	IsJammed           *bool
	JammingLevel       *float64
	ControlCompromised *bool
	ThreatLevel        *ThreatLevel
	TakeoverStatus     *string
	ControlledAction   *string
	Captured           *bool
	CaptureMethod      *string
	CaptureProgress    *float64
	CaptureApproaching *bool
	Location           *geo.Point
	Speed              *float64
}

// IsZero reports whether the patch changes nothing.
func (p EffectPatch) IsZero() bool {
	return p == EffectPatch{}
}

// ApplyPatch merges a patch into a drone copy and returns it. Threat level
// only ever moves up; a patch cannot silently lower it.
func ApplyPatch(d Drone, p EffectPatch) Drone {
	if p.SignalStrength != nil {
		d.SignalStrength = clampFloat(*p.SignalStrength, 0, 100)
	}
	if p.IsJammed != nil {
		d.IsJammed = *p.IsJammed
	}
	if p.JammingLevel != nil {
		d.JammingLevel = *p.JammingLevel
	}
	if p.ControlCompromised != nil {
		d.ControlCompromised = *p.ControlCompromised
	}
	if p.ThreatLevel != nil && p.ThreatLevel.AtLeast(d.ThreatLevel) {
		d.ThreatLevel = *p.ThreatLevel
	}
	if p.TakeoverStatus != nil {
		d.TakeoverStatus = *p.TakeoverStatus
	}
	if p.ControlledAction != nil {
		d.ControlledAction = *p.ControlledAction
	}
	if p.Captured != nil {
		d.Captured = *p.Captured
	}
	if p.CaptureMethod != nil {
		d.CaptureMethod = *p.CaptureMethod
	}
	if p.CaptureProgress != nil {
		d.CaptureProgress = *p.CaptureProgress
	}
	if p.CaptureApproaching != nil {
		d.CaptureApproaching = *p.CaptureApproaching
	}
	if p.Location != nil {
		d.Location = *p.Location
	}
	if p.Speed != nil {
		if *p.Speed < 0 {
			d.Speed = 0
		} else {
			d.Speed = *p.Speed
		}
	}
	return d
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Float returns a pointer to v, for building patches.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v, for building patches.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v, for building patches.
func String(v string) *string { return &v }

// Threat returns a pointer to v, for building patches.
func Threat(v ThreatLevel) *ThreatLevel { return &v }
