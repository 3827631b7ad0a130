package drone

import (
	"testing"

	"borderops-sim/internal/geo"
)

func TestThreatLevelOrdering(t *testing.T) {
	if !ThreatHigh.AtLeast(ThreatMedium) {
		t.Error("high should be at least medium")
	}
	if ThreatLow.AtLeast(ThreatCritical) {
		t.Error("low should not be at least critical")
	}
	if !ThreatNone.AtLeast(ThreatNone) {
		t.Error("a level is at least itself")
	}
}

func TestThreatLevelEscalate(t *testing.T) {
	cases := map[ThreatLevel]ThreatLevel{
		ThreatNone:     ThreatLow,
		ThreatLow:      ThreatMedium,
		ThreatMedium:   ThreatHigh,
		ThreatHigh:     ThreatCritical,
		ThreatCritical: ThreatCritical,
	}
	for in, want := range cases {
		if got := in.Escalate(); got != want {
			t.Errorf("Escalate(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestCloneDetachesMetadata(t *testing.T) {
	d := Drone{ID: "d1", Metadata: map[string]string{"model": "X-100"}}
	cp := d.Clone()
	cp.Metadata["model"] = "changed"
	if d.Metadata["model"] != "X-100" {
		t.Error("clone should not share the metadata map")
	}
}

func TestApplyPatchOnlySetFields(t *testing.T) {
	d := Drone{
		ID:             "d1",
		SignalStrength: 80,
		Speed:          12,
		ThreatLevel:    ThreatLow,
	}
	out := ApplyPatch(d, EffectPatch{SignalStrength: Float(40)})

	if out.SignalStrength != 40 {
		t.Errorf("signal should be patched to 40, got %f", out.SignalStrength)
	}
	if out.Speed != 12 || out.ThreatLevel != ThreatLow {
		t.Errorf("unset fields must be untouched: %+v", out)
	}
}

func TestApplyPatchClampsSignal(t *testing.T) {
	d := Drone{SignalStrength: 10}
	out := ApplyPatch(d, EffectPatch{SignalStrength: Float(-5)})
	if out.SignalStrength != 0 {
		t.Errorf("signal should clamp at 0, got %f", out.SignalStrength)
	}
}

func TestApplyPatchNeverLowersThreat(t *testing.T) {
	d := Drone{ThreatLevel: ThreatHigh}
	out := ApplyPatch(d, EffectPatch{ThreatLevel: Threat(ThreatLow)})
	if out.ThreatLevel != ThreatHigh {
		t.Errorf("patch must not lower threat level, got %s", out.ThreatLevel)
	}

	out = ApplyPatch(d, EffectPatch{ThreatLevel: Threat(ThreatCritical)})
	if out.ThreatLevel != ThreatCritical {
		t.Errorf("patch should raise threat level, got %s", out.ThreatLevel)
	}
}

func TestApplyPatchLocationOverride(t *testing.T) {
	d := Drone{Location: geo.Point{Latitude: 16.7, Longitude: 98.9, Altitude: 120}}
	target := geo.Point{Latitude: 16.8, Longitude: 99.0, Altitude: 80}
	out := ApplyPatch(d, EffectPatch{Location: &target})
	if out.Location != target {
		t.Errorf("location override not applied: %+v", out.Location)
	}
}

func TestEffectPatchIsZero(t *testing.T) {
	if !(EffectPatch{}).IsZero() {
		t.Error("empty patch should be zero")
	}
	if (EffectPatch{IsJammed: Bool(true)}).IsZero() {
		t.Error("patch with a set field should not be zero")
	}
}
