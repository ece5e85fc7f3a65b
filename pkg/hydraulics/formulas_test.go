package hydraulics

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestVelocity(t *testing.T) {
	// 0.1 m3/s through a 0.3 m pipe
	v := Velocity(0.1, 0.3)
	want := 0.1 / (math.Pi * 0.09 / 4)
	if !almostEqual(v, want, 1e-12) {
		t.Errorf("Velocity = %v, want %v", v, want)
	}

	if got := Velocity(-0.1, 0.3); !almostEqual(got, want, 1e-12) {
		t.Errorf("Velocity of reversed flow = %v, want magnitude %v", got, want)
	}

	if got := Velocity(0.1, 0); got != 0 {
		t.Errorf("Velocity with zero diameter = %v, want 0", got)
	}
}

func TestReynolds(t *testing.T) {
	re := Reynolds(0.1, 0.3, DefaultViscosity)
	want := Velocity(0.1, 0.3) * 0.3 / DefaultViscosity
	if !almostEqual(re, want, 1e-6) {
		t.Errorf("Reynolds = %v, want %v", re, want)
	}

	if got := Reynolds(0.1, 0.3, 0); !almostEqual(got, want, 1e-6) {
		t.Errorf("Reynolds with unset viscosity = %v, want default %v", got, want)
	}
}

func TestHazenWilliamsHeadLoss(t *testing.T) {
	hw := HazenWilliams{}

	// 1000 m of 0.3 m pipe, C=130, 0.1 m3/s: about 6.42 m
	hf := hw.HeadLoss(1000, 0.1, 130, 0.3)
	if !almostEqual(hf, 6.4235, 1e-3) {
		t.Errorf("HeadLoss = %v, expected about 6.4235 m", hf)
	}

	// loss is linear in length
	double := hw.HeadLoss(2000, 0.1, 130, 0.3)
	if !almostEqual(double, 2*hf, 1e-9) {
		t.Errorf("HeadLoss(2L) = %v, want %v", double, 2*hf)
	}

	if got := hw.HeadLoss(1000, 0, 130, 0.3); got != 0 {
		t.Errorf("HeadLoss at zero flow = %v, want 0", got)
	}
}

func TestDarcyWeisbachHeadLoss(t *testing.T) {
	dw := DarcyWeisbach{}

	hf := dw.HeadLoss(1000, 0.1, 0.05, 0.3)
	if hf <= 0 {
		t.Fatalf("HeadLoss = %v, expected positive", hf)
	}

	// a rougher wall loses more
	rough := dw.HeadLoss(1000, 0.1, 1.0, 0.3)
	if rough <= hf {
		t.Errorf("rough pipe loss %v should exceed smooth pipe loss %v", rough, hf)
	}

	if got := dw.HeadLoss(1000, 0, 0.05, 0.3); got != 0 {
		t.Errorf("HeadLoss at zero flow = %v, want 0", got)
	}
}

func TestFrictionFactorLaminar(t *testing.T) {
	if f := FrictionFactor(1000, 0.00005, 0.1); !almostEqual(f, 0.064, 1e-12) {
		t.Errorf("laminar friction factor = %v, want 0.064", f)
	}
	if f := FrictionFactor(0, 0.00005, 0.1); f != 0 {
		t.Errorf("friction factor at Re=0 = %v, want 0", f)
	}
}

func TestByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", "hydraulics.HazenWilliams", false},
		{"hazen-williams", "hydraulics.HazenWilliams", false},
		{"Darcy-Weisbach", "hydraulics.DarcyWeisbach", false},
		{"manning", "", true},
	}

	for _, tt := range tests {
		f, err := ByName(tt.name, 0)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ByName(%q) expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("ByName(%q) unexpected error: %v", tt.name, err)
			continue
		}
		switch f.(type) {
		case HazenWilliams:
			if tt.want != "hydraulics.HazenWilliams" {
				t.Errorf("ByName(%q) = HazenWilliams, want %s", tt.name, tt.want)
			}
		case DarcyWeisbach:
			if tt.want != "hydraulics.DarcyWeisbach" {
				t.Errorf("ByName(%q) = DarcyWeisbach, want %s", tt.name, tt.want)
			}
		}
	}
}
