// Package hydraulics provides the elementary pipe-flow formulas consumed by
// the analyzer. All functions are pure and work in SI units.
package hydraulics

import (
	"fmt"
	"math"
	"strings"
)

// Formulas computes per-pipe physical properties. Implementations decide
// how the roughness coefficient is interpreted.
type Formulas interface {
	// HeadLoss returns the friction loss in meters of water column.
	HeadLoss(length, flow, roughness, diameter float64) float64
	// Velocity returns the mean flow velocity in m/s.
	Velocity(flow, diameter float64) float64
	// Reynolds returns the dimensionless Reynolds number.
	Reynolds(flow, diameter float64) float64
}

const (
	// DefaultViscosity is the kinematic viscosity of water at 20 C (m^2/s).
	DefaultViscosity = 1.004e-6

	FormulaHazenWilliams = "hazen-williams"
	FormulaDarcyWeisbach = "darcy-weisbach"
)

// ByName returns the formula set registered under name.
func ByName(name string, viscosity float64) (Formulas, error) {
	if viscosity <= 0 {
		viscosity = DefaultViscosity
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", FormulaHazenWilliams, "hw":
		return HazenWilliams{Viscosity: viscosity}, nil
	case FormulaDarcyWeisbach, "dw":
		return DarcyWeisbach{Viscosity: viscosity}, nil
	default:
		return nil, fmt.Errorf("unknown head loss formula %q (want %s or %s)", name, FormulaHazenWilliams, FormulaDarcyWeisbach)
	}
}

// Area returns the cross-section of a full circular pipe.
func Area(diameter float64) float64 {
	return math.Pi * diameter * diameter / 4
}

// Velocity is Q/A. Flow direction is not modeled, so the magnitude is used.
func Velocity(flow, diameter float64) float64 {
	a := Area(diameter)
	if a == 0 {
		return 0
	}
	return math.Abs(flow) / a
}

// Reynolds is V*D/nu.
func Reynolds(flow, diameter, viscosity float64) float64 {
	if viscosity <= 0 {
		viscosity = DefaultViscosity
	}
	return Velocity(flow, diameter) * diameter / viscosity
}
