package hydraulics

import "math"

// Gravity is standard gravitational acceleration (m/s^2).
const Gravity = 9.80665

const laminarLimit = 2000.0

// DarcyWeisbach uses the Darcy-Weisbach equation with the Swamee-Jain
// friction factor. Roughness is the absolute wall roughness in millimeters.
type DarcyWeisbach struct {
	Viscosity float64
}

func (d DarcyWeisbach) HeadLoss(length, flow, roughness, diameter float64) float64 {
	if flow == 0 || diameter <= 0 {
		return 0
	}
	v := d.Velocity(flow, diameter)
	f := FrictionFactor(d.Reynolds(flow, diameter), roughness/1000, diameter)
	return f * (length / diameter) * v * v / (2 * Gravity)
}

func (d DarcyWeisbach) Velocity(flow, diameter float64) float64 {
	return Velocity(flow, diameter)
}

func (d DarcyWeisbach) Reynolds(flow, diameter float64) float64 {
	return Reynolds(flow, diameter, d.Viscosity)
}

// FrictionFactor returns the Darcy friction factor for the given Reynolds
// number, absolute roughness (m) and diameter (m).
func FrictionFactor(re, roughness, diameter float64) float64 {
	if re <= 0 {
		return 0
	}
	if re < laminarLimit {
		return 64 / re
	}
	x := roughness/(3.7*diameter) + 5.74/math.Pow(re, 0.9)
	l := math.Log10(x)
	return 0.25 / (l * l)
}
