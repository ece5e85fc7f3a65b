package hydraulics

import "math"

// HazenWilliams uses the SI Hazen-Williams equation. Roughness is the C
// coefficient (around 100 for old cast iron, 140-150 for PVC).
type HazenWilliams struct {
	Viscosity float64
}

const (
	hwConstant     = 10.67
	hwFlowExponent = 1.852
	hwDiamExponent = 4.8704
)

func (h HazenWilliams) HeadLoss(length, flow, roughness, diameter float64) float64 {
	if flow == 0 || roughness <= 0 || diameter <= 0 {
		return 0
	}
	q := math.Abs(flow)
	return hwConstant * length * math.Pow(q, hwFlowExponent) /
		(math.Pow(roughness, hwFlowExponent) * math.Pow(diameter, hwDiamExponent))
}

func (h HazenWilliams) Velocity(flow, diameter float64) float64 {
	return Velocity(flow, diameter)
}

func (h HazenWilliams) Reynolds(flow, diameter float64) float64 {
	return Reynolds(flow, diameter, h.Viscosity)
}
