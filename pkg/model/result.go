package model

// PipeState holds the per-pipe physical properties computed by the analyzer.
type PipeState struct {
	HeadLoss      float64 `json:"head_loss_m" yaml:"head_loss_m"`
	Velocity      float64 `json:"velocity_m_s" yaml:"velocity_m_s"`
	Reynolds      float64 `json:"reynolds" yaml:"reynolds"`
	HeadLossPerKm float64 `json:"head_loss_per_km" yaml:"head_loss_per_km"`
}

// ResultRow is the hydraulic state at the downstream end of one pipe.
type ResultRow struct {
	PipeID        string  `json:"pipe_id" yaml:"pipe_id"`
	StartJunction string  `json:"start_junction" yaml:"start_junction"`
	EndJunction   string  `json:"end_junction" yaml:"end_junction"`
	DistanceM     float64 `json:"distance_m" yaml:"distance_m"`
	ElevationM    float64 `json:"elevation_m" yaml:"elevation_m"`
	TotalHeadM    float64 `json:"total_head_m" yaml:"total_head_m"`
	PressureHeadM float64 `json:"pressure_head_m" yaml:"pressure_head_m"`
	Velocity      float64 `json:"velocity_m_s" yaml:"velocity_m_s"`
	Reynolds      float64 `json:"reynolds" yaml:"reynolds"`
	DiameterMM    float64 `json:"diameter_mm" yaml:"diameter_mm"`
	FlowLPS       float64 `json:"flow_l_s" yaml:"flow_l_s"`
	HeadLossM     float64 `json:"head_loss_m" yaml:"head_loss_m"`
	HeadLossPerKm float64 `json:"head_loss_per_km" yaml:"head_loss_per_km"`
}

// Summary aggregates the result rows of one analysis.
type Summary struct {
	TotalHeadLoss      float64 `json:"total_head_loss" yaml:"total_head_loss"`
	MinPressureHead    float64 `json:"min_pressure_head" yaml:"min_pressure_head"`
	MaxVelocity        float64 `json:"max_velocity" yaml:"max_velocity"`
	PressureAdequate   bool    `json:"pressure_adequate" yaml:"pressure_adequate"`
	VelocityAcceptable bool    `json:"velocity_acceptable" yaml:"velocity_acceptable"`
	CriticalNode       string  `json:"critical_node" yaml:"critical_node"` // end junction with the lowest pressure head
}

// ConstraintsMet reports whether both design constraints hold.
func (s Summary) ConstraintsMet() bool {
	return s.PressureAdequate && s.VelocityAcceptable
}
