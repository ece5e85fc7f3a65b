package model

// PipeRow is one row of tabular network input, before the topology is built.
type PipeRow struct {
	ID            string  `json:"pipe_id" yaml:"pipe_id" validate:"required"`
	StartJunction string  `json:"start_junc" yaml:"start_junc" validate:"required"`
	EndJunction   string  `json:"end_junc" yaml:"end_junc" validate:"required,nefield=StartJunction"`
	LengthM       float64 `json:"length_m" yaml:"length_m"`
	DiameterM     float64 `json:"diameter_m" yaml:"diameter_m"`
	Roughness     float64 `json:"hwc" yaml:"hwc" validate:"gt=0"`
	FlowCMS       float64 `json:"flow_cms" yaml:"flow_cms" validate:"gte=0"`
	EndElevationM float64 `json:"end_junc_elevation" yaml:"end_junc_elevation"`
	BranchEnd     *bool   `json:"branch_end,omitempty" yaml:"branch_end,omitempty"` // nil when the column is absent or blank
}

// Pipe is an immutable network edge stored in the topology arena.
type Pipe struct {
	ID            string  `json:"id"`
	StartJunction string  `json:"start_junction"`
	EndJunction   string  `json:"end_junction"`
	LengthM       float64 `json:"length_m"`
	DiameterM     float64 `json:"diameter_m"`
	Roughness     float64 `json:"roughness"`
	FlowCMS       float64 `json:"flow_cms"`
	EndElevationM float64 `json:"end_elevation_m"`

	// Terminal is the structurally derived branch-end status.
	Terminal bool `json:"terminal"`
	// DeclaredTerminal is the branch-end flag as given by the input, if any.
	DeclaredTerminal *bool `json:"declared_terminal,omitempty"`
}

// PipeFromRow converts an input row into a pipe record. Terminal status is
// filled in by the topology builder.
func PipeFromRow(r PipeRow) Pipe {
	return Pipe{
		ID:               r.ID,
		StartJunction:    r.StartJunction,
		EndJunction:      r.EndJunction,
		LengthM:          r.LengthM,
		DiameterM:        r.DiameterM,
		Roughness:        r.Roughness,
		FlowCMS:          r.FlowCMS,
		EndElevationM:    r.EndElevationM,
		DeclaredTerminal: r.BranchEnd,
	}
}

// SystemParams are the reservoir settings and design constraints of one analysis run.
type SystemParams struct {
	ReservoirElevation float64 `json:"reservoir_elevation" yaml:"reservoir_elevation"`
	ReservoirTotalHead float64 `json:"reservoir_total_head" yaml:"reservoir_total_head" validate:"gtefield=ReservoirElevation"`
	MinPressureHead    float64 `json:"min_pressure_head" yaml:"min_pressure_head"`
	MaxVelocity        float64 `json:"max_velocity" yaml:"max_velocity" validate:"gt=0"`
}

const (
	DefaultReservoirElevation = 300.0
	DefaultReservoirTotalHead = 320.0
	DefaultMinPressureHead    = 25.0
	DefaultMaxVelocity        = 3.0
)

// DefaultSystemParams returns the parameters used when nothing is configured.
func DefaultSystemParams() SystemParams {
	return SystemParams{
		ReservoirElevation: DefaultReservoirElevation,
		ReservoirTotalHead: DefaultReservoirTotalHead,
		MinPressureHead:    DefaultMinPressureHead,
		MaxVelocity:        DefaultMaxVelocity,
	}
}
