// Package profile turns an analysis result into per-branch hydraulic
// profiles: the hydraulic grade line, ground elevation and pressure head
// at each junction from the reservoir out to one branch terminus.
package profile

import (
	"fmt"

	"github.com/ritzau/pipe-analyzer/pkg/analysis"
	"github.com/ritzau/pipe-analyzer/pkg/network"
)

// Point is one junction on a branch profile.
type Point struct {
	PipeID        string  `json:"pipe_id,omitempty" yaml:"pipe_id,omitempty"` // empty for the source point
	Junction      string  `json:"junction" yaml:"junction"`
	DistanceM     float64 `json:"distance_m" yaml:"distance_m"`
	TotalHeadM    float64 `json:"total_head_m" yaml:"total_head_m"`
	ElevationM    float64 `json:"elevation_m" yaml:"elevation_m"`
	PressureHeadM float64 `json:"pressure_head_m" yaml:"pressure_head_m"`
	Velocity      float64 `json:"velocity_m_s" yaml:"velocity_m_s"`
	FlowLPS       float64 `json:"flow_l_s" yaml:"flow_l_s"`
}

// Profile is the ordered point list of one branch together with the
// minimum pressure threshold it is judged against.
type Profile struct {
	Terminal        string  `json:"terminal" yaml:"terminal"`
	Points          []Point `json:"points" yaml:"points"`
	MinPressureHead float64 `json:"min_pressure_head" yaml:"min_pressure_head"`
	Adequate        bool    `json:"adequate" yaml:"adequate"`
}

// Build returns one profile per terminal pipe in topology order. The first
// point of every profile is the reservoir itself.
func Build(topo *network.Topology, res *analysis.Result) ([]Profile, error) {
	if topo == nil || res == nil {
		return nil, analysis.ErrEmptyNetwork
	}

	terminals := topo.TerminalPipes()
	profiles := make([]Profile, 0, len(terminals))
	for _, term := range terminals {
		p, err := branch(topo, res, term)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// Branch returns the profile of a single terminal pipe.
func Branch(topo *network.Topology, res *analysis.Result, terminal string) (Profile, error) {
	if topo == nil || res == nil {
		return Profile{}, analysis.ErrEmptyNetwork
	}
	return branch(topo, res, terminal)
}

func branch(topo *network.Topology, res *analysis.Result, terminal string) (Profile, error) {
	path, err := topo.PathToTerminal(terminal)
	if err != nil {
		return Profile{}, err
	}

	params := res.Params
	points := make([]Point, 0, len(path)+1)
	points = append(points, Point{
		Junction:      topo.Source(),
		TotalHeadM:    params.ReservoirTotalHead,
		ElevationM:    params.ReservoirElevation,
		PressureHeadM: params.ReservoirTotalHead - params.ReservoirElevation,
	})

	adequate := true
	for _, id := range path {
		row, ok := res.Row(id)
		if !ok {
			return Profile{}, fmt.Errorf("pipe %s has no result row", id)
		}
		points = append(points, Point{
			PipeID:        row.PipeID,
			Junction:      row.EndJunction,
			DistanceM:     row.DistanceM,
			TotalHeadM:    row.TotalHeadM,
			ElevationM:    row.ElevationM,
			PressureHeadM: row.PressureHeadM,
			Velocity:      row.Velocity,
			FlowLPS:       row.FlowLPS,
		})
		if row.PressureHeadM < params.MinPressureHead {
			adequate = false
		}
	}

	return Profile{
		Terminal:        terminal,
		Points:          points,
		MinPressureHead: params.MinPressureHead,
		Adequate:        adequate,
	}, nil
}
