// Package analysis computes the steady-state hydraulic profile of a
// branched pipe network by propagating losses outward from the reservoir.
package analysis

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/ritzau/pipe-analyzer/pkg/hydraulics"
	"github.com/ritzau/pipe-analyzer/pkg/model"
	"github.com/ritzau/pipe-analyzer/pkg/network"
	"github.com/ritzau/pipe-analyzer/pkg/validation"
)

// minDimension is the smallest length or diameter (m) accepted as real geometry.
const minDimension = 1e-9

// Analyzer turns a frozen topology and system parameters into a result
// table. It holds no per-call state.
type Analyzer struct {
	formulas hydraulics.Formulas
}

// New creates an analyzer that uses the given formula set. A nil set falls
// back to Hazen-Williams.
func New(formulas hydraulics.Formulas) *Analyzer {
	if formulas == nil {
		formulas = hydraulics.HazenWilliams{Viscosity: hydraulics.DefaultViscosity}
	}
	return &Analyzer{formulas: formulas}
}

// Result is the complete output of one analysis.
type Result struct {
	Rows     []model.ResultRow          `json:"rows" yaml:"rows"`
	Summary  model.Summary              `json:"summary" yaml:"summary"`
	States   map[string]model.PipeState `json:"-" yaml:"-"`
	Warnings []network.Warning          `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Params   model.SystemParams         `json:"params" yaml:"params"`
}

// Row returns the result row of a pipe.
func (r *Result) Row(pipeID string) (model.ResultRow, bool) {
	for _, row := range r.Rows {
		if row.PipeID == pipeID {
			return row, true
		}
	}
	return model.ResultRow{}, false
}

// Analyze runs the four analysis steps. Any failure aborts the whole call;
// no partial table is ever returned.
func (a *Analyzer) Analyze(topo *network.Topology, params model.SystemParams) (*Result, error) {
	if err := validation.ValidateSystemParams(&params); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	if topo == nil || topo.Len() == 0 {
		return nil, ErrEmptyNetwork
	}

	pipes := topo.Pipes()

	states, err := a.pipeStates(pipes)
	if err != nil {
		return nil, err
	}

	rows, err := cumulativeRows(topo, pipes, states, params)
	if err != nil {
		return nil, err
	}

	// Stable: siblings at the same distance keep input order
	slices.SortStableFunc(rows, func(x, y model.ResultRow) int {
		return cmp.Compare(x.DistanceM, y.DistanceM)
	})

	summary, err := Summarize(rows, params)
	if err != nil {
		return nil, err
	}

	return &Result{
		Rows:     rows,
		Summary:  summary,
		States:   states,
		Warnings: topo.Warnings(),
		Params:   params,
	}, nil
}

// pipeStates computes the position-independent physics of every pipe.
func (a *Analyzer) pipeStates(pipes []model.Pipe) (map[string]model.PipeState, error) {
	states := make(map[string]model.PipeState, len(pipes))
	for _, p := range pipes {
		if err := checkGeometry(p); err != nil {
			return nil, err
		}

		headLoss := a.formulas.HeadLoss(p.LengthM, p.FlowCMS, p.Roughness, p.DiameterM)
		states[p.ID] = model.PipeState{
			HeadLoss:      headLoss,
			Velocity:      a.formulas.Velocity(p.FlowCMS, p.DiameterM),
			Reynolds:      a.formulas.Reynolds(p.FlowCMS, p.DiameterM),
			HeadLossPerKm: headLoss / (p.LengthM / 1000),
		}
	}
	return states, nil
}

func checkGeometry(p model.Pipe) error {
	if !validDimension(p.LengthM) {
		return &InvalidGeometryError{PipeID: p.ID, Field: "length", Value: p.LengthM}
	}
	if !validDimension(p.DiameterM) {
		return &InvalidGeometryError{PipeID: p.ID, Field: "diameter", Value: p.DiameterM}
	}
	return nil
}

func validDimension(v float64) bool {
	return v > minDimension && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// cumulativeRows walks each pipe's source path and accumulates length and
// head loss along it.
func cumulativeRows(topo *network.Topology, pipes []model.Pipe, states map[string]model.PipeState, params model.SystemParams) ([]model.ResultRow, error) {
	lookup := make(map[string]model.Pipe, len(pipes))
	for _, p := range pipes {
		lookup[p.ID] = p
	}

	rows := make([]model.ResultRow, 0, len(pipes))
	for _, p := range pipes {
		path, err := topo.PathTo(p.ID)
		if err != nil {
			return nil, fmt.Errorf("path to pipe %s: %w", p.ID, err)
		}

		totalHead := params.ReservoirTotalHead
		distance := 0.0
		for _, id := range path {
			totalHead -= states[id].HeadLoss
			distance += lookup[id].LengthM
		}

		st := states[p.ID]
		rows = append(rows, model.ResultRow{
			PipeID:        p.ID,
			StartJunction: p.StartJunction,
			EndJunction:   p.EndJunction,
			DistanceM:     distance,
			ElevationM:    p.EndElevationM,
			TotalHeadM:    totalHead,
			PressureHeadM: totalHead - p.EndElevationM,
			Velocity:      st.Velocity,
			Reynolds:      st.Reynolds,
			DiameterMM:    p.DiameterM * 1000,
			FlowLPS:       p.FlowCMS * 1000,
			HeadLossM:     st.HeadLoss,
			HeadLossPerKm: st.HeadLossPerKm,
		})
	}
	return rows, nil
}

// Summarize aggregates result rows. The critical node is taken from the
// first row with the minimum pressure head.
func Summarize(rows []model.ResultRow, params model.SystemParams) (model.Summary, error) {
	if len(rows) == 0 {
		return model.Summary{}, ErrEmptyNetwork
	}

	minHead := rows[0].TotalHeadM
	minPressure := rows[0].PressureHeadM
	maxVelocity := rows[0].Velocity
	critical := rows[0].EndJunction

	for _, r := range rows[1:] {
		minHead = min(minHead, r.TotalHeadM)
		maxVelocity = max(maxVelocity, r.Velocity)
		if r.PressureHeadM < minPressure {
			minPressure = r.PressureHeadM
			critical = r.EndJunction
		}
	}

	return model.Summary{
		TotalHeadLoss:      params.ReservoirTotalHead - minHead,
		MinPressureHead:    minPressure,
		MaxVelocity:        maxVelocity,
		PressureAdequate:   minPressure >= params.MinPressureHead,
		VelocityAcceptable: maxVelocity <= params.MaxVelocity,
		CriticalNode:       critical,
	}, nil
}
