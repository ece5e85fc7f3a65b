package analysis

import (
	"github.com/ritzau/pipe-analyzer/pkg/model"
	"github.com/ritzau/pipe-analyzer/pkg/network"
)

// DiameterRange is the sweep [Min, Max] in steps of Step, all in meters.
type DiameterRange struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// DefaultDiameterRange is 0.10 m to 0.60 m in 0.05 m steps.
var DefaultDiameterRange = DiameterRange{Min: 0.1, Max: 0.6, Step: 0.05}

// SensitivityRow is one trial diameter for one pipe.
type SensitivityRow struct {
	PipeID    string        `json:"pipe_id"`
	DiameterM float64       `json:"diameter_m"`
	Summary   model.Summary `json:"summary"`
}

// DiameterSensitivity would re-run the analysis with each pipe in pipeIDs
// resized across rng. The sweep is not implemented and always fails with
// ErrNotImplemented.
func (a *Analyzer) DiameterSensitivity(topo *network.Topology, params model.SystemParams, pipeIDs []string, rng DiameterRange) ([]SensitivityRow, error) {
	return nil, ErrNotImplemented
}
