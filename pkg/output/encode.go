// Package output renders analysis results for terminals and files.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/ritzau/pipe-analyzer/pkg/analysis"
	"github.com/ritzau/pipe-analyzer/pkg/model"
	"gopkg.in/yaml.v3"
)

// Supported output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatCSV   = "csv"
)

// Write renders res in the given format.
func Write(w io.Writer, format string, res *analysis.Result) error {
	switch format {
	case FormatTable, "":
		PrintReport(w, res)
		return nil
	case FormatJSON:
		return WriteJSON(w, res)
	case FormatYAML:
		return WriteYAML(w, res)
	case FormatCSV:
		return WriteCSV(w, res.Rows)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteYAML writes v as a YAML document.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

var csvHeader = []string{
	"Pipe_ID", "Start_Junction", "End_Junction", "Distance_m", "Elevation_m",
	"Total_Head_m", "Pressure_Head_m", "Velocity_m_s", "Reynolds",
	"Diameter_mm", "Flow_L_s", "Head_Loss_m", "Head_Loss_per_km",
}

// WriteCSV writes the result table with one row per pipe.
func WriteCSV(w io.Writer, rows []model.ResultRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.PipeID,
			r.StartJunction,
			r.EndJunction,
			formatFloat(r.DistanceM),
			formatFloat(r.ElevationM),
			formatFloat(r.TotalHeadM),
			formatFloat(r.PressureHeadM),
			formatFloat(r.Velocity),
			formatFloat(r.Reynolds),
			formatFloat(r.DiameterMM),
			formatFloat(r.FlowLPS),
			formatFloat(r.HeadLossM),
			formatFloat(r.HeadLossPerKm),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
