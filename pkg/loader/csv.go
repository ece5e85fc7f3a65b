// Package loader reads pipe network tables from CSV files.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ritzau/pipe-analyzer/pkg/logging"
	"github.com/ritzau/pipe-analyzer/pkg/model"
	"github.com/ritzau/pipe-analyzer/pkg/validation"
)

// Column names, matched case-insensitively against the header row.
const (
	ColPipeID       = "pipe_id"
	ColStartJunc    = "start_junc"
	ColEndJunc      = "end_junc"
	ColLength       = "length_m"
	ColDiameter     = "diameter_m"
	ColRoughness    = "hwc"
	ColFlow         = "flow_cms"
	ColEndElevation = "end_junc_elevation"
	ColBranchEnd    = "branch_end"
)

var requiredColumns = []string{
	ColPipeID, ColStartJunc, ColEndJunc, ColLength, ColDiameter,
	ColRoughness, ColFlow, ColEndElevation,
}

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// LoadFile reads and validates all pipe rows of a CSV file.
func LoadFile(path string) ([]model.PipeRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	rows, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logging.Debug("Loaded pipe table", "path", path, "rows", len(rows))
	return rows, nil
}

// Read parses CSV from r. The first record is the header; column order is
// free and unknown columns are ignored.
func Read(r io.Reader) ([]model.PipeRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var rows []model.PipeRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if blank(record) {
			continue
		}

		row, err := parseRecord(record, cols)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}

	if err := validation.ValidatePipeRows(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if i == 0 {
			key = strings.TrimPrefix(key, "\ufeff")
		}
		cols[key] = i
	}

	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseRecord(record []string, cols map[string]int) (model.PipeRow, error) {
	get := func(col string) string {
		i, ok := cols[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	row := model.PipeRow{
		ID:            get(ColPipeID),
		StartJunction: get(ColStartJunc),
		EndJunction:   get(ColEndJunc),
	}

	floats := []struct {
		col string
		dst *float64
	}{
		{ColLength, &row.LengthM},
		{ColDiameter, &row.DiameterM},
		{ColRoughness, &row.Roughness},
		{ColFlow, &row.FlowCMS},
		{ColEndElevation, &row.EndElevationM},
	}
	for _, f := range floats {
		v, err := strconv.ParseFloat(get(f.col), 64)
		if err != nil {
			return model.PipeRow{}, fmt.Errorf("pipe %q: %s: %w", row.ID, f.col, err)
		}
		*f.dst = v
	}

	flag, err := parseBranchEnd(get(ColBranchEnd))
	if err != nil {
		return model.PipeRow{}, fmt.Errorf("pipe %q: %s: %w", row.ID, ColBranchEnd, err)
	}
	row.BranchEnd = flag

	return row, nil
}

// parseBranchEnd returns nil for a blank cell so the topology derives the
// flag structurally.
func parseBranchEnd(s string) (*bool, error) {
	var v bool
	switch strings.ToLower(s) {
	case "":
		return nil, nil
	case "true", "t", "1", "yes", "y":
		v = true
	case "false", "f", "0", "no", "n":
		v = false
	default:
		return nil, fmt.Errorf("invalid boolean %q", s)
	}
	return &v, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
