package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPipeGeometry matches every *InvalidGeometryError.
	ErrInvalidPipeGeometry = errors.New("invalid pipe geometry")
	// ErrEmptyNetwork is returned when there are no pipes to aggregate over.
	ErrEmptyNetwork = errors.New("network has no pipes")
	// ErrInvalidParams wraps system parameter validation failures.
	ErrInvalidParams = errors.New("invalid system parameters")
	// ErrNotImplemented marks capabilities that exist only as a contract.
	ErrNotImplemented = errors.New("not implemented")
)

// InvalidGeometryError names the pipe and dimension that cannot be analyzed.
type InvalidGeometryError struct {
	PipeID string
	Field  string // "length" or "diameter"
	Value  float64
}

func (e *InvalidGeometryError) Error() string {
	return fmt.Sprintf("pipe %s: %s must be positive, got %g", e.PipeID, e.Field, e.Value)
}

func (e *InvalidGeometryError) Is(target error) bool {
	return target == ErrInvalidPipeGeometry
}
