package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/ritzau/pipe-analyzer/pkg/model"
)

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidatePipeRow checks the non-geometric fields of an input row.
// Length and diameter are left to the analyzer, which reports them as
// invalid pipe geometry.
func ValidatePipeRow(row *model.PipeRow) error {
	if row == nil {
		return errors.New("pipe row cannot be nil")
	}

	if err := validate.Struct(row); err != nil {
		if row.ID != "" {
			return fmt.Errorf("pipe %s: %w", row.ID, formatValidationError(err))
		}
		return formatValidationError(err)
	}
	return nil
}

// ValidatePipeRows validates every row and returns the first failure.
func ValidatePipeRows(rows []model.PipeRow) error {
	for i := range rows {
		if err := ValidatePipeRow(&rows[i]); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return nil
}

// ValidateSystemParams checks reservoir settings and constraints.
func ValidateSystemParams(p *model.SystemParams) error {
	if p == nil {
		return errors.New("system parameters cannot be nil")
	}

	if err := validate.Struct(p); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, param)
		case "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "nefield":
			return fmt.Errorf("%s: must differ from %s", field, param)
		case "gtefield":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s], got %q", field, param, e.Value())
		default:
			return fmt.Errorf("%s: failed validation '%s'", field, e.Tag())
		}
	}

	return err
}

// ValidateStruct runs the tag rules of any struct, such as the loaded
// configuration.
func ValidateStruct(s any) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}
