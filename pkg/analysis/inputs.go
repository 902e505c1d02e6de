package analysis

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/amberline/powerflow/pkg/fault"
	"github.com/amberline/powerflow/pkg/impedance"
	"github.com/amberline/powerflow/pkg/loadflow"
	"github.com/amberline/powerflow/pkg/network"
	"github.com/amberline/powerflow/pkg/protection"
)

// ErrInvalidInput marks a request that fails shape validation before any
// engine work starts.
var ErrInvalidInput = errors.New("invalid analysis input")

// SourceInput describes the upstream Thevenin equivalent.
type SourceInput struct {
	VoltageV      float64 `yaml:"voltage_v" validate:"required,gt=0"`
	ImpedanceOhms float64 `yaml:"impedance_ohms" validate:"gte=0"`
	XOverR        float64 `yaml:"x_over_r" validate:"gte=0"`
}

// ShortCircuitInput is the request for AnalyzeShortCircuit.
type ShortCircuitInput struct {
	SystemVoltageV float64              `yaml:"system_voltage_v" validate:"required,gt=0"`
	FaultType      fault.Type           `yaml:"fault_type" validate:"required,oneof=three_phase phase_to_phase single_phase_earth"`
	Earthing       fault.EarthingSystem `yaml:"earthing" validate:"omitempty,oneof=tn_s tn_c_s tt"`

	Source       SourceInput           `yaml:"source"`
	Conductors   []impedance.Conductor `yaml:"conductors" validate:"dive"`
	Transformers []network.Transformer `yaml:"transformers" validate:"dive"`
	Protection   protection.Settings   `yaml:"protection"`
}

// LoadFlowInput is the request for AnalyzeLoadFlow.
type LoadFlowInput struct {
	BaseMVA      float64 `yaml:"base_mva" validate:"gte=0"`
	BaseVoltageV float64 `yaml:"base_voltage_v" validate:"gte=0"`

	Buses    []network.Bus    `yaml:"buses" validate:"min=2,dive"`
	Branches []network.Branch `yaml:"branches" validate:"min=1,dive"`

	Criteria loadflow.Criteria `yaml:"criteria"`

	// SkipContingency turns off the N-1 scan for callers that only want
	// the base-case solution.
	SkipContingency bool `yaml:"skip_contingency"`
}

var validate = validator.New()

func validateInput(in any) error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, formatValidationError(err))
	}
	return nil
}

// formatValidationError converts validator errors into a single friendly
// message for the first failing field.
func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			return fmt.Sprintf("%s: field is required", e.Field())
		case "gt":
			return fmt.Sprintf("%s: must be greater than %s", e.Field(), e.Param())
		case "gte":
			return fmt.Sprintf("%s: must be at least %s", e.Field(), e.Param())
		case "min":
			return fmt.Sprintf("%s: needs at least %s entries", e.Field(), e.Param())
		case "oneof":
			return fmt.Sprintf("%s: must be one of [%s]", e.Field(), e.Param())
		default:
			return fmt.Sprintf("%s: validation failed (%s)", e.Field(), e.Tag())
		}
	}
	return err.Error()
}
