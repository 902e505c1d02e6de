package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validator collects every validation failure instead of stopping at the
// first one, so a bad config file reads as one complete report.
type Validator struct {
	name   string
	errors []error
}

// NewValidator creates a validator named after the config it checks.
func NewValidator(name string) *Validator {
	return &Validator{name: name}
}

// PositiveFloat requires value > 0.
func (v *Validator) PositiveFloat(field string, value float64) *Validator {
	if value <= 0 {
		v.errors = append(v.errors, fmt.Errorf("%s.%s: value %g must be positive", v.name, field, value))
	}
	return v
}

// PositiveInt requires value > 0.
func (v *Validator) PositiveInt(field string, value int) *Validator {
	if value <= 0 {
		v.errors = append(v.errors, fmt.Errorf("%s.%s: value %d must be positive", v.name, field, value))
	}
	return v
}

// MinFloat requires value >= min.
func (v *Validator) MinFloat(field string, value, min float64) *Validator {
	if value < min {
		v.errors = append(v.errors, fmt.Errorf("%s.%s: value %g is below minimum %g", v.name, field, value, min))
	}
	return v
}

// MinInt requires value >= min.
func (v *Validator) MinInt(field string, value, min int) *Validator {
	if value < min {
		v.errors = append(v.errors, fmt.Errorf("%s.%s: value %d is below minimum %d", v.name, field, value, min))
	}
	return v
}

// RangeFloat requires min <= value <= max.
func (v *Validator) RangeFloat(field string, value, min, max float64) *Validator {
	if value < min || value > max {
		v.errors = append(v.errors, fmt.Errorf("%s.%s: value %g is outside range [%g, %g]", v.name, field, value, min, max))
	}
	return v
}

// Err returns nil when everything passed, otherwise one error listing every
// failure.
func (v *Validator) Err() error {
	if len(v.errors) == 0 {
		return nil
	}
	msgs := make([]string, len(v.errors))
	for i, e := range v.errors {
		msgs[i] = e.Error()
	}
	return errors.New(strings.Join(msgs, "; "))
}
