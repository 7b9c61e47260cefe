package category

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// AttributeType is the kind of a category attribute.
type AttributeType string

const (
	AttributeCheckbox AttributeType = "checkbox"
	AttributeRadio    AttributeType = "radio"
	AttributeRange    AttributeType = "range"
)

// AttributeOption is one selectable label/value pair of a checkbox or radio attribute.
type AttributeOption struct {
	Label string `json:"label"`
	Value string `json:"value" validate:"required"`
}

// AttributeDefinition is one typed attribute attached to a category.
// Names are not unique across a whole inherited schema.
type AttributeDefinition struct {
	Name     string            `json:"name" validate:"required,max=255"`
	Type     AttributeType     `json:"type" validate:"required,oneof=checkbox radio range"`
	Required bool              `json:"required"`
	Values   []AttributeOption `json:"values,omitempty" validate:"dive"`
	Min      *float64          `json:"min,omitempty"`
	Max      *float64          `json:"max,omitempty"`
	Unit     string            `json:"unit,omitempty"`
}

var validate = validator.New()

// Validate checks tags plus the type-specific payload.
func (d AttributeDefinition) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("attribute %q: %w", d.Name, err)
	}
	switch d.Type {
	case AttributeCheckbox, AttributeRadio:
		if len(d.Values) == 0 {
			return fmt.Errorf("attribute %q: %s attribute needs at least one value", d.Name, d.Type)
		}
	case AttributeRange:
		if d.Min != nil && d.Max != nil && *d.Min > *d.Max {
			return fmt.Errorf("attribute %q: min %v exceeds max %v", d.Name, *d.Min, *d.Max)
		}
	}
	return nil
}

// AllowedValues returns the set of option values.
func (d AttributeDefinition) AllowedValues() map[string]struct{} {
	set := make(map[string]struct{}, len(d.Values))
	for _, v := range d.Values {
		set[v.Value] = struct{}{}
	}
	return set
}

// InRange reports whether v lies within [Min, Max]; a nil bound is open.
// NaN and infinities are never in range.
func (d AttributeDefinition) InRange(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	if d.Min != nil && v < *d.Min {
		return false
	}
	if d.Max != nil && v > *d.Max {
		return false
	}
	return true
}
