package product

import (
	"math"
	"strconv"
	"strings"

	"storefront.GO/core/apperror"
	categoryEntity "storefront.GO/model/entity/category"
	productEntity "storefront.GO/model/entity/product"
)

// Validate checks p's attributes against the effective schema of its
// category. Only required attributes are checked. The first failure is
// returned as an *apperror.AttributeError.
func Validate(p *productEntity.Product, schema []categoryEntity.AttributeDefinition) error {
	for _, def := range schema {
		if !def.Required {
			continue
		}
		attr, ok := p.Attribute(def.Name)
		if !ok {
			return apperror.MissingAttribute(def.Name)
		}
		if err := validateValue(def, attr.Value); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(def categoryEntity.AttributeDefinition, value productEntity.AttributeValue) error {
	if len(value) == 0 {
		return apperror.InvalidAttributeValue(def.Name, "no value given")
	}
	switch def.Type {
	case categoryEntity.AttributeRange:
		v, err := value.Float()
		if err != nil {
			return apperror.InvalidAttributeValue(def.Name, "%v", err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return apperror.InvalidAttributeValue(def.Name, "%q is not a number", value[0])
		}
		if !def.InRange(v) {
			return apperror.InvalidAttributeValue(def.Name, "%v is outside %s", v, bounds(def))
		}
	case categoryEntity.AttributeRadio:
		if len(value) != 1 {
			return apperror.InvalidAttributeValue(def.Name, "expects exactly one value, got %d", len(value))
		}
		if _, ok := def.AllowedValues()[value[0]]; !ok {
			return apperror.InvalidAttributeValue(def.Name, "%q is not an allowed value", value[0])
		}
	case categoryEntity.AttributeCheckbox:
		allowed := def.AllowedValues()
		for _, v := range value {
			if _, ok := allowed[v]; !ok {
				return apperror.InvalidAttributeValue(def.Name, "%q is not an allowed value", v)
			}
		}
	default:
		return apperror.InvalidAttributeValue(def.Name, "unknown attribute type %q", def.Type)
	}
	return nil
}

func bounds(def categoryEntity.AttributeDefinition) string {
	var b strings.Builder
	b.WriteString("[")
	if def.Min != nil {
		b.WriteString(trimFloat(*def.Min))
	}
	b.WriteString(", ")
	if def.Max != nil {
		b.WriteString(trimFloat(*def.Max))
	}
	b.WriteString("]")
	return b.String()
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
