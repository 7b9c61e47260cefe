package product

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Attribute is a flat snapshot entry on a product, not a link to the
// category's AttributeDefinition.
type Attribute struct {
	Name  string         `json:"name"`
	Value AttributeValue `json:"value"`
	Unit  string         `json:"unit,omitempty"`
}

// AttributeValue holds the selected option(s) of an attribute. Checkbox
// entries may carry several values; radio and range carry one.
type AttributeValue []string

// Single wraps one value.
func Single(v string) AttributeValue { return AttributeValue{v} }

// First returns the first value or "".
func (v AttributeValue) First() string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// Float parses the single value of a range attribute.
func (v AttributeValue) Float() (float64, error) {
	if len(v) != 1 {
		return 0, fmt.Errorf("expected one numeric value, got %d", len(v))
	}
	return strconv.ParseFloat(strings.TrimSpace(v[0]), 64)
}

// Contains reports whether s is one of the values.
func (v AttributeValue) Contains(s string) bool {
	for _, x := range v {
		if x == s {
			return true
		}
	}
	return false
}

// MarshalJSON writes a single value as a scalar and several as an array.
func (v AttributeValue) MarshalJSON() ([]byte, error) {
	if len(v) == 1 {
		return json.Marshal(v[0])
	}
	return json.Marshal([]string(v))
}

// UnmarshalJSON accepts a string, a number, a bool, or an array of those.
func (v *AttributeValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := make(AttributeValue, 0, len(raw))
		for _, r := range raw {
			s, err := scalarString(r)
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		*v = out
		return nil
	}
	s, err := scalarString(data)
	if err != nil {
		return err
	}
	*v = AttributeValue{s}
	return nil
}

func scalarString(data json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		return n.String(), nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		return strconv.FormatBool(b), nil
	}
	return "", fmt.Errorf("attribute value %s: unsupported JSON type", string(data))
}

// ProductAttribute represents catalog_product_attribute: one row per selected
// value so the store can answer equality and set-membership queries.
type ProductAttribute struct {
	ValueID   uint   `gorm:"column:value_id;primaryKey;autoIncrement"`
	ProductID uint   `gorm:"column:product_id;not null;index"`
	Position  int    `gorm:"column:position;not null"`
	Name      string `gorm:"column:name;size:255;not null;index:idx_attr_name_value"`
	Value     string `gorm:"column:value;size:255;not null;index:idx_attr_name_value"`
	Unit      string `gorm:"column:unit;size:64"`
}

func (ProductAttribute) TableName() string {
	return "catalog_product_attribute"
}

// AttributeRows flattens attributes into rows for productID.
func AttributeRows(productID uint, attrs []Attribute) []ProductAttribute {
	var rows []ProductAttribute
	for pos, a := range attrs {
		if len(a.Value) == 0 {
			// keep the entry so presence survives a reload
			rows = append(rows, ProductAttribute{ProductID: productID, Position: pos, Name: a.Name, Unit: a.Unit})
			continue
		}
		for _, v := range a.Value {
			rows = append(rows, ProductAttribute{ProductID: productID, Position: pos, Name: a.Name, Value: v, Unit: a.Unit})
		}
	}
	return rows
}

// AttributesFromRows rebuilds attribute entries from rows ordered by
// position then value_id.
func AttributesFromRows(rows []ProductAttribute) []Attribute {
	var attrs []Attribute
	last := -1
	for _, r := range rows {
		if r.Position != last || len(attrs) == 0 {
			attrs = append(attrs, Attribute{Name: r.Name, Unit: r.Unit})
			last = r.Position
		}
		if r.Value != "" {
			cur := &attrs[len(attrs)-1]
			cur.Value = append(cur.Value, r.Value)
		}
	}
	return attrs
}
