package category

import (
	"regexp"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Category represents catalog_category: one node of the product taxonomy.
// ParentID is a lookup key, never an owning pointer.
type Category struct {
	EntityID    uint                                    `gorm:"column:entity_id;primaryKey;autoIncrement" json:"id"`
	Name        string                                  `gorm:"column:name;size:255;not null" json:"name" validate:"required,max=255"`
	Alias       string                                  `gorm:"column:alias;size:255;not null;uniqueIndex" json:"alias"`
	Description string                                  `gorm:"column:description;type:text" json:"description,omitempty"`
	ParentID    *uint                                   `gorm:"column:parent_id;index" json:"parent_id"`
	Level       int                                     `gorm:"column:level;not null" json:"level"`
	Attributes  datatypes.JSONSlice[AttributeDefinition] `gorm:"column:attributes" json:"attributes"`
	IsActive    bool                                    `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt   time.Time                               `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time                               `gorm:"column:updated_at" json:"updated_at"`
}

func (Category) TableName() string {
	return "catalog_category"
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// Definitions returns the category's own attribute definitions.
func (c *Category) Definitions() []AttributeDefinition {
	return []AttributeDefinition(c.Attributes)
}

var aliasSeparator = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeAlias lowercases and trims an alias. An empty alias is derived
// from name by collapsing every non alphanumeric run into "-".
func NormalizeAlias(alias, name string) string {
	alias = strings.ToLower(strings.TrimSpace(alias))
	if alias != "" {
		return alias
	}
	return aliasSeparator.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}
