package product

import (
	"time"

	"gorm.io/datatypes"
)

// Product represents catalog_product. Attributes and Images are stored in
// their own tables and assembled by the repository.
type Product struct {
	EntityID      uint                        `gorm:"column:entity_id;primaryKey;autoIncrement" json:"id"`
	Name          string                      `gorm:"column:name;size:255;not null;index" json:"name"`
	Description   string                      `gorm:"column:description;type:text" json:"description"`
	Price         float64                     `gorm:"column:price;not null;index" json:"price"`
	OriginalPrice *float64                    `gorm:"column:original_price" json:"original_price,omitempty"`
	CategoryID    uint                        `gorm:"column:category_id;not null;index" json:"category_id"`
	Stock         int                         `gorm:"column:stock;not null;index" json:"stock"`
	Tags          datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	AverageRating float64                     `gorm:"column:average_rating;not null;index" json:"average_rating"`
	TotalReviews  int                         `gorm:"column:total_reviews;not null" json:"total_reviews"`
	CreatedAt     time.Time                   `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt     time.Time                   `gorm:"column:updated_at" json:"updated_at"`

	Attributes []Attribute `gorm:"-" json:"attributes"`
	Images     []Image     `gorm:"-" json:"images"`
}

func (Product) TableName() string {
	return "catalog_product"
}

// Attribute returns the first attribute entry named name.
func (p *Product) Attribute(name string) (Attribute, bool) {
	for _, a := range p.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Image is one entry of a product's ordered image list.
type Image struct {
	URL   string `json:"url"`
	Order int    `json:"order"`
}

// ProductImage represents catalog_product_image.
type ProductImage struct {
	ValueID   uint   `gorm:"column:value_id;primaryKey;autoIncrement"`
	ProductID uint   `gorm:"column:product_id;not null;index"`
	URL       string `gorm:"column:url;size:1024;not null"`
	Order     int    `gorm:"column:image_order;not null"`
}

func (ProductImage) TableName() string {
	return "catalog_product_image"
}
