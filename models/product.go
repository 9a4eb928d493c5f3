package models

import "time"

// Marketplace categories, matching the storefront filter buttons.
const (
	CategorySaaS   = "saas"
	CategoryMobile = "mobile"
	CategoryWeb    = "web"
)

// IsProductCategory reports whether c is a known marketplace category.
func IsProductCategory(c string) bool {
	return c == CategorySaaS || c == CategoryMobile || c == CategoryWeb
}

// Product is a marketplace item that can be invoiced.
type Product struct {
	ID          string    `bson:"id" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Category    string    `bson:"category" json:"category"`
	Price       Money     `bson:"price" json:"price"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	DemoLink    string    `bson:"demo_link,omitempty" json:"demo_link,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// ProductInput is what an admin submits to add or edit a product.
type ProductInput struct {
	Title       string `json:"title" binding:"required"`
	Category    string `json:"category"`
	Price       string `json:"price" binding:"required"`
	Description string `json:"description"`
	DemoLink    string `json:"demo_link"`
}
