package model

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalogue product. When Options is non-empty, stock is
// tracked per option and the top-level Stock field is not authoritative.
type Product struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Title       string      `json:"title,omitempty" db:"title"`
	Description string      `json:"description,omitempty" db:"description"`
	Brand       string      `json:"brand,omitempty" db:"brand"`
	Slug        string      `json:"slug" db:"slug"`
	Weight      float64     `json:"weight,omitempty" db:"weight"`
	Height      float64     `json:"height,omitempty" db:"height"`
	Width       float64     `json:"width,omitempty" db:"width"`
	MRP         float64     `json:"mrp,omitempty" db:"mrp"`
	Price       float64     `json:"price" db:"price"`
	CategoryID  *uuid.UUID  `json:"categoryId,omitempty" db:"category_id"`
	Stock       int         `json:"stock" db:"stock"`
	Featured    bool        `json:"featured" db:"featured"`
	Images      []string    `json:"images" db:"images"`
	Attributes  []Attribute `json:"attributes,omitempty" db:"attributes"`
	Options     []Option    `json:"options,omitempty" db:"options"`
	Views       int         `json:"views" db:"views"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

// Attribute is a named product characteristic (e.g. material, fit).
type Attribute struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Option is a size/colour variant embedded in a product, with its own price
// and stock.
type Option struct {
	Size  string  `json:"size"`
	Color string  `json:"color"`
	Price float64 `json:"price"`
	MRP   float64 `json:"mrp,omitempty"`
	Stock int     `json:"stock"`
}

// ProductOption mirrors an embedded product option as a standalone record.
// The stock adjuster keeps both representations in step.
type ProductOption struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	Size      string    `json:"size" db:"size"`
	Color     string    `json:"color" db:"color"`
	Price     float64   `json:"price" db:"price"`
	MRP       float64   `json:"mrp,omitempty" db:"mrp"`
	Stock     int       `json:"stock" db:"stock"`
}

// ProductImage holds the canonical image list for a product. It supersedes the
// legacy inline Product.Images field on order reads.
type ProductImage struct {
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	Img       []string  `json:"img" db:"img"`
}

// Category is a catalogue category, optionally nested under a parent.
type Category struct {
	ID       uuid.UUID  `json:"id" db:"id"`
	Name     string     `json:"name" db:"name"`
	Slug     string     `json:"slug" db:"slug"`
	ParentID *uuid.UUID `json:"parentId,omitempty" db:"parent_id"`
}

// User is the join target for order ownership; account management lives
// outside this service.
type User struct {
	ID    uuid.UUID `json:"id" db:"id"`
	Name  string    `json:"name" db:"name"`
	Email string    `json:"email" db:"email"`
	Role  string    `json:"role" db:"role"`
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	Category    string
	Subcategory string
	Featured    *bool
	Page        int
	Limit       int // 0 means no limit
}

// Pagination describes the page window of a product listing.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	HasMore     bool  `json:"hasMore"`
	Limit       int   `json:"limit"`
}
