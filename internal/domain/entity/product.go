// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups products in the back-office catalog.
type Category struct {
	ID          uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Product is a catalog item managed through the admin surface.
type Product struct {
	ID          uuid.UUID
	CategoryID  uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Images      []ProductImage // Ordered by Position ascending.
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductImage is a reference to an uploaded image. The binary itself lives in
// external file storage; only the path and the display ordering are owned here.
type ProductImage struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Path      string
	Position  int
	CreatedAt time.Time
}
