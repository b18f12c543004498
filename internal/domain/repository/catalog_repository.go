// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"backoffice/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for catalog persistence.
var (
	// ErrCategoryNotFound is returned when a category does not exist.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrProductNotFound is returned when a product does not exist.
	ErrProductNotFound = errors.New("product not found")
)

// CategoryRepository defines the standard operations for category persistence.
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	List(ctx context.Context) ([]*entity.Category, error)
	Create(ctx context.Context, category *entity.Category) error
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductRepository defines the standard operations for product persistence,
// including the ordered image references a product carries.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	List(ctx context.Context, categoryID *uuid.UUID) ([]*entity.Product, error)
	Create(ctx context.Context, product *entity.Product) error
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error

	// AddImage appends an image reference at the end of the product's ordering.
	AddImage(ctx context.Context, image *entity.ProductImage) error

	// ReorderImages rewrites the Position of the product's images to match the
	// given ID ordering. The set of IDs must equal the product's current images.
	ReorderImages(ctx context.Context, productID uuid.UUID, imageIDs []uuid.UUID) error
}
