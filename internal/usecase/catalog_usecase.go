package usecase

import (
	"context"

	"backoffice/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Input DTOs ---

// CreateCategoryInput defines the data required to create a product category.
type CreateCategoryInput struct {
	Name        string
	Description string
}

// UpdateCategoryInput defines the data required to update a product category.
type UpdateCategoryInput struct {
	ID          uuid.UUID
	Name        string
	Description string
}

// CreateProductInput defines the data required to create a product.
type CreateProductInput struct {
	CategoryID  uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
}

// UpdateProductInput defines the data required to update a product.
type UpdateProductInput struct {
	ID          uuid.UUID
	CategoryID  uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
}

// AddProductImageInput defines the data required to attach an image reference.
type AddProductImageInput struct {
	ProductID uuid.UUID
	Path      string
}

// ReorderImagesInput defines the full new ordering of a product's images.
type ReorderImagesInput struct {
	ProductID uuid.UUID
	ImageIDs  []uuid.UUID
}

// CatalogUsecase defines the interface for catalog management operations.
// All of these are reachable only behind the administrator guard.
type CatalogUsecase interface {
	ListCategories(ctx context.Context) ([]*entity.Category, error)
	CreateCategory(ctx context.Context, input *CreateCategoryInput) (*entity.Category, error)
	UpdateCategory(ctx context.Context, input *UpdateCategoryInput) (*entity.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListProducts(ctx context.Context, categoryID *uuid.UUID) ([]*entity.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error)
	UpdateProduct(ctx context.Context, input *UpdateProductInput) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	AddProductImage(ctx context.Context, input *AddProductImageInput) (*entity.ProductImage, error)
	ReorderProductImages(ctx context.Context, input *ReorderImagesInput) error
}
