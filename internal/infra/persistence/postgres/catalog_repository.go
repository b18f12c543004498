package postgres

import (
	"context"

	"backoffice/internal/domain/entity"
	domainerrors "backoffice/internal/domain/errors"
	"backoffice/internal/domain/repository"
	"backoffice/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// categoryRepository implements repository.CategoryRepository using GORM.
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository is the constructor for categoryRepository.
func NewCategoryRepository(db *gorm.DB) repository.CategoryRepository {
	return &categoryRepository{db: db}
}

func (repo *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	var catM model.CategoryModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&catM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCategoryNotFound
		}

		return nil, errors.Wrap(err, "failed to find category by id")
	}

	return toCategoryDomain(&catM), nil
}

func (repo *categoryRepository) List(ctx context.Context) ([]*entity.Category, error) {
	var catMs []model.CategoryModel
	if err := repo.db.WithContext(ctx).Order("name asc").Find(&catMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}

	categories := make([]*entity.Category, 0, len(catMs))
	for i := range catMs {
		categories = append(categories, toCategoryDomain(&catMs[i]))
	}

	return categories, nil
}

func (repo *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	catM := &model.CategoryModel{
		Name:        category.Name,
		Description: category.Description,
	}

	if err := repo.db.WithContext(ctx).Create(catM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrCategoryAlreadyExists.WrapMessage("category name already exists")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create category")
	}

	category.ID = catM.ID
	category.CreatedAt = catM.CreatedAt
	category.UpdatedAt = catM.UpdatedAt

	return nil
}

func (repo *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	result := repo.db.WithContext(ctx).Model(&model.CategoryModel{}).
		Where("id = ?", category.ID).
		Updates(map[string]any{
			"name":        category.Name,
			"description": category.Description,
		})
	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return domainerrors.ErrCategoryAlreadyExists.WrapMessage("category name already exists")
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update category")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCategoryNotFound
	}

	return nil
}

func (repo *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.CategoryModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete category")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCategoryNotFound
	}

	return nil
}

func toCategoryDomain(m *model.CategoryModel) *entity.Category {
	return &entity.Category{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// productRepository implements repository.ProductRepository using GORM.
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository is the constructor for productRepository.
func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func (repo *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var prodM model.ProductModel
	err := repo.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("id = ?", id).
		First(&prodM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProductNotFound
		}

		return nil, errors.Wrap(err, "failed to find product by id")
	}

	return toProductDomain(&prodM), nil
}

func (repo *productRepository) List(ctx context.Context, categoryID *uuid.UUID) ([]*entity.Product, error) {
	query := repo.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") })
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	var prodMs []model.ProductModel
	if err := query.Order("name asc").Find(&prodMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	products := make([]*entity.Product, 0, len(prodMs))
	for i := range prodMs {
		products = append(products, toProductDomain(&prodMs[i]))
	}

	return products, nil
}

func (repo *productRepository) Create(ctx context.Context, product *entity.Product) error {
	prodM := fromProductDomain(product)

	if err := repo.db.WithContext(ctx).Create(prodM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrCategoryNotFound.WrapMessage("invalid category reference")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required product information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create product")
	}

	product.ID = prodM.ID
	product.CreatedAt = prodM.CreatedAt
	product.UpdatedAt = prodM.UpdatedAt

	return nil
}

func (repo *productRepository) Update(ctx context.Context, product *entity.Product) error {
	result := repo.db.WithContext(ctx).Model(&model.ProductModel{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"category_id": product.CategoryID,
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
			"stock":       product.Stock,
		})
	if result.Error != nil {
		if isForeignKeyConstraintViolation(result.Error) {
			return domainerrors.ErrCategoryNotFound.WrapMessage("invalid category reference")
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update product")
	}
	if result.RowsAffected == 0 {
		return repository.ErrProductNotFound
	}

	return nil
}

func (repo *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ProductModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete product")
	}
	if result.RowsAffected == 0 {
		return repository.ErrProductNotFound
	}

	return nil
}

// AddImage appends an image reference after the product's current last position.
func (repo *productRepository) AddImage(ctx context.Context, image *entity.ProductImage) error {
	var maxPos int
	err := repo.db.WithContext(ctx).Model(&model.ProductImageModel{}).
		Where("product_id = ?", image.ProductID).
		Select("coalesce(max(position), -1)").
		Scan(&maxPos).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to read image ordering")
	}

	imgM := &model.ProductImageModel{
		ProductID: image.ProductID,
		Path:      image.Path,
		Position:  maxPos + 1,
	}
	if err := repo.db.WithContext(ctx).Create(imgM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrProductNotFound.WrapMessage("invalid product reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to add product image")
	}

	image.ID = imgM.ID
	image.Position = imgM.Position
	image.CreatedAt = imgM.CreatedAt

	return nil
}

// ReorderImages rewrites positions to match the given ID ordering. The ID set
// must equal the product's current images, otherwise the ordering is rejected.
func (repo *productRepository) ReorderImages(ctx context.Context, productID uuid.UUID, imageIDs []uuid.UUID) error {
	var current []model.ProductImageModel
	if err := repo.db.WithContext(ctx).Where("product_id = ?", productID).Find(&current).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to load product images")
	}

	if len(current) != len(imageIDs) {
		return domainerrors.ErrImageOrderInvalid
	}
	known := make(map[uuid.UUID]bool, len(current))
	for _, img := range current {
		known[img.ID] = true
	}
	for _, id := range imageIDs {
		if !known[id] {
			return domainerrors.ErrImageOrderInvalid
		}
		delete(known, id)
	}

	for position, id := range imageIDs {
		err := repo.db.WithContext(ctx).Model(&model.ProductImageModel{}).
			Where("id = ? AND product_id = ?", id, productID).
			Update("position", position).Error
		if err != nil {
			return domainerrors.NewDatabaseExecuteError(err, "failed to reorder product images")
		}
	}

	return nil
}

func toProductDomain(m *model.ProductModel) *entity.Product {
	images := make([]entity.ProductImage, 0, len(m.Images))
	for _, img := range m.Images {
		images = append(images, entity.ProductImage{
			ID:        img.ID,
			ProductID: img.ProductID,
			Path:      img.Path,
			Position:  img.Position,
			CreatedAt: img.CreatedAt,
		})
	}

	return &entity.Product{
		ID:          m.ID,
		CategoryID:  m.CategoryID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Stock:       m.Stock,
		Images:      images,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromProductDomain(p *entity.Product) *model.ProductModel {
	return &model.ProductModel{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
	}
}
