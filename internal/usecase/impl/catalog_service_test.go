package impl

import (
	"context"
	"sync"
	"testing"

	"backoffice/internal/domain/entity"
	"backoffice/internal/domain/repository"
	"backoffice/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories map[uuid.UUID]*entity.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[uuid.UUID]*entity.Category)}
}

func (r *fakeCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	category, ok := r.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}

	return category, nil
}

func (r *fakeCategoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entity.Category, 0, len(r.categories))
	for _, category := range r.categories {
		out = append(out, category)
	}

	return out, nil
}

func (r *fakeCategoryRepo) Create(_ context.Context, category *entity.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	r.categories[category.ID] = category

	return nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, category *entity.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[category.ID]; !ok {
		return repository.ErrCategoryNotFound
	}
	r.categories[category.ID] = category

	return nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(r.categories, id)

	return nil
}

type fakeProductRepo struct {
	mu         sync.Mutex
	products   map[uuid.UUID]*entity.Product
	reorderErr error
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*entity.Product)}
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}

	return product, nil
}

func (r *fakeProductRepo) List(_ context.Context, categoryID *uuid.UUID) ([]*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entity.Product, 0, len(r.products))
	for _, product := range r.products {
		if categoryID != nil && product.CategoryID != *categoryID {
			continue
		}
		out = append(out, product)
	}

	return out, nil
}

func (r *fakeProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.products[product.ID] = product

	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return repository.ErrProductNotFound
	}
	product.Images = existing.Images
	r.products[product.ID] = product

	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(r.products, id)

	return nil
}

func (r *fakeProductRepo) AddImage(_ context.Context, image *entity.ProductImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[image.ProductID]
	if !ok {
		return repository.ErrProductNotFound
	}

	if image.ID == uuid.Nil {
		image.ID = uuid.New()
	}
	image.Position = len(product.Images)
	product.Images = append(product.Images, *image)

	return nil
}

func (r *fakeProductRepo) ReorderImages(_ context.Context, productID uuid.UUID, imageIDs []uuid.UUID) error {
	if r.reorderErr != nil {
		return r.reorderErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[productID]
	if !ok {
		return repository.ErrProductNotFound
	}

	byID := make(map[uuid.UUID]entity.ProductImage, len(product.Images))
	for _, image := range product.Images {
		byID[image.ID] = image
	}

	reordered := make([]entity.ProductImage, 0, len(imageIDs))
	for position, id := range imageIDs {
		image := byID[id]
		image.Position = position
		reordered = append(reordered, image)
	}
	product.Images = reordered

	return nil
}

type catalogRepoFactory struct {
	categoryRepo *fakeCategoryRepo
	productRepo  *fakeProductRepo
}

func (f *catalogRepoFactory) UserRepo() repository.UserRepository             { return nil }
func (f *catalogRepoFactory) CredentialRepo() repository.CredentialRepository { return nil }
func (f *catalogRepoFactory) CategoryRepo() repository.CategoryRepository    { return f.categoryRepo }
func (f *catalogRepoFactory) ProductRepo() repository.ProductRepository      { return f.productRepo }

type catalogTxManager struct {
	factory  *catalogRepoFactory
	executed int
}

func (m *catalogTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	m.executed++

	return fn(m.factory)
}

type catalogFixture struct {
	svc          *catalogService
	categoryRepo *fakeCategoryRepo
	productRepo  *fakeProductRepo
	txManager    *catalogTxManager
}

func newCatalogFixture() *catalogFixture {
	categoryRepo := newFakeCategoryRepo()
	productRepo := newFakeProductRepo()
	txManager := &catalogTxManager{factory: &catalogRepoFactory{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}}

	return &catalogFixture{
		svc: &catalogService{
			txManager:    txManager,
			categoryRepo: categoryRepo,
			productRepo:  productRepo,
			logger:       newDiscardLogger(),
		},
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		txManager:    txManager,
	}
}

func (f *catalogFixture) seedProduct(t *testing.T) *entity.Product {
	t.Helper()

	category := &entity.Category{Name: "鞋類"}
	require.NoError(t, f.categoryRepo.Create(context.Background(), category))

	product := &entity.Product{
		CategoryID: category.ID,
		Name:       "登山鞋",
		Price:      decimal.RequireFromString("1990.00"),
		Stock:      10,
	}
	require.NoError(t, f.productRepo.Create(context.Background(), product))

	return product
}

func TestCatalogService_CategoryLifecycle(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	created, err := f.svc.CreateCategory(ctx, &usecase.CreateCategoryInput{
		Name:        "露營",
		Description: "帳篷與睡袋",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	updated, err := f.svc.UpdateCategory(ctx, &usecase.UpdateCategoryInput{
		ID:          created.ID,
		Name:        "露營裝備",
		Description: created.Description,
	})
	require.NoError(t, err)
	assert.Equal(t, "露營裝備", updated.Name)

	categories, err := f.svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)

	require.NoError(t, f.svc.DeleteCategory(ctx, created.ID))

	categories, err = f.svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestCatalogService_UpdateMissingCategory(t *testing.T) {
	f := newCatalogFixture()

	_, err := f.svc.UpdateCategory(context.Background(), &usecase.UpdateCategoryInput{
		ID:   uuid.New(),
		Name: "不存在",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrCategoryNotFound)
}

func TestCatalogService_ProductLifecycle(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	category := &entity.Category{Name: "鞋類"}
	require.NoError(t, f.categoryRepo.Create(ctx, category))

	created, err := f.svc.CreateProduct(ctx, &usecase.CreateProductInput{
		CategoryID:  category.ID,
		Name:        "越野跑鞋",
		Description: "輕量透氣",
		Price:       decimal.RequireFromString("2490.00"),
		Stock:       25,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	updated, err := f.svc.UpdateProduct(ctx, &usecase.UpdateProductInput{
		ID:         created.ID,
		CategoryID: category.ID,
		Name:       created.Name,
		Price:      decimal.RequireFromString("1990.00"),
		Stock:      20,
	})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("1990.00")))
	assert.Equal(t, 20, updated.Stock)

	fetched, err := f.svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)

	require.NoError(t, f.svc.DeleteProduct(ctx, created.ID))

	_, err = f.svc.GetProduct(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestCatalogService_ListProductsFiltersByCategory(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	shoes := &entity.Category{Name: "鞋類"}
	camping := &entity.Category{Name: "露營"}
	require.NoError(t, f.categoryRepo.Create(ctx, shoes))
	require.NoError(t, f.categoryRepo.Create(ctx, camping))

	for _, categoryID := range []uuid.UUID{shoes.ID, shoes.ID, camping.ID} {
		_, err := f.svc.CreateProduct(ctx, &usecase.CreateProductInput{
			CategoryID: categoryID,
			Name:       "商品",
			Price:      decimal.RequireFromString("100"),
		})
		require.NoError(t, err)
	}

	all, err := f.svc.ListProducts(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	filtered, err := f.svc.ListProducts(ctx, &shoes.ID)
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
}

func TestCatalogService_AddImageAppendsInOrder(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	product := f.seedProduct(t)

	first, err := f.svc.AddProductImage(ctx, &usecase.AddProductImageInput{
		ProductID: product.ID,
		Path:      "uploads/a.jpg",
	})
	require.NoError(t, err)
	second, err := f.svc.AddProductImage(ctx, &usecase.AddProductImageInput{
		ProductID: product.ID,
		Path:      "uploads/b.jpg",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, first.Position)
	assert.Equal(t, 1, second.Position)
	assert.Equal(t, 2, f.txManager.executed, "image appends must run transactionally")
}

func TestCatalogService_ReorderImagesRewritesPositions(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	product := f.seedProduct(t)

	first, err := f.svc.AddProductImage(ctx, &usecase.AddProductImageInput{ProductID: product.ID, Path: "uploads/a.jpg"})
	require.NoError(t, err)
	second, err := f.svc.AddProductImage(ctx, &usecase.AddProductImageInput{ProductID: product.ID, Path: "uploads/b.jpg"})
	require.NoError(t, err)

	err = f.svc.ReorderProductImages(ctx, &usecase.ReorderImagesInput{
		ProductID: product.ID,
		ImageIDs:  []uuid.UUID{second.ID, first.ID},
	})
	require.NoError(t, err)

	fetched, err := f.svc.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Images, 2)
	assert.Equal(t, second.ID, fetched.Images[0].ID)
	assert.Equal(t, 0, fetched.Images[0].Position)
	assert.Equal(t, first.ID, fetched.Images[1].ID)
	assert.Equal(t, 1, fetched.Images[1].Position)
}

func TestCatalogService_ReorderFailurePropagates(t *testing.T) {
	f := newCatalogFixture()
	f.productRepo.reorderErr = errors.New("image set mismatch")
	product := f.seedProduct(t)

	err := f.svc.ReorderProductImages(context.Background(), &usecase.ReorderImagesInput{
		ProductID: product.ID,
		ImageIDs:  []uuid.UUID{uuid.New()},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, f.productRepo.reorderErr)
}
