package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"cityshops/internal/caching"
	"cityshops/internal/common"
	"cityshops/internal/models"
	"cityshops/internal/repositories"

	"github.com/google/uuid"
)

const productCacheTTL = 5 * time.Minute

// ProductServiceInterface defines the interface for product service operations
type ProductServiceInterface interface {
	CreateProduct(ctx context.Context, principal models.Principal, shopID uuid.UUID, input *models.ProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error)
	UpdateProduct(ctx context.Context, principal models.Principal, id uuid.UUID, input *models.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, principal models.Principal, id uuid.UUID) error
	UploadProductImage(ctx context.Context, principal models.Principal, id uuid.UUID, upload ImageUpload) (*models.Product, error)
}

type productService struct {
	productRepo repositories.ProductRepository
	shops       ShopServiceInterface
	cache       caching.CacheService
	images      MinioService
}

func NewProductService(productRepo repositories.ProductRepository, shops ShopServiceInterface, cache caching.CacheService, images MinioService) ProductServiceInterface {
	return &productService{
		productRepo: productRepo,
		shops:       shops,
		cache:       cache,
		images:      images,
	}
}

// applyProductInput copies the non-nil fields of input onto product.
func applyProductInput(product *models.Product, input *models.ProductInput) error {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.StockQuantity != nil {
		product.StockQuantity = *input.StockQuantity
	}
	if input.IsAvailable != nil {
		product.IsAvailable = *input.IsAvailable
	}
	if input.CategoryID != nil {
		categoryID, err := common.ValidateOptionalUUID(*input.CategoryID, "category_id")
		if err != nil {
			return common.InvalidRequest(err.Error())
		}
		product.CategoryID = categoryID
	}

	if err := common.ValidateRequiredString(product.Name, "name"); err != nil {
		return common.InvalidRequest(err.Error())
	}
	if len(product.Name) > 200 {
		return common.InvalidRequest("name cannot exceed 200 characters")
	}
	if err := common.ValidatePrice(product.Price, "price"); err != nil {
		return common.InvalidRequest(err.Error())
	}
	if product.StockQuantity < 0 {
		return common.InvalidRequest("stock_quantity cannot be negative")
	}
	if err := common.ValidateOptionalString(product.Description, "description", 1000); err != nil {
		return common.InvalidRequest(err.Error())
	}
	return nil
}

func (s *productService) CreateProduct(ctx context.Context, principal models.Principal, shopID uuid.UUID, input *models.ProductInput) (*models.Product, error) {
	if _, err := s.shops.ShopForOwner(ctx, principal, shopID); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:          uuid.New(),
		ShopID:      shopID,
		IsAvailable: true,
	}
	if err := applyProductInput(product, input); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if repositories.IsForeignKeyViolation(err) {
			return nil, common.InvalidRequest("category does not exist")
		}
		return nil, common.Internal("create product", err)
	}
	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if cached, err := s.cache.GetProduct(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.NotFound("product")
		}
		return nil, common.Internal("get product", err)
	}

	if err := s.cache.SetProduct(ctx, product, productCacheTTL); err != nil {
		slog.WarnContext(ctx, "failed to cache product", "product_id", id, "error", err)
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error) {
	limit, skip, err := common.ValidatePaginationParams(filter.Limit, filter.Skip, common.DefaultPageSize)
	if err != nil {
		return nil, common.InvalidRequest(err.Error())
	}
	filter.Limit, filter.Skip = limit, skip

	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, common.Internal("list products", err)
	}
	return products, nil
}

// productForOwner loads the product bypassing the cache and checks the
// principal owns its shop.
func (s *productService) productForOwner(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.NotFound("product")
		}
		return nil, common.Internal("get product", err)
	}
	if _, err := s.shops.ShopForOwner(ctx, principal, product.ShopID); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, principal models.Principal, id uuid.UUID, input *models.ProductInput) (*models.Product, error) {
	product, err := s.productForOwner(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if err := applyProductInput(product, input); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, common.NotFound("product")
		case repositories.IsForeignKeyViolation(err):
			return nil, common.InvalidRequest("category does not exist")
		}
		return nil, common.Internal("update product", err)
	}
	s.invalidate(ctx, id)
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, principal models.Principal, id uuid.UUID) error {
	if _, err := s.productForOwner(ctx, principal, id); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return common.NotFound("product")
		case repositories.IsForeignKeyViolation(err):
			return common.Conflict("product appears in orders and cannot be deleted; mark it unavailable instead")
		}
		return common.Internal("delete product", err)
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *productService) UploadProductImage(ctx context.Context, principal models.Principal, id uuid.UUID, upload ImageUpload) (*models.Product, error) {
	product, err := s.productForOwner(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	objectName, err := imageObjectName("products", product.ID, upload)
	if err != nil {
		return nil, err
	}
	if err := s.images.UploadImage(ctx, objectName, upload.Reader, upload.Size, upload.ContentType); err != nil {
		return nil, common.Internal("upload product image", err)
	}

	url := s.images.ObjectURL(objectName)
	if err := s.productRepo.UpdateImageURL(ctx, product.ID, url); err != nil {
		if delErr := s.images.DeleteImage(ctx, objectName); delErr != nil {
			slog.WarnContext(ctx, "failed to remove orphaned image", "object", objectName, "error", delErr)
		}
		return nil, common.Internal("save product image", err)
	}
	product.ImageURL = &url
	s.invalidate(ctx, id)
	return product, nil
}

func (s *productService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.DeleteProduct(ctx, id); err != nil {
		slog.WarnContext(ctx, "failed to invalidate product cache", "product_id", id, "error", err)
	}
}
