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

const shopCacheTTL = 10 * time.Minute

type ShopServiceInterface interface {
	CreateShop(ctx context.Context, principal models.Principal, input *models.ShopInput) (*models.Shop, error)
	GetShop(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	ListShops(ctx context.Context, filter *models.ShopFilter) ([]*models.Shop, error)
	UpdateShop(ctx context.Context, principal models.Principal, id uuid.UUID, input *models.ShopInput) (*models.Shop, error)
	DeleteShop(ctx context.Context, principal models.Principal, id uuid.UUID) error
	UploadShopImage(ctx context.Context, principal models.Principal, id uuid.UUID, upload ImageUpload) (*models.Shop, error)
	// ShopForOwner loads a shop and checks the principal may manage it.
	ShopForOwner(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Shop, error)
}

type shopService struct {
	shopRepo repositories.ShopRepository
	cache    caching.CacheService
	images   MinioService
}

func NewShopService(shopRepo repositories.ShopRepository, cache caching.CacheService, images MinioService) ShopServiceInterface {
	return &shopService{shopRepo: shopRepo, cache: cache, images: images}
}

// applyShopInput copies the non-nil fields of input onto shop.
func applyShopInput(shop *models.Shop, input *models.ShopInput) error {
	if input.Name != nil {
		shop.Name = strings.TrimSpace(*input.Name)
	}
	if input.Address != nil {
		shop.Address = strings.TrimSpace(*input.Address)
	}
	if input.Description != nil {
		shop.Description = input.Description
	}
	if input.Phone != nil {
		shop.Phone = input.Phone
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email == "" {
			shop.Email = nil
		} else {
			if err := common.ValidateEmail(email); err != nil {
				return common.InvalidRequest(err.Error())
			}
			shop.Email = &email
		}
	}
	if input.IsActive != nil {
		shop.IsActive = *input.IsActive
	}
	if input.CategoryID != nil {
		categoryID, err := common.ValidateOptionalUUID(*input.CategoryID, "category_id")
		if err != nil {
			return common.InvalidRequest(err.Error())
		}
		shop.CategoryID = categoryID
	}

	if err := common.ValidateRequiredString(shop.Name, "name"); err != nil {
		return common.InvalidRequest(err.Error())
	}
	if len(shop.Name) > 200 {
		return common.InvalidRequest("name cannot exceed 200 characters")
	}
	if err := common.ValidateRequiredString(shop.Address, "address"); err != nil {
		return common.InvalidRequest(err.Error())
	}
	if err := common.ValidateOptionalString(shop.Phone, "phone", 20); err != nil {
		return common.InvalidRequest(err.Error())
	}
	if err := common.ValidateOptionalString(shop.Description, "description", 1000); err != nil {
		return common.InvalidRequest(err.Error())
	}
	return nil
}

func (s *shopService) CreateShop(ctx context.Context, principal models.Principal, input *models.ShopInput) (*models.Shop, error) {
	policy, err := PolicyFor(principal, s.shopRepo)
	if err != nil {
		return nil, err
	}
	if err := policy.CanCreateShop(); err != nil {
		return nil, err
	}

	shop := &models.Shop{
		ID:       uuid.New(),
		OwnerID:  principal.UserID,
		IsActive: true,
	}
	if err := applyShopInput(shop, input); err != nil {
		return nil, err
	}

	if err := s.shopRepo.Create(ctx, shop); err != nil {
		if repositories.IsForeignKeyViolation(err) {
			return nil, common.InvalidRequest("category does not exist")
		}
		return nil, common.Internal("create shop", err)
	}

	slog.InfoContext(ctx, "shop created", "shop_id", shop.ID, "owner_id", shop.OwnerID)
	return shop, nil
}

func (s *shopService) GetShop(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	if cached, err := s.cache.GetShop(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	shop, err := s.shopRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.NotFound("shop")
		}
		return nil, common.Internal("get shop", err)
	}

	if err := s.cache.SetShop(ctx, shop, shopCacheTTL); err != nil {
		slog.WarnContext(ctx, "failed to cache shop", "shop_id", id, "error", err)
	}
	return shop, nil
}

func (s *shopService) ListShops(ctx context.Context, filter *models.ShopFilter) ([]*models.Shop, error) {
	limit, skip, err := common.ValidatePaginationParams(filter.Limit, filter.Skip, common.DefaultPageSize)
	if err != nil {
		return nil, common.InvalidRequest(err.Error())
	}
	filter.Limit, filter.Skip = limit, skip

	shops, err := s.shopRepo.List(ctx, filter)
	if err != nil {
		return nil, common.Internal("list shops", err)
	}
	return shops, nil
}

func (s *shopService) ShopForOwner(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Shop, error) {
	policy, err := PolicyFor(principal, s.shopRepo)
	if err != nil {
		return nil, err
	}

	shop, err := s.shopRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.NotFound("shop")
		}
		return nil, common.Internal("get shop", err)
	}
	if err := policy.CanManageShop(shop); err != nil {
		return nil, err
	}
	return shop, nil
}

func (s *shopService) UpdateShop(ctx context.Context, principal models.Principal, id uuid.UUID, input *models.ShopInput) (*models.Shop, error) {
	shop, err := s.ShopForOwner(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if err := applyShopInput(shop, input); err != nil {
		return nil, err
	}

	if err := s.shopRepo.Update(ctx, shop); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, common.NotFound("shop")
		case repositories.IsForeignKeyViolation(err):
			return nil, common.InvalidRequest("category does not exist")
		}
		return nil, common.Internal("update shop", err)
	}
	s.invalidate(ctx, id)
	return shop, nil
}

func (s *shopService) DeleteShop(ctx context.Context, principal models.Principal, id uuid.UUID) error {
	if _, err := s.ShopForOwner(ctx, principal, id); err != nil {
		return err
	}
	if err := s.shopRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return common.NotFound("shop")
		case repositories.IsForeignKeyViolation(err):
			return common.Conflict("shop has orders and cannot be deleted; deactivate it instead")
		}
		return common.Internal("delete shop", err)
	}
	s.invalidate(ctx, id)
	slog.InfoContext(ctx, "shop deleted", "shop_id", id, "owner_id", principal.UserID)
	return nil
}

func (s *shopService) UploadShopImage(ctx context.Context, principal models.Principal, id uuid.UUID, upload ImageUpload) (*models.Shop, error) {
	shop, err := s.ShopForOwner(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	objectName, err := imageObjectName("shops", shop.ID, upload)
	if err != nil {
		return nil, err
	}
	if err := s.images.UploadImage(ctx, objectName, upload.Reader, upload.Size, upload.ContentType); err != nil {
		return nil, common.Internal("upload shop image", err)
	}

	url := s.images.ObjectURL(objectName)
	if err := s.shopRepo.UpdateImageURL(ctx, shop.ID, url); err != nil {
		if delErr := s.images.DeleteImage(ctx, objectName); delErr != nil {
			slog.WarnContext(ctx, "failed to remove orphaned image", "object", objectName, "error", delErr)
		}
		return nil, common.Internal("save shop image", err)
	}
	shop.ImageURL = &url
	s.invalidate(ctx, id)
	return shop, nil
}

func (s *shopService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.DeleteShop(ctx, id); err != nil {
		slog.WarnContext(ctx, "failed to invalidate shop cache", "shop_id", id, "error", err)
	}
}
