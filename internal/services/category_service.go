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

const categoryCacheTTL = time.Hour

type CategoryServiceInterface interface {
	CreateCategory(ctx context.Context, principal models.Principal, input *models.CategoryInput) (*models.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context, limit, offset int) ([]*models.Category, error)
	UpdateCategory(ctx context.Context, principal models.Principal, id uuid.UUID, input *models.CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, principal models.Principal, id uuid.UUID) error
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
	cache        caching.CacheService
}

func NewCategoryService(categoryRepo repositories.CategoryRepository, cache caching.CacheService) CategoryServiceInterface {
	return &categoryService{categoryRepo: categoryRepo, cache: cache}
}

func authorizeCategories(principal models.Principal) error {
	policy, err := PolicyFor(principal, nil)
	if err != nil {
		return err
	}
	return policy.CanManageCategories()
}

func validateCategoryInput(input *models.CategoryInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if err := common.ValidateRequiredString(input.Name, "name"); err != nil {
		return common.InvalidRequest(err.Error())
	}
	if len(input.Name) > 100 {
		return common.InvalidRequest("name cannot exceed 100 characters")
	}
	if err := common.ValidateOptionalString(input.Description, "description", 1000); err != nil {
		return common.InvalidRequest(err.Error())
	}
	return nil
}

func (s *categoryService) CreateCategory(ctx context.Context, principal models.Principal, input *models.CategoryInput) (*models.Category, error) {
	if err := authorizeCategories(principal); err != nil {
		return nil, err
	}
	if err := validateCategoryInput(input); err != nil {
		return nil, err
	}

	category := &models.Category{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, common.Conflict("category with this name already exists")
		}
		return nil, common.Internal("create category", err)
	}
	return category, nil
}

func (s *categoryService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if cached, err := s.cache.GetCategory(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.NotFound("category")
		}
		return nil, common.Internal("get category", err)
	}

	if err := s.cache.SetCategory(ctx, category, categoryCacheTTL); err != nil {
		slog.WarnContext(ctx, "failed to cache category", "category_id", id, "error", err)
	}
	return category, nil
}

func (s *categoryService) ListCategories(ctx context.Context, limit, offset int) ([]*models.Category, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset, common.DefaultPageSize)
	if err != nil {
		return nil, common.InvalidRequest(err.Error())
	}
	categories, err := s.categoryRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, common.Internal("list categories", err)
	}
	return categories, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, principal models.Principal, id uuid.UUID, input *models.CategoryInput) (*models.Category, error) {
	if err := authorizeCategories(principal); err != nil {
		return nil, err
	}
	if err := validateCategoryInput(input); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.NotFound("category")
		}
		return nil, common.Internal("get category", err)
	}
	category.Name = input.Name
	category.Description = input.Description

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, common.NotFound("category")
		case repositories.IsUniqueViolation(err):
			return nil, common.Conflict("category with this name already exists")
		}
		return nil, common.Internal("update category", err)
	}
	s.invalidate(ctx, id)
	return category, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, principal models.Principal, id uuid.UUID) error {
	if err := authorizeCategories(principal); err != nil {
		return err
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return common.NotFound("category")
		}
		return common.Internal("delete category", err)
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *categoryService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.DeleteCategory(ctx, id); err != nil {
		slog.WarnContext(ctx, "failed to invalidate category cache", "category_id", id, "error", err)
	}
}
