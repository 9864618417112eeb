package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cityshops/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const KeyPrefix = "cityshops"

// CacheService holds read-through copies of catalog rows plus short-lived
// auth state. A miss returns nil, nil.
type CacheService interface {
	// Product caching
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error
	DeleteProduct(ctx context.Context, productID uuid.UUID) error

	// Shop caching
	GetShop(ctx context.Context, shopID uuid.UUID) (*models.Shop, error)
	SetShop(ctx context.Context, shop *models.Shop, ttl time.Duration) error
	DeleteShop(ctx context.Context, shopID uuid.UUID) error

	// Category caching
	GetCategory(ctx context.Context, categoryID uuid.UUID) (*models.Category, error)
	SetCategory(ctx context.Context, category *models.Category, ttl time.Duration) error
	DeleteCategory(ctx context.Context, categoryID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	ResetRateLimit(ctx context.Context, key string) error

	// Generic string operations for token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
	Close() error
}

type redisCacheService struct {
	client redis.UniversalClient
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port as well as host:port
	parsedAddr := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		slog.Warn("redis ping failed on initialization", "addr", parsedAddr, "error", err)
	} else {
		slog.Info("redis connection established", "addr", parsedAddr)
	}

	return NewCacheServiceFromClient(client)
}

func NewCacheServiceFromClient(client redis.UniversalClient) CacheService {
	return &redisCacheService{client: client}
}

func ProductKey(productID uuid.UUID) string {
	return fmt.Sprintf("%s:product:%s", KeyPrefix, productID)
}

func ShopKey(shopID uuid.UUID) string {
	return fmt.Sprintf("%s:shop:%s", KeyPrefix, shopID)
}

func CategoryKey(categoryID uuid.UUID) string {
	return fmt.Sprintf("%s:category:%s", KeyPrefix, categoryID)
}

func RateLimitKey(key string) string {
	return fmt.Sprintf("%s:ratelimit:%s", KeyPrefix, key)
}

func (r *redisCacheService) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil // cache miss
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	ok, err := r.getJSON(ctx, ProductKey(productID), &product)
	if err != nil || !ok {
		return nil, err
	}
	return &product, nil
}

func (r *redisCacheService) SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	return r.setJSON(ctx, ProductKey(product.ID), product, ttl)
}

func (r *redisCacheService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	return r.client.Del(ctx, ProductKey(productID)).Err()
}

func (r *redisCacheService) GetShop(ctx context.Context, shopID uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	ok, err := r.getJSON(ctx, ShopKey(shopID), &shop)
	if err != nil || !ok {
		return nil, err
	}
	return &shop, nil
}

func (r *redisCacheService) SetShop(ctx context.Context, shop *models.Shop, ttl time.Duration) error {
	return r.setJSON(ctx, ShopKey(shop.ID), shop, ttl)
}

func (r *redisCacheService) DeleteShop(ctx context.Context, shopID uuid.UUID) error {
	return r.client.Del(ctx, ShopKey(shopID)).Err()
}

func (r *redisCacheService) GetCategory(ctx context.Context, categoryID uuid.UUID) (*models.Category, error) {
	var category models.Category
	ok, err := r.getJSON(ctx, CategoryKey(categoryID), &category)
	if err != nil || !ok {
		return nil, err
	}
	return &category, nil
}

func (r *redisCacheService) SetCategory(ctx context.Context, category *models.Category, ttl time.Duration) error {
	return r.setJSON(ctx, CategoryKey(category.ID), category, ttl)
}

func (r *redisCacheService) DeleteCategory(ctx context.Context, categoryID uuid.UUID) error {
	return r.client.Del(ctx, CategoryKey(categoryID)).Err()
}

// IsRateLimited counts one attempt under key and reports whether the
// window's limit is exceeded.
func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := RateLimitKey(key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) ResetRateLimit(ctx context.Context, key string) error {
	return r.client.Del(ctx, RateLimitKey(key)).Err()
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCacheService) Close() error {
	return r.client.Close()
}
