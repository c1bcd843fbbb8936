package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sgtmake/storefront-api/internal/cache"
	"github.com/sgtmake/storefront-api/internal/logger"
	"github.com/sgtmake/storefront-api/internal/models"
	"github.com/sgtmake/storefront-api/internal/repository"
)

const productCacheTTL = 5 * time.Minute

// ProductListResult 商品列表结果
type ProductListResult struct {
	Items []models.Product `json:"items"`
	Total int64            `json:"total"`
}

// ProductService 商品服务（只读目录 + 缓存）
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// List 查询上架商品列表，结果短缓存
func (s *ProductService) List(ctx context.Context, page, pageSize int) (*ProductListResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	cacheKey := fmt.Sprintf("products:list:%d:%d", page, pageSize)
	var cached ProductListResult
	if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	items, total, err := s.productRepo.List(repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		OnlyActive: true,
	})
	if err != nil {
		return nil, err
	}
	result := &ProductListResult{Items: items, Total: total}

	if err := cache.SetJSON(ctx, cacheKey, result, productCacheTTL); err != nil {
		logger.Warnw("product_list_cache_set_failed", "error", err)
	}
	return result, nil
}

// GetBySlug 获取上架商品详情
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	cacheKey := "products:slug:" + slug
	var cached models.Product
	if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit && cached.ID != 0 {
		return &cached, nil
	}

	product, err := s.productRepo.GetBySlug(slug, true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotAvailable
	}

	if err := cache.SetJSON(ctx, cacheKey, product, productCacheTTL); err != nil {
		logger.Warnw("product_detail_cache_set_failed", "slug", slug, "error", err)
	}
	return product, nil
}
