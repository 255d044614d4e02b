package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"soko/internal/cache"
	"soko/internal/models"
	"soko/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const productCacheTTL = 5 * time.Minute

// CatalogService covers product, category and rating lookups and mutations.
// Product-by-id reads go through a redis cache since checkout pricing hits
// them on every attempt.
type CatalogService struct {
	products   *repository.ProductRepository
	categories *repository.CategoryRepository
	ratings    *repository.RatingRepository
	cache      *cache.Cache
}

func NewCatalogService(
	products *repository.ProductRepository,
	categories *repository.CategoryRepository,
	ratings *repository.RatingRepository,
	c *cache.Cache,
) *CatalogService {
	return &CatalogService{products: products, categories: categories, ratings: ratings, cache: c}
}

func productCacheKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}

func (s *CatalogService) CreateProduct(p *models.Product) error {
	if p.CategoryID != nil {
		if _, err := s.categories.GetByID(*p.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}
	}
	return s.products.Create(p)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var cached models.Product
	hit, err := s.cache.Get(ctx, productCacheKey(id), &cached)
	if err != nil {
		logrus.WithError(err).Warn("product cache read failed")
	}
	if hit {
		return &cached, nil
	}
	p, err := s.products.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if err := s.cache.Set(ctx, productCacheKey(id), p, productCacheTTL); err != nil {
		logrus.WithError(err).Warn("product cache write failed")
	}
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, p *models.Product) error {
	if err := s.products.Update(p); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, productCacheKey(p.ID)); err != nil {
		logrus.WithError(err).Warn("product cache invalidation failed")
	}
	return nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if _, err := s.products.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if err := s.products.Delete(id); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, productCacheKey(id)); err != nil {
		logrus.WithError(err).Warn("product cache invalidation failed")
	}
	return nil
}

func (s *CatalogService) ListProducts(filter repository.ProductFilter, page, limit int) ([]models.Product, *repository.Pagination, error) {
	return s.products.List(filter, page, limit)
}

func (s *CatalogService) CreateCategory(c *models.Category) error {
	_, err := s.categories.GetByName(c.Name)
	if err == nil {
		return ErrCategoryExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return s.categories.Create(c)
}

func (s *CatalogService) GetCategory(id uint) (*models.Category, error) {
	c, err := s.categories.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) UpdateCategory(c *models.Category) error {
	return s.categories.Update(c)
}

func (s *CatalogService) DeleteCategory(id uint) error {
	if _, err := s.GetCategory(id); err != nil {
		return err
	}
	return s.categories.Delete(id)
}

func (s *CatalogService) ListCategories(name string) ([]models.Category, error) {
	return s.categories.ListAll(name)
}

// CreateRating verifies the product exists before attaching the review.
func (s *CatalogService) CreateRating(ctx context.Context, r *models.Rating) error {
	if _, err := s.GetProduct(ctx, r.ProductID); err != nil {
		return err
	}
	return s.ratings.Create(r)
}

func (s *CatalogService) GetRating(id uint) (*models.Rating, error) {
	r, err := s.ratings.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}
	return r, nil
}

func (s *CatalogService) ListRatings(productID *uint, page, limit int) ([]models.Rating, *repository.Pagination, error) {
	return s.ratings.List(productID, page, limit)
}
