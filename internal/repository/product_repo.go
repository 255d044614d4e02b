package repository

import (
	"soko/internal/models"

	"gorm.io/gorm"
)

// ProductFilter enumerates the recognized listing filters.
type ProductFilter struct {
	CategoryID *uint
	Name       string
}

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(p *models.Product) error {
	return r.db.Create(p).Error
}

func (r *ProductRepository) GetByID(id uint) (*models.Product, error) {
	var p models.Product
	err := r.db.First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Update(p *models.Product) error {
	return r.db.Save(p).Error
}

func (r *ProductRepository) Delete(id uint) error {
	return r.db.Delete(&models.Product{}, id).Error
}

func (r *ProductRepository) List(filter ProductFilter, page, limit int) ([]models.Product, *Pagination, error) {
	q := r.db.Model(&models.Product{}).Order("created_at DESC")
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Name != "" {
		q = q.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	var products []models.Product
	p, err := Paginate(q, page, limit, &products)
	if err != nil {
		return nil, nil, err
	}
	return products, p, nil
}
