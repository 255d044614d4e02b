package repository

import (
	"soko/internal/models"

	"gorm.io/gorm"
)

type RatingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

func (r *RatingRepository) Create(rt *models.Rating) error {
	return r.db.Create(rt).Error
}

func (r *RatingRepository) GetByID(id uint) (*models.Rating, error) {
	var rt models.Rating
	err := r.db.First(&rt, id).Error
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *RatingRepository) List(productID *uint, page, limit int) ([]models.Rating, *Pagination, error) {
	q := r.db.Model(&models.Rating{}).Order("created_at DESC")
	if productID != nil {
		q = q.Where("product_id = ?", *productID)
	}
	var ratings []models.Rating
	p, err := Paginate(q, page, limit, &ratings)
	if err != nil {
		return nil, nil, err
	}
	return ratings, p, nil
}
