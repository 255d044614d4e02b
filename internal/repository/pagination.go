package repository

import (
	"gorm.io/gorm"
)

// Pagination describes one page of a listing result.
type Pagination struct {
	Page         int   `json:"page"`
	Limit        int   `json:"limit"`
	TotalPages   int64 `json:"total_pages"`
	TotalResults int64 `json:"total_results"`
}

const defaultPageSize = 20

// Paginate counts the query, then loads one page into dest. The query must
// already carry its model and filters.
func Paginate(q *gorm.DB, page, limit int, dest interface{}) (*Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}
	if err := q.Offset((page - 1) * limit).Limit(limit).Find(dest).Error; err != nil {
		return nil, err
	}
	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}
	return &Pagination{
		Page:         page,
		Limit:        limit,
		TotalPages:   totalPages,
		TotalResults: total,
	}, nil
}
