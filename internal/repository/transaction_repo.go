package repository

import (
	"soko/internal/models"

	"gorm.io/gorm"
)

// TransactionFilter enumerates the recognized listing filters.
type TransactionFilter struct {
	OrderID       *uint
	ProductID     *uint
	UserID        *uint
	Status        string
	PaymentMethod string
	AlertType     string
	Reference     string
}

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(t *models.Transaction) error {
	return r.db.Create(t).Error
}

func (r *TransactionRepository) GetByID(id uint) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.First(&t, id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) GetByReference(reference string) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.Where("reference = ?", reference).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) List(filter TransactionFilter, page, limit int) ([]models.Transaction, *Pagination, error) {
	q := r.db.Model(&models.Transaction{}).Order("created_at DESC")
	if filter.OrderID != nil {
		q = q.Where("order_id = ?", *filter.OrderID)
	}
	if filter.ProductID != nil {
		q = q.Where("order_id IN (?)",
			r.db.Model(&models.OrderItem{}).Select("order_id").Where("product_id = ?", *filter.ProductID))
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.PaymentMethod != "" {
		q = q.Where("payment_method = ?", filter.PaymentMethod)
	}
	if filter.AlertType != "" {
		q = q.Where("alert_type = ?", filter.AlertType)
	}
	if filter.Reference != "" {
		q = q.Where("reference = ?", filter.Reference)
	}
	var txns []models.Transaction
	p, err := Paginate(q, page, limit, &txns)
	if err != nil {
		return nil, nil, err
	}
	return txns, p, nil
}
