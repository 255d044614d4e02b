package repository

import (
	"soko/internal/models"

	"gorm.io/gorm"
)

// OrderFilter enumerates the recognized listing filters; anything else in the
// query string is ignored.
type OrderFilter struct {
	ProductID   *uint
	IsDelivered *bool
	UserID      *uint
}

// TrackerPatch carries the mutable delivery fields of an order. Nil fields
// are left untouched.
type TrackerPatch struct {
	DeliveryTracker *string `json:"delivery_tracker"`
	IsDelivered     *bool   `json:"is_delivered"`
}

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) GetByID(id uint) (*models.Order, error) {
	var o models.Order
	err := r.db.Preload("Items").First(&o, id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) List(filter OrderFilter, page, limit int) ([]models.Order, *Pagination, error) {
	q := r.db.Model(&models.Order{}).Preload("Items").Order("orders.created_at DESC")
	if filter.ProductID != nil {
		q = q.Where("orders.id IN (?)",
			r.db.Model(&models.OrderItem{}).Select("order_id").Where("product_id = ?", *filter.ProductID))
	}
	if filter.IsDelivered != nil {
		q = q.Where("is_delivered = ?", *filter.IsDelivered)
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	var orders []models.Order
	p, err := Paginate(q, page, limit, &orders)
	if err != nil {
		return nil, nil, err
	}
	return orders, p, nil
}

// UpdateTracker merges the patch into an existing order and returns the
// refreshed row.
func (r *OrderRepository) UpdateTracker(id uint, patch TrackerPatch) (*models.Order, error) {
	var o models.Order
	if err := r.db.First(&o, id).Error; err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if patch.DeliveryTracker != nil {
		updates["delivery_tracker"] = *patch.DeliveryTracker
	}
	if patch.IsDelivered != nil {
		updates["is_delivered"] = *patch.IsDelivered
	}
	if len(updates) == 0 {
		return &o, nil
	}
	if err := r.db.Model(&o).Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.GetByID(id)
}
