package models

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	UserID            uint           `gorm:"not null;index" json:"user_id"` // creator
	CategoryID        *uint          `gorm:"index" json:"category_id"`
	Name              string         `gorm:"size:255;not null" json:"name"`
	Description       string         `gorm:"type:text" json:"description"`
	Price             float64        `gorm:"not null" json:"price"`
	Discount          float64        `gorm:"default:0" json:"discount"`
	AvailableQuantity int            `gorm:"default:0" json:"available_quantity"`
	ImageURL          string         `gorm:"size:512" json:"image_url"`
	ThumbnailURL      string         `gorm:"size:512" json:"thumbnail_url"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	ParentID  *uint     `gorm:"index" json:"parent_id"`
	URL       string    `gorm:"size:512" json:"url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Star      int       `gorm:"not null" json:"star"`
	Review    string    `gorm:"type:text" json:"review"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Rating) TableName() string {
	return "ratings"
}
