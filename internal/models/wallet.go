package models

import (
	"time"
)

// Wallet holds a user's internal balance, usable as a payment method at
// checkout. Created lazily on first use; balance never goes below zero.
type Wallet struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance     float64   `gorm:"not null;default:0" json:"balance"`
	IsSuspended bool      `gorm:"not null;default:false" json:"is_suspended"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}
