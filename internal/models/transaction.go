package models

import (
	"time"
)

const (
	TransactionPending = "pending"
	TransactionSuccess = "success"

	PaymentMethodPaystack = "paystack"
	PaymentMethodWallet   = "wallet"

	AlertCredit    = "credit"
	AlertDebit     = "debit"
	AlertReverse   = "reverse"
	AlertOverdraft = "overdraft"
)

// Transaction is the audit record of one monetary movement: a gateway
// payment, a wallet debit/credit, or one leg of a transfer. Status moves
// pending -> success exactly once and rows are never deleted.
type Transaction struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	OrderID       *uint     `gorm:"index" json:"order_id"`
	Amount        float64   `gorm:"not null" json:"amount"`
	Status        string    `gorm:"size:20;not null;index" json:"status"` // pending | success
	Reference     string    `gorm:"size:128;uniqueIndex" json:"reference"`
	PaymentMethod string    `gorm:"size:20;not null;index" json:"payment_method"` // paystack | wallet
	AlertType     string    `gorm:"size:20;index" json:"alert_type"`              // credit | debit | reverse | overdraft
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
