package repository

import (
	"soko/internal/models"

	"gorm.io/gorm"
)

// BillingRepository holds the multi-entity persistence units of a checkout.
// Each method is one database transaction: the order, its items and the
// payment transaction land together or not at all.
type BillingRepository struct {
	db *gorm.DB
}

func NewBillingRepository(db *gorm.DB) *BillingRepository {
	return &BillingRepository{db: db}
}

// CreateGatewayCheckout persists a gateway checkout after the gateway
// accepted initiation: order, items, pending transaction, order link.
func (r *BillingRepository) CreateGatewayCheckout(order *models.Order, items []models.OrderItem, txn *models.Transaction) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		txn.OrderID = &order.ID
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		return tx.Model(order).Update("transaction_id", txn.ID).Error
	})
}

// CreateWalletCheckout debits the buyer's wallet and persists the settled
// checkout in one transaction. The wallet row stays locked across the balance
// check and the write, and a failed step rolls everything back, wallet debit
// included.
func (r *BillingRepository) CreateWalletCheckout(userID uint, order *models.Order, items []models.OrderItem, txn *models.Transaction) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if _, err := debitWallet(tx, userID, order.Amount); err != nil {
			return err
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		txn.OrderID = &order.ID
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		return tx.Model(order).Update("transaction_id", txn.ID).Error
	})
}

// MarkGatewaySettled flips a gateway transaction pending -> success and
// stamps the reference onto the linked order. The guarded update makes
// repeated verification a no-op; it reports whether this call applied the
// transition.
func (r *BillingRepository) MarkGatewaySettled(txn *models.Transaction) (bool, error) {
	applied := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND status = ?", txn.ID, models.TransactionPending).
			Update("status", models.TransactionSuccess)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true
		if txn.OrderID == nil {
			return nil
		}
		return tx.Model(&models.Order{}).
			Where("id = ?", *txn.OrderID).
			Update("reference", txn.Reference).Error
	})
	return applied, err
}

// SettleWalletTopUp flips a wallet top-up pending -> success and credits the
// wallet by the transaction amount. The status guard is what makes crediting
// exactly-once: a second verification of the same reference changes nothing.
func (r *BillingRepository) SettleWalletTopUp(txn *models.Transaction, userID uint) (bool, error) {
	applied := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND status = ?", txn.ID, models.TransactionPending).
			Update("status", models.TransactionSuccess)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true
		_, err := creditWallet(tx, userID, txn.Amount)
		return err
	})
	return applied, err
}
