package repository

import (
	"errors"

	"soko/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrWalletSuspended     = errors.New("wallet is suspended")
	ErrNonPositiveAmount   = errors.New("amount must be greater than zero")
)

// WalletRepository owns every balance mutation. Concurrent debits against the
// same wallet are serialized with a row lock inside a transaction, so the
// read-check-write sequence cannot lose an update.
type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetByID(id uint) (*models.Wallet, error) {
	var w models.Wallet
	err := r.db.First(&w, id).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	var w models.Wallet
	err := r.db.Where("user_id = ?", userID).First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetOrCreate lazily provisions a zero-balance wallet for the user.
func (r *WalletRepository) GetOrCreate(userID uint) (*models.Wallet, error) {
	w, err := r.GetByUserID(userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	w = &models.Wallet{UserID: userID, Balance: 0}
	if err := r.db.Create(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}

// lockWallet loads the user's wallet under SELECT ... FOR UPDATE.
func lockWallet(tx *gorm.DB, userID uint) (*models.Wallet, error) {
	var w models.Wallet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// debitWallet locks the wallet, checks suspension and balance, and subtracts
// amount. Must run inside tx.
func debitWallet(tx *gorm.DB, userID uint, amount float64) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, ErrNonPositiveAmount
	}
	w, err := lockWallet(tx, userID)
	if err != nil {
		return nil, err
	}
	if w.IsSuspended {
		return nil, ErrWalletSuspended
	}
	if w.Balance < amount {
		return nil, ErrInsufficientBalance
	}
	w.Balance -= amount
	if err := tx.Model(w).Update("balance", w.Balance).Error; err != nil {
		return nil, err
	}
	return w, nil
}

// creditWallet locks the wallet (creating it if absent) and adds amount. Must
// run inside tx.
func creditWallet(tx *gorm.DB, userID uint, amount float64) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, ErrNonPositiveAmount
	}
	w, err := lockWallet(tx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		w = &models.Wallet{UserID: userID, Balance: 0}
		if err := tx.Create(w).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	w.Balance += amount
	if err := tx.Model(w).Update("balance", w.Balance).Error; err != nil {
		return nil, err
	}
	return w, nil
}

// Debit subtracts amount under a row lock. The balance check and write happen
// in the same transaction.
func (r *WalletRepository) Debit(userID uint, amount float64) (*models.Wallet, error) {
	var w *models.Wallet
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		w, err = debitWallet(tx, userID, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Credit adds amount to the user's wallet, creating it if absent.
func (r *WalletRepository) Credit(userID uint, amount float64) (*models.Wallet, error) {
	var w *models.Wallet
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		w, err = creditWallet(tx, userID, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Transfer moves amount between two wallets and writes the debit/credit audit
// rows in the same transaction: both balances and both rows, or nothing.
func (r *WalletRepository) Transfer(senderID, receiverID uint, amount float64, debitRef, creditRef string) (*models.Transaction, *models.Transaction, error) {
	if amount <= 0 {
		return nil, nil, ErrNonPositiveAmount
	}
	debit := &models.Transaction{
		UserID:        senderID,
		Amount:        amount,
		Status:        models.TransactionSuccess,
		Reference:     debitRef,
		PaymentMethod: models.PaymentMethodWallet,
		AlertType:     models.AlertDebit,
	}
	credit := &models.Transaction{
		UserID:        receiverID,
		Amount:        amount,
		Status:        models.TransactionSuccess,
		Reference:     creditRef,
		PaymentMethod: models.PaymentMethodWallet,
		AlertType:     models.AlertCredit,
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		// Both row locks are taken in ascending user id order so two
		// opposite-direction transfers cannot deadlock each other.
		ids := []uint{senderID, receiverID}
		if receiverID < senderID {
			ids = []uint{receiverID, senderID}
		}
		locked := make(map[uint]*models.Wallet, 2)
		for _, id := range ids {
			w, err := lockWallet(tx, id)
			if err != nil {
				return err
			}
			locked[id] = w
		}
		sender, receiver := locked[senderID], locked[receiverID]
		if sender.IsSuspended || receiver.IsSuspended {
			return ErrWalletSuspended
		}
		if sender.Balance < amount {
			return ErrInsufficientBalance
		}
		if err := tx.Model(sender).Update("balance", sender.Balance-amount).Error; err != nil {
			return err
		}
		if err := tx.Model(receiver).Update("balance", receiver.Balance+amount).Error; err != nil {
			return err
		}
		if err := tx.Create(debit).Error; err != nil {
			return err
		}
		return tx.Create(credit).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return debit, credit, nil
}
