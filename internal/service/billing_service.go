package service

import (
	"context"
	"errors"
	"time"

	"soko/internal/events"
	"soko/internal/models"
	"soko/internal/repository"
	"soko/pkg/payment"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Store interfaces consumed by the billing service. The gorm repositories
// satisfy them; tests substitute mocks.

type ProductCatalog interface {
	GetByID(id uint) (*models.Product, error)
}

type WalletStore interface {
	GetByID(id uint) (*models.Wallet, error)
	GetByUserID(userID uint) (*models.Wallet, error)
	GetOrCreate(userID uint) (*models.Wallet, error)
	Transfer(senderID, receiverID uint, amount float64, debitRef, creditRef string) (*models.Transaction, *models.Transaction, error)
}

type OrderStore interface {
	GetByID(id uint) (*models.Order, error)
	List(filter repository.OrderFilter, page, limit int) ([]models.Order, *repository.Pagination, error)
	UpdateTracker(id uint, patch repository.TrackerPatch) (*models.Order, error)
}

type TransactionStore interface {
	Create(t *models.Transaction) error
	GetByID(id uint) (*models.Transaction, error)
	GetByReference(reference string) (*models.Transaction, error)
	List(filter repository.TransactionFilter, page, limit int) ([]models.Transaction, *repository.Pagination, error)
}

// SettlementStore holds the atomic multi-entity persistence units.
type SettlementStore interface {
	CreateGatewayCheckout(order *models.Order, items []models.OrderItem, txn *models.Transaction) error
	CreateWalletCheckout(userID uint, order *models.Order, items []models.OrderItem, txn *models.Transaction) error
	MarkGatewaySettled(txn *models.Transaction) (bool, error)
	SettleWalletTopUp(txn *models.Transaction, userID uint) (bool, error)
}

// Notifier pushes settlement events to a user's open sessions.
type Notifier interface {
	NotifyUser(userID uint, payload interface{})
}

type CheckoutItem struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

type CheckoutRequest struct {
	PaymentMethod   string         `json:"paymentMethod" binding:"required"`
	DeliveryAddress string         `json:"deliveryAddress" binding:"required"`
	Items           []CheckoutItem `json:"paymentObjects" binding:"required,min=1,dive"`
}

type CheckoutResult struct {
	Message          string  `json:"message"`
	AuthorizationURL string  `json:"authorization_url,omitempty"`
	Reference        string  `json:"reference,omitempty"`
	OrderID          uint    `json:"order_id"`
	Amount           float64 `json:"amount"`
}

type TopUpResult struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
}

type VerificationResult struct {
	Message   string  `json:"message"`
	Reference string  `json:"reference"`
	Credited  bool    `json:"credited,omitempty"`
	Amount    float64 `json:"amount"`
}

type TransferResult struct {
	Debit  *models.Transaction `json:"debit"`
	Credit *models.Transaction `json:"credit"`
}

// BillingService orchestrates checkout settlement: it prices the lines,
// dispatches on payment method, drives the gateway and the wallet ledger, and
// reconciles transaction state when a verification comes back.
type BillingService struct {
	products       ProductCatalog
	wallets        WalletStore
	orders         OrderStore
	transactions   TransactionStore
	settlements    SettlementStore
	gateway        payment.Provider
	events         events.Publisher
	notifier       Notifier
	gatewayTimeout time.Duration
}

func NewBillingService(
	products ProductCatalog,
	wallets WalletStore,
	orders OrderStore,
	transactions TransactionStore,
	settlements SettlementStore,
	gateway payment.Provider,
	gatewayTimeout time.Duration,
) *BillingService {
	if gatewayTimeout <= 0 {
		gatewayTimeout = 30 * time.Second
	}
	return &BillingService{
		products:       products,
		wallets:        wallets,
		orders:         orders,
		transactions:   transactions,
		settlements:    settlements,
		gateway:        gateway,
		gatewayTimeout: gatewayTimeout,
	}
}

// SetEventPublisher enables best-effort event publishing.
func (s *BillingService) SetEventPublisher(p events.Publisher) { s.events = p }

// SetNotifier enables websocket pushes to buyers.
func (s *BillingService) SetNotifier(n Notifier) { s.notifier = n }

// priceItems resolves each product to its current price and sums the line
// totals. Prices are read at call time; a later price change does not touch
// placed orders.
func (s *BillingService) priceItems(items []CheckoutItem) (float64, error) {
	var total float64
	for _, item := range items {
		if item.Quantity <= 0 {
			return 0, ErrInvalidAmount
		}
		p, err := s.products.GetByID(item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrProductNotFound
			}
			return 0, err
		}
		total += p.Price * float64(item.Quantity)
	}
	return total, nil
}

// InitializeCheckout prices the requested lines and settles them through the
// chosen payment path. For the gateway path the gateway is called before
// anything is persisted, so a declined initiation leaves no orphaned order;
// the persistence itself is one atomic unit.
func (s *BillingService) InitializeCheckout(ctx context.Context, userID uint, email string, req CheckoutRequest) (*CheckoutResult, error) {
	if req.PaymentMethod != models.PaymentMethodPaystack && req.PaymentMethod != models.PaymentMethodWallet {
		return nil, ErrInvalidPaymentMethod
	}
	total, err := s.priceItems(req.Items)
	if err != nil {
		return nil, err
	}
	if total <= 0 {
		return nil, ErrInvalidAmount
	}

	order := &models.Order{
		UserID:          userID,
		Amount:          total,
		DeliveryAddress: req.DeliveryAddress,
	}
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, models.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	if req.PaymentMethod == models.PaymentMethodPaystack {
		return s.gatewayCheckout(ctx, userID, email, total, order, items)
	}
	return s.walletCheckout(ctx, userID, total, order, items)
}

func (s *BillingService) gatewayCheckout(ctx context.Context, userID uint, email string, total float64, order *models.Order, items []models.OrderItem) (*CheckoutResult, error) {
	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	init, err := s.gateway.Initialize(gctx, toMinorUnits(total), email)
	if err != nil {
		logrus.WithError(err).Warn("payment initiation rejected by gateway")
		return nil, ErrPaymentInit
	}

	txn := &models.Transaction{
		UserID:        userID,
		Amount:        total,
		Status:        models.TransactionPending,
		Reference:     init.Reference,
		PaymentMethod: models.PaymentMethodPaystack,
	}
	if err := s.settlements.CreateGatewayCheckout(order, items, txn); err != nil {
		return nil, err
	}
	s.publish(ctx, events.OrderCreated, map[string]interface{}{
		"order_id":  order.ID,
		"user_id":   userID,
		"amount":    total,
		"method":    models.PaymentMethodPaystack,
		"reference": init.Reference,
	})
	return &CheckoutResult{
		Message:          "transaction initiated",
		AuthorizationURL: init.AuthorizationURL,
		Reference:        init.Reference,
		OrderID:          order.ID,
		Amount:           total,
	}, nil
}

func (s *BillingService) walletCheckout(ctx context.Context, userID uint, total float64, order *models.Order, items []models.OrderItem) (*CheckoutResult, error) {
	ref := uuid.NewString()
	txn := &models.Transaction{
		UserID:        userID,
		Amount:        total,
		Status:        models.TransactionSuccess,
		Reference:     ref,
		PaymentMethod: models.PaymentMethodWallet,
		AlertType:     models.AlertDebit,
	}
	if err := s.settlements.CreateWalletCheckout(userID, order, items, txn); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	s.publish(ctx, events.OrderCreated, map[string]interface{}{
		"order_id":  order.ID,
		"user_id":   userID,
		"amount":    total,
		"method":    models.PaymentMethodWallet,
		"reference": ref,
	})
	s.notify(userID, map[string]interface{}{
		"type":      "wallet_payment",
		"order_id":  order.ID,
		"amount":    total,
		"reference": ref,
	})
	return &CheckoutResult{
		Message:   "wallet payment successful",
		Reference: ref,
		OrderID:   order.ID,
		Amount:    total,
	}, nil
}

// InitializeWalletTopUp starts a gateway payment that will credit the user's
// wallet once verified. The transaction stays pending until then.
func (s *BillingService) InitializeWalletTopUp(ctx context.Context, userID uint, email string, amount float64) (*TopUpResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	init, err := s.gateway.Initialize(gctx, toMinorUnits(amount), email)
	if err != nil {
		logrus.WithError(err).Warn("wallet top-up initiation rejected by gateway")
		return nil, ErrPaymentInit
	}
	txn := &models.Transaction{
		UserID:        userID,
		Amount:        amount,
		Status:        models.TransactionPending,
		Reference:     init.Reference,
		PaymentMethod: models.PaymentMethodWallet,
		AlertType:     models.AlertCredit,
	}
	if err := s.transactions.Create(txn); err != nil {
		return nil, err
	}
	return &TopUpResult{AuthorizationURL: init.AuthorizationURL, Reference: init.Reference}, nil
}

// VerifyTransaction reconciles a transaction after the gateway settles. The
// pending -> success transition happens at most once: re-verifying an already
// settled reference acknowledges without mutating anything, so a wallet
// top-up can never be credited twice.
func (s *BillingService) VerifyTransaction(ctx context.Context, reference string, userID uint) (*VerificationResult, error) {
	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	verdict, err := s.gateway.Verify(gctx, reference)
	if err != nil {
		logrus.WithError(err).WithField("reference", reference).Warn("gateway verification failed")
		return nil, ErrVerificationFailed
	}
	if !verdict.Succeeded() {
		return nil, ErrVerificationFailed
	}

	txn, err := s.transactions.GetByReference(reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	if txn.PaymentMethod == models.PaymentMethodPaystack {
		applied, err := s.settlements.MarkGatewaySettled(txn)
		if err != nil {
			return nil, err
		}
		if applied {
			s.publishSettled(ctx, txn)
			s.notify(txn.UserID, map[string]interface{}{
				"type":      "payment_settled",
				"reference": reference,
				"amount":    txn.Amount,
			})
		}
		return &VerificationResult{
			Message:   "payment verify successful",
			Reference: reference,
			Amount:    txn.Amount,
		}, nil
	}

	// Wallet top-up path: credit exactly once.
	applied, err := s.settlements.SettleWalletTopUp(txn, userID)
	if err != nil {
		return nil, err
	}
	if applied {
		s.publishSettled(ctx, txn)
		s.notify(userID, map[string]interface{}{
			"type":      "wallet_credited",
			"reference": reference,
			"amount":    txn.Amount,
		})
	}
	return &VerificationResult{
		Message:   "wallet payment verify successful",
		Reference: reference,
		Credited:  applied,
		Amount:    txn.Amount,
	}, nil
}

// Transfer moves funds between two user wallets. Validation order: sender
// wallet exists, receiver wallet exists, not a self-transfer, then the
// balance check under the row lock inside the ledger.
func (s *BillingService) Transfer(ctx context.Context, senderID, receiverID uint, amount float64) (*TransferResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if _, err := s.wallets.GetByUserID(senderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	if _, err := s.wallets.GetByUserID(receiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	if senderID == receiverID {
		return nil, ErrSelfTransfer
	}
	debit, credit, err := s.wallets.Transfer(senderID, receiverID, amount, uuid.NewString(), uuid.NewString())
	if err != nil {
		return nil, err
	}
	s.notify(receiverID, map[string]interface{}{
		"type":   "wallet_credited",
		"amount": amount,
	})
	s.publish(ctx, events.PaymentSettled, map[string]interface{}{
		"type":        "transfer",
		"sender_id":   senderID,
		"receiver_id": receiverID,
		"amount":      amount,
	})
	return &TransferResult{Debit: debit, Credit: credit}, nil
}

func (s *BillingService) GetWallet(userID uint) (*models.Wallet, error) {
	w, err := s.wallets.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (s *BillingService) GetWalletByID(id uint) (*models.Wallet, error) {
	w, err := s.wallets.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return w, nil
}

func (s *BillingService) GetOrder(id uint) (*models.Order, error) {
	o, err := s.orders.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func (s *BillingService) GetTransaction(id uint) (*models.Transaction, error) {
	t, err := s.transactions.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *BillingService) ListOrders(filter repository.OrderFilter, page, limit int) ([]models.Order, *repository.Pagination, error) {
	return s.orders.List(filter, page, limit)
}

func (s *BillingService) ListTransactions(filter repository.TransactionFilter, page, limit int) ([]models.Transaction, *repository.Pagination, error) {
	return s.transactions.List(filter, page, limit)
}

func (s *BillingService) UpdateOrderTracker(id uint, patch repository.TrackerPatch) (*models.Order, error) {
	o, err := s.orders.UpdateTracker(id, patch)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func (s *BillingService) publishSettled(ctx context.Context, txn *models.Transaction) {
	payload := map[string]interface{}{
		"transaction_id": txn.ID,
		"user_id":        txn.UserID,
		"amount":         txn.Amount,
		"method":         txn.PaymentMethod,
		"reference":      txn.Reference,
	}
	if txn.OrderID != nil {
		payload["order_id"] = *txn.OrderID
	}
	s.publish(ctx, events.PaymentSettled, payload)
}

func (s *BillingService) publish(ctx context.Context, key string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, key, payload); err != nil {
		logrus.WithError(err).WithField("routing_key", key).Warn("event publish failed")
	}
}

func (s *BillingService) notify(userID uint, payload map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyUser(userID, payload)
}

// toMinorUnits converts a major-unit amount to the integer minor units the
// gateway expects (naira -> kobo).
func toMinorUnits(amount float64) int64 {
	return int64(amount*100 + 0.5)
}
