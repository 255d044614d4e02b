package service

import (
	"context"

	"soko/internal/models"
	"soko/internal/repository"
	"soko/pkg/payment"

	"github.com/stretchr/testify/mock"
)

type mockProductCatalog struct {
	mock.Mock
}

func (m *mockProductCatalog) GetByID(id uint) (*models.Product, error) {
	args := m.Called(id)
	if p := args.Get(0); p != nil {
		return p.(*models.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockWalletStore struct {
	mock.Mock
}

func (m *mockWalletStore) GetByID(id uint) (*models.Wallet, error) {
	args := m.Called(id)
	if w := args.Get(0); w != nil {
		return w.(*models.Wallet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWalletStore) GetByUserID(userID uint) (*models.Wallet, error) {
	args := m.Called(userID)
	if w := args.Get(0); w != nil {
		return w.(*models.Wallet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWalletStore) GetOrCreate(userID uint) (*models.Wallet, error) {
	args := m.Called(userID)
	if w := args.Get(0); w != nil {
		return w.(*models.Wallet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWalletStore) Transfer(senderID, receiverID uint, amount float64, debitRef, creditRef string) (*models.Transaction, *models.Transaction, error) {
	args := m.Called(senderID, receiverID, amount, debitRef, creditRef)
	var debit, credit *models.Transaction
	if d := args.Get(0); d != nil {
		debit = d.(*models.Transaction)
	}
	if c := args.Get(1); c != nil {
		credit = c.(*models.Transaction)
	}
	return debit, credit, args.Error(2)
}

type mockOrderStore struct {
	mock.Mock
}

func (m *mockOrderStore) GetByID(id uint) (*models.Order, error) {
	args := m.Called(id)
	if o := args.Get(0); o != nil {
		return o.(*models.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderStore) List(filter repository.OrderFilter, page, limit int) ([]models.Order, *repository.Pagination, error) {
	args := m.Called(filter, page, limit)
	var orders []models.Order
	if o := args.Get(0); o != nil {
		orders = o.([]models.Order)
	}
	var pg *repository.Pagination
	if p := args.Get(1); p != nil {
		pg = p.(*repository.Pagination)
	}
	return orders, pg, args.Error(2)
}

func (m *mockOrderStore) UpdateTracker(id uint, patch repository.TrackerPatch) (*models.Order, error) {
	args := m.Called(id, patch)
	if o := args.Get(0); o != nil {
		return o.(*models.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockTransactionStore struct {
	mock.Mock
}

func (m *mockTransactionStore) Create(t *models.Transaction) error {
	args := m.Called(t)
	return args.Error(0)
}

func (m *mockTransactionStore) GetByID(id uint) (*models.Transaction, error) {
	args := m.Called(id)
	if t := args.Get(0); t != nil {
		return t.(*models.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTransactionStore) GetByReference(reference string) (*models.Transaction, error) {
	args := m.Called(reference)
	if t := args.Get(0); t != nil {
		return t.(*models.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTransactionStore) List(filter repository.TransactionFilter, page, limit int) ([]models.Transaction, *repository.Pagination, error) {
	args := m.Called(filter, page, limit)
	var txns []models.Transaction
	if t := args.Get(0); t != nil {
		txns = t.([]models.Transaction)
	}
	var pg *repository.Pagination
	if p := args.Get(1); p != nil {
		pg = p.(*repository.Pagination)
	}
	return txns, pg, args.Error(2)
}

type mockSettlementStore struct {
	mock.Mock
}

func (m *mockSettlementStore) CreateGatewayCheckout(order *models.Order, items []models.OrderItem, txn *models.Transaction) error {
	args := m.Called(order, items, txn)
	return args.Error(0)
}

func (m *mockSettlementStore) CreateWalletCheckout(userID uint, order *models.Order, items []models.OrderItem, txn *models.Transaction) error {
	args := m.Called(userID, order, items, txn)
	return args.Error(0)
}

func (m *mockSettlementStore) MarkGatewaySettled(txn *models.Transaction) (bool, error) {
	args := m.Called(txn)
	return args.Bool(0), args.Error(1)
}

func (m *mockSettlementStore) SettleWalletTopUp(txn *models.Transaction, userID uint) (bool, error) {
	args := m.Called(txn, userID)
	return args.Bool(0), args.Error(1)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Initialize(ctx context.Context, amountMinor int64, email string) (*payment.InitializeResponse, error) {
	args := m.Called(ctx, amountMinor, email)
	if r := args.Get(0); r != nil {
		return r.(*payment.InitializeResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) Verify(ctx context.Context, reference string) (*payment.VerifyResponse, error) {
	args := m.Called(ctx, reference)
	if r := args.Get(0); r != nil {
		return r.(*payment.VerifyResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyUser(userID uint, payload interface{}) {
	m.Called(userID, payload)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}
