package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"soko/internal/events"
	"soko/internal/models"
	"soko/pkg/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type billingMocks struct {
	products     *mockProductCatalog
	wallets      *mockWalletStore
	orders       *mockOrderStore
	transactions *mockTransactionStore
	settlements  *mockSettlementStore
	gateway      *mockGateway
}

func newBillingService(t *testing.T) (*BillingService, *billingMocks) {
	t.Helper()
	m := &billingMocks{
		products:     &mockProductCatalog{},
		wallets:      &mockWalletStore{},
		orders:       &mockOrderStore{},
		transactions: &mockTransactionStore{},
		settlements:  &mockSettlementStore{},
		gateway:      &mockGateway{},
	}
	svc := NewBillingService(m.products, m.wallets, m.orders, m.transactions, m.settlements, m.gateway, time.Second)
	return svc, m
}

func (m *billingMocks) assertExpectations(t *testing.T) {
	t.Helper()
	m.products.AssertExpectations(t)
	m.wallets.AssertExpectations(t)
	m.orders.AssertExpectations(t)
	m.transactions.AssertExpectations(t)
	m.settlements.AssertExpectations(t)
	m.gateway.AssertExpectations(t)
}

func checkoutFixture(method string) CheckoutRequest {
	return CheckoutRequest{
		PaymentMethod:   method,
		DeliveryAddress: "12 Allen Avenue, Ikeja",
		Items: []CheckoutItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	}
}

func TestInitializeCheckout_Gateway(t *testing.T) {
	tests := []struct {
		name       string
		req        CheckoutRequest
		setupMocks func(*billingMocks)
		wantErr    error
		check      func(*testing.T, *CheckoutResult)
	}{
		{
			name: "successful gateway checkout",
			req:  checkoutFixture(models.PaymentMethodPaystack),
			setupMocks: func(m *billingMocks) {
				m.products.On("GetByID", uint(1)).Return(&models.Product{ID: 1, Price: 1500}, nil)
				m.products.On("GetByID", uint(2)).Return(&models.Product{ID: 2, Price: 500}, nil)
				// 2*1500 + 1*500 = 3500 major -> 350000 minor
				m.gateway.On("Initialize", mock.Anything, int64(350000), "buyer@example.com").
					Return(&payment.InitializeResponse{
						AuthorizationURL: "https://checkout.paystack.com/abc123",
						Reference:        "ps_ref_1",
					}, nil)
				m.settlements.On("CreateGatewayCheckout",
					mock.AnythingOfType("*models.Order"),
					mock.AnythingOfType("[]models.OrderItem"),
					mock.AnythingOfType("*models.Transaction"),
				).Run(func(args mock.Arguments) {
					order := args.Get(0).(*models.Order)
					order.ID = 42
					txn := args.Get(2).(*models.Transaction)
					assert.Equal(t, models.TransactionPending, txn.Status)
					assert.Equal(t, models.PaymentMethodPaystack, txn.PaymentMethod)
					assert.Equal(t, "ps_ref_1", txn.Reference)
					assert.Equal(t, 3500.0, txn.Amount)
				}).Return(nil)
			},
			check: func(t *testing.T, res *CheckoutResult) {
				assert.Equal(t, "https://checkout.paystack.com/abc123", res.AuthorizationURL)
				assert.Equal(t, "ps_ref_1", res.Reference)
				assert.Equal(t, uint(42), res.OrderID)
				assert.Equal(t, 3500.0, res.Amount)
			},
		},
		{
			name: "gateway decline persists nothing",
			req:  checkoutFixture(models.PaymentMethodPaystack),
			setupMocks: func(m *billingMocks) {
				m.products.On("GetByID", uint(1)).Return(&models.Product{ID: 1, Price: 1500}, nil)
				m.products.On("GetByID", uint(2)).Return(&models.Product{ID: 2, Price: 500}, nil)
				m.gateway.On("Initialize", mock.Anything, int64(350000), "buyer@example.com").
					Return(nil, errors.New("declined"))
			},
			wantErr: ErrPaymentInit,
		},
		{
			name: "unknown product",
			req:  checkoutFixture(models.PaymentMethodPaystack),
			setupMocks: func(m *billingMocks) {
				m.products.On("GetByID", uint(1)).Return(nil, gorm.ErrRecordNotFound)
			},
			wantErr: ErrProductNotFound,
		},
		{
			name: "zero quantity line",
			req: CheckoutRequest{
				PaymentMethod:   models.PaymentMethodPaystack,
				DeliveryAddress: "12 Allen Avenue, Ikeja",
				Items:           []CheckoutItem{{ProductID: 1, Quantity: 0}},
			},
			setupMocks: func(m *billingMocks) {},
			wantErr:    ErrInvalidAmount,
		},
		{
			name: "unsupported payment method",
			req: CheckoutRequest{
				PaymentMethod:   "cash",
				DeliveryAddress: "12 Allen Avenue, Ikeja",
				Items:           []CheckoutItem{{ProductID: 1, Quantity: 1}},
			},
			setupMocks: func(m *billingMocks) {},
			wantErr:    ErrInvalidPaymentMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newBillingService(t)
			tt.setupMocks(m)

			res, err := svc.InitializeCheckout(context.Background(), 7, "buyer@example.com", tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
			} else {
				assert.NoError(t, err)
				tt.check(t, res)
			}
			m.assertExpectations(t)
			// no order, line or transaction rows outside the settlement unit
			m.settlements.AssertNotCalled(t, "CreateWalletCheckout", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestInitializeCheckout_Wallet(t *testing.T) {
	t.Run("successful wallet checkout", func(t *testing.T) {
		svc, m := newBillingService(t)
		notifier := &mockNotifier{}
		svc.SetNotifier(notifier)

		m.products.On("GetByID", uint(1)).Return(&models.Product{ID: 1, Price: 1500}, nil)
		m.products.On("GetByID", uint(2)).Return(&models.Product{ID: 2, Price: 500}, nil)
		m.settlements.On("CreateWalletCheckout",
			uint(7),
			mock.AnythingOfType("*models.Order"),
			mock.AnythingOfType("[]models.OrderItem"),
			mock.AnythingOfType("*models.Transaction"),
		).Run(func(args mock.Arguments) {
			order := args.Get(1).(*models.Order)
			order.ID = 9
			items := args.Get(2).([]models.OrderItem)
			assert.Len(t, items, 2)
			txn := args.Get(3).(*models.Transaction)
			assert.Equal(t, models.TransactionSuccess, txn.Status)
			assert.Equal(t, models.PaymentMethodWallet, txn.PaymentMethod)
			assert.Equal(t, models.AlertDebit, txn.AlertType)
			assert.NotEmpty(t, txn.Reference)
		}).Return(nil)
		notifier.On("NotifyUser", uint(7), mock.Anything).Return()

		res, err := svc.InitializeCheckout(context.Background(), 7, "buyer@example.com", checkoutFixture(models.PaymentMethodWallet))

		assert.NoError(t, err)
		assert.Equal(t, uint(9), res.OrderID)
		assert.Equal(t, 3500.0, res.Amount)
		assert.NotEmpty(t, res.Reference)
		assert.Empty(t, res.AuthorizationURL)
		m.assertExpectations(t)
		notifier.AssertExpectations(t)
		m.gateway.AssertNotCalled(t, "Initialize", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("insufficient balance leaves no order", func(t *testing.T) {
		svc, m := newBillingService(t)

		m.products.On("GetByID", uint(1)).Return(&models.Product{ID: 1, Price: 1500}, nil)
		m.products.On("GetByID", uint(2)).Return(&models.Product{ID: 2, Price: 500}, nil)
		m.settlements.On("CreateWalletCheckout", uint(7), mock.Anything, mock.Anything, mock.Anything).
			Return(ErrInsufficientBalance)

		res, err := svc.InitializeCheckout(context.Background(), 7, "buyer@example.com", checkoutFixture(models.PaymentMethodWallet))

		assert.ErrorIs(t, err, ErrInsufficientBalance)
		assert.Nil(t, res)
		m.assertExpectations(t)
	})

	t.Run("missing wallet", func(t *testing.T) {
		svc, m := newBillingService(t)

		m.products.On("GetByID", uint(1)).Return(&models.Product{ID: 1, Price: 1500}, nil)
		m.products.On("GetByID", uint(2)).Return(&models.Product{ID: 2, Price: 500}, nil)
		m.settlements.On("CreateWalletCheckout", uint(7), mock.Anything, mock.Anything, mock.Anything).
			Return(gorm.ErrRecordNotFound)

		_, err := svc.InitializeCheckout(context.Background(), 7, "buyer@example.com", checkoutFixture(models.PaymentMethodWallet))

		assert.ErrorIs(t, err, ErrWalletNotFound)
		m.assertExpectations(t)
	})

	t.Run("suspended wallet", func(t *testing.T) {
		svc, m := newBillingService(t)

		m.products.On("GetByID", uint(1)).Return(&models.Product{ID: 1, Price: 1500}, nil)
		m.products.On("GetByID", uint(2)).Return(&models.Product{ID: 2, Price: 500}, nil)
		m.settlements.On("CreateWalletCheckout", uint(7), mock.Anything, mock.Anything, mock.Anything).
			Return(ErrWalletSuspended)

		_, err := svc.InitializeCheckout(context.Background(), 7, "buyer@example.com", checkoutFixture(models.PaymentMethodWallet))

		assert.ErrorIs(t, err, ErrWalletSuspended)
		m.assertExpectations(t)
	})
}

func TestInitializeWalletTopUp(t *testing.T) {
	t.Run("creates pending credit transaction", func(t *testing.T) {
		svc, m := newBillingService(t)

		m.gateway.On("Initialize", mock.Anything, int64(250000), "buyer@example.com").
			Return(&payment.InitializeResponse{
				AuthorizationURL: "https://checkout.paystack.com/topup",
				Reference:        "ps_topup_1",
			}, nil)
		m.transactions.On("Create", mock.AnythingOfType("*models.Transaction")).
			Run(func(args mock.Arguments) {
				txn := args.Get(0).(*models.Transaction)
				assert.Equal(t, models.TransactionPending, txn.Status)
				assert.Equal(t, models.PaymentMethodWallet, txn.PaymentMethod)
				assert.Equal(t, models.AlertCredit, txn.AlertType)
				assert.Equal(t, 2500.0, txn.Amount)
				assert.Nil(t, txn.OrderID)
			}).Return(nil)

		res, err := svc.InitializeWalletTopUp(context.Background(), 7, "buyer@example.com", 2500)

		assert.NoError(t, err)
		assert.Equal(t, "ps_topup_1", res.Reference)
		m.assertExpectations(t)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		svc, m := newBillingService(t)

		_, err := svc.InitializeWalletTopUp(context.Background(), 7, "buyer@example.com", 0)

		assert.ErrorIs(t, err, ErrInvalidAmount)
		m.gateway.AssertNotCalled(t, "Initialize", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("gateway decline", func(t *testing.T) {
		svc, m := newBillingService(t)

		m.gateway.On("Initialize", mock.Anything, int64(100000), "buyer@example.com").
			Return(nil, errors.New("declined"))

		_, err := svc.InitializeWalletTopUp(context.Background(), 7, "buyer@example.com", 1000)

		assert.ErrorIs(t, err, ErrPaymentInit)
		m.transactions.AssertNotCalled(t, "Create", mock.Anything)
	})
}

func TestVerifyTransaction(t *testing.T) {
	succeeded := &payment.VerifyResponse{Status: "success", AmountMinor: 350000}

	t.Run("gateway order payment settles once", func(t *testing.T) {
		svc, m := newBillingService(t)
		orderID := uint(42)
		txn := &models.Transaction{
			ID: 5, UserID: 7, OrderID: &orderID, Amount: 3500,
			Status: models.TransactionPending, Reference: "ps_ref_1",
			PaymentMethod: models.PaymentMethodPaystack,
		}

		m.gateway.On("Verify", mock.Anything, "ps_ref_1").Return(succeeded, nil)
		m.transactions.On("GetByReference", "ps_ref_1").Return(txn, nil)
		m.settlements.On("MarkGatewaySettled", txn).Return(true, nil)

		res, err := svc.VerifyTransaction(context.Background(), "ps_ref_1", 7)

		assert.NoError(t, err)
		assert.Equal(t, "ps_ref_1", res.Reference)
		assert.Equal(t, 3500.0, res.Amount)
		m.assertExpectations(t)
	})

	t.Run("re-verifying a settled top-up does not credit again", func(t *testing.T) {
		svc, m := newBillingService(t)
		notifier := &mockNotifier{}
		svc.SetNotifier(notifier)
		txn := &models.Transaction{
			ID: 6, UserID: 7, Amount: 2500,
			Status: models.TransactionSuccess, Reference: "ps_topup_1",
			PaymentMethod: models.PaymentMethodWallet, AlertType: models.AlertCredit,
		}

		m.gateway.On("Verify", mock.Anything, "ps_topup_1").Return(succeeded, nil)
		m.transactions.On("GetByReference", "ps_topup_1").Return(txn, nil)
		m.settlements.On("SettleWalletTopUp", txn, uint(7)).Return(false, nil)

		res, err := svc.VerifyTransaction(context.Background(), "ps_topup_1", 7)

		assert.NoError(t, err)
		assert.False(t, res.Credited)
		notifier.AssertNotCalled(t, "NotifyUser", mock.Anything, mock.Anything)
		m.assertExpectations(t)
	})

	t.Run("pending top-up credits the wallet", func(t *testing.T) {
		svc, m := newBillingService(t)
		notifier := &mockNotifier{}
		svc.SetNotifier(notifier)
		txn := &models.Transaction{
			ID: 6, UserID: 7, Amount: 2500,
			Status: models.TransactionPending, Reference: "ps_topup_1",
			PaymentMethod: models.PaymentMethodWallet, AlertType: models.AlertCredit,
		}

		m.gateway.On("Verify", mock.Anything, "ps_topup_1").Return(succeeded, nil)
		m.transactions.On("GetByReference", "ps_topup_1").Return(txn, nil)
		m.settlements.On("SettleWalletTopUp", txn, uint(7)).Return(true, nil)
		notifier.On("NotifyUser", uint(7), mock.Anything).Return()

		res, err := svc.VerifyTransaction(context.Background(), "ps_topup_1", 7)

		assert.NoError(t, err)
		assert.True(t, res.Credited)
		assert.Equal(t, 2500.0, res.Amount)
		m.assertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("unknown reference", func(t *testing.T) {
		svc, m := newBillingService(t)

		m.gateway.On("Verify", mock.Anything, "missing").Return(succeeded, nil)
		m.transactions.On("GetByReference", "missing").Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.VerifyTransaction(context.Background(), "missing", 7)

		assert.ErrorIs(t, err, ErrTransactionNotFound)
		m.assertExpectations(t)
	})

	t.Run("gateway reports failure", func(t *testing.T) {
		svc, m := newBillingService(t)

		m.gateway.On("Verify", mock.Anything, "ps_ref_1").
			Return(&payment.VerifyResponse{Status: "abandoned"}, nil)

		_, err := svc.VerifyTransaction(context.Background(), "ps_ref_1", 7)

		assert.ErrorIs(t, err, ErrVerificationFailed)
		m.transactions.AssertNotCalled(t, "GetByReference", mock.Anything)
	})

	t.Run("gateway unreachable", func(t *testing.T) {
		svc, m := newBillingService(t)

		m.gateway.On("Verify", mock.Anything, "ps_ref_1").Return(nil, errors.New("timeout"))

		_, err := svc.VerifyTransaction(context.Background(), "ps_ref_1", 7)

		assert.ErrorIs(t, err, ErrVerificationFailed)
	})
}

func TestTransfer(t *testing.T) {
	t.Run("successful transfer", func(t *testing.T) {
		svc, m := newBillingService(t)
		notifier := &mockNotifier{}
		svc.SetNotifier(notifier)
		debit := &models.Transaction{ID: 1, UserID: 7, Amount: 200, AlertType: models.AlertDebit}
		credit := &models.Transaction{ID: 2, UserID: 8, Amount: 200, AlertType: models.AlertCredit}

		m.wallets.On("GetByUserID", uint(7)).Return(&models.Wallet{ID: 1, UserID: 7, Balance: 500}, nil)
		m.wallets.On("GetByUserID", uint(8)).Return(&models.Wallet{ID: 2, UserID: 8}, nil)
		m.wallets.On("Transfer", uint(7), uint(8), 200.0, mock.AnythingOfType("string"), mock.AnythingOfType("string")).
			Return(debit, credit, nil)
		notifier.On("NotifyUser", uint(8), mock.Anything).Return()

		res, err := svc.Transfer(context.Background(), 7, 8, 200)

		assert.NoError(t, err)
		assert.Equal(t, debit, res.Debit)
		assert.Equal(t, credit, res.Credit)
		m.assertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("sender wallet missing", func(t *testing.T) {
		svc, m := newBillingService(t)

		m.wallets.On("GetByUserID", uint(7)).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Transfer(context.Background(), 7, 8, 200)

		assert.ErrorIs(t, err, ErrWalletNotFound)
		m.wallets.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("receiver wallet missing", func(t *testing.T) {
		svc, m := newBillingService(t)

		m.wallets.On("GetByUserID", uint(7)).Return(&models.Wallet{ID: 1, UserID: 7}, nil)
		m.wallets.On("GetByUserID", uint(8)).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Transfer(context.Background(), 7, 8, 200)

		assert.ErrorIs(t, err, ErrWalletNotFound)
	})

	t.Run("self transfer rejected after wallet checks", func(t *testing.T) {
		svc, m := newBillingService(t)

		m.wallets.On("GetByUserID", uint(7)).Return(&models.Wallet{ID: 1, UserID: 7}, nil).Twice()

		_, err := svc.Transfer(context.Background(), 7, 7, 200)

		assert.ErrorIs(t, err, ErrSelfTransfer)
		m.wallets.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("insufficient balance surfaces from ledger", func(t *testing.T) {
		svc, m := newBillingService(t)

		m.wallets.On("GetByUserID", uint(7)).Return(&models.Wallet{ID: 1, UserID: 7, Balance: 50}, nil)
		m.wallets.On("GetByUserID", uint(8)).Return(&models.Wallet{ID: 2, UserID: 8}, nil)
		m.wallets.On("Transfer", uint(7), uint(8), 200.0, mock.AnythingOfType("string"), mock.AnythingOfType("string")).
			Return(nil, nil, ErrInsufficientBalance)

		_, err := svc.Transfer(context.Background(), 7, 8, 200)

		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		svc, m := newBillingService(t)

		_, err := svc.Transfer(context.Background(), 7, 8, -5)

		assert.ErrorIs(t, err, ErrInvalidAmount)
		m.wallets.AssertNotCalled(t, "GetByUserID", mock.Anything)
	})
}

func TestEventPublishing(t *testing.T) {
	t.Run("wallet checkout emits order.created", func(t *testing.T) {
		svc, m := newBillingService(t)
		pub := &mockPublisher{}
		svc.SetEventPublisher(pub)

		m.products.On("GetByID", uint(1)).Return(&models.Product{ID: 1, Price: 1500}, nil)
		m.products.On("GetByID", uint(2)).Return(&models.Product{ID: 2, Price: 500}, nil)
		m.settlements.On("CreateWalletCheckout", uint(7), mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				args.Get(1).(*models.Order).ID = 9
			}).Return(nil)
		pub.On("Publish", mock.Anything, events.OrderCreated, mock.Anything).
			Run(func(args mock.Arguments) {
				payload := args.Get(2).(map[string]interface{})
				assert.Equal(t, uint(9), payload["order_id"])
				assert.Equal(t, models.PaymentMethodWallet, payload["method"])
			}).Return(nil)

		_, err := svc.InitializeCheckout(context.Background(), 7, "buyer@example.com", checkoutFixture(models.PaymentMethodWallet))

		assert.NoError(t, err)
		pub.AssertExpectations(t)
	})

	t.Run("settled verification emits payment.settled", func(t *testing.T) {
		svc, m := newBillingService(t)
		pub := &mockPublisher{}
		svc.SetEventPublisher(pub)
		orderID := uint(42)
		txn := &models.Transaction{
			ID: 5, UserID: 7, OrderID: &orderID, Amount: 3500,
			Status: models.TransactionPending, Reference: "ps_ref_1",
			PaymentMethod: models.PaymentMethodPaystack,
		}

		m.gateway.On("Verify", mock.Anything, "ps_ref_1").
			Return(&payment.VerifyResponse{Status: "success"}, nil)
		m.transactions.On("GetByReference", "ps_ref_1").Return(txn, nil)
		m.settlements.On("MarkGatewaySettled", txn).Return(true, nil)
		pub.On("Publish", mock.Anything, events.PaymentSettled, mock.Anything).
			Run(func(args mock.Arguments) {
				payload := args.Get(2).(map[string]interface{})
				assert.Equal(t, "ps_ref_1", payload["reference"])
				assert.Equal(t, uint(42), payload["order_id"])
			}).Return(nil)

		_, err := svc.VerifyTransaction(context.Background(), "ps_ref_1", 7)

		assert.NoError(t, err)
		pub.AssertExpectations(t)
	})

	t.Run("already settled verification emits nothing", func(t *testing.T) {
		svc, m := newBillingService(t)
		pub := &mockPublisher{}
		svc.SetEventPublisher(pub)
		txn := &models.Transaction{
			ID: 6, UserID: 7, Amount: 2500,
			Status: models.TransactionSuccess, Reference: "ps_topup_1",
			PaymentMethod: models.PaymentMethodWallet, AlertType: models.AlertCredit,
		}

		m.gateway.On("Verify", mock.Anything, "ps_topup_1").
			Return(&payment.VerifyResponse{Status: "success"}, nil)
		m.transactions.On("GetByReference", "ps_topup_1").Return(txn, nil)
		m.settlements.On("SettleWalletTopUp", txn, uint(7)).Return(false, nil)

		_, err := svc.VerifyTransaction(context.Background(), "ps_topup_1", 7)

		assert.NoError(t, err)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetWalletByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc, m := newBillingService(t)
		m.wallets.On("GetByID", uint(3)).Return(&models.Wallet{ID: 3, UserID: 7, Balance: 500}, nil)

		w, err := svc.GetWalletByID(3)

		assert.NoError(t, err)
		assert.Equal(t, uint(3), w.ID)
	})

	t.Run("missing", func(t *testing.T) {
		svc, m := newBillingService(t)
		m.wallets.On("GetByID", uint(3)).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.GetWalletByID(3)

		assert.ErrorIs(t, err, ErrWalletNotFound)
	})
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(100000), toMinorUnits(1000))
	assert.Equal(t, int64(2550), toMinorUnits(25.5))
	assert.Equal(t, int64(1099), toMinorUnits(10.99))
}
