package service

import (
	"errors"

	"soko/internal/repository"
)

// Failure taxonomy surfaced to handlers. Handlers map these onto HTTP
// statuses; anything unrecognized becomes a 500.
var (
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrRatingNotFound       = errors.New("rating not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrInsufficientBalance  = repository.ErrInsufficientBalance
	ErrWalletSuspended      = repository.ErrWalletSuspended
	ErrSelfTransfer         = errors.New("cannot transfer to yourself")
	ErrInvalidPaymentMethod = errors.New("unsupported payment method")
	ErrInvalidAmount        = repository.ErrNonPositiveAmount
	ErrPaymentInit          = errors.New("unable to initialise the payment")
	ErrVerificationFailed   = errors.New("unable to verify the transaction")
	ErrEmailExists          = errors.New("email already registered")
	ErrCategoryExists       = errors.New("category name already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
)
