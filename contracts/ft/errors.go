package ft

import (
	"errors"

	"github.com/nspcc-dev/ft-ledger/common"
)

// Errors returned by the contract methods.
var (
	ErrInsufficientBalance         = errors.New("insufficient balance")
	ErrInsufficientStorageDeposit  = errors.New("insufficient storage deposit")
	ErrInsufficientAttachedPayment = errors.New("insufficient attached payment")
	ErrReceiverNotRegistered       = errors.New("receiver is not registered")
	ErrAccountHasBalance           = errors.New("account has positive balance")
	ErrZeroAmount                  = errors.New("amount must be positive")
	ErrSelfTransfer                = errors.New("sender and receiver must differ")
	ErrNotAuthorized               = errors.New("not authorized")
	ErrAlreadyInitialized          = errors.New("already initialized")
	ErrNotInitialized              = errors.New("not initialized")
	ErrInvalidAccount              = errors.New("invalid account")
	ErrInvalidMetadata             = errors.New("invalid metadata")
	ErrInvalidArguments            = errors.New("invalid arguments")

	ErrOverflow      = common.ErrOverflow
	ErrInvalidAmount = common.ErrInvalidAmount
)
