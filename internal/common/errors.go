package common

import "errors"

// Every failure below is recoverable by the caller and leaves state unchanged.
var (
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrEntityInCooldown      = errors.New("entity in cooldown")
	ErrUnknownItem           = errors.New("unknown item type")
)
