package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the checkout pipeline. Handlers map these onto
// HTTP statuses; services wrap them with %w and per-call detail.
var (
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrEmptyCart         = errors.New("cart is empty, nothing to checkout")
	ErrOracleUnavailable = errors.New("ownership oracle unavailable")
	ErrEligibilityFailed = errors.New("wallet lacks required NFT")
	ErrStockFailed       = errors.New("insufficient stock")
	ErrPaymentTimeout    = errors.New("payment collaborator timed out")
	ErrPaymentRejected   = errors.New("payment rejected")
	ErrIllegalTransition = errors.New("illegal order state transition")
	ErrStaleTransition   = errors.New("order state moved concurrently")
	ErrOrderNotFound     = errors.New("order not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrCancelNotAllowed  = errors.New("order can no longer be cancelled directly")
)

// Retryable reports whether err is transient and worth another attempt.
// Eligibility and stock failures are excluded: they need user action.
func Retryable(err error) bool {
	return errors.Is(err, ErrOracleUnavailable) || errors.Is(err, ErrPaymentTimeout)
}

// EligibilityError records which line item failed and what it required,
// so the caller can remediate (switch wallet) and retry checkout.
func EligibilityError(productID, collection string) error {
	return fmt.Errorf("product %s requires collection %s: %w", productID, collection, ErrEligibilityFailed)
}

// StockError records which line item could not be fulfilled.
func StockError(productID string, want, have int) error {
	return fmt.Errorf("product %s: need %d, have %d: %w", productID, want, have, ErrStockFailed)
}
