package domain

type OrderState string

const (
	StatePending           OrderState = "pending"
	StateEligibilityFailed OrderState = "eligibility_failed"
	StateStockFailed       OrderState = "stock_failed"
	StatePaymentAuthorized OrderState = "payment_authorized"
	StatePaymentCaptured   OrderState = "payment_captured"
	StatePaymentFailed     OrderState = "payment_failed"
	StateCompleted         OrderState = "completed"
	StateCancelled         OrderState = "cancelled"
)

func (s OrderState) String() string { return string(s) }

// Terminal reports whether no further transitions may leave s.
// payment_failed is not listed: it may re-enter payment_authorized while
// the retry budget lasts; the orchestrator moves it to cancelled once
// the budget is spent.
func (s OrderState) Terminal() bool {
	switch s {
	case StateCompleted, StateCancelled, StateEligibilityFailed, StateStockFailed:
		return true
	}
	return false
}

// transitions is the full legal transition table for an order.
var transitions = map[OrderState][]OrderState{
	StatePending: {
		StateEligibilityFailed,
		StateStockFailed,
		StatePaymentAuthorized,
		StatePaymentFailed, // authorization rejected or timed out past budget
		StateCancelled,     // user cancel, honored only while pending
	},
	StatePaymentAuthorized: {
		StatePaymentCaptured,
		StatePaymentFailed,
		StateCancelled, // only via the void flow, never a direct override
	},
	StatePaymentFailed: {
		StatePaymentAuthorized, // bounded retry
		StateCancelled,
	},
	StatePaymentCaptured: {
		StateCompleted,
		StateStockFailed, // commit-time compare-and-decrement lost the race
	},
}

// CanTransition reports whether from -> to is in the legal table.
func CanTransition(from, to OrderState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderItem is a line snapshotted into the order at checkout time.
// It never changes afterwards even if catalog prices move.
type OrderItem struct {
	ProductID string `db:"product_id" json:"productId"`
	Qty       int    `db:"qty" json:"qty"`
	UnitMinor int64  `db:"unit_price_minor" json:"unitMinor"`
}

type Order struct {
	ID             string     `db:"id" json:"orderId"`
	WalletAddress  string     `db:"wallet_address" json:"walletAddress"`
	IdempotencyKey string     `db:"idempotency_key" json:"-"`
	TotalMinor     int64      `db:"total_minor" json:"totalMinor"`
	State          OrderState `db:"state" json:"state"`

	// Reason carries user-actionable detail for failure states, e.g.
	// which product and which collection failed eligibility.
	Reason    string      `db:"reason" json:"reason,omitempty"`
	Attempts  int         `db:"attempts" json:"-"`
	Version   int         `db:"version" json:"-"`
	AuthRef   string      `db:"auth_ref" json:"-"`
	CreatedAt string      `db:"created_at" json:"createdAt"`
	UpdatedAt string      `db:"updated_at" json:"updatedAt"`
	Items     []OrderItem `json:"lineItems"`
}
