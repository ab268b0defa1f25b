package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"mintmart/internal/domain"
	"mintmart/internal/events"
	"mintmart/internal/payment"
	"mintmart/internal/repos"
)

// CheckoutService drives a cart snapshot through eligibility, stock and
// payment to a terminal order state. Replaying the same idempotency key
// returns the existing order: exactly one execution per key performs
// side effects.
type CheckoutService struct {
	Cart        *CartService
	Catalog     *CatalogService
	Eligibility *EligibilityService
	Orders      *repos.OrderRepo
	Inv         *repos.InventoryRepo
	Pay         payment.Client
	Events      events.Publisher
	Retry       RetryPolicy

	locks keyedLocks
}

func NewCheckoutService(
	cart *CartService,
	catalog *CatalogService,
	elig *EligibilityService,
	orders *repos.OrderRepo,
	inv *repos.InventoryRepo,
	pay payment.Client,
	pub events.Publisher,
	retry RetryPolicy,
) *CheckoutService {
	return &CheckoutService{
		Cart:        cart,
		Catalog:     catalog,
		Eligibility: elig,
		Orders:      orders,
		Inv:         inv,
		Pay:         pay,
		Events:      pub,
		Retry:       retry,
	}
}

// Checkout snapshots the session cart and runs the pipeline. The cart is
// cleared only when the order reaches completed; every other outcome
// leaves cart and stock untouched.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID, wallet, idemKey string) (*domain.Order, error) {
	snap, err := s.Cart.Snapshot(sessionID)
	if err != nil {
		return nil, err
	}
	o, err := s.CheckoutSnapshot(ctx, snap, wallet, idemKey)
	if err != nil {
		return nil, err
	}
	if o.State == domain.StateCompleted {
		if cerr := s.Cart.Clear(sessionID); cerr != nil {
			log.Printf("[checkout] clear cart %s after order %s: %v", sessionID, o.ID, cerr)
		}
	}
	return o, nil
}

// CheckoutSnapshot is the orchestrator contract proper. Validation errors
// (empty cart) return before any order row exists; pipeline failures are
// reported through the returned order's state and reason, not as errors.
func (s *CheckoutService) CheckoutSnapshot(ctx context.Context, snap domain.CartSnapshot, wallet, idemKey string) (*domain.Order, error) {
	// Serialize duplicate submissions so one performs the transitions and
	// the rest observe its result.
	unlock := s.locks.lock(idemKey)
	defer unlock()

	// The replay check runs before validation: a completed checkout clears
	// the cart, and a client retry of the same key must still resolve to
	// the existing order instead of failing on the now-empty cart.
	if existing, err := s.Orders.GetByIdempotencyKey(idemKey); err == nil {
		// Payment was captured but the commit never landed (crash or
		// transient failure). The replay finishes the job.
		if existing.State == domain.StatePaymentCaptured {
			return s.commit(ctx, existing)
		}
		return existing, nil
	} else if err != domain.ErrOrderNotFound {
		return nil, err
	}

	if snap.Empty() {
		return nil, domain.ErrEmptyCart
	}

	o, gates, err := s.createOrder(snap, wallet, idemKey)
	if err != nil {
		// Lost a cross-process race on the key: return the winner's order.
		if repos.IsDuplicateKey(err) {
			return s.Orders.GetByIdempotencyKey(idemKey)
		}
		return nil, err
	}
	s.publish(ctx, s.Events.OrderCreated, o)

	return s.run(ctx, o, gates)
}

// gatedLine is a line item's gating requirement as the catalog reports
// it at order time. Snapshot values are not trusted here: a requirement
// added after the cart captured the product must still be enforced.
type gatedLine struct {
	productID  string
	collection string
	qty        int
}

// createOrder snapshots line items with prices and gating requirements
// re-read from the catalog at this moment, never the values the cart
// captured earlier.
func (s *CheckoutService) createOrder(snap domain.CartSnapshot, wallet, idemKey string) (*domain.Order, []gatedLine, error) {
	o := &domain.Order{
		ID:             uuid.NewString(),
		WalletAddress:  wallet,
		IdempotencyKey: idemKey,
		State:          domain.StatePending,
		Version:        1,
	}
	var gates []gatedLine
	for _, it := range snap.Items {
		p, err := s.Catalog.Product(it.ProductID)
		if err != nil {
			return nil, nil, fmt.Errorf("line %s: %w", it.ProductID, err)
		}
		o.Items = append(o.Items, domain.OrderItem{
			ProductID: p.ID,
			Qty:       it.Qty,
			UnitMinor: p.PriceMinor,
		})
		o.TotalMinor += p.PriceMinor * int64(it.Qty)
		if p.Gated() {
			gates = append(gates, gatedLine{productID: p.ID, collection: p.NFTCollection, qty: it.Qty})
		}
	}
	if err := s.Orders.Create(o); err != nil {
		return nil, nil, err
	}
	return o, gates, nil
}

// run advances a pending order to a terminal state.
func (s *CheckoutService) run(ctx context.Context, o *domain.Order, gates []gatedLine) (*domain.Order, error) {
	// Eligibility per gated line, re-checked now regardless of what any
	// render-time badge claimed.
	for _, g := range gates {
		var ok bool
		err := s.Retry.Do(ctx, func() error {
			var e error
			ok, e = s.Eligibility.Eligible(ctx, o.WalletAddress, g.collection, g.qty)
			return e
		})
		if err != nil {
			return s.fail(ctx, o, domain.StateCancelled, fmt.Sprintf("ownership oracle unavailable for %s", g.productID))
		}
		if !ok {
			reason := domain.EligibilityError(g.productID, g.collection).Error()
			return s.fail(ctx, o, domain.StateEligibilityFailed, reason)
		}
	}

	// Stock pre-check against live counts. The authoritative guard is the
	// compare-and-decrement after capture; this keeps doomed orders from
	// ever touching the payment collaborator.
	for _, it := range o.Items {
		have, err := s.Inv.Qty(it.ProductID)
		if err != nil {
			return nil, err
		}
		if have < it.Qty {
			reason := domain.StockError(it.ProductID, it.Qty, have).Error()
			return s.fail(ctx, o, domain.StateStockFailed, reason)
		}
	}

	// Authorize. The order id is the idempotent reference: replays against
	// the collaborator cannot double-hold funds.
	var ref string
	err := s.Retry.Do(ctx, func() error {
		_ = s.Orders.BumpAttempts(o)
		var e error
		ref, e = s.Pay.Authorize(ctx, o.TotalMinor, o.ID)
		return e
	})
	if err != nil {
		if terr := s.Orders.Transition(o, domain.StatePaymentFailed, "authorization failed: "+err.Error()); terr != nil {
			return nil, terr
		}
		return s.fail(ctx, o, domain.StateCancelled, o.Reason)
	}
	if err := s.Orders.SetAuthRef(o, ref); err != nil {
		return nil, err
	}
	if err := s.Orders.Transition(o, domain.StatePaymentAuthorized, ""); err != nil {
		return nil, err
	}

	// Capture, bouncing payment_authorized -> payment_failed -> back per
	// failed attempt until the budget is spent.
	if err := s.capture(ctx, o); err != nil {
		s.void(ctx, o)
		return s.fail(ctx, o, domain.StateCancelled, o.Reason)
	}

	return s.commit(ctx, o)
}

func (s *CheckoutService) capture(ctx context.Context, o *domain.Order) error {
	attempts := s.Retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		_ = s.Orders.BumpAttempts(o)
		err := s.Pay.Capture(ctx, o.AuthRef)
		if err == nil {
			return s.Orders.Transition(o, domain.StatePaymentCaptured, "")
		}
		if terr := s.Orders.Transition(o, domain.StatePaymentFailed, "capture failed: "+err.Error()); terr != nil {
			return terr
		}
		if !domain.Retryable(err) || i == attempts-1 {
			return err
		}
		if terr := s.Orders.Transition(o, domain.StatePaymentAuthorized, ""); terr != nil {
			return terr
		}
	}
	return domain.ErrPaymentTimeout
}

// commit decrements stock and completes the order in one database
// transaction. A concurrent checkout that took the last unit after our
// pre-check sends this order to stock_failed with the captured payment
// voided; any other failure rolls back every decrement, leaving the
// order in payment_captured for a replay of the key to finish.
func (s *CheckoutService) commit(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	err := s.Orders.Complete(o)
	if errors.Is(err, domain.ErrStockFailed) {
		s.void(ctx, o)
		return s.fail(ctx, o, domain.StateStockFailed, err.Error())
	}
	if err != nil {
		return nil, err
	}
	s.publish(ctx, s.Events.OrderCompleted, o)
	return o, nil
}

// Cancel honors a user-initiated cancel. Pending orders cancel directly;
// authorized ones go through the void flow first. Anything further along
// is refused.
func (s *CheckoutService) Cancel(ctx context.Context, orderID string) (*domain.Order, error) {
	o, err := s.Orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	switch o.State {
	case domain.StatePending:
		if err := s.Orders.Transition(o, domain.StateCancelled, "cancelled by user"); err != nil {
			return nil, err
		}
	case domain.StatePaymentAuthorized:
		s.void(ctx, o)
		if err := s.Orders.Transition(o, domain.StateCancelled, "authorization voided on user cancel"); err != nil {
			return nil, err
		}
	default:
		return o, domain.ErrCancelNotAllowed
	}
	s.publish(ctx, s.Events.OrderFailed, o)
	return o, nil
}

// fail moves o to a terminal failure state and reports it through the
// order, not an error: the caller reads state and reason.
func (s *CheckoutService) fail(ctx context.Context, o *domain.Order, to domain.OrderState, reason string) (*domain.Order, error) {
	if o.State != to {
		if err := s.Orders.Transition(o, to, reason); err != nil {
			return nil, err
		}
	}
	s.publish(ctx, s.Events.OrderFailed, o)
	return o, nil
}

func (s *CheckoutService) void(ctx context.Context, o *domain.Order) {
	if o.AuthRef == "" {
		return
	}
	if err := s.Pay.Void(ctx, o.AuthRef); err != nil {
		log.Printf("[checkout] void %s for order %s: %v", o.AuthRef, o.ID, err)
	}
}

func (s *CheckoutService) publish(ctx context.Context, fn func(context.Context, *domain.Order) error, o *domain.Order) {
	if err := fn(ctx, o); err != nil {
		log.Printf("[events] publish for order %s: %v", o.ID, err)
	}
}

// keyedLocks hands out one mutex per idempotency key so duplicate
// submissions serialize without a global lock. Entries are refcounted
// and dropped once the last holder unlocks, so the map does not grow
// with every key ever seen.
type keyedLocks struct {
	mu sync.Mutex
	m  map[string]*keyLock
}

type keyLock struct {
	sync.Mutex
	refs int
}

func (k *keyedLocks) lock(key string) func() {
	k.mu.Lock()
	if k.m == nil {
		k.m = make(map[string]*keyLock)
	}
	l, ok := k.m[key]
	if !ok {
		l = &keyLock{}
		k.m[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.m, key)
		}
		k.mu.Unlock()
	}
}
