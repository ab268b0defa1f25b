package repos

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"mintmart/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// Create inserts the order header and its line items in one transaction.
// The unique index on idempotency_key makes a concurrent duplicate
// insert fail; callers treat that as "someone else won, re-read".
func (r *OrderRepo) Create(o *domain.Order) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
	  INSERT INTO orders
	    (id, wallet_address, idempotency_key, total_minor, state, reason, attempts, version, created_at)
	  VALUES (?, ?, ?, ?, ?, '', 0, 1, CURRENT_TIMESTAMP)
	`, o.ID, o.WalletAddress, o.IdempotencyKey, o.TotalMinor, o.State)
	if err != nil {
		return err
	}
	for _, it := range o.Items {
		if _, err := tx.Exec(`
		  INSERT INTO order_items(order_id, product_id, qty, unit_price_minor)
		  VALUES(?, ?, ?, ?)
		`, o.ID, it.ProductID, it.Qty, it.UnitMinor); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// IsDuplicateKey reports whether err is the unique-constraint violation
// raised when two checkouts race on the same idempotency key.
func IsDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: orders.idempotency_key")
}

func (r *OrderRepo) Get(orderID string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.Get(&o, `
		SELECT id, wallet_address, idempotency_key, total_minor, state, reason,
		       attempts, version, auth_ref, created_at, COALESCE(updated_at,'') AS updated_at
		FROM orders WHERE id = ?
	`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.db.Select(&o.Items, `
		SELECT product_id, qty, unit_price_minor
		FROM order_items WHERE order_id = ? ORDER BY product_id
	`, orderID); err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByIdempotencyKey resolves a replayed checkout to its existing order.
func (r *OrderRepo) GetByIdempotencyKey(key string) (*domain.Order, error) {
	var id string
	err := r.db.Get(&id, `SELECT id FROM orders WHERE idempotency_key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.Get(id)
}

// Transition applies from -> to only if the row is still at the expected
// version, so no transition lands on a state that already moved past it.
// The in-memory order is updated to match on success.
func (r *OrderRepo) Transition(o *domain.Order, to domain.OrderState, reason string) error {
	if !domain.CanTransition(o.State, to) {
		return domain.ErrIllegalTransition
	}
	res, err := r.db.Exec(`
		UPDATE orders
		SET state = ?, reason = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND state = ? AND version = ?
	`, to, reason, o.ID, o.State, o.Version)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrStaleTransition
	}
	o.State = to
	o.Reason = reason
	o.Version++
	return nil
}

// Complete finishes a captured order: every line's stock decrement and
// the move to completed happen in one transaction, so any failure rolls
// back all of them together and no stock ever leaves without a completed
// order. The per-line qty >= ? guard is the compare-and-decrement that
// closes the last-unit race between concurrent checkouts.
func (r *OrderRepo) Complete(o *domain.Order) error {
	if !domain.CanTransition(o.State, domain.StateCompleted) {
		return domain.ErrIllegalTransition
	}
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, it := range o.Items {
		res, err := tx.Exec(`
			UPDATE inventory
			SET qty = qty - ?, updated_at = CURRENT_TIMESTAMP
			WHERE product_id = ? AND qty >= ?
		`, it.Qty, it.ProductID, it.Qty)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			var have int
			_ = tx.Get(&have, `SELECT qty FROM inventory WHERE product_id = ?`, it.ProductID)
			return domain.StockError(it.ProductID, it.Qty, have)
		}
	}

	res, err := tx.Exec(`
		UPDATE orders
		SET state = ?, reason = '', version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND state = ? AND version = ?
	`, domain.StateCompleted, o.ID, o.State, o.Version)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrStaleTransition
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	o.State = domain.StateCompleted
	o.Reason = ""
	o.Version++
	return nil
}

// SetAuthRef records the payment authorization reference so retries and
// the void flow reuse the same idempotent reference.
func (r *OrderRepo) SetAuthRef(o *domain.Order, ref string) error {
	_, err := r.db.Exec(`UPDATE orders SET auth_ref = ? WHERE id = ?`, ref, o.ID)
	if err == nil {
		o.AuthRef = ref
	}
	return err
}

// BumpAttempts counts one payment attempt against the retry budget.
func (r *OrderRepo) BumpAttempts(o *domain.Order) error {
	_, err := r.db.Exec(`UPDATE orders SET attempts = attempts + 1 WHERE id = ?`, o.ID)
	if err == nil {
		o.Attempts++
	}
	return err
}

type OrderSummary struct {
	ID         string `db:"id"`
	TotalMinor int64  `db:"total_minor"`
	State      string `db:"state"`
	CreatedAt  string `db:"created_at"`
}

// ListByWallet returns order history for a wallet, newest first.
func (r *OrderRepo) ListByWallet(wallet string) ([]OrderSummary, error) {
	var out []OrderSummary
	err := r.db.Select(&out, `
		SELECT id, total_minor, state, created_at
		FROM orders WHERE wallet_address = ?
		ORDER BY datetime(created_at) DESC
	`, wallet)
	return out, err
}
