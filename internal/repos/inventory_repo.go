package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// InventoryRepo reads stock counts for availability and the checkout
// pre-check. The authoritative decrement lives in OrderRepo.Complete,
// inside the same transaction as the order's completed transition.
type InventoryRepo struct{ db *sqlx.DB }

func NewInventoryRepo(db *sqlx.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// Qty returns current stock for a product. Missing row reads as zero.
func (r *InventoryRepo) Qty(productID string) (int, error) {
	var qty int
	err := r.db.Get(&qty, `SELECT qty FROM inventory WHERE product_id = ?`, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return qty, nil
}
