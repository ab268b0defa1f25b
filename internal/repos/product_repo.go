package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"mintmart/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

type productRow struct {
	ID            string         `db:"id"`
	Title         string         `db:"title"`
	Description   sql.NullString `db:"description"`
	PriceMinor    int64          `db:"price_minor"`
	NFTCollection sql.NullString `db:"nft_collection"`
	Active        bool           `db:"active"`
	CreatedAt     sql.NullString `db:"created_at"`
	UpdatedAt     sql.NullString `db:"updated_at"`
}

func (r productRow) toDomain() domain.Product {
	return domain.Product{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description.String,
		PriceMinor:    r.PriceMinor,
		NFTCollection: r.NFTCollection.String,
		Active:        r.Active,
		CreatedAt:     r.CreatedAt.String,
		UpdatedAt:     r.UpdatedAt.String,
	}
}

// Get returns an active product. Checkout re-reads prices through this,
// never trusting a price the cart captured earlier.
func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var row productRow
	err := r.db.Get(&row, `
		SELECT id, title, description, price_minor, nft_collection, active, created_at, updated_at
		FROM products WHERE id = ? AND active = 1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return row.toDomain(), nil
}

func (r *ProductRepo) ListActive() ([]domain.Product, error) {
	var rows []productRow
	err := r.db.Select(&rows, `
		SELECT id, title, description, price_minor, nft_collection, active, created_at, updated_at
		FROM products WHERE active = 1 ORDER BY title
	`)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
