package services

import (
	"fmt"
	"time"

	"mintmart/internal/domain"
	"mintmart/internal/repos"
)

// CartService owns the per-session cart. Mutations are per-line SQL
// upserts, so concurrent tabs clobber at most their own product line.
type CartService struct {
	Carts *repos.CartRepo
	Prods *repos.ProductRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

// Add puts qty units of a product in the cart; an existing line sums.
func (s *CartService) Add(sessionID, productID string, qty int) error {
	if qty < 1 {
		return fmt.Errorf("add %q qty %d: %w", productID, qty, domain.ErrInvalidQuantity)
	}
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	if _, err := s.Prods.Get(productID); err != nil {
		return err
	}
	return s.Carts.AddItem(cartID, productID, qty)
}

// UpdateQuantity sets a line's quantity outright. Zero removes the line;
// negative is rejected.
func (s *CartService) UpdateQuantity(sessionID, productID string, qty int) error {
	if qty < 0 {
		return fmt.Errorf("update %q qty %d: %w", productID, qty, domain.ErrInvalidQuantity)
	}
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	if qty == 0 {
		return s.Carts.RemoveItem(cartID, productID)
	}
	if _, err := s.Prods.Get(productID); err != nil {
		return err
	}
	return s.Carts.SetQty(cartID, productID, qty)
}

// Remove drops a line; absent lines are a no-op.
func (s *CartService) Remove(sessionID, productID string) error {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	return s.Carts.RemoveItem(cartID, productID)
}

func (s *CartService) Clear(sessionID string) error {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	return s.Carts.Clear(cartID)
}

type CartView struct {
	Items      []repos.CartItemRow `json:"items"`
	TotalMinor int64               `json:"totalMinor"`
}

func (s *CartService) View(sessionID string) (CartView, error) {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return CartView{}, err
	}
	items, err := s.Carts.Items(cartID)
	if err != nil {
		return CartView{}, err
	}
	var total int64
	for _, it := range items {
		total += it.PriceMinor * int64(it.Qty)
	}
	return CartView{Items: items, TotalMinor: total}, nil
}

// Snapshot freezes the cart for checkout. The returned value is a copy:
// cart edits after this point do not touch an in-flight checkout.
func (s *CartService) Snapshot(sessionID string) (domain.CartSnapshot, error) {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	rows, err := s.Carts.Items(cartID)
	if err != nil {
		return domain.CartSnapshot{}, err
	}

	snap := domain.CartSnapshot{
		SessionID:  sessionID,
		Items:      make([]domain.SnapshotItem, 0, len(rows)),
		CapturedAt: time.Now().UTC(),
	}
	for _, row := range rows {
		snap.Items = append(snap.Items, domain.SnapshotItem{
			ProductID:     row.ProductID,
			Title:         row.Title,
			Qty:           row.Qty,
			UnitMinor:     row.PriceMinor,
			NFTCollection: row.NFTCollection,
		})
		snap.TotalMinor += row.PriceMinor * int64(row.Qty)
	}
	return snap, nil
}
