package services

import (
	"mintmart/internal/domain"
	"mintmart/internal/repos"
)

// CatalogService is the read-only catalog collaborator: checkout re-reads
// price and stock through it at order time.
type CatalogService struct {
	Prods *repos.ProductRepo
	Inv   *repos.InventoryRepo
}

func NewCatalogService(prods *repos.ProductRepo, inv *repos.InventoryRepo) *CatalogService {
	return &CatalogService{Prods: prods, Inv: inv}
}

func (s *CatalogService) Product(id string) (domain.Product, error) {
	return s.Prods.Get(id)
}

func (s *CatalogService) List() ([]domain.Product, error) {
	return s.Prods.ListActive()
}

// CheckAvailability converts qty to IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func (s *CatalogService) CheckAvailability(productID string) (domain.Availability, error) {
	qty, err := s.Inv.Qty(productID)
	if err != nil {
		return domain.Availability{}, err
	}

	status := "OUT_OF_STOCK"
	switch {
	case qty >= 5:
		status = "IN_STOCK"
	case qty > 0:
		status = "LOW_STOCK"
	}
	return domain.Availability{Status: status, Qty: qty}, nil
}
