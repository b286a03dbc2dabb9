package catalog

import (
	"context"
	"fmt"

	domain "github.com/northwind-commerce/api/internal/domain"
	"github.com/northwind-commerce/api/internal/inventory"
	"github.com/northwind-commerce/api/internal/repositories"
)

// SeedProduct pairs a catalog entry with its initial on-hand stock.
type SeedProduct struct {
	Product domain.Product
	OnHand  int
}

// DefaultSeed returns the demo catalog loaded at startup.
func DefaultSeed() []SeedProduct {
	return []SeedProduct{
		{
			Product: domain.Product{
				ID:        "prod-laptop-15",
				SKU:       "SKU-LAPTOP-15",
				Name:      "Aurora 15\" Laptop",
				Category:  domain.CategoryElectronics,
				UnitPrice: 1299_00,
			},
			OnHand: 50,
		},
		{
			Product: domain.Product{
				ID:        "prod-phone-x",
				SKU:       "SKU-PHONE-X",
				Name:      "Pulse X Smartphone",
				Category:  domain.CategoryElectronics,
				UnitPrice: 899_00,
			},
			OnHand: 80,
		},
		{
			Product: domain.Product{
				ID:        "prod-earbuds",
				SKU:       "SKU-EARBUDS",
				Name:      "Drift Wireless Earbuds",
				Category:  domain.CategoryElectronics,
				UnitPrice: 149_00,
			},
			OnHand: 200,
		},
		{
			Product: domain.Product{
				ID:        "prod-tshirt",
				SKU:       "SKU-TSHIRT",
				Name:      "Classic Cotton T-Shirt",
				Category:  domain.CategoryClothing,
				UnitPrice: 24_00,
			},
			OnHand: 500,
		},
		{
			Product: domain.Product{
				ID:        "prod-jeans",
				SKU:       "SKU-JEANS",
				Name:      "Straight-Fit Jeans",
				Category:  domain.CategoryClothing,
				UnitPrice: 79_00,
			},
			OnHand: 300,
		},
		{
			Product: domain.Product{
				ID:        "prod-novel",
				SKU:       "SKU-NOVEL",
				Name:      "The Silent Harbour (Paperback)",
				Category:  domain.CategoryBooks,
				UnitPrice: 18_00,
			},
			OnHand: 120,
		},
	}
}

// Load inserts the seed products into the catalog store and registers their
// stock with the ledger.
func Load(ctx context.Context, writer repositories.ProductWriter, ledger *inventory.Ledger, seed []SeedProduct) error {
	for _, entry := range seed {
		if err := writer.Insert(ctx, entry.Product); err != nil {
			return fmt.Errorf("catalog: seed product %s: %w", entry.Product.ID, err)
		}
		if _, err := ledger.Track(entry.Product.SKU, entry.Product.ID, entry.OnHand); err != nil {
			return fmt.Errorf("catalog: seed stock %s: %w", entry.Product.SKU, err)
		}
	}
	return nil
}
