package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Writer stores one product at a display position.
type Writer interface {
	Upsert(ctx context.Context, product domain.Product, position int) error
}

type productSeed struct {
	ID          string
	Name        string
	Price       string
	Description string
	Image       string
}

var demoProducts = []productSeed{
	{ID: "1", Name: "Steel Gas Stove", Price: "25.00", Description: "Two plate table top stove with brass burners.", Image: "img/stove.jpg"},
	{ID: "2", Name: "9kg Gas Tank Empty", Price: "31.50", Description: "Refillable steel cylinder, sold empty.", Image: "img/tank-9kg.jpg"},
	{ID: "3", Name: "9kg Gas Refill", Price: "18.00", Description: "Refill of a customer supplied 9kg cylinder.", Image: "img/refill-9kg.jpg"},
	{ID: "4", Name: "Low Pressure Regulator", Price: "8.99", Description: "Standard regulator with gauge.", Image: "img/regulator.jpg"},
	{ID: "5", Name: "Gas Hose 2m", Price: "4.25", Description: "Reinforced hose with two clamps.", Image: "img/hose.jpg"},
}

// Products returns the demo catalog.
func Products() []domain.Product {
	out := make([]domain.Product, 0, len(demoProducts))
	for _, p := range demoProducts {
		out = append(out, domain.Product{
			ID:          p.ID,
			Name:        p.Name,
			Price:       decimal.RequireFromString(p.Price),
			Description: p.Description,
			Image:       p.Image,
		})
	}
	return out
}

// Apply writes the demo catalog. It is idempotent as long as the writer upserts.
func Apply(ctx context.Context, w Writer) error {
	for i, p := range Products() {
		if err := w.Upsert(ctx, p, i); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}
	return nil
}
