package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

// PostgresSource reads the catalog from the products table.
type PostgresSource struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresSource(pool *pgxpool.Pool, logger *zap.Logger) *PostgresSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresSource{pool: pool, logger: logger}
}

func (s *PostgresSource) Fetch(ctx context.Context) ([]domain.Product, error) {
	const q = `
SELECT id, name, price::text, COALESCE(description, ''), COALESCE(image, '')
FROM products
ORDER BY position ASC, created_at ASC
`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		s.logger.Error("catalog postgres: list", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var (
			p     domain.Product
			price string
		)
		if err := rows.Scan(&p.ID, &p.Name, &price, &p.Description, &p.Image); err != nil {
			return nil, err
		}
		p.Price, err = ParsePrice(price)
		if err != nil {
			return nil, fmt.Errorf("product %s price: %w", p.ID, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error("catalog postgres: list rows", zap.Error(err))
		return nil, err
	}
	s.logger.Debug("catalog postgres: list", zap.Int("count", len(result)))
	return result, nil
}

// Upsert writes one product at the given display position.
func (s *PostgresSource) Upsert(ctx context.Context, p domain.Product, position int) error {
	const q = `
INSERT INTO products (id, name, price, description, image, position)
VALUES ($1, $2, $3::numeric, NULLIF($4, ''), NULLIF($5, ''), $6)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    price = EXCLUDED.price,
    description = EXCLUDED.description,
    image = EXCLUDED.image,
    position = EXCLUDED.position
`
	if _, err := s.pool.Exec(ctx, q, p.ID, p.Name, p.Price.String(), p.Description, p.Image, position); err != nil {
		s.logger.Error("catalog postgres: upsert", zap.String("id", p.ID), zap.Error(err))
		return err
	}
	return nil
}
