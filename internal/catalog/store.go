package catalog

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/domain"
)

// Source fetches the full product list from wherever the catalog lives.
type Source interface {
	Fetch(ctx context.Context) ([]domain.Product, error)
}

// Store holds the read-only product list. Load swaps the whole list at once,
// so readers see either the previous list or the new one.
type Store struct {
	src    Source
	logger *zap.Logger

	mu       sync.RWMutex
	products []domain.Product
	index    map[string]int
}

func NewStore(src Source, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{src: src, logger: logger, index: map[string]int{}}
}

// Load fetches the catalog and replaces the held list. On failure the previous
// list is kept and a *domain.LoadError is returned. Safe to retry.
func (s *Store) Load(ctx context.Context) ([]domain.Product, error) {
	if s.src == nil {
		return nil, &domain.LoadError{Cause: errors.New("no catalog source configured")}
	}
	products, err := s.src.Fetch(ctx)
	if err != nil {
		s.logger.Warn("catalog load failed", zap.Error(err))
		return nil, &domain.LoadError{Cause: err}
	}

	index := make(map[string]int, len(products))
	for i, p := range products {
		index[p.ID] = i
	}
	held := make([]domain.Product, len(products))
	copy(held, products)

	s.mu.Lock()
	s.products = held
	s.index = index
	s.mu.Unlock()

	s.logger.Info("catalog loaded", zap.Int("count", len(held)))
	return s.Products(), nil
}

// Products returns a copy of the held list.
func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Store) Get(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return domain.Product{}, false
	}
	return s.products[i], true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}
