// Package prefs is best-effort key/value storage for the theme, the cart
// snapshot and the pinned promo deadline.
package prefs

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

// Keys used by the storefront.
const (
	KeyTheme    = "69lpg_theme"
	KeyCart     = "69lpg_cart"
	KeyPromoEnd = "69lpg_promo_end"
)

// Store returns domain.ErrNotFound from Get for absent keys.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Memory keeps values for the life of the process.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}
