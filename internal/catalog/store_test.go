package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type stubSource struct {
	products []domain.Product
	err      error
	calls    int
}

func (s *stubSource) Fetch(_ context.Context) ([]domain.Product, error) {
	s.calls++
	return s.products, s.err
}

func sampleProducts() []domain.Product {
	return []domain.Product{
		{ID: "1", Name: "Steel Gas Stove", Price: decimal.RequireFromString("25.00")},
		{ID: "2", Name: "9kg Gas Tank Empty", Price: decimal.RequireFromString("31.50")},
	}
}

func TestStoreLoad_Success(t *testing.T) {
	src := &stubSource{products: sampleProducts()}
	store := NewStore(src, nil)

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 || store.Len() != 2 {
		t.Fatalf("expected 2 products, got %d", len(got))
	}
	p, ok := store.Get("2")
	if !ok || p.Name != "9kg Gas Tank Empty" {
		t.Fatalf("unexpected Get result %+v %v", p, ok)
	}
	if _, ok := store.Get("42"); ok {
		t.Fatalf("expected missing product")
	}
}

func TestStoreLoad_FailureKeepsPreviousList(t *testing.T) {
	src := &stubSource{products: sampleProducts()}
	store := NewStore(src, nil)
	if _, err := store.Load(context.Background()); err != nil {
		t.Fatalf("first Load: %v", err)
	}

	boom := errors.New("network down")
	src.products, src.err = nil, boom
	_, err := store.Load(context.Background())

	var loadErr *domain.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected cause to unwrap, got %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("expected previous list kept, got %d", store.Len())
	}
}

func TestStoreLoad_NoSource(t *testing.T) {
	store := NewStore(nil, nil)
	_, err := store.Load(context.Background())
	var loadErr *domain.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if len(store.Products()) != 0 {
		t.Fatalf("expected empty list")
	}
}

func TestStoreProducts_ReturnsCopy(t *testing.T) {
	store := NewStore(&stubSource{products: sampleProducts()}, nil)
	if _, err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	list := store.Products()
	list[0].Name = "mutated"
	if p, _ := store.Get("1"); p.Name != "Steel Gas Stove" {
		t.Fatalf("store list was mutated through copy")
	}
}

func TestHTTPSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cache-Control") != "no-store" {
			t.Errorf("expected no-store cache header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": 1, "name": "Steel Gas Stove", "price": "25.00"}]`))
	}))
	defer srv.Close()

	products, err := NewHTTPSource(srv.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(products) != 1 || products[0].Name != "Steel Gas Stove" {
		t.Fatalf("unexpected products %+v", products)
	}
}

func TestHTTPSource_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewHTTPSource(srv.URL).Fetch(context.Background()); err == nil {
		t.Fatalf("expected error for 404")
	}
}

func TestFileSource_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "product.json")
	if err := os.WriteFile(path, []byte(`{"products": [{"id": "a", "name": "A", "price": 1}]}`), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	products, err := FileSource{Path: path}.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(products) != 1 || products[0].ID != "a" {
		t.Fatalf("unexpected products %+v", products)
	}

	if _, err := (FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}).Fetch(context.Background()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
