package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type rawProduct struct {
	ID          json.RawMessage `json:"id"`
	Name        string          `json:"name"`
	Price       json.RawMessage `json:"price"`
	Description string          `json:"description"`
	Desc        string          `json:"desc"`
	Image       string          `json:"image"`
}

// Decode parses a catalog document. Both a bare JSON array of products and an
// object carrying a "products" array are accepted. Ids may be numbers or
// strings, prices numbers or numeric strings.
func Decode(data []byte) ([]domain.Product, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty catalog document")
	}

	var raws []rawProduct
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, fmt.Errorf("decode product array: %w", err)
		}
	case '{':
		var wrapped struct {
			Products *[]rawProduct `json:"products"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("decode catalog object: %w", err)
		}
		if wrapped.Products == nil {
			return nil, errors.New("catalog object has no products field")
		}
		raws = *wrapped.Products
	default:
		return nil, errors.New("catalog document must be an array or an object")
	}

	products := make([]domain.Product, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))
	for i, raw := range raws {
		p, err := raw.toProduct()
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("product %d: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = struct{}{}
		products = append(products, p)
	}
	return products, nil
}

func (r rawProduct) toProduct() (domain.Product, error) {
	id, err := scalarString(r.ID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("id: %w", err)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Product{}, errors.New("id required")
	}

	priceText, err := scalarString(r.Price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("price: %w", err)
	}
	price, err := ParsePrice(priceText)
	if err != nil {
		return domain.Product{}, fmt.Errorf("price: %w", err)
	}

	desc := r.Description
	if desc == "" {
		desc = r.Desc
	}
	return domain.Product{
		ID:          id,
		Name:        strings.TrimSpace(r.Name),
		Price:       price,
		Description: desc,
		Image:       strings.TrimSpace(r.Image),
	}, nil
}

// ParsePrice reads a non-negative decimal amount, tolerating a leading "$".
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" {
		return decimal.Decimal{}, errors.New("missing")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("not a number: %q", s)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("negative amount %s", d)
	}
	return d, nil
}

// scalarString renders a JSON number or string as text without passing
// numbers through float64.
func scalarString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", errors.New("missing")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case json.Number:
		return t.String(), nil
	case string:
		return t, nil
	case nil:
		return "", errors.New("missing")
	default:
		return "", fmt.Errorf("unsupported value %s", string(raw))
	}
}
