package cart

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Catalog is the product lookup the ledger validates ids against.
type Catalog interface {
	Get(id string) (domain.Product, bool)
}

// Ledger is the per-session cart: at most one line per product, kept in
// first-added order. It is not safe for concurrent use; the controller owns it.
type Ledger struct {
	catalog Catalog
	lines   []domain.CartLine
}

func NewLedger(catalog Catalog) *Ledger {
	return &Ledger{catalog: catalog}
}

// Add puts one unit of the product in the cart and returns the updated line.
func (l *Ledger) Add(productID string) (domain.CartLine, error) {
	product, ok := l.catalog.Get(productID)
	if !ok {
		return domain.CartLine{}, fmt.Errorf("%w: %q", domain.ErrUnknownProduct, productID)
	}
	if i := l.find(productID); i >= 0 {
		l.lines[i].Quantity++
		return l.lines[i], nil
	}
	line := domain.CartLine{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  1,
	}
	l.lines = append(l.lines, line)
	return line, nil
}

// Remove takes one unit off a line, dropping the line when it reaches zero.
func (l *Ledger) Remove(productID string) error {
	i := l.find(productID)
	if i < 0 {
		return fmt.Errorf("cart line %q: %w", productID, domain.ErrNotFound)
	}
	l.lines[i].Quantity--
	if l.lines[i].Quantity <= 0 {
		l.lines = append(l.lines[:i], l.lines[i+1:]...)
	}
	return nil
}

func (l *Ledger) Clear() {
	l.lines = nil
}

func (l *Ledger) IsEmpty() bool {
	return len(l.lines) == 0
}

// Lines returns a copy of the cart lines in insertion order.
func (l *Ledger) Lines() []domain.CartLine {
	out := make([]domain.CartLine, len(l.lines))
	copy(out, l.lines)
	return out
}

// ItemCount is the total number of units, not the number of lines.
func (l *Ledger) ItemCount() int {
	n := 0
	for _, line := range l.lines {
		n += line.Quantity
	}
	return n
}

// Total is exact; callers round only for display.
func (l *Ledger) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range l.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// OrderText renders the numbered order summary sent to the shop.
func (l *Ledger) OrderText() (string, error) {
	if l.IsEmpty() {
		return "", domain.ErrEmptyCart
	}
	var b strings.Builder
	b.WriteString("I'd like to buy these items:\n")
	for i, line := range l.lines {
		fmt.Fprintf(&b, "%d. %s x%d - %s\n", i+1, line.Name, line.Quantity, FormatAmount(line.Subtotal()))
	}
	fmt.Fprintf(&b, "Total: %s\n", FormatAmount(l.Total()))
	b.WriteString("Where do I make the payment and pickup?")
	return b.String(), nil
}

// FormatAmount renders a dollar amount with two fraction digits.
func FormatAmount(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func (l *Ledger) find(productID string) int {
	for i, line := range l.lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

type snapshotLine struct {
	ID    flexID          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Qty   int             `json:"qty"`
}

// Snapshot serializes the cart for preference storage.
func (l *Ledger) Snapshot() ([]byte, error) {
	out := make([]snapshotLine, 0, len(l.lines))
	for _, line := range l.lines {
		out = append(out, snapshotLine{ID: flexID(line.ProductID), Name: line.Name, Price: line.UnitPrice, Qty: line.Quantity})
	}
	return json.Marshal(out)
}

// Restore replaces the cart with a stored snapshot. Lines whose product is no
// longer in the catalog, or whose quantity is not positive, are dropped; names
// and prices come from the current catalog. It reports how many stored lines
// were discarded. Undecodable data leaves an empty cart.
func (l *Ledger) Restore(data []byte) (dropped int, err error) {
	l.lines = nil
	if len(strings.TrimSpace(string(data))) == 0 {
		return 0, nil
	}
	var stored []snapshotLine
	if err := json.Unmarshal(data, &stored); err != nil {
		return 0, fmt.Errorf("decode cart snapshot: %w", err)
	}
	for _, s := range stored {
		product, ok := l.catalog.Get(string(s.ID))
		if !ok || s.Qty <= 0 {
			dropped++
			continue
		}
		if i := l.find(product.ID); i >= 0 {
			l.lines[i].Quantity += s.Qty
			continue
		}
		l.lines = append(l.lines, domain.CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  s.Qty,
		})
	}
	return dropped, nil
}

// flexID accepts ids stored as JSON numbers as well as strings.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexID(s)
	return nil
}
