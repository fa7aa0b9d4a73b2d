package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Order is one checkout handed to the outbound channel.
type Order struct {
	Reference string            `json:"reference"`
	Text      string            `json:"text"`
	URL       string            `json:"url"`
	Total     decimal.Decimal   `json:"total"`
	Items     int               `json:"items"`
	Lines     []domain.CartLine `json:"lines"`
	PlacedAt  time.Time         `json:"placedAt"`
}

// WhatsApp builds wa.me deep links for a fixed shop number.
type WhatsApp struct {
	phone string
}

func NewWhatsApp(phone string) (*WhatsApp, error) {
	phone = strings.TrimPrefix(strings.TrimSpace(phone), "+")
	if len(phone) < 7 || len(phone) > 15 {
		return nil, fmt.Errorf("whatsapp phone %q: expected 7-15 digits", phone)
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return nil, errors.New("whatsapp phone must contain digits only")
		}
	}
	return &WhatsApp{phone: phone}, nil
}

func (w *WhatsApp) Phone() string { return w.phone }

// Link returns https://wa.me/<phone>?text=<encoded text>.
func (w *WhatsApp) Link(text string) string {
	return "https://wa.me/" + w.phone + "?text=" + EncodeComponent(text)
}

// NewOrder stamps a reference and the deep link onto a rendered cart.
func (w *WhatsApp) NewOrder(text string, lines []domain.CartLine, total decimal.Decimal, items int, now time.Time) Order {
	return Order{
		Reference: uuid.NewString(),
		Text:      text,
		URL:       w.Link(text),
		Total:     total,
		Items:     items,
		Lines:     lines,
		PlacedAt:  now,
	}
}

// EncodeComponent percent-encodes s the way browsers encode a URI component:
// letters, digits and -_.!~*'() pass through, everything else is %XX of its
// UTF-8 bytes.
func EncodeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isComponentSafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isComponentSafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
