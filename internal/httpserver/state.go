package httpserver

import (
	"sync"

	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	"storefront/internal/domain"
)

// StateRenderer records what the controller renders so the page can poll it.
// It is safe for concurrent use.
type StateRenderer struct {
	mu    sync.Mutex
	state stateResponse
	fx    effectsResponse
}

func NewStateRenderer() *StateRenderer {
	return &StateRenderer{state: stateResponse{
		View:     string(domain.ViewLogin),
		Theme:    string(domain.DefaultTheme),
		Products: []productResponse{},
		Cart:     cartResponse{Lines: []cartLineResponse{}, Total: cart.FormatAmount(decimal.Zero)},
	}}
}

func (r *StateRenderer) ShowView(v domain.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.View = string(v)
}

func (r *StateRenderer) RenderTheme(t domain.Theme) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Theme = string(t)
}

func (r *StateRenderer) RenderCatalogLoading() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Loading = true
	r.state.CatalogError = ""
}

func (r *StateRenderer) RenderCatalog(products []domain.Product) {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Loading = false
	r.state.CatalogError = ""
	r.state.Products = out
}

func (r *StateRenderer) RenderCatalogError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Loading = false
	r.state.CatalogError = message
}

func (r *StateRenderer) RenderCart(count int, lines []domain.CartLine, total decimal.Decimal) {
	out := make([]cartLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, toCartLineResponse(l))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Cart = cartResponse{Count: count, Lines: out, Total: cart.FormatAmount(total)}
}

func (r *StateRenderer) RenderCountdown(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Countdown = text
}

func (r *StateRenderer) ShowMessage(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fx.Message = message
}

func (r *StateRenderer) ShowDetails(p domain.Product) {
	d := toProductResponse(p)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fx.Details = &d
}

func (r *StateRenderer) OpenLink(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fx.Link = url
}

func (r *StateRenderer) snapshot() stateResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.state
	s.Products = make([]productResponse, len(r.state.Products))
	copy(s.Products, r.state.Products)
	s.Cart.Lines = make([]cartLineResponse, len(r.state.Cart.Lines))
	copy(s.Cart.Lines, r.state.Cart.Lines)
	return s
}

// drain returns the pending one-shot effects and clears them.
func (r *StateRenderer) drain() effectsResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	fx := r.fx
	r.fx = effectsResponse{}
	return fx
}
