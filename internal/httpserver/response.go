package httpserver

import (
	"storefront/internal/cart"
	"storefront/internal/domain"
)

type stateResponse struct {
	View         string            `json:"view"`
	Theme        string            `json:"theme"`
	Loading      bool              `json:"loading"`
	Products     []productResponse `json:"products"`
	CatalogError string            `json:"catalogError,omitempty"`
	Cart         cartResponse      `json:"cart"`
	Countdown    string            `json:"countdown"`
}

type productResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Display     string `json:"displayPrice"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

type cartResponse struct {
	Count int                `json:"count"`
	Lines []cartLineResponse `json:"lines"`
	Total string             `json:"total"`
}

type cartLineResponse struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

// effectsResponse carries the one-shot outputs of an action.
type effectsResponse struct {
	Message string           `json:"message,omitempty"`
	Details *productResponse `json:"details,omitempty"`
	Link    string           `json:"link,omitempty"`
}

type actionResponse struct {
	State   stateResponse   `json:"state"`
	Effects effectsResponse `json:"effects"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price.String(),
		Display:     cart.FormatAmount(p.Price),
		Description: p.Description,
		Image:       p.Image,
	}
}

func toCartLineResponse(l domain.CartLine) cartLineResponse {
	return cartLineResponse{
		ProductID: l.ProductID,
		Name:      l.Name,
		UnitPrice: cart.FormatAmount(l.UnitPrice),
		Quantity:  l.Quantity,
		Subtotal:  cart.FormatAmount(l.Subtotal()),
	}
}
