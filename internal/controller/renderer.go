package controller

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Renderer is the display surface. All methods except RenderCountdown are
// called from the controller's event loop; RenderCountdown is called from
// the countdown goroutine and must be safe alongside the others.
type Renderer interface {
	ShowView(v domain.View)
	RenderTheme(t domain.Theme)
	RenderCatalogLoading()
	RenderCatalog(products []domain.Product)
	RenderCatalogError(message string)
	RenderCart(count int, lines []domain.CartLine, total decimal.Decimal)
	RenderCountdown(text string)
	ShowMessage(message string)
	ShowDetails(p domain.Product)
	// OpenLink asks the surface to open url in a new browsing context.
	OpenLink(url string)
}
