package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/controller"
	"storefront/internal/domain"
)

// Dispatcher runs an action on the controller's event loop.
type Dispatcher interface {
	Do(ctx context.Context, a controller.Action) error
}

// ReadinessCheck reports nil when a dependency is usable.
type ReadinessCheck func(ctx context.Context) error

type actionRequest struct {
	Type      string `json:"type" binding:"required"`
	View      string `json:"view"`
	ProductID string `json:"productId"`
}

var errUnknownAction = errors.New("unknown action type")

func (r actionRequest) toAction() (controller.Action, error) {
	switch strings.ToLower(r.Type) {
	case "navigate":
		return controller.Navigate{View: r.View}, nil
	case "guest_login":
		return controller.GuestLogin{}, nil
	case "add_to_cart":
		return controller.AddToCart{ProductID: r.ProductID}, nil
	case "remove_from_cart":
		return controller.RemoveFromCart{ProductID: r.ProductID}, nil
	case "show_details":
		return controller.ShowDetails{ProductID: r.ProductID}, nil
	case "toggle_theme":
		return controller.ToggleTheme{}, nil
	case "checkout":
		return controller.Checkout{}, nil
	case "reload_catalog":
		return controller.ReloadCatalog{}, nil
	}
	return nil, errUnknownAction
}

func stateHandler(state *StateRenderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, state.snapshot())
	}
}

func actionHandler(d Dispatcher, state *StateRenderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req actionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid action body", Code: "bad_request"})
			return
		}
		action, err := req.toAction()
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error() + ": " + req.Type, Code: "bad_request"})
			return
		}

		err = d.Do(c.Request.Context(), action)
		fx := state.drain()
		if err != nil {
			status, code := statusFor(err)
			c.JSON(status, struct {
				errorResponse
				Effects effectsResponse `json:"effects"`
			}{errorResponse{Error: err.Error(), Code: code}, fx})
			return
		}
		c.JSON(http.StatusOK, actionResponse{State: state.snapshot(), Effects: fx})
	}
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnknownView):
		return http.StatusNotFound, "unknown_view"
	case errors.Is(err, domain.ErrUnknownProduct):
		return http.StatusNotFound, "unknown_product"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusConflict, "empty_cart"
	case errors.Is(err, controller.ErrClosed), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "unavailable"
	}
	return http.StatusInternalServerError, "internal"
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func readyHandler(checks map[string]ReadinessCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		failed := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reasons": failed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
