package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrUnknownProduct indicates an add-to-cart for an id missing from the catalog.
	ErrUnknownProduct = errors.New("unknown product")
	// ErrUnknownView indicates navigation to a view outside the known set.
	ErrUnknownView = errors.New("unknown view")
	// ErrEmptyCart indicates checkout was attempted with nothing in the cart.
	ErrEmptyCart = errors.New("cart is empty")
)

// LoadError reports a failed catalog fetch or parse.
type LoadError struct {
	Cause error
}

func (e *LoadError) Error() string {
	if e.Cause == nil {
		return "load catalog"
	}
	return fmt.Sprintf("load catalog: %v", e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
