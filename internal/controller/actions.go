package controller

// Action is one user intent. The set is closed: only the types below
// implement it.
type Action interface {
	action()
}

type Navigate struct {
	View string `json:"view"`
}

// GuestLogin passes the cosmetic login gate.
type GuestLogin struct{}

type AddToCart struct {
	ProductID string `json:"productId"`
}

type RemoveFromCart struct {
	ProductID string `json:"productId"`
}

type ShowDetails struct {
	ProductID string `json:"productId"`
}

type ToggleTheme struct{}

type Checkout struct{}

type ReloadCatalog struct{}

func (Navigate) action()       {}
func (GuestLogin) action()     {}
func (AddToCart) action()      {}
func (RemoveFromCart) action() {}
func (ShowDetails) action()    {}
func (ToggleTheme) action()    {}
func (Checkout) action()       {}
func (ReloadCatalog) action()  {}
