package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"storefront/internal/cart"
	"storefront/internal/countdown"
	"storefront/internal/domain"
	"storefront/internal/order"
	"storefront/internal/prefs"
)

const (
	EmptyCartMessage   = "Your cart is empty. Please add items first."
	CatalogUnavailable = "Unable to load products right now."
)

// ErrClosed is returned when posting to a closed controller.
var ErrClosed = errors.New("controller closed")

// Catalog is the catalog store as the controller sees it.
type Catalog interface {
	Load(ctx context.Context) ([]domain.Product, error)
	Get(id string) (domain.Product, bool)
}

type CountdownOptions struct {
	Cadence     time.Duration
	Lead        time.Duration
	ExpiredText string
	Clock       countdown.Clock
}

type Deps struct {
	Catalog   Catalog
	Prefs     prefs.Store
	Renderer  Renderer
	WhatsApp  *order.WhatsApp
	Sink      order.Sink
	Logger    *zap.Logger
	Countdown CountdownOptions
}

// Controller turns actions into state changes and render calls. Dispatch
// and every method it reaches must run on one goroutine at a time; Run
// provides that goroutine for callers that cannot guarantee it themselves.
type Controller struct {
	catalog  Catalog
	prefs    prefs.Store
	renderer Renderer
	whatsapp *order.WhatsApp
	sink     order.Sink
	logger   *zap.Logger
	cdOpts   CountdownOptions

	ledger   *cart.Ledger
	view     domain.View
	theme    domain.Theme
	restored bool
	engine   *countdown.Engine

	// loadSeq numbers catalog loads. Only the latest one fetches and renders.
	loadSeq atomic.Uint64
	loadMu  sync.Mutex

	// lifetime outlives any single action and is cancelled by Close.
	lifetime context.Context
	cancel   context.CancelFunc

	events    chan func()
	quit      chan struct{}
	closeOnce sync.Once
	trackMu   sync.Mutex
	closed    bool
	pending   sync.WaitGroup
}

func New(deps Deps) (*Controller, error) {
	if deps.Catalog == nil {
		return nil, errors.New("catalog required")
	}
	if deps.Renderer == nil {
		return nil, errors.New("renderer required")
	}
	if deps.WhatsApp == nil {
		return nil, errors.New("whatsapp channel required")
	}
	if deps.Prefs == nil {
		deps.Prefs = prefs.NewMemory()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Countdown.Lead <= 0 {
		deps.Countdown.Lead = countdown.DefaultPromoLead
	}
	if deps.Countdown.Clock == nil {
		deps.Countdown.Clock = countdown.SystemClock{}
	}
	lifetime, cancel := context.WithCancel(context.Background())
	return &Controller{
		lifetime: lifetime,
		cancel:   cancel,
		catalog:  deps.Catalog,
		prefs:    deps.Prefs,
		renderer: deps.Renderer,
		whatsapp: deps.WhatsApp,
		sink:     deps.Sink,
		logger:   deps.Logger,
		cdOpts:   deps.Countdown,
		ledger:   cart.NewLedger(deps.Catalog),
		view:     domain.ViewLogin,
		theme:    domain.DefaultTheme,
		events:   make(chan func(), 64),
		quit:     make(chan struct{}),
	}, nil
}

// Start renders the initial screen, starts the countdown and kicks off the
// catalog load without waiting for it. The load result is applied through
// the event loop, so Run must be running for it to show.
func (c *Controller) Start(ctx context.Context) {
	c.theme = c.storedTheme(ctx)
	c.renderer.RenderTheme(c.theme)
	c.renderer.ShowView(c.view)
	c.renderCart()
	c.startCountdown(ctx)
	c.loadAsync()
}

// LoadCatalog loads the catalog and applies the result before returning.
func (c *Controller) LoadCatalog(ctx context.Context) error {
	c.loadSeq.Add(1)
	c.renderer.RenderCatalogLoading()
	c.loadMu.Lock()
	products, err := c.catalog.Load(ctx)
	c.loadMu.Unlock()
	c.applyCatalog(ctx, products, err)
	return err
}

// Dispatch applies one action.
func (c *Controller) Dispatch(ctx context.Context, a Action) error {
	switch a := a.(type) {
	case Navigate:
		return c.navigate(a.View)
	case GuestLogin:
		return c.navigate(string(domain.ViewHome))
	case AddToCart:
		return c.addToCart(ctx, a.ProductID)
	case RemoveFromCart:
		return c.removeFromCart(ctx, a.ProductID)
	case ShowDetails:
		return c.showDetails(a.ProductID)
	case ToggleTheme:
		c.toggleTheme(ctx)
		return nil
	case Checkout:
		return c.checkout()
	case ReloadCatalog:
		c.loadAsync()
		return nil
	default:
		return fmt.Errorf("unsupported action %T", a)
	}
}

func (c *Controller) View() domain.View   { return c.view }
func (c *Controller) Theme() domain.Theme { return c.theme }

// Cart exposes the ledger for read access from the event loop.
func (c *Controller) Cart() *cart.Ledger { return c.ledger }

// Countdown returns the running engine, or nil before Start.
func (c *Controller) Countdown() *countdown.Engine { return c.engine }

func (c *Controller) navigate(name string) error {
	v, err := domain.ParseView(name)
	if err != nil {
		c.logger.Warn("navigation ignored", zap.String("view", name), zap.String("current", string(c.view)))
		return err
	}
	c.view = v
	c.renderer.ShowView(v)
	return nil
}

func (c *Controller) addToCart(ctx context.Context, productID string) error {
	line, err := c.ledger.Add(productID)
	if err != nil {
		c.logger.Warn("add to cart ignored", zap.String("product_id", productID), zap.Error(err))
		return err
	}
	c.logger.Debug("added to cart", zap.String("product_id", line.ProductID), zap.Int("quantity", line.Quantity))
	c.persistCart(ctx)
	c.renderCart()
	return nil
}

func (c *Controller) removeFromCart(ctx context.Context, productID string) error {
	if err := c.ledger.Remove(productID); err != nil {
		c.logger.Warn("remove from cart ignored", zap.String("product_id", productID), zap.Error(err))
		return err
	}
	c.persistCart(ctx)
	c.renderCart()
	return nil
}

func (c *Controller) showDetails(productID string) error {
	p, ok := c.catalog.Get(productID)
	if !ok {
		c.logger.Warn("details ignored", zap.String("product_id", productID))
		return fmt.Errorf("%w: %q", domain.ErrUnknownProduct, productID)
	}
	c.renderer.ShowDetails(p)
	return nil
}

func (c *Controller) toggleTheme(ctx context.Context) {
	c.theme = c.theme.Toggle()
	c.renderer.RenderTheme(c.theme)
	if err := c.prefs.Set(ctx, prefs.KeyTheme, string(c.theme)); err != nil {
		c.logger.Warn("persist theme", zap.Error(err))
	}
}

func (c *Controller) checkout() error {
	if c.ledger.IsEmpty() {
		c.renderer.ShowMessage(EmptyCartMessage)
		return domain.ErrEmptyCart
	}
	text, err := c.ledger.OrderText()
	if err != nil {
		return err
	}
	o := c.whatsapp.NewOrder(text, c.ledger.Lines(), c.ledger.Total(), c.ledger.ItemCount(), time.Now())
	c.renderer.OpenLink(o.URL)
	c.logger.Info("checkout", zap.String("reference", o.Reference), zap.Int("items", o.Items))

	if c.sink != nil && c.track() {
		go func() {
			defer c.pending.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := c.sink.Deliver(ctx, o); err != nil {
				c.logger.Warn("order delivery failed", zap.String("reference", o.Reference), zap.Error(err))
			}
		}()
	}
	return nil
}

func (c *Controller) storedTheme(ctx context.Context) domain.Theme {
	v, err := c.prefs.Get(ctx, prefs.KeyTheme)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			c.logger.Warn("read theme", zap.Error(err))
		}
		return domain.DefaultTheme
	}
	t, ok := domain.ParseTheme(v)
	if !ok {
		return domain.DefaultTheme
	}
	return t
}

func (c *Controller) startCountdown(ctx context.Context) {
	if c.engine != nil {
		c.engine.Stop()
	}
	clock := c.cdOpts.Clock
	deadline := countdown.PinDeadline(ctx, c.prefs, prefs.KeyPromoEnd, clock.Now(), c.cdOpts.Lead)
	c.engine = countdown.New(countdown.Config{
		Deadline:    deadline,
		Cadence:     c.cdOpts.Cadence,
		ExpiredText: c.cdOpts.ExpiredText,
		Clock:       clock,
		OnTick: func(t countdown.Tick) {
			c.renderer.RenderCountdown(t.Text)
		},
	})
	c.engine.Start()
	c.logger.Info("countdown started", zap.Time("deadline", deadline), zap.Duration("cadence", c.engine.Cadence()))
}

// loadAsync fetches the catalog in the background under the controller's
// lifetime, not the caller's, so a finished request cannot abort the load.
// Loads run one at a time. A load superseded before it starts fetching is
// skipped, and a result is applied only if no newer load has started since,
// so the store always ends up holding the list that was rendered last.
func (c *Controller) loadAsync() {
	if !c.track() {
		return
	}
	seq := c.loadSeq.Add(1)
	c.renderer.RenderCatalogLoading()
	ctx := c.lifetime
	go func() {
		defer c.pending.Done()
		c.loadMu.Lock()
		if c.loadSeq.Load() != seq {
			c.loadMu.Unlock()
			return
		}
		products, err := c.catalog.Load(ctx)
		c.loadMu.Unlock()
		apply := func() {
			if latest := c.loadSeq.Load(); latest != seq {
				c.logger.Debug("stale catalog result skipped", zap.Uint64("seq", seq), zap.Uint64("latest", latest))
				return
			}
			c.applyCatalog(ctx, products, err)
		}
		if postErr := c.Post(ctx, apply); postErr != nil {
			c.logger.Debug("catalog result dropped", zap.Error(postErr))
		}
	}()
}

// track registers background work with Close. It reports false once the
// controller is closed.
func (c *Controller) track() bool {
	c.trackMu.Lock()
	defer c.trackMu.Unlock()
	if c.closed {
		return false
	}
	c.pending.Add(1)
	return true
}

func (c *Controller) applyCatalog(ctx context.Context, products []domain.Product, err error) {
	if err != nil {
		c.logger.Warn("catalog unavailable", zap.Error(err))
		c.renderer.RenderCatalog(nil)
		c.renderer.RenderCatalogError(CatalogUnavailable)
		return
	}
	c.renderer.RenderCatalog(products)
	c.revalidateCart(ctx)
}

// revalidateCart rebuilds the cart against the freshly loaded catalog. The
// first load restores the stored snapshot; later loads re-check the live cart.
func (c *Controller) revalidateCart(ctx context.Context) {
	var data []byte
	if !c.restored {
		c.restored = true
		stored, err := c.prefs.Get(ctx, prefs.KeyCart)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			c.logger.Warn("read stored cart", zap.Error(err))
		}
		data = []byte(stored)
	} else {
		snap, err := c.ledger.Snapshot()
		if err != nil {
			c.logger.Warn("snapshot cart", zap.Error(err))
			return
		}
		data = snap
	}
	dropped, err := c.ledger.Restore(data)
	if err != nil {
		c.logger.Warn("stored cart discarded", zap.Error(err))
	}
	if dropped > 0 {
		c.logger.Info("cart lines dropped", zap.Int("dropped", dropped))
	}
	if err != nil || dropped > 0 {
		c.persistCart(ctx)
	}
	c.renderCart()
}

func (c *Controller) persistCart(ctx context.Context) {
	data, err := c.ledger.Snapshot()
	if err != nil {
		c.logger.Warn("snapshot cart", zap.Error(err))
		return
	}
	if err := c.prefs.Set(ctx, prefs.KeyCart, string(data)); err != nil {
		c.logger.Warn("persist cart", zap.Error(err))
	}
}

func (c *Controller) renderCart() {
	c.renderer.RenderCart(c.ledger.ItemCount(), c.ledger.Lines(), c.ledger.Total())
}

// Run executes posted events one at a time until ctx is done or the
// controller is closed.
func (c *Controller) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.quit:
			return nil
		case fn := <-c.events:
			fn()
		}
	}
}

// Post queues fn for the event loop.
func (c *Controller) Post(ctx context.Context, fn func()) error {
	select {
	case <-c.quit:
		return ErrClosed
	default:
	}
	select {
	case c.events <- fn:
		return nil
	case <-c.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do dispatches a on the event loop and waits for its result.
func (c *Controller) Do(ctx context.Context, a Action) error {
	return c.Call(ctx, func() error { return c.Dispatch(ctx, a) })
}

// Call runs fn on the event loop and waits for it to return.
func (c *Controller) Call(ctx context.Context, fn func() error) error {
	res := make(chan error, 1)
	if err := c.Post(ctx, func() { res <- fn() }); err != nil {
		return err
	}
	select {
	case err := <-res:
		return err
	case <-c.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the countdown, refuses further events, cancels in-flight
// catalog loads and waits for them and for order deliveries.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		if c.engine != nil {
			c.engine.Stop()
		}
		c.trackMu.Lock()
		c.closed = true
		c.trackMu.Unlock()
		close(c.quit)
		c.cancel()
	})
	c.pending.Wait()
}
