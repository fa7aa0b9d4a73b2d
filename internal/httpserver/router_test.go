package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"storefront/internal/controller"
	"storefront/internal/domain"
)

type stubDispatcher struct {
	got   []controller.Action
	err   error
	apply func(a controller.Action)
}

func (s *stubDispatcher) Do(_ context.Context, a controller.Action) error {
	s.got = append(s.got, a)
	if s.apply != nil {
		s.apply(a)
	}
	return s.err
}

func newTestRouter(d Dispatcher, state *StateRenderer, ready map[string]ReadinessCheck) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return buildRouter(zap.NewNop(), Deps{Dispatcher: d, State: state, Ready: ready})
}

func postAction(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/actions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestActions_MapsRequestToAction(t *testing.T) {
	cases := []struct {
		body string
		want controller.Action
	}{
		{`{"type":"navigate","view":"prices"}`, controller.Navigate{View: "prices"}},
		{`{"type":"guest_login"}`, controller.GuestLogin{}},
		{`{"type":"add_to_cart","productId":"3"}`, controller.AddToCart{ProductID: "3"}},
		{`{"type":"remove_from_cart","productId":"3"}`, controller.RemoveFromCart{ProductID: "3"}},
		{`{"type":"show_details","productId":"3"}`, controller.ShowDetails{ProductID: "3"}},
		{`{"type":"TOGGLE_THEME"}`, controller.ToggleTheme{}},
		{`{"type":"checkout"}`, controller.Checkout{}},
		{`{"type":"reload_catalog"}`, controller.ReloadCatalog{}},
	}
	for _, tc := range cases {
		d := &stubDispatcher{}
		rec := postAction(t, newTestRouter(d, NewStateRenderer(), nil), tc.body)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d body %s", tc.body, rec.Code, rec.Body.String())
		}
		if len(d.got) != 1 || d.got[0] != tc.want {
			t.Fatalf("%s: dispatched %#v, want %#v", tc.body, d.got, tc.want)
		}
	}
}

func TestActions_BadRequests(t *testing.T) {
	d := &stubDispatcher{}
	router := newTestRouter(d, NewStateRenderer(), nil)

	for _, body := range []string{`not json`, `{}`, `{"type":"teleport"}`} {
		rec := postAction(t, router, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rec.Code)
		}
	}
	if len(d.got) != 0 {
		t.Fatalf("nothing should be dispatched, got %v", d.got)
	}
}

func TestActions_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrUnknownView, http.StatusNotFound},
		{domain.ErrUnknownProduct, http.StatusNotFound},
		{domain.ErrEmptyCart, http.StatusConflict},
		{controller.ErrClosed, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		d := &stubDispatcher{err: tc.err}
		rec := postAction(t, newTestRouter(d, NewStateRenderer(), nil), `{"type":"checkout"}`)
		if rec.Code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
	}
}

func TestActions_EmptyCartCarriesMessage(t *testing.T) {
	state := NewStateRenderer()
	d := &stubDispatcher{err: domain.ErrEmptyCart, apply: func(controller.Action) {
		state.ShowMessage(controller.EmptyCartMessage)
	}}
	rec := postAction(t, newTestRouter(d, state, nil), `{"type":"checkout"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var body struct {
		Code    string          `json:"code"`
		Effects effectsResponse `json:"effects"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != "empty_cart" || body.Effects.Message != controller.EmptyCartMessage {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestActions_CheckoutReturnsLinkOnce(t *testing.T) {
	state := NewStateRenderer()
	d := &stubDispatcher{apply: func(controller.Action) {
		state.OpenLink("https://wa.me/263782404426?text=hi")
	}}
	router := newTestRouter(d, state, nil)

	rec := postAction(t, router, `{"type":"checkout"}`)
	var resp actionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Effects.Link != "https://wa.me/263782404426?text=hi" {
		t.Fatalf("link = %q", resp.Effects.Link)
	}

	d.apply = nil
	rec = postAction(t, router, `{"type":"toggle_theme"}`)
	resp = actionResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Effects.Link != "" {
		t.Fatalf("link should be drained, got %q", resp.Effects.Link)
	}
}

func TestState_ReflectsRenderCalls(t *testing.T) {
	state := NewStateRenderer()
	state.ShowView(domain.ViewProducts)
	state.RenderTheme(domain.ThemeLight)
	state.RenderCatalogLoading()
	state.RenderCatalog([]domain.Product{{ID: "1", Name: "Steel Gas Stove", Price: decimal.RequireFromString("25")}})
	state.RenderCart(2, []domain.CartLine{{ProductID: "1", Name: "Steel Gas Stove", UnitPrice: decimal.RequireFromString("25"), Quantity: 2}}, decimal.RequireFromString("50"))
	state.RenderCountdown("9d 23:59:59.999")

	router := newTestRouter(&stubDispatcher{}, state, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var s stateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.View != "products" || s.Theme != "light" || s.Loading {
		t.Fatalf("unexpected state %+v", s)
	}
	if len(s.Products) != 1 || s.Products[0].Display != "$25.00" {
		t.Fatalf("products = %+v", s.Products)
	}
	if s.Cart.Count != 2 || s.Cart.Total != "$50.00" || s.Cart.Lines[0].Subtotal != "$50.00" {
		t.Fatalf("cart = %+v", s.Cart)
	}
	if s.Countdown != "9d 23:59:59.999" {
		t.Fatalf("countdown = %q", s.Countdown)
	}
}

func TestState_CatalogErrorShowsEmptyList(t *testing.T) {
	state := NewStateRenderer()
	state.RenderCatalogLoading()
	state.RenderCatalog(nil)
	state.RenderCatalogError(controller.CatalogUnavailable)

	s := state.snapshot()
	if s.Products == nil || len(s.Products) != 0 {
		t.Fatalf("expected empty, non-nil product list, got %#v", s.Products)
	}
	if s.CatalogError != controller.CatalogUnavailable {
		t.Fatalf("catalogError = %q", s.CatalogError)
	}
}

func TestHealthAndReady(t *testing.T) {
	failing := map[string]ReadinessCheck{
		"db": func(context.Context) error { return errors.New("db not reachable") },
	}
	router := newTestRouter(&stubDispatcher{}, NewStateRenderer(), failing)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "db not reachable") {
		t.Fatalf("readyz: got %d %s", rec.Code, rec.Body.String())
	}

	router = newTestRouter(&stubDispatcher{}, NewStateRenderer(), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz without checks: expected 200, got %d", rec.Code)
	}
}

func TestIndexPageServed(t *testing.T) {
	router := newTestRouter(&stubDispatcher{}, NewStateRenderer(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/api/actions") {
		t.Fatalf("index: got %d", rec.Code)
	}
}

func TestNew_RequiresDeps(t *testing.T) {
	if _, err := New(":0", nil, Deps{}); err == nil {
		t.Fatalf("expected error without dispatcher")
	}
	srv, err := New(":0", nil, Deps{Dispatcher: &stubDispatcher{}, State: NewStateRenderer()})
	if err != nil || srv.Handler() == nil {
		t.Fatalf("New: %v", err)
	}
}

func TestRouter_RequestLogGoesThroughZap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)
	router := buildRouter(zap.New(core), Deps{Dispatcher: &stubDispatcher{}, State: NewStateRenderer()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	entries := logs.FilterLoggerName("http").All()
	if len(entries) != 1 || !strings.Contains(entries[0].Message, "/healthz") {
		t.Fatalf("expected one http log entry for /healthz, got %+v", entries)
	}
}
