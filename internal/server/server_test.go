package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"tidewear/internal/app"
	"tidewear/internal/cart"
	"tidewear/internal/session"
	"tidewear/internal/store"
	"tidewear/pkg/domain"
)

const testAdminToken = "admin-test-token"

func newTestServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	a := app.New(st, session.NewJWTStore("test-secret", time.Hour), cart.NewMemoryStore(), nil, nil)
	srv := httptest.NewServer(New(Config{App: a, AdminToken: testAdminToken}).Router())
	t.Cleanup(srv.Close)
	return srv, st
}

func doJSON(t *testing.T, method, url string, payload any, headers map[string]string) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, http.MethodGet, srv.URL+"/health", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestRegisterLoginMe(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", map[string]string{
		"username": "marina",
		"email":    "marina@example.com",
		"password": "Dr1ft&Tides!",
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", resp.StatusCode)
	}
	reg := decodeBody[authResponse](t, resp)
	if reg.Token == "" || reg.User.Username != "marina" {
		t.Fatalf("unexpected register response: %+v", reg)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/auth/me", nil, map[string]string{
		"Authorization": "Bearer " + reg.Token,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d", resp.StatusCode)
	}
	me := decodeBody[domain.User](t, resp)
	if me.ID != reg.User.ID {
		t.Fatalf("me = %+v, want user %d", me, reg.User.ID)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/auth/me", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated me status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", map[string]string{
		"username": "marina",
		"password": "wrong",
	}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d", resp.StatusCode)
	}
}

func TestProductListingAndFilters(t *testing.T) {
	srv, st := newTestServer(t)
	if err := store.Seed(st); err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/products?category=swimwear&featured=true", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	list := decodeBody[listResponse[domain.Product]](t, resp)
	if list.Count == 0 {
		t.Fatalf("no featured swimwear in seed data")
	}
	for _, p := range list.Items {
		if p.Category != "swimwear" || !p.IsFeatured {
			t.Fatalf("filter leaked: %+v", p)
		}
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/products/999999", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing product status = %d", resp.StatusCode)
	}
}

func TestAdminRequiresToken(t *testing.T) {
	srv, _ := newTestServer(t)

	product := map[string]any{"name": "Surf Tee", "price": 40, "inStock": true}

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/admin/products", product, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("no token status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/admin/products", product, map[string]string{
		"X-Admin-Token": "wrong",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("wrong token status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/admin/products", product, map[string]string{
		"X-Admin-Token": testAdminToken,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("valid token status = %d", resp.StatusCode)
	}
	created := decodeBody[domain.Product](t, resp)
	if created.ID == 0 || created.Name != "Surf Tee" {
		t.Fatalf("unexpected product: %+v", created)
	}
}

func TestAdminProductUpdateAndDelete(t *testing.T) {
	srv, st := newTestServer(t)
	admin := map[string]string{"X-Admin-Token": testAdminToken}

	p, err := st.CreateProduct(domain.NewProduct{Name: "Surf Tee", Price: 40, InStock: true})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	resp := doJSON(t, http.MethodPatch, srv.URL+"/api/products/1", nil, nil)
	if resp.StatusCode == http.StatusOK {
		t.Fatalf("public PATCH must not exist")
	}

	resp = doJSON(t, http.MethodPatch, srv.URL+"/api/admin/products/1", map[string]any{"price": 35}, admin)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch status = %d", resp.StatusCode)
	}
	updated := decodeBody[domain.Product](t, resp)
	if updated.Price != 35 || updated.Name != "Surf Tee" {
		t.Fatalf("patch wrong: %+v", updated)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/admin/products/1", nil, admin)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	if _, ok, _ := st.GetProduct(p.ID); ok {
		t.Fatalf("product still present after delete")
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/admin/products/1", nil, admin)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("double delete status = %d", resp.StatusCode)
	}
}

func TestCartAndCheckoutFlow(t *testing.T) {
	srv, st := newTestServer(t)

	p, err := st.CreateProduct(domain.NewProduct{Name: "Coral Reef One-Piece", Price: 250, InStock: true})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	// First cart request mints the cart cookie.
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/cart", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cart status = %d", resp.StatusCode)
	}
	var cartCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "tw_cart" {
			cartCookie = c
		}
	}
	if cartCookie == nil {
		t.Fatalf("no cart cookie set")
	}
	withCart := map[string]string{"Cookie": cartCookie.Name + "=" + cartCookie.Value}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/cart/items", map[string]int{
		"productId": p.ID, "quantity": 2,
	}, withCart)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add item status = %d", resp.StatusCode)
	}
	c := decodeBody[cart.Cart](t, resp)
	if len(c.Items) != 1 || c.Items[0].Quantity != 2 {
		t.Fatalf("unexpected cart: %+v", c)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/checkout", map[string]any{
		"shippingAddress": map[string]string{
			"name": "Marina", "street": "1 Shore Rd", "city": "Lisbon",
			"postalCode": "1000", "country": "PT",
		},
		"paymentMethod": "card",
	}, withCart)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout status = %d", resp.StatusCode)
	}
	result := decodeBody[app.CheckoutResult](t, resp)
	if result.Order.Total != 500 || len(result.Items) != 1 {
		t.Fatalf("unexpected checkout result: %+v", result)
	}

	// Empty cart after checkout cannot check out again.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/checkout", map[string]any{
		"shippingAddress": map[string]string{
			"name": "Marina", "street": "1 Shore Rd", "city": "Lisbon",
			"postalCode": "1000", "country": "PT",
		},
	}, withCart)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("empty checkout status = %d", resp.StatusCode)
	}
}

func TestSubscribeConflict(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/subscribe", map[string]string{"email": "waves@example.com"}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("subscribe status = %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/subscribe", map[string]string{"email": "waves@example.com"}, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate subscribe status = %d", resp.StatusCode)
	}
}

func TestAdminSettingsCRUD(t *testing.T) {
	srv, _ := newTestServer(t)
	admin := map[string]string{"X-Admin-Token": testAdminToken}

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/admin/settings", map[string]string{
		"key": "store_currency", "value": "EUR", "category": "payment",
	}, admin)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create setting status = %d", resp.StatusCode)
	}
	setting := decodeBody[domain.Setting](t, resp)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/admin/settings", map[string]string{
		"key": "store_currency", "value": "USD",
	}, admin)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate key status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPatch, srv.URL+"/api/admin/settings/1", map[string]string{"value": "USD"}, admin)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch setting status = %d", resp.StatusCode)
	}
	updated := decodeBody[domain.Setting](t, resp)
	if updated.Value != "USD" || updated.Key != setting.Key {
		t.Fatalf("patch wrong: %+v", updated)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/admin/settings/1", nil, admin)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete setting status = %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/admin/settings/1", nil, admin)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("double delete status = %d", resp.StatusCode)
	}
}

func TestUserOrderVisibility(t *testing.T) {
	srv, st := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", map[string]string{
		"username": "marina", "email": "marina@example.com", "password": "Dr1ft&Tides!",
	}, nil)
	reg := decodeBody[authResponse](t, resp)
	auth := map[string]string{"Authorization": "Bearer " + reg.Token}

	otherID := reg.User.ID + 100
	mine, err := st.CreateOrder(domain.NewOrder{UserID: &reg.User.ID, Status: domain.OrderPending, Total: 10})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	theirs, err := st.CreateOrder(domain.NewOrder{UserID: &otherID, Status: domain.OrderPending, Total: 20})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/orders", nil, auth)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("orders status = %d", resp.StatusCode)
	}
	list := decodeBody[listResponse[domain.Order]](t, resp)
	if list.Count != 1 || list.Items[0].ID != mine.ID {
		t.Fatalf("unexpected orders: %+v", list)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/orders/"+strconv.Itoa(theirs.ID), nil, auth)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign order status = %d", resp.StatusCode)
	}
}
