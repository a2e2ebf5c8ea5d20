package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anantafoods/storefront/internal/accounts"
	"github.com/anantafoods/storefront/internal/catalog"
	"github.com/anantafoods/storefront/internal/checkout"
	"github.com/anantafoods/storefront/internal/orders"
	"github.com/anantafoods/storefront/internal/session"
)

type stubRenderer struct {
	status int
	page   string
	data   map[string]any
}

func (s *stubRenderer) Render(w http.ResponseWriter, status int, page string, data map[string]any) {
	s.status, s.page, s.data = status, page, data
	w.WriteHeader(status)
}

type mockAccounts struct {
	registerErr error
	registered  []string
	account     accounts.Account
	authErr     error
}

func (m *mockAccounts) Register(_ context.Context, email, _, _ string) error {
	if m.registerErr != nil {
		return m.registerErr
	}
	m.registered = append(m.registered, email)
	return nil
}

func (m *mockAccounts) Authenticate(context.Context, string, string) (accounts.Account, error) {
	if m.authErr != nil {
		return accounts.Account{}, m.authErr
	}
	return m.account, nil
}

type mockLedger struct {
	saved []*orders.Order
	err   error
}

func (m *mockLedger) Save(_ context.Context, o *orders.Order) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, o)
	return nil
}

func (m *mockLedger) Get(_ context.Context, id string) (*orders.Order, error) {
	for _, o := range m.saved {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, orders.ErrNotFound
}

type testApp struct {
	router   http.Handler
	store    *session.Store
	rend     *stubRenderer
	ledger   *mockLedger
	accounts *mockAccounts
}

func setupApp(t *testing.T) *testApp {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := session.NewStore(client, time.Hour)
	rend := &stubRenderer{}
	ledger := &mockLedger{}
	accs := &mockAccounts{}

	router := NewRouter(Sessions(store, zerolog.Nop()))
	h := &Handlers{
		Accounts: accs,
		Catalog:  catalog.Default(),
		Checkout: &checkout.Service{Ledger: ledger, Log: zerolog.Nop()},
		Orders:   ledger,
		Sessions: store,
		Render:   rend,
		Log:      zerolog.Nop(),
	}
	h.Register(router)

	return &testApp{router: router, store: store, rend: rend, ledger: ledger, accounts: accs}
}

func (a *testApp) do(method, target, token string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// loginSession seeds an authenticated session under the given token.
func (a *testApp) loginSession(t *testing.T, token, username, email string) {
	s, err := a.store.Load(context.Background(), token)
	require.NoError(t, err)
	s.Login(username, email)
	require.NoError(t, a.store.Save(context.Background(), s))
}

func TestHealthz(t *testing.T) {
	app := setupApp(t)
	w := app.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSignup_RedirectsToLogin(t *testing.T) {
	app := setupApp(t)

	w := app.do(http.MethodPost, "/signup", "", url.Values{
		"email":    {"a@x.com"},
		"username": {"A"},
		"password": {"secret123"},
	})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Equal(t, []string{"a@x.com"}, app.accounts.registered)
}

func TestSignup_Duplicate(t *testing.T) {
	app := setupApp(t)
	app.accounts.registerErr = accounts.ErrDuplicateAccount

	w := app.do(http.MethodPost, "/signup", "", url.Values{
		"email":    {"a@x.com"},
		"username": {"A"},
		"password": {"secret123"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "signup", app.rend.page)
	assert.Equal(t, "Email already registered", app.rend.data["error"])
}

func TestLogin_Success(t *testing.T) {
	app := setupApp(t)
	app.accounts.account = accounts.Account{Email: "a@x.com", Username: "A"}

	w := app.do(http.MethodPost, "/login", "tok-1", url.Values{
		"email":    {"a@x.com"},
		"password": {"secret123"},
	})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/home", w.Header().Get("Location"))

	s, err := app.store.Load(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.True(t, s.LoggedIn)
	assert.Equal(t, "A", s.Username)
	assert.Equal(t, "a@x.com", s.Email)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name    string
		authErr error
		wantMsg string
	}{
		{"unknown email", accounts.ErrNotFound, "User not found"},
		{"wrong password", accounts.ErrInvalidCredential, "Incorrect password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupApp(t)
			app.accounts.authErr = tt.authErr

			w := app.do(http.MethodPost, "/login", "tok-1", url.Values{
				"email":    {"a@x.com"},
				"password": {"whatever"},
			})

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "login", app.rend.page)
			assert.Equal(t, tt.wantMsg, app.rend.data["error"])

			s, err := app.store.Load(context.Background(), "tok-1")
			require.NoError(t, err)
			assert.False(t, s.LoggedIn, "failed login must not establish a session")
		})
	}
}

func TestAuthGate_RedirectsAnonymous(t *testing.T) {
	app := setupApp(t)

	for _, target := range []string{"/home", "/check_out"} {
		w := app.do(http.MethodGet, target, "tok-anon", nil)
		assert.Equal(t, http.StatusFound, w.Code, target)
		loc, err := url.Parse(w.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "/login", loc.Path, target)
	}
}

func TestRequireRole(t *testing.T) {
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }

	gated := RequireRole("admin")(http.HandlerFunc(ok))

	serve := func(s *session.Session) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req = req.WithContext(session.NewContext(req.Context(), s))
		w := httptest.NewRecorder()
		gated.ServeHTTP(w, req)
		return w
	}

	w := serve(&session.Session{LoggedIn: true, Role: "admin"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(&session.Session{LoggedIn: true})
	assert.Equal(t, http.StatusFound, w.Code)

	w = serve(&session.Session{})
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestAddToCart_AppendsLine(t *testing.T) {
	app := setupApp(t)

	w := app.do(http.MethodPost, "/cart", "tok-1", url.Values{
		"product_id":   {"1"},
		"product_name": {"Chicken Pickle"},
		"weight":       {"250"},
		"quantity":     {"2"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cart", app.rend.page)

	s, err := app.store.Load(context.Background(), "tok-1")
	require.NoError(t, err)
	require.Len(t, s.Cart, 1)
	line := s.Cart[0]
	assert.Equal(t, "1", line.ProductID)
	assert.Equal(t, "250", line.Weight)
	assert.Equal(t, 600, line.Price, "price comes from the catalog, not the form")
	assert.Equal(t, 2, line.Quantity)
}

func TestAddToCart_UnknownPriceIsNoOp(t *testing.T) {
	app := setupApp(t)

	tests := []struct {
		name      string
		productID string
		weight    string
	}{
		{"unknown weight", "1", "750"},
		{"unknown product", "999", "250"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(http.MethodPost, "/cart", "tok-1", url.Values{
				"product_id": {tt.productID},
				"weight":     {tt.weight},
				"quantity":   {"1"},
			})

			assert.Equal(t, http.StatusOK, w.Code, "no error surfaces to the caller")

			s, err := app.store.Load(context.Background(), "tok-1")
			require.NoError(t, err)
			assert.Empty(t, s.Cart, "cart count must be unchanged")
		})
	}
}

func TestCheckout_Success(t *testing.T) {
	app := setupApp(t)
	app.loginSession(t, "tok-1", "A", "a@x.com")

	// Build the cart through the handler, the way the pages do.
	app.do(http.MethodPost, "/cart", "tok-1", url.Values{
		"product_id":   {"1"},
		"product_name": {"Chicken Pickle"},
		"weight":       {"250"},
		"quantity":     {"2"},
	})

	w := app.do(http.MethodPost, "/check_out", "tok-1", url.Values{
		"name":         {"A"},
		"address":      {"12 Main St"},
		"phone":        {"9876543210"},
		"payment":      {"cod"},
		"cart_data":    {`[{"id":"1","name":"Chicken Pickle","weight":"250","price":600,"quantity":2}]`},
		"total_amount": {"1200"},
	})

	assert.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/success", loc.Path)
	assert.Equal(t, "Your order has been placed successfully!", loc.Query().Get("message"))

	require.Len(t, app.ledger.saved, 1)
	o := app.ledger.saved[0]
	assert.Equal(t, "a@x.com", o.Account)
	assert.Equal(t, 1200.0, o.Total)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)

	s, err := app.store.Load(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Empty(t, s.Cart, "cart is cleared after a successful checkout")
}

func TestCheckout_BadPhonePersistsNothing(t *testing.T) {
	app := setupApp(t)
	app.loginSession(t, "tok-1", "A", "a@x.com")

	for _, phone := range []string{"123456789", "12345678901", "12345"} {
		w := app.do(http.MethodPost, "/check_out", "tok-1", url.Values{
			"name":         {"A"},
			"address":      {"12 Main St"},
			"phone":        {phone},
			"payment":      {"cod"},
			"cart_data":    {`[{"id":"1","weight":"250","price":600,"quantity":1}]`},
			"total_amount": {"600"},
		})

		assert.Equal(t, http.StatusOK, w.Code, phone)
		assert.Equal(t, "check_out", app.rend.page)
		assert.Equal(t, checkout.MsgBadPhone, app.rend.data["error"])
	}
	assert.Empty(t, app.ledger.saved, "ledger record count unchanged")
}

func TestCheckout_EmptyFormDefaults(t *testing.T) {
	app := setupApp(t)
	app.loginSession(t, "tok-1", "A", "a@x.com")

	w := app.do(http.MethodPost, "/check_out", "tok-1", url.Values{
		"name":    {"A"},
		"address": {"12 Main St"},
		"phone":   {"9876543210"},
		"payment": {"cod"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, checkout.MsgEmptyCart, app.rend.data["error"])
	assert.Empty(t, app.ledger.saved)
}

func TestLogout_DestroysSession(t *testing.T) {
	app := setupApp(t)
	app.loginSession(t, "tok-1", "A", "a@x.com")

	w := app.do(http.MethodGet, "/logout", "tok-1", nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	s, err := app.store.Load(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.False(t, s.LoggedIn)
	assert.Empty(t, s.Cart)
}

func TestCategoryPages(t *testing.T) {
	app := setupApp(t)

	tests := []struct {
		target string
		page   string
		count  int
	}{
		{"/non_vegpickles", catalog.CategoryNonVegPickles, 6},
		{"/veg_pickles", catalog.CategoryVegPickles, 6},
		{"/snacks", catalog.CategorySnacks, 9},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := app.do(http.MethodGet, tt.target, "", nil)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.page, app.rend.page)
			products, ok := app.rend.data["products"].([]catalog.Product)
			require.True(t, ok)
			assert.Len(t, products, tt.count)
		})
	}
}

func TestSuccessPage_PassesMessage(t *testing.T) {
	app := setupApp(t)

	w := app.do(http.MethodGet, "/success?message=done", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", app.rend.page)
	assert.Equal(t, "done", app.rend.data["message"])
}

func TestGetOrder(t *testing.T) {
	app := setupApp(t)
	app.ledger.saved = append(app.ledger.saved, &orders.Order{ID: "o-1", Account: "a@x.com"})

	w := app.do(http.MethodGet, "/orders/o-1", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "order", app.rend.page)

	w = app.do(http.MethodGet, "/orders/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
