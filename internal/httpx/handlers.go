package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/anantafoods/storefront/internal/accounts"
	"github.com/anantafoods/storefront/internal/catalog"
	"github.com/anantafoods/storefront/internal/checkout"
	"github.com/anantafoods/storefront/internal/orders"
	"github.com/anantafoods/storefront/internal/session"
)

type CredentialStore interface {
	Register(ctx context.Context, email, username, password string) error
	Authenticate(ctx context.Context, email, password string) (accounts.Account, error)
}

type OrderReader interface {
	Get(ctx context.Context, id string) (*orders.Order, error)
}

type Handlers struct {
	Accounts CredentialStore
	Catalog  *catalog.Catalog
	Checkout *checkout.Service
	Orders   OrderReader
	Sessions *session.Store
	Render   Renderer
	Log      zerolog.Logger
}

func (h *Handlers) Register(r *chi.Mux) {
	r.Get("/", h.index)
	r.Get("/contact", h.page("contact"))
	r.Get("/about", h.page("about"))
	r.Get("/login", h.loginForm)
	r.Post("/login", h.login)
	r.Get("/signup", h.signupForm)
	r.Post("/signup", h.signup)
	r.Get("/logout", h.logout)
	r.Get("/non_vegpickles", h.category(catalog.CategoryNonVegPickles))
	r.Get("/veg_pickles", h.category(catalog.CategoryVegPickles))
	r.Get("/snacks", h.category(catalog.CategorySnacks))
	r.Get("/cart", h.cart)
	r.Post("/cart", h.addToCart)
	r.Get("/success", h.success)
	r.Get("/orders/{id}", h.getOrder)

	r.Group(func(g chi.Router) {
		g.Use(RequireLogin)
		g.Get("/home", h.page("home"))
		g.Get("/check_out", h.checkoutForm)
		g.Post("/check_out", h.placeOrder)
	})
}

func (h *Handlers) index(w http.ResponseWriter, r *http.Request) {
	h.Render.Render(w, http.StatusOK, "index", nil)
}

func (h *Handlers) page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.Render.Render(w, http.StatusOK, name, nil)
	}
}

func (h *Handlers) category(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.Render.Render(w, http.StatusOK, name, map[string]any{
			"products": h.Catalog.Category(name),
		})
	}
}

func (h *Handlers) loginForm(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	if m := r.URL.Query().Get("message"); m != "" {
		data["message"] = m
	}
	h.Render.Render(w, http.StatusOK, "login", data)
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	email := r.FormValue("email")
	password := r.FormValue("password")

	a, err := h.Accounts.Authenticate(ctx, email, password)
	switch {
	case errors.Is(err, accounts.ErrNotFound):
		h.Render.Render(w, http.StatusOK, "login", map[string]any{"error": "User not found"})
		return
	case errors.Is(err, accounts.ErrInvalidCredential):
		h.Render.Render(w, http.StatusOK, "login", map[string]any{"error": "Incorrect password"})
		return
	case err != nil:
		h.Log.Error().Err(err).Msg("login failed")
		h.Render.Render(w, http.StatusOK, "login", map[string]any{"error": "An error occurred. Please try again."})
		return
	}

	s := session.FromContext(r.Context())
	s.Login(a.Username, a.Email)
	http.Redirect(w, r, "/home", http.StatusFound)
}

func (h *Handlers) signupForm(w http.ResponseWriter, r *http.Request) {
	h.Render.Render(w, http.StatusOK, "signup", nil)
}

func (h *Handlers) signup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	email := r.FormValue("email")
	username := r.FormValue("username")
	password := r.FormValue("password")

	err := h.Accounts.Register(ctx, email, username, password)
	switch {
	case errors.Is(err, accounts.ErrDuplicateAccount):
		h.Render.Render(w, http.StatusOK, "signup", map[string]any{"error": "Email already registered"})
		return
	case err != nil:
		h.Log.Error().Err(err).Msg("signup failed")
		h.Render.Render(w, http.StatusOK, "signup", map[string]any{"error": "Registration failed. Please try again."})
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if s := session.FromContext(r.Context()); s != nil {
		if err := h.Sessions.Destroy(ctx, s.Token); err != nil {
			h.Log.Error().Err(err).Msg("session destroy failed")
		}
		*s = session.Session{Token: s.Token}
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handlers) cart(w http.ResponseWriter, r *http.Request) {
	h.renderCart(w, r)
}

// addToCart resolves the price server-side; an unknown product/weight pair is
// a silent no-op and the cart page renders unchanged.
func (h *Handlers) addToCart(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())

	productID := r.FormValue("product_id")
	name := r.FormValue("product_name")
	weight := r.FormValue("weight")
	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil || quantity < 1 {
		quantity = 1
	}

	if price, ok := h.Catalog.PriceFor(productID, weight); ok {
		s.AddLine(orders.CartLine{
			ProductID: productID,
			Name:      name,
			Weight:    weight,
			Price:     price,
			Quantity:  quantity,
		})
	}
	h.renderCart(w, r)
}

func (h *Handlers) renderCart(w http.ResponseWriter, r *http.Request) {
	lines := []orders.CartLine{}
	if s := session.FromContext(r.Context()); s != nil && s.Cart != nil {
		lines = s.Cart
	}
	h.Render.Render(w, http.StatusOK, "cart", map[string]any{"cart": lines})
}

func (h *Handlers) checkoutForm(w http.ResponseWriter, r *http.Request) {
	h.Render.Render(w, http.StatusOK, "check_out", nil)
}

func (h *Handlers) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s := session.FromContext(r.Context())
	form := checkout.Form{
		Name:        r.FormValue("name"),
		Address:     r.FormValue("address"),
		Phone:       r.FormValue("phone"),
		Payment:     r.FormValue("payment"),
		CartData:    r.FormValue("cart_data"),
		TotalAmount: r.FormValue("total_amount"),
	}
	if form.CartData == "" {
		form.CartData = "[]"
	}
	if form.TotalAmount == "" {
		form.TotalAmount = "0"
	}

	res := h.Checkout.Place(ctx, form, s.Email, s.Email)
	if res.State != orders.StateCleared {
		h.Render.Render(w, http.StatusOK, "check_out", map[string]any{"error": res.Message})
		return
	}

	s.ClearCart()
	http.Redirect(w, r, "/success?message="+url.QueryEscape(res.Message), http.StatusFound)
}

func (h *Handlers) success(w http.ResponseWriter, r *http.Request) {
	h.Render.Render(w, http.StatusOK, "success", map[string]any{
		"message": r.URL.Query().Get("message"),
	})
}

func (h *Handlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Orders.Get(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, orders.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Msg("order lookup failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	h.Render.Render(w, http.StatusOK, "order", map[string]any{"order": o})
}
