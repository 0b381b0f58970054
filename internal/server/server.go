// Package server exposes the storefront and admin HTTP API.
package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"tidewear/internal/app"
	"tidewear/internal/ratelimit"
	"tidewear/internal/store"
	"tidewear/internal/util"
	"tidewear/pkg/domain"
)

const cartCookieName = "tw_cart"

// Config wires required dependencies for the HTTP server.
type Config struct {
	App          *app.App
	AdminToken   string
	CORSOrigins  []string
	AuthLimiter  *ratelimit.FixedWindowLimiter
	SecureCookie bool
}

// Server holds the routed handler for the storefront API.
type Server struct {
	app          *app.App
	adminToken   string
	corsOrigins  []string
	authLimiter  *ratelimit.FixedWindowLimiter
	secureCookie bool
	router       *mux.Router
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:          cfg.App,
		adminToken:   cfg.AdminToken,
		corsOrigins:  cfg.CORSOrigins,
		authLimiter:  cfg.AuthLimiter,
		secureCookie: cfg.SecureCookie,
	}
	s.routes()
	return s
}

// Router returns the fully wrapped HTTP handler.
func (s *Server) Router() http.Handler {
	var h http.Handler = s.router
	h = util.WithRequestLog(h)
	h = util.WithCORS(s.corsOrigins, h)
	h = util.WithSecurityHeaders(h)
	h = util.WithRequestID(h)
	return h
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", s.limited(s.handleRegister)).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.limited(s.handleLogin)).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	api.Handle("/auth/me", s.authenticated(s.handleMe)).Methods(http.MethodGet)

	api.HandleFunc("/products", s.handleListProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id:[0-9]+}", s.handleGetProduct).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.handleListCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories/{slug}", s.handleGetCategory).Methods(http.MethodGet)
	api.HandleFunc("/articles", s.handleListArticles).Methods(http.MethodGet)
	api.HandleFunc("/articles/{id:[0-9]+}", s.handleGetArticle).Methods(http.MethodGet)
	api.HandleFunc("/articles/slug/{slug}", s.handleGetArticleBySlug).Methods(http.MethodGet)

	api.HandleFunc("/cart", s.handleGetCart).Methods(http.MethodGet)
	api.HandleFunc("/cart/items", s.handleSetCartItem).Methods(http.MethodPost)
	api.HandleFunc("/checkout", s.handleCheckout).Methods(http.MethodPost)

	api.HandleFunc("/subscribe", s.handleSubscribe).Methods(http.MethodPost)
	api.HandleFunc("/contact", s.handleContact).Methods(http.MethodPost)

	api.Handle("/orders", s.authenticated(s.handleMyOrders)).Methods(http.MethodGet)
	api.Handle("/orders/{id:[0-9]+}", s.authenticated(s.handleMyOrder)).Methods(http.MethodGet)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(s.adminOnly)
	admin.HandleFunc("/products", s.handleCreateProduct).Methods(http.MethodPost)
	admin.HandleFunc("/products/{id:[0-9]+}", s.handleUpdateProduct).Methods(http.MethodPatch)
	admin.HandleFunc("/products/{id:[0-9]+}", s.handleDeleteProduct).Methods(http.MethodDelete)
	admin.HandleFunc("/categories", s.handleCreateCategory).Methods(http.MethodPost)
	admin.HandleFunc("/articles", s.handleCreateArticle).Methods(http.MethodPost)
	admin.HandleFunc("/orders", s.handleListOrders).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{id:[0-9]+}", s.handleGetOrder).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{id:[0-9]+}/status", s.handleUpdateOrderStatus).Methods(http.MethodPatch)
	admin.HandleFunc("/subscribers", s.handleListSubscribers).Methods(http.MethodGet)
	admin.HandleFunc("/contacts", s.handleListContacts).Methods(http.MethodGet)
	admin.HandleFunc("/settings", s.handleListSettings).Methods(http.MethodGet)
	admin.HandleFunc("/settings", s.handleCreateSetting).Methods(http.MethodPost)
	admin.HandleFunc("/settings/{id:[0-9]+}", s.handleUpdateSetting).Methods(http.MethodPatch)
	admin.HandleFunc("/settings/{id:[0-9]+}", s.handleDeleteSetting).Methods(http.MethodDelete)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// limited applies the auth rate limiter per client IP when configured.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authLimiter != nil && !s.authLimiter.Allow(util.ClientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next(w, r)
	}
}

type authHandler func(http.ResponseWriter, *http.Request, domain.User)

// authenticated requires a valid bearer session token.
func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authorize(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, user)
	})
}

// adminOnly requires the configured admin token. Compare is constant
// time so the token cannot be probed byte by byte.
func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Admin-Token")
		if token == "" {
			token = bearerToken(r)
		}
		if s.adminToken == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authorize(r *http.Request) (domain.User, bool) {
	token := bearerToken(r)
	if token == "" {
		return domain.User{}, false
	}
	return s.app.UserFromToken(token)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// cartToken reads the cart cookie or header, minting a token (and
// setting the cookie) when the client has none yet.
func (s *Server) cartToken(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(cartCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := strings.TrimSpace(r.Header.Get("X-Cart-Token")); h != "" {
		return h
	}
	token := s.app.NewCartToken()
	http.SetCookie(w, &http.Cookie{
		Name:     cartCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   30 * 24 * 3600,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

func pathID(r *http.Request) int {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	return id
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeAppError maps application errors onto HTTP statuses.
func writeAppError(w http.ResponseWriter, err error) {
	var vErr *app.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Message)
	case errors.Is(err, app.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, app.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, app.ErrEmailTaken), errors.Is(err, app.ErrUsernameTaken),
		errors.Is(err, app.ErrAlreadySubscribed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrEmptyCart), errors.Is(err, app.ErrProductUnavailable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// ProductQuery parsing shared by the public product listing.
func productQuery(r *http.Request) store.ProductQuery {
	q := store.ProductQuery{Category: r.URL.Query().Get("category")}
	if v := r.URL.Query().Get("featured"); v != "" {
		featured := v == "true" || v == "1"
		q.Featured = &featured
	}
	q.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	q.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return q
}

func articleQuery(r *http.Request) store.ArticleQuery {
	q := store.ArticleQuery{Category: r.URL.Query().Get("category")}
	q.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	q.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return q
}
