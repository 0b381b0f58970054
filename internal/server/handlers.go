package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"tidewear/internal/app"
	"tidewear/internal/store"
	"tidewear/pkg/domain"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, token, err := s.app.Register(req.Username, req.Email, req.Password, req.Name, req.Phone)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}
	user, token, err := s.app.Login(identifier, req.Password)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		if err := s.app.Logout(token); err != nil {
			writeAppError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request, user domain.User) {
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.app.ListProducts(productQuery(r))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Product]{Items: products, Count: len(products)})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := s.app.GetProduct(pathID(r))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	categories, err := s.app.ListCategories()
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Category]{Items: categories, Count: len(categories)})
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := s.app.GetCategoryBySlug(mux.Vars(r)["slug"])
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := s.app.ListArticles(articleQuery(r))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Article]{Items: articles, Count: len(articles)})
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	article, err := s.app.GetArticle(pathID(r))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (s *Server) handleGetArticleBySlug(w http.ResponseWriter, r *http.Request) {
	article, err := s.app.GetArticleBySlug(mux.Vars(r)["slug"])
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := s.app.GetCart(r.Context(), s.cartToken(w, r))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (s *Server) handleSetCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cart, err := s.app.SetCartItem(r.Context(), s.cartToken(w, r), req.ProductID, req.Quantity)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	checkout := app.CheckoutRequest{
		CartToken:       s.cartToken(w, r),
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PaymentMethod:   req.PaymentMethod,
	}
	// Orders stay anonymous unless the caller is logged in.
	if user, ok := s.authorize(r); ok {
		checkout.UserID = &user.ID
	}
	result, err := s.app.Checkout(r.Context(), checkout)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	subscriber, err := s.app.Subscribe(req.Email)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, subscriber)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	contact, err := s.app.SubmitContact(domain.NewContact{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, contact)
}

func (s *Server) handleMyOrders(w http.ResponseWriter, _ *http.Request, user domain.User) {
	orders, err := s.app.ListUserOrders(user.ID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Order]{Items: orders, Count: len(orders)})
}

func (s *Server) handleMyOrder(w http.ResponseWriter, r *http.Request, user domain.User) {
	order, items, err := s.app.GetOrder(pathID(r))
	if err != nil {
		writeAppError(w, err)
		return
	}
	if order.UserID == nil || *order.UserID != user.ID {
		// Treat other users' orders as missing, not forbidden.
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, orderResponse{Order: order, Items: items})
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.NewProduct
	if !decodeJSON(w, r, &req) {
		return
	}
	product, err := s.app.CreateProduct(req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch store.ProductPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	product, err := s.app.UpdateProduct(pathID(r), patch)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.app.DeleteProduct(pathID(r)); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req domain.NewCategory
	if !decodeJSON(w, r, &req) {
		return
	}
	category, err := s.app.CreateCategory(req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	var req domain.NewArticle
	if !decodeJSON(w, r, &req) {
		return
	}
	article, err := s.app.CreateArticle(req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, article)
}

func (s *Server) handleListOrders(w http.ResponseWriter, _ *http.Request) {
	orders, err := s.app.ListOrders()
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Order]{Items: orders, Count: len(orders)})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, items, err := s.app.GetOrder(pathID(r))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse{Order: order, Items: items})
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req orderStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := s.app.UpdateOrderStatus(pathID(r), req.Status)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleListSubscribers(w http.ResponseWriter, _ *http.Request) {
	subscribers, err := s.app.ListSubscribers()
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Subscriber]{Items: subscribers, Count: len(subscribers)})
}

func (s *Server) handleListContacts(w http.ResponseWriter, _ *http.Request) {
	contacts, err := s.app.ListContacts()
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Contact]{Items: contacts, Count: len(contacts)})
}

func (s *Server) handleListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.app.ListSettings(r.URL.Query().Get("category"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Setting]{Items: settings, Count: len(settings)})
}

func (s *Server) handleCreateSetting(w http.ResponseWriter, r *http.Request) {
	var req domain.NewSetting
	if !decodeJSON(w, r, &req) {
		return
	}
	setting, err := s.app.CreateSetting(req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, setting)
}

func (s *Server) handleUpdateSetting(w http.ResponseWriter, r *http.Request) {
	var patch store.SettingPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	setting, err := s.app.UpdateSetting(pathID(r), patch)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

func (s *Server) handleDeleteSetting(w http.ResponseWriter, r *http.Request) {
	if err := s.app.DeleteSetting(pathID(r)); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type cartItemRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

type checkoutRequest struct {
	ShippingAddress *domain.Address `json:"shippingAddress"`
	BillingAddress  *domain.Address `json:"billingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
}

type subscribeRequest struct {
	Email string `json:"email"`
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

type orderResponse struct {
	Order domain.Order       `json:"order"`
	Items []domain.OrderItem `json:"items"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}
