// Package app wires storage, sessions, carts, payments and events into
// the storefront's use cases. HTTP concerns stay in the server package.
package app

import (
	"fmt"
	"strings"

	"tidewear/internal/cart"
	"tidewear/internal/events"
	"tidewear/internal/payments"
	"tidewear/internal/session"
	"tidewear/internal/store"
	"tidewear/pkg/auth"
	"tidewear/pkg/domain"
)

// App is the core application service. All dependencies are injected;
// nothing here opens connections on its own.
type App struct {
	store    store.Store
	sessions session.Store
	carts    cart.Store
	payments payments.Gateway
	events   events.Publisher
}

// New constructs the application from its collaborators.
func New(st store.Store, sessions session.Store, carts cart.Store, gateway payments.Gateway, publisher events.Publisher) *App {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &App{
		store:    st,
		sessions: sessions,
		carts:    carts,
		payments: gateway,
		events:   publisher,
	}
}

// Register creates an account and issues a session token.
func (a *App) Register(username, email, password, name, phone string) (domain.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" || email == "" {
		return domain.User{}, "", validationErr("username and email required")
	}
	if !strings.Contains(email, "@") {
		return domain.User{}, "", validationErr("invalid email address")
	}
	if err := auth.ValidatePassword(password); err != nil {
		return domain.User{}, "", &ValidationError{Message: err.Error()}
	}
	if _, exists, err := a.store.GetUserByUsername(username); err != nil {
		return domain.User{}, "", fmt.Errorf("check username: %w", err)
	} else if exists {
		return domain.User{}, "", ErrUsernameTaken
	}
	if _, exists, err := a.store.GetUserByEmail(email); err != nil {
		return domain.User{}, "", fmt.Errorf("check email: %w", err)
	} else if exists {
		return domain.User{}, "", ErrEmailTaken
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}
	user, err := a.store.CreateUser(domain.NewUser{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		Phone:        strings.TrimSpace(phone),
	})
	if err != nil {
		return domain.User{}, "", fmt.Errorf("create user: %w", err)
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// Login accepts a username or an email as identifier.
func (a *App) Login(identifier, password string) (domain.User, string, error) {
	identifier = strings.TrimSpace(identifier)
	user, ok, err := a.store.GetUserByUsername(identifier)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		user, ok, err = a.store.GetUserByEmail(strings.ToLower(identifier))
		if err != nil {
			return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
		}
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// UserFromToken resolves a session token to its user.
func (a *App) UserFromToken(token string) (domain.User, bool) {
	uid, ok, err := a.sessions.UserIDByToken(token)
	if err != nil || !ok {
		return domain.User{}, false
	}
	user, found, err := a.store.GetUser(uid)
	if err != nil || !found {
		return domain.User{}, false
	}
	return user, true
}

// Logout invalidates a session token where the backend supports it.
func (a *App) Logout(token string) error {
	return a.sessions.DeleteSession(token)
}

// ListProducts returns products matching the query.
func (a *App) ListProducts(q store.ProductQuery) ([]domain.Product, error) {
	return a.store.GetProducts(q)
}

// GetProduct returns one product by id.
func (a *App) GetProduct(id int) (domain.Product, error) {
	p, ok, err := a.store.GetProduct(id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("fetch product: %w", err)
	}
	if !ok {
		return domain.Product{}, ErrNotFound
	}
	return p, nil
}

// ListCategories returns all categories.
func (a *App) ListCategories() ([]domain.Category, error) {
	return a.store.GetCategories()
}

// GetCategoryBySlug returns one category by slug.
func (a *App) GetCategoryBySlug(slug string) (domain.Category, error) {
	c, ok, err := a.store.GetCategoryBySlug(slug)
	if err != nil {
		return domain.Category{}, fmt.Errorf("fetch category: %w", err)
	}
	if !ok {
		return domain.Category{}, ErrNotFound
	}
	return c, nil
}

// ListArticles returns articles matching the query.
func (a *App) ListArticles(q store.ArticleQuery) ([]domain.Article, error) {
	return a.store.GetArticles(q)
}

// GetArticle returns one article by id.
func (a *App) GetArticle(id int) (domain.Article, error) {
	art, ok, err := a.store.GetArticle(id)
	if err != nil {
		return domain.Article{}, fmt.Errorf("fetch article: %w", err)
	}
	if !ok {
		return domain.Article{}, ErrNotFound
	}
	return art, nil
}

// GetArticleBySlug returns one article by slug.
func (a *App) GetArticleBySlug(slug string) (domain.Article, error) {
	art, ok, err := a.store.GetArticleBySlug(slug)
	if err != nil {
		return domain.Article{}, fmt.Errorf("fetch article: %w", err)
	}
	if !ok {
		return domain.Article{}, ErrNotFound
	}
	return art, nil
}

// CreateProduct adds a product to the catalog.
func (a *App) CreateProduct(p domain.NewProduct) (domain.Product, error) {
	if strings.TrimSpace(p.Name) == "" {
		return domain.Product{}, validationErr("product name required")
	}
	if p.Price < 0 {
		return domain.Product{}, validationErr("price must not be negative")
	}
	return a.store.CreateProduct(p)
}

// UpdateProduct applies a partial update to a product.
func (a *App) UpdateProduct(id int, patch store.ProductPatch) (domain.Product, error) {
	if patch.Price != nil && *patch.Price < 0 {
		return domain.Product{}, validationErr("price must not be negative")
	}
	p, ok, err := a.store.UpdateProduct(id, patch)
	if err != nil {
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}
	if !ok {
		return domain.Product{}, ErrNotFound
	}
	return p, nil
}

// DeleteProduct removes a product from the catalog.
func (a *App) DeleteProduct(id int) error {
	existed, err := a.store.DeleteProduct(id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if !existed {
		return ErrNotFound
	}
	return nil
}

// CreateCategory adds a category.
func (a *App) CreateCategory(c domain.NewCategory) (domain.Category, error) {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Slug) == "" {
		return domain.Category{}, validationErr("category name and slug required")
	}
	if _, exists, err := a.store.GetCategoryBySlug(c.Slug); err != nil {
		return domain.Category{}, fmt.Errorf("check slug: %w", err)
	} else if exists {
		return domain.Category{}, validationErr("category slug already in use")
	}
	return a.store.CreateCategory(c)
}

// CreateArticle publishes an article.
func (a *App) CreateArticle(art domain.NewArticle) (domain.Article, error) {
	if strings.TrimSpace(art.Title) == "" || strings.TrimSpace(art.Slug) == "" {
		return domain.Article{}, validationErr("article title and slug required")
	}
	if _, exists, err := a.store.GetArticleBySlug(art.Slug); err != nil {
		return domain.Article{}, fmt.Errorf("check slug: %w", err)
	} else if exists {
		return domain.Article{}, validationErr("article slug already in use")
	}
	return a.store.CreateArticle(art)
}

// ListOrders returns all orders, newest first.
func (a *App) ListOrders() ([]domain.Order, error) {
	return a.store.GetOrders()
}

// ListUserOrders returns the orders placed by one user.
func (a *App) ListUserOrders(userID int) ([]domain.Order, error) {
	return a.store.GetUserOrders(userID)
}

// GetOrder returns an order with its items.
func (a *App) GetOrder(id int) (domain.Order, []domain.OrderItem, error) {
	order, ok, err := a.store.GetOrder(id)
	if err != nil {
		return domain.Order{}, nil, fmt.Errorf("fetch order: %w", err)
	}
	if !ok {
		return domain.Order{}, nil, ErrNotFound
	}
	items, err := a.store.GetOrderItems(id)
	if err != nil {
		return domain.Order{}, nil, fmt.Errorf("fetch order items: %w", err)
	}
	return order, items, nil
}

// UpdateOrderStatus moves an order to a new status.
func (a *App) UpdateOrderStatus(id int, status string) (domain.Order, error) {
	switch status {
	case domain.OrderPending, domain.OrderProcessing, domain.OrderShipped,
		domain.OrderDelivered, domain.OrderCancelled:
	default:
		return domain.Order{}, validationErr("unknown order status")
	}
	order, ok, err := a.store.UpdateOrderStatus(id, status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("update order status: %w", err)
	}
	if !ok {
		return domain.Order{}, ErrNotFound
	}
	return order, nil
}

// ListSubscribers returns all newsletter subscribers.
func (a *App) ListSubscribers() ([]domain.Subscriber, error) {
	return a.store.GetSubscribers()
}

// ListContacts returns all contact messages.
func (a *App) ListContacts() ([]domain.Contact, error) {
	return a.store.GetContacts()
}

// ListSettings returns settings, optionally filtered by category.
func (a *App) ListSettings(category string) ([]domain.Setting, error) {
	return a.store.GetSettings(category)
}

// CreateSetting adds a setting; keys must be unique.
func (a *App) CreateSetting(s domain.NewSetting) (domain.Setting, error) {
	if strings.TrimSpace(s.Key) == "" {
		return domain.Setting{}, validationErr("setting key required")
	}
	if _, exists, err := a.store.GetSettingByKey(s.Key); err != nil {
		return domain.Setting{}, fmt.Errorf("check key: %w", err)
	} else if exists {
		return domain.Setting{}, validationErr("setting key already in use")
	}
	return a.store.CreateSetting(s)
}

// UpdateSetting applies a partial update to a setting.
func (a *App) UpdateSetting(id int, patch store.SettingPatch) (domain.Setting, error) {
	s, ok, err := a.store.UpdateSetting(id, patch)
	if err != nil {
		return domain.Setting{}, fmt.Errorf("update setting: %w", err)
	}
	if !ok {
		return domain.Setting{}, ErrNotFound
	}
	return s, nil
}

// DeleteSetting removes a setting.
func (a *App) DeleteSetting(id int) error {
	existed, err := a.store.DeleteSetting(id)
	if err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}
	if !existed {
		return ErrNotFound
	}
	return nil
}

// Subscribe adds an email to the newsletter list. Subscribing twice is
// rejected before the insert so both storage backends behave alike.
func (a *App) Subscribe(email string) (domain.Subscriber, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.Subscriber{}, validationErr("invalid email address")
	}
	if _, exists, err := a.store.GetSubscriberByEmail(email); err != nil {
		return domain.Subscriber{}, fmt.Errorf("check subscriber: %w", err)
	} else if exists {
		return domain.Subscriber{}, ErrAlreadySubscribed
	}
	sub, err := a.store.CreateSubscriber(domain.NewSubscriber{Email: email})
	if err != nil {
		return domain.Subscriber{}, fmt.Errorf("create subscriber: %w", err)
	}
	a.publish(events.SubscriberJoined, sub)
	return sub, nil
}

// SubmitContact records a contact form message.
func (a *App) SubmitContact(c domain.NewContact) (domain.Contact, error) {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Email) == "" || strings.TrimSpace(c.Message) == "" {
		return domain.Contact{}, validationErr("name, email and message required")
	}
	contact, err := a.store.CreateContact(c)
	if err != nil {
		return domain.Contact{}, fmt.Errorf("create contact: %w", err)
	}
	a.publish(events.ContactReceived, contact)
	return contact, nil
}
