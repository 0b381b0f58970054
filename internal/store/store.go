package store

import "tidewear/pkg/domain"

// Store defines persistence operations for the nine storefront entity kinds.
// Lookups return (entity, false, nil) when no record exists; an error means
// the backend itself failed, which the in-memory implementation never does.
// Uniqueness of emails, slugs and setting keys is the caller's concern; the
// contract only enforces whatever constraints the relational schema declares.
type Store interface {
	// users
	CreateUser(domain.NewUser) (domain.User, error)
	GetUser(id int) (domain.User, bool, error)
	GetUserByUsername(username string) (domain.User, bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)

	// categories
	CreateCategory(domain.NewCategory) (domain.Category, error)
	GetCategories() ([]domain.Category, error)
	GetCategory(id int) (domain.Category, bool, error)
	GetCategoryBySlug(slug string) (domain.Category, bool, error)

	// products
	CreateProduct(domain.NewProduct) (domain.Product, error)
	GetProducts(ProductQuery) ([]domain.Product, error)
	GetProduct(id int) (domain.Product, bool, error)
	UpdateProduct(id int, patch ProductPatch) (domain.Product, bool, error)
	DeleteProduct(id int) (bool, error)

	// articles
	CreateArticle(domain.NewArticle) (domain.Article, error)
	GetArticles(ArticleQuery) ([]domain.Article, error)
	GetArticle(id int) (domain.Article, bool, error)
	GetArticleBySlug(slug string) (domain.Article, bool, error)

	// orders
	CreateOrder(domain.NewOrder) (domain.Order, error)
	CreateOrderWithItems(order domain.NewOrder, items []domain.NewOrderItem) (domain.Order, []domain.OrderItem, error)
	GetOrders() ([]domain.Order, error)
	GetUserOrders(userID int) ([]domain.Order, error)
	GetOrder(id int) (domain.Order, bool, error)
	UpdateOrderStatus(id int, status string) (domain.Order, bool, error)

	// order items
	CreateOrderItem(domain.NewOrderItem) (domain.OrderItem, error)
	GetOrderItems(orderID int) ([]domain.OrderItem, error)

	// subscribers
	CreateSubscriber(domain.NewSubscriber) (domain.Subscriber, error)
	GetSubscribers() ([]domain.Subscriber, error)
	GetSubscriberByEmail(email string) (domain.Subscriber, bool, error)

	// contacts
	CreateContact(domain.NewContact) (domain.Contact, error)
	GetContacts() ([]domain.Contact, error)

	// settings
	CreateSetting(domain.NewSetting) (domain.Setting, error)
	GetSettings(category string) ([]domain.Setting, error)
	GetSetting(id int) (domain.Setting, bool, error)
	GetSettingByKey(key string) (domain.Setting, bool, error)
	UpdateSetting(id int, patch SettingPatch) (domain.Setting, bool, error)
	DeleteSetting(id int) (bool, error)
}

// ProductQuery filters and slices product listings. Zero values impose no
// constraint: empty category and nil featured match everything, zero limit
// means all remaining rows. Filters combine with logical AND; offset is
// applied before limit, after filtering.
type ProductQuery struct {
	Category string
	Featured *bool
	Offset   int
	Limit    int
}

// ArticleQuery filters and slices article listings.
type ArticleQuery struct {
	Category string
	Offset   int
	Limit    int
}

// ProductPatch is a partial product update. Nil fields are left untouched.
type ProductPatch struct {
	Name          *string
	Description   *string
	Price         *float64
	DiscountPrice *float64
	Images        *[]string
	Category      *string
	InStock       *bool
	IsFeatured    *bool
	IsLimited     *bool
	LimitedCount  *int
	Materials     *[]string
	Origin        *string
}

// SettingPatch is a partial setting update. Nil fields are left untouched;
// updatedAt is refreshed on every applied patch.
type SettingPatch struct {
	Value       *string
	Category    *string
	Description *string
}
