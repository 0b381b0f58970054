package domain

import "time"

// OrderStatus values used by the application layer. The storage contract
// treats status as a free-form string.
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// PaymentStatus values recorded on orders.
const (
	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
)

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Product struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	DiscountPrice *float64  `json:"discountPrice,omitempty"`
	Images        []string  `json:"images"`
	Category      string    `json:"category"`
	InStock       bool      `json:"inStock"`
	IsFeatured    bool      `json:"isFeatured"`
	IsLimited     bool      `json:"isLimited"`
	LimitedCount  *int      `json:"limitedCount,omitempty"`
	Materials     []string  `json:"materials"`
	Origin        string    `json:"origin,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// EffectivePrice returns the discount price when one is set.
func (p Product) EffectivePrice() float64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Article struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Content    string    `json:"content"`
	Excerpt    string    `json:"excerpt,omitempty"`
	CoverImage string    `json:"coverImage,omitempty"`
	Category   string    `json:"category,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Address is a structured shipping or billing address attached to an order.
type Address struct {
	Name       string `json:"name"`
	Street     string `json:"street"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

type Order struct {
	ID              int       `json:"id"`
	UserID          *int      `json:"userId,omitempty"`
	Status          string    `json:"status"`
	Total           float64   `json:"total"`
	ShippingAddress *Address  `json:"shippingAddress,omitempty"`
	BillingAddress  *Address  `json:"billingAddress,omitempty"`
	PaymentMethod   string    `json:"paymentMethod,omitempty"`
	PaymentStatus   string    `json:"paymentStatus,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// OrderItem records a purchased line. Price is a snapshot taken at purchase
// time; later product price changes do not affect past orders.
type OrderItem struct {
	ID        int     `json:"id"`
	OrderID   int     `json:"orderId"`
	ProductID int     `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type Subscriber struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type Contact struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type Setting struct {
	ID          int       `json:"id"`
	Key         string    `json:"key"`
	Value       string    `json:"value,omitempty"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
