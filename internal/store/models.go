package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence. Ids, sequences and referential
// constraints are delegated to the database.
type UserModel struct {
	ID           int       `gorm:"primaryKey"`
	Username     string    `gorm:"not null;index"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Name         string    ``
	Phone        string    ``
	CreatedAt    time.Time `gorm:"not null"`
}

type CategoryModel struct {
	ID   int    `gorm:"primaryKey"`
	Name string `gorm:"not null"`
	Slug string `gorm:"uniqueIndex;not null"`
}

type ProductModel struct {
	ID            int                         `gorm:"primaryKey"`
	Name          string                      `gorm:"not null"`
	Description   string                      `gorm:"type:text;not null"`
	Price         float64                     `gorm:"not null"`
	DiscountPrice *float64                    ``
	Images        datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Category      string                      `gorm:"not null;index"`
	InStock       bool                        `gorm:"not null"`
	IsFeatured    bool                        `gorm:"not null;index"`
	IsLimited     bool                        `gorm:"not null"`
	LimitedCount  *int                        ``
	Materials     datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Origin        string                      ``
	CreatedAt     time.Time                   `gorm:"not null;index"`
}

type ArticleModel struct {
	ID         int       `gorm:"primaryKey"`
	Title      string    `gorm:"not null"`
	Slug       string    `gorm:"uniqueIndex;not null"`
	Content    string    `gorm:"type:text;not null"`
	Excerpt    string    `gorm:"type:text"`
	CoverImage string    ``
	Category   string    `gorm:"index"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

type OrderModel struct {
	ID              int            `gorm:"primaryKey"`
	UserID          *int           `gorm:"index"`
	Status          string         `gorm:"not null"`
	Total           float64        `gorm:"not null"`
	ShippingAddress datatypes.JSON `gorm:"type:jsonb"`
	BillingAddress  datatypes.JSON `gorm:"type:jsonb"`
	PaymentMethod   string         ``
	PaymentStatus   string         ``
	CreatedAt       time.Time      `gorm:"not null;index"`
}

type OrderItemModel struct {
	ID        int     `gorm:"primaryKey"`
	OrderID   int     `gorm:"not null;index"`
	ProductID int     `gorm:"not null;index"`
	Quantity  int     `gorm:"not null;check:quantity > 0"`
	Price     float64 `gorm:"not null"`
}

type SubscriberModel struct {
	ID        int       `gorm:"primaryKey"`
	Email     string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type ContactModel struct {
	ID        int       `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	Email     string    `gorm:"not null"`
	Subject   string    ``
	Message   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type SettingModel struct {
	ID          int       `gorm:"primaryKey"`
	Key         string    `gorm:"uniqueIndex;not null"`
	Value       string    ``
	Category    string    `gorm:"not null;index"`
	Description string    ``
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}
