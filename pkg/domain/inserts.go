package domain

// Insert payloads. Server-assigned fields (id, timestamps) are absent; the
// storage backend fills them and returns the complete entity.

type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	Name         string
	Phone        string
}

type NewProduct struct {
	Name          string
	Description   string
	Price         float64
	DiscountPrice *float64
	Images        []string
	Category      string
	InStock       bool
	IsFeatured    bool
	IsLimited     bool
	LimitedCount  *int
	Materials     []string
	Origin        string
}

type NewCategory struct {
	Name string
	Slug string
}

type NewArticle struct {
	Title      string
	Slug       string
	Content    string
	Excerpt    string
	CoverImage string
	Category   string
}

type NewOrder struct {
	UserID          *int
	Status          string
	Total           float64
	ShippingAddress *Address
	BillingAddress  *Address
	PaymentMethod   string
	PaymentStatus   string
}

type NewOrderItem struct {
	OrderID   int
	ProductID int
	Quantity  int
	Price     float64
}

type NewSubscriber struct {
	Email string
}

type NewContact struct {
	Name    string
	Email   string
	Subject string
	Message string
}

type NewSetting struct {
	Key         string
	Value       string
	Category    string
	Description string
}
