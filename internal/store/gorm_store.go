package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tidewear/pkg/domain"
)

// GormStore implements Store using GORM + Postgres. It is a thin translation
// layer: connectivity and constraint failures propagate unmodified, and no
// retries happen here. Listings of products, articles and orders come back
// newest-first, the authoritative order for this backend.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return newGormStore(db)
}

// NewGormStoreWithDB wraps an existing connection, used by tests.
func NewGormStoreWithDB(db *gorm.DB) (*GormStore, error) {
	return newGormStore(db)
}

func newGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(
		&UserModel{}, &CategoryModel{}, &ProductModel{}, &ArticleModel{},
		&OrderModel{}, &OrderItemModel{}, &SubscriberModel{}, &ContactModel{},
		&SettingModel{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

const newestFirst = "created_at DESC, id DESC"

// users

func (s *GormStore) CreateUser(in domain.NewUser) (domain.User, error) {
	model := UserModel{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Name:         in.Name,
		Phone:        in.Phone,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.User{}, err
	}
	return userFromModel(model), nil
}

func (s *GormStore) GetUser(id int) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// Unique-field lookups rely on First's implicit primary-key ordering, so
// the lowest id wins if duplicates predate the unique indexes. This matches
// the memory backend's first-insertion-wins scan.
func (s *GormStore) GetUserByUsername(username string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// categories

func (s *GormStore) CreateCategory(in domain.NewCategory) (domain.Category, error) {
	model := CategoryModel{Name: in.Name, Slug: in.Slug}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Category{}, err
	}
	return categoryFromModel(model), nil
}

func (s *GormStore) GetCategories() ([]domain.Category, error) {
	var models []CategoryModel
	if err := s.db.Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(models))
	for _, m := range models {
		out = append(out, categoryFromModel(m))
	}
	return out, nil
}

func (s *GormStore) GetCategory(id int) (domain.Category, bool, error) {
	var model CategoryModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Category{}, false, nil
		}
		return domain.Category{}, false, err
	}
	return categoryFromModel(model), true, nil
}

func (s *GormStore) GetCategoryBySlug(slug string) (domain.Category, bool, error) {
	var model CategoryModel
	if err := s.db.First(&model, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Category{}, false, nil
		}
		return domain.Category{}, false, err
	}
	return categoryFromModel(model), true, nil
}

// products

func (s *GormStore) CreateProduct(in domain.NewProduct) (domain.Product, error) {
	model := productToModel(in)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Product{}, err
	}
	return productFromModel(model), nil
}

func (s *GormStore) GetProducts(q ProductQuery) ([]domain.Product, error) {
	tx := s.db.Order(newestFirst)
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.Featured != nil {
		tx = tx.Where("is_featured = ?", *q.Featured)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	var models []ProductModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(models))
	for _, m := range models {
		out = append(out, productFromModel(m))
	}
	return out, nil
}

func (s *GormStore) GetProduct(id int) (domain.Product, bool, error) {
	var model ProductModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, false, nil
		}
		return domain.Product{}, false, err
	}
	return productFromModel(model), true, nil
}

func (s *GormStore) UpdateProduct(id int, patch ProductPatch) (domain.Product, bool, error) {
	updates := map[string]any{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Price != nil {
		updates["price"] = *patch.Price
	}
	if patch.DiscountPrice != nil {
		updates["discount_price"] = *patch.DiscountPrice
	}
	if patch.Images != nil {
		updates["images"] = datatypes.NewJSONSlice(*patch.Images)
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	if patch.InStock != nil {
		updates["in_stock"] = *patch.InStock
	}
	if patch.IsFeatured != nil {
		updates["is_featured"] = *patch.IsFeatured
	}
	if patch.IsLimited != nil {
		updates["is_limited"] = *patch.IsLimited
	}
	if patch.LimitedCount != nil {
		updates["limited_count"] = *patch.LimitedCount
	}
	if patch.Materials != nil {
		updates["materials"] = datatypes.NewJSONSlice(*patch.Materials)
	}
	if patch.Origin != nil {
		updates["origin"] = *patch.Origin
	}

	var model ProductModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, false, nil
		}
		return domain.Product{}, false, err
	}
	if len(updates) > 0 {
		if err := s.db.Model(&ProductModel{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return domain.Product{}, false, err
		}
		if err := s.db.First(&model, "id = ?", id).Error; err != nil {
			return domain.Product{}, false, err
		}
	}
	return productFromModel(model), true, nil
}

// DeleteProduct reports whether a row existed, matching the in-memory
// backend's existence check.
func (s *GormStore) DeleteProduct(id int) (bool, error) {
	tx := s.db.Delete(&ProductModel{}, "id = ?", id)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// articles

func (s *GormStore) CreateArticle(in domain.NewArticle) (domain.Article, error) {
	model := ArticleModel{
		Title:      in.Title,
		Slug:       in.Slug,
		Content:    in.Content,
		Excerpt:    in.Excerpt,
		CoverImage: in.CoverImage,
		Category:   in.Category,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Article{}, err
	}
	return articleFromModel(model), nil
}

func (s *GormStore) GetArticles(q ArticleQuery) ([]domain.Article, error) {
	tx := s.db.Order(newestFirst)
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	var models []ArticleModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Article, 0, len(models))
	for _, m := range models {
		out = append(out, articleFromModel(m))
	}
	return out, nil
}

func (s *GormStore) GetArticle(id int) (domain.Article, bool, error) {
	var model ArticleModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Article{}, false, nil
		}
		return domain.Article{}, false, err
	}
	return articleFromModel(model), true, nil
}

func (s *GormStore) GetArticleBySlug(slug string) (domain.Article, bool, error) {
	var model ArticleModel
	if err := s.db.First(&model, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Article{}, false, nil
		}
		return domain.Article{}, false, err
	}
	return articleFromModel(model), true, nil
}

// orders

func (s *GormStore) CreateOrder(in domain.NewOrder) (domain.Order, error) {
	model, err := orderToModel(in)
	if err != nil {
		return domain.Order{}, err
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Order{}, err
	}
	return orderFromModel(model)
}

// CreateOrderWithItems wraps the order and its items in a single transaction
// so a failure on any item rolls back the whole write.
func (s *GormStore) CreateOrderWithItems(in domain.NewOrder, items []domain.NewOrderItem) (domain.Order, []domain.OrderItem, error) {
	orderModel, err := orderToModel(in)
	if err != nil {
		return domain.Order{}, nil, err
	}
	itemModels := make([]OrderItemModel, 0, len(items))
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&orderModel).Error; err != nil {
			return err
		}
		for _, item := range items {
			model := OrderItemModel{
				OrderID:   orderModel.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
			}
			if err := tx.Create(&model).Error; err != nil {
				return err
			}
			itemModels = append(itemModels, model)
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, nil, err
	}
	order, err := orderFromModel(orderModel)
	if err != nil {
		return domain.Order{}, nil, err
	}
	created := make([]domain.OrderItem, 0, len(itemModels))
	for _, m := range itemModels {
		created = append(created, orderItemFromModel(m))
	}
	return order, created, nil
}

func (s *GormStore) GetOrders() ([]domain.Order, error) {
	return s.listOrders()
}

func (s *GormStore) GetUserOrders(userID int) ([]domain.Order, error) {
	return s.listOrders("user_id = ?", userID)
}

func (s *GormStore) listOrders(conds ...any) ([]domain.Order, error) {
	tx := s.db.Order(newestFirst)
	if len(conds) > 0 {
		tx = tx.Where(conds[0], conds[1:]...)
	}
	var models []OrderModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(models))
	for _, m := range models {
		o, err := orderFromModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *GormStore) GetOrder(id int) (domain.Order, bool, error) {
	var model OrderModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Order{}, false, nil
		}
		return domain.Order{}, false, err
	}
	o, err := orderFromModel(model)
	if err != nil {
		return domain.Order{}, false, err
	}
	return o, true, nil
}

func (s *GormStore) UpdateOrderStatus(id int, status string) (domain.Order, bool, error) {
	tx := s.db.Model(&OrderModel{}).Where("id = ?", id).Update("status", status)
	if tx.Error != nil {
		return domain.Order{}, false, tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.Order{}, false, nil
	}
	return s.GetOrder(id)
}

// order items

func (s *GormStore) CreateOrderItem(in domain.NewOrderItem) (domain.OrderItem, error) {
	model := OrderItemModel{
		OrderID:   in.OrderID,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Price:     in.Price,
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.OrderItem{}, err
	}
	return orderItemFromModel(model), nil
}

func (s *GormStore) GetOrderItems(orderID int) ([]domain.OrderItem, error) {
	var models []OrderItemModel
	if err := s.db.Order("id ASC").Find(&models, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	out := make([]domain.OrderItem, 0, len(models))
	for _, m := range models {
		out = append(out, orderItemFromModel(m))
	}
	return out, nil
}

// subscribers

func (s *GormStore) CreateSubscriber(in domain.NewSubscriber) (domain.Subscriber, error) {
	model := SubscriberModel{Email: in.Email, CreatedAt: time.Now().UTC()}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Subscriber{}, err
	}
	return subscriberFromModel(model), nil
}

func (s *GormStore) GetSubscribers() ([]domain.Subscriber, error) {
	var models []SubscriberModel
	if err := s.db.Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Subscriber, 0, len(models))
	for _, m := range models {
		out = append(out, subscriberFromModel(m))
	}
	return out, nil
}

func (s *GormStore) GetSubscriberByEmail(email string) (domain.Subscriber, bool, error) {
	var model SubscriberModel
	if err := s.db.First(&model, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Subscriber{}, false, nil
		}
		return domain.Subscriber{}, false, err
	}
	return subscriberFromModel(model), true, nil
}

// contacts

func (s *GormStore) CreateContact(in domain.NewContact) (domain.Contact, error) {
	model := ContactModel{
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Contact{}, err
	}
	return contactFromModel(model), nil
}

func (s *GormStore) GetContacts() ([]domain.Contact, error) {
	var models []ContactModel
	if err := s.db.Order(newestFirst).Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Contact, 0, len(models))
	for _, m := range models {
		out = append(out, contactFromModel(m))
	}
	return out, nil
}

// settings

func (s *GormStore) CreateSetting(in domain.NewSetting) (domain.Setting, error) {
	category := in.Category
	if category == "" {
		category = "general"
	}
	now := time.Now().UTC()
	model := SettingModel{
		Key:         in.Key,
		Value:       in.Value,
		Category:    category,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Setting{}, err
	}
	return settingFromModel(model), nil
}

func (s *GormStore) GetSettings(category string) ([]domain.Setting, error) {
	tx := s.db.Order("key ASC")
	if category != "" {
		tx = tx.Where("category = ?", category)
	}
	var models []SettingModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Setting, 0, len(models))
	for _, m := range models {
		out = append(out, settingFromModel(m))
	}
	return out, nil
}

func (s *GormStore) GetSetting(id int) (domain.Setting, bool, error) {
	var model SettingModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Setting{}, false, nil
		}
		return domain.Setting{}, false, err
	}
	return settingFromModel(model), true, nil
}

func (s *GormStore) GetSettingByKey(key string) (domain.Setting, bool, error) {
	var model SettingModel
	if err := s.db.First(&model, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Setting{}, false, nil
		}
		return domain.Setting{}, false, err
	}
	return settingFromModel(model), true, nil
}

func (s *GormStore) UpdateSetting(id int, patch SettingPatch) (domain.Setting, bool, error) {
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if patch.Value != nil {
		updates["value"] = *patch.Value
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	tx := s.db.Model(&SettingModel{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return domain.Setting{}, false, tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.Setting{}, false, nil
	}
	return s.GetSetting(id)
}

// DeleteSetting reports whether a row existed, matching the in-memory
// backend's existence check.
func (s *GormStore) DeleteSetting(id int) (bool, error) {
	tx := s.db.Delete(&SettingModel{}, "id = ?", id)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// converters

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Name:         m.Name,
		Phone:        m.Phone,
		CreatedAt:    m.CreatedAt,
	}
}

func categoryFromModel(m CategoryModel) domain.Category {
	return domain.Category{ID: m.ID, Name: m.Name, Slug: m.Slug}
}

func productToModel(in domain.NewProduct) ProductModel {
	return ProductModel{
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		DiscountPrice: in.DiscountPrice,
		Images:        datatypes.NewJSONSlice(in.Images),
		Category:      in.Category,
		InStock:       in.InStock,
		IsFeatured:    in.IsFeatured,
		IsLimited:     in.IsLimited,
		LimitedCount:  in.LimitedCount,
		Materials:     datatypes.NewJSONSlice(in.Materials),
		Origin:        in.Origin,
		CreatedAt:     time.Now().UTC(),
	}
}

func productFromModel(m ProductModel) domain.Product {
	return domain.Product{
		ID:            m.ID,
		Name:          m.Name,
		Description:   m.Description,
		Price:         m.Price,
		DiscountPrice: m.DiscountPrice,
		Images:        m.Images,
		Category:      m.Category,
		InStock:       m.InStock,
		IsFeatured:    m.IsFeatured,
		IsLimited:     m.IsLimited,
		LimitedCount:  m.LimitedCount,
		Materials:     m.Materials,
		Origin:        m.Origin,
		CreatedAt:     m.CreatedAt,
	}
}

func articleFromModel(m ArticleModel) domain.Article {
	return domain.Article{
		ID:         m.ID,
		Title:      m.Title,
		Slug:       m.Slug,
		Content:    m.Content,
		Excerpt:    m.Excerpt,
		CoverImage: m.CoverImage,
		Category:   m.Category,
		CreatedAt:  m.CreatedAt,
	}
}

func orderToModel(in domain.NewOrder) (OrderModel, error) {
	status := in.Status
	if status == "" {
		status = domain.OrderPending
	}
	model := OrderModel{
		UserID:        in.UserID,
		Status:        status,
		Total:         in.Total,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: in.PaymentStatus,
		CreatedAt:     time.Now().UTC(),
	}
	var err error
	if model.ShippingAddress, err = addressToJSON(in.ShippingAddress); err != nil {
		return OrderModel{}, err
	}
	if model.BillingAddress, err = addressToJSON(in.BillingAddress); err != nil {
		return OrderModel{}, err
	}
	return model, nil
}

func orderFromModel(m OrderModel) (domain.Order, error) {
	shipping, err := addressFromJSON(m.ShippingAddress)
	if err != nil {
		return domain.Order{}, err
	}
	billing, err := addressFromJSON(m.BillingAddress)
	if err != nil {
		return domain.Order{}, err
	}
	return domain.Order{
		ID:              m.ID,
		UserID:          m.UserID,
		Status:          m.Status,
		Total:           m.Total,
		ShippingAddress: shipping,
		BillingAddress:  billing,
		PaymentMethod:   m.PaymentMethod,
		PaymentStatus:   m.PaymentStatus,
		CreatedAt:       m.CreatedAt,
	}, nil
}

func addressToJSON(a *domain.Address) (datatypes.JSON, error) {
	if a == nil {
		return nil, nil
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal address: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func addressFromJSON(raw datatypes.JSON) (*domain.Address, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var a domain.Address
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("unmarshal address: %w", err)
	}
	return &a, nil
}

func orderItemFromModel(m OrderItemModel) domain.OrderItem {
	return domain.OrderItem{
		ID:        m.ID,
		OrderID:   m.OrderID,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		Price:     m.Price,
	}
}

func subscriberFromModel(m SubscriberModel) domain.Subscriber {
	return domain.Subscriber{ID: m.ID, Email: m.Email, CreatedAt: m.CreatedAt}
}

func contactFromModel(m ContactModel) domain.Contact {
	return domain.Contact{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
		CreatedAt: m.CreatedAt,
	}
}

func settingFromModel(m SettingModel) domain.Setting {
	return domain.Setting{
		ID:          m.ID,
		Key:         m.Key,
		Value:       m.Value,
		Category:    m.Category,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
