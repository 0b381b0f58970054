package store

import (
	"sort"
	"sync"
	"time"

	"tidewear/pkg/domain"
)

// MemoryStore keeps every entity kind in an id-keyed map guarded by one
// RWMutex. Ids are minted from per-kind counters and never reused, even
// after deletion. Listings come back in insertion order (ascending id);
// lookups by unique field are linear scans where the lowest id wins when
// duplicates were created. There are no secondary indexes.
type MemoryStore struct {
	mu sync.RWMutex

	users       map[int]domain.User
	categories  map[int]domain.Category
	products    map[int]domain.Product
	articles    map[int]domain.Article
	orders      map[int]domain.Order
	orderItems  map[int]domain.OrderItem
	subscribers map[int]domain.Subscriber
	contacts    map[int]domain.Contact
	settings    map[int]domain.Setting

	nextUserID       int
	nextCategoryID   int
	nextProductID    int
	nextArticleID    int
	nextOrderID      int
	nextOrderItemID  int
	nextSubscriberID int
	nextContactID    int
	nextSettingID    int
}

// NewMemoryStore initializes an empty in-memory store. Demo data is loaded
// separately via Seed so tests can start from a clean slate.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:            make(map[int]domain.User),
		categories:       make(map[int]domain.Category),
		products:         make(map[int]domain.Product),
		articles:         make(map[int]domain.Article),
		orders:           make(map[int]domain.Order),
		orderItems:       make(map[int]domain.OrderItem),
		subscribers:      make(map[int]domain.Subscriber),
		contacts:         make(map[int]domain.Contact),
		settings:         make(map[int]domain.Setting),
		nextUserID:       1,
		nextCategoryID:   1,
		nextProductID:    1,
		nextArticleID:    1,
		nextOrderID:      1,
		nextOrderItemID:  1,
		nextSubscriberID: 1,
		nextContactID:    1,
		nextSettingID:    1,
	}
}

// sortedIDs restores insertion order for map iteration: ids are monotonic,
// so ascending id equals creation order even after deletions.
func sortedIDs[T any](m map[int]T) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// copyPtr detaches an optional field from the caller's payload so later
// writes through the caller's pointer cannot edit the stored entity.
func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// slicePage applies offset then limit. Zero limit means all remaining.
func slicePage[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// users

func (m *MemoryStore) CreateUser(in domain.NewUser) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := domain.User{
		ID:           m.nextUserID,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Name:         in.Name,
		Phone:        in.Phone,
		CreatedAt:    time.Now().UTC(),
	}
	m.nextUserID++
	m.users[user.ID] = user
	return user, nil
}

func (m *MemoryStore) GetUser(id int) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) GetUserByUsername(username string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range sortedIDs(m.users) {
		if m.users[id].Username == username {
			return m.users[id], true, nil
		}
	}
	return domain.User{}, false, nil
}

func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range sortedIDs(m.users) {
		if m.users[id].Email == email {
			return m.users[id], true, nil
		}
	}
	return domain.User{}, false, nil
}

// categories

func (m *MemoryStore) CreateCategory(in domain.NewCategory) (domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cat := domain.Category{
		ID:   m.nextCategoryID,
		Name: in.Name,
		Slug: in.Slug,
	}
	m.nextCategoryID++
	m.categories[cat.ID] = cat
	return cat, nil
}

func (m *MemoryStore) GetCategories() ([]domain.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Category, 0, len(m.categories))
	for _, id := range sortedIDs(m.categories) {
		out = append(out, m.categories[id])
	}
	return out, nil
}

func (m *MemoryStore) GetCategory(id int) (domain.Category, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.categories[id]
	return c, ok, nil
}

func (m *MemoryStore) GetCategoryBySlug(slug string) (domain.Category, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range sortedIDs(m.categories) {
		if m.categories[id].Slug == slug {
			return m.categories[id], true, nil
		}
	}
	return domain.Category{}, false, nil
}

// products

func (m *MemoryStore) CreateProduct(in domain.NewProduct) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := domain.Product{
		ID:            m.nextProductID,
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		DiscountPrice: copyPtr(in.DiscountPrice),
		Images:        append([]string(nil), in.Images...),
		Category:      in.Category,
		InStock:       in.InStock,
		IsFeatured:    in.IsFeatured,
		IsLimited:     in.IsLimited,
		LimitedCount:  copyPtr(in.LimitedCount),
		Materials:     append([]string(nil), in.Materials...),
		Origin:        in.Origin,
		CreatedAt:     time.Now().UTC(),
	}
	m.nextProductID++
	m.products[p.ID] = p
	return p, nil
}

func (m *MemoryStore) GetProducts(q ProductQuery) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	// Sequential predicate scan over the full map, then offset/limit.
	out := make([]domain.Product, 0, len(m.products))
	for _, id := range sortedIDs(m.products) {
		p := m.products[id]
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if q.Featured != nil && p.IsFeatured != *q.Featured {
			continue
		}
		out = append(out, p)
	}
	return slicePage(out, q.Offset, q.Limit), nil
}

func (m *MemoryStore) GetProduct(id int) (domain.Product, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	return p, ok, nil
}

func (m *MemoryStore) UpdateProduct(id int, patch ProductPatch) (domain.Product, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, false, nil
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.DiscountPrice != nil {
		p.DiscountPrice = copyPtr(patch.DiscountPrice)
	}
	if patch.Images != nil {
		p.Images = append([]string(nil), (*patch.Images)...)
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.InStock != nil {
		p.InStock = *patch.InStock
	}
	if patch.IsFeatured != nil {
		p.IsFeatured = *patch.IsFeatured
	}
	if patch.IsLimited != nil {
		p.IsLimited = *patch.IsLimited
	}
	if patch.LimitedCount != nil {
		p.LimitedCount = copyPtr(patch.LimitedCount)
	}
	if patch.Materials != nil {
		p.Materials = append([]string(nil), (*patch.Materials)...)
	}
	if patch.Origin != nil {
		p.Origin = *patch.Origin
	}
	m.products[id] = p
	return p, true, nil
}

func (m *MemoryStore) DeleteProduct(id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return false, nil
	}
	delete(m.products, id)
	return true, nil
}

// articles

func (m *MemoryStore) CreateArticle(in domain.NewArticle) (domain.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := domain.Article{
		ID:         m.nextArticleID,
		Title:      in.Title,
		Slug:       in.Slug,
		Content:    in.Content,
		Excerpt:    in.Excerpt,
		CoverImage: in.CoverImage,
		Category:   in.Category,
		CreatedAt:  time.Now().UTC(),
	}
	m.nextArticleID++
	m.articles[a.ID] = a
	return a, nil
}

func (m *MemoryStore) GetArticles(q ArticleQuery) ([]domain.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Article, 0, len(m.articles))
	for _, id := range sortedIDs(m.articles) {
		a := m.articles[id]
		if q.Category != "" && a.Category != q.Category {
			continue
		}
		out = append(out, a)
	}
	return slicePage(out, q.Offset, q.Limit), nil
}

func (m *MemoryStore) GetArticle(id int) (domain.Article, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.articles[id]
	return a, ok, nil
}

func (m *MemoryStore) GetArticleBySlug(slug string) (domain.Article, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range sortedIDs(m.articles) {
		if m.articles[id].Slug == slug {
			return m.articles[id], true, nil
		}
	}
	return domain.Article{}, false, nil
}

// orders

func (m *MemoryStore) CreateOrder(in domain.NewOrder) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createOrderLocked(in), nil
}

func (m *MemoryStore) createOrderLocked(in domain.NewOrder) domain.Order {
	status := in.Status
	if status == "" {
		status = domain.OrderPending
	}
	o := domain.Order{
		ID:              m.nextOrderID,
		UserID:          copyPtr(in.UserID),
		Status:          status,
		Total:           in.Total,
		ShippingAddress: copyPtr(in.ShippingAddress),
		BillingAddress:  copyPtr(in.BillingAddress),
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   in.PaymentStatus,
		CreatedAt:       time.Now().UTC(),
	}
	m.nextOrderID++
	m.orders[o.ID] = o
	return o
}

// CreateOrderWithItems creates the order and all items under one lock so no
// reader observes a partially populated order.
func (m *MemoryStore) CreateOrderWithItems(in domain.NewOrder, items []domain.NewOrderItem) (domain.Order, []domain.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order := m.createOrderLocked(in)
	created := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		item.OrderID = order.ID
		created = append(created, m.createOrderItemLocked(item))
	}
	return order, created, nil
}

func (m *MemoryStore) GetOrders() ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Order, 0, len(m.orders))
	for _, id := range sortedIDs(m.orders) {
		out = append(out, m.orders[id])
	}
	return out, nil
}

func (m *MemoryStore) GetUserOrders(userID int) ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.Order{}
	for _, id := range sortedIDs(m.orders) {
		o := m.orders[id]
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MemoryStore) GetOrder(id int) (domain.Order, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	return o, ok, nil
}

func (m *MemoryStore) UpdateOrderStatus(id int, status string) (domain.Order, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return domain.Order{}, false, nil
	}
	o.Status = status
	m.orders[id] = o
	return o, true, nil
}

// order items

func (m *MemoryStore) CreateOrderItem(in domain.NewOrderItem) (domain.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createOrderItemLocked(in), nil
}

func (m *MemoryStore) createOrderItemLocked(in domain.NewOrderItem) domain.OrderItem {
	it := domain.OrderItem{
		ID:        m.nextOrderItemID,
		OrderID:   in.OrderID,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Price:     in.Price,
	}
	m.nextOrderItemID++
	m.orderItems[it.ID] = it
	return it
}

func (m *MemoryStore) GetOrderItems(orderID int) ([]domain.OrderItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.OrderItem{}
	for _, id := range sortedIDs(m.orderItems) {
		if m.orderItems[id].OrderID == orderID {
			out = append(out, m.orderItems[id])
		}
	}
	return out, nil
}

// subscribers

func (m *MemoryStore) CreateSubscriber(in domain.NewSubscriber) (domain.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := domain.Subscriber{
		ID:        m.nextSubscriberID,
		Email:     in.Email,
		CreatedAt: time.Now().UTC(),
	}
	m.nextSubscriberID++
	m.subscribers[s.ID] = s
	return s, nil
}

func (m *MemoryStore) GetSubscribers() ([]domain.Subscriber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Subscriber, 0, len(m.subscribers))
	for _, id := range sortedIDs(m.subscribers) {
		out = append(out, m.subscribers[id])
	}
	return out, nil
}

func (m *MemoryStore) GetSubscriberByEmail(email string) (domain.Subscriber, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range sortedIDs(m.subscribers) {
		if m.subscribers[id].Email == email {
			return m.subscribers[id], true, nil
		}
	}
	return domain.Subscriber{}, false, nil
}

// contacts

func (m *MemoryStore) CreateContact(in domain.NewContact) (domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := domain.Contact{
		ID:        m.nextContactID,
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
		CreatedAt: time.Now().UTC(),
	}
	m.nextContactID++
	m.contacts[c.ID] = c
	return c, nil
}

func (m *MemoryStore) GetContacts() ([]domain.Contact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Contact, 0, len(m.contacts))
	for _, id := range sortedIDs(m.contacts) {
		out = append(out, m.contacts[id])
	}
	return out, nil
}

// settings

func (m *MemoryStore) CreateSetting(in domain.NewSetting) (domain.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	category := in.Category
	if category == "" {
		category = "general"
	}
	now := time.Now().UTC()
	s := domain.Setting{
		ID:          m.nextSettingID,
		Key:         in.Key,
		Value:       in.Value,
		Category:    category,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.nextSettingID++
	m.settings[s.ID] = s
	return s, nil
}

// GetSettings sorts by key regardless of insertion order, the only entity
// family with a mandated sort in this backend. Duplicate keys keep their
// insertion order, so repeated reads always return the same sequence.
func (m *MemoryStore) GetSettings(category string) ([]domain.Setting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Setting, 0, len(m.settings))
	for _, id := range sortedIDs(m.settings) {
		s := m.settings[id]
		if category != "" && s.Category != category {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemoryStore) GetSetting(id int) (domain.Setting, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.settings[id]
	return s, ok, nil
}

func (m *MemoryStore) GetSettingByKey(key string) (domain.Setting, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range sortedIDs(m.settings) {
		if m.settings[id].Key == key {
			return m.settings[id], true, nil
		}
	}
	return domain.Setting{}, false, nil
}

func (m *MemoryStore) UpdateSetting(id int, patch SettingPatch) (domain.Setting, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[id]
	if !ok {
		return domain.Setting{}, false, nil
	}
	if patch.Value != nil {
		s.Value = *patch.Value
	}
	if patch.Category != nil {
		s.Category = *patch.Category
	}
	if patch.Description != nil {
		s.Description = *patch.Description
	}
	s.UpdatedAt = time.Now().UTC()
	m.settings[id] = s
	return s, true, nil
}

func (m *MemoryStore) DeleteSetting(id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.settings[id]; !ok {
		return false, nil
	}
	delete(m.settings, id)
	return true, nil
}
