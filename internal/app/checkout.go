package app

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"tidewear/internal/cart"
	"tidewear/internal/events"
	"tidewear/pkg/domain"
)

const defaultCurrency = "EUR"

// NewCartToken mints a token for a fresh cart.
func (a *App) NewCartToken() string {
	return a.carts.NewToken()
}

// GetCart returns the cart for a token, empty if unknown.
func (a *App) GetCart(ctx context.Context, token string) (cart.Cart, error) {
	return a.carts.Get(ctx, token)
}

// SetCartItem upserts a cart line after checking the product is
// actually purchasable. Quantity zero removes the line without any
// product check, so a deleted product can still leave a cart.
func (a *App) SetCartItem(ctx context.Context, token string, productID, quantity int) (cart.Cart, error) {
	if quantity > 0 {
		p, ok, err := a.store.GetProduct(productID)
		if err != nil {
			return cart.Cart{}, fmt.Errorf("fetch product: %w", err)
		}
		if !ok || !p.InStock {
			return cart.Cart{}, ErrProductUnavailable
		}
	}
	return a.carts.SetItem(ctx, token, productID, quantity)
}

// CheckoutRequest carries everything needed to turn a cart into an order.
type CheckoutRequest struct {
	CartToken       string
	UserID          *int
	ShippingAddress *domain.Address
	BillingAddress  *domain.Address
	PaymentMethod   string
}

// CheckoutResult is the created order plus the gateway handle the
// browser uses to confirm payment.
type CheckoutResult struct {
	Order               domain.Order       `json:"order"`
	Items               []domain.OrderItem `json:"items"`
	PaymentIntentID     string             `json:"paymentIntentId,omitempty"`
	PaymentClientSecret string             `json:"paymentClientSecret,omitempty"`
}

// Checkout prices the cart at current effective prices, persists the
// order and its items atomically, registers a payment intent, emits an
// order.created event and clears the cart. A gateway failure after the
// order is written leaves the order unpaid rather than losing it.
func (a *App) Checkout(ctx context.Context, req CheckoutRequest) (CheckoutResult, error) {
	if req.ShippingAddress == nil {
		return CheckoutResult{}, validationErr("shipping address required")
	}
	c, err := a.carts.Get(ctx, req.CartToken)
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("fetch cart: %w", err)
	}
	if len(c.Items) == 0 {
		return CheckoutResult{}, ErrEmptyCart
	}

	var total float64
	newItems := make([]domain.NewOrderItem, 0, len(c.Items))
	for _, line := range c.Items {
		p, ok, err := a.store.GetProduct(line.ProductID)
		if err != nil {
			return CheckoutResult{}, fmt.Errorf("fetch product: %w", err)
		}
		if !ok || !p.InStock {
			return CheckoutResult{}, ErrProductUnavailable
		}
		price := p.EffectivePrice()
		total += price * float64(line.Quantity)
		newItems = append(newItems, domain.NewOrderItem{
			ProductID: p.ID,
			Quantity:  line.Quantity,
			Price:     price,
		})
	}

	billing := req.BillingAddress
	if billing == nil {
		billing = req.ShippingAddress
	}
	order, items, err := a.store.CreateOrderWithItems(domain.NewOrder{
		UserID:          req.UserID,
		Status:          domain.OrderPending,
		Total:           total,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  billing,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   domain.PaymentUnpaid,
	}, newItems)
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("create order: %w", err)
	}

	result := CheckoutResult{Order: order, Items: items}
	if a.payments != nil {
		intent, err := a.payments.CreateIntent(
			minorUnits(total),
			a.currency(),
			"order-"+strconv.Itoa(order.ID),
		)
		if err != nil {
			slog.Error("payment intent failed, order left unpaid",
				"order_id", order.ID, "error", err)
		} else {
			result.PaymentIntentID = intent.ID
			result.PaymentClientSecret = intent.ClientSecret
		}
	}

	a.publish(events.OrderCreated, orderCreatedEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Total:     order.Total,
		Items:     items,
		CreatedAt: order.CreatedAt,
	})

	if err := a.carts.Clear(ctx, req.CartToken); err != nil {
		slog.Warn("clearing cart after checkout failed", "error", err)
	}
	return result, nil
}

type orderCreatedEvent struct {
	OrderID   int                `json:"orderId"`
	UserID    *int               `json:"userId,omitempty"`
	Total     float64            `json:"total"`
	Items     []domain.OrderItem `json:"items"`
	CreatedAt time.Time          `json:"createdAt"`
}

// currency reads the store currency setting, falling back to EUR.
func (a *App) currency() string {
	s, ok, err := a.store.GetSettingByKey("store_currency")
	if err != nil || !ok || s.Value == "" {
		return defaultCurrency
	}
	return s.Value
}

func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// publish sends an event without failing the caller's request.
func (a *App) publish(routingKey string, payload any) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.events.Publish(ctx, routingKey, payload); err != nil {
		slog.Error("publish event failed", "routing_key", routingKey, "error", err)
	}
}
