package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/narkk-storefront/internal/cart"
	"github.com/angelmondragon/narkk-storefront/internal/slots"
	"github.com/angelmondragon/narkk-storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/narkk-storefront/pkg/errors"
	"github.com/angelmondragon/narkk-storefront/pkg/logger"
	"github.com/angelmondragon/narkk-storefront/pkg/metrics"
	"github.com/angelmondragon/narkk-storefront/pkg/validation"
	"github.com/angelmondragon/narkk-storefront/pkg/woocommerce"
)

const (
	// ShopPath is where shoppers are sent when they reach checkout with an empty cart.
	ShopPath = "/shop"

	msgPlaceOrderFailed = "There was a problem placing your order. Please try again."
)

// CredentialSource resolves the WooCommerce credentials in effect for a session.
type CredentialSource interface {
	Credentials(ctx context.Context, session string) (woocommerce.Credentials, error)
}

type orderCreator interface {
	CreateOrder(ctx context.Context, req woocommerce.OrderRequest) (string, error)
}

// CreatorFactory builds the remote order client for a set of credentials.
type CreatorFactory func(creds woocommerce.Credentials) (orderCreator, error)

type Service interface {
	PlaceOrder(ctx context.Context, session string, customer Customer) (Order, error)
	LastOrder(ctx context.Context, session string) (Order, error)
}

type ServiceParams struct {
	Carts      cart.Service
	Slots      slots.Repository
	Creds      CredentialSource
	Commerce   config.CommerceConfig
	HTTPClient *http.Client
	Logger     *logger.Logger
	Metrics    *metrics.StorefrontMetrics

	// optional overrides
	NewCreator CreatorFactory
	NewOrderID func() string
}

type service struct {
	carts      cart.Service
	slots      slots.Repository
	creds      CredentialSource
	commerce   config.CommerceConfig
	logg       *logger.Logger
	metrics    *metrics.StorefrontMetrics
	newCreator CreatorFactory
	newOrderID func() string
}

func NewService(p ServiceParams) (Service, error) {
	if p.Carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if p.Slots == nil {
		return nil, fmt.Errorf("slot repository required")
	}
	if p.Creds == nil {
		return nil, fmt.Errorf("credential source required")
	}
	svc := &service{
		carts:      p.Carts,
		slots:      p.Slots,
		creds:      p.Creds,
		commerce:   p.Commerce,
		logg:       p.Logger,
		metrics:    p.Metrics,
		newCreator: p.NewCreator,
		newOrderID: p.NewOrderID,
	}
	if svc.newCreator == nil {
		httpClient := p.HTTPClient
		svc.newCreator = func(creds woocommerce.Credentials) (orderCreator, error) {
			return woocommerce.NewClient(creds, woocommerce.WithTimeout(p.Commerce.Timeout), woocommerce.WithHTTPClient(httpClient))
		}
	}
	if svc.newOrderID == nil {
		svc.newOrderID = LocalOrderID
	}
	return svc, nil
}

// LocalOrderID returns a demo order id in the range ORD-100000..ORD-999999.
func LocalOrderID() string {
	return fmt.Sprintf("ORD-%d", 100000+rand.IntN(900000))
}

// PlaceOrder turns the session's cart into an order. Once the order is created
// the snapshot is stored and the cart is cleared; on a remote failure neither
// happens.
func (s *service) PlaceOrder(ctx context.Context, session string, customer Customer) (Order, error) {
	var order Order
	err := s.carts.Do(ctx, session, func(store *cart.Store) error {
		if store.IsEmpty() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty").
				WithDetails(map[string]string{"redirect": ShopPath})
		}
		customer = trimCustomer(customer)
		if err := validation.Struct(customer, "Please complete all checkout fields"); err != nil {
			return err
		}

		snapshot := store.Snapshot()
		id, mode, err := s.createOrder(ctx, session, snapshot, customer)
		if err != nil {
			return err
		}

		// The order exists from here on; later failures are logged, not returned.
		order = Order{ID: id, Items: snapshot.Items, Subtotal: snapshot.Subtotal(), Customer: customer}
		s.metrics.IncOrderPlaced(mode)

		logCtx := s.logg.WithFields(ctx, map[string]any{"order_id": id, "mode": mode})
		if err := s.saveSnapshot(ctx, session, order); err != nil {
			s.logg.Error(logCtx, "order placed but snapshot could not be saved", err)
		}
		if err := store.Clear(ctx); err != nil {
			s.logg.Error(logCtx, "order placed but cart could not be cleared", err)
		}
		s.logg.Info(logCtx, "order placed")
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

func (s *service) saveSnapshot(ctx context.Context, session string, order Order) error {
	raw, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order snapshot: %w", err)
	}
	return s.slots.Save(ctx, session, slots.LastOrderKey, raw)
}

func (s *service) createOrder(ctx context.Context, session string, c cart.Cart, customer Customer) (string, string, error) {
	creds, err := s.creds.Credentials(ctx, session)
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, msgPlaceOrderFailed)
	}
	if !creds.Complete() {
		return s.newOrderID(), metrics.OrderModeLocal, nil
	}

	creator, err := s.newCreator(creds)
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, msgPlaceOrderFailed)
	}

	start := time.Now()
	id, err := creator.CreateOrder(ctx, s.orderRequest(c, customer))
	s.metrics.ObserveCommerceRequest("create_order", time.Since(start))
	if err != nil {
		s.logg.Error(ctx, "creating remote order failed", err)
		return "", "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, msgPlaceOrderFailed)
	}
	return id, metrics.OrderModeRemote, nil
}

func (s *service) orderRequest(c cart.Cart, customer Customer) woocommerce.OrderRequest {
	shipping := woocommerce.Address{
		FirstName: customer.FirstName,
		LastName:  customer.LastName,
		Address1:  customer.Address,
		City:      customer.City,
		State:     customer.State,
		Postcode:  customer.PostalCode,
		Country:   s.commerce.Country,
	}
	billing := shipping
	billing.Email = customer.Email
	billing.Phone = customer.Phone

	lines := make([]woocommerce.LineItem, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, woocommerce.LineItem{ProductID: item.ID, Quantity: item.Quantity})
	}
	return woocommerce.OrderRequest{
		PaymentMethod:      s.commerce.PaymentMethod,
		PaymentMethodTitle: s.commerce.PaymentMethodTitle,
		SetPaid:            s.commerce.SetPaid,
		Billing:            billing,
		Shipping:           shipping,
		LineItems:          lines,
	}
}

// LastOrder returns the most recent snapshot for the session.
func (s *service) LastOrder(ctx context.Context, session string) (Order, error) {
	if session == "" {
		return Order{}, pkgerrors.New(pkgerrors.CodeNotFound, "no recent order")
	}
	raw, err := s.slots.Load(ctx, session, slots.LastOrderKey)
	if errors.Is(err, slots.ErrEmpty) {
		return Order{}, pkgerrors.New(pkgerrors.CodeNotFound, "no recent order")
	}
	if err != nil {
		return Order{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load order")
	}

	var order Order
	if err := json.Unmarshal(raw, &order); err != nil || order.ID == "" {
		s.logg.Warn(s.logg.WithField(ctx, "slot", slots.LastOrderKey), "discarding unreadable order snapshot")
		return Order{}, pkgerrors.New(pkgerrors.CodeNotFound, "no recent order")
	}
	if order.Items == nil {
		order.Items = []cart.Item{}
	}
	return order, nil
}

func trimCustomer(c Customer) Customer {
	return Customer{
		FirstName:  strings.TrimSpace(c.FirstName),
		LastName:   strings.TrimSpace(c.LastName),
		Email:      strings.TrimSpace(c.Email),
		Phone:      strings.TrimSpace(c.Phone),
		Address:    strings.TrimSpace(c.Address),
		City:       strings.TrimSpace(c.City),
		State:      strings.TrimSpace(c.State),
		PostalCode: strings.TrimSpace(c.PostalCode),
	}
}
