package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/angelmondragon/narkk-storefront/internal/slots"
	pkgerrors "github.com/angelmondragon/narkk-storefront/pkg/errors"
	"github.com/angelmondragon/narkk-storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

// Notice messages surfaced to the shopper after a mutation.
const (
	NoticeRemoved = "Item removed from cart"
	NoticeCleared = "Cart cleared"
)

// Store is the cart of one session. Every mutation writes the whole cart
// back to the session's slot exactly once.
//
// A Store is not safe for concurrent use; Service serializes access per session.
type Store struct {
	scope   string
	repo    slots.Repository
	logg    *logger.Logger
	cart    Cart
	notices []string
}

// Open rehydrates the cart stored for scope. An absent or unreadable slot
// yields an empty cart; only backend failures are returned.
func Open(ctx context.Context, repo slots.Repository, scope string, logg *logger.Logger) (*Store, error) {
	if repo == nil {
		return nil, fmt.Errorf("slot repository required")
	}
	s := &Store{scope: scope, repo: repo, logg: logg, cart: Cart{Items: []Item{}}}

	raw, err := repo.Load(ctx, scope, slots.CartKey)
	if errors.Is(err, slots.ErrEmpty) {
		return s, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load cart")
	}

	decoded, err := Decode(raw)
	if err != nil {
		logg.Warn(logg.WithField(ctx, "slot", slots.CartKey), "discarding unreadable cart: "+err.Error())
		return s, nil
	}
	s.cart = decoded
	return s, nil
}

// Decode parses a persisted cart. Lines without a positive id are rejected.
func Decode(raw []byte) (Cart, error) {
	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cart{}, err
	}
	if c.Items == nil {
		c.Items = []Item{}
	}
	for _, item := range c.Items {
		if item.ID <= 0 {
			return Cart{}, fmt.Errorf("cart line has invalid id %d", item.ID)
		}
	}
	return c, nil
}

// Encode serializes the cart in its persisted shape.
func Encode(c Cart) ([]byte, error) {
	if c.Items == nil {
		c.Items = []Item{}
	}
	return json.Marshal(c)
}

// AddItem merges into an existing line with the same id, keeping that line's
// options, or appends a new line.
func (s *Store) AddItem(ctx context.Context, item Item) error {
	if idx := s.cart.indexOf(item.ID); idx >= 0 {
		s.cart.Items[idx].Quantity += item.Quantity
		s.notify(fmt.Sprintf("Updated %s quantity in cart", item.Name))
	} else {
		s.cart.Items = append(s.cart.Items, item.clone())
		s.notify(fmt.Sprintf("Added %s to cart", item.Name))
	}
	return s.persist(ctx)
}

// UpdateQuantity replaces the quantity of the line with id. Missing ids are
// left alone; the value is stored as given.
func (s *Store) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	if idx := s.cart.indexOf(id); idx >= 0 {
		s.cart.Items[idx].Quantity = quantity
	}
	return s.persist(ctx)
}

// RemoveItem drops the line with id if present.
func (s *Store) RemoveItem(ctx context.Context, id int64) error {
	if idx := s.cart.indexOf(id); idx >= 0 {
		s.cart.Items = append(s.cart.Items[:idx], s.cart.Items[idx+1:]...)
	}
	s.notify(NoticeRemoved)
	return s.persist(ctx)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	s.cart.Items = []Item{}
	s.notify(NoticeCleared)
	return s.persist(ctx)
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []Item {
	return s.cart.clone().Items
}

// Item returns the line with id.
func (s *Store) Item(id int64) (Item, bool) {
	idx := s.cart.indexOf(id)
	if idx < 0 {
		return Item{}, false
	}
	return s.cart.Items[idx].clone(), true
}

// Subtotal returns the sum of price × quantity over all lines.
func (s *Store) Subtotal() decimal.Decimal {
	return s.cart.Subtotal()
}

// Count returns the total quantity across all lines.
func (s *Store) Count() int {
	return s.cart.Count()
}

// IsEmpty reports whether the cart has no lines.
func (s *Store) IsEmpty() bool {
	return len(s.cart.Items) == 0
}

// Snapshot returns a deep copy of the current cart.
func (s *Store) Snapshot() Cart {
	return s.cart.clone()
}

// Notices drains the messages produced since the last call.
func (s *Store) Notices() []string {
	out := s.notices
	s.notices = nil
	return out
}

func (s *Store) notify(msg string) {
	s.notices = append(s.notices, msg)
}

func (s *Store) persist(ctx context.Context) error {
	raw, err := Encode(s.cart)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to encode cart")
	}
	if err := s.repo.Save(ctx, s.scope, slots.CartKey, raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to save cart")
	}
	return nil
}
