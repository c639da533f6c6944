package cart

import (
	"context"
	"fmt"

	"github.com/angelmondragon/narkk-storefront/internal/slots"
	pkgerrors "github.com/angelmondragon/narkk-storefront/pkg/errors"
	"github.com/angelmondragon/narkk-storefront/pkg/keylock"
	"github.com/angelmondragon/narkk-storefront/pkg/logger"
	"github.com/angelmondragon/narkk-storefront/pkg/metrics"
	"github.com/shopspring/decimal"
)

// Mutation labels used for metrics.
const (
	OpAdd    = "add"
	OpUpdate = "update_quantity"
	OpRemove = "remove"
	OpClear  = "clear"
)

// View is the read model returned to callers.
type View struct {
	Items    []Item          `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Count    int             `json:"count"`
}

// Result pairs the cart after a mutation with the notices it produced.
type Result struct {
	Cart    View     `json:"cart"`
	Notices []string `json:"notices,omitempty"`
}

// Service exposes per-session cart operations.
type Service interface {
	Get(ctx context.Context, session string) (View, error)
	Add(ctx context.Context, session string, item Item) (Result, error)
	SetQuantity(ctx context.Context, session string, id int64, quantity int) (Result, error)
	AdjustQuantity(ctx context.Context, session string, id int64, delta int) (Result, error)
	Remove(ctx context.Context, session string, id int64) (Result, error)
	Clear(ctx context.Context, session string) (Result, error)
	// Do runs fn against the session's store while holding the session lock.
	Do(ctx context.Context, session string, fn func(*Store) error) error
}

type service struct {
	repo    slots.Repository
	locks   *keylock.Map
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
}

// NewService builds a cart service over the slot repository. locks may be
// shared with other services that touch the same sessions.
func NewService(repo slots.Repository, locks *keylock.Map, logg *logger.Logger, m *metrics.StorefrontMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("slot repository required")
	}
	if locks == nil {
		locks = keylock.New()
	}
	return &service{repo: repo, locks: locks, logg: logg, metrics: m}, nil
}

func (s *service) Do(ctx context.Context, session string, fn func(*Store) error) error {
	if session == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session is required")
	}
	unlock := s.locks.Lock(session)
	defer unlock()

	store, err := Open(ctx, s.repo, session, s.logg)
	if err != nil {
		return err
	}
	return fn(store)
}

func (s *service) Get(ctx context.Context, session string) (View, error) {
	var view View
	err := s.Do(ctx, session, func(store *Store) error {
		view = viewOf(store)
		return nil
	})
	return view, err
}

func (s *service) Add(ctx context.Context, session string, item Item) (Result, error) {
	return s.mutate(ctx, session, OpAdd, func(ctx context.Context, store *Store) error {
		return store.AddItem(ctx, item)
	})
}

func (s *service) SetQuantity(ctx context.Context, session string, id int64, quantity int) (Result, error) {
	return s.mutate(ctx, session, OpUpdate, func(ctx context.Context, store *Store) error {
		return store.UpdateQuantity(ctx, id, quantity)
	})
}

// AdjustQuantity adds delta to the line's quantity, never going below one.
func (s *service) AdjustQuantity(ctx context.Context, session string, id int64, delta int) (Result, error) {
	return s.mutate(ctx, session, OpUpdate, func(ctx context.Context, store *Store) error {
		item, ok := store.Item(id)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
		}
		return store.UpdateQuantity(ctx, id, max(1, item.Quantity+delta))
	})
}

func (s *service) Remove(ctx context.Context, session string, id int64) (Result, error) {
	return s.mutate(ctx, session, OpRemove, func(ctx context.Context, store *Store) error {
		return store.RemoveItem(ctx, id)
	})
}

func (s *service) Clear(ctx context.Context, session string) (Result, error) {
	return s.mutate(ctx, session, OpClear, func(ctx context.Context, store *Store) error {
		return store.Clear(ctx)
	})
}

func (s *service) mutate(ctx context.Context, session, op string, fn func(context.Context, *Store) error) (Result, error) {
	var res Result
	err := s.Do(ctx, session, func(store *Store) error {
		if err := fn(ctx, store); err != nil {
			return err
		}
		res = Result{Cart: viewOf(store), Notices: store.Notices()}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	s.metrics.IncCartMutation(op)
	return res, nil
}

func viewOf(store *Store) View {
	return View{
		Items:    store.Items(),
		Subtotal: store.Subtotal(),
		Count:    store.Count(),
	}
}
