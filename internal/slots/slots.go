package slots

import (
	"context"
	"errors"
)

// Slot keys. Each session owns one value per key.
const (
	CartKey      = "narkk-cart"
	LastOrderKey = "narkk-last-order"
	SettingsKey  = "wc-config"
)

// ErrEmpty is returned by Load when nothing is stored under the slot.
var ErrEmpty = errors.New("slot is empty")

// Repository persists opaque serialized values per (scope, key).
type Repository interface {
	Load(ctx context.Context, scope, key string) ([]byte, error)
	Save(ctx context.Context, scope, key string, value []byte) error
	Delete(ctx context.Context, scope, key string) error
}
