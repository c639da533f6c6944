package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/narkk-storefront/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBRepository stores slots in the storage_slots table.
type DBRepository struct {
	db *gorm.DB
}

// NewDBRepository constructs a slot repository bound to the provided DB.
func NewDBRepository(db *gorm.DB) (*DBRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db required")
	}
	return &DBRepository{db: db}, nil
}

func (r *DBRepository) Load(ctx context.Context, scope, key string) ([]byte, error) {
	var row models.StorageSlot
	err := r.db.WithContext(ctx).
		Where("scope = ? AND slot_key = ?", scope, key).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %s: %w", key, err)
	}
	return row.Value, nil
}

// Save upserts the slot so repeated writes replace the previous value.
func (r *DBRepository) Save(ctx context.Context, scope, key string, value []byte) error {
	row := models.StorageSlot{
		Scope:     scope,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "scope"}, {Name: "slot_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save slot %s: %w", key, err)
	}
	return nil
}

func (r *DBRepository) Delete(ctx context.Context, scope, key string) error {
	err := r.db.WithContext(ctx).
		Where("scope = ? AND slot_key = ?", scope, key).
		Delete(&models.StorageSlot{}).Error
	if err != nil {
		return fmt.Errorf("delete slot %s: %w", key, err)
	}
	return nil
}
