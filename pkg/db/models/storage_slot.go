package models

import "time"

// StorageSlot is one durable key/value slot owned by a storefront session.
type StorageSlot struct {
	Scope     string    `gorm:"column:scope;primaryKey;size:128"`
	Key       string    `gorm:"column:slot_key;primaryKey;size:64"`
	Value     []byte    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (StorageSlot) TableName() string {
	return "storage_slots"
}
