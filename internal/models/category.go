package models

import "time"

// Category groups products. Deleting a category only flips IsDeleted.
type Category struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CategoryName string    `json:"category_name" gorm:"type:varchar(255);not null;uniqueIndex:idx_categories_live_name,where:is_deleted = false"`
	Description  string    `json:"description" gorm:"type:text"`
	IsDeleted    bool      `json:"is_deleted" gorm:"not null;default:false;index"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}
