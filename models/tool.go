package models

import "time"

const ToolTable = "tools"

// Tool.CategoryID is a weak reference: no foreign key, nothing cascades from categories.
type Tool struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"size:200;not null" json:"name"`
	CategoryID        *uint     `gorm:"index" json:"categoryId,omitempty"`
	Active            bool      `gorm:"not null" json:"active"`
	Code              string    `gorm:"size:40;uniqueIndex;not null" json:"code"`
	AvailableQuantity int       `gorm:"not null;check:chk_tools_available_quantity,available_quantity >= 0" json:"availableQuantity"`
	Description       *string   `gorm:"type:text" json:"description,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (Tool) TableName() string { return ToolTable }

// Lendable reports whether a new loan could be opened against the tool right now.
func (t Tool) Lendable() bool { return t.Active && t.AvailableQuantity > 0 }
