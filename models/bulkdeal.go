package models

import "time"

// BulkDeal is a group-purchase offer farmers can join to get bulk pricing.
type BulkDeal struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Title          string     `gorm:"size:255;not null" json:"title" binding:"required"`
	Product        string     `gorm:"size:128;index" json:"product"`
	Description    string     `gorm:"type:text" json:"description"`
	UnitPrice      float64    `gorm:"not null;default:0" json:"unit_price"`
	MarketPrice    float64    `gorm:"default:0" json:"market_price"`
	Unit           string     `gorm:"size:32" json:"unit"`
	TargetQuantity int        `gorm:"not null;default:0" json:"target_quantity"`
	CurrentQuantity int       `gorm:"not null;default:0" json:"current_quantity"`
	Participants   int        `gorm:"not null;default:0" json:"participants"`
	Location       string     `gorm:"size:255;index" json:"location"`
	Supplier       string     `gorm:"size:255" json:"supplier"`
	Deadline       *time.Time `json:"deadline"`
	Status         string     `gorm:"size:32;default:'open'" json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
