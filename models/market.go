package models

import "time"

// MarketTrend is one crop's price snapshot for a mandi (market).
type MarketTrend struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Crop          string    `gorm:"size:128;index;not null" json:"crop" binding:"required"`
	Market        string    `gorm:"size:255;index" json:"market"`
	Price         float64   `gorm:"not null;default:0" json:"price"`
	Unit          string    `gorm:"size:32" json:"unit"`
	ChangePercent float64   `gorm:"default:0" json:"change_percent"`
	Trend         string    `gorm:"size:16;default:'stable'" json:"trend"` // up, down, stable
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MarketAlert is a broadcast notice about unusual market movement.
type MarketAlert struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title" binding:"required"`
	Message   string    `gorm:"type:text" json:"message"`
	Severity  string    `gorm:"size:16;index;default:'info'" json:"severity"`
	Crop      string    `gorm:"size:128;index" json:"crop"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
