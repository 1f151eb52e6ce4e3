package models

import "time"

// Expense is a single farm expenditure entry tracked by a farmer.
type Expense struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	FarmerID    string     `gorm:"size:64;index;not null" json:"farmer_id"`
	Category    string     `gorm:"size:64;index" json:"category" binding:"required"`
	Amount      float64    `gorm:"not null;default:0" json:"amount"`
	Description string     `gorm:"size:512" json:"description"`
	SpentAt     *time.Time `json:"spent_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
