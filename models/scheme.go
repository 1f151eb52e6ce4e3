package models

import "time"

// Scheme is a government support program listing.
type Scheme struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"size:255;not null" json:"name" binding:"required"`
	Description string     `gorm:"type:text" json:"description"`
	Eligibility string     `gorm:"type:text" json:"eligibility"`
	Benefit     string     `gorm:"size:512" json:"benefit"`
	Link        string     `gorm:"size:512" json:"link"`
	Deadline    *time.Time `json:"deadline"`
	Status      string     `gorm:"size:32;index;default:'active'" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
