package models

import "time"

// EquipmentPlaceholderImage is stored as image_url when a listing is created
// without an uploaded photo.
const EquipmentPlaceholderImage = "/static/placeholder/equipment.png"

// Equipment is a rentable machine or tool listed by a farmer.
type Equipment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Category     string    `gorm:"size:64;index" json:"category"`
	Description  string    `gorm:"type:text" json:"description"`
	DailyRate    float64   `gorm:"not null;default:0" json:"daily_rate"`
	Location     string    `gorm:"size:255;index" json:"location"`
	OwnerID      string    `gorm:"size:64;index" json:"owner_id"`
	OwnerName    string    `gorm:"size:255" json:"owner_name"`
	OwnerPhone   string    `gorm:"size:32" json:"owner_phone"`
	Availability string    `gorm:"size:32;default:'available'" json:"availability"`
	ImageURL     string    `gorm:"size:512" json:"image_url"`
	Rating       float64   `gorm:"default:0" json:"rating"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
