package models

import "time"

// LendingCircle is a peer savings-and-credit group.
type LendingCircle struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Location     string    `gorm:"size:255;index" json:"location"`
	Members      int       `gorm:"not null;default:0" json:"members"`
	Contribution float64   `gorm:"not null;default:0" json:"contribution"`
	TotalFund    float64   `gorm:"not null;default:0" json:"total_fund"`
	InterestRate float64   `gorm:"default:0" json:"interest_rate"`
	Status       string    `gorm:"size:32;default:'active'" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Loan is a credit line drawn from a lending circle by one borrower.
type Loan struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CircleID   uint       `gorm:"index;not null" json:"circle_id"`
	BorrowerID string     `gorm:"size:64;index;not null" json:"borrower_id"`
	Borrower   string     `gorm:"size:255" json:"borrower"`
	Amount     float64    `gorm:"not null;default:0" json:"amount"`
	Purpose    string     `gorm:"size:255" json:"purpose"`
	Status     string     `gorm:"size:32;default:'pending'" json:"status"`
	DueDate    *time.Time `json:"due_date"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
