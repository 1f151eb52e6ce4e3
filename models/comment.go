package models

import "time"

// Comment represents a reply to a forum post.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"index;not null" json:"post_id"`
	FarmerID  string    `gorm:"size:64;index;not null" json:"farmer_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Likes     int       `gorm:"not null;default:0" json:"likes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	TimeAgo   string    `gorm:"-" json:"time_ago,omitempty"`
}

// CommentLike records a farmer's like on a comment, at most one per
// (comment, farmer) pair.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"uniqueIndex:idx_comment_like_farmer;not null" json:"comment_id"`
	FarmerID  string    `gorm:"size:64;uniqueIndex:idx_comment_like_farmer;not null" json:"farmer_id"`
	CreatedAt time.Time `json:"created_at"`
}
