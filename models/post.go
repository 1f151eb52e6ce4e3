package models

import "time"

// ReactionAction enumerates the two supported post reactions.
type ReactionAction string

const (
	ReactionLike    ReactionAction = "like"
	ReactionDislike ReactionAction = "dislike"
)

// Valid reports whether the action is one of the enumerated values.
func (a ReactionAction) Valid() bool {
	return a == ReactionLike || a == ReactionDislike
}

// Post represents a community forum post created by a farmer.
// Likes/Dislikes are mutated only through the reaction reconciler,
// Views only through IncrementViews.
type Post struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	FarmerID            string    `gorm:"size:64;index;not null" json:"farmer_id"`
	Title               string    `gorm:"size:255;not null" json:"title"`
	Content             string    `gorm:"type:text;not null" json:"content"`
	Category            string    `gorm:"size:32;index;default:'general'" json:"category"`
	Language            string    `gorm:"size:16;index;default:'en'" json:"language"`
	Likes               int       `gorm:"not null;default:0" json:"likes"`
	Dislikes            int       `gorm:"not null;default:0" json:"dislikes"`
	Views               int       `gorm:"not null;default:0" json:"views"`
	HasVoiceNote        bool      `gorm:"default:false" json:"has_voice_note"`
	IsVerified          bool      `gorm:"default:false" json:"is_verified"`
	WhatsappGroupJoined bool      `gorm:"default:false" json:"whatsapp_group_joined"`
	Tags                string    `gorm:"type:text" json:"tags"`   // JSON array of tag strings
	Images              string    `gorm:"type:text" json:"images"` // JSON array of image URLs
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	Comments            []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments,omitempty"`
	TimeAgo             string    `gorm:"-" json:"time_ago,omitempty"`
}

// Reaction records a farmer's like or dislike on a post.
// The unique index on (post_id, farmer_id) is load-bearing: the reconciler
// uses it as the compare-and-swap anchor, so at most one row can ever exist
// per pair.
type Reaction struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PostID    uint           `gorm:"uniqueIndex:idx_reaction_post_farmer;not null" json:"post_id"`
	FarmerID  string         `gorm:"size:64;uniqueIndex:idx_reaction_post_farmer;not null" json:"farmer_id"`
	Action    ReactionAction `gorm:"size:16;not null" json:"action"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Bookmark marks a post saved by a farmer; presence is the whole state.
type Bookmark struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"uniqueIndex:idx_bookmark_post_farmer;not null" json:"post_id"`
	FarmerID  string    `gorm:"size:64;uniqueIndex:idx_bookmark_post_farmer;not null" json:"farmer_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PostReport is a farmer's complaint about a post.
type PostReport struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"index;not null" json:"post_id"`
	FarmerID  string    `gorm:"size:64;not null" json:"farmer_id"`
	Reason    string    `gorm:"size:512" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
