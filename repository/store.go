package repository

import (
	"context"
	"errors"

	"github.com/agroconnect/agroconnect/models"
)

var (
	// ErrNotFound signals that an identifier did not resolve to a record.
	ErrNotFound = errors.New("record not found")
	// ErrForbidden signals that the caller does not own the record.
	ErrForbidden = errors.New("operation not allowed")
	// ErrConflict signals that a concurrent writer invalidated the operation.
	ErrConflict = errors.New("conflicting concurrent update")
)

// ListOptions narrows a post listing.
type ListOptions struct {
	Category string
	Language string
	Search   string
	Page     int
	PageSize int
}

// ForumStore is the persistence boundary for the community forum. Exactly one
// implementation is selected at startup: the gorm-backed store or, when no
// database is reachable and the fallback is enabled, the in-memory store.
type ForumStore interface {
	ListPosts(ctx context.Context, opts ListOptions) ([]models.Post, int64, error)
	GetPost(ctx context.Context, id uint) (*models.Post, error)
	CreatePost(ctx context.Context, post *models.Post) error
	IncrementViews(ctx context.Context, id uint) error

	// ApplyReaction reconciles the (post, farmer) reaction record and the
	// post's like/dislike counters in one atomic step: no record creates one
	// and bumps the counter, a repeat of the same action toggles it off, a
	// different action flips it and adjusts both counters.
	ApplyReaction(ctx context.Context, postID uint, farmerID string, action models.ReactionAction) error
	GetReaction(ctx context.Context, postID uint, farmerID string) (*models.Reaction, error)

	ToggleBookmark(ctx context.Context, postID uint, farmerID string) (bookmarked bool, err error)
	ListBookmarks(ctx context.Context, farmerID string) ([]models.Post, error)

	ListComments(ctx context.Context, postID uint) ([]models.Comment, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, postID, commentID uint, farmerID string) error
	ToggleCommentLike(ctx context.Context, postID, commentID uint, farmerID string) error

	ReportPost(ctx context.Context, postID uint, farmerID, reason string) error
	JoinWhatsApp(ctx context.Context, postID uint) error
}
