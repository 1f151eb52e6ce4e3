package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agroconnect/agroconnect/models"
)

// GormForumStore persists forum data through gorm. All counter mutations run
// as SQL expressions inside transactions so concurrent reactions cannot
// interleave a read-modify-write.
type GormForumStore struct {
	db *gorm.DB
}

// NewGormForumStore wraps a connected gorm DB.
func NewGormForumStore(db *gorm.DB) *GormForumStore {
	return &GormForumStore{db: db}
}

func (s *GormForumStore) ListPosts(ctx context.Context, opts ListOptions) ([]models.Post, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Post{})
	if opts.Category != "" {
		query = query.Where("category = ?", opts.Category)
	}
	if opts.Language != "" {
		query = query.Where("language = ?", opts.Language)
	}
	if q := strings.TrimSpace(opts.Search); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ? OR LOWER(tags) LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := normalizePage(opts.Page, opts.PageSize)
	var posts []models.Post
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (s *GormForumStore) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (s *GormForumStore) CreatePost(ctx context.Context, post *models.Post) error {
	return s.db.WithContext(ctx).Create(post).Error
}

func (s *GormForumStore) IncrementViews(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyReaction runs the whole reconciliation in one transaction. The insert
// uses ON CONFLICT DO NOTHING against the (post_id, farmer_id) unique index
// and every following step is guarded by RowsAffected, so the record lookup
// and the counter adjustment cannot be split by a concurrent request.
func (s *GormForumStore) ApplyReaction(ctx context.Context, postID uint, farmerID string, action models.ReactionAction) error {
	if !action.Valid() {
		return fmt.Errorf("unknown reaction action %q", action)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			return translate(err)
		}

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "farmer_id"}},
			DoNothing: true,
		}).Create(&models.Reaction{PostID: postID, FarmerID: farmerID, Action: action})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			return bumpCounter(tx, postID, counterColumn(action), +1)
		}

		// A record exists. Same action: toggle off.
		res = tx.Where("post_id = ? AND farmer_id = ? AND action = ?", postID, farmerID, action).
			Delete(&models.Reaction{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			return bumpCounter(tx, postID, counterColumn(action), -1)
		}

		// Different action: flip the record and move one count across.
		res = tx.Model(&models.Reaction{}).
			Where("post_id = ? AND farmer_id = ? AND action <> ?", postID, farmerID, action).
			Update("action", action)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			// The record vanished between steps; surface it rather than guess.
			return ErrConflict
		}
		if err := bumpCounter(tx, postID, counterColumn(opposite(action)), -1); err != nil {
			return err
		}
		return bumpCounter(tx, postID, counterColumn(action), +1)
	})
}

func (s *GormForumStore) GetReaction(ctx context.Context, postID uint, farmerID string) (*models.Reaction, error) {
	var r models.Reaction
	err := s.db.WithContext(ctx).
		Where("post_id = ? AND farmer_id = ?", postID, farmerID).
		First(&r).Error
	if err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

// ToggleBookmark flips bookmark membership with a single conditional insert
// or delete; no counter is involved.
func (s *GormForumStore) ToggleBookmark(ctx context.Context, postID uint, farmerID string) (bool, error) {
	bookmarked := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			return translate(err)
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "farmer_id"}},
			DoNothing: true,
		}).Create(&models.Bookmark{PostID: postID, FarmerID: farmerID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			bookmarked = true
			return nil
		}
		return tx.Where("post_id = ? AND farmer_id = ?", postID, farmerID).
			Delete(&models.Bookmark{}).Error
	})
	return bookmarked, err
}

func (s *GormForumStore) ListBookmarks(ctx context.Context, farmerID string) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Joins("JOIN bookmarks ON bookmarks.post_id = posts.id").
		Where("bookmarks.farmer_id = ?", farmerID).
		Order("bookmarks.created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (s *GormForumStore) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Select("id").First(&post, postID).Error; err != nil {
		return nil, translate(err)
	}
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (s *GormForumStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, comment.PostID).Error; err != nil {
			return translate(err)
		}
		return tx.Create(comment).Error
	})
}

func (s *GormForumStore) DeleteComment(ctx context.Context, postID, commentID uint, farmerID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cmt models.Comment
		err := tx.Where("id = ? AND post_id = ?", commentID, postID).First(&cmt).Error
		if err != nil {
			return translate(err)
		}
		if cmt.FarmerID != farmerID {
			return ErrForbidden
		}
		if err := tx.Delete(&cmt).Error; err != nil {
			return err
		}
		return tx.Where("comment_id = ?", commentID).Delete(&models.CommentLike{}).Error
	})
}

// ToggleCommentLike mirrors the reaction reconciler for the single-action
// comment like counter.
func (s *GormForumStore) ToggleCommentLike(ctx context.Context, postID, commentID uint, farmerID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cmt models.Comment
		if err := tx.Select("id").Where("id = ? AND post_id = ?", commentID, postID).First(&cmt).Error; err != nil {
			return translate(err)
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "comment_id"}, {Name: "farmer_id"}},
			DoNothing: true,
		}).Create(&models.CommentLike{CommentID: commentID, FarmerID: farmerID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			return tx.Model(&models.Comment{}).Where("id = ?", commentID).
				UpdateColumn("likes", gorm.Expr("likes + 1")).Error
		}
		res = tx.Where("comment_id = ? AND farmer_id = ?", commentID, farmerID).
			Delete(&models.CommentLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		return tx.Model(&models.Comment{}).Where("id = ?", commentID).
			UpdateColumn("likes", gorm.Expr("CASE WHEN likes > 0 THEN likes - 1 ELSE 0 END")).Error
	})
}

func (s *GormForumStore) ReportPost(ctx context.Context, postID uint, farmerID, reason string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			return translate(err)
		}
		return tx.Create(&models.PostReport{PostID: postID, FarmerID: farmerID, Reason: reason}).Error
	})
}

func (s *GormForumStore) JoinWhatsApp(ctx context.Context, postID uint) error {
	res := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("whatsapp_group_joined", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// bumpCounter adjusts a post counter with a pure SQL expression. Decrements
// clamp at zero so a racing duplicate can never drive the counter negative.
func bumpCounter(tx *gorm.DB, postID uint, column string, delta int) error {
	var expr clause.Expr
	if delta >= 0 {
		expr = gorm.Expr(fmt.Sprintf("%s + %d", column, delta))
	} else {
		expr = gorm.Expr(fmt.Sprintf("CASE WHEN %s >= %d THEN %s - %d ELSE 0 END", column, -delta, column, -delta))
	}
	return tx.Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn(column, expr).Error
}

func counterColumn(action models.ReactionAction) string {
	if action == models.ReactionLike {
		return "likes"
	}
	return "dislikes"
}

func opposite(action models.ReactionAction) models.ReactionAction {
	if action == models.ReactionLike {
		return models.ReactionDislike
	}
	return models.ReactionLike
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
