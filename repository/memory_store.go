package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/agroconnect/agroconnect/models"
)

type pairKey struct {
	id     uint
	farmer string
}

// MemoryForumStore keeps forum data in process memory behind one mutex. It is
// the fallback when no database is reachable and the double for store tests.
// The same reconciliation invariants hold: at most one reaction per
// (post, farmer), counters equal to the record counts, never negative.
type MemoryForumStore struct {
	mu sync.Mutex

	posts    map[uint]*models.Post
	comments map[uint]*models.Comment

	reactions    map[pairKey]models.ReactionAction
	bookmarks    map[pairKey]time.Time
	commentLikes map[pairKey]struct{}
	reports      []models.PostReport

	nextPostID    uint
	nextCommentID uint
	nextReportID  uint
}

// NewMemoryForumStore returns an empty in-memory store.
func NewMemoryForumStore() *MemoryForumStore {
	return &MemoryForumStore{
		posts:        map[uint]*models.Post{},
		comments:     map[uint]*models.Comment{},
		reactions:    map[pairKey]models.ReactionAction{},
		bookmarks:    map[pairKey]time.Time{},
		commentLikes: map[pairKey]struct{}{},
	}
}

func (s *MemoryForumStore) ListPosts(_ context.Context, opts ListOptions) ([]models.Post, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(opts.Search))
	var matched []models.Post
	for _, p := range s.posts {
		if opts.Category != "" && p.Category != opts.Category {
			continue
		}
		if opts.Language != "" && p.Language != opts.Language {
			continue
		}
		if search != "" {
			hay := strings.ToLower(p.Title + " " + p.Content + " " + p.Tags)
			if !strings.Contains(hay, search) {
				continue
			}
		}
		matched = append(matched, *p)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	page, pageSize := normalizePage(opts.Page, opts.PageSize)
	start := (page - 1) * pageSize
	if start >= len(matched) {
		return []models.Post{}, total, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *MemoryForumStore) GetPost(_ context.Context, id uint) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryForumStore) CreatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPostID++
	post.ID = s.nextPostID
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now
	cp := *post
	s.posts[post.ID] = &cp
	return nil
}

func (s *MemoryForumStore) IncrementViews(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return ErrNotFound
	}
	p.Views++
	return nil
}

func (s *MemoryForumStore) ApplyReaction(_ context.Context, postID uint, farmerID string, action models.ReactionAction) error {
	if !action.Valid() {
		return fmt.Errorf("unknown reaction action %q", action)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return ErrNotFound
	}

	key := pairKey{postID, farmerID}
	prev, exists := s.reactions[key]
	switch {
	case !exists:
		s.reactions[key] = action
		s.adjustLocked(post, action, +1)
	case prev == action:
		delete(s.reactions, key)
		s.adjustLocked(post, action, -1)
	default:
		s.reactions[key] = action
		s.adjustLocked(post, prev, -1)
		s.adjustLocked(post, action, +1)
	}
	return nil
}

func (s *MemoryForumStore) adjustLocked(post *models.Post, action models.ReactionAction, delta int) {
	counter := &post.Likes
	if action == models.ReactionDislike {
		counter = &post.Dislikes
	}
	*counter += delta
	if *counter < 0 {
		*counter = 0
	}
}

func (s *MemoryForumStore) GetReaction(_ context.Context, postID uint, farmerID string) (*models.Reaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	action, ok := s.reactions[pairKey{postID, farmerID}]
	if !ok {
		return nil, ErrNotFound
	}
	return &models.Reaction{PostID: postID, FarmerID: farmerID, Action: action}, nil
}

func (s *MemoryForumStore) ToggleBookmark(_ context.Context, postID uint, farmerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[postID]; !ok {
		return false, ErrNotFound
	}
	key := pairKey{postID, farmerID}
	if _, ok := s.bookmarks[key]; ok {
		delete(s.bookmarks, key)
		return false, nil
	}
	s.bookmarks[key] = time.Now()
	return true, nil
}

func (s *MemoryForumStore) ListBookmarks(_ context.Context, farmerID string) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	type saved struct {
		post models.Post
		at   time.Time
	}
	var entries []saved
	for key, at := range s.bookmarks {
		if key.farmer != farmerID {
			continue
		}
		if p, ok := s.posts[key.id]; ok {
			entries = append(entries, saved{*p, at})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].at.After(entries[j].at) })
	posts := make([]models.Post, 0, len(entries))
	for _, e := range entries {
		posts = append(posts, e.post)
	}
	return posts, nil
}

func (s *MemoryForumStore) ListComments(_ context.Context, postID uint) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[postID]; !ok {
		return nil, ErrNotFound
	}
	var comments []models.Comment
	for _, c := range s.comments {
		if c.PostID == postID {
			comments = append(comments, *c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

func (s *MemoryForumStore) CreateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[comment.PostID]; !ok {
		return ErrNotFound
	}
	s.nextCommentID++
	comment.ID = s.nextCommentID
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	cp := *comment
	s.comments[comment.ID] = &cp
	return nil
}

func (s *MemoryForumStore) DeleteComment(_ context.Context, postID, commentID uint, farmerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[commentID]
	if !ok || c.PostID != postID {
		return ErrNotFound
	}
	if c.FarmerID != farmerID {
		return ErrForbidden
	}
	delete(s.comments, commentID)
	for key := range s.commentLikes {
		if key.id == commentID {
			delete(s.commentLikes, key)
		}
	}
	return nil
}

func (s *MemoryForumStore) ToggleCommentLike(_ context.Context, postID, commentID uint, farmerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[commentID]
	if !ok || c.PostID != postID {
		return ErrNotFound
	}
	key := pairKey{commentID, farmerID}
	if _, liked := s.commentLikes[key]; liked {
		delete(s.commentLikes, key)
		if c.Likes > 0 {
			c.Likes--
		}
		return nil
	}
	s.commentLikes[key] = struct{}{}
	c.Likes++
	return nil
}

func (s *MemoryForumStore) ReportPost(_ context.Context, postID uint, farmerID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[postID]; !ok {
		return ErrNotFound
	}
	s.nextReportID++
	s.reports = append(s.reports, models.PostReport{
		ID:        s.nextReportID,
		PostID:    postID,
		FarmerID:  farmerID,
		Reason:    reason,
		CreatedAt: time.Now(),
	})
	return nil
}

func (s *MemoryForumStore) JoinWhatsApp(_ context.Context, postID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return ErrNotFound
	}
	p.WhatsappGroupJoined = true
	return nil
}
