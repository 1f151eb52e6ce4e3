package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agroconnect/agroconnect/models"
)

func newGormStore(t *testing.T) *GormForumStore {
	t.Helper()
	// A named in-memory database per test; cache=shared keeps every pooled
	// connection on the same database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	// one in-memory database, one connection
	sqlDB.SetMaxOpenConns(1)
	err = db.AutoMigrate(
		&models.Post{}, &models.Comment{}, &models.Reaction{}, &models.Bookmark{},
		&models.CommentLike{}, &models.PostReport{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewGormForumStore(db)
}

func TestGormReactionScenario(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()
	post := seedPost(t, s)

	steps := []struct {
		action   models.ReactionAction
		likes    int
		dislikes int
		record   models.ReactionAction // "" means no record expected
	}{
		{models.ReactionLike, 1, 0, models.ReactionLike},
		{models.ReactionLike, 0, 0, ""},
		{models.ReactionDislike, 0, 1, models.ReactionDislike},
		{models.ReactionLike, 1, 0, models.ReactionLike},
	}
	for i, step := range steps {
		if err := s.ApplyReaction(ctx, post.ID, "a", step.action); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		assertCounters(t, s, post.ID, step.likes, step.dislikes)
		r, err := s.GetReaction(ctx, post.ID, "a")
		if step.record == "" {
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("step %d: expected no record, got %+v err=%v", i, r, err)
			}
		} else if err != nil || r.Action != step.record {
			t.Fatalf("step %d: expected %s record, got %+v err=%v", i, step.record, r, err)
		}
	}
}

func TestGormReactionCountersMatchRecords(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()
	post := seedPost(t, s)

	farmers := []string{"a", "b", "c", "d"}
	actions := []models.ReactionAction{
		models.ReactionLike, models.ReactionLike, models.ReactionDislike, models.ReactionLike,
		models.ReactionDislike, models.ReactionDislike, models.ReactionLike,
	}
	for i, action := range actions {
		farmer := farmers[i%len(farmers)]
		if err := s.ApplyReaction(ctx, post.ID, farmer, action); err != nil {
			t.Fatalf("apply %d: %v", i, err)
		}
	}

	got, err := s.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatal(err)
	}
	var likes, dislikes int64
	s.db.Model(&models.Reaction{}).Where("post_id = ? AND action = ?", post.ID, models.ReactionLike).Count(&likes)
	s.db.Model(&models.Reaction{}).Where("post_id = ? AND action = ?", post.ID, models.ReactionDislike).Count(&dislikes)
	if int64(got.Likes) != likes || int64(got.Dislikes) != dislikes {
		t.Fatalf("counters %d/%d diverge from records %d/%d", got.Likes, got.Dislikes, likes, dislikes)
	}
}

func TestGormReactionConcurrentSamePair(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()
	post := seedPost(t, s)

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_ = s.ApplyReaction(ctx, post.ID, "a", models.ReactionLike)
		}()
	}
	wg.Wait()

	var records int64
	s.db.Model(&models.Reaction{}).Where("post_id = ? AND farmer_id = ?", post.ID, "a").Count(&records)
	if records > 1 {
		t.Fatalf("%d reaction records for one pair", records)
	}
	got, err := s.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatal(err)
	}
	if int64(got.Likes) != records || got.Dislikes != 0 {
		t.Fatalf("likes=%d dislikes=%d but %d records", got.Likes, got.Dislikes, records)
	}
}

func TestGormReactionUnknownPost(t *testing.T) {
	s := newGormStore(t)
	err := s.ApplyReaction(context.Background(), 42, "a", models.ReactionLike)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGormBookmarkToggle(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()
	post := seedPost(t, s)

	on, err := s.ToggleBookmark(ctx, post.ID, "a")
	if err != nil || !on {
		t.Fatalf("first toggle: on=%v err=%v", on, err)
	}
	on, err = s.ToggleBookmark(ctx, post.ID, "a")
	if err != nil || on {
		t.Fatalf("second toggle: on=%v err=%v", on, err)
	}
	var count int64
	s.db.Model(&models.Bookmark{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no bookmark rows, got %d", count)
	}
}

func TestGormCommentLikeClamp(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()
	post := seedPost(t, s)
	cmt := &models.Comment{PostID: post.ID, FarmerID: "a", Content: "use neem oil"}
	if err := s.CreateComment(ctx, cmt); err != nil {
		t.Fatal(err)
	}

	// Drive the counter below what the records justify, then toggle off:
	// the decrement must clamp at zero.
	if err := s.ToggleCommentLike(ctx, post.ID, cmt.ID, "b"); err != nil {
		t.Fatal(err)
	}
	s.db.Model(&models.Comment{}).Where("id = ?", cmt.ID).UpdateColumn("likes", 0)
	if err := s.ToggleCommentLike(ctx, post.ID, cmt.ID, "b"); err != nil {
		t.Fatal(err)
	}
	var got models.Comment
	s.db.First(&got, cmt.ID)
	if got.Likes != 0 {
		t.Fatalf("likes=%d, want clamped 0", got.Likes)
	}
}

func TestGormDeleteCommentAuthorOnly(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()
	post := seedPost(t, s)
	cmt := &models.Comment{PostID: post.ID, FarmerID: "a", Content: "sell now"}
	if err := s.CreateComment(ctx, cmt); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteComment(ctx, post.ID, cmt.ID, "b"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := s.DeleteComment(ctx, post.ID, cmt.ID, "a"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteComment(ctx, post.ID, cmt.ID, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestGormListPostsSearch(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()
	for _, p := range []*models.Post{
		{FarmerID: "a", Title: "Tractor sharing", Content: "looking to rent", Category: "equipment"},
		{FarmerID: "b", Title: "Onion blight", Content: "leaves turning yellow", Category: "crops"},
	} {
		if err := s.CreatePost(ctx, p); err != nil {
			t.Fatal(err)
		}
	}
	posts, total, err := s.ListPosts(ctx, ListOptions{Search: "tractor"})
	if err != nil || total != 1 || posts[0].Category != "equipment" {
		t.Fatalf("search: total=%d err=%v", total, err)
	}
	_, total, err = s.ListPosts(ctx, ListOptions{Category: "crops"})
	if err != nil || total != 1 {
		t.Fatalf("filter: total=%d err=%v", total, err)
	}
}

func TestGormReportAndJoin(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()
	post := seedPost(t, s)

	if err := s.ReportPost(ctx, post.ID, "b", "spam"); err != nil {
		t.Fatal(err)
	}
	var reports int64
	s.db.Model(&models.PostReport{}).Where("post_id = ?", post.ID).Count(&reports)
	if reports != 1 {
		t.Fatalf("reports=%d", reports)
	}

	if err := s.JoinWhatsApp(ctx, post.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetPost(ctx, post.ID)
	if !got.WhatsappGroupJoined {
		t.Fatal("expected whatsapp_group_joined set")
	}
	if err := s.JoinWhatsApp(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
