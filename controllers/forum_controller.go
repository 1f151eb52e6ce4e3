package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agroconnect/agroconnect/middleware"
	"github.com/agroconnect/agroconnect/models"
	"github.com/agroconnect/agroconnect/repository"
	"github.com/agroconnect/agroconnect/utils"
)

// ForumController serves the community forum on top of the ForumStore
// selected at startup.
type ForumController struct {
	store repository.ForumStore
}

// NewForumController creates a ForumController.
func NewForumController(store repository.ForumStore) *ForumController {
	return &ForumController{store: store}
}

// Register wires the forum routes onto the group.
func (f *ForumController) Register(g *gin.RouterGroup) {
	g.GET("/posts", f.ListPosts)
	g.POST("/posts", f.CreatePost)
	g.GET("/posts/:id", f.GetPost)
	g.POST("/posts/:id/likes", f.React)
	g.POST("/posts/:id/bookmark", f.ToggleBookmark)
	g.GET("/bookmarks", f.ListBookmarks)
	g.GET("/posts/:id/comments", f.ListComments)
	g.POST("/posts/:id/comments", f.CreateComment)
	g.DELETE("/posts/:id/comments/:commentId", f.DeleteComment)
	g.POST("/posts/:id/comments/:commentId/likes", f.LikeComment)
	g.POST("/posts/:id/report", f.ReportPost)
	g.POST("/posts/:id/join-whatsapp", f.JoinWhatsApp)
}

// ListPosts returns paginated posts, optionally narrowed by category,
// language, and a search term.
func (f *ForumController) ListPosts(ctx *gin.Context) {
	opts := repository.ListOptions{
		Category: strings.TrimSpace(ctx.Query("category")),
		Language: strings.TrimSpace(ctx.Query("language")),
		Search:   strings.TrimSpace(ctx.Query("search")),
		Page:     atoiDefault(ctx.Query("page"), 1),
		PageSize: atoiDefault(ctx.Query("page_size"), 20),
	}

	// Cache category/language pages only; search terms would explode the key space.
	cacheKey := ""
	if opts.Search == "" {
		cacheKey = fmt.Sprintf("cache:forum:posts:cat=%s:lang=%s:page=%d:size=%d",
			opts.Category, opts.Language, opts.Page, opts.PageSize)
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			if cached, ok := decodePostList(b); ok {
				utils.Success(ctx, cached)
				return
			}
		}
	}

	posts, total, err := f.store.ListPosts(ctx.Request.Context(), opts)
	if err != nil {
		utils.Upstream(ctx, err, "failed to list posts")
		return
	}
	for i := range posts {
		posts[i].TimeAgo = utils.TimeAgo(posts[i].CreatedAt)
	}

	pageSize := opts.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	payload := postListPayload{
		Items: posts,
		Pagination: gin.H{
			"page":        maxInt(opts.Page, 1),
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	}
	if cacheKey != "" {
		utils.CacheSetJSON(cacheKey, payload, 10*time.Minute)
	}
	utils.Success(ctx, payload)
}

type postListPayload struct {
	Items      []models.Post `json:"items"`
	Pagination gin.H         `json:"pagination"`
}

// decodePostList rehydrates a cached list page. The relative time strings are
// recomputed so a cached page does not serve frozen "time ago" values for the
// whole TTL.
func decodePostList(b []byte) (postListPayload, bool) {
	var payload postListPayload
	if err := json.Unmarshal(b, &payload); err != nil {
		return postListPayload{}, false
	}
	for i := range payload.Items {
		payload.Items[i].TimeAgo = utils.TimeAgo(payload.Items[i].CreatedAt)
	}
	return payload, true
}

// CreatePost creates a forum post for the calling farmer.
func (f *ForumController) CreatePost(ctx *gin.Context) {
	var req struct {
		Title        string `json:"title" binding:"required,min=1"`
		Content      string `json:"content" binding:"required"`
		Category     string `json:"category"`
		Language     string `json:"language"`
		Tags         string `json:"tags"`
		Images       string `json:"images"`
		HasVoiceNote bool   `json:"has_voice_note"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, "title cannot be empty")
		return
	}

	post := models.Post{
		FarmerID:     middleware.FarmerID(ctx),
		Title:        title,
		Content:      utils.Sanitize(req.Content),
		Category:     defaultString(req.Category, "general"),
		Language:     defaultString(req.Language, "en"),
		Tags:         req.Tags,
		Images:       req.Images,
		HasVoiceNote: req.HasVoiceNote,
	}
	if err := f.store.CreatePost(ctx.Request.Context(), &post); err != nil {
		utils.Upstream(ctx, err, "failed to create post")
		return
	}

	utils.InvalidateByPrefix("cache:forum:posts:")
	utils.Created(ctx, gin.H{"post": post})
}

// GetPost returns a single post with its comments and records the view.
func (f *ForumController) GetPost(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	if err := f.store.IncrementViews(ctx.Request.Context(), id); err != nil {
		f.storeError(ctx, err, "failed to load post")
		return
	}
	post, err := f.store.GetPost(ctx.Request.Context(), id)
	if err != nil {
		f.storeError(ctx, err, "failed to load post")
		return
	}
	comments, err := f.store.ListComments(ctx.Request.Context(), id)
	if err == nil {
		for i := range comments {
			comments[i].TimeAgo = utils.TimeAgo(comments[i].CreatedAt)
		}
		post.Comments = comments
	}
	post.TimeAgo = utils.TimeAgo(post.CreatedAt)

	utils.Success(ctx, gin.H{"post": post})
}

// React applies a like or dislike through the reconciler. The response has no
// payload; callers re-fetch the post for fresh counters.
func (f *ForumController) React(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	var req struct {
		Action models.ReactionAction `json:"action" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || !req.Action.Valid() {
		utils.Error(ctx, http.StatusBadRequest, "action must be like or dislike")
		return
	}

	err := f.store.ApplyReaction(ctx.Request.Context(), id, middleware.FarmerID(ctx), req.Action)
	if err != nil {
		f.storeError(ctx, err, "failed to apply reaction")
		return
	}
	utils.InvalidateByPrefix("cache:forum:posts:")
	utils.Success(ctx, gin.H{"message": "ok"})
}

// ToggleBookmark flips bookmark membership for the calling farmer.
func (f *ForumController) ToggleBookmark(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	bookmarked, err := f.store.ToggleBookmark(ctx.Request.Context(), id, middleware.FarmerID(ctx))
	if err != nil {
		f.storeError(ctx, err, "failed to toggle bookmark")
		return
	}
	utils.Success(ctx, gin.H{"bookmarked": bookmarked})
}

// ListBookmarks returns the calling farmer's saved posts.
func (f *ForumController) ListBookmarks(ctx *gin.Context) {
	posts, err := f.store.ListBookmarks(ctx.Request.Context(), middleware.FarmerID(ctx))
	if err != nil {
		utils.Upstream(ctx, err, "failed to list bookmarks")
		return
	}
	for i := range posts {
		posts[i].TimeAgo = utils.TimeAgo(posts[i].CreatedAt)
	}
	utils.Success(ctx, gin.H{"items": posts, "count": len(posts)})
}

// ListComments returns a post's comments oldest first.
func (f *ForumController) ListComments(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	comments, err := f.store.ListComments(ctx.Request.Context(), id)
	if err != nil {
		f.storeError(ctx, err, "failed to list comments")
		return
	}
	for i := range comments {
		comments[i].TimeAgo = utils.TimeAgo(comments[i].CreatedAt)
	}
	utils.Success(ctx, gin.H{"items": comments, "count": len(comments)})
}

// CreateComment attaches a comment to a post.
func (f *ForumController) CreateComment(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}
	content := utils.Sanitize(req.Content)
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, "content cannot be empty")
		return
	}

	comment := models.Comment{
		PostID:   id,
		FarmerID: middleware.FarmerID(ctx),
		Content:  content,
	}
	if err := f.store.CreateComment(ctx.Request.Context(), &comment); err != nil {
		f.storeError(ctx, err, "failed to create comment")
		return
	}
	utils.Created(ctx, gin.H{"comment": comment})
}

// DeleteComment removes a comment; only its author may delete it.
func (f *ForumController) DeleteComment(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	commentID, ok := parseParamID(ctx, "commentId")
	if !ok {
		return
	}
	err := f.store.DeleteComment(ctx.Request.Context(), id, commentID, middleware.FarmerID(ctx))
	if err != nil {
		f.storeError(ctx, err, "failed to delete comment")
		return
	}
	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

// LikeComment toggles the calling farmer's like on a comment.
func (f *ForumController) LikeComment(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	commentID, ok := parseParamID(ctx, "commentId")
	if !ok {
		return
	}
	err := f.store.ToggleCommentLike(ctx.Request.Context(), id, commentID, middleware.FarmerID(ctx))
	if err != nil {
		f.storeError(ctx, err, "failed to like comment")
		return
	}
	utils.Success(ctx, gin.H{"message": "ok"})
}

// ReportPost records a complaint about a post.
func (f *ForumController) ReportPost(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	// The reason is optional, so an empty body is fine; a body that is
	// present but not valid JSON is not.
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	err := f.store.ReportPost(ctx.Request.Context(), id, middleware.FarmerID(ctx), utils.Sanitize(req.Reason))
	if err != nil {
		f.storeError(ctx, err, "failed to report post")
		return
	}
	utils.Success(ctx, gin.H{"message": "report received"})
}

// JoinWhatsApp marks the post's WhatsApp group as joined.
func (f *ForumController) JoinWhatsApp(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	if err := f.store.JoinWhatsApp(ctx.Request.Context(), id); err != nil {
		f.storeError(ctx, err, "failed to join group")
		return
	}
	utils.Success(ctx, gin.H{"joined": true})
}

func (f *ForumController) storeError(ctx *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, "not allowed")
	case errors.Is(err, repository.ErrConflict):
		utils.Error(ctx, http.StatusConflict, "conflicting update, retry")
	default:
		utils.Upstream(ctx, err, fallback)
	}
}

func parseParamID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func defaultString(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
