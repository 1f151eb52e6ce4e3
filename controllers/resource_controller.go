package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/agroconnect/agroconnect/utils"
)

// ResourceOptions configures one REST collection backed by one table.
type ResourceOptions struct {
	// Name appears in error messages ("equipment not found").
	Name string
	// Filters maps query parameters to columns for exact-match listing.
	Filters map[string]string
	// SearchColumns are OR-combined for case-insensitive substring search.
	SearchColumns []string
	// Deletable enables the DELETE verb.
	Deletable bool
	// CachePrefix, when set, caches unfiltered list responses in Redis.
	CachePrefix string
}

// ResourceController serves the uniform list/filter/search/create/update
// (/delete) verb set for a single table. Every resource shares this one
// implementation, parameterized by its model type and options.
type ResourceController[T any] struct {
	db   *gorm.DB
	opts ResourceOptions

	colsOnce sync.Once
	cols     map[string]bool
}

// NewResourceController builds a controller for model T.
func NewResourceController[T any](db *gorm.DB, opts ResourceOptions) *ResourceController[T] {
	return &ResourceController[T]{db: db, opts: opts}
}

// Register wires the verb set onto the group.
func (rc *ResourceController[T]) Register(g *gin.RouterGroup) {
	g.GET("", rc.List)
	g.GET("/search", rc.Search)
	g.GET("/:id", rc.Get)
	g.POST("", rc.Create)
	g.PATCH("/:id", rc.Update)
	g.PUT("/:id", rc.Update)
	if rc.opts.Deletable {
		g.DELETE("/:id", rc.Delete)
	}
}

// List returns all records ordered by creation time descending, narrowed by
// any configured exact-match filters present in the query string.
func (rc *ResourceController[T]) List(ctx *gin.Context) {
	query := rc.db.Model(new(T)).Order("created_at DESC")
	filtered := false
	for param, column := range rc.opts.Filters {
		if v := strings.TrimSpace(ctx.Query(param)); v != "" {
			query = query.Where(fmt.Sprintf("%s = ?", column), v)
			filtered = true
		}
	}

	cacheKey := ""
	if rc.opts.CachePrefix != "" && !filtered {
		cacheKey = rc.opts.CachePrefix + ":list"
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	var items []T
	if err := query.Find(&items).Error; err != nil {
		utils.Upstream(ctx, err, "failed to list "+rc.opts.Name)
		return
	}
	payload := gin.H{"items": items, "count": len(items)}
	if cacheKey != "" {
		utils.CacheSetJSON(cacheKey, payload, 5*time.Minute)
	}
	utils.Success(ctx, payload)
}

// Search performs a case-insensitive substring match OR-combined across the
// configured columns. An empty query is a validation error.
func (rc *ResourceController[T]) Search(ctx *gin.Context) {
	q := strings.TrimSpace(ctx.Query("q"))
	if q == "" {
		utils.Error(ctx, http.StatusBadRequest, "search query is required")
		return
	}
	if len(rc.opts.SearchColumns) == 0 {
		utils.Error(ctx, http.StatusBadRequest, rc.opts.Name+" is not searchable")
		return
	}

	pattern := "%" + strings.ToLower(q) + "%"
	conds := make([]string, 0, len(rc.opts.SearchColumns))
	args := make([]interface{}, 0, len(rc.opts.SearchColumns))
	for _, col := range rc.opts.SearchColumns {
		conds = append(conds, fmt.Sprintf("LOWER(%s) LIKE ?", col))
		args = append(args, pattern)
	}

	var items []T
	err := rc.db.Model(new(T)).
		Where(strings.Join(conds, " OR "), args...).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		utils.Upstream(ctx, err, "failed to search "+rc.opts.Name)
		return
	}
	utils.Success(ctx, gin.H{"items": items, "count": len(items)})
}

// Get returns one record by id.
func (rc *ResourceController[T]) Get(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	var item T
	if err := rc.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, rc.opts.Name+" not found")
			return
		}
		utils.Upstream(ctx, err, "failed to load "+rc.opts.Name)
		return
	}
	utils.Success(ctx, item)
}

// Create inserts one record and returns it.
func (rc *ResourceController[T]) Create(ctx *gin.Context) {
	var record T
	if err := ctx.ShouldBindJSON(&record); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := rc.db.Create(&record).Error; err != nil {
		utils.Upstream(ctx, err, "failed to create "+rc.opts.Name)
		return
	}
	rc.invalidate()
	utils.Created(ctx, record)
}

// Update patches a record in place; unknown ids are 404.
func (rc *ResourceController[T]) Update(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	var patch map[string]interface{}
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}
	delete(patch, "id")
	delete(patch, "created_at")
	delete(patch, "updated_at")
	if len(patch) == 0 {
		utils.Error(ctx, http.StatusBadRequest, "empty update payload")
		return
	}
	for key := range patch {
		if !rc.columnSet()[key] {
			utils.Error(ctx, http.StatusBadRequest, "unknown field "+key)
			return
		}
	}

	var existing T
	if err := rc.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, rc.opts.Name+" not found")
			return
		}
		utils.Upstream(ctx, err, "failed to load "+rc.opts.Name)
		return
	}
	if err := rc.db.Model(&existing).Updates(patch).Error; err != nil {
		utils.Upstream(ctx, err, "failed to update "+rc.opts.Name)
		return
	}
	var updated T
	if err := rc.db.First(&updated, id).Error; err != nil {
		utils.Upstream(ctx, err, "failed to load "+rc.opts.Name)
		return
	}
	rc.invalidate()
	utils.Success(ctx, updated)
}

// Delete removes a record; unknown ids are 404.
func (rc *ResourceController[T]) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	res := rc.db.Delete(new(T), id)
	if res.Error != nil {
		utils.Upstream(ctx, res.Error, "failed to delete "+rc.opts.Name)
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, rc.opts.Name+" not found")
		return
	}
	rc.invalidate()
	utils.Success(ctx, gin.H{"deleted": id})
}

// columnSet maps T's database column names, so patch keys can be validated
// before they reach the datastore as column references.
func (rc *ResourceController[T]) columnSet() map[string]bool {
	rc.colsOnce.Do(func() {
		rc.cols = map[string]bool{}
		s, err := schema.Parse(new(T), &sync.Map{}, rc.db.NamingStrategy)
		if err != nil {
			return
		}
		for name := range s.FieldsByDBName {
			rc.cols[name] = true
		}
	})
	return rc.cols
}

func (rc *ResourceController[T]) invalidate() {
	if rc.opts.CachePrefix != "" {
		utils.InvalidateByPrefix(rc.opts.CachePrefix + ":")
	}
}

func parseID(ctx *gin.Context) (uint, bool) {
	raw := ctx.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}
