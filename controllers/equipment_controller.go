package controllers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agroconnect/agroconnect/config"
	"github.com/agroconnect/agroconnect/middleware"
	"github.com/agroconnect/agroconnect/models"
	"github.com/agroconnect/agroconnect/utils"
)

// EquipmentController extends the generic resource verbs with a multipart
// create that accepts an optional listing photo.
type EquipmentController struct {
	*ResourceController[models.Equipment]
	db *gorm.DB
}

// NewEquipmentController builds the equipment controller.
func NewEquipmentController(db *gorm.DB) *EquipmentController {
	return &EquipmentController{
		ResourceController: NewResourceController[models.Equipment](db, ResourceOptions{
			Name:          "equipment",
			Filters:       map[string]string{"category": "category", "location": "location", "availability": "availability"},
			SearchColumns: []string{"name", "description", "location"},
			CachePrefix:   "cache:equipment",
		}),
		db: db,
	}
}

// Register wires the equipment routes, replacing the generic create with the
// multipart-aware one.
func (e *EquipmentController) Register(g *gin.RouterGroup) {
	g.GET("", e.List)
	g.GET("/search", e.Search)
	g.GET("/:id", e.Get)
	g.POST("", e.CreateWithImage)
	g.PATCH("/:id", e.Update)
	g.PUT("/:id", e.Update)
	g.DELETE("/:id", e.Delete)
}

// CreateWithImage inserts an equipment listing from multipart form data. The
// image file is optional: absent, the stored image_url is the placeholder
// path. When the datastore rejects the insert the stored file is removed.
func (e *EquipmentController) CreateWithImage(ctx *gin.Context) {
	if !strings.HasPrefix(ctx.ContentType(), "multipart/") {
		// Plain JSON creates go through the generic path.
		e.ResourceController.Create(ctx)
		return
	}

	name := strings.TrimSpace(ctx.PostForm("name"))
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, "name is required")
		return
	}
	dailyRate, _ := strconv.ParseFloat(ctx.PostForm("daily_rate"), 64)

	record := models.Equipment{
		Name:         name,
		Category:     ctx.PostForm("category"),
		Description:  utils.Sanitize(ctx.PostForm("description")),
		DailyRate:    dailyRate,
		Location:     ctx.PostForm("location"),
		OwnerID:      middleware.FarmerID(ctx),
		OwnerName:    ctx.PostForm("owner_name"),
		OwnerPhone:   ctx.PostForm("owner_phone"),
		Availability: defaultString(ctx.PostForm("availability"), "available"),
		ImageURL:     models.EquipmentPlaceholderImage,
	}

	storedPath := ""
	if file, header, err := ctx.Request.FormFile("image"); err == nil {
		defer file.Close()
		url, path, err := saveUploadedImage(file, header.Filename, header.Size)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, err.Error())
			return
		}
		record.ImageURL = url
		storedPath = path
	}

	if err := e.db.Create(&record).Error; err != nil {
		if storedPath != "" {
			_ = os.Remove(storedPath)
		}
		utils.Upstream(ctx, err, "failed to create equipment")
		return
	}
	utils.InvalidateByPrefix("cache:equipment:")
	utils.Created(ctx, record)
}

// saveUploadedImage stores an uploaded file under the configured uploads dir
// and returns its public URL plus the filesystem path. Only image content is
// accepted; the MIME type is sniffed, not trusted from the header.
func saveUploadedImage(file io.Reader, filename string, size int64) (string, string, error) {
	cfg := config.Get()
	maxSize := int64(cfg.UploadMaxMB) * 1024 * 1024
	if size > 0 && size > maxSize {
		return "", "", fmt.Errorf("image exceeds %dMB limit", cfg.UploadMaxMB)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if !strings.HasPrefix(http.DetectContentType(head), "image/") {
		return "", "", fmt.Errorf("only image uploads are accepted")
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create upload directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	storedName := uuid.NewString() + ext
	dstPath := filepath.Join(cfg.UploadDir, storedName)

	out, err := os.Create(dstPath)
	if err != nil {
		return "", "", fmt.Errorf("save upload: %w", err)
	}
	defer out.Close()

	if _, err := out.Write(head); err != nil {
		_ = os.Remove(dstPath)
		return "", "", fmt.Errorf("write upload: %w", err)
	}
	lr := &io.LimitedReader{R: file, N: maxSize - int64(len(head)) + 1}
	written, err := io.Copy(out, lr)
	if err != nil {
		_ = os.Remove(dstPath)
		return "", "", fmt.Errorf("write upload: %w", err)
	}
	if int64(len(head))+written > maxSize {
		_ = os.Remove(dstPath)
		return "", "", fmt.Errorf("image exceeds %dMB limit", cfg.UploadMaxMB)
	}

	return "/static/uploads/" + storedName, dstPath, nil
}
