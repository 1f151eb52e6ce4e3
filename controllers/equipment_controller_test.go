package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/agroconnect/agroconnect/models"
)

func TestMain(m *testing.M) {
	// Config is cached once per process; point uploads at a scratch dir
	// before any handler loads it.
	dir, err := os.MkdirTemp("", "agroconnect-uploads")
	if err != nil {
		panic(err)
	}
	os.Setenv("UPLOAD_DIR", dir)
	os.Setenv("UPLOAD_MAX_MB", "1")
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func newEquipmentRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newTestDB(t, &models.Equipment{})
	r := gin.New()
	NewEquipmentController(db).Register(r.Group("/api/equipment"))
	return r, db
}

func multipartRequest(t *testing.T, fields map[string]string, fileField, fileName string, fileBody []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(fileBody); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/equipment", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestEquipmentCreateWithoutImageUsesPlaceholder(t *testing.T) {
	r, db := newEquipmentRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, map[string]string{
		"name":       "Rotavator",
		"category":   "tillage",
		"daily_rate": "850",
		"location":   "Nashik",
	}, "", "", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}

	var got models.Equipment
	if err := db.First(&got, 1).Error; err != nil {
		t.Fatal(err)
	}
	if got.ImageURL != models.EquipmentPlaceholderImage {
		t.Fatalf("image_url=%q, want placeholder", got.ImageURL)
	}
	if got.DailyRate != 850 || got.Availability != "available" {
		t.Fatalf("daily_rate=%v availability=%q", got.DailyRate, got.Availability)
	}
}

func TestEquipmentCreateWithImage(t *testing.T) {
	r, db := newEquipmentRouter(t)

	// a PNG signature is enough for content sniffing
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, map[string]string{
		"name": "Seed Drill",
	}, "image", "drill.png", png))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}

	var got models.Equipment
	if err := db.First(&got, 1).Error; err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got.ImageURL, "/static/uploads/") || !strings.HasSuffix(got.ImageURL, ".png") {
		t.Fatalf("image_url=%q", got.ImageURL)
	}
	stored := filepath.Join(os.Getenv("UPLOAD_DIR"), filepath.Base(got.ImageURL))
	if _, err := os.Stat(stored); err != nil {
		t.Fatalf("stored file: %v", err)
	}
}

func TestEquipmentCreateRejectsNonImage(t *testing.T) {
	r, db := newEquipmentRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, map[string]string{
		"name": "Thresher",
	}, "image", "notes.txt", []byte("definitely not an image")))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("non-image upload: %d %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.Equipment{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no rows, got %d", count)
	}
}

func uploadDirEntries(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(os.Getenv("UPLOAD_DIR"))
	if err != nil {
		if os.IsNotExist(err) {
			return 0
		}
		t.Fatal(err)
	}
	return len(entries)
}

func TestEquipmentCreateRejectsOversizeImage(t *testing.T) {
	r, db := newEquipmentRouter(t)
	before := uploadDirEntries(t)

	// just past the 1MB limit configured for this test binary
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 1<<20+1024)...)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, map[string]string{
		"name": "Combine Harvester",
	}, "image", "big.png", png))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("oversize upload: %d %s", w.Code, w.Body.String())
	}

	if after := uploadDirEntries(t); after != before {
		t.Fatalf("upload dir grew from %d to %d entries", before, after)
	}
	var count int64
	db.Model(&models.Equipment{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no rows, got %d", count)
	}
}

func TestEquipmentCreateRemovesFileOnWriteFailure(t *testing.T) {
	r, db := newEquipmentRouter(t)
	// force the insert to fail after the file has been stored
	if err := db.Migrator().DropTable(&models.Equipment{}); err != nil {
		t.Fatal(err)
	}
	before := uploadDirEntries(t)

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, map[string]string{
		"name": "Baler",
	}, "image", "baler.png", png))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("create on dropped table: %d %s", w.Code, w.Body.String())
	}

	if after := uploadDirEntries(t); after != before {
		t.Fatalf("stored file not removed: %d entries before, %d after", before, after)
	}
}

func TestEquipmentCreateRequiresName(t *testing.T) {
	r, _ := newEquipmentRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, map[string]string{"category": "tillage"}, "", "", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing name: %d %s", w.Code, w.Body.String())
	}
}

func TestEquipmentJSONCreateFallsThrough(t *testing.T) {
	r, db := newEquipmentRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/equipment",
		strings.NewReader(`{"name":"Power Tiller","daily_rate":600}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("json create: %d %s", w.Code, w.Body.String())
	}

	var body models.Equipment
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	var got models.Equipment
	if err := db.First(&got, body.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Name != "Power Tiller" {
		t.Fatalf("name=%q", got.Name)
	}
}
