package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pillarlog/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRouterTestDB(t *testing.T) func() {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(
		&db.Pillar{},
		&db.Category{},
		&db.Trackable{},
		&db.TrackingConfig{},
		&db.ProgressFact{},
		&db.SystemSetting{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb

	return func() {
		sqlDB, err := db.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func TestSetupServesPing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cleanup := setupRouterTestDB(t)
	defer cleanup()

	r := Setup("test-secret")

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestSetupAssignsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cleanup := setupRouterTestDB(t)
	defer cleanup()

	r := Setup("test-secret")

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}

	// 客户端自带的请求 ID 应原样透传
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "client-supplied")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Request-ID"); got != "client-supplied" {
		t.Fatalf("expected client request id to pass through, got %q", got)
	}
}

func TestSetupRoutesExist(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cleanup := setupRouterTestDB(t)
	defer cleanup()

	r := Setup("test-secret")

	// 未知实体返回 404 而不是路由缺失
	req := httptest.NewRequest(http.MethodGet, "/api/trackables/999", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing trackable, got %d", rr.Code)
	}
}
