package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Eman21-ctr/milk-management-app/internal/dairy/entity"
	"github.com/Eman21-ctr/milk-management-app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	JWTSecret   = "flowmilk-test-secret"
	TestUserID  = "test-user-001"
	TestUserKey = "admin@test.com"
)

// TestEnv holds test environment resources
type TestEnv struct {
	DB     *gorm.DB
	Router *gin.Engine
	T      *testing.T
}

// SetupTestDB creates an isolated SQLite database file per test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), fmt.Sprintf("flowmilk_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(entity.AllModels()...); err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group with JWT auth middleware for testing
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret, nil))
}

// GenerateTestToken creates a valid JWT token for testing
func GenerateTestToken(userID, name, email string) string {
	now := time.Now()
	claims := &middleware.JWTClaims{
		UserID: userID,
		Name:   name,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        fmt.Sprintf("test-jti-%d", now.UnixNano()),
			Subject:   userID,
			Issuer:    "flowmilk",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// DefaultTestToken returns a token for the default test user
func DefaultTestToken() string {
	return GenerateTestToken(TestUserID, "Test Admin", TestUserKey)
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a handler.Response-like map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// Data returns the "data" object of an envelope response
func Data(w *httptest.ResponseRecorder) map[string]interface{} {
	resp := ParseResponse(w)
	data, _ := resp["data"].(map[string]interface{})
	return data
}

// SeedKitchen creates an SPPG kitchen
func SeedKitchen(t *testing.T, db *gorm.DB, id, name string) *entity.Kitchen {
	t.Helper()
	k := &entity.Kitchen{
		ID:            id,
		Name:          name,
		District:      "Kota Kupang",
		Address:       "Jl. Timor Raya",
		ContactPerson: "PJ " + name,
	}
	if err := db.Create(k).Error; err != nil {
		t.Fatalf("Failed to seed kitchen: %v", err)
	}
	return k
}

// SeedCoordinator creates a coordinator with the given stock
func SeedCoordinator(t *testing.T, db *gorm.DB, id, name string, stock int) *entity.Coordinator {
	t.Helper()
	c := &entity.Coordinator{
		ID:     id,
		Name:   name,
		Region: "Kupang Tengah",
		Stock:  stock,
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("Failed to seed coordinator: %v", err)
	}
	return c
}

// LinkKitchens records which kitchens a coordinator serves
func LinkKitchens(t *testing.T, db *gorm.DB, coordinatorID string, sppgIDs ...string) {
	t.Helper()
	for _, id := range sppgIDs {
		if err := db.Create(&entity.CoordinatorSPPG{CoordinatorID: coordinatorID, SPPGID: id}).Error; err != nil {
			t.Fatalf("Failed to link kitchen %s: %v", id, err)
		}
	}
}

// Reload reads a row back by primary key
func Reload(t *testing.T, db *gorm.DB, dst interface{}, id string) {
	t.Helper()
	if err := db.Where("id = ?", id).First(dst).Error; err != nil {
		t.Fatalf("Failed to reload %T %s: %v", dst, id, err)
	}
}
