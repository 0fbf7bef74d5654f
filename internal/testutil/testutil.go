// Package testutil wires an in-memory SQLite database and the real fiber app
// for handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pyme-backend/internal/auth"
	"pyme-backend/internal/config"
	"pyme-backend/internal/database"
	"pyme-backend/internal/models"
	"pyme-backend/internal/server"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const Password = "secreto123"

func Config() *config.Config {
	return &config.Config{
		HTTPPort:          "0",
		JWTSecret:         "test-secret-0123456789abcdef0123456789",
		CORSOrigins:       "http://localhost:3000",
		Environment:       "test",
		LogLevel:          "error",
		DefaultMinStock:   5,
		DefaultMaxStock:   100,
		AuthRatePerSecond: 1000,
		AuthRateBurst:     1000,
	}
}

// SetupDB points database.DB at a fresh in-memory database named after the
// test and migrates every table.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Env is a migrated database, the app and one signed in user.
type Env struct {
	T     *testing.T
	Cfg   *config.Config
	App   *fiber.App
	DB    *gorm.DB
	User  models.User
	Token string
}

func New(t *testing.T) *Env {
	t.Helper()

	cfg := Config()
	db := SetupDB(t)
	app := server.New(cfg, auth.NewRateLimiter(cfg.AuthRatePerSecond, cfg.AuthRateBurst))

	env := &Env{T: t, Cfg: cfg, App: app, DB: db}
	env.User, env.Token = env.CreateUser("duena@example.com")
	return env
}

// CreateUser inserts a user directly and returns it with a valid token.
func (e *Env) CreateUser(email string) (models.User, string) {
	e.T.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		e.T.Fatalf("hash: %v", err)
	}
	u := models.User{Email: email, PasswordHash: string(hash)}
	if err := e.DB.Create(&u).Error; err != nil {
		e.T.Fatalf("create user: %v", err)
	}
	token, err := auth.GenerateToken(e.Cfg.JWTSecret, &u)
	if err != nil {
		e.T.Fatalf("token: %v", err)
	}
	return u, token
}

// Do sends a JSON request as the user owning token. An empty token sends no
// Authorization header.
func (e *Env) Do(method, path, token string, body any) *http.Response {
	e.T.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			e.T.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.App.Test(req, -1)
	if err != nil {
		e.T.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// Call is Do with the default user's token.
func (e *Env) Call(method, path string, body any) *http.Response {
	e.T.Helper()
	return e.Do(method, path, e.Token, body)
}

// Decode reads a JSON response into v and closes the body.
func Decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response (status %d): %v", resp.StatusCode, err)
	}
}
