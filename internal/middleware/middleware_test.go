package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/foodgram/internal/config"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/logging"
	"github.com/ahmetcoskunkizilkaya/foodgram/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
)

var testCfg = &config.Config{JWTSecret: "test-secret"}

func token(t *testing.T, sub, role string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testCfg.JWTSecret))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

// recipe 1 belongs to user 7; anything else is missing.
func ownerOf(_ context.Context, id uint) (uint, error) {
	if id == 1 {
		return 7, nil
	}
	return 0, services.ErrRecipeNotFound
}

func newApp() *fiber.App {
	app := fiber.New()
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) }
	app.Get("/open", JWTOptional(testCfg), AuthenticatedOrReadOnly(), ok)
	app.Post("/open", JWTOptional(testCfg), AuthenticatedOrReadOnly(), ok)
	app.Get("/recipes/:id", JWTOptional(testCfg), OwnerOrReadOnly("id", ownerOf), ok)
	app.Patch("/recipes/:id", JWTOptional(testCfg), OwnerOrReadOnly("id", ownerOf), ok)
	app.Get("/private", JWTProtected(testCfg), ok)
	return app
}

func TestGates(t *testing.T) {
	app := newApp()
	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"anonymous read", "GET", "/open", "", 204},
		{"anonymous write", "POST", "/open", "", 401},
		{"authenticated write", "POST", "/open", token(t, "3", "user"), 204},
		{"garbage token", "GET", "/open", "not-a-jwt", 401},
		{"anonymous recipe read", "GET", "/recipes/1", "", 204},
		{"owner edits", "PATCH", "/recipes/1", token(t, "7", "user"), 204},
		{"stranger edits", "PATCH", "/recipes/1", token(t, "8", "user"), 403},
		{"moderator edits", "PATCH", "/recipes/1", token(t, "8", "moderator"), 403},
		{"admin edits", "PATCH", "/recipes/1", token(t, "8", "admin"), 204},
		{"anonymous edits", "PATCH", "/recipes/1", "", 401},
		{"missing recipe", "PATCH", "/recipes/2", token(t, "7", "user"), 404},
		{"private without token", "GET", "/private", "", 401},
		{"private with token", "GET", "/private", token(t, "3", "user"), 204},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestLogContextCarriesRequestAndUser(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewMultiHandler(slog.NewTextHandler(&buf, nil)))

	app := fiber.New()
	app.Use(requestid.New(), RequestLogContext())
	app.Get("/private", JWTProtected(testCfg), func(c *fiber.Ctx) error {
		logger.InfoContext(c.UserContext(), "handled")
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "/private", nil)
	req.Header.Set(fiber.HeaderXRequestID, "rid-42")
	req.Header.Set("Authorization", "Bearer "+token(t, "3", "user"))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	line := buf.String()
	if !strings.Contains(line, "request_id=rid-42") || !strings.Contains(line, "user_id=3") {
		t.Errorf("log line = %q", line)
	}
}

func TestOwnerGateErrorBodies(t *testing.T) {
	app := newApp()
	tests := []struct {
		path  string
		token string
		want  string
	}{
		{"/recipes/abc", token(t, "7", "user"), `"code":"not_found"`},
		{"/recipes/2", token(t, "7", "user"), `"code":"recipe_not_found"`},
		{"/recipes/1", token(t, "8", "user"), `"code":"not_owner"`},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("PATCH", tt.path, nil)
		req.Header.Set("Authorization", "Bearer "+tt.token)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if !strings.Contains(string(body), tt.want) || !strings.Contains(string(body), `"error":true`) {
			t.Errorf("PATCH %s body = %s, want %s", tt.path, body, tt.want)
		}
	}
}
