package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestAuthMiddleware(t *testing.T) {
	secret := []byte("test-secret")
	e := echo.New()
	handler := AuthMiddleware(secret)(func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get("user_id").(string))
	})

	call := func(authorization string) (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		rec := httptest.NewRecorder()
		return rec, handler(e.NewContext(req, rec))
	}

	t.Run("missing token", func(t *testing.T) {
		_, err := call("")
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %v", err)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := call("Bearer not-a-token")
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %v", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok, err := SignToken("user-1", []byte("other-secret"), time.Minute)
		if err != nil {
			t.Fatalf("signing: %v", err)
		}
		_, err = call("Bearer " + tok)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %v", err)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		tok, err := SignToken("user-1", secret, time.Minute)
		if err != nil {
			t.Fatalf("signing: %v", err)
		}
		rec, err := call("Bearer " + tok)
		if err != nil {
			t.Fatalf("handler: %v", err)
		}
		if rec.Body.String() != "user-1" {
			t.Errorf("subject = %q, want user-1", rec.Body.String())
		}
	})

	t.Run("expired token", func(t *testing.T) {
		tok, err := SignToken("user-1", secret, -time.Minute)
		if err != nil {
			t.Fatalf("signing: %v", err)
		}
		_, err = call("Bearer " + tok)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %v", err)
		}
	})
}
