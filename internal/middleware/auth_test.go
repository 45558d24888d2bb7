package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/anthera/powerleave/internal/utils"
)

func runWith(mw echo.MiddlewareFunc, prepare func(echo.Context)) (*httptest.ResponseRecorder, bool) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if prepare != nil {
		prepare(c)
	}
	reached := false
	handler := mw(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)
	return rec, reached
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name    string
		role    interface{}
		allowed []string
		pass    bool
	}{
		{"admin on admin route", "admin", []string{"admin"}, true},
		{"user on admin route", "user", []string{"admin"}, false},
		{"user on shared route", "user", []string{"user", "admin"}, true},
		{"missing role", nil, []string{"admin"}, false},
		{"non-string role", 42, []string{"admin"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, reached := runWith(RequireRole(tc.allowed...), func(c echo.Context) {
				if tc.role != nil {
					c.Set("role", tc.role)
				}
			})
			if reached != tc.pass {
				t.Errorf("handler reached = %v, want %v", reached, tc.pass)
			}
			if !tc.pass && rec.Code != http.StatusForbidden {
				t.Errorf("status = %d, want 403", rec.Code)
			}
		})
	}
}

func TestJWTAuthInjectsClaims(t *testing.T) {
	const secret = "test-secret"
	tok, err := utils.NewAccessToken(secret, 5, "admin", 15)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := JWTAuth(secret)(func(c echo.Context) error {
		if uid, ok := c.Get("user_id").(float64); !ok || uid != 5 {
			t.Errorf("user_id = %v", c.Get("user_id"))
		}
		if role, ok := c.Get("role").(string); !ok || role != "admin" {
			t.Errorf("role = %v", c.Get("role"))
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s), want 200", rec.Code, rec.Body.String())
	}
}

func TestJWTAuthRejects(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := JWTAuth("test-secret")(func(c echo.Context) error {
				t.Fatal("handler must not run")
				return nil
			})
			if err := handler(c); err != nil {
				t.Fatalf("middleware: %v", err)
			}
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("secret-a", 5, "user", 15)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := JWTAuth("secret-b")(func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
