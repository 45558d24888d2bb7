package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/anthera/powerleave/internal/config"
)

func cacheCtx(target, authorization string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/leaves/balance")
	return c
}

// Two users requesting the same route must never share a cache entry:
// the Authorization credential is part of the key under every strategy.
func TestCacheKeySeparatesCredentials(t *testing.T) {
	strategies := []string{"route", "method_route", "method_route_query", "route_query"}
	for _, strategy := range strategies {
		t.Run(strategy, func(t *testing.T) {
			cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: strategy}

			alice := cacheKeyFrom(cfg, cacheCtx("/v1/leaves/balance", "Bearer alice-token"))
			bob := cacheKeyFrom(cfg, cacheCtx("/v1/leaves/balance", "Bearer bob-token"))
			anon := cacheKeyFrom(cfg, cacheCtx("/v1/leaves/balance", ""))

			if alice == bob {
				t.Errorf("key(alice) == key(bob) = %s", alice)
			}
			if alice == anon || bob == anon {
				t.Errorf("authenticated key collides with anonymous key")
			}
		})
	}
}

func TestCacheKeyStableForSameCaller(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}

	first := cacheKeyFrom(cfg, cacheCtx("/v1/leaves/balance?year=2025", "Bearer alice-token"))
	second := cacheKeyFrom(cfg, cacheCtx("/v1/leaves/balance?year=2025", "Bearer alice-token"))
	if first != second {
		t.Errorf("same caller, same request: %s != %s", first, second)
	}

	other := cacheKeyFrom(cfg, cacheCtx("/v1/leaves/balance?year=2024", "Bearer alice-token"))
	if first == other {
		t.Errorf("different query must change the key")
	}
}
