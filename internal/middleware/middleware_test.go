package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/ramgerassy/ace-ai-sub001/internal/config"
	"github.com/rs/zerolog"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMemoryLimiterRefillsPerInterval(t *testing.T) {
	rl := NewMemoryLimiter(2, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if ok, _ := rl.Allow(ctx, "1.1.1.1"); !ok {
			t.Fatalf("request %d rejected", i+1)
		}
	}
	if ok, _ := rl.Allow(ctx, "1.1.1.1"); ok {
		t.Fatal("third request within the window should be rejected")
	}
	if ok, _ := rl.Allow(ctx, "2.2.2.2"); !ok {
		t.Fatal("other clients have their own bucket")
	}

	now = now.Add(time.Minute)
	if ok, _ := rl.Allow(ctx, "1.1.1.1"); !ok {
		t.Fatal("bucket should refill after one interval")
	}
}

func TestMemoryLimiterSweepsIdleVisitors(t *testing.T) {
	rl := NewMemoryLimiter(1, time.Second)
	now := time.Now()
	rl.now = func() time.Time { return now }

	_, _ = rl.Allow(context.Background(), "a")
	now = now.Add(5 * time.Second)
	_, _ = rl.Allow(context.Background(), "b")

	if _, ok := rl.visitors["a"]; ok {
		t.Error("idle visitor should be swept")
	}
}

type stubLimiter struct {
	ok  bool
	err error
}

func (s stubLimiter) Allow(context.Context, string) (bool, error) { return s.ok, s.err }

func limitedRouter(l Limiter) *gin.Engine {
	r := gin.New()
	r.Use(RateLimit("test", l, config.RateLimit{Requests: 1, Window: time.Minute}, zerolog.Nop()))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestRateLimitRejectsWithEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	limitedRouter(stubLimiter{ok: false}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", w.Header().Get("Retry-After"))
	}
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Success || body.Error.Code != "RATE_LIMIT_EXCEEDED" {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	w := httptest.NewRecorder()
	limitedRouter(stubLimiter{err: errors.New("redis down")}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestNewLimiterWithoutRedisIsInMemory(t *testing.T) {
	if _, ok := NewLimiter(nil, "global", config.RateLimit{Requests: 1, Window: time.Second}).(*MemoryLimiter); !ok {
		t.Error("expected MemoryLimiter")
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	for k, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
	} {
		if got := w.Header().Get(k); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}
}

func brotliRouter(payload string) *gin.Engine {
	r := gin.New()
	r.Use(Brotli())
	r.GET("/", func(c *gin.Context) { c.JSON(http.StatusCreated, gin.H{"data": payload}) })
	return r
}

func TestBrotliCompressesLargeBodies(t *testing.T) {
	payload := strings.Repeat("quiz ", 500)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip, br")

	w := httptest.NewRecorder()
	brotliRouter(payload).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d", w.Code)
	}
	if w.Header().Get("Content-Encoding") != "br" {
		t.Fatalf("Content-Encoding = %q", w.Header().Get("Content-Encoding"))
	}
	raw, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), payload) {
		t.Error("decompressed body does not match")
	}
}

func TestBrotliSkipsSmallBodiesAndOtherClients(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "br")
	w := httptest.NewRecorder()
	brotliRouter("tiny").ServeHTTP(w, req)
	if w.Header().Get("Content-Encoding") != "" || !strings.Contains(w.Body.String(), "tiny") {
		t.Errorf("small body should pass through: %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	brotliRouter(strings.Repeat("x", 4096)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("Content-Encoding") != "" {
		t.Error("clients without br must get identity encoding")
	}
}

func TestAcceptsBrotli(t *testing.T) {
	cases := map[string]bool{
		"":                   false,
		"gzip":               false,
		"br":                 true,
		"gzip, br;q=0.9":     true,
		"br;q=0":             false,
		"deflate, BR , gzip": true,
	}
	for header, want := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Accept-Encoding", header)
		if got := acceptsBrotli(r); got != want {
			t.Errorf("acceptsBrotli(%q) = %v, want %v", header, got, want)
		}
	}
}
