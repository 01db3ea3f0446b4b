package logger

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMiddleware_GeneratesAndEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil))

	r := gin.New()
	r.Use(Middleware(l))
	r.GET("/ping", func(c *gin.Context) {
		if FromGin(c) == slog.Default() {
			t.Errorf("expected request-scoped logger on context")
		}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected generated request id echoed back")
	}
	if !strings.Contains(buf.String(), `"request_id"`) {
		t.Fatalf("expected request_id in log line, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), `"path":"/ping"`) {
		t.Fatalf("expected path in log line, got %q", buf.String())
	}
}

func TestMiddleware_KeepsCallerRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))

	r := gin.New()
	r.Use(Middleware(l))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "rid-42")
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-Id"); got != "rid-42" {
		t.Fatalf("expected caller request id kept, got %q", got)
	}
}

func TestFromGin_FallsBackToDefault(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if FromGin(c) != slog.Default() {
		t.Fatalf("expected default logger outside middleware")
	}
}
