package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewBuildsBothEncodings(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		log, err := New(Config{Level: "info", Environment: env, ServiceName: "welfaredesk"})
		if err != nil {
			t.Fatalf("New(%s): %v", env, err)
		}
		_ = log.Sync()
	}
}

func TestMiddlewareLogsRequest(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(Middleware(zap.New(core)))
	r.GET("/things/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/things/7", nil))

	entries := logs.FilterMessage("HTTP Request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one request log, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["path"] != "/things/:id" {
		t.Fatalf("expected route template, got %v", ctx["path"])
	}
	if ctx["status"] != int64(http.StatusTeapot) {
		t.Fatalf("unexpected status %v", ctx["status"])
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("4xx should log at warn, got %v", entries[0].Level)
	}
}

func TestRecoveryWritesEnvelope(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if body := w.Body.String(); body != `{"success":false,"message":"Internal server error.","data":null}` {
		t.Fatalf("unexpected body %s", body)
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Fatalf("panic was not logged")
	}
}
