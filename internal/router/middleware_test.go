package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	if w2.Header().Get(requestIDHeader) == "" {
		t.Fatalf("generated request id should not be empty")
	}
}

func TestIsAllowedAgentStatus(t *testing.T) {
	cases := map[string]bool{
		"active":   true,
		"pending":  true,
		"blocked":  false,
		"rejected": false,
		"":         false,
	}
	for status, want := range cases {
		if got := isAllowedAgentStatus(status); got != want {
			t.Fatalf("status %q want %v got %v", status, want, got)
		}
	}
}

func TestReadJSONField(t *testing.T) {
	gin.SetMode(gin.TestMode)

	body := `{"phone": " 9876543210 ", "password": "secret"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	if got := readJSONField(c, "phone"); got != "9876543210" {
		t.Fatalf("phone want 9876543210 got %q", got)
	}

	// body 读取后必须可重放
	var payload map[string]string
	if err := json.NewDecoder(c.Request.Body).Decode(&payload); err != nil {
		t.Fatalf("body should be replayable: %v", err)
	}
	if payload["password"] != "secret" {
		t.Fatalf("replayed body missing fields: %v", payload)
	}

	// 非 JSON body 不报错
	req2 := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("not-json"))
	c2, _ := gin.CreateTestContext(httptest.NewRecorder())
	c2.Request = req2
	if got := readJSONField(c2, "phone"); got != "" {
		t.Fatalf("non-json body want empty got %q", got)
	}
}

func TestKeyByIPAndJSONField(t *testing.T) {
	gin.SetMode(gin.TestMode)

	keyFn := KeyByIPAndJSONField("phone")

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"phone":"9876543210"}`))
	req.RemoteAddr = "10.0.0.7:1234"
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	if got := keyFn(c); got != "9876543210|10.0.0.7" {
		t.Fatalf("key want 9876543210|10.0.0.7 got %q", got)
	}

	// 字段缺失时退回 IP
	req2 := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{}`))
	req2.RemoteAddr = "10.0.0.7:1234"
	c2, _ := gin.CreateTestContext(httptest.NewRecorder())
	c2.Request = req2
	if got := keyFn(c2); got != "10.0.0.7" {
		t.Fatalf("fallback key want 10.0.0.7 got %q", got)
	}
}

func TestToInt64(t *testing.T) {
	if v, ok := toInt64(int64(5)); !ok || v != 5 {
		t.Fatalf("int64 conversion failed: %v %v", v, ok)
	}
	if v, ok := toInt64(float64(7)); !ok || v != 7 {
		t.Fatalf("float64 conversion failed: %v %v", v, ok)
	}
	if _, ok := toInt64("5"); ok {
		t.Fatalf("string should not convert")
	}
}
