package kit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
}

func TestIPRateLimiter_SlidingWindow(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(2, time.Minute)
	l.now = func() time.Time { return now }
	h := l.Middleware(okHandler())

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/products", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := do("10.0.0.1"); code != http.StatusOK {
		t.Fatalf("status=%d", code)
	}
	if code := do("10.0.0.1"); code != http.StatusOK {
		t.Fatalf("status=%d", code)
	}
	if code := do("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("status=%d want=429", code)
	}
	if code := do("10.0.0.2"); code != http.StatusOK {
		t.Fatalf("other ip status=%d", code)
	}

	now = now.Add(61 * time.Second)
	if code := do("10.0.0.1"); code != http.StatusOK {
		t.Fatalf("after window status=%d", code)
	}

	now = now.Add(2 * time.Minute)
	l.Sweep()
	if n := len(l.hits); n != 0 {
		t.Fatalf("hits after sweep=%d", n)
	}
}

func TestIPRateLimiter_Disabled(t *testing.T) {
	h := NewIPRateLimiter(0, time.Minute).Middleware(okHandler())
	for range 5 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status=%d", rec.Code)
		}
	}
}

func TestClientIP_PrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.9:1234"
	req.Header.Set("X-Forwarded-For", " 203.0.113.7 , 10.0.0.1")

	if got := clientIP(req); got != "203.0.113.7" {
		t.Fatalf("ip=%q", got)
	}
}

func TestMetricsAuth(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{"no token configured", "", "Bearer x", http.StatusForbidden},
		{"missing header", "secret", "", http.StatusForbidden},
		{"wrong token", "secret", "Bearer nope", http.StatusForbidden},
		{"basic scheme", "secret", "Basic secret", http.StatusForbidden},
		{"ok", "secret", "Bearer secret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			MetricsAuth(tt.token)(okHandler()).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status=%d want=%d", rec.Code, tt.want)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Term string `json:"term"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"ok", `{"term":"wid"}`, false},
		{"unknown field", `{"term":"wid","x":1}`, true},
		{"trailing data", `{"term":"wid"}{}`, true},
		{"not json", `term=wid`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			err := DecodeJSON(httptest.NewRecorder(), req, &v)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestParseEnv(t *testing.T) {
	var cfg struct {
		Port int `env:"KIT_TEST_PORT" envDefault:"8082"`
	}

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 8082 {
		t.Fatalf("port=%d want=8082", cfg.Port)
	}

	t.Setenv("KIT_TEST_PORT", "not-a-port")
	err := ParseEnv(&cfg)
	if err == nil || !strings.HasPrefix(err.Error(), "parse env:") {
		t.Fatalf("err=%v", err)
	}
}
