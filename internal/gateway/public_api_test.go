package gateway_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"MiniCatalog/internal/browse"
	"MiniCatalog/internal/catalog"
	"MiniCatalog/internal/debounce/debouncetest"
	"MiniCatalog/internal/device"
	"MiniCatalog/internal/gateway"
	"MiniCatalog/internal/prefs"
)

const (
	deviceSecret = "0123456789abcdef0123456789abcdef"
	metricsToken = "scrape-me"
)

type env struct {
	ts    *httptest.Server
	clock *debouncetest.Manual
}

func newGatewayTS(t *testing.T, ready gateway.Pinger) *env {
	t.Helper()

	log := zap.NewNop()
	reg := prometheus.NewRegistry()
	clock := debouncetest.New()

	store := catalog.NewStore(catalog.WithSeed(catalog.DefaultSeed()...))
	p := prefs.NewMemStore()

	h := gateway.NewHandler(
		gateway.Deps{
			Catalog: &catalog.Server{
				Store:   store,
				Log:     log,
				Metrics: catalog.NewMetrics(reg),
			},
			Browse: &browse.Server{
				Catalog: store,
				Prefs:   p,
				Sessions: browse.NewManager(500*time.Millisecond, time.Hour,
					browse.WithScheduler(clock.Schedule),
					browse.WithMetrics(browse.NewMetrics(reg)),
				),
				Devices: device.NewTokenMaker(deviceSecret),
				Log:     log,
			},
			Ready: ready,
		},
		gateway.HTTPDeps{
			Log:            log,
			Service:        "catalog",
			Registry:       reg,
			MetricsEnabled: true,
			MetricsToken:   metricsToken,
		},
	)

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return &env{ts: ts, clock: clock}
}

func doJSON(t *testing.T, c *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func TestGateway_PublicAPI_HappyPath(t *testing.T) {
	e := newGatewayTS(t, nil)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	c := &http.Client{Jar: jar}

	var created catalog.Product
	{
		resp, raw := doJSON(t, c, http.MethodPost, e.ts.URL+"/products", map[string]any{
			"name":     "Widget",
			"price":    5,
			"category": "Tools",
			"stock":    2,
		}, nil)

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create status=%d body=%s", resp.StatusCode, string(raw))
		}
		if err := json.Unmarshal(raw, &created); err != nil {
			t.Fatalf("decode product: %v body=%s", err, string(raw))
		}
		if created.ID != len(catalog.DefaultSeed())+1 {
			t.Fatalf("id=%d", created.ID)
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodPost, e.ts.URL+"/browse/search", map[string]any{"term": "wid"}, nil)
		if resp.StatusCode != http.StatusAccepted {
			t.Fatalf("search status=%d body=%s", resp.StatusCode, string(raw))
		}
	}

	e.clock.Advance(500 * time.Millisecond)

	{
		resp, raw := doJSON(t, c, http.MethodGet, e.ts.URL+"/browse", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("browse status=%d body=%s", resp.StatusCode, string(raw))
		}

		var scr browse.Screen
		if err := json.Unmarshal(raw, &scr); err != nil {
			t.Fatalf("decode screen: %v body=%s", err, string(raw))
		}
		if scr.Term != "wid" || scr.Page != 1 {
			t.Fatalf("term=%q page=%d", scr.Term, scr.Page)
		}
		if len(scr.Result.Items) != 1 || scr.Result.Items[0].ID != created.ID {
			t.Fatalf("items=%+v", scr.Result.Items)
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, e.ts.URL+"/metrics", nil, map[string]string{
			"Authorization": "Bearer " + metricsToken,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("metrics status=%d", resp.StatusCode)
		}
		for _, name := range []string{"http_requests_total", "catalog_products", "browse_search_applied_total"} {
			if !strings.Contains(string(raw), name) {
				t.Fatalf("metrics missing %s", name)
			}
		}
	}
}

func TestGateway_UnknownRouteIsNotFound(t *testing.T) {
	e := newGatewayTS(t, nil)

	resp, raw := doJSON(t, &http.Client{}, http.MethodGet, e.ts.URL+"/nowhere", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status=%d", resp.StatusCode)
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode: %v body=%s", err, string(raw))
	}
	if body.Error != "not found" {
		t.Fatalf("error=%q", body.Error)
	}
}

func TestGateway_MetricsRequiresToken(t *testing.T) {
	e := newGatewayTS(t, nil)

	resp, _ := doJSON(t, &http.Client{}, http.MethodGet, e.ts.URL+"/metrics", nil, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestGateway_Readyz(t *testing.T) {
	ok := newGatewayTS(t, pingFunc(func(context.Context) error { return nil }))
	resp, _ := doJSON(t, &http.Client{}, http.MethodGet, ok.ts.URL+"/readyz", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ready status=%d", resp.StatusCode)
	}

	down := newGatewayTS(t, pingFunc(func(context.Context) error { return errors.New("db gone") }))
	resp, _ = doJSON(t, &http.Client{}, http.MethodGet, down.ts.URL+"/readyz", nil, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("down status=%d", resp.StatusCode)
	}

	resp, _ = doJSON(t, &http.Client{}, http.MethodGet, down.ts.URL+"/healthz", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status=%d", resp.StatusCode)
	}
}
