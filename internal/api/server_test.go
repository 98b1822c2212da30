package api

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipebox-server/internal/ratelimit"
	"github.com/recipebox/recipebox-server/internal/sse"
)

func TestServer_UnknownRouteIsJSON404(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/nope")
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, msgNotFound, decodeError(t, resp.Body.Bytes()))
}

func TestServer_MethodNotAllowed(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Put("/api/recipes", newRecipeBody("Nope"))
	require.Equal(t, http.StatusMethodNotAllowed, resp.Code)
	assert.Equal(t, msgMethodNotAllowed, decodeError(t, resp.Body.Bytes()))
}

func TestServer_RateLimit(t *testing.T) {
	limiter := ratelimit.New(1, 2)
	t.Cleanup(limiter.Stop)

	ts := setupTestServer(t, withOptions(func(o *Options) { o.RateLimiter = limiter }))

	for range 2 {
		resp := ts.api.Get("/api/recipes")
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := ts.api.Get("/api/recipes")
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, msgTooManyRequests, decodeError(t, resp.Body.Bytes()))
	assert.Equal(t, "1", resp.Header().Get("Retry-After"))

	// Other clients have their own bucket.
	resp = ts.api.Get("/api/recipes", "X-Real-IP: 203.0.113.9")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestServer_RateLimitSkipsHealthAndMetrics(t *testing.T) {
	limiter := ratelimit.New(1, 2)
	t.Cleanup(limiter.Stop)

	ts := setupTestServer(t, withOptions(func(o *Options) { o.RateLimiter = limiter }))

	for range 2 {
		ts.api.Get("/api/recipes")
	}
	require.Equal(t, http.StatusTooManyRequests, ts.api.Get("/api/recipes").Code)

	for range 4 {
		resp := ts.api.Get("/api/health")
		require.Equal(t, http.StatusOK, resp.Code)

		var health HealthResponse
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &health))
		assert.Equal(t, "healthy", health.Status)

		assert.Equal(t, http.StatusOK, ts.api.Get("/metrics").Code)
	}
}

func TestServer_Metrics(t *testing.T) {
	ts := setupTestServer(t)

	ts.createRecipe(t, newRecipeBody("Counted"))
	ts.api.Get("/api/recipes/999")

	resp := ts.api.Get("/metrics")
	require.Equal(t, http.StatusOK, resp.Code)

	body := resp.Body.String()
	assert.Contains(t, body, "recipebox_recipes_created_total 1")
	assert.Contains(t, body, `recipebox_http_requests_total{method="GET",route="/api/recipes/{id}",status="404"} 1`)
	assert.Contains(t, body, `recipebox_http_requests_total{method="POST",route="/api/recipes",status="201"} 1`)
}

func TestServer_CORSPreflight(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/recipes", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	ts.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_CORSRestrictedOrigins(t *testing.T) {
	ts := setupTestServer(t, withOptions(func(o *Options) {
		o.AllowedOrigins = []string{"https://recipes.example.com"}
	}))

	allowed := ts.api.Get("/api/health", "Origin: https://recipes.example.com")
	assert.Equal(t, "https://recipes.example.com", allowed.Header().Get("Access-Control-Allow-Origin"))

	denied := ts.api.Get("/api/health", "Origin: https://evil.example.com")
	assert.Empty(t, denied.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_OpenAPI(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/openapi.json")
	require.Equal(t, http.StatusOK, resp.Code)

	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
	assert.Contains(t, doc.Paths, "/api/recipes")
	assert.Contains(t, doc.Paths, "/api/recipes/{id}")
	assert.Contains(t, doc.Paths, "/api/health")
}

func TestServer_RecipeEvents(t *testing.T) {
	ts := setupTestServer(t)

	srv := httptest.NewServer(ts)
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/api/recipes/events")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	eventType, _ := readSSEEvent(t, reader)
	require.Equal(t, "connected", eventType)

	created, err := http.Post(srv.URL+"/api/recipes", "application/json",
		strings.NewReader(`{"name":"Live","ingredients":"a","instructions":"b","cookTime":"c"}`))
	require.NoError(t, err)
	_ = created.Body.Close()
	require.Equal(t, http.StatusCreated, created.StatusCode)

	eventType, data := readSSEEvent(t, reader)
	require.Equal(t, string(sse.EventRecipeCreated), eventType)

	var event struct {
		Type string `json:"type"`
		Data struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &event))
	assert.Equal(t, "Live", event.Data.Name)
}

// readSSEEvent reads one "event:/data:" frame, skipping heartbeats.
func readSSEEvent(t *testing.T, r *bufio.Reader) (eventType, data string) {
	t.Helper()

	type frame struct{ eventType, data string }
	done := make(chan frame, 1)
	errc := make(chan error, 1)

	go func() {
		var f frame
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				errc <- err
				return
			}
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				f.eventType = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				f.data = strings.TrimPrefix(line, "data: ")
			case line == "" && f.eventType != "":
				if f.eventType == string(sse.EventHeartbeat) {
					f = frame{}
					continue
				}
				done <- f
				return
			}
		}
	}()

	select {
	case f := <-done:
		return f.eventType, f.data
	case err := <-errc:
		t.Fatalf("read event: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return "", ""
}
