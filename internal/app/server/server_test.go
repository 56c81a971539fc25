package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sifan077/LinkMe/config"
	"github.com/sifan077/LinkMe/internal/app/model"
	"github.com/sifan077/LinkMe/internal/app/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	service.AuthService
}

func (fakeAuth) CurrentUser(_ context.Context, token string) (*model.PublicUser, error) {
	if token == "good" {
		return &model.PublicUser{ID: "u1", Username: "alice"}, nil
	}
	return nil, nil
}

func (fakeAuth) VerifySession(_ context.Context, token string) (bool, error) {
	return token == "good", nil
}

type fakeLinks struct {
	service.LinkService
}

func (fakeLinks) ListUserLinks(context.Context, string) ([]model.Link, error) {
	return []model.Link{}, nil
}

func newTestServer() *Server {
	return New(Dependencies{
		HTTP:  config.HTTPConfig{BodyLimit: 1024},
		Auth:  fakeAuth{},
		Links: fakeLinks{},
	})
}

func request(t *testing.T, s *Server, method, target, token string, body io.Reader) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func TestServer_Health(t *testing.T) {
	resp, body := request(t, newTestServer(), http.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status":"ok"`)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestServer_ProtectedRoutesRequireSession(t *testing.T) {
	s := newTestServer()

	resp, body := request(t, s, http.MethodGet, "/api/links", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"unauthorized"}`, body)

	resp, _ = request(t, s, http.MethodGet, "/api/links", "expired", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, body = request(t, s, http.MethodGet, "/api/links", "good", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, body)
}

func TestServer_AuthRoutesArePublic(t *testing.T) {
	resp, body := request(t, newTestServer(), http.MethodGet, "/api/auth/verify", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"valid":false}`, body)
}

func TestServer_UnknownRouteIsJSON(t *testing.T) {
	resp, body := request(t, newTestServer(), http.MethodGet, "/nope", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, `"error"`)
}

// incrRecorder answers INCR and EXPIRE in-process and records the INCR keys.
type incrRecorder struct {
	mu   sync.Mutex
	keys []string
}

func (r *incrRecorder) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (r *incrRecorder) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		switch c := cmd.(type) {
		case *redis.IntCmd:
			r.mu.Lock()
			r.keys = append(r.keys, c.Args()[1].(string))
			r.mu.Unlock()
			c.SetVal(1)
		case *redis.BoolCmd:
			c.SetVal(true)
		}
		return nil
	}
}

func (r *incrRecorder) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (r *incrRecorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}

func TestServer_RateLimitKeysAuthenticatedCallersPerUser(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = client.Close() })
	rec := &incrRecorder{}
	client.AddHook(rec)

	s := New(Dependencies{
		HTTP: config.HTTPConfig{BodyLimit: 1024},
		RateLimit: config.RateLimitConfig{
			Enabled:         true,
			MaxRequests:     100,
			AuthMaxRequests: 10,
			Window:          time.Minute,
		},
		Redis: client,
		Auth:  fakeAuth{},
		Links: fakeLinks{},
	})

	resp, _ := request(t, s, http.MethodGet, "/api/links", "good", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, rec.recorded(), "linkme:ratelimit:api:user:u1")
	assert.Equal(t, "100", resp.Header.Get("X-RateLimit-Limit"))

	// Without a session only the per-IP bucket is counted.
	before := len(rec.recorded())
	resp, _ = request(t, s, http.MethodGet, "/api/links", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	keys := rec.recorded()[before:]
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], "linkme:ratelimit:api:ip:")
}
