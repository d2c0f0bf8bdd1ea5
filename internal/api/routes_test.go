package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/playmatatu/pinball/internal/api/handlers"
	"github.com/playmatatu/pinball/internal/config"
	"github.com/playmatatu/pinball/internal/game"
	"github.com/playmatatu/pinball/internal/middleware"
	"github.com/playmatatu/pinball/internal/models"
	"github.com/playmatatu/pinball/internal/physics"
	"github.com/playmatatu/pinball/internal/store"
	"github.com/playmatatu/pinball/internal/table"
	"github.com/playmatatu/pinball/internal/ws"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStore struct {
	mu     sync.Mutex
	tables map[string]*models.TableRecord
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{tables: make(map[string]*models.TableRecord)}
}

func (f *fakeStore) ListTables(context.Context) ([]models.TableRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.TableRecord, 0, len(f.tables))
	for _, r := range f.tables {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeStore) GetTable(_ context.Context, id int64) (*models.TableRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.tables {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("table %d: %w", id, store.ErrNotFound)
}

func (f *fakeStore) GetTableByName(_ context.Context, name string) (*models.TableRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.tables[name]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("table %q: %w", name, store.ErrNotFound)
}

func (f *fakeStore) SaveTable(_ context.Context, l *table.Layout) (*models.TableRecord, error) {
	data, err := l.Marshal()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r := &models.TableRecord{ID: f.nextID, Name: l.Name, Layout: data, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	f.tables[l.Name] = r
	return r, nil
}

func (f *fakeStore) Authenticate(_ context.Context, username, password string) (*models.Operator, error) {
	if username == "op" && password == "hunter2" {
		return &models.Operator{ID: 1, Username: "op"}, nil
	}
	return nil, store.ErrInvalidCredentials
}

type fakeFrames map[string]*game.Frame

func (f fakeFrames) LatestFrame(_ context.Context, id string) (*game.Frame, error) {
	if fr, ok := f[id]; ok {
		return fr, nil
	}
	return nil, fmt.Errorf("session %s: %w", id, game.ErrSessionNotFound)
}

type testServer struct {
	router  *gin.Engine
	manager *game.Manager
	store   *fakeStore
	cfg     *config.Config
}

func newTestServer(t *testing.T, opts game.Options) *testServer {
	t.Helper()
	return newTestServerWithFrames(t, opts, nil)
}

func newTestServerWithFrames(t *testing.T, opts game.Options, frames handlers.FrameCache) *testServer {
	t.Helper()
	cfg := &config.Config{
		Environment:     "test",
		JWTSecret:       "test-secret",
		TokenTTLMinutes: 5,
		FrameRate:       100,
		FrameDT:         1,
		DefaultTable:    table.DemoName,
	}
	opts.Physics.Parallelism = 1
	m := game.NewManager(opts, zap.NewNop(), nil, nil, nil)
	st := newFakeStore()
	r := gin.New()
	SetupRoutes(r, Deps{Config: cfg, Store: st, Manager: m, Hub: ws.NewHub(zap.NewNop()), Frames: frames, Log: zap.NewNop()})
	t.Cleanup(func() { m.Shutdown(context.Background()) })
	return &testServer{router: r, manager: m, store: st, cfg: cfg}
}

func (s *testServer) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case []byte:
			buf.Write(b)
		default:
			json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) token(t *testing.T) string {
	t.Helper()
	tok, _, err := middleware.IssueToken(s.cfg.JWTSecret, 1, "op", time.Minute)
	require.NoError(t, err)
	return tok
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndConfig(t *testing.T) {
	s := newTestServer(t, game.Options{})

	rec := s.do(http.MethodGet, "/api/v1/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, rec)["status"])

	rec = s.do(http.MethodGet, "/api/v1/config", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	cfg := decode[map[string]any](t, rec)
	assert.EqualValues(t, 100, cfg["frame_rate"])
	assert.Equal(t, "demo", cfg["default_table"])

	rec = s.do(http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIssueToken(t *testing.T) {
	s := newTestServer(t, game.Options{})

	rec := s.do(http.MethodPost, "/api/v1/auth/token", map[string]string{"username": "op", "password": "hunter2"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	claims, err := middleware.ParseToken(s.cfg.JWTSecret, body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "op", claims.Username)

	rec = s.do(http.MethodPost, "/api/v1/auth/token", map[string]string{"username": "op", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/auth/token", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTables(t *testing.T) {
	s := newTestServer(t, game.Options{})
	demo, err := table.Demo().Marshal()
	require.NoError(t, err)

	rec := s.do(http.MethodPost, "/api/v1/tables", demo, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/tables", demo, s.token(t))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.TableRecord](t, rec)
	assert.Equal(t, "demo", created.Name)

	rec = s.do(http.MethodPost, "/api/v1/tables", []byte(`{"name":"x"}`), s.token(t))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/tables", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[map[string][]models.TableRecord](t, rec)["tables"], 1)

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/v1/tables/%d", created.ID), nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/api/v1/tables/99", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(http.MethodGet, "/api/v1/tables/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionFlow(t *testing.T) {
	// FrameRate zero keeps the world still between requests.
	s := newTestServer(t, game.Options{})

	rec := s.do(http.MethodPost, "/api/v1/sessions", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	snap := decode[game.Snapshot](t, rec)
	assert.Equal(t, "demo", snap.Table)
	base := "/api/v1/sessions/" + snap.ID

	rec = s.do(http.MethodGet, "/api/v1/sessions", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), snap.ID)

	rec = s.do(http.MethodPost, base+"/balls", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ball := decode[map[string]physics.BallID](t, rec)["ball"]

	rec = s.do(http.MethodPost, base+"/balls", map[string]any{"pos": []float32{500, 1000, 25}, "vel": []float32{0, 1, 0}}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodGet, base, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[game.Snapshot](t, rec).Balls, 2)

	rec = s.do(http.MethodDelete, fmt.Sprintf("%s/balls/%d", base, ball), nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodDelete, fmt.Sprintf("%s/balls/%d", base, ball), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(http.MethodDelete, base+"/balls/x", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodDelete, base, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodGet, base, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateSessionFromStoredTable(t *testing.T) {
	s := newTestServer(t, game.Options{})
	l := table.Demo()
	l.Name = "custom"
	rec, err := s.store.SaveTable(context.Background(), l)
	require.NoError(t, err)

	res := s.do(http.MethodPost, "/api/v1/sessions", map[string]any{"table_id": rec.ID}, "")
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	assert.Equal(t, "custom", decode[game.Snapshot](t, res).Table)

	res = s.do(http.MethodPost, "/api/v1/sessions", map[string]any{"table": "custom"}, "")
	assert.Equal(t, http.StatusCreated, res.Code)

	res = s.do(http.MethodPost, "/api/v1/sessions", map[string]any{"table": "missing"}, "")
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestActuate(t *testing.T) {
	s := newTestServer(t, game.Options{})
	rec := s.do(http.MethodPost, "/api/v1/sessions", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	path := "/api/v1/sessions/" + decode[game.Snapshot](t, rec).ID + "/actuate"
	tok := s.token(t)

	tests := []struct {
		name   string
		body   map[string]any
		token  string
		status int
	}{
		{"no token", map[string]any{"action": "flipper", "item": "left-flipper", "on": true}, "", http.StatusUnauthorized},
		{"flipper", map[string]any{"action": "flipper", "item": "left-flipper", "on": true}, tok, http.StatusOK},
		{"empty kicker", map[string]any{"action": "kick", "item": "saucer", "speed": 10}, tok, http.StatusOK},
		{"unknown item", map[string]any{"action": "flipper", "item": "nope"}, tok, http.StatusNotFound},
		{"wrong kind", map[string]any{"action": "flipper", "item": "bumper-1"}, tok, http.StatusBadRequest},
		{"unknown action", map[string]any{"action": "tilt", "item": "left-flipper"}, tok, http.StatusBadRequest},
		{"missing fields", map[string]any{"on": true}, tok, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, path, tt.body, tt.token)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestLimitsMapToTooManyRequests(t *testing.T) {
	s := newTestServer(t, game.Options{MaxSessions: 1, MaxBalls: 1})

	rec := s.do(http.MethodPost, "/api/v1/sessions", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[game.Snapshot](t, rec).ID

	rec = s.do(http.MethodPost, "/api/v1/sessions", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/sessions/"+id+"/balls", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do(http.MethodPost, "/api/v1/sessions/"+id+"/balls", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestGetSessionFallsBackToFrameCache(t *testing.T) {
	frames := fakeFrames{
		"remote": {Session: "remote", Table: "demo", Frame: 42, Balls: []physics.Ball{{ID: 3, Radius: 25}}},
	}
	s := newTestServerWithFrames(t, game.Options{}, frames)

	rec := s.do(http.MethodGet, "/api/v1/sessions/remote", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "cache", rec.Header().Get("X-Snapshot-Source"))
	snap := decode[game.Snapshot](t, rec)
	assert.Equal(t, "remote", snap.ID)
	assert.Equal(t, "demo", snap.Table)
	assert.Equal(t, uint64(42), snap.Frame)
	require.Len(t, snap.Balls, 1)
	assert.Equal(t, physics.BallID(3), snap.Balls[0].ID)

	rec = s.do(http.MethodGet, "/api/v1/sessions/gone", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Local sessions never consult the cache.
	rec = s.do(http.MethodPost, "/api/v1/sessions", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[game.Snapshot](t, rec).ID
	rec = s.do(http.MethodGet, "/api/v1/sessions/"+id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Snapshot-Source"))
	assert.NotEmpty(t, decode[game.Snapshot](t, rec).Items)
}
