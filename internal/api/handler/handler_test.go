package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"lifequest/internal/api/handler"
	"lifequest/internal/container"
	"lifequest/internal/datastore"
	"lifequest/internal/datastore/memory_store"
	"lifequest/internal/generation"
	"lifequest/internal/interfaces"
	"lifequest/internal/models"
	"lifequest/internal/pkg/caching"
	"lifequest/internal/pkg/limiter"
	"lifequest/internal/pkg/locker"
	"lifequest/internal/services"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }

func (failingProvider) Complete(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("upstream unavailable")
}

type server struct {
	handler http.Handler
	store   *memory_store.Store
	token   string
}

func newServer(t *testing.T, provider generation.Provider) *server {
	t.Helper()

	logger := zaptest.NewLogger(t)
	cache := caching.NewCacheLocal(1000, time.Hour)
	store := memory_store.New()

	templates, err := generation.LoadTemplates()
	require.NoError(t, err)

	injector := do.New()
	do.ProvideValue[*zap.Logger](injector, logger)
	do.ProvideValue[datastore.Store](injector, store)
	do.ProvideValue[caching.Cache](injector, cache)
	do.ProvideValue[caching.ReadOnlyCache](injector, cache)
	do.ProvideValue[interfaces.Locker](injector, locker.NewLocalLocker())
	do.ProvideValue[interfaces.Limiter](injector, limiter.NewLocalLimiter(time.Now))
	do.ProvideValue[interfaces.Leaderboard](injector, memory_store.NewLeaderboard())
	do.ProvideValue[interfaces.Generator](injector, generation.NewAdapter(provider, templates, time.Second, logger))
	do.Provide(injector, func(i *do.Injector) (*services.Authentication, error) {
		return services.NewAuthentication("test-secret")
	})
	container.ProvideServices(injector)

	h, err := handler.New(&handler.Config{Container: injector, Mode: services.SERVER_MODE_PRODUCTION, Origins: []string{"*"}})
	require.NoError(t, err)

	auth := do.MustInvoke[*services.Authentication](injector)
	token, err := auth.CreateToken(&models.UserFromAuth{ID: "u1", Username: "ana"}, time.Now())
	require.NoError(t, err)

	return &server{handler: h, store: store, token: token}
}

func (s *server) do(t *testing.T, method string, path string, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Error         string   `json:"error"`
	MissingFields []string `json:"missing_fields"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

const profileJSON = `{"name":"Ana","age":34,"gender":"female","nationality":"PT","insurance_preferences":["health"]}`

func TestMissionRoutes(t *testing.T) {
	s := newServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/missions/generate", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Len(t, decodeError(t, rec).MissingFields, 5)

	rec = s.do(t, http.MethodPut, "/api/v1/user/profile", profileJSON)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/missions/generate", "")
	require.Equal(t, http.StatusOK, rec.Code)

	missions, err := s.store.ListActiveMissions(context.Background(), models.RECURRENCE_NONE)
	require.NoError(t, err)
	require.Len(t, missions, 3)

	rec = s.do(t, http.MethodPost, "/api/v1/missions/"+missions[0].ID+"/complete", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/missions/"+missions[0].ID+"/start", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/missions/"+missions[0].ID+"/start", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/missions/"+missions[1].ID+"/start", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/missions/unknown/start", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/missions/"+missions[0].ID+"/complete", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/missions/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/leaderboard/xp?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "u1")
}

func TestGenerationFailureIsBadGateway(t *testing.T) {
	s := newServer(t, failingProvider{})

	rec := s.do(t, http.MethodPut, "/api/v1/user/profile", profileJSON)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/missions/generate", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, generation.ErrGenerationFailed.Error(), decodeError(t, rec).Error)
	assert.NotContains(t, rec.Body.String(), "upstream unavailable")
}

func TestUnauthenticated(t *testing.T) {
	s := newServer(t, nil)
	s.token = ""

	rec := s.do(t, http.MethodGet, "/api/v1/missions", "")
	assert.NotEqual(t, http.StatusOK, rec.Code)

	s.token = "not-a-jwt"
	rec = s.do(t, http.MethodGet, "/api/v1/missions", "")
	assert.NotEqual(t, http.StatusOK, rec.Code)
}
