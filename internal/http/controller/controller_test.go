package controller_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/coprra/coprra/internal/http/controller"
	"github.com/coprra/coprra/internal/pricing"
	redisrepo "github.com/coprra/coprra/internal/repository/redis"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCache is a controllable cache.Store for handler tests.
type stubCache struct {
	entries map[string][]byte
	pingErr error
}

func newStubCache() *stubCache {
	return &stubCache{entries: map[string][]byte{}}
}

func (s *stubCache) Get(_ context.Context, key string, dest any) (bool, error) {
	data, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (s *stubCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.entries[key] = data
	return nil
}

func (s *stubCache) Forget(_ context.Context, key string) error {
	delete(s.entries, key)
	return nil
}

func (s *stubCache) Ping(_ context.Context) error { return s.pingErr }

func newPrefsRepo(t *testing.T) *redisrepo.PreferenceRepository {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return redisrepo.NewPreferenceRepository(client, "en", "USD")
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newServer := func(t *testing.T, cacheStore *stubCache, dbErr error) *gin.Engine {
		t.Helper()
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		if dbErr != nil {
			mock.ExpectPing().WillReturnError(dbErr)
		} else {
			mock.ExpectPing()
		}

		ctr := controller.New(db, cacheStore, newPrefsRepo(t), pricing.DefaultTable(), t.TempDir())
		router := gin.New()
		router.GET("/health", ctr.Health)
		return router
	}

	t.Run("all dependencies healthy", func(t *testing.T) {
		router := newServer(t, newStubCache(), nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"healthy"`)
		assert.Contains(t, w.Body.String(), `"database":"ok"`)
	})

	t.Run("failing cache degrades to unhealthy", func(t *testing.T) {
		cacheStore := newStubCache()
		cacheStore.pingErr = errors.New("connection refused")
		router := newServer(t, cacheStore, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"unhealthy"`)
		assert.Contains(t, w.Body.String(), "connection refused")
	})

	t.Run("failing database degrades to unhealthy", func(t *testing.T) {
		router := newServer(t, newStubCache(), errors.New("database down"))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "database down")
	})
}

func TestPreferences(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newServer := func(t *testing.T) *gin.Engine {
		t.Helper()
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		ctr := controller.New(db, newStubCache(), newPrefsRepo(t), pricing.DefaultTable(), t.TempDir())
		router := gin.New()
		router.GET("/language/:code", ctr.Language)
		router.GET("/currency/:code", ctr.Currency)
		return router
	}

	t.Run("language choice persists for the session", func(t *testing.T) {
		router := newServer(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/language/ar", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"language":"ar"`)

		cookies := w.Result().Cookies()
		require.NotEmpty(t, cookies)

		req := httptest.NewRequest(http.MethodGet, "/currency/EUR", nil)
		for _, cookie := range cookies {
			req.AddCookie(cookie)
		}
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"language":"ar"`)
		assert.Contains(t, w.Body.String(), `"currency":"EUR"`)
	})

	t.Run("unsupported language is rejected", func(t *testing.T) {
		router := newServer(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/language/zz", nil))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("unknown currency is rejected", func(t *testing.T) {
		router := newServer(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/currency/XYZ", nil))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
