package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"naskahpad/config"
	"naskahpad/internal/document/repository"
	"naskahpad/internal/document/service"
	"naskahpad/socket"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := service.NewDocumentService(repository.NewDocumentRepository(db), nil)
	cfg := config.Config{JWTSecret: "router-secret", AllowedOrigins: []string{"https://pad.example"}}
	return Setup(cfg, svc, socket.NewHub(svc))
}

func TestHealthzIsPublic(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestProtectedRoutesRequireKey(t *testing.T) {
	r := newTestRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/documents/"},
		{http.MethodGet, "/api/documents/abc"},
		{http.MethodPatch, "/api/documents/abc/content"},
		{http.MethodPatch, "/api/documents/abc/title"},
		{http.MethodGet, "/ws?docId=abc"},
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/documents/abc", nil)
	req.Header.Set("Origin", "https://pad.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "https://pad.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
