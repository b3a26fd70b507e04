package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServerFallsBackToMemory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := Config{
		Port:                 "0",
		JWTSecret:            "server-test-secret-0123456789",
		TokenTTL:             time.Hour,
		CORSOrigins:          []string{"*"},
		TemporalDisabled:     true,
		SessionPurgeInterval: time.Hour,
	}

	srv, err := NewServer(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	assert.False(t, srv.Stores.Postgres())

	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	body := `{"email":"buyer@example.com","password":"secret-pass","role":"buyer","name":"Buyer"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"role":"vendor"`)
}
