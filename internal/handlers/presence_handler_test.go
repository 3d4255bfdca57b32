package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace-chat-api/internal/presence"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestGetPresence(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := presence.NewRegistry()
	registry.MarkOnline("bob", "conn-1")

	r := gin.New()
	r.GET("/api/presence/:userId", GetPresence(registry))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/presence/bob", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp PresenceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.IsOnline)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/presence/carol", nil))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.IsOnline)
}

func TestBulkPresence(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := presence.NewRegistry()
	registry.MarkOnline("bob", "conn-1")

	r := gin.New()
	r.POST("/api/presence/status", BulkPresence(registry))

	body, _ := json.Marshal(map[string][]string{"userIds": {"bob", "carol"}})
	req := httptest.NewRequest(http.MethodPost, "/api/presence/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]presence.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp["bob"].IsOnline)
	require.False(t, resp["carol"].IsOnline)
	require.Nil(t, resp["carol"].LastSeen)
}

func TestBulkPresence_MissingUserIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/presence/status", BulkPresence(presence.NewRegistry()))

	req := httptest.NewRequest(http.MethodPost, "/api/presence/status", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
