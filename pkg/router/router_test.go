package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"adam-store/backend/internal/service"
	"adam-store/backend/internal/ws"
	"adam-store/backend/pkg/config"
	"adam-store/backend/pkg/di"
	"adam-store/backend/pkg/jwt"
	"adam-store/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRouter wires the real engine and route table against services with
// no backing stores. The tested routes either resolve in middleware or in
// handlers that never touch a store.
func newTestRouter(t *testing.T) (*gin.Engine, *jwt.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New(logger.DefaultConfig())
	jwtService := jwt.NewService("test-secret", time.Hour)

	container := &di.Container{
		Config:              config.New(),
		Logger:              log,
		JWTService:          jwtService,
		UserService:         service.NewUserService(nil, nil, jwtService),
		ConversationService: service.NewConversationService(nil, nil),
		ChatMessageService:  service.NewChatMessageService(nil, nil, nil, log),
		Hub:                 ws.NewHub(log),
	}

	r := New(container)
	r.SetupRoutes()
	return r.Engine, jwtService
}

func perform(engine *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestPublicHealthNeedsNoToken(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := perform(engine, http.MethodGet, "/v1/public/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChatRoutesRequireToken(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := perform(engine, http.MethodGet, "/v1/chat/conversations", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(engine, http.MethodPost, "/v1/chat/messages", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutesEnforceRole(t *testing.T) {
	engine, jwtService := newTestRouter(t)

	userToken, err := jwtService.GenerateToken(1, "alice@x.com", string(jwt.RoleUser))
	require.NoError(t, err)
	w := perform(engine, http.MethodGet, "/v1/admin/health", userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken, err := jwtService.GenerateToken(2, "ops@x.com", string(jwt.RoleAdmin))
	require.NoError(t, err)
	w = perform(engine, http.MethodGet, "/v1/admin/health", adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebsocketHandshakeBypassesBearerAuth(t *testing.T) {
	// The handshake path is open at the route level; the handler rejects
	// the request itself for missing params instead of the middleware
	// answering 401.
	engine, _ := newTestRouter(t)

	w := perform(engine, http.MethodGet, "/ws", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
