package http_test

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"doodle-academy/internal/domain"
	httpHandler "doodle-academy/internal/handler/http"
	"doodle-academy/internal/progression"
	"doodle-academy/internal/repository"
	"doodle-academy/internal/repository/mocks"
	"doodle-academy/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	users    *mocks.UserRepository
	colors   *mocks.ColorRepository
	projects *mocks.ProjectRepository
	state    *mocks.StateRepository
	queue    *mocks.TaskEnqueuer
	router   *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		users:    mocks.NewUserRepository(t),
		colors:   mocks.NewColorRepository(t),
		projects: mocks.NewProjectRepository(t),
		state:    mocks.NewStateRepository(t),
		queue:    mocks.NewTaskEnqueuer(t),
	}
	authSvc, err := service.NewAuthService(f.users, f.colors, "test-secret", 1)
	require.NoError(t, err)
	progressSvc := service.NewProgressService(f.users, f.colors, f.queue)
	projectSvc := service.NewProjectService(f.projects, f.state, f.queue, 32)

	auth := httpHandler.NewAuthHandler(authSvc)
	progress := httpHandler.NewProgressHandler(progressSvc)
	projects := httpHandler.NewProjectHandler(projectSvc)
	games := httpHandler.NewMinigameHandler(progressSvc)

	r := gin.New()
	r.POST("/api/auth/login", auth.Login)
	r.POST("/api/auth/register", auth.Register)
	r.GET("/anonymous/progress", progress.GetProgress)

	me := r.Group("/api", func(c *gin.Context) { c.Set("user_id", uint(1)) })
	me.GET("/me/progress", progress.GetProgress)
	me.POST("/me/xp", progress.GrantXP)
	me.POST("/me/colors/mix", progress.MixColors)
	me.GET("/minigames", games.List)
	me.GET("/minigames/art-class/prompt", games.ArtClassPrompt)
	me.GET("/minigames/memory-draw/round", games.MemoryDrawRound)
	me.GET("/projects/:id", projects.Get)
	me.POST("/projects", projects.Create)
	me.DELETE("/projects/:id", projects.Delete)
	me.GET("/projects/:id/thumbnail.png", projects.Thumbnail)
	f.router = r
	return f
}

func (f *fixture) user(level int) {
	f.users.On("FindByID", mock.Anything, uint(1)).Return(&domain.User{ID: 1, Level: level, MaxXP: 100}, nil)
	items := progression.SeedPalette().Items()
	for i := range items {
		items[i].UserID = 1
	}
	f.colors.On("ListByUser", mock.Anything, uint(1)).Return(items, nil)
}

func (f *fixture) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func TestAuth_LoginWrongUser(t *testing.T) {
	f := newFixture(t)
	f.users.On("FindByUsername", mock.Anything, "ghost").Return(nil, repository.ErrNotFound).Once()

	w := f.do(http.MethodPost, "/api/auth/login", gin.H{"username": "ghost", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_RegisterValidation(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/auth/register", gin.H{"username": "ab", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProgress_RequiresUser(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/anonymous/progress", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProgress_Get(t *testing.T) {
	f := newFixture(t)
	f.user(4)

	w := f.do(http.MethodGet, "/api/me/progress", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 4, body["progress"].(map[string]interface{})["level"])
	assert.Equal(t, true, body["capabilities"].(map[string]interface{})["marker"])
}

func TestProgress_GrantXPRejectsServerSources(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/me/xp", gin.H{"amount": 100, "source": domain.XPSourceConnectDots})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/me/xp", gin.H{"source": domain.XPSourceTrace})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/me/xp", gin.H{"amount": int64(math.MaxInt64), "source": domain.XPSourceTrace})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProgress_MixLockedColor(t *testing.T) {
	f := newFixture(t)
	f.user(0)

	w := f.do(http.MethodPost, "/api/me/colors/mix", gin.H{"hex_a": "#123456", "hex_b": "#FF0000"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMinigames_Gating(t *testing.T) {
	f := newFixture(t)
	f.user(8)

	w := f.do(http.MethodGet, "/api/minigames/art-class/prompt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["text"])

	w = f.do(http.MethodGet, "/api/minigames/memory-draw/round", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodGet, "/api/minigames", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["minigames"], 4)
}

func TestMinigames_MemoryRound(t *testing.T) {
	f := newFixture(t)
	f.user(10)

	w := f.do(http.MethodGet, "/api/minigames/memory-draw/round", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Contains(t, body["options"], body["target"])
	assert.EqualValues(t, 3, body["memorize_seconds"])
}

func TestProjects_NotFound(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/projects/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	id := uuid.NewString()
	f.projects.On("Delete", mock.Anything, uint(1), id).Return(repository.ErrNotFound).Once()
	w = f.do(http.MethodDelete, "/api/projects/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjects_CreateRequiresDrawing(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/projects", gin.H{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/projects", gin.H{"drawing": gin.H{"strokes": []gin.H{{"path": gin.H{"points": []gin.H{}}}}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjects_Thumbnail(t *testing.T) {
	f := newFixture(t)
	id := uuid.NewString()
	stored := &domain.Project{ID: id, UserID: 1}
	require.NoError(t, stored.SetDrawing(domain.Drawing{}))

	f.projects.On("FindByID", mock.Anything, uint(1), id).Return(stored, nil).Once()
	f.state.On("GetThumbnail", mock.Anything, id).Return([]byte("\x89PNGcached"), nil).Once()

	w := f.do(http.MethodGet, "/api/projects/"+id+"/thumbnail.png", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNGcached", w.Body.String())
}
