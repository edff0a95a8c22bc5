package http

import (
	"math/rand"
	"net/http"
	"sync"
	"time"

	"doodle-academy/internal/domain"
	"doodle-academy/internal/minigame"
	"doodle-academy/internal/service"

	"github.com/gin-gonic/gin"
)

// MinigameHandler 提供小游戏列表和题目
type MinigameHandler struct {
	progressService *service.ProgressService

	mu  sync.Mutex // rand.Rand 不是并发安全的
	rnd *rand.Rand
}

// NewMinigameHandler 创建 MinigameHandler 实例
func NewMinigameHandler(progressService *service.ProgressService) *MinigameHandler {
	if progressService == nil {
		panic("ProgressService cannot be nil for MinigameHandler")
	}
	return &MinigameHandler{
		progressService: progressService,
		rnd:             rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// List GET /api/minigames
func (h *MinigameHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	view, err := h.progressService.GetProgress(c.Request.Context(), userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"level": view.Progress.Level, "minigames": view.Minigames})
}

// ArtClassPrompt GET /api/minigames/art-class/prompt
func (h *MinigameHandler) ArtClassPrompt(c *gin.Context) {
	if !h.checkUnlocked(c, domain.MinigameArtClass) {
		return
	}
	h.mu.Lock()
	prompt := minigame.NewPrompt(h.rnd)
	h.mu.Unlock()
	SuccessResponse(c, http.StatusOK, prompt)
}

// MemoryDrawRound GET /api/minigames/memory-draw/round
func (h *MinigameHandler) MemoryDrawRound(c *gin.Context) {
	if !h.checkUnlocked(c, domain.MinigameMemoryDraw) {
		return
	}
	h.mu.Lock()
	round := minigame.NewMemoryRound(h.rnd)
	h.mu.Unlock()
	SuccessResponse(c, http.StatusOK, round)
}

func (h *MinigameHandler) checkUnlocked(c *gin.Context, id domain.MinigameID) bool {
	userID, ok := currentUserID(c)
	if !ok {
		return false
	}
	if err := h.progressService.CheckMinigame(c.Request.Context(), userID, id); err != nil {
		HandleServiceError(c, err)
		return false
	}
	return true
}
