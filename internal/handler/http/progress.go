package http

import (
	"net/http"

	"doodle-academy/internal/domain"
	"doodle-academy/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ProgressHandler 处理经验值、等级和调色板相关请求
type ProgressHandler struct {
	progressService *service.ProgressService
}

// NewProgressHandler 创建 ProgressHandler 实例
func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	if progressService == nil {
		panic("ProgressService cannot be nil for ProgressHandler")
	}
	return &ProgressHandler{progressService: progressService}
}

// GetProgress GET /api/me/progress
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	view, err := h.progressService.GetProgress(c.Request.Context(), userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, view)
}

type GrantXPRequest struct {
	Amount int    `json:"amount" binding:"required"`
	Source string `json:"source" binding:"required"`
}

type GrantXPResponse struct {
	Progress     domain.UserProgress `json:"progress"`
	LevelsGained int                 `json:"levels_gained"`
}

// GrantXP POST /api/me/xp，客户端上报小游戏奖励
func (h *ProgressHandler) GrantXP(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req GrantXPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithField("user_id", userID).WithError(err).Warn("Handler.GrantXP: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: amount and source required")
		return
	}

	progress, gained, err := h.progressService.GrantClientXP(c.Request.Context(), userID, req.Amount, req.Source)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, GrantXPResponse{Progress: progress, LevelsGained: gained})
}

// ListColors GET /api/me/colors
func (h *ProgressHandler) ListColors(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	colors, err := h.progressService.ListColors(c.Request.Context(), userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"colors": colors})
}

type MixColorsRequest struct {
	HexA string `json:"hex_a" binding:"required"`
	HexB string `json:"hex_b" binding:"required"`
	Name string `json:"name"`
}

// MixColors POST /api/me/colors/mix
func (h *ProgressHandler) MixColors(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req MixColorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithField("user_id", userID).WithError(err).Warn("Handler.MixColors: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: hex_a and hex_b required")
		return
	}

	res, err := h.progressService.MixColors(c.Request.Context(), userID, req.HexA, req.HexB, req.Name)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{
		"hex":           res.Hex,
		"color":         res.Item,
		"result":        res.Result.String(),
		"xp_awarded":    res.XPAwarded,
		"levels_gained": res.LevelsGained,
		"progress":      res.Progress,
	})
}
