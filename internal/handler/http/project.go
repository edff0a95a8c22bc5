package http

import (
	"bytes"
	"fmt"
	"net/http"

	"doodle-academy/internal/domain"
	"doodle-academy/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ProjectHandler 处理作品的增删改查和导出
type ProjectHandler struct {
	projectService *service.ProjectService
}

// NewProjectHandler 创建 ProjectHandler 实例
func NewProjectHandler(projectService *service.ProjectService) *ProjectHandler {
	if projectService == nil {
		panic("ProjectService cannot be nil for ProjectHandler")
	}
	return &ProjectHandler{projectService: projectService}
}

type CreateProjectRequest struct {
	Name    *string         `json:"name"`
	Drawing *domain.Drawing `json:"drawing" binding:"required"`
}

type UpdateProjectRequest struct {
	Drawing *domain.Drawing `json:"drawing" binding:"required"`
}

// ProjectResponse 是单个作品的完整内容
type ProjectResponse struct {
	domain.ProjectSummary
	Drawing domain.Drawing `json:"drawing"`
}

// List GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projects, err := h.projectService.List(c.Request.Context(), userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"projects": projects})
}

// Create POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithField("user_id", userID).WithError(err).Warn("Handler.CreateProject: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: drawing required")
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), userID, req.Name, *req.Drawing)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, project.Summary())
}

// Get GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	project, drawing, err := h.projectService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, ProjectResponse{ProjectSummary: project.Summary(), Drawing: drawing})
}

// Update PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithField("user_id", userID).WithError(err).Warn("Handler.UpdateProject: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: drawing required")
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), userID, c.Param("id"), *req.Drawing)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, project.Summary())
}

// Delete DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.projectService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Thumbnail GET /api/projects/:id/thumbnail.png
func (h *ProjectHandler) Thumbnail(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	png, err := h.projectService.Thumbnail(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=60")
	c.Data(http.StatusOK, "image/png", png)
}

// ExportPDF GET /api/projects/:id/export.pdf
func (h *ProjectHandler) ExportPDF(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	// 先写入缓冲，出错时还能返回 JSON 错误
	var buf bytes.Buffer
	if err := h.projectService.ExportPDF(c.Request.Context(), userID, id, &buf); err != nil {
		HandleServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".pdf"))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
