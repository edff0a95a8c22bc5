package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"doodle-academy/internal/domain"
	"doodle-academy/internal/render"
	"doodle-academy/internal/repository"
	"doodle-academy/internal/tasks"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultThumbnailSize 是缩略图边长（像素）
	DefaultThumbnailSize = 256
	thumbnailCacheTTL    = 24 * time.Hour
	maxProjectNameLength = 191
)

// ProjectService 负责作品的保存、列表、缩略图和导出。
type ProjectService struct {
	projectRepo repository.ProjectRepository
	stateRepo   repository.StateRepository
	queue       TaskEnqueuer
	thumbSize   int
}

// NewProjectService 创建 ProjectService 实例。
func NewProjectService(projectRepo repository.ProjectRepository, stateRepo repository.StateRepository, queue TaskEnqueuer, thumbSize int) *ProjectService {
	if projectRepo == nil {
		panic("ProjectRepository cannot be nil for ProjectService")
	}
	if stateRepo == nil {
		panic("StateRepository cannot be nil for ProjectService")
	}
	if queue == nil {
		panic("TaskEnqueuer cannot be nil for ProjectService")
	}
	if thumbSize <= 0 {
		thumbSize = DefaultThumbnailSize
	}
	return &ProjectService{projectRepo: projectRepo, stateRepo: stateRepo, queue: queue, thumbSize: thumbSize}
}

func normalizeName(name *string) (*string, error) {
	if name == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) > maxProjectNameLength {
		return nil, fmt.Errorf("%w: project name too long", ErrInvalidInput)
	}
	return &trimmed, nil
}

// Create 保存一幅新作品
func (s *ProjectService) Create(ctx context.Context, userID uint, name *string, drawing domain.Drawing) (*domain.Project, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "operation": "CreateProject"})

	if err := drawing.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDrawing, err)
	}
	normalized, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	project := &domain.Project{ID: uuid.NewString(), UserID: userID, Name: normalized}
	if err := project.SetDrawing(drawing); err != nil {
		logCtx.WithError(err).Error("Failed to encode drawing")
		return nil, ErrInternalServer
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		logCtx.WithError(err).Error("Failed to create project")
		return nil, ErrInternalServer
	}

	logCtx.WithFields(logrus.Fields{"project_id": project.ID, "strokes": project.StrokeCount}).Info("Project created")
	s.scheduleThumbnail(ctx, userID, project.ID, logCtx)
	return project, nil
}

// Update 用新的画作替换作品内容，lastModified 随之更新。
func (s *ProjectService) Update(ctx context.Context, userID uint, id string, drawing domain.Drawing) (*domain.Project, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "project_id": id, "operation": "UpdateProject"})

	if err := drawing.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDrawing, err)
	}
	project, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := project.SetDrawing(drawing); err != nil {
		logCtx.WithError(err).Error("Failed to encode drawing")
		return nil, ErrInternalServer
	}
	if err := s.projectRepo.Update(ctx, project); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		logCtx.WithError(err).Error("Failed to update project")
		return nil, ErrInternalServer
	}

	// 旧缩略图已经过期，等后台任务重新生成
	if err := s.stateRepo.DeleteThumbnail(ctx, project.ID); err != nil {
		logCtx.WithError(err).Warn("Failed to drop cached thumbnail")
	}
	logCtx.WithField("strokes", project.StrokeCount).Info("Project updated")
	s.scheduleThumbnail(ctx, userID, project.ID, logCtx)
	return project, nil
}

// Delete 删除作品并清掉缓存的缩略图
func (s *ProjectService) Delete(ctx context.Context, userID uint, id string) error {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "project_id": id, "operation": "DeleteProject"})
	if err := s.projectRepo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		logCtx.WithError(err).Error("Failed to delete project")
		return ErrInternalServer
	}
	if err := s.stateRepo.DeleteThumbnail(ctx, id); err != nil {
		logCtx.WithError(err).Warn("Failed to drop cached thumbnail")
	}
	logCtx.Info("Project deleted")
	return nil
}

// Get 返回作品及其解码后的画作
func (s *ProjectService) Get(ctx context.Context, userID uint, id string) (*domain.Project, domain.Drawing, error) {
	project, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, domain.Drawing{}, err
	}
	drawing, err := project.ParseDrawing()
	if err != nil {
		logrus.WithFields(logrus.Fields{"user_id": userID, "project_id": id}).WithError(err).Error("Stored drawing is corrupt")
		return nil, domain.Drawing{}, ErrInternalServer
	}
	return project, drawing, nil
}

// List 返回作品索引，按最后修改时间倒序
func (s *ProjectService) List(ctx context.Context, userID uint) ([]domain.ProjectSummary, error) {
	projects, err := s.projectRepo.ListByUser(ctx, userID)
	if err != nil {
		logrus.WithField("user_id", userID).WithError(err).Error("Failed to list projects")
		return nil, ErrInternalServer
	}
	out := make([]domain.ProjectSummary, 0, len(projects))
	for i := range projects {
		out = append(out, projects[i].Summary())
	}
	return out, nil
}

// Thumbnail 优先读取缓存，未命中时现场渲染并回填。
func (s *ProjectService) Thumbnail(ctx context.Context, userID uint, id string) ([]byte, error) {
	// 先校验归属，缓存 key 只含作品 ID
	project, drawing, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if cached, err := s.stateRepo.GetThumbnail(ctx, project.ID); err == nil && len(cached) > 0 {
		return cached, nil
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		logrus.WithField("project_id", id).WithError(err).Warn("Failed to read thumbnail cache")
	}
	return s.renderAndCache(ctx, project.ID, drawing)
}

// RefreshThumbnail 重新渲染缩略图并写入缓存，由后台任务调用。
func (s *ProjectService) RefreshThumbnail(ctx context.Context, userID uint, id string) error {
	project, drawing, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	_, err = s.renderAndCache(ctx, project.ID, drawing)
	return err
}

func (s *ProjectService) renderAndCache(ctx context.Context, projectID string, drawing domain.Drawing) ([]byte, error) {
	logCtx := logrus.WithField("project_id", projectID)
	png, err := render.Thumbnail(drawing, s.thumbSize)
	if err != nil {
		logCtx.WithError(err).Error("Failed to render thumbnail")
		return nil, ErrInternalServer
	}
	if err := s.stateRepo.SetThumbnail(ctx, projectID, png, thumbnailCacheTTL); err != nil {
		logCtx.WithError(err).Warn("Failed to cache thumbnail")
	}
	return png, nil
}

// ExportPDF 把作品导出为单页 A4 横向 PDF
func (s *ProjectService) ExportPDF(ctx context.Context, userID uint, id string, w io.Writer) error {
	_, drawing, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := render.WritePDF(w, drawing); err != nil {
		logrus.WithField("project_id", id).WithError(err).Error("Failed to export pdf")
		return ErrInternalServer
	}
	return nil
}

func (s *ProjectService) find(ctx context.Context, userID uint, id string) (*domain.Project, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrProjectNotFound
	}
	project, err := s.projectRepo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		logrus.WithFields(logrus.Fields{"user_id": userID, "project_id": id}).WithError(err).Error("Failed to load project")
		return nil, ErrInternalServer
	}
	return project, nil
}

func (s *ProjectService) scheduleThumbnail(ctx context.Context, userID uint, projectID string, logCtx *logrus.Entry) {
	task, err := tasks.NewProjectThumbnailTask(tasks.ProjectThumbnailPayload{UserID: userID, ProjectID: projectID})
	if err != nil {
		logCtx.WithError(err).Warn("Failed to build thumbnail task")
		return
	}
	enqueue(ctx, s.queue, task, logCtx)
}
