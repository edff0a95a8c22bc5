package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"doodle-academy/internal/domain"
	"doodle-academy/internal/minigame"
	"doodle-academy/internal/progression"
	"doodle-academy/internal/repository"
	"doodle-academy/internal/tasks"

	"github.com/sirupsen/logrus"
)

// ProgressView 是返回给客户端的进度快照
type ProgressView struct {
	Progress     domain.UserProgress      `json:"progress"`
	Capabilities progression.Capabilities `json:"capabilities"`
	Minigames    []minigame.Entry         `json:"minigames"`
}

// ProgressChange 在进度或调色板变化后通知在线会话
type ProgressChange struct {
	UserID   uint
	Progress domain.UserProgress
	Colors   []domain.ColorItem
}

// ProgressListener 接收进度变化，必须很快返回
type ProgressListener func(ProgressChange)

// MaxClientXP 是客户端单次上报经验的上限
const MaxClientXP = 1000

// 客户端可上报的经验来源。color_mix 和 connect_dots 由服务端判定后授予。
var clientXPSources = map[string]bool{
	domain.XPSourceTrace:      true,
	domain.XPSourceArtClass:   true,
	domain.XPSourceMemoryDraw: true,
}

func knownXPSource(source string) bool {
	return clientXPSources[source] ||
		source == domain.XPSourceColorMix ||
		source == domain.XPSourceConnectDots
}

// ProgressService 负责经验值、等级和调色板的持久化。
// 同一用户的读改写串行执行。
type ProgressService struct {
	userRepo  repository.UserRepository
	colorRepo repository.ColorRepository
	queue     TaskEnqueuer

	locks sync.Map // userID -> *sync.Mutex

	listenersMu sync.RWMutex
	listeners   []ProgressListener
}

// NewProgressService 创建 ProgressService 实例。
func NewProgressService(userRepo repository.UserRepository, colorRepo repository.ColorRepository, queue TaskEnqueuer) *ProgressService {
	if userRepo == nil {
		panic("UserRepository cannot be nil for ProgressService")
	}
	if colorRepo == nil {
		panic("ColorRepository cannot be nil for ProgressService")
	}
	if queue == nil {
		panic("TaskEnqueuer cannot be nil for ProgressService")
	}
	return &ProgressService{userRepo: userRepo, colorRepo: colorRepo, queue: queue}
}

// OnProgressChanged 注册进度变化回调
func (s *ProgressService) OnProgressChanged(fn ProgressListener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *ProgressService) notify(change ProgressChange) {
	s.listenersMu.RLock()
	defer s.listenersMu.RUnlock()
	for _, fn := range s.listeners {
		fn(change)
	}
}

func (s *ProgressService) lockUser(userID uint) func() {
	v, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Engine 从存储构建用户的进度引擎。调色板为空时写入初始颜色。
func (s *ProgressService) Engine(ctx context.Context, userID uint) (*progression.Engine, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "operation": "Engine"})

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		logCtx.WithError(err).Error("Failed to load user")
		return nil, ErrInternalServer
	}
	colors, err := s.colorRepo.ListByUser(ctx, userID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to load palette")
		return nil, ErrInternalServer
	}

	eng := progression.NewEngine(user.Progress(), colors)
	if eng.Seeded() {
		items := eng.Palette().Items()
		for i := range items {
			items[i].UserID = userID
		}
		if err := s.colorRepo.SaveAll(ctx, items); err != nil {
			logCtx.WithError(err).Error("Failed to persist seeded palette")
			return nil, ErrInternalServer
		}
		logCtx.Info("Seeded empty palette")
	}
	return eng, nil
}

// GetProgress 返回进度三元组、工具解锁情况和小游戏列表
func (s *ProgressService) GetProgress(ctx context.Context, userID uint) (*ProgressView, error) {
	eng, err := s.Engine(ctx, userID)
	if err != nil {
		return nil, err
	}
	return viewOf(eng.Progress()), nil
}

func viewOf(p domain.UserProgress) *ProgressView {
	return &ProgressView{
		Progress:     p,
		Capabilities: progression.CapabilityForLevel(p.Level),
		Minigames:    minigame.Catalog(p.Level),
	}
}

// GrantXP 增加经验并持久化，返回新进度和升级数。
func (s *ProgressService) GrantXP(ctx context.Context, userID uint, amount int, source string) (domain.UserProgress, int, error) {
	if amount <= 0 {
		return domain.UserProgress{}, 0, ErrInvalidXPAmount
	}
	if !knownXPSource(source) {
		return domain.UserProgress{}, 0, ErrInvalidXPSource
	}
	unlock := s.lockUser(userID)
	defer unlock()

	eng, err := s.Engine(ctx, userID)
	if err != nil {
		return domain.UserProgress{}, 0, err
	}
	progress, gained := eng.GrantXP(amount)
	if err := s.persistProgress(ctx, userID, amount, source, progress, gained); err != nil {
		return domain.UserProgress{}, 0, err
	}
	s.notify(ProgressChange{UserID: userID, Progress: progress, Colors: eng.Palette().Items()})
	return progress, gained, nil
}

// GrantClientXP 处理客户端上报的小游戏奖励，来源必须在 clientXPSources 中。
func (s *ProgressService) GrantClientXP(ctx context.Context, userID uint, amount int, source string) (domain.UserProgress, int, error) {
	if !clientXPSources[source] {
		return domain.UserProgress{}, 0, ErrInvalidXPSource
	}
	if amount > MaxClientXP {
		return domain.UserProgress{}, 0, ErrInvalidXPAmount
	}
	return s.GrantXP(ctx, userID, amount, source)
}

func (s *ProgressService) persistProgress(ctx context.Context, userID uint, amount int, source string, progress domain.UserProgress, gained int) error {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "source": source, "amount": amount})
	if err := s.userRepo.UpdateProgress(ctx, userID, progress); err != nil {
		logCtx.WithError(err).Error("Failed to persist progress")
		return ErrInternalServer
	}
	if gained > 0 {
		logCtx.WithFields(logrus.Fields{"level": progress.Level, "levels_gained": gained}).Info("User leveled up")
	}

	task, err := tasks.NewXPRecordTask(tasks.XPRecordPayload{
		UserID:       userID,
		Source:       source,
		Amount:       amount,
		LevelAfter:   progress.Level,
		LevelsGained: gained,
		OccurredAt:   time.Now().UTC(),
	})
	if err != nil {
		logCtx.WithError(err).Warn("Failed to build xp record task")
		return nil
	}
	enqueue(ctx, s.queue, task, logCtx)
	return nil
}

// MixColors 混合两个已解锁颜色。结果是新颜色时写入调色板并奖励经验。
func (s *ProgressService) MixColors(ctx context.Context, userID uint, hexA, hexB, name string) (*progression.MixResult, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "operation": "MixColors"})
	unlock := s.lockUser(userID)
	defer unlock()

	eng, err := s.Engine(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !eng.Palette().Contains(hexA) || !eng.Palette().Contains(hexB) {
		return nil, ErrColorLocked
	}

	res := eng.MixAndUnlock(hexA, hexB, name)
	if res.Result == progression.AlreadyUnlocked {
		return &res, nil
	}

	item := res.Item
	item.UserID = userID
	if err := s.colorRepo.Save(ctx, &item); err != nil {
		logCtx.WithError(err).Error("Failed to persist mixed color")
		return nil, ErrInternalServer
	}
	res.Item = item
	if err := s.persistProgress(ctx, userID, res.XPAwarded, domain.XPSourceColorMix, res.Progress, res.LevelsGained); err != nil {
		// 经验没写进去时撤回颜色，下次混合还能拿到奖励
		if delErr := s.colorRepo.Delete(ctx, userID, item.ID); delErr != nil {
			logCtx.WithError(delErr).WithField("color_id", item.ID).Error("Failed to roll back mixed color")
		}
		return nil, err
	}
	logCtx.WithField("hex", res.Hex).Info("Color unlocked by mixing")
	s.notify(ProgressChange{UserID: userID, Progress: res.Progress, Colors: eng.Palette().Items()})
	return &res, nil
}

// ListColors 返回用户已解锁的颜色
func (s *ProgressService) ListColors(ctx context.Context, userID uint) ([]domain.ColorItem, error) {
	eng, err := s.Engine(ctx, userID)
	if err != nil {
		return nil, err
	}
	return eng.Palette().Items(), nil
}

// CheckMinigame 检查小游戏是否存在且已解锁
func (s *ProgressService) CheckMinigame(ctx context.Context, userID uint, id domain.MinigameID) error {
	if !id.Known() {
		return ErrMinigameNotFound
	}
	eng, err := s.Engine(ctx, userID)
	if err != nil {
		return err
	}
	if !eng.MinigameUnlocked(id) {
		return ErrMinigameLocked
	}
	return nil
}
