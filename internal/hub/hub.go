package hub

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"doodle-academy/internal/domain"
	"doodle-academy/internal/dto"
	"doodle-academy/internal/minigame"
	"doodle-academy/internal/service"

	"github.com/sirupsen/logrus"
)

// 包级别的 WebSocket 常量，供 hub 和 client 使用
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// 服务调用的超时，调用都在独立协程中执行
	serviceTimeout = 10 * time.Second
)

// ErrHubStopped 表示 Hub 已经停止，不再接受请求
var ErrHubStopped = errors.New("hub stopped")

// Hub 内部消息类型
const (
	msgRegister   = "register"
	msgUnregister = "unregister"
	msgInbound    = "inbound"
	msgSnapshots  = "snapshots"
	msgProgress   = "progress"
	msgSaved      = "saved"
)

// HubMessage 是在 Hub 内部通道传递的消息
type HubMessage struct {
	Type    string
	UserID  uint
	Client  *Client
	RawData []byte // inbound

	Seed     *SessionSeed            // register
	Reply    chan []SessionSnapshot  // snapshots
	Progress *service.ProgressChange // progress
	Saved    *saveResult             // saved
}

type saveResult struct {
	generation uint64 // 发起保存时会话的 generation
	project    *domain.Project
	err        error
}

// XPGranter 授予经验值
type XPGranter interface {
	GrantXP(ctx context.Context, userID uint, amount int, source string) (domain.UserProgress, int, error)
}

// ProjectSaver 把会话画作保存为作品
type ProjectSaver interface {
	Create(ctx context.Context, userID uint, name *string, drawing domain.Drawing) (*domain.Project, error)
	Update(ctx context.Context, userID uint, id string, drawing domain.Drawing) (*domain.Project, error)
}

// DraftRecorder 记录会话操作并在会话结束时保存草稿
type DraftRecorder interface {
	RecordOp(ctx context.Context, userID uint)
	Flush(ctx context.Context, userID uint, drawing domain.Drawing, version uint) error
}

// Hub 持有每个用户的在线会话。所有会话状态只在 Run 协程中修改，
// 服务调用放到独立协程，结果再投递回 Run。
type Hub struct {
	messageChan chan HubMessage
	sessions    map[uint]*session

	xp       XPGranter
	projects ProjectSaver
	drafts   DraftRecorder
	rnd      *rand.Rand

	generation uint64 // 只在 Run 协程中递增

	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewHub 创建 Hub 实例
func NewHub(xp XPGranter, projects ProjectSaver, drafts DraftRecorder) *Hub {
	if xp == nil {
		panic("XPGranter cannot be nil for Hub")
	}
	if projects == nil {
		panic("ProjectSaver cannot be nil for Hub")
	}
	if drafts == nil {
		panic("DraftRecorder cannot be nil for Hub")
	}
	return &Hub{
		messageChan: make(chan HubMessage, 512),
		sessions:    make(map[uint]*session),
		xp:          xp,
		projects:    projects,
		drafts:      drafts,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}
}

// SetRand 替换小游戏使用的随机源，必须在 Run 之前调用
func (h *Hub) SetRand(rnd *rand.Rand) {
	if rnd != nil {
		h.rnd = rnd
	}
}

// Run 启动 Hub 的主事件循环，应在单独的 goroutine 中运行
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running...")
	defer close(h.stopped)

	for {
		select {
		case msg := <-h.messageChan:
			h.dispatch(msg)
		case <-h.done:
			h.shutdownSessions()
			log.Info("Hub is shutting down...")
			return
		}
	}
}

func (h *Hub) dispatch(msg HubMessage) {
	switch msg.Type {
	case msgRegister:
		h.registerClient(msg.Client, msg.Seed)
	case msgUnregister:
		h.unregisterClient(msg.Client)
	case msgInbound:
		h.handleClientMessage(msg.Client, msg.RawData)
	case msgSnapshots:
		msg.Reply <- h.draftSnapshots()
	case msgProgress:
		h.applyProgress(msg.Progress)
	case msgSaved:
		h.finishSave(msg.UserID, msg.Client, msg.Saved)
	default:
		logrus.WithField("component", "hub").Warnf("Hub: Received unknown message type: %s from user %d", msg.Type, msg.UserID)
	}
}

// --- 公共方法 ---

// QueueMessage 将消息放入 Hub 的处理队列 (非阻塞)。队列已满时返回 false。
func (h *Hub) QueueMessage(msg HubMessage) bool {
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithFields(logrus.Fields{
			"message_type": msg.Type,
			"user_id":      msg.UserID,
		}).Warn("Hub message channel full, dropping message")
		return false
	}
}

// deliver 阻塞投递消息，直到 Hub 接收或停止。Hub 已停止时返回 false。
func (h *Hub) deliver(msg HubMessage) bool {
	select {
	case h.messageChan <- msg:
		return true
	case <-h.done:
		return false
	}
}

// Register 请求 Hub 把客户端加入用户的会话
func (h *Hub) Register(client *Client, seed SessionSeed) bool {
	return h.QueueMessage(HubMessage{Type: msgRegister, UserID: client.UserID(), Client: client, Seed: &seed})
}

// RefreshProgress 把进度变化推送给用户的在线会话，可直接注册为进度回调
func (h *Hub) RefreshProgress(change service.ProgressChange) {
	h.QueueMessage(HubMessage{Type: msgProgress, UserID: change.UserID, Progress: &change})
}

// Snapshots 通过主循环取得所有草稿会话的副本
func (h *Hub) Snapshots(ctx context.Context) ([]SessionSnapshot, error) {
	reply := make(chan []SessionSnapshot, 1)
	select {
	case h.messageChan <- HubMessage{Type: msgSnapshots, Reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.done:
		return nil, ErrHubStopped
	}
	select {
	case snaps := <-reply:
		return snaps, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.stopped:
		return nil, ErrHubStopped
	}
}

// Stop 停止主循环，草稿会话在退出前保存一次
func (h *Hub) Stop(ctx context.Context) {
	h.stopOnce.Do(func() { close(h.done) })
	select {
	case <-h.stopped:
	case <-ctx.Done():
		logrus.WithField("component", "hub").Warn("Timed out waiting for hub to stop")
	}
}

// --- 注册与注销 ---

func (h *Hub) registerClient(client *Client, seed *SessionSeed) {
	if client == nil || seed == nil {
		logrus.Error("Hub: Attempted to register a nil client or seed")
		return
	}
	userID := client.UserID()
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "project_id": seed.ProjectID, "action": "registerClient"})

	s, ok := h.sessions[userID]
	switch {
	case !ok:
		s = newSession(userID, *seed, h.nextGeneration())
		h.sessions[userID] = s
		logCtx.Info("Session created")
	case s.projectID != seed.ProjectID:
		// 切换到另一幅画作，原草稿先落盘
		h.flushDraft(s)
		s.load(*seed, h.nextGeneration())
		s.applyProgress(seed.Progress, seed.Colors)
		h.broadcast(s, s.stateMessage())
		logCtx.Info("Session switched to another drawing")
	default:
		s.applyProgress(seed.Progress, seed.Colors)
	}

	s.clients[client] = true
	h.sendTo(client, s.stateMessage())
	if s.dots != nil {
		h.sendTo(client, s.dotsPuzzleMessage())
	}
	logCtx.WithField("clients", len(s.clients)).Info("Client registered to Hub")
}

func (h *Hub) unregisterClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to unregister a nil client")
		return
	}
	userID := client.UserID()
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "action": "unregisterClient"})

	s, ok := h.sessions[userID]
	if !ok || !s.clients[client] {
		logCtx.Warn("Client not found during unregister")
		return
	}
	delete(s.clients, client)
	close(client.send)
	logCtx.Info("Client unregistered from Hub")

	if len(s.clients) == 0 {
		h.flushDraft(s)
		delete(h.sessions, userID)
		logCtx.Info("Session closed")
	}
}

func (h *Hub) nextGeneration() uint64 {
	h.generation++
	return h.generation
}

// flushDraft 在后台保存草稿会话中尚未落盘的修改
func (h *Hub) flushDraft(s *session) {
	if !s.needsFlush() {
		return
	}
	snap := s.snapshot()
	s.flushedVersion = s.version
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), serviceTimeout)
		defer cancel()
		if err := h.drafts.Flush(ctx, snap.UserID, snap.Drawing, snap.Version); err != nil {
			logrus.WithField("user_id", snap.UserID).WithError(err).Warn("Failed to flush draft for closed session")
		}
	}()
}

func (h *Hub) draftSnapshots() []SessionSnapshot {
	out := make([]SessionSnapshot, 0, len(h.sessions))
	for _, s := range h.sessions {
		if s.isDraft() {
			out = append(out, s.snapshot())
		}
	}
	return out
}

func (h *Hub) shutdownSessions() {
	var wg sync.WaitGroup
	for userID, s := range h.sessions {
		if s.needsFlush() {
			snap := s.snapshot()
			wg.Add(1)
			go func() {
				defer wg.Done()
				ctx, cancel := context.WithTimeout(context.Background(), serviceTimeout)
				defer cancel()
				if err := h.drafts.Flush(ctx, snap.UserID, snap.Drawing, snap.Version); err != nil {
					logrus.WithField("user_id", snap.UserID).WithError(err).Warn("Failed to flush draft on shutdown")
				}
			}()
		}
		for c := range s.clients {
			close(c.send)
		}
		delete(h.sessions, userID)
	}
	wg.Wait()
}

// --- 进度与保存结果 ---

func (h *Hub) applyProgress(change *service.ProgressChange) {
	if change == nil {
		return
	}
	s, ok := h.sessions[change.UserID]
	if !ok {
		return
	}
	s.applyProgress(change.Progress, change.Colors)
	h.broadcast(s, s.stateMessage())
}

func (h *Hub) finishSave(userID uint, client *Client, res *saveResult) {
	s, ok := h.sessions[userID]
	if !ok || res == nil {
		return
	}
	if res.generation != s.generation {
		// 保存期间会话已载入另一幅画作，结果不能绑定到当前画作
		logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "current_project_id": s.projectID})
		if res.err != nil {
			logCtx.WithError(res.err).Warn("Stale save failed after session switched drawings")
		} else {
			logCtx.WithField("saved_project_id", res.project.ID).Info("Stale save finished after session switched drawings")
		}
		return
	}
	s.saving = false
	if res.err != nil {
		logrus.WithField("user_id", userID).WithError(res.err).Warn("Failed to save session drawing")
		if s.clients[client] {
			h.sendTo(client, dto.NewError(saveErrorMessage(res.err)))
		}
		return
	}
	s.projectID = res.project.ID
	h.broadcast(s, dto.SavedMessage{
		Type:         dto.MsgSaved,
		ProjectID:    res.project.ID,
		StrokeCount:  res.project.StrokeCount,
		LastModified: res.project.UpdatedAt,
	})
}

func saveErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		return "project not found"
	case errors.Is(err, service.ErrInvalidDrawing), errors.Is(err, service.ErrInvalidInput):
		return err.Error()
	default:
		return "failed to save drawing"
	}
}

// --- 客户端消息 ---

func (h *Hub) handleClientMessage(client *Client, raw []byte) {
	if client == nil {
		return
	}
	s, ok := h.sessions[client.UserID()]
	if !ok || !s.clients[client] {
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{"user_id": s.userID, "operation": "handleClientMessage"})

	var msg dto.ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		logCtx.WithError(err).Debug("Invalid client message")
		h.sendTo(client, dto.NewError("invalid message"))
		return
	}

	switch msg.Type {
	case dto.MsgBegin:
		if msg.Point == nil {
			h.sendTo(client, dto.NewError("point is required"))
			return
		}
		s.engine.BeginStroke(*msg.Point)
	case dto.MsgExtend:
		if msg.Point == nil {
			h.sendTo(client, dto.NewError("point is required"))
			return
		}
		s.engine.ExtendStroke(*msg.Point)
	case dto.MsgCommit:
		h.commitStroke(s)
	case dto.MsgErase:
		h.erase(s, client, msg)
	case dto.MsgTool:
		h.setTool(s, client, msg)
	case dto.MsgStyle:
		if msg.Color != "" && !s.palette.Contains(msg.Color) {
			h.sendTo(client, dto.NewError(service.ErrColorLocked.Error()))
			return
		}
		s.engine.UpdateActiveToolColorOrWidth(msg.Color, msg.Width)
		h.broadcast(s, s.toolMessage())
	case dto.MsgClear:
		s.engine.Clear()
		h.mutated(s)
		h.broadcast(s, dto.ClearedMessage{Type: dto.MsgCleared, Version: s.version})
	case dto.MsgSave:
		h.save(s, client, msg.Name)
	case dto.MsgDotsStart:
		h.startDots(s, client, msg)
	case dto.MsgDotsReset:
		if s.dots == nil {
			h.sendTo(client, dto.NewError("no connect the dots game in progress"))
			return
		}
		s.dots.Reset()
		h.restartDotsCanvas(s)
	default:
		h.sendTo(client, dto.NewError("unknown message type"))
	}
}

// mutated 画作改变后递增版本并记录操作数
func (h *Hub) mutated(s *session) {
	s.version++
	userID := s.userID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), serviceTimeout)
		defer cancel()
		h.drafts.RecordOp(ctx, userID)
	}()
}

func (h *Hub) commitStroke(s *session) {
	stroke, ok := s.engine.CommitStroke()
	if !ok {
		return
	}
	h.mutated(s)
	h.broadcast(s, dto.StrokeAddedMessage{Type: dto.MsgStrokeAdded, Version: s.version, Stroke: stroke})

	if s.dots == nil {
		return
	}
	advanced, won := s.dots.OnStroke(stroke)
	if !advanced {
		return
	}
	h.broadcast(s, dto.DotsProgressMessage{Type: dto.MsgDotsProgress, Next: s.dots.Next(), State: string(s.dots.State())})
	if won {
		h.broadcast(s, dto.GameWonMessage{Type: dto.MsgGameWon, Game: string(domain.MinigameConnectDots), XP: minigame.ConnectDotsWinXP})
		h.grantXP(s.userID, minigame.ConnectDotsWinXP, domain.XPSourceConnectDots)
	}
}

// grantXP 在后台授予经验，成功后进度回调会刷新会话
func (h *Hub) grantXP(userID uint, amount int, source string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), serviceTimeout)
		defer cancel()
		if _, _, err := h.xp.GrantXP(ctx, userID, amount, source); err != nil {
			logrus.WithFields(logrus.Fields{"user_id": userID, "source": source}).WithError(err).Error("Failed to grant xp")
		}
	}()
}

func (h *Hub) erase(s *session, client *Client, msg dto.ClientMessage) {
	if s.engine.Tool().Kind != domain.ToolStrokeEraser {
		h.sendTo(client, dto.NewError("erase requires the stroke eraser"))
		return
	}
	if msg.Point == nil {
		h.sendTo(client, dto.NewError("point is required"))
		return
	}
	_, index, ok := s.engine.VectorErase(*msg.Point)
	if !ok {
		return
	}
	h.mutated(s)
	h.broadcast(s, dto.StrokeRemovedMessage{Type: dto.MsgStrokeRemoved, Version: s.version, Index: index})
}

func (h *Hub) setTool(s *session, client *Client, msg dto.ClientMessage) {
	kind, err := domain.ParseToolKind(msg.Tool)
	if err != nil {
		h.sendTo(client, dto.NewError(err.Error()))
		return
	}
	if !s.caps.Allows(kind) {
		h.sendTo(client, dto.NewError(service.ErrToolLocked.Error()))
		return
	}
	s.engine.SetTool(kind)
	h.broadcast(s, s.toolMessage())
}

func (h *Hub) save(s *session, client *Client, name *string) {
	if s.saving {
		h.sendTo(client, dto.NewError("save already in progress"))
		return
	}
	s.saving = true
	userID, projectID, drawing, generation := s.userID, s.projectID, s.engine.Drawing(), s.generation

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), serviceTimeout)
		defer cancel()
		res := saveResult{generation: generation}
		if projectID == "" {
			res.project, res.err = h.projects.Create(ctx, userID, name, drawing)
		} else {
			res.project, res.err = h.projects.Update(ctx, userID, projectID, drawing)
		}
		msg := HubMessage{Type: msgSaved, UserID: userID, Client: client, Saved: &res}
		select {
		case h.messageChan <- msg:
		case <-h.done:
		}
	}()
}

func (h *Hub) startDots(s *session, client *Client, msg dto.ClientMessage) {
	if !s.isDraft() {
		h.sendTo(client, dto.NewError("connect the dots needs a blank canvas, not a saved project"))
		return
	}
	if msg.CanvasWidth <= 0 || msg.CanvasHeight <= 0 {
		h.sendTo(client, dto.NewError("canvas size is required"))
		return
	}
	s.dots = minigame.NewDotsGame(msg.CanvasWidth, msg.CanvasHeight, h.rnd)
	h.restartDotsCanvas(s)
}

func (h *Hub) restartDotsCanvas(s *session) {
	s.engine.Clear()
	h.mutated(s)
	h.broadcast(s, dto.ClearedMessage{Type: dto.MsgCleared, Version: s.version})
	h.broadcast(s, s.dotsPuzzleMessage())
}

// --- 发送 ---

func (h *Hub) sendTo(client *Client, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logrus.WithField("user_id", client.UserID()).WithError(err).Error("Failed to marshal outgoing message")
		return
	}
	select {
	case client.send <- data:
	default:
		logrus.WithField("user_id", client.UserID()).Warn("Client send channel full, message dropped")
	}
}

// broadcast 把消息发给会话的所有客户端，发送者也会收到带版本号的结果
func (h *Hub) broadcast(s *session, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logrus.WithField("user_id", s.userID).WithError(err).Error("Failed to marshal broadcast message")
		return
	}
	for client := range s.clients {
		select {
		case client.send <- data:
		default:
			logrus.WithField("user_id", s.userID).Warn("Client send channel full during broadcast, skipping this client")
		}
	}
}
