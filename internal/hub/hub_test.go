package hub

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"doodle-academy/internal/domain"
	"doodle-academy/internal/dto"
	"doodle-academy/internal/minigame"
	"doodle-academy/internal/progression"
	"doodle-academy/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeDeps struct{ mock.Mock }

func (f *fakeDeps) GrantXP(ctx context.Context, userID uint, amount int, source string) (domain.UserProgress, int, error) {
	args := f.Called(ctx, userID, amount, source)
	return args.Get(0).(domain.UserProgress), args.Int(1), args.Error(2)
}

func (f *fakeDeps) Create(ctx context.Context, userID uint, name *string, drawing domain.Drawing) (*domain.Project, error) {
	args := f.Called(ctx, userID, name, drawing)
	p, _ := args.Get(0).(*domain.Project)
	return p, args.Error(1)
}

func (f *fakeDeps) Update(ctx context.Context, userID uint, id string, drawing domain.Drawing) (*domain.Project, error) {
	args := f.Called(ctx, userID, id, drawing)
	p, _ := args.Get(0).(*domain.Project)
	return p, args.Error(1)
}

func (f *fakeDeps) RecordOp(ctx context.Context, userID uint) {
	f.Called(ctx, userID)
}

func (f *fakeDeps) Flush(ctx context.Context, userID uint, drawing domain.Drawing, version uint) error {
	return f.Called(ctx, userID, drawing, version).Error(0)
}

func newTestHub(t *testing.T) (*Hub, *fakeDeps) {
	deps := &fakeDeps{}
	deps.On("RecordOp", mock.Anything, mock.Anything).Maybe()
	h := NewHub(deps, deps, deps)
	return h, deps
}

func newTestClient(h *Hub, userID uint) *Client {
	return &Client{hub: h, userID: userID, send: make(chan []byte, 64)}
}

func seed(level int) SessionSeed {
	return SessionSeed{
		Progress: domain.UserProgress{Level: level, MaxXP: 100},
		Colors:   progression.SeedPalette().Items(),
	}
}

func register(h *Hub, c *Client, s SessionSeed) {
	h.dispatch(HubMessage{Type: msgRegister, UserID: c.UserID(), Client: c, Seed: &s})
}

func send(t *testing.T, h *Hub, c *Client, msg dto.ClientMessage) {
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	h.dispatch(HubMessage{Type: msgInbound, UserID: c.UserID(), Client: c, RawData: raw})
}

func next(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case data, ok := <-c.send:
		require.True(t, ok, "send 通道已关闭")
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &m))
		return m
	default:
		t.Fatal("客户端没有收到消息")
		return nil
	}
}

func assertNoMessage(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Fatalf("不应收到消息: %s", data)
	default:
	}
}

func drawLine(t *testing.T, h *Hub, c *Client, from, to domain.Point) {
	send(t, h, c, dto.ClientMessage{Type: dto.MsgBegin, Point: &from})
	send(t, h, c, dto.ClientMessage{Type: dto.MsgExtend, Point: &to})
	send(t, h, c, dto.ClientMessage{Type: dto.MsgCommit})
}

func TestHub_RegisterSendsState(t *testing.T) {
	h, _ := newTestHub(t)
	c := newTestClient(h, 1)
	s := seed(0)
	s.Version = 7
	s.Drawing = domain.Drawing{Strokes: []domain.Stroke{{
		Path: domain.StrokePath{Points: []domain.Point{{X: 1, Y: 1, Size: 10, Opacity: 1}}},
		Ink:  domain.Ink{Type: domain.InkPen, Color: "#000000"},
	}}}

	register(h, c, s)

	msg := next(t, c)
	assert.Equal(t, dto.MsgState, msg["type"])
	assert.EqualValues(t, 7, msg["version"])
	assert.Len(t, msg["drawing"].(map[string]interface{})["strokes"], 1)
	assert.Len(t, msg["palette"], 8)
}

func TestHub_CommitBroadcastsToAllClients(t *testing.T) {
	h, _ := newTestHub(t)
	a, b := newTestClient(h, 1), newTestClient(h, 1)
	register(h, a, seed(0))
	register(h, b, seed(0))
	next(t, a)
	next(t, b)

	drawLine(t, h, a, domain.Point{X: 10, Y: 10}, domain.Point{X: 20, Y: 20})

	for _, c := range []*Client{a, b} {
		msg := next(t, c)
		assert.Equal(t, dto.MsgStrokeAdded, msg["type"])
		assert.EqualValues(t, 1, msg["version"])
	}
	assert.Equal(t, 1, h.sessions[1].engine.StrokeCount())
}

func TestHub_EmptyCommitIsIgnored(t *testing.T) {
	h, _ := newTestHub(t)
	c := newTestClient(h, 1)
	register(h, c, seed(0))
	next(t, c)

	send(t, h, c, dto.ClientMessage{Type: dto.MsgCommit})
	assertNoMessage(t, c)
	assert.Zero(t, h.sessions[1].version)
}

func TestHub_ToolGating(t *testing.T) {
	h, _ := newTestHub(t)
	c := newTestClient(h, 1)
	register(h, c, seed(3))
	next(t, c)

	send(t, h, c, dto.ClientMessage{Type: dto.MsgTool, Tool: "crayon"})
	msg := next(t, c)
	assert.Equal(t, dto.MsgError, msg["type"])
	assert.Equal(t, service.ErrToolLocked.Error(), msg["message"])

	send(t, h, c, dto.ClientMessage{Type: dto.MsgTool, Tool: "pencil"})
	msg = next(t, c)
	assert.Equal(t, dto.MsgTool, msg["type"])
	assert.Equal(t, domain.ToolPencil, h.sessions[1].engine.Tool().Kind)

	send(t, h, c, dto.ClientMessage{Type: dto.MsgTool, Tool: "spray"})
	assert.Equal(t, dto.MsgError, next(t, c)["type"])
}

func TestHub_StyleRequiresUnlockedColor(t *testing.T) {
	h, _ := newTestHub(t)
	c := newTestClient(h, 1)
	register(h, c, seed(0))
	next(t, c)

	send(t, h, c, dto.ClientMessage{Type: dto.MsgStyle, Color: "#800080"})
	msg := next(t, c)
	assert.Equal(t, service.ErrColorLocked.Error(), msg["message"])

	send(t, h, c, dto.ClientMessage{Type: dto.MsgStyle, Color: "#ff0000", Width: 4})
	msg = next(t, c)
	assert.Equal(t, dto.MsgTool, msg["type"])
	assert.Equal(t, "#ff0000", h.sessions[1].engine.StrokeColor())
	assert.Equal(t, 4.0, h.sessions[1].engine.StrokeWidth())
}

func TestHub_VectorErase(t *testing.T) {
	h, _ := newTestHub(t)
	c := newTestClient(h, 1)
	register(h, c, seed(0))
	next(t, c)
	drawLine(t, h, c, domain.Point{X: 10, Y: 10}, domain.Point{X: 100, Y: 10})
	next(t, c)

	p := domain.Point{X: 50, Y: 12}
	send(t, h, c, dto.ClientMessage{Type: dto.MsgErase, Point: &p})
	assert.Equal(t, dto.MsgError, next(t, c)["type"], "必须先切换到矢量橡皮")

	send(t, h, c, dto.ClientMessage{Type: dto.MsgTool, Tool: "stroke_eraser"})
	next(t, c)
	send(t, h, c, dto.ClientMessage{Type: dto.MsgErase, Point: &p})
	msg := next(t, c)
	assert.Equal(t, dto.MsgStrokeRemoved, msg["type"])
	assert.EqualValues(t, 0, msg["index"])
	assert.EqualValues(t, 2, msg["version"])

	// 没有命中时不改变版本
	far := domain.Point{X: 500, Y: 500}
	send(t, h, c, dto.ClientMessage{Type: dto.MsgErase, Point: &far})
	assertNoMessage(t, c)
	assert.EqualValues(t, 2, h.sessions[1].version)
}

func TestHub_Clear(t *testing.T) {
	h, _ := newTestHub(t)
	c := newTestClient(h, 1)
	register(h, c, seed(0))
	next(t, c)
	drawLine(t, h, c, domain.Point{X: 10, Y: 10}, domain.Point{X: 20, Y: 20})
	next(t, c)

	send(t, h, c, dto.ClientMessage{Type: dto.MsgClear})
	msg := next(t, c)
	assert.Equal(t, dto.MsgCleared, msg["type"])
	assert.Zero(t, h.sessions[1].engine.StrokeCount())
}

func TestHub_InvalidAndUnknownMessages(t *testing.T) {
	h, _ := newTestHub(t)
	c := newTestClient(h, 1)
	register(h, c, seed(0))
	next(t, c)

	h.dispatch(HubMessage{Type: msgInbound, UserID: 1, Client: c, RawData: []byte("{oops")})
	assert.Equal(t, "invalid message", next(t, c)["message"])

	send(t, h, c, dto.ClientMessage{Type: "teleport"})
	assert.Equal(t, "unknown message type", next(t, c)["message"])

	send(t, h, c, dto.ClientMessage{Type: dto.MsgBegin})
	assert.Equal(t, "point is required", next(t, c)["message"])
}

func awaitSaved(t *testing.T, h *Hub) {
	t.Helper()
	select {
	case msg := <-h.messageChan:
		require.Equal(t, msgSaved, msg.Type)
		h.dispatch(msg)
	case <-time.After(time.Second):
		t.Fatal("保存结果没有投递回 Hub")
	}
}

func TestHub_SaveCreatesThenUpdates(t *testing.T) {
	h, deps := newTestHub(t)
	c := newTestClient(h, 1)
	register(h, c, seed(0))
	next(t, c)
	drawLine(t, h, c, domain.Point{X: 10, Y: 10}, domain.Point{X: 20, Y: 20})
	next(t, c)

	name := "Rocket"
	deps.On("Create", mock.Anything, uint(1), &name, mock.MatchedBy(func(d domain.Drawing) bool { return d.Len() == 1 })).
		Return(&domain.Project{ID: "p-1", StrokeCount: 1}, nil).Once()

	send(t, h, c, dto.ClientMessage{Type: dto.MsgSave, Name: &name})
	awaitSaved(t, h)
	msg := next(t, c)
	assert.Equal(t, dto.MsgSaved, msg["type"])
	assert.Equal(t, "p-1", msg["project_id"])
	assert.Equal(t, "p-1", h.sessions[1].projectID)

	deps.On("Update", mock.Anything, uint(1), "p-1", mock.Anything).
		Return(&domain.Project{ID: "p-1", StrokeCount: 1}, nil).Once()
	send(t, h, c, dto.ClientMessage{Type: dto.MsgSave})
	awaitSaved(t, h)
	assert.Equal(t, dto.MsgSaved, next(t, c)["type"])
	deps.AssertExpectations(t)
}

func TestHub_SaveFailureKeepsDrawing(t *testing.T) {
	h, deps := newTestHub(t)
	c := newTestClient(h, 1)
	register(h, c, seed(0))
	next(t, c)
	drawLine(t, h, c, domain.Point{X: 10, Y: 10}, domain.Point{X: 20, Y: 20})
	next(t, c)

	deps.On("Create", mock.Anything, uint(1), mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

	send(t, h, c, dto.ClientMessage{Type: dto.MsgSave})
	send(t, h, c, dto.ClientMessage{Type: dto.MsgSave})
	assert.Equal(t, "save already in progress", next(t, c)["message"])

	awaitSaved(t, h)
	assert.Equal(t, "failed to save drawing", next(t, c)["message"])
	assert.Equal(t, 1, h.sessions[1].engine.StrokeCount())
	assert.Empty(t, h.sessions[1].projectID)
	assert.False(t, h.sessions[1].saving)
}

func housePuzzle(t *testing.T) minigame.Puzzle {
	for _, p := range minigame.Puzzles {
		if p.Name == "house" {
			return p
		}
	}
	t.Fatal("题库中没有 house")
	return minigame.Puzzle{}
}

func TestHub_ConnectDotsWinGrantsXP(t *testing.T) {
	h, deps := newTestHub(t)
	c := newTestClient(h, 1)
	register(h, c, seed(0))
	next(t, c)

	send(t, h, c, dto.ClientMessage{Type: dto.MsgDotsStart, CanvasWidth: 1000, CanvasHeight: 1000})
	assert.Equal(t, dto.MsgCleared, next(t, c)["type"])
	assert.Equal(t, dto.MsgDotsPuzzle, next(t, c)["type"])

	h.sessions[1].dots = minigame.NewDotsGameWithPuzzle(housePuzzle(t), 1000, 1000)
	dots := h.sessions[1].dots.ScaledDots()

	granted := make(chan struct{})
	deps.On("GrantXP", mock.Anything, uint(1), minigame.ConnectDotsWinXP, domain.XPSourceConnectDots).
		Run(func(mock.Arguments) { close(granted) }).
		Return(domain.UserProgress{Level: 1, CurrentXP: 0, MaxXP: 110}, 1, nil).Once()

	for i := 0; i < len(dots)-1; i++ {
		drawLine(t, h, c, dots[i], dots[i+1])
		assert.Equal(t, dto.MsgStrokeAdded, next(t, c)["type"])
		progress := next(t, c)
		assert.Equal(t, dto.MsgDotsProgress, progress["type"])
		assert.EqualValues(t, i+1, progress["next"])
	}
	won := next(t, c)
	assert.Equal(t, dto.MsgGameWon, won["type"])
	assert.EqualValues(t, 100, won["xp"])

	select {
	case <-granted:
	case <-time.After(time.Second):
		t.Fatal("没有授予连点经验")
	}
}

func TestHub_DotsRejectedOnProject(t *testing.T) {
	h, _ := newTestHub(t)
	c := newTestClient(h, 1)
	s := seed(0)
	s.ProjectID = "p-9"
	register(h, c, s)
	next(t, c)

	send(t, h, c, dto.ClientMessage{Type: dto.MsgDotsStart, CanvasWidth: 100, CanvasHeight: 100})
	assert.Equal(t, dto.MsgError, next(t, c)["type"])

	send(t, h, c, dto.ClientMessage{Type: dto.MsgDotsReset})
	assert.Equal(t, dto.MsgError, next(t, c)["type"])
}

func TestHub_ProgressRefreshUnlocksTools(t *testing.T) {
	h, _ := newTestHub(t)
	c := newTestClient(h, 1)
	register(h, c, seed(0))
	next(t, c)

	h.dispatch(HubMessage{Type: msgProgress, Progress: &service.ProgressChange{
		UserID:   1,
		Progress: domain.UserProgress{Level: 6, MaxXP: 177},
		Colors:   progression.SeedPalette().Items(),
	}})
	msg := next(t, c)
	assert.Equal(t, dto.MsgState, msg["type"])
	assert.Equal(t, true, msg["capabilities"].(map[string]interface{})["crayon"])

	send(t, h, c, dto.ClientMessage{Type: dto.MsgTool, Tool: "crayon"})
	assert.Equal(t, dto.MsgTool, next(t, c)["type"])

	// 不在线的用户直接忽略
	h.dispatch(HubMessage{Type: msgProgress, Progress: &service.ProgressChange{UserID: 42}})
}

func TestHub_SnapshotsOnlyIncludeDrafts(t *testing.T) {
	h, _ := newTestHub(t)
	draft, project := newTestClient(h, 1), newTestClient(h, 2)
	register(h, draft, seed(0))
	s := seed(0)
	s.ProjectID = "p-2"
	register(h, project, s)

	reply := make(chan []SessionSnapshot, 1)
	h.dispatch(HubMessage{Type: msgSnapshots, Reply: reply})
	snaps := <-reply
	require.Len(t, snaps, 1)
	assert.Equal(t, uint(1), snaps[0].UserID)
}

func TestHub_SnapshotsThroughRunLoop(t *testing.T) {
	h, _ := newTestHub(t)
	go h.Run()
	defer h.Stop(context.Background())

	c := newTestClient(h, 3)
	require.True(t, h.Register(c, seed(0)))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	snaps, err := h.Snapshots(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, uint(3), snaps[0].UserID)
}

func TestHub_LastClientLeavingFlushesDraft(t *testing.T) {
	h, deps := newTestHub(t)
	c := newTestClient(h, 1)
	register(h, c, seed(0))
	next(t, c)
	drawLine(t, h, c, domain.Point{X: 10, Y: 10}, domain.Point{X: 20, Y: 20})
	next(t, c)

	flushed := make(chan struct{})
	deps.On("Flush", mock.Anything, uint(1), mock.Anything, uint(1)).
		Run(func(mock.Arguments) { close(flushed) }).
		Return(nil).Once()

	h.dispatch(HubMessage{Type: msgUnregister, UserID: 1, Client: c})
	_, open := <-c.send
	assert.False(t, open)
	assert.Empty(t, h.sessions)

	select {
	case <-flushed:
	case <-time.After(time.Second):
		t.Fatal("草稿没有保存")
	}
}

func TestHub_SwitchingProjectReloadsSession(t *testing.T) {
	h, _ := newTestHub(t)
	a, b := newTestClient(h, 1), newTestClient(h, 1)
	register(h, a, seed(0))
	next(t, a)

	s := seed(0)
	s.ProjectID = "p-5"
	register(h, b, s)

	assert.Equal(t, "p-5", next(t, a)["project_id"])
	assert.Equal(t, "p-5", next(t, b)["project_id"])
	assert.Equal(t, "p-5", h.sessions[1].projectID)
}

func TestHub_StaleSaveDoesNotRebindSwitchedSession(t *testing.T) {
	h, deps := newTestHub(t)
	a := newTestClient(h, 1)
	register(h, a, seed(0))
	next(t, a)
	drawLine(t, h, a, domain.Point{X: 10, Y: 10}, domain.Point{X: 20, Y: 20})
	next(t, a)

	deps.On("Create", mock.Anything, uint(1), mock.Anything, mock.Anything).
		Return(&domain.Project{ID: "p-1", StrokeCount: 1}, nil).Once()
	deps.On("Flush", mock.Anything, uint(1), mock.Anything, uint(1)).Return(nil).Maybe()
	send(t, h, a, dto.ClientMessage{Type: dto.MsgSave})

	// 保存结果回到 Hub 之前切换到另一幅画作
	b := newTestClient(h, 1)
	s := seed(0)
	s.ProjectID = "p-2"
	register(h, b, s)
	assert.Equal(t, "p-2", next(t, a)["project_id"])
	assert.Equal(t, "p-2", next(t, b)["project_id"])

	awaitSaved(t, h)
	assert.Equal(t, "p-2", h.sessions[1].projectID)
	assert.False(t, h.sessions[1].saving)
	assertNoMessage(t, a)
	assertNoMessage(t, b)

	deps.On("Update", mock.Anything, uint(1), "p-2", mock.Anything).
		Return(&domain.Project{ID: "p-2"}, nil).Once()
	send(t, h, b, dto.ClientMessage{Type: dto.MsgSave})
	awaitSaved(t, h)
	assert.Equal(t, "p-2", next(t, a)["project_id"])
	assert.Equal(t, "p-2", next(t, b)["project_id"])
	deps.AssertExpectations(t)
	deps.AssertNumberOfCalls(t, "Create", 1)
}

func TestHub_StaleSaveAfterSessionReopened(t *testing.T) {
	h, deps := newTestHub(t)
	a := newTestClient(h, 1)
	register(h, a, seed(0))
	next(t, a)
	drawLine(t, h, a, domain.Point{X: 10, Y: 10}, domain.Point{X: 20, Y: 20})
	next(t, a)

	deps.On("Create", mock.Anything, uint(1), mock.Anything, mock.Anything).
		Return(&domain.Project{ID: "p-1"}, nil).Once()
	deps.On("Flush", mock.Anything, uint(1), mock.Anything, uint(1)).Return(nil).Maybe()
	send(t, h, a, dto.ClientMessage{Type: dto.MsgSave})
	h.dispatch(HubMessage{Type: msgUnregister, UserID: 1, Client: a})

	b := newTestClient(h, 1)
	register(h, b, seed(0))
	next(t, b)

	awaitSaved(t, h)
	assert.Empty(t, h.sessions[1].projectID)
	assertNoMessage(t, b)
}

func TestHub_UnchangedDraftIsNotFlushed(t *testing.T) {
	h, deps := newTestHub(t)
	c := newTestClient(h, 1)
	s := seed(0)
	s.Version = 5
	register(h, c, s)
	next(t, c)

	h.dispatch(HubMessage{Type: msgUnregister, UserID: 1, Client: c})
	assert.Empty(t, h.sessions)
	deps.AssertNotCalled(t, "Flush", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHub_FlushedVersionIsNotFlushedTwice(t *testing.T) {
	h, deps := newTestHub(t)
	c := newTestClient(h, 1)
	register(h, c, seed(0))
	next(t, c)
	drawLine(t, h, c, domain.Point{X: 10, Y: 10}, domain.Point{X: 20, Y: 20})
	next(t, c)

	flushed := make(chan struct{}, 2)
	deps.On("Flush", mock.Anything, uint(1), mock.Anything, uint(1)).
		Run(func(mock.Arguments) { flushed <- struct{}{} }).
		Return(nil).Once()

	s := h.sessions[1]
	require.True(t, s.needsFlush())
	h.flushDraft(s)
	assert.False(t, s.needsFlush())
	select {
	case <-flushed:
	case <-time.After(time.Second):
		t.Fatal("草稿没有保存")
	}

	h.dispatch(HubMessage{Type: msgUnregister, UserID: 1, Client: c})
	assert.Empty(t, h.sessions)
	deps.AssertNumberOfCalls(t, "Flush", 1)
}

func TestDroppable(t *testing.T) {
	assert.True(t, droppable([]byte(`{"type":"extend","point":{"x":1,"y":2}}`)))
	assert.False(t, droppable([]byte(`{"type":"commit"}`)))
	assert.False(t, droppable([]byte(`{"type":"save"}`)))
	assert.False(t, droppable([]byte(`not json`)))
}

func TestHub_DeliverWaitsForRoom(t *testing.T) {
	h, _ := newTestHub(t)
	for i := 0; i < cap(h.messageChan); i++ {
		require.True(t, h.QueueMessage(HubMessage{Type: msgProgress}))
	}
	assert.False(t, h.QueueMessage(HubMessage{Type: msgProgress}))

	delivered := make(chan bool, 1)
	go func() { delivered <- h.deliver(HubMessage{Type: msgUnregister, UserID: 1}) }()

	select {
	case <-delivered:
		t.Fatal("队列已满时不应投递成功")
	case <-time.After(50 * time.Millisecond):
	}
	<-h.messageChan
	select {
	case ok := <-delivered:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("腾出空间后应投递成功")
	}
}

func TestHub_DeliverReturnsWhenStopped(t *testing.T) {
	h, _ := newTestHub(t)
	for i := 0; i < cap(h.messageChan); i++ {
		require.True(t, h.QueueMessage(HubMessage{Type: msgProgress}))
	}
	close(h.done)
	assert.False(t, h.deliver(HubMessage{Type: msgUnregister, UserID: 1}))
}
