package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"livenotify-srv/internal/livenotify"
	"livenotify-srv/internal/middleware"
	"livenotify-srv/internal/model"
	"livenotify-srv/pkg/jwt"
	"livenotify-srv/pkg/log"
	"livenotify-srv/pkg/onebot"
)

type mockUseCase struct{ mock.Mock }

func (m *mockUseCase) Load(ctx context.Context) error    { return m.Called().Error(0) }
func (m *mockUseCase) Persist(ctx context.Context) error { return m.Called().Error(0) }
func (m *mockUseCase) SubscribedEntities() []string      { return m.Called().Get(0).([]string) }
func (m *mockUseCase) HandleRoom(ctx context.Context, s onebot.Sender, info model.RoomInfo) livenotify.RoomEvent {
	return m.Called(info).Get(0).(livenotify.RoomEvent)
}
func (m *mockUseCase) Subscribe(ctx context.Context, group string, uids []string) (livenotify.Reply, error) {
	args := m.Called(group, uids)
	return args.Get(0).(livenotify.Reply), args.Error(1)
}
func (m *mockUseCase) Unsubscribe(ctx context.Context, group string, uids []string) (livenotify.Reply, error) {
	args := m.Called(group, uids)
	return args.Get(0).(livenotify.Reply), args.Error(1)
}
func (m *mockUseCase) SetGroupConfig(ctx context.Context, group, key, value string) (livenotify.Reply, error) {
	args := m.Called(group, key, value)
	return args.Get(0).(livenotify.Reply), args.Error(1)
}
func (m *mockUseCase) GroupConfig(ctx context.Context, group string) (livenotify.Reply, error) {
	args := m.Called(group)
	return args.Get(0).(livenotify.Reply), args.Error(1)
}
func (m *mockUseCase) ShowGroupSubscriptions(ctx context.Context, group string) (livenotify.Reply, error) {
	args := m.Called(group)
	return args.Get(0).(livenotify.Reply), args.Error(1)
}
func (m *mockUseCase) ShowEntitySubscriptions(ctx context.Context, uid string) (livenotify.Reply, error) {
	args := m.Called(uid)
	return args.Get(0).(livenotify.Reply), args.Error(1)
}
func (m *mockUseCase) ClearGroup(ctx context.Context, group string) (livenotify.Reply, error) {
	args := m.Called(group)
	return args.Get(0).(livenotify.Reply), args.Error(1)
}
func (m *mockUseCase) ClearEntity(ctx context.Context, uid string) (livenotify.Reply, error) {
	args := m.Called(uid)
	return args.Get(0).(livenotify.Reply), args.Error(1)
}
func (m *mockUseCase) RemoveGroup(ctx context.Context, group string) error {
	return m.Called(group).Error(0)
}
func (m *mockUseCase) SensitiveEntities() []string { return m.Called().Get(0).([]string) }
func (m *mockUseCase) ClearSensitive(ctx context.Context, uid string) error {
	return m.Called(uid).Error(0)
}

const secret = "0123456789abcdef0123456789abcdef"

type env struct {
	router *gin.Engine
	uc     *mockUseCase
	admin  string
	viewer string
}

func newEnv(t *testing.T) env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mgr, err := jwt.New(jwt.Config{SecretKey: secret})
	require.NoError(t, err)
	admin, err := mgr.GenerateToken("ops", jwt.RoleAdmin)
	require.NoError(t, err)
	viewer, err := mgr.GenerateToken("guest", jwt.RoleViewer)
	require.NoError(t, err)

	mw := middleware.New(log.NewNop(), mgr, nil)
	uc := &mockUseCase{}
	r := gin.New()
	New(uc, log.NewNop()).RegisterRoutes(r.Group("/api/v1/livenotify", mw.Auth()), mw)
	return env{router: r, uc: uc, admin: admin, viewer: viewer}
}

type respBody struct {
	ErrorCode int             `json:"error_code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
}

func (e env) do(t *testing.T, method, path, token string, body any) (int, respBody) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1/livenotify"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp respBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func TestSubscribeHandler(t *testing.T) {
	e := newEnv(t)
	e.uc.On("Subscribe", "100", []string{"200", "300(name)"}).
		Return(livenotify.Reply{Text: "已订阅以下1个主播: \nUID: 200", OK: true, UIDs: []string{"200"}}, nil)

	code, resp := e.do(t, http.MethodPost, "/groups/100/subscriptions", e.admin,
		map[string]any{"uids": []string{"200"}, "text": "300(name)"})
	require.Equal(t, http.StatusOK, code)

	var data replyResp
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.True(t, data.OK)
	assert.Equal(t, []string{"200"}, data.UIDs)
	e.uc.AssertExpectations(t)
}

func TestSubscribeHandler_Rejections(t *testing.T) {
	e := newEnv(t)

	code, _ := e.do(t, http.MethodPost, "/groups/100/subscriptions", e.viewer, map[string]any{"uids": []string{"1"}})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = e.do(t, http.MethodPost, "/groups/100/subscriptions", e.admin, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)

	e.uc.On("Subscribe", "100", []string{"abc"}).
		Return(livenotify.Reply{Text: "无法识别要操作的主播UID，请正确输入！"}, fmt.Errorf("wrapped: %w", livenotify.ErrNoUIDs))
	code, resp := e.do(t, http.MethodPost, "/groups/100/subscriptions", e.admin, map[string]any{"text": "abc"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "无法识别要操作的主播UID，请正确输入！", resp.Message)
}

func TestConfigHandlers(t *testing.T) {
	e := newEnv(t)
	cfg := model.DefaultGroupNotifyConfig()
	e.uc.On("GroupConfig", "100").Return(livenotify.Reply{Text: "直播通知配置", OK: true, Config: &cfg}, nil)
	e.uc.On("SetGroupConfig", "100", "下播通知", "关").Return(livenotify.Reply{Text: "设置成功！", OK: true, Config: &cfg}, nil)

	code, resp := e.do(t, http.MethodGet, "/groups/100/config", e.viewer, nil)
	require.Equal(t, http.StatusOK, code)
	var data replyResp
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.NotNil(t, data.Config)
	assert.True(t, data.Config.ShowCover)

	code, _ = e.do(t, http.MethodPut, "/groups/100/config", e.admin, map[string]string{"key": "下播通知"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = e.do(t, http.MethodPut, "/groups/100/config", e.admin, map[string]string{"key": "下播通知", "value": "关"})
	assert.Equal(t, http.StatusOK, code)
	e.uc.AssertExpectations(t)
}

func TestStreamerHandlers(t *testing.T) {
	e := newEnv(t)
	e.uc.On("ShowEntitySubscriptions", "200").Return(livenotify.Reply{OK: true, Groups: []string{"100"}}, nil)
	e.uc.On("ClearEntity", "200").Return(livenotify.Reply{OK: true, Groups: []string{"100"}}, nil)
	e.uc.On("SensitiveEntities").Return([]string{"201"})
	e.uc.On("ClearSensitive", "999").Return(livenotify.ErrStreamerNotRedacted)

	code, _ := e.do(t, http.MethodGet, "/streamers/200/subscriptions", e.viewer, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = e.do(t, http.MethodDelete, "/streamers/200/subscriptions", e.admin, nil)
	assert.Equal(t, http.StatusOK, code)

	code, resp := e.do(t, http.MethodGet, "/sensitive-streamers", e.viewer, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"uids":["201"]}`, string(resp.Data))

	code, _ = e.do(t, http.MethodDelete, "/sensitive-streamers/999", e.admin, nil)
	assert.Equal(t, http.StatusNotFound, code)
	e.uc.AssertExpectations(t)
}
