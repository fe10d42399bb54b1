package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livenotify-srv/internal/middleware"
	"livenotify-srv/internal/model"
	"livenotify-srv/internal/moderation/usecase"
	"livenotify-srv/internal/permission"
	"livenotify-srv/internal/storage"
	"livenotify-srv/pkg/jwt"
	"livenotify-srv/pkg/log"
)

type words map[string]bool

func (w words) IsSensitive(text string) bool { return w[text] }

type env struct {
	router *gin.Engine
	perms  *permission.Store
	token  string
}

func newEnv(t *testing.T) env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st := storage.NewFileStore(t.TempDir(), nil, nil, log.NewNop())
	perms := permission.New(st, log.NewNop())
	uc := usecase.New(log.NewNop(), st, perms, words{"bad": true}, nil, nil, nil)

	mgr, err := jwt.New(jwt.Config{SecretKey: "0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)
	token, err := mgr.GenerateToken("ops", jwt.RoleAdmin)
	require.NoError(t, err)

	mw := middleware.New(log.NewNop(), mgr, nil)
	r := gin.New()
	New(uc, perms, log.NewNop()).RegisterRoutes(r.Group("/moderation", mw.Auth()), mw)
	return env{router: r, perms: perms, token: token}
}

func (e env) do(t *testing.T, method, path string, body any) (int, json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/moderation"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp.Data
}

func TestMemberBans(t *testing.T) {
	e := newEnv(t)

	code, _ := e.do(t, http.MethodPost, "/admins", map[string]string{"member": "1"})
	require.Equal(t, http.StatusOK, code)

	code, _ = e.do(t, http.MethodPost, "/members/ban", map[string]any{"members": []string{"1"}})
	assert.Equal(t, http.StatusConflict, code)

	code, data := e.do(t, http.MethodPost, "/members/ban", map[string]any{"members": []string{"1", "2"}})
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"banned":["2"]}`, string(data))

	code, _ = e.do(t, http.MethodPost, "/members/unban", map[string]any{"members": []string{"2"}})
	require.Equal(t, http.StatusOK, code)
	assert.False(t, e.perms.IsMemberBanned("2"))

	code, _ = e.do(t, http.MethodPost, "/members/ban", map[string]any{"members": []string{}})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGroupSwitches(t *testing.T) {
	e := newEnv(t)

	code, _ := e.do(t, http.MethodPut, "/groups/100/bot", map[string]any{"enabled": false})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, e.perms.IsGroupDisabled("100"))

	code, _ = e.do(t, http.MethodPut, "/groups/100/bot", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = e.do(t, http.MethodPut, "/groups/100/features", map[string]any{"op": "flip", "features": []string{model.FeatureLiveNotify}})
	assert.Equal(t, http.StatusBadRequest, code)

	code, data := e.do(t, http.MethodPut, "/groups/100/features", map[string]any{"op": "disable", "features": []string{model.FeatureLiveNotify}})
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"enabled":[],"disabled":["LiveNotify"]}`, string(data))
	assert.True(t, e.perms.IsFeatureDisabled("100", model.FeatureLiveNotify))
}

func TestViolationsEscalate(t *testing.T) {
	e := newEnv(t)

	for i := 0; i < 3; i++ {
		code, _ := e.do(t, http.MethodPost, "/violations", map[string]string{"group_id": "100"})
		require.Equal(t, http.StatusOK, code)
	}
	assert.True(t, e.perms.IsGroupBanned("100"))

	code, data := e.do(t, http.MethodGet, "/violations", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"100":3}`, string(data))

	code, _ = e.do(t, http.MethodDelete, "/groups/100/ban", nil)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, e.perms.IsGroupBanned("100"))

	code, _ = e.do(t, http.MethodPost, "/violations", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, data = e.do(t, http.MethodPost, "/messages/check", map[string]string{"group_id": "200", "member_id": "9", "text": "bad"})
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"sensitive":true}`, string(data))
	assert.True(t, e.perms.IsMemberBanned("9"))

	code, data = e.do(t, http.MethodPost, "/groups/300/ban", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"group":"300","added":true}`, string(data))
}
