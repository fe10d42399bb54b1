package permission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livenotify-srv/internal/model"
	"livenotify-srv/internal/storage"
	"livenotify-srv/pkg/log"
)

func newStore(t *testing.T) (*Store, storage.Store) {
	t.Helper()
	st := storage.NewFileStore(t.TempDir(), nil, nil, log.NewNop())
	return New(st, log.NewNop()), st
}

func TestStore_MemberBans(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	require.NoError(t, s.AddAdmin(ctx, "1"))

	banned, err := s.BanMember(ctx, "1", "2", "3")
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3"}, banned)
	assert.False(t, s.IsMemberBanned("1"))
	assert.True(t, s.IsMemberBanned("2"))

	_, err = s.BanMember(ctx, "1")
	assert.ErrorIs(t, err, ErrAdminImmune)

	require.NoError(t, s.UnbanMember(ctx, "2"))
	assert.False(t, s.IsMemberBanned("2"))
	assert.True(t, s.IsMemberBanned("3"))
}

func TestStore_CanNotify(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	assert.True(t, s.CanNotify("100", model.FeatureLiveNotify))

	added, err := s.BanGroup(ctx, "100")
	require.NoError(t, err)
	assert.True(t, added)
	added, err = s.BanGroup(ctx, "100")
	require.NoError(t, err)
	assert.False(t, added)
	assert.False(t, s.CanNotify("100", model.FeatureLiveNotify))
	require.NoError(t, s.UnbanGroup(ctx, "100"))
	assert.True(t, s.CanNotify("100", model.FeatureLiveNotify))

	require.NoError(t, s.DisableBot(ctx, "100"))
	assert.True(t, s.IsGroupDisabled("100"))
	assert.False(t, s.CanNotify("100", model.FeatureLiveNotify))
	require.NoError(t, s.EnableBot(ctx, "100"))

	require.NoError(t, s.SetFeature(ctx, "100", SwitchDisable, model.FeatureLiveNotify))
	assert.True(t, s.IsFeatureDisabled("100", model.FeatureLiveNotify))
	assert.False(t, s.CanNotify("100", model.FeatureLiveNotify))
	assert.True(t, s.CanNotify("100", "Dice"))

	require.NoError(t, s.SetFeature(ctx, "100", SwitchEnable, model.FeatureLiveNotify))
	assert.Equal(t, model.FeatureSwitch{Enabled: []string{"LiveNotify"}, Disabled: []string{}}, s.Features("100"))
	require.NoError(t, s.SetFeature(ctx, "100", SwitchReset, model.FeatureLiveNotify))
	assert.Equal(t, model.FeatureSwitch{Enabled: []string{}, Disabled: []string{}}, s.Features("100"))

	assert.ErrorIs(t, s.SetFeature(ctx, "100", "toggle", "x"), ErrUnknownSwitch)
}

func TestStore_PersistAndLoad(t *testing.T) {
	ctx := context.Background()
	s, st := newStore(t)
	require.NoError(t, s.AddAdmin(ctx, "9"))
	_, err := s.BanGroup(ctx, "100")
	require.NoError(t, err)
	require.NoError(t, s.SetFeature(ctx, "200", SwitchDisable, model.FeatureLiveNotify))

	var doc model.Permission
	found, err := st.Load(ctx, "BotConfig", "permission.json", &doc)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"9"}, doc.Admins)
	assert.Equal(t, []string{"100"}, doc.GroupBlackList)
	assert.Equal(t, []string{}, doc.MemberBlackList)

	loaded := New(st, log.NewNop())
	require.NoError(t, loaded.Load(ctx))
	assert.True(t, loaded.IsAdmin("9"))
	assert.True(t, loaded.IsGroupBanned("100"))
	assert.True(t, loaded.IsFeatureDisabled("200", model.FeatureLiveNotify))
}

func TestStore_LoadEmpty(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, model.Permission{
		Admins: []string{}, GroupBlackList: []string{}, GroupDisabledList: []string{}, MemberBlackList: []string{},
	}, s.Snapshot())
}
