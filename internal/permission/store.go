// Package permission holds the bot-wide access lists (administrators, banned
// members and groups, groups where the bot is off) and the per-group feature
// switches.
package permission

import (
	"context"
	"fmt"
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"livenotify-srv/internal/model"
	"livenotify-srv/internal/storage"
	"livenotify-srv/pkg/log"
)

const (
	componentBot    = "BotConfig"
	filePermission  = "permission.json"
	componentSwitch = "PluginSwitch"
	fileSwitch      = "config.json"
)

// SwitchOp is a feature switch operation.
type SwitchOp string

const (
	SwitchEnable  SwitchOp = "enable"
	SwitchDisable SwitchOp = "disable"
	SwitchReset   SwitchOp = "reset"
)

type switches struct {
	enabled  mapset.Set[string]
	disabled mapset.Set[string]
}

func newSwitches() *switches {
	return &switches{
		enabled:  mapset.NewThreadUnsafeSet[string](),
		disabled: mapset.NewThreadUnsafeSet[string](),
	}
}

// Store is safe for concurrent use. Every mutation is persisted before it returns.
type Store struct {
	saveMu         sync.Mutex
	mu             sync.RWMutex
	admins         mapset.Set[string]
	groupBlackList mapset.Set[string]
	groupDisabled  mapset.Set[string]
	memberBlack    mapset.Set[string]
	features       map[string]*switches

	storage storage.Store
	logger  log.Logger
}

func New(st storage.Store, logger log.Logger) *Store {
	return &Store{
		admins:         mapset.NewThreadUnsafeSet[string](),
		groupBlackList: mapset.NewThreadUnsafeSet[string](),
		groupDisabled:  mapset.NewThreadUnsafeSet[string](),
		memberBlack:    mapset.NewThreadUnsafeSet[string](),
		features:       make(map[string]*switches),
		storage:        st,
		logger:         logger,
	}
}

// Load replaces the lists and switches by the persisted documents.
func (s *Store) Load(ctx context.Context) error {
	var p model.Permission
	if _, err := s.storage.Load(ctx, componentBot, filePermission, &p); err != nil {
		return fmt.Errorf("permission.Store.Load: %w", err)
	}
	sw := map[string]model.FeatureSwitch{}
	if _, err := s.storage.Load(ctx, componentSwitch, fileSwitch, &sw); err != nil {
		return fmt.Errorf("permission.Store.Load: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins = mapset.NewThreadUnsafeSet(p.Admins...)
	s.groupBlackList = mapset.NewThreadUnsafeSet(p.GroupBlackList...)
	s.groupDisabled = mapset.NewThreadUnsafeSet(p.GroupDisabledList...)
	s.memberBlack = mapset.NewThreadUnsafeSet(p.MemberBlackList...)
	s.features = make(map[string]*switches, len(sw))
	for group, fs := range sw {
		s.features[group] = &switches{
			enabled:  mapset.NewThreadUnsafeSet(fs.Enabled...),
			disabled: mapset.NewThreadUnsafeSet(fs.Disabled...),
		}
	}
	return nil
}

func (s *Store) IsAdmin(member string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admins.Contains(member)
}

func (s *Store) IsMemberBanned(member string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.memberBlack.Contains(member)
}

func (s *Store) IsGroupBanned(group string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.groupBlackList.Contains(group)
}

func (s *Store) IsGroupDisabled(group string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.groupDisabled.Contains(group)
}

// IsFeatureDisabled reports whether feature was explicitly disabled in group.
// Features are on unless disabled.
func (s *Store) IsFeatureDisabled(group, feature string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sw := s.features[group]
	return sw != nil && sw.disabled.Contains(feature)
}

// CanNotify reports whether group may receive pushes of feature: it is not
// banned, the bot is on there and the feature is not disabled.
func (s *Store) CanNotify(group, feature string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.groupBlackList.Contains(group) || s.groupDisabled.Contains(group) {
		return false
	}
	sw := s.features[group]
	return sw == nil || !sw.disabled.Contains(feature)
}

// AddAdmin grants administrator rights to member.
func (s *Store) AddAdmin(ctx context.Context, member string) error {
	if member == "" {
		return ErrEmptyIdentifier
	}
	s.mu.Lock()
	s.admins.Add(member)
	s.memberBlack.Remove(member)
	s.mu.Unlock()
	return s.savePermission(ctx)
}

// BanMember blacklists the given members, skipping administrators. It returns
// the members actually banned.
func (s *Store) BanMember(ctx context.Context, members ...string) ([]string, error) {
	s.mu.Lock()
	banned := make([]string, 0, len(members))
	immune := false
	for _, m := range members {
		if m == "" {
			continue
		}
		if s.admins.Contains(m) {
			immune = true
			continue
		}
		s.memberBlack.Add(m)
		banned = append(banned, m)
	}
	s.mu.Unlock()

	if len(banned) == 0 {
		if immune {
			return banned, ErrAdminImmune
		}
		return banned, nil
	}
	return banned, s.savePermission(ctx)
}

func (s *Store) UnbanMember(ctx context.Context, members ...string) error {
	s.mu.Lock()
	for _, m := range members {
		s.memberBlack.Remove(m)
	}
	s.mu.Unlock()
	return s.savePermission(ctx)
}

// BanGroup blacklists group and reports whether it was not banned before.
func (s *Store) BanGroup(ctx context.Context, group string) (bool, error) {
	if group == "" {
		return false, ErrEmptyIdentifier
	}
	s.mu.Lock()
	added := s.groupBlackList.Add(group)
	s.mu.Unlock()
	if !added {
		return false, nil
	}
	return true, s.savePermission(ctx)
}

func (s *Store) UnbanGroup(ctx context.Context, group string) error {
	s.mu.Lock()
	s.groupBlackList.Remove(group)
	s.mu.Unlock()
	return s.savePermission(ctx)
}

// EnableBot turns the bot back on in group.
func (s *Store) EnableBot(ctx context.Context, group string) error {
	s.mu.Lock()
	s.groupDisabled.Remove(group)
	s.mu.Unlock()
	return s.savePermission(ctx)
}

// DisableBot turns the bot off in group.
func (s *Store) DisableBot(ctx context.Context, group string) error {
	if group == "" {
		return ErrEmptyIdentifier
	}
	s.mu.Lock()
	s.groupDisabled.Add(group)
	s.mu.Unlock()
	return s.savePermission(ctx)
}

// SetFeature applies op to every feature in group.
func (s *Store) SetFeature(ctx context.Context, group string, op SwitchOp, features ...string) error {
	if op != SwitchEnable && op != SwitchDisable && op != SwitchReset {
		return fmt.Errorf("%w: %q", ErrUnknownSwitch, op)
	}

	s.mu.Lock()
	sw := s.features[group]
	if sw == nil {
		sw = newSwitches()
		s.features[group] = sw
	}
	for _, f := range features {
		switch op {
		case SwitchEnable:
			sw.enabled.Add(f)
			sw.disabled.Remove(f)
		case SwitchDisable:
			sw.disabled.Add(f)
			sw.enabled.Remove(f)
		case SwitchReset:
			sw.enabled.Remove(f)
			sw.disabled.Remove(f)
		}
	}
	s.mu.Unlock()
	return s.saveSwitches(ctx)
}

// Features returns the switches of group.
func (s *Store) Features(group string) model.FeatureSwitch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sw := s.features[group]
	if sw == nil {
		return model.FeatureSwitch{Enabled: []string{}, Disabled: []string{}}
	}
	return model.FeatureSwitch{Enabled: sorted(sw.enabled), Disabled: sorted(sw.disabled)}
}

// Snapshot returns the permission document.
func (s *Store) Snapshot() model.Permission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Permission{
		Admins:            sorted(s.admins),
		GroupBlackList:    sorted(s.groupBlackList),
		GroupDisabledList: sorted(s.groupDisabled),
		MemberBlackList:   sorted(s.memberBlack),
	}
}

func (s *Store) savePermission(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if err := s.storage.Save(ctx, componentBot, filePermission, s.Snapshot()); err != nil {
		return fmt.Errorf("permission.Store.savePermission: %w", err)
	}
	return nil
}

func (s *Store) saveSwitches(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	doc := make(map[string]model.FeatureSwitch, len(s.features))
	for group, sw := range s.features {
		doc[group] = model.FeatureSwitch{Enabled: sorted(sw.enabled), Disabled: sorted(sw.disabled)}
	}
	s.mu.RUnlock()

	if err := s.storage.Save(ctx, componentSwitch, fileSwitch, doc); err != nil {
		return fmt.Errorf("permission.Store.saveSwitches: %w", err)
	}
	return nil
}

func sorted(set mapset.Set[string]) []string {
	out := set.ToSlice()
	sort.Strings(out)
	return out
}
