// Package roomstate owns what the service remembers about each streamer
// between polls: the last observed room state, the last known display name
// and whether the streamer is redacted.
package roomstate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"livenotify-srv/internal/model"
	"livenotify-srv/internal/safety"
	"livenotify-srv/internal/storage"
	"livenotify-srv/pkg/log"
)

const (
	componentLiveNotify = "LiveNotify"
	componentCache      = "Cache"

	fileStates    = "liveStateCache.json"
	fileSensitive = "sensitiveLivers.json"
	fileNames     = "UID2Name.json"
)

// Store is safe for concurrent use. Every container is non-nil.
type Store struct {
	// saveMu orders Persist calls so a stale snapshot never lands last.
	saveMu    sync.Mutex
	mu        sync.RWMutex
	states    map[string]model.RoomState
	names     map[string]string
	sensitive mapset.Set[string]

	statesDirty    bool
	namesDirty     bool
	sensitiveDirty bool

	storage storage.Store
	logger  log.Logger
}

// New returns an empty store persisting through st.
func New(st storage.Store, logger log.Logger) *Store {
	return &Store{
		states:    make(map[string]model.RoomState),
		names:     make(map[string]string),
		sensitive: mapset.NewThreadUnsafeSet[string](),
		storage:   st,
		logger:    logger,
	}
}

// Load replaces the in-memory state by what is persisted. Missing documents leave
// the corresponding container empty.
func (s *Store) Load(ctx context.Context) error {
	states := make(map[string]model.RoomState)
	if _, err := s.storage.Load(ctx, componentLiveNotify, fileStates, &states); err != nil {
		return fmt.Errorf("roomstate.Store.Load: %w", err)
	}
	names := make(map[string]string)
	if _, err := s.storage.Load(ctx, componentCache, fileNames, &names); err != nil {
		return fmt.Errorf("roomstate.Store.Load: %w", err)
	}
	var sensitive []string
	if _, err := s.storage.Load(ctx, componentLiveNotify, fileSensitive, &sensitive); err != nil {
		return fmt.Errorf("roomstate.Store.Load: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if states == nil {
		states = make(map[string]model.RoomState)
	}
	if names == nil {
		names = make(map[string]string)
	}
	s.states = states
	s.names = names
	s.sensitive = mapset.NewThreadUnsafeSet(sensitive...)
	s.statesDirty, s.namesDirty, s.sensitiveDirty = false, false, false
	return nil
}

// Persist saves the documents that changed since the last successful save.
func (s *Store) Persist(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	saveStates, saveNames, saveSensitive := s.statesDirty, s.namesDirty, s.sensitiveDirty
	var (
		states    map[string]model.RoomState
		names     map[string]string
		sensitive []string
	)
	if saveStates {
		states = make(map[string]model.RoomState, len(s.states))
		for k, v := range s.states {
			states[k] = v
		}
	}
	if saveNames {
		names = make(map[string]string, len(s.names))
		for k, v := range s.names {
			names[k] = v
		}
	}
	if saveSensitive {
		sensitive = sortedSlice(s.sensitive)
	}
	s.statesDirty, s.namesDirty, s.sensitiveDirty = false, false, false
	s.mu.Unlock()

	var errs []error
	if saveStates {
		if err := s.storage.Save(ctx, componentLiveNotify, fileStates, states); err != nil {
			errs = append(errs, err)
			s.markDirty(&s.statesDirty)
		}
	}
	if saveNames {
		if err := s.storage.Save(ctx, componentCache, fileNames, names); err != nil {
			errs = append(errs, err)
			s.markDirty(&s.namesDirty)
		}
	}
	if saveSensitive {
		if err := s.storage.Save(ctx, componentLiveNotify, fileSensitive, sensitive); err != nil {
			errs = append(errs, err)
			s.markDirty(&s.sensitiveDirty)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("roomstate.Store.Persist: %w", err)
	}
	return nil
}

func (s *Store) markDirty(flag *bool) {
	s.mu.Lock()
	*flag = true
	s.mu.Unlock()
}

// Previous returns the stored state of uid, or the zero baseline carrying
// title when the streamer has never been observed.
func (s *Store) Previous(uid, title string) model.RoomState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.states[uid]; ok {
		return st
	}
	return model.Baseline(title)
}

// Get returns the stored state of uid.
func (s *Store) Get(uid string) (model.RoomState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[uid]
	return st, ok
}

// Update replaces the stored state of uid by the observation. An offline room
// is stored without a start timestamp so that its stop is reported once.
func (s *Store) Update(uid string, next model.RoomState) {
	if next.LiveStatus != model.Live {
		next.LiveStartTimestamp = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.states[uid]; ok && prev == next {
		return
	}
	s.states[uid] = next
	s.statesDirty = true
}

// RememberName caches the display name of uid.
func (s *Store) RememberName(uid, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.names[uid] == name {
		return
	}
	s.names[uid] = name
	s.namesDirty = true
}

// DisplayName renders uid for humans: "UID: 123(name)" when a safe name is
// known, "UID: 123" otherwise.
func (s *Store) DisplayName(uid string, checker safety.Checker) string {
	s.mu.RLock()
	name, ok := s.names[uid]
	redacted := s.sensitive.Contains(uid)
	s.mu.RUnlock()

	if !ok || redacted || (checker != nil && checker.IsSensitive(name)) {
		return Label(uid)
	}
	return fmt.Sprintf("UID: %s(%s)", uid, name)
}

// Label is the opaque reference used for redacted streamers.
func Label(uid string) string {
	return "UID: " + uid
}

// MarkSensitive adds uid to the redacted set and reports whether it was new.
func (s *Store) MarkSensitive(uid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := s.sensitive.Add(uid)
	if added {
		s.sensitiveDirty = true
	}
	return added
}

func (s *Store) IsSensitive(uid string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sensitive.Contains(uid)
}

// ClearSensitive lifts the redaction of uid.
func (s *Store) ClearSensitive(uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sensitive.Contains(uid) {
		return ErrNotSensitive
	}
	s.sensitive.Remove(uid)
	s.sensitiveDirty = true
	return nil
}

// Sensitive returns the redacted streamers, sorted.
func (s *Store) Sensitive() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedSlice(s.sensitive)
}

func sortedSlice(set mapset.Set[string]) []string {
	out := set.ToSlice()
	sort.Strings(out)
	return out
}
