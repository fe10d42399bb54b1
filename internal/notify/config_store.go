package notify

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"livenotify-srv/internal/model"
	"livenotify-srv/internal/storage"
	"livenotify-srv/pkg/log"
)

const (
	component  = "LiveNotify"
	configFile = "liveGroupConfig.json"
)

// ConfigStore holds the per-group notification toggles. Groups without an
// entry use DefaultGroupNotifyConfig.
type ConfigStore struct {
	saveMu  sync.Mutex
	mu      sync.RWMutex
	configs map[string]model.GroupNotifyConfig

	storage storage.Store
	logger  log.Logger
}

func NewConfigStore(st storage.Store, logger log.Logger) *ConfigStore {
	return &ConfigStore{
		configs: make(map[string]model.GroupNotifyConfig),
		storage: st,
		logger:  logger,
	}
}

func (s *ConfigStore) Load(ctx context.Context) error {
	configs := map[string]model.GroupNotifyConfig{}
	if _, err := s.storage.Load(ctx, component, configFile, &configs); err != nil {
		return fmt.Errorf("notify.ConfigStore.Load: %w", err)
	}
	if configs == nil {
		configs = map[string]model.GroupNotifyConfig{}
	}
	s.mu.Lock()
	s.configs = configs
	s.mu.Unlock()
	return nil
}

// Get returns the config of group.
func (s *ConfigStore) Get(group string) model.GroupNotifyConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cfg, ok := s.configs[group]; ok {
		return cfg
	}
	return model.DefaultGroupNotifyConfig()
}

// Set updates one toggle of group and persists the configs. It returns the
// new config of the group.
func (s *ConfigStore) Set(ctx context.Context, group string, key model.NotifyConfigKey, value bool) (model.GroupNotifyConfig, error) {
	s.mu.Lock()
	cfg, ok := s.configs[group]
	if !ok {
		cfg = model.DefaultGroupNotifyConfig()
	}
	if !cfg.Set(key, value) {
		s.mu.Unlock()
		return cfg, fmt.Errorf("%w: %q", ErrUnknownConfigKey, key)
	}
	s.configs[group] = cfg
	s.mu.Unlock()

	if err := s.save(ctx); err != nil {
		return cfg, fmt.Errorf("notify.ConfigStore.Set: %w", err)
	}
	return cfg, nil
}

// Remove forgets the config of group.
func (s *ConfigStore) Remove(ctx context.Context, group string) (bool, error) {
	s.mu.Lock()
	if _, ok := s.configs[group]; !ok {
		s.mu.Unlock()
		return false, nil
	}
	delete(s.configs, group)
	s.mu.Unlock()

	if err := s.save(ctx); err != nil {
		return true, fmt.Errorf("notify.ConfigStore.Remove: %w", err)
	}
	return true, nil
}

// save writes the current configs. The snapshot is taken under saveMu so
// that concurrent writers persist in order.
func (s *ConfigStore) save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	snapshot := maps.Clone(s.configs)
	s.mu.RUnlock()
	return s.storage.Save(ctx, component, configFile, snapshot)
}
