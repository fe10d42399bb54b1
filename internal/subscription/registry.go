// Package subscription keeps the many-to-many binding between streamers and
// the chat groups that follow them.
package subscription

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
	component = "LiveNotify"
	file      = "liveUIDBind.json"
)

// Registry is safe for concurrent use; every read returns a copy.
// An entity is present only while at least one group follows it.
type Registry struct {
	// saveMu is held from snapshot to write so saves land in order.
	saveMu   sync.Mutex
	mu       sync.RWMutex
	byEntity map[string]mapset.Set[string]
	byGroup  map[string]mapset.Set[string]

	perGroupMax int
	globalMax   int

	storage storage.Store
	logger  log.Logger
}

// New returns an empty registry with the default caps.
func New(st storage.Store, logger log.Logger) *Registry {
	return NewWithCaps(st, logger, model.PerGroupMax, model.GlobalMax)
}

// NewWithCaps returns an empty registry with explicit caps.
func NewWithCaps(st storage.Store, logger log.Logger, perGroupMax, globalMax int) *Registry {
	return &Registry{
		byEntity:    make(map[string]mapset.Set[string]),
		byGroup:     make(map[string]mapset.Set[string]),
		perGroupMax: perGroupMax,
		globalMax:   globalMax,
		storage:     st,
		logger:      logger,
	}
}

// Subscribe binds group to the requested ids that it does not follow yet, in
// request order, up to what both caps still allow. It returns the ids that were
// accepted, which may be fewer than requested or none.
func (r *Registry) Subscribe(group string, ids []string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.byGroup[group]
	count := 0
	if current != nil {
		count = current.Cardinality()
	}
	limit := min(r.perGroupMax-count, r.globalMax-len(r.byEntity))
	if limit <= 0 {
		return []string{}
	}

	accepted := make([]string, 0, min(limit, len(ids)))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if len(accepted) == limit {
			break
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if current != nil && current.Contains(id) {
			continue
		}
		accepted = append(accepted, id)
	}

	for _, id := range accepted {
		r.bind(id, group)
	}
	return accepted
}

// Unsubscribe removes the requested bindings of group and returns the ids that
// were actually followed, in request order.
func (r *Registry) Unsubscribe(group string, ids []string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := []string{}
	current := r.byGroup[group]
	if current == nil {
		return removed
	}
	for _, id := range ids {
		if !current.Contains(id) {
			continue
		}
		r.unbind(id, group)
		removed = append(removed, id)
	}
	return removed
}

// ClearByEntity drops every group following id and returns them, sorted.
func (r *Registry) ClearByEntity(id string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	groups := r.byEntity[id]
	if groups == nil {
		return []string{}
	}
	out := sorted(groups)
	for _, g := range out {
		r.unbind(id, g)
	}
	return out
}

// ClearByGroup drops every streamer group follows and returns them, sorted.
func (r *Registry) ClearByGroup(group string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.byGroup[group]
	if ids == nil {
		return []string{}
	}
	out := sorted(ids)
	for _, id := range out {
		r.unbind(id, group)
	}
	return out
}

// GroupsFor returns the groups following id, sorted.
func (r *Registry) GroupsFor(id string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sorted(r.byEntity[id])
}

// EntitiesFor returns the streamers group follows, sorted.
func (r *Registry) EntitiesFor(group string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sorted(r.byGroup[group])
}

// SubscribedEntities returns every streamer with at least one follower, sorted.
func (r *Registry) SubscribedEntities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byEntity))
	for id := range r.byEntity {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Stats returns the number of followed streamers and of following groups.
func (r *Registry) Stats() (entities, groups int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byEntity), len(r.byGroup)
}

// Full reports which cap stops group from following anything new.
func (r *Registry) Full(group string) (groupFull, globalFull bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	if ids := r.byGroup[group]; ids != nil {
		count = ids.Cardinality()
	}
	return count >= r.perGroupMax, len(r.byEntity) >= r.globalMax
}

// Load replaces the registry content by the persisted bindings.
func (r *Registry) Load(ctx context.Context) error {
	doc := map[string][]string{}
	if _, err := r.storage.Load(ctx, component, file, &doc); err != nil {
		return fmt.Errorf("subscription.Registry.Load: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byEntity = make(map[string]mapset.Set[string], len(doc))
	r.byGroup = make(map[string]mapset.Set[string])
	for id, groups := range doc {
		for _, g := range groups {
			r.bind(id, g)
		}
	}
	return nil
}

// Save persists the bindings as a streamer to groups document.
func (r *Registry) Save(ctx context.Context) error {
	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	r.mu.RLock()
	doc := make(map[string][]string, len(r.byEntity))
	for id, groups := range r.byEntity {
		doc[id] = sorted(groups)
	}
	r.mu.RUnlock()

	if err := r.storage.Save(ctx, component, file, doc); err != nil {
		return fmt.Errorf("subscription.Registry.Save: %w", err)
	}
	return nil
}

func (r *Registry) bind(id, group string) {
	if r.byEntity[id] == nil {
		r.byEntity[id] = mapset.NewThreadUnsafeSet[string]()
	}
	r.byEntity[id].Add(group)
	if r.byGroup[group] == nil {
		r.byGroup[group] = mapset.NewThreadUnsafeSet[string]()
	}
	r.byGroup[group].Add(id)
}

func (r *Registry) unbind(id, group string) {
	if groups := r.byEntity[id]; groups != nil {
		groups.Remove(group)
		if groups.Cardinality() == 0 {
			delete(r.byEntity, id)
		}
	}
	if ids := r.byGroup[group]; ids != nil {
		ids.Remove(id)
		if ids.Cardinality() == 0 {
			delete(r.byGroup, group)
		}
	}
}

func sorted(set mapset.Set[string]) []string {
	if set == nil {
		return []string{}
	}
	out := set.ToSlice()
	sort.Strings(out)
	return out
}
