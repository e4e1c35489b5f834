package category

import (
	"hash/crc32"
	"strconv"
	"sync"

	"streamgate/internal/logger"
)

// Numeric bases per catalog kind. Ids land in [base, base+8999).
const (
	BaseLive   = 1000
	BaseVOD    = 2000
	BaseSeries = 3000
)

// Store is the persistence boundary of the allocator: the whole map is
// loaded once at startup and overwritten wholesale on every allocation.
type Store interface {
	CategoryIDs() (map[string]string, error)
	SaveCategoryIDs(map[string]string) error
}

// Allocator maps category names to stable ids. The first assignment is
// derived from a hash of the name; once persisted the id is returned
// verbatim forever, even if the hash or base changes later. A single lock
// spans the whole check-compute-store-persist sequence.
type Allocator struct {
	mu     sync.Mutex
	ids    map[string]string
	store  Store
	logger *logger.Logger
}

// NewAllocator loads the persisted map and returns a ready allocator
func NewAllocator(store Store) (*Allocator, error) {
	ids, err := store.CategoryIDs()
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = make(map[string]string)
	}
	return &Allocator{
		ids:    ids,
		store:  store,
		logger: logger.AppLogger(),
	}, nil
}

// StableID derives the deterministic first-assignment id for a name
func StableID(name string, base int) string {
	return strconv.Itoa(base + int(crc32.ChecksumIEEE([]byte(name))%8999))
}

// GetOrCreate returns the id for name, allocating and persisting it on
// first sighting. Concurrent callers racing on the same new name observe
// exactly one computed id. A failed persist keeps the in-memory id
// authoritative for the rest of the process lifetime.
func (a *Allocator) GetOrCreate(name string, base int) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if id, ok := a.ids[name]; ok {
		return id
	}

	id := StableID(name, base)
	a.ids[name] = id
	if err := a.store.SaveCategoryIDs(a.ids); err != nil {
		a.logger.WithFields(map[string]interface{}{
			"category": name,
			"id":       id,
		}).Error("failed to persist category ids", err)
	}
	return id
}

// Snapshot returns a copy of the current name to id map
func (a *Allocator) Snapshot() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string]string, len(a.ids))
	for name, id := range a.ids {
		out[name] = id
	}
	return out
}
