package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/docstudio/internal/types"
)

// MaxEntries is the number of results kept. Older entries are evicted first.
const MaxEntries = 20

// ErrNotFound is returned when no entry has the requested id.
var ErrNotFound = errors.New("history entry not found")

// Cache is the newest-first list of recent results, mirrored to a Store after every change.
// Storage failures are logged and never fail the caller's operation.
type Cache struct {
	mu         sync.RWMutex
	store      Store
	logger     *slog.Logger
	maxEntries int
	newID      func() string
	entries    []types.HistoryEntry
	sequence   int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger for storage problems.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxEntries overrides MaxEntries.
func WithMaxEntries(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithIDGenerator sets the function producing entry ids.
func WithIDGenerator(fn func() string) Option {
	return func(c *Cache) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// NewCache returns an empty cache backed by store. Call Load to read persisted entries.
func NewCache(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:      store,
		logger:     slog.Default(),
		maxEntries: MaxEntries,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the in-memory list with the persisted one. Unreadable or corrupt content
// is logged and the slot is reset to empty.
func (c *Cache) Load(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = nil
	c.sequence = 0

	data, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("failed to load history", "error", err)
		return
	}
	if len(data) == 0 {
		return
	}

	var entries []types.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.Warn("history is corrupt, resetting", "error", err)
		if err := c.store.Clear(ctx); err != nil {
			c.logger.Warn("failed to reset history", "error", err)
		}
		return
	}

	if len(entries) > c.maxEntries {
		entries = entries[:c.maxEntries]
	}
	c.entries = entries
	for _, e := range entries {
		c.sequence = max(c.sequence, e.Sequence)
	}
}

// Add records result as the newest entry and evicts the oldest beyond the cap.
func (c *Cache) Add(ctx context.Context, result types.GenerationResult) types.HistoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sequence++
	entry := types.HistoryEntry{
		ID:       c.newID(),
		Sequence: c.sequence,
		Result:   result,
	}

	entries := make([]types.HistoryEntry, 0, min(len(c.entries)+1, c.maxEntries))
	entries = append(entries, entry)
	entries = append(entries, c.entries...)
	if len(entries) > c.maxEntries {
		entries = entries[:c.maxEntries]
	}
	c.entries = entries

	c.persist(ctx)
	return entry
}

// List returns the entries newest first.
func (c *Cache) List() []types.HistoryEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]types.HistoryEntry(nil), c.entries...)
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Get returns the entry with id.
func (c *Cache) Get(id string) (types.HistoryEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return types.HistoryEntry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Restore returns the result recorded under id, customization included, so an earlier
// version can be reopened for editing and export.
func (c *Cache) Restore(id string) (types.GenerationResult, error) {
	entry, err := c.Get(id)
	if err != nil {
		return types.GenerationResult{}, err
	}
	return entry.Result, nil
}

// Clear removes every entry. The in-memory list is emptied even if the store fails.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = nil
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Warn("failed to clear history", "error", err)
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// persist must be called with mu held.
func (c *Cache) persist(ctx context.Context) {
	data, err := json.Marshal(c.entries)
	if err != nil {
		c.logger.Warn("failed to encode history", "error", err)
		return
	}
	if err := c.store.Save(ctx, data); err != nil {
		c.logger.Warn("failed to save history", "error", err, "entries", len(c.entries))
	}
}
