package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/byebilly/waitlist-api/internal/models"
	appErrors "github.com/byebilly/waitlist-api/pkg/errors"
)

// MemoryWaitlistRepository keeps entries in process memory. It is meant for
// local development and tests; the mutex plays the role of the table's
// unique email constraint.
type MemoryWaitlistRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*memoryEntry
	seq     int64
	now     func() time.Time
}

type memoryEntry struct {
	entry models.WaitlistEntry
	seq   int64
}

// NewMemoryWaitlistRepository constructs an empty in-memory store.
func NewMemoryWaitlistRepository() *MemoryWaitlistRepository {
	return &MemoryWaitlistRepository{
		byEmail: make(map[string]*memoryEntry),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the creation timestamp source.
func (r *MemoryWaitlistRepository) WithClock(now func() time.Time) *MemoryWaitlistRepository {
	r.now = now
	return r
}

func (r *MemoryWaitlistRepository) FindByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, appErrors.StoreUnavailable(err, "find waitlist entry")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byEmail[email]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "waitlist entry not found")
	}
	entry := stored.entry
	return &entry, nil
}

func (r *MemoryWaitlistRepository) InsertIfAbsent(ctx context.Context, email string, name *string) (*models.WaitlistEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, appErrors.StoreUnavailable(err, "insert waitlist entry")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already on waitlist")
	}
	r.seq++
	stored := &memoryEntry{
		entry: models.WaitlistEntry{
			ID:        uuid.NewString(),
			Email:     email,
			Name:      name,
			Status:    models.WaitlistStatusPending,
			CreatedAt: r.now(),
		},
		seq: r.seq,
	}
	r.byEmail[email] = stored
	entry := stored.entry
	return &entry, nil
}

func (r *MemoryWaitlistRepository) CountAtOrBefore(ctx context.Context, ts time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, appErrors.StoreUnavailable(err, "count waitlist entries")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, stored := range r.byEmail {
		if !stored.entry.CreatedAt.After(ts) {
			count++
		}
	}
	return count, nil
}

func (r *MemoryWaitlistRepository) Stats(ctx context.Context, since time.Time) (*models.WaitlistStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, appErrors.StoreUnavailable(err, "aggregate waitlist stats")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &models.WaitlistStats{TotalCount: len(r.byEmail)}
	for _, stored := range r.byEmail {
		if stored.entry.CreatedAt.After(since) {
			stats.ThisWeek++
		}
		if stored.entry.Name != nil {
			stats.WithNames++
		}
	}
	return stats, nil
}

func (r *MemoryWaitlistRepository) Recent(ctx context.Context, limit int) ([]models.WaitlistEntry, error) {
	entries, err := r.sorted(ctx, true)
	if err != nil {
		return nil, err
	}
	if limit >= 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (r *MemoryWaitlistRepository) List(ctx context.Context, filter models.WaitlistFilter) ([]models.WaitlistEntry, int, error) {
	entries, err := r.sorted(ctx, true)
	if err != nil {
		return nil, 0, err
	}
	filtered := entries[:0]
	for _, e := range entries {
		if filter.Status == "" || e.Status == filter.Status {
			filtered = append(filtered, e)
		}
	}

	page, size := normalisePage(filter.Page, filter.PageSize)
	start := (page - 1) * size
	if start < 0 || start >= len(filtered) {
		return []models.WaitlistEntry{}, len(filtered), nil
	}
	end := start + size
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], len(filtered), nil
}

func (r *MemoryWaitlistRepository) All(ctx context.Context) ([]models.WaitlistEntry, error) {
	return r.sorted(ctx, false)
}

func (r *MemoryWaitlistRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return appErrors.StoreUnavailable(err, "ping store")
	}
	return nil
}

func (r *MemoryWaitlistRepository) sorted(ctx context.Context, newestFirst bool) ([]models.WaitlistEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, appErrors.StoreUnavailable(err, "list waitlist entries")
	}
	r.mu.RLock()
	stored := make([]*memoryEntry, 0, len(r.byEmail))
	for _, s := range r.byEmail {
		stored = append(stored, s)
	}
	r.mu.RUnlock()

	sort.Slice(stored, func(i, j int) bool {
		a, b := stored[i], stored[j]
		if !a.entry.CreatedAt.Equal(b.entry.CreatedAt) {
			if newestFirst {
				return a.entry.CreatedAt.After(b.entry.CreatedAt)
			}
			return a.entry.CreatedAt.Before(b.entry.CreatedAt)
		}
		if newestFirst {
			return a.seq > b.seq
		}
		return a.seq < b.seq
	})

	entries := make([]models.WaitlistEntry, len(stored))
	for i, s := range stored {
		entries[i] = s.entry
	}
	return entries, nil
}
