package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/byebilly/waitlist-api/internal/models"
	appErrors "github.com/byebilly/waitlist-api/pkg/errors"
)

const entryColumns = "id, email, name, status, notes, created_at"

// QueryObserver receives timings for every store round trip.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// WaitlistRepository is the Postgres-backed enrollment store. Uniqueness of
// email is enforced by the table constraint, never by this code.
type WaitlistRepository struct {
	db       *sqlx.DB
	timeout  time.Duration
	observer QueryObserver
}

// NewWaitlistRepository constructs the repository. A non-positive timeout
// leaves calls bounded only by the caller's context.
func NewWaitlistRepository(db *sqlx.DB, timeout time.Duration, observer QueryObserver) *WaitlistRepository {
	return &WaitlistRepository{db: db, timeout: timeout, observer: observer}
}

// FindByEmail returns the entry for a normalised email.
func (r *WaitlistRepository) FindByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error) {
	ctx, done := r.begin(ctx, "find_by_email")
	defer done()

	var entry models.WaitlistEntry
	query := "SELECT " + entryColumns + " FROM waitlist WHERE email = $1"
	if err := r.db.GetContext(ctx, &entry, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "waitlist entry not found")
		}
		return nil, mapStoreError(err, "find waitlist entry")
	}
	return &entry, nil
}

// InsertIfAbsent creates a pending entry stamped with the store clock. A
// concurrent or earlier row for the same email yields a Conflict error.
func (r *WaitlistRepository) InsertIfAbsent(ctx context.Context, email string, name *string) (*models.WaitlistEntry, error) {
	ctx, done := r.begin(ctx, "insert_if_absent")
	defer done()

	query := `INSERT INTO waitlist (id, email, name, status)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (email) DO NOTHING
        RETURNING ` + entryColumns
	var entry models.WaitlistEntry
	if err := r.db.GetContext(ctx, &entry, query, uuid.NewString(), email, name, models.WaitlistStatusPending); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already on waitlist")
		}
		return nil, mapStoreError(err, "insert waitlist entry")
	}
	return &entry, nil
}

// CountAtOrBefore counts entries created at or before ts.
func (r *WaitlistRepository) CountAtOrBefore(ctx context.Context, ts time.Time) (int, error) {
	ctx, done := r.begin(ctx, "count_at_or_before")
	defer done()

	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM waitlist WHERE created_at <= $1", ts); err != nil {
		return 0, mapStoreError(err, "count waitlist entries")
	}
	return count, nil
}

// Stats aggregates total, recent and named signups in one pass.
func (r *WaitlistRepository) Stats(ctx context.Context, since time.Time) (*models.WaitlistStats, error) {
	ctx, done := r.begin(ctx, "stats")
	defer done()

	const query = `SELECT COUNT(*) AS total_count,
        COUNT(*) FILTER (WHERE created_at > $1) AS this_week,
        COUNT(name) AS with_names
        FROM waitlist`
	var stats models.WaitlistStats
	if err := r.db.GetContext(ctx, &stats, query, since); err != nil {
		return nil, mapStoreError(err, "aggregate waitlist stats")
	}
	return &stats, nil
}

// Recent returns the newest entries first.
func (r *WaitlistRepository) Recent(ctx context.Context, limit int) ([]models.WaitlistEntry, error) {
	ctx, done := r.begin(ctx, "recent")
	defer done()

	query := "SELECT " + entryColumns + " FROM waitlist ORDER BY created_at DESC, id DESC LIMIT $1"
	entries := []models.WaitlistEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, mapStoreError(err, "list recent signups")
	}
	return entries, nil
}

// List returns a page of entries, newest first, with the filtered total.
func (r *WaitlistRepository) List(ctx context.Context, filter models.WaitlistFilter) ([]models.WaitlistEntry, int, error) {
	ctx, done := r.begin(ctx, "list")
	defer done()

	var conditions []string
	var args []interface{}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page, size := normalisePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM waitlist%s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d", entryColumns, clause, size, offset)
	entries := []models.WaitlistEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, mapStoreError(err, "list waitlist entries")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM waitlist"+clause, args...); err != nil {
		return nil, 0, mapStoreError(err, "count waitlist entries")
	}
	return entries, total, nil
}

// All returns every entry in signup order.
func (r *WaitlistRepository) All(ctx context.Context) ([]models.WaitlistEntry, error) {
	ctx, done := r.begin(ctx, "all")
	defer done()

	query := "SELECT " + entryColumns + " FROM waitlist ORDER BY created_at ASC, id ASC"
	entries := []models.WaitlistEntry{}
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, mapStoreError(err, "export waitlist entries")
	}
	return entries, nil
}

// Ping checks store connectivity.
func (r *WaitlistRepository) Ping(ctx context.Context) error {
	ctx, done := r.begin(ctx, "ping")
	defer done()

	if err := r.db.PingContext(ctx); err != nil {
		return mapStoreError(err, "ping store")
	}
	return nil
}

func (r *WaitlistRepository) begin(ctx context.Context, label string) (context.Context, func()) {
	start := time.Now()
	cancel := func() {}
	if r.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
	}
	return ctx, func() {
		cancel()
		if r.observer != nil {
			r.observer.ObserveDBQuery(label, time.Since(start))
		}
	}
}

// mapStoreError classifies driver errors: unique violations become Conflict,
// everything else is reported as StoreUnavailable.
func mapStoreError(err error, message string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.UniqueViolation {
		return appErrors.Wrap(err, appErrors.ErrConflict.Kind, appErrors.ErrConflict.Status, "email already on waitlist")
	}
	return appErrors.StoreUnavailable(err, message)
}

// maxOffset bounds the row offset so (page-1)*size cannot overflow.
const maxOffset = math.MaxInt32

func normalisePage(page, size int) (int, int) {
	if size <= 0 || size > 100 {
		size = 20
	}
	if page < 1 {
		page = 1
	}
	if page-1 > maxOffset/size {
		page = maxOffset/size + 1
	}
	return page, size
}
