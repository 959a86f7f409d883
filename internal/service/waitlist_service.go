package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/byebilly/waitlist-api/internal/dto"
	"github.com/byebilly/waitlist-api/internal/models"
	appErrors "github.com/byebilly/waitlist-api/pkg/errors"
	"github.com/byebilly/waitlist-api/pkg/export"
	applog "github.com/byebilly/waitlist-api/pkg/logger"
	"github.com/byebilly/waitlist-api/pkg/middleware/requestid"
)

const (
	statsWindow     = 7 * 24 * time.Hour
	defaultPageSize = 20
	maxPageSize     = 100
	maxListOffset   = math.MaxInt32
)

type waitlistRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error)
	InsertIfAbsent(ctx context.Context, email string, name *string) (*models.WaitlistEntry, error)
	CountAtOrBefore(ctx context.Context, ts time.Time) (int, error)
	Stats(ctx context.Context, since time.Time) (*models.WaitlistStats, error)
	Recent(ctx context.Context, limit int) ([]models.WaitlistEntry, error)
	List(ctx context.Context, filter models.WaitlistFilter) ([]models.WaitlistEntry, int, error)
	All(ctx context.Context) ([]models.WaitlistEntry, error)
	Ping(ctx context.Context) error
}

type exportRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// WaitlistConfig tunes the admin queries.
type WaitlistConfig struct {
	RecentLimit int
	StatsTTL    time.Duration
}

// WaitlistService enrolls emails and answers admin queries over the waitlist.
type WaitlistService struct {
	repo      waitlistRepository
	validator *WaitlistValidator
	ranks     *RankCalculator
	cache     *CacheService
	metrics   *MetricsService
	renderers map[dto.ExportFormat]exportRenderer
	cfg       WaitlistConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewWaitlistService constructs WaitlistService. cache and metrics may be nil.
func NewWaitlistService(repo waitlistRepository, validator *WaitlistValidator, cache *CacheService, metrics *MetricsService, cfg WaitlistConfig, logger *zap.Logger) *WaitlistService {
	if validator == nil {
		validator, _ = NewWaitlistValidator(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 10
	}
	return &WaitlistService{
		repo:      repo,
		validator: validator,
		ranks:     NewRankCalculator(repo),
		cache:     cache,
		metrics:   metrics,
		renderers: map[dto.ExportFormat]exportRenderer{
			dto.ExportFormatCSV: export.NewCSVExporter(),
			dto.ExportFormatPDF: export.NewPDFExporter(),
		},
		cfg:    cfg,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Enroll validates the payload, records the email once and reports its position.
// Repeating an email is a success with AlreadyEnrolled set.
func (s *WaitlistService) Enroll(ctx context.Context, req dto.EnrollRequest) (*dto.EnrollResult, error) {
	input, err := s.validator.Validate(req)
	if err != nil {
		s.metrics.RecordEnrollment(OutcomeInvalidInput)
		return nil, err
	}

	entry, outcome, err := s.resolve(ctx, input)
	if err != nil {
		return nil, s.storeFailure(ctx, input.Email, err)
	}

	position, err := s.ranks.Position(ctx, entry.CreatedAt)
	if err != nil {
		return nil, s.storeFailure(ctx, input.Email, err)
	}

	s.metrics.RecordEnrollment(outcome)
	s.logger.Info("waitlist enrollment",
		zap.String("email", applog.MaskEmail(input.Email)),
		zap.String("outcome", outcome),
		zap.Int("position", position),
		zap.String("request_id", requestid.FromContext(ctx)),
	)
	return &dto.EnrollResult{
		Success:         true,
		Position:        position,
		AlreadyEnrolled: outcome != OutcomeInserted,
	}, nil
}

// resolve finds or creates the entry for input. A lost insert race is
// absorbed by reading the winner back exactly once.
func (s *WaitlistService) resolve(ctx context.Context, input *EnrollmentInput) (*models.WaitlistEntry, string, error) {
	existing, err := s.repo.FindByEmail(ctx, input.Email)
	if err == nil {
		return existing, OutcomeAlreadyEnrolled, nil
	}
	if !errors.Is(err, appErrors.ErrNotFound) {
		return nil, "", err
	}

	created, err := s.repo.InsertIfAbsent(ctx, input.Email, input.Name)
	if err == nil {
		if cacheErr := s.cache.InvalidateStats(ctx); cacheErr != nil {
			s.logger.Warn("stats cache invalidation failed", zap.Error(cacheErr))
		}
		return created, OutcomeInserted, nil
	}
	if !errors.Is(err, appErrors.ErrConflict) {
		return nil, "", err
	}

	winner, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil, "", appErrors.StoreUnavailable(err, "waitlist entry missing after conflict")
		}
		return nil, "", err
	}
	return winner, OutcomeRaceAbsorbed, nil
}

func (s *WaitlistService) storeFailure(ctx context.Context, email string, err error) error {
	s.metrics.RecordEnrollment(OutcomeStoreUnavailable)
	if !errors.Is(err, appErrors.ErrStoreUnavailable) {
		err = appErrors.StoreUnavailable(err, "")
	}
	s.logger.Error("waitlist enrollment failed",
		zap.String("email", applog.MaskEmail(email)),
		zap.String("request_id", requestid.FromContext(ctx)),
		zap.Error(err),
	)
	return err
}

// Stats returns the admin overview. The bool reports a cache hit.
func (s *WaitlistService) Stats(ctx context.Context) (*dto.WaitlistStatsResponse, bool, error) {
	var cached dto.WaitlistStatsResponse
	if hit, err := s.cache.Get(ctx, StatsCacheKey, &cached); err != nil {
		s.logger.Warn("stats cache read failed", zap.Error(err))
	} else if hit {
		return &cached, true, nil
	}

	stats, err := s.repo.Stats(ctx, s.now().Add(-statsWindow))
	if err != nil {
		return nil, false, err
	}
	recent, err := s.repo.Recent(ctx, s.cfg.RecentLimit)
	if err != nil {
		return nil, false, err
	}

	resp := &dto.WaitlistStatsResponse{
		TotalCount:    stats.TotalCount,
		ThisWeek:      stats.ThisWeek,
		WithNames:     stats.WithNames,
		RecentSignups: make([]dto.RecentSignup, 0, len(recent)),
	}
	for _, entry := range recent {
		resp.RecentSignups = append(resp.RecentSignups, dto.RecentSignup{
			Email:     entry.Email,
			Name:      entry.Name,
			CreatedAt: entry.CreatedAt,
		})
	}

	if err := s.cache.Set(ctx, StatsCacheKey, resp, s.cfg.StatsTTL); err != nil {
		s.logger.Warn("stats cache write failed", zap.Error(err))
	}
	return resp, false, nil
}

// List returns a page of entries, newest first.
func (s *WaitlistService) List(ctx context.Context, filter models.WaitlistFilter) ([]models.WaitlistEntry, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidInput, "status must be one of pending, invited, activated")
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > maxPageSize {
		filter.PageSize = defaultPageSize
	}
	if filter.Page-1 > maxListOffset/filter.PageSize {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidInput, "page is out of range")
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return entries, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Export renders every entry in signup order.
func (s *WaitlistService) Export(ctx context.Context, format dto.ExportFormat) (*dto.ExportFile, error) {
	if format == "" {
		format = dto.ExportFormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "format must be csv or pdf")
	}

	entries, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Title:   "Waitlist",
		Headers: []string{"Name", "Email", "Status", "Joined Date"},
		Rows:    make([][]string, 0, len(entries)),
	}
	for _, entry := range entries {
		name := "N/A"
		if entry.Name != nil {
			name = *entry.Name
		}
		data.Rows = append(data.Rows, []string{name, entry.Email, string(entry.Status), entry.CreatedAt.UTC().Format("2006-01-02")})
	}

	payload, err := renderer.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Kind, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("waitlist-%s.%s", s.now().Format("2006-01-02"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Payload:     payload,
	}, nil
}

// Ready reports whether the store answers.
func (s *WaitlistService) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
