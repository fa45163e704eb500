package service

import (
	"context"
	"strconv"
	"time"

	"order-service/internal/cache"
	"order-service/internal/model"
	"order-service/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// analyticsService implements AnalyticsService.
type analyticsService struct {
	repo          repository.AnalyticsRepository
	cache         cache.Cache
	defaultWindow time.Duration
	maxLimit      int
	now           func() time.Time
	logger        zerolog.Logger
}

// NewAnalyticsService creates a new analytics service. Results for explicit
// windows are cached; trailing windows move with the clock and are not.
func NewAnalyticsService(
	repo repository.AnalyticsRepository,
	c cache.Cache,
	defaultWindow time.Duration,
	maxLimit int,
	logger zerolog.Logger,
) AnalyticsService {
	if defaultWindow <= 0 {
		defaultWindow = model.DefaultAnalyticsWindow
	}
	if maxLimit < 1 {
		maxLimit = model.DefaultTopProductsLimit
	}
	return &analyticsService{
		repo:          repo,
		cache:         c,
		defaultWindow: defaultWindow,
		maxLimit:      maxLimit,
		now:           time.Now,
		logger:        logger.With().Str("service", "analytics").Logger(),
	}
}

// Summary aggregates orders created inside the window.
func (s *analyticsService) Summary(ctx context.Context, window *model.Window) (*model.Summary, error) {
	w, cacheable, err := s.resolveWindow(window)
	if err != nil {
		return nil, err
	}
	return s.summary(ctx, w, cacheable)
}

func (s *analyticsService) summary(ctx context.Context, w model.Window, cacheable bool) (*model.Summary, error) {
	key := s.cache.Key("summary", windowKey(w)...)
	if cacheable {
		var cached model.Summary
		if s.fromCache(ctx, key, &cached) {
			return &cached, nil
		}
	}

	summary, err := s.repo.Summary(ctx, w)
	if err != nil {
		return nil, err
	}

	if cacheable {
		s.toCache(ctx, key, summary)
	}
	return summary, nil
}

// TopProducts ranks products sold inside the window.
func (s *analyticsService) TopProducts(ctx context.Context, window *model.Window, limit int) ([]model.ProductStat, error) {
	w, cacheable, err := s.resolveWindow(window)
	if err != nil {
		return nil, err
	}
	limit, err = s.resolveLimit(limit)
	if err != nil {
		return nil, err
	}
	return s.topProducts(ctx, w, limit, cacheable)
}

func (s *analyticsService) topProducts(ctx context.Context, w model.Window, limit int, cacheable bool) ([]model.ProductStat, error) {
	key := s.cache.Key("top-products", append(windowKey(w), strconv.Itoa(limit))...)
	if cacheable {
		var cached []model.ProductStat
		if s.fromCache(ctx, key, &cached) {
			return cached, nil
		}
	}

	stats, err := s.repo.TopProducts(ctx, w, limit)
	if err != nil {
		return nil, err
	}

	if cacheable {
		s.toCache(ctx, key, stats)
	}
	return stats, nil
}

// Dashboard fetches the summary and top products concurrently over one window.
func (s *analyticsService) Dashboard(ctx context.Context, window *model.Window, limit int) (*model.Dashboard, error) {
	// Both halves share one resolved window, so a trailing window does not
	// drift between the two queries.
	w, cacheable, err := s.resolveWindow(window)
	if err != nil {
		return nil, err
	}
	limit, err = s.resolveLimit(limit)
	if err != nil {
		return nil, err
	}

	var dashboard model.Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := s.summary(gctx, w, cacheable)
		dashboard.Summary = summary
		return err
	})
	g.Go(func() error {
		stats, err := s.topProducts(gctx, w, limit, cacheable)
		dashboard.TopProducts = stats
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (s *analyticsService) resolveWindow(window *model.Window) (model.Window, bool, error) {
	if window == nil {
		return model.TrailingWindow(s.now().UTC(), s.defaultWindow), false, nil
	}
	if err := window.Validate(); err != nil {
		return model.Window{}, false, err
	}
	return model.Window{Start: window.Start.UTC(), End: window.End.UTC()}, true, nil
}

func (s *analyticsService) resolveLimit(limit int) (int, error) {
	switch {
	case limit < 0:
		return 0, model.NewValidationError("limit", "cannot be negative")
	case limit == 0:
		limit = model.DefaultTopProductsLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	return limit, nil
}

func windowKey(w model.Window) []string {
	return []string{w.Start.Format(time.RFC3339Nano), w.End.Format(time.RFC3339Nano)}
}

// fromCache treats cache errors as misses.
func (s *analyticsService) fromCache(ctx context.Context, key string, dest any) bool {
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("analytics cache read failed")
		return false
	}
	return found
}

func (s *analyticsService) toCache(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("analytics cache write failed")
	}
}
