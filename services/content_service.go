package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"akneDenikAPI/internal/apperr"
	"akneDenikAPI/internal/logger"
	"akneDenikAPI/internal/metrics"
	"akneDenikAPI/internal/program"
	"akneDenikAPI/internal/types/daycontent"
)

type DayContentStore interface {
	GetDayContent(ctx context.Context, day int) (daycontent.DayContent, error)
	PutDayContent(ctx context.Context, c daycontent.DayContent) error
	DeleteDayContent(ctx context.Context, day int) error
	ListDayContent(ctx context.Context) ([]daycontent.DayContent, error)
}

// ContentService resolves the content shown for a program day and owns the editor writes, so
// it is the only place that invalidates its cache.
type ContentService struct {
	store     DayContentStore
	generator *program.Generator
	cache     *expirable.LRU[int, daycontent.DayContent]
	log       *logger.Logger
	now       func() time.Time
}

// NewContentService caches resolved days for ttl; a zero ttl disables the cache.
func NewContentService(store DayContentStore, generator *program.Generator, ttl time.Duration, log *logger.Logger) *ContentService {
	if generator == nil {
		generator = program.NewGenerator(nil)
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &ContentService{
		store:     store,
		generator: generator,
		log:       log,
		now:       time.Now,
	}
	if ttl > 0 {
		s.cache = expirable.NewLRU[int, daycontent.DayContent](daycontent.LastDay, nil, ttl)
	}
	return s
}

// Resolve prefers administrator content and falls back to generated content when the day has
// none. An unreachable store is reported as apperr.ErrUnavailable and is never cached.
func (s *ContentService) Resolve(ctx context.Context, day int) (daycontent.DayContent, error) {
	if !daycontent.ValidDay(day) {
		return daycontent.DayContent{}, apperr.Validation("day must be between %d and %d", daycontent.FirstDay, daycontent.LastDay)
	}
	if s.cache != nil {
		if c, ok := s.cache.Get(day); ok {
			metrics.ContentResolutions.WithLabelValues("cache").Inc()
			return c, nil
		}
	}

	c, err := s.store.GetDayContent(ctx, day)
	switch {
	case err == nil:
		metrics.ContentResolutions.WithLabelValues(daycontent.SourceAdmin).Inc()
	case errors.Is(err, apperr.ErrNotFound):
		c = s.generator.Generate(day)
		metrics.ContentResolutions.WithLabelValues(daycontent.SourceGenerated).Inc()
	case errors.Is(err, apperr.ErrMalformedRecord):
		s.log.Warn("Rejected malformed day content, using generated content", "day", day, "error", err)
		c = s.generator.Generate(day)
		metrics.ContentResolutions.WithLabelValues("malformed").Inc()
	default:
		s.log.Error("Day content store unavailable", "op", "resolve", "day", day, "error", err)
		if !errors.Is(err, apperr.ErrUnavailable) {
			err = apperr.Unavailable("resolve", err)
		}
		return daycontent.DayContent{}, fmt.Errorf("resolve day %d: %w", day, err)
	}

	if s.cache != nil {
		s.cache.Add(day, c)
	}
	return c, nil
}

func (s *ContentService) Put(ctx context.Context, day int, req daycontent.UpsertRequest, adminID string) (daycontent.DayContent, error) {
	if !daycontent.ValidDay(day) {
		return daycontent.DayContent{}, apperr.Validation("day must be between %d and %d", daycontent.FirstDay, daycontent.LastDay)
	}
	motivation := strings.TrimSpace(req.Motivation)
	task := strings.TrimSpace(req.Task)
	if motivation == "" {
		return daycontent.DayContent{}, apperr.Validation("motivation is required")
	}
	if task == "" {
		return daycontent.DayContent{}, apperr.Validation("task is required")
	}

	now := s.now()
	c := daycontent.DayContent{
		Day:            day,
		Motivation:     motivation,
		Task:           task,
		IsPhotoDay:     req.IsPhotoDay,
		IsDualPhotoDay: req.IsDualPhotoDay,
		UpdatedAt:      &now,
		UpdatedBy:      adminID,
		Source:         daycontent.SourceAdmin,
	}
	if err := s.store.PutDayContent(ctx, c); err != nil {
		s.log.Error("Failed to save day content", "op", "put", "day", day, "admin_id", adminID, "error", err)
		return daycontent.DayContent{}, fmt.Errorf("save day %d: %w", day, err)
	}
	s.invalidateDay(day)
	s.log.Info("Day content saved", "day", day, "admin_id", adminID)
	return c, nil
}

// Delete removes authored content; the day resolves to generated content again.
func (s *ContentService) Delete(ctx context.Context, day int) error {
	if !daycontent.ValidDay(day) {
		return apperr.Validation("day must be between %d and %d", daycontent.FirstDay, daycontent.LastDay)
	}
	if err := s.store.DeleteDayContent(ctx, day); err != nil {
		return fmt.Errorf("delete day %d: %w", day, err)
	}
	s.invalidateDay(day)
	return nil
}

func (s *ContentService) List(ctx context.Context) ([]daycontent.DayContent, error) {
	return s.store.ListDayContent(ctx)
}

// Invalidate drops every cached day.
func (s *ContentService) Invalidate() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

func (s *ContentService) invalidateDay(day int) {
	if s.cache != nil {
		s.cache.Remove(day)
	}
}
