package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"akneDenikAPI/internal/apperr"
	"akneDenikAPI/internal/logger"
	"akneDenikAPI/internal/metrics"
	"akneDenikAPI/internal/program"
	"akneDenikAPI/internal/types/daycontent"
	"akneDenikAPI/internal/types/profile"
	"akneDenikAPI/internal/types/userlog"
)

// LedgerStore persists profiles and logs. CommitDay hands commit the stored profile (a fresh one
// when absent) and the existing log for the day, then writes both results atomically.
type LedgerStore interface {
	GetProfile(ctx context.Context, userID string) (profile.UserProfile, error)
	FindLog(ctx context.Context, userID string, day int) (userlog.UserLog, error)
	ListLogs(ctx context.Context, userID string) ([]userlog.UserLog, error)
	CommitDay(ctx context.Context, userID string, day int, commit func(profile.UserProfile, *userlog.UserLog) (profile.UserProfile, userlog.UserLog, error)) (profile.UserProfile, userlog.UserLog, error)
}

type ContentResolver interface {
	Resolve(ctx context.Context, day int) (daycontent.DayContent, error)
}

type DayView struct {
	Content        daycontent.DayContent `json:"content"`
	RequiredPhotos program.PhotoSlots    `json:"requiredPhotos"`
	Log            *userlog.UserLog      `json:"log,omitempty"`
	Completed      bool                  `json:"completed"`
	Locked         bool                  `json:"locked"`
}

type CompletionResult struct {
	Profile profile.UserProfile `json:"profile"`
	Log     userlog.UserLog     `json:"log"`
	Streak  int                 `json:"streak"`
}

type ProgressService struct {
	store   LedgerStore
	content ContentResolver
	log     *logger.Logger
	now     func() time.Time
}

func NewProgressService(store LedgerStore, content ContentResolver, log *logger.Logger) *ProgressService {
	if log == nil {
		log = logger.Nop()
	}
	return &ProgressService{store: store, content: content, log: log, now: time.Now}
}

// Profile returns the stored profile with its streaks. Users without a record start on day 1.
func (s *ProgressService) Profile(ctx context.Context, userID string) (profile.Summary, error) {
	p, err := s.profile(ctx, userID)
	if err != nil {
		return profile.Summary{}, err
	}
	return profile.Summary{
		UserProfile:   p,
		Streak:        program.Streak(p.CompletedDays, p.CurrentDay),
		LongestStreak: program.LongestStreak(p.CompletedDays),
		Subscribed:    p.Subscription.ActiveAt(s.now()),
	}, nil
}

func (s *ProgressService) profile(ctx context.Context, userID string) (profile.UserProfile, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return profile.New(userID), nil
	}
	if err != nil {
		return profile.UserProfile{}, fmt.Errorf("load profile: %w", apperr.WithUser(err, userID, 0))
	}
	return p, nil
}

// Today is the view of the user's current day. Past the last day the final day is shown.
func (s *ProgressService) Today(ctx context.Context, userID string) (DayView, error) {
	p, err := s.profile(ctx, userID)
	if err != nil {
		return DayView{}, err
	}
	day := p.CurrentDay
	if day > daycontent.LastDay {
		day = daycontent.LastDay
	}
	if day < daycontent.FirstDay {
		day = daycontent.FirstDay
	}
	return s.view(ctx, p, day)
}

func (s *ProgressService) Day(ctx context.Context, userID string, day int) (DayView, error) {
	if !daycontent.ValidDay(day) {
		return DayView{}, apperr.Validation("day must be between %d and %d", daycontent.FirstDay, daycontent.LastDay)
	}
	p, err := s.profile(ctx, userID)
	if err != nil {
		return DayView{}, err
	}
	return s.view(ctx, p, day)
}

func (s *ProgressService) view(ctx context.Context, p profile.UserProfile, day int) (DayView, error) {
	c, err := s.content.Resolve(ctx, day)
	if err != nil {
		return DayView{}, apperr.WithUser(err, p.UserID, day)
	}
	v := DayView{
		Content:        c,
		RequiredPhotos: program.RequiredPhotoSlots(c),
		Completed:      p.HasCompleted(day),
		Locked:         day > p.CurrentDay,
	}
	l, err := s.store.FindLog(ctx, p.UserID, day)
	switch {
	case err == nil:
		v.Log = &l
	case errors.Is(err, apperr.ErrNotFound):
	default:
		return DayView{}, apperr.WithUser(err, p.UserID, day)
	}
	return v, nil
}

// CompleteDay records the log for day and advances the user's progress in one store transaction.
// Submitting the same input again converges to the same state.
func (s *ProgressService) CompleteDay(ctx context.Context, userID string, day int, req userlog.CompleteDayRequest) (CompletionResult, error) {
	if !daycontent.ValidDay(day) {
		return CompletionResult{}, apperr.WithUser(
			apperr.Validation("day must be between %d and %d", daycontent.FirstDay, daycontent.LastDay), userID, day)
	}
	c, err := s.content.Resolve(ctx, day)
	if err != nil {
		s.log.Error("Failed to resolve content for completion", "user_id", userID, "day", day, "error", err)
		return CompletionResult{}, apperr.WithUser(err, userID, day)
	}
	slots := program.RequiredPhotoSlots(c)

	now := s.now().UTC()
	photos := req.Photos
	if photos == nil {
		photos = []userlog.Photo{}
	}
	submitted := userlog.UserLog{
		UserID:     userID,
		Day:        day,
		Mood:       req.Mood,
		SkinRating: req.SkinRating,
		Note:       strings.TrimSpace(req.Note),
		Photos:     photos,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	p, stored, err := s.store.CommitDay(ctx, userID, day, func(p profile.UserProfile, existing *userlog.UserLog) (profile.UserProfile, userlog.UserLog, error) {
		next, err := program.CompleteDay(p, day, submitted, slots, now)
		if err != nil {
			return p, userlog.UserLog{}, err
		}
		l := submitted
		if existing != nil {
			l.ID = existing.ID
			l.CreatedAt = existing.CreatedAt
		}
		return next, l, nil
	})
	if err != nil {
		err = apperr.WithUser(err, userID, day)
		if errors.Is(err, apperr.ErrValidation) {
			s.log.Info("Rejected day completion", "user_id", userID, "day", day, "reason", apperr.Message(err))
		} else {
			s.log.Error("Failed to commit day", "user_id", userID, "day", day, "error", err)
		}
		return CompletionResult{}, err
	}

	metrics.DaysCompleted.Inc()
	s.log.Info("Day completed", "user_id", userID, "day", day, "current_day", p.CurrentDay)
	return CompletionResult{
		Profile: p,
		Log:     stored,
		Streak:  program.Streak(p.CompletedDays, p.CurrentDay),
	}, nil
}

func (s *ProgressService) Log(ctx context.Context, userID string, day int) (userlog.UserLog, error) {
	if !daycontent.ValidDay(day) {
		return userlog.UserLog{}, apperr.Validation("day must be between %d and %d", daycontent.FirstDay, daycontent.LastDay)
	}
	l, err := s.store.FindLog(ctx, userID, day)
	if err != nil {
		return userlog.UserLog{}, apperr.WithUser(err, userID, day)
	}
	return l, nil
}

func (s *ProgressService) Logs(ctx context.Context, userID string) ([]userlog.UserLog, error) {
	logs, err := s.store.ListLogs(ctx, userID)
	if err != nil {
		return nil, apperr.WithUser(err, userID, 0)
	}
	return logs, nil
}
