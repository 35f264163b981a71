package program

import (
	"strings"
	"time"

	"akneDenikAPI/internal/apperr"
	"akneDenikAPI/internal/types/daycontent"
	"akneDenikAPI/internal/types/profile"
	"akneDenikAPI/internal/types/userlog"
)

const (
	minRating = 1
	maxRating = 5
)

// ValidateLog checks a submitted log against the photo obligation of its day.
func ValidateLog(log userlog.UserLog, slots PhotoSlots) error {
	if log.Mood < minRating || log.Mood > maxRating {
		return apperr.Validation("mood must be between %d and %d", minRating, maxRating)
	}
	if log.SkinRating < minRating || log.SkinRating > maxRating {
		return apperr.Validation("skinRating must be between %d and %d", minRating, maxRating)
	}
	for i, p := range log.Photos {
		if !p.Type.Valid() {
			return apperr.Validation("photo %d has unknown type %q", i, p.Type)
		}
		if strings.TrimSpace(p.URL) == "" {
			return apperr.Validation("photo %d has no url", i)
		}
	}
	if missing := MissingPhotoTypes(slots, log.Photos); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, m := range missing {
			names[i] = string(m)
		}
		return apperr.Validation("missing required photos: %s", strings.Join(names, ", "))
	}
	return nil
}

// CompleteDay validates log and returns p with day recorded. The pointer only advances when the
// current day is completed, so edits of past days leave it untouched.
func CompleteDay(p profile.UserProfile, day int, log userlog.UserLog, slots PhotoSlots, now time.Time) (profile.UserProfile, error) {
	if !daycontent.ValidDay(day) {
		return p, apperr.Validation("day must be between %d and %d", daycontent.FirstDay, daycontent.LastDay)
	}
	if p.CurrentDay < daycontent.FirstDay {
		p.CurrentDay = daycontent.FirstDay
	}
	if day > p.CurrentDay {
		return p, apperr.Validation("day %d is not unlocked yet", day)
	}
	if err := ValidateLog(log, slots); err != nil {
		return p, err
	}

	p.CompletedDays = p.WithCompleted(day)
	if day == p.CurrentDay {
		p.CurrentDay = day + 1
	}
	t := now
	p.LastActivity = &t
	return p, nil
}
