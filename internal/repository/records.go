// Package repository persists the program's collections. Firestore is the primary backend,
// Postgres mirrors the same collections as tables and Memory serves tests and local runs.
package repository

import (
	"fmt"
	"strings"

	"akneDenikAPI/internal/apperr"
	"akneDenikAPI/internal/types/daycontent"
	"akneDenikAPI/internal/types/profile"
	"akneDenikAPI/internal/types/subscription"
	"akneDenikAPI/internal/types/userlog"
)

const (
	collectionDailyContent = "dailyContent"
	collectionUserLogs     = "userLogs"
	collectionUsers        = "users"
	collectionMessages     = "messages"
	collectionProducts     = "products"
)

func dayContentID(day int) string {
	return fmt.Sprintf("day-%d", day)
}

// checkDayContent applies the strict schema to a decoded record keyed by day. A record without a
// day field takes its day from the key; missing photo flags stay false.
func checkDayContent(day int, c daycontent.DayContent) (daycontent.DayContent, error) {
	op := collectionDailyContent + "/" + dayContentID(day)
	if c.Day == 0 {
		c.Day = day
	}
	if c.Day != day {
		return daycontent.DayContent{}, apperr.Malformed(op, "day field %d does not match key", c.Day)
	}
	if strings.TrimSpace(c.Motivation) == "" {
		return daycontent.DayContent{}, apperr.Malformed(op, "motivation is empty")
	}
	if strings.TrimSpace(c.Task) == "" {
		return daycontent.DayContent{}, apperr.Malformed(op, "task is empty")
	}
	c.Source = daycontent.SourceAdmin
	return c, nil
}

func checkUserLog(id string, l userlog.UserLog) (userlog.UserLog, error) {
	op := collectionUserLogs + "/" + id
	if l.UserID == "" {
		return userlog.UserLog{}, apperr.Malformed(op, "userId is empty")
	}
	if !daycontent.ValidDay(l.Day) {
		return userlog.UserLog{}, apperr.Malformed(op, "day %d out of range", l.Day)
	}
	for i, p := range l.Photos {
		if !p.Type.Valid() {
			return userlog.UserLog{}, apperr.Malformed(op, "photo %d has unknown type %q", i, p.Type)
		}
	}
	if l.Photos == nil {
		l.Photos = []userlog.Photo{}
	}
	l.ID = id
	return l, nil
}

// checkProfile normalizes progression fields. Days outside the program are dropped rather than
// failing the whole profile.
func checkProfile(p profile.UserProfile) profile.UserProfile {
	if p.CurrentDay < daycontent.FirstDay {
		p.CurrentDay = daycontent.FirstDay
	}
	days := make([]int, 0, len(p.CompletedDays))
	for _, d := range p.CompletedDays {
		if daycontent.ValidDay(d) {
			days = append(days, d)
		}
	}
	p.CompletedDays = profile.NormalizeDays(days)
	if p.Subscription.Status == "" {
		p.Subscription.Status = subscription.StatusNone
	}
	return p
}
