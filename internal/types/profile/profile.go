package profile

import (
	"sort"
	"time"

	"akneDenikAPI/internal/types/subscription"
)

type UserProfile struct {
	UserID        string                    `json:"userId"`
	CurrentDay    int                       `json:"currentDay"`
	CompletedDays []int                     `json:"completedDays"`
	LastActivity  *time.Time                `json:"lastActivity,omitempty"`
	Subscription  subscription.Subscription `json:"subscription"`
	DeviceTokens  []string                  `json:"-"`
}

// New returns the profile of a user who has not completed any day yet.
func New(userID string) UserProfile {
	return UserProfile{
		UserID:        userID,
		CurrentDay:    1,
		CompletedDays: []int{},
		Subscription:  subscription.Subscription{Status: subscription.StatusNone},
	}
}

func (p UserProfile) HasCompleted(day int) bool {
	i := sort.SearchInts(p.CompletedDays, day)
	return i < len(p.CompletedDays) && p.CompletedDays[i] == day
}

// WithCompleted returns a sorted copy of CompletedDays containing day exactly once.
func (p UserProfile) WithCompleted(day int) []int {
	out := NormalizeDays(p.CompletedDays)
	i := sort.SearchInts(out, day)
	if i < len(out) && out[i] == day {
		return out
	}
	out = append(out, 0)
	copy(out[i+1:], out[i:])
	out[i] = day
	return out
}

// NormalizeDays sorts and de-duplicates a slice of day indices into a new slice.
func NormalizeDays(days []int) []int {
	out := make([]int, 0, len(days)+1)
	out = append(out, days...)
	sort.Ints(out)
	j := 0
	for i, d := range out {
		if i > 0 && d == out[j-1] {
			continue
		}
		out[j] = d
		j++
	}
	return out[:j]
}

type Summary struct {
	UserProfile
	Streak        int  `json:"streak"`
	LongestStreak int  `json:"longestStreak"`
	Subscribed    bool `json:"subscribed"`
}

type RegisterDeviceRequest struct {
	Token string `json:"token"`
}
