package subscription

import "time"

const (
	StatusActive = "active"
	StatusNone   = "none"
)

const (
	PlanMonthly = "monthly"
	PlanYearly  = "yearly"
)

// Subscription is stored inline on the users/{userId} record.
type Subscription struct {
	Status string     `json:"subscriptionStatus"`
	Type   string     `json:"subscriptionType,omitempty"`
	Start  *time.Time `json:"subscriptionStart,omitempty"`
	End    *time.Time `json:"subscriptionEnd,omitempty"`
}

// ActiveAt reports whether the subscription grants access at t.
func (s Subscription) ActiveAt(t time.Time) bool {
	if s.Status != StatusActive {
		return false
	}
	return s.End == nil || t.Before(*s.End)
}

// PlanEnd returns the end of a plan bought at start, or false for an unknown plan.
func PlanEnd(plan string, start time.Time) (time.Time, bool) {
	switch plan {
	case PlanMonthly:
		return start.AddDate(0, 1, 0), true
	case PlanYearly:
		return start.AddDate(1, 0, 0), true
	}
	return time.Time{}, false
}

type CheckoutRequest struct {
	Plan string `json:"plan"`
}

type CheckoutResponse struct {
	CheckoutURL string `json:"checkoutUrl"`
	SessionID   string `json:"sessionId"`
}
