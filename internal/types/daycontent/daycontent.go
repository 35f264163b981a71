package daycontent

import "time"

const (
	FirstDay = 1
	LastDay  = 365
)

const (
	SourceAdmin     = "admin"
	SourceGenerated = "generated"
)

type DayContent struct {
	Day            int        `json:"day"`
	Motivation     string     `json:"motivation"`
	Task           string     `json:"task"`
	IsPhotoDay     bool       `json:"isPhotoDay"`
	IsDualPhotoDay bool       `json:"isDualPhotoDay"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
	UpdatedBy      string     `json:"updatedBy,omitempty"`
	Source         string     `json:"source"`
}

type UpsertRequest struct {
	Motivation     string `json:"motivation"`
	Task           string `json:"task"`
	IsPhotoDay     bool   `json:"isPhotoDay"`
	IsDualPhotoDay bool   `json:"isDualPhotoDay"`
}

// ValidDay reports whether day is inside the 365-day program.
func ValidDay(day int) bool {
	return day >= FirstDay && day <= LastDay
}
