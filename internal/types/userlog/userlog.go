package userlog

import "time"

type PhotoType string

const (
	PhotoSingle   PhotoType = "single"
	PhotoFront    PhotoType = "front"
	PhotoSide     PhotoType = "side"
	PhotoProgress PhotoType = "progress"
)

func (t PhotoType) Valid() bool {
	switch t {
	case PhotoSingle, PhotoFront, PhotoSide, PhotoProgress:
		return true
	}
	return false
}

type Photo struct {
	URL  string    `json:"url"`
	Type PhotoType `json:"type"`
}

type UserLog struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Day        int       `json:"day"`
	Mood       int       `json:"mood"`
	SkinRating int       `json:"skinRating"`
	Note       string    `json:"note"`
	Photos     []Photo   `json:"photos"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type CompleteDayRequest struct {
	Mood       int     `json:"mood"`
	SkinRating int     `json:"skinRating"`
	Note       string  `json:"note"`
	Photos     []Photo `json:"photos"`
}
