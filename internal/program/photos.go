package program

import (
	"akneDenikAPI/internal/types/daycontent"
	"akneDenikAPI/internal/types/userlog"
)

type PhotoSlots string

const (
	SlotsNone         PhotoSlots = "none"
	SlotsSingle       PhotoSlots = "single"
	SlotsFrontAndSide PhotoSlots = "front_and_side"
)

// RequiredPhotoSlots depends only on the two photo flags; the dual flag wins.
func RequiredPhotoSlots(c daycontent.DayContent) PhotoSlots {
	switch {
	case c.IsDualPhotoDay:
		return SlotsFrontAndSide
	case c.IsPhotoDay:
		return SlotsSingle
	default:
		return SlotsNone
	}
}

// MissingPhotoTypes lists the photo types still needed to satisfy slots. For SlotsSingle a
// progress photo is accepted in place of a single one.
func MissingPhotoTypes(slots PhotoSlots, photos []userlog.Photo) []userlog.PhotoType {
	have := make(map[userlog.PhotoType]bool, len(photos))
	for _, p := range photos {
		if p.URL != "" {
			have[p.Type] = true
		}
	}

	var missing []userlog.PhotoType
	switch slots {
	case SlotsSingle:
		if !have[userlog.PhotoSingle] && !have[userlog.PhotoProgress] {
			missing = append(missing, userlog.PhotoSingle)
		}
	case SlotsFrontAndSide:
		if !have[userlog.PhotoFront] {
			missing = append(missing, userlog.PhotoFront)
		}
		if !have[userlog.PhotoSide] {
			missing = append(missing, userlog.PhotoSide)
		}
	}
	return missing
}

func Satisfied(slots PhotoSlots, photos []userlog.Photo) bool {
	return len(MissingPhotoTypes(slots, photos)) == 0
}
