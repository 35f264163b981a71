package program

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"akneDenikAPI/internal/types/daycontent"
	"akneDenikAPI/internal/types/userlog"
)

func TestRequiredPhotoSlots(t *testing.T) {
	cases := []struct {
		photo, dual bool
		want        PhotoSlots
	}{
		{false, false, SlotsNone},
		{true, false, SlotsSingle},
		{true, true, SlotsFrontAndSide},
		{false, true, SlotsFrontAndSide},
	}
	for _, tc := range cases {
		got := RequiredPhotoSlots(daycontent.DayContent{IsPhotoDay: tc.photo, IsDualPhotoDay: tc.dual})
		assert.Equal(t, tc.want, got, "photo=%v dual=%v", tc.photo, tc.dual)
	}
}

func TestMissingPhotoTypes(t *testing.T) {
	front := userlog.Photo{URL: "https://img/front.jpg", Type: userlog.PhotoFront}
	side := userlog.Photo{URL: "https://img/side.jpg", Type: userlog.PhotoSide}
	single := userlog.Photo{URL: "https://img/a.jpg", Type: userlog.PhotoSingle}
	progress := userlog.Photo{URL: "https://img/b.jpg", Type: userlog.PhotoProgress}

	assert.Empty(t, MissingPhotoTypes(SlotsNone, nil))
	assert.Equal(t, []userlog.PhotoType{userlog.PhotoSingle}, MissingPhotoTypes(SlotsSingle, nil))
	assert.Empty(t, MissingPhotoTypes(SlotsSingle, []userlog.Photo{single}))
	assert.Empty(t, MissingPhotoTypes(SlotsSingle, []userlog.Photo{progress}))
	assert.Equal(t, []userlog.PhotoType{userlog.PhotoSide}, MissingPhotoTypes(SlotsFrontAndSide, []userlog.Photo{front}))
	assert.Equal(t, []userlog.PhotoType{userlog.PhotoFront, userlog.PhotoSide}, MissingPhotoTypes(SlotsFrontAndSide, []userlog.Photo{single}))
	assert.True(t, Satisfied(SlotsFrontAndSide, []userlog.Photo{side, front}))

	// a slot with an empty url does not count
	assert.False(t, Satisfied(SlotsSingle, []userlog.Photo{{Type: userlog.PhotoSingle}}))
}
