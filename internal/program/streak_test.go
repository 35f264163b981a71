package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreak(t *testing.T) {
	cases := []struct {
		name       string
		completed  []int
		currentDay int
		want       int
	}{
		{"consecutive", []int{10, 11, 12}, 13, 3},
		{"gap breaks chain", []int{10, 12}, 13, 1},
		{"yesterday missing", []int{10, 11}, 13, 0},
		{"empty", nil, 1, 0},
		{"from program start", []int{3, 1, 2}, 4, 3},
		{"duplicates", []int{1, 1, 2, 2}, 3, 2},
		{"pointer at start", []int{1}, 1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Streak(tc.completed, tc.currentDay))
		})
	}
}

func TestLongestStreak(t *testing.T) {
	assert.Equal(t, 0, LongestStreak(nil))
	assert.Equal(t, 3, LongestStreak([]int{1, 2, 3, 7, 8}))
	assert.Equal(t, 4, LongestStreak([]int{20, 5, 21, 22, 23, 6}))
}
