package program

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akneDenikAPI/internal/types/daycontent"
)

func TestGenerateTaskMentionsDayForWholeProgram(t *testing.T) {
	g := NewGenerator(nil)
	for day := daycontent.FirstDay; day <= daycontent.LastDay; day++ {
		c := g.Generate(day)
		require.NotEmpty(t, c.Task, "day %d", day)
		require.Contains(t, c.Task, strconv.Itoa(day), "day %d", day)
		require.NotEmpty(t, c.Motivation, "day %d", day)
		require.Equal(t, day, c.Day)
		require.Equal(t, daycontent.SourceGenerated, c.Source)
	}
}

func TestGenerateUsesInjectedPick(t *testing.T) {
	g := NewGenerator(func(n int) int { return n - 1 })
	c := g.Generate(12)
	assert.Equal(t, strings.Replace(motivationTemplates[len(motivationTemplates)-1], "%d", "12", 1), c.Motivation)
}

func TestPhotoDayFlags(t *testing.T) {
	cases := []struct {
		day       int
		photo     bool
		dualPhoto bool
	}{
		{1, true, false},
		{2, false, false},
		{7, true, false},
		{8, false, false},
		{15, false, false},
		{21, true, false},
		{22, false, false},
		{14, true, false},
		{28, true, true},
		{56, true, true},
		{364, true, true},
		{365, false, false},
	}
	g := NewGenerator(nil)
	for _, tc := range cases {
		c := g.Generate(tc.day)
		assert.Equal(t, tc.photo, c.IsPhotoDay, "day %d photo", tc.day)
		assert.Equal(t, tc.dualPhoto, c.IsDualPhotoDay, "day %d dual", tc.day)
	}
}

func TestSeasonalBuckets(t *testing.T) {
	assert.Equal(t, 1, Month(1))
	assert.Equal(t, 1, Month(30))
	assert.Equal(t, 2, Month(31))
	assert.Equal(t, 3, Month(91))
	assert.Equal(t, 4, Month(92))
	assert.Equal(t, 12, Month(365))

	assert.Contains(t, seasonalTask(10), "budování základů")
	assert.Contains(t, seasonalTask(120), "upevňování návyků")
	assert.Contains(t, seasonalTask(200), "jemné doladění")
	assert.Contains(t, seasonalTask(300), "udržení výsledků")
}
