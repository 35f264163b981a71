package program

// Streak counts consecutive completed days walking back from currentDay-1.
func Streak(completed []int, currentDay int) int {
	set := make(map[int]struct{}, len(completed))
	for _, d := range completed {
		set[d] = struct{}{}
	}
	streak := 0
	for d := currentDay - 1; d > 0; d-- {
		if _, ok := set[d]; !ok {
			break
		}
		streak++
	}
	return streak
}

// LongestStreak returns the longest run of consecutive days in completed, in any order.
func LongestStreak(completed []int) int {
	set := make(map[int]struct{}, len(completed))
	for _, d := range completed {
		set[d] = struct{}{}
	}
	longest := 0
	for d := range set {
		if _, ok := set[d-1]; ok {
			continue
		}
		n := 1
		for {
			if _, ok := set[d+n]; !ok {
				break
			}
			n++
		}
		if n > longest {
			longest = n
		}
	}
	return longest
}
