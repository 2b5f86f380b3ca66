package draft

// PicksPerSlot is how many picks each player makes.
const PicksPerSlot = 3

// DefaultBanSlots is the minimum width of the ban row.
const DefaultBanSlots = 4

// Fill lays items out over n slots. Extra items widen the row rather than
// being hidden; missing ones are "".
func Fill(items []string, n int) []string {
	if len(items) > n {
		n = len(items)
	}
	out := make([]string, n)
	copy(out, items)
	return out
}

// NextEmpty returns the first index whose content is absent, or -1.
func NextEmpty(slots []string) int {
	for i, v := range slots {
		if v == "" {
			return i
		}
	}
	return -1
}
