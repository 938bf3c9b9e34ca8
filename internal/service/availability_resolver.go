package service

// ResolveAvailability removes booked labels from candidates, keeping candidate order
func ResolveAvailability(candidates, booked []string) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, slot := range booked {
		taken[slot] = struct{}{}
	}

	available := make([]string, 0, len(candidates))
	for _, slot := range candidates {
		if _, ok := taken[slot]; ok {
			continue
		}
		available = append(available, slot)
	}
	return available
}

// ContainsSlot reports whether slot is one of slots
func ContainsSlot(slots []string, slot string) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}
