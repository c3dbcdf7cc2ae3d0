package document

// ReservedTags are graph bookkeeping labels that never reach the search
// collection.
var ReservedTags = []string{"Entity", "Class", "Individual"}

// FilterTags drops reserved and duplicate tags, preserving order.
func FilterTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" || Contains(ReservedTags, t) {
			continue
		}
		out = AppendUnique(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
