package core

// issueID returns max(maxID, *seq)+1 and advances the sequence, so removing the
// highest record never lets its id be handed out again.
func issueID(seq *int, maxID int) int {
	next := max(maxID, *seq) + 1
	*seq = next
	return next
}

func maxID[T any](items []T, id func(T) int) int {
	out := 0
	for _, item := range items {
		out = max(out, id(item))
	}
	return out
}
