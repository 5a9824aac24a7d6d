package state

import "slices"

// Find returns the item with uid and its index, or -1.
func Find[T Identified](items []T, uid string) (T, int) {
	for i, item := range items {
		if item.ID() == uid {
			return item, i
		}
	}
	var zero T
	return zero, -1
}

// Contains reports whether items holds uid.
func Contains[T Identified](items []T, uid string) bool {
	_, i := Find(items, uid)
	return i >= 0
}

// Without returns a new slice lacking uid, the removed item and whether it was present.
func Without[T Identified](items []T, uid string) ([]T, T, bool) {
	item, i := Find(items, uid)
	if i < 0 {
		return items, item, false
	}
	return slices.Concat(items[:i], items[i+1:]), item, true
}

// Partition splits items by pred into two newly allocated slices.
func Partition[T any](items []T, pred func(T) bool) (match, rest []T) {
	for _, item := range items {
		if pred(item) {
			match = append(match, item)
		} else {
			rest = append(rest, item)
		}
	}
	return match, rest
}

// Replace returns a copy of items with the element sharing item's uid swapped for item.
func Replace[T Identified](items []T, item T) []T {
	out := slices.Clone(items)
	for i := range out {
		if out[i].ID() == item.ID() {
			out[i] = item
		}
	}
	return out
}

// UIDs lists the ids of items in order.
func UIDs[T Identified](items []T) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID()
	}
	return out
}

// AddUID returns a new slice with uid appended unless it is already present.
func AddUID(uids []string, uid string) []string {
	if slices.Contains(uids, uid) {
		return uids
	}
	return slices.Concat(uids, []string{uid})
}

// RemoveUID returns a new slice without uid.
func RemoveUID(uids []string, uid string) []string {
	out := make([]string, 0, len(uids))
	for _, u := range uids {
		if u != uid {
			out = append(out, u)
		}
	}
	return out
}
