package rng

// Shuffle returns a seed-determined permutation of items. The input slice is
// left untouched.
//
// The permutation is a Fisher-Yates pass from the last index down to 1, where
// each swap partner is floor(Float64() * (i+1)).
func Shuffle[T any](items []T, seed string) []T {
	out := make([]T, len(items))
	copy(out, items)
	if len(out) < 2 {
		return out
	}
	src := New(seed)
	for i := len(out) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
