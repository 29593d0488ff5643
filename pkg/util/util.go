// Package util holds small generic slice helpers shared by the fixture builders.
package util

// Map applies fn to every element of in.
func Map[A any, B any](in []A, fn func(A) B) []B {
	out := make([]B, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}

// Dedupe drops repeated keys, keeping the first occurrence and the original order.
func Dedupe[T any, K comparable](in []T, key func(T) K) []T {
	seen := make(map[K]struct{}, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		k := key(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Cartesian returns every combination picking one value from each set, varying the last
// set fastest. An empty set yields no combinations.
func Cartesian[T any](sets ...[]T) [][]T {
	if len(sets) == 0 {
		return nil
	}
	combos := [][]T{{}}
	for _, set := range sets {
		next := make([][]T, 0, len(combos)*len(set))
		for _, prefix := range combos {
			for _, v := range set {
				combo := make([]T, len(prefix), len(prefix)+1)
				copy(combo, prefix)
				next = append(next, append(combo, v))
			}
		}
		combos = next
	}
	return combos
}
