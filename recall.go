package knngraph

// Recall returns the fraction of exact neighbor entries that approx also
// found, summed over every node of exact. It is 1 when exact holds no
// entries.
func Recall[T any](exact, approx *Graph[T]) float64 {
	total, found := 0, 0
	for n, l := range exact.All() {
		total += l.Len()
		if a := approx.Neighbors(n.ID); a != nil {
			found += l.CountCommons(a)
		}
	}
	if total == 0 {
		return 1
	}
	return float64(found) / float64(total)
}
