package registry

// NextSuffix returns the smallest i in [0, bound] for which base_i is not
// taken, or -1 when every candidate is taken. With bound equal to the number
// of registered contracts at least one candidate is always free.
func NextSuffix(base string, taken func(identifier string) bool, bound int) int {
	for i := 0; i <= bound; i++ {
		if !taken(Identifier(base, i)) {
			return i
		}
	}
	return -1
}
