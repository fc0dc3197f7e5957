package testutil

import (
	"math"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Shuffle pseudo-randomizes the order of n elements using swap.
func (r *RNG) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(n, swap)
}

// String returns a random lowercase ASCII string of length n.
func (r *RNG) String(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stringLocked(n)
}

func (r *RNG) stringLocked(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a' + byte(r.rand.Intn(26))
	}
	return string(b)
}

// Strings returns num random strings of length n.
func (r *RNG) Strings(num, n int) []string {
	out := make([]string, num)
	for i := range out {
		out[i] = r.String(n)
	}
	return out
}

// NearDuplicates returns clusters*size strings of length n. Every cluster
// starts from one random string; each member differs from it in exactly one
// byte (the first member is the original). Members of cluster c occupy
// indices [c*size, (c+1)*size).
func (r *RNG) NearDuplicates(clusters, size, n int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, clusters*size)
	for c := 0; c < clusters; c++ {
		base := r.stringLocked(n)
		out = append(out, base)
		for m := 1; m < size; m++ {
			b := []byte(base)
			pos := r.rand.Intn(n)
			b[pos] = 'a' + byte((int(b[pos]-'a')+1+r.rand.Intn(25))%26)
			out = append(out, string(b))
		}
	}
	return out
}

// Ints returns 0..n-1.
func Ints(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// IntSimilarity scores two integers as 1 / (1 + |a-b|).
func IntSimilarity(a, b int) float64 {
	return 1.0 / (1.0 + math.Abs(float64(a-b)))
}

// BigramJaccard returns the Jaccard index of the byte bigram sets of a and b.
// Two strings without bigrams are identical only if equal.
func BigramJaccard(a, b string) float64 {
	sa, sb := bigrams(a), bigrams(b)
	if len(sa) == 0 && len(sb) == 0 {
		if a == b {
			return 1
		}
		return 0
	}
	inter := 0
	for g := range sa {
		if _, ok := sb[g]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(sa)+len(sb)-inter)
}

func bigrams(s string) map[[2]byte]struct{} {
	set := make(map[[2]byte]struct{}, len(s))
	for i := 0; i+1 < len(s); i++ {
		set[[2]byte{s[i], s[i+1]}] = struct{}{}
	}
	return set
}
