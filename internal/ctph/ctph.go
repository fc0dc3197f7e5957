package ctph

import (
	"errors"

	"github.com/cespare/xxhash/v2"
)

const (
	// rollingWindow is the size of the rolling hash window in bytes.
	rollingWindow = 7

	// DefaultMinBlockSize is the smallest trigger modulus.
	DefaultMinBlockSize = 3

	// DefaultTargetChunks is the chunk count the block size is scaled for.
	DefaultTargetChunks = 64

	golden = 0x9E3779B97F4A7C15
)

// ErrInvalidShape is returned when stages or partitions is not positive.
var ErrInvalidShape = errors.New("ctph: stages and partitions must be positive")

// Options configures a Signer.
type Options struct {
	// MinBlockSize is the initial trigger modulus; it doubles until the
	// expected chunk count drops to TargetChunks.
	MinBlockSize int

	// TargetChunks bounds the expected number of chunks per string.
	TargetChunks int
}

// DefaultOptions contains the default signer options.
var DefaultOptions = Options{
	MinBlockSize: DefaultMinBlockSize,
	TargetChunks: DefaultTargetChunks,
}

// Signer produces fixed-length bucket signatures. It is stateless and safe
// for concurrent use.
type Signer struct {
	opts Options
}

// New creates a Signer.
func New(optFns ...func(o *Options)) *Signer {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MinBlockSize < 1 {
		opts.MinBlockSize = DefaultMinBlockSize
	}
	if opts.TargetChunks < 1 {
		opts.TargetChunks = DefaultTargetChunks
	}
	return &Signer{opts: opts}
}

// Sign returns stages bucket identifiers for text, each in [0, partitions).
// Identical inputs always produce identical signatures.
func (s *Signer) Sign(text string, stages, partitions int) ([]int, error) {
	if stages <= 0 || partitions <= 0 {
		return nil, ErrInvalidShape
	}

	chunks := s.Chunks(text)
	hashes := make([]uint64, len(chunks))
	for i, c := range chunks {
		hashes[i] = xxhash.Sum64String(c)
	}

	sig := make([]int, stages)
	for st := 0; st < stages; st++ {
		salt := uint64(st+1) * golden
		best := ^uint64(0)
		for _, h := range hashes {
			if v := mix(h ^ salt); v < best {
				best = v
			}
		}
		sig[st] = int(best % uint64(partitions))
	}
	return sig, nil
}

// BlockSize returns the trigger modulus used for a string of length n.
func (s *Signer) BlockSize(n int) uint32 {
	b := s.opts.MinBlockSize
	for b*s.opts.TargetChunks < n {
		b *= 2
	}
	return uint32(b)
}

// Chunks splits text at content-defined boundaries. The result is never
// empty; an empty string yields a single empty chunk.
func (s *Signer) Chunks(text string) []string {
	block := s.BlockSize(len(text))

	var (
		r      roller
		chunks []string
		start  int
	)
	for i := 0; i < len(text); i++ {
		if r.roll(text[i])%block == block-1 {
			chunks = append(chunks, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) || len(chunks) == 0 {
		chunks = append(chunks, text[start:])
	}
	return chunks
}

// roller is the spamsum rolling hash over the last rollingWindow bytes.
type roller struct {
	window     [rollingWindow]byte
	h1, h2, h3 uint32
	n          uint32
}

func (r *roller) roll(c byte) uint32 {
	r.h2 -= r.h1
	r.h2 += rollingWindow * uint32(c)

	r.h1 += uint32(c)
	r.h1 -= uint32(r.window[r.n%rollingWindow])

	r.window[r.n%rollingWindow] = c
	r.n++

	r.h3 <<= 5
	r.h3 ^= uint32(c)

	return r.h1 + r.h2 + r.h3
}

// mix is the splitmix64 finalizer.
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
