package ctph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const corpus = "Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod " +
	"tempor incididunt ut labore et dolore magna aliqua. Ut enim ad minim veniam, " +
	"quis nostrud exercitation ullamco laboris nisi ut aliquip ex ea commodo consequat. " +
	"Duis aute irure dolor in reprehenderit in voluptate velit esse cillum dolore eu " +
	"fugiat nulla pariatur. Excepteur sint occaecat cupidatat non proident, sunt in " +
	"culpa qui officia deserunt mollit anim id est laborum."

func TestSign_ShapeAndRange(t *testing.T) {
	s := New()
	sig, err := s.Sign(corpus, 8, 5)
	require.NoError(t, err)
	require.Len(t, sig, 8)
	for _, b := range sig {
		assert.GreaterOrEqual(t, b, 0)
		assert.Less(t, b, 5)
	}
}

func TestSign_Deterministic(t *testing.T) {
	a, err := New().Sign(corpus, 16, 32)
	require.NoError(t, err)
	b, err := New().Sign(strings.Clone(corpus), 16, 32)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSign_InvalidShape(t *testing.T) {
	_, err := New().Sign("x", 0, 4)
	assert.ErrorIs(t, err, ErrInvalidShape)
	_, err = New().Sign("x", 4, 0)
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestSign_EmptyString(t *testing.T) {
	sig, err := New().Sign("", 3, 7)
	require.NoError(t, err)
	assert.Len(t, sig, 3)
}

func TestChunks_Reassemble(t *testing.T) {
	s := New()
	for _, text := range []string{"", "a", "abc", corpus, strings.Repeat(corpus, 10)} {
		chunks := s.Chunks(text)
		require.NotEmpty(t, chunks)
		assert.Equal(t, text, strings.Join(chunks, ""))
	}
}

func TestBlockSize(t *testing.T) {
	s := New()
	assert.Equal(t, uint32(3), s.BlockSize(10))
	assert.Equal(t, uint32(6), s.BlockSize(193))

	custom := New(func(o *Options) {
		o.MinBlockSize = 4
		o.TargetChunks = 8
	})
	assert.Equal(t, uint32(4), custom.BlockSize(32))
	assert.Equal(t, uint32(8), custom.BlockSize(33))
}

func TestSign_SimilarStringsCollide(t *testing.T) {
	const stages, partitions = 64, 1024
	s := New(func(o *Options) { o.TargetChunks = 256 })

	edited := strings.Replace(corpus, "labore et dolore", "labore et delore", 1)
	unrelated := strings.Repeat("zyxwvutsrqponmlkjihgfedcba0987654321", 12)

	base, err := s.Sign(corpus, stages, partitions)
	require.NoError(t, err)
	near, err := s.Sign(edited, stages, partitions)
	require.NoError(t, err)
	far, err := s.Sign(unrelated, stages, partitions)
	require.NoError(t, err)

	collisions := func(a, b []int) int {
		n := 0
		for i := range a {
			if a[i] == b[i] {
				n++
			}
		}
		return n
	}

	assert.Greater(t, collisions(base, near), stages/2)
	assert.Less(t, collisions(base, far), stages/4)
}
