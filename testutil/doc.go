// Package testutil provides testing utilities for knngraph.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded data generators and reference similarities.
//
// # Random Data Generation
//
//	rng := testutil.NewRNG(seed)
//	s := rng.String(60)                          // lowercase ASCII
//	corpus := rng.NearDuplicates(50, 4, 60)      // clusters of one-edit variants
//
// # Similarities
//
//	testutil.IntSimilarity(a, b)     // 1 / (1 + |a-b|)
//	testutil.BigramJaccard(a, b)     // Jaccard index over byte bigrams
package testutil
