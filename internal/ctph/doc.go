// Package ctph computes context-triggered piecewise fuzzy signatures for
// strings.
//
// A rolling hash over a small sliding window selects chunk boundaries from
// the content itself, so a local edit only changes the chunks it touches.
// Each chunk is hashed once; every stage then salts the chunk hashes with its
// own constant and keeps the minimum (a MinHash over chunks). Two strings
// collide in a stage with probability close to the Jaccard similarity of
// their chunk sets, which makes the per-stage value usable as an LSH bucket.
//
//	signer := ctph.New()
//	sig, _ := signer.Sign("the quick brown fox", 4, 16) // 4 buckets in [0, 16)
package ctph
