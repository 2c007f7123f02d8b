// Package follow turns raw user records into a follow graph and extracts the
// pairs of users that follow each other.
//
// The builder is tolerant: a malformed record is skipped and reported as a
// Diagnostic while the rest of the input is still processed. The extractor is
// a pure function over an immutable graph and visits every follow edge once,
// using hash-set membership to test reciprocity.
package follow
