// Package domain contains the core entities of the mutual-follow workflow:
// user records, the immutable follow graph built from them, and the canonical
// mutual pairs derived from that graph. It is independent of any transport
// or configuration concerns.
package domain
