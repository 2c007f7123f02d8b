package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// MutualPair is an unordered pair of users that follow each other,
// stored canonically with A < B.
type MutualPair struct {
	A int
	B int
}

// NewMutualPair returns the canonical pair for x and y in either order.
func NewMutualPair(x, y int) (MutualPair, error) {
	if x == y {
		return MutualPair{}, fmt.Errorf("%w: %d", ErrSelfPair, x)
	}
	if x > y {
		x, y = y, x
	}
	return MutualPair{A: x, B: y}, nil
}

// Less orders pairs by A, then B.
func (p MutualPair) Less(o MutualPair) bool {
	if p.A != o.A {
		return p.A < o.A
	}
	return p.B < o.B
}

// MarshalJSON encodes the pair as a two-element ascending array.
func (p MutualPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.A, p.B})
}

// UnmarshalJSON decodes a two-element ascending array.
func (p *MutualPair) UnmarshalJSON(data []byte) error {
	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPair, err)
	}
	if len(ids) != 2 || ids[0] >= ids[1] {
		return fmt.Errorf("%w: %s", ErrInvalidPair, string(data))
	}
	p.A, p.B = ids[0], ids[1]
	return nil
}

// ResultSet is the set of mutual pairs derived from one FollowGraph,
// kept sorted so its serialized form is deterministic.
type ResultSet []MutualPair

// NewResultSet returns the sorted, de-duplicated set of the given pairs.
// Use it for pairs of unknown provenance, such as a decoded submission.
func NewResultSet(pairs ...MutualPair) ResultSet {
	seen := make(map[MutualPair]struct{}, len(pairs))
	rs := make(ResultSet, 0, len(pairs))
	for _, p := range pairs {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		rs = append(rs, p)
	}
	rs.Sort()
	return rs
}

// Sort orders the pairs by (A, B) in place.
func (r ResultSet) Sort() {
	sort.Slice(r, func(i, j int) bool { return r[i].Less(r[j]) })
}

// Contains reports whether p is in the set.
func (r ResultSet) Contains(p MutualPair) bool {
	i := sort.Search(len(r), func(i int) bool { return !r[i].Less(p) })
	return i < len(r) && r[i] == p
}

// MarshalJSON encodes the set as an array of pairs; an empty set is [] not null.
func (r ResultSet) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]MutualPair(r))
}
