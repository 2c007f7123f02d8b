package domain

import "sort"

// IDSet is a hash set of user ids.
type IDSet map[int]struct{}

// NewIDSet returns a set holding the given ids.
func NewIDSet(ids ...int) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set.
func (s IDSet) Add(id int) {
	s[id] = struct{}{}
}

// Contains reports whether id is a member of the set.
func (s IDSet) Contains(id int) bool {
	_, ok := s[id]
	return ok
}

// clone returns an independent copy of the set.
func (s IDSet) clone() IDSet {
	c := make(IDSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// UserRecord identifies an actor and the set of ids it follows.
type UserRecord struct {
	ID      int
	Follows IDSet
}

// FollowGraph maps each known user id to the set of ids it follows.
// A FollowGraph is immutable once constructed.
type FollowGraph struct {
	follows map[int]IDSet
}

// NewFollowGraph builds a graph from records. Records are applied in order,
// so a later record with a repeated id replaces the earlier one; callers that
// need a different duplicate policy resolve it before calling.
func NewFollowGraph(records []UserRecord) *FollowGraph {
	g := &FollowGraph{follows: make(map[int]IDSet, len(records))}
	for _, r := range records {
		if r.Follows == nil {
			g.follows[r.ID] = IDSet{}
			continue
		}
		g.follows[r.ID] = r.Follows.clone()
	}
	return g
}

// Len returns the number of known users.
func (g *FollowGraph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.follows)
}

// Has reports whether id is a known user, not just a dangling reference.
func (g *FollowGraph) Has(id int) bool {
	if g == nil {
		return false
	}
	_, ok := g.follows[id]
	return ok
}

// Follows reports whether from follows to. Unknown users follow nobody.
func (g *FollowGraph) Follows(from, to int) bool {
	if g == nil {
		return false
	}
	return g.follows[from].Contains(to)
}

// EdgeCount returns the total number of follow edges, dangling ones included.
func (g *FollowGraph) EdgeCount() int {
	if g == nil {
		return 0
	}
	n := 0
	for _, s := range g.follows {
		n += len(s)
	}
	return n
}

// IDs returns all known user ids in ascending order.
func (g *FollowGraph) IDs() []int {
	if g == nil {
		return nil
	}
	ids := make([]int, 0, len(g.follows))
	for id := range g.follows {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// EachEdge calls fn once per follow edge. Iteration order is unspecified.
func (g *FollowGraph) EachEdge(fn func(from, to int)) {
	if g == nil {
		return
	}
	for from, targets := range g.follows {
		for to := range targets {
			fn(from, to)
		}
	}
}
