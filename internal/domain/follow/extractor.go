package follow

import "github.com/phrazzld/mutuals/internal/domain"

// Extract returns every pair of known users that follow each other.
//
// For each edge a→b the pair (a, b) is kept when b is a known user, b follows
// a back, and a < b. Self-follows are rejected by NewMutualPair; the a < b
// check emits each relationship from one side only, so the pairs need sorting
// but no de-duplication. Runs in O(edges) with constant-time membership tests.
func Extract(g *domain.FollowGraph) domain.ResultSet {
	pairs := domain.ResultSet{}
	g.EachEdge(func(a, b int) {
		if !g.Has(b) || !g.Follows(b, a) {
			return
		}
		p, err := domain.NewMutualPair(a, b)
		if err != nil || p.A != a {
			return
		}
		pairs = append(pairs, p)
	})
	pairs.Sort()
	return pairs
}
