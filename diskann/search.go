package diskann

import (
	"context"
	"fmt"
	"slices"

	"github.com/bits-and-blooms/bitset"
	"github.com/tidwall/btree"

	"github.com/vekta-labs/diskvec/vector"
)

// candidate is one graph node scored against the current query (or, during
// pruning, against the node being linked).
type candidate struct {
	dist   float64
	id     uint64
	offset uint64
	node   *Node
}

// candidateLess orders candidates by ascending distance with NaN after every
// finite value, tie-broken by lower id. It is a strict weak ordering, so it
// doubles as the frontier's btree comparator.
func candidateLess(a, b candidate) bool {
	if vector.Less(a.dist, b.dist) {
		return true
	}
	if vector.Less(b.dist, a.dist) {
		return false
	}
	return a.id < b.id
}

// searchState carries the outcome of one greedy search: the visited set and
// whatever frontier remained when no unvisited candidate was left.
type searchState struct {
	visited  []candidate
	frontier *btree.BTreeG[candidate]
}

// all flattens visited and frontier into one candidate slice.
func (st *searchState) all() []candidate {
	out := make([]candidate, 0, len(st.visited)+st.frontier.Len())
	out = append(out, st.visited...)
	st.frontier.Scan(func(c candidate) bool {
		out = append(out, c)
		return true
	})
	return out
}

// searchGraph runs greedy best-first search from the entry point with a
// candidate list capped at l. Every node block is read at most once; a
// neighbor is ranked from the vector stored inline in its parent's block, so
// a block read happens only when the neighbor actually joins the frontier.
func (idx *Index) searchGraph(ctx context.Context, q []float32, l int) (*searchState, error) {
	st := &searchState{frontier: btree.NewBTreeG[candidate](candidateLess)}

	entry := idx.file.Header().EntryOffset
	if entry == 0 {
		return st, nil
	}

	blockSize := uint64(idx.file.Header().BlockSize)
	seen := bitset.New(uint(idx.file.NumBlocks()))

	entryNode, err := idx.loadNode(entry)
	if err != nil {
		return nil, idx.fail(err)
	}
	seen.Set(uint(entry / blockSize))
	st.frontier.Set(candidate{
		dist:   vector.Cosine(q, entryNode.Vec),
		id:     entryNode.ID,
		offset: entry,
		node:   entryNode,
	})

	for st.frontier.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		curr, _ := st.frontier.Min()
		st.frontier.Delete(curr)
		st.visited = append(st.visited, curr)

		for _, nb := range curr.node.Neighbors {
			blockNo := uint(nb.Offset / blockSize)
			if seen.Test(blockNo) {
				continue
			}
			seen.Set(blockNo)

			next := candidate{
				dist:   vector.Cosine(q, nb.Vec),
				id:     nb.ID,
				offset: nb.Offset,
			}

			// Skip the block read when a full frontier would evict
			// the newcomer straight away.
			if st.frontier.Len() >= l {
				worst, _ := st.frontier.Max()
				if !candidateLess(next, worst) {
					continue
				}
			}

			node, err := idx.loadNode(nb.Offset)
			if err != nil {
				return nil, idx.fail(err)
			}
			if node.ID != nb.ID {
				return nil, idx.fail(&CorruptError{
					Offset: nb.Offset,
					Reason: fmt.Sprintf("block owner %d does not match edge id %d", node.ID, nb.ID),
				})
			}
			next.node = node

			st.frontier.Set(next)
			if st.frontier.Len() > l {
				worst, _ := st.frontier.Max()
				st.frontier.Delete(worst)
			}
		}
	}

	return st, nil
}

// Search returns the k nearest rowids to q in ascending distance order, ties
// broken by lower rowid. An empty graph yields an empty result.
func (idx *Index) Search(ctx context.Context, q []float32, k int) ([]Match, error) {
	if err := idx.guard(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if err := idx.checkQuery(q); err != nil {
		return nil, err
	}

	l := idx.opts.L
	if k > l {
		l = k
	}

	st, err := idx.searchGraph(ctx, q, l)
	if err != nil {
		return nil, err
	}

	ranked := st.all()
	slices.SortFunc(ranked, func(a, b candidate) int {
		if candidateLess(a, b) {
			return -1
		}
		if candidateLess(b, a) {
			return 1
		}
		return 0
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	out := make([]Match, len(ranked))
	for i, c := range ranked {
		out[i] = Match{RowID: c.id, Distance: c.dist}
	}
	return out, nil
}
