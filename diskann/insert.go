package diskann

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/vekta-labs/diskvec/vector"
)

// Insert adds (vec, rowid) to the graph: a greedy search finds the
// neighborhood, robust pruning selects up to R diverse out-edges, the new
// block is persisted, and reverse edges are installed on every selected
// neighbor.
//
// A failure while writing reverse edges is not fatal: the new node is
// already persisted, so the error satisfies errors.Is(err, ErrPartialBacklink)
// and the insert counts as applied. When no reverse edge was written, the
// new node has no incoming edge and searches from the entry point do not
// reach it.
func (idx *Index) Insert(ctx context.Context, vec []float32, rowid uint64) error {
	if err := idx.guard(); err != nil {
		return err
	}
	if rowid == 0 {
		return fmt.Errorf("diskann: rowid must be nonzero")
	}
	if err := idx.checkQuery(vec); err != nil {
		return err
	}

	header := idx.file.Header()

	// First node: persist it and promote it to entry point.
	if header.EntryOffset == 0 {
		buf, err := MarshalNode(header, &Node{ID: rowid, Vec: vec})
		if err != nil {
			return err
		}
		off, err := idx.file.AppendBlock(buf)
		if err != nil {
			return err
		}
		header.EntryOffset = off
		return idx.file.UpdateHeader()
	}

	st, err := idx.searchGraph(ctx, vec, idx.opts.L)
	if err != nil {
		return err
	}

	selected := robustPrune(rowid, st.all(), idx.opts.Alpha, idx.degreeCap())

	node := &Node{ID: rowid, Vec: vec, Neighbors: make([]Neighbor, len(selected))}
	for i, c := range selected {
		node.Neighbors[i] = Neighbor{ID: c.id, Offset: c.offset, Vec: c.node.Vec}
	}

	buf, err := MarshalNode(header, node)
	if err != nil {
		return err
	}
	off, err := idx.file.AppendBlock(buf)
	if err != nil {
		return err
	}

	var partial error
	for _, y := range selected {
		if err := idx.backlink(y, rowid, off, vec); err != nil {
			if errors.Is(err, ErrCorrupt) {
				return idx.fail(err)
			}
			idx.log.Warn("backlink failed",
				"id", rowid,
				"neighbor", y.id,
				"offset", y.offset,
				"error", err,
			)
			if partial == nil {
				partial = &PartialBacklinkError{NeighborID: y.id, NeighborOffset: y.offset, Err: err}
			}
		}
	}
	return partial
}

// backlink installs the edge y -> (id, off). When the edge would push y past
// the degree cap, y's neighbor list is re-pruned with the new node as one of
// the candidates; the new edge is re-added afterwards if the prune dropped
// it, so an insert never leaves its node without a reverse edge.
func (idx *Index) backlink(y candidate, id uint64, off uint64, vec []float32) error {
	node, err := idx.loadNode(y.offset)
	if err != nil {
		return err
	}
	if node.ID != y.id {
		return &CorruptError{
			Offset: y.offset,
			Reason: fmt.Sprintf("block owner %d does not match edge id %d", node.ID, y.id),
		}
	}

	for _, nb := range node.Neighbors {
		if nb.ID == id {
			return nil
		}
	}

	newEdge := Neighbor{ID: id, Offset: off, Vec: vec}
	if len(node.Neighbors) < idx.degreeCap() {
		node.Neighbors = append(node.Neighbors, newEdge)
	} else {
		cands := make([]candidate, 0, len(node.Neighbors)+1)
		for _, nb := range node.Neighbors {
			cands = append(cands, candidate{
				dist:   vector.Cosine(node.Vec, nb.Vec),
				id:     nb.ID,
				offset: nb.Offset,
				node:   &Node{ID: nb.ID, Vec: nb.Vec},
			})
		}
		cands = append(cands, candidate{
			dist:   vector.Cosine(node.Vec, vec),
			id:     id,
			offset: off,
			node:   &Node{ID: id, Vec: vec},
		})

		pruned := robustPrune(node.ID, cands, idx.opts.Alpha, idx.degreeCap())

		// The fresh node must keep at least one reverse edge or it would
		// be unreachable from the entry point. When the prune drops it,
		// it takes the farthest survivor's slot.
		kept := false
		for _, c := range pruned {
			if c.id == id {
				kept = true
				break
			}
		}
		if !kept {
			if len(pruned) == idx.degreeCap() {
				pruned = pruned[:len(pruned)-1]
			}
			pruned = append(pruned, candidate{
				dist:   vector.Cosine(node.Vec, vec),
				id:     id,
				offset: off,
				node:   &Node{ID: id, Vec: vec},
			})
		}

		node.Neighbors = make([]Neighbor, len(pruned))
		for i, c := range pruned {
			node.Neighbors[i] = Neighbor{ID: c.id, Offset: c.offset, Vec: c.node.Vec}
		}
	}

	buf, err := MarshalNode(idx.file.Header(), node)
	if err != nil {
		return err
	}
	return idx.file.WriteBlock(y.offset, buf)
}

// robustPrune selects up to r diverse candidates by the Vamana alpha rule:
// walking candidates in ascending distance from the pivot, a candidate x
// survives only when alpha*d(x, y) > d(pivot, x) for every already-selected
// y. Candidates carrying the pivot's own id are skipped.
func robustPrune(pivot uint64, cands []candidate, alpha float64, r int) []candidate {
	slices.SortFunc(cands, func(a, b candidate) int {
		if candidateLess(a, b) {
			return -1
		}
		if candidateLess(b, a) {
			return 1
		}
		return 0
	})

	selected := make([]candidate, 0, r)
	for _, x := range cands {
		if x.id == pivot {
			continue
		}
		keep := true
		for _, y := range selected {
			if !(alpha*vector.Cosine(x.node.Vec, y.node.Vec) > x.dist) {
				keep = false
				break
			}
		}
		if keep {
			selected = append(selected, x)
			if len(selected) == r {
				break
			}
		}
	}
	return selected
}
