// Package diskann implements a disk-resident approximate nearest neighbor
// index in the LM-DiskANN variant of the Vamana graph.
//
// The algorithm is described in the following publications:
//
//	Suhas Jayaram Subramanya et al (2019). DiskANN: Fast Accurate
//	Billion-point Nearest Neighbor Search on a Single Node. In NeurIPS 2019.
//
//	Aditi Singh et al (2021). FreshDiskANN: A Fast and Accurate Graph-Based
//	ANN Index for Streaming Similarity Search. ArXiv.
//
//	Yu Pan et al (2023). LM-DiskANN: Low Memory Footprint in Disk-Native
//	Dynamic Graph-Based ANN Indexing. In IEEE BIGDATA 2023.
//
// # Layout
//
// The index is a single file of fixed-size blocks. Block 0 is the header;
// every further block holds one graph node: the node's own vector, its rowid,
// and for each out-neighbor the neighbor's full vector alongside its
// (rowid, block offset) pair. Storing neighbor vectors inline is the
// low-memory trade: a single block read both evaluates a candidate and
// expands the search frontier, so the index keeps no in-memory copy of the
// graph; a search holds only the nodes it has visited plus its bounded
// candidate list.
//
// # Operations
//
// Search is greedy best-first over the graph: a bounded candidate list seeded
// from the entry point, repeatedly expanding the closest unvisited candidate.
// Insert couples a search with robust pruning (the Vamana alpha rule) to pick
// diverse neighbors, then establishes the reverse edges, re-pruning any
// neighbor that would exceed the degree cap.
//
// All I/O flows through the vfs package; the index performs no syncs of its
// own and inherits the host's durability policy. A single index file must be
// driven by one goroutine at a time.
package diskann
