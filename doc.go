// Package diskvec embeds a disk-resident approximate nearest neighbor index
// into a relational host. It augments SQL with vector ingestion, exact cosine
// distance, and graph-based k-NN retrieval over high-dimensional points with
// a bounded memory footprint.
//
// The index is an LM-DiskANN variant of the Vamana graph: every on-disk node
// block stores its own vector together with the full vectors of its
// out-neighbors, so a single block read both evaluates a candidate and
// expands the search frontier. See the diskann package for the core engine
// and file format.
//
// # Cursor API
//
// A host database drives one index through a Cursor. Each table index maps
// to its own file next to the database file:
//
//	desc := diskvec.IndexDescriptor{Name: "embedding_idx", Dims: 768}
//	if err := diskvec.Create(desc); err != nil { ... }
//
//	cur, err := diskvec.Open("/data/app.db", desc, nil)
//	if err != nil { ... }
//	defer cur.Close()
//
//	err = cur.Insert(ctx, blob, rowid)        // one inserted row
//	matches, err = cur.Search(ctx, query, 10) // rowids in rank order
//
// A cursor owns its file handle exclusively; the host serializes writers the
// same way it serializes write transactions.
//
// # SQL surface
//
// The sqlfunc package registers the vector(), vector_extract() and
// vector_distance_cos() scalar functions with the pure-Go SQLite driver, so
// ordinary SQL can construct and compare vectors outside the index.
package diskvec
