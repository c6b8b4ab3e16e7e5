package diskvec

import (
	"context"
	"errors"
	"fmt"

	"github.com/vekta-labs/diskvec/diskann"
	"github.com/vekta-labs/diskvec/vector"
)

// Match is one search result: the host rowid and its cosine distance from
// the query.
type Match = diskann.Match

// Create validates an index declaration. It has no on-disk effect: the index
// file materializes when a cursor first opens it, so a created-but-never-
// opened index costs nothing.
func Create(desc IndexDescriptor) error {
	return desc.validate()
}

// IndexPath derives the index file path from the host database path and the
// index name.
func IndexPath(dbPath, indexName string) string {
	return fmt.Sprintf("%s-vectoridx-%s", dbPath, indexName)
}

// Cursor is the host database's handle to one vector index. A cursor owns
// its open file exclusively for its lifetime; two cursors on the same file
// are undefined.
type Cursor struct {
	idx  *diskann.Index
	desc IndexDescriptor
	path string
	log  *Logger
}

// Open opens the index declared by desc for the database at dbPath, creating
// the index file when it does not exist yet.
func Open(dbPath string, desc IndexDescriptor, cfg *Config) (*Cursor, error) {
	if err := desc.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	opts := desc.options()
	if cfg.CacheBlocks != 0 {
		opts.CacheBlocks = max(cfg.CacheBlocks, 0)
	}

	path := IndexPath(dbPath, desc.Name)
	idx, err := diskann.Open(cfg.FS, path, opts, cfg.Logger.Logger)
	if err != nil {
		return nil, err
	}

	cur := &Cursor{idx: idx, desc: desc, path: path, log: cfg.Logger}
	vectorsTotal.WithLabelValues(desc.Name).Set(float64(idx.Count()))
	return cur, nil
}

// Path returns the index file path backing this cursor.
func (c *Cursor) Path() string { return c.path }

// Insert decodes one (vector_blob, rowid) record and places it in the graph.
// A partial backlink is logged and counted but reported as success: the node
// is persisted and the index stays searchable.
func (c *Cursor) Insert(ctx context.Context, blob []byte, rowid int64) error {
	if rowid <= 0 {
		return fmt.Errorf("diskvec: rowid %d out of range", rowid)
	}
	v, err := vector.ParseBlob(blob)
	if err != nil {
		c.log.LogInsert(ctx, c.desc.Name, rowid, err)
		return err
	}

	err = c.idx.Insert(ctx, v.Data(), uint64(rowid))
	if errors.Is(err, ErrPartialBacklink) {
		c.log.LogPartialBacklink(ctx, c.desc.Name, rowid, err)
		partialBacklinksTotal.WithLabelValues(c.desc.Name).Inc()
		err = nil
	}
	if err != nil {
		c.log.LogInsert(ctx, c.desc.Name, rowid, err)
		return err
	}

	c.log.LogInsert(ctx, c.desc.Name, rowid, nil)
	insertsTotal.WithLabelValues(c.desc.Name).Inc()
	vectorsTotal.WithLabelValues(c.desc.Name).Inc()
	return nil
}

// Search returns the k nearest rowids to q in ascending distance order.
func (c *Cursor) Search(ctx context.Context, q *vector.Vector, k int) ([]Match, error) {
	matches, err := c.idx.Search(ctx, q.Data(), k)
	c.log.LogSearch(ctx, c.desc.Name, k, len(matches), err)
	if err != nil {
		return nil, err
	}
	searchesTotal.WithLabelValues(c.desc.Name).Inc()
	return matches, nil
}

// Stats reports the current shape of the underlying graph.
func (c *Cursor) Stats(ctx context.Context) (diskann.Stats, error) {
	return c.idx.Stats(ctx)
}

// Close releases the cursor's file handle. The cursor is unusable
// afterwards.
func (c *Cursor) Close() error {
	return c.idx.Close()
}
