// Package vector implements the dense vector value type shared by the SQL
// surface and the disk index: parsing from text and blob form, canonical
// serialization, and cosine distance.
//
// The wire form of a vector is a little-endian u32 element count followed by
// the elements as little-endian IEEE-754 single-precision floats. The textual
// form is a bracketed, comma-separated element list ("[1,2.5,3]"). Both forms
// round-trip through Parse/Format.
package vector
