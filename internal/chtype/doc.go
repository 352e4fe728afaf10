// Package chtype maps Go values to ClickHouse storage types.
//
// The package centers on the sealed Type interface: every storage type the
// dialect supports is represented by one immutable descriptor value that
// knows its canonical type name (the text that appears in DDL and CAST
// expressions), how to render a Go value as a SQL literal, and how to
// convert between the Go-side semantic value and the wire form the driver
// layer exchanges with the server.
//
// Descriptors are constructed once and shared. Equality is structural: two
// descriptors are interchangeable exactly when their canonical names match,
// because the name encodes the full nested structure (Array(String),
// Map(String, UInt32), Tuple(UInt8, String), ...).
//
// The Catalog is the registry that resolves a Go type to its descriptor.
// Lookups for unmapped types fail with ErrCodeUnsupportedType; literal
// rendering with a value whose runtime shape does not match the descriptor
// fails with ErrCodeInvalidLiteral. Both are programmer errors surfaced at
// query compile time, never during execution.
package chtype
