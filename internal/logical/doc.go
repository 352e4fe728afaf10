// Package logical defines the dialect-independent query tree.
//
// A query is composed through the fluent Query builder and captured as a
// Statement: a tree of relations (table references, joins), expressions
// (columns, constants, parameters, operator applications) and a flat list
// of recognized extension calls (sampling, fill, limit-by, window specs,
// ...). The tree carries no SQL text; rendering belongs to the sqlgen
// package, dialect-specific rewrites to compile and rewrite.
//
// Expression and relation interfaces are sealed through embeddable marker
// bases. Generic nodes live here; the dialect-specific node set (modifier
// wrappers, window calls, table functions) lives in chexpr and plugs into
// the same tree via the exported bases. Tree transforms produce new nodes
// rather than mutating in place, so subtrees may be shared freely between
// plan variants.
package logical
