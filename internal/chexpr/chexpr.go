// Package chexpr defines the dialect-specific node set that plugs into the
// logical query tree: constructs the generic model has no shape for, such
// as deduplication/sampling modifiers on table references, window function
// calls with frame specs, table-function sources, dictionary tables, JSON
// subcolumn paths and raw SQL fragments.
//
// Every node is immutable once constructed. Rewrites build new nodes and
// may share unchanged subtrees; nodes live for a single query compilation
// and are discarded once SQL text has been generated.
package chexpr

import (
	"github.com/chime-db/chime/internal/logical"
)

// Modifier wraps a table reference with the dialect's read modifiers:
// FINAL deduplication and/or SAMPLE fraction [OFFSET offset].
type Modifier struct {
	logical.RelationBase

	// Table is the wrapped source.
	Table logical.Relation

	// Final requests deduplicated reads.
	Final bool

	// Sample is the sampling fraction in (0, 1]; nil disables sampling.
	Sample *float64

	// SampleOffset shifts the sampled segment; nil when absent.
	SampleOffset *float64
}

// TableFunctionCall replaces a table reference that resolves to an
// externally-federated source. RenderedCall is the opaque provider call
// text produced by the external resolver.
type TableFunctionCall struct {
	logical.RelationBase

	Alias        string
	Provider     string
	RenderedCall string
}

// DictionaryTableCall replaces a table reference that resolves to a
// dictionary, reading it through the dictionary() table function.
type DictionaryTableCall struct {
	logical.RelationBase

	Alias      string
	Dictionary string
}

// WindowCall is a resolved window function application: the dialect
// function name, its required arguments and the OVER clause parts.
type WindowCall struct {
	logical.ExprBase

	Name        string
	Args        []logical.Expr
	PartitionBy []logical.Expr
	OrderBy     []logical.Ordering
	Frame       *logical.FrameSpec
}

// JSONPath addresses a JSON subcolumn through successive quoted-identifier
// accesses. Array indices are zero-based here and converted to the
// dialect's one-based indexing at render time.
type JSONPath struct {
	logical.ExprBase

	Column   logical.Column
	Segments []logical.JSONSegment
}

// RawFragment is verbatim SQL text passed through untouched.
type RawFragment struct {
	logical.ExprBase

	SQL string
}
