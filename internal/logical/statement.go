package logical

// StatementKind distinguishes the statements the translator can emit.
type StatementKind string

// Statement kinds.
const (
	KindSelect StatementKind = "SELECT"
	KindDelete StatementKind = "DELETE"
)

// Statement is one complete logical query: the generic relational clauses
// plus the ordered list of recognized dialect extension calls recorded by
// the fluent builder.
//
// Statements are value-built by the Query builder and treated as immutable
// afterwards; plan rewrites produce fresh Statement values with shared
// subtrees.
type Statement struct {
	Kind StatementKind

	// Columns is the projection list. Empty means SELECT *.
	Columns []SelectItem

	From Relation

	Where   Expr
	GroupBy []Expr
	Having  Expr
	OrderBy []Ordering

	// Limit and Offset are row bounds; nil means absent.
	Limit  *int64
	Offset *int64

	// Extensions records dialect extension calls in authoring order.
	// The compiler classifies them into the per-compilation context.
	Extensions []ExtensionCall
}

// SelectItem is one projection entry.
type SelectItem struct {
	Expr  Expr
	Alias string
}

// Ordering is one ORDER BY entry.
type Ordering struct {
	Expr       Expr
	Descending bool
}
