package logical

// Relation represents one FROM-clause source.
//
// Sealed through the embeddable RelationBase marker, mirroring Expr.
// Generic sources (table references, joins) live here; dialect wrappers
// (sampling modifiers, table functions, dictionary tables) live in chexpr.
type Relation interface {
	isRelation() // Marker method - implemented by embedding RelationBase
}

// RelationBase is the embeddable marker that admits a type into the
// Relation union.
type RelationBase struct{}

func (RelationBase) isRelation() {}

// TableRef references a stored table by name.
type TableRef struct {
	RelationBase

	// Entity names the model-catalog entity this reference resolves,
	// when the query was composed against a typed model. Empty for ad
	// hoc table references.
	Entity string

	// Database qualifies the table; empty uses the current database.
	Database string

	// Table is the native table name.
	Table string

	// Alias is the reference alias used to qualify columns.
	Alias string
}

// JoinKind enumerates supported join flavors.
type JoinKind string

// Join flavors.
const (
	JoinInner JoinKind = "INNER"
	JoinLeft  JoinKind = "LEFT"
	JoinRight JoinKind = "RIGHT"
	JoinFull  JoinKind = "FULL"
	JoinCross JoinKind = "CROSS"
)

// Join combines two relations on a predicate.
type Join struct {
	RelationBase

	Kind  JoinKind
	Left  Relation
	Right Relation
	On    Expr // nil only for JoinCross
}
