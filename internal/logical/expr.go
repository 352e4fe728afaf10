package logical

import "github.com/chime-db/chime/internal/chtype"

// Expr represents one node of an expression tree.
//
// The interface is sealed through the embeddable ExprBase marker: generic
// nodes live in this package, dialect-specific nodes embed ExprBase from
// their own package. Exhaustive type switches over Expr therefore handle
// the generic kinds plus a default branch for dialect extensions.
type Expr interface {
	isExpr() // Marker method - implemented by embedding ExprBase
}

// ExprBase is the embeddable marker that admits a type into the Expr union.
type ExprBase struct{}

func (ExprBase) isExpr() {}

// Column references a table column, optionally qualified by a table alias.
type Column struct {
	ExprBase

	// Table is the qualifying alias; empty means unqualified.
	Table string

	// Name is the column name.
	Name string
}

// Constant is a literal value with its resolved storage type.
type Constant struct {
	ExprBase

	Value any
	Type  chtype.Type
}

// Parameter is a named placeholder bound at execution time.
// Value carries the currently bound value when the host has one; a nil
// Value with HasValue set represents an explicitly bound NULL.
type Parameter struct {
	ExprBase

	Name     string
	Type     chtype.Type
	Value    any
	HasValue bool
}

// BinaryOp enumerates generic binary operators.
type BinaryOp string

// Binary operators of the generic expression model.
const (
	OpEq         BinaryOp = "="
	OpNe         BinaryOp = "!="
	OpLt         BinaryOp = "<"
	OpLe         BinaryOp = "<="
	OpGt         BinaryOp = ">"
	OpGe         BinaryOp = ">="
	OpAnd        BinaryOp = "AND"
	OpOr         BinaryOp = "OR"
	OpAdd        BinaryOp = "+"
	OpSub        BinaryOp = "-"
	OpMul        BinaryOp = "*"
	OpDiv        BinaryOp = "/"
	OpMod        BinaryOp = "%"
	OpConcat     BinaryOp = "||"
	OpLike       BinaryOp = "LIKE"
	OpIn         BinaryOp = "IN"
	OpTimeDiff   BinaryOp = "TIME_DIFF" // timestamp subtraction, seconds
)

// Binary applies a binary operator to two operands.
type Binary struct {
	ExprBase

	Op    BinaryOp
	Left  Expr
	Right Expr
}

// UnaryOp enumerates generic unary operators.
type UnaryOp string

// Unary operators of the generic expression model.
const (
	OpNot       UnaryOp = "NOT"
	OpNeg       UnaryOp = "-"
	OpIsNull    UnaryOp = "IS NULL"
	OpIsNotNull UnaryOp = "IS NOT NULL"
)

// Unary applies a unary operator to one operand.
type Unary struct {
	ExprBase

	Op      UnaryOp
	Operand Expr
}

// Call applies a named dialect function to its arguments.
type Call struct {
	ExprBase

	Name string
	Args []Expr
}

// DictAccess is a lookup against a typed dictionary handle, recognized and
// lowered to the dialect's dictionary accessor functions during compilation.
type DictAccess struct {
	ExprBase

	// Op is the lookup flavor.
	Op DictOp

	// Entity names the lookup-table entity in the model catalog.
	Entity string

	// Attribute is the explicitly named attribute to fetch.
	Attribute string

	// Key is the lookup key expression.
	Key Expr

	// Default is the fallback expression for DictGetOrDefault.
	Default Expr
}

// DictOp enumerates dictionary lookup flavors.
type DictOp string

// Dictionary lookup flavors.
const (
	DictGet          DictOp = "GET"
	DictGetOrDefault DictOp = "GET_OR_DEFAULT"
	DictHas          DictOp = "HAS"
)

// RawSQL is a verbatim SQL escape. The fragment must be a non-empty
// compile-time literal; the compiler rejects anything else.
type RawSQL struct {
	ExprBase

	SQL string
}

// JSONAccess addresses a JSON subcolumn path on a column.
// Indices are zero-based here; the generator converts to the dialect's
// one-based indexing.
type JSONAccess struct {
	ExprBase

	Column   Column
	Segments []JSONSegment
}

// JSONSegment is one path step: a member name with an optional array index.
type JSONSegment struct {
	Name  string
	Index *int // zero-based, nil when the step is not an array access
}
