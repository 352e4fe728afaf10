package logical

// C references an unqualified column.
func C(name string) Column {
	return Column{Name: name}
}

// CQ references a column qualified by a table alias.
func CQ(table, name string) Column {
	return Column{Table: table, Name: name}
}

// V wraps a Go value as an untyped constant. The compiler resolves its
// storage type through the type catalog.
func V(value any) Constant {
	return Constant{Value: value}
}

// P declares a named parameter placeholder without a bound value.
func P(name string) Parameter {
	return Parameter{Name: name}
}

// Bind declares a named parameter with a bound value. A nil value binds an
// explicit NULL, which the nullability pass specializes on.
func Bind(name string, value any) Parameter {
	return Parameter{Name: name, Value: value, HasValue: true}
}

// Binary operator constructors.

// Eq builds left = right.
func Eq(left, right Expr) Binary { return Binary{Op: OpEq, Left: left, Right: right} }

// Ne builds left != right.
func Ne(left, right Expr) Binary { return Binary{Op: OpNe, Left: left, Right: right} }

// Lt builds left < right.
func Lt(left, right Expr) Binary { return Binary{Op: OpLt, Left: left, Right: right} }

// Le builds left <= right.
func Le(left, right Expr) Binary { return Binary{Op: OpLe, Left: left, Right: right} }

// Gt builds left > right.
func Gt(left, right Expr) Binary { return Binary{Op: OpGt, Left: left, Right: right} }

// Ge builds left >= right.
func Ge(left, right Expr) Binary { return Binary{Op: OpGe, Left: left, Right: right} }

// And builds left AND right.
func And(left, right Expr) Binary { return Binary{Op: OpAnd, Left: left, Right: right} }

// Or builds left OR right.
func Or(left, right Expr) Binary { return Binary{Op: OpOr, Left: left, Right: right} }

// Add builds left + right.
func Add(left, right Expr) Binary { return Binary{Op: OpAdd, Left: left, Right: right} }

// Sub builds left - right.
func Sub(left, right Expr) Binary { return Binary{Op: OpSub, Left: left, Right: right} }

// Mul builds left * right.
func Mul(left, right Expr) Binary { return Binary{Op: OpMul, Left: left, Right: right} }

// Div builds left / right.
func Div(left, right Expr) Binary { return Binary{Op: OpDiv, Left: left, Right: right} }

// Concat builds string concatenation. The dialect has no infix operator
// for it, so the compiler lowers this to a concat() call.
func Concat(left, right Expr) Binary { return Binary{Op: OpConcat, Left: left, Right: right} }

// Like builds left LIKE right.
func Like(left, right Expr) Binary { return Binary{Op: OpLike, Left: left, Right: right} }

// In builds left IN right.
func In(left, right Expr) Binary { return Binary{Op: OpIn, Left: left, Right: right} }

// TimeDiff builds timestamp subtraction; the compiler lowers it to a
// dateDiff call counting seconds.
func TimeDiff(left, right Expr) Binary { return Binary{Op: OpTimeDiff, Left: left, Right: right} }

// Not negates a predicate.
func Not(operand Expr) Unary { return Unary{Op: OpNot, Operand: operand} }

// Neg negates a numeric expression.
func Neg(operand Expr) Unary { return Unary{Op: OpNeg, Operand: operand} }

// IsNull tests for NULL.
func IsNull(operand Expr) Unary { return Unary{Op: OpIsNull, Operand: operand} }

// IsNotNull tests for NOT NULL.
func IsNotNull(operand Expr) Unary { return Unary{Op: OpIsNotNull, Operand: operand} }

// F applies a named dialect function.
func F(name string, args ...Expr) Call {
	return Call{Name: name, Args: args}
}

// Raw embeds a verbatim SQL fragment. The compiler rejects empty fragments.
func Raw(sql string) RawSQL {
	return RawSQL{SQL: sql}
}

// DictHandle is a typed handle on a lookup-table entity, resolved against
// the model catalog at compile time.
type DictHandle struct {
	entity string
}

// Dict opens a handle on a lookup-table entity.
func Dict(entity string) DictHandle {
	return DictHandle{entity: entity}
}

// Get fetches a named attribute for a key.
func (d DictHandle) Get(attribute string, key Expr) DictAccess {
	return DictAccess{Op: DictGet, Entity: d.entity, Attribute: attribute, Key: key}
}

// GetOrDefault fetches a named attribute, falling back to def when the key
// is absent.
func (d DictHandle) GetOrDefault(attribute string, key Expr, def Expr) DictAccess {
	return DictAccess{Op: DictGetOrDefault, Entity: d.entity, Attribute: attribute, Key: key, Default: def}
}

// ContainsKey tests key membership.
func (d DictHandle) ContainsKey(key Expr) DictAccess {
	return DictAccess{Op: DictHas, Entity: d.entity, Key: key}
}

// JSONPathBuilder authors a JSON subcolumn path.
type JSONPathBuilder struct {
	access JSONAccess
}

// JSONCol starts a JSON path on a column.
func JSONCol(column Column) *JSONPathBuilder {
	return &JSONPathBuilder{access: JSONAccess{Column: column}}
}

// Field appends a member access step.
func (b *JSONPathBuilder) Field(name string) *JSONPathBuilder {
	b.access.Segments = append(b.access.Segments, JSONSegment{Name: name})
	return b
}

// Item appends a member access step with a zero-based array index.
func (b *JSONPathBuilder) Item(name string, index int) *JSONPathBuilder {
	b.access.Segments = append(b.access.Segments, JSONSegment{Name: name, Index: &index})
	return b
}

// Path finishes the builder.
func (b *JSONPathBuilder) Path() JSONAccess {
	return b.access
}
