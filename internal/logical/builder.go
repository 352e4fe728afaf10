package logical

import "sort"

// Query is the fluent authoring surface over Statement.
//
// Methods mutate the builder and return it for chaining; Build snapshots
// the accumulated Statement. Validation is deliberately deferred to the
// compiler so that every misuse surfaces as one compile error with the
// offending construct named, rather than a panic mid-chain.
type Query struct {
	stmt Statement
}

// From starts a SELECT query against a model entity (or raw table name).
func From(entity string) *Query {
	return &Query{stmt: Statement{
		Kind: KindSelect,
		From: &TableRef{Entity: entity, Table: entity},
	}}
}

// FromTable starts a SELECT query against an explicit database/table pair.
func FromTable(database, table string) *Query {
	return &Query{stmt: Statement{
		Kind: KindSelect,
		From: &TableRef{Database: database, Table: table},
	}}
}

// As sets the alias of the base table reference.
func (q *Query) As(alias string) *Query {
	if ref, ok := q.stmt.From.(*TableRef); ok {
		ref.Alias = alias
	}
	return q
}

// Select sets the projection list.
func (q *Query) Select(exprs ...Expr) *Query {
	for _, e := range exprs {
		q.stmt.Columns = append(q.stmt.Columns, SelectItem{Expr: e})
	}
	return q
}

// SelectAs appends one aliased projection entry.
func (q *Query) SelectAs(e Expr, alias string) *Query {
	q.stmt.Columns = append(q.stmt.Columns, SelectItem{Expr: e, Alias: alias})
	return q
}

// Where adds a filter predicate; repeated calls AND together.
func (q *Query) Where(pred Expr) *Query {
	if q.stmt.Where == nil {
		q.stmt.Where = pred
	} else {
		q.stmt.Where = And(q.stmt.Where, pred)
	}
	return q
}

// Join adds an inner join against another entity.
func (q *Query) Join(entity, alias string, on Expr) *Query {
	q.stmt.From = &Join{
		Kind:  JoinInner,
		Left:  q.stmt.From,
		Right: &TableRef{Entity: entity, Table: entity, Alias: alias},
		On:    on,
	}
	return q
}

// GroupBy appends grouping keys.
func (q *Query) GroupBy(keys ...Expr) *Query {
	q.stmt.GroupBy = append(q.stmt.GroupBy, keys...)
	return q
}

// Having sets the post-aggregation filter.
func (q *Query) Having(pred Expr) *Query {
	q.stmt.Having = pred
	return q
}

// OrderBy appends an ascending ordering key.
func (q *Query) OrderBy(key Expr) *Query {
	q.stmt.OrderBy = append(q.stmt.OrderBy, Ordering{Expr: key})
	return q
}

// OrderByDesc appends a descending ordering key.
func (q *Query) OrderByDesc(key Expr) *Query {
	q.stmt.OrderBy = append(q.stmt.OrderBy, Ordering{Expr: key, Descending: true})
	return q
}

// Take sets the row limit.
func (q *Query) Take(n int64) *Query {
	q.stmt.Limit = &n
	return q
}

// Skip sets the row offset.
func (q *Query) Skip(n int64) *Query {
	q.stmt.Offset = &n
	return q
}

// Delete turns the query into a delete statement over its filter.
func (q *Query) Delete() *Query {
	q.stmt.Kind = KindDelete
	return q
}

// Build snapshots the accumulated statement.
func (q *Query) Build() Statement {
	return q.stmt
}

// ext appends one extension call record.
func (q *Query) ext(call ExtensionCall) *Query {
	q.stmt.Extensions = append(q.stmt.Extensions, call)
	return q
}

// Final requests deduplicated reads.
func (q *Query) Final() *Query {
	return q.ext(ExtensionCall{Kind: ExtFinal})
}

// Sample requests probabilistic sampling with a literal fraction.
func (q *Query) Sample(fraction float64) *Query {
	return q.SampleExpr(V(fraction))
}

// SampleOffset requests sampling with a literal fraction and offset.
func (q *Query) SampleOffset(fraction, offset float64) *Query {
	return q.ext(ExtensionCall{Kind: ExtSample, Sample: &SampleArgs{
		Fraction: V(fraction),
		Offset:   V(offset),
	}})
}

// SampleExpr requests sampling with an arbitrary fraction expression.
// The compiler requires it to reduce to a compile-time constant.
func (q *Query) SampleExpr(fraction Expr) *Query {
	return q.ext(ExtensionCall{Kind: ExtSample, Sample: &SampleArgs{Fraction: fraction}})
}

// Setting records one SETTINGS override.
func (q *Query) Setting(name string, value any) *Query {
	return q.ext(ExtensionCall{Kind: ExtSettings, Settings: []SettingArg{{Name: name, Value: value}}})
}

// Settings records a batch of SETTINGS overrides in sorted name order, so
// the emitted clause is stable across runs. Names already recorded keep
// their position and take the new value.
func (q *Query) Settings(values map[string]any) *Query {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	args := make([]SettingArg, 0, len(names))
	for _, name := range names {
		args = append(args, SettingArg{Name: name, Value: values[name]})
	}
	return q.ext(ExtensionCall{Kind: ExtSettings, Settings: args})
}

// WithFill records a basic WITH FILL on an ordering column.
func (q *Query) WithFill(column string) *Query {
	return q.ext(ExtensionCall{Kind: ExtFill, Fill: &FillArgs{Column: column}})
}

// WithFillRange records WITH FILL with explicit bounds.
func (q *Query) WithFillRange(column string, from, to any) *Query {
	return q.ext(ExtensionCall{Kind: ExtFill, Fill: &FillArgs{
		Column: column,
		From:   V(from),
		To:     V(to),
	}})
}

// WithFillStep records WITH FILL with an explicit step. The step may be a
// number, a duration, or a chtype.Interval.
func (q *Query) WithFillStep(column string, step any) *Query {
	return q.ext(ExtensionCall{Kind: ExtFill, Fill: &FillArgs{
		Column: column,
		Step:   V(step),
	}})
}

// WithFillSpec records a builder-authored fill spec.
func (q *Query) WithFillSpec(f *FillBuilder) *Query {
	call := ExtensionCall{Kind: ExtFill, Fill: f.args()}
	q.ext(call)
	if len(f.interpolate) > 0 {
		q.ext(ExtensionCall{Kind: ExtInterpolate, Interpolate: f.interpolate})
	}
	return q
}

// InterpolateWithPrevious repeats the last non-null value of a column in
// filled rows.
func (q *Query) InterpolateWithPrevious(column string) *Query {
	return q.ext(ExtensionCall{Kind: ExtInterpolate, Interpolate: []InterpolateArg{
		{Column: column, Mode: InterpolatePrevious},
	}})
}

// InterpolateWithDefault lets the server compute the column default in
// filled rows.
func (q *Query) InterpolateWithDefault(column string) *Query {
	return q.ext(ExtensionCall{Kind: ExtInterpolate, Interpolate: []InterpolateArg{
		{Column: column, Mode: InterpolateDefault},
	}})
}

// InterpolateWithConstant fills a column with an explicit constant.
func (q *Query) InterpolateWithConstant(column string, value any) *Query {
	return q.ext(ExtensionCall{Kind: ExtInterpolate, Interpolate: []InterpolateArg{
		{Column: column, Mode: InterpolateConstant, Value: V(value)},
	}})
}

// PreWhere stores a predicate emitted between FROM and WHERE.
func (q *Query) PreWhere(pred Expr) *Query {
	return q.ext(ExtensionCall{Kind: ExtPreWhere, PreWhere: pred})
}

// LimitBy limits rows per distinct key group.
func (q *Query) LimitBy(count int64, keys ...Expr) *Query {
	return q.ext(ExtensionCall{Kind: ExtLimitBy, LimitBy: &LimitByArgs{
		Count: V(count),
		Keys:  keys,
	}})
}

// LimitByOffset limits rows per key group with a starting offset.
func (q *Query) LimitByOffset(count, offset int64, keys ...Expr) *Query {
	return q.ext(ExtensionCall{Kind: ExtLimitBy, LimitBy: &LimitByArgs{
		Count:  V(count),
		Offset: V(offset),
		Keys:   keys,
	}})
}

// WithRollup adds the ROLLUP grouping modifier.
func (q *Query) WithRollup() *Query {
	return q.ext(ExtensionCall{Kind: ExtRollup})
}

// WithCube adds the CUBE grouping modifier.
func (q *Query) WithCube() *Query {
	return q.ext(ExtensionCall{Kind: ExtCube})
}

// WithTotals adds the WITH TOTALS grouping modifier.
func (q *Query) WithTotals() *Query {
	return q.ext(ExtensionCall{Kind: ExtTotals})
}

// FillBuilder is the builder-style fill authoring surface: bounds, step
// and interpolation entries collected as plain tagged records.
type FillBuilder struct {
	column      string
	from        Expr
	to          Expr
	step        Expr
	interpolate []InterpolateArg
}

// FillFor starts a fill spec for one ordering column.
func FillFor(column string) *FillBuilder {
	return &FillBuilder{column: column}
}

// From sets the fill lower bound.
func (f *FillBuilder) From(v any) *FillBuilder {
	f.from = V(v)
	return f
}

// To sets the fill upper bound.
func (f *FillBuilder) To(v any) *FillBuilder {
	f.to = V(v)
	return f
}

// Step sets the fill step.
func (f *FillBuilder) Step(v any) *FillBuilder {
	f.step = V(v)
	return f
}

// InterpolatePrevious adds a repeat-last-value interpolation entry.
func (f *FillBuilder) InterpolatePrevious(column string) *FillBuilder {
	f.interpolate = append(f.interpolate, InterpolateArg{Column: column, Mode: InterpolatePrevious})
	return f
}

// InterpolateConstant adds a constant interpolation entry.
func (f *FillBuilder) InterpolateConstant(column string, value any) *FillBuilder {
	f.interpolate = append(f.interpolate, InterpolateArg{
		Column: column,
		Mode:   InterpolateConstant,
		Value:  V(value),
	})
	return f
}

// args snapshots the fill record.
func (f *FillBuilder) args() *FillArgs {
	return &FillArgs{Column: f.column, From: f.from, To: f.to, Step: f.step}
}
