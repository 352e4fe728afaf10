package logical

// WindowFuncKind enumerates the window functions the builder can author.
// The compiler maps each kind to its dialect function name and validates
// the argument shape.
type WindowFuncKind string

// Window function kinds.
const (
	// Ranking functions: no arguments.
	WinRowNumber WindowFuncKind = "ROW_NUMBER"
	WinRank      WindowFuncKind = "RANK"
	WinDenseRank WindowFuncKind = "DENSE_RANK"

	// Offset functions: value, optional offset (default 1), optional
	// default value. They receive an implicit unbounded rows frame when
	// none is given explicitly.
	WinLag  WindowFuncKind = "LAG"
	WinLead WindowFuncKind = "LEAD"

	// Value functions: one value argument.
	WinFirstValue WindowFuncKind = "FIRST_VALUE"
	WinLastValue  WindowFuncKind = "LAST_VALUE"

	// Aggregate functions over the window.
	WinSum   WindowFuncKind = "SUM"
	WinAvg   WindowFuncKind = "AVG"
	WinMin   WindowFuncKind = "MIN"
	WinMax   WindowFuncKind = "MAX"
	WinCount WindowFuncKind = "COUNT"
)

// FrameUnit selects the frame measurement.
type FrameUnit string

// Frame units.
const (
	FrameRows  FrameUnit = "ROWS"
	FrameRange FrameUnit = "RANGE"
)

// BoundKind enumerates frame boundary positions.
type BoundKind string

// Frame boundary positions.
const (
	BoundUnboundedPreceding BoundKind = "UNBOUNDED PRECEDING"
	BoundPreceding          BoundKind = "PRECEDING"
	BoundCurrentRow         BoundKind = "CURRENT ROW"
	BoundFollowing          BoundKind = "FOLLOWING"
	BoundUnboundedFollowing BoundKind = "UNBOUNDED FOLLOWING"
)

// FrameBound is one frame boundary. Offset is meaningful only for
// BoundPreceding and BoundFollowing and must be non-negative.
type FrameBound struct {
	Kind   BoundKind
	Offset int64
}

// FrameSpec is a complete window frame.
type FrameSpec struct {
	Unit  FrameUnit
	Start FrameBound
	End   FrameBound
}

// WindowExpr is a fully authored window function application, produced by
// either WindowBuilder surface. The compiler lowers it into the dialect
// window-call node.
type WindowExpr struct {
	ExprBase

	Kind        WindowFuncKind
	Args        []Expr
	Offset      Expr // offset functions only; nil means the default of 1
	Default     Expr // offset functions only; nil when absent
	PartitionBy []Expr
	OrderBy     []Ordering
	Frame       *FrameSpec

	// BuildErr records a malformed builder chain (e.g. a third frame
	// boundary call). The compiler surfaces it as a compile error.
	BuildErr string
}

// WindowBuilder accumulates the OVER clause of a window function.
//
// Two equivalent authoring surfaces resolve to the same WindowExpr:
//
//	NewWindow().PartitionBy(dept).OrderBy(hired).Rows().
//		UnboundedPreceding().CurrentRow().Sum(salary)
//
//	Sum(salary).Over(func(w *WindowBuilder) {
//		w.PartitionBy(dept).OrderBy(hired)
//	})
//
// Frame boundaries are set by exactly two boundary calls: the first sets
// the frame start, the second the frame end. A third call is an error.
type WindowBuilder struct {
	partitionBy []Expr
	orderBy     []Ordering
	frameUnit   FrameUnit
	bounds      []FrameBound
	err         string
}

// NewWindow starts a fluent window chain.
func NewWindow() *WindowBuilder {
	return &WindowBuilder{}
}

// PartitionBy appends partition key expressions.
func (w *WindowBuilder) PartitionBy(keys ...Expr) *WindowBuilder {
	w.partitionBy = append(w.partitionBy, keys...)
	return w
}

// OrderBy appends an ascending ordering key.
func (w *WindowBuilder) OrderBy(key Expr) *WindowBuilder {
	w.orderBy = append(w.orderBy, Ordering{Expr: key})
	return w
}

// OrderByDescending appends a descending ordering key.
func (w *WindowBuilder) OrderByDescending(key Expr) *WindowBuilder {
	w.orderBy = append(w.orderBy, Ordering{Expr: key, Descending: true})
	return w
}

// Rows selects a ROWS frame for subsequent boundary calls.
func (w *WindowBuilder) Rows() *WindowBuilder {
	w.frameUnit = FrameRows
	return w
}

// Range selects a RANGE frame for subsequent boundary calls.
func (w *WindowBuilder) Range() *WindowBuilder {
	w.frameUnit = FrameRange
	return w
}

// addBound appends a frame boundary, tracking the two-call protocol.
func (w *WindowBuilder) addBound(b FrameBound) *WindowBuilder {
	if w.frameUnit == "" {
		w.frameUnit = FrameRows
	}
	if len(w.bounds) >= 2 {
		w.err = "window frame accepts exactly two boundary calls"
		return w
	}
	if b.Offset < 0 {
		w.err = "window frame boundary offset must be non-negative"
		return w
	}
	w.bounds = append(w.bounds, b)
	return w
}

// UnboundedPreceding adds an UNBOUNDED PRECEDING boundary.
func (w *WindowBuilder) UnboundedPreceding() *WindowBuilder {
	return w.addBound(FrameBound{Kind: BoundUnboundedPreceding})
}

// Preceding adds an n PRECEDING boundary.
func (w *WindowBuilder) Preceding(n int64) *WindowBuilder {
	return w.addBound(FrameBound{Kind: BoundPreceding, Offset: n})
}

// CurrentRow adds a CURRENT ROW boundary.
func (w *WindowBuilder) CurrentRow() *WindowBuilder {
	return w.addBound(FrameBound{Kind: BoundCurrentRow})
}

// Following adds an n FOLLOWING boundary.
func (w *WindowBuilder) Following(n int64) *WindowBuilder {
	return w.addBound(FrameBound{Kind: BoundFollowing, Offset: n})
}

// UnboundedFollowing adds an UNBOUNDED FOLLOWING boundary.
func (w *WindowBuilder) UnboundedFollowing() *WindowBuilder {
	return w.addBound(FrameBound{Kind: BoundUnboundedFollowing})
}

// finish converts the accumulated OVER clause into a WindowExpr.
func (w *WindowBuilder) finish(kind WindowFuncKind, args []Expr, offset, def Expr) WindowExpr {
	expr := WindowExpr{
		Kind:        kind,
		Args:        args,
		Offset:      offset,
		Default:     def,
		PartitionBy: w.partitionBy,
		OrderBy:     w.orderBy,
		BuildErr:    w.err,
	}
	if len(w.bounds) == 1 {
		expr.BuildErr = "window frame requires both a start and an end boundary"
	}
	if len(w.bounds) == 2 {
		expr.Frame = &FrameSpec{Unit: w.frameUnit, Start: w.bounds[0], End: w.bounds[1]}
	}
	return expr
}

// RowNumber terminates the chain with row_number().
func (w *WindowBuilder) RowNumber() WindowExpr { return w.finish(WinRowNumber, nil, nil, nil) }

// Rank terminates the chain with rank().
func (w *WindowBuilder) Rank() WindowExpr { return w.finish(WinRank, nil, nil, nil) }

// DenseRank terminates the chain with dense_rank().
func (w *WindowBuilder) DenseRank() WindowExpr { return w.finish(WinDenseRank, nil, nil, nil) }

// Lag terminates the chain with a lag over value. The optional trailing
// arguments are the offset (default 1) and the default value.
func (w *WindowBuilder) Lag(value Expr, rest ...Expr) WindowExpr {
	offset, def := splitOffsetArgs(rest)
	return w.finish(WinLag, []Expr{value}, offset, def)
}

// Lead terminates the chain with a lead over value.
func (w *WindowBuilder) Lead(value Expr, rest ...Expr) WindowExpr {
	offset, def := splitOffsetArgs(rest)
	return w.finish(WinLead, []Expr{value}, offset, def)
}

// FirstValue terminates the chain with first_value(value).
func (w *WindowBuilder) FirstValue(value Expr) WindowExpr {
	return w.finish(WinFirstValue, []Expr{value}, nil, nil)
}

// LastValue terminates the chain with last_value(value).
func (w *WindowBuilder) LastValue(value Expr) WindowExpr {
	return w.finish(WinLastValue, []Expr{value}, nil, nil)
}

// Sum terminates the chain with sum(value).
func (w *WindowBuilder) Sum(value Expr) WindowExpr {
	return w.finish(WinSum, []Expr{value}, nil, nil)
}

// Avg terminates the chain with avg(value).
func (w *WindowBuilder) Avg(value Expr) WindowExpr {
	return w.finish(WinAvg, []Expr{value}, nil, nil)
}

// Min terminates the chain with min(value).
func (w *WindowBuilder) Min(value Expr) WindowExpr {
	return w.finish(WinMin, []Expr{value}, nil, nil)
}

// Max terminates the chain with max(value).
func (w *WindowBuilder) Max(value Expr) WindowExpr {
	return w.finish(WinMax, []Expr{value}, nil, nil)
}

// Count terminates the chain with count(value).
func (w *WindowBuilder) Count(value Expr) WindowExpr {
	return w.finish(WinCount, []Expr{value}, nil, nil)
}

// splitOffsetArgs interprets the variadic tail of Lag/Lead.
func splitOffsetArgs(rest []Expr) (offset, def Expr) {
	if len(rest) > 0 {
		offset = rest[0]
	}
	if len(rest) > 1 {
		def = rest[1]
	}
	return offset, def
}

// PendingWindow is the callback-configured authoring surface: the terminal
// function is named first, the OVER clause supplied in one configuration
// call.
type PendingWindow struct {
	kind   WindowFuncKind
	args   []Expr
	offset Expr
	def    Expr
}

// Over resolves the pending function with a configured OVER clause.
func (p PendingWindow) Over(configure func(*WindowBuilder)) WindowExpr {
	w := NewWindow()
	if configure != nil {
		configure(w)
	}
	return w.finish(p.kind, p.args, p.offset, p.def)
}

// RowNumber starts a callback-configured row_number() window call.
func RowNumber() PendingWindow {
	return PendingWindow{kind: WinRowNumber}
}

// Rank starts a callback-configured rank() window call.
func Rank() PendingWindow {
	return PendingWindow{kind: WinRank}
}

// Lag starts a callback-configured lag window call. The optional trailing
// arguments are the offset (default 1) and the default value.
func Lag(value Expr, rest ...Expr) PendingWindow {
	offset, def := splitOffsetArgs(rest)
	return PendingWindow{kind: WinLag, args: []Expr{value}, offset: offset, def: def}
}

// Lead starts a callback-configured lead window call.
func Lead(value Expr, rest ...Expr) PendingWindow {
	offset, def := splitOffsetArgs(rest)
	return PendingWindow{kind: WinLead, args: []Expr{value}, offset: offset, def: def}
}

// Sum starts a callback-configured sum window call.
func Sum(value Expr) PendingWindow {
	return PendingWindow{kind: WinSum, args: []Expr{value}}
}

// Avg starts a callback-configured avg window call.
func Avg(value Expr) PendingWindow {
	return PendingWindow{kind: WinAvg, args: []Expr{value}}
}
