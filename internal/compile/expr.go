package compile

import (
	"github.com/chime-db/chime/internal/chexpr"
	"github.com/chime-db/chime/internal/logical"
	"github.com/chime-db/chime/internal/model"
)

// windowName maps authored window kinds to dialect function names. The
// offset functions use the in-frame variants, which is why they also get
// an implicit unbounded rows frame when none is authored.
var windowName = map[logical.WindowFuncKind]string{
	logical.WinRowNumber:  "row_number",
	logical.WinRank:       "rank",
	logical.WinDenseRank:  "dense_rank",
	logical.WinLag:        "lagInFrame",
	logical.WinLead:       "leadInFrame",
	logical.WinFirstValue: "first_value",
	logical.WinLastValue:  "last_value",
	logical.WinSum:        "sum",
	logical.WinAvg:        "avg",
	logical.WinMin:        "min",
	logical.WinMax:        "max",
	logical.WinCount:      "count",
}

// unboundedRowsFrame is the implicit frame for lagInFrame/leadInFrame.
var unboundedRowsFrame = logical.FrameSpec{
	Unit:  logical.FrameRows,
	Start: logical.FrameBound{Kind: logical.BoundUnboundedPreceding},
	End:   logical.FrameBound{Kind: logical.BoundUnboundedFollowing},
}

// lowerExpr translates one authored expression into its dialect form:
// operators that are functions in the dialect become calls, dictionary
// accesses bind against the model, window expressions resolve their
// function names and implicit frames, constants and parameters resolve
// their storage types.
func (cc *compilation) lowerExpr(e logical.Expr) (logical.Expr, error) {
	switch v := e.(type) {
	case logical.Column:
		return v, nil

	case logical.Constant:
		return cc.lowerConstant(v)

	case logical.Parameter:
		return cc.lowerParameter(v)

	case logical.Binary:
		return cc.lowerBinary(v)

	case logical.Unary:
		operand, err := cc.lowerExpr(v.Operand)
		if err != nil {
			return nil, err
		}
		return logical.Unary{Op: v.Op, Operand: operand}, nil

	case logical.Call:
		args, err := cc.lowerExprs(v.Args)
		if err != nil {
			return nil, err
		}
		return logical.Call{Name: v.Name, Args: args}, nil

	case logical.DictAccess:
		return cc.lowerDictAccess(v)

	case logical.WindowExpr:
		return cc.lowerWindow(v)

	case logical.RawSQL:
		if v.SQL == "" {
			return nil, errf(ErrCodeInvalidArgument, "Raw", "raw fragment must be a non-empty literal")
		}
		return chexpr.RawFragment{SQL: v.SQL}, nil

	case logical.JSONAccess:
		if len(v.Segments) == 0 {
			return nil, errf(ErrCodeInvalidArgument, "JSONPath", "path has no segments")
		}
		return chexpr.JSONPath{Column: v.Column, Segments: v.Segments}, nil

	default:
		// Already-lowered dialect nodes pass through; rewrites may feed a
		// statement back into the compiler.
		return e, nil
	}
}

// lowerExprs lowers a slice of expressions.
func (cc *compilation) lowerExprs(in []logical.Expr) ([]logical.Expr, error) {
	if in == nil {
		return nil, nil
	}
	out := make([]logical.Expr, len(in))
	for i, e := range in {
		lowered, err := cc.lowerExpr(e)
		if err != nil {
			return nil, err
		}
		out[i] = lowered
	}
	return out, nil
}

// lowerConstant resolves the storage type of a literal. A nil value stays
// untyped and renders as NULL.
func (cc *compilation) lowerConstant(c logical.Constant) (logical.Expr, error) {
	if c.Type != nil || c.Value == nil {
		return c, nil
	}
	t, err := cc.types.For(c.Value)
	if err != nil {
		return nil, errf(ErrCodeInvalidArgument, "Constant", "%v", err)
	}
	return logical.Constant{Value: c.Value, Type: t}, nil
}

// lowerParameter resolves a parameter's storage type and records the
// binding. The first occurrence of each name wins; later occurrences
// reuse the recorded type so that one placeholder renders consistently.
func (cc *compilation) lowerParameter(p logical.Parameter) (logical.Expr, error) {
	if p.Name == "" {
		return nil, errf(ErrCodeInvalidArgument, "Parameter", "parameter has no name")
	}
	// A parameter bound to an explicit NULL is erased by the nullability
	// pass; it carries no type and produces no placeholder binding.
	if p.Type == nil && p.HasValue && p.Value == nil {
		return p, nil
	}
	if i, seen := cc.paramIndex[p.Name]; seen {
		recorded := cc.params[i]
		return logical.Parameter{Name: p.Name, Type: recorded.Type, Value: recorded.Value, HasValue: recorded.HasValue}, nil
	}

	t := p.Type
	if t == nil {
		if !p.HasValue || p.Value == nil {
			return nil, errf(ErrCodeInvalidArgument, "Parameter",
				"parameter %q needs an explicit type or a non-nil bound value", p.Name)
		}
		var err error
		if t, err = cc.types.For(p.Value); err != nil {
			return nil, errf(ErrCodeInvalidArgument, "Parameter", "parameter %q: %v", p.Name, err)
		}
	}
	cc.paramIndex[p.Name] = len(cc.params)
	cc.params = append(cc.params, Param{Name: p.Name, Type: t, Value: p.Value, HasValue: p.HasValue})
	return logical.Parameter{Name: p.Name, Type: t, Value: p.Value, HasValue: p.HasValue}, nil
}

// lowerBinary lowers both operands and rewrites the operators the dialect
// spells as functions.
func (cc *compilation) lowerBinary(b logical.Binary) (logical.Expr, error) {
	left, err := cc.lowerExpr(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := cc.lowerExpr(b.Right)
	if err != nil {
		return nil, err
	}

	switch b.Op {
	case logical.OpConcat:
		return logical.Call{Name: "concat", Args: []logical.Expr{left, right}}, nil
	case logical.OpTimeDiff:
		unit := logical.Constant{Value: "second", Type: nil}
		return logical.Call{Name: "dateDiff", Args: []logical.Expr{unit, left, right}}, nil
	}
	return logical.Binary{Op: b.Op, Left: left, Right: right}, nil
}

// lowerDictAccess binds a dictionary lookup against the model and lowers
// it to the dialect accessor call.
func (cc *compilation) lowerDictAccess(d logical.DictAccess) (logical.Expr, error) {
	if cc.model == nil {
		return nil, errf(ErrCodeUnknownEntity, d.Entity, "no model catalog to resolve dictionary against")
	}
	entity, ok := cc.model.Entity(d.Entity)
	if !ok {
		return nil, errf(ErrCodeUnknownEntity, d.Entity, "entity is not in the model catalog")
	}
	if entity.Kind != model.KindDictionary {
		return nil, errf(ErrCodeInvalidArgument, d.Entity, "entity is not a dictionary")
	}

	key, err := cc.lowerExpr(d.Key)
	if err != nil {
		return nil, err
	}
	dict := logical.Constant{Value: entity.Dictionary}

	switch d.Op {
	case logical.DictHas:
		return logical.Call{Name: "dictHas", Args: []logical.Expr{dict, key}}, nil

	case logical.DictGet, logical.DictGetOrDefault:
		if _, ok := entity.Column(d.Attribute); !ok {
			return nil, errf(ErrCodeUnknownColumn, d.Entity,
				"dictionary has no attribute %q", d.Attribute)
		}
		attr := logical.Constant{Value: d.Attribute}
		if d.Op == logical.DictGet {
			return logical.Call{Name: "dictGet", Args: []logical.Expr{dict, attr, key}}, nil
		}
		def, err := cc.lowerExpr(d.Default)
		if err != nil {
			return nil, err
		}
		return logical.Call{Name: "dictGetOrDefault", Args: []logical.Expr{dict, attr, key, def}}, nil
	}
	return nil, errf(ErrCodeInvalidArgument, d.Entity, "unrecognized dictionary lookup %q", d.Op)
}

// lowerWindow resolves a window expression into the dialect window call.
func (cc *compilation) lowerWindow(w logical.WindowExpr) (logical.Expr, error) {
	if w.BuildErr != "" {
		return nil, errf(ErrCodeInvalidArgument, "Window", "%s", w.BuildErr)
	}
	name, ok := windowName[w.Kind]
	if !ok {
		return nil, errf(ErrCodeInvalidArgument, "Window", "unrecognized window function %q", w.Kind)
	}

	args, err := cc.lowerExprs(w.Args)
	if err != nil {
		return nil, err
	}
	frame := w.Frame

	if w.Kind == logical.WinLag || w.Kind == logical.WinLead {
		offset := w.Offset
		if offset == nil {
			offset = logical.Constant{Value: int64(1)}
		}
		lowered, err := cc.lowerExpr(offset)
		if err != nil {
			return nil, err
		}
		args = append(args, lowered)
		if w.Default != nil {
			def, err := cc.lowerExpr(w.Default)
			if err != nil {
				return nil, err
			}
			args = append(args, def)
		}
		// The in-frame variants see only their frame, so the default view
		// of the whole partition needs an explicit unbounded frame.
		if frame == nil {
			f := unboundedRowsFrame
			frame = &f
		}
	}

	partitionBy, err := cc.lowerExprs(w.PartitionBy)
	if err != nil {
		return nil, err
	}
	orderBy := make([]logical.Ordering, len(w.OrderBy))
	for i, ord := range w.OrderBy {
		e, err := cc.lowerExpr(ord.Expr)
		if err != nil {
			return nil, err
		}
		orderBy[i] = logical.Ordering{Expr: e, Descending: ord.Descending}
	}

	return chexpr.WindowCall{
		Name:        name,
		Args:        args,
		PartitionBy: partitionBy,
		OrderBy:     orderBy,
		Frame:       frame,
	}, nil
}
