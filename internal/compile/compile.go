// Package compile translates authored logical statements into compilation
// plans: the statement with every dialect extension classified into a
// per-compilation context, every constant bound to its storage type, and
// every recognized dialect construct lowered to its dialect node.
//
// Compilation is a pure, synchronous tree transform. Each call builds a
// fresh Context, so distinct query shapes may compile concurrently.
package compile

import (
	"time"

	"github.com/chime-db/chime/internal/chtype"
	"github.com/chime-db/chime/internal/logical"
	"github.com/chime-db/chime/internal/model"
)

// Param is one named parameter binding produced by compilation, in first
// occurrence order.
type Param struct {
	Name     string
	Type     chtype.Type
	Value    any
	HasValue bool
}

// Plan is a compiled statement ready for postprocessing and SQL
// generation.
type Plan struct {
	Stmt   logical.Statement
	Ctx    *Context
	Params []Param
}

// Compiler compiles logical statements against an entity model.
type Compiler struct {
	// Model resolves entities and dictionary attributes. A nil model
	// restricts compilation to ad hoc table references.
	Model *model.Catalog

	// Types resolves constants to storage descriptors. Defaults to the
	// built-in catalog when nil.
	Types *chtype.Catalog
}

// New returns a compiler over the given model catalog.
func New(m *model.Catalog) *Compiler {
	c := &Compiler{Model: m}
	if m != nil {
		c.Types = m.Types
	}
	return c
}

// Compile classifies the statement's extension calls into a fresh Context
// and lowers every expression to its dialect form.
func (c *Compiler) Compile(stmt logical.Statement) (*Plan, error) {
	types := c.Types
	if types == nil {
		types = chtype.NewCatalog()
	}
	cc := &compilation{model: c.Model, types: types, ctx: NewContext(), paramIndex: map[string]int{}}

	if err := cc.classifyExtensions(stmt.Extensions); err != nil {
		return nil, err
	}
	lowered, err := cc.lowerStatement(stmt)
	if err != nil {
		return nil, err
	}
	return &Plan{Stmt: lowered, Ctx: cc.ctx, Params: cc.params}, nil
}

// compilation is the state of one Compile call.
type compilation struct {
	model *model.Catalog
	types *chtype.Catalog
	ctx   *Context

	params     []Param
	paramIndex map[string]int
}

// classifyExtensions applies each recorded extension call to the context.
// The switch is exhaustive over logical.ExtensionKind.
func (cc *compilation) classifyExtensions(calls []logical.ExtensionCall) error {
	for _, call := range calls {
		switch call.Kind {
		case logical.ExtFinal:
			cc.ctx.Final = true

		case logical.ExtSample:
			fraction, err := cc.reduceFloat(call.Sample.Fraction, "Sample")
			if err != nil {
				return err
			}
			var offset *float64
			if call.Sample.Offset != nil {
				o, err := cc.reduceFloat(call.Sample.Offset, "Sample")
				if err != nil {
					return err
				}
				offset = &o
			}
			if err := cc.ctx.SetSample(fraction, offset); err != nil {
				return err
			}

		case logical.ExtSettings:
			for _, s := range call.Settings {
				cc.ctx.MergeSetting(s.Name, s.Value)
			}

		case logical.ExtFill:
			spec := FillSpec{Column: call.Fill.Column}
			var err error
			if spec.From, err = cc.lowerFillBound(call.Fill.From); err != nil {
				return err
			}
			if spec.To, err = cc.lowerFillBound(call.Fill.To); err != nil {
				return err
			}
			if spec.Step, err = cc.reduceOptional(call.Fill.Step, "WithFill"); err != nil {
				return err
			}
			if spec.Step != nil {
				if err := checkFillStep(spec.Step); err != nil {
					return err
				}
			}
			cc.ctx.Fills = append(cc.ctx.Fills, spec)

		case logical.ExtInterpolate:
			for _, arg := range call.Interpolate {
				spec := InterpolateSpec{Column: arg.Column, Mode: arg.Mode}
				if arg.Mode == logical.InterpolateConstant {
					value, err := cc.lowerExpr(arg.Value)
					if err != nil {
						return err
					}
					spec.Value = value
				}
				cc.ctx.Interpolations = append(cc.ctx.Interpolations, spec)
			}

		case logical.ExtPreWhere:
			pred, err := cc.lowerExpr(call.PreWhere)
			if err != nil {
				return err
			}
			if err := cc.ctx.SetPreWhere(pred); err != nil {
				return err
			}

		case logical.ExtLimitBy:
			count, err := cc.reduceInt(call.LimitBy.Count, "LimitBy")
			if err != nil {
				return err
			}
			if count <= 0 {
				return errf(ErrCodeInvalidArgument, "LimitBy", "count must be positive, got %d", count)
			}
			spec := LimitBySpec{Count: count}
			if call.LimitBy.Offset != nil {
				if spec.Offset, err = cc.reduceInt(call.LimitBy.Offset, "LimitBy"); err != nil {
					return err
				}
			}
			if len(call.LimitBy.Keys) == 0 {
				return errf(ErrCodeInvalidArgument, "LimitBy", "at least one key expression is required")
			}
			for _, key := range call.LimitBy.Keys {
				lowered, err := cc.lowerExpr(key)
				if err != nil {
					return err
				}
				spec.Keys = append(spec.Keys, lowered)
			}
			if err := cc.ctx.SetLimitBy(spec); err != nil {
				return err
			}

		case logical.ExtRollup:
			if err := cc.ctx.SetGroupByModifier(GroupByRollup); err != nil {
				return err
			}
		case logical.ExtCube:
			if err := cc.ctx.SetGroupByModifier(GroupByCube); err != nil {
				return err
			}
		case logical.ExtTotals:
			if err := cc.ctx.SetGroupByModifier(GroupByTotals); err != nil {
				return err
			}

		default:
			return errf(ErrCodeInvalidArgument, string(call.Kind), "unrecognized extension call")
		}
	}
	return nil
}

// lowerStatement lowers every clause of the statement.
func (cc *compilation) lowerStatement(stmt logical.Statement) (logical.Statement, error) {
	out := stmt
	out.Extensions = nil

	var err error
	if out.From, err = cc.lowerRelation(stmt.From); err != nil {
		return out, err
	}

	out.Columns = make([]logical.SelectItem, len(stmt.Columns))
	for i, item := range stmt.Columns {
		e, err := cc.lowerExpr(item.Expr)
		if err != nil {
			return out, err
		}
		out.Columns[i] = logical.SelectItem{Expr: e, Alias: item.Alias}
	}

	if stmt.Where != nil {
		if out.Where, err = cc.lowerExpr(stmt.Where); err != nil {
			return out, err
		}
	}
	out.GroupBy = make([]logical.Expr, len(stmt.GroupBy))
	for i, key := range stmt.GroupBy {
		if out.GroupBy[i], err = cc.lowerExpr(key); err != nil {
			return out, err
		}
	}
	if stmt.Having != nil {
		if out.Having, err = cc.lowerExpr(stmt.Having); err != nil {
			return out, err
		}
	}
	out.OrderBy = make([]logical.Ordering, len(stmt.OrderBy))
	for i, ord := range stmt.OrderBy {
		e, err := cc.lowerExpr(ord.Expr)
		if err != nil {
			return out, err
		}
		out.OrderBy[i] = logical.Ordering{Expr: e, Descending: ord.Descending}
	}
	return out, nil
}

// lowerRelation resolves entity table names against the model.
func (cc *compilation) lowerRelation(rel logical.Relation) (logical.Relation, error) {
	switch r := rel.(type) {
	case nil:
		return nil, errf(ErrCodeInvalidArgument, "From", "statement has no source relation")

	case *logical.TableRef:
		if r.Entity == "" || cc.model == nil {
			return r, nil
		}
		entity, ok := cc.model.Entity(r.Entity)
		if !ok {
			return nil, errf(ErrCodeUnknownEntity, r.Entity, "entity is not in the model catalog")
		}
		resolved := *r
		if entity.Kind == model.KindNative {
			resolved.Table = entity.Table
			resolved.Database = entity.Database
		}
		return &resolved, nil

	case *logical.Join:
		left, err := cc.lowerRelation(r.Left)
		if err != nil {
			return nil, err
		}
		right, err := cc.lowerRelation(r.Right)
		if err != nil {
			return nil, err
		}
		join := *r
		join.Left = left
		join.Right = right
		if r.On != nil {
			if join.On, err = cc.lowerExpr(r.On); err != nil {
				return nil, err
			}
		}
		return &join, nil

	default:
		// Dialect relation nodes and host-internal composites pass
		// through untouched.
		return rel, nil
	}
}

// reduceConstant reduces an expression to a compile-time constant value.
func (cc *compilation) reduceConstant(e logical.Expr, construct string) (any, error) {
	switch v := e.(type) {
	case logical.Constant:
		return v.Value, nil
	case logical.Parameter:
		if v.HasValue {
			return v.Value, nil
		}
	}
	return nil, errf(ErrCodeNonConstantArgument, construct,
		"argument %T does not reduce to a compile-time constant", e)
}

// lowerFillBound reduces an optional fill bound and resolves its storage
// type, so that date and time bounds get their typed literal form.
func (cc *compilation) lowerFillBound(e logical.Expr) (logical.Expr, error) {
	v, err := cc.reduceOptional(e, "WithFill")
	if err != nil || v == nil {
		return nil, err
	}
	return cc.lowerConstant(logical.Constant{Value: v})
}

// reduceOptional reduces a possibly-absent constant argument.
func (cc *compilation) reduceOptional(e logical.Expr, construct string) (any, error) {
	if e == nil {
		return nil, nil
	}
	return cc.reduceConstant(e, construct)
}

// reduceFloat reduces to a float64 constant.
func (cc *compilation) reduceFloat(e logical.Expr, construct string) (float64, error) {
	v, err := cc.reduceConstant(e, construct)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, errf(ErrCodeInvalidArgument, construct, "expected numeric constant, got %T", v)
}

// reduceInt reduces to an int64 constant.
func (cc *compilation) reduceInt(e logical.Expr, construct string) (int64, error) {
	v, err := cc.reduceConstant(e, construct)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	}
	return 0, errf(ErrCodeInvalidArgument, construct, "expected integer constant, got %T", v)
}

// checkFillStep restricts fill steps to the shapes the clause accepts.
func checkFillStep(step any) error {
	switch step.(type) {
	case int, int32, int64, uint32, uint64, float32, float64, time.Duration, chtype.Interval:
		return nil
	}
	return errf(ErrCodeInvalidArgument, "WithFill",
		"step must be numeric, a duration or an interval, got %T", step)
}
