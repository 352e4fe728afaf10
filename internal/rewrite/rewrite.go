// Package rewrite postprocesses compiled plans before SQL generation.
//
// The passes run in a fixed order, each a pure tree transform that shares
// unchanged subtrees:
//
//  1. dictionary sources: table references naming dictionary entities
//     become dictionary() table reads
//  2. external sources: table references naming federated entities become
//     rendered table-function calls
//  3. read modifiers: FINAL/SAMPLE state from the compilation context
//     wraps the remaining native table references
//  4. nullability: equality against a NULL-bound parameter becomes the
//     dialect's IS [NOT] NULL test
//
// Order matters: dictionary and external references must be replaced
// before modifier injection so that FINAL/SAMPLE never attaches to a
// table function.
package rewrite

import (
	"github.com/chime-db/chime/internal/chexpr"
	"github.com/chime-db/chime/internal/compile"
	"github.com/chime-db/chime/internal/extsource"
	"github.com/chime-db/chime/internal/logical"
	"github.com/chime-db/chime/internal/model"
)

// Rewriter applies the postprocessing passes.
type Rewriter struct {
	// Model resolves entity kinds; nil leaves every reference native.
	Model *model.Catalog

	// Sources renders table-function calls for external entities. A nil
	// resolver makes any external reference an error.
	Sources *extsource.Resolver
}

// New returns a rewriter over the given model and source configuration.
func New(m *model.Catalog, sources *extsource.Resolver) *Rewriter {
	return &Rewriter{Model: m, Sources: sources}
}

// Rewrite runs all passes over the plan and returns the rewritten plan.
// The input plan is not modified.
func (r *Rewriter) Rewrite(plan *compile.Plan) (*compile.Plan, error) {
	stmt := plan.Stmt

	from, err := r.rewriteRelation(stmt.From, plan.Ctx)
	if err != nil {
		return nil, err
	}
	stmt.From = from
	stmt = rewriteNullability(stmt)

	ctx := plan.Ctx
	if ctx.PreWhere != nil {
		if pre, changed := rewriteNullExpr(ctx.PreWhere); changed {
			clone := *ctx
			clone.PreWhere = pre
			ctx = &clone
		}
	}
	return &compile.Plan{Stmt: stmt, Ctx: ctx, Params: plan.Params}, nil
}

// rewriteRelation resolves one relation subtree through passes 1-3.
func (r *Rewriter) rewriteRelation(rel logical.Relation, ctx *compile.Context) (logical.Relation, error) {
	switch v := rel.(type) {
	case *logical.TableRef:
		return r.rewriteTableRef(v, ctx)

	case *logical.Join:
		left, err := r.rewriteRelation(v.Left, ctx)
		if err != nil {
			return nil, err
		}
		right, err := r.rewriteRelation(v.Right, ctx)
		if err != nil {
			return nil, err
		}
		join := *v
		join.Left = left
		join.Right = right
		return &join, nil

	default:
		// Already-rewritten dialect relations pass through.
		return rel, nil
	}
}

// rewriteTableRef dispatches one table reference on its entity kind.
func (r *Rewriter) rewriteTableRef(ref *logical.TableRef, ctx *compile.Context) (logical.Relation, error) {
	if r.Model != nil && ref.Entity != "" {
		if entity, ok := r.Model.Entity(ref.Entity); ok {
			switch entity.Kind {
			case model.KindDictionary:
				return chexpr.DictionaryTableCall{
					Alias:      ref.Alias,
					Dictionary: entity.Dictionary,
				}, nil

			case model.KindExternal:
				if r.Sources == nil {
					return nil, &extsource.ResolveError{
						Code:    extsource.ErrCodeUnknownSource,
						Source:  entity.Source,
						Message: "no external source resolver configured",
					}
				}
				call, provider, err := r.Sources.Render(entity.Source, entity.Table)
				if err != nil {
					return nil, err
				}
				return chexpr.TableFunctionCall{
					Alias:        ref.Alias,
					Provider:     provider,
					RenderedCall: call,
				}, nil
			}
		}
	}

	if !ctx.Final && ctx.Sample == nil {
		return ref, nil
	}
	return chexpr.Modifier{
		Table:        ref,
		Final:        ctx.Final,
		Sample:       ctx.Sample,
		SampleOffset: ctx.SampleOffset,
	}, nil
}

// rewriteNullability specializes NULL-bound parameter comparisons in every
// expression position of the statement.
func rewriteNullability(stmt logical.Statement) logical.Statement {
	out := stmt
	for i, item := range stmt.Columns {
		if e, changed := rewriteNullExpr(item.Expr); changed {
			if sameSlice(out.Columns, stmt.Columns) {
				out.Columns = append([]logical.SelectItem(nil), stmt.Columns...)
			}
			out.Columns[i] = logical.SelectItem{Expr: e, Alias: item.Alias}
		}
	}
	if stmt.Where != nil {
		if e, changed := rewriteNullExpr(stmt.Where); changed {
			out.Where = e
		}
	}
	if stmt.Having != nil {
		if e, changed := rewriteNullExpr(stmt.Having); changed {
			out.Having = e
		}
	}
	if stmt.From != nil {
		if rel, changed := rewriteNullRelation(stmt.From); changed {
			out.From = rel
		}
	}
	return out
}

// rewriteNullRelation carries the nullability rewrite into join predicates,
// passing through dialect wrappers and rebuilding each node only when a
// child changed.
func rewriteNullRelation(rel logical.Relation) (logical.Relation, bool) {
	switch v := rel.(type) {
	case *logical.Join:
		left, lchanged := rewriteNullRelation(v.Left)
		right, rchanged := rewriteNullRelation(v.Right)
		var on logical.Expr
		var ochanged bool
		if v.On != nil {
			on, ochanged = rewriteNullExpr(v.On)
		}
		if !lchanged && !rchanged && !ochanged {
			return v, false
		}
		join := *v
		join.Left = left
		join.Right = right
		if ochanged {
			join.On = on
		}
		return &join, true

	case chexpr.Modifier:
		inner, changed := rewriteNullRelation(v.Table)
		if !changed {
			return v, false
		}
		out := v
		out.Table = inner
		return out, true

	default:
		return rel, false
	}
}

// sameSlice reports whether two slices share backing storage.
func sameSlice(a, b []logical.SelectItem) bool {
	return len(a) == len(b) && (len(a) == 0 || &a[0] == &b[0])
}

// rewriteNullExpr rewrites comparisons against NULL-bound parameters:
// x = @p with p bound to nil becomes x IS NULL, x != @p becomes
// x IS NOT NULL, in either operand order. Unchanged subtrees are shared.
func rewriteNullExpr(e logical.Expr) (logical.Expr, bool) {
	switch v := e.(type) {
	case logical.Binary:
		if v.Op == logical.OpEq || v.Op == logical.OpNe {
			if other, ok := nullComparisonOperand(v); ok {
				op := logical.OpIsNull
				if v.Op == logical.OpNe {
					op = logical.OpIsNotNull
				}
				operand, _ := rewriteNullExpr(other)
				return logical.Unary{Op: op, Operand: operand}, true
			}
		}
		left, lchanged := rewriteNullExpr(v.Left)
		right, rchanged := rewriteNullExpr(v.Right)
		if !lchanged && !rchanged {
			return v, false
		}
		return logical.Binary{Op: v.Op, Left: left, Right: right}, true

	case logical.Unary:
		operand, changed := rewriteNullExpr(v.Operand)
		if !changed {
			return v, false
		}
		return logical.Unary{Op: v.Op, Operand: operand}, true

	case logical.Call:
		args, changed := rewriteNullExprs(v.Args)
		if !changed {
			return v, false
		}
		return logical.Call{Name: v.Name, Args: args}, true

	case chexpr.WindowCall:
		args, changed := rewriteNullExprs(v.Args)
		if !changed {
			return v, false
		}
		out := v
		out.Args = args
		return out, true

	default:
		return e, false
	}
}

// rewriteNullExprs rewrites a slice, reporting whether anything changed.
func rewriteNullExprs(in []logical.Expr) ([]logical.Expr, bool) {
	changed := false
	out := make([]logical.Expr, len(in))
	for i, e := range in {
		var c bool
		out[i], c = rewriteNullExpr(e)
		changed = changed || c
	}
	if !changed {
		return in, false
	}
	return out, true
}

// nullComparisonOperand returns the non-parameter operand when exactly one
// side of the comparison is a parameter explicitly bound to NULL.
func nullComparisonOperand(b logical.Binary) (logical.Expr, bool) {
	ln, rn := isNullParam(b.Left), isNullParam(b.Right)
	if rn && !ln {
		return b.Left, true
	}
	if ln && !rn {
		return b.Right, true
	}
	return nil, false
}

// isNullParam reports whether e is a parameter bound to an explicit NULL.
func isNullParam(e logical.Expr) bool {
	p, ok := e.(logical.Parameter)
	return ok && p.HasValue && p.Value == nil
}
