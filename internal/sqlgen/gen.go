// Package sqlgen renders rewritten plans into dialect SQL text.
//
// Generation is a state machine over one SELECT or DELETE statement with
// the dialect's clause order: SELECT list, FROM, PREWHERE, WHERE,
// GROUP BY with its modifier, HAVING, ORDER BY with per-column WITH FILL,
// INTERPOLATE, LIMIT/OFFSET, LIMIT BY and a trailing SETTINGS clause.
// Parameters render as typed server-side placeholders; the ordered
// binding list travels on the plan.
package sqlgen

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chime-db/chime/internal/chexpr"
	"github.com/chime-db/chime/internal/chtype"
	"github.com/chime-db/chime/internal/compile"
	"github.com/chime-db/chime/internal/logical"
)

// maxLimit is the count synthesized for an OFFSET without a LIMIT; the
// dialect's LIMIT offset, count form requires an explicit count.
const maxLimit = "18446744073709551615"

// Output is the rendered statement plus its ordered parameter bindings.
type Output struct {
	SQL    string
	Params []compile.Param
}

// Generate renders one compiled, rewritten plan.
func Generate(plan *compile.Plan) (*Output, error) {
	g := &generator{ctx: plan.Ctx}
	if err := g.statement(plan.Stmt); err != nil {
		return nil, err
	}
	return &Output{SQL: g.sb.String(), Params: plan.Params}, nil
}

// generator carries the rendering state for one statement.
type generator struct {
	sb  strings.Builder
	ctx *compile.Context

	// qualifier prefixes unqualified column references in SELECT mode.
	qualifier string

	// deleteMode suppresses all column qualification; the dialect forbids
	// aliases inside ALTER TABLE ... DELETE.
	deleteMode bool
}

func (g *generator) statement(stmt logical.Statement) error {
	if stmt.Kind == logical.KindDelete {
		return g.deleteStatement(stmt)
	}
	return g.selectStatement(stmt)
}

func (g *generator) selectStatement(stmt logical.Statement) error {
	g.qualifier = baseAlias(stmt.From)

	g.sb.WriteString("SELECT ")
	if len(stmt.Columns) == 0 {
		g.sb.WriteByte('*')
	} else {
		for i, item := range stmt.Columns {
			if i > 0 {
				g.sb.WriteString(", ")
			}
			if err := g.expr(item.Expr); err != nil {
				return err
			}
			if item.Alias != "" {
				g.sb.WriteString(" AS ")
				g.sb.WriteString(chtype.QuoteIdentifier(item.Alias))
			}
		}
	}

	g.sb.WriteString(" FROM ")
	if err := g.relation(stmt.From); err != nil {
		return err
	}

	if g.ctx.PreWhere != nil {
		g.sb.WriteString(" PREWHERE ")
		if err := g.expr(g.ctx.PreWhere); err != nil {
			return err
		}
	}
	if stmt.Where != nil {
		g.sb.WriteString(" WHERE ")
		if err := g.expr(stmt.Where); err != nil {
			return err
		}
	}

	if len(stmt.GroupBy) > 0 {
		g.sb.WriteString(" GROUP BY ")
		for i, key := range stmt.GroupBy {
			if i > 0 {
				g.sb.WriteString(", ")
			}
			if err := g.expr(key); err != nil {
				return err
			}
		}
		switch g.ctx.GroupBy {
		case compile.GroupByRollup:
			g.sb.WriteString(" WITH ROLLUP")
		case compile.GroupByCube:
			g.sb.WriteString(" WITH CUBE")
		case compile.GroupByTotals:
			g.sb.WriteString(" WITH TOTALS")
		}
	}

	if stmt.Having != nil {
		g.sb.WriteString(" HAVING ")
		if err := g.expr(stmt.Having); err != nil {
			return err
		}
	}

	if len(stmt.OrderBy) > 0 {
		g.sb.WriteString(" ORDER BY ")
		for i, ord := range stmt.OrderBy {
			if i > 0 {
				g.sb.WriteString(", ")
			}
			if err := g.ordering(ord); err != nil {
				return err
			}
		}
		if err := g.interpolateClause(); err != nil {
			return err
		}
	}

	if err := g.limitClause(stmt); err != nil {
		return err
	}
	if err := g.limitByClause(); err != nil {
		return err
	}
	g.settingsClause()
	return nil
}

// deleteStatement renders ALTER TABLE ... DELETE WHERE. Column references
// are never qualified here.
func (g *generator) deleteStatement(stmt logical.Statement) error {
	if err := g.checkDeleteClauses(); err != nil {
		return err
	}
	ref, ok := baseTableRef(stmt.From)
	if !ok {
		return fmt.Errorf("sqlgen: delete requires a native table source, got %T", stmt.From)
	}
	g.deleteMode = true

	g.sb.WriteString("ALTER TABLE ")
	g.tableName(ref)
	g.sb.WriteString(" DELETE WHERE ")
	if stmt.Where == nil {
		// An unfiltered delete is explicit in the dialect.
		g.sb.WriteString("1")
	} else if err := g.expr(stmt.Where); err != nil {
		return err
	}
	g.settingsClause()
	return nil
}

// checkDeleteClauses rejects recorded clauses that the dialect's
// ALTER TABLE ... DELETE form cannot carry; silently dropping one would
// delete more rows than the author constrained.
func (g *generator) checkDeleteClauses() error {
	switch {
	case g.ctx.PreWhere != nil:
		return deleteClauseError("PreWhere", "a pre-filter")
	case g.ctx.Final:
		return deleteClauseError("Final", "a FINAL modifier")
	case g.ctx.Sample != nil:
		return deleteClauseError("Sample", "a sampling clause")
	case g.ctx.LimitBy != nil:
		return deleteClauseError("LimitBy", "a limit-by clause")
	case len(g.ctx.Fills) > 0:
		return deleteClauseError("WithFill", "a fill clause")
	case len(g.ctx.Interpolations) > 0:
		return deleteClauseError("Interpolate", "an interpolation")
	}
	return nil
}

func deleteClauseError(construct, clause string) error {
	return &compile.Error{
		Code:      compile.ErrCodeInvalidArgument,
		Construct: construct,
		Message:   fmt.Sprintf("%s cannot apply to a delete statement", clause),
	}
}

// baseAlias finds the alias of the left-most source relation.
func baseAlias(rel logical.Relation) string {
	switch r := rel.(type) {
	case *logical.TableRef:
		return r.Alias
	case *logical.Join:
		return baseAlias(r.Left)
	case chexpr.Modifier:
		return baseAlias(r.Table)
	case chexpr.TableFunctionCall:
		return r.Alias
	case chexpr.DictionaryTableCall:
		return r.Alias
	}
	return ""
}

// baseTableRef unwraps the statement source down to its table reference.
func baseTableRef(rel logical.Relation) (*logical.TableRef, bool) {
	switch r := rel.(type) {
	case *logical.TableRef:
		return r, true
	case chexpr.Modifier:
		return baseTableRef(r.Table)
	}
	return nil, false
}

// relation renders one FROM-clause source.
func (g *generator) relation(rel logical.Relation) error {
	switch r := rel.(type) {
	case *logical.TableRef:
		g.tableName(r)
		if r.Alias != "" {
			g.sb.WriteString(" AS ")
			g.sb.WriteString(chtype.QuoteIdentifier(r.Alias))
		}
		return nil

	case chexpr.Modifier:
		if err := g.relation(r.Table); err != nil {
			return err
		}
		if r.Final {
			g.sb.WriteString(" FINAL")
		}
		if r.Sample != nil {
			g.sb.WriteString(" SAMPLE ")
			g.sb.WriteString(formatFloat(*r.Sample))
			if r.SampleOffset != nil {
				g.sb.WriteString(" OFFSET ")
				g.sb.WriteString(formatFloat(*r.SampleOffset))
			}
		}
		return nil

	case chexpr.TableFunctionCall:
		g.sb.WriteString(r.RenderedCall)
		if r.Alias != "" {
			g.sb.WriteString(" AS ")
			g.sb.WriteString(chtype.QuoteIdentifier(r.Alias))
		}
		return nil

	case chexpr.DictionaryTableCall:
		g.sb.WriteString("dictionary(")
		g.sb.WriteString(chtype.QuoteString(r.Dictionary))
		g.sb.WriteString(")")
		if r.Alias != "" {
			g.sb.WriteString(" AS ")
			g.sb.WriteString(chtype.QuoteIdentifier(r.Alias))
		}
		return nil

	case *logical.Join:
		if err := g.relation(r.Left); err != nil {
			return err
		}
		g.sb.WriteByte(' ')
		g.sb.WriteString(string(r.Kind))
		g.sb.WriteString(" JOIN ")
		if err := g.relation(r.Right); err != nil {
			return err
		}
		if r.On != nil {
			g.sb.WriteString(" ON ")
			if err := g.expr(r.On); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("sqlgen: unsupported relation node %T", rel)
}

// tableName renders the optionally database-qualified table name.
func (g *generator) tableName(ref *logical.TableRef) {
	if ref.Database != "" {
		g.sb.WriteString(chtype.QuoteIdentifier(ref.Database))
		g.sb.WriteByte('.')
	}
	g.sb.WriteString(chtype.QuoteIdentifier(ref.Table))
}

// ordering renders one ORDER BY entry plus its WITH FILL sub-clause when
// one was recorded for the ordering column.
func (g *generator) ordering(ord logical.Ordering) error {
	if err := g.expr(ord.Expr); err != nil {
		return err
	}
	if ord.Descending {
		g.sb.WriteString(" DESC")
	}

	col, ok := ord.Expr.(logical.Column)
	if !ok {
		return nil
	}
	for _, fill := range g.ctx.Fills {
		if fill.Column != col.Name {
			continue
		}
		g.sb.WriteString(" WITH FILL")
		if fill.From != nil {
			g.sb.WriteString(" FROM ")
			if err := g.expr(fill.From); err != nil {
				return err
			}
		}
		if fill.To != nil {
			g.sb.WriteString(" TO ")
			if err := g.expr(fill.To); err != nil {
				return err
			}
		}
		if fill.Step != nil {
			g.sb.WriteString(" STEP ")
			g.sb.WriteString(stepLiteral(fill.Step))
		}
		break
	}
	return nil
}

// interpolateClause renders the INTERPOLATE entries recorded for fills.
func (g *generator) interpolateClause() error {
	if len(g.ctx.Interpolations) == 0 {
		return nil
	}
	g.sb.WriteString(" INTERPOLATE (")
	for i, spec := range g.ctx.Interpolations {
		if i > 0 {
			g.sb.WriteString(", ")
		}
		g.sb.WriteString(chtype.QuoteIdentifier(spec.Column))
		switch spec.Mode {
		case logical.InterpolatePrevious:
			g.sb.WriteString(" AS ")
			g.sb.WriteString(chtype.QuoteIdentifier(spec.Column))
		case logical.InterpolateConstant:
			g.sb.WriteString(" AS ")
			if err := g.expr(spec.Value); err != nil {
				return err
			}
		}
	}
	g.sb.WriteString(")")
	return nil
}

// limitClause renders LIMIT [offset,] count. An offset without a count
// gets the synthesized maximal count the dialect requires.
func (g *generator) limitClause(stmt logical.Statement) error {
	if stmt.Limit == nil && stmt.Offset == nil {
		return nil
	}
	g.sb.WriteString(" LIMIT ")
	if stmt.Offset != nil {
		g.sb.WriteString(strconv.FormatInt(*stmt.Offset, 10))
		g.sb.WriteString(", ")
	}
	if stmt.Limit != nil {
		g.sb.WriteString(strconv.FormatInt(*stmt.Limit, 10))
	} else {
		g.sb.WriteString(maxLimit)
	}
	return nil
}

// limitByClause renders LIMIT [offset,] count BY keys.
func (g *generator) limitByClause() error {
	spec := g.ctx.LimitBy
	if spec == nil {
		return nil
	}
	g.sb.WriteString(" LIMIT ")
	if spec.Offset > 0 {
		g.sb.WriteString(strconv.FormatInt(spec.Offset, 10))
		g.sb.WriteString(", ")
	}
	g.sb.WriteString(strconv.FormatInt(spec.Count, 10))
	g.sb.WriteString(" BY ")
	for i, key := range spec.Keys {
		if i > 0 {
			g.sb.WriteString(", ")
		}
		if err := g.expr(key); err != nil {
			return err
		}
	}
	return nil
}

// settingsClause renders the trailing SETTINGS overrides.
func (g *generator) settingsClause() {
	settings := g.ctx.Settings()
	if len(settings) == 0 {
		return
	}
	g.sb.WriteString(" SETTINGS ")
	for i, s := range settings {
		if i > 0 {
			g.sb.WriteString(", ")
		}
		g.sb.WriteString(s.Name)
		g.sb.WriteString(" = ")
		g.sb.WriteString(settingValue(s.Value))
	}
}

// settingValue renders one SETTINGS value: booleans as 1/0, strings quoted.
func settingValue(v any) string {
	switch n := v.(type) {
	case bool:
		if n {
			return "1"
		}
		return "0"
	case string:
		return chtype.QuoteString(n)
	}
	return fmt.Sprintf("%v", v)
}

// stepLiteral renders a WITH FILL step.
func stepLiteral(step any) string {
	switch s := step.(type) {
	case time.Duration:
		return chtype.Interval{Count: int64(s / time.Second), Unit: chtype.IntervalSecond}.Literal()
	case chtype.Interval:
		return s.Literal()
	case float32:
		return formatFloat(float64(s))
	case float64:
		return formatFloat(s)
	}
	return fmt.Sprintf("%v", step)
}

// formatFloat renders a float in its shortest exact form.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
