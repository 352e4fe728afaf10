package sqlgen

import (
	"fmt"
	"math"
	"strconv"

	"github.com/chime-db/chime/internal/chexpr"
	"github.com/chime-db/chime/internal/chtype"
	"github.com/chime-db/chime/internal/logical"
)

// expr renders one expression node.
func (g *generator) expr(e logical.Expr) error {
	switch v := e.(type) {
	case logical.Column:
		g.column(v)
		return nil

	case logical.Constant:
		lit, err := g.constant(v)
		if err != nil {
			return err
		}
		g.sb.WriteString(lit)
		return nil

	case logical.Parameter:
		return g.parameter(v)

	case logical.Binary:
		return g.binary(v)

	case logical.Unary:
		return g.unary(v)

	case logical.Call:
		return g.call(v.Name, v.Args)

	case chexpr.WindowCall:
		return g.windowCall(v)

	case chexpr.JSONPath:
		g.jsonPath(v)
		return nil

	case chexpr.RawFragment:
		g.sb.WriteString(v.SQL)
		return nil
	}
	return fmt.Errorf("sqlgen: unsupported expression node %T", e)
}

// column renders a column reference. Unqualified references pick up the
// base table alias in SELECT mode; DELETE mode drops qualification
// entirely.
func (g *generator) column(c logical.Column) {
	if !g.deleteMode {
		switch {
		case c.Table != "":
			g.sb.WriteString(chtype.QuoteIdentifier(c.Table))
			g.sb.WriteByte('.')
		case g.qualifier != "":
			g.sb.WriteString(chtype.QuoteIdentifier(g.qualifier))
			g.sb.WriteByte('.')
		}
	}
	g.sb.WriteString(chtype.QuoteIdentifier(c.Name))
}

// constant renders a literal through its storage type when one was
// resolved; untyped constants fall back to shape-based rendering.
func (g *generator) constant(c logical.Constant) (string, error) {
	if c.Value == nil {
		return "NULL", nil
	}
	if c.Type != nil {
		return c.Type.Literal(c.Value)
	}
	return g.literal(c.Value)
}

// literal renders an untyped Go value as a dialect literal.
func (g *generator) literal(v any) (string, error) {
	switch n := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return chtype.QuoteString(n), nil
	case bool:
		if n {
			return "true", nil
		}
		return "false", nil
	case int:
		return strconv.FormatInt(int64(n), 10), nil
	case int8:
		return strconv.FormatInt(int64(n), 10), nil
	case int16:
		return strconv.FormatInt(int64(n), 10), nil
	case int32:
		return strconv.FormatInt(int64(n), 10), nil
	case int64:
		return strconv.FormatInt(n, 10), nil
	case uint:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint64:
		return strconv.FormatUint(n, 10), nil
	case float32:
		return floatLiteral(float64(n)), nil
	case float64:
		return floatLiteral(n), nil
	}
	return "", fmt.Errorf("sqlgen: no literal form for %T", v)
}

// floatLiteral renders a float, spelling the dialect's non-finite tokens.
func floatLiteral(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return formatFloat(f)
}

// parameter renders a typed server-side placeholder: {name:TypeName}.
func (g *generator) parameter(p logical.Parameter) error {
	if p.Type == nil {
		// A NULL-bound parameter left outside a specialized comparison
		// renders as the literal it stands for.
		if p.HasValue && p.Value == nil {
			g.sb.WriteString("NULL")
			return nil
		}
		return fmt.Errorf("sqlgen: parameter %q has no resolved type", p.Name)
	}
	g.sb.WriteByte('{')
	g.sb.WriteString(p.Name)
	g.sb.WriteByte(':')
	g.sb.WriteString(p.Type.Name())
	g.sb.WriteByte('}')
	return nil
}

// binary renders an infix operator, parenthesizing compound operands.
func (g *generator) binary(b logical.Binary) error {
	if err := g.operand(b.Left); err != nil {
		return err
	}
	g.sb.WriteByte(' ')
	g.sb.WriteString(string(b.Op))
	g.sb.WriteByte(' ')
	return g.operand(b.Right)
}

// unary renders prefix and postfix unary operators.
func (g *generator) unary(u logical.Unary) error {
	switch u.Op {
	case logical.OpIsNull, logical.OpIsNotNull:
		if err := g.operand(u.Operand); err != nil {
			return err
		}
		g.sb.WriteByte(' ')
		g.sb.WriteString(string(u.Op))
		return nil
	case logical.OpNot:
		g.sb.WriteString("NOT ")
		return g.operand(u.Operand)
	case logical.OpNeg:
		g.sb.WriteByte('-')
		return g.operand(u.Operand)
	}
	return fmt.Errorf("sqlgen: unsupported unary operator %q", u.Op)
}

// operand renders a sub-expression, wrapping compound shapes in parens so
// the emitted text never depends on dialect precedence rules.
func (g *generator) operand(e logical.Expr) error {
	switch e.(type) {
	case logical.Binary, logical.Unary:
		g.sb.WriteByte('(')
		if err := g.expr(e); err != nil {
			return err
		}
		g.sb.WriteByte(')')
		return nil
	}
	return g.expr(e)
}

// call renders a function application.
func (g *generator) call(name string, args []logical.Expr) error {
	g.sb.WriteString(name)
	g.sb.WriteByte('(')
	for i, arg := range args {
		if i > 0 {
			g.sb.WriteString(", ")
		}
		if err := g.expr(arg); err != nil {
			return err
		}
	}
	g.sb.WriteByte(')')
	return nil
}

// windowCall renders name(args) OVER (PARTITION BY ... ORDER BY ... frame).
func (g *generator) windowCall(w chexpr.WindowCall) error {
	if err := g.call(w.Name, w.Args); err != nil {
		return err
	}
	g.sb.WriteString(" OVER (")
	wrote := false

	if len(w.PartitionBy) > 0 {
		g.sb.WriteString("PARTITION BY ")
		for i, key := range w.PartitionBy {
			if i > 0 {
				g.sb.WriteString(", ")
			}
			if err := g.expr(key); err != nil {
				return err
			}
		}
		wrote = true
	}
	if len(w.OrderBy) > 0 {
		if wrote {
			g.sb.WriteByte(' ')
		}
		g.sb.WriteString("ORDER BY ")
		for i, ord := range w.OrderBy {
			if i > 0 {
				g.sb.WriteString(", ")
			}
			if err := g.expr(ord.Expr); err != nil {
				return err
			}
			if ord.Descending {
				g.sb.WriteString(" DESC")
			}
		}
		wrote = true
	}
	if w.Frame != nil {
		if wrote {
			g.sb.WriteByte(' ')
		}
		g.sb.WriteString(string(w.Frame.Unit))
		g.sb.WriteString(" BETWEEN ")
		g.sb.WriteString(frameBound(w.Frame.Start))
		g.sb.WriteString(" AND ")
		g.sb.WriteString(frameBound(w.Frame.End))
	}
	g.sb.WriteByte(')')
	return nil
}

// frameBound renders one frame boundary textually.
func frameBound(b logical.FrameBound) string {
	switch b.Kind {
	case logical.BoundPreceding, logical.BoundFollowing:
		return fmt.Sprintf("%d %s", b.Offset, b.Kind)
	}
	return string(b.Kind)
}

// jsonPath renders successive quoted subcolumn accesses, converting array
// indices from zero-based to the dialect's one-based form.
func (g *generator) jsonPath(p chexpr.JSONPath) {
	g.column(p.Column)
	for _, seg := range p.Segments {
		g.sb.WriteByte('.')
		g.sb.WriteString(chtype.QuoteIdentifier(seg.Name))
		if seg.Index != nil {
			g.sb.WriteByte('[')
			g.sb.WriteString(strconv.Itoa(*seg.Index + 1))
			g.sb.WriteByte(']')
		}
	}
}
