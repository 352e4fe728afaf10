package compile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chime-db/chime/internal/chexpr"
	"github.com/chime-db/chime/internal/chtype"
	"github.com/chime-db/chime/internal/logical"
	"github.com/chime-db/chime/internal/model"
)

func testModel(t *testing.T) *model.Catalog {
	t.Helper()
	m := model.NewCatalog()
	require.NoError(t, m.Add(&model.Entity{
		Name:     "orders",
		Database: "app",
		Table:    "orders_local",
		Kind:     model.KindNative,
		Columns: []model.Column{
			{Name: "id", Type: chtype.UInt64},
			{Name: "amount", Type: chtype.Float64},
			{Name: "currency", Type: chtype.String},
			{Name: "created_at", Type: chtype.DateTime},
		},
	}))
	require.NoError(t, m.Add(&model.Entity{
		Name:       "currency",
		Dictionary: "currency_rates",
		Kind:       model.KindDictionary,
		Columns: []model.Column{
			{Name: "code", Type: chtype.String},
			{Name: "rate", Type: chtype.Float64},
		},
	}))
	return m
}

func compileQuery(t *testing.T, q *logical.Query) *Plan {
	t.Helper()
	plan, err := New(testModel(t)).Compile(q.Build())
	require.NoError(t, err)
	return plan
}

func compileErr(t *testing.T, q *logical.Query) *Error {
	t.Helper()
	_, err := New(testModel(t)).Compile(q.Build())
	require.Error(t, err)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	return cerr
}

func TestCompile_ExtensionClassification(t *testing.T) {
	plan := compileQuery(t, logical.From("orders").
		Select(logical.C("id")).
		Final().
		SampleOffset(0.1, 0.5).
		Setting("max_threads", 4).
		Setting("final", true).
		PreWhere(logical.Gt(logical.C("amount"), logical.V(100))).
		LimitBy(3, logical.C("currency")).
		WithRollup())

	ctx := plan.Ctx
	assert.True(t, ctx.Final)
	require.NotNil(t, ctx.Sample)
	assert.Equal(t, 0.1, *ctx.Sample)
	require.NotNil(t, ctx.SampleOffset)
	assert.Equal(t, 0.5, *ctx.SampleOffset)
	assert.Equal(t, []logical.SettingArg{
		{Name: "max_threads", Value: 4},
		{Name: "final", Value: true},
	}, ctx.Settings())
	assert.NotNil(t, ctx.PreWhere)
	require.NotNil(t, ctx.LimitBy)
	assert.Equal(t, int64(3), ctx.LimitBy.Count)
	assert.Equal(t, GroupByRollup, ctx.GroupBy)

	// Classified calls do not survive on the lowered statement.
	assert.Empty(t, plan.Stmt.Extensions)
}

func TestCompile_SettingOverwriteKeepsPosition(t *testing.T) {
	plan := compileQuery(t, logical.From("orders").
		Setting("max_threads", 4).
		Setting("final", true).
		Setting("max_threads", 8))

	assert.Equal(t, []logical.SettingArg{
		{Name: "max_threads", Value: 8},
		{Name: "final", Value: true},
	}, plan.Ctx.Settings())
}

func TestCompile_SampleNonConstant(t *testing.T) {
	cerr := compileErr(t, logical.From("orders").SampleExpr(logical.C("amount")))
	assert.Equal(t, ErrCodeNonConstantArgument, cerr.Code)
	assert.Equal(t, "Sample", cerr.Construct)
}

func TestCompile_SampleValidation(t *testing.T) {
	cerr := compileErr(t, logical.From("orders").Sample(0))
	assert.Equal(t, ErrCodeInvalidArgument, cerr.Code)

	cerr = compileErr(t, logical.From("orders").Sample(1.5))
	assert.Equal(t, ErrCodeInvalidArgument, cerr.Code)

	cerr = compileErr(t, logical.From("orders").Sample(0.1).Sample(0.2))
	assert.Equal(t, ErrCodeDuplicateClause, cerr.Code)
}

func TestCompile_GroupByModifierSingleUse(t *testing.T) {
	cerr := compileErr(t, logical.From("orders").WithRollup().WithCube())
	assert.Equal(t, ErrCodeConflictingClause, cerr.Code)

	// Repeating the same modifier is rejected too.
	cerr = compileErr(t, logical.From("orders").WithRollup().WithRollup())
	assert.Equal(t, ErrCodeConflictingClause, cerr.Code)
}

func TestCompile_DuplicatePreWhereAndLimitBy(t *testing.T) {
	pred := logical.Gt(logical.C("amount"), logical.V(1))

	cerr := compileErr(t, logical.From("orders").PreWhere(pred).PreWhere(pred))
	assert.Equal(t, ErrCodeDuplicateClause, cerr.Code)

	cerr = compileErr(t, logical.From("orders").
		LimitBy(3, logical.C("currency")).
		LimitBy(5, logical.C("currency")))
	assert.Equal(t, ErrCodeDuplicateClause, cerr.Code)
}

func TestCompile_FillStepShapes(t *testing.T) {
	plan := compileQuery(t, logical.From("orders").
		OrderBy(logical.C("created_at")).
		WithFillStep("created_at", time.Hour))
	require.Len(t, plan.Ctx.Fills, 1)
	assert.Equal(t, time.Hour, plan.Ctx.Fills[0].Step)

	cerr := compileErr(t, logical.From("orders").
		OrderBy(logical.C("created_at")).
		WithFillStep("created_at", "fast"))
	assert.Equal(t, ErrCodeInvalidArgument, cerr.Code)
}

func TestCompile_FillBoundsResolveTypes(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	plan := compileQuery(t, logical.From("orders").
		OrderBy(logical.C("created_at")).
		WithFillRange("created_at", from, to))

	require.Len(t, plan.Ctx.Fills, 1)
	spec := plan.Ctx.Fills[0]

	lower, ok := spec.From.(logical.Constant)
	require.True(t, ok)
	require.NotNil(t, lower.Type)
	assert.Equal(t, "DateTime", lower.Type.Name())
	assert.Equal(t, from, lower.Value)

	upper, ok := spec.To.(logical.Constant)
	require.True(t, ok)
	require.NotNil(t, upper.Type)
	assert.Equal(t, "DateTime", upper.Type.Name())
}

func TestCompile_OperatorLowering(t *testing.T) {
	plan := compileQuery(t, logical.From("orders").
		Select(logical.Concat(logical.C("currency"), logical.V("!"))).
		Where(logical.Gt(
			logical.TimeDiff(logical.C("created_at"), logical.V(time.Unix(0, 0).UTC())),
			logical.V(60),
		)))

	concat, ok := plan.Stmt.Columns[0].Expr.(logical.Call)
	require.True(t, ok)
	assert.Equal(t, "concat", concat.Name)
	require.Len(t, concat.Args, 2)

	cmp, ok := plan.Stmt.Where.(logical.Binary)
	require.True(t, ok)
	diff, ok := cmp.Left.(logical.Call)
	require.True(t, ok)
	assert.Equal(t, "dateDiff", diff.Name)
	require.Len(t, diff.Args, 3)
	assert.Equal(t, "second", diff.Args[0].(logical.Constant).Value)
}

func TestCompile_ConstantTypeResolution(t *testing.T) {
	plan := compileQuery(t, logical.From("orders").
		Where(logical.Eq(logical.C("id"), logical.V(uint64(7)))))

	eq := plan.Stmt.Where.(logical.Binary)
	c := eq.Right.(logical.Constant)
	require.NotNil(t, c.Type)
	assert.Equal(t, "UInt64", c.Type.Name())
}

func TestCompile_DictLowering(t *testing.T) {
	plan := compileQuery(t, logical.From("orders").
		Select(
			logical.Dict("currency").Get("rate", logical.C("currency")),
			logical.Dict("currency").GetOrDefault("rate", logical.C("currency"), logical.V(1.0)),
		).
		Where(logical.Dict("currency").ContainsKey(logical.C("currency"))))

	get := plan.Stmt.Columns[0].Expr.(logical.Call)
	assert.Equal(t, "dictGet", get.Name)
	require.Len(t, get.Args, 3)
	assert.Equal(t, "currency_rates", get.Args[0].(logical.Constant).Value)
	assert.Equal(t, "rate", get.Args[1].(logical.Constant).Value)

	getOrDefault := plan.Stmt.Columns[1].Expr.(logical.Call)
	assert.Equal(t, "dictGetOrDefault", getOrDefault.Name)
	assert.Len(t, getOrDefault.Args, 4)

	has := plan.Stmt.Where.(logical.Call)
	assert.Equal(t, "dictHas", has.Name)
	assert.Len(t, has.Args, 2)
}

func TestCompile_DictErrors(t *testing.T) {
	cerr := compileErr(t, logical.From("orders").
		Select(logical.Dict("fx").Get("rate", logical.C("currency"))))
	assert.Equal(t, ErrCodeUnknownEntity, cerr.Code)

	cerr = compileErr(t, logical.From("orders").
		Select(logical.Dict("currency").Get("spread", logical.C("currency"))))
	assert.Equal(t, ErrCodeUnknownColumn, cerr.Code)

	// A native entity cannot be used as a dictionary handle.
	cerr = compileErr(t, logical.From("orders").
		Select(logical.Dict("orders").Get("id", logical.C("id"))))
	assert.Equal(t, ErrCodeInvalidArgument, cerr.Code)
}

func TestCompile_WindowLagDefaults(t *testing.T) {
	plan := compileQuery(t, logical.From("orders").
		Select(logical.Lag(logical.C("amount")).Over(func(w *logical.WindowBuilder) {
			w.PartitionBy(logical.C("currency")).OrderBy(logical.C("created_at"))
		})))

	call, ok := plan.Stmt.Columns[0].Expr.(chexpr.WindowCall)
	require.True(t, ok)
	assert.Equal(t, "lagInFrame", call.Name)
	require.Len(t, call.Args, 2)
	assert.Equal(t, int64(1), call.Args[1].(logical.Constant).Value)

	// No explicit frame: the in-frame function gets the whole partition.
	require.NotNil(t, call.Frame)
	assert.Equal(t, logical.FrameRows, call.Frame.Unit)
	assert.Equal(t, logical.BoundUnboundedPreceding, call.Frame.Start.Kind)
	assert.Equal(t, logical.BoundUnboundedFollowing, call.Frame.End.Kind)
}

func TestCompile_WindowExplicitFrameKept(t *testing.T) {
	plan := compileQuery(t, logical.From("orders").
		Select(logical.NewWindow().
			PartitionBy(logical.C("currency")).
			OrderBy(logical.C("created_at")).
			Rows().Preceding(3).CurrentRow().
			Sum(logical.C("amount"))))

	call := plan.Stmt.Columns[0].Expr.(chexpr.WindowCall)
	assert.Equal(t, "sum", call.Name)
	require.NotNil(t, call.Frame)
	assert.Equal(t, logical.FrameBound{Kind: logical.BoundPreceding, Offset: 3}, call.Frame.Start)
	assert.Equal(t, logical.FrameBound{Kind: logical.BoundCurrentRow}, call.Frame.End)
}

func TestCompile_WindowBuildErrSurfaces(t *testing.T) {
	cerr := compileErr(t, logical.From("orders").
		Select(logical.NewWindow().
			OrderBy(logical.C("created_at")).
			Rows().UnboundedPreceding().
			RowNumber()))
	assert.Equal(t, ErrCodeInvalidArgument, cerr.Code)
	assert.Contains(t, cerr.Message, "boundary")
}

func TestCompile_ParamsFirstOccurrenceOrder(t *testing.T) {
	plan := compileQuery(t, logical.From("orders").
		Where(logical.Gt(logical.C("amount"), logical.Bind("min_amount", 10.0))).
		Where(logical.Eq(logical.C("currency"), logical.Bind("ccy", "EUR"))).
		Having(logical.Gt(logical.C("amount"), logical.Bind("min_amount", 10.0))))

	require.Len(t, plan.Params, 2)
	assert.Equal(t, "min_amount", plan.Params[0].Name)
	assert.Equal(t, "Float64", plan.Params[0].Type.Name())
	assert.Equal(t, "ccy", plan.Params[1].Name)
	assert.Equal(t, "String", plan.Params[1].Type.Name())
}

func TestCompile_ParamWithoutTypeOrValue(t *testing.T) {
	cerr := compileErr(t, logical.From("orders").
		Where(logical.Eq(logical.C("id"), logical.P("id"))))
	assert.Equal(t, ErrCodeInvalidArgument, cerr.Code)

	// An explicit type carries a value-less placeholder through.
	plan := compileQuery(t, logical.From("orders").
		Where(logical.Eq(logical.C("id"), logical.Parameter{Name: "id", Type: chtype.UInt64})))
	require.Len(t, plan.Params, 1)
	assert.False(t, plan.Params[0].HasValue)
	assert.Equal(t, "UInt64", plan.Params[0].Type.Name())
}

func TestCompile_EntityResolution(t *testing.T) {
	plan := compileQuery(t, logical.From("orders").Select(logical.C("id")))

	ref, ok := plan.Stmt.From.(*logical.TableRef)
	require.True(t, ok)
	assert.Equal(t, "app", ref.Database)
	assert.Equal(t, "orders_local", ref.Table)

	cerr := compileErr(t, logical.From("no_such_entity"))
	assert.Equal(t, ErrCodeUnknownEntity, cerr.Code)
}

func TestCompile_RawAndJSON(t *testing.T) {
	plan := compileQuery(t, logical.From("orders").
		Select(
			logical.Raw("toStartOfHour(created_at)"),
			logical.JSONCol(logical.C("payload")).Field("items").Item("skus", 0).Path(),
		))

	raw, ok := plan.Stmt.Columns[0].Expr.(chexpr.RawFragment)
	require.True(t, ok)
	assert.Equal(t, "toStartOfHour(created_at)", raw.SQL)

	path, ok := plan.Stmt.Columns[1].Expr.(chexpr.JSONPath)
	require.True(t, ok)
	assert.Len(t, path.Segments, 2)

	cerr := compileErr(t, logical.From("orders").Select(logical.Raw("")))
	assert.Equal(t, ErrCodeInvalidArgument, cerr.Code)
}
