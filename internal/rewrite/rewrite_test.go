package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chime-db/chime/internal/chexpr"
	"github.com/chime-db/chime/internal/chtype"
	"github.com/chime-db/chime/internal/compile"
	"github.com/chime-db/chime/internal/extsource"
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
			{Name: "currency", Type: chtype.String},
			{Name: "note", Type: chtype.NewNullable(chtype.String)},
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
	require.NoError(t, m.Add(&model.Entity{
		Name:   "legacy_users",
		Table:  "users",
		Source: "pg_main",
		Kind:   model.KindExternal,
		Columns: []model.Column{
			{Name: "id", Type: chtype.UInt64},
		},
	}))
	return m
}

func testSources() *extsource.Resolver {
	return extsource.NewResolver(map[string]extsource.Source{
		"pg_main": {
			Provider: extsource.ProviderPostgres,
			Host:     "db.example.com",
			Database: "app",
			User:     "reader",
			Password: "secret",
		},
	})
}

func rewritePlan(t *testing.T, q *logical.Query) *compile.Plan {
	t.Helper()
	m := testModel(t)
	plan, err := compile.New(m).Compile(q.Build())
	require.NoError(t, err)
	out, err := New(m, testSources()).Rewrite(plan)
	require.NoError(t, err)
	return out
}

func TestRewrite_DictionarySource(t *testing.T) {
	plan := rewritePlan(t, logical.From("currency").As("c").Select(logical.C("rate")))

	call, ok := plan.Stmt.From.(chexpr.DictionaryTableCall)
	require.True(t, ok)
	assert.Equal(t, "currency_rates", call.Dictionary)
	assert.Equal(t, "c", call.Alias)
}

func TestRewrite_ExternalSource(t *testing.T) {
	plan := rewritePlan(t, logical.From("legacy_users").As("u").Select(logical.C("id")))

	call, ok := plan.Stmt.From.(chexpr.TableFunctionCall)
	require.True(t, ok)
	assert.Equal(t, "postgresql", call.Provider)
	assert.Equal(t,
		"postgresql('db.example.com:5432', 'app', 'users', 'reader', 'secret')",
		call.RenderedCall)
}

func TestRewrite_ExternalWithoutResolver(t *testing.T) {
	m := testModel(t)
	plan, err := compile.New(m).Compile(logical.From("legacy_users").Build())
	require.NoError(t, err)

	_, err = New(m, nil).Rewrite(plan)
	require.Error(t, err)
	var rerr *extsource.ResolveError
	require.ErrorAs(t, err, &rerr)
}

func TestRewrite_ModifierInjection(t *testing.T) {
	plan := rewritePlan(t, logical.From("orders").Final().Sample(0.25))

	mod, ok := plan.Stmt.From.(chexpr.Modifier)
	require.True(t, ok)
	assert.True(t, mod.Final)
	require.NotNil(t, mod.Sample)
	assert.Equal(t, 0.25, *mod.Sample)

	ref, ok := mod.Table.(*logical.TableRef)
	require.True(t, ok)
	assert.Equal(t, "orders_local", ref.Table)
}

func TestRewrite_ModifierSkipsDictionaryAndFunctionSources(t *testing.T) {
	plan := rewritePlan(t, logical.From("orders").As("o").
		Join("currency", "c", logical.Eq(logical.CQ("o", "currency"), logical.CQ("c", "code"))).
		Final())

	join, ok := plan.Stmt.From.(*logical.Join)
	require.True(t, ok)

	// The native side gets the modifier; the dictionary side does not.
	_, ok = join.Left.(chexpr.Modifier)
	assert.True(t, ok)
	_, ok = join.Right.(chexpr.DictionaryTableCall)
	assert.True(t, ok)
}

func TestRewrite_NoModifierWithoutContextState(t *testing.T) {
	plan := rewritePlan(t, logical.From("orders"))
	_, ok := plan.Stmt.From.(*logical.TableRef)
	assert.True(t, ok)
}

func TestRewrite_NullParameterEquality(t *testing.T) {
	plan := rewritePlan(t, logical.From("orders").
		Where(logical.Eq(logical.C("note"), logical.Bind("note", nil))))

	u, ok := plan.Stmt.Where.(logical.Unary)
	require.True(t, ok)
	assert.Equal(t, logical.OpIsNull, u.Op)
	assert.Equal(t, logical.Column{Name: "note"}, u.Operand)

	// A NULL-bound parameter never becomes a placeholder binding.
	assert.Empty(t, plan.Params)
}

func TestRewrite_NullParameterInequalityReversedOperands(t *testing.T) {
	plan := rewritePlan(t, logical.From("orders").
		Where(logical.Ne(logical.Bind("note", nil), logical.C("note"))))

	u, ok := plan.Stmt.Where.(logical.Unary)
	require.True(t, ok)
	assert.Equal(t, logical.OpIsNotNull, u.Op)
	assert.Equal(t, logical.Column{Name: "note"}, u.Operand)
}

func TestRewrite_NullParameterInsideConjunction(t *testing.T) {
	plan := rewritePlan(t, logical.From("orders").
		Where(logical.Eq(logical.C("id"), logical.Bind("id", uint64(1)))).
		Where(logical.Eq(logical.C("note"), logical.Bind("note", nil))))

	and, ok := plan.Stmt.Where.(logical.Binary)
	require.True(t, ok)
	assert.Equal(t, logical.OpAnd, and.Op)

	u, ok := and.Right.(logical.Unary)
	require.True(t, ok)
	assert.Equal(t, logical.OpIsNull, u.Op)

	require.Len(t, plan.Params, 1)
	assert.Equal(t, "id", plan.Params[0].Name)
}

func TestRewrite_NullParameterInJoinPredicate(t *testing.T) {
	on := logical.And(
		logical.Eq(logical.CQ("o", "currency"), logical.CQ("c", "code")),
		logical.Eq(logical.CQ("o", "note"), logical.Bind("note", nil)),
	)
	plan := rewritePlan(t, logical.From("orders").As("o").
		Join("currency", "c", on).
		Final())

	join, ok := plan.Stmt.From.(*logical.Join)
	require.True(t, ok)

	// The modifier wrapper on the native side survives the rewrite.
	_, ok = join.Left.(chexpr.Modifier)
	assert.True(t, ok)

	and, ok := join.On.(logical.Binary)
	require.True(t, ok)
	u, ok := and.Right.(logical.Unary)
	require.True(t, ok)
	assert.Equal(t, logical.OpIsNull, u.Op)
	assert.Empty(t, plan.Params)
}
