package logical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_RecordsClausesAndExtensions(t *testing.T) {
	stmt := From("orders").As("o").
		Select(C("id"), C("amount")).
		Where(Gt(C("amount"), V(200))).
		Sample(0.5).
		OrderBy(C("date")).
		Take(10).
		Build()

	assert.Equal(t, KindSelect, stmt.Kind)
	require.Len(t, stmt.Columns, 2)
	require.NotNil(t, stmt.Where)
	require.NotNil(t, stmt.Limit)
	assert.Equal(t, int64(10), *stmt.Limit)

	ref, ok := stmt.From.(*TableRef)
	require.True(t, ok)
	assert.Equal(t, "orders", ref.Entity)
	assert.Equal(t, "o", ref.Alias)

	require.Len(t, stmt.Extensions, 1)
	assert.Equal(t, ExtSample, stmt.Extensions[0].Kind)
}

func TestBuilder_RepeatedWhereAndsTogether(t *testing.T) {
	stmt := From("orders").
		Where(Gt(C("amount"), V(1))).
		Where(Lt(C("amount"), V(10))).
		Build()

	b, ok := stmt.Where.(Binary)
	require.True(t, ok)
	assert.Equal(t, OpAnd, b.Op)
}

func TestBuilder_ExtensionOrderIsAuthoringOrder(t *testing.T) {
	stmt := From("metrics").
		Final().
		WithRollup().
		Setting("max_threads", 4).
		Build()

	kinds := make([]ExtensionKind, len(stmt.Extensions))
	for i, e := range stmt.Extensions {
		kinds[i] = e.Kind
	}
	assert.Equal(t, []ExtensionKind{ExtFinal, ExtRollup, ExtSettings}, kinds)
}

func TestBuilder_SettingsBatchIsSortedByName(t *testing.T) {
	stmt := From("orders").
		Settings(map[string]any{
			"max_threads":  4,
			"final":        true,
			"log_comment":  "rollup",
			"allow_ddl":    false,
			"join_timeout": 30,
		}).
		Build()

	require.Len(t, stmt.Extensions, 1)
	args := stmt.Extensions[0].Settings
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.Name
	}
	assert.Equal(t,
		[]string{"allow_ddl", "final", "join_timeout", "log_comment", "max_threads"},
		names)
}

func TestBuilder_FillBuilderCapturesInterpolations(t *testing.T) {
	stmt := From("metrics").
		OrderBy(C("ts")).
		WithFillSpec(FillFor("ts").From(0).To(100).Step(10).
			InterpolatePrevious("value").
			InterpolateConstant("source", "filled")).
		Build()

	require.Len(t, stmt.Extensions, 2)
	fill := stmt.Extensions[0]
	assert.Equal(t, ExtFill, fill.Kind)
	assert.Equal(t, "ts", fill.Fill.Column)
	require.NotNil(t, fill.Fill.Step)

	interp := stmt.Extensions[1]
	assert.Equal(t, ExtInterpolate, interp.Kind)
	require.Len(t, interp.Interpolate, 2)
	assert.Equal(t, InterpolatePrevious, interp.Interpolate[0].Mode)
	assert.Equal(t, InterpolateConstant, interp.Interpolate[1].Mode)
}

func TestBuilder_DeleteKeepsPredicate(t *testing.T) {
	stmt := From("orders").Where(Eq(C("status"), V("stale"))).Delete().Build()
	assert.Equal(t, KindDelete, stmt.Kind)
	require.NotNil(t, stmt.Where)
}
