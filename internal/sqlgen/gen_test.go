package sqlgen

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chime-db/chime/internal/chtype"
	"github.com/chime-db/chime/internal/compile"
	"github.com/chime-db/chime/internal/extsource"
	"github.com/chime-db/chime/internal/logical"
	"github.com/chime-db/chime/internal/model"
	"github.com/chime-db/chime/internal/rewrite"
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

// render runs the full pipeline: compile, rewrite, generate.
func render(t *testing.T, q *logical.Query) *Output {
	t.Helper()
	m := testModel(t)
	plan, err := compile.New(m).Compile(q.Build())
	require.NoError(t, err)
	plan, err = rewrite.New(m, testSources()).Rewrite(plan)
	require.NoError(t, err)
	out, err := Generate(plan)
	require.NoError(t, err)
	return out
}

func TestGenerate_Golden(t *testing.T) {
	tests := []struct {
		name  string
		query *logical.Query
	}{
		{
			"basic_select",
			logical.From("orders").As("o").
				Select(logical.C("id"), logical.C("amount")).
				Where(logical.Gt(logical.C("amount"), logical.V(200))).
				Sample(0.5).
				OrderBy(logical.C("created_at")).
				Take(10),
		},
		{
			"delete_unqualified",
			logical.From("orders").As("o").
				Where(logical.Eq(logical.C("currency"), logical.V("EUR"))).
				Delete(),
		},
		{
			"group_rollup_settings",
			logical.From("orders").
				Select(logical.C("currency"), logical.F("sum", logical.C("amount"))).
				GroupBy(logical.C("currency")).
				WithRollup().
				Setting("max_threads", 4),
		},
		{
			"fill_interpolate",
			logical.From("orders").
				Select(logical.C("created_at"), logical.C("amount")).
				OrderBy(logical.C("created_at")).
				WithFillStep("created_at", chtype.Interval{Count: 1, Unit: chtype.IntervalHour}).
				InterpolateWithPrevious("amount"),
		},
		{
			"window_lag",
			logical.From("orders").
				SelectAs(logical.Lag(logical.C("amount")).Over(func(w *logical.WindowBuilder) {
					w.PartitionBy(logical.C("currency")).OrderBy(logical.C("created_at"))
				}), "prev"),
		},
		{
			"dictionary_source",
			logical.From("currency").As("c").
				Select(logical.C("code"), logical.C("rate")),
		},
		{
			"external_source",
			logical.From("legacy_users").As("u").
				Select(logical.C("id")),
		},
		{
			"prewhere_limitby_offset",
			logical.From("orders").As("o").
				Select(logical.C("id")).
				PreWhere(logical.Gt(logical.C("amount"), logical.V(100))).
				Where(logical.Like(logical.C("currency"), logical.V("E%"))).
				LimitBy(2, logical.C("currency")).
				Skip(5),
		},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(t, tt.query)
			g.Assert(t, tt.name, []byte(out.SQL))
		})
	}
}

func TestGenerate_ClauseOrder(t *testing.T) {
	out := render(t, logical.From("orders").
		Where(logical.Gt(logical.C("amount"), logical.V(200))).
		Sample(0.5).
		OrderBy(logical.C("created_at")).
		Take(10))

	sql := out.SQL
	where := []string{" SAMPLE 0.5", " WHERE ", " ORDER BY ", " LIMIT 10"}
	last := -1
	for _, clause := range where {
		idx := indexAfter(sql, clause, last)
		require.Greaterf(t, idx, last, "clause %q out of order in %q", clause, sql)
		last = idx
	}
}

// indexAfter finds needle at a position strictly after from.
func indexAfter(s, needle string, from int) int {
	for i := from + 1; i+len(needle) <= len(s); i++ {
		if s[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func TestGenerate_DeleteVersusSelectQualification(t *testing.T) {
	pred := logical.Eq(logical.C("currency"), logical.V("EUR"))

	sel := render(t, logical.From("orders").As("o").Where(pred))
	assert.Contains(t, sel.SQL, "`o`.`currency` = 'EUR'")

	del := render(t, logical.From("orders").As("o").Where(pred).Delete())
	assert.Contains(t, del.SQL, "ALTER TABLE `app`.`orders_local` DELETE WHERE ")
	assert.Contains(t, del.SQL, "`currency` = 'EUR'")
	assert.NotContains(t, del.SQL, "`o`.")
}

func TestGenerate_OffsetWithoutLimitSynthesizesMaxCount(t *testing.T) {
	out := render(t, logical.From("orders").Skip(40))
	assert.Contains(t, out.SQL, "LIMIT 40, 18446744073709551615")
}

func TestGenerate_WindowLagExplicitOffset(t *testing.T) {
	out := render(t, logical.From("orders").
		Select(logical.Lag(logical.C("amount"), logical.V(int64(2))).Over(func(w *logical.WindowBuilder) {
			w.OrderBy(logical.C("created_at"))
		})))

	assert.Contains(t, out.SQL, "lagInFrame(`amount`, 2)")
	assert.Contains(t, out.SQL, "ROWS BETWEEN UNBOUNDED PRECEDING AND UNBOUNDED FOLLOWING")
}

func TestGenerate_ExplicitFrameBounds(t *testing.T) {
	out := render(t, logical.From("orders").
		Select(logical.NewWindow().
			OrderBy(logical.C("created_at")).
			Rows().Preceding(3).CurrentRow().
			Sum(logical.C("amount"))))

	assert.Contains(t, out.SQL, "ROWS BETWEEN 3 PRECEDING AND CURRENT ROW")
}

func TestGenerate_SettingsRendering(t *testing.T) {
	out := render(t, logical.From("orders").
		Setting("final", true).
		Setting("allow_experimental", false).
		Setting("log_comment", "nightly rollup"))

	assert.Contains(t, out.SQL,
		"SETTINGS final = 1, allow_experimental = 0, log_comment = 'nightly rollup'")
}

func TestGenerate_ParameterPlaceholders(t *testing.T) {
	out := render(t, logical.From("orders").
		Where(logical.Gt(logical.C("amount"), logical.Bind("min_amount", 10.5))).
		Where(logical.Eq(logical.C("currency"), logical.Bind("ccy", "EUR"))))

	assert.Contains(t, out.SQL, "{min_amount:Float64}")
	assert.Contains(t, out.SQL, "{ccy:String}")

	require.Len(t, out.Params, 2)
	assert.Equal(t, "min_amount", out.Params[0].Name)
	assert.Equal(t, 10.5, out.Params[0].Value)
	assert.Equal(t, "ccy", out.Params[1].Name)
}

func TestGenerate_JSONPathOneBasedIndex(t *testing.T) {
	out := render(t, logical.From("orders").
		Select(logical.JSONCol(logical.C("payload")).Field("items").Item("skus", 0).Path()))

	assert.Contains(t, out.SQL, "`payload`.`items`.`skus`[1]")
}

func TestGenerate_NullComparisonRendering(t *testing.T) {
	out := render(t, logical.From("orders").
		Where(logical.Eq(logical.C("currency"), logical.Bind("c", nil))))

	assert.Contains(t, out.SQL, "`currency` IS NULL")
	assert.Empty(t, out.Params)
}

// renderErr runs the full pipeline expecting generation to fail.
func renderErr(t *testing.T, q *logical.Query) error {
	t.Helper()
	m := testModel(t)
	plan, err := compile.New(m).Compile(q.Build())
	require.NoError(t, err)
	plan, err = rewrite.New(m, testSources()).Rewrite(plan)
	require.NoError(t, err)
	_, err = Generate(plan)
	require.Error(t, err)
	return err
}

func TestGenerate_FillDateBounds(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	out := render(t, logical.From("orders").
		Select(logical.C("created_at"), logical.C("amount")).
		OrderBy(logical.C("created_at")).
		WithFillRange("created_at", from, to))

	assert.Contains(t, out.SQL,
		"ORDER BY `created_at` WITH FILL FROM toDateTime('2024-03-01 00:00:00') TO toDateTime('2024-03-02 00:00:00')")
}

func TestGenerate_FillNumericBounds(t *testing.T) {
	out := render(t, logical.From("orders").
		OrderBy(logical.C("amount")).
		WithFillRange("amount", int64(0), int64(100)))

	assert.Contains(t, out.SQL, "WITH FILL FROM 0 TO 100")
}

func TestGenerate_DeleteRejectsSelectOnlyClauses(t *testing.T) {
	pred := logical.Eq(logical.C("currency"), logical.V("EUR"))
	tests := []struct {
		name      string
		query     *logical.Query
		construct string
	}{
		{
			"prewhere",
			logical.From("orders").PreWhere(pred).Where(pred).Delete(),
			"PreWhere",
		},
		{
			"final",
			logical.From("orders").Final().Where(pred).Delete(),
			"Final",
		},
		{
			"sample",
			logical.From("orders").Sample(0.5).Where(pred).Delete(),
			"Sample",
		},
		{
			"limit_by",
			logical.From("orders").LimitBy(2, logical.C("currency")).Where(pred).Delete(),
			"LimitBy",
		},
		{
			"fill",
			logical.From("orders").WithFill("created_at").Where(pred).Delete(),
			"WithFill",
		},
		{
			"interpolate",
			logical.From("orders").InterpolateWithPrevious("amount").Where(pred).Delete(),
			"Interpolate",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := renderErr(t, tt.query)
			var cerr *compile.Error
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, compile.ErrCodeInvalidArgument, cerr.Code)
			assert.Equal(t, tt.construct, cerr.Construct)
		})
	}
}
