package compile

import (
	"github.com/chime-db/chime/internal/logical"
)

// GroupByModifier is the GROUP BY suffix selected for a compilation.
type GroupByModifier string

// GROUP BY modifiers. They are mutually exclusive and single-use: even a
// repeated call with the same modifier is rejected.
const (
	GroupByNone   GroupByModifier = ""
	GroupByRollup GroupByModifier = "ROLLUP"
	GroupByCube   GroupByModifier = "CUBE"
	GroupByTotals GroupByModifier = "TOTALS"
)

// Context is the per-compilation state the recognized extensions populate
// and the SQL generator consumes.
//
// One Context exists per query compilation and is carried explicitly
// through the pipeline; there is no ambient or thread-local channel, so
// concurrent compilations cannot observe each other's state.
type Context struct {
	// Final requests deduplicated reads on every native table reference.
	Final bool

	// Sample is the sampling fraction in (0, 1]; nil disables sampling.
	Sample *float64

	// SampleOffset shifts the sampled segment; nil when absent.
	SampleOffset *float64

	// settings keeps insertion order; later sets of the same name
	// overwrite the value in place.
	settings     map[string]any
	settingOrder []string

	// Fills are the WITH FILL specs, matched to ordering columns by name.
	Fills []FillSpec

	// Interpolations are the INTERPOLATE clause entries.
	Interpolations []InterpolateSpec

	// PreWhere is emitted between FROM and WHERE; at most one.
	PreWhere logical.Expr

	// LimitBy is the per-key-group row bound; at most one.
	LimitBy *LimitBySpec

	// GroupBy is the GROUP BY modifier; at most one set per compilation.
	GroupBy GroupByModifier

	groupBySet bool
}

// FillSpec is one resolved WITH FILL sub-clause. From and To are lowered
// constants carrying their storage type, so date bounds render through the
// type catalog's literal forms.
type FillSpec struct {
	Column string
	From   logical.Expr // lowered constant or nil
	To     logical.Expr // lowered constant or nil
	Step   any          // int64, float64, time.Duration, chtype.Interval or nil
}

// InterpolateSpec is one resolved INTERPOLATE entry.
type InterpolateSpec struct {
	Column string
	Mode   logical.InterpolateMode
	Value  logical.Expr // set only for constant mode
}

// LimitBySpec is the resolved LIMIT n BY k clause.
type LimitBySpec struct {
	Count  int64
	Offset int64 // 0 when absent
	Keys   []logical.Expr
}

// NewContext returns an empty per-compilation context.
func NewContext() *Context {
	return &Context{settings: make(map[string]any)}
}

// SetSample records the sampling clause; a second call is rejected.
func (c *Context) SetSample(fraction float64, offset *float64) error {
	if c.Sample != nil {
		return errf(ErrCodeDuplicateClause, "Sample", "sampling was already configured for this query")
	}
	if fraction <= 0 || fraction > 1 {
		return errf(ErrCodeInvalidArgument, "Sample", "fraction %v is outside (0, 1]", fraction)
	}
	c.Sample = &fraction
	c.SampleOffset = offset
	return nil
}

// MergeSetting records one SETTINGS override; a later value for the same
// name overwrites the earlier one while keeping its position.
func (c *Context) MergeSetting(name string, value any) {
	if _, seen := c.settings[name]; !seen {
		c.settingOrder = append(c.settingOrder, name)
	}
	c.settings[name] = value
}

// Settings returns the overrides in first-set order.
func (c *Context) Settings() []logical.SettingArg {
	out := make([]logical.SettingArg, len(c.settingOrder))
	for i, name := range c.settingOrder {
		out[i] = logical.SettingArg{Name: name, Value: c.settings[name]}
	}
	return out
}

// SetPreWhere records the pre-filter; a second call is rejected.
func (c *Context) SetPreWhere(pred logical.Expr) error {
	if c.PreWhere != nil {
		return errf(ErrCodeDuplicateClause, "PreWhere", "a pre-filter was already configured for this query")
	}
	c.PreWhere = pred
	return nil
}

// SetLimitBy records the per-group limit; a second call is rejected.
func (c *Context) SetLimitBy(spec LimitBySpec) error {
	if c.LimitBy != nil {
		return errf(ErrCodeDuplicateClause, "LimitBy", "a limit-by clause was already configured for this query")
	}
	c.LimitBy = &spec
	return nil
}

// SetGroupByModifier records the GROUP BY modifier. The clause is
// single-use, not idempotent: any second call is rejected, including one
// repeating the same modifier.
func (c *Context) SetGroupByModifier(m GroupByModifier) error {
	if c.groupBySet {
		return errf(ErrCodeConflictingClause, "GroupByModifier",
			"a GROUP BY modifier (%s) was already configured for this query", c.GroupBy)
	}
	c.GroupBy = m
	c.groupBySet = true
	return nil
}
