package logical

// ExtensionKind tags one recognized dialect extension call.
//
// The fluent builder records extension calls as tagged records instead of
// opaque method-call nodes, so the compiler classifies each call with one
// exhaustive switch over this enum.
type ExtensionKind string

// Recognized extension calls.
const (
	// ExtFinal requests deduplicated reads (the FINAL modifier).
	ExtFinal ExtensionKind = "FINAL"

	// ExtSample requests probabilistic sampling of the source table.
	ExtSample ExtensionKind = "SAMPLE"

	// ExtSettings merges per-query setting overrides.
	ExtSettings ExtensionKind = "SETTINGS"

	// ExtFill records a WITH FILL spec for one ordering column.
	ExtFill ExtensionKind = "FILL"

	// ExtInterpolate records INTERPOLATE entries for non-key columns.
	ExtInterpolate ExtensionKind = "INTERPOLATE"

	// ExtPreWhere stores a predicate emitted before the main filter.
	ExtPreWhere ExtensionKind = "PREWHERE"

	// ExtLimitBy limits rows per distinct key group.
	ExtLimitBy ExtensionKind = "LIMIT_BY"

	// ExtRollup, ExtCube and ExtTotals are the GROUP BY modifiers.
	ExtRollup ExtensionKind = "ROLLUP"
	ExtCube   ExtensionKind = "CUBE"
	ExtTotals ExtensionKind = "TOTALS"
)

// ExtensionCall is one recorded extension invocation. Exactly the payload
// field matching Kind is set.
type ExtensionCall struct {
	Kind ExtensionKind

	Sample      *SampleArgs
	Settings    []SettingArg
	Fill        *FillArgs
	Interpolate []InterpolateArg
	PreWhere    Expr
	LimitBy     *LimitByArgs
}

// SampleArgs carries the sampling fraction and optional offset.
// Both must reduce to compile-time constants.
type SampleArgs struct {
	Fraction Expr
	Offset   Expr // nil when absent
}

// SettingArg is one name/value pair for the trailing SETTINGS clause.
// Later settings with the same name overwrite earlier ones.
type SettingArg struct {
	Name  string
	Value any
}

// FillArgs describes a WITH FILL sub-clause for one ordering column.
type FillArgs struct {
	Column string
	From   Expr // nil when absent
	To     Expr // nil when absent
	Step   Expr // nil means server default step
}

// InterpolateMode selects how a non-key column is synthesized in filled
// rows.
type InterpolateMode string

// Interpolation modes.
const (
	// InterpolatePrevious repeats the last non-null value.
	InterpolatePrevious InterpolateMode = "PREVIOUS"

	// InterpolateDefault lets the server compute the column default.
	InterpolateDefault InterpolateMode = "DEFAULT"

	// InterpolateConstant fills with an explicit constant.
	InterpolateConstant InterpolateMode = "CONSTANT"
)

// InterpolateArg is one named-column interpolation entry.
type InterpolateArg struct {
	Column string
	Mode   InterpolateMode
	Value  Expr // set only for InterpolateConstant
}

// LimitByArgs describes a LIMIT n BY k clause.
type LimitByArgs struct {
	Count  Expr
	Offset Expr // nil when absent
	Keys   []Expr
}
