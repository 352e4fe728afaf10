package chtype

import (
	"fmt"
	"strings"
	"time"
)

// Date is the calendar-date descriptor. Semantic values are time.Time;
// the time-of-day portion is ignored on render.
var Date Type = &scalarType{
	name: "Date",
	lit: func(t Type, v any) (string, error) {
		tm, ok := v.(time.Time)
		if !ok {
			return "", invalidLiteral(t, "expected time.Time, got %T", v)
		}
		return fmt.Sprintf("toDate(%s)", QuoteString(tm.Format("2006-01-02"))), nil
	},
}

// Date32 extends the representable date range below 1970.
var Date32 Type = &scalarType{
	name: "Date32",
	lit: func(t Type, v any) (string, error) {
		tm, ok := v.(time.Time)
		if !ok {
			return "", invalidLiteral(t, "expected time.Time, got %T", v)
		}
		return fmt.Sprintf("toDate32(%s)", QuoteString(tm.Format("2006-01-02"))), nil
	},
}

// DateTime is the second-precision timestamp descriptor without an explicit
// server time zone.
var DateTime Type = NewDateTime("")

// NewDateTime returns a second-precision timestamp descriptor. An empty
// timeZone produces the bare DateTime type; otherwise the zone is part of
// the canonical name and every rendered literal.
func NewDateTime(timeZone string) Type {
	name := "DateTime"
	if timeZone != "" {
		name = fmt.Sprintf("DateTime(%s)", QuoteString(timeZone))
	}
	return &scalarType{
		name: name,
		lit: func(t Type, v any) (string, error) {
			tm, ok := v.(time.Time)
			if !ok {
				return "", invalidLiteral(t, "expected time.Time, got %T", v)
			}
			text := QuoteString(tm.Format("2006-01-02 15:04:05"))
			if timeZone == "" {
				return fmt.Sprintf("toDateTime(%s)", text), nil
			}
			return fmt.Sprintf("toDateTime(%s, %s)", text, QuoteString(timeZone)), nil
		},
	}
}

// NewDateTime64 returns a sub-second timestamp descriptor with the given
// fractional precision (0..9 digits) and optional time zone.
func NewDateTime64(precision int, timeZone string) Type {
	if precision < 0 || precision > 9 {
		panic(fmt.Sprintf("chtype: DateTime64 precision %d out of range [0, 9]", precision))
	}
	name := fmt.Sprintf("DateTime64(%d)", precision)
	if timeZone != "" {
		name = fmt.Sprintf("DateTime64(%d, %s)", precision, QuoteString(timeZone))
	}
	layout := "2006-01-02 15:04:05"
	if precision > 0 {
		layout += "." + strings.Repeat("0", precision)
	}
	return &scalarType{
		name: name,
		lit: func(t Type, v any) (string, error) {
			tm, ok := v.(time.Time)
			if !ok {
				return "", invalidLiteral(t, "expected time.Time, got %T", v)
			}
			text := QuoteString(tm.Format(layout))
			if timeZone == "" {
				return fmt.Sprintf("toDateTime64(%s, %d)", text, precision), nil
			}
			return fmt.Sprintf("toDateTime64(%s, %d, %s)", text, precision, QuoteString(timeZone)), nil
		},
	}
}

// TimeOfDay is a clock time without a date, stored as nanoseconds since
// midnight. The dialect has no native time-of-day type, so the wire form
// is a plain Int64 nanosecond count.
type TimeOfDay time.Duration

// TimeOfDayOf builds a TimeOfDay from clock components.
func TimeOfDayOf(hour, min, sec, nsec int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour +
		time.Duration(min)*time.Minute +
		time.Duration(sec)*time.Second +
		time.Duration(nsec))
}

// String renders the time as HH:MM:SS.fffffffff with trailing zero
// fractions trimmed.
func (t TimeOfDay) String() string {
	d := time.Duration(t)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	text := fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	if d > 0 {
		text += strings.TrimRight(fmt.Sprintf(".%09d", d), "0")
	}
	return text
}

// TimeOfDayType stores clock times in an Int64 column as nanoseconds since
// midnight. Encode and Decode carry the semantic TimeOfDay across that
// representation gap.
var TimeOfDayType Type = &scalarType{
	name: "Int64",
	lit: func(t Type, v any) (string, error) {
		tod, ok := v.(TimeOfDay)
		if !ok {
			return "", invalidLiteral(t, "expected TimeOfDay, got %T", v)
		}
		return fmt.Sprintf("%d", int64(tod)), nil
	},
	enc: func(t Type, v any) (any, error) {
		tod, ok := v.(TimeOfDay)
		if !ok {
			return nil, invalidLiteral(t, "expected TimeOfDay, got %T", v)
		}
		return int64(tod), nil
	},
	dec: func(t Type, v any) (any, error) {
		n, ok := asInt64(v)
		if !ok {
			return nil, invalidLiteral(t, "expected integer wire value, got %T", v)
		}
		return TimeOfDay(n), nil
	},
}

// IntervalUnit names a dialect interval granularity.
type IntervalUnit string

// Interval units accepted by WITH FILL steps and interval arithmetic.
const (
	IntervalSecond  IntervalUnit = "SECOND"
	IntervalMinute  IntervalUnit = "MINUTE"
	IntervalHour    IntervalUnit = "HOUR"
	IntervalDay     IntervalUnit = "DAY"
	IntervalWeek    IntervalUnit = "WEEK"
	IntervalMonth   IntervalUnit = "MONTH"
	IntervalQuarter IntervalUnit = "QUARTER"
	IntervalYear    IntervalUnit = "YEAR"
)

// Interval is a dialect interval value, used primarily as a WITH FILL step.
type Interval struct {
	Count int64
	Unit  IntervalUnit
}

// Literal renders the interval in clause position.
func (i Interval) Literal() string {
	return fmt.Sprintf("INTERVAL %d %s", i.Count, i.Unit)
}
