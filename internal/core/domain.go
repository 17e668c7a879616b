package core

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the ISO-8601 calendar date layout used in input and output files.
const DateLayout = "2006-01-02"

const (
	GroupAll    Grouping = "all"
	GroupByDate Grouping = "date"
	GroupBySKU  Grouping = "sku"
)

type (
	Grouping string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// GroupKey is the bucket a record is aggregated under: a constant, a date or a sku.
	GroupKey string

	Record struct {
		Line   int // 1-based line number in the source file
		SKU    string
		Date   Date // zero when the date column is absent or not parseable
		Amount Money
	}

	Aggregate struct {
		Total Money
		Count int64
	}

	ReportRow struct {
		Key   GroupKey
		Total Money
		Count int64
	}
)

// IsValid returns true if the grouping is one the aggregator understands
func (g Grouping) IsValid() bool {
	switch g {
	case GroupAll, GroupByDate, GroupBySKU:
		return true
	default:
		return false
	}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a strict YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w (want YYYY-MM-DD)", ErrInvalidDate)
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD, or "" for the zero date
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// IsEmpty returns true if the date is zero
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// Add returns the sum of both amounts, or ErrAmountOverflow when the sum
// does not fit in int64 cents. Both amounts must be non-negative.
func (m Money) Add(o Money) (Money, error) {
	if o.Cents > math.MaxInt64-m.Cents {
		return m, ErrAmountOverflow
	}
	return Money{Cents: m.Cents + o.Cents}, nil
}

func (r Record) Validate(g Grouping) error {
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	switch g {
	case GroupByDate:
		if r.Date.IsEmpty() {
			return ErrInvalidDate
		}
	case GroupBySKU:
		if strings.TrimSpace(r.SKU) == "" {
			return ErrEmptySKU
		}
	}
	return nil
}

// Add folds one amount into the aggregate. On overflow the aggregate is
// left unchanged.
func (a *Aggregate) Add(amount Money) error {
	total, err := a.Total.Add(amount)
	if err != nil {
		return err
	}
	a.Total = total
	a.Count++
	return nil
}

// Row pairs the aggregate with its key.
func (a Aggregate) Row(key GroupKey) ReportRow {
	return ReportRow{Key: key, Total: a.Total, Count: a.Count}
}
