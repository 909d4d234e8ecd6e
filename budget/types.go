/*
Package budget manages bills, expenses, and categories.

PURPOSE:
  Budget items describe money that is expected to leave on a schedule:
  rent every month, groceries every Saturday, insurance every March 1st.
  They are descriptions only. Nothing here moves a balance; paying a bill
  is recorded as a ledger transaction that may point back at the item.

RECURRENCE:
  weekly:  one or more weekdays (0 = Sunday .. 6 = Saturday)
  monthly: a day of month 1..31, or LastDay (-1) for the last day
  yearly:  a month-day such as "03-01"

  Only the description is validated. Computing the next due date is the
  presentation layer's job.

SEE ALSO:
  - manager.go: CRUD operations
  - store/sqlite/budget.go: Persistence
*/
package budget

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/budget-ledger/ledger"
)

// =============================================================================
// KIND - bills and expenses share one shape
// =============================================================================

type Kind string

const (
	KindBill    Kind = "bill"
	KindExpense Kind = "expense"
)

func (k Kind) Valid() bool { return k == KindBill || k == KindExpense }

// Plural is the table name and the noun used in messages.
func (k Kind) Plural() string {
	if k == KindBill {
		return "bills"
	}
	return "expenses"
}

// ParseKind accepts "bill", "bills", "expense", "expenses".
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "bill", "bills":
		return KindBill, true
	case "expense", "expenses":
		return KindExpense, true
	}
	return "", false
}

// =============================================================================
// RECURRENCE
// =============================================================================

type RecurrenceType string

const (
	Weekly  RecurrenceType = "weekly"
	Monthly RecurrenceType = "monthly"
	Yearly  RecurrenceType = "yearly"
)

// LastDay as a day of month means "the last day, whatever the month".
const LastDay = -1

// MonthDay is a yearly date without a year.
type MonthDay struct {
	Month time.Month
	Day   int
}

var daysInMonth = [...]int{0, 31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// ParseMonthDay accepts "MM-DD". Feb 29 is allowed.
func ParseMonthDay(s string) (MonthDay, error) {
	var m, d int
	if len(s) != 5 || s[2] != '-' {
		return MonthDay{}, fmt.Errorf("invalid month-day %q", s)
	}
	if _, err := fmt.Sscanf(s, "%02d-%02d", &m, &d); err != nil {
		return MonthDay{}, fmt.Errorf("invalid month-day %q: %w", s, err)
	}
	if m < 1 || m > 12 || d < 1 || d > daysInMonth[m] {
		return MonthDay{}, fmt.Errorf("invalid month-day %q", s)
	}
	return MonthDay{Month: time.Month(m), Day: d}, nil
}

func (md MonthDay) IsZero() bool { return md.Month == 0 }

func (md MonthDay) String() string {
	if md.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d-%02d", int(md.Month), md.Day)
}

type Recurrence struct {
	Type       RecurrenceType
	WeeklyDays []time.Weekday // weekly
	DayOfMonth int            // monthly: 1..31 or LastDay
	YearlyDate MonthDay       // yearly
}

// Normalize keeps only the fields that belong to the recurrence type and
// sorts and de-duplicates weekdays.
func (r Recurrence) Normalize() Recurrence {
	out := Recurrence{Type: r.Type}
	switch r.Type {
	case Weekly:
		seen := map[time.Weekday]bool{}
		for _, d := range r.WeeklyDays {
			if !seen[d] {
				seen[d] = true
				out.WeeklyDays = append(out.WeeklyDays, d)
			}
		}
		sort.Slice(out.WeeklyDays, func(i, j int) bool { return out.WeeklyDays[i] < out.WeeklyDays[j] })
	case Monthly:
		out.DayOfMonth = r.DayOfMonth
	case Yearly:
		out.YearlyDate = r.YearlyDate
	}
	return out
}

// WeeklyDaysJSON encodes weekdays the way they are stored: [0,3,5].
func (r Recurrence) WeeklyDaysJSON() (string, error) {
	days := make([]int, len(r.WeeklyDays))
	for i, d := range r.WeeklyDays {
		days[i] = int(d)
	}
	b, err := json.Marshal(days)
	return string(b), err
}

// ParseWeeklyDays decodes a JSON weekday array.
func ParseWeeklyDays(s string) ([]time.Weekday, error) {
	if s == "" {
		return nil, nil
	}
	var days []int
	if err := json.Unmarshal([]byte(s), &days); err != nil {
		return nil, fmt.Errorf("invalid weekly days %q: %w", s, err)
	}
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("invalid weekday %d", d)
		}
		out = append(out, time.Weekday(d))
	}
	return out, nil
}

// =============================================================================
// ITEM / CATEGORY
// =============================================================================

type Item struct {
	ID          ledger.BudgetItemID
	Kind        Kind
	WorkspaceID ledger.WorkspaceID
	Amount      decimal.Decimal
	Description string
	CategoryID  ledger.CategoryID
	Recurrence  Recurrence
	CreatedAt   time.Time
}

const DefaultColor = "#6b7280"

type Category struct {
	ID          ledger.CategoryID
	WorkspaceID ledger.WorkspaceID
	Name        string
	Color       string
	CreatedAt   time.Time
}
