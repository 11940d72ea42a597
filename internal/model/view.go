package model

import (
	"fmt"
	"strings"
	"time"
)

// Scope selects whose payments are listed: the caller's own, or those of a
// delegate who shared their history with the caller.
type Scope struct {
	// Delegate is the delegate's email. Empty means the caller's own payments.
	Delegate string
}

// SelfScope is the caller's own payment history.
var SelfScope = Scope{}

// DelegateScope returns the scope for a delegate's shared history.
func DelegateScope(email string) Scope {
	return Scope{Delegate: strings.TrimSpace(email)}
}

// IsSelf reports whether the scope is the caller's own account.
func (s Scope) IsSelf() bool {
	return s.Delegate == ""
}

func (s Scope) String() string {
	if s.IsSelf() {
		return "My Payments"
	}
	return s.Delegate + "'s Payments"
}

// SortOrder orders date buckets by timestamp.
type SortOrder string

// Sort orders.
const (
	SortDesc SortOrder = "desc"
	SortAsc  SortOrder = "asc"
)

// ParseSortOrder accepts "asc" or "desc" (case-insensitive). Empty defaults to desc.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc":
		return SortDesc, nil
	case "asc":
		return SortAsc, nil
	default:
		return "", fmt.Errorf("invalid sort order %q: must be asc or desc", s)
	}
}

// Toggle returns the opposite order.
func (o SortOrder) Toggle() SortOrder {
	if o == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// Arrow is the indicator shown next to "Sort by Date".
func (o SortOrder) Arrow() string {
	if o == SortAsc {
		return "↑"
	}
	return "↓"
}

// Month is a calendar year-month used as a list filter.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// Contains reports whether t falls in the month, using t's own location.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Label renders the month for display, e.g. "March 2024".
func (m Month) Label() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

// ViewContext is everything that determines which payments are listed and how
// they are grouped. Changing any part of it invalidates accumulated pages.
type ViewContext struct {
	Month    *Month
	Scope    Scope
	Currency Currency
	Sort     SortOrder
}

// DefaultViewContext lists the caller's own payments, newest first, unfiltered.
func DefaultViewContext() ViewContext {
	return ViewContext{Scope: SelfScope, Sort: SortDesc}
}

// Key is a stable string form, used as a cache key.
func (v ViewContext) Key() string {
	month := ""
	if v.Month != nil {
		month = v.Month.String()
	}
	return strings.Join([]string{v.Scope.Delegate, month, string(v.Currency), string(v.Sort)}, "|")
}

// Equal compares two contexts by value.
func (v ViewContext) Equal(other ViewContext) bool {
	return v.Key() == other.Key()
}

// DateBucket holds the payments sharing one local calendar day.
type DateBucket struct {
	Day      time.Time
	Label    string
	Payments []Payment
}

// Representative is the timestamp the bucket is ordered by: its first record's.
func (b DateBucket) Representative() time.Time {
	if len(b.Payments) == 0 {
		return b.Day
	}
	return b.Payments[0].Date
}
