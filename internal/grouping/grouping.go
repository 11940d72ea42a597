// Package grouping derives the date-bucketed view of a payment list.
//
// Everything here is a pure function of its inputs: no I/O and no retained
// state. Bucket membership is decided by the month filter alone; the currency
// filter is applied afterwards, for display, so toggling it never reshuffles
// buckets.
package grouping

import (
	"sort"
	"time"

	"github.com/Veraticus/spend/internal/model"
)

// LabelLayout formats a bucket's day, e.g. "March 1, 2024".
const LabelLayout = "January 2, 2006"

// Label renders the day header for t.
func Label(t time.Time) string {
	return t.Format(LabelLayout)
}

// Group filters records by the context's month, buckets them by local calendar
// day and orders buckets by their first record's timestamp. Within a bucket,
// records keep their accumulation order. loc selects the local calendar; nil
// means time.Local.
func Group(records []model.Payment, vc model.ViewContext, loc *time.Location) []model.DateBucket {
	if loc == nil {
		loc = time.Local
	}

	buckets := make([]model.DateBucket, 0)
	index := make(map[time.Time]int)

	for _, p := range records {
		local := p.Date.In(loc)
		if vc.Month != nil && !vc.Month.Contains(local) {
			continue
		}

		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		i, ok := index[day]
		if !ok {
			i = len(buckets)
			index[day] = i
			buckets = append(buckets, model.DateBucket{
				Day:   day,
				Label: Label(day),
			})
		}
		buckets[i].Payments = append(buckets[i].Payments, p)
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		a, b := buckets[i].Representative(), buckets[j].Representative()
		if vc.Sort == model.SortAsc {
			return a.Before(b)
		}
		return a.After(b)
	})

	return buckets
}

// ApplyCurrency narrows each bucket to the given currency. An empty currency
// passes everything. With hideEmpty, buckets left without records are
// dropped instead of rendering a bare date header. The input is not modified.
func ApplyCurrency(buckets []model.DateBucket, currency model.Currency, hideEmpty bool) []model.DateBucket {
	out := make([]model.DateBucket, 0, len(buckets))
	for _, b := range buckets {
		visible := b
		if currency != "" {
			visible.Payments = make([]model.Payment, 0, len(b.Payments))
			for _, p := range b.Payments {
				if p.Currency == currency {
					visible.Payments = append(visible.Payments, p)
				}
			}
		}
		if hideEmpty && len(visible.Payments) == 0 {
			continue
		}
		out = append(out, visible)
	}
	return out
}

// View is Group followed by ApplyCurrency with the context's currency.
func View(records []model.Payment, vc model.ViewContext, loc *time.Location, hideEmpty bool) []model.DateBucket {
	return ApplyCurrency(Group(records, vc, loc), vc.Currency, hideEmpty)
}

// Count returns the number of records across buckets.
func Count(buckets []model.DateBucket) int {
	n := 0
	for _, b := range buckets {
		n += len(b.Payments)
	}
	return n
}
