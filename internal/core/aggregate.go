package core

// Aggregation over already-queried records. Every function here is pure:
// no I/O, no shared state, deterministic for identical input order. Callers
// filter by window before handing records in.

// Breakdown accumulates per-category sums while preserving the order in
// which categories were first seen, so identical input order always yields
// identical output order.
type Breakdown struct {
	order []Category
	sums  map[Category]int64
}

func NewBreakdown() *Breakdown {
	return &Breakdown{sums: make(map[Category]int64)}
}

// Add accumulates an amount under a category. Unknown categories are
// coerced to CategoryOutros; negative amounts contribute nothing.
func (b *Breakdown) Add(c Category, m Money) {
	if !c.Valid() {
		c = CategoryOutros
	}
	if m.Cents < 0 {
		return
	}
	if _, seen := b.sums[c]; !seen {
		b.order = append(b.order, c)
	}
	b.sums[c] += m.Cents
}

// Get returns the accumulated amount for a category (0 if absent).
func (b *Breakdown) Get(c Category) Money {
	return Money{Cents: b.sums[c]}
}

// Total returns the sum over all categories.
func (b *Breakdown) Total() Money {
	var total int64
	for _, cents := range b.sums {
		total += cents
	}
	return Money{Cents: total}
}

// Amounts returns the per-category sums in first-seen order.
func (b *Breakdown) Amounts() []CategoryAmount {
	out := make([]CategoryAmount, 0, len(b.order))
	for _, c := range b.order {
		out = append(out, CategoryAmount{Category: c, Amount: Money{Cents: b.sums[c]}})
	}
	return out
}

// Len returns the number of distinct categories accumulated.
func (b *Breakdown) Len() int {
	return len(b.order)
}

// ListTotal sums item values. An empty slice yields 0, and a stored value
// that is negative (a data anomaly, not a domain state) contributes 0
// rather than failing.
func ListTotal(items []Item) Money {
	var total int64
	for _, it := range items {
		if it.Value.Cents < 0 {
			continue
		}
		total += it.Value.Cents
	}
	return Money{Cents: total}
}

// ListTotals applies ListTotal per list. Lists absent from itemsByList
// yield an explicit 0 entry.
func ListTotals(lists []ExpenseList, itemsByList map[string][]Item) map[string]Money {
	totals := make(map[string]Money, len(lists))
	for _, l := range lists {
		totals[l.ID] = ListTotal(itemsByList[l.ID])
	}
	return totals
}

// CategoryBreakdown groups item values by category. Items with a category
// outside the closed set are attributed to CategoryOutros. The breakdown's
// values always sum to ListTotal over the same items.
func CategoryBreakdown(items []Item) *Breakdown {
	b := NewBreakdown()
	for _, it := range items {
		b.Add(it.Category, it.Value)
	}
	return b
}

// CreditTotal sums credit values. An empty slice yields 0.
func CreditTotal(credits []Credit) Money {
	var total int64
	for _, c := range credits {
		if c.Value.Cents < 0 {
			continue
		}
		total += c.Value.Cents
	}
	return Money{Cents: total}
}
