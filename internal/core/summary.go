package core

// CategoryAmount is one slice of the category distribution.
type CategoryAmount struct {
	Category Category
	Amount   Money
}

// Summary is the user-facing monthly financial picture: credits in,
// expenses out, the resulting balance, and the category distribution that
// feeds the chart at the UI boundary.
type Summary struct {
	TotalCredits  Money
	TotalExpenses Money
	Balance       Money
	Distribution  []CategoryAmount
}

// BuildSummary combines a credit total and an expense breakdown into the
// summary view-model. Balance may be negative; that is a reported fact,
// not an error. Distribution preserves the breakdown's first-seen order.
func BuildSummary(creditTotal Money, breakdown *Breakdown) Summary {
	s := Summary{
		TotalCredits: creditTotal,
	}
	if breakdown != nil {
		s.TotalExpenses = breakdown.Total()
		s.Distribution = breakdown.Amounts()
	}
	s.Balance = s.TotalCredits.Sub(s.TotalExpenses)
	return s
}
