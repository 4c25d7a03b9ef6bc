package costing

// FeeSuggestion is the bracket-based fee proposal for a given annual
// turnover. Quote screens bill monthly, so the monthly figure is
// carried alongside the annual one.
type FeeSuggestion struct {
	Bracket            TurnoverBracket
	SuggestedPercent   float64
	SuggestedFeeAnnual float64
	SuggestedFeeMonth  float64
}

// SuggestFee locates the turnover bracket containing the given annual
// turnover and interpolates the fee percentage linearly between the
// bracket's bounds. It returns nil when no bracket contains the
// turnover (negative turnover, gaps, misconfigured table); callers
// treat that as "no suggestion", not as an error.
func SuggestFee(turnover float64, brackets []TurnoverBracket) *FeeSuggestion {
	for _, b := range brackets {
		if turnover < b.MinTurnover || turnover > b.MaxTurnover {
			continue
		}

		percent := b.MinPercent
		if span := b.MaxTurnover - b.MinTurnover; span > 0 {
			percent += (b.MaxPercent - b.MinPercent) * (turnover - b.MinTurnover) / span
		}

		annual := turnover * percent
		return &FeeSuggestion{
			Bracket:            b,
			SuggestedPercent:   percent,
			SuggestedFeeAnnual: annual,
			SuggestedFeeMonth:  annual / 12,
		}
	}
	return nil
}
