/*
resolve.go - Effective nightly rate resolution

PURPOSE:
  Maps (base price, room type, date, rule set) to the effective nightly
  price. This is the only place rules are selected and applied.

ALGORITHM:
  1. Filter rules with Matches (active, known kind, room type listed,
     ValidFrom <= date <= ValidTo).
  2. No match: return the base price unchanged.
  3. Winner: highest Priority. On equal priority the smallest rule ID wins.
  4. raw = base * (1 + adjustment/100)
  5. Clamp negatives to zero.
  6. Round half-to-even to the currency's minor units.

SINGLE WINNER:
  Matching rules are never combined. A rule set with a +30% season at
  priority 5 and a -15% discount at priority 10 yields the -15% price.
  Cumulative application exists only as ResolveStacked, a separate mode.

PURITY:
  No I/O, no clock, no package state. Safe for concurrent use. Results are
  never cached: each call re-evaluates the rules it is handed.

SEE ALSO:
  - rule.go: Matches
  - stay.go: Multi-night quotes built on Explain
*/
package rates

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Resolution is the outcome of resolving one night.
type Resolution struct {
	Base     Money
	Price    Money
	Rule     *PricingRule // winning rule, nil when no rule matched
	Matched  int          // number of rules that matched
	Adjusted bool
}

// Resolve returns the effective nightly price for roomType on date.
func Resolve(base Money, roomType RoomTypeID, date Date, rules []PricingRule) Money {
	return Explain(base, roomType, date, rules).Price
}

// Explain resolves like Resolve and also reports which rule won.
func Explain(base Money, roomType RoomTypeID, date Date, rules []PricingRule) Resolution {
	res := Resolution{Base: base, Price: base}

	var winner *PricingRule
	for i := range rules {
		if !Matches(rules[i], roomType, date) {
			continue
		}
		res.Matched++
		if winner == nil || outranks(rules[i], *winner) {
			winner = &rules[i]
		}
	}
	if winner == nil {
		return res
	}

	w := *winner
	w.RoomTypeIDs = append([]RoomTypeID(nil), winner.RoomTypeIDs...)
	res.Rule = &w
	res.Price = applyAdjustment(base, w.AdjustmentPercent).ClampNonNegative().Round()
	res.Adjusted = true
	return res
}

// ResolveStacked applies every matching rule cumulatively, in winner order
// (priority descending, ID ascending). The price is clamped at zero after
// each step and rounded once at the end.
func ResolveStacked(base Money, roomType RoomTypeID, date Date, rules []PricingRule) Money {
	matching := MatchingRules(roomType, date, rules)
	if len(matching) == 0 {
		return base
	}

	price := base
	for _, r := range matching {
		price = applyAdjustment(price, r.AdjustmentPercent).ClampNonNegative()
	}
	return price.Round()
}

// MatchingRules returns the rules matching roomType on date, ordered so the
// first element is the one Resolve would pick.
func MatchingRules(roomType RoomTypeID, date Date, rules []PricingRule) []PricingRule {
	var out []PricingRule
	for _, r := range rules {
		if Matches(r, roomType, date) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return outranks(out[i], out[j]) })
	return out
}

// outranks is the single ordering used to pick a winner: higher priority
// first, then the lexicographically smallest ID.
func outranks(a, b PricingRule) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.ID < b.ID
}

func applyAdjustment(price Money, percent decimal.Decimal) Money {
	factor := decimal.NewFromInt(1).Add(percent.Div(hundred))
	return price.Mul(factor)
}
