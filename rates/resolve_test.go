package rates_test

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rate-engine/rates"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func eur(s string) rates.Money {
	return rates.NewMoney(s, "EUR")
}

func day(y int, m time.Month, d int) rates.Date {
	return rates.NewDate(y, m, d)
}

func rule(id string, percent string, priority int, from, to rates.Date, roomTypes ...rates.RoomTypeID) rates.PricingRule {
	return rates.PricingRule{
		ID:                rates.RuleID(id),
		Name:              id,
		Kind:              rates.KindSeason,
		RoomTypeIDs:       roomTypes,
		ValidFrom:         from,
		ValidTo:           to,
		AdjustmentPercent: decimal.RequireFromString(percent),
		Priority:          priority,
		Active:            true,
	}
}

func summer() (rates.Date, rates.Date) {
	return day(2024, time.July, 1), day(2024, time.August, 31)
}

// =============================================================================
// EXAMPLE SCENARIOS
// =============================================================================

func TestResolve_HighSeason(t *testing.T) {
	// GIVEN: "Temporada Alta" +30% for doble during July-August
	from, to := summer()
	rules := []rates.PricingRule{rule("temporada-alta", "30", 5, from, to, "doble")}

	// WHEN: Pricing a 120 doble on July 15
	price := rates.Resolve(eur("120"), "doble", day(2024, time.July, 15), rules)

	// THEN: 156.00
	assert.Equal(t, "156.00", price.String())
}

func TestResolve_HigherPriorityWinsWithoutStacking(t *testing.T) {
	// GIVEN: +30% at priority 5 and -15% at priority 10 over the same range
	from, to := summer()
	rules := []rates.PricingRule{
		rule("temporada-alta", "30", 5, from, to, "doble"),
		rule("descuento-fin-de-semana", "-15", 10, from, to, "doble"),
	}

	// WHEN: Both match
	price := rates.Resolve(eur("120"), "doble", day(2024, time.July, 15), rules)

	// THEN: Only the -15% applies (132.60 would mean stacking)
	assert.Equal(t, "102.00", price.String())
}

func TestResolve_NoCoveringRule_ReturnsBase(t *testing.T) {
	from, to := summer()
	rules := []rates.PricingRule{rule("temporada-alta", "30", 5, from, to, "doble")}

	price := rates.Resolve(eur("250"), "suite", day(2024, time.December, 3), rules)

	assert.True(t, price.Equal(eur("250")))
	assert.Equal(t, "250.00", price.String())
}

func TestResolve_BoundaryInclusive(t *testing.T) {
	rules := []rates.PricingRule{
		rule("junio", "25", 1, day(2024, time.June, 1), day(2024, time.June, 10), "doble"),
	}

	first := rates.Resolve(eur("80"), "doble", day(2024, time.June, 1), rules)
	last := rates.Resolve(eur("80"), "doble", day(2024, time.June, 10), rules)
	after := rates.Resolve(eur("80"), "doble", day(2024, time.June, 11), rules)
	before := rates.Resolve(eur("80"), "doble", day(2024, time.May, 31), rules)

	assert.Equal(t, "100.00", first.String())
	assert.Equal(t, "100.00", last.String())
	assert.Equal(t, "80.00", after.String())
	assert.Equal(t, "80.00", before.String())
}

func TestResolve_SingleDayRule(t *testing.T) {
	d := day(2024, time.December, 31)
	rules := []rates.PricingRule{rule("nochevieja", "50", 1, d, d, "doble")}

	assert.Equal(t, "120.00", rates.Resolve(eur("80"), "doble", d, rules).String())
}

func TestResolve_ClampsToZero(t *testing.T) {
	from, to := summer()
	for _, p := range []string{"-100", "-120", "-1000.5"} {
		rules := []rates.PricingRule{rule("giveaway", p, 1, from, to, "doble")}

		price := rates.Resolve(eur("80"), "doble", day(2024, time.July, 2), rules)

		assert.False(t, price.IsNegative(), "adjustment %s", p)
		assert.Equal(t, "0.00", price.String(), "adjustment %s", p)
	}
}

func TestResolve_NegativeBase_ClampedWhenAdjusted(t *testing.T) {
	from, to := summer()
	rules := []rates.PricingRule{rule("temporada-alta", "30", 1, from, to, "doble")}

	assert.Equal(t, "0.00", rates.Resolve(eur("-10"), "doble", day(2024, time.July, 2), rules).String())
	// No match: base is returned untouched.
	assert.Equal(t, "-10.00", rates.Resolve(eur("-10"), "suite", day(2024, time.July, 2), rules).String())
}

// =============================================================================
// FILTERING
// =============================================================================

func TestResolve_InactiveRuleIgnored(t *testing.T) {
	from, to := summer()
	season := rule("temporada-alta", "30", 5, from, to, "doble")
	discount := rule("descuento", "-15", 10, from, to, "doble")
	discount.Active = false

	with := rates.Resolve(eur("120"), "doble", day(2024, time.July, 15), []rates.PricingRule{season, discount})
	without := rates.Resolve(eur("120"), "doble", day(2024, time.July, 15), []rates.PricingRule{season})

	assert.True(t, with.Equal(without))
	assert.Equal(t, "156.00", with.String())
}

func TestResolve_OtherRoomTypeIgnored(t *testing.T) {
	from, to := summer()
	rules := []rates.PricingRule{rule("suites", "40", 5, from, to, "suite", "junior-suite")}

	assert.Equal(t, "120.00", rates.Resolve(eur("120"), "doble", day(2024, time.July, 15), rules).String())
	assert.Equal(t, "168.00", rates.Resolve(eur("120"), "junior-suite", day(2024, time.July, 15), rules).String())
}

func TestResolve_MalformedRulesNeverMatch(t *testing.T) {
	from, to := summer()
	d := day(2024, time.July, 15)

	inverted := rule("inverted", "30", 9, to, from, "doble")
	noRoomTypes := rule("no-rooms", "30", 9, from, to)
	zeroFrom := rule("zero-from", "30", 9, rates.Date{}, to, "doble")
	zeroTo := rule("zero-to", "30", 9, from, rates.Date{}, "doble")
	unknownKind := rule("unknown-kind", "30", 9, from, to, "doble")
	unknownKind.Kind = "flash-sale"

	for _, r := range []rates.PricingRule{inverted, noRoomTypes, zeroFrom, zeroTo, unknownKind} {
		assert.False(t, rates.Matches(r, "doble", d), string(r.ID))
		assert.Equal(t, "120.00", rates.Resolve(eur("120"), "doble", d, []rates.PricingRule{r}).String(), string(r.ID))
	}
}

func TestResolve_ZeroQueryDate_NoAdjustment(t *testing.T) {
	from, to := summer()
	rules := []rates.PricingRule{rule("temporada-alta", "30", 5, from, to, "doble")}

	assert.Equal(t, "120.00", rates.Resolve(eur("120"), "doble", rates.Date{}, rules).String())
}

func TestMatches(t *testing.T) {
	from, to := summer()
	r := rule("temporada-alta", "30", 5, from, to, "doble", "suite")

	tests := []struct {
		name     string
		mutate   func(*rates.PricingRule)
		roomType rates.RoomTypeID
		date     rates.Date
		want     bool
	}{
		{"inside range", nil, "doble", day(2024, time.July, 15), true},
		{"second room type", nil, "suite", day(2024, time.July, 15), true},
		{"first day", nil, "doble", from, true},
		{"last day", nil, "doble", to, true},
		{"day before", nil, "doble", from.AddDays(-1), false},
		{"day after", nil, "doble", to.AddDays(1), false},
		{"unlisted room type", nil, "individual", day(2024, time.July, 15), false},
		{"inactive", func(r *rates.PricingRule) { r.Active = false }, "doble", day(2024, time.July, 15), false},
		{"discount kind", func(r *rates.PricingRule) { r.Kind = rates.KindDiscount }, "doble", day(2024, time.July, 15), true},
		{"promotion kind", func(r *rates.PricingRule) { r.Kind = rates.KindPromotion }, "doble", day(2024, time.July, 15), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := r
			if tt.mutate != nil {
				tt.mutate(&candidate)
			}
			assert.Equal(t, tt.want, rates.Matches(candidate, tt.roomType, tt.date))
		})
	}
}

// =============================================================================
// SELECTION
// =============================================================================

func TestResolve_EqualPriority_SmallestIDWins(t *testing.T) {
	from, to := summer()
	a := rule("rule-a", "10", 7, from, to, "doble")
	b := rule("rule-b", "-10", 7, from, to, "doble")
	d := day(2024, time.July, 15)

	forward := rates.Explain(eur("100"), "doble", d, []rates.PricingRule{a, b})
	reverse := rates.Explain(eur("100"), "doble", d, []rates.PricingRule{b, a})

	require.NotNil(t, forward.Rule)
	require.NotNil(t, reverse.Rule)
	assert.Equal(t, rates.RuleID("rule-a"), forward.Rule.ID)
	assert.Equal(t, rates.RuleID("rule-a"), reverse.Rule.ID)
	assert.Equal(t, "110.00", forward.Price.String())
	assert.True(t, forward.Price.Equal(reverse.Price))
}

func TestResolve_WinnerIndependentOfOrder(t *testing.T) {
	from, to := summer()
	rules := []rates.PricingRule{
		rule("r1", "5", 1, from, to, "doble"),
		rule("r2", "10", 3, from, to, "doble"),
		rule("r3", "-20", 2, from, to, "doble"),
	}
	d := day(2024, time.July, 15)
	want := rates.Resolve(eur("100"), "doble", d, rules)

	permutations := [][]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	for _, p := range permutations {
		shuffled := []rates.PricingRule{rules[p[0]], rules[p[1]], rules[p[2]]}
		assert.True(t, want.Equal(rates.Resolve(eur("100"), "doble", d, shuffled)), "order %v", p)
	}
	assert.Equal(t, "110.00", want.String())
}

func TestExplain_ReportsWinnerAndMatchCount(t *testing.T) {
	from, to := summer()
	rules := []rates.PricingRule{
		rule("temporada-alta", "30", 5, from, to, "doble"),
		rule("descuento", "-15", 10, from, to, "doble"),
		rule("suites", "40", 20, from, to, "suite"),
	}

	res := rates.Explain(eur("120"), "doble", day(2024, time.July, 15), rules)

	require.NotNil(t, res.Rule)
	assert.Equal(t, rates.RuleID("descuento"), res.Rule.ID)
	assert.Equal(t, 2, res.Matched)
	assert.True(t, res.Adjusted)
	assert.True(t, res.Base.Equal(eur("120")))
}

func TestExplain_DoesNotAliasInput(t *testing.T) {
	from, to := summer()
	rules := []rates.PricingRule{rule("temporada-alta", "30", 5, from, to, "doble")}

	res := rates.Explain(eur("120"), "doble", day(2024, time.July, 15), rules)
	require.NotNil(t, res.Rule)
	res.Rule.Name = "changed"

	assert.Equal(t, "temporada-alta", rules[0].Name)
}

func TestMatchingRules_Order(t *testing.T) {
	from, to := summer()
	rules := []rates.PricingRule{
		rule("b", "1", 5, from, to, "doble"),
		rule("a", "1", 5, from, to, "doble"),
		rule("c", "1", 9, from, to, "doble"),
		rule("d", "1", 1, from, to, "suite"),
	}

	got := rates.MatchingRules("doble", day(2024, time.July, 15), rules)

	ids := make([]rates.RuleID, len(got))
	for i, r := range got {
		ids[i] = r.ID
	}
	assert.Equal(t, []rates.RuleID{"c", "a", "b"}, ids)
}

// =============================================================================
// ROUNDING & PURITY
// =============================================================================

func TestResolve_RoundsHalfToEven(t *testing.T) {
	from, to := summer()
	d := day(2024, time.July, 15)

	// 10.05 * 1.5 = 15.075 -> 15.08 (8 is even); 10.25 * 1.1 = 11.275 -> 11.28
	// 0.01 * 1.5 = 0.015 -> 0.02; 0.05 * 1.5 = 0.075 -> 0.08; 0.03 * 1.5 = 0.045 -> 0.04
	tests := []struct {
		base, percent, want string
	}{
		{"10.05", "50", "15.08"},
		{"0.01", "50", "0.02"},
		{"0.03", "50", "0.04"},
		{"0.05", "50", "0.08"},
		{"99.99", "-33.333", "66.66"},
	}
	for _, tt := range tests {
		rules := []rates.PricingRule{rule("r", tt.percent, 1, from, to, "doble")}
		assert.Equal(t, tt.want, rates.Resolve(eur(tt.base), "doble", d, rules).String(), "%s at %s%%", tt.base, tt.percent)
	}
}

func TestResolve_CurrencyPrecision(t *testing.T) {
	from, to := summer()
	d := day(2024, time.July, 15)
	rules := []rates.PricingRule{rule("r", "12.5", 1, from, to, "doble")}

	// 1000 * 1.125 = 1125 JPY; 1001 * 1.125 = 1126.125 -> 1126
	assert.Equal(t, "1126", rates.Resolve(rates.NewMoney("1001", "JPY"), "doble", d, rules).String())
	// 10.001 * 1.125 = 11.251125 -> 11.251
	assert.Equal(t, "11.251", rates.Resolve(rates.NewMoney("10.001", "KWD"), "doble", d, rules).String())
}

func TestResolve_Idempotent(t *testing.T) {
	from, to := summer()
	rules := []rates.PricingRule{
		rule("temporada-alta", "33.3333", 5, from, to, "doble"),
		rule("descuento", "-7.77", 2, from, to, "doble"),
	}
	d := day(2024, time.July, 15)

	first := rates.Resolve(eur("119.99"), "doble", d, rules)
	second := rates.Resolve(eur("119.99"), "doble", d, rules)

	assert.True(t, first.Equal(second))
	assert.Equal(t, first.String(), second.String())
}

func TestResolve_ConcurrentCallers(t *testing.T) {
	from, to := summer()
	rules := []rates.PricingRule{rule("temporada-alta", "30", 5, from, to, "doble")}
	d := day(2024, time.July, 15)

	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = rates.Resolve(eur("120"), "doble", d, rules).String()
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "156.00", r)
	}
}

// =============================================================================
// STACKED MODE
// =============================================================================

func TestResolveStacked_AppliesAllInWinnerOrder(t *testing.T) {
	from, to := summer()
	rules := []rates.PricingRule{
		rule("temporada-alta", "30", 5, from, to, "doble"),
		rule("descuento", "-15", 10, from, to, "doble"),
	}

	// 120 * 0.85 * 1.30 = 132.60
	price := rates.ResolveStacked(eur("120"), "doble", day(2024, time.July, 15), rules)

	assert.Equal(t, "132.60", price.String())
}

func TestResolveStacked_ClampsEachStep(t *testing.T) {
	from, to := summer()
	rules := []rates.PricingRule{
		rule("giveaway", "-150", 10, from, to, "doble"),
		rule("surcharge", "-150", 5, from, to, "doble"),
	}

	// Without per-step clamping two -150% steps would turn positive again.
	price := rates.ResolveStacked(eur("100"), "doble", day(2024, time.July, 15), rules)

	assert.Equal(t, "0.00", price.String())
}

func TestResolveStacked_NoMatch_ReturnsBase(t *testing.T) {
	price := rates.ResolveStacked(eur("99.5"), "doble", day(2024, time.July, 15), nil)
	assert.True(t, price.Equal(eur("99.5")))
}
