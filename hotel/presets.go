/*
presets.go - Pre-built rule constructors

PURPOSE:
  Convenience builders for the three rule kinds. Kind is informational:
  a Season, a Discount and a Promotion with the same fields price
  identically.

EXAMPLE:
  rule := hotel.Season("temporada-alta", "Temporada Alta", "30", 5,
      rates.NewDate(2024, time.July, 1), rates.NewDate(2024, time.August, 31),
      "doble", "suite")
  _, err := catalog.CreateRule(ctx, "hotel-mar", rule)
*/
package hotel

import "github.com/warp/rate-engine/rates"

// Season builds an active season rule.
func Season(id rates.RuleID, name, percent string, priority int, from, to rates.Date, roomTypes ...rates.RoomTypeID) rates.PricingRule {
	return preset(rates.KindSeason, id, name, percent, priority, from, to, roomTypes)
}

// Discount builds an active discount rule. percent is signed: pass "-15".
func Discount(id rates.RuleID, name, percent string, priority int, from, to rates.Date, roomTypes ...rates.RoomTypeID) rates.PricingRule {
	return preset(rates.KindDiscount, id, name, percent, priority, from, to, roomTypes)
}

// Promotion builds an active promotion rule.
func Promotion(id rates.RuleID, name, percent string, priority int, from, to rates.Date, roomTypes ...rates.RoomTypeID) rates.PricingRule {
	return preset(rates.KindPromotion, id, name, percent, priority, from, to, roomTypes)
}

func preset(kind rates.RuleKind, id rates.RuleID, name, percent string, priority int, from, to rates.Date, roomTypes []rates.RoomTypeID) rates.PricingRule {
	return rates.PricingRule{
		ID:                id,
		Name:              name,
		Kind:              kind,
		RoomTypeIDs:       roomTypes,
		ValidFrom:         from,
		ValidTo:           to,
		AdjustmentPercent: rates.MustParseDecimal(percent),
		Priority:          priority,
		Active:            true,
	}
}
