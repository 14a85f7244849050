package rates

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type PropertyID string
type RoomTypeID string
type RuleID string

// =============================================================================
// PROPERTY & ROOM TYPE
// =============================================================================

// Property owns room types and pricing rules and fixes their currency.
type Property struct {
	ID        PropertyID
	Name      string
	Currency  Currency
	CreatedAt time.Time
}

// RoomType is a category of room with its baseline nightly rate.
type RoomType struct {
	ID         RoomTypeID
	PropertyID PropertyID
	Name       string
	BasePrice  Money
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// =============================================================================
// PRICING RULE
// =============================================================================

// RuleKind labels a rule. It does not change how the rule is evaluated.
type RuleKind string

const (
	KindSeason    RuleKind = "season"
	KindDiscount  RuleKind = "discount"
	KindPromotion RuleKind = "promotion"
)

// Known reports whether k is one of the defined kinds.
func (k RuleKind) Known() bool {
	switch k {
	case KindSeason, KindDiscount, KindPromotion:
		return true
	default:
		return false
	}
}

// PricingRule is a named, time-bounded price adjustment for a set of room types.
type PricingRule struct {
	ID                RuleID
	PropertyID        PropertyID
	Name              string
	Kind              RuleKind
	RoomTypeIDs       []RoomTypeID
	ValidFrom         Date
	ValidTo           Date
	AdjustmentPercent decimal.Decimal // +30 raises the rate 30%, -15 lowers it 15%
	Priority          int             // higher wins
	Active            bool
	Description       string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppliesTo reports whether roomType is in the rule's room type set.
func (r PricingRule) AppliesTo(roomType RoomTypeID) bool {
	for _, id := range r.RoomTypeIDs {
		if id == roomType {
			return true
		}
	}
	return false
}

// Covers reports whether date falls in [ValidFrom, ValidTo].
// Rules with a missing bound cover nothing.
func (r PricingRule) Covers(date Date) bool {
	if r.ValidFrom.IsZero() || r.ValidTo.IsZero() || date.IsZero() {
		return false
	}
	return r.ValidFrom.BeforeOrEqual(date) && date.BeforeOrEqual(r.ValidTo)
}

// Matches reports whether rule takes part in resolution for roomType on date:
// it must be active, of a known kind, list roomType, and cover date (bounds
// inclusive). Malformed rules never match.
func Matches(rule PricingRule, roomType RoomTypeID, date Date) bool {
	return rule.Active &&
		rule.Kind.Known() &&
		rule.AppliesTo(roomType) &&
		rule.Covers(date)
}
