package rates

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Limits on how an adjustment percent is written. A value like 1e1000000000
// is cheap to parse but makes every later rescale or render enormous.
const (
	maxPercentExponent = 28  // |exponent| of the decimal representation
	maxPercentBits     = 128 // coefficient size, about 38 significant digits
)

// ValidateRule checks a rule's well-formedness before it is stored.
// The resolver does not call this; it skips whatever it cannot evaluate.
func ValidateRule(r PricingRule) error {
	if strings.TrimSpace(r.Name) == "" {
		return RuleFieldError("name", "must not be empty")
	}
	if !r.Kind.Known() {
		return RuleFieldError("kind", "must be one of season, discount, promotion")
	}
	if len(r.RoomTypeIDs) == 0 {
		return RuleFieldError("room_type_ids", "must list at least one room type")
	}
	for _, id := range r.RoomTypeIDs {
		if strings.TrimSpace(string(id)) == "" {
			return RuleFieldError("room_type_ids", "must not contain empty ids")
		}
	}
	if r.ValidFrom.IsZero() {
		return RuleFieldError("valid_from", "is required")
	}
	if r.ValidTo.IsZero() {
		return RuleFieldError("valid_to", "is required")
	}
	if r.ValidFrom.After(r.ValidTo) {
		return RuleFieldError("valid_from", "must not be after valid_to")
	}
	if r.Priority <= 0 {
		return RuleFieldError("priority", "must be a positive integer")
	}
	return ValidatePercent(r.AdjustmentPercent)
}

// ValidatePercent rejects adjustment percents whose decimal representation is
// too large to evaluate. It does not bound the sign: -120 is a valid
// adjustment that the resolver clamps to a zero price.
func ValidatePercent(p decimal.Decimal) error {
	if e := p.Exponent(); e > maxPercentExponent || e < -maxPercentExponent {
		return RuleFieldError("adjustment_percent", "has too large an exponent")
	}
	if p.Coefficient().BitLen() > maxPercentBits {
		return RuleFieldError("adjustment_percent", "has too many digits")
	}
	return nil
}

// ValidateRoomType checks a room type before it is stored.
func ValidateRoomType(rt RoomType) error {
	if strings.TrimSpace(rt.Name) == "" {
		return RoomTypeFieldError("name", "must not be empty")
	}
	if rt.BasePrice.IsNegative() {
		return RoomTypeFieldError("base_price", "must not be negative")
	}
	return nil
}

// ValidateProperty checks a property before it is stored.
func ValidateProperty(p Property) error {
	if strings.TrimSpace(p.Name) == "" {
		return PropertyFieldError("name", "must not be empty")
	}
	if !p.Currency.Valid() {
		return PropertyFieldError("currency", "must be a three-letter ISO-4217 code")
	}
	return nil
}
