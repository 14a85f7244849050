/*
Package factory provides JSON to Go conversion for pricing rules and room types.

PURPOSE:
  Converts JSON rule documents into rates.PricingRule values and back.
  Revenue managers author rules in the admin UI as JSON; the factory turns
  them into typed rules the resolver can evaluate.

JSON SCHEMA:
  {
    "id": "temporada-alta",
    "name": "Temporada Alta",
    "kind": "season",
    "room_type_ids": ["doble", "suite"],
    "valid_from": "2024-07-01",
    "valid_to": "2024-08-31",
    "adjustment_percent": 30,
    "priority": 5,
    "active": true,
    "description": "Julio y agosto"
  }

PARSING RULES:
  - kind is case-insensitive ("Season" == "season")
  - dates are YYYY-MM-DD
  - adjustment_percent must be a JSON number (or numeric string) of sane
    size: 1e1000000000 is rejected, -120 is accepted
  - active defaults to true when omitted
  - unknown fields are rejected

Parse errors wrap rates.ErrInvalidRule so callers can map them to 400s.
Parsing does not run rates.ValidateRule; the catalog does that on save.

SEE ALSO:
  - rates/rule.go: PricingRule
  - hotel/catalog.go: Validates parsed rules on save
  - api/handlers.go: Rule and room type request bodies
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/rate-engine/rates"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RuleJSON is the JSON representation of a pricing rule.
type RuleJSON struct {
	ID                string      `json:"id,omitempty"`
	PropertyID        string      `json:"property_id,omitempty"`
	Name              string      `json:"name"`
	Kind              string      `json:"kind"`
	RoomTypeIDs       []string    `json:"room_type_ids"`
	ValidFrom         string      `json:"valid_from"`
	ValidTo           string      `json:"valid_to"`
	AdjustmentPercent json.Number `json:"adjustment_percent"`
	Priority          int         `json:"priority"`
	Active            *bool       `json:"active,omitempty"`
	Description       string      `json:"description,omitempty"`
}

// RoomTypeJSON is the JSON representation of a room type.
type RoomTypeJSON struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	BasePrice string `json:"base_price"`
}

// =============================================================================
// RULE FACTORY
// =============================================================================

// RuleFactory converts JSON rules to rates.PricingRule.
type RuleFactory struct{}

// NewRuleFactory creates a new rule factory.
func NewRuleFactory() *RuleFactory {
	return &RuleFactory{}
}

// ParseRule parses a JSON document into a PricingRule.
func (f *RuleFactory) ParseRule(data []byte) (rates.PricingRule, error) {
	var rj RuleJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	dec.UseNumber()
	if err := dec.Decode(&rj); err != nil {
		return rates.PricingRule{}, fmt.Errorf("%w: failed to parse rule JSON: %v", rates.ErrInvalidRule, err)
	}
	return f.FromJSON(rj)
}

// FromJSON converts RuleJSON to rates.PricingRule.
func (f *RuleFactory) FromJSON(rj RuleJSON) (rates.PricingRule, error) {
	kind, err := parseKind(rj.Kind)
	if err != nil {
		return rates.PricingRule{}, err
	}

	from, err := parseDate("valid_from", rj.ValidFrom)
	if err != nil {
		return rates.PricingRule{}, err
	}
	to, err := parseDate("valid_to", rj.ValidTo)
	if err != nil {
		return rates.PricingRule{}, err
	}

	percent, err := parsePercent(rj.AdjustmentPercent)
	if err != nil {
		return rates.PricingRule{}, err
	}

	active := true
	if rj.Active != nil {
		active = *rj.Active
	}

	roomTypes := make([]rates.RoomTypeID, 0, len(rj.RoomTypeIDs))
	for _, id := range rj.RoomTypeIDs {
		roomTypes = append(roomTypes, rates.RoomTypeID(strings.TrimSpace(id)))
	}

	return rates.PricingRule{
		ID:                rates.RuleID(strings.TrimSpace(rj.ID)),
		PropertyID:        rates.PropertyID(rj.PropertyID),
		Name:              strings.TrimSpace(rj.Name),
		Kind:              kind,
		RoomTypeIDs:       roomTypes,
		ValidFrom:         from,
		ValidTo:           to,
		AdjustmentPercent: percent,
		Priority:          rj.Priority,
		Active:            active,
		Description:       rj.Description,
	}, nil
}

// ToJSON converts a PricingRule to RuleJSON.
func (f *RuleFactory) ToJSON(r rates.PricingRule) RuleJSON {
	active := r.Active
	roomTypes := make([]string, len(r.RoomTypeIDs))
	for i, id := range r.RoomTypeIDs {
		roomTypes[i] = string(id)
	}
	return RuleJSON{
		ID:                string(r.ID),
		PropertyID:        string(r.PropertyID),
		Name:              r.Name,
		Kind:              string(r.Kind),
		RoomTypeIDs:       roomTypes,
		ValidFrom:         r.ValidFrom.String(),
		ValidTo:           r.ValidTo.String(),
		AdjustmentPercent: json.Number(r.AdjustmentPercent.String()),
		Priority:          r.Priority,
		Active:            &active,
		Description:       r.Description,
	}
}

// MarshalRule renders a rule as its JSON document.
func (f *RuleFactory) MarshalRule(r rates.PricingRule) ([]byte, error) {
	return json.Marshal(f.ToJSON(r))
}

// RoomTypeFromJSON converts RoomTypeJSON into a RoomType priced in currency.
func (f *RuleFactory) RoomTypeFromJSON(rj RoomTypeJSON, currency rates.Currency) (rates.RoomType, error) {
	base, err := rates.ParseMoney(rj.BasePrice, currency)
	if err != nil {
		return rates.RoomType{}, rates.RoomTypeFieldError("base_price", "must be a decimal number")
	}
	return rates.RoomType{
		ID:        rates.RoomTypeID(strings.TrimSpace(rj.ID)),
		Name:      strings.TrimSpace(rj.Name),
		BasePrice: base,
	}, nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseKind(s string) (rates.RuleKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "season":
		return rates.KindSeason, nil
	case "discount":
		return rates.KindDiscount, nil
	case "promotion":
		return rates.KindPromotion, nil
	default:
		return "", rates.RuleFieldError("kind", fmt.Sprintf("unknown kind %q", s))
	}
}

func parseDate(field, s string) (rates.Date, error) {
	if strings.TrimSpace(s) == "" {
		return rates.Date{}, rates.RuleFieldError(field, "is required")
	}
	d, err := rates.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return rates.Date{}, rates.RuleFieldError(field, "must be a YYYY-MM-DD date")
	}
	return d, nil
}

func parsePercent(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, rates.RuleFieldError("adjustment_percent", "is required")
	}
	d, err := decimal.NewFromString(string(n))
	if err != nil {
		return decimal.Zero, rates.RuleFieldError("adjustment_percent", "must be numeric")
	}
	if err := rates.ValidatePercent(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}
