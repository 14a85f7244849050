/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupled from the
  rates domain types.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Amounts are fixed-point strings with the currency's minor-unit digits
  ("156.00", "12000" for JPY). Clients must not parse them as floats for
  arithmetic.

DATES:
  Calendar dates are YYYY-MM-DD. Timestamps are RFC 3339.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/rule.go: RuleJSON, RoomTypeJSON
*/
package api

import (
	"time"

	"github.com/warp/rate-engine/factory"
	"github.com/warp/rate-engine/hotel"
	"github.com/warp/rate-engine/rates"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// PropertyDTO represents a property in API responses.
type PropertyDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Currency  string `json:"currency"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreatePropertyRequest is the request to create a property.
type CreatePropertyRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// RoomTypeDTO represents a room type in API responses.
type RoomTypeDTO struct {
	ID         string `json:"id"`
	PropertyID string `json:"property_id"`
	Name       string `json:"name"`
	BasePrice  string `json:"base_price"`
	Currency   string `json:"currency"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

// RuleDTO is a rule document plus its timestamps.
type RuleDTO struct {
	factory.RuleJSON
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// AppliedRuleDTO summarizes a rule that shaped a quote.
type AppliedRuleDTO struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Kind              string `json:"kind"`
	AdjustmentPercent string `json:"adjustment_percent"`
	Priority          int    `json:"priority"`
}

// QuoteDTO is the response for a nightly quote.
type QuoteDTO struct {
	PropertyID   string           `json:"property_id"`
	RoomTypeID   string           `json:"room_type_id"`
	Date         string           `json:"date"`
	Mode         string           `json:"mode"`
	Currency     string           `json:"currency"`
	BasePrice    string           `json:"base_price"`
	Price        string           `json:"price"`
	AppliedRules []AppliedRuleDTO `json:"applied_rules"`
	Provisional  bool             `json:"provisional"`
}

// NightDTO is one priced night of a stay.
type NightDTO struct {
	Date   string `json:"date"`
	Price  string `json:"price"`
	RuleID string `json:"rule_id,omitempty"`
}

// StayQuoteDTO is the response for a stay quote.
type StayQuoteDTO struct {
	PropertyID  string     `json:"property_id"`
	RoomTypeID  string     `json:"room_type_id"`
	CheckIn     string     `json:"check_in"`
	CheckOut    string     `json:"check_out"`
	Currency    string     `json:"currency"`
	BasePrice   string     `json:"base_price"`
	Nights      []NightDTO `json:"nights"`
	Total       string     `json:"total"`
	Provisional bool       `json:"provisional"`
}

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// LoadScenarioRequest is the request to load a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toPropertyDTO(p rates.Property) PropertyDTO {
	return PropertyDTO{
		ID:        string(p.ID),
		Name:      p.Name,
		Currency:  string(p.Currency),
		CreatedAt: formatTime(p.CreatedAt),
	}
}

func toRoomTypeDTO(rt rates.RoomType) RoomTypeDTO {
	return RoomTypeDTO{
		ID:         string(rt.ID),
		PropertyID: string(rt.PropertyID),
		Name:       rt.Name,
		BasePrice:  rt.BasePrice.String(),
		Currency:   string(rt.BasePrice.Currency),
		CreatedAt:  formatTime(rt.CreatedAt),
		UpdatedAt:  formatTime(rt.UpdatedAt),
	}
}

func toRuleDTO(f *factory.RuleFactory, r rates.PricingRule) RuleDTO {
	return RuleDTO{
		RuleJSON:  f.ToJSON(r),
		CreatedAt: formatTime(r.CreatedAt),
		UpdatedAt: formatTime(r.UpdatedAt),
	}
}

func toQuoteDTO(q hotel.Quote) QuoteDTO {
	applied := make([]AppliedRuleDTO, len(q.AppliedRules))
	for i, r := range q.AppliedRules {
		applied[i] = AppliedRuleDTO{
			ID:                string(r.ID),
			Name:              r.Name,
			Kind:              string(r.Kind),
			AdjustmentPercent: r.AdjustmentPercent.String(),
			Priority:          r.Priority,
		}
	}
	return QuoteDTO{
		PropertyID:   string(q.PropertyID),
		RoomTypeID:   string(q.RoomTypeID),
		Date:         q.Date.String(),
		Mode:         string(q.Mode),
		Currency:     string(q.Price.Currency),
		BasePrice:    q.Base.String(),
		Price:        q.Price.String(),
		AppliedRules: applied,
		Provisional:  q.Provisional,
	}
}

func toStayQuoteDTO(q hotel.StayQuote) StayQuoteDTO {
	nights := make([]NightDTO, len(q.Stay.Nights))
	for i, n := range q.Stay.Nights {
		nights[i] = NightDTO{
			Date:   n.Date.String(),
			Price:  n.Price.String(),
			RuleID: string(n.RuleID),
		}
	}
	return StayQuoteDTO{
		PropertyID:  string(q.PropertyID),
		RoomTypeID:  string(q.Stay.RoomTypeID),
		CheckIn:     q.Stay.CheckIn.String(),
		CheckOut:    q.Stay.CheckOut.String(),
		Currency:    string(q.Base.Currency),
		BasePrice:   q.Base.String(),
		Nights:      nights,
		Total:       q.Stay.Total.String(),
		Provisional: q.Provisional,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
