package hotel

import (
	"context"
	"fmt"
	"strings"

	"github.com/warp/rate-engine/rates"
)

// Mode selects how matching rules combine.
type Mode string

const (
	// ModeSingle applies only the highest-priority matching rule.
	ModeSingle Mode = "single"
	// ModeStacked applies every matching rule cumulatively.
	ModeStacked Mode = "stacked"
)

// ParseMode maps "" to ModeSingle and rejects unknown modes.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSingle:
		return ModeSingle, nil
	case ModeStacked:
		return ModeStacked, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidQuote, s)
	}
}

// QuoteRequest asks for one night's price.
type QuoteRequest struct {
	PropertyID rates.PropertyID
	RoomTypeID rates.RoomTypeID
	Date       rates.Date
	Mode       Mode
}

// Quote is a priced night.
type Quote struct {
	PropertyID   rates.PropertyID
	RoomTypeID   rates.RoomTypeID
	Date         rates.Date
	Mode         Mode
	Base         rates.Money
	Price        rates.Money
	AppliedRules []rates.PricingRule // winner first; empty when the base price stands
	Provisional  bool                // rules could not be loaded; Price is the base price
}

// StayRequest asks for the price of a stay.
type StayRequest struct {
	PropertyID rates.PropertyID
	RoomTypeID rates.RoomTypeID
	CheckIn    rates.Date
	CheckOut   rates.Date
}

// StayQuote is a priced stay.
type StayQuote struct {
	PropertyID  rates.PropertyID
	Base        rates.Money
	Stay        rates.StayQuote
	Provisional bool
}

// Quote prices one night of a room type.
func (c *Catalog) Quote(ctx context.Context, req QuoteRequest) (Quote, error) {
	if req.Date.IsZero() {
		return Quote{}, fmt.Errorf("%w: date is required", ErrInvalidQuote)
	}
	mode := req.Mode
	if mode == "" {
		mode = ModeSingle
	}

	rt, err := c.store.GetRoomType(ctx, req.PropertyID, req.RoomTypeID)
	if err != nil {
		return Quote{}, err
	}
	rules, provisional := c.loadRules(ctx, req.PropertyID)

	q := Quote{
		PropertyID:  req.PropertyID,
		RoomTypeID:  req.RoomTypeID,
		Date:        req.Date,
		Mode:        mode,
		Base:        rt.BasePrice,
		Price:       rt.BasePrice,
		Provisional: provisional,
	}

	switch mode {
	case ModeStacked:
		q.Price = rates.ResolveStacked(rt.BasePrice, rt.ID, req.Date, rules)
		q.AppliedRules = rates.MatchingRules(rt.ID, req.Date, rules)
	default:
		res := rates.Explain(rt.BasePrice, rt.ID, req.Date, rules)
		q.Price = res.Price
		if res.Rule != nil {
			q.AppliedRules = []rates.PricingRule{*res.Rule}
		}
	}
	return q, nil
}

// QuoteStay prices every night of a stay with the single-winner resolver.
func (c *Catalog) QuoteStay(ctx context.Context, req StayRequest) (StayQuote, error) {
	rt, err := c.store.GetRoomType(ctx, req.PropertyID, req.RoomTypeID)
	if err != nil {
		return StayQuote{}, err
	}
	rules, provisional := c.loadRules(ctx, req.PropertyID)

	stay, err := rates.QuoteStay(rt.BasePrice, rt.ID, req.CheckIn, req.CheckOut, rules)
	if err != nil {
		return StayQuote{}, err
	}
	return StayQuote{
		PropertyID:  req.PropertyID,
		Base:        rt.BasePrice,
		Stay:        stay,
		Provisional: provisional,
	}, nil
}

// loadRules returns the active rule snapshot, or no rules and
// provisional=true when the store fails.
func (c *Catalog) loadRules(ctx context.Context, propertyID rates.PropertyID) ([]rates.PricingRule, bool) {
	rules, err := c.store.ListActiveRules(ctx, propertyID)
	if err != nil {
		c.log.Warn().Err(err).
			Str("property_id", string(propertyID)).
			Msg("pricing rules unavailable, quoting base price")
		return nil, true
	}
	return rules, false
}
