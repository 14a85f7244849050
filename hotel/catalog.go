/*
Package hotel is the calling layer around the rate resolver.

PURPOSE:
  Owns rule authoring (validate, then persist) and quoting (load a room
  type's base price and the property's active rules, then resolve).
  The resolver in package rates stays pure; everything that touches a
  store or a logger lives here.

FAIL OPEN:
  A quote needs the base price; without it there is nothing to return and
  the quote fails. Rules are optional: if they cannot be loaded the quote
  returns the unadjusted base price marked Provisional, and the failure is
  logged. A guest is never left without a price.

NO CACHING:
  Every quote reloads the active rule snapshot. Rule edits take effect on
  the next quote.

SEE ALSO:
  - rates/resolve.go: Resolve, Explain, ResolveStacked
  - rates/store.go: Store interfaces
  - api/handlers.go: HTTP surface over the catalog
*/
package hotel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/warp/rate-engine/rates"
)

// =============================================================================
// CATALOG
// =============================================================================

// Catalog manages properties, room types and pricing rules, and quotes rates.
type Catalog struct {
	store rates.Store
	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

// NewCatalog creates a catalog over store.
func NewCatalog(store rates.Store, logger zerolog.Logger) *Catalog {
	return &Catalog{
		store: store,
		log:   logger.With().Str("component", "catalog").Logger(),
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.NewString() },
	}
}

// =============================================================================
// PROPERTIES
// =============================================================================

// CreateProperty validates and stores a new property.
func (c *Catalog) CreateProperty(ctx context.Context, p rates.Property) (rates.Property, error) {
	p.Currency = rates.NormalizeCurrency(string(p.Currency))
	if p.Currency == "" {
		p.Currency = rates.DefaultCurrency
	}
	if err := rates.ValidateProperty(p); err != nil {
		return rates.Property{}, err
	}
	if p.ID == "" {
		p.ID = rates.PropertyID(c.newID())
	} else if _, err := c.store.GetProperty(ctx, p.ID); err == nil {
		return rates.Property{}, fmt.Errorf("property %s: %w", p.ID, rates.ErrAlreadyExists)
	} else if !errors.Is(err, rates.ErrPropertyNotFound) {
		return rates.Property{}, err
	}
	p.CreatedAt = c.now()

	if err := c.store.SaveProperty(ctx, p); err != nil {
		return rates.Property{}, err
	}
	c.log.Info().Str("property_id", string(p.ID)).Str("currency", string(p.Currency)).Msg("property created")
	return p, nil
}

func (c *Catalog) GetProperty(ctx context.Context, id rates.PropertyID) (rates.Property, error) {
	return c.store.GetProperty(ctx, id)
}

func (c *Catalog) ListProperties(ctx context.Context) ([]rates.Property, error) {
	return c.store.ListProperties(ctx)
}

// =============================================================================
// ROOM TYPES
// =============================================================================

// CreateRoomType stores a new room type priced in the property's currency.
func (c *Catalog) CreateRoomType(ctx context.Context, propertyID rates.PropertyID, rt rates.RoomType) (rates.RoomType, error) {
	prop, err := c.store.GetProperty(ctx, propertyID)
	if err != nil {
		return rates.RoomType{}, err
	}
	if rt.ID == "" {
		rt.ID = rates.RoomTypeID(c.newID())
	} else if _, err := c.store.GetRoomType(ctx, propertyID, rt.ID); err == nil {
		return rates.RoomType{}, fmt.Errorf("room type %s: %w", rt.ID, rates.ErrAlreadyExists)
	} else if !errors.Is(err, rates.ErrRoomTypeNotFound) {
		return rates.RoomType{}, err
	}

	rt.PropertyID = propertyID
	rt.BasePrice.Currency = prop.Currency
	if err := rates.ValidateRoomType(rt); err != nil {
		return rates.RoomType{}, err
	}
	rt.CreatedAt = c.now()
	rt.UpdatedAt = rt.CreatedAt

	if err := c.store.SaveRoomType(ctx, rt); err != nil {
		return rates.RoomType{}, err
	}
	c.log.Info().
		Str("property_id", string(propertyID)).
		Str("room_type_id", string(rt.ID)).
		Str("base_price", rt.BasePrice.String()).
		Msg("room type created")
	return rt, nil
}

// UpdateRoomType replaces name and base price of an existing room type.
func (c *Catalog) UpdateRoomType(ctx context.Context, propertyID rates.PropertyID, rt rates.RoomType) (rates.RoomType, error) {
	existing, err := c.store.GetRoomType(ctx, propertyID, rt.ID)
	if err != nil {
		return rates.RoomType{}, err
	}
	rt.PropertyID = propertyID
	rt.BasePrice.Currency = existing.BasePrice.Currency
	if err := rates.ValidateRoomType(rt); err != nil {
		return rates.RoomType{}, err
	}
	rt.CreatedAt = existing.CreatedAt
	rt.UpdatedAt = c.now()

	if err := c.store.SaveRoomType(ctx, rt); err != nil {
		return rates.RoomType{}, err
	}
	c.log.Info().
		Str("property_id", string(propertyID)).
		Str("room_type_id", string(rt.ID)).
		Str("base_price", rt.BasePrice.String()).
		Msg("room type updated")
	return rt, nil
}

func (c *Catalog) DeleteRoomType(ctx context.Context, propertyID rates.PropertyID, id rates.RoomTypeID) error {
	if err := c.store.DeleteRoomType(ctx, propertyID, id); err != nil {
		return err
	}
	c.log.Info().Str("property_id", string(propertyID)).Str("room_type_id", string(id)).Msg("room type deleted")
	return nil
}

func (c *Catalog) GetRoomType(ctx context.Context, propertyID rates.PropertyID, id rates.RoomTypeID) (rates.RoomType, error) {
	return c.store.GetRoomType(ctx, propertyID, id)
}

func (c *Catalog) ListRoomTypes(ctx context.Context, propertyID rates.PropertyID) ([]rates.RoomType, error) {
	if _, err := c.store.GetProperty(ctx, propertyID); err != nil {
		return nil, err
	}
	return c.store.ListRoomTypes(ctx, propertyID)
}

// =============================================================================
// PRICING RULES
// =============================================================================

// CreateRule validates and stores a new rule. Every listed room type must
// exist in the property.
func (c *Catalog) CreateRule(ctx context.Context, propertyID rates.PropertyID, rule rates.PricingRule) (rates.PricingRule, error) {
	if _, err := c.store.GetProperty(ctx, propertyID); err != nil {
		return rates.PricingRule{}, err
	}
	rule.PropertyID = propertyID
	if err := c.validateRule(ctx, rule); err != nil {
		return rates.PricingRule{}, err
	}

	if rule.ID == "" {
		rule.ID = rates.RuleID(c.newID())
	} else if _, err := c.store.GetRule(ctx, propertyID, rule.ID); err == nil {
		return rates.PricingRule{}, fmt.Errorf("rule %s: %w", rule.ID, rates.ErrAlreadyExists)
	} else if !errors.Is(err, rates.ErrRuleNotFound) {
		return rates.PricingRule{}, err
	}

	rule.CreatedAt = c.now()
	rule.UpdatedAt = rule.CreatedAt
	if err := c.store.SaveRule(ctx, rule); err != nil {
		return rates.PricingRule{}, err
	}
	c.logRule(rule, "rule created")
	return rule, nil
}

// UpdateRule validates and replaces an existing rule.
func (c *Catalog) UpdateRule(ctx context.Context, propertyID rates.PropertyID, rule rates.PricingRule) (rates.PricingRule, error) {
	existing, err := c.store.GetRule(ctx, propertyID, rule.ID)
	if err != nil {
		return rates.PricingRule{}, err
	}
	rule.PropertyID = propertyID
	if err := c.validateRule(ctx, rule); err != nil {
		return rates.PricingRule{}, err
	}

	rule.CreatedAt = existing.CreatedAt
	rule.UpdatedAt = c.now()
	if err := c.store.SaveRule(ctx, rule); err != nil {
		return rates.PricingRule{}, err
	}
	c.logRule(rule, "rule updated")
	return rule, nil
}

// SetRuleActive toggles a rule without touching its other fields.
func (c *Catalog) SetRuleActive(ctx context.Context, propertyID rates.PropertyID, id rates.RuleID, active bool) (rates.PricingRule, error) {
	rule, err := c.store.GetRule(ctx, propertyID, id)
	if err != nil {
		return rates.PricingRule{}, err
	}
	rule.Active = active
	rule.UpdatedAt = c.now()
	if err := c.store.SaveRule(ctx, rule); err != nil {
		return rates.PricingRule{}, err
	}
	c.logRule(rule, "rule toggled")
	return rule, nil
}

func (c *Catalog) DeleteRule(ctx context.Context, propertyID rates.PropertyID, id rates.RuleID) error {
	if err := c.store.DeleteRule(ctx, propertyID, id); err != nil {
		return err
	}
	c.log.Info().Str("property_id", string(propertyID)).Str("rule_id", string(id)).Msg("rule deleted")
	return nil
}

func (c *Catalog) GetRule(ctx context.Context, propertyID rates.PropertyID, id rates.RuleID) (rates.PricingRule, error) {
	return c.store.GetRule(ctx, propertyID, id)
}

func (c *Catalog) ListRules(ctx context.Context, propertyID rates.PropertyID) ([]rates.PricingRule, error) {
	if _, err := c.store.GetProperty(ctx, propertyID); err != nil {
		return nil, err
	}
	return c.store.ListRules(ctx, propertyID)
}

func (c *Catalog) validateRule(ctx context.Context, rule rates.PricingRule) error {
	if err := rates.ValidateRule(rule); err != nil {
		return err
	}
	for _, id := range rule.RoomTypeIDs {
		_, err := c.store.GetRoomType(ctx, rule.PropertyID, id)
		if errors.Is(err, rates.ErrRoomTypeNotFound) {
			return rates.RuleFieldError("room_type_ids", fmt.Sprintf("unknown room type %q", id))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) logRule(rule rates.PricingRule, msg string) {
	c.log.Info().
		Str("property_id", string(rule.PropertyID)).
		Str("rule_id", string(rule.ID)).
		Str("kind", string(rule.Kind)).
		Str("adjustment_percent", rule.AdjustmentPercent.String()).
		Int("priority", rule.Priority).
		Bool("active", rule.Active).
		Str("valid_from", rule.ValidFrom.String()).
		Str("valid_to", rule.ValidTo.String()).
		Msg(msg)
}
