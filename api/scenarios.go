/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with a property,
	room types and pricing rules that demonstrate specific resolver
	behavior.

AVAILABLE SCENARIOS:

	high-season:       Hotel Mar, one season rule (+30% on doble, Jul-Aug)
	priority-override: High season plus a higher-priority -15% discount
	range-edges:       Hotel Brisa, single-day and boundary rules, a -120%
	                   closing rule clamped to zero, a stacked-mode pair

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create the property
 3. Create room types
 4. Create rules through the catalog (validated like any API rule)

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "priority-override"}

	GET /api/properties/hotel-mar/quote?room_type=doble&date=2024-07-15

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler
  - hotel/presets.go: Season, Discount, Promotion
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/rate-engine/hotel"
	"github.com/warp/rate-engine/rates"
)

var errUnknownScenario = errors.New("unknown scenario")

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "high-season",
		Name:        "High Season",
		Description: "Doble at 120 EUR with a +30% season in July and August",
		Category:    "season",
	},
	{
		ID:          "priority-override",
		Name:        "Priority Override",
		Description: "Season +30% (priority 5) and discount -15% (priority 10) on the same dates; the discount wins alone",
		Category:    "priority",
	},
	{
		ID:          "range-edges",
		Name:        "Range Edges",
		Description: "Inclusive boundaries, a single-day promotion and a -120% rule clamped to zero",
		Category:    "edge-cases",
	},
}

var scenarioLoaders = map[string]func(ctx context.Context, c *hotel.Catalog) error{
	"high-season":       loadHighSeasonScenario,
	"priority-override": loadPriorityOverrideScenario,
	"range-edges":       loadRangeEdgesScenario,
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, or null.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the store and loads a scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}

	load, ok := scenarioLoaders[req.ScenarioID]
	if !ok {
		h.fail(w, r, "Unknown scenario", fmt.Errorf("%w: %q", errUnknownScenario, req.ScenarioID))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.backend.Reset(r.Context()); err != nil {
		h.fail(w, r, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	if err := load(r.Context(), h.Catalog); err != nil {
		h.fail(w, r, "Failed to load scenario", err)
		return
	}
	h.currentScenario = req.ScenarioID

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.backend.Reset(r.Context()); err != nil {
		h.fail(w, r, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func summer2024() (rates.Date, rates.Date) {
	return rates.NewDate(2024, time.July, 1), rates.NewDate(2024, time.August, 31)
}

func loadHotelMar(ctx context.Context, c *hotel.Catalog) error {
	if _, err := c.CreateProperty(ctx, rates.Property{ID: "hotel-mar", Name: "Hotel Mar", Currency: "EUR"}); err != nil {
		return err
	}
	for _, rt := range []rates.RoomType{
		{ID: "doble", Name: "Habitación Doble", BasePrice: rates.NewMoney("120", "")},
		{ID: "suite", Name: "Suite", BasePrice: rates.NewMoney("250", "")},
	} {
		if _, err := c.CreateRoomType(ctx, "hotel-mar", rt); err != nil {
			return fmt.Errorf("room type %s: %w", rt.ID, err)
		}
	}
	return nil
}

func createRules(ctx context.Context, c *hotel.Catalog, propertyID rates.PropertyID, rules ...rates.PricingRule) error {
	for _, rule := range rules {
		if _, err := c.CreateRule(ctx, propertyID, rule); err != nil {
			return fmt.Errorf("rule %s: %w", rule.ID, err)
		}
	}
	return nil
}

func loadHighSeasonScenario(ctx context.Context, c *hotel.Catalog) error {
	if err := loadHotelMar(ctx, c); err != nil {
		return err
	}
	from, to := summer2024()
	season := hotel.Season("temporada-alta", "Temporada Alta", "30", 5, from, to, "doble")
	season.Description = "Julio y agosto"
	return createRules(ctx, c, "hotel-mar", season)
}

func loadPriorityOverrideScenario(ctx context.Context, c *hotel.Catalog) error {
	if err := loadHighSeasonScenario(ctx, c); err != nil {
		return err
	}
	from, to := summer2024()
	return createRules(ctx, c, "hotel-mar",
		hotel.Discount("descuento-fin-de-semana", "Descuento Fin de Semana", "-15", 10, from, to, "doble"),
	)
}

func loadRangeEdgesScenario(ctx context.Context, c *hotel.Catalog) error {
	if _, err := c.CreateProperty(ctx, rates.Property{ID: "hotel-brisa", Name: "Hotel Brisa", Currency: "EUR"}); err != nil {
		return err
	}
	for _, rt := range []rates.RoomType{
		{ID: "estandar", Name: "Estándar", BasePrice: rates.NewMoney("80", "")},
		{ID: "familiar", Name: "Familiar", BasePrice: rates.NewMoney("140", "")},
	} {
		if _, err := c.CreateRoomType(ctx, "hotel-brisa", rt); err != nil {
			return fmt.Errorf("room type %s: %w", rt.ID, err)
		}
	}

	return createRules(ctx, c, "hotel-brisa",
		hotel.Promotion("apertura", "Apertura de Temporada", "10", 1,
			rates.NewDate(2024, time.June, 1), rates.NewDate(2024, time.June, 10), "estandar", "familiar"),
		hotel.Promotion("san-juan", "Noche de San Juan", "25", 3,
			rates.NewDate(2024, time.June, 23), rates.NewDate(2024, time.June, 23), "estandar"),
		hotel.Discount("cierre", "Cierre por Obras", "-120", 2,
			rates.NewDate(2024, time.November, 1), rates.NewDate(2024, time.November, 30), "estandar"),
		hotel.Season("puente", "Puente de Diciembre", "20", 4,
			rates.NewDate(2024, time.December, 5), rates.NewDate(2024, time.December, 9), "familiar"),
		hotel.Discount("fidelidad", "Cliente Fiel", "-10", 1,
			rates.NewDate(2024, time.December, 1), rates.NewDate(2024, time.December, 31), "familiar"),
	)
}
