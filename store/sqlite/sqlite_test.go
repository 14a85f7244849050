package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rate-engine/rates"
	"github.com/warp/rate-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seasonRule(id string, priority int, active bool) rates.PricingRule {
	return rates.PricingRule{
		ID:                rates.RuleID(id),
		PropertyID:        "hotel-mar",
		Name:              "Temporada " + id,
		Kind:              rates.KindSeason,
		RoomTypeIDs:       []rates.RoomTypeID{"doble", "suite"},
		ValidFrom:         rates.NewDate(2024, time.July, 1),
		ValidTo:           rates.NewDate(2024, time.August, 31),
		AdjustmentPercent: decimal.RequireFromString("12.345"),
		Priority:          priority,
		Active:            active,
		Description:       "verano",
	}
}

// =============================================================================
// RULES
// =============================================================================

func TestStore_SaveAndGetRule_PreservesFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRule(ctx, seasonRule("alta", 5, true)))

	got, err := store.GetRule(ctx, "hotel-mar", "alta")
	require.NoError(t, err)

	assert.Equal(t, "Temporada alta", got.Name)
	assert.Equal(t, rates.KindSeason, got.Kind)
	assert.Equal(t, []rates.RoomTypeID{"doble", "suite"}, got.RoomTypeIDs)
	assert.True(t, got.ValidFrom.Equal(rates.NewDate(2024, time.July, 1)))
	assert.True(t, got.ValidTo.Equal(rates.NewDate(2024, time.August, 31)))
	assert.Equal(t, "12.345", got.AdjustmentPercent.String())
	assert.Equal(t, 5, got.Priority)
	assert.True(t, got.Active)
	assert.Equal(t, "verano", got.Description)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestStore_SaveRule_Upserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	r := seasonRule("alta", 5, true)
	require.NoError(t, store.SaveRule(ctx, r))

	r.Priority = 8
	r.Active = false
	r.AdjustmentPercent = decimal.NewFromInt(-15)
	require.NoError(t, store.SaveRule(ctx, r))

	all, err := store.ListRules(ctx, "hotel-mar")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 8, all[0].Priority)
	assert.False(t, all[0].Active)
	assert.Equal(t, "-15", all[0].AdjustmentPercent.String())
}

func TestStore_ListActiveRules(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRule(ctx, seasonRule("a", 1, true)))
	require.NoError(t, store.SaveRule(ctx, seasonRule("b", 9, false)))
	require.NoError(t, store.SaveRule(ctx, seasonRule("c", 5, true)))

	other := seasonRule("x", 3, true)
	other.PropertyID = "hotel-sol"
	require.NoError(t, store.SaveRule(ctx, other))

	active, err := store.ListActiveRules(ctx, "hotel-mar")
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, rates.RuleID("c"), active[0].ID)
	assert.Equal(t, rates.RuleID("a"), active[1].ID)

	all, err := store.ListRules(ctx, "hotel-mar")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_DeleteRule(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRule(ctx, seasonRule("alta", 5, true)))
	require.NoError(t, store.DeleteRule(ctx, "hotel-mar", "alta"))

	_, err := store.GetRule(ctx, "hotel-mar", "alta")
	assert.ErrorIs(t, err, rates.ErrRuleNotFound)
	assert.ErrorIs(t, store.DeleteRule(ctx, "hotel-mar", "alta"), rates.ErrRuleNotFound)
}

func TestStore_LoadedRulesResolve(t *testing.T) {
	// GIVEN: Two persisted overlapping rules
	store := newTestStore(t)
	ctx := context.Background()

	season := seasonRule("temporada-alta", 5, true)
	season.AdjustmentPercent = decimal.NewFromInt(30)
	discount := seasonRule("descuento", 10, true)
	discount.Kind = rates.KindDiscount
	discount.AdjustmentPercent = decimal.NewFromInt(-15)
	require.NoError(t, store.SaveRule(ctx, season))
	require.NoError(t, store.SaveRule(ctx, discount))

	// WHEN: Resolving with the loaded snapshot
	rules, err := store.ListActiveRules(ctx, "hotel-mar")
	require.NoError(t, err)
	price := rates.Resolve(rates.NewMoney("120", "EUR"), "doble", rates.NewDate(2024, time.July, 15), rules)

	// THEN: The discount wins
	assert.Equal(t, "102.00", price.String())
}

// =============================================================================
// ROOM TYPES & PROPERTIES
// =============================================================================

func TestStore_RoomTypes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rt := rates.RoomType{ID: "doble", PropertyID: "hotel-mar", Name: "Doble", BasePrice: rates.NewMoney("120.50", "EUR")}
	require.NoError(t, store.SaveRoomType(ctx, rt))

	got, err := store.GetRoomType(ctx, "hotel-mar", "doble")
	require.NoError(t, err)
	assert.Equal(t, "Doble", got.Name)
	assert.Equal(t, "120.50", got.BasePrice.String())
	assert.Equal(t, rates.Currency("EUR"), got.BasePrice.Currency)

	_, err = store.GetRoomType(ctx, "hotel-sol", "doble")
	assert.ErrorIs(t, err, rates.ErrRoomTypeNotFound)

	list, err := store.ListRoomTypes(ctx, "hotel-mar")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, store.DeleteRoomType(ctx, "hotel-mar", "doble"))
	assert.ErrorIs(t, store.DeleteRoomType(ctx, "hotel-mar", "doble"), rates.ErrRoomTypeNotFound)
}

func TestStore_Properties(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProperty(ctx, rates.Property{ID: "hotel-mar", Name: "Hotel Mar", Currency: "EUR"}))
	require.NoError(t, store.SaveProperty(ctx, rates.Property{ID: "hotel-sol", Name: "Hotel Sol", Currency: "MXN"}))

	p, err := store.GetProperty(ctx, "hotel-sol")
	require.NoError(t, err)
	assert.Equal(t, rates.Currency("MXN"), p.Currency)

	list, err := store.ListProperties(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = store.GetProperty(ctx, "missing")
	assert.ErrorIs(t, err, rates.ErrPropertyNotFound)
}

func TestStore_Reset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProperty(ctx, rates.Property{ID: "hotel-mar", Name: "Hotel Mar", Currency: "EUR"}))
	require.NoError(t, store.SaveRule(ctx, seasonRule("alta", 5, true)))
	require.NoError(t, store.Reset(ctx))

	props, err := store.ListProperties(ctx)
	require.NoError(t, err)
	assert.Empty(t, props)
	rules, err := store.ListRules(ctx, "hotel-mar")
	require.NoError(t, err)
	assert.Empty(t, rules)
}
