// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/rate-engine/rates"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	properties map[rates.PropertyID]rates.Property
	roomTypes  map[roomTypeKey]rates.RoomType
	rules      map[ruleKey]rates.PricingRule
}

type roomTypeKey struct {
	PropertyID rates.PropertyID
	ID         rates.RoomTypeID
}

type ruleKey struct {
	PropertyID rates.PropertyID
	ID         rates.RuleID
}

var _ rates.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		properties: make(map[rates.PropertyID]rates.Property),
		roomTypes:  make(map[roomTypeKey]rates.RoomType),
		rules:      make(map[ruleKey]rates.PricingRule),
	}
}

// =============================================================================
// PROPERTIES
// =============================================================================

func (m *Memory) SaveProperty(_ context.Context, p rates.Property) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.properties[p.ID] = p
	return nil
}

func (m *Memory) GetProperty(_ context.Context, id rates.PropertyID) (rates.Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.properties[id]
	if !ok {
		return rates.Property{}, rates.ErrPropertyNotFound
	}
	return p, nil
}

func (m *Memory) ListProperties(_ context.Context) ([]rates.Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]rates.Property, 0, len(m.properties))
	for _, p := range m.properties {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// ROOM TYPES
// =============================================================================

func (m *Memory) SaveRoomType(_ context.Context, rt rates.RoomType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roomTypes[roomTypeKey{rt.PropertyID, rt.ID}] = rt
	return nil
}

func (m *Memory) GetRoomType(_ context.Context, propertyID rates.PropertyID, id rates.RoomTypeID) (rates.RoomType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rt, ok := m.roomTypes[roomTypeKey{propertyID, id}]
	if !ok {
		return rates.RoomType{}, rates.ErrRoomTypeNotFound
	}
	return rt, nil
}

func (m *Memory) DeleteRoomType(_ context.Context, propertyID rates.PropertyID, id rates.RoomTypeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := roomTypeKey{propertyID, id}
	if _, ok := m.roomTypes[k]; !ok {
		return rates.ErrRoomTypeNotFound
	}
	delete(m.roomTypes, k)
	return nil
}

func (m *Memory) ListRoomTypes(_ context.Context, propertyID rates.PropertyID) ([]rates.RoomType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []rates.RoomType
	for k, rt := range m.roomTypes {
		if k.PropertyID == propertyID {
			out = append(out, rt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// PRICING RULES
// =============================================================================

func (m *Memory) SaveRule(_ context.Context, rule rates.PricingRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rule.RoomTypeIDs = append([]rates.RoomTypeID(nil), rule.RoomTypeIDs...)
	m.rules[ruleKey{rule.PropertyID, rule.ID}] = rule
	return nil
}

func (m *Memory) GetRule(_ context.Context, propertyID rates.PropertyID, id rates.RuleID) (rates.PricingRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rules[ruleKey{propertyID, id}]
	if !ok {
		return rates.PricingRule{}, rates.ErrRuleNotFound
	}
	return copyRule(r), nil
}

func (m *Memory) DeleteRule(_ context.Context, propertyID rates.PropertyID, id rates.RuleID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := ruleKey{propertyID, id}
	if _, ok := m.rules[k]; !ok {
		return rates.ErrRuleNotFound
	}
	delete(m.rules, k)
	return nil
}

func (m *Memory) ListRules(_ context.Context, propertyID rates.PropertyID) ([]rates.PricingRule, error) {
	return m.listRules(propertyID, false), nil
}

func (m *Memory) ListActiveRules(_ context.Context, propertyID rates.PropertyID) ([]rates.PricingRule, error) {
	return m.listRules(propertyID, true), nil
}

func (m *Memory) listRules(propertyID rates.PropertyID, activeOnly bool) []rates.PricingRule {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []rates.PricingRule
	for k, r := range m.rules {
		if k.PropertyID != propertyID || (activeOnly && !r.Active) {
			continue
		}
		out = append(out, copyRule(r))
	}
	// Same order as the SQLite store: priority desc, then id.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func copyRule(r rates.PricingRule) rates.PricingRule {
	r.RoomTypeIDs = append([]rates.RoomTypeID(nil), r.RoomTypeIDs...)
	return r
}
