/*
store.go - Rule Store interfaces

PURPOSE:
  Defines the boundary between the pricing logic and persistence. The
  resolver never touches a store; callers load a snapshot of rules and
  hand it over.

KEY INTERFACES:
  RuleStore:     Pricing rule CRUD, scoped by property
  RoomTypeStore: Room type CRUD, supplies base prices
  PropertyStore: Properties and their currency
  Store:         All of the above

CONTRACT:
  - Save* creates or replaces by ID
  - Get* returns the matching Err*NotFound when the record is missing
  - Delete* returns Err*NotFound when nothing was deleted
  - ListActiveRules returns only Active rules; it does not filter by date

IMPLEMENTATIONS:
  - rates/store/memory.go: In-memory for tests and development
  - store/sqlite/sqlite.go: SQLite
*/
package rates

import "context"

type RuleStore interface {
	SaveRule(ctx context.Context, rule PricingRule) error
	GetRule(ctx context.Context, propertyID PropertyID, id RuleID) (PricingRule, error)
	DeleteRule(ctx context.Context, propertyID PropertyID, id RuleID) error
	ListRules(ctx context.Context, propertyID PropertyID) ([]PricingRule, error)
	ListActiveRules(ctx context.Context, propertyID PropertyID) ([]PricingRule, error)
}

type RoomTypeStore interface {
	SaveRoomType(ctx context.Context, rt RoomType) error
	GetRoomType(ctx context.Context, propertyID PropertyID, id RoomTypeID) (RoomType, error)
	DeleteRoomType(ctx context.Context, propertyID PropertyID, id RoomTypeID) error
	ListRoomTypes(ctx context.Context, propertyID PropertyID) ([]RoomType, error)
}

type PropertyStore interface {
	SaveProperty(ctx context.Context, p Property) error
	GetProperty(ctx context.Context, id PropertyID) (Property, error)
	ListProperties(ctx context.Context) ([]Property, error)
}

// Store is everything the hotel catalog needs.
type Store interface {
	RuleStore
	RoomTypeStore
	PropertyStore
}
