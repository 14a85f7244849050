/*
Package sqlite provides a SQLite-backed implementation of the Rule Store.

PURPOSE:
  Implements rates.Store (properties, room types, pricing rules) on SQLite.
  In production the same patterns apply to PostgreSQL with minor SQL
  dialect differences.

KEY TABLES:
  properties:    Hotel properties and their operating currency
  room_types:    Room categories with their base nightly rate
  pricing_rules: Seasons, discounts and promotions per property

STORAGE FORMATS:
  - Money and percentages are stored as TEXT decimals, never REAL
  - Dates are stored as TEXT YYYY-MM-DD
  - A rule's room type set is stored as a JSON array

  A row whose dates fail to parse loads with a zero date. The resolver
  treats such a rule as non-matching instead of failing the quote.

INDEXES:
  - idx_rules_property_active: ListActiveRules (quote hot path)
  - idx_room_types_property: Room type listings

CONCURRENCY:
  Uses sync.RWMutex for thread-safety and a single open connection so
  ":memory:" databases are shared by every query.

USAGE:
  store, err := sqlite.New("./data/rates.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  catalog := hotel.NewCatalog(store, logger)

SEE ALSO:
  - rates/store.go: Interfaces implemented here
  - rates/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/rate-engine/rates"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ rates.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS properties (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		currency TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS room_types (
		id TEXT NOT NULL,
		property_id TEXT NOT NULL,
		name TEXT NOT NULL,
		base_price TEXT NOT NULL,
		currency TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (property_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_room_types_property
		ON room_types(property_id);

	CREATE TABLE IF NOT EXISTS pricing_rules (
		id TEXT NOT NULL,
		property_id TEXT NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		room_type_ids_json TEXT NOT NULL,
		valid_from TEXT NOT NULL,
		valid_to TEXT NOT NULL,
		adjustment_percent TEXT NOT NULL,
		priority INTEGER NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		description TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (property_id, id)
	);

	-- Quote hot path: active rules of one property
	CREATE INDEX IF NOT EXISTS idx_rules_property_active
		ON pricing_rules(property_id, active, priority DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PROPERTY STORE
// =============================================================================

// SaveProperty creates or replaces a property.
func (s *Store) SaveProperty(ctx context.Context, p rates.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO properties (id, name, currency, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			currency = excluded.currency
	`
	_, err := s.db.ExecContext(ctx, query, p.ID, p.Name, string(p.Currency), createdAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save property: %w", err)
	}
	return nil
}

// GetProperty retrieves a property by ID.
func (s *Store) GetProperty(ctx context.Context, id rates.PropertyID) (rates.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p rates.Property
	var currency, createdAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, currency, created_at FROM properties WHERE id = ?", id,
	).Scan(&p.ID, &p.Name, &currency, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return rates.Property{}, rates.ErrPropertyNotFound
	}
	if err != nil {
		return rates.Property{}, err
	}
	p.Currency = rates.Currency(currency)
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return p, nil
}

// ListProperties returns all properties ordered by ID.
func (s *Store) ListProperties(ctx context.Context) ([]rates.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name, currency, created_at FROM properties ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var props []rates.Property
	for rows.Next() {
		var p rates.Property
		var currency, createdAt string
		if err := rows.Scan(&p.ID, &p.Name, &currency, &createdAt); err != nil {
			return nil, err
		}
		p.Currency = rates.Currency(currency)
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		props = append(props, p)
	}
	return props, rows.Err()
}

// =============================================================================
// ROOM TYPE STORE
// =============================================================================

// SaveRoomType creates or replaces a room type.
func (s *Store) SaveRoomType(ctx context.Context, rt rates.RoomType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	createdAt, updatedAt := orNow(rt.CreatedAt, now), orNow(rt.UpdatedAt, now)

	query := `
		INSERT INTO room_types (id, property_id, name, base_price, currency, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(property_id, id) DO UPDATE SET
			name = excluded.name,
			base_price = excluded.base_price,
			currency = excluded.currency,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		rt.ID, rt.PropertyID, rt.Name,
		rt.BasePrice.Amount.String(), string(rt.BasePrice.Currency),
		createdAt.Format(time.RFC3339), updatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save room type: %w", err)
	}
	return nil
}

// GetRoomType retrieves a room type of a property.
func (s *Store) GetRoomType(ctx context.Context, propertyID rates.PropertyID, id rates.RoomTypeID) (rates.RoomType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, property_id, name, base_price, currency, created_at, updated_at
		FROM room_types WHERE property_id = ? AND id = ?`, propertyID, id)

	rt, err := scanRoomType(row)
	if errors.Is(err, sql.ErrNoRows) {
		return rates.RoomType{}, rates.ErrRoomTypeNotFound
	}
	return rt, err
}

// DeleteRoomType removes a room type. Rules that list it are left as they are.
func (s *Store) DeleteRoomType(ctx context.Context, propertyID rates.PropertyID, id rates.RoomTypeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM room_types WHERE property_id = ? AND id = ?", propertyID, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, rates.ErrRoomTypeNotFound)
}

// ListRoomTypes returns the room types of a property ordered by ID.
func (s *Store) ListRoomTypes(ctx context.Context, propertyID rates.PropertyID) ([]rates.RoomType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, property_id, name, base_price, currency, created_at, updated_at
		FROM room_types WHERE property_id = ? ORDER BY id`, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rates.RoomType
	for rows.Next() {
		rt, err := scanRoomType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func scanRoomType(row scanner) (rates.RoomType, error) {
	var rt rates.RoomType
	var basePrice, currency, createdAt, updatedAt string
	if err := row.Scan(&rt.ID, &rt.PropertyID, &rt.Name, &basePrice, &currency, &createdAt, &updatedAt); err != nil {
		return rates.RoomType{}, err
	}
	amount, err := decimal.NewFromString(basePrice)
	if err != nil {
		return rates.RoomType{}, fmt.Errorf("room type %s: corrupt base price %q: %w", rt.ID, basePrice, err)
	}
	rt.BasePrice = rates.NewMoneyFromDecimal(amount, rates.Currency(currency))
	rt.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	rt.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return rt, nil
}

// =============================================================================
// RULE STORE
// =============================================================================

const ruleColumns = `id, property_id, name, kind, room_type_ids_json, valid_from, valid_to,
	adjustment_percent, priority, active, description, created_at, updated_at`

// SaveRule creates or replaces a pricing rule.
func (s *Store) SaveRule(ctx context.Context, r rates.PricingRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomTypesJSON, err := json.Marshal(r.RoomTypeIDs)
	if err != nil {
		return fmt.Errorf("failed to encode room types: %w", err)
	}

	now := time.Now().UTC()
	createdAt, updatedAt := orNow(r.CreatedAt, now), orNow(r.UpdatedAt, now)

	query := `
		INSERT INTO pricing_rules (` + ruleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(property_id, id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			room_type_ids_json = excluded.room_type_ids_json,
			valid_from = excluded.valid_from,
			valid_to = excluded.valid_to,
			adjustment_percent = excluded.adjustment_percent,
			priority = excluded.priority,
			active = excluded.active,
			description = excluded.description,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		r.ID, r.PropertyID, r.Name, string(r.Kind), string(roomTypesJSON),
		r.ValidFrom.String(), r.ValidTo.String(),
		r.AdjustmentPercent.String(), r.Priority, r.Active,
		nullString(r.Description),
		createdAt.Format(time.RFC3339), updatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save rule: %w", err)
	}
	return nil
}

// GetRule retrieves a rule of a property.
func (s *Store) GetRule(ctx context.Context, propertyID rates.PropertyID, id rates.RuleID) (rates.PricingRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+ruleColumns+" FROM pricing_rules WHERE property_id = ? AND id = ?", propertyID, id)
	r, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return rates.PricingRule{}, rates.ErrRuleNotFound
	}
	return r, err
}

// DeleteRule removes a rule.
func (s *Store) DeleteRule(ctx context.Context, propertyID rates.PropertyID, id rates.RuleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM pricing_rules WHERE property_id = ? AND id = ?", propertyID, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, rates.ErrRuleNotFound)
}

// ListRules returns every rule of a property, highest priority first.
func (s *Store) ListRules(ctx context.Context, propertyID rates.PropertyID) ([]rates.PricingRule, error) {
	return s.queryRules(ctx,
		"SELECT "+ruleColumns+" FROM pricing_rules WHERE property_id = ? ORDER BY priority DESC, id ASC",
		propertyID)
}

// ListActiveRules returns the active rules of a property, highest priority first.
func (s *Store) ListActiveRules(ctx context.Context, propertyID rates.PropertyID) ([]rates.PricingRule, error) {
	return s.queryRules(ctx,
		"SELECT "+ruleColumns+" FROM pricing_rules WHERE property_id = ? AND active = TRUE ORDER BY priority DESC, id ASC",
		propertyID)
}

func (s *Store) queryRules(ctx context.Context, query string, args ...any) ([]rates.PricingRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rates.PricingRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRule(row scanner) (rates.PricingRule, error) {
	var r rates.PricingRule
	var kind, roomTypesJSON, validFrom, validTo, percent, createdAt, updatedAt string
	var description sql.NullString

	err := row.Scan(&r.ID, &r.PropertyID, &r.Name, &kind, &roomTypesJSON, &validFrom, &validTo,
		&percent, &r.Priority, &r.Active, &description, &createdAt, &updatedAt)
	if err != nil {
		return rates.PricingRule{}, err
	}

	r.Kind = rates.RuleKind(kind)
	r.Description = description.String

	// Corrupt columns load as zero values; the resolver skips such rules.
	_ = json.Unmarshal([]byte(roomTypesJSON), &r.RoomTypeIDs)
	r.ValidFrom, _ = rates.ParseDate(validFrom)
	r.ValidTo, _ = rates.ParseDate(validTo)
	r.AdjustmentPercent, _ = decimal.NewFromString(percent)

	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return r, nil
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset deletes all data. Used by demo scenarios.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"pricing_rules", "room_types", "properties"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func nullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func orNow(t, now time.Time) time.Time {
	if t.IsZero() {
		return now
	}
	return t.UTC()
}

func affectedOrNotFound(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
