/*
handlers.go - HTTP API handlers for the rate engine

PURPOSE:
  Exposes the hotel catalog via REST API. Handles HTTP request/response
  and JSON serialization, and delegates to hotel.Catalog.

ENDPOINTS:
  Properties:
    GET    /api/properties                         List properties
    POST   /api/properties                         Create property
    GET    /api/properties/{pid}                   Get property

  Room types:
    GET    /api/properties/{pid}/room-types        List room types
    POST   /api/properties/{pid}/room-types        Create room type
    GET    /api/properties/{pid}/room-types/{id}   Get room type
    PUT    /api/properties/{pid}/room-types/{id}   Update name / base price
    DELETE /api/properties/{pid}/room-types/{id}   Delete room type

  Rules:
    GET    /api/properties/{pid}/rules             List rules (all, incl. inactive)
    POST   /api/properties/{pid}/rules             Create rule from JSON
    GET    /api/properties/{pid}/rules/{id}        Get rule
    PUT    /api/properties/{pid}/rules/{id}        Replace rule
    DELETE /api/properties/{pid}/rules/{id}        Delete rule
    POST   /api/properties/{pid}/rules/{id}/activate
    POST   /api/properties/{pid}/rules/{id}/deactivate

  Quotes:
    GET    /api/properties/{pid}/quote?room_type=doble&date=2024-07-15[&mode=stacked]
    GET    /api/properties/{pid}/stay-quote?room_type=doble&check_in=...&check_out=...

ERROR HANDLING:
  Errors are returned as JSON {"error", "details"} with a status chosen by
  statusFor:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Duplicate ID on create
  - 500: Internal errors (logged)

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
	"github.com/warp/rate-engine/factory"
	"github.com/warp/rate-engine/hotel"
	"github.com/warp/rate-engine/rates"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// errMalformedBody marks a request body that is not the expected JSON.
var errMalformedBody = errors.New("malformed request body")

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Backend is the persistence surface the handler needs beyond the catalog.
type Backend interface {
	Ping(ctx context.Context) error
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Catalog     *hotel.Catalog
	RuleFactory *factory.RuleFactory
	backend     Backend

	mu              sync.RWMutex
	currentScenario string
}

// NewHandler creates a new handler over catalog. backend serves health checks
// and scenario resets.
func NewHandler(catalog *hotel.Catalog, backend Backend) *Handler {
	return &Handler{
		Catalog:     catalog,
		RuleFactory: factory.NewRuleFactory(),
		backend:     backend,
	}
}

// Health reports whether the store answers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.backend.Ping(r.Context()); err != nil {
		h.fail(w, r, "Store unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// PROPERTY HANDLERS
// =============================================================================

// ListProperties returns all properties.
func (h *Handler) ListProperties(w http.ResponseWriter, r *http.Request) {
	props, err := h.Catalog.ListProperties(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list properties", err)
		return
	}

	dtos := make([]PropertyDTO, len(props))
	for i, p := range props {
		dtos[i] = toPropertyDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateProperty creates a property.
func (h *Handler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var req CreatePropertyRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}

	p, err := h.Catalog.CreateProperty(r.Context(), rates.Property{
		ID:       rates.PropertyID(strings.TrimSpace(req.ID)),
		Name:     strings.TrimSpace(req.Name),
		Currency: rates.Currency(req.Currency),
	})
	if err != nil {
		h.fail(w, r, "Failed to create property", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPropertyDTO(p))
}

// GetProperty returns one property.
func (h *Handler) GetProperty(w http.ResponseWriter, r *http.Request) {
	p, err := h.Catalog.GetProperty(r.Context(), propertyID(r))
	if err != nil {
		h.fail(w, r, "Property not found", err)
		return
	}
	writeJSON(w, http.StatusOK, toPropertyDTO(p))
}

// =============================================================================
// ROOM TYPE HANDLERS
// =============================================================================

// ListRoomTypes returns the room types of a property.
func (h *Handler) ListRoomTypes(w http.ResponseWriter, r *http.Request) {
	rts, err := h.Catalog.ListRoomTypes(r.Context(), propertyID(r))
	if err != nil {
		h.fail(w, r, "Failed to list room types", err)
		return
	}

	dtos := make([]RoomTypeDTO, len(rts))
	for i, rt := range rts {
		dtos[i] = toRoomTypeDTO(rt)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateRoomType creates a room type from {"id","name","base_price"}.
func (h *Handler) CreateRoomType(w http.ResponseWriter, r *http.Request) {
	rt, err := h.decodeRoomType(r)
	if err != nil {
		h.fail(w, r, "Invalid room type", err)
		return
	}

	created, err := h.Catalog.CreateRoomType(r.Context(), propertyID(r), rt)
	if err != nil {
		h.fail(w, r, "Failed to create room type", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRoomTypeDTO(created))
}

// GetRoomType returns one room type.
func (h *Handler) GetRoomType(w http.ResponseWriter, r *http.Request) {
	rt, err := h.Catalog.GetRoomType(r.Context(), propertyID(r), rates.RoomTypeID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, r, "Room type not found", err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomTypeDTO(rt))
}

// UpdateRoomType replaces name and base price. The URL id wins over the body.
func (h *Handler) UpdateRoomType(w http.ResponseWriter, r *http.Request) {
	rt, err := h.decodeRoomType(r)
	if err != nil {
		h.fail(w, r, "Invalid room type", err)
		return
	}
	rt.ID = rates.RoomTypeID(chi.URLParam(r, "id"))

	updated, err := h.Catalog.UpdateRoomType(r.Context(), propertyID(r), rt)
	if err != nil {
		h.fail(w, r, "Failed to update room type", err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomTypeDTO(updated))
}

// DeleteRoomType deletes a room type. Rules naming it stay in place and
// simply stop matching anything priced for it.
func (h *Handler) DeleteRoomType(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteRoomType(r.Context(), propertyID(r), rates.RoomTypeID(chi.URLParam(r, "id"))); err != nil {
		h.fail(w, r, "Failed to delete room type", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeRoomType(r *http.Request) (rates.RoomType, error) {
	var rj factory.RoomTypeJSON
	if err := decodeJSON(r, &rj); err != nil {
		return rates.RoomType{}, err
	}
	// Currency is set by the catalog from the property.
	return h.RuleFactory.RoomTypeFromJSON(rj, "")
}

// =============================================================================
// RULE HANDLERS
// =============================================================================

// ListRules returns every rule of a property, inactive ones included.
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.Catalog.ListRules(r.Context(), propertyID(r))
	if err != nil {
		h.fail(w, r, "Failed to list rules", err)
		return
	}

	dtos := make([]RuleDTO, len(rules))
	for i, rule := range rules {
		dtos[i] = toRuleDTO(h.RuleFactory, rule)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateRule creates a rule from its JSON document.
func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	rule, err := h.parseRule(r)
	if err != nil {
		h.fail(w, r, "Invalid rule", err)
		return
	}

	created, err := h.Catalog.CreateRule(r.Context(), propertyID(r), rule)
	if err != nil {
		h.fail(w, r, "Failed to create rule", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRuleDTO(h.RuleFactory, created))
}

// GetRule returns one rule.
func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	rule, err := h.Catalog.GetRule(r.Context(), propertyID(r), ruleID(r))
	if err != nil {
		h.fail(w, r, "Rule not found", err)
		return
	}
	writeJSON(w, http.StatusOK, toRuleDTO(h.RuleFactory, rule))
}

// UpdateRule replaces a rule. The URL id wins over the body.
func (h *Handler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	rule, err := h.parseRule(r)
	if err != nil {
		h.fail(w, r, "Invalid rule", err)
		return
	}
	rule.ID = ruleID(r)

	updated, err := h.Catalog.UpdateRule(r.Context(), propertyID(r), rule)
	if err != nil {
		h.fail(w, r, "Failed to update rule", err)
		return
	}
	writeJSON(w, http.StatusOK, toRuleDTO(h.RuleFactory, updated))
}

// DeleteRule deletes a rule.
func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteRule(r.Context(), propertyID(r), ruleID(r)); err != nil {
		h.fail(w, r, "Failed to delete rule", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ActivateRule turns a rule on.
func (h *Handler) ActivateRule(w http.ResponseWriter, r *http.Request) {
	h.setRuleActive(w, r, true)
}

// DeactivateRule turns a rule off without deleting it.
func (h *Handler) DeactivateRule(w http.ResponseWriter, r *http.Request) {
	h.setRuleActive(w, r, false)
}

func (h *Handler) setRuleActive(w http.ResponseWriter, r *http.Request, active bool) {
	rule, err := h.Catalog.SetRuleActive(r.Context(), propertyID(r), ruleID(r), active)
	if err != nil {
		h.fail(w, r, "Failed to update rule", err)
		return
	}
	writeJSON(w, http.StatusOK, toRuleDTO(h.RuleFactory, rule))
}

func (h *Handler) parseRule(r *http.Request) (rates.PricingRule, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return rates.PricingRule{}, fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return h.RuleFactory.ParseRule(body)
}

// =============================================================================
// QUOTE HANDLERS
// =============================================================================

// GetQuote prices one night.
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	date, err := queryDate(r, "date")
	if err != nil {
		h.fail(w, r, "Invalid quote request", err)
		return
	}
	mode, err := hotel.ParseMode(q.Get("mode"))
	if err != nil {
		h.fail(w, r, "Invalid quote request", err)
		return
	}
	roomType, err := queryRoomType(r)
	if err != nil {
		h.fail(w, r, "Invalid quote request", err)
		return
	}

	quote, err := h.Catalog.Quote(r.Context(), hotel.QuoteRequest{
		PropertyID: propertyID(r),
		RoomTypeID: roomType,
		Date:       date,
		Mode:       mode,
	})
	if err != nil {
		h.fail(w, r, "Failed to quote", err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteDTO(quote))
}

// GetStayQuote prices every night of a stay.
func (h *Handler) GetStayQuote(w http.ResponseWriter, r *http.Request) {
	roomType, err := queryRoomType(r)
	if err != nil {
		h.fail(w, r, "Invalid stay request", err)
		return
	}
	checkIn, err := queryDate(r, "check_in")
	if err != nil {
		h.fail(w, r, "Invalid stay request", err)
		return
	}
	checkOut, err := queryDate(r, "check_out")
	if err != nil {
		h.fail(w, r, "Invalid stay request", err)
		return
	}

	quote, err := h.Catalog.QuoteStay(r.Context(), hotel.StayRequest{
		PropertyID: propertyID(r),
		RoomTypeID: roomType,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
	})
	if err != nil {
		h.fail(w, r, "Failed to quote stay", err)
		return
	}
	writeJSON(w, http.StatusOK, toStayQuoteDTO(quote))
}

// =============================================================================
// HELPERS
// =============================================================================

func propertyID(r *http.Request) rates.PropertyID {
	return rates.PropertyID(chi.URLParam(r, "pid"))
}

func ruleID(r *http.Request) rates.RuleID {
	return rates.RuleID(chi.URLParam(r, "id"))
}

func queryRoomType(r *http.Request) (rates.RoomTypeID, error) {
	id := strings.TrimSpace(r.URL.Query().Get("room_type"))
	if id == "" {
		return "", fmt.Errorf("%w: room_type is required", hotel.ErrInvalidQuote)
	}
	return rates.RoomTypeID(id), nil
}

func queryDate(r *http.Request, name string) (rates.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return rates.Date{}, fmt.Errorf("%w: %s is required", hotel.ErrInvalidQuote, name)
	}
	d, err := rates.ParseDate(raw)
	if err != nil {
		return rates.Date{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", hotel.ErrInvalidQuote, name)
	}
	return d, nil
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case rates.IsNotFound(err):
		return http.StatusNotFound
	case hotel.IsConflict(err):
		return http.StatusConflict
	case hotel.IsClientError(err), errors.Is(err, errMalformedBody), errors.Is(err, errUnknownScenario):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with the status statusFor picks. Server errors are logged.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg(message)
	}
	writeError(w, status, message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
