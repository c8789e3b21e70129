package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ministryroster/internal/delivery/http/helpers"
	"ministryroster/internal/delivery/http/middleware"
	"ministryroster/internal/domain"
)

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title     string     `json:"title"`
	EventType string     `json:"event_type"`
	Location  string     `json:"location"`
	Date      time.Time  `json:"date"`
	EndTime   *time.Time `json:"end_time"`
}

// Validate implements Validator. Returns error messages for required and format rules.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if c.Date.IsZero() {
		errs = append(errs, "date is required")
	}
	if c.EndTime != nil && !c.EndTime.After(c.Date) {
		errs = append(errs, "end_time must be after date")
	}
	return errs
}

// CreateEventSuccessResponse is the success response envelope for POST /events (201).
type CreateEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Create a new DRAFT event for the caller's church. Only admins and worship directors can create events. The authenticated user becomes the event creator.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.CreateEventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not a director)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	now := time.Now()
	event := domain.NewEvent(caller.ChurchID, caller.UserID, req.Title, req.EventType, req.Location, req.Date, req.EndTime, now)
	if err := c.Service.CreateEvent(r.Context(), caller, event); err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetEventSuccessResponse is the success response envelope for GET /events/{eventID} (200).
type GetEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns the event. Events from other churches are reported as not found. Requires authentication.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.GetEventSuccessResponse "data contains the event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	caller, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, err := c.Service.GetEvent(r.Context(), caller, eventID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// SendInvitationsRequest is the request body for POST /events/{eventID}/invitations.
type SendInvitationsRequest struct {
	Invitations []domain.InvitationRequest `json:"invitations"`
}

// Validate implements Validator.
func (s SendInvitationsRequest) Validate() []string {
	var errs []string
	if len(s.Invitations) == 0 {
		errs = append(errs, "invitations is required")
	}
	for _, inv := range s.Invitations {
		if strings.TrimSpace(inv.MusicianID) == "" {
			errs = append(errs, "musician_id is required for every invitation")
			break
		}
	}
	for _, inv := range s.Invitations {
		if strings.TrimSpace(inv.Role) == "" {
			errs = append(errs, "role is required for every invitation")
			break
		}
	}
	return errs
}

// SendInvitationsResponse is the data payload for POST /events/{eventID}/invitations (201).
type SendInvitationsResponse struct {
	Created []*domain.Invitation `json:"created"`
	Skipped int                  `json:"skipped"`
}

// SendInvitationsSuccessResponse is the success response envelope for POST /events/{eventID}/invitations (201).
type SendInvitationsSuccessResponse struct {
	Data  SendInvitationsResponse `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// SendInvitations godoc
// @Summary Send invitations for an event
// @Description Creates one PENDING invitation per musician and notifies each invitee. A DRAFT event becomes PUBLISHED when at least one invitation is created. Musicians already invited to the event and musicians currently blocked are skipped, not errors. Only admins and worship directors can invite.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body SendInvitationsRequest true "Musicians to invite with their roles"
// @Success 201 {object} controllers.SendInvitationsSuccessResponse "data contains created invitations and skipped count"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not a director)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: invalid_transition (event cancelled or completed)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/invitations [post]
func (c *EventController) SendInvitations(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req SendInvitationsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	created, err := c.Service.SendInvitations(r.Context(), caller, eventID, req.Invitations)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	if created == nil {
		created = []*domain.Invitation{}
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, SendInvitationsResponse{
		Created: created,
		Skipped: len(req.Invitations) - len(created),
	})
}

// CancelEventRequest is the request body for POST /events/{eventID}/cancel.
type CancelEventRequest struct {
	Reason         string `json:"reason"`
	ForgivePenalty bool   `json:"forgive_penalty"`
}

// Validate implements Validator.
func (c CancelEventRequest) Validate() []string {
	if strings.TrimSpace(c.Reason) == "" {
		return []string{"reason is required"}
	}
	return nil
}

// CancelEventSuccessResponse is the success response envelope for POST /events/{eventID}/cancel (200).
type CancelEventSuccessResponse struct {
	Data  *domain.CancelEventResult `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// CancelEvent godoc
// @Summary Cancel an event
// @Description Cancels the event and all its PENDING and CONFIRMED invitations in one transaction. Director-initiated cancellation never applies penalty points to musicians; forgive_penalty only changes notification wording. Only admins and worship directors can cancel.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body CancelEventRequest true "Cancellation reason"
// @Success 200 {object} controllers.CancelEventSuccessResponse "data contains the count of cancelled invitations"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not a director)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: invalid_transition (already cancelled)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/cancel [post]
func (c *EventController) CancelEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req CancelEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	result, err := c.Service.CancelEvent(r.Context(), caller, eventID, req.Reason, req.ForgivePenalty)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// ListEventInvitationsResponse is the data payload for GET /events/{eventID}/invitations (200).
type ListEventInvitationsResponse struct {
	Items      []*domain.Invitation   `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListEventInvitationsSuccessResponse is the success response envelope for GET /events/{eventID}/invitations (200).
type ListEventInvitationsSuccessResponse struct {
	Data  ListEventInvitationsResponse `json:"data"`
	Error *helpers.APIError            `json:"error"`
}

// ListEventInvitations godoc
// @Summary List invitations for an event
// @Description Returns a paginated list of the event's invitations. Use page and page_size query params. Optional search filters by musician name or role (case-insensitive). Only admins and worship directors can list.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param search query string false "Filter by musician name or role (case-insensitive)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventInvitationsSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not a director)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/invitations [get]
func (c *EventController) ListEventInvitations(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	caller, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	params := helpers.ParsePagination(r)
	list, total, err := c.Service.ListEventInvitations(r.Context(), caller, eventID, search, params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	if list == nil {
		list = []*domain.Invitation{}
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventInvitationsResponse{Items: list, Pagination: meta})
}

// SuggestRosterRequest is the request body for POST /events/{eventID}/roster/suggestions.
// Needs maps a role name to the number of musicians required for it.
type SuggestRosterRequest struct {
	Needs domain.RosterNeeds `json:"needs"`
}

// Validate implements Validator.
func (s SuggestRosterRequest) Validate() []string {
	var errs []string
	if len(s.Needs) == 0 {
		errs = append(errs, "needs is required")
	}
	for role, count := range s.Needs {
		if strings.TrimSpace(role) == "" {
			errs = append(errs, "role names cannot be empty")
			break
		}
		if count <= 0 {
			errs = append(errs, "needs counts must be positive")
			break
		}
	}
	return errs
}

// SuggestRosterSuccessResponse is the success response envelope for POST /events/{eventID}/roster/suggestions (200).
type SuggestRosterSuccessResponse struct {
	Data  *domain.RosterSuggestion `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// SuggestRoster godoc
// @Summary Suggest a roster for an event
// @Description Computes a greedy roster suggestion for the event from the church's free musicians, ranked by ascending penalty points. Blocked, unavailable, and double-booked musicians are excluded with reasons. Unmet demand is reported in unfilled. The suggestion is not persisted. Only admins and worship directors can request suggestions.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body SuggestRosterRequest true "Role demands, e.g. {\"needs\": {\"singer\": 2, \"guitar\": 1}}"
// @Success 200 {object} controllers.SuggestRosterSuccessResponse "data contains assignments, exclusions, and unfilled roles"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not a director)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/roster/suggestions [post]
func (c *EventController) SuggestRoster(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req SuggestRosterRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	suggestion, err := c.Service.SuggestRoster(r.Context(), caller, eventID, req.Needs)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, suggestion)
}
