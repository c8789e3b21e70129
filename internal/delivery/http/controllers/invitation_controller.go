package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"ministryroster/internal/delivery/http/helpers"
	"ministryroster/internal/delivery/http/middleware"
	"ministryroster/internal/domain"
)

type InvitationController struct {
	Logger  *slog.Logger
	Service domain.InvitationService
}

func NewInvitationController(logger *slog.Logger, svc domain.InvitationService) *InvitationController {
	return &InvitationController{
		Logger:  logger,
		Service: svc,
	}
}

// RespondRequest is the request body for POST /invitations/{invitationID}/respond.
// Action is one of confirm, decline, cancel. Reason is required for cancel.
type RespondRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// Validate implements Validator.
func (r RespondRequest) Validate() []string {
	var errs []string
	action := domain.ResponseAction(strings.ToLower(strings.TrimSpace(r.Action)))
	if _, ok := action.TargetStatus(); !ok {
		errs = append(errs, "action must be one of: confirm, decline, cancel")
	}
	if action == domain.ActionCancel && strings.TrimSpace(r.Reason) == "" {
		errs = append(errs, "reason is required when cancelling")
	}
	return errs
}

// RespondSuccessResponse is the success response envelope for POST /invitations/{invitationID}/respond (200).
type RespondSuccessResponse struct {
	Data  *domain.Invitation `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// Respond godoc
// @Summary Respond to an invitation
// @Description Applies the musician's action to the invitation. confirm and decline require PENDING status; cancel requires CONFIRMED status and costs the musician penalty points. Only the invited musician may respond. Blocked musicians cannot confirm. A concurrent response to the same invitation loses with 409.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID"
// @Param body body RespondRequest true "Action (confirm, decline, cancel) and optional reason"
// @Success 200 {object} controllers.RespondSuccessResponse "data contains the updated invitation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not the invitee) or musician_blocked"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (lost a concurrent response)"
// @Failure 422 {object} helpers.APIResponse "error.code: invalid_transition"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{invitationID}/respond [post]
func (c *InvitationController) Respond(w http.ResponseWriter, r *http.Request) {
	invitationID := r.PathValue("invitationID")
	if invitationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing invitationID")
		return
	}
	var req RespondRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	action := domain.ResponseAction(strings.ToLower(strings.TrimSpace(req.Action)))
	invitation, err := c.Service.Respond(r.Context(), caller, invitationID, action, strings.TrimSpace(req.Reason))
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, invitation)
}

// ListMyInvitationsResponse is the data payload for GET /invitations (200).
type ListMyInvitationsResponse struct {
	Items      []*domain.InvitationWithEvent `json:"items"`
	Pagination helpers.PaginationMeta        `json:"pagination"`
}

// ListMyInvitationsSuccessResponse is the success response envelope for GET /invitations (200).
type ListMyInvitationsSuccessResponse struct {
	Data  ListMyInvitationsResponse `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// ListMyInvitations godoc
// @Summary List the caller's invitations
// @Description Returns a paginated list of the authenticated musician's invitations with their events, newest first. Use page and page_size query params.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListMyInvitationsSuccessResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations [get]
func (c *InvitationController) ListMyInvitations(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	params := helpers.ParsePagination(r)
	list, total, err := c.Service.ListMyInvitations(r.Context(), caller, params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	if list == nil {
		list = []*domain.InvitationWithEvent{}
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListMyInvitationsResponse{Items: list, Pagination: meta})
}
