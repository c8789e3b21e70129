package controllers

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"ministryroster/internal/delivery/http/helpers"
	"ministryroster/internal/delivery/http/middleware"
	"ministryroster/internal/domain"
)

// emailRegex matches a simple email format (local@domain with at least one dot in domain).
var emailRegex = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// slotLabelRegex matches an availability slot label, e.g. sunday_morning.
var slotLabelRegex = regexp.MustCompile(`^(monday|tuesday|wednesday|thursday|friday|saturday|sunday)_(morning|afternoon|evening)$`)

type MusicianController struct {
	Logger  *slog.Logger
	Service domain.MusicianService
}

func NewMusicianController(logger *slog.Logger, svc domain.MusicianService) *MusicianController {
	return &MusicianController{
		Logger:  logger,
		Service: svc,
	}
}

// GetMeSuccessResponse is the success response envelope for GET /musicians/me (200).
type GetMeSuccessResponse struct {
	Data  *domain.Musician  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetMe godoc
// @Summary Get the caller's musician profile
// @Description Returns the authenticated musician's full profile, including availability, skills, penalty state, and gamification totals.
// @Tags musicians
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.GetMeSuccessResponse "data contains the musician"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /musicians/me [get]
func (c *MusicianController) GetMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	musician, err := c.Service.Get(r.Context(), caller, caller.UserID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, musician)
}

// UpdateAvailabilityRequest is the request body for PUT /musicians/me/availability.
// Availability maps slot labels (e.g. sunday_morning) to whether the musician
// is available. Slots omitted from the map default to available.
type UpdateAvailabilityRequest struct {
	Availability map[string]bool `json:"availability"`
}

// Validate implements Validator.
func (u UpdateAvailabilityRequest) Validate() []string {
	var errs []string
	if u.Availability == nil {
		errs = append(errs, "availability is required")
	}
	for slot := range u.Availability {
		if !slotLabelRegex.MatchString(slot) {
			errs = append(errs, "slot labels must look like sunday_morning (weekday_period)")
			break
		}
	}
	return errs
}

// UpdateAvailability godoc
// @Summary Update the caller's weekly availability
// @Description Replaces the authenticated musician's availability map. Keys are weekday_period slot labels (e.g. sunday_morning, wednesday_evening); values mark the slot available or not. Slots absent from the map are treated as available.
// @Tags musicians
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateAvailabilityRequest true "Availability map"
// @Success 200 {object} controllers.GetMeSuccessResponse "data contains the updated musician"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /musicians/me/availability [put]
func (c *MusicianController) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	var req UpdateAvailabilityRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	musician, err := c.Service.UpdateAvailability(r.Context(), caller, req.Availability)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, musician)
}

// UpdateSkillsRequest is the request body for PUT /musicians/me/skills.
type UpdateSkillsRequest struct {
	Instruments []string `json:"instruments"`
	VocalParts  []string `json:"vocal_parts"`
}

// Validate implements Validator.
func (u UpdateSkillsRequest) Validate() []string {
	var errs []string
	for _, inst := range u.Instruments {
		if strings.TrimSpace(inst) == "" {
			errs = append(errs, "instruments cannot contain empty entries")
			break
		}
	}
	for _, part := range u.VocalParts {
		if strings.TrimSpace(part) == "" {
			errs = append(errs, "vocal_parts cannot contain empty entries")
			break
		}
	}
	return errs
}

// UpdateSkills godoc
// @Summary Update the caller's instruments and vocal parts
// @Description Replaces the authenticated musician's instrument and vocal part lists. A musician with at least one vocal part can cover the singer role; instruments cover their own roles.
// @Tags musicians
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateSkillsRequest true "Instrument and vocal part lists"
// @Success 200 {object} controllers.GetMeSuccessResponse "data contains the updated musician"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /musicians/me/skills [put]
func (c *MusicianController) UpdateSkills(w http.ResponseWriter, r *http.Request) {
	var req UpdateSkillsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	musician, err := c.Service.UpdateSkills(r.Context(), caller, req.Instruments, req.VocalParts)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, musician)
}

// StatsSuccessResponse is the success response envelope for GET /musicians/me/stats (200).
type StatsSuccessResponse struct {
	Data  *domain.MusicianStats `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// Stats godoc
// @Summary Get the caller's reliability and gamification stats
// @Description Returns the authenticated musician's level, next level threshold, current penalty points, and whether a block is in effect right now.
// @Tags musicians
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.StatsSuccessResponse "data contains the stats"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /musicians/me/stats [get]
func (c *MusicianController) Stats(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	stats, err := c.Service.Stats(r.Context(), caller)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}

// ListPenaltyHistoryResponse is the data payload for GET /musicians/me/penalties (200).
type ListPenaltyHistoryResponse struct {
	Items      []*domain.PenaltyHistoryEntry `json:"items"`
	Pagination helpers.PaginationMeta        `json:"pagination"`
}

// ListPenaltyHistorySuccessResponse is the success response envelope for GET /musicians/me/penalties (200).
type ListPenaltyHistorySuccessResponse struct {
	Data  ListPenaltyHistoryResponse `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// ListPenaltyHistory godoc
// @Summary List the caller's penalty history
// @Description Returns a paginated audit trail of the authenticated musician's penalty point entries, newest first.
// @Tags musicians
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListPenaltyHistorySuccessResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /musicians/me/penalties [get]
func (c *MusicianController) ListPenaltyHistory(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	params := helpers.ParsePagination(r)
	list, total, err := c.Service.ListPenaltyHistory(r.Context(), caller, params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	if list == nil {
		list = []*domain.PenaltyHistoryEntry{}
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListPenaltyHistoryResponse{Items: list, Pagination: meta})
}

// ListPointHistoryResponse is the data payload for GET /musicians/me/points (200).
type ListPointHistoryResponse struct {
	Items      []*domain.PointHistoryEntry `json:"items"`
	Pagination helpers.PaginationMeta      `json:"pagination"`
}

// ListPointHistorySuccessResponse is the success response envelope for GET /musicians/me/points (200).
type ListPointHistorySuccessResponse struct {
	Data  ListPointHistoryResponse `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// ListPointHistory godoc
// @Summary List the caller's point history
// @Description Returns a paginated audit trail of the authenticated musician's point grants, newest first.
// @Tags musicians
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListPointHistorySuccessResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /musicians/me/points [get]
func (c *MusicianController) ListPointHistory(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	params := helpers.ParsePagination(r)
	list, total, err := c.Service.ListPointHistory(r.Context(), caller, params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	if list == nil {
		list = []*domain.PointHistoryEntry{}
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListPointHistoryResponse{Items: list, Pagination: meta})
}

// ListAchievementsSuccessResponse is the success response envelope for GET /musicians/me/achievements (200).
type ListAchievementsSuccessResponse struct {
	Data  []*domain.UnlockedAchievement `json:"data"`
	Error *helpers.APIError             `json:"error"`
}

// ListAchievements godoc
// @Summary List the caller's unlocked achievements
// @Description Returns all achievements the authenticated musician has unlocked, with unlock timestamps.
// @Tags musicians
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListAchievementsSuccessResponse "data is an array of unlocked achievements"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /musicians/me/achievements [get]
func (c *MusicianController) ListAchievements(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	list, err := c.Service.ListAchievements(r.Context(), caller)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	if list == nil {
		list = []*domain.UnlockedAchievement{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, list)
}

// InviteGuestRequest is the request body for POST /musicians/guests/invitations.
// ExpiryHours defaults to 72 when omitted or zero.
type InviteGuestRequest struct {
	Email       string `json:"email"`
	ExpiryHours int    `json:"expiry_hours"`
}

// Validate implements Validator.
func (i InviteGuestRequest) Validate() []string {
	var errs []string
	if i.Email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegex.MatchString(strings.TrimSpace(i.Email)) {
		errs = append(errs, "email must be a valid email address")
	}
	if i.ExpiryHours < 0 {
		errs = append(errs, "expiry_hours must be non-negative")
	}
	return errs
}

// InviteGuestResponse is the data payload for POST /musicians/guests/invitations (201).
type InviteGuestResponse struct {
	Status string `json:"status"`
}

// InviteGuestSuccessResponse is the success response envelope for POST /musicians/guests/invitations (201).
type InviteGuestSuccessResponse struct {
	Data  InviteGuestResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// InviteGuest godoc
// @Summary Invite a guest musician
// @Description Issues a short-lived access code for a musician from another church and emails it to them. The code expires after expiry_hours (default 72). Only admins and worship directors can invite guests.
// @Tags musicians
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body InviteGuestRequest true "Guest email and optional expiry"
// @Success 201 {object} controllers.InviteGuestSuccessResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not a director)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /musicians/guests/invitations [post]
func (c *MusicianController) InviteGuest(w http.ResponseWriter, r *http.Request) {
	var req InviteGuestRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	expiry := time.Duration(req.ExpiryHours) * time.Hour
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := c.Service.InviteGuestMusician(r.Context(), caller, email, expiry); err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, InviteGuestResponse{Status: "invitation sent"})
}

// RedeemGuestCodeRequest is the request body for POST /musicians/guests/redeem.
type RedeemGuestCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Validate implements Validator.
func (g RedeemGuestCodeRequest) Validate() []string {
	var errs []string
	if g.Email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegex.MatchString(strings.TrimSpace(g.Email)) {
		errs = append(errs, "email must be a valid email address")
	}
	if strings.TrimSpace(g.Code) == "" {
		errs = append(errs, "code is required")
	}
	return errs
}

// RedeemGuestCodeSuccessResponse is the success response envelope for POST /musicians/guests/redeem (200).
type RedeemGuestCodeSuccessResponse struct {
	Data  *domain.Musician  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RedeemGuestCode godoc
// @Summary Redeem a guest access code
// @Description Validates a guest access code against the email it was issued for and returns the guest musician record admitted into the inviting church's pool. Codes are single use and expire. This endpoint does not require authentication.
// @Tags musicians
// @Accept json
// @Produce json
// @Param body body RedeemGuestCodeRequest true "Guest email and access code"
// @Success 200 {object} controllers.RedeemGuestCodeSuccessResponse "data contains the guest musician"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no valid code for that email)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (code already consumed)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /musicians/guests/redeem [post]
func (c *MusicianController) RedeemGuestCode(w http.ResponseWriter, r *http.Request) {
	var req RedeemGuestCodeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	musician, err := c.Service.RedeemGuestCode(r.Context(), email, strings.TrimSpace(req.Code))
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, musician)
}
