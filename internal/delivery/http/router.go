package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"ministryroster/internal/delivery/http/controllers"
	"ministryroster/internal/delivery/http/middleware"
	"ministryroster/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	eventController *controllers.EventController,
	invitationController *controllers.InvitationController,
	musicianController *controllers.MusicianController,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Events
	mux.HandleFunc("POST /events", auth(eventController.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", auth(eventController.GetEvent))
	mux.HandleFunc("POST /events/{eventID}/invitations", auth(eventController.SendInvitations))
	mux.HandleFunc("GET /events/{eventID}/invitations", auth(eventController.ListEventInvitations))
	mux.HandleFunc("POST /events/{eventID}/cancel", auth(eventController.CancelEvent))
	mux.HandleFunc("POST /events/{eventID}/roster/suggestions", auth(eventController.SuggestRoster))

	// Invitations
	mux.HandleFunc("POST /invitations/{invitationID}/respond", auth(invitationController.Respond))
	mux.HandleFunc("GET /invitations", auth(invitationController.ListMyInvitations))

	// Musicians
	mux.HandleFunc("GET /musicians/me", auth(musicianController.GetMe))
	mux.HandleFunc("PUT /musicians/me/availability", auth(musicianController.UpdateAvailability))
	mux.HandleFunc("PUT /musicians/me/skills", auth(musicianController.UpdateSkills))
	mux.HandleFunc("GET /musicians/me/stats", auth(musicianController.Stats))
	mux.HandleFunc("GET /musicians/me/penalties", auth(musicianController.ListPenaltyHistory))
	mux.HandleFunc("GET /musicians/me/points", auth(musicianController.ListPointHistory))
	mux.HandleFunc("GET /musicians/me/achievements", auth(musicianController.ListAchievements))
	mux.HandleFunc("POST /musicians/guests/invitations", auth(musicianController.InviteGuest))
	mux.HandleFunc("POST /musicians/guests/redeem", musicianController.RedeemGuestCode)

	// Operational
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
