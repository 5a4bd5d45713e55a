package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jesseadams/waterwaycleanups.org-sub003/internal/platform/metrics"
)

// RouterDeps carries everything the router wires together.
type RouterDeps struct {
	RSVP        RSVPSubmitter
	Cancel      ReservationCanceller
	Reader      ReservationReader
	Admin       EventAdmin
	Verifier    *TokenVerifier
	Logger      *log.Logger
	Metrics     *metrics.Metrics
	CORSOrigins []string
}

// NewRouter assembles the public API. Submissions accept an optional session
// token (the requester email in the body is the anonymous fallback);
// cancellations always require one.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", HealthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/events/{eventID}/rsvps", func(r chi.Router) {
		r.With(deps.Verifier.OptionalIdentity).Post("/", HandleSubmitRSVP(deps.RSVP))
		r.With(deps.Verifier.RequireIdentity).Delete("/", HandleCancelRSVP(deps.Cancel))
		r.Get("/", HandleListRSVPs(deps.Reader))
		r.Get("/check", HandleCheckRSVP(deps.Reader))
	})

	r.Route("/admin/events", func(r chi.Router) {
		r.Post("/", HandleCreateEvent(deps.Admin))
		r.Get("/", HandleListEvents(deps.Admin))
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	})

	var handler http.Handler = r
	handler = ObserveRequests(handler, deps.Metrics)
	handler = CORS(deps.CORSOrigins, handler)
	handler = RequestLogger(handler, deps.Logger)
	return handler
}
