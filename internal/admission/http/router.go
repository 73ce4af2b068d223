package http

import (
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/openfoyer/foyer/api/admission" // Swagger docs
	"github.com/openfoyer/foyer/internal/admission/service"
	"github.com/openfoyer/foyer/internal/admission/store"
	"github.com/openfoyer/foyer/pkg/httpx"
	"github.com/openfoyer/foyer/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	adminSecret  []byte
	adminIssuer  string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	InviteService  *service.InviteService
	ProfileService *service.ProfileService
}

func NewRouter(
	adminSecret []byte,
	adminIssuer, buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		adminSecret:  adminSecret,
		adminIssuer:  adminIssuer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerInvites()
	r.registerRedemption()
	r.registerProfiles()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
//
//	@title			Foyer Admission Service API
//	@version		0.1.0
//	@description	Invite-gated admission control for a media server: administrators mint
//	@description	invite codes bound to access profiles; prospective users verify and
//	@description	consume codes during registration.
//
//	@contact.name	Foyer Maintainers
//	@contact.url	https://github.com/openfoyer/foyer
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Admin JWT minted by the surrounding application. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// adminRead gates a handler behind authn + the read scope.
func (r *Router) adminRead(h http.Handler) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.adminSecret, r.adminIssuer),
		httpx.RequireAnyScope("admission:read"),
		httpx.RateLimitByAdmin(httpx.LenientLimit),
	)
}

// adminWrite gates a handler behind authn + the write scope.
func (r *Router) adminWrite(h http.Handler) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.adminSecret, r.adminIssuer),
		httpx.RequireAnyScope("admission:write"),
		httpx.RateLimitByAdmin(httpx.ModerateLimit),
	)
}

func (r *Router) registerInvites() {
	h := &InvitesHandler{InviteService: r.InviteService}

	r.Mux.Handle("POST /v1/invites", r.adminWrite(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /v1/invites", r.adminRead(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("GET /v1/invites/{id}", r.adminRead(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("PATCH /v1/invites/{id}", r.adminWrite(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("DELETE /v1/invites/{id}", r.adminWrite(http.HandlerFunc(h.HandleDelete)))
}

func (r *Router) registerRedemption() {
	verifyHandler := &InviteVerifyHandler{InviteService: r.InviteService}
	consumeHandler := &InviteConsumeHandler{InviteService: r.InviteService}

	// Public endpoints: these run before the user exists, so they are
	// unauthenticated by design and strictly rate limited by IP to blunt
	// code guessing.
	r.Mux.Handle("POST /v1/invites/verify",
		httpx.Chain(verifyHandler, httpx.RateLimitByIP(httpx.StrictLimit)))
	r.Mux.Handle("POST /v1/invites/consume",
		httpx.Chain(consumeHandler, httpx.RateLimitByIP(httpx.StrictLimit)))
}

func (r *Router) registerProfiles() {
	h := &ProfilesHandler{ProfileService: r.ProfileService}

	r.Mux.Handle("POST /v1/profiles", r.adminWrite(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /v1/profiles", r.adminRead(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("GET /v1/profiles/{id}", r.adminRead(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("PATCH /v1/profiles/{id}", r.adminWrite(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("DELETE /v1/profiles/{id}", r.adminWrite(http.HandlerFunc(h.HandleDelete)))
	r.Mux.Handle("PUT /v1/profiles/{id}/default", r.adminWrite(http.HandlerFunc(h.HandleSetDefault)))
	r.Mux.Handle("GET /v1/profiles/{id}/invites", r.adminRead(http.HandlerFunc(h.HandleInvites)))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
