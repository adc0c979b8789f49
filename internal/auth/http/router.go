package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sableforge/authd/internal/auth/service"
	"github.com/sableforge/authd/internal/auth/store"
	"github.com/sableforge/authd/pkg/httpx"
	"github.com/sableforge/authd/pkg/jwtx"
	"github.com/sableforge/authd/pkg/slogx"

	_ "github.com/sableforge/authd/api/authd" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	codec        *jwtx.Codec
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	rdb   *redis.Client

	AuthService *service.AuthService
	MFAService  *service.MFAService
}

func NewRouter(
	codec *jwtx.Codec,
	buildVersion string,
	st store.Store,
	rdb *redis.Client,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		codec:        codec,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		rdb:          rdb,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMFA()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Authd Authentication Service API
//	@version		0.1.0
//	@description	Account registration with email activation, credential login with optional
//	@description	TOTP two-factor auth, JWT access/refresh issuance, and password reset.
//	@description	All tokens are HMAC-signed (HS256 family) stateless JWTs.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	signUp := &SignUpHandler{AuthService: r.AuthService}
	signIn := &SignInHandler{AuthService: r.AuthService}
	activation := &ActivationHandler{AuthService: r.AuthService}
	reset := &PasswordResetHandler{AuthService: r.AuthService}

	r.Mux.HandleFunc("POST /v1/auth/sign-up", signUp.Handle)
	r.Mux.HandleFunc("POST /v1/auth/sign-in", signIn.HandleSignIn)
	r.Mux.HandleFunc("POST /v1/auth/sign-in-mfa", signIn.HandleSignInMFA)
	r.Mux.HandleFunc("POST /v1/auth/access", signIn.HandleAccess)
	r.Mux.HandleFunc("GET /v1/auth/activate-account", activation.HandleActivate)
	r.Mux.HandleFunc("POST /v1/auth/send-activation-email", activation.HandleSendEmail)
	r.Mux.HandleFunc("POST /v1/auth/request-password-reset", reset.HandleRequest)
	r.Mux.HandleFunc("POST /v1/auth/reset-password", reset.HandleReset)
}

func (r *Router) registerMFA() {
	mfa := &MFAHandler{MFAService: r.MFAService}
	bearer := requireBearer(r.codec)

	r.Mux.Handle("POST /v1/auth/enable-2fa",
		httpx.Chain(http.HandlerFunc(mfa.HandleEnable), bearer))
	r.Mux.Handle("POST /v1/auth/disable-2fa",
		httpx.Chain(http.HandlerFunc(mfa.HandleDisable), bearer))
}

func (r *Router) registerSystem() {
	r.Mux.HandleFunc("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.HandleFunc("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.rdb))
}
