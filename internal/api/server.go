package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/desslyhub/platform/internal/api/handler"
	mw "github.com/desslyhub/platform/internal/api/middleware"
	"github.com/desslyhub/platform/internal/auth"
	"github.com/desslyhub/platform/internal/config"
	"github.com/desslyhub/platform/internal/core"
	"github.com/desslyhub/platform/internal/model"
	"github.com/desslyhub/platform/internal/policy"
	"github.com/desslyhub/platform/internal/vault"
	"github.com/desslyhub/platform/internal/ws"
)

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	services *core.Services
	pool     *pgxpool.Pool
	cfg      *config.Config
	vault    *vault.Vault
	policy   *policy.Store
	engine   *auth.Engine
	manager  *ws.Manager
}

func NewServer(logger zerolog.Logger, pool *pgxpool.Pool, cfg *config.Config, pol *policy.Store, v *vault.Vault) *Server {
	services := core.NewServices(pool, v)
	engine := auth.NewEngine(services.APIToken, services.Allowlist, services.Audit, pol, v, logger)

	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		services: services,
		pool:     pool,
		cfg:      cfg,
		vault:    v,
		policy:   pol,
		engine:   engine,
		manager:  ws.NewManager(logger),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health checks and login need no credential.
	health := handler.NewHealth(s.pool)
	s.router.Get("/ping", health.Ping)
	s.router.Get("/healthz", health.Healthz)
	s.router.Get("/readyz", health.Readyz)

	session := handler.NewSession(
		s.vault,
		s.cfg.OperatorUsername,
		s.cfg.OperatorPassword,
		time.Duration(s.cfg.SessionTTLMinutes)*time.Minute,
		s.logger,
	)
	s.router.Post("/auth/login", session.Login)
	s.router.Post("/auth/logout", session.Logout)

	// The persistent connection endpoint runs its own authorization so a
	// refusal can be delivered as a close frame after the upgrade.
	dispatcher := ws.NewDispatcher(s.logger, map[string]ws.HandlerFunc{
		"ping":       ws.HandlePing,
		"policy/get": ws.PolicyGetHandler(s.policy),
	})
	wsHandler := handler.NewWS(s.engine, s.manager, dispatcher, s.logger)
	s.router.Get("/ws", wsHandler.Serve)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Authorize(s.engine))

		authH := handler.NewAuth(s.services.User)
		r.Get("/auth/check", authH.Check)
		r.Get("/auth/me", authH.Me)
		r.With(mw.RequireTier(model.AccessLevelFull)).Get("/auth/levels", authH.Levels)

		user := handler.NewUser(s.services.User, s.services.APIToken)
		r.With(mw.RequireTier(model.AccessLevelManage)).Get("/auth/users", user.List)
		r.With(mw.RequireTier(model.AccessLevelManage)).Post("/auth/users", user.Register)
		r.With(mw.RequireTier(model.AccessLevelManage)).Get("/auth/users/search", user.Search)
		r.With(mw.RequireTier(model.AccessLevelManage)).Get("/auth/users/{uuid}", user.Get)
		r.With(mw.RequireTier(model.AccessLevelFull)).Put("/auth/users/{uuid}", user.Update)

		token := handler.NewToken(s.services.APIToken)
		r.With(mw.RequireTier(model.AccessLevelManage)).Post("/auth/users/{uuid}/tokens", token.Create)
		r.With(mw.RequireTier(model.AccessLevelManage)).Get("/auth/tokens/{uuid}", token.Get)
		r.With(mw.RequireTier(model.AccessLevelFull)).Put("/auth/tokens/{uuid}", token.Update)
		r.With(mw.RequireTier(model.AccessLevelManage)).Delete("/auth/tokens/{uuid}", token.Delete)

		whitelist := handler.NewWhitelist(s.services.Allowlist)
		r.Get("/whitelist", whitelist.List)
		r.With(mw.RequireTier(model.AccessLevelManage)).Post("/whitelist", whitelist.Add)
		r.With(mw.RequireTier(model.AccessLevelFull)).Delete("/whitelist/{id}", whitelist.Remove)

		audit := handler.NewAudit(s.services.Audit)
		r.With(mw.RequireTier(model.AccessLevelFull)).Get("/audit", audit.List)

		pol := handler.NewPolicy(s.policy)
		r.With(mw.RequireTier(model.AccessLevelFull)).Get("/policy", pol.Get)
		r.With(mw.RequireTier(model.AccessLevelFull)).Put("/policy/{key}", pol.Set)
	})
}

// Manager exposes the live connection set, for broadcasts initiated outside
// the request path.
func (s *Server) Manager() *ws.Manager {
	return s.manager
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
