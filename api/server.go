package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wakegate/config"
	"wakegate/core/auth"
	"wakegate/core/store"
	"wakegate/core/utils"
	"wakegate/core/worker"
	"wakegate/ui"
)

type Server struct {
	cfg        *config.AppConfig
	router     chi.Router
	httpServer *http.Server
	logger     *utils.Logger
	authSvc    *auth.Service
	devices    store.DevicesStore
	auth       *AuthHandler
	devicesAPI *DevicesHandler
	checker    *worker.StatusChecker
	limiter    *requestLimiter
}

func NewServer(cfg *config.AppConfig, db *sql.DB, logger *utils.Logger) *Server {
	creds := store.NewCredentialsStore(db)
	devices := store.NewDevicesStore(db)
	tokens := auth.NewTokenManager([]byte(cfg.SessionSecret), cfg.SessionTTL)
	authSvc := auth.NewService(creds, tokens, cfg.Pepper, cfg.Issuer, logger)

	s := &Server{
		cfg:        cfg,
		router:     chi.NewRouter(),
		logger:     logger,
		authSvc:    authSvc,
		devices:    devices,
		auth:       NewAuthHandler(cfg, authSvc, logger),
		devicesAPI: NewDevicesHandler(cfg, devices, nil, logger),
		limiter:    newLimiter(5, time.Minute),
	}
	if cfg.StatusCheck.Enabled {
		s.checker = worker.NewStatusChecker(devices, cfg.StatusCheck, logger)
	}
	s.registerRoutes()
	return s
}

// Handler exposes the router for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(s.loggingMiddleware)
	r.Use(s.securityHeadersMiddleware)

	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/assets/*", http.StripPrefix("/assets/", ui.Assets()))

	// Pages go through the route guard.
	r.Group(func(r chi.Router) {
		r.Use(s.guardMiddleware)
		r.Get("/", ui.Page("index"))
		r.Get("/login", ui.Page("login"))
		r.Get("/setup", ui.Page("setup"))
		r.Get("/account", ui.Page("account"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/state", s.auth.State)
			r.Post("/setup", s.auth.Setup)
			r.Post("/enroll-otp", s.auth.EnrollOTP)
			r.With(s.rateLimitMiddleware).Post("/login", s.auth.Login)
			r.Post("/logout", s.auth.Logout)

			r.Group(func(r chi.Router) {
				r.Use(s.withSession)
				r.Get("/me", s.auth.Me)
				r.Post("/change-username", s.auth.ChangeUsername)
				r.Post("/change-password", s.auth.ChangePassword)
				r.Post("/disable-otp", s.auth.DisableOTP)
				r.Post("/regenerate-otp", s.auth.RegenerateOTP)
			})
		})

		r.Route("/devices", func(r chi.Router) {
			r.Use(s.withSession)
			r.Get("/", s.devicesAPI.List)
			r.Post("/", s.devicesAPI.Create)
			r.Put("/{id}", s.devicesAPI.Update)
			r.Delete("/{id}", s.devicesAPI.Delete)
			r.Post("/{id}/wake", s.devicesAPI.Wake)
		})
	})
}

func (s *Server) Start() error {
	if s.checker != nil {
		if err := s.checker.Start(); err != nil {
			return err
		}
	}
	s.httpServer = &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if s.cfg.TLSEnabled {
		return s.httpServer.ListenAndServeTLS(s.cfg.TLSCert, s.cfg.TLSKey)
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.checker != nil {
		s.checker.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
