package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"chatwire/internal/app/server/handlers"
	"chatwire/internal/core/services"
	"chatwire/pkg/middleware"
)

type Server struct {
	log  *slog.Logger
	mux  *http.ServeMux
	name string
	addr string
	srv  *http.Server

	authHandler *handlers.AuthHandler
	userHandler *handlers.UserHandler
	convHandler *handlers.ConversationHandler
	presHandler *handlers.PresenceHandler
	subHandler  *handlers.SubscriptionHandler
	tokenSvc    *services.TokenService
	guard       *services.RevocationGuard
}

func NewServer(
	log *slog.Logger,
	name string,
	addr string,
	userSvc *services.UserService,
	tokenSvc *services.TokenService,
	guard *services.RevocationGuard,
	convSvc *services.ConversationService,
	msgSvc *services.MessageService,
	fanout *services.FanoutService,
	tracker *services.PresenceTracker,
) *Server {
	s := &Server{
		log:         log,
		mux:         http.NewServeMux(),
		name:        name,
		addr:        addr,
		authHandler: handlers.NewAuthHandler(userSvc, tokenSvc, guard),
		userHandler: handlers.NewUserHandler(userSvc, tracker),
		convHandler: handlers.NewConversationHandler(convSvc, msgSvc),
		presHandler: handlers.NewPresenceHandler(tracker),
		subHandler:  handlers.NewSubscriptionHandler(fanout, convSvc, tracker),
		tokenSvc:    tokenSvc,
		guard:       guard,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	// 1. Initialize Middleware
	logging := middleware.RequestLogger(s.log)
	tracing := middleware.TracerMiddleware(s.name)
	auth := middleware.AuthMiddleware(s.tokenSvc, s.guard)

	public := func(h http.HandlerFunc) http.Handler {
		return logging(tracing(h))
	}
	protected := func(h http.HandlerFunc) http.Handler {
		return logging(tracing(auth(h)))
	}

	// 2. Public Routes
	s.mux.Handle("POST /auth/register", public(s.authHandler.Register))
	s.mux.Handle("POST /auth/login", public(s.authHandler.Login))

	// 3. Protected Routes
	s.mux.Handle("POST /auth/logout", protected(s.authHandler.Logout))

	s.mux.Handle("GET /me", protected(s.userHandler.Me))
	s.mux.Handle("GET /users", protected(s.userHandler.List))
	s.mux.Handle("GET /users/{id}", protected(s.userHandler.Get))

	s.mux.Handle("POST /conversations", protected(s.convHandler.Create))
	s.mux.Handle("GET /conversations", protected(s.convHandler.List))
	s.mux.Handle("GET /conversations/{id}", protected(s.convHandler.Get))
	s.mux.Handle("POST /conversations/{id}/join", protected(s.convHandler.Join))
	s.mux.Handle("POST /conversations/{id}/messages", protected(s.convHandler.SendMessage))
	s.mux.Handle("GET /conversations/{id}/messages", protected(s.convHandler.History))

	s.mux.Handle("POST /presence/heartbeat", protected(s.presHandler.Heartbeat))
	s.mux.Handle("GET /presence/online", protected(s.presHandler.Online))
	s.mux.Handle("GET /presence/status", protected(s.presHandler.Status))

	// Websocket streams hold the connection open, so no write timeout
	// applies to them (see Start).
	s.mux.Handle("GET /ws/conversations/{id}", protected(s.subHandler.Messages))
	s.mux.Handle("GET /ws/presence/{id}", protected(s.subHandler.Presence))
}

func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:        s.addr,
		Handler:     s.mux,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: websocket streams outlive any fixed deadline.
		// Hijacked connections manage their own write deadlines.
	}

	s.log.Info("server - start - listening", "addr", s.addr)
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
