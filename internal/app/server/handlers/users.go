package handlers

import (
	"chatwire/internal/core/services"
	"chatwire/pkg/logging"
	"net/http"
)

type UserHandler struct {
	userSvc  *services.UserService
	presence *services.PresenceTracker
}

func NewUserHandler(u *services.UserService, p *services.PresenceTracker) *UserHandler {
	return &UserHandler{userSvc: u, presence: p}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	user, err := h.userSvc.GetByID(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	log := ctxLogger(r)
	users, err := h.userSvc.List(r.Context())
	if err != nil {
		log.ErrorContext(r.Context(), "user handler - list failed", logging.Err(err))
		writeDomainError(w, err)
		return
	}
	// The live tracker overrides the durable mirror, which may lag.
	for i := range users {
		users[i].IsOnline = h.presence.IsOnline(users[i].ID)
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	user, err := h.userSvc.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	user.IsOnline = h.presence.IsOnline(user.ID)
	writeJSON(w, http.StatusOK, user)
}
