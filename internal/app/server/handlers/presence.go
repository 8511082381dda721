package handlers

import (
	"chatwire/internal/core/services"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type PresenceHandler struct {
	tracker *services.PresenceTracker
}

func NewPresenceHandler(t *services.PresenceTracker) *PresenceHandler {
	return &PresenceHandler{tracker: t}
}

// Heartbeat records the caller as alive. Always 200: presence is
// best-effort and a failed mirror write must not fail the client.
func (h *PresenceHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	h.tracker.Heartbeat(r.Context(), userID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *PresenceHandler) Online(w http.ResponseWriter, r *http.Request) {
	if _, ok := authedUser(w, r); !ok {
		return
	}
	online := h.tracker.OnlineUsers()
	if online == nil {
		online = []uuid.UUID{}
	}
	writeJSON(w, http.StatusOK, struct {
		Count int         `json:"count"`
		Users []uuid.UUID `json:"users"`
	}{Count: len(online), Users: online})
}

func (h *PresenceHandler) Status(w http.ResponseWriter, r *http.Request) {
	if _, ok := authedUser(w, r); !ok {
		return
	}
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		http.Error(w, "user_id parameter is required", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		UserID    uuid.UUID `json:"user_id"`
		IsOnline  bool      `json:"is_online"`
		CheckedAt time.Time `json:"checked_at"`
	}{UserID: userID, IsOnline: h.tracker.IsOnline(userID), CheckedAt: time.Now().UTC()})
}
