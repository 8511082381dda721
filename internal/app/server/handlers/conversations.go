package handlers

import (
	"chatwire/internal/core/domain"
	"chatwire/internal/core/services"
	"chatwire/pkg/logging"
	"encoding/json"
	"net/http"
)

type ConversationHandler struct {
	convSvc *services.ConversationService
	msgSvc  *services.MessageService
}

func NewConversationHandler(c *services.ConversationService, m *services.MessageService) *ConversationHandler {
	return &ConversationHandler{convSvc: c, msgSvc: m}
}

func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := ctxLogger(r)
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Type domain.ConversationType `json:"type"`
		Name *string                 `json:"name,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Type != domain.ConversationPrivate && req.Type != domain.ConversationGroup {
		http.Error(w, "type must be private or group", http.StatusBadRequest)
		return
	}
	conv, err := h.convSvc.Create(r.Context(), userID, req.Type, req.Name)
	if err != nil {
		log.ErrorContext(r.Context(), "conversation handler - create failed", logging.User(userID), logging.Err(err))
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	convs, err := h.convSvc.ListForUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convs)
}

func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	convID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	conv, err := h.convSvc.Get(r.Context(), convID, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (h *ConversationHandler) Join(w http.ResponseWriter, r *http.Request) {
	log := ctxLogger(r)
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	convID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	conv, err := h.convSvc.Join(r.Context(), convID, userID)
	if err != nil {
		log.ErrorContext(r.Context(), "conversation handler - join failed", logging.Conversation(convID), logging.User(userID), logging.Err(err))
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (h *ConversationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	log := ctxLogger(r)
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	convID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}
	msg, err := h.msgSvc.Send(r.Context(), userID, convID, req.Content)
	if err != nil {
		log.ErrorContext(r.Context(), "conversation handler - send message failed", logging.Conversation(convID), logging.User(userID), logging.Err(err))
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *ConversationHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	convID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	msgs, err := h.msgSvc.History(r.Context(), convID, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}
