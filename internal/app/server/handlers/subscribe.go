package handlers

import (
	"chatwire/internal/app/server/ws"
	"chatwire/internal/core/services"
	"chatwire/pkg/logging"
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SubscriptionHandler serves the long-lived websocket endpoints that
// stream broadcast-channel payloads to clients.
type SubscriptionHandler struct {
	fanout   *services.FanoutService
	convSvc  *services.ConversationService
	presence *services.PresenceTracker
}

func NewSubscriptionHandler(
	fanout *services.FanoutService,
	convSvc *services.ConversationService,
	presence *services.PresenceTracker,
) *SubscriptionHandler {
	return &SubscriptionHandler{fanout: fanout, convSvc: convSvc, presence: presence}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // tighten later
	},
}

// Messages streams new messages of a conversation to a member. No
// replay: the stream starts with messages published after the
// subscription registered.
func (h *SubscriptionHandler) Messages(w http.ResponseWriter, r *http.Request) {
	log := ctxLogger(r)
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	convID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.convSvc.Get(r.Context(), convID, userID); err != nil {
		writeDomainError(w, err)
		return
	}
	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("chat.conversation_id", convID.String()),
		attribute.String("user.id", userID.String()),
	)

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.ErrorContext(r.Context(), "subscribe handler - messages - upgrade failed", logging.Err(err))
		return
	}
	conn.SetCloseHandler(func(code int, text string) error {
		cancel()
		return nil
	})
	sock := ws.NewWebSocket(ctx, conn)
	defer sock.Close()

	msgs, err := h.fanout.SubscribeMessages(ctx, convID)
	if err != nil {
		log.ErrorContext(ctx, "subscribe handler - messages - subscribe failed", logging.Conversation(convID), logging.Err(err))
		return
	}
	log.InfoContext(ctx, "subscribe handler - messages - stream open", logging.Conversation(convID), logging.User(userID))
	stream := ws.NewStream(ctx, sock, msgs)
	defer stream.Close()
	sock.ReadLoop(nil)
	cancel()
	<-stream.Done()
	log.InfoContext(ctx, "subscribe handler - messages - stream closed", logging.Conversation(convID), logging.User(userID))
}

// Presence streams online/offline transitions of one user. When a user
// opens their own presence stream the transport lifecycle drives the
// tracker: connect announces online, the socket closing announces
// offline even if a heartbeat is still fresh.
func (h *SubscriptionHandler) Presence(w http.ResponseWriter, r *http.Request) {
	log := ctxLogger(r)
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	targetID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.ErrorContext(r.Context(), "subscribe handler - presence - upgrade failed", logging.Err(err))
		return
	}
	conn.SetCloseHandler(func(code int, text string) error {
		cancel()
		return nil
	})
	sock := ws.NewWebSocket(ctx, conn)
	defer sock.Close()

	updates, err := h.fanout.SubscribeOnline(ctx, targetID)
	if err != nil {
		log.ErrorContext(ctx, "subscribe handler - presence - subscribe failed", logging.User(targetID), logging.Err(err))
		return
	}
	if targetID == userID {
		h.presence.OnConnected(ctx, userID)
		defer h.presence.OnDisconnected(context.WithoutCancel(ctx), userID)
	}
	log.InfoContext(ctx, "subscribe handler - presence - stream open", logging.User(targetID))
	stream := ws.NewStream(ctx, sock, updates)
	defer stream.Close()
	sock.ReadLoop(nil)
	cancel()
	<-stream.Done()
	log.InfoContext(ctx, "subscribe handler - presence - stream closed", logging.User(targetID))
}
