package logging

import (
	"log/slog"

	"github.com/google/uuid"
)

// Domain identifiers

func User(id uuid.UUID) slog.Attr {
	return slog.String("user_id", id.String())
}

func Conversation(id uuid.UUID) slog.Attr {
	return slog.String("conversation_id", id.String())
}

func Topic(name string) slog.Attr {
	return slog.String("topic", name)
}

func Online(v bool) slog.Attr {
	return slog.Bool("is_online", v)
}

// Request / tracing

func RequestID(id string) slog.Attr {
	return slog.String("request_id", id)
}

func TraceID(id string) slog.Attr {
	return slog.String("trace_id", id)
}

// Error handling

func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
