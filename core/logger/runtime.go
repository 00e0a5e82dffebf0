package logger

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// contextKey is a private type to avoid collisions in context.
type contextKey string

const (
	ctxRID     contextKey = "rid"
	ctxSender  contextKey = "sender"
	ctxMsgSID  contextKey = "msg_sid"
	ctxLogger  contextKey = "logger"
	ctxHandler contextKey = "handler"
)

// NewRID returns a fresh correlation identifier for one inbound webhook event.
func NewRID() string {
	return uuid.NewString()
}

// ShortRID compacts a UUID rid to its first segment for readable KV output.
// Inputs that do not look like a UUID are returned unchanged.
func ShortRID(rid string) string {
	rid = strings.TrimSpace(rid)
	if rid == "" {
		return ""
	}
	parts := strings.Split(rid, "-")
	if len(parts) != 5 {
		return rid
	}
	return parts[0]
}

// WithLogger stores the provided slog.Logger in context for propagation across layers.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxLogger, log)
}

// FromContext extracts slog.Logger from context or returns global default.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if v := ctx.Value(ctxLogger); v != nil {
		if l, ok := v.(*slog.Logger); ok {
			return l
		}
	}
	return L
}

// WithRID attaches request correlation id into context.
func WithRID(ctx context.Context, rid string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRID, rid)
}

// RIDFrom extracts rid from context if present.
func RIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(ctxRID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithMessageMeta attaches the sender identity and inbound message SID to context.
func WithMessageMeta(ctx context.Context, sender, msgSID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxSender, sender)
	if msgSID != "" {
		ctx = context.WithValue(ctx, ctxMsgSID, msgSID)
	}
	return ctx
}

// SenderFrom extracts the sender identity from context.
func SenderFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(ctxSender); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// MessageSIDFrom extracts the inbound message SID from context.
func MessageSIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(ctxMsgSID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithHandler stores handler identifier in context for downstream logs.
func WithHandler(ctx context.Context, handler string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if handler == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxHandler, handler)
}

// HandlerFrom returns handler identifier from context if present.
func HandlerFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(ctxHandler); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Sanitize trims non-printable runes from s to keep logs clean.
// It removes control characters (Unicode categories Cc, Cf) except for tab and newline.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	b := strings.Builder{}
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			continue
		}
		if r == 0x7F {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SanitizeLimit applies Sanitize and limits the output length in runes.
func SanitizeLimit(s string, max int) string {
	if max <= 0 {
		return ""
	}
	cleaned := Sanitize(s)
	if len([]rune(cleaned)) <= max {
		return cleaned
	}
	r := []rune(cleaned)
	return string(r[:max])
}
