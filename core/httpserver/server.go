// Package httpserver exposes the bot's inbound surface: the Twilio
// webhook that receives WhatsApp messages and a health endpoint.
package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/jummai/wabot/core/logger"
	"github.com/jummai/wabot/core/store"
)

// MessageHandler turns one inbound message into the reply to send.
type MessageHandler interface {
	Handle(ctx context.Context, sender, body string) (string, error)
}

// ReplySender queues one outbound reply for best-effort delivery.
type ReplySender interface {
	EnqueueText(ctx context.Context, to, body string) error
}

// StatsProvider reports the counters surfaced on the health endpoint.
// store.Store satisfies it.
type StatsProvider interface {
	Stats(ctx context.Context) (store.Stats, error)
}

// Options wires the server's collaborators.
type Options struct {
	Handler MessageHandler
	Sender  ReplySender
	Stats   StatsProvider
	// ApologyText is sent to the user when handling fails unexpectedly.
	ApologyText string
	Listen      string
}

// Server is the HTTP front of the bot.
type Server struct {
	opts Options
	srv  *http.Server
}

// New builds the server and its routes. Call Start to serve.
func New(opts Options) *Server {
	s := &Server{opts: opts}

	mux := http.NewServeMux()
	mux.HandleFunc("/webhook/whatsapp", s.handleWebhook)
	mux.HandleFunc("/health", s.handleHealth)

	s.srv = &http.Server{
		Addr:              opts.Listen,
		Handler:           Chain(mux, RequestLogging, Recover),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	logger.Info(context.Background(), "http", "server.start",
		slog.String("status", "ok"),
		slog.String("listen", s.srv.Addr),
	)
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// handleWebhook processes one Twilio inbound-message callback. The reply
// is queued asynchronously; the webhook acknowledges as soon as state is
// updated. Failures answer 500 with a plain "Error" body so Twilio's
// debugger surfaces them, after attempting a generic apology reply.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	sender := r.PostFormValue("From")
	body := r.PostFormValue("Body")
	msgSID := r.PostFormValue("MessageSid")
	ctx := logger.WithMessageMeta(r.Context(), sender, msgSID)

	logger.Info(ctx, "http", "webhook.received",
		slog.String("status", "ok"),
		slog.String("body", logger.Sanitize(body)),
	)

	reply, err := s.handleSafely(ctx, sender, body)
	if err != nil {
		logger.Error(ctx, "http", "webhook.handle.fail",
			slog.String("status", "fail"),
			slog.String("error", err.Error()),
		)
		if s.opts.ApologyText != "" {
			s.enqueueReply(ctx, sender, s.opts.ApologyText)
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Error"))
		return
	}

	if reply != "" {
		s.enqueueReply(ctx, sender, reply)
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleSafely converts a handler panic into an error so a misbehaving
// message can never take the webhook down.
func (s *Server) handleSafely(ctx context.Context, sender, body string) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "http", "webhook.panic",
				slog.String("status", "fail"),
				slog.Any("err", r),
				slog.String("stack", string(debug.Stack())),
			)
			reply = ""
			err = &panicError{value: r}
		}
	}()
	return s.opts.Handler.Handle(ctx, sender, body)
}

type panicError struct{ value any }

func (e *panicError) Error() string { return "handler panic" }

// enqueueReply hands the reply to the dispatcher. A full or closed queue
// is logged and dropped; the inbound message was already processed.
func (s *Server) enqueueReply(ctx context.Context, to, body string) {
	if s.opts.Sender == nil || to == "" {
		return
	}
	// Detach from the request context: the send outlives the webhook.
	sendCtx := logger.WithMessageMeta(context.Background(),
		logger.SenderFrom(ctx), logger.MessageSIDFrom(ctx))
	sendCtx = logger.WithRID(sendCtx, logger.RIDFrom(ctx))

	if err := s.opts.Sender.EnqueueText(sendCtx, to, body); err != nil {
		logger.Error(ctx, "http", "reply.enqueue.fail",
			slog.String("status", "fail"),
			slog.String("error", err.Error()),
		)
	}
}

type healthResponse struct {
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	Users      int       `json:"users"`
	TotalSales int       `json:"totalSales"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC(),
	}
	if s.opts.Stats != nil {
		stats, err := s.opts.Stats.Stats(r.Context())
		if err != nil {
			logger.Error(r.Context(), "http", "health.stats.fail",
				slog.String("status", "fail"),
				slog.String("error", err.Error()),
			)
			writeJSON(w, http.StatusInternalServerError, healthResponse{
				Status:    "error",
				Timestamp: resp.Timestamp,
			})
			return
		}
		resp.Users = stats.Users
		resp.TotalSales = stats.TotalSales
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
